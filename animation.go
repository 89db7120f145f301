package canopy

import (
	"fmt"
	"time"
)

// AnimationID identifies a keyframe animation or a transition template.
type AnimationID uint32

// animationClock carries the timing shared by every channel of one
// animation. Templates point at it so the builder can still change it;
// running instances copy it.
type animationClock struct {
	duration time.Duration
	delay    time.Duration
	timing   TimingFunction
}

type keyframe[T any] struct {
	time   float64
	value  T
	timing TimingFunction // eases the segment that starts at this keyframe
}

// animationState is a keyframe sequence for one channel. Templates have a
// null entity; instances are copies bound to an entity with their own
// elapsed time.
type animationState[T Interpolator[T]] struct {
	id        AnimationID
	entity    Entity
	clock     *animationClock
	keyframes []keyframe[T]

	run     animationClock
	elapsed time.Duration
	value   T
	done    bool
}

func (a *animationState[T]) instance(e Entity) *animationState[T] {
	return &animationState[T]{
		id:     a.id,
		entity: e,
		clock:  a.clock,
		run:    *a.clock,
	}
}

// advance moves the instance forward by dt and updates its value. The final
// keyframe is committed once progress reaches 1.
func (a *animationState[T]) advance(dt time.Duration) {
	a.elapsed += dt
	if a.elapsed < a.run.delay {
		a.value = a.keyframes[0].value
		return
	}
	p := 1.0
	if a.run.duration > 0 {
		p = float64(a.elapsed-a.run.delay) / float64(a.run.duration)
	}
	if p >= 1 {
		a.value = a.keyframes[len(a.keyframes)-1].value
		a.done = true
		return
	}
	a.value = a.sample(p)
}

// sample interpolates between the keyframes bracketing progress p.
func (a *animationState[T]) sample(p float64) T {
	kf := a.keyframes
	if p <= kf[0].time {
		return kf[0].value
	}
	for i := 0; i < len(kf)-1; i++ {
		k0, k1 := kf[i], kf[i+1]
		if p > k1.time {
			continue
		}
		local := 1.0
		if span := k1.time - k0.time; span > 0 {
			local = (p - k0.time) / span
		}
		timing := k0.timing
		if timing == nil {
			timing = a.run.timing
		}
		if timing == nil {
			timing = Linear
		}
		return k0.value.Interpolate(k1.value, timing.Ease(local))
	}
	return kf[len(kf)-1].value
}

func addKeyframe[T Interpolator[T]](set *AnimatableSet[T], b *AnimationBuilder, v T) {
	tmpl := set.template(b.id, b.clock)
	tmpl.keyframes = append(tmpl.keyframes, keyframe[T]{time: b.current, value: v, timing: b.frameTiming})
}

// AnimationBuilder registers a keyframe animation. Obtain one from
// Context.AddAnimation and finish with Build.
type AnimationBuilder struct {
	style *Style
	id    AnimationID
	clock *animationClock

	current     float64
	frameTiming TimingFunction
	started     bool
}

// Delay sets how long the animation waits before it starts moving.
func (b *AnimationBuilder) Delay(d time.Duration) *AnimationBuilder {
	b.clock.delay = d
	return b
}

// Timing sets the default timing function of every segment.
func (b *AnimationBuilder) Timing(fn TimingFunction) *AnimationBuilder {
	b.clock.timing = fn
	return b
}

// AddKeyframe adds a keyframe at progress t. Keyframe times must increase
// and lie within [0, 1]. The callback sets the channel values of the
// keyframe.
func (b *AnimationBuilder) AddKeyframe(t float64, fn func(k *KeyframeBuilder)) *AnimationBuilder {
	if t < 0 || t > 1 {
		panic(fmt.Sprintf("canopy: keyframe time %v outside [0, 1]", t))
	}
	if b.started && t <= b.current {
		panic(fmt.Sprintf("canopy: keyframe time %v does not follow %v", t, b.current))
	}
	b.current = t
	b.started = true
	b.frameTiming = nil
	fn(&KeyframeBuilder{b: b})
	return b
}

// Build returns the id to pass to Context.PlayAnimation.
func (b *AnimationBuilder) Build() AnimationID {
	return b.id
}

// KeyframeBuilder sets the channel values of one keyframe. Channels left
// unset in a keyframe are not animated by it.
type KeyframeBuilder struct {
	b *AnimationBuilder
}

// Timing sets the timing function of the segment starting at this keyframe.
// Call it before the value setters.
func (k *KeyframeBuilder) Timing(fn TimingFunction) *KeyframeBuilder {
	k.b.frameTiming = fn
	return k
}

func (k *KeyframeBuilder) Opacity(v float64) *KeyframeBuilder {
	addKeyframe(&k.b.style.Opacity, k.b, Opacity(v))
	return k
}

func (k *KeyframeBuilder) BackgroundColor(c Color) *KeyframeBuilder {
	addKeyframe(&k.b.style.BackgroundColor, k.b, c)
	return k
}

func (k *KeyframeBuilder) BorderColor(c Color) *KeyframeBuilder {
	addKeyframe(&k.b.style.BorderColor, k.b, c)
	return k
}

func (k *KeyframeBuilder) BorderWidth(u Units) *KeyframeBuilder {
	addKeyframe(&k.b.style.BorderWidth, k.b, u)
	return k
}

func (k *KeyframeBuilder) BorderRadius(u Units) *KeyframeBuilder {
	addKeyframe(&k.b.style.BorderTopLeftRadius, k.b, u)
	addKeyframe(&k.b.style.BorderTopRightRadius, k.b, u)
	addKeyframe(&k.b.style.BorderBottomLeftRadius, k.b, u)
	addKeyframe(&k.b.style.BorderBottomRightRadius, k.b, u)
	return k
}

func (k *KeyframeBuilder) OutlineColor(c Color) *KeyframeBuilder {
	addKeyframe(&k.b.style.OutlineColor, k.b, c)
	return k
}

func (k *KeyframeBuilder) OutlineWidth(u Units) *KeyframeBuilder {
	addKeyframe(&k.b.style.OutlineWidth, k.b, u)
	return k
}

func (k *KeyframeBuilder) FontColor(c Color) *KeyframeBuilder {
	addKeyframe(&k.b.style.FontColor, k.b, c)
	return k
}

func (k *KeyframeBuilder) Transform(t Transform) *KeyframeBuilder {
	addKeyframe(&k.b.style.Transform, k.b, t)
	return k
}

func (k *KeyframeBuilder) Left(u Units) *KeyframeBuilder {
	addKeyframe(&k.b.style.Left, k.b, u)
	return k
}

func (k *KeyframeBuilder) Right(u Units) *KeyframeBuilder {
	addKeyframe(&k.b.style.Right, k.b, u)
	return k
}

func (k *KeyframeBuilder) Top(u Units) *KeyframeBuilder {
	addKeyframe(&k.b.style.Top, k.b, u)
	return k
}

func (k *KeyframeBuilder) Bottom(u Units) *KeyframeBuilder {
	addKeyframe(&k.b.style.Bottom, k.b, u)
	return k
}

func (k *KeyframeBuilder) Width(u Units) *KeyframeBuilder {
	addKeyframe(&k.b.style.Width, k.b, u)
	return k
}

func (k *KeyframeBuilder) Height(u Units) *KeyframeBuilder {
	addKeyframe(&k.b.style.Height, k.b, u)
	return k
}
