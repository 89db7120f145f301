package canopy

import (
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

// chain builds root -> a -> b -> c with recorder views.
func chain(cx *Context, log *[]string) (a, b, c Entity) {
	a = addTo(cx, RootEntity, &recorder{name: "a", log: log})
	b = addTo(cx, a, &recorder{name: "b", log: log})
	c = addTo(cx, b, &recorder{name: "c", log: log})
	return
}

func TestPropagationUp(t *testing.T) {
	cx := NewContext()
	var log []string
	_, _, c := chain(cx, &log)
	cx.SetCurrent(c)
	cx.Emit(testMsg("hi"))
	cx.SetCurrent(RootEntity)
	flush(t, cx)

	want := []string{"c:hi", "b:hi", "a:hi"}
	if diff := cmp.Diff(want, log); diff != "" {
		t.Errorf("visits (-want +got):\n%s", diff)
	}
}

func TestConsumeStopsPropagation(t *testing.T) {
	cx := NewContext()
	var log []string
	a, b, c := chain(cx, &log)
	vb, _ := ViewAs[*recorder](cx, b)
	vb.consume = func(*Event) bool { return true }
	reached := 0
	cx.WithCurrent(a, func(cx *Context) {
		cx.AddModel(modelFunc(func(*Context, *Event) { reached++ }))
	})

	cx.EmitCustom(NewEvent(testMsg("x")).WithTarget(c))
	flush(t, cx)

	if reached != 0 {
		t.Errorf("ancestor past the consumer reached %d times", reached)
	}
	if diff := cmp.Diff([]string{"c:x", "b:x"}, log); diff != "" {
		t.Errorf("visits (-want +got):\n%s", diff)
	}
}

func TestPropagationSubtree(t *testing.T) {
	cx := NewContext()
	var log []string
	x := addTo(cx, RootEntity, &recorder{name: "x", log: &log})
	y := addTo(cx, x, &recorder{name: "y", log: &log})
	addTo(cx, y, &recorder{name: "w", log: &log})
	addTo(cx, x, &recorder{name: "z", log: &log})

	cx.EmitCustom(NewEvent(testMsg("s")).WithTarget(x).WithPropagation(PropagationSubtree))
	flush(t, cx)

	want := []string{"x:s", "y:s", "w:s", "z:s"}
	if diff := cmp.Diff(want, log); diff != "" {
		t.Errorf("visits (-want +got):\n%s", diff)
	}
}

func TestPropagationDirectAndNone(t *testing.T) {
	for _, p := range []Propagation{PropagationDirect, PropagationNone} {
		t.Run(p.String(), func(t *testing.T) {
			cx := NewContext()
			var log []string
			_, b, _ := chain(cx, &log)
			cx.EmitCustom(NewEvent(testMsg("d")).WithTarget(b).WithPropagation(p))
			flush(t, cx)
			if diff := cmp.Diff([]string{"b:d"}, log); diff != "" {
				t.Errorf("visits (-want +got):\n%s", diff)
			}
		})
	}
}

// A listener on the parent that consumes stops the event before the
// target's own dispatch.
func TestListenerConsumesBeforeTarget(t *testing.T) {
	cx := NewContext()
	var log []string
	a := addTo(cx, RootEntity, &recorder{name: "a", log: &log})
	b := addTo(cx, a, &recorder{name: "b", log: &log})

	cx.WithCurrent(a, func(cx *Context) {
		AddListener(cx, func(v *recorder, cx *Context, ev *Event) {
			log = append(log, "listener("+v.name+"):"+messageName(ev.Message))
			if cx.Current() != a {
				t.Errorf("listener current = %v, want %v", cx.Current(), a)
			}
			ev.Consume()
		})
	})
	cx.WithCurrent(b, func(cx *Context) { cx.Emit(testMsg("up")) })
	flush(t, cx)

	if diff := cmp.Diff([]string{"listener(a):up"}, log); diff != "" {
		t.Errorf("visits (-want +got):\n%s", diff)
	}
}

func TestListenerOrderAndReplacement(t *testing.T) {
	cx := NewContext()
	var log []string
	a := addTo(cx, RootEntity, &recorder{name: "a", log: &log})
	b := addTo(cx, RootEntity, &recorder{name: "b", log: &log})

	listen := func(e Entity, tag string) {
		cx.WithCurrent(e, func(cx *Context) {
			AddListener(cx, func(_ *recorder, _ *Context, ev *Event) {
				log = append(log, tag)
			})
		})
	}
	listen(a, "la1")
	listen(b, "lb")
	listen(a, "la2") // replaces, keeps a first
	cx.AddGlobalListener(func(cx *Context, ev *Event) {
		log = append(log, "global")
		if cx.Current() != RootEntity {
			t.Errorf("global listener current = %v", cx.Current())
		}
	})

	cx.EmitCustom(NewEvent(testMsg("m")).WithPropagation(PropagationNone))
	flush(t, cx)

	want := []string{"la2", "lb", "global"}
	if diff := cmp.Diff(want, log); diff != "" {
		t.Errorf("order (-want +got):\n%s", diff)
	}
}

func TestListenerIgnoresOtherViewTypes(t *testing.T) {
	cx := NewContext()
	calls := 0
	e := addTo(cx, RootEntity, ViewFunc(func(*Context, *Event) {}))
	cx.WithCurrent(e, func(cx *Context) {
		AddListener(cx, func(*recorder, *Context, *Event) { calls++ })
	})
	cx.Emit(testMsg("m"))
	flush(t, cx)
	if calls != 0 {
		t.Errorf("listener for another view type ran %d times", calls)
	}
}

type countModel struct {
	name string
	log  *[]string
}

func (m *countModel) Event(cx *Context, ev *Event) {
	*m.log = append(*m.log, m.name+":"+messageName(ev.Message))
}

func TestModelsReceiveAfterViewConsumes(t *testing.T) {
	cx := NewContext()
	var log []string
	a := addTo(cx, RootEntity, &recorder{name: "a", log: &log})
	b := addTo(cx, a, &recorder{name: "b", log: &log, consume: func(*Event) bool { return true }})
	cx.WithCurrent(b, func(cx *Context) {
		cx.AddModel(&countModel{name: "model", log: &log})
	})

	cx.EmitCustom(NewEvent(testMsg("v")).WithTarget(b))
	flush(t, cx)

	want := []string{"b:v", "model:v"}
	if diff := cmp.Diff(want, log); diff != "" {
		t.Errorf("visits (-want +got):\n%s", diff)
	}
}

func TestEventsEmittedDuringFlushWait(t *testing.T) {
	cx := NewContext()
	var log []string
	var e Entity
	e = addTo(cx, RootEntity, ViewFunc(func(cx *Context, ev *Event) {
		log = append(log, messageName(ev.Message))
		if ev.Message == testMsg("first") {
			cx.EmitTo(e, testMsg("second"))
		}
	}))
	cx.EmitTo(e, testMsg("first"))

	em := NewEventManager()
	if !em.Flush(cx) {
		t.Fatal("Flush reported an empty queue with a follow-up pending")
	}
	if diff := cmp.Diff([]string{"first"}, log); diff != "" {
		t.Errorf("after first flush (-want +got):\n%s", diff)
	}
	if em.Flush(cx) {
		t.Error("queue not empty after second flush")
	}
	if diff := cmp.Diff([]string{"first", "second"}, log); diff != "" {
		t.Errorf("after second flush (-want +got):\n%s", diff)
	}
}

func TestInternalEventsAreNotRouted(t *testing.T) {
	cx := NewContext()
	var log []string
	cx.AddGlobalListener(func(cx *Context, ev *Event) {
		log = append(log, messageName(ev.Message))
	})
	cx.style.needsRedraw = false
	cx.RequestRedraw()
	flush(t, cx)
	if len(log) != 0 {
		t.Errorf("internal event routed: %v", log)
	}
	if !cx.style.needsRedraw {
		t.Error("redraw request not applied")
	}
}

func TestRemoveDuringDispatch(t *testing.T) {
	cx := NewContext()
	var log []string
	a := addTo(cx, RootEntity, &recorder{name: "a", log: &log})
	var b Entity
	b = addTo(cx, a, ViewFunc(func(cx *Context, ev *Event) {
		log = append(log, "b")
		cx.Remove(b)
	}))
	cx.WithCurrent(b, func(cx *Context) {
		cx.AddModel(&countModel{name: "bm", log: &log})
	})

	cx.EmitCustom(NewEvent(testMsg("r")).WithTarget(b))
	flush(t, cx)

	// The walk continues on the snapshot taken before the removal.
	want := []string{"b", "a:r"}
	if diff := cmp.Diff(want, log); diff != "" {
		t.Errorf("visits (-want +got):\n%s", diff)
	}
	if cx.IsAlive(b) {
		t.Error("entity alive after removal")
	}
	if _, ok := cx.views.Get(b); ok {
		t.Error("view restored after removal")
	}
	if cx.models.Contains(b) {
		t.Error("models restored after removal")
	}
}

func TestDataAndViewAs(t *testing.T) {
	cx := NewContext()
	type settings struct{ theme string }
	var log []string
	a := addTo(cx, RootEntity, &recorder{name: "a", log: &log})
	cx.WithCurrent(a, func(cx *Context) {
		cx.AddModel(&countModel{name: "first", log: &log})
		cx.AddModel(&countModel{name: "second", log: &log}) // same type replaces
	})
	b := addTo(cx, a, nil)

	var found *countModel
	var rec *recorder
	cx.WithCurrent(b, func(cx *Context) {
		found, _ = Data[*countModel](cx)
		rec, _ = Data[*recorder](cx)
		if _, ok := Data[*settings](cx); ok {
			t.Error("found a model that does not exist")
		}
	})
	if found == nil || found.name != "second" {
		t.Errorf("Data model = %+v", found)
	}
	if rec == nil || rec.name != "a" {
		t.Errorf("Data view = %+v", rec)
	}
	if v, ok := ViewAs[*recorder](cx, a); !ok || v.name != "a" {
		t.Error("ViewAs failed")
	}
	if _, ok := ViewAs[*recorder](cx, b); ok {
		t.Error("ViewAs on an entity without a view succeeded")
	}
}

func TestAddModelDuringDispatchIsMerged(t *testing.T) {
	cx := NewContext()
	var log []string
	e := addTo(cx, RootEntity, nil)
	cx.WithCurrent(e, func(cx *Context) {
		cx.AddModel(modelFunc(func(cx *Context, ev *Event) {
			cx.AddModel(&countModel{name: "late", log: &log})
		}))
	})
	cx.EmitTo(e, testMsg("one"))
	flush(t, cx)
	cx.EmitTo(e, testMsg("two"))
	flush(t, cx)
	if diff := cmp.Diff([]string{"late:two"}, log); diff != "" {
		t.Errorf("visits (-want +got):\n%s", diff)
	}
}

type modelFunc func(cx *Context, ev *Event)

func (f modelFunc) Event(cx *Context, ev *Event) { f(cx, ev) }

func TestProxyEmitsFromGoroutines(t *testing.T) {
	cx := NewContext()
	var log []string
	e := addTo(cx, RootEntity, &recorder{name: "e", log: &log})

	var wg sync.WaitGroup
	cx.WithCurrent(e, func(cx *Context) {
		p := cx.Proxy()
		if p.Entity() != e {
			t.Errorf("proxy entity = %v", p.Entity())
		}
		for range 8 {
			wg.Add(1)
			go func() {
				defer wg.Done()
				p.EmitTo(e, testMsg("bg"))
			}()
		}
	})
	wg.Wait()
	flush(t, cx)
	if len(log) != 8 {
		t.Errorf("received %d events, want 8", len(log))
	}
}

func TestEventBuilders(t *testing.T) {
	ev := NewEvent(testMsg("m")).WithTarget(newEntity(3, 0)).WithOrigin(newEntity(4, 0)).WithPropagation(PropagationSubtree)
	if ev.Target != newEntity(3, 0) || ev.Origin != newEntity(4, 0) || ev.Propagation != PropagationSubtree {
		t.Errorf("event = %v", ev)
	}
	if m, ok := MessageAs[testMsg](ev); !ok || m != "m" {
		t.Errorf("MessageAs = %q, %v", m, ok)
	}
	if _, ok := MessageAs[int](ev); ok {
		t.Error("MessageAs with the wrong type succeeded")
	}
	called := false
	Map(ev, func(int) { called = true })
	if called {
		t.Error("Map called fn for the wrong type")
	}
}
