package canopy

import (
	"time"

	"go.uber.org/zap"
)

// debugStats holds per-frame timing metrics. Only populated in debug mode.
type debugStats struct {
	inputTime    time.Duration
	eventTime    time.Duration
	styleTime    time.Duration
	animateTime  time.Duration
	layoutTime   time.Duration
	drawTime     time.Duration
	eventCount   int
	commandCount int
}

// debugLog writes the frame stats at debug level.
func (cx *Context) debugLog(stats debugStats) {
	if !cx.debug {
		return
	}
	total := stats.inputTime + stats.eventTime + stats.styleTime +
		stats.animateTime + stats.layoutTime + stats.drawTime
	cx.log.Debug("frame",
		zap.Duration("input", stats.inputTime),
		zap.Duration("events", stats.eventTime),
		zap.Duration("style", stats.styleTime),
		zap.Duration("animate", stats.animateTime),
		zap.Duration("layout", stats.layoutTime),
		zap.Duration("draw", stats.drawTime),
		zap.Duration("total", total),
		zap.Int("flushes", stats.eventCount),
		zap.Int("commands", stats.commandCount),
		zap.Int("entities", cx.entities.count()),
	)
}

const (
	debugMaxTreeDepth  = 32
	debugMaxChildCount = 1000
)

// debugCheckTree warns when a newly added entity makes the tree unusually
// deep or its parent unusually wide.
func (cx *Context) debugCheckTree(e, parent Entity) {
	if d := cx.tree.depth(e); d > debugMaxTreeDepth {
		cx.log.Warn("tree depth exceeds threshold",
			zap.Stringer("entity", e), zap.Int("depth", d), zap.Int("threshold", debugMaxTreeDepth))
	}
	n := 0
	for range cx.tree.Children(parent) {
		n++
	}
	if n == debugMaxChildCount+1 {
		cx.log.Warn("child count exceeds threshold",
			zap.Stringer("entity", parent), zap.Int("children", n), zap.Int("threshold", debugMaxChildCount))
	}
}
