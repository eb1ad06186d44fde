// Package scheduler assigns admitted comments to display lanes so that no
// two simultaneously visible comments overlap on screen.
//
// Scrolling comments are modelled as linear trajectories; two trajectories
// in the same lane collide when their time windows overlap and their
// horizontal intervals at the overlap start are closer than the collision
// margin. When every lane collides the scheduler falls back to the
// least-occupied lane, trading an occasional visible overlap for bounded
// assignment latency.
package scheduler

import (
	"time"

	"github.com/danmakutv/server/internal/domain"
)

type Config struct {
	TotalLanes        int
	ScreenWidth       float64
	LaneHeight        float64
	TopMargin         float64
	LaneMargin        float64
	CollisionMarginPx float64
	GraceMs           int64
}

const (
	DefaultTotalLanes        = 12
	DefaultScreenWidth       = 1280
	DefaultLaneHeight        = 40
	DefaultTopMargin         = 10
	DefaultLaneMargin        = 4
	DefaultCollisionMarginPx = 20
	DefaultGraceMs           = 1000

	fixedDurationMs = 5000

	minScrollDurationMs = 3000
	maxScrollDurationMs = 8000
	msPerRune           = 30
)

func (cfg *Config) withDefaults() Config {
	out := *cfg
	if out.TotalLanes == 0 {
		out.TotalLanes = DefaultTotalLanes
	}
	if out.ScreenWidth == 0 {
		out.ScreenWidth = DefaultScreenWidth
	}
	if out.LaneHeight == 0 {
		out.LaneHeight = DefaultLaneHeight
	}
	if out.TopMargin == 0 {
		out.TopMargin = DefaultTopMargin
	}
	if out.LaneMargin == 0 {
		out.LaneMargin = DefaultLaneMargin
	}
	if out.CollisionMarginPx == 0 {
		out.CollisionMarginPx = DefaultCollisionMarginPx
	}
	if out.GraceMs == 0 {
		out.GraceMs = DefaultGraceMs
	}

	return out
}

// trajectory fully determines a scrolling comment's motion:
// x(t) = startX - speed * (t - startTime).
type trajectory struct {
	startTimeMs int64
	endTimeMs   int64
	startX      float64
	width       float64
	speed       float64 // px/s
}

func (tr trajectory) xAt(tMs int64) float64 {
	return tr.startX - tr.speed*float64(tMs-tr.startTimeMs)/1000
}

type Scheduler struct {
	cfg   Config
	lanes [][]trajectory
	now   func() time.Time
}

func New(cfg *Config) *Scheduler {
	full := cfg.withDefaults()

	return &Scheduler{
		cfg:   full,
		lanes: make([][]trajectory, full.TotalLanes),
		now:   time.Now,
	}
}

// SetNowFunc overrides the time source. Test hook.
func (s *Scheduler) SetNowFunc(now func() time.Time) {
	s.now = now
}

func (s *Scheduler) TotalLanes() int {
	return s.cfg.TotalLanes
}

// Placement is the computed kinematics for one admitted comment.
type Placement struct {
	Lane       int
	X          float64
	Y          float64
	Speed      float64
	DurationMs int
	Fallback   bool // true when every lane collided and the least-occupied one was used
}

// DurationMs returns how long a comment stays visible. Fixed-position
// comments get a constant duration; scrolling comments stay longer for
// longer text, within bounds.
func DurationMs(text string, position domain.Position) int {
	switch position {
	case domain.PositionTop, domain.PositionBottom:
		return fixedDurationMs
	case domain.PositionScroll:
	}

	n := len([]rune(text))

	return max(minScrollDurationMs, min(minScrollDurationMs+msPerRune*n, maxScrollDurationMs))
}

// TextWidth estimates the rendered pixel width of the text at the given
// size: full-width glyphs take one font height, ascii takes half.
func TextWidth(text string, size domain.Size) float64 {
	font := size.FontPx()

	var width float64
	for _, r := range text {
		if r < 128 {
			width += font / 2
		} else {
			width += font
		}
	}

	return width
}

func (s *Scheduler) laneY(lane int) float64 {
	return s.cfg.TopMargin + float64(lane)*(s.cfg.LaneHeight+s.cfg.LaneMargin)
}

// Assign places a comment with the given style and text width. Fixed
// positions map to deterministic lanes and skip collision checking; the
// scroll path runs the trajectory collision scan.
func (s *Scheduler) Assign(position domain.Position, textWidth float64, durationMs int) Placement {
	switch position {
	case domain.PositionTop:
		return s.assignFixed(0, textWidth, durationMs)
	case domain.PositionBottom:
		return s.assignFixed(s.cfg.TotalLanes-1, textWidth, durationMs)
	case domain.PositionScroll:
	}

	return s.assignScrolling(textWidth, durationMs)
}

func (s *Scheduler) assignFixed(lane int, textWidth float64, durationMs int) Placement {
	return Placement{
		Lane:       lane,
		X:          (s.cfg.ScreenWidth - textWidth) / 2,
		Y:          s.laneY(lane),
		Speed:      0,
		DurationMs: durationMs,
	}
}

func (s *Scheduler) assignScrolling(textWidth float64, durationMs int) Placement {
	nowMs := s.now().UnixMilli()
	s.prune(nowMs)

	// the comment fully crosses screenWidth + textWidth px within its duration
	speed := (s.cfg.ScreenWidth + textWidth) * 1000 / float64(durationMs)

	candidate := trajectory{
		startTimeMs: nowMs,
		endTimeMs:   nowMs + int64(durationMs),
		startX:      s.cfg.ScreenWidth,
		width:       textWidth,
		speed:       speed,
	}

	lane, fallback := s.pickLane(candidate)
	s.lanes[lane] = append(s.lanes[lane], candidate)

	return Placement{
		Lane:       lane,
		X:          candidate.startX,
		Y:          s.laneY(lane),
		Speed:      speed,
		DurationMs: durationMs,
		Fallback:   fallback,
	}
}

func (s *Scheduler) pickLane(candidate trajectory) (int, bool) {
	for lane, trs := range s.lanes {
		free := true
		for _, tr := range trs {
			if s.collides(candidate, tr) {
				free = false
				break
			}
		}
		if free {
			return lane, false
		}
	}

	// every lane collides: least-occupied fallback, lowest index on ties
	best := 0
	for lane := 1; lane < len(s.lanes); lane++ {
		if len(s.lanes[lane]) < len(s.lanes[best]) {
			best = lane
		}
	}

	return best, true
}

func (s *Scheduler) collides(a, b trajectory) bool {
	overlapStart := max(a.startTimeMs, b.startTimeMs)
	overlapEnd := min(a.endTimeMs, b.endTimeMs)
	if overlapStart > overlapEnd {
		return false
	}

	ax := a.xAt(overlapStart)
	bx := b.xAt(overlapStart)

	// horizontal intervals are [x - width, x]; separated means a gap of at
	// least the collision margin between them
	if ax-a.width >= bx+s.cfg.CollisionMarginPx {
		return false
	}
	if bx-b.width >= ax+s.cfg.CollisionMarginPx {
		return false
	}

	return true
}

// prune drops trajectories whose window elapsed, with a grace margin, to
// bound memory. Called lazily on each scroll assignment.
func (s *Scheduler) prune(nowMs int64) {
	for lane, trs := range s.lanes {
		kept := trs[:0]
		for _, tr := range trs {
			if tr.endTimeMs+s.cfg.GraceMs >= nowMs {
				kept = append(kept, tr)
			}
		}
		s.lanes[lane] = kept
	}
}
