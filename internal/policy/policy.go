// Package policy decides comment admissibility: it clamps requested styles
// to the submitter's level, classifies abusive content and tracks
// escalating moderation state.
package policy

import (
	"time"

	"github.com/danmakutv/server/internal/domain"
)

const (
	ReasonInappropriate = "inappropriate content"
	ReasonSpam          = "spam"
	ReasonTooFast       = "too fast"
	ReasonDuplicate     = "duplicate"
)

const (
	levelPremiumColor = 2
	levelBigSize      = 3
	levelFixedPos     = 4
)

// premiumColors are the command colors gated behind level 2; white is the
// only free color.
var premiumColors = map[string]struct{}{
	"#FF0000": {},
	"#FF8080": {},
	"#FFC000": {},
	"#FFFF00": {},
	"#00FF00": {},
	"#00FFFF": {},
	"#0000FF": {},
	"#C000FF": {},
	"#000000": {},
}

// Violation is a structured rejection verdict, never an error that
// crosses the submission boundary.
type Violation struct {
	Reason string
}

type Config struct {
	BannedWords        []string
	DuplicateThreshold float64
	ViolationThreshold int
}

type Policy struct {
	bannedWords        []string
	duplicateThreshold float64
	violationThreshold int
}

func New(cfg *Config) *Policy {
	p := Policy{
		bannedWords:        cfg.BannedWords,
		duplicateThreshold: cfg.DuplicateThreshold,
		violationThreshold: cfg.ViolationThreshold,
	}

	if p.bannedWords == nil {
		p.bannedWords = defaultBannedWords
	}
	if p.duplicateThreshold == 0 {
		p.duplicateThreshold = 0.8
	}
	if p.violationThreshold == 0 {
		p.violationThreshold = 5
	}

	return &p
}

// Clamp downgrades the requested style to what the submitter's level is
// entitled to. Anonymous submitters always get the full default style.
// Clamping is silent: it never rejects.
func (p Policy) Clamp(style domain.Style, level int, anonymous bool) domain.Style {
	if anonymous {
		return domain.DefaultStyle()
	}

	if style.Size == domain.SizeBig && level < levelBigSize {
		style.Size = domain.SizeMedium
	}
	if style.Position != domain.PositionScroll && level < levelFixedPos {
		style.Position = domain.PositionScroll
	}
	if _, premium := premiumColors[style.Color]; premium && level < levelPremiumColor {
		style.Color = domain.ColorWhite
	}

	return style
}

// Check classifies the text, independently of style. previousText is the
// submitter's immediately preceding comment in the room ("" if none).
// A nil return means the text is admissible.
func (p Policy) Check(text, previousText string) *Violation {
	if matchesBannedWord(text, p.bannedWords) {
		return &Violation{Reason: ReasonInappropriate}
	}
	if isRepeatedChar(text) || isAllCaps(text) || isExcessivePunctuation(text) || matchesSpamSignature(text) {
		return &Violation{Reason: ReasonSpam}
	}
	// strictly above the threshold; similarity of exactly 0.8 is admissible
	if previousText != "" && similarity(text, previousText) > p.duplicateThreshold {
		return &Violation{Reason: ReasonDuplicate}
	}

	return nil
}

// ShouldBlock reports whether the given violation count triggers an
// automatic temporary block.
func (p Policy) ShouldBlock(violations int) bool {
	return violations >= p.violationThreshold
}

// BlockDuration returns the escalating block tier for the count.
func (p Policy) BlockDuration(violations int) time.Duration {
	switch {
	case violations >= 10:
		return 24 * time.Hour
	case violations >= 5:
		return 6 * time.Hour
	default:
		return time.Hour
	}
}
