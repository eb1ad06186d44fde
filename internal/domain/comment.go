package domain

import (
	"errors"
	"regexp"
	"unicode/utf8"
)

const MaxCommentLength = 200

var (
	ErrEmptyText       = errors.New("comment text is empty")
	ErrTextTooLong     = errors.New("comment text is too long")
	ErrLaneOutOfRange  = errors.New("lane index out of range")
	ErrInvalidSpeed    = errors.New("scrolling comment must have positive speed")
	ErrInvalidDuration = errors.New("comment duration must be positive")
	ErrInvalidColor    = errors.New("comment color must be a 6-hex-digit rgb value")
)

var colorPattern = regexp.MustCompile(`^#[0-9A-F]{6}$`)

// Comment is an immutable value: any change produces a new value.
type Comment struct {
	Id         string  `json:"id"`
	RoomId     string  `json:"room_id"`
	UserId     *string `json:"user_id"` // nil means anonymous
	Text       string  `json:"text"`
	Style      Style   `json:"style"`
	Lane       int     `json:"lane"`
	X          float64 `json:"x"`
	Y          float64 `json:"y"`
	Speed      float64 `json:"speed"` // px/s, 0 for non-scroll
	DurationMs int     `json:"duration_ms"`
	CreatedAt  int64   `json:"created_at"` // unix milliseconds
	Vpos       int     `json:"vpos"`       // playback offset, opaque here
	UserLevel  int     `json:"user_level"` // captured at posting time
}

func (c Comment) Anonymous() bool {
	return c.UserId == nil
}

// Validate checks the construction invariants. A comment failing any of
// them must never reach the lane scheduler or the broadcast path.
func (c Comment) Validate(totalLanes int) error {
	if c.Text == "" {
		return ErrEmptyText
	}
	if utf8.RuneCountInString(c.Text) > MaxCommentLength {
		return ErrTextTooLong
	}
	if c.Lane < 0 || c.Lane >= totalLanes {
		return ErrLaneOutOfRange
	}
	if c.Style.Position == PositionScroll && c.Speed <= 0 {
		return ErrInvalidSpeed
	}
	if c.DurationMs <= 0 {
		return ErrInvalidDuration
	}
	if !colorPattern.MatchString(c.Style.Color) {
		return ErrInvalidColor
	}

	return nil
}
