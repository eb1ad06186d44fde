package domain

import (
	"errors"
	"fmt"
)

var ErrInvalidTransition = errors.New("invalid room status transition")

// RoomStatus follows waiting -> live -> ended; ended is terminal.
type RoomStatus int

const (
	StatusWaiting RoomStatus = iota
	StatusLive
	StatusEnded
)

func (s RoomStatus) String() string {
	switch s {
	case StatusWaiting:
		return "waiting"
	case StatusLive:
		return "live"
	case StatusEnded:
		return "ended"
	}

	return fmt.Sprintf("RoomStatus(%d)", int(s))
}

func (s RoomStatus) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

func (s *RoomStatus) UnmarshalText(text []byte) error {
	switch string(text) {
	case "waiting":
		*s = StatusWaiting
	case "live":
		*s = StatusLive
	case "ended":
		*s = StatusEnded
	default:
		return fmt.Errorf("unknown room status %q", text)
	}

	return nil
}

var transitions = map[RoomStatus][]RoomStatus{
	StatusWaiting: {StatusLive},
	StatusLive:    {StatusEnded},
	StatusEnded:   {},
}

// Transition returns the next status or ErrInvalidTransition for any edge
// not in the table.
func (s RoomStatus) Transition(next RoomStatus) (RoomStatus, error) {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return next, nil
		}
	}

	return s, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s, next)
}

type RoomSettings struct {
	CommentCooldownMs int  `json:"comment_cooldown_ms"`
	AllowComments     bool `json:"allow_comments"`
	AllowAnonymous    bool `json:"allow_anonymous"`
	ModerationLevel   int  `json:"moderation_level"`
}

// Room is a read projection of collaborator-owned room state.
type Room struct {
	Id       string       `json:"id"`
	OwnerId  string       `json:"owner_id"`
	Status   RoomStatus   `json:"status"`
	Settings RoomSettings `json:"settings"`
}

type User struct {
	Id       string `json:"id"`
	Username string `json:"username"`
	Level    int    `json:"level"`
}
