package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoomStatusTransition(t *testing.T) {
	tests := []struct {
		from, to RoomStatus
		ok       bool
	}{
		{StatusWaiting, StatusLive, true},
		{StatusLive, StatusEnded, true},
		{StatusWaiting, StatusEnded, false},
		{StatusWaiting, StatusWaiting, false},
		{StatusLive, StatusWaiting, false},
		{StatusLive, StatusLive, false},
		{StatusEnded, StatusWaiting, false},
		{StatusEnded, StatusLive, false},
		{StatusEnded, StatusEnded, false},
	}

	for _, tt := range tests {
		t.Run(tt.from.String()+"_to_"+tt.to.String(), func(t *testing.T) {
			got, err := tt.from.Transition(tt.to)
			if tt.ok {
				require.NoError(t, err)
				assert.Equal(t, tt.to, got)
			} else {
				require.ErrorIs(t, err, ErrInvalidTransition)
				assert.Equal(t, tt.from, got, "failed transition leaves the status unchanged")
			}
		})
	}
}

func TestRoomStatusText(t *testing.T) {
	for _, s := range []RoomStatus{StatusWaiting, StatusLive, StatusEnded} {
		text, err := s.MarshalText()
		require.NoError(t, err)

		var back RoomStatus
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, s, back)
	}

	var s RoomStatus
	assert.Error(t, s.UnmarshalText([]byte("paused")))
}
