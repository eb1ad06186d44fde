package room

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gorilla/websocket"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danmakutv/server/internal/domain"
	"github.com/danmakutv/server/internal/policy"
	"github.com/danmakutv/server/internal/registry"
	"github.com/danmakutv/server/internal/repository/connection/inmemory"
	roomRedis "github.com/danmakutv/server/internal/repository/redis"
	"github.com/danmakutv/server/internal/scheduler"
)

func newTestService(t *testing.T) (*service, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rc := goredis.NewClient(&goredis.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { rc.Close() })

	roomRepo := roomRedis.NewRepo(rc, slog.Default(), 100)

	svc := NewService(roomRepo, inmemory.NewRepo(), registry.New(), policy.New(&policy.Config{}), &Config{
		Scheduler: scheduler.Config{},
	})

	return svc, mr
}

func createLiveRoom(t *testing.T, svc *service, params *CreateRoomParams) string {
	t.Helper()

	ctx := context.Background()

	resp, err := svc.CreateRoom(ctx, params)
	require.NoError(t, err)
	require.NotEmpty(t, resp.RoomId)
	require.NoError(t, svc.StartBroadcast(ctx, resp.RoomId))

	return resp.RoomId
}

func TestRoomLifecycle(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// create room
	createResp, err := svc.CreateRoom(ctx, &CreateRoomParams{
		OwnerId:        "owner-1",
		AllowComments:  true,
		AllowAnonymous: true,
	})
	require.NoError(t, err)

	room, err := svc.GetRoom(ctx, createResp.RoomId)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusWaiting, room.Status)
	assert.Equal(t, "owner-1", room.OwnerId)

	// joining before the broadcast starts is rejected
	_, err = svc.JoinRoom(ctx, &JoinRoomParams{
		RoomId: createResp.RoomId,
		Conn:   &websocket.Conn{},
	})
	assert.ErrorIs(t, err, ErrRoomNotLive)

	// go live
	require.NoError(t, svc.StartBroadcast(ctx, createResp.RoomId))
	room, err = svc.GetRoom(ctx, createResp.RoomId)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusLive, room.Status)

	// starting twice is an invalid transition
	assert.ErrorIs(t, svc.StartBroadcast(ctx, createResp.RoomId), domain.ErrInvalidTransition)

	// two viewers join
	join1, err := svc.JoinRoom(ctx, &JoinRoomParams{
		RoomId: createResp.RoomId,
		Conn:   &websocket.Conn{},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, join1.ViewerCount)
	assert.Empty(t, join1.History)
	assert.Empty(t, join1.Others)

	join2, err := svc.JoinRoom(ctx, &JoinRoomParams{
		RoomId: createResp.RoomId,
		Conn:   &websocket.Conn{},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, join2.ViewerCount)
	require.Len(t, join2.Others, 1)
	assert.Equal(t, join1.Client.Id, join2.Others[0].Id)

	// one leaves
	leaveResp, err := svc.LeaveRoom(ctx, &LeaveRoomParams{
		RoomId:   createResp.RoomId,
		ClientId: join1.Client.Id,
	})
	require.NoError(t, err)
	assert.Equal(t, 1, leaveResp.ViewerCount)

	// end broadcast: the remaining subscriber is returned for disconnect
	// and the room state is purged
	endResp, err := svc.EndBroadcast(ctx, createResp.RoomId)
	require.NoError(t, err)
	require.Len(t, endResp.Clients, 1)
	assert.Equal(t, join2.Client.Id, endResp.Clients[0].Id)

	_, err = svc.GetRoom(ctx, createResp.RoomId)
	assert.ErrorIs(t, err, ErrRoomNotFound)
}

func TestJoinRoomFailureLeavesNoTrace(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	roomId := createLiveRoom(t, svc, &CreateRoomParams{
		OwnerId:        "owner-1",
		AllowComments:  true,
		AllowAnonymous: true,
	})

	// a non-JSON entry in the history ring makes the replay fetch fail
	historyKey := "room:" + roomId + ":history"
	_, err := mr.Lpush(historyKey, "not json")
	require.NoError(t, err)

	_, err = svc.JoinRoom(ctx, &JoinRoomParams{RoomId: roomId, Conn: &websocket.Conn{}})
	require.Error(t, err)

	regRoom, err := svc.registry.Get(roomId)
	require.NoError(t, err)
	assert.Zero(t, regRoom.ViewerCount(), "failed join must not count as a viewer")

	ids, err := svc.roomRepo.GetSubscriberIds(ctx, roomId)
	require.NoError(t, err)
	assert.Empty(t, ids, "failed join must not leave a subscriber entry")

	// with the ring repaired the same connection can join cleanly
	mr.Del(historyKey)
	joinResp, err := svc.JoinRoom(ctx, &JoinRoomParams{RoomId: roomId, Conn: &websocket.Conn{}})
	require.NoError(t, err)
	assert.Equal(t, 1, joinResp.ViewerCount)
}

func TestSubmitCommentBroadcastsToAllSubscribers(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	roomId := createLiveRoom(t, svc, &CreateRoomParams{
		OwnerId:        "owner-1",
		AllowComments:  true,
		AllowAnonymous: true,
	})

	join1, err := svc.JoinRoom(ctx, &JoinRoomParams{RoomId: roomId, Conn: &websocket.Conn{}})
	require.NoError(t, err)
	join2, err := svc.JoinRoom(ctx, &JoinRoomParams{RoomId: roomId, Conn: &websocket.Conn{}})
	require.NoError(t, err)
	require.Equal(t, 2, join2.ViewerCount)

	resp, err := svc.SubmitComment(ctx, &SubmitCommentParams{
		RoomId:   roomId,
		ClientId: join1.Client.Id,
		Text:     "great play",
		Vpos:     1500,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, resp.Comment.Id)
	assert.Equal(t, "great play", resp.Comment.Text)
	assert.Equal(t, domain.DefaultStyle(), resp.Comment.Style, "anonymous gets the default style")
	assert.Equal(t, 1500, resp.Comment.Vpos)
	assert.True(t, resp.Comment.Anonymous())
	assert.Positive(t, resp.Comment.Speed)
	assert.Positive(t, resp.Comment.DurationMs)
	assert.Len(t, resp.Clients, 2, "sender included in the broadcast set")

	// a late joiner replays the comment from history
	join3, err := svc.JoinRoom(ctx, &JoinRoomParams{RoomId: roomId, Conn: &websocket.Conn{}})
	require.NoError(t, err)
	require.Len(t, join3.History, 1)
	assert.Equal(t, resp.Comment.Id, join3.History[0].Id)
}

func TestSubmitCommentStyleClamping(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	roomId := createLiveRoom(t, svc, &CreateRoomParams{
		OwnerId:        "owner-1",
		AllowComments:  true,
		AllowAnonymous: true,
	})

	require.NoError(t, svc.RegisterUser(ctx, &RegisterUserParams{UserId: "novice", Username: "novice", Level: 1}))
	require.NoError(t, svc.RegisterUser(ctx, &RegisterUserParams{UserId: "regular", Username: "regular", Level: 3}))

	join, err := svc.JoinRoom(ctx, &JoinRoomParams{RoomId: roomId, Conn: &websocket.Conn{}})
	require.NoError(t, err)

	noviceId := "novice"
	regularId := "regular"

	// anonymous requesting premium style is silently downgraded
	resp, err := svc.SubmitComment(ctx, &SubmitCommentParams{
		RoomId:   roomId,
		ClientId: join.Client.Id,
		Text:     "first",
		Command:  "ue red big",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultStyle(), resp.Comment.Style)

	// level 1 is below both the color and the size gates
	resp, err = svc.SubmitComment(ctx, &SubmitCommentParams{
		RoomId:   roomId,
		ClientId: join.Client.Id,
		UserId:   &noviceId,
		Text:     "second",
		Command:  "big red",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SizeMedium, resp.Comment.Style.Size)
	assert.Equal(t, domain.ColorWhite, resp.Comment.Style.Color)
	assert.Equal(t, 1, resp.Comment.UserLevel)

	// level 3 keeps big
	resp, err = svc.SubmitComment(ctx, &SubmitCommentParams{
		RoomId:   roomId,
		ClientId: join.Client.Id,
		UserId:   &regularId,
		Text:     "third",
		Command:  "big",
	})
	require.NoError(t, err)
	assert.Equal(t, domain.SizeBig, resp.Comment.Style.Size)
}

func TestSubmitCommentGates(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	// waiting room rejects submissions
	createResp, err := svc.CreateRoom(ctx, &CreateRoomParams{
		OwnerId:        "owner-1",
		AllowComments:  true,
		AllowAnonymous: true,
	})
	require.NoError(t, err)

	_, err = svc.SubmitComment(ctx, &SubmitCommentParams{
		RoomId:   createResp.RoomId,
		ClientId: "c1",
		Text:     "hello",
	})
	assertRejected(t, err, RejectKindRoomNotLive)

	// comments disabled
	disabledRoomId := createLiveRoom(t, svc, &CreateRoomParams{
		OwnerId:        "owner-1",
		AllowComments:  false,
		AllowAnonymous: true,
	})
	_, err = svc.SubmitComment(ctx, &SubmitCommentParams{
		RoomId:   disabledRoomId,
		ClientId: "c1",
		Text:     "hello",
	})
	assertRejected(t, err, RejectKindCommentsDisabled)

	// anonymous not allowed
	registeredOnlyRoomId := createLiveRoom(t, svc, &CreateRoomParams{
		OwnerId:       "owner-1",
		AllowComments: true,
	})
	_, err = svc.SubmitComment(ctx, &SubmitCommentParams{
		RoomId:   registeredOnlyRoomId,
		ClientId: "c1",
		Text:     "hello",
	})
	assertRejected(t, err, RejectKindValidation)

	// markup-only text sanitizes to empty
	openRoomId := createLiveRoom(t, svc, &CreateRoomParams{
		OwnerId:        "owner-1",
		AllowComments:  true,
		AllowAnonymous: true,
	})
	_, err = svc.SubmitComment(ctx, &SubmitCommentParams{
		RoomId:   openRoomId,
		ClientId: "c1",
		Text:     "<b></b>  ",
	})
	assertRejected(t, err, RejectKindValidation)
}

func TestSubmitCommentCooldown(t *testing.T) {
	svc, mr := newTestService(t)
	ctx := context.Background()

	roomId := createLiveRoom(t, svc, &CreateRoomParams{
		OwnerId:           "owner-1",
		CommentCooldownMs: 5000,
		AllowComments:     true,
		AllowAnonymous:    true,
	})

	_, err := svc.SubmitComment(ctx, &SubmitCommentParams{
		RoomId:   roomId,
		ClientId: "c1",
		Text:     "first comment",
	})
	require.NoError(t, err)

	// immediate retry is rate limited, with the remaining wait reported
	_, err = svc.SubmitComment(ctx, &SubmitCommentParams{
		RoomId:   roomId,
		ClientId: "c1",
		Text:     "second comment",
	})
	rejectErr := assertRejected(t, err, RejectKindRateLimited)
	assert.Positive(t, rejectErr.RetryAfterMs)
	assert.LessOrEqual(t, rejectErr.RetryAfterMs, int64(5000))

	// a different submitter is not affected
	_, err = svc.SubmitComment(ctx, &SubmitCommentParams{
		RoomId:   roomId,
		ClientId: "c2",
		Text:     "other viewer",
	})
	require.NoError(t, err)

	// after the cooldown elapses the retry goes through
	mr.FastForward(5 * time.Second)
	_, err = svc.SubmitComment(ctx, &SubmitCommentParams{
		RoomId:   roomId,
		ClientId: "c1",
		Text:     "second comment",
	})
	require.NoError(t, err)
}

func TestSubmitCommentModeration(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	roomId := createLiveRoom(t, svc, &CreateRoomParams{
		OwnerId:        "owner-1",
		AllowComments:  true,
		AllowAnonymous: true,
	})

	_, err := svc.SubmitComment(ctx, &SubmitCommentParams{
		RoomId:   roomId,
		ClientId: "c1",
		Text:     "STOP SHOUTING PLEASE",
	})
	rejectErr := assertRejected(t, err, RejectKindModeration)
	assert.Equal(t, policy.ReasonSpam, rejectErr.Reason)

	// near-duplicate of the previous accepted comment
	_, err = svc.SubmitComment(ctx, &SubmitCommentParams{
		RoomId:   roomId,
		ClientId: "c1",
		Text:     "what a great goal",
	})
	require.NoError(t, err)

	_, err = svc.SubmitComment(ctx, &SubmitCommentParams{
		RoomId:   roomId,
		ClientId: "c1",
		Text:     "what a great goal!",
	})
	rejectErr = assertRejected(t, err, RejectKindModeration)
	assert.Equal(t, policy.ReasonDuplicate, rejectErr.Reason)
}

func TestRepeatedViolationsBlockTheSubmitter(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	roomId := createLiveRoom(t, svc, &CreateRoomParams{
		OwnerId:        "owner-1",
		AllowComments:  true,
		AllowAnonymous: true,
	})

	// five violations hit the default threshold
	for i := 0; i < 5; i++ {
		_, err := svc.SubmitComment(ctx, &SubmitCommentParams{
			RoomId:   roomId,
			ClientId: "c1",
			Text:     fmt.Sprintf("join now https://spam.example/%d", i),
		})
		rejectErr := assertRejected(t, err, RejectKindModeration)
		assert.Equal(t, policy.ReasonSpam, rejectErr.Reason)
	}

	// the block now rejects even a harmless comment
	_, err := svc.SubmitComment(ctx, &SubmitCommentParams{
		RoomId:   roomId,
		ClientId: "c1",
		Text:     "sorry about that",
	})
	rejectErr := assertRejected(t, err, RejectKindModeration)
	assert.Equal(t, "temporarily blocked", rejectErr.Reason)
	assert.Positive(t, rejectErr.RetryAfterMs)

	// other submitters are unaffected
	_, err = svc.SubmitComment(ctx, &SubmitCommentParams{
		RoomId:   roomId,
		ClientId: "c2",
		Text:     "still here",
	})
	require.NoError(t, err)
}

func TestUpdateRoomSettings(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	roomId := createLiveRoom(t, svc, &CreateRoomParams{
		OwnerId:        "owner-1",
		AllowComments:  true,
		AllowAnonymous: true,
	})

	err := svc.UpdateRoomSettings(ctx, &UpdateRoomSettingsParams{
		RoomId:       roomId,
		SenderUserId: "intruder",
	})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	require.NoError(t, svc.UpdateRoomSettings(ctx, &UpdateRoomSettingsParams{
		RoomId:            roomId,
		SenderUserId:      "owner-1",
		CommentCooldownMs: 1000,
		AllowComments:     true,
	}))

	room, err := svc.GetRoom(ctx, roomId)
	require.NoError(t, err)
	assert.Equal(t, 1000, room.Settings.CommentCooldownMs)
	assert.False(t, room.Settings.AllowAnonymous)
}

func TestDeleteComment(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	roomId := createLiveRoom(t, svc, &CreateRoomParams{
		OwnerId:        "owner-1",
		AllowComments:  true,
		AllowAnonymous: true,
	})

	resp, err := svc.SubmitComment(ctx, &SubmitCommentParams{
		RoomId:   roomId,
		ClientId: "c1",
		Text:     "to be removed",
	})
	require.NoError(t, err)

	_, err = svc.DeleteComment(ctx, &DeleteCommentParams{
		RoomId:       roomId,
		SenderUserId: "not-the-owner",
		CommentId:    resp.Comment.Id,
	})
	assert.ErrorIs(t, err, ErrPermissionDenied)

	_, err = svc.DeleteComment(ctx, &DeleteCommentParams{
		RoomId:       roomId,
		SenderUserId: "owner-1",
		CommentId:    resp.Comment.Id,
	})
	require.NoError(t, err)

	_, err = svc.DeleteComment(ctx, &DeleteCommentParams{
		RoomId:       roomId,
		SenderUserId: "owner-1",
		CommentId:    resp.Comment.Id,
	})
	assert.ErrorIs(t, err, ErrCommentNotFound)
}

func assertRejected(t *testing.T, err error, kind string) *RejectError {
	t.Helper()

	var rejectErr *RejectError
	require.True(t, errors.As(err, &rejectErr), "expected a rejection, got %v", err)
	assert.Equal(t, kind, rejectErr.Kind)

	return rejectErr
}
