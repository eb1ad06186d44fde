package room

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"

	"github.com/danmakutv/server/internal/domain"
	"github.com/danmakutv/server/internal/registry"
	"github.com/danmakutv/server/internal/repository"
	"github.com/danmakutv/server/internal/repository/connection"
)

var ErrRoomNotLive = errors.New("room is not live")

type JoinRoomParams struct {
	RoomId string
	UserId *string
	Conn   *websocket.Conn
}

type JoinRoomResponse struct {
	Client      *connection.Client
	ViewerCount int
	History     []domain.Comment
	Others      []*connection.Client
}

// JoinRoom registers the connection as a subscriber of a live room and
// returns the recent comment history for replay plus the other
// subscribers to notify.
func (s *service) JoinRoom(ctx context.Context, params *JoinRoomParams) (JoinRoomResponse, error) {
	room, err := s.GetRoom(ctx, params.RoomId)
	if err != nil {
		return JoinRoomResponse{}, err
	}

	if room.Status != domain.StatusLive {
		return JoinRoomResponse{}, ErrRoomNotLive
	}

	regRoom, err := s.registry.Get(params.RoomId)
	if err != nil {
		return JoinRoomResponse{}, err
	}

	clientId := uuid.NewString()
	client := connection.NewClient(clientId, params.RoomId, params.Conn)

	if err := s.clientRepo.Add(client); err != nil {
		return JoinRoomResponse{}, fmt.Errorf("failed to add client: %w", err)
	}

	if err := s.roomRepo.AddSubscriber(ctx, &repository.AddSubscriberParams{
		RoomId:   params.RoomId,
		ClientId: clientId,
	}); err != nil {
		s.clientRepo.RemoveByClientId(clientId)
		return JoinRoomResponse{}, fmt.Errorf("failed to add subscriber: %w", err)
	}

	viewerCount := regRoom.AddViewer()

	history, err := s.roomRepo.GetCommentHistory(ctx, params.RoomId)
	if err != nil {
		// a failed join must leave no trace: undo the viewer increment,
		// the subscriber entry and the client registration
		regRoom.RemoveViewer()
		s.roomRepo.RemoveSubscriber(ctx, &repository.RemoveSubscriberParams{
			RoomId:   params.RoomId,
			ClientId: clientId,
		})
		s.clientRepo.RemoveByClientId(clientId)

		return JoinRoomResponse{}, fmt.Errorf("failed to get comment history: %w", err)
	}

	return JoinRoomResponse{
		Client:      client,
		ViewerCount: viewerCount,
		History:     history,
		Others:      s.getClientsByRoomId(ctx, params.RoomId, clientId),
	}, nil
}

type LeaveRoomParams struct {
	RoomId   string
	ClientId string
}

type LeaveRoomResponse struct {
	ViewerCount int
	Others      []*connection.Client
}

// LeaveRoom removes the subscriber. It deliberately does not end the room
// when the last subscriber leaves: room lifecycle is an owner decision.
func (s *service) LeaveRoom(ctx context.Context, params *LeaveRoomParams) (LeaveRoomResponse, error) {
	if err := s.roomRepo.RemoveSubscriber(ctx, &repository.RemoveSubscriberParams{
		RoomId:   params.RoomId,
		ClientId: params.ClientId,
	}); err != nil {
		return LeaveRoomResponse{}, fmt.Errorf("failed to remove subscriber: %w", err)
	}

	if err := s.clientRepo.RemoveByClientId(params.ClientId); err != nil && !errors.Is(err, connection.ErrNotFound) {
		return LeaveRoomResponse{}, err
	}

	viewerCount := 0
	if regRoom, err := s.registry.Get(params.RoomId); err == nil {
		viewerCount = regRoom.RemoveViewer()
	} else if !errors.Is(err, registry.ErrNotRegistered) {
		return LeaveRoomResponse{}, err
	}

	return LeaveRoomResponse{
		ViewerCount: viewerCount,
		Others:      s.getClientsByRoomId(ctx, params.RoomId, params.ClientId),
	}, nil
}
