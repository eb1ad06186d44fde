package room

import (
	"context"

	"github.com/danmakutv/server/internal/repository/connection"
)

// getClientsByRoomId resolves the room's subscriber ids to live clients,
// excluding excludeClientId when non-empty. Ids without a live connection
// are skipped: the subscriber list may briefly lag a disconnect.
func (s *service) getClientsByRoomId(ctx context.Context, roomId, excludeClientId string) []*connection.Client {
	clientIds, err := s.roomRepo.GetSubscriberIds(ctx, roomId)
	if err != nil {
		return nil
	}

	clients := make([]*connection.Client, 0, len(clientIds))
	for _, clientId := range clientIds {
		if clientId == excludeClientId {
			continue
		}

		client, err := s.clientRepo.GetClient(clientId)
		if err != nil {
			continue
		}

		clients = append(clients, client)
	}

	return clients
}

// submitterKey is the rate-limit and moderation identity: the user id
// when known, otherwise the connection-scoped pseudo-identity.
func submitterKey(userId *string, clientId string) string {
	if userId != nil {
		return *userId
	}

	return "anon:" + clientId
}
