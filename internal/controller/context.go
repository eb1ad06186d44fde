package controller

import "context"

type contextKey int

const (
	roomIdCtxKey contextKey = iota
	clientIdCtxKey
	userIdCtxKey
)

func (c controller) getRoomIdFromCtx(ctx context.Context) string {
	roomId, ok := ctx.Value(roomIdCtxKey).(string)
	if !ok {
		return ""
	}

	return roomId
}

func (c controller) getClientIdFromCtx(ctx context.Context) string {
	clientId, ok := ctx.Value(clientIdCtxKey).(string)
	if !ok {
		return ""
	}

	return clientId
}

func (c controller) getUserIdFromCtx(ctx context.Context) *string {
	userId, ok := ctx.Value(userIdCtxKey).(*string)
	if !ok {
		return nil
	}

	return userId
}
