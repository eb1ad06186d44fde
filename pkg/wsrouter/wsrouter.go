package wsrouter

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/gorilla/websocket"
)

type message struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type HandlerFunc[T any] func(ctx context.Context, conn *websocket.Conn, payload T) error

type Middleware func(next HandlerFunc[any]) HandlerFunc[any]

type WSRouter struct {
	routes      map[string]HandlerFunc[any]
	middlewares []Middleware
}

func New(middlewares ...Middleware) *WSRouter {
	return &WSRouter{
		routes:      make(map[string]HandlerFunc[any]),
		middlewares: middlewares,
	}
}

// Handle registers a typed handler for the given message type. The raw
// payload is unmarshalled into T before the handler runs.
func Handle[T any](r *WSRouter, messageType string, handler HandlerFunc[T]) {
	h := func(ctx context.Context, conn *websocket.Conn, payload any) error {
		raw, ok := payload.(json.RawMessage)
		if !ok {
			return fmt.Errorf("unexpected payload type %T", payload)
		}

		var input T
		if len(raw) > 0 {
			if err := json.Unmarshal(raw, &input); err != nil {
				return fmt.Errorf("failed to unmarshal payload: %w", err)
			}
		}

		return handler(ctx, conn, input)
	}

	for i := len(r.middlewares) - 1; i >= 0; i-- {
		h = r.middlewares[i](h)
	}

	r.routes[messageType] = h
}

func (r *WSRouter) serve(ctx context.Context, conn *websocket.Conn, msg *message) (err error) {
	defer func() {
		// a malformed message must never take the connection down
		if rec := recover(); rec != nil {
			err = fmt.Errorf("panic in %q handler: %v", msg.Type, rec)
		}
	}()

	handler, exists := r.routes[msg.Type]
	if !exists {
		return fmt.Errorf("unknown message type %q", msg.Type)
	}

	ctx = context.WithValue(ctx, messageTypeKey, msg.Type)

	return handler(ctx, conn, json.RawMessage(msg.Payload))
}

// ServeConn reads messages from the connection until a read error occurs.
// Handler errors are reported through onError and do not end the loop.
func (r *WSRouter) ServeConn(ctx context.Context, conn *websocket.Conn, onError func(ctx context.Context, err error)) error {
	for {
		var msg message
		if err := conn.ReadJSON(&msg); err != nil {
			return err
		}

		if err := r.serve(ctx, conn, &msg); err != nil && onError != nil {
			onError(ctx, err)
		}
	}
}
