package connection

import (
	"errors"

	"github.com/gorilla/websocket"
)

var (
	ErrAlreadyExists = errors.New("connection already exists")
	ErrNotFound      = errors.New("connection not found")
)

// Client is one subscriber connection. Outbound frames go through Send so
// that no caller ever writes to the socket while holding room state; the
// write pump owns the socket.
type Client struct {
	Id     string
	RoomId string
	Conn   *websocket.Conn
	Send   chan []byte
}

const sendBufferSize = 256

func NewClient(id, roomId string, conn *websocket.Conn) *Client {
	return &Client{
		Id:     id,
		RoomId: roomId,
		Conn:   conn,
		Send:   make(chan []byte, sendBufferSize),
	}
}

// Enqueue offers a frame without blocking. A full buffer means the
// subscriber is too slow; the caller drops it.
func (c *Client) Enqueue(frame []byte) bool {
	select {
	case c.Send <- frame:
		return true
	default:
		return false
	}
}
