package inmemory

import (
	"sync"

	"github.com/gorilla/websocket"

	"github.com/danmakutv/server/internal/repository/connection"
)

type repo struct {
	connList map[*websocket.Conn]string
	idList   map[string]*connection.Client
	mu       sync.RWMutex
}

func NewRepo() *repo {
	return &repo{
		connList: make(map[*websocket.Conn]string),
		idList:   make(map[string]*connection.Client),
	}
}

func (r *repo) Add(client *connection.Client) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.connList[client.Conn] != "" || r.idList[client.Id] != nil {
		return connection.ErrAlreadyExists
	}

	r.connList[client.Conn] = client.Id
	r.idList[client.Id] = client

	return nil
}

func (r *repo) RemoveByClientId(clientId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	client, ok := r.idList[clientId]
	if !ok {
		return connection.ErrNotFound
	}

	delete(r.connList, client.Conn)
	delete(r.idList, clientId)

	return nil
}

func (r *repo) GetClient(clientId string) (*connection.Client, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	client, ok := r.idList[clientId]
	if !ok {
		return nil, connection.ErrNotFound
	}

	return client, nil
}
