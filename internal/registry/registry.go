// Package registry owns the live in-process state of broadcasting rooms.
// There is at most one scheduler instance per room, and all lane
// assignment for a room is serialized through the room's mutex.
package registry

import (
	"errors"
	"sync"

	"github.com/danmakutv/server/internal/domain"
	"github.com/danmakutv/server/internal/scheduler"
)

var (
	ErrAlreadyRegistered = errors.New("room already registered")
	ErrNotRegistered     = errors.New("room not registered")
)

type Room struct {
	mu          sync.Mutex
	scheduler   *scheduler.Scheduler
	viewerCount int
}

// Place runs a lane assignment under the room lock, so two simultaneous
// submissions can not interleave inside the collision scan.
func (r *Room) Place(position domain.Position, textWidth float64, durationMs int) scheduler.Placement {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.scheduler.Assign(position, textWidth, durationMs)
}

func (r *Room) TotalLanes() int {
	return r.scheduler.TotalLanes()
}

func (r *Room) AddViewer() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.viewerCount++

	return r.viewerCount
}

func (r *Room) RemoveViewer() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.viewerCount > 0 {
		r.viewerCount--
	}

	return r.viewerCount
}

func (r *Room) ViewerCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.viewerCount
}

type Registry struct {
	mu    sync.RWMutex
	rooms map[string]*Room
}

func New() *Registry {
	return &Registry{rooms: make(map[string]*Room)}
}

// Register creates the room entry with its single scheduler instance.
// Registering an already-registered room is an error.
func (r *Registry) Register(roomId string, s *scheduler.Scheduler) (*Room, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rooms[roomId]; exists {
		return nil, ErrAlreadyRegistered
	}

	room := &Room{scheduler: s}
	r.rooms[roomId] = room

	return room, nil
}

func (r *Registry) Unregister(roomId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.rooms[roomId]; !exists {
		return ErrNotRegistered
	}

	delete(r.rooms, roomId)

	return nil
}

func (r *Registry) Get(roomId string) (*Room, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	room, exists := r.rooms[roomId]
	if !exists {
		return nil, ErrNotRegistered
	}

	return room, nil
}
