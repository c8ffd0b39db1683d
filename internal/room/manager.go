// Package room manages the game lobby. A room holds up to two seated
// players; once both seats are taken the host can start a match, which
// hands the room over to the game engine.
package room

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomFull       = errors.New("room is full")
	ErrWrongPassword  = errors.New("wrong room password")
	ErrAlreadySeated  = errors.New("player already seated in this room")
	ErrRoomLimit      = errors.New("room limit reached")
	ErrNotSeated      = errors.New("player is not in this room")
	ErrRoomNotWaiting = errors.New("room is not waiting for players")
)

// State describes the room lifecycle.
type State string

const (
	StateWaiting State = "WAITING"
	StatePlaying State = "PLAYING"
	StateClosed  State = "CLOSED"
)

// Room is a single lobby entry. Fields are read under the manager lock.
type Room struct {
	ID           string
	Name         string
	HostID       string
	GuestID      string
	State        State
	GameID       string
	CreatedAt    time.Time
	LastActivity time.Time

	passwordHash []byte
}

// Private reports whether joining requires a password.
func (r *Room) Private() bool { return len(r.passwordHash) > 0 }

// Full reports whether both seats are taken.
func (r *Room) Full() bool { return r.HostID != "" && r.GuestID != "" }

// Info is the redacted view of a room returned by listings.
type Info struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	HostID    string    `json:"host_id"`
	GuestID   string    `json:"guest_id,omitempty"`
	State     State     `json:"state"`
	Private   bool      `json:"private"`
	GameID    string    `json:"game_id,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Manager tracks lobby rooms.
type Manager struct {
	logger   *zap.Logger
	maxRooms int

	mu    sync.RWMutex
	rooms map[string]*Room
}

// NewManager creates a room manager. maxRooms caps concurrently open
// rooms; zero or negative means unlimited.
func NewManager(maxRooms int, logger *zap.Logger) *Manager {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Manager{
		logger:   logger,
		maxRooms: maxRooms,
		rooms:    make(map[string]*Room),
	}
}

// Create opens a new room hosted by hostID. An empty password makes the
// room public.
func (m *Manager) Create(name, hostID, password string) (*Room, error) {
	if name == "" {
		return nil, errors.New("room name must not be empty")
	}
	if hostID == "" {
		return nil, errors.New("host id must not be empty")
	}

	var hash []byte
	if password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash room password: %w", err)
		}
		hash = h
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.maxRooms > 0 && len(m.rooms) >= m.maxRooms {
		return nil, ErrRoomLimit
	}

	now := time.Now()
	r := &Room{
		ID:           uuid.NewString(),
		Name:         name,
		HostID:       hostID,
		State:        StateWaiting,
		CreatedAt:    now,
		LastActivity: now,
		passwordHash: hash,
	}
	m.rooms[r.ID] = r

	m.logger.Info("room created",
		zap.String("room_id", r.ID),
		zap.String("host_id", hostID),
		zap.Bool("private", r.Private()),
	)
	return r, nil
}

// Join seats playerID in the guest seat.
func (m *Manager) Join(roomID, playerID, password string) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	if r.State != StateWaiting {
		return nil, ErrRoomNotWaiting
	}
	if r.HostID == playerID || r.GuestID == playerID {
		return nil, ErrAlreadySeated
	}
	if r.Full() {
		return nil, ErrRoomFull
	}
	if r.Private() {
		if err := bcrypt.CompareHashAndPassword(r.passwordHash, []byte(password)); err != nil {
			return nil, ErrWrongPassword
		}
	}

	r.GuestID = playerID
	r.LastActivity = time.Now()

	m.logger.Info("player joined room",
		zap.String("room_id", roomID),
		zap.String("player_id", playerID),
	)
	return r, nil
}

// Leave removes playerID from the room. A leaving host promotes the
// guest; an empty room is deleted.
func (m *Manager) Leave(roomID, playerID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[roomID]
	if !ok {
		return ErrRoomNotFound
	}

	switch playerID {
	case r.HostID:
		r.HostID = r.GuestID
		r.GuestID = ""
	case r.GuestID:
		r.GuestID = ""
	default:
		return ErrNotSeated
	}
	r.LastActivity = time.Now()

	if r.HostID == "" {
		delete(m.rooms, roomID)
		m.logger.Info("room closed", zap.String("room_id", roomID))
		return nil
	}

	m.logger.Info("player left room",
		zap.String("room_id", roomID),
		zap.String("player_id", playerID),
	)
	return nil
}

// MarkStarted transitions a full room into play and records the engine
// game handling it.
func (m *Manager) MarkStarted(roomID, gameID string) (*Room, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	r, ok := m.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	if r.State != StateWaiting {
		return nil, ErrRoomNotWaiting
	}
	if !r.Full() {
		return nil, errors.New("room needs two players to start")
	}

	r.State = StatePlaying
	r.GameID = gameID
	r.LastActivity = time.Now()

	m.logger.Info("room started",
		zap.String("room_id", roomID),
		zap.String("game_id", gameID),
	)
	return r, nil
}

// Close removes a room regardless of state.
func (m *Manager) Close(roomID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.rooms[roomID]; ok {
		delete(m.rooms, roomID)
		m.logger.Info("room closed", zap.String("room_id", roomID))
	}
}

// Get returns the room with the given id.
func (m *Manager) Get(roomID string) (*Room, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.rooms[roomID]
	if !ok {
		return nil, ErrRoomNotFound
	}
	return r, nil
}

// List returns redacted info for every open room.
func (m *Manager) List() []Info {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Info, 0, len(m.rooms))
	for _, r := range m.rooms {
		out = append(out, Info{
			ID:        r.ID,
			Name:      r.Name,
			HostID:    r.HostID,
			GuestID:   r.GuestID,
			State:     r.State,
			Private:   r.Private(),
			GameID:    r.GameID,
			CreatedAt: r.CreatedAt,
		})
	}
	return out
}

// SweepIdle deletes waiting rooms with no activity for longer than
// maxIdle and returns how many were removed.
func (m *Manager) SweepIdle(maxIdle time.Duration) int {
	m.mu.Lock()
	defer m.mu.Unlock()

	cutoff := time.Now().Add(-maxIdle)
	removed := 0
	for id, r := range m.rooms {
		if r.State == StateWaiting && r.LastActivity.Before(cutoff) {
			delete(m.rooms, id)
			removed++
			m.logger.Info("idle room swept", zap.String("room_id", id))
		}
	}
	return removed
}
