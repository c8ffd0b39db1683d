package game

import (
	"sync"
	"time"
)

// LogEntry is one recorded player command. The sequence of entries is
// enough to replay a game against the same shuffled decks.
type LogEntry struct {
	Seq      int       `json:"seq"`
	Turn     int       `json:"turn"`
	PlayerID string    `json:"player_id"`
	Event    string    `json:"event"`
	At       time.Time `json:"at"`
}

// ActionLog records the commands applied to a single game, in order.
type ActionLog struct {
	mu      sync.RWMutex
	entries []LogEntry
}

func newActionLog() *ActionLog {
	return &ActionLog{}
}

// Append records one successfully applied command.
func (l *ActionLog) Append(turn int, playerID, event string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.entries = append(l.entries, LogEntry{
		Seq:      len(l.entries) + 1,
		Turn:     turn,
		PlayerID: playerID,
		Event:    event,
		At:       time.Now(),
	})
}

// Entries returns a copy of the recorded commands.
func (l *ActionLog) Entries() []LogEntry {
	l.mu.RLock()
	defer l.mu.RUnlock()
	out := make([]LogEntry, len(l.entries))
	copy(out, l.entries)
	return out
}

// Len reports the number of recorded commands.
func (l *ActionLog) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.entries)
}
