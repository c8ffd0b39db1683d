package carddb

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"

	"github.com/gx5gyqe2-art/opcg-sim-backend-sub000/internal/game/card"
)

// DeckEntry is one line of a deck list.
type DeckEntry struct {
	Number string `json:"number"`
	Count  int    `json:"count"`
}

// DeckList is the on-disk deck format: a leader reference and counted card
// entries. Files may wrap the object in a single-element array.
type DeckList struct {
	Name   string      `json:"name,omitempty"`
	Leader DeckEntry   `json:"leader"`
	Cards  []DeckEntry `json:"cards"`
}

// LoadDeckList reads and unwraps a deck list file.
func LoadDeckList(path string) (*DeckList, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read deck list: %w", err)
	}
	return ParseDeckList(data)
}

// ParseDeckList decodes deck list bytes, accepting both the bare object and
// the single-element array wrapping.
func ParseDeckList(data []byte) (*DeckList, error) {
	var list DeckList
	if err := json.Unmarshal(data, &list); err == nil && (list.Leader.Number != "" || len(list.Cards) > 0) {
		return &list, nil
	}
	var wrapped []DeckList
	if err := json.Unmarshal(data, &wrapped); err != nil {
		return nil, fmt.Errorf("decode deck list: %w", err)
	}
	if len(wrapped) == 0 {
		return nil, fmt.Errorf("deck list is empty")
	}
	return &wrapped[0], nil
}

// Materialize turns a deck list into playable instances owned by ownerID.
// Unknown card numbers fail the whole deck; a deck referencing missing cards
// is unusable, not partially usable.
func (db *Database) Materialize(list *DeckList, ownerID string) (*card.Instance, []*card.Instance, error) {
	var leader *card.Instance
	if list.Leader.Number != "" {
		master, err := db.Get(list.Leader.Number)
		if err != nil {
			return nil, nil, fmt.Errorf("leader: %w", err)
		}
		leader = card.NewInstance(master, ownerID)
	}

	var deck []*card.Instance
	for _, entry := range list.Cards {
		master, err := db.Get(entry.Number)
		if err != nil {
			return nil, nil, err
		}
		for i := 0; i < entry.Count; i++ {
			deck = append(deck, card.NewInstance(master, ownerID))
		}
	}

	db.logger.Info("deck materialized",
		zap.String("owner", ownerID),
		zap.String("leader", leaderName(leader)),
		zap.Int("deck_size", len(deck)))
	return leader, deck, nil
}

func leaderName(leader *card.Instance) string {
	if leader == nil {
		return ""
	}
	return leader.Master.Name
}
