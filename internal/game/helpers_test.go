package game

import (
	"fmt"
	"math/rand"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/gx5gyqe2-art/opcg-sim-backend-sub000/internal/game/card"
)

func testLeaderMaster(name string, life int) *card.Master {
	return &card.Master{
		ID:       "TEST-L-" + name,
		Name:     name,
		Type:     card.TypeLeader,
		Color:    card.ColorRed,
		Power:    5000,
		Life:     life,
		Keywords: map[string]bool{},
	}
}

func testCharMaster(name string, cost, power, counter int) *card.Master {
	return &card.Master{
		ID:       "TEST-C-" + name,
		Name:     name,
		Type:     card.TypeCharacter,
		Color:    card.ColorRed,
		Cost:     cost,
		Power:    power,
		Counter:  counter,
		Keywords: map[string]bool{},
	}
}

func testDeck(ownerID string, n int) []*card.Instance {
	deck := make([]*card.Instance, n)
	for i := 0; i < n; i++ {
		m := testCharMaster(fmt.Sprintf("Deckhand-%d", i), 2, 3000, 1000)
		deck[i] = card.NewInstance(m, ownerID)
	}
	return deck
}

// startedGame builds a two-player game with vanilla decks, started with p1 on
// the turn. After start the game sits in MAIN of turn 1.
func startedGame(t *testing.T) (*Game, *Player, *Player) {
	t.Helper()
	p1 := NewPlayer("alice", card.NewInstance(testLeaderMaster("Alice Leader", 2), "alice"), testDeck("alice", 20))
	p2 := NewPlayer("bob", card.NewInstance(testLeaderMaster("Bob Leader", 2), "bob"), testDeck("bob", 20))
	g := NewGame("test-game", p1, p2, rand.New(rand.NewSource(7)), zaptest.NewLogger(t))
	if err := g.Start(p1.ID); err != nil {
		t.Fatalf("failed to start game: %v", err)
	}
	return g, p1, p2
}

// fieldChar puts a fresh instance of master onto p's field, bypassing cost and
// summoning sickness.
func fieldChar(p *Player, master *card.Master, rested bool) *card.Instance {
	inst := card.NewInstance(master, p.ID)
	inst.Rested = rested
	p.Field = append(p.Field, inst)
	return inst
}

func inZone(zone []*card.Instance, inst *card.Instance) bool {
	for _, c := range zone {
		if c == inst {
			return true
		}
	}
	return false
}
