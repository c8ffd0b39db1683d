package game

import (
	"github.com/google/uuid"

	"github.com/gx5gyqe2-art/opcg-sim-backend-sub000/internal/game/card"
	"github.com/gx5gyqe2-art/opcg-sim-backend-sub000/internal/game/rules"
)

// InteractionKind identifies what input a pending interaction needs.
type InteractionKind string

const (
	// InteractionSelectTarget asks for card UUIDs out of SelectableIDs.
	InteractionSelectTarget InteractionKind = "SELECT_TARGET"
	// InteractionChoice asks for an option index into Options.
	InteractionChoice InteractionKind = "CHOICE"
	// InteractionSelectBlocker asks the defender for an optional blocker.
	InteractionSelectBlocker InteractionKind = "SELECT_BLOCKER"
	// InteractionSelectCounter asks the defender for optional counter plays.
	InteractionSelectCounter InteractionKind = "SELECT_COUNTER"
	// InteractionMainAction is the turn player's open action menu.
	InteractionMainAction InteractionKind = "MAIN_ACTION"
)

// Interaction describes the single outstanding input request of a game. The
// ability-driven kinds carry a continuation; the phase-driven kinds are
// derived on demand and answered through their own entry points.
type Interaction struct {
	ID            string
	PlayerID      string
	Kind          InteractionKind
	Prompt        string
	SelectableIDs []string
	Options       []string
	CanSkip       bool

	cont *continuation
}

// PendingInteraction reports what input the game needs right now: the parked
// ability interaction if one exists, otherwise a phase-derived prompt. Nil
// when the game is over.
func (g *Game) PendingInteraction() *Interaction {
	if g.Winner != "" {
		return nil
	}
	if g.interaction != nil {
		if g.interaction.ID == "" {
			g.interaction.ID = uuid.NewString()
		}
		return g.interaction
	}

	switch {
	case g.battle != nil && g.Turn.CurrentPhase() == rules.PhaseBlockStep:
		return &Interaction{
			ID:            uuid.NewString(),
			PlayerID:      g.battle.targetOwner.ID,
			Kind:          InteractionSelectBlocker,
			Prompt:        "ブロッカーを選択してください",
			SelectableIDs: instanceIDs(g.eligibleBlockers(g.battle.targetOwner)),
			CanSkip:       true,
		}
	case g.battle != nil && g.Turn.CurrentPhase() == rules.PhaseCounterStep:
		return &Interaction{
			ID:            uuid.NewString(),
			PlayerID:      g.battle.targetOwner.ID,
			Kind:          InteractionSelectCounter,
			Prompt:        "カウンターを選択してください",
			SelectableIDs: instanceIDs(g.eligibleCounters(g.battle.targetOwner)),
			CanSkip:       true,
		}
	case g.Turn.CurrentPhase() == rules.PhaseMain:
		var selectable []string
		for _, c := range g.turnPlayer.Hand {
			selectable = append(selectable, c.UUID)
		}
		for _, c := range g.turnPlayer.Field {
			if !c.Rested {
				selectable = append(selectable, c.UUID)
			}
		}
		if g.turnPlayer.Leader != nil && !g.turnPlayer.Leader.Rested {
			selectable = append(selectable, g.turnPlayer.Leader.UUID)
		}
		return &Interaction{
			ID:            uuid.NewString(),
			PlayerID:      g.turnPlayer.ID,
			Kind:          InteractionMainAction,
			Prompt:        "アクションを選択してください",
			SelectableIDs: selectable,
			CanSkip:       true,
		}
	}
	return nil
}

// eligibleBlockers lists the defender's active blocker-keyword characters.
func (g *Game) eligibleBlockers(p *Player) []*card.Instance {
	var out []*card.Instance
	for _, c := range p.Field {
		if !c.Rested && c.HasKeyword(card.KeywordBlocker) {
			out = append(out, c)
		}
	}
	return out
}

// eligibleCounters lists hand cards playable in the counter step: cards with
// a counter value, and events with a counter-trigger ability.
func (g *Game) eligibleCounters(p *Player) []*card.Instance {
	var out []*card.Instance
	for _, c := range p.Hand {
		if c.Master.Counter > 0 {
			out = append(out, c)
			continue
		}
		if c.Master.Type == card.TypeEvent {
			for _, ab := range c.Master.Abilities {
				if ab.Trigger == card.TriggerCounter {
					out = append(out, c)
					break
				}
			}
		}
	}
	return out
}
