package game

import (
	"fmt"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/gx5gyqe2-art/opcg-sim-backend-sub000/internal/game/card"
)

// Notification is pushed to the registered handler whenever a game's state
// changes in a way clients should see.
type Notification struct {
	Type      string
	GameID    string
	PlayerID  string // empty for broadcast
	Timestamp time.Time
	Data      map[string]interface{}
}

// NotificationHandler receives game notifications, typically to fan them out
// over websockets.
type NotificationHandler func(n Notification)

// Engine owns all running games and serializes access to each of them. Every
// public method resolves the game under the engine lock and then mutates it;
// games are single-threaded internally, so one mutex suffices.
type Engine struct {
	logger              *zap.Logger
	mu                  sync.RWMutex
	games               map[string]*Game
	notificationHandler NotificationHandler
}

// NewEngine creates an engine. A nil logger is replaced with a no-op logger.
func NewEngine(logger *zap.Logger) *Engine {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Engine{
		logger: logger,
		games:  make(map[string]*Game),
	}
}

// SetNotificationHandler registers the handler for state-change notifications.
func (e *Engine) SetNotificationHandler(handler NotificationHandler) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.notificationHandler = handler
}

// emitNotification runs the handler in its own goroutine so callbacks can
// re-enter the engine (e.g. to fetch a view) without deadlocking.
func (e *Engine) emitNotification(n Notification) {
	e.mu.RLock()
	handler := e.notificationHandler
	e.mu.RUnlock()
	if handler != nil {
		go handler(n)
	}
}

func (e *Engine) notifyStateChange(gameID string, data map[string]interface{}) {
	e.emitNotification(Notification{
		Type:      "GAME_STATE_CHANGE",
		GameID:    gameID,
		Timestamp: time.Now(),
		Data:      data,
	})
}

// CreateGame registers a new game from two prepared players. The deck lists
// are expected to be built by the card database layer.
func (e *Engine) CreateGame(gameID string, p1, p2 *Player) (*Game, error) {
	if gameID == "" {
		return nil, fmt.Errorf("gameID is required")
	}
	if p1 == nil || p2 == nil {
		return nil, fmt.Errorf("two players are required")
	}

	e.mu.Lock()
	if _, exists := e.games[gameID]; exists {
		e.mu.Unlock()
		return nil, fmt.Errorf("game %s already exists", gameID)
	}
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	g := NewGame(gameID, p1, p2, rng, e.logger)
	e.games[gameID] = g
	e.mu.Unlock()

	e.logger.Info("game created",
		zap.String("game_id", gameID),
		zap.String("player1", p1.ID),
		zap.String("player2", p2.ID))
	return g, nil
}

// StartGame shuffles, deals, and runs the first turn's automatic phases.
func (e *Engine) StartGame(gameID, firstPlayerID string) error {
	g, err := e.game(gameID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	err = g.Start(firstPlayerID)
	e.mu.Unlock()
	if err != nil {
		return err
	}
	e.notifyStateChange(gameID, map[string]interface{}{"state": "started"})
	return nil
}

// RemoveGame drops a finished game.
func (e *Engine) RemoveGame(gameID string) {
	e.mu.Lock()
	delete(e.games, gameID)
	e.mu.Unlock()
}

func (e *Engine) game(gameID string) (*Game, error) {
	e.mu.RLock()
	g, exists := e.games[gameID]
	e.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("game %s not found", gameID)
	}
	return g, nil
}

// withGame runs fn on the named game under the engine lock, logs the
// command, and emits a broadcast notification when it succeeds.
func (e *Engine) withGame(gameID, playerID, event string, fn func(g *Game) error) error {
	g, err := e.game(gameID)
	if err != nil {
		return err
	}
	e.mu.Lock()
	turn := g.Turn.TurnNumber()
	err = fn(g)
	if err == nil {
		g.log.Append(turn, playerID, event)
	}
	e.mu.Unlock()
	if err != nil {
		return err
	}
	e.notifyStateChange(gameID, map[string]interface{}{"event": event})
	return nil
}

// GameLog returns the ordered command log for a game.
func (e *Engine) GameLog(gameID string) ([]LogEntry, error) {
	g, err := e.game(gameID)
	if err != nil {
		return nil, err
	}
	return g.log.Entries(), nil
}

// lookupActor resolves a player and, optionally, one of their known card
// instances. Callers pass cardUUID == "" when no card is involved.
func lookupActor(g *Game, playerID, cardUUID string) (*Player, *card.Instance, error) {
	p, err := g.PlayerByID(playerID)
	if err != nil {
		return nil, nil, err
	}
	if cardUUID == "" {
		return p, nil, nil
	}
	inst := g.FindCard(cardUUID)
	if inst == nil {
		return nil, nil, validationErrorf("card %s not found", cardUUID)
	}
	return p, inst, nil
}

// PlayCard plays a card from hand, paying its cost with the given don tokens
// (or any active don when donIDs is empty).
func (e *Engine) PlayCard(gameID, playerID, cardUUID string, donIDs []string) error {
	return e.withGame(gameID, playerID, "card_played", func(g *Game) error {
		p, inst, err := lookupActor(g, playerID, cardUUID)
		if err != nil {
			return err
		}
		return g.PlayCard(p, inst, donIDs)
	})
}

// AttachDon attaches active don to a card on the player's own field.
func (e *Engine) AttachDon(gameID, playerID, cardUUID string, count int) error {
	return e.withGame(gameID, playerID, "don_attached", func(g *Game) error {
		p, inst, err := lookupActor(g, playerID, cardUUID)
		if err != nil {
			return err
		}
		return g.AttachDon(p, inst, count)
	})
}

// ActivateAbility resolves an activated ability on a card in play.
func (e *Engine) ActivateAbility(gameID, playerID, cardUUID string, abilityIndex int) error {
	return e.withGame(gameID, playerID, "ability_activated", func(g *Game) error {
		p, inst, err := lookupActor(g, playerID, cardUUID)
		if err != nil {
			return err
		}
		return g.ActivateAbility(p, inst, abilityIndex)
	})
}

// DeclareAttack starts a battle between attacker and target.
func (e *Engine) DeclareAttack(gameID, playerID, attackerUUID, targetUUID string) error {
	return e.withGame(gameID, playerID, "attack_declared", func(g *Game) error {
		p, attacker, err := lookupActor(g, playerID, attackerUUID)
		if err != nil {
			return err
		}
		target := g.FindCard(targetUUID)
		if target == nil {
			return validationErrorf("attack target %s not found", targetUUID)
		}
		return g.DeclareAttack(p, attacker, target)
	})
}

// ResolveBlock answers the block step; blockerUUID == "" declines to block.
func (e *Engine) ResolveBlock(gameID, playerID, blockerUUID string) error {
	return e.withGame(gameID, playerID, "block_resolved", func(g *Game) error {
		p, blocker, err := lookupActor(g, playerID, blockerUUID)
		if err != nil {
			return err
		}
		return g.ResolveBlock(p, blocker)
	})
}

// ApplyCounter plays one counter card; counterUUID == "" passes and resolves
// the battle.
func (e *Engine) ApplyCounter(gameID, playerID, counterUUID string, donIDs []string) error {
	return e.withGame(gameID, playerID, "counter_applied", func(g *Game) error {
		p, counter, err := lookupActor(g, playerID, counterUUID)
		if err != nil {
			return err
		}
		return g.ApplyCounter(p, counter, donIDs)
	})
}

// EndTurn fires end-of-turn triggers and hands the turn to the opponent.
func (e *Engine) EndTurn(gameID, playerID string) error {
	return e.withGame(gameID, playerID, "turn_ended", func(g *Game) error {
		p, _, err := lookupActor(g, playerID, "")
		if err != nil {
			return err
		}
		return g.EndTurn(p)
	})
}

// ResolveInteraction answers the game's pending interaction.
func (e *Engine) ResolveInteraction(gameID, playerID string, selectedIDs []string, choiceIndex *int) error {
	return e.withGame(gameID, playerID, "interaction_resolved", func(g *Game) error {
		p, _, err := lookupActor(g, playerID, "")
		if err != nil {
			return err
		}
		return g.resumeInteraction(p, selectedIDs, choiceIndex)
	})
}

// PendingInteraction reports what input the game currently needs.
func (e *Engine) PendingInteraction(gameID string) (*Interaction, error) {
	g, err := e.game(gameID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return g.PendingInteraction(), nil
}

// GameView returns the game as seen by one player, with hidden zones redacted.
func (e *Engine) GameView(gameID, playerID string) (*GameView, error) {
	g, err := e.game(gameID)
	if err != nil {
		return nil, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return g.View(playerID), nil
}
