package rules

import (
	"fmt"
	"strings"
)

// Phase represents the phases of a turn.
type Phase int

const (
	PhaseSetup Phase = iota
	PhaseRefresh
	PhaseDraw
	PhaseDon
	PhaseMain
	PhaseBlockStep
	PhaseCounterStep
	PhaseEnd
)

var phaseNames = map[Phase]string{
	PhaseSetup:       "SETUP",
	PhaseRefresh:     "REFRESH",
	PhaseDraw:        "DRAW",
	PhaseDon:         "DON",
	PhaseMain:        "MAIN",
	PhaseBlockStep:   "BLOCK_STEP",
	PhaseCounterStep: "COUNTER_STEP",
	PhaseEnd:         "END",
}

func (p Phase) String() string {
	if name, ok := phaseNames[p]; ok {
		return name
	}
	return fmt.Sprintf("PHASE_%d", int(p))
}

// turnSequence is the fixed phase order of one turn. The battle steps are not
// part of the sequence; they interject into MAIN while an attack resolves.
var turnSequence = []Phase{
	PhaseRefresh,
	PhaseDraw,
	PhaseDon,
	PhaseMain,
	PhaseEnd,
}

// TurnManager tracks the active player, turn number, and phase progression.
// It owns only the clock: what refresh/draw/don actually do to state is the
// engine's business.
type TurnManager struct {
	orderIndex   int
	turnNumber   int
	activePlayer string
	// battlePhase overrides the sequence phase while an attack is being
	// declared, blocked, and countered. Zero means no battle in progress.
	battlePhase Phase
	inBattle    bool
	started     bool
}

// NewTurnManager creates a turn manager in SETUP, before the first turn.
func NewTurnManager(activePlayer string) *TurnManager {
	return &TurnManager{
		orderIndex:   0,
		turnNumber:   0,
		activePlayer: strings.TrimSpace(activePlayer),
	}
}

// CurrentPhase returns the phase currently in progress. A battle step shadows
// the underlying MAIN phase until the battle finishes.
func (tm *TurnManager) CurrentPhase() Phase {
	if !tm.started {
		return PhaseSetup
	}
	if tm.inBattle {
		return tm.battlePhase
	}
	return turnSequence[tm.orderIndex]
}

// TurnNumber returns the current turn number (1-based; 0 during setup).
func (tm *TurnManager) TurnNumber() int {
	return tm.turnNumber
}

// ActivePlayer returns the player who currently has the turn.
func (tm *TurnManager) ActivePlayer() string {
	return tm.activePlayer
}

// IsFirstTurn reports whether the very first turn of the game is in progress.
// The starting player skips the draw and gets a reduced don gain on it.
func (tm *TurnManager) IsFirstTurn() bool {
	return tm.turnNumber == 1
}

// Start leaves SETUP and begins turn 1 at the refresh phase.
func (tm *TurnManager) Start() Phase {
	if tm.started {
		return tm.CurrentPhase()
	}
	tm.started = true
	tm.turnNumber = 1
	tm.orderIndex = 0
	return tm.CurrentPhase()
}

// AdvancePhase moves to the next phase of the turn sequence. When the end of
// the sequence is reached the turn number increments and the active player
// rotates to nextActivePlayer if provided. Advancing is illegal mid-battle.
func (tm *TurnManager) AdvancePhase(nextActivePlayer string) (Phase, error) {
	if !tm.started {
		return PhaseSetup, fmt.Errorf("cannot advance phase before the game starts")
	}
	if tm.inBattle {
		return tm.CurrentPhase(), fmt.Errorf("cannot advance phase during %s", tm.battlePhase)
	}
	tm.orderIndex++
	if tm.orderIndex >= len(turnSequence) {
		tm.orderIndex = 0
		tm.turnNumber++
		if next := strings.TrimSpace(nextActivePlayer); next != "" {
			tm.activePlayer = next
		}
	}
	return tm.CurrentPhase(), nil
}

// EnterBlockStep interjects the block step of a declared attack. Only legal
// from MAIN.
func (tm *TurnManager) EnterBlockStep() error {
	if tm.CurrentPhase() != PhaseMain {
		return fmt.Errorf("attack declared outside MAIN (current %s)", tm.CurrentPhase())
	}
	tm.inBattle = true
	tm.battlePhase = PhaseBlockStep
	return nil
}

// EnterCounterStep moves a battle from block selection to the counter step.
func (tm *TurnManager) EnterCounterStep() error {
	if !tm.inBattle || tm.battlePhase != PhaseBlockStep {
		return fmt.Errorf("counter step requires an active block step (current %s)", tm.CurrentPhase())
	}
	tm.battlePhase = PhaseCounterStep
	return nil
}

// ExitBattle returns to MAIN after damage resolution or a cancelled attack.
func (tm *TurnManager) ExitBattle() {
	tm.inBattle = false
	tm.battlePhase = 0
}

// InBattle reports whether an attack is currently being resolved.
func (tm *TurnManager) InBattle() bool {
	return tm.inBattle
}
