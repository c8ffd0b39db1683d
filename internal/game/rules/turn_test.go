package rules

import "testing"

func TestTurnManagerSequence(t *testing.T) {
	tm := NewTurnManager("Alice")

	if tm.CurrentPhase() != PhaseSetup {
		t.Fatalf("expected SETUP before start, got %s", tm.CurrentPhase())
	}
	if tm.TurnNumber() != 0 {
		t.Fatalf("expected turn 0 before start, got %d", tm.TurnNumber())
	}

	if got := tm.Start(); got != PhaseRefresh {
		t.Fatalf("expected REFRESH after start, got %s", got)
	}
	if !tm.IsFirstTurn() {
		t.Fatal("expected first turn after start")
	}

	expected := []Phase{PhaseRefresh, PhaseDraw, PhaseDon, PhaseMain, PhaseEnd}
	for i, exp := range expected {
		if tm.CurrentPhase() != exp {
			t.Fatalf("phase %d: expected %s, got %s", i, exp, tm.CurrentPhase())
		}
		if i < len(expected)-1 {
			if _, err := tm.AdvancePhase(""); err != nil {
				t.Fatalf("advance %d: %v", i, err)
			}
		}
	}
}

func TestTurnManagerAdvanceWrapsTurn(t *testing.T) {
	tm := NewTurnManager("Alice")
	tm.Start()

	// Advance through all but the last phase to remain on turn 1.
	for i := 0; i < len(turnSequence)-1; i++ {
		if _, err := tm.AdvancePhase(""); err != nil {
			t.Fatalf("advance %d: %v", i, err)
		}
		if tm.TurnNumber() != 1 {
			t.Fatalf("expected to remain on turn 1, got turn %d at phase %d", tm.TurnNumber(), i)
		}
		if tm.ActivePlayer() != "Alice" {
			t.Fatalf("expected active player to remain Alice during turn, got %s", tm.ActivePlayer())
		}
	}

	phase, err := tm.AdvancePhase("Bob")
	if err != nil {
		t.Fatalf("wrap advance: %v", err)
	}
	if phase != PhaseRefresh {
		t.Fatalf("expected REFRESH after wrap, got %s", phase)
	}
	if tm.TurnNumber() != 2 {
		t.Fatalf("expected turn number 2 after wrap, got %d", tm.TurnNumber())
	}
	if tm.ActivePlayer() != "Bob" {
		t.Fatalf("expected active player Bob after wrap, got %s", tm.ActivePlayer())
	}
	if tm.IsFirstTurn() {
		t.Fatal("turn 2 must not report first turn")
	}
}

func TestTurnManagerBattleSteps(t *testing.T) {
	tm := NewTurnManager("Alice")
	tm.Start()

	// Battle steps are only legal from MAIN.
	if err := tm.EnterBlockStep(); err == nil {
		t.Fatal("expected error entering block step from REFRESH")
	}

	for tm.CurrentPhase() != PhaseMain {
		if _, err := tm.AdvancePhase(""); err != nil {
			t.Fatalf("advance: %v", err)
		}
	}

	if err := tm.EnterBlockStep(); err != nil {
		t.Fatalf("enter block step: %v", err)
	}
	if tm.CurrentPhase() != PhaseBlockStep {
		t.Fatalf("expected BLOCK_STEP, got %s", tm.CurrentPhase())
	}
	if !tm.InBattle() {
		t.Fatal("expected in-battle")
	}

	// The phase clock freezes while a battle resolves.
	if _, err := tm.AdvancePhase(""); err == nil {
		t.Fatal("expected error advancing phase mid-battle")
	}

	if err := tm.EnterCounterStep(); err != nil {
		t.Fatalf("enter counter step: %v", err)
	}
	if tm.CurrentPhase() != PhaseCounterStep {
		t.Fatalf("expected COUNTER_STEP, got %s", tm.CurrentPhase())
	}

	tm.ExitBattle()
	if tm.CurrentPhase() != PhaseMain {
		t.Fatalf("expected MAIN after battle, got %s", tm.CurrentPhase())
	}

	// Counter step cannot start without a block step.
	if err := tm.EnterCounterStep(); err == nil {
		t.Fatal("expected error entering counter step outside battle")
	}
}
