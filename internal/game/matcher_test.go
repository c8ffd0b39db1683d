package game

import (
	"testing"

	"github.com/gx5gyqe2-art/opcg-sim-backend-sub000/internal/game/card"
)

func queryIDs(insts []*card.Instance) []string {
	ids := make([]string, len(insts))
	for i, c := range insts {
		ids[i] = c.UUID
	}
	return ids
}

func TestResolveQueryDeterministicOrder(t *testing.T) {
	g, p1, p2 := startedGame(t)

	a := fieldChar(p2, testCharMaster("Alpha", 2, 3000, 1000), false)
	b := fieldChar(p2, testCharMaster("Beta", 4, 5000, 0), true)
	c := fieldChar(p2, testCharMaster("Gamma", 6, 7000, 1000), false)
	stage := card.NewInstance(&card.Master{
		ID: "TEST-S-Ship", Name: "Ship", Type: card.TypeStage,
		Color: card.ColorRed, Cost: 1, Keywords: map[string]bool{},
	}, p2.ID)
	p2.Stage = stage

	q := &card.Query{Zone: card.ZoneField, Player: card.RelOpponent, Count: -1, Mode: card.SelectAll}

	first := g.ResolveQuery(q, p1, nil)
	want := []string{a.UUID, b.UUID, c.UUID, p2.Leader.UUID, stage.UUID}
	got := queryIDs(first)
	if len(got) != len(want) {
		t.Fatalf("expected %d results, got %d", len(want), len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("result %d: expected %s, got %s", i, want[i], got[i])
		}
	}

	// re-resolving the same query yields the identical ordered slice
	for run := 0; run < 3; run++ {
		again := queryIDs(g.ResolveQuery(q, p1, nil))
		for i := range want {
			if again[i] != want[i] {
				t.Fatalf("run %d result %d: expected %s, got %s", run, i, want[i], again[i])
			}
		}
	}
}

func TestResolveQueryAppliesPredicatesConjunctively(t *testing.T) {
	g, p1, p2 := startedGame(t)

	cheap := fieldChar(p2, testCharMaster("Cheap", 2, 3000, 1000), false)
	fieldChar(p2, testCharMaster("Pricey", 6, 7000, 0), false)
	restedCheap := fieldChar(p2, testCharMaster("Napper", 3, 4000, 1000), true)

	costMax := 3
	q := &card.Query{
		Zone:      card.ZoneField,
		Player:    card.RelOpponent,
		CardTypes: []card.Type{card.TypeCharacter},
		CostMax:   &costMax,
		Count:     -1,
		Mode:      card.SelectAll,
	}
	got := queryIDs(g.ResolveQuery(q, p1, nil))
	want := []string{cheap.UUID, restedCheap.UUID}
	if len(got) != 2 || got[0] != want[0] || got[1] != want[1] {
		t.Fatalf("expected %v, got %v", want, got)
	}

	rested := true
	q.IsRested = &rested
	got = queryIDs(g.ResolveQuery(q, p1, nil))
	if len(got) != 1 || got[0] != restedCheap.UUID {
		t.Fatalf("expected only the rested character, got %v", got)
	}
}

func TestResolveQuerySourceMode(t *testing.T) {
	g, p1, _ := startedGame(t)
	src := fieldChar(p1, testCharMaster("Self", 3, 4000, 0), false)

	q := &card.Query{Mode: card.SelectSource}
	got := g.ResolveQuery(q, p1, src)
	if len(got) != 1 || got[0] != src {
		t.Fatalf("expected the source instance back, got %v", queryIDs(got))
	}
	if res := g.ResolveQuery(q, p1, nil); res != nil {
		t.Fatalf("expected nil without a source, got %v", queryIDs(res))
	}
}

func TestEvaluateConditionContextKinds(t *testing.T) {
	g, p1, _ := startedGame(t)

	success := &card.Condition{Kind: card.CondContext, StrValue: card.CtxLastActionSuccess}
	failure := &card.Condition{Kind: card.CondContext, StrValue: card.CtxLastActionFailure}

	ctx := newEffectContext()
	ctx.recordResult(true)
	if !g.EvaluateCondition(success, p1, nil, ctx) {
		t.Error("expected success condition to hold after a successful action")
	}
	if g.EvaluateCondition(failure, p1, nil, ctx) {
		t.Error("expected failure condition to be false after a successful action")
	}

	ctx.recordResult(false)
	if g.EvaluateCondition(success, p1, nil, ctx) {
		t.Error("expected success condition to be false after a failed action")
	}
	if !g.EvaluateCondition(failure, p1, nil, ctx) {
		t.Error("expected failure condition to hold after a failed action")
	}

	// context conditions never hold without a context
	if g.EvaluateCondition(success, p1, nil, nil) {
		t.Error("expected context condition to be false with nil context")
	}
}

func TestEvaluateConditionCounts(t *testing.T) {
	g, p1, _ := startedGame(t)

	// p1 holds 1 don after the first turn's automatic phases
	don := func(op card.CompareOp, v int) *card.Condition {
		return &card.Condition{Kind: card.CondDonCount, Op: op, Value: v}
	}
	if !g.EvaluateCondition(don(card.OpGte, 1), p1, nil, nil) {
		t.Error("expected don count >= 1")
	}
	if g.EvaluateCondition(don(card.OpGte, 2), p1, nil, nil) {
		t.Error("expected don count < 2")
	}
	if !g.EvaluateCondition(don(card.OpEq, 1), p1, nil, nil) {
		t.Error("expected don count == 1")
	}

	hand := &card.Condition{Kind: card.CondHandCount, Op: card.OpGte, Value: 5}
	if !g.EvaluateCondition(hand, p1, nil, nil) {
		t.Error("expected opening hand of 5 to satisfy hand count >= 5")
	}

	// nil condition is vacuously true
	if !g.EvaluateCondition(nil, p1, nil, nil) {
		t.Error("expected nil condition to hold")
	}
}
