package game

import (
	"sort"
	"testing"
)

func TestCardViewKeywordsAreSorted(t *testing.T) {
	g, p1, _ := startedGame(t)
	inst := fieldChar(p1, testCharMaster("Keyworded", 4, 5000, 0), false)
	inst.Keywords["速攻"] = true
	inst.Keywords["ブロッカー"] = true
	inst.Keywords["バニッシュ"] = true
	inst.Keywords["ダブルアタック"] = true

	view := buildCardView(inst, g)
	if len(view.Keywords) != 4 {
		t.Fatalf("expected 4 keywords, got %v", view.Keywords)
	}
	if !sort.StringsAreSorted(view.Keywords) {
		t.Fatalf("keywords not sorted: %v", view.Keywords)
	}

	// repeated builds emit the same order
	for i := 0; i < 5; i++ {
		again := buildCardView(inst, g)
		for j := range view.Keywords {
			if again.Keywords[j] != view.Keywords[j] {
				t.Fatalf("build %d: keyword order changed: %v vs %v", i, again.Keywords, view.Keywords)
			}
		}
	}
}

func TestViewRedactsOpponentHand(t *testing.T) {
	g, p1, p2 := startedGame(t)

	view := g.View(p1.ID)
	if len(view.You.Hand) != len(p1.Hand) {
		t.Errorf("expected own hand visible, got %d of %d", len(view.You.Hand), len(p1.Hand))
	}
	if len(view.Opponent.Hand) != 0 {
		t.Errorf("expected opponent hand hidden, got %d cards", len(view.Opponent.Hand))
	}
	if view.Opponent.HandCount != len(p2.Hand) {
		t.Errorf("expected opponent hand count %d, got %d", len(p2.Hand), view.Opponent.HandCount)
	}
}
