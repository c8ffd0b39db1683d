package don

import (
	"testing"
)

func TestPool_Gain(t *testing.T) {
	pool := NewPool("p1")

	if got := pool.Gain(2); got != 2 {
		t.Errorf("expected to gain 2, got %d", got)
	}
	if pool.ActiveCount() != 2 {
		t.Errorf("expected 2 active, got %d", pool.ActiveCount())
	}
	if len(pool.Deck) != DeckSize-2 {
		t.Errorf("expected %d in deck, got %d", DeckSize-2, len(pool.Deck))
	}
}

func TestPool_GainHonorsLimit(t *testing.T) {
	pool := NewPool("p1")
	pool.Gain(10)
	if got := pool.Gain(2); got != 0 {
		t.Errorf("expected limit to block gain, got %d", got)
	}
	if pool.InPlay() != InPlayLimit {
		t.Errorf("expected %d in play, got %d", InPlayLimit, pool.InPlay())
	}
}

func TestPool_Pay(t *testing.T) {
	pool := NewPool("p1")
	pool.Gain(4)

	if err := pool.Pay(3); err != nil {
		t.Fatalf("pay failed: %v", err)
	}
	if pool.ActiveCount() != 1 {
		t.Errorf("expected 1 active after paying 3, got %d", pool.ActiveCount())
	}
	if len(pool.Rested) != 3 {
		t.Errorf("expected 3 rested, got %d", len(pool.Rested))
	}

	if err := pool.Pay(2); err == nil {
		t.Error("expected insufficient-don error")
	}
	if pool.ActiveCount() != 1 {
		t.Error("failed pay must not mutate the pool")
	}
}

func TestPool_AttachDetach(t *testing.T) {
	pool := NewPool("p1")
	pool.Gain(3)

	if err := pool.Attach("card-1"); err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	if err := pool.Attach("card-1"); err != nil {
		t.Fatalf("attach failed: %v", err)
	}
	if len(pool.Attached) != 2 {
		t.Errorf("expected 2 attached, got %d", len(pool.Attached))
	}

	if got := pool.DetachFrom("card-1"); got != 2 {
		t.Errorf("expected 2 detached, got %d", got)
	}
	if len(pool.Rested) != 2 {
		t.Errorf("detached don must land rested, got %d rested", len(pool.Rested))
	}
	for _, tok := range pool.Rested {
		if tok.AttachedTo != "" {
			t.Error("detaching must clear the attachment")
		}
	}
}

func TestPool_Refresh(t *testing.T) {
	pool := NewPool("p1")
	pool.Gain(5)
	pool.Pay(2)
	pool.Attach("card-1")

	pool.Refresh()

	if pool.ActiveCount() != 5 {
		t.Errorf("expected all 5 active after refresh, got %d", pool.ActiveCount())
	}
	if len(pool.Rested) != 0 || len(pool.Attached) != 0 {
		t.Error("refresh must empty rested and attached pools")
	}
	for _, tok := range pool.Active {
		if tok.Rested || tok.AttachedTo != "" {
			t.Error("refreshed tokens must be active and unattached")
		}
	}
}

// TestPool_Conservation checks the resource-conservation invariant: the total
// number of tokens a player owns never changes across in-turn operations.
func TestPool_Conservation(t *testing.T) {
	pool := NewPool("p1")
	check := func(step string) {
		if pool.Total() != DeckSize {
			t.Fatalf("%s: token count changed, got %d", step, pool.Total())
		}
	}

	pool.Gain(6)
	check("gain")
	pool.Pay(2)
	check("pay")
	pool.Attach("card-1")
	check("attach")
	pool.DetachFrom("card-1")
	check("detach")
	pool.Refresh()
	check("refresh")
	pool.ReturnToDeck(3)
	check("return")
}

func TestPool_PayTokens(t *testing.T) {
	pool := NewPool("p1")
	pool.Gain(3)
	pool.Attach("card-1")

	picks := []*Token{pool.Active[0], pool.Attached[0]}
	if err := pool.PayTokens(picks); err != nil {
		t.Fatalf("pay tokens failed: %v", err)
	}
	if len(pool.Rested) != 2 {
		t.Errorf("expected 2 rested, got %d", len(pool.Rested))
	}

	outsider := &Token{UUID: "zzz", OwnerID: "p2"}
	if err := pool.PayTokens([]*Token{outsider}); err == nil {
		t.Error("expected error paying a token not in the pool")
	}
}
