package targeting

import (
	"testing"

	"github.com/gx5gyqe2-art/opcg-sim-backend-sub000/internal/game/card"
)

func TestParse_Defaults(t *testing.T) {
	q := Parse("キャラ1枚", card.RelSelf)
	if q.Zone != card.ZoneField {
		t.Fatalf("zone = %v, want field", q.Zone)
	}
	if q.Player != card.RelSelf {
		t.Fatalf("player = %v, want self", q.Player)
	}
	if q.Count != 1 || q.Mode != card.SelectChoose {
		t.Fatalf("count/mode = %d/%v", q.Count, q.Mode)
	}
	if len(q.CardTypes) != 1 || q.CardTypes[0] != card.TypeCharacter {
		t.Fatalf("card types = %v", q.CardTypes)
	}
}

func TestParse_SelfReference(t *testing.T) {
	for _, text := range []string{"このキャラ", "このカード"} {
		q := Parse(text, card.RelSelf)
		if q.Mode != card.SelectSource {
			t.Fatalf("Parse(%q).Mode = %v, want source", text, q.Mode)
		}
	}
}

func TestParse_OpponentInversion(t *testing.T) {
	q := Parse("相手のキャラ1枚", card.RelSelf)
	if q.Player != card.RelOpponent {
		t.Fatalf("player = %v, want opponent", q.Player)
	}
	// When the clause already defaults to the opponent, explicit 相手 refers
	// back to the acting player.
	q = Parse("相手のキャラ1枚", card.RelOpponent)
	if q.Player != card.RelSelf {
		t.Fatalf("inverted player = %v, want self", q.Player)
	}
}

func TestParse_CostUpperAndLowerBounds(t *testing.T) {
	q := Parse("コスト4以下の相手のキャラ1枚", card.RelSelf)
	if q.CostMax == nil || *q.CostMax != 4 {
		t.Fatalf("CostMax = %v, want 4", q.CostMax)
	}
	if q.CostMin != nil {
		t.Fatalf("CostMin = %v, want nil", q.CostMin)
	}
	q = Parse("パワー5000以上のキャラすべて", card.RelSelf)
	if q.PowerMin == nil || *q.PowerMin != 5000 {
		t.Fatalf("PowerMin = %v, want 5000", q.PowerMin)
	}
	if q.Mode != card.SelectAll || q.Count != -1 {
		t.Fatalf("mode/count = %v/%d, want all/-1", q.Mode, q.Count)
	}
}

func TestParse_NameExclusion(t *testing.T) {
	q := Parse("「トニートニー.チョッパー」以外の特徴《動物》を持つキャラ1枚", card.RelSelf)
	if len(q.ExcludeNames) != 1 || q.ExcludeNames[0] != "トニートニー.チョッパー" {
		t.Fatalf("ExcludeNames = %v", q.ExcludeNames)
	}
	if len(q.Names) != 0 {
		t.Fatalf("Names = %v, want empty", q.Names)
	}
	if len(q.Traits) != 1 || q.Traits[0] != "動物" {
		t.Fatalf("Traits = %v", q.Traits)
	}
}

func TestParse_ZonePrecedence(t *testing.T) {
	q := Parse("自分のトラッシュのコスト3以下のキャラ1枚", card.RelSelf)
	if q.Zone != card.ZoneTrash {
		t.Fatalf("zone = %v, want trash", q.Zone)
	}
	q = Parse("自分のデッキの上に置く残りのカード", card.RelSelf)
	if q.Mode != card.SelectRemaining {
		t.Fatalf("mode = %v, want remaining", q.Mode)
	}
}

func TestParse_DeckDestinationGuard(t *testing.T) {
	// 手札 wins the zone scan here; the guard matters once movement verbs
	// survive cleanup alongside a positional deck phrase.
	q := Parse("デッキの下に戻すキャラ1枚", card.RelSelf)
	if q.Zone != card.ZoneField {
		t.Fatalf("zone = %v, want field (deck is a destination)", q.Zone)
	}
}

func TestParse_RestStateAndUpTo(t *testing.T) {
	q := Parse("レスト状態の相手のキャラ2枚まで", card.RelSelf)
	if q.IsRested == nil || !*q.IsRested {
		t.Fatalf("IsRested = %v, want true", q.IsRested)
	}
	if !q.UpTo || q.Count != 2 {
		t.Fatalf("UpTo/Count = %v/%d", q.UpTo, q.Count)
	}
	q = Parse("アクティブのキャラ1枚", card.RelSelf)
	if q.IsRested == nil || *q.IsRested {
		t.Fatalf("IsRested = %v, want false", q.IsRested)
	}
}

func TestParse_VanillaAndBasePower(t *testing.T) {
	q := Parse("効果を持たない元々のパワー6000以下のキャラ1枚", card.RelSelf)
	if !q.Vanilla {
		t.Fatal("Vanilla not set")
	}
	if !q.BasePower {
		t.Fatal("BasePower not set")
	}
	if q.PowerMax == nil || *q.PowerMax != 6000 {
		t.Fatalf("PowerMax = %v", q.PowerMax)
	}
}

func TestParse_BothPlayers(t *testing.T) {
	q := Parse("お互いのキャラすべて", card.RelSelf)
	if q.Player != card.RelAll {
		t.Fatalf("player = %v, want all", q.Player)
	}
}
