package cardtext

import (
	"testing"

	"github.com/gx5gyqe2-art/opcg-sim-backend-sub000/internal/game/card"
)

func TestParse_AbilitySplitAndTrigger(t *testing.T) {
	raw := "【ブロッカー】/【起動メイン】①:このターン中、このキャラのパワー+2000。"
	abilities := Parse(raw)
	// The bare keyword segment has no costs or actions and is dropped;
	// keywords are master-level data, not abilities.
	if len(abilities) != 1 {
		t.Fatalf("got %d abilities, want 1", len(abilities))
	}
	if abilities[0].Trigger != card.TriggerActivateMain {
		t.Fatalf("trigger = %v, want ACTIVATE_MAIN", abilities[0].Trigger)
	}
	if len(abilities[0].Costs) == 0 {
		t.Fatal("cost segment not split on colon")
	}
	cost := abilities[0].Costs[0]
	if cost.Kind != card.ActionRest {
		t.Fatalf("cost kind = %v, want REST", cost.Kind)
	}
	if cost.Target == nil || cost.Target.Zone != card.ZoneDonArea {
		t.Fatalf("cost target = %+v, want don area", cost.Target)
	}
	eff := abilities[0].Actions[0]
	if eff.Kind != card.ActionPowerBuff || eff.Value != 2000 {
		t.Fatalf("effect = %v value %d, want POWER_BUFF 2000", eff.Kind, eff.Value)
	}
	if eff.Target == nil || eff.Target.Mode != card.SelectSource {
		t.Fatalf("effect target = %+v, want source self-reference", eff.Target)
	}
}

func TestParse_SequentialClausesNest(t *testing.T) {
	raw := "【登場時】相手のコスト3以下のキャラ1枚をKOする。その後、カードを1枚引く。"
	abilities := Parse(raw)
	if len(abilities) != 1 {
		t.Fatalf("got %d abilities, want 1", len(abilities))
	}
	ab := abilities[0]
	if ab.Trigger != card.TriggerOnPlay {
		t.Fatalf("trigger = %v", ab.Trigger)
	}
	if len(ab.Actions) != 1 {
		t.Fatalf("got %d roots, want 1 (later clauses nest)", len(ab.Actions))
	}
	ko := ab.Actions[0]
	if ko.Kind != card.ActionKO {
		t.Fatalf("root kind = %v, want KO", ko.Kind)
	}
	if ko.Target == nil || ko.Target.Player != card.RelOpponent {
		t.Fatalf("KO target = %+v, want opponent default", ko.Target)
	}
	if ko.Target.CostMax == nil || *ko.Target.CostMax != 3 {
		t.Fatalf("KO cost bound = %v", ko.Target.CostMax)
	}
	if len(ko.Then) != 1 || ko.Then[0].Kind != card.ActionDraw {
		t.Fatalf("chained action = %+v, want DRAW", ko.Then)
	}
	if ko.Then[0].Value != 1 {
		t.Fatalf("draw value = %d", ko.Then[0].Value)
	}
	if ko.Then[0].Target != nil {
		t.Fatal("draw must not carry a target")
	}
}

func TestParse_ConditionWrapsResult(t *testing.T) {
	raw := "【アタック時】自分のライフが2枚以下の場合、このキャラのパワー+1000。"
	abilities := Parse(raw)
	root := abilities[0].Actions[0]
	if root.Kind != card.ActionNoOp {
		t.Fatalf("root kind = %v, want NO_OP condition wrapper", root.Kind)
	}
	if root.Condition == nil || root.Condition.Kind != card.CondLifeCount {
		t.Fatalf("condition = %+v, want LIFE_COUNT", root.Condition)
	}
	if root.Condition.Op != card.OpLte || root.Condition.Value != 2 {
		t.Fatalf("condition op/value = %v/%d, want <=/2", root.Condition.Op, root.Condition.Value)
	}
	if len(root.Then) != 1 || root.Then[0].Kind != card.ActionPowerBuff {
		t.Fatalf("then = %+v, want POWER_BUFF", root.Then)
	}
}

func TestParse_ContextConditions(t *testing.T) {
	cond := parseCondition("そうした")
	if cond.Kind != card.CondContext || cond.StrValue != card.CtxLastActionSuccess {
		t.Fatalf("cond = %+v", cond)
	}
	cond = parseCondition("そうしなかった")
	if cond.StrValue != card.CtxLastActionFailure {
		t.Fatalf("cond = %+v", cond)
	}
	cond = parseCondition("公開したカードが特徴《麦わらの一味》を持つキャラだった")
	if cond.Kind != card.CondContext || cond.StrValue != card.CtxRevealedTrait {
		t.Fatalf("cond = %+v", cond)
	}
	if cond.Target == nil || len(cond.Target.Traits) != 1 || cond.Target.Traits[0] != "麦わらの一味" {
		t.Fatalf("cond target = %+v", cond.Target)
	}
}

func TestParse_LookChain(t *testing.T) {
	raw := "【登場時】自分のデッキの上から5枚を見て、特徴《王下七武海》を持つカード1枚までを公開し、手札に加える。残りをデッキの下に置く。"
	abilities := Parse(raw)
	look := abilities[0].Actions[0]
	if look.Kind != card.ActionLook || look.Value != 5 {
		t.Fatalf("look = %v value %d", look.Kind, look.Value)
	}
	if look.SourceZone != card.ZoneDeck || look.DestZone != card.ZoneTemp {
		t.Fatalf("look zones = %v→%v", look.SourceZone, look.DestZone)
	}
	if len(look.Then) != 1 {
		t.Fatalf("look.Then = %+v", look.Then)
	}
	move := look.Then[0]
	if move.Kind != card.ActionMoveToHand {
		t.Fatalf("move kind = %v", move.Kind)
	}
	if move.Target.Zone != card.ZoneTemp || move.Target.Tag != "last_target" {
		t.Fatalf("move target = %+v", move.Target)
	}
	if len(move.Target.Traits) != 1 || move.Target.Traits[0] != "王下七武海" {
		t.Fatalf("move traits = %v", move.Target.Traits)
	}
	// Second sentence nests under the move: leftover cards to the bottom.
	if len(move.Then) != 1 {
		t.Fatalf("move.Then = %+v", move.Then)
	}
	rest := move.Then[0]
	if rest.Kind != card.ActionDeckBottom {
		t.Fatalf("rest kind = %v", rest.Kind)
	}
	if rest.Target == nil || rest.Target.Mode != card.SelectRemaining {
		t.Fatalf("rest target = %+v, want remaining", rest.Target)
	}
}

func TestParse_BinaryChoice(t *testing.T) {
	raw := "相手は自身の手札を1枚捨てるか、自身のライフを1枚トラッシュに置く。"
	abilities := Parse(raw)
	root := abilities[0].Actions[0]
	if root.Kind != card.ActionChoice {
		t.Fatalf("root kind = %v, want CHOICE", root.Kind)
	}
	if len(root.Options) != 2 {
		t.Fatalf("got %d options, want 2", len(root.Options))
	}
	if root.Options[0].Action.Kind != card.ActionTrash {
		t.Fatalf("option 0 = %v, want TRASH", root.Options[0].Action.Kind)
	}
	if root.Options[1].Action.Kind != card.ActionLifeManipulate {
		t.Fatalf("option 1 = %v, want LIFE_MANIPULATE", root.Options[1].Action.Kind)
	}
}

func TestParse_BackReference(t *testing.T) {
	raw := "相手のキャラ1枚を選び、このターン中、パワー-3000。その後、そのキャラをレストにする。"
	abilities := Parse(raw)
	if len(abilities[0].Actions) != 1 {
		t.Fatalf("got %d roots, want 1", len(abilities[0].Actions))
	}
	buff := abilities[0].Actions[0]
	if buff.Kind != card.ActionPowerBuff || buff.Value != -3000 {
		t.Fatalf("buff = %v value %d", buff.Kind, buff.Value)
	}
	if buff.Target == nil || buff.Target.Player != card.RelOpponent {
		t.Fatalf("buff target = %+v, want opponent", buff.Target)
	}
	if buff.Target.Tag != "last_target" {
		t.Fatalf("選び clause must tag its target, got %q", buff.Target.Tag)
	}
	rest := buff.Then[0]
	if rest.Kind != card.ActionRest {
		t.Fatalf("chained kind = %v, want REST", rest.Kind)
	}
	if rest.Target == nil || rest.Target.Mode != card.SelectReference || rest.Target.Tag != "last_target" {
		t.Fatalf("back-reference target = %+v", rest.Target)
	}
}

func TestParse_GrantKeyword(t *testing.T) {
	raw := "このターン中、このキャラは《バニッシュ》を得る。"
	abilities := Parse(raw)
	act := abilities[0].Actions[0]
	if act.Kind != card.ActionGrantKeyword {
		t.Fatalf("kind = %v, want GRANT_KEYWORD", act.Kind)
	}
	if act.Keyword != card.KeywordBanish {
		t.Fatalf("keyword = %q", act.Keyword)
	}
	if act.Target != nil {
		t.Fatal("grant clause with 得る must not parse a target")
	}
}

func TestParse_EmptyAndNoise(t *testing.T) {
	if got := Parse(""); got != nil {
		t.Fatalf("Parse(\"\") = %+v", got)
	}
	if got := Parse("///"); got != nil {
		t.Fatalf("Parse(slashes) = %+v", got)
	}
}
