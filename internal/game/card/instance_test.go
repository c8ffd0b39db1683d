package card

import "testing"

func testMaster() *Master {
	return &Master{
		ID:        "ST01-001",
		Name:      "テストキャラ",
		Type:      TypeCharacter,
		Color:     ColorRed,
		Cost:      4,
		Power:     5000,
		Counter:   1000,
		Attribute: AttributeSlash,
		Traits:    []string{"麦わらの一味"},
		Keywords:  map[string]bool{KeywordBlocker: true},
	}
}

func TestInstance_Power(t *testing.T) {
	inst := NewInstance(testMaster(), "p1")

	if got := inst.Power(false); got != 5000 {
		t.Errorf("expected base power 5000, got %d", got)
	}

	inst.PowerBuff = 1000
	if got := inst.Power(false); got != 6000 {
		t.Errorf("expected buffed power 6000, got %d", got)
	}

	inst.AttachedDon = 2
	if got := inst.Power(true); got != 8000 {
		t.Errorf("expected don bonus on own turn, got %d", got)
	}
	if got := inst.Power(false); got != 6000 {
		t.Errorf("don bonus must not apply on opponent turn, got %d", got)
	}

	override := 3000
	inst.PowerOverride = &override
	if got := inst.Power(false); got != 4000 {
		t.Errorf("expected override 3000 + buff 1000, got %d", got)
	}
	if got := inst.BasePower(); got != 5000 {
		t.Errorf("BasePower must ignore modifiers, got %d", got)
	}
}

func TestInstance_PowerNonBattler(t *testing.T) {
	m := testMaster()
	m.Type = TypeStage
	inst := NewInstance(m, "p1")
	inst.PowerBuff = 2000
	if got := inst.Power(true); got != 0 {
		t.Errorf("stages have no power, got %d", got)
	}
}

func TestInstance_CurrentCost(t *testing.T) {
	inst := NewInstance(testMaster(), "p1")
	if got := inst.CurrentCost(); got != 4 {
		t.Errorf("expected cost 4, got %d", got)
	}
	inst.CostBuff = -2
	if got := inst.CurrentCost(); got != 2 {
		t.Errorf("expected reduced cost 2, got %d", got)
	}
	inst.CostBuff = -10
	if got := inst.CurrentCost(); got != 0 {
		t.Errorf("cost must floor at zero, got %d", got)
	}
}

func TestInstance_KeywordsDisabled(t *testing.T) {
	inst := NewInstance(testMaster(), "p1")
	if !inst.HasKeyword(KeywordBlocker) {
		t.Fatal("expected innate blocker keyword")
	}

	inst.AbilityDisabled = true
	inst.RefreshKeywords()
	if inst.HasKeyword(KeywordBlocker) {
		t.Error("disabled abilities must clear keywords")
	}

	inst.AbilityDisabled = false
	inst.RefreshKeywords()
	if !inst.HasKeyword(KeywordBlocker) {
		t.Error("keywords must return after re-enabling")
	}
}

func TestInstance_ResetTurnStatus(t *testing.T) {
	inst := NewInstance(testMaster(), "p1")
	override := 9000
	inst.PowerBuff = 2000
	inst.CostBuff = -1
	inst.PowerOverride = &override
	inst.Negated = true
	inst.AbilityDisabled = true
	inst.Flags[FlagAttackDisable] = true
	inst.AttachedDon = 3
	inst.Rested = true

	inst.ResetTurnStatus()

	if inst.PowerBuff != 0 || inst.CostBuff != 0 || inst.PowerOverride != nil {
		t.Error("modifiers must reset")
	}
	if inst.Negated || inst.AbilityDisabled {
		t.Error("negation state must reset")
	}
	if len(inst.Flags) != 0 {
		t.Error("flags must clear")
	}
	if inst.AttachedDon != 0 {
		t.Error("attached don must detach")
	}
	if !inst.Rested {
		t.Error("reset must not change rest state; refresh owns that")
	}
	if !inst.HasKeyword(KeywordBlocker) {
		t.Error("innate keywords must be restored")
	}
}
