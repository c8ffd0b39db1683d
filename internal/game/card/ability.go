package card

import "fmt"

// ActionKind classifies one step of an ability's behavior.
type ActionKind int

const (
	ActionNoOp ActionKind = iota
	ActionDraw
	ActionKO
	ActionTrash
	ActionMoveToHand
	ActionDeckTop
	ActionDeckBottom
	ActionPlayCard
	ActionLook
	ActionShuffle
	ActionPowerBuff
	ActionSetCost
	ActionCostChange
	ActionGrantKeyword
	ActionRest
	ActionActivate
	ActionFreeze
	ActionRampDon
	ActionReturnDon
	ActionMoveAttachedDon
	ActionModifyDonPhase
	ActionDealDamage
	ActionLifeManipulate
	ActionLifeRecover
	ActionRestriction
	ActionAttackDisable
	ActionPreventLeave
	ActionNegateEffect
	ActionRedirectAttack
	ActionExecuteMainEffect
	ActionVictory
	ActionRuleProcessing
	ActionReplaceEffect
	ActionSelectOption
	ActionPassiveEffect
	ActionGuard
	ActionChoice
)

var actionKindNames = map[ActionKind]string{
	ActionNoOp:              "NO_OP",
	ActionDraw:              "DRAW",
	ActionKO:                "KO",
	ActionTrash:             "TRASH",
	ActionMoveToHand:        "MOVE_TO_HAND",
	ActionDeckTop:           "DECK_TOP",
	ActionDeckBottom:        "DECK_BOTTOM",
	ActionPlayCard:          "PLAY_CARD",
	ActionLook:              "LOOK",
	ActionShuffle:           "SHUFFLE",
	ActionPowerBuff:         "POWER_BUFF",
	ActionSetCost:           "SET_COST",
	ActionCostChange:        "COST_CHANGE",
	ActionGrantKeyword:      "GRANT_KEYWORD",
	ActionRest:              "REST",
	ActionActivate:          "ACTIVATE",
	ActionFreeze:            "FREEZE",
	ActionRampDon:           "RAMP_DON",
	ActionReturnDon:         "RETURN_DON",
	ActionMoveAttachedDon:   "MOVE_ATTACHED_DON",
	ActionModifyDonPhase:    "MODIFY_DON_PHASE",
	ActionDealDamage:        "DEAL_DAMAGE",
	ActionLifeManipulate:    "LIFE_MANIPULATE",
	ActionLifeRecover:       "LIFE_RECOVER",
	ActionRestriction:       "RESTRICTION",
	ActionAttackDisable:     "ATTACK_DISABLE",
	ActionPreventLeave:      "PREVENT_LEAVE",
	ActionNegateEffect:      "NEGATE_EFFECT",
	ActionRedirectAttack:    "REDIRECT_ATTACK",
	ActionExecuteMainEffect: "EXECUTE_MAIN_EFFECT",
	ActionVictory:           "VICTORY",
	ActionRuleProcessing:    "RULE_PROCESSING",
	ActionReplaceEffect:     "REPLACE_EFFECT",
	ActionSelectOption:      "SELECT_OPTION",
	ActionPassiveEffect:     "PASSIVE_EFFECT",
	ActionGuard:             "GUARD",
	ActionChoice:            "CHOICE",
}

func (k ActionKind) String() string {
	if name, ok := actionKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ACTION_%d", int(k))
}

// SelectMode controls how a target query picks from its candidate set.
type SelectMode string

const (
	// SelectChoose asks the controlling player to pick up to Count candidates.
	SelectChoose SelectMode = "CHOOSE"
	// SelectAll takes every candidate without asking.
	SelectAll SelectMode = "ALL"
	// SelectSource resolves to the effect's own source card.
	SelectSource SelectMode = "SOURCE"
	// SelectRemaining takes whatever is left in the look scratch zone.
	SelectRemaining SelectMode = "REMAINING"
	// SelectReference re-uses a target saved earlier in the same resolution.
	SelectReference SelectMode = "REFERENCE"
)

// Query is a filter predicate describing which live objects an action affects.
// A zero-valued field means "no constraint"; documented defaults are filled in
// by the descriptor parser.
type Query struct {
	Zone      Zone
	Player    PlayerRel
	CardTypes []Type
	Traits    []string
	Attrs     []string
	Colors    []string
	Names     []string
	// NamePartial matches Names as substrings instead of exact card names.
	NamePartial bool
	// ExcludeNames inverts the name filter ("「X」以外の…").
	ExcludeNames []string

	CostMin  *int
	CostMax  *int
	PowerMin *int
	PowerMax *int
	// BasePower filters against printed power, ignoring current modifiers.
	BasePower bool
	// Vanilla matches only cards without effect text.
	Vanilla bool

	IsRested *bool

	Count int
	UpTo  bool
	Mode  SelectMode
	// Tag names the effect-context slot this query's resolved targets are
	// remembered under for later back-reference.
	Tag string

	RawText string
}

// NeedsSelection reports whether resolving this query requires a player choice.
func (q *Query) NeedsSelection() bool {
	switch q.Mode {
	case SelectAll, SelectSource, SelectRemaining, SelectReference:
		return false
	}
	return true
}

// ConditionKind classifies a structured condition.
type ConditionKind int

const (
	CondNone ConditionKind = iota
	CondLifeCount
	CondHandCount
	CondTrashCount
	CondDeckCount
	CondDonCount
	CondFieldCount
	CondHasTrait
	CondHasUnit
	CondLeaderName
	CondContext
)

var conditionKindNames = map[ConditionKind]string{
	CondNone:       "NONE",
	CondLifeCount:  "LIFE_COUNT",
	CondHandCount:  "HAND_COUNT",
	CondTrashCount: "TRASH_COUNT",
	CondDeckCount:  "DECK_COUNT",
	CondDonCount:   "DON_COUNT",
	CondFieldCount: "FIELD_COUNT",
	CondHasTrait:   "HAS_TRAIT",
	CondHasUnit:    "HAS_UNIT",
	CondLeaderName: "LEADER_NAME",
	CondContext:    "CONTEXT",
}

func (k ConditionKind) String() string {
	if name, ok := conditionKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("COND_%d", int(k))
}

// Context-condition subjects stored in Condition.StrValue for CondContext.
const (
	CtxLastActionSuccess = "LAST_ACTION_SUCCESS"
	CtxLastActionFailure = "LAST_ACTION_FAILURE"
	CtxRevealedEvent     = "REVEALED_TYPE_EVENT"
	CtxRevealedCharacter = "REVEALED_TYPE_CHARACTER"
	CtxRevealedTrait     = "REVEALED_HAS_TRAIT"
	CtxRevealedCost      = "REVEALED_COST_CHECK"
)

// Condition is a structured check evaluated against state and the transient
// effect context. A nil Condition is vacuously true.
type Condition struct {
	Kind     ConditionKind
	Op       CompareOp
	Value    int
	StrValue string
	// Target constrains HAS_TRAIT / HAS_UNIT / revealed-card checks.
	Target  *Query
	RawText string
}

// ChoiceOption is one alternative of an exclusive player choice.
type ChoiceOption struct {
	Label  string
	Action *Action
}

// Action is one node of an ability's behavior tree. Then children execute in
// order, each only if this node's own execution reported success.
type Action struct {
	Kind      ActionKind
	Condition *Condition
	Target    *Query
	Value     int
	// Keyword carries the granted keyword for ActionGrantKeyword.
	Keyword string

	SourceZone Zone
	DestZone   Zone
	// DestPosition is "TOP" or "BOTTOM" for deck placement.
	DestPosition string

	Then    []*Action
	Options []ChoiceOption

	RawText string
}

// Deepest returns the deepest open leaf of the Then chain, used by the parser
// to chain sequential clauses as strictly nested continuations.
func (a *Action) Deepest() *Action {
	if len(a.Then) == 0 {
		return a
	}
	return a.Then[len(a.Then)-1].Deepest()
}

// Ability is one trigger/cost/effect group parsed from a card's text.
// Parsed once per master and shared read-only by every instance.
type Ability struct {
	Trigger TriggerKind
	Costs   []*Action
	Actions []*Action
	RawText string
}
