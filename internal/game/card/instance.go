package card

import "github.com/google/uuid"

// Instance flags set by effects for the remainder of a turn.
const (
	FlagFreeze        = "FREEZE"
	FlagAttackDisable = "ATTACK_DISABLE"
	FlagPreventLeave  = "PREVENT_LEAVE"
)

// Instance is one physical copy of a card in play. It references its shared
// Master and adds mutable runtime state. Instances are never destroyed, only
// moved between zones.
type Instance struct {
	Master  *Master
	OwnerID string
	UUID    string

	Rested      bool
	FaceUp      bool
	NewlyPlayed bool
	AttachedDon int

	PowerBuff     int
	CostBuff      int
	PowerOverride *int

	Keywords map[string]bool
	Flags    map[string]bool

	Negated         bool
	AbilityDisabled bool
	AbilityUses     map[int]int
}

// NewInstance creates a playable copy of a master owned by ownerID.
func NewInstance(m *Master, ownerID string) *Instance {
	inst := &Instance{
		Master:      m,
		OwnerID:     ownerID,
		UUID:        uuid.NewString(),
		Keywords:    make(map[string]bool),
		Flags:       make(map[string]bool),
		AbilityUses: make(map[int]int),
	}
	inst.RefreshKeywords()
	return inst
}

// RefreshKeywords recomputes the live keyword set from the master's innate
// keywords plus keyword-granting actions, honoring ability-disabled state.
func (ci *Instance) RefreshKeywords() {
	ci.Keywords = make(map[string]bool)
	if ci.AbilityDisabled {
		return
	}
	for kw := range ci.Master.Keywords {
		ci.Keywords[kw] = true
	}
	for _, ability := range ci.Master.Abilities {
		for _, action := range ability.Actions {
			if action.Kind == ActionGrantKeyword && action.Keyword != "" && action.Target == nil {
				ci.Keywords[action.Keyword] = true
			}
		}
	}
}

// HasKeyword reports whether the instance currently carries the keyword.
func (ci *Instance) HasKeyword(kw string) bool {
	return ci.Keywords[kw]
}

// Power returns current power: base or override, plus buffs, plus the
// attached-don bonus which only counts on the controller's own turn.
func (ci *Instance) Power(myTurn bool) int {
	if ci.Master.Type != TypeLeader && ci.Master.Type != TypeCharacter {
		return 0
	}
	base := ci.Master.Power
	if ci.PowerOverride != nil {
		base = *ci.PowerOverride
	}
	total := base + ci.PowerBuff
	if myTurn {
		total += ci.AttachedDon * 1000
	}
	return total
}

// BasePower returns the printed power, ignoring all modifiers. Queries that
// filter on "original" power read this.
func (ci *Instance) BasePower() int {
	return ci.Master.Power
}

// CurrentCost returns printed cost plus modifiers, floored at zero.
func (ci *Instance) CurrentCost() int {
	cost := ci.Master.Cost + ci.CostBuff
	if cost < 0 {
		return 0
	}
	return cost
}

// ResetTurnStatus clears all transient per-turn state: buffs, overrides,
// flags, negation, ability usage, attached don. The rest state is left alone;
// refresh handles that separately because of the freeze flag.
func (ci *Instance) ResetTurnStatus() {
	ci.PowerBuff = 0
	ci.CostBuff = 0
	ci.PowerOverride = nil
	ci.Negated = false
	ci.AbilityDisabled = false
	ci.Flags = make(map[string]bool)
	ci.AbilityUses = make(map[int]int)
	ci.AttachedDon = 0
	ci.NewlyPlayed = false
	ci.RefreshKeywords()
}
