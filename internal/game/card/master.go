package card

// Master is the immutable, shared definition of a printed card. Created once
// at data-load time and shared read-only by every instance of that card.
type Master struct {
	ID          string
	Name        string
	Type        Type
	Color       Color
	Cost        int
	Power       int
	Counter     int
	Life        int
	Attribute   Attribute
	Traits      []string
	EffectText  string
	TriggerText string
	Keywords    map[string]bool
	Abilities   []*Ability
}

// HasTrait reports whether the printed trait list contains t.
func (m *Master) HasTrait(t string) bool {
	for _, trait := range m.Traits {
		if trait == t {
			return true
		}
	}
	return false
}

// IsVanilla reports whether the card has no effect text at all.
func (m *Master) IsVanilla() bool {
	return m.EffectText == "" && m.TriggerText == ""
}
