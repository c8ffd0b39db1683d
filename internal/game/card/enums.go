package card

import "fmt"

// Color represents a card's printed color.
type Color string

const (
	ColorRed     Color = "RED"
	ColorGreen   Color = "GREEN"
	ColorBlue    Color = "BLUE"
	ColorPurple  Color = "PURPLE"
	ColorBlack   Color = "BLACK"
	ColorYellow  Color = "YELLOW"
	ColorMulti   Color = "MULTI"
	ColorUnknown Color = "UNKNOWN"
)

// colorGlyphs maps colors to the single-character form used in card text.
var colorGlyphs = map[Color]string{
	ColorRed:    "赤",
	ColorGreen:  "緑",
	ColorBlue:   "青",
	ColorPurple: "紫",
	ColorBlack:  "黒",
	ColorYellow: "黄",
	ColorMulti:  "多色",
}

// Glyph returns the card-text form of the color ("赤", "青", ...).
func (c Color) Glyph() string {
	if g, ok := colorGlyphs[c]; ok {
		return g
	}
	return "不明"
}

// Type represents the printed card type.
type Type string

const (
	TypeLeader    Type = "LEADER"
	TypeCharacter Type = "CHARACTER"
	TypeEvent     Type = "EVENT"
	TypeStage     Type = "STAGE"
	TypeUnknown   Type = "UNKNOWN"
)

// typeGlyphs maps card types to their card-text form.
var typeGlyphs = map[Type]string{
	TypeLeader:    "リーダー",
	TypeCharacter: "キャラクター",
	TypeEvent:     "イベント",
	TypeStage:     "ステージ",
}

// Glyph returns the card-text form of the type.
func (t Type) Glyph() string {
	if g, ok := typeGlyphs[t]; ok {
		return g
	}
	return "不明"
}

// Attribute represents a character's battle attribute.
type Attribute string

const (
	AttributeSlash   Attribute = "SLASH"
	AttributeStrike  Attribute = "STRIKE"
	AttributeShoot   Attribute = "SHOOT"
	AttributeSpecial Attribute = "SPECIAL"
	AttributeWisdom  Attribute = "WISDOM"
	AttributeNone    Attribute = "NONE"
)

var attributeGlyphs = map[Attribute]string{
	AttributeSlash:   "斬",
	AttributeStrike:  "打",
	AttributeShoot:   "射",
	AttributeSpecial: "特",
	AttributeWisdom:  "知",
	AttributeNone:    "-",
}

// Glyph returns the single-character card-text form of the attribute.
func (a Attribute) Glyph() string {
	if g, ok := attributeGlyphs[a]; ok {
		return g
	}
	return "-"
}

// Zone names a card location owned by a player.
type Zone int

const (
	ZoneField Zone = iota
	ZoneHand
	ZoneDeck
	ZoneTrash
	ZoneLife
	ZoneDonArea
	ZoneTemp
	ZoneAny
)

var zoneNames = map[Zone]string{
	ZoneField:   "FIELD",
	ZoneHand:    "HAND",
	ZoneDeck:    "DECK",
	ZoneTrash:   "TRASH",
	ZoneLife:    "LIFE",
	ZoneDonArea: "DON_AREA",
	ZoneTemp:    "TEMP",
	ZoneAny:     "ANY",
}

func (z Zone) String() string {
	if name, ok := zoneNames[z]; ok {
		return name
	}
	return fmt.Sprintf("ZONE_%d", int(z))
}

// PlayerRel expresses which player a target query refers to, relative to the
// player resolving the effect.
type PlayerRel string

const (
	RelSelf     PlayerRel = "SELF"
	RelOpponent PlayerRel = "OPPONENT"
	RelOwner    PlayerRel = "OWNER"
	RelAll      PlayerRel = "ALL"
)

// TriggerKind is the game event that offers an ability for resolution.
type TriggerKind string

const (
	TriggerOnPlay       TriggerKind = "ON_PLAY"
	TriggerOnAttack     TriggerKind = "ON_ATTACK"
	TriggerOnBlock      TriggerKind = "ON_BLOCK"
	TriggerOnKO         TriggerKind = "ON_KO"
	TriggerActivateMain TriggerKind = "ACTIVATE_MAIN"
	TriggerTurnEnd      TriggerKind = "TURN_END"
	TriggerOppTurnEnd   TriggerKind = "OPP_TURN_END"
	TriggerYourTurn     TriggerKind = "YOUR_TURN"
	TriggerPassive      TriggerKind = "PASSIVE"
	TriggerCounter      TriggerKind = "COUNTER"
	TriggerLifeTrigger  TriggerKind = "TRIGGER"
	TriggerGameStart    TriggerKind = "GAME_START"
	TriggerUnknown      TriggerKind = "UNKNOWN"
)

// CompareOp is a comparison operator used by conditions.
type CompareOp string

const (
	OpEq  CompareOp = "=="
	OpNeq CompareOp = "!="
	OpGt  CompareOp = ">"
	OpLt  CompareOp = "<"
	OpGte CompareOp = ">="
	OpLte CompareOp = "<="
	OpHas CompareOp = "HAS"
)

// Compare applies the operator to a pair of ints. OpHas is not meaningful for
// numeric comparison and always reports false here.
func (op CompareOp) Compare(got, want int) bool {
	switch op {
	case OpEq:
		return got == want
	case OpNeq:
		return got != want
	case OpGt:
		return got > want
	case OpLt:
		return got < want
	case OpGte:
		return got >= want
	case OpLte:
		return got <= want
	default:
		return false
	}
}

// Keyword constants as they appear in card text.
const (
	KeywordBlocker      = "ブロッカー"
	KeywordRush         = "速攻"
	KeywordDoubleAttack = "ダブルアタック"
	KeywordBanish       = "バニッシュ"
)
