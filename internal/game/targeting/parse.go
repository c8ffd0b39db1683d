// Package targeting turns target-descriptor text into structured queries.
// Parsing is literal keyword scanning over a constrained sublanguage, not
// grammar-general; resolving a query against live state belongs to the game
// package.
package targeting

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gx5gyqe2-art/opcg-sim-backend-sub000/internal/game/card"
)

var (
	namePattern  = regexp.MustCompile(`「([^」]+)」`)
	traitPattern = regexp.MustCompile(`特徴《([^》]+)》`)
	attrPattern  = regexp.MustCompile(`属性\(([^)]+)\)`)
	costPattern  = regexp.MustCompile(`コスト(\d+)(以下|以上)?`)
	powerPattern = regexp.MustCompile(`パワー(\d+)(以下|以上)?`)
	countPattern = regexp.MustCompile(`(\d+)枚`)
)

var colorWords = []string{"赤", "緑", "青", "紫", "黒", "黄"}

// Parse extracts a structured query from descriptor text. Fields the text
// does not mention keep documented defaults: zone FIELD, player the supplied
// default, count 1, mode CHOOSE. Extraction follows a fixed precedence so a
// later keyword cannot override an earlier shortcut.
func Parse(text string, defaultPlayer card.PlayerRel) *card.Query {
	q := &card.Query{
		Zone:    card.ZoneField,
		Player:  defaultPlayer,
		Count:   1,
		Mode:    card.SelectChoose,
		RawText: text,
	}

	// Self-reference shortcut: the effect's own source card. A trailing
	// possessive is a modifier remnant ("このキャラの" after the buff numeral
	// was stripped), so it folds into the same shortcut.
	if t := strings.TrimSuffix(text, "の"); t == "このキャラ" || t == "このカード" || t == "自身" {
		q.Mode = card.SelectSource
		return q
	}

	// Remaining shortcut: whatever is left in the look scratch zone.
	if strings.Contains(text, "残り") {
		q.Mode = card.SelectRemaining
		q.Count = -1
		q.Zone = card.ZoneTemp
		return q
	}

	// Player relation. "持ち主" only counts as a relation when it is not the
	// possessive of a movement destination left over from clause cleanup.
	switch {
	case strings.Contains(text, "お互い"):
		q.Player = card.RelAll
	case strings.Contains(text, "持ち主") && !strings.Contains(text, "持ち主の手札") && !strings.Contains(text, "持ち主のデッキ"):
		q.Player = card.RelOwner
	case strings.Contains(text, "相手"):
		// Inside an opponent-defaulted clause, an explicit "相手" flips back:
		// the opponent's opponent is the acting player.
		if defaultPlayer == card.RelOpponent {
			q.Player = card.RelSelf
		} else {
			q.Player = card.RelOpponent
		}
	case strings.Contains(text, "自分") || strings.Contains(text, "自身"):
		q.Player = card.RelSelf
	}

	// Zone. A deck positional word that survives cleanup is a destination,
	// not a zone filter, so the deck zone requires デッキ without 上/下 verbs.
	switch {
	case strings.Contains(text, "手札"):
		q.Zone = card.ZoneHand
	case strings.Contains(text, "トラッシュ"):
		q.Zone = card.ZoneTrash
	case strings.Contains(text, "ライフ"):
		q.Zone = card.ZoneLife
	case strings.Contains(text, "デッキ") && !deckIsDestination(text):
		q.Zone = card.ZoneDeck
	case strings.Contains(text, "ドン"):
		q.Zone = card.ZoneDonArea
	default:
		q.Zone = card.ZoneField
	}

	if strings.Contains(text, "リーダー") {
		q.CardTypes = append(q.CardTypes, card.TypeLeader)
	}
	if strings.Contains(text, "キャラ") {
		q.CardTypes = append(q.CardTypes, card.TypeCharacter)
	}
	if strings.Contains(text, "イベント") {
		q.CardTypes = append(q.CardTypes, card.TypeEvent)
	}
	if strings.Contains(text, "ステージ") {
		q.CardTypes = append(q.CardTypes, card.TypeStage)
	}

	// Quoted names; 「X」以外の excludes instead of filtering.
	for _, m := range namePattern.FindAllStringSubmatch(text, -1) {
		if strings.Contains(text, m[0]+"以外の") {
			q.ExcludeNames = append(q.ExcludeNames, m[1])
			continue
		}
		q.Names = append(q.Names, m[1])
	}
	if strings.Contains(text, "を含む") {
		q.NamePartial = true
	}

	for _, m := range traitPattern.FindAllStringSubmatch(text, -1) {
		q.Traits = append(q.Traits, m[1])
	}
	for _, m := range attrPattern.FindAllStringSubmatch(text, -1) {
		q.Attrs = append(q.Attrs, m[1])
	}
	for _, c := range colorWords {
		if strings.Contains(text, c+"の") {
			q.Colors = append(q.Colors, c)
		}
	}

	// Numeric thresholds. Signed numbers are deltas an action applies, and a
	// number before にする is a set-to value; neither is a filter, but both
	// were already stripped by clause cleanup, so plain numbers here are
	// genuine bounds. 以上 is a lower bound, anything else an upper bound.
	if m := costPattern.FindStringSubmatch(text); m != nil {
		val, _ := strconv.Atoi(m[1])
		if m[2] == "以上" {
			q.CostMin = &val
		} else {
			q.CostMax = &val
		}
	}
	if m := powerPattern.FindStringSubmatch(text); m != nil {
		val, _ := strconv.Atoi(m[1])
		if m[2] == "以上" {
			q.PowerMin = &val
		} else {
			q.PowerMax = &val
		}
	}
	if strings.Contains(text, "元々の") {
		q.BasePower = true
	}

	if strings.Contains(text, "レスト") {
		rested := true
		q.IsRested = &rested
	} else if strings.Contains(text, "アクティブ") {
		active := false
		q.IsRested = &active
	}

	if strings.Contains(text, "効果を持たない") {
		q.Vanilla = true
	}

	if strings.Contains(text, "まで") {
		q.UpTo = true
	}

	if strings.Contains(text, "すべて") || strings.Contains(text, "全て") {
		q.Count = -1
		q.Mode = card.SelectAll
	} else if m := countPattern.FindStringSubmatch(text); m != nil {
		q.Count, _ = strconv.Atoi(m[1])
	}

	return q
}

// deckIsDestination reports whether デッキ in the text is part of a deck
// top/bottom placement phrase rather than a zone filter.
func deckIsDestination(text string) bool {
	if !strings.Contains(text, "デッキの上") && !strings.Contains(text, "デッキの下") {
		return false
	}
	for _, verb := range []string{"置く", "戻す", "加える"} {
		if strings.Contains(text, verb) {
			return true
		}
	}
	return false
}
