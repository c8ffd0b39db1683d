package cardtext

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gx5gyqe2-art/opcg-sim-backend-sub000/internal/game/card"
)

// classifyAction maps one clause to an action kind by scanning an ordered
// rule list. Order is load-bearing: compound phrasings that embed generic
// keywords (resource return embeds 戻す, freeze embeds アクティブ) must win
// before the generic single-keyword rules fire.
func classifyAction(text string) card.ActionKind {
	has := func(s string) bool { return strings.Contains(text, s) }

	switch {
	case has("アタック") && has("対象") && has("変更"):
		return card.ActionRedirectAttack
	case has("ドン") && has("戻す") && has("ドンデッキ"):
		return card.ActionReturnDon
	case has("付与されているドン") && has("付与する"):
		return card.ActionMoveAttachedDon
	case has("ドンフェイズ"):
		return card.ActionModifyDonPhase
	case has("ダメージ") && (has("与え") || has("受ける")):
		return card.ActionDealDamage
	case has("アクティブにならない"):
		return card.ActionFreeze
	case has("代わりに"):
		return card.ActionReplaceEffect
	case has("選ぶ") && (has("つ") || has("から")):
		return card.ActionSelectOption
	case has("シャッフル"):
		return card.ActionShuffle
	case has("コスト") && has("にする"):
		return card.ActionSetCost
	case has("場を離れない"):
		return card.ActionPreventLeave
	case has("デッキ") && has("上") && (has("置く") || has("戻す") || has("加える")):
		return card.ActionDeckTop
	case has("できない") || has("不可") || has("加えられない"):
		return card.ActionRestriction
	case has("発動する") && (has("効果") || has("イベント")):
		return card.ActionExecuteMainEffect
	case has("勝利する") && (has("ゲーム") || has("敗北")):
		return card.ActionVictory
	case has("としても扱う") || has("何枚でも") || has("カウンター"):
		return card.ActionRuleProcessing
	case has("アタック") && (has("できない") || has("不可")):
		return card.ActionAttackDisable
	case has("無効"):
		return card.ActionNegateEffect
	case has("ライフ") && has("回復"):
		return card.ActionLifeRecover
	case has("ライフ") && (has("加える") || has("置く") || has("向き")):
		return card.ActionLifeManipulate
	case has("コスト") && (has("-") || has("+") || has("下げる") || has("上げる")):
		return card.ActionCostChange
	case has("得る"):
		return card.ActionGrantKeyword
	case has("ドン") && has("追加"):
		return card.ActionRampDon
	case has("引く"):
		return card.ActionDraw
	case has("登場"):
		return card.ActionPlayCard
	case has("KO"):
		return card.ActionKO
	case has("手札") && (has("戻す") || has("加える")):
		return card.ActionMoveToHand
	case has("トラッシュ") || has("捨てる"):
		return card.ActionTrash
	case has("デッキ") && has("下"):
		return card.ActionDeckBottom
	case has("パワー"):
		return card.ActionPowerBuff
	case has("レスト"):
		return card.ActionRest
	case has("アクティブ"):
		return card.ActionActivate
	}
	return card.ActionNoOp
}

// cleanupPatterns strips action verbs, particles, and modifier numerals from a
// clause so the target parser sees only noun/adjective filter text. Longer,
// more specific patterns run first so a generic tail rule cannot eat part of
// a compound phrase.
var cleanupPatterns = []*regexp.Regexp{
	regexp.MustCompile(`[をにへ]、?持ち主のデッキの下に?(好きな順番で)?(置く|戻す|加え)`),
	regexp.MustCompile(`[をにへ]、?持ち主のデッキの上か下に?(好きな順番で)?(置く|戻す|加え)`),
	regexp.MustCompile(`[をにへ]、?持ち主のデッキの上に?(好きな順番で)?(置く|戻す|加え)`),
	regexp.MustCompile(`[をにへ]、?持ち主の手札に?(戻す|加える)`),
	regexp.MustCompile(`[をにへ]、?手札に?(戻す|加える)`),
	regexp.MustCompile(`[をにへ]、?トラッシュに?(置く|捨てる)`),
	regexp.MustCompile(`[をにへ]、?ライフの上に?(表向きで|裏向きで)?(置く|加える)`),
	regexp.MustCompile(`[をにへ]、?ライフの下に?(表向きで|裏向きで)?(置く|加える)`),
	regexp.MustCompile(`[をにへ]、?ライフの上か下に?(表向きで|裏向きで)?(置く|加える)`),
	regexp.MustCompile(`[をにへ]、?レストで登場させる`),
	regexp.MustCompile(`[をにへ]、?アクティブで登場させる`),
	regexp.MustCompile(`[をにへ]、?登場させる`),
	regexp.MustCompile(`[をにへ]、?KOする`),
	regexp.MustCompile(`[をにへ]、?レストにする`),
	regexp.MustCompile(`[をにへ]、?アクティブにする`),
	regexp.MustCompile(`[をにへ]、?公開(する|し)`),

	regexp.MustCompile(`、?手札に?加える`),
	regexp.MustCompile(`、?手札に?戻す`),
	regexp.MustCompile(`、?デッキの下に?置く`),
	regexp.MustCompile(`、?登場させる`),
	regexp.MustCompile(`、?KOする`),

	regexp.MustCompile(`このターン中、?`),
	regexp.MustCompile(`このバトル中、?`),
	regexp.MustCompile(`パワー[+\-]?\d+`),
	regexp.MustCompile(`コスト[+\-]?\d+`),
	regexp.MustCompile(`にする`),

	regexp.MustCompile(`できる`),
	regexp.MustCompile(`持つ`),
	regexp.MustCompile(`いる`),
	regexp.MustCompile(`枚?まで[を、]*`),

	// Verb remnants left once できる/にする are gone, e.g. a rest cost
	// reduced to "ドン1枚をレストに".
	regexp.MustCompile(`レストに$`),
	regexp.MustCompile(`アクティブに$`),

	regexp.MustCompile(`^[、,]+`),
	regexp.MustCompile(`[、,]+$`),
}

var trailingParticle = regexp.MustCompile(`[をにが]、?$`)

// cleanupTargetText reduces a clause to bare target-filter text.
func cleanupTargetText(text string) string {
	cleaned := text
	for _, p := range cleanupPatterns {
		cleaned = p.ReplaceAllString(cleaned, "")
	}
	// Bare particles go last so they cannot fire inside longer phrases.
	cleaned = trailingParticle.ReplaceAllString(cleaned, "")
	return strings.TrimSpace(cleaned)
}

var (
	signedNumber = regexp.MustCompile(`([+\-]?)(\d+)`)
	powerNumber  = regexp.MustCompile(`パワー([+\-]?)(\d+)`)
	costNumber   = regexp.MustCompile(`コスト([+\-]?)(\d+)`)
)

// extractValue pulls the clause's operative number. Power and cost changes
// take the number scoped to their own keyword so an unrelated count (枚数,
// card name digits) cannot shadow the delta; everything else takes the first
// signed number.
func extractValue(text string, kind card.ActionKind) int {
	switch kind {
	case card.ActionPowerBuff:
		if m := powerNumber.FindStringSubmatch(text); m != nil {
			return signedAtoi(m[1], m[2])
		}
	case card.ActionCostChange, card.ActionSetCost:
		if m := costNumber.FindStringSubmatch(text); m != nil {
			return signedAtoi(m[1], m[2])
		}
	}
	if m := signedNumber.FindStringSubmatch(text); m != nil {
		return signedAtoi(m[1], m[2])
	}
	return 0
}

func signedAtoi(sign, digits string) int {
	n, _ := strconv.Atoi(digits)
	if sign == "-" {
		return -n
	}
	return n
}

// knownKeywords are the grantable battle keywords, longest first so the
// substring scan cannot stop at a prefix.
var knownKeywords = []string{
	card.KeywordDoubleAttack,
	card.KeywordBlocker,
	card.KeywordBanish,
	card.KeywordRush,
}

var bracketedKeyword = regexp.MustCompile(`《([^》]+)》`)

// extractKeyword finds the keyword a grant clause bestows, preferring an
// explicit 《…》 bracket over the known-keyword scan.
func extractKeyword(text string) string {
	if m := bracketedKeyword.FindStringSubmatch(text); m != nil {
		return m[1]
	}
	for _, kw := range knownKeywords {
		if strings.Contains(text, kw) {
			return kw
		}
	}
	return ""
}
