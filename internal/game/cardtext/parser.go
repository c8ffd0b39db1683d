package cardtext

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gx5gyqe2-art/opcg-sim-backend-sub000/internal/game/card"
	"github.com/gx5gyqe2-art/opcg-sim-backend-sub000/internal/game/targeting"
)

// triggerMarkers is scanned in order; the more specific compound phrase must
// precede any marker it embeds.
var triggerMarkers = []struct {
	marker string
	kind   card.TriggerKind
}{
	{"『登場時』", card.TriggerOnPlay},
	{"『起動メイン』", card.TriggerActivateMain},
	{"『アタック時』", card.TriggerOnAttack},
	{"『ブロック時』", card.TriggerOnBlock},
	{"『KO時』", card.TriggerOnKO},
	{"『相手のターン終了時』", card.TriggerOppTurnEnd},
	{"『ターン終了時』", card.TriggerTurnEnd},
	{"『自分のターン中』", card.TriggerYourTurn},
	{"『相手のターン中』", card.TriggerPassive},
	{"『カウンター』", card.TriggerCounter},
	{"『トリガー』", card.TriggerLifeTrigger},
	{"『ゲーム開始時』", card.TriggerGameStart},
}

var (
	triggerMarkerAny = regexp.MustCompile(`『[^』]+』`)
	chainConnector   = regexp.MustCompile(`その後、|、その後`)
	conditionClause  = regexp.MustCompile(`^(.+?)(場合|なら|することで)、(.+)$`)
	choiceClause     = regexp.MustCompile(`^(.+?[るうくぐすつぬぶむ])か、(.+)$`)
	lookSplit        = regexp.MustCompile(`見て|見る`)
	remainderTail    = regexp.MustCompile(`残りを.*`)
)

// Parse turns raw printed effect text into ability trees. Each '/'-separated
// segment becomes one ability; a segment with neither costs nor actions is
// dropped.
func Parse(raw string) []*card.Ability {
	if raw == "" {
		return nil
	}
	normalized := Normalize(raw)
	var abilities []*card.Ability
	for _, part := range strings.Split(normalized, "/") {
		if strings.TrimSpace(part) == "" {
			continue
		}
		ab := parseAbility(part)
		if ab != nil {
			abilities = append(abilities, ab)
		}
	}
	return abilities
}

func parseAbility(part string) *card.Ability {
	trigger := detectTrigger(part)
	body := triggerMarkerAny.ReplaceAllString(part, "")

	var costs, actions []*card.Action
	if costText, effectText, ok := strings.Cut(body, ":"); ok {
		costs = parseSequence(costText, true)
		actions = parseSequence(effectText, false)
	} else {
		actions = parseSequence(body, false)
	}
	if len(costs) == 0 && len(actions) == 0 {
		return nil
	}
	return &card.Ability{Trigger: trigger, Costs: costs, Actions: actions, RawText: part}
}

func detectTrigger(text string) card.TriggerKind {
	for _, tm := range triggerMarkers {
		if strings.Contains(text, tm.marker) {
			return tm.kind
		}
	}
	return card.TriggerUnknown
}

// parseSequence builds the strictly nested continuation chain: each sentence
// or その後 clause hangs off the deepest leaf of the previous one, so a failed
// step cuts off everything written after it.
func parseSequence(text string, isCost bool) []*card.Action {
	if text == "" {
		return nil
	}
	var roots []*card.Action
	var last *card.Action
	for _, sentence := range strings.Split(text, "。") {
		if sentence == "" {
			continue
		}
		for _, clause := range chainConnector.Split(sentence, -1) {
			for _, act := range parseLogicBlock(clause, isCost) {
				if last != nil {
					last.Then = append(last.Then, act)
				} else {
					roots = append(roots, act)
				}
				last = act.Deepest()
			}
		}
	}
	return roots
}

// parseLogicBlock handles the two structural clause forms, exclusive choice
// and condition, before falling back to a plain atomic action.
func parseLogicBlock(text string, isCost bool) []*card.Action {
	if text == "" {
		return nil
	}

	// "Aするか、Bする" offers exactly two alternatives; the player resolves
	// one and the other never executes.
	if m := choiceClause.FindStringSubmatch(text); m != nil && !strings.Contains(m[1], "場合") {
		left := parseLogicBlock(m[1], isCost)
		right := parseLogicBlock(m[2], isCost)
		if len(left) == 1 && len(right) == 1 {
			return []*card.Action{{
				Kind: card.ActionChoice,
				Options: []card.ChoiceOption{
					{Label: m[1], Action: left[0]},
					{Label: m[2], Action: right[0]},
				},
				RawText: text,
			}}
		}
	}

	if m := conditionClause.FindStringSubmatch(text); m != nil {
		return []*card.Action{{
			Kind:      card.ActionNoOp,
			Condition: parseCondition(m[1]),
			Then:      parseSequence(m[3], isCost),
			RawText:   text,
		}}
	}

	return parseAtomic(text, isCost)
}

// noTargetKinds never carry a target query; their effect is global or
// numeric.
var noTargetKinds = map[card.ActionKind]bool{
	card.ActionDraw:           true,
	card.ActionRampDon:        true,
	card.ActionShuffle:        true,
	card.ActionLifeRecover:    true,
	card.ActionVictory:        true,
	card.ActionRuleProcessing: true,
	card.ActionSelectOption:   true,
	card.ActionReplaceEffect:  true,
	card.ActionModifyDonPhase: true,
	card.ActionPassiveEffect:  true,
}

// calcOrRuleWords mark per-count formulas and standing rule text, neither of
// which takes a resolvable target.
var calcOrRuleWords = []string{"につき", "時", "できない", "されない", "得る", "いる"}

var backRefWords = []string{"それ", "そのカード", "そのキャラ"}

func parseAtomic(text string, isCost bool) []*card.Action {
	if strings.Contains(text, "デッキ") && (strings.Contains(text, "見て") || strings.Contains(text, "見る")) {
		return parseLook(text)
	}

	kind := classifyAction(text)
	act := &card.Action{
		Kind:    kind,
		Value:   extractValue(text, kind),
		RawText: text,
	}
	if kind == card.ActionGrantKeyword {
		act.Keyword = extractKeyword(text)
	}

	if noTargetKinds[kind] || containsAny(text, calcOrRuleWords) {
		return []*card.Action{act}
	}

	if containsAny(text, backRefWords) {
		act.Target = &card.Query{
			Mode:    card.SelectReference,
			Tag:     "last_target",
			RawText: text,
		}
		return []*card.Action{act}
	}

	defaultPlayer := card.RelSelf
	switch kind {
	case card.ActionKO, card.ActionDealDamage, card.ActionRest, card.ActionAttackDisable:
		// Harmful actions with no explicit owner aim at the opponent. When
		// the text names a player itself the matcher's relation scan decides,
		// and a cost always spends the acting player's own material.
		if !isCost && !strings.Contains(text, "自分") && !strings.Contains(text, "相手") {
			defaultPlayer = card.RelOpponent
		}
	}

	act.Target = targeting.Parse(cleanupTargetText(text), defaultPlayer)
	if strings.Contains(text, "選び") || strings.Contains(text, "対象とし") {
		act.Target.Tag = "last_target"
	}
	return []*card.Action{act}
}

// parseLook builds the look-at-deck chain: reveal N to the scratch zone, then
// optionally take a matching card to hand, then put what is left on the deck
// bottom.
func parseLook(text string) []*card.Action {
	n := extractValue(text, card.ActionLook)
	if n <= 0 {
		n = 1
	}
	look := &card.Action{
		Kind:       card.ActionLook,
		Value:      n,
		SourceZone: card.ZoneDeck,
		DestZone:   card.ZoneTemp,
		RawText:    "デッキの上から" + strconv.Itoa(n) + "枚を見る",
	}

	parts := lookSplit.Split(text, 2)
	post := ""
	if len(parts) > 1 {
		post = parts[1]
	}

	if strings.Contains(post, "加える") || strings.Contains(post, "公開") {
		clean := remainderTail.ReplaceAllString(cleanupTargetText(post), "")
		moveTarget := targeting.Parse(clean, card.RelSelf)
		moveTarget.Zone = card.ZoneTemp
		moveTarget.Tag = "last_target"
		look.Then = append(look.Then, &card.Action{
			Kind:       card.ActionMoveToHand,
			Target:     moveTarget,
			SourceZone: card.ZoneTemp,
			DestZone:   card.ZoneHand,
			RawText:    "選択して手札に加える",
		})
	}

	if strings.Contains(text, "残り") || strings.Contains(text, "下") {
		bottom := &card.Action{
			Kind: card.ActionDeckBottom,
			Target: &card.Query{
				Zone:   card.ZoneTemp,
				Player: card.RelSelf,
				Mode:   card.SelectAll,
				Count:  -1,
			},
			SourceZone:   card.ZoneTemp,
			DestZone:     card.ZoneDeck,
			DestPosition: "BOTTOM",
			RawText:      "残りをデッキの下に置く",
		}
		if len(look.Then) > 0 {
			last := look.Then[len(look.Then)-1]
			last.Then = append(last.Then, bottom)
		} else {
			look.Then = append(look.Then, bottom)
		}
	}

	return []*card.Action{look}
}

var (
	quotedName     = regexp.MustCompile(`[「『]([^」』]+)[」』]`)
	bracketedTrait = regexp.MustCompile(`[《<]([^》>]+)[》>]`)
	bareNumber     = regexp.MustCompile(`\d+`)
)

// parseCondition builds a structured check from the clause before 場合/なら/
// することで. Reveal and did-it-happen phrasings become context checks; zone
// keywords become counts; name and trait brackets refine or retype the check.
func parseCondition(text string) *card.Condition {
	cond := &card.Condition{Kind: card.CondNone, Op: card.OpEq, RawText: text}
	clean := cleanupTargetText(text)

	switch {
	case strings.Contains(text, "公開したカード"):
		cond.Kind = card.CondContext
		switch {
		case strings.Contains(text, "イベント"):
			cond.StrValue = card.CtxRevealedEvent
		case strings.Contains(text, "キャラ"):
			cond.StrValue = card.CtxRevealedCharacter
		case strings.Contains(text, "特徴"):
			cond.StrValue = card.CtxRevealedTrait
			if m := bracketedTrait.FindStringSubmatch(text); m != nil {
				cond.Target = &card.Query{Traits: []string{m[1]}, RawText: m[0]}
			}
		case strings.Contains(text, "コスト"):
			cond.StrValue = card.CtxRevealedCost
			if m := bareNumber.FindString(text); m != "" {
				v, _ := strconv.Atoi(m)
				cond.Target = &card.Query{CostMin: &v, RawText: text}
			}
		}
	case strings.Contains(text, "そうしなかった"):
		cond.Kind = card.CondContext
		cond.StrValue = card.CtxLastActionFailure
	case strings.Contains(text, "そうした") || strings.Contains(text, "登場させた"):
		cond.Kind = card.CondContext
		cond.StrValue = card.CtxLastActionSuccess
	case strings.Contains(text, "ライフ"):
		cond.Kind = card.CondLifeCount
	case strings.Contains(text, "ドン"):
		cond.Kind = card.CondDonCount
	case strings.Contains(text, "手札"):
		cond.Kind = card.CondHandCount
	case strings.Contains(text, "トラッシュ"):
		cond.Kind = card.CondTrashCount
	case strings.Contains(text, "デッキ"):
		cond.Kind = card.CondDeckCount
	case strings.Contains(text, "特徴"):
		cond.Kind = card.CondHasTrait
	case strings.Contains(text, "リーダー"):
		cond.Kind = card.CondLeaderName
	case strings.Contains(text, "キャラ") || strings.Contains(text, "持つ"):
		cond.Kind = card.CondHasUnit
	}

	if cond.Kind != card.CondContext && cond.Kind != card.CondNone {
		if cond.Kind == card.CondHasTrait || cond.Kind == card.CondHasUnit {
			cond.Target = targeting.Parse(clean, card.RelSelf)
		}
		if m := bareNumber.FindString(text); m != "" {
			cond.Value, _ = strconv.Atoi(m)
		}
	}

	if strings.Contains(text, "以上") {
		cond.Op = card.OpGte
	} else if strings.Contains(text, "以下") {
		cond.Op = card.OpLte
	}

	if m := quotedName.FindStringSubmatch(text); m != nil {
		cond.StrValue = m[1]
		if cond.Kind == card.CondNone {
			cond.Kind = card.CondLeaderName
		}
	}
	if m := bracketedTrait.FindStringSubmatch(text); m != nil && cond.Kind != card.CondContext {
		cond.Kind = card.CondHasTrait
		cond.Op = card.OpHas
		cond.StrValue = m[1]
	}
	if cond.Kind == card.CondLeaderName {
		cond.Op = card.OpEq
	}

	return cond
}

func containsAny(text string, words []string) bool {
	for _, w := range words {
		if strings.Contains(text, w) {
			return true
		}
	}
	return false
}
