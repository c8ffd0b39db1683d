package game

import (
	"go.uber.org/zap"

	"github.com/gx5gyqe2-art/opcg-sim-backend-sub000/internal/game/card"
)

// applyAction performs one node's state mutation against its resolved
// targets. The switch is exhaustive over the action catalog; an unknown kind
// is a programming error surfaced by the default arm. The returned bool is
// the success the then-chain gates on.
func (g *Game) applyAction(p *Player, node *card.Action, source *card.Instance, targets []*card.Instance, ctx *effectContext) (bool, error) {
	mandatoryHit := func() bool {
		if node.Target == nil || node.Target.UpTo {
			return true
		}
		return len(targets) > 0
	}

	switch node.Kind {
	case card.ActionNoOp, card.ActionRuleProcessing, card.ActionReplaceEffect,
		card.ActionPassiveEffect, card.ActionSelectOption, card.ActionGuard:
		// Structural or rule-text nodes: nothing to mutate here.
		return true, nil

	case card.ActionDraw:
		n := node.Value
		if n <= 0 {
			n = 1
		}
		return g.DrawCards(p, n) > 0, nil

	case card.ActionKO:
		moved := 0
		for _, t := range targets {
			if t.Flags[card.FlagPreventLeave] {
				g.logger.Debug("KO prevented", zap.String("card", t.Master.Name))
				continue
			}
			owner, _, ok := g.locate(t)
			if !ok || t.Master.Type == card.TypeLeader {
				continue
			}
			if err := g.MoveCard(t, card.ZoneTrash, owner, ""); err != nil {
				return false, err
			}
			moved++
			g.logger.Info("card KO'd",
				zap.String("game_id", g.ID),
				zap.String("card", t.Master.Name))
		}
		return moved > 0 || (node.Target != nil && node.Target.UpTo), nil

	case card.ActionTrash:
		for _, t := range targets {
			owner, _, ok := g.locate(t)
			if !ok {
				continue
			}
			if err := g.MoveCard(t, card.ZoneTrash, owner, ""); err != nil {
				return false, err
			}
		}
		return mandatoryHit(), nil

	case card.ActionMoveToHand:
		for _, t := range targets {
			if t.Flags[card.FlagPreventLeave] {
				continue
			}
			owner, _, ok := g.locate(t)
			if !ok {
				continue
			}
			if err := g.MoveCard(t, card.ZoneHand, owner, ""); err != nil {
				return false, err
			}
		}
		return mandatoryHit(), nil

	case card.ActionDeckTop, card.ActionDeckBottom:
		pos := "BOTTOM"
		if node.Kind == card.ActionDeckTop {
			pos = "TOP"
		}
		if node.DestPosition != "" {
			pos = node.DestPosition
		}
		for _, t := range targets {
			if t.Flags[card.FlagPreventLeave] {
				continue
			}
			owner, _, ok := g.locate(t)
			if !ok {
				continue
			}
			if err := g.MoveCard(t, card.ZoneDeck, owner, pos); err != nil {
				return false, err
			}
		}
		return mandatoryHit(), nil

	case card.ActionPlayCard:
		// Effect-driven play: no cost, enters the field fresh.
		for _, t := range targets {
			owner, _, ok := g.locate(t)
			if !ok {
				owner = p
			}
			if err := g.MoveCard(t, card.ZoneField, owner, ""); err != nil {
				return false, err
			}
			t.NewlyPlayed = true
			t.RefreshKeywords()
		}
		return mandatoryHit(), nil

	case card.ActionLook:
		n := node.Value
		if n <= 0 {
			n = 1
		}
		looked := 0
		for i := 0; i < n && len(p.Deck) > 0; i++ {
			c := p.Deck[0]
			p.Deck = p.Deck[1:]
			c.FaceUp = true
			p.Temp = append(p.Temp, c)
			ctx.revealed = append(ctx.revealed, c)
			looked++
		}
		g.logger.Debug("looked at deck top",
			zap.String("game_id", g.ID),
			zap.String("player", p.ID),
			zap.Int("count", looked))
		return true, nil

	case card.ActionShuffle:
		p.shuffleDeck(g.rng)
		return true, nil

	case card.ActionPowerBuff:
		for _, t := range targets {
			t.PowerBuff += node.Value
		}
		return mandatoryHit(), nil

	case card.ActionSetCost:
		for _, t := range targets {
			t.CostBuff = node.Value - t.Master.Cost
		}
		return mandatoryHit(), nil

	case card.ActionCostChange:
		for _, t := range targets {
			t.CostBuff += node.Value
		}
		return mandatoryHit(), nil

	case card.ActionGrantKeyword:
		kw := node.Keyword
		if kw == "" {
			return false, nil
		}
		granted := targets
		if len(granted) == 0 && node.Target == nil {
			// "このキャラは◯◯を得る" classifies as a no-target grant; the
			// source receives it.
			granted = []*card.Instance{source}
		}
		for _, t := range granted {
			if t.AbilityDisabled {
				continue
			}
			t.Keywords[kw] = true
		}
		return len(granted) > 0, nil

	case card.ActionRest:
		for _, t := range targets {
			t.Rested = true
		}
		return mandatoryHit(), nil

	case card.ActionActivate:
		for _, t := range targets {
			t.Rested = false
		}
		return mandatoryHit(), nil

	case card.ActionFreeze:
		for _, t := range targets {
			t.Flags[card.FlagFreeze] = true
		}
		return mandatoryHit(), nil

	case card.ActionRampDon:
		n := node.Value
		if n <= 0 {
			n = 1
		}
		return p.Don.Gain(n) > 0, nil

	case card.ActionReturnDon:
		n := node.Value
		if n <= 0 {
			n = 1
		}
		return p.Don.ReturnToDeck(n) > 0, nil

	case card.ActionMoveAttachedDon:
		// Re-home attached don onto the first resolved target.
		if len(targets) == 0 {
			return false, nil
		}
		dest := targets[0]
		moved := 0
		for _, t := range targets[1:] {
			n := p.Don.DetachFrom(t.UUID)
			t.AttachedDon -= n
			for i := 0; i < n; i++ {
				if err := p.Don.Attach(dest.UUID); err == nil {
					dest.AttachedDon++
					moved++
				}
			}
		}
		return moved > 0, nil

	case card.ActionModifyDonPhase:
		p.donGainBonus += node.Value
		return true, nil

	case card.ActionDealDamage:
		n := node.Value
		if n <= 0 {
			n = 1
		}
		victim := g.opponentOf(p)
		if len(targets) > 0 {
			if owner, _, ok := g.locate(targets[0]); ok {
				victim = owner
			}
		}
		return g.dealLeaderDamage(p, victim, n, false), nil

	case card.ActionLifeManipulate:
		for _, t := range targets {
			owner, _, ok := g.locate(t)
			if !ok {
				continue
			}
			t.FaceUp = false
			if err := g.MoveCard(t, card.ZoneLife, owner, "TOP"); err != nil {
				return false, err
			}
		}
		return mandatoryHit(), nil

	case card.ActionLifeRecover:
		n := node.Value
		if n <= 0 {
			n = 1
		}
		recovered := 0
		for i := 0; i < n && len(p.Deck) > 0; i++ {
			c := p.Deck[0]
			p.Deck = p.Deck[1:]
			c.FaceUp = false
			p.Life = append([]*card.Instance{c}, p.Life...)
			recovered++
		}
		return recovered > 0, nil

	case card.ActionRestriction, card.ActionAttackDisable:
		affected := targets
		if len(affected) == 0 && node.Target == nil {
			affected = []*card.Instance{source}
		}
		for _, t := range affected {
			t.Flags[card.FlagAttackDisable] = true
		}
		return len(affected) > 0, nil

	case card.ActionPreventLeave:
		affected := targets
		if len(affected) == 0 && node.Target == nil {
			affected = []*card.Instance{source}
		}
		for _, t := range affected {
			t.Flags[card.FlagPreventLeave] = true
		}
		return len(affected) > 0, nil

	case card.ActionNegateEffect:
		for _, t := range targets {
			t.Negated = true
			t.RefreshKeywords()
		}
		return mandatoryHit(), nil

	case card.ActionRedirectAttack:
		if g.battle == nil || len(targets) == 0 {
			return false, nil
		}
		g.battle.target = targets[0]
		if owner, _, ok := g.locate(targets[0]); ok {
			g.battle.targetOwner = owner
		}
		return true, nil

	case card.ActionExecuteMainEffect:
		// Nested-ability execution: the target's own main ability resolves
		// within a fresh context.
		ran := false
		for _, t := range targets {
			for _, ab := range t.Master.Abilities {
				if ab.Trigger == card.TriggerOnPlay || ab.Trigger == card.TriggerActivateMain {
					if err := g.resolveAbility(p, ab, t); err != nil {
						return false, err
					}
					ran = true
				}
			}
		}
		return ran, nil

	case card.ActionVictory:
		g.Winner = p.ID
		g.logger.Info("victory by effect",
			zap.String("game_id", g.ID),
			zap.String("winner", p.ID))
		return true, nil

	case card.ActionChoice:
		// Handled in executeNode before targets resolve.
		return false, nil
	}

	g.logger.Warn("unhandled action kind",
		zap.String("game_id", g.ID),
		zap.String("kind", node.Kind.String()),
		zap.String("raw", node.RawText))
	return false, nil
}

// dealLeaderDamage removes n life cards from the victim: to hand normally, to
// trash under banish. Emptying life hands the game to the attacker. Returns
// whether any damage landed.
func (g *Game) dealLeaderDamage(attackerOwner, victim *Player, n int, banish bool) bool {
	dealt := 0
	for i := 0; i < n; i++ {
		if len(victim.Life) == 0 {
			g.Winner = attackerOwner.ID
			g.logger.Info("game over",
				zap.String("game_id", g.ID),
				zap.String("winner", g.Winner))
			return true
		}
		lifeCard := victim.Life[0]
		victim.Life = victim.Life[1:]
		dest := card.ZoneHand
		if banish {
			dest = card.ZoneTrash
		}
		lifeCard.FaceUp = true
		if err := g.MoveCard(lifeCard, dest, victim, ""); err != nil {
			g.logger.Error("life damage move failed", zap.Error(err))
			return dealt > 0
		}
		dealt++
		g.logger.Info("life damage",
			zap.String("game_id", g.ID),
			zap.String("player", victim.ID),
			zap.String("to", dest.String()),
			zap.Int("remaining_life", len(victim.Life)))
	}
	return dealt > 0
}
