package game

import (
	"go.uber.org/zap"

	"github.com/gx5gyqe2-art/opcg-sim-backend-sub000/internal/game/card"
)

// DeclareAttack starts a battle: the attacker rests, on-attack abilities
// fire, and the game enters the block step (or skips straight to the counter
// step when the defender has no eligible blocker).
func (g *Game) DeclareAttack(p *Player, attacker, target *card.Instance) error {
	if err := g.requireMainAction(p); err != nil {
		return err
	}
	attackerOwner, _, ok := g.locate(attacker)
	if !ok || attackerOwner != p {
		return validationErrorf("attacker is not controlled by %s", p.ID)
	}
	targetOwner, _, tok := g.locate(target)
	if !tok || targetOwner == p {
		return validationErrorf("attack target must belong to the opponent")
	}
	if attacker.Master.Type != card.TypeLeader && attacker.Master.Type != card.TypeCharacter {
		return validationErrorf("%s cannot attack", attacker.Master.Name)
	}
	if attacker.Flags[card.FlagAttackDisable] {
		return validationErrorf("%s cannot attack due to an effect", attacker.Master.Name)
	}
	if attacker.Rested {
		return validationErrorf("attacker must be active")
	}
	if attacker.NewlyPlayed && attacker.Master.Type == card.TypeCharacter && !attacker.HasKeyword(card.KeywordRush) {
		return validationErrorf("%s cannot attack the turn it was played", attacker.Master.Name)
	}
	// Only a rested character or the leader is a legal target.
	if target.Master.Type == card.TypeCharacter && !target.Rested {
		return validationErrorf("only rested characters can be attacked")
	}
	if target.Master.Type != card.TypeCharacter && target != targetOwner.Leader {
		return validationErrorf("%s is not a legal attack target", target.Master.Name)
	}

	attacker.Rested = true
	g.battle = &battleState{
		attacker:      attacker,
		target:        target,
		attackerOwner: p,
		targetOwner:   targetOwner,
	}
	g.logger.Info("attack declared",
		zap.String("game_id", g.ID),
		zap.String("attacker", attacker.Master.Name),
		zap.String("target", target.Master.Name))

	if !attacker.Negated && !attacker.AbilityDisabled {
		for _, ab := range attacker.Master.Abilities {
			if ab.Trigger == card.TriggerOnAttack {
				if err := g.resolveAbility(p, ab, attacker); err != nil {
					return err
				}
			}
		}
	}
	// An on-attack ability may have ended the battle (e.g. removed the
	// target) or suspended; the phase transition still happens so resumption
	// lands in a consistent step.
	if err := g.Turn.EnterBlockStep(); err != nil {
		return err
	}
	if len(g.eligibleBlockers(targetOwner)) == 0 {
		return g.Turn.EnterCounterStep()
	}
	return nil
}

// ResolveBlock answers the block step. A nil blocker declines; otherwise the
// blocker rests and becomes the new battle target, firing its on-block
// abilities. Either way the battle proceeds to the counter step.
func (g *Game) ResolveBlock(p *Player, blocker *card.Instance) error {
	if g.battle == nil {
		return validationErrorf("no battle in progress")
	}
	if p != g.battle.targetOwner {
		return validationErrorf("only the defender selects a blocker")
	}
	if g.interaction != nil {
		return validationErrorf("an interaction is pending for %s", g.interaction.PlayerID)
	}

	if blocker != nil {
		eligible := false
		for _, c := range g.eligibleBlockers(p) {
			if c == blocker {
				eligible = true
				break
			}
		}
		if !eligible {
			return validationErrorf("%s cannot block", blocker.Master.Name)
		}
		blocker.Rested = true
		g.battle.target = blocker
		g.logger.Info("block declared",
			zap.String("game_id", g.ID),
			zap.String("blocker", blocker.Master.Name))
		if !blocker.Negated && !blocker.AbilityDisabled {
			for _, ab := range blocker.Master.Abilities {
				if ab.Trigger == card.TriggerOnBlock {
					if err := g.resolveAbility(p, ab, blocker); err != nil {
						return err
					}
				}
			}
		}
	}
	return g.Turn.EnterCounterStep()
}

// ApplyCounter plays one counter from the defender's hand, or passes with a
// nil card, which resolves the battle damage. Counter-valued cards add their
// counter to the defender for this battle; counter events resolve their
// counter ability after paying cost.
func (g *Game) ApplyCounter(p *Player, counter *card.Instance, donIDs []string) error {
	if g.battle == nil {
		return validationErrorf("no battle in progress")
	}
	if p != g.battle.targetOwner {
		return validationErrorf("only the defender plays counters")
	}
	if g.interaction != nil {
		return validationErrorf("an interaction is pending for %s", g.interaction.PlayerID)
	}

	if counter == nil {
		g.logger.Info("counter step passed", zap.String("game_id", g.ID), zap.String("player", p.ID))
		return g.resolveAttack()
	}

	inHand := false
	for _, c := range p.Hand {
		if c == counter {
			inHand = true
			break
		}
	}
	if !inHand {
		return validationErrorf("counter card %s is not in hand", counter.Master.Name)
	}

	if counter.Master.Type == card.TypeEvent {
		if err := g.payCost(p, counter.CurrentCost(), donIDs); err != nil {
			return err
		}
		for _, ab := range counter.Master.Abilities {
			if ab.Trigger == card.TriggerCounter {
				if err := g.resolveAbility(p, ab, counter); err != nil {
					return err
				}
			}
		}
		return g.MoveCard(counter, card.ZoneTrash, p, "")
	}

	if counter.Master.Counter <= 0 {
		return validationErrorf("%s has no counter value", counter.Master.Name)
	}
	g.battle.counterBonus += counter.Master.Counter
	g.logger.Info("counter applied",
		zap.String("game_id", g.ID),
		zap.String("card", counter.Master.Name),
		zap.Int("bonus", g.battle.counterBonus))
	return g.MoveCard(counter, card.ZoneTrash, p, "")
}

// resolveAttack compares powers and applies damage. Ties favor the defender:
// the attacker needs strictly more power to KO a character or land leader
// damage. Leader damage moves life to hand (trash under banish), doubled by
// double attack.
func (g *Game) resolveAttack() error {
	b := g.battle
	if b == nil {
		return validationErrorf("no battle in progress")
	}

	attackerPower := b.attacker.Power(b.attackerOwner == g.turnPlayer)
	defenderPower := b.target.Power(b.targetOwner == g.turnPlayer) + b.counterBonus

	g.logger.Info("battle resolved",
		zap.String("game_id", g.ID),
		zap.String("attacker", b.attacker.Master.Name),
		zap.Int("attacker_power", attackerPower),
		zap.String("defender", b.target.Master.Name),
		zap.Int("defender_power", defenderPower))

	if attackerPower > defenderPower {
		if b.target == b.targetOwner.Leader {
			damage := 1
			if b.attacker.HasKeyword(card.KeywordDoubleAttack) {
				damage = 2
			}
			banish := b.attacker.HasKeyword(card.KeywordBanish)
			g.dealLeaderDamage(b.attackerOwner, b.targetOwner, damage, banish)
		} else if !b.target.Flags[card.FlagPreventLeave] {
			if err := g.MoveCard(b.target, card.ZoneTrash, b.targetOwner, ""); err != nil {
				return err
			}
			g.logger.Info("battle KO",
				zap.String("game_id", g.ID),
				zap.String("card", b.target.Master.Name))
		}
	}

	// The defender sheds its transient status once damage is settled, so
	// buffs and flags granted for the battle do not linger into the main
	// phase. Attached don returns to the owner rested to keep the pool in sync.
	b.targetOwner.Don.DetachFrom(b.target.UUID)
	b.target.ResetTurnStatus()

	g.battle = nil
	g.Turn.ExitBattle()
	g.checkVictory()
	return nil
}
