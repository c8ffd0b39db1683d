package game

import (
	"strings"

	"go.uber.org/zap"

	"github.com/gx5gyqe2-art/opcg-sim-backend-sub000/internal/game/card"
	"github.com/gx5gyqe2-art/opcg-sim-backend-sub000/internal/game/don"
)

// ResolveQuery expands a target query against live state and returns the
// eligible instances in stable zone order. The acting player anchors the
// self/opponent relation; source anchors SOURCE mode and the owner relation.
func (g *Game) ResolveQuery(q *card.Query, acting *Player, source *card.Instance) []*card.Instance {
	if q == nil {
		return nil
	}
	if q.Mode == card.SelectSource {
		if source == nil {
			return nil
		}
		return []*card.Instance{source}
	}

	players := g.queryPlayers(q, acting, source)

	var candidates []*card.Instance
	for _, p := range players {
		switch q.Zone {
		case card.ZoneField:
			candidates = append(candidates, p.Field...)
			// The leader and stage slots count as the field unless the
			// card-type filter explicitly excludes them.
			if p.Leader != nil && (len(q.CardTypes) == 0 || containsType(q.CardTypes, card.TypeLeader)) {
				candidates = append(candidates, p.Leader)
			}
			if p.Stage != nil && (len(q.CardTypes) == 0 || containsType(q.CardTypes, card.TypeStage)) {
				candidates = append(candidates, p.Stage)
			}
		case card.ZoneHand:
			candidates = append(candidates, p.Hand...)
		case card.ZoneTrash:
			candidates = append(candidates, p.Trash...)
		case card.ZoneLife:
			candidates = append(candidates, p.Life...)
		case card.ZoneDeck:
			candidates = append(candidates, p.Deck...)
		case card.ZoneTemp:
			candidates = append(candidates, p.Temp...)
		}
	}

	results := make([]*card.Instance, 0, len(candidates))
	for _, c := range candidates {
		if c == nil || !g.matches(q, c) {
			continue
		}
		results = append(results, c)
	}

	if len(results) == 0 {
		expected := q.UpTo || q.Mode == card.SelectAll || q.Mode == card.SelectRemaining
		g.logger.Debug("query matched nothing",
			zap.String("game_id", g.ID),
			zap.String("query", q.RawText),
			zap.Bool("expected_empty", expected))
	}

	if q.Count >= 0 && q.Mode != card.SelectAll && q.Mode != card.SelectRemaining && len(results) > q.Count {
		// Candidate pools stay full for player selection; only automatic
		// resolution truncates.
		if !q.NeedsSelection() {
			results = results[:q.Count]
		}
	}
	return results
}

// ResolveDonQuery returns eligible resource tokens for a don-area query. Only
// the rest-state predicate applies; card predicates are meaningless for
// tokens.
func (g *Game) ResolveDonQuery(q *card.Query, acting *Player, source *card.Instance) []*don.Token {
	if q == nil || q.Zone != card.ZoneDonArea {
		return nil
	}
	players := g.queryPlayers(q, acting, source)
	var toks []*don.Token
	for _, p := range players {
		pool := append(append([]*don.Token{}, p.Don.Active...), p.Don.Rested...)
		for _, tok := range pool {
			if q.IsRested != nil && tok.Rested != *q.IsRested {
				continue
			}
			toks = append(toks, tok)
		}
	}
	return toks
}

func (g *Game) queryPlayers(q *card.Query, acting *Player, source *card.Instance) []*Player {
	switch q.Player {
	case card.RelOpponent:
		return []*Player{g.opponentOf(acting)}
	case card.RelAll:
		return []*Player{g.P1, g.P2}
	case card.RelOwner:
		if source != nil {
			if owner, _, ok := g.locate(source); ok {
				return []*Player{owner}
			}
		}
		return nil
	default:
		return []*Player{acting}
	}
}

// matches applies every active predicate conjunctively. Predicates are
// independent, so order does not matter.
func (g *Game) matches(q *card.Query, c *card.Instance) bool {
	m := c.Master
	if len(q.CardTypes) > 0 && !containsType(q.CardTypes, m.Type) {
		return false
	}
	if len(q.Colors) > 0 {
		ok := false
		for _, col := range q.Colors {
			if m.Color.Glyph() == col {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if len(q.Attrs) > 0 {
		ok := false
		for _, a := range q.Attrs {
			if m.Attribute.Glyph() == a || string(m.Attribute) == a {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if q.CostMax != nil && c.CurrentCost() > *q.CostMax {
		return false
	}
	if q.CostMin != nil && c.CurrentCost() < *q.CostMin {
		return false
	}
	if q.PowerMax != nil && g.powerFor(q, c) > *q.PowerMax {
		return false
	}
	if q.PowerMin != nil && g.powerFor(q, c) < *q.PowerMin {
		return false
	}
	if len(q.Names) > 0 && !matchesName(q, m.Name) {
		return false
	}
	for _, ex := range q.ExcludeNames {
		if m.Name == ex {
			return false
		}
	}
	if len(q.Traits) > 0 {
		ok := false
		for _, t := range q.Traits {
			if m.HasTrait(t) {
				ok = true
				break
			}
		}
		if !ok {
			return false
		}
	}
	if q.Vanilla && !m.IsVanilla() {
		return false
	}
	if q.IsRested != nil && c.Rested != *q.IsRested {
		return false
	}
	return true
}

func (g *Game) powerFor(q *card.Query, c *card.Instance) int {
	if q.BasePower {
		return c.BasePower()
	}
	owner, _, _ := g.locate(c)
	return c.Power(owner == g.turnPlayer)
}

func matchesName(q *card.Query, name string) bool {
	for _, n := range q.Names {
		if q.NamePartial && strings.Contains(name, n) {
			return true
		}
		if !q.NamePartial && name == n {
			return true
		}
	}
	return false
}

func containsType(types []card.Type, t card.Type) bool {
	for _, ct := range types {
		if ct == t {
			return true
		}
	}
	return false
}

// EvaluateCondition decides a structured condition against state and the
// transient effect context. A nil condition is vacuously true. Context
// conditions read values earlier actions stashed, so evaluation order within
// one resolution pass is significant.
func (g *Game) EvaluateCondition(cond *card.Condition, p *Player, source *card.Instance, ctx *effectContext) bool {
	if cond == nil || cond.Kind == card.CondNone {
		return true
	}

	result := false
	switch cond.Kind {
	case card.CondContext:
		result = g.evaluateContextCondition(cond, p, ctx)
	case card.CondLifeCount:
		result = cond.Op.Compare(len(p.Life), cond.Value)
	case card.CondHandCount:
		result = cond.Op.Compare(len(p.Hand), cond.Value)
	case card.CondTrashCount:
		result = cond.Op.Compare(len(p.Trash), cond.Value)
	case card.CondDeckCount:
		result = cond.Op.Compare(len(p.Deck), cond.Value)
	case card.CondDonCount:
		result = cond.Op.Compare(p.Don.InPlay(), cond.Value)
	case card.CondFieldCount:
		result = cond.Op.Compare(len(p.Field), cond.Value)
	case card.CondLeaderName:
		result = p.Leader != nil && strings.Contains(p.Leader.Master.Name, cond.StrValue)
	case card.CondHasTrait, card.CondHasUnit:
		q := cond.Target
		if q == nil {
			q = &card.Query{Zone: card.ZoneField, Player: card.RelSelf, Count: -1, Mode: card.SelectAll}
			if cond.StrValue != "" && cond.Kind == card.CondHasTrait {
				q.Traits = []string{cond.StrValue}
			}
		}
		result = len(g.ResolveQuery(q, p, source)) >= 1
	}

	g.logger.Debug("condition evaluated",
		zap.String("game_id", g.ID),
		zap.String("condition", cond.RawText),
		zap.String("kind", cond.Kind.String()),
		zap.Bool("result", result))
	return result
}

func (g *Game) evaluateContextCondition(cond *card.Condition, p *Player, ctx *effectContext) bool {
	if ctx == nil {
		return false
	}
	switch cond.StrValue {
	case card.CtxLastActionSuccess:
		return ctx.lastActionSucceeded()
	case card.CtxLastActionFailure:
		return !ctx.lastActionSucceeded()
	case card.CtxRevealedEvent:
		return ctx.revealedMatches(func(c *card.Instance) bool {
			return c.Master.Type == card.TypeEvent
		})
	case card.CtxRevealedCharacter:
		return ctx.revealedMatches(func(c *card.Instance) bool {
			return c.Master.Type == card.TypeCharacter
		})
	case card.CtxRevealedTrait:
		return ctx.revealedMatches(func(c *card.Instance) bool {
			if cond.Target == nil {
				return false
			}
			for _, t := range cond.Target.Traits {
				if c.Master.HasTrait(t) {
					return true
				}
			}
			return false
		})
	case card.CtxRevealedCost:
		return ctx.revealedMatches(func(c *card.Instance) bool {
			return cond.Target != nil && cond.Target.CostMin != nil && c.CurrentCost() >= *cond.Target.CostMin
		})
	}
	return false
}
