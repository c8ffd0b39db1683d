package game

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/gx5gyqe2-art/opcg-sim-backend-sub000/internal/game/card"
)

// maxResolutionSteps caps the node executions of one ability resolution. A
// malformed tree that keeps suspending without progress terminates as
// incomplete instead of looping forever.
const maxResolutionSteps = 64

// effectContext is the per-resolution scratch state shared by every node of
// one ability's walk: back-reference targets, the last-action-success flag
// the context conditions read, revealed cards, and the answer a resume call
// carries back in.
type effectContext struct {
	savedTargets map[string][]*card.Instance
	lastSuccess  bool
	lastSet      bool
	revealed     []*card.Instance
	steps        int

	// Pending answers injected by resume. Consumed (cleared) by the first
	// node whose suspension they satisfy.
	selectedIDs []string
	choiceIndex *int
}

func newEffectContext() *effectContext {
	return &effectContext{savedTargets: make(map[string][]*card.Instance)}
}

func (ctx *effectContext) lastActionSucceeded() bool {
	return ctx.lastSet && ctx.lastSuccess
}

func (ctx *effectContext) recordResult(ok bool) {
	ctx.lastSuccess = ok
	ctx.lastSet = true
}

func (ctx *effectContext) revealedMatches(pred func(*card.Instance) bool) bool {
	for _, c := range ctx.revealed {
		if pred(c) {
			return true
		}
	}
	return false
}

// continuation captures a suspended resolution: the paused node, the nodes
// still queued behind it, the source card, and the shared context.
type continuation struct {
	node    *card.Action
	pending []*card.Action
	source  string
	player  *Player
	ctx     *effectContext
}

// resolveAbility runs an ability's costs then its actions. Costs and actions
// share one effect context so a cost's selection can be back-referenced. A
// suspension parks a continuation in the game's interaction slot and returns
// nil; the caller polls PendingInteraction.
func (g *Game) resolveAbility(p *Player, ab *card.Ability, source *card.Instance) error {
	if source.Negated || source.AbilityDisabled {
		return nil
	}
	ctx := newEffectContext()
	queue := make([]*card.Action, 0, len(ab.Costs)+len(ab.Actions))
	queue = append(queue, ab.Costs...)
	queue = append(queue, ab.Actions...)
	return g.runActions(p, source, queue, ctx)
}

// runActions drains the pending-node queue depth-first. Each node's then
// children are queued ahead of its siblings, preserving the strictly nested
// chain order the parser built.
func (g *Game) runActions(p *Player, source *card.Instance, queue []*card.Action, ctx *effectContext) error {
	for len(queue) > 0 {
		ctx.steps++
		if ctx.steps > maxResolutionSteps {
			g.logger.Error("ability resolution exceeded step cap, terminating incomplete",
				zap.String("game_id", g.ID),
				zap.String("source", source.Master.Name))
			g.interaction = nil
			return nil
		}

		node := queue[0]
		rest := queue[1:]

		outcome, err := g.executeNode(p, node, source, ctx, rest)
		if err != nil {
			return err
		}
		if outcome.suspended {
			return nil
		}
		if outcome.success {
			queue = append(append([]*card.Action{}, outcome.children...), rest...)
		} else {
			// Failure prunes this node's subtree only; queued siblings and
			// ancestors' remaining work continue.
			queue = rest
		}
	}
	return nil
}

type nodeOutcome struct {
	success   bool
	suspended bool
	children  []*card.Action
}

// executeNode runs one action node: guard, choice handling, target
// selection/suspension, then the state mutation. pending is the remaining
// queue, saved into the continuation on suspension.
func (g *Game) executeNode(p *Player, node *card.Action, source *card.Instance, ctx *effectContext, pending []*card.Action) (nodeOutcome, error) {
	// A false guard elides the branch; that is not a failure.
	if node.Condition != nil && !g.EvaluateCondition(node.Condition, p, source, ctx) {
		return nodeOutcome{success: false}, nil
	}

	if node.Kind == card.ActionChoice {
		if ctx.choiceIndex == nil {
			g.suspend(p, node, source, ctx, pending, &Interaction{
				Kind:    InteractionChoice,
				Prompt:  "効果を選択してください",
				Options: choiceLabels(node),
			})
			return nodeOutcome{suspended: true}, nil
		}
		idx := *ctx.choiceIndex
		ctx.choiceIndex = nil
		if idx < 0 || idx >= len(node.Options) {
			return nodeOutcome{}, fmt.Errorf("choice index %d out of range for %q", idx, node.RawText)
		}
		chosen := node.Options[idx].Action
		// Splice: the chosen alternative runs with its own chain first, then
		// whatever was already attached to the choice node.
		merged := *chosen
		merged.Then = append(append([]*card.Action{}, chosen.Then...), node.Then...)
		return g.executeNode(p, &merged, source, ctx, pending)
	}

	targets, outcome, suspended := g.resolveTargets(p, node, source, ctx, pending)
	if suspended {
		return nodeOutcome{suspended: true}, nil
	}
	if !outcome {
		ctx.recordResult(false)
		return nodeOutcome{success: false}, nil
	}

	success, err := g.applyAction(p, node, source, targets, ctx)
	if err != nil {
		return nodeOutcome{}, err
	}
	ctx.recordResult(success)

	if node.Target != nil && node.Target.Tag != "" && node.Target.Mode != card.SelectReference {
		ctx.savedTargets[node.Target.Tag] = targets
	}

	if !success {
		return nodeOutcome{success: false}, nil
	}
	return nodeOutcome{success: true, children: node.Then}, nil
}

// resolveTargets produces the node's concrete targets, suspending when a
// player choice is required and unanswered. The bool results are (eligible,
// suspended): eligible=false means a mandatory target set came up empty.
func (g *Game) resolveTargets(p *Player, node *card.Action, source *card.Instance, ctx *effectContext, pending []*card.Action) ([]*card.Instance, bool, bool) {
	q := node.Target
	if q == nil {
		return nil, true, false
	}

	if q.Mode == card.SelectReference {
		saved := ctx.savedTargets[referenceTag(q)]
		return saved, len(saved) > 0 || q.UpTo, false
	}

	candidates := g.ResolveQuery(q, p, source)

	if !q.NeedsSelection() {
		return candidates, true, false
	}

	// The look scratch zone always asks, even when empty, so the player can
	// consciously pass.
	if len(candidates) == 0 && q.Zone != card.ZoneTemp {
		return nil, q.UpTo, false
	}

	if ctx.selectedIDs == nil {
		g.suspend(p, node, source, ctx, pending, &Interaction{
			Kind:          InteractionSelectTarget,
			Prompt:        "対象を選択してください",
			SelectableIDs: instanceIDs(candidates),
			CanSkip:       q.UpTo,
		})
		return nil, false, true
	}

	selected := ctx.selectedIDs
	ctx.selectedIDs = nil
	var targets []*card.Instance
	for _, id := range selected {
		for _, c := range candidates {
			if c.UUID == id {
				targets = append(targets, c)
				break
			}
		}
	}
	if q.Count >= 0 && len(targets) > q.Count {
		targets = targets[:q.Count]
	}
	return targets, len(targets) > 0 || q.UpTo, false
}

func (g *Game) suspend(p *Player, node *card.Action, source *card.Instance, ctx *effectContext, pending []*card.Action, req *Interaction) {
	req.PlayerID = p.ID
	req.cont = &continuation{
		node:    node,
		pending: append([]*card.Action{}, pending...),
		source:  source.UUID,
		player:  p,
		ctx:     ctx,
	}
	g.interaction = req
	g.logger.Info("resolution suspended",
		zap.String("game_id", g.ID),
		zap.String("player", p.ID),
		zap.String("kind", string(req.Kind)),
		zap.String("action", node.Kind.String()))
}

// resumeInteraction merges the player's answer into the saved context and
// re-enters execution at the paused node.
func (g *Game) resumeInteraction(p *Player, selectedIDs []string, choiceIndex *int) error {
	inter := g.interaction
	if inter == nil {
		return validationErrorf("no interaction is pending")
	}
	if inter.PlayerID != p.ID {
		return validationErrorf("pending interaction belongs to %s", inter.PlayerID)
	}
	cont := inter.cont
	if cont == nil {
		// Phase-driven prompts (main menu, block, counter) have no saved
		// resolution; they are answered through their own entry points.
		return validationErrorf("interaction %s is not resumable", inter.Kind)
	}

	source := g.FindCard(cont.source)
	if source == nil {
		// The source left every zone while we waited; the interaction is
		// abandoned, already-applied state stands.
		g.logger.Error("resume failed, source card vanished",
			zap.String("game_id", g.ID),
			zap.String("source_uuid", cont.source))
		g.interaction = nil
		return nil
	}

	switch inter.Kind {
	case InteractionSelectTarget:
		if selectedIDs == nil {
			selectedIDs = []string{}
		}
		cont.ctx.selectedIDs = selectedIDs
	case InteractionChoice:
		if choiceIndex == nil {
			return validationErrorf("choice interaction requires an option index")
		}
		cont.ctx.choiceIndex = choiceIndex
	default:
		return validationErrorf("interaction %s is not resumable", inter.Kind)
	}

	g.interaction = nil
	g.logger.Info("resolution resumed",
		zap.String("game_id", g.ID),
		zap.String("player", p.ID),
		zap.String("kind", string(inter.Kind)))

	queue := append([]*card.Action{cont.node}, cont.pending...)
	if err := g.runActions(cont.player, source, queue, cont.ctx); err != nil {
		return err
	}

	if g.interaction == nil && g.setupPending {
		g.setupPending = false
		g.finishSetup()
	}
	return nil
}

func referenceTag(q *card.Query) string {
	if q.Tag != "" {
		return q.Tag
	}
	return "last_target"
}

func instanceIDs(cards []*card.Instance) []string {
	ids := make([]string, len(cards))
	for i, c := range cards {
		ids[i] = c.UUID
	}
	return ids
}

func choiceLabels(node *card.Action) []string {
	labels := make([]string, len(node.Options))
	for i, opt := range node.Options {
		labels[i] = opt.Label
	}
	return labels
}
