package game

import (
	"fmt"
	"math/rand"

	"go.uber.org/zap"

	"github.com/gx5gyqe2-art/opcg-sim-backend-sub000/internal/game/card"
	"github.com/gx5gyqe2-art/opcg-sim-backend-sub000/internal/game/don"
	"github.com/gx5gyqe2-art/opcg-sim-backend-sub000/internal/game/rules"
)

const initialHandSize = 5

// Player holds one player's zones and resource pool. Zone slices are ordered;
// index 0 is the top of deck and life piles.
type Player struct {
	ID     string
	Leader *card.Instance
	Stage  *card.Instance

	Deck  []*card.Instance
	Hand  []*card.Instance
	Field []*card.Instance
	Trash []*card.Instance
	Life  []*card.Instance
	// Temp is the scratch zone look effects reveal cards into.
	Temp []*card.Instance

	Don *don.Pool

	// donGainBonus adjusts the next don phase gain, set by phase-modifying
	// effects and consumed when it fires.
	donGainBonus int
}

// NewPlayer builds a player with a shuffled-later deck and a fresh don pool.
func NewPlayer(id string, leader *card.Instance, deck []*card.Instance) *Player {
	return &Player{
		ID:     id,
		Leader: leader,
		Deck:   deck,
		Don:    don.NewPool(id),
	}
}

func (p *Player) shuffleDeck(rng *rand.Rand) {
	rng.Shuffle(len(p.Deck), func(i, j int) {
		p.Deck[i], p.Deck[j] = p.Deck[j], p.Deck[i]
	})
}

// placeLife moves the leader's life value worth of cards from deck top to the
// life pile, face down.
func (p *Player) placeLife() {
	n := 0
	if p.Leader != nil {
		n = p.Leader.Master.Life
	}
	for i := 0; i < n && len(p.Deck) > 0; i++ {
		c := p.Deck[0]
		p.Deck = p.Deck[1:]
		c.FaceUp = false
		p.Life = append(p.Life, c)
	}
}

func (p *Player) drawInitialHand() {
	for i := 0; i < initialHandSize && len(p.Deck) > 0; i++ {
		c := p.Deck[0]
		p.Deck = p.Deck[1:]
		p.Hand = append(p.Hand, c)
	}
}

// fieldUnits returns leader, stage, and field characters that are present.
func (p *Player) fieldUnits() []*card.Instance {
	units := make([]*card.Instance, 0, len(p.Field)+2)
	if p.Leader != nil {
		units = append(units, p.Leader)
	}
	units = append(units, p.Field...)
	if p.Stage != nil {
		units = append(units, p.Stage)
	}
	return units
}

// zoneSlice maps a zone to the backing slice pointer, nil for the slot zones
// (leader/stage) and the don area which are not plain lists.
func (p *Player) zoneSlice(z card.Zone) *[]*card.Instance {
	switch z {
	case card.ZoneHand:
		return &p.Hand
	case card.ZoneField:
		return &p.Field
	case card.ZoneTrash:
		return &p.Trash
	case card.ZoneLife:
		return &p.Life
	case card.ZoneDeck:
		return &p.Deck
	case card.ZoneTemp:
		return &p.Temp
	}
	return nil
}

// battleState tracks one declared attack through block and counter steps.
type battleState struct {
	attacker      *card.Instance
	target        *card.Instance
	attackerOwner *Player
	targetOwner   *Player
	counterBonus  int
}

// Game is the state aggregate for one match: both players, the phase clock,
// the pending-interaction slot, and the optional in-flight battle. All
// mutation is synchronous; the engine serializes access.
type Game struct {
	ID      string
	P1, P2  *Player
	Turn    *rules.TurnManager
	Winner  string
	Matchup [2]string

	turnPlayer *Player
	opponent   *Player

	battle      *battleState
	interaction *Interaction
	// setupPending defers life/hand placement while a game-start ability is
	// awaiting input.
	setupPending bool

	rng    *rand.Rand
	logger *zap.Logger
	log    *ActionLog
}

// NewGame wires two players into a match. The rng seeds shuffles and is
// injectable for deterministic tests.
func NewGame(id string, p1, p2 *Player, rng *rand.Rand, logger *zap.Logger) *Game {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Game{
		ID:         id,
		P1:         p1,
		P2:         p2,
		Turn:       rules.NewTurnManager(p1.ID),
		Matchup:    [2]string{p1.ID, p2.ID},
		turnPlayer: p1,
		opponent:   p2,
		rng:        rng,
		logger:     logger,
		log:        newActionLog(),
	}
}

// Log returns the game's command log.
func (g *Game) Log() *ActionLog { return g.log }

// TurnPlayer returns the player whose turn it is.
func (g *Game) TurnPlayer() *Player { return g.turnPlayer }

// Opponent returns the non-turn player.
func (g *Game) Opponent() *Player { return g.opponent }

// PlayerByID finds a seated player.
func (g *Game) PlayerByID(id string) (*Player, error) {
	switch id {
	case g.P1.ID:
		return g.P1, nil
	case g.P2.ID:
		return g.P2, nil
	}
	return nil, validationErrorf("player %s is not seated in game %s", id, g.ID)
}

func (g *Game) opponentOf(p *Player) *Player {
	if p == g.P1 {
		return g.P2
	}
	return g.P1
}

// FindCard locates an instance anywhere in the game by UUID.
func (g *Game) FindCard(uuid string) *card.Instance {
	for _, p := range []*Player{g.P1, g.P2} {
		if p.Leader != nil && p.Leader.UUID == uuid {
			return p.Leader
		}
		if p.Stage != nil && p.Stage.UUID == uuid {
			return p.Stage
		}
		for _, zone := range [][]*card.Instance{p.Hand, p.Field, p.Trash, p.Life, p.Deck, p.Temp} {
			for _, c := range zone {
				if c.UUID == uuid {
					return c
				}
			}
		}
	}
	return nil
}

// locate returns the owning player and current zone of an instance. Slot
// cards (leader, stage) report their zone as field.
func (g *Game) locate(inst *card.Instance) (*Player, card.Zone, bool) {
	for _, p := range []*Player{g.P1, g.P2} {
		if p.Leader == inst || p.Stage == inst {
			return p, card.ZoneField, true
		}
		for _, z := range []card.Zone{card.ZoneHand, card.ZoneField, card.ZoneTrash, card.ZoneLife, card.ZoneDeck, card.ZoneTemp} {
			for _, c := range *p.zoneSlice(z) {
				if c == inst {
					return p, z, true
				}
			}
		}
	}
	return nil, card.ZoneAny, false
}

// MoveCard transfers an instance between zones. Leaving the field returns the
// card's attached don to its owner rested; entering hand or trash wipes
// transient status; a stage entering play replaces (trashes) the previous
// stage. DestPosition "TOP" prepends, anything else appends.
func (g *Game) MoveCard(inst *card.Instance, destZone card.Zone, destPlayer *Player, destPosition string) error {
	owner, fromZone, found := g.locate(inst)

	if destZone == card.ZoneTrash || destZone == card.ZoneHand {
		inst.ResetTurnStatus()
	}

	if found && fromZone == card.ZoneField {
		owner.Don.DetachFrom(inst.UUID)
		inst.AttachedDon = 0
	}

	// Unlink from the current location.
	if found {
		if owner.Stage == inst {
			owner.Stage = nil
		} else if owner.Leader == inst {
			return fmt.Errorf("leader %s cannot leave play", inst.Master.Name)
		} else {
			slice := owner.zoneSlice(fromZone)
			for i, c := range *slice {
				if c == inst {
					*slice = append((*slice)[:i], (*slice)[i+1:]...)
					break
				}
			}
		}
	}

	if destZone == card.ZoneField && inst.Master.Type == card.TypeStage {
		if destPlayer.Stage != nil {
			if err := g.MoveCard(destPlayer.Stage, card.ZoneTrash, destPlayer, ""); err != nil {
				return err
			}
		}
		destPlayer.Stage = inst
		return nil
	}

	slice := destPlayer.zoneSlice(destZone)
	if slice == nil {
		return fmt.Errorf("cannot move %s to zone %s", inst.Master.Name, destZone)
	}
	if destPosition == "TOP" {
		*slice = append([]*card.Instance{inst}, *slice...)
	} else {
		*slice = append(*slice, inst)
	}
	return nil
}

// DrawCards moves up to n cards from deck top to hand and runs the deck-out
// victory check afterwards.
func (g *Game) DrawCards(p *Player, n int) int {
	drawn := 0
	for i := 0; i < n && len(p.Deck) > 0; i++ {
		c := p.Deck[0]
		p.Deck = p.Deck[1:]
		p.Hand = append(p.Hand, c)
		drawn++
	}
	if drawn > 0 {
		g.logger.Debug("cards drawn",
			zap.String("game_id", g.ID),
			zap.String("player", p.ID),
			zap.Int("count", drawn))
	}
	if len(p.Deck) == 0 && g.Winner == "" {
		g.checkVictory()
	}
	return drawn
}

// checkVictory sets the winner on deck exhaustion. Life depletion is decided
// at the damage step, not here.
func (g *Game) checkVictory() {
	if len(g.P1.Deck) == 0 {
		g.Winner = g.P2.ID
	} else if len(g.P2.Deck) == 0 {
		g.Winner = g.P1.ID
	}
	if g.Winner != "" {
		g.logger.Info("game over",
			zap.String("game_id", g.ID),
			zap.String("winner", g.Winner))
	}
}

// Start shuffles decks, resolves game-start leader abilities, places life and
// opening hands, and enters the first player's turn. A game-start ability
// that suspends defers the rest of setup until its interaction resolves.
func (g *Game) Start(firstPlayerID string) error {
	if g.Turn.TurnNumber() > 0 {
		return validationErrorf("game %s already started", g.ID)
	}
	g.P1.shuffleDeck(g.rng)
	g.P2.shuffleDeck(g.rng)

	if firstPlayerID != "" {
		first, err := g.PlayerByID(firstPlayerID)
		if err != nil {
			return err
		}
		g.turnPlayer = first
		g.opponent = g.opponentOf(first)
	}

	for _, p := range []*Player{g.P1, g.P2} {
		if p.Leader == nil {
			continue
		}
		for _, ab := range p.Leader.Master.Abilities {
			if ab.Trigger != card.TriggerGameStart {
				continue
			}
			if err := g.resolveAbility(p, ab, p.Leader); err != nil {
				return err
			}
			if g.interaction != nil {
				g.setupPending = true
				return nil
			}
		}
	}

	g.finishSetup()
	return nil
}

func (g *Game) finishSetup() {
	for _, p := range []*Player{g.P1, g.P2} {
		p.placeLife()
		p.drawInitialHand()
	}
	g.Turn = rules.NewTurnManager(g.turnPlayer.ID)
	g.Turn.Start()
	g.logger.Info("game started",
		zap.String("game_id", g.ID),
		zap.String("first_player", g.turnPlayer.ID))
	g.beginTurn()
}

// beginTurn runs refresh, draw, and don phases and stops in MAIN awaiting
// player commands.
func (g *Game) beginTurn() {
	// REFRESH: the opponent's expiring modifiers clear, the turn player's
	// cards stand up unless frozen, and all don return active.
	g.resetPlayerStatus(g.opponent)
	g.refreshAll(g.turnPlayer)
	g.advanceTo(rules.PhaseDraw)

	// DRAW: skipped on the very first turn.
	if !g.Turn.IsFirstTurn() {
		g.DrawCards(g.turnPlayer, 1)
	}
	g.advanceTo(rules.PhaseDon)

	// DON: two from the don deck, one on the first turn.
	gain := 2
	if g.Turn.IsFirstTurn() {
		gain = 1
	}
	gain += g.turnPlayer.donGainBonus
	g.turnPlayer.donGainBonus = 0
	if gain > 0 {
		g.turnPlayer.Don.Gain(gain)
	}
	g.advanceTo(rules.PhaseMain)

	g.applyPassiveEffects(g.turnPlayer)
}

func (g *Game) advanceTo(want rules.Phase) {
	for g.Turn.CurrentPhase() != want {
		if _, err := g.Turn.AdvancePhase(g.opponent.ID); err != nil {
			g.logger.Error("phase advance failed", zap.String("game_id", g.ID), zap.Error(err))
			return
		}
	}
}

func (g *Game) resetPlayerStatus(p *Player) {
	for _, c := range p.fieldUnits() {
		c.ResetTurnStatus()
	}
}

// refreshAll stands up the turn player's cards and resource tokens at the
// start of their turn. A frozen card skips standing and loses the flag.
func (g *Game) refreshAll(p *Player) {
	for _, c := range p.fieldUnits() {
		frozen := c.Flags[card.FlagFreeze]
		c.ResetTurnStatus()
		if !frozen {
			c.Rested = false
		}
	}
	p.Don.Refresh()
}

// applyPassiveEffects recomputes own-turn continuous effects: cost and
// base-power overrides reset, then every YOUR_TURN ability re-applies.
func (g *Game) applyPassiveEffects(p *Player) {
	affected := append(p.fieldUnits(), p.Hand...)
	for _, c := range affected {
		c.CostBuff = 0
		c.PowerOverride = nil
	}
	for _, c := range p.fieldUnits() {
		if c.Negated || c.AbilityDisabled {
			continue
		}
		for _, ab := range c.Master.Abilities {
			if ab.Trigger == card.TriggerYourTurn {
				if err := g.resolveAbility(p, ab, c); err != nil {
					g.logger.Warn("passive effect failed",
						zap.String("game_id", g.ID),
						zap.String("card", c.Master.Name),
						zap.Error(err))
				}
			}
		}
	}
}

// EndTurn resolves end-of-turn abilities and hands the turn to the opponent.
func (g *Game) EndTurn(p *Player) error {
	if err := g.requireMainAction(p); err != nil {
		return err
	}
	g.advanceTo(rules.PhaseEnd)
	for _, c := range g.turnPlayer.fieldUnits() {
		if c.Negated || c.AbilityDisabled {
			continue
		}
		for _, ab := range c.Master.Abilities {
			if ab.Trigger == card.TriggerTurnEnd {
				if err := g.resolveAbility(g.turnPlayer, ab, c); err != nil {
					return err
				}
			}
		}
	}
	for _, c := range g.opponent.fieldUnits() {
		if c.Negated || c.AbilityDisabled {
			continue
		}
		for _, ab := range c.Master.Abilities {
			if ab.Trigger == card.TriggerOppTurnEnd {
				if err := g.resolveAbility(g.opponent, ab, c); err != nil {
					return err
				}
			}
		}
	}

	next := g.opponent
	if _, err := g.Turn.AdvancePhase(next.ID); err != nil {
		return err
	}
	g.turnPlayer, g.opponent = next, g.turnPlayer
	g.logger.Info("turn switched",
		zap.String("game_id", g.ID),
		zap.String("turn_player", g.turnPlayer.ID),
		zap.Int("turn", g.Turn.TurnNumber()))
	g.beginTurn()
	return nil
}

// PlayCard plays a hand card: events resolve their main ability and go to
// trash, everything else enters the field. donIDs optionally names the exact
// tokens paying the cost.
func (g *Game) PlayCard(p *Player, inst *card.Instance, donIDs []string) error {
	if err := g.requireMainAction(p); err != nil {
		return err
	}
	inHand := false
	for _, c := range p.Hand {
		if c == inst {
			inHand = true
			break
		}
	}
	if !inHand {
		return validationErrorf("card %s is not in %s's hand", inst.Master.Name, p.ID)
	}

	if err := g.payCost(p, inst.CurrentCost(), donIDs); err != nil {
		return err
	}
	g.logger.Info("card played",
		zap.String("game_id", g.ID),
		zap.String("player", p.ID),
		zap.String("card", inst.Master.Name))

	if inst.Master.Type == card.TypeEvent {
		for _, ab := range inst.Master.Abilities {
			if ab.Trigger == card.TriggerOnPlay || ab.Trigger == card.TriggerActivateMain {
				if err := g.resolveAbility(p, ab, inst); err != nil {
					return err
				}
			}
		}
		return g.MoveCard(inst, card.ZoneTrash, p, "")
	}

	if err := g.MoveCard(inst, card.ZoneField, p, ""); err != nil {
		return err
	}
	inst.NewlyPlayed = true
	inst.RefreshKeywords()
	if !inst.AbilityDisabled && !inst.Negated {
		for _, ab := range inst.Master.Abilities {
			if ab.Trigger == card.TriggerOnPlay {
				if err := g.resolveAbility(p, ab, inst); err != nil {
					return err
				}
			}
		}
	}
	g.applyPassiveEffects(p)
	return nil
}

// payCost rests don to cover cost, either the named tokens or the first
// active ones.
func (g *Game) payCost(p *Player, cost int, donIDs []string) error {
	if cost <= 0 {
		return nil
	}
	if len(donIDs) > 0 {
		if len(donIDs) < cost {
			return validationErrorf("%d don selected, cost is %d", len(donIDs), cost)
		}
		toks := make([]*don.Token, 0, len(donIDs))
		for _, id := range donIDs {
			tok := p.Don.Find(id)
			if tok == nil {
				return validationErrorf("don token %s not found", id)
			}
			toks = append(toks, tok)
		}
		if err := p.Don.PayTokens(toks); err != nil {
			return &ValidationError{Reason: err.Error()}
		}
		return nil
	}
	if err := p.Don.Pay(cost); err != nil {
		return &ValidationError{Reason: err.Error()}
	}
	return nil
}

// AttachDon attaches an active don token to one of the player's field units,
// granting the +1000-per-token own-turn power bonus.
func (g *Game) AttachDon(p *Player, inst *card.Instance, count int) error {
	if err := g.requireMainAction(p); err != nil {
		return err
	}
	owner, zone, ok := g.locate(inst)
	if !ok || owner != p || zone != card.ZoneField {
		return validationErrorf("don can only attach to your own cards in play")
	}
	for i := 0; i < count; i++ {
		if err := p.Don.Attach(inst.UUID); err != nil {
			return &ValidationError{Reason: err.Error()}
		}
		inst.AttachedDon++
	}
	return nil
}

// ActivateAbility resolves a card's activated main ability, paying its parsed
// costs as part of resolution.
func (g *Game) ActivateAbility(p *Player, inst *card.Instance, abilityIndex int) error {
	if err := g.requireMainAction(p); err != nil {
		return err
	}
	if inst.Negated || inst.AbilityDisabled {
		return validationErrorf("%s's abilities are disabled", inst.Master.Name)
	}
	if abilityIndex < 0 || abilityIndex >= len(inst.Master.Abilities) {
		return validationErrorf("card %s has no ability %d", inst.Master.Name, abilityIndex)
	}
	ab := inst.Master.Abilities[abilityIndex]
	if ab.Trigger != card.TriggerActivateMain {
		return validationErrorf("ability %d of %s is not an activated main ability", abilityIndex, inst.Master.Name)
	}
	if inst.AbilityUses[abilityIndex] > 0 {
		return validationErrorf("ability %d of %s was already used this turn", abilityIndex, inst.Master.Name)
	}
	inst.AbilityUses[abilityIndex]++
	return g.resolveAbility(p, ab, inst)
}

// requireMainAction enforces the serialized-interaction rule: during MAIN,
// only the turn player acts, and not while an interaction is outstanding.
func (g *Game) requireMainAction(p *Player) error {
	if g.Winner != "" {
		return validationErrorf("game %s is over", g.ID)
	}
	if g.interaction != nil {
		return validationErrorf("an interaction is pending for %s", g.interaction.PlayerID)
	}
	if g.Turn.CurrentPhase() != rules.PhaseMain {
		return validationErrorf("action not legal during %s", g.Turn.CurrentPhase())
	}
	if p != g.turnPlayer {
		return validationErrorf("it is %s's turn", g.turnPlayer.ID)
	}
	return nil
}
