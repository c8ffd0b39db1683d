package game

import (
	"sort"

	"github.com/gx5gyqe2-art/opcg-sim-backend-sub000/internal/game/card"
	"github.com/gx5gyqe2-art/opcg-sim-backend-sub000/internal/game/don"
)

// GameView is the game as one player sees it. The opponent's hand, both deck
// contents, and face-down life cards are redacted.
type GameView struct {
	GameID       string           `json:"game_id"`
	TurnNumber   int              `json:"turn_number"`
	Phase        string           `json:"phase"`
	ActivePlayer string           `json:"active_player"`
	Winner       string           `json:"winner,omitempty"`
	You          PlayerView       `json:"you"`
	Opponent     PlayerView       `json:"opponent"`
	Battle       *BattleView      `json:"battle,omitempty"`
	Interaction  *InteractionView `json:"interaction,omitempty"`
}

// PlayerView is one side of the board. Hidden zones carry counts only when
// the viewer is not the owner.
type PlayerView struct {
	PlayerID  string     `json:"player_id"`
	Leader    *CardView  `json:"leader,omitempty"`
	Stage     *CardView  `json:"stage,omitempty"`
	Field     []CardView `json:"field"`
	Hand      []CardView `json:"hand,omitempty"`
	HandCount int        `json:"hand_count"`
	DeckCount int        `json:"deck_count"`
	Trash     []CardView `json:"trash"`
	Life      []CardView `json:"life"`
	LifeCount int        `json:"life_count"`
	Temp      []CardView `json:"temp,omitempty"`
	Don       DonView    `json:"don"`
}

// CardView is a single visible card instance.
type CardView struct {
	UUID        string   `json:"uuid"`
	CardID      string   `json:"card_id,omitempty"`
	Name        string   `json:"name,omitempty"`
	Type        string   `json:"type,omitempty"`
	Color       string   `json:"color,omitempty"`
	Cost        int      `json:"cost"`
	Power       int      `json:"power"`
	Counter     int      `json:"counter,omitempty"`
	Attribute   string   `json:"attribute,omitempty"`
	Traits      []string `json:"traits,omitempty"`
	EffectText  string   `json:"effect_text,omitempty"`
	Rested      bool     `json:"rested"`
	FaceUp      bool     `json:"face_up"`
	AttachedDon int      `json:"attached_don,omitempty"`
	Keywords    []string `json:"keywords,omitempty"`
	Negated     bool     `json:"negated,omitempty"`
}

// DonView summarizes a player's don pools.
type DonView struct {
	DeckCount int      `json:"deck_count"`
	Active    []string `json:"active"`
	Rested    []string `json:"rested"`
	Attached  int      `json:"attached"`
}

// BattleView describes a battle in progress.
type BattleView struct {
	AttackerUUID string `json:"attacker_uuid"`
	TargetUUID   string `json:"target_uuid"`
	CounterBonus int    `json:"counter_bonus"`
}

// InteractionView is the serializable face of a pending interaction.
type InteractionView struct {
	ID            string   `json:"id"`
	PlayerID      string   `json:"player_id"`
	Kind          string   `json:"kind"`
	Prompt        string   `json:"prompt,omitempty"`
	SelectableIDs []string `json:"selectable_ids,omitempty"`
	Options       []string `json:"options,omitempty"`
	CanSkip       bool     `json:"can_skip"`
}

// View builds the redacted view of the game for viewerID.
func (g *Game) View(viewerID string) *GameView {
	view := &GameView{
		GameID:       g.ID,
		TurnNumber:   g.Turn.TurnNumber(),
		Phase:        g.Turn.CurrentPhase().String(),
		ActivePlayer: g.turnPlayer.ID,
		Winner:       g.Winner,
	}

	you, opp := g.P1, g.P2
	if viewerID == g.P2.ID {
		you, opp = g.P2, g.P1
	}
	view.You = buildPlayerView(you, g, true)
	view.Opponent = buildPlayerView(opp, g, false)

	if g.battle != nil {
		view.Battle = &BattleView{
			AttackerUUID: g.battle.attacker.UUID,
			TargetUUID:   g.battle.target.UUID,
			CounterBonus: g.battle.counterBonus,
		}
	}
	if ia := g.PendingInteraction(); ia != nil {
		view.Interaction = ia.View()
	}
	return view
}

// View returns the serializable face of the interaction.
func (ia *Interaction) View() *InteractionView {
	return &InteractionView{
		ID:            ia.ID,
		PlayerID:      ia.PlayerID,
		Kind:          string(ia.Kind),
		Prompt:        ia.Prompt,
		SelectableIDs: append([]string(nil), ia.SelectableIDs...),
		Options:       append([]string(nil), ia.Options...),
		CanSkip:       ia.CanSkip,
	}
}

func buildPlayerView(p *Player, g *Game, isOwner bool) PlayerView {
	view := PlayerView{
		PlayerID:  p.ID,
		Field:     buildCardViews(p.Field, g),
		HandCount: len(p.Hand),
		DeckCount: len(p.Deck),
		Trash:     buildCardViews(p.Trash, g),
		LifeCount: len(p.Life),
		Don: DonView{
			DeckCount: len(p.Don.Deck),
			Active:    tokenIDs(p.Don.Active),
			Rested:    tokenIDs(p.Don.Rested),
			Attached:  len(p.Don.Attached),
		},
	}
	if p.Leader != nil {
		lv := buildCardView(p.Leader, g)
		view.Leader = &lv
	}
	if p.Stage != nil {
		sv := buildCardView(p.Stage, g)
		view.Stage = &sv
	}
	if isOwner {
		view.Hand = buildCardViews(p.Hand, g)
		view.Temp = buildCardViews(p.Temp, g)
	}
	// Life cards stay face down until an effect or damage flips them; a
	// face-down card is visible only as a back.
	view.Life = make([]CardView, 0, len(p.Life))
	for _, inst := range p.Life {
		if inst.FaceUp {
			view.Life = append(view.Life, buildCardView(inst, g))
		} else {
			view.Life = append(view.Life, CardView{UUID: inst.UUID})
		}
	}
	return view
}

func buildCardViews(cards []*card.Instance, g *Game) []CardView {
	views := make([]CardView, len(cards))
	for i, inst := range cards {
		views[i] = buildCardView(inst, g)
	}
	return views
}

func buildCardView(inst *card.Instance, g *Game) CardView {
	owner, err := g.PlayerByID(inst.OwnerID)
	myTurn := err == nil && owner == g.turnPlayer
	keywords := make([]string, 0, len(inst.Keywords))
	for kw := range inst.Keywords {
		keywords = append(keywords, kw)
	}
	sort.Strings(keywords)
	return CardView{
		UUID:        inst.UUID,
		CardID:      inst.Master.ID,
		Name:        inst.Master.Name,
		Type:        string(inst.Master.Type),
		Color:       string(inst.Master.Color),
		Cost:        inst.CurrentCost(),
		Power:       inst.Power(myTurn),
		Counter:     inst.Master.Counter,
		Attribute:   string(inst.Master.Attribute),
		Traits:      append([]string(nil), inst.Master.Traits...),
		EffectText:  inst.Master.EffectText,
		Rested:      inst.Rested,
		FaceUp:      inst.FaceUp,
		AttachedDon: inst.AttachedDon,
		Keywords:    keywords,
		Negated:     inst.Negated,
	}
}

func tokenIDs(tokens []*don.Token) []string {
	ids := make([]string, len(tokens))
	for i, tok := range tokens {
		ids[i] = tok.UUID
	}
	return ids
}
