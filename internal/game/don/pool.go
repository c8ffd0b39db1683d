// Package don manages a player's Don!! resource tokens. Tokens are fungible
// unit resources that move between four pools (deck, active, rested,
// attached); a token belongs to exactly one pool at a time and the count a
// player owns is conserved across attach/detach/rest/activate operations.
package don

import (
	"fmt"

	"github.com/google/uuid"
)

// DeckSize is the fixed number of Don!! tokens each player starts with.
const DeckSize = 10

// InPlayLimit caps how many tokens can be outside the don deck at once.
const InPlayLimit = 10

// Token is a single Don!! resource instance.
type Token struct {
	UUID    string
	OwnerID string
	Rested  bool
	// AttachedTo holds the UUID of the card this token is attached to, or ""
	// when the token is not attached.
	AttachedTo string
}

// Pool holds one player's Don!! tokens across the four pools.
// Pool is not safe for concurrent use; the owning game state serializes
// access.
type Pool struct {
	Deck     []*Token
	Active   []*Token
	Rested   []*Token
	Attached []*Token
}

// NewPool creates a pool with a full don deck owned by ownerID.
func NewPool(ownerID string) *Pool {
	p := &Pool{}
	for i := 0; i < DeckSize; i++ {
		p.Deck = append(p.Deck, &Token{UUID: uuid.NewString(), OwnerID: ownerID})
	}
	return p
}

// InPlay returns the number of tokens outside the don deck.
func (p *Pool) InPlay() int {
	return len(p.Active) + len(p.Rested) + len(p.Attached)
}

// Total returns the number of tokens the player owns across all pools.
func (p *Pool) Total() int {
	return len(p.Deck) + p.InPlay()
}

// ActiveCount returns the number of spendable tokens.
func (p *Pool) ActiveCount() int {
	return len(p.Active)
}

// Gain moves up to n tokens from the don deck to the active pool, honoring
// the in-play limit. Returns how many tokens actually entered play.
func (p *Pool) Gain(n int) int {
	room := InPlayLimit - p.InPlay()
	if n > room {
		n = room
	}
	moved := 0
	for moved < n && len(p.Deck) > 0 {
		tok := p.Deck[0]
		p.Deck = p.Deck[1:]
		tok.Rested = false
		p.Active = append(p.Active, tok)
		moved++
	}
	return moved
}

// Pay rests n active tokens as a cost. Returns an error without mutating when
// fewer than n are active.
func (p *Pool) Pay(n int) error {
	if len(p.Active) < n {
		return fmt.Errorf("insufficient don: need %d, have %d active", n, len(p.Active))
	}
	for i := 0; i < n; i++ {
		tok := p.Active[0]
		p.Active = p.Active[1:]
		tok.Rested = true
		p.Rested = append(p.Rested, tok)
	}
	return nil
}

// PayTokens rests the given tokens as a cost. Tokens may come from the active
// or attached pools; attached tokens are detached first.
func (p *Pool) PayTokens(tokens []*Token) error {
	for _, tok := range tokens {
		if !p.remove(&p.Active, tok) {
			if !p.remove(&p.Attached, tok) {
				return fmt.Errorf("don token %s is not payable", tok.UUID)
			}
			tok.AttachedTo = ""
		}
		tok.Rested = true
		p.Rested = append(p.Rested, tok)
	}
	return nil
}

// Attach moves one active token onto the card identified by cardUUID.
func (p *Pool) Attach(cardUUID string) error {
	if len(p.Active) == 0 {
		return fmt.Errorf("no active don to attach")
	}
	tok := p.Active[0]
	p.Active = p.Active[1:]
	tok.AttachedTo = cardUUID
	p.Attached = append(p.Attached, tok)
	return nil
}

// DetachFrom returns every token attached to cardUUID to the rested pool.
// Used when a card leaves the field mid-turn.
func (p *Pool) DetachFrom(cardUUID string) int {
	detached := 0
	remaining := p.Attached[:0]
	for _, tok := range p.Attached {
		if tok.AttachedTo == cardUUID {
			tok.AttachedTo = ""
			tok.Rested = true
			p.Rested = append(p.Rested, tok)
			detached++
			continue
		}
		remaining = append(remaining, tok)
	}
	p.Attached = remaining
	return detached
}

// Rest moves one active token to the rested pool without treating it as a
// payment. Used by effects that rest don directly.
func (p *Pool) Rest(tok *Token) bool {
	if !p.remove(&p.Active, tok) {
		if !p.remove(&p.Attached, tok) {
			return false
		}
		tok.AttachedTo = ""
	}
	tok.Rested = true
	p.Rested = append(p.Rested, tok)
	return true
}

// Refresh returns all rested and attached tokens to the active pool with
// their state cleared. Called at the start of the owner's turn.
func (p *Pool) Refresh() {
	for _, tok := range p.Rested {
		tok.Rested = false
		p.Active = append(p.Active, tok)
	}
	p.Rested = nil
	for _, tok := range p.Attached {
		tok.Rested = false
		tok.AttachedTo = ""
		p.Active = append(p.Active, tok)
	}
	p.Attached = nil
}

// ReturnToDeck moves n tokens back to the don deck, taking from rested first,
// then active. Returns how many were returned.
func (p *Pool) ReturnToDeck(n int) int {
	returned := 0
	for returned < n && len(p.Rested) > 0 {
		tok := p.Rested[0]
		p.Rested = p.Rested[1:]
		tok.Rested = false
		p.Deck = append(p.Deck, tok)
		returned++
	}
	for returned < n && len(p.Active) > 0 {
		tok := p.Active[0]
		p.Active = p.Active[1:]
		p.Deck = append(p.Deck, tok)
		returned++
	}
	return returned
}

// Find locates a token by UUID in any pool.
func (p *Pool) Find(tokenUUID string) *Token {
	for _, pool := range [][]*Token{p.Deck, p.Active, p.Rested, p.Attached} {
		for _, tok := range pool {
			if tok.UUID == tokenUUID {
				return tok
			}
		}
	}
	return nil
}

func (p *Pool) remove(pool *[]*Token, tok *Token) bool {
	for i, t := range *pool {
		if t == tok {
			*pool = append((*pool)[:i], (*pool)[i+1:]...)
			return true
		}
	}
	return false
}
