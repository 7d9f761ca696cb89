package henhur

import (
	"encoding/json"
	"sort"

	"github.com/kirschjd/1001-game-nights-sub000/internal/game"
)

// bidEntry is one racer's auction bid with its computed value and the rolled
// priority used only to break value ties.
type bidEntry struct {
	index    int
	player   *Player
	sel      Selection
	value    int
	priority int
}

// resolveAuction ranks the revealed bids and opens drafting. Bid cards are
// consumed here: burned into a slot when declared, discarded otherwise. Bid
// effects do not execute; in auctions a card is currency, not a play.
func (g *Engine) resolveAuction() {
	entries := make([]bidEntry, 0, len(g.players))
	for i, p := range g.players {
		if p.Selected == nil {
			continue
		}
		sel := *p.Selected
		entries = append(entries, bidEntry{
			index:    i,
			player:   p,
			sel:      sel,
			value:    sel.Card.TrickNumber + g.cfg.AuctionBonus(sel.TokensUsed),
			priority: g.rollPriority(sel.Card.Priority),
		})
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].value != entries[j].value {
			return entries[i].value > entries[j].value
		}
		return entries[i].priority > entries[j].priority
	})

	g.auctionOrder = g.auctionOrder[:0]
	for _, e := range entries {
		g.auctionOrder = append(g.auctionOrder, e.player.ID)
		g.consumeBid(e)
	}
	g.history = append(g.history, TurnRecord{
		Round: g.round, Turn: g.turn, TurnType: TurnAuction,
		Order: append([]string(nil), g.auctionOrder...),
	})

	g.phase = PhaseAuctionDrafting
	g.draftIndex = 0
	g.logger.Debug("Auction resolved", "order", len(g.auctionOrder), "pool", len(g.auctionPool))
}

func (g *Engine) consumeBid(e bidEntry) {
	p := e.player
	card, ok := p.Deck.RemoveFromHand(e.sel.Card.InstanceID)
	if !ok {
		g.logger.Warn("Bid card vanished from hand", "player", p.Name, "card", e.sel.Card.Title)
	} else if e.sel.WillBurn && card.CanBurn() {
		if slot := p.emptyBurnSlot(); slot >= 0 {
			burned := card
			p.BurnSlots[slot] = &burned
			p.Stats.CardsBurned++
		} else {
			p.Deck.Discard(card)
		}
	} else {
		p.Deck.Discard(card)
	}
	p.Stats.CardsPlayed++

	p.spendTokens(e.sel.TokensUsed)
	if len(p.Deck.Hand) == 0 {
		p.Deck.DrawN(g.rng, g.cfg.HandSize)
	}

	// Selection scratch only; the priority modifier survives auctions.
	p.Selected = nil
	p.Ready = false
}

// applyDraft takes the acting racer's pick from the pool in bid-value order.
// When every bidder has picked, the leftover pool is removed from play and
// the next turn opens.
func (g *Engine) applyDraft(p *Player, payload json.RawMessage) game.Result {
	if g.phase != PhaseAuctionDrafting {
		return game.Fail("drafting is not in progress")
	}
	if g.currentDrafter() != p.ID {
		return game.Fail("it is not your pick")
	}

	var pick DraftCardPayload
	if err := json.Unmarshal(payload, &pick); err != nil {
		return game.Fail("malformed draft pick")
	}

	idx := -1
	for i := range g.auctionPool {
		if g.auctionPool[i].InstanceID == pick.CardInstanceID {
			idx = i
			break
		}
	}
	if idx < 0 {
		return game.Fail("card is not in the pool")
	}

	card := g.auctionPool[idx]
	g.auctionPool = append(g.auctionPool[:idx], g.auctionPool[idx+1:]...)
	p.Deck.PlaceOnTop(card)
	g.logger.Debug("Card drafted", "player", p.Name, "card", card.Title)

	g.draftIndex++
	if g.draftIndex >= len(g.auctionOrder) || len(g.auctionPool) == 0 {
		// Undrafted cards leave the game rather than returning to the deck.
		g.auctionPool = nil
		g.advanceTurn()
	}
	return game.OK()
}
