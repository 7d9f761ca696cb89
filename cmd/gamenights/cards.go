package main

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/kirschjd/1001-game-nights-sub000/internal/henhur"
)

// CardsCmd prints the HenHur card catalog, for eyeballing card data during
// design work.
type CardsCmd struct {
	Deck string `help:"Limit to one deck set (base, lap1, lap2, lap3)"`
}

var (
	deckStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("205")).
			MarginTop(1)

	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("86"))

	numberStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("214"))

	textStyle = lipgloss.NewStyle().
			Faint(true)

	effectStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("63"))
)

func (cmd *CardsCmd) Run() error {
	decks := []henhur.DeckType{henhur.DeckBase, henhur.DeckLap1, henhur.DeckLap2, henhur.DeckLap3}
	if cmd.Deck != "" {
		decks = []henhur.DeckType{henhur.DeckType(cmd.Deck)}
	}

	for _, deck := range decks {
		cards := henhur.CardsForDeck(deck)
		if len(cards) == 0 {
			return fmt.Errorf("unknown deck set: %s", cmd.Deck)
		}

		fmt.Println(deckStyle.Render(strings.ToUpper(string(deck))))
		for _, card := range cards {
			prio := fmt.Sprintf("%d", card.Priority.Base)
			if card.Priority.Dice != "" {
				prio += "+" + card.Priority.Dice
			}
			fmt.Printf("  %s  %s\n",
				titleStyle.Render(card.Title),
				numberStyle.Render(fmt.Sprintf("trick %d / race %d / priority %s", card.TrickNumber, card.RaceNumber, prio)))
			if card.Text != "" {
				fmt.Printf("    %s\n", textStyle.Render(card.Text))
			}
			for _, line := range effectLines(card) {
				fmt.Printf("    %s\n", effectStyle.Render(line))
			}
		}
	}
	return nil
}

func effectLines(card henhur.Card) []string {
	var lines []string
	for _, eff := range card.Effects {
		lines = append(lines, "effect: "+summarizeEffect(eff))
	}
	for _, eff := range card.BurnEffects {
		lines = append(lines, "burn: "+summarizeEffect(eff))
	}
	return lines
}

func summarizeEffect(eff henhur.Effect) string {
	switch eff.Type {
	case henhur.EffectMovePlayer:
		return fmt.Sprintf("move self %+d", eff.Distance)
	case henhur.EffectMoveOpponent:
		return fmt.Sprintf("move opponent (%s) %+d", eff.TargetSelection, eff.Distance)
	case henhur.EffectTokenPool:
		return fmt.Sprintf("%s %d %s token(s)", eff.TokenAction, eff.Count, eff.TokenType)
	case henhur.EffectDrawCards:
		return fmt.Sprintf("draw %d", eff.Count)
	case henhur.EffectDiscardCards:
		return fmt.Sprintf("discard %d", eff.Count)
	case henhur.EffectModifyPriority:
		return fmt.Sprintf("priority %+d", eff.Adjustment)
	case henhur.EffectPlayerMat:
		return fmt.Sprintf("mat %s %s %d", eff.Property, eff.Operation, eff.Value)
	}
	return string(eff.Type)
}
