package henhur

import "fmt"

// InputRequest describes an effect that cannot proceed without player input.
// The executor stops at the first such effect; the engine stores the request
// plus the remaining suffix and re-invokes it once the input arrives.
type InputRequest struct {
	Kind   string         `json:"kind"`
	Params map[string]any `json:"params,omitempty"`
}

// Input request kinds.
const (
	InputChooseOpponent = "choose_opponent"
)

// EffectResult records the outcome of a single executed effect.
type EffectResult struct {
	Type    EffectType `json:"type"`
	Success bool       `json:"success"`
	Message string     `json:"message,omitempty"`
}

// effectContext carries the state an effect list executes against.
type effectContext struct {
	player   *Player
	targetID string
	isBurn   bool
}

// pendingEffects is a suspended effect suffix awaiting player input.
type pendingEffects struct {
	playerID  string
	remaining []Effect
	request   InputRequest
	isBurn    bool
}

// executeEffects runs effects sequentially against ctx. It returns the
// results accumulated so far and, when an effect needs input, the pending
// descriptor covering that effect and the unexecuted suffix.
func (g *Engine) executeEffects(effects []Effect, ctx effectContext) ([]EffectResult, *pendingEffects) {
	results := make([]EffectResult, 0, len(effects))
	for i, eff := range effects {
		res, input := g.executeEffect(eff, ctx)
		if input != nil {
			return results, &pendingEffects{
				playerID:  ctx.player.ID,
				remaining: effects[i:],
				request:   *input,
				isBurn:    ctx.isBurn,
			}
		}
		results = append(results, res)
	}
	return results, nil
}

func (g *Engine) executeEffect(eff Effect, ctx effectContext) (EffectResult, *InputRequest) {
	switch eff.Type {
	case EffectMovePlayer:
		g.movePlayer(ctx.player, eff.Distance)
		return EffectResult{Type: eff.Type, Success: true}, nil

	case EffectMoveOpponent:
		return g.executeMoveOpponent(eff, ctx)

	case EffectTokenPool:
		return g.executeTokenPool(eff, ctx.player), nil

	case EffectDrawCards:
		ctx.player.Deck.DrawN(g.rng, eff.Count)
		return EffectResult{Type: eff.Type, Success: true}, nil

	case EffectDiscardCards:
		n := eff.Count
		if n > len(ctx.player.Deck.Hand) {
			n = len(ctx.player.Deck.Hand)
		}
		for i := 0; i < n; i++ {
			card := ctx.player.Deck.Hand[0]
			ctx.player.Deck.Hand = ctx.player.Deck.Hand[1:]
			ctx.player.Deck.Discard(card)
		}
		return EffectResult{Type: eff.Type, Success: true}, nil

	case EffectModifyPriority:
		ctx.player.PriorityModifier += eff.Adjustment
		return EffectResult{Type: eff.Type, Success: true}, nil

	case EffectPlayerMat:
		if ctx.player.MatProperties == nil {
			ctx.player.MatProperties = map[string]int{}
		}
		switch eff.Operation {
		case MatAdd:
			ctx.player.MatProperties[eff.Property] += eff.Value
		default:
			ctx.player.MatProperties[eff.Property] = eff.Value
		}
		return EffectResult{Type: eff.Type, Success: true}, nil
	}

	g.logger.Warn("Unknown effect type, skipping", "type", eff.Type)
	return EffectResult{Type: eff.Type, Success: false, Message: fmt.Sprintf("unknown effect type: %s", eff.Type)}, nil
}

func (g *Engine) executeMoveOpponent(eff Effect, ctx effectContext) (EffectResult, *InputRequest) {
	switch eff.TargetSelection {
	case TargetAll:
		for _, opp := range g.players {
			if opp.ID != ctx.player.ID {
				g.pushOpponent(opp, eff.Distance)
			}
		}
		return EffectResult{Type: eff.Type, Success: true}, nil

	case TargetRandom:
		opps := g.opponentsOf(ctx.player.ID)
		if len(opps) == 0 {
			return EffectResult{Type: eff.Type, Success: true, Message: "no opponents"}, nil
		}
		g.pushOpponent(opps[g.rng.IntN(len(opps))], eff.Distance)
		return EffectResult{Type: eff.Type, Success: true}, nil

	default: // choose
		if ctx.targetID == "" {
			return EffectResult{}, &InputRequest{
				Kind: InputChooseOpponent,
				Params: map[string]any{
					"distance":         eff.Distance,
					"requiresAdjacent": eff.RequiresAdjacent,
				},
			}
		}
		target := g.playerByID(ctx.targetID)
		if target == nil || target.ID == ctx.player.ID {
			return EffectResult{Type: eff.Type, Success: false, Message: "invalid target"}, nil
		}
		g.pushOpponent(target, eff.Distance)
		return EffectResult{Type: eff.Type, Success: true}, nil
	}
}

func (g *Engine) executeTokenPool(eff Effect, p *Player) EffectResult {
	if p.Tokens == nil {
		p.Tokens = map[string]int{}
	}
	switch eff.TokenAction {
	case TokenGain:
		room := g.cfg.MaxTokens - p.TokenSum()
		gain := eff.Count
		if gain > room {
			gain = room
		}
		if gain < 0 {
			gain = 0
		}
		p.Tokens[eff.TokenType] += gain

	case TokenSpend:
		have := p.Tokens[eff.TokenType]
		spend := eff.Count
		if spend > have {
			spend = have
		}
		p.Tokens[eff.TokenType] = have - spend

	case TokenSet:
		p.Tokens[eff.TokenType] = eff.Count

	default:
		return EffectResult{Type: eff.Type, Success: false, Message: fmt.Sprintf("unknown token action: %s", eff.TokenAction)}
	}
	return EffectResult{Type: eff.Type, Success: true}
}

// movePlayer applies a signed distance to a racer with lap wrapping. Forward
// moves past the lap boundary increment the lap; backward moves floor at lap
// 1 space 0. DistanceMoved counts the magnitude requested.
func (g *Engine) movePlayer(p *Player, distance int) {
	p.Space += distance
	for p.Space >= g.cfg.SpacesPerLap {
		p.Space -= g.cfg.SpacesPerLap
		p.Lap++
	}
	for p.Space < 0 {
		if p.Lap <= 1 {
			p.Space = 0
			break
		}
		p.Space += g.cfg.SpacesPerLap
		p.Lap--
	}
	if distance < 0 {
		p.Stats.DistanceMoved += -distance
	} else {
		p.Stats.DistanceMoved += distance
	}
}

// pushOpponent applies a push to another racer's space. Pushes never cross a
// lap boundary in either direction: the space clamps to [0, SpacesPerLap-1].
func (g *Engine) pushOpponent(p *Player, distance int) {
	p.Space += distance
	if p.Space < 0 {
		p.Space = 0
	}
	if p.Space >= g.cfg.SpacesPerLap {
		p.Space = g.cfg.SpacesPerLap - 1
	}
}
