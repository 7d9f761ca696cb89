package lobby

import "github.com/kirschjd/1001-game-nights-sub000/internal/game"

// recognizedOptions lists the option fields each game type understands.
// Unknown keys are dropped at the lobby boundary; game types may be listed
// here without having a registered constructor yet.
var recognizedOptions = map[string][]string{
	"henhur":       {"variant", "selectedCards"},
	"enhanced-war": {"variant"},
	"dice-factory": {"version", "abilityTiers", "selectedAbilities"},
	"kill-team":    {"packSize", "totalPacks"},
}

// SanitizeOptions keeps only the fields the given game type recognizes.
func SanitizeOptions(gameType string, opts game.Options) game.Options {
	fields, ok := recognizedOptions[gameType]
	if !ok || len(opts) == 0 {
		return game.Options{}
	}
	out := game.Options{}
	for _, field := range fields {
		if v, present := opts[field]; present {
			out[field] = v
		}
	}
	return out
}

// KnownGameType reports whether the tag names a selectable game type.
// Selectable is weaker than startable: a type without a constructor can be
// chosen in the lobby but fails at start with "game type not available".
func KnownGameType(gameType string) bool {
	_, ok := recognizedOptions[gameType]
	return ok
}
