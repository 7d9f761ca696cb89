package lobby

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/kirschjd/1001-game-nights-sub000/internal/game"
)

func TestSanitizeOptionsDropsUnknownFields(t *testing.T) {
	opts := game.Options{
		"variant":       "standard",
		"selectedCards": []string{"lap1-shove"},
		"cheatMode":     true,
	}

	got := SanitizeOptions("henhur", opts)
	assert.Equal(t, game.Options{
		"variant":       "standard",
		"selectedCards": []string{"lap1-shove"},
	}, got)

	assert.Empty(t, SanitizeOptions("henhur", game.Options{"cheatMode": true}))
	assert.Empty(t, SanitizeOptions("no-such-game", opts))
}

func TestKnownGameType(t *testing.T) {
	assert.True(t, KnownGameType("henhur"))
	assert.True(t, KnownGameType("dice-factory"))
	assert.False(t, KnownGameType("poker"))
}
