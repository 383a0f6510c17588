package effects

import (
	"context"

	"github.com/technobros/cardgame-go/internal/game/energy"
	"github.com/technobros/cardgame-go/internal/game/targeting"
)

// Host is the game-side surface effect handlers act through. All zone
// moves and damage go through the host so board invariants stay in one place.
type Host interface {
	// DrawCards draws up to n cards for a player and returns how many were drawn.
	DrawCards(playerID string, n int) int
	// SelectTarget asks the controller's decision provider for a target.
	SelectTarget(ctx context.Context, req targeting.Requirement) (targeting.Target, bool)
	// DamageCard damages a creature, destroying it if lethal.
	DamageCard(cardID string, amount int, sourceID string) (destroyed bool)
	// DamagePlayer reduces a player's life.
	DamagePlayer(playerID string, amount int, sourceID string)
	// DestroyCard moves a card to its owner's graveyard.
	DestroyCard(cardID string, sourceID string) bool
	// AdjustStats adds to a creature's attack and defense.
	AdjustStats(cardID string, attack, defense int)
	// RaiseModifier lifts a player's modifier to at least value.
	RaiseModifier(playerID string, kind energy.ModifierKind, value int)
	// Record appends an entry to the game's action log.
	Record(playerID string, message string)
}
