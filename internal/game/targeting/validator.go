package targeting

import (
	"errors"
	"fmt"

	"github.com/technobros/cardgame-go/internal/game/rules"
)

// ErrNoCandidates is returned when no legal target exists for a requirement.
var ErrNoCandidates = errors.New("no legal targets")

// TargetGameStateAccessor provides access to game state needed for target selection.
type TargetGameStateAccessor interface {
	// InPlayForTarget returns a player's battlezone then environs cards, in zone order
	InPlayForTarget(playerID string) []TargetCardInfo
	// OpponentForTarget returns the opposing player's ID
	OpponentForTarget(playerID string) string
	// FindCardForTarget finds a card by ID in any zone
	FindCardForTarget(cardID string) (TargetCardInfo, bool)
	// FindPlayerForTarget finds player info by ID
	FindPlayerForTarget(playerID string) (TargetPlayerInfo, bool)
}

// TargetCardInfo provides information about a card for target validation.
type TargetCardInfo struct {
	ID      string
	Name    string
	Type    rules.CardType
	Zone    rules.Zone
	OwnerID string
}

// TargetPlayerInfo provides information about a player for target validation.
type TargetPlayerInfo struct {
	PlayerID string
	Name     string
	Life     int
	Lost     bool
}

// TargetValidator enumerates and validates targets.
type TargetValidator struct {
	gameState TargetGameStateAccessor
}

// NewTargetValidator creates a new target validator.
func NewTargetValidator(gameState TargetGameStateAccessor) *TargetValidator {
	return &TargetValidator{
		gameState: gameState,
	}
}

// Candidates lists legal targets for a requirement. Cards come first, the
// chooser's board before the opponent's; players come last, chooser first.
func (tv *TargetValidator) Candidates(requirement Requirement) []Target {
	if tv == nil || tv.gameState == nil {
		return nil
	}
	chooser := requirement.ChooserID
	opponent := tv.gameState.OpponentForTarget(chooser)
	sides := []string{chooser, opponent}

	var out []Target
	for _, side := range sides {
		if side == "" {
			continue
		}
		for _, card := range tv.gameState.InPlayForTarget(side) {
			if !card.Zone.InPlay() || !requirement.Class.AdmitsCard(card.Type) {
				continue
			}
			out = append(out, Target{ID: card.ID, Kind: KindCard, Name: card.Name, OwnerID: card.OwnerID})
		}
	}
	if requirement.Class.AdmitsPlayers() {
		for _, side := range sides {
			player, ok := tv.gameState.FindPlayerForTarget(side)
			if !ok || player.Lost {
				continue
			}
			out = append(out, Target{ID: player.PlayerID, Kind: KindPlayer, Name: player.Name, OwnerID: player.PlayerID})
		}
	}
	return out
}

// ValidateTarget checks if a single target ID is valid for the given requirement.
func (tv *TargetValidator) ValidateTarget(targetID string, requirement Requirement) error {
	if tv == nil || tv.gameState == nil {
		return fmt.Errorf("target validator not initialized")
	}

	// Check if target is a player
	if player, isPlayer := tv.gameState.FindPlayerForTarget(targetID); isPlayer {
		if !requirement.Class.AdmitsPlayers() {
			return fmt.Errorf("target %s is a player but requirement is %s", targetID, requirement.Class)
		}
		if player.Lost {
			return fmt.Errorf("target player %s has lost the game", targetID)
		}
		return nil
	}

	card, isCard := tv.gameState.FindCardForTarget(targetID)
	if !isCard {
		return fmt.Errorf("target %s not found", targetID)
	}
	if !card.Zone.InPlay() {
		return fmt.Errorf("target %s is not in play", card.Name)
	}
	if !requirement.Class.AdmitsCard(card.Type) {
		return fmt.Errorf("target %s is not a legal %s target", card.Name, requirement.Class)
	}
	return nil
}
