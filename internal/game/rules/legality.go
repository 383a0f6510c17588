package rules

import (
	"fmt"
)

// ReasonInsufficientEnergy is the reason reported when a cost cannot be paid.
const ReasonInsufficientEnergy = "Insufficient energy"

// LegalityChecker validates player actions against the current game state
// before the orchestrator performs them.
type LegalityChecker struct {
	gameState GameStateAccessor
}

// GameStateAccessor provides access to game state needed for legality checks.
type GameStateAccessor interface {
	// FindCard finds a card by ID in any zone
	FindCard(cardID string) (CardInfo, bool)
	// FindPlayer finds player info by ID
	FindPlayer(playerID string) (PlayerInfo, bool)
}

// CardInfo provides information about a card for legality checks.
type CardInfo struct {
	ID            string
	Name          string
	Type          CardType
	Zone          Zone
	OwnerID       string
	Cost          int // cost after the owner's modifiers
	Tapped        bool
	SummoningSick bool
	EquippedTo    string
}

// PlayerInfo provides information about a player for legality checks.
type PlayerInfo struct {
	PlayerID string
	Name     string
	Life     int
	Energy   int
	Lost     bool
}

// LegalityResult represents the result of a legality check.
type LegalityResult struct {
	Legal   bool
	Reason  string
	Details map[string]string
}

// Err converts an illegal result into an error.
func (r LegalityResult) Err() error {
	if r.Legal {
		return nil
	}
	return fmt.Errorf("%s", r.Reason)
}

// NewLegalityChecker creates a new legality checker.
func NewLegalityChecker(gameState GameStateAccessor) *LegalityChecker {
	return &LegalityChecker{
		gameState: gameState,
	}
}

func legal(reason string) LegalityResult {
	return LegalityResult{Legal: true, Reason: reason}
}

func illegal(reason string, details map[string]string) LegalityResult {
	return LegalityResult{Legal: false, Reason: reason, Details: details}
}

// ownedCardIn looks up a card and checks its owner and zone.
func (lc *LegalityChecker) ownedCardIn(playerID, cardID string, zone Zone) (CardInfo, LegalityResult) {
	if lc == nil || lc.gameState == nil {
		return CardInfo{}, illegal("Legality checker not initialized", nil)
	}
	player, found := lc.gameState.FindPlayer(playerID)
	if !found {
		return CardInfo{}, illegal("Player not found", map[string]string{"player_id": playerID})
	}
	if player.Lost {
		return CardInfo{}, illegal("Player has lost the game", map[string]string{"player_id": playerID})
	}
	card, found := lc.gameState.FindCard(cardID)
	if !found {
		return CardInfo{}, illegal("Card not found", map[string]string{"card_id": cardID})
	}
	if card.OwnerID != playerID {
		return card, illegal("Card belongs to another player", map[string]string{
			"card_id":  cardID,
			"owner_id": card.OwnerID,
		})
	}
	if card.Zone != zone {
		return card, illegal(fmt.Sprintf("Card not in %s", zone), map[string]string{
			"card_id": cardID,
			"zone":    card.Zone.String(),
		})
	}
	return card, legal("")
}

// CanPlay checks that a card is in the player's hand and affordable.
func (lc *LegalityChecker) CanPlay(playerID, cardID string) LegalityResult {
	card, result := lc.ownedCardIn(playerID, cardID, ZoneHand)
	if !result.Legal {
		return result
	}
	player, _ := lc.gameState.FindPlayer(playerID)
	if player.Energy < card.Cost {
		return illegal(ReasonInsufficientEnergy, map[string]string{
			"card_id": cardID,
			"cost":    fmt.Sprintf("%d", card.Cost),
			"energy":  fmt.Sprintf("%d", player.Energy),
		})
	}
	return legal("Card can be played")
}

// CanAttack checks that a creature is untapped, free of summoning sickness
// and on its owner's battlezone.
func (lc *LegalityChecker) CanAttack(playerID, cardID string) LegalityResult {
	card, result := lc.ownedCardIn(playerID, cardID, ZoneBattlezone)
	if !result.Legal {
		return result
	}
	if card.Type != CardTypeCreature {
		return illegal("Only creatures can attack", map[string]string{"card_id": cardID})
	}
	if card.Tapped {
		return illegal("Creature is tapped", map[string]string{"card_id": cardID})
	}
	if card.SummoningSick {
		return illegal("Creature has summoning sickness", map[string]string{"card_id": cardID})
	}
	return legal("Creature can attack")
}

// CanBlock checks that a creature is untapped and on its owner's battlezone.
func (lc *LegalityChecker) CanBlock(playerID, cardID string) LegalityResult {
	card, result := lc.ownedCardIn(playerID, cardID, ZoneBattlezone)
	if !result.Legal {
		return result
	}
	if card.Type != CardTypeCreature {
		return illegal("Only creatures can block", map[string]string{"card_id": cardID})
	}
	if card.Tapped {
		return illegal("Creature is tapped", map[string]string{"card_id": cardID})
	}
	return legal("Creature can block")
}

// CanEquip checks that an equipment in the player's environs can be attached
// to one of the player's creatures for the given equip cost.
func (lc *LegalityChecker) CanEquip(playerID, equipmentID, creatureID string, equipCost int) LegalityResult {
	equipment, result := lc.ownedCardIn(playerID, equipmentID, ZoneEnvirons)
	if !result.Legal {
		return result
	}
	if equipment.Type != CardTypeEquipment {
		return illegal("Card is not equipment", map[string]string{"card_id": equipmentID})
	}
	creature, result := lc.ownedCardIn(playerID, creatureID, ZoneBattlezone)
	if !result.Legal {
		return result
	}
	if creature.Type != CardTypeCreature {
		return illegal("Equipment can only be attached to creatures", map[string]string{"card_id": creatureID})
	}
	player, _ := lc.gameState.FindPlayer(playerID)
	if player.Energy < equipCost {
		return illegal(ReasonInsufficientEnergy, map[string]string{
			"cost":   fmt.Sprintf("%d", equipCost),
			"energy": fmt.Sprintf("%d", player.Energy),
		})
	}
	return legal("Equipment can be attached")
}
