package rules

import "fmt"

// Zone identifies a card container owned by a player.
type Zone int

const (
	ZoneNone Zone = iota
	ZoneDeck
	ZoneHand
	ZoneBattlezone
	ZoneEnvirons
	ZoneGraveyard
)

var zoneNames = map[Zone]string{
	ZoneNone:       "NONE",
	ZoneDeck:       "DECK",
	ZoneHand:       "HAND",
	ZoneBattlezone: "BATTLEZONE",
	ZoneEnvirons:   "ENVIRONS",
	ZoneGraveyard:  "GRAVEYARD",
}

func (z Zone) String() string {
	if name, ok := zoneNames[z]; ok {
		return name
	}
	return fmt.Sprintf("ZONE_%d", int(z))
}

// InPlay reports whether cards in the zone are on the board.
func (z Zone) InPlay() bool {
	return z == ZoneBattlezone || z == ZoneEnvirons
}

// CardType is the rules category of a card.
type CardType string

const (
	CardTypeCreature    CardType = "creature"
	CardTypeSpell       CardType = "spell"
	CardTypeEnchantment CardType = "enchantment"
	CardTypeEquipment   CardType = "equipment"
)

// Valid reports whether t is one of the known card types.
func (t CardType) Valid() bool {
	switch t {
	case CardTypeCreature, CardTypeSpell, CardTypeEnchantment, CardTypeEquipment:
		return true
	}
	return false
}

// DestinationZone returns the zone a card of this type enters when played.
// Spells and unknown types resolve straight to the graveyard.
func (t CardType) DestinationZone() Zone {
	switch t {
	case CardTypeCreature:
		return ZoneBattlezone
	case CardTypeEnchantment, CardTypeEquipment:
		return ZoneEnvirons
	default:
		return ZoneGraveyard
	}
}
