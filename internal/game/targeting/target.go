package targeting

import (
	"fmt"
	"strings"

	"github.com/technobros/cardgame-go/internal/game/rules"
)

// Class represents the kind of object an effect can target.
type Class string

const (
	// ClassCreature targets creatures in a battlezone
	ClassCreature Class = "creature"
	// ClassCreatureOrPlayer targets creatures or players
	ClassCreatureOrPlayer Class = "creature_or_player"
	// ClassEquipment targets equipment in environs
	ClassEquipment Class = "equipment"
	// ClassEnchantment targets enchantments in environs
	ClassEnchantment Class = "enchantment"
	// ClassPlayer targets players
	ClassPlayer Class = "player"
)

// Valid reports whether c is a known target class.
func (c Class) Valid() bool {
	switch c {
	case ClassCreature, ClassCreatureOrPlayer, ClassEquipment, ClassEnchantment, ClassPlayer:
		return true
	}
	return false
}

// AdmitsPlayers reports whether players are legal targets for the class.
func (c Class) AdmitsPlayers() bool {
	return c == ClassCreatureOrPlayer || c == ClassPlayer
}

// AdmitsCard reports whether a card of the given type is a legal target.
func (c Class) AdmitsCard(cardType rules.CardType) bool {
	switch c {
	case ClassCreature, ClassCreatureOrPlayer:
		return cardType == rules.CardTypeCreature
	case ClassEquipment:
		return cardType == rules.CardTypeEquipment
	case ClassEnchantment:
		return cardType == rules.CardTypeEnchantment
	default:
		return false
	}
}

// Requirement defines what target an effect requires.
type Requirement struct {
	// Class specifies what kind of target is required
	Class Class
	// ChooserID is the player selecting the target; candidates are ordered from their side first
	ChooserID string
	// SourceID is the card whose effect needs the target
	SourceID string
	// Description is a human-readable prompt for the decision provider
	Description string
	// Beneficial marks requirements whose effect helps the target
	Beneficial bool
}

// Kind distinguishes card targets from player targets.
type Kind int

const (
	KindCard Kind = iota
	KindPlayer
)

// Target is a selectable card or player.
type Target struct {
	ID      string
	Kind    Kind
	Name    string
	OwnerID string
}

// IsPlayer reports whether the target is a player.
func (t Target) IsPlayer() bool {
	return t.Kind == KindPlayer
}

func (t Target) String() string {
	if t.IsPlayer() {
		return fmt.Sprintf("player %s", t.Name)
	}
	return fmt.Sprintf("%s (ID: %s)", t.Name, t.ID)
}

// FormatTargets formats a target list for logging.
func FormatTargets(targets []Target) string {
	parts := make([]string, len(targets))
	for i, t := range targets {
		parts[i] = t.String()
	}
	return strings.Join(parts, ", ")
}
