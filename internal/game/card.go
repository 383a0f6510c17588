package game

import (
	"fmt"

	"github.com/technobros/cardgame-go/internal/game/effects"
	"github.com/technobros/cardgame-go/internal/game/energy"
	"github.com/technobros/cardgame-go/internal/game/rules"
)

// CardType is the rules category of a card.
type CardType = rules.CardType

const (
	CardTypeCreature    = rules.CardTypeCreature
	CardTypeSpell       = rules.CardTypeSpell
	CardTypeEnchantment = rules.CardTypeEnchantment
	CardTypeEquipment   = rules.CardTypeEquipment
)

// Card is a card instance in the game arena. Cross references (owner,
// equipment links) are stored as IDs and resolved through the Game.
type Card struct {
	ID          string
	Name        string
	Description string
	FlavorText  string
	Type        CardType
	Attack      int
	Defense     int // current defense; doubles as remaining health for creatures
	Cost        int
	Effects     []effects.Descriptor

	Tapped        bool
	SummoningSick bool

	EquippedTo string // equipment only: creature this is attached to
	Equipment  string // creature only: attached equipment
	OwnerID    string
	Zone       rules.Zone

	// granted is what an attached equipment added to its creature's stats.
	granted statGrant
}

type statGrant struct {
	attack  int
	defense int
}

// Tap marks the card as used.
func (c *Card) Tap() {
	c.Tapped = true
}

// Untap readies the card.
func (c *Card) Untap() {
	c.Tapped = false
}

// CanAct reports whether the card may attack or use tap abilities.
func (c *Card) CanAct() bool {
	return !c.Tapped && !c.SummoningSick
}

// ReceiveDamage reduces defense and reports whether the card is now
// destroyed. It does not move the card.
func (c *Card) ReceiveDamage(n int) bool {
	if n > 0 {
		c.Defense -= n
	}
	return c.Defense <= 0
}

// AdjustedCost returns the cost to play the card under the owner's modifiers.
func (c *Card) AdjustedCost(mods *energy.Modifiers) int {
	if c.Type == CardTypeEquipment && mods != nil {
		return mods.EquipmentCost(c.Cost)
	}
	return c.Cost
}

// IsEquipped reports whether an equipment card is attached to a creature.
func (c *Card) IsEquipped() bool {
	return c.Type == CardTypeEquipment && c.EquippedTo != ""
}

// effectsFrom returns the descriptors granted by the given source.
func (c *Card) effectsFrom(sourceID string) []effects.Descriptor {
	var out []effects.Descriptor
	for _, d := range c.Effects {
		if d.SourceID == sourceID {
			out = append(out, d)
		}
	}
	return out
}

// removeEffectsFrom drops the descriptors granted by the given source.
func (c *Card) removeEffectsFrom(sourceID string) {
	kept := c.Effects[:0]
	for _, d := range c.Effects {
		if d.SourceID != sourceID {
			kept = append(kept, d)
		}
	}
	c.Effects = kept
}

func (c *Card) String() string {
	return fmt.Sprintf("%s (Type: %s, Cost: %d, ATK/DEF: %d/%d, ID: %s)",
		c.Name, c.Type, c.Cost, c.Attack, c.Defense, c.ID)
}
