package game

import (
	"math/rand"

	"github.com/technobros/cardgame-go/internal/game/rules"
)

// Zone is an ordered card container. The first card is the top of a deck.
type Zone struct {
	kind  rules.Zone
	cards []*Card
}

func newZone(kind rules.Zone) *Zone {
	return &Zone{kind: kind}
}

// Kind returns which zone this is.
func (z *Zone) Kind() rules.Zone {
	return z.kind
}

// Len returns the number of cards in the zone.
func (z *Zone) Len() int {
	return len(z.cards)
}

// Cards returns the zone's cards in order. The slice is a copy.
func (z *Zone) Cards() []*Card {
	out := make([]*Card, len(z.cards))
	copy(out, z.cards)
	return out
}

// Index returns the position of a card, or -1.
func (z *Zone) Index(cardID string) int {
	for i, c := range z.cards {
		if c.ID == cardID {
			return i
		}
	}
	return -1
}

// Contains reports whether the zone holds the card.
func (z *Zone) Contains(cardID string) bool {
	return z.Index(cardID) >= 0
}

// Add appends a card to the end of the zone.
func (z *Zone) Add(c *Card) {
	z.cards = append(z.cards, c)
}

// Remove takes a card out of the zone, returning nil if it is absent.
func (z *Zone) Remove(cardID string) *Card {
	i := z.Index(cardID)
	if i < 0 {
		return nil
	}
	c := z.cards[i]
	z.cards = append(z.cards[:i], z.cards[i+1:]...)
	return c
}

// Top returns the first card without removing it.
func (z *Zone) Top() *Card {
	if len(z.cards) == 0 {
		return nil
	}
	return z.cards[0]
}

// Last returns the final card without removing it.
func (z *Zone) Last() *Card {
	if len(z.cards) == 0 {
		return nil
	}
	return z.cards[len(z.cards)-1]
}

// Shuffle randomizes the zone order.
func (z *Zone) Shuffle(rng *rand.Rand) {
	rng.Shuffle(len(z.cards), func(i, j int) {
		z.cards[i], z.cards[j] = z.cards[j], z.cards[i]
	})
}
