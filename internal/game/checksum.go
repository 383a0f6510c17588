package game

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"sort"

	"github.com/technobros/cardgame-go/internal/game/energy"
)

// Checksum returns a SHA-256 digest of the deterministic game state: seats,
// turn position, zone contents in order, card state and the action log
// without timestamps. Two games built from the same seed and decisions
// produce the same checksum.
func (g *Game) Checksum() string {
	sum := sha256.Sum256(g.deterministicRepresentation())
	return hex.EncodeToString(sum[:])
}

func (g *Game) deterministicRepresentation() []byte {
	var buf bytes.Buffer

	fmt.Fprintf(&buf, "GAME:%d|%s|%s|%t|%s\n",
		g.turns.TurnNumber(),
		g.turns.CurrentPhase(),
		g.turns.ActivePlayer(),
		g.over,
		g.winner,
	)

	for _, p := range g.order {
		fmt.Fprintf(&buf, "PLAYER:%s|%s|%d|%d\n", p.ID, p.Name, p.Life(), p.Energy())

		mods := p.modifiers.Snapshot()
		kinds := make([]energy.ModifierKind, 0, len(mods))
		for k := range mods {
			kinds = append(kinds, k)
		}
		sort.Slice(kinds, func(i, j int) bool { return kinds[i] < kinds[j] })
		for _, k := range kinds {
			fmt.Fprintf(&buf, "  MOD:%s=%d\n", k, mods[k])
		}

		for _, z := range p.allZones() {
			fmt.Fprintf(&buf, "  ZONE:%s", z.kind)
			for _, c := range z.cards {
				fmt.Fprintf(&buf, "|%s", c.ID)
			}
			buf.WriteByte('\n')
		}
	}

	ids := make([]string, 0, len(g.cards))
	for id := range g.cards {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		c := g.cards[id]
		fmt.Fprintf(&buf, "CARD:%s|%s|%s|%s|%d|%d|%d|%t|%t|%s|%s|%s\n",
			c.ID,
			c.Name,
			c.Type,
			c.OwnerID,
			c.Attack,
			c.Defense,
			c.Cost,
			c.Tapped,
			c.SummoningSick,
			c.EquippedTo,
			c.Equipment,
			c.Zone,
		)
		for _, d := range c.Effects {
			fmt.Fprintf(&buf, "  EFFECT:%s|%d|%s|%s|%s\n", d.Kind, d.Value, d.Trigger, d.Target, d.SourceID)
		}
	}

	for _, e := range g.log {
		fmt.Fprintf(&buf, "LOG:%d|%d|%s|%s|%s|%s\n", e.Seq, e.Turn, e.PhaseName, e.PlayerID, e.Level, e.Message)
	}
	return buf.Bytes()
}
