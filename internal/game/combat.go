package game

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/technobros/cardgame-go/internal/game/rules"
)

// combatState tracks the attack in progress during a combat phase.
type combatState struct {
	attackingPlayer string
	defendingPlayer string
	attackers       []string          // declaration order
	blocks          map[string]string // attacker -> blocker
	blocksDeclared  bool
}

// CombatResult summarizes one combat damage step.
type CombatResult struct {
	Attackers    []string          `json:"attackers"`
	Blocks       map[string]string `json:"blocks"`
	PlayerDamage int               `json:"player_damage"`
	Destroyed    []string          `json:"destroyed"`
}

// EligibleAttackers returns the player's battlezone creatures that can act.
func (g *Game) EligibleAttackers(playerID string) []*Card {
	p := g.players[playerID]
	if p == nil {
		return nil
	}
	var out []*Card
	for _, c := range p.Battlezone().cards {
		if g.legality.CanAttack(playerID, c.ID).Legal {
			out = append(out, c)
		}
	}
	return out
}

// EligibleBlockers returns the player's untapped battlezone creatures.
func (g *Game) EligibleBlockers(playerID string) []*Card {
	p := g.players[playerID]
	if p == nil {
		return nil
	}
	var out []*Card
	for _, c := range p.Battlezone().cards {
		if g.legality.CanBlock(playerID, c.ID).Legal {
			out = append(out, c)
		}
	}
	return out
}

// DeclareAttackers starts an attack against the player's opponent. All
// IDs are validated before any creature is tapped.
func (g *Game) DeclareAttackers(playerID string, attackerIDs []string) error {
	if g.over {
		return ErrGameOver
	}
	opponent := g.Opponent(playerID)
	if opponent == nil {
		return fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}
	if g.combat != nil && len(g.combat.attackers) > 0 {
		return fmt.Errorf("%w: attackers already declared", ErrInvalidAttack)
	}
	seen := make(map[string]bool, len(attackerIDs))
	for _, id := range attackerIDs {
		if seen[id] {
			return fmt.Errorf("%w: %s declared twice", ErrInvalidAttack, id)
		}
		seen[id] = true
		if res := g.legality.CanAttack(playerID, id); !res.Legal {
			return fmt.Errorf("%w: %s: %s", ErrInvalidAttack, id, res.Reason)
		}
	}

	g.combat = &combatState{
		attackingPlayer: playerID,
		defendingPlayer: opponent.ID,
		attackers:       append([]string(nil), attackerIDs...),
		blocks:          make(map[string]string),
	}
	for _, id := range attackerIDs {
		c := g.cards[id]
		c.Tap()
		g.recordf(LogCombat, playerID, "%s is tapped and attacking.", c.Name)
		evt := rules.NewEventWithAmount(rules.EventAttackerDeclared, c.ID, c.ID, playerID, c.Attack)
		evt.Metadata["defender_id"] = opponent.ID
		g.publish(evt)
	}
	return nil
}

// DeclareBlockers assigns at most one blocker to each attacker. The
// assignment maps attacker IDs to blocker IDs and is validated as a whole.
func (g *Game) DeclareBlockers(defenderID string, assignment map[string]string) error {
	if g.over {
		return ErrGameOver
	}
	cs := g.combat
	if cs == nil || len(cs.attackers) == 0 {
		return fmt.Errorf("%w: no attack in progress", ErrInvalidBlock)
	}
	if defenderID != cs.defendingPlayer {
		return fmt.Errorf("%w: %s is not the defending player", ErrInvalidBlock, defenderID)
	}
	if cs.blocksDeclared {
		return fmt.Errorf("%w: blockers already declared", ErrInvalidBlock)
	}
	attacking := make(map[string]bool, len(cs.attackers))
	for _, id := range cs.attackers {
		attacking[id] = true
	}
	used := make(map[string]string, len(assignment))
	for attackerID, blockerID := range assignment {
		if !attacking[attackerID] {
			return fmt.Errorf("%w: %s is not attacking", ErrInvalidBlock, attackerID)
		}
		if other, dup := used[blockerID]; dup {
			return fmt.Errorf("%w: %s cannot block both %s and %s", ErrInvalidBlock, blockerID, other, attackerID)
		}
		used[blockerID] = attackerID
		if res := g.legality.CanBlock(defenderID, blockerID); !res.Legal {
			return fmt.Errorf("%w: %s: %s", ErrInvalidBlock, blockerID, res.Reason)
		}
	}

	cs.blocksDeclared = true
	for _, attackerID := range cs.attackers {
		blockerID, ok := assignment[attackerID]
		if !ok {
			continue
		}
		cs.blocks[attackerID] = blockerID
		attacker, blocker := g.cards[attackerID], g.cards[blockerID]
		g.recordf(LogCombat, defenderID, "blocks %s with %s", attacker.Name, blocker.Name)
		evt := rules.NewEvent(rules.EventBlockerDeclared, attackerID, blockerID, defenderID)
		g.publish(evt)
	}
	return nil
}

// ResolveCombatDamage deals combat damage for the attack in progress and
// ends it. Blocked pairs exchange damage simultaneously using attack values
// from before the exchange; unblocked attackers hit the defending player.
func (g *Game) ResolveCombatDamage() (CombatResult, error) {
	cs := g.combat
	if cs == nil {
		return CombatResult{}, fmt.Errorf("%w: no attack in progress", ErrInvalidAttack)
	}
	g.combat = nil
	result := CombatResult{
		Attackers: append([]string(nil), cs.attackers...),
		Blocks:    make(map[string]string, len(cs.blocks)),
	}
	for k, v := range cs.blocks {
		result.Blocks[k] = v
	}

	type exchange struct {
		attacker, blocker *Card
		attackerHit       int // damage the attacker takes
		blockerHit        int
	}
	var exchanges []exchange
	var unblocked []*Card
	for _, id := range cs.attackers {
		attacker := g.cards[id]
		if attacker == nil || attacker.Zone != rules.ZoneBattlezone {
			continue
		}
		blockerID, blocked := cs.blocks[id]
		if !blocked {
			unblocked = append(unblocked, attacker)
			continue
		}
		blocker := g.cards[blockerID]
		if blocker == nil || blocker.Zone != rules.ZoneBattlezone {
			// A blocked attacker stays blocked when its blocker is gone.
			continue
		}
		exchanges = append(exchanges, exchange{
			attacker:    attacker,
			blocker:     blocker,
			attackerHit: blocker.Attack,
			blockerHit:  attacker.Attack,
		})
	}

	for _, ex := range exchanges {
		g.recordf(LogCombat, cs.attackingPlayer, "%s is blocked by %s.", ex.attacker.Name, ex.blocker.Name)
		ex.attacker.ReceiveDamage(ex.attackerHit)
		ex.blocker.ReceiveDamage(ex.blockerHit)
		g.recordf(LogCombat, cs.attackingPlayer, "%s deals %d damage to %s.", ex.attacker.Name, ex.blockerHit, ex.blocker.Name)
		g.recordf(LogCombat, cs.defendingPlayer, "%s deals %d damage to %s.", ex.blocker.Name, ex.attackerHit, ex.attacker.Name)
		g.publish(rules.NewEventWithAmount(rules.EventDamagedCreature, ex.blocker.ID, ex.attacker.ID, cs.attackingPlayer, ex.blockerHit))
		g.publish(rules.NewEventWithAmount(rules.EventDamagedCreature, ex.attacker.ID, ex.blocker.ID, cs.defendingPlayer, ex.attackerHit))
	}
	for _, ex := range exchanges {
		for _, c := range []*Card{ex.attacker, ex.blocker} {
			if c.Defense <= 0 && c.Zone == rules.ZoneBattlezone {
				g.destroy(c)
				result.Destroyed = append(result.Destroyed, c.ID)
			}
		}
	}

	for _, attacker := range unblocked {
		g.recordf(LogCombat, cs.attackingPlayer, "%s deals %d damage to %s.",
			attacker.Name, attacker.Attack, g.players[cs.defendingPlayer].Name)
		g.damagePlayer(cs.defendingPlayer, attacker.Attack, attacker.ID)
		if attacker.Attack > 0 {
			result.PlayerDamage += attacker.Attack
		}
	}

	g.logger.Debug("combat resolved",
		zap.String("player_id", cs.attackingPlayer),
		zap.Int("attackers", len(result.Attackers)),
		zap.Int("blocks", len(result.Blocks)),
		zap.Int("player_damage", result.PlayerDamage),
		zap.Strings("destroyed", result.Destroyed),
	)
	if g.checkGameOver() && g.winner == cs.attackingPlayer {
		defender := g.players[cs.defendingPlayer]
		g.recordf(LogDanger, cs.attackingPlayer, "%s's life reached %d.", defender.Name, defender.Life())
	}
	return result, nil
}
