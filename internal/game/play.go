package game

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/technobros/cardgame-go/internal/game/effects"
	"github.com/technobros/cardgame-go/internal/game/rules"
)

// legalityErr maps a failed legality check onto the package sentinels.
func legalityErr(res rules.LegalityResult) error {
	if res.Reason == rules.ReasonInsufficientEnergy {
		return fmt.Errorf("%w: needs %s, has %s", ErrInsufficientEnergy, res.Details["cost"], res.Details["energy"])
	}
	return fmt.Errorf("%w: %s", ErrIllegalAction, res.Reason)
}

func (g *Game) lookup(playerID, cardID string) (*Player, *Card, error) {
	if g.over {
		return nil, nil, ErrGameOver
	}
	p := g.players[playerID]
	if p == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownPlayer, playerID)
	}
	c := g.cards[cardID]
	if c == nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrUnknownCard, cardID)
	}
	return p, c, nil
}

// PlayCard pays for a card in the player's hand and resolves it. A failed
// play returns an error and leaves the game untouched.
func (g *Game) PlayCard(ctx context.Context, playerID, cardID string) error {
	p, c, err := g.lookup(playerID, cardID)
	if err != nil {
		return err
	}
	if res := g.legality.CanPlay(playerID, cardID); !res.Legal {
		return legalityErr(res)
	}
	cost := c.AdjustedCost(p.modifiers)
	if err := p.energy.Spend(cost); err != nil {
		return fmt.Errorf("%w: %v", ErrInsufficientEnergy, err)
	}
	if cost > 0 {
		g.publish(rules.NewEventWithAmount(rules.EventEnergySpent, playerID, c.ID, playerID, cost))
	}

	played := rules.NewEvent(rules.EventCardPlayed, c.ID, c.ID, playerID)
	played.Metadata["card_type"] = string(c.Type)
	played.Metadata["cost"] = strconv.Itoa(cost)

	switch c.Type {
	case CardTypeSpell:
		g.moveCard(c, rules.ZoneNone)
		g.recordf(LogSuccess, playerID, "cast %s.", c.Name)
		g.publish(played)
		g.publish(rules.NewEvent(rules.EventSpellCast, c.ID, c.ID, playerID))
		g.resolveTrigger(ctx, effects.TriggerOnCast, c)
		if c.Zone == rules.ZoneNone {
			g.moveCard(c, rules.ZoneGraveyard)
		}
		g.recordf(LogInfo, playerID, "%s was moved to %s's graveyard.", c.Name, p.Name)

	case CardTypeCreature:
		c.Tapped = true
		c.SummoningSick = true
		g.moveCard(c, rules.ZoneBattlezone)
		g.recordf(LogSuccess, playerID, "played %s to the battlezone.", c.Name)
		g.publish(played)
		g.publish(rules.NewEvent(rules.EventCreatureSummoned, c.ID, c.ID, playerID))
		g.resolveTrigger(ctx, effects.TriggerOnCast, c)
		if c.Zone == rules.ZoneBattlezone {
			g.resolveTrigger(ctx, effects.TriggerOnSummon, c)
		}

	case CardTypeEnchantment:
		g.moveCard(c, rules.ZoneEnvirons)
		g.recordf(LogSuccess, playerID, "played %s to the environs.", c.Name)
		g.publish(played)
		g.resolveTrigger(ctx, effects.TriggerOnCast, c)

	case CardTypeEquipment:
		g.moveCard(c, rules.ZoneEnvirons)
		g.recordf(LogSuccess, playerID, "played %s to the environs.", c.Name)
		g.publish(played)
		g.publish(rules.NewEvent(rules.EventEquipmentPlayed, c.ID, c.ID, playerID))
		g.resolveBoardTrigger(ctx, effects.TriggerOnPlayEquipment, p, c.ID)

	default:
		g.moveCard(c, rules.ZoneGraveyard)
		g.publish(played)
		g.warn("unhandled card type", playerID, fmt.Errorf("%s has type %q", c.Name, c.Type), c.ID)
	}

	g.recomputeConstants(p)
	g.checkGameOver()
	return nil
}

// resolveTrigger runs one card's effects for a trigger in a fresh pass.
func (g *Game) resolveTrigger(ctx context.Context, trigger effects.Trigger, c *Card) {
	pass := effects.NewPass(ctx, trigger)
	g.applyCardEffects(pass, c)
	g.flushRegen(pass)
}

// resolveBoardTrigger runs a trigger over every card the player has in
// play, skipping the card that caused it.
func (g *Game) resolveBoardTrigger(ctx context.Context, trigger effects.Trigger, p *Player, causeID string) {
	pass := effects.NewPass(ctx, trigger)
	pass.MarkCard(causeID)
	for _, c := range p.InPlay() {
		if g.over {
			break
		}
		if !c.Zone.InPlay() {
			continue
		}
		g.applyCardEffects(pass, c)
	}
	g.flushRegen(pass)
}

// ApplyEffects runs a card's effects that match the pass trigger. A card
// already processed in the pass is skipped.
func (g *Game) ApplyEffects(pass *effects.Pass, cardID string) error {
	c := g.cards[cardID]
	if c == nil {
		return fmt.Errorf("%w: %s", ErrUnknownCard, cardID)
	}
	g.applyCardEffects(pass, c)
	return nil
}

func (g *Game) applyCardEffects(pass *effects.Pass, c *Card) {
	if !pass.MarkCard(c.ID) {
		return
	}
	if c.Type == CardTypeEquipment && !c.IsEquipped() {
		return
	}
	host := &effectHost{g: g}
	for _, d := range append([]effects.Descriptor(nil), c.Effects...) {
		if d.Trigger != pass.Trigger() {
			continue
		}
		// Attached equipment grants stats through Equip, not through triggers.
		if c.Type == CardTypeEquipment && d.Kind.IsStatGrant() && d.Trigger != effects.TriggerUpkeep {
			continue
		}
		if err := d.Validate(); err != nil {
			g.warn("skipping effect", c.OwnerID, err, c.ID)
			continue
		}
		e := effects.New(c.ID, c.OwnerID, d)
		applied, err := g.registry.Apply(pass, host, e)
		if err != nil {
			if errors.Is(err, effects.ErrUnknownKind) || errors.Is(err, effects.ErrInvalidDescriptor) {
				g.warn("skipping effect", c.OwnerID, err, c.ID)
			} else {
				g.warn("effect failed", c.OwnerID, err, c.ID)
			}
			continue
		}
		if !applied {
			continue
		}
		if d.Trigger != effects.TriggerConstant {
			g.recordf(LogInfo, c.OwnerID, "Effect triggered: %s from card ID %s", d.Kind, e.Origin())
		}
		evt := rules.NewEventWithAmount(rules.EventEffectApplied, c.ID, e.Origin(), c.OwnerID, d.Value)
		evt.Metadata["kind"] = string(d.Kind)
		evt.Metadata["trigger"] = string(d.Trigger)
		g.publish(evt)
		if g.over {
			return
		}
	}
}

// flushRegen grants the energy regeneration batched during a pass.
func (g *Game) flushRegen(pass *effects.Pass) {
	for _, grant := range pass.DrainRegen() {
		p := g.players[grant.PlayerID]
		if p == nil {
			continue
		}
		p.energy.Add(grant.Amount)
		g.recordf(LogSuccess, p.ID, "gained %d energy from effects. Energy is now %d", grant.Amount, p.Energy())
		evt := rules.NewEventWithAmount(rules.EventEnergyGained, p.ID, "", p.ID, grant.Amount)
		evt.Metadata["source"] = "effects"
		g.publish(evt)
	}
}

// recomputeConstants zeroes a player's modifiers and reapplies every
// constant effect the player has in play.
func (g *Game) recomputeConstants(p *Player) {
	p.modifiers.Reset()
	pass := effects.NewPass(context.Background(), effects.TriggerConstant)
	for _, c := range p.InPlay() {
		g.applyCardEffects(pass, c)
	}
}

// Equip attaches an equipment in the player's environs to one of the
// player's creatures for the fixed equip cost. Equipment already attached
// elsewhere moves; a creature's previous equipment is unequipped first.
func (g *Game) Equip(_ context.Context, playerID, equipmentID, creatureID string) error {
	p, equipment, err := g.lookup(playerID, equipmentID)
	if err != nil {
		return err
	}
	creature := g.cards[creatureID]
	if creature == nil {
		return fmt.Errorf("%w: %s", ErrUnknownCard, creatureID)
	}
	if res := g.legality.CanEquip(playerID, equipmentID, creatureID, g.cfg.EquipCost); !res.Legal {
		return legalityErr(res)
	}
	if err := p.energy.Spend(g.cfg.EquipCost); err != nil {
		return fmt.Errorf("%w: %v", ErrInsufficientEnergy, err)
	}
	if g.cfg.EquipCost > 0 {
		g.publish(rules.NewEventWithAmount(rules.EventEnergySpent, playerID, equipment.ID, playerID, g.cfg.EquipCost))
	}

	previous := g.detach(equipment)
	if creature.Equipment != "" {
		g.detach(g.cards[creature.Equipment])
	}

	equipment.EquippedTo = creature.ID
	creature.Equipment = equipment.ID
	for _, d := range equipment.Effects {
		switch {
		case d.Trigger == effects.TriggerUpkeep:
			creature.Effects = append(creature.Effects, d.Tagged(equipment.ID))
		case d.Kind == effects.KindGainAttack:
			equipment.granted.attack += d.Value
		case d.Kind == effects.KindGainDefense:
			equipment.granted.defense += d.Value
		}
	}
	creature.Attack += equipment.granted.attack
	creature.Defense += equipment.granted.defense

	g.recordf(LogSuccess, playerID, "equipped %s to %s", equipment.Name, creature.Name)
	g.recordf(LogInfo, playerID, "%s's attack is now %d", creature.Name, creature.Attack)
	evt := rules.NewEvent(rules.EventEquipped, creature.ID, equipment.ID, playerID)
	evt.Zone = rules.ZoneBattlezone
	g.publish(evt)

	g.destroyIfLethal(creature)
	if previous != creature {
		g.destroyIfLethal(previous)
	}
	g.recomputeConstants(p)
	g.checkGameOver()
	return nil
}

// Unequip detaches an equipment from its creature at no cost. It does
// nothing if the equipment is not attached.
func (g *Game) Unequip(playerID, equipmentID string) error {
	p, equipment, err := g.lookup(playerID, equipmentID)
	if err != nil {
		return err
	}
	if equipment.OwnerID != playerID {
		return fmt.Errorf("%w: %s belongs to another player", ErrIllegalAction, equipment.Name)
	}
	if equipment.Type != CardTypeEquipment {
		return fmt.Errorf("%w: %s is not equipment", ErrIllegalAction, equipment.Name)
	}
	if !equipment.IsEquipped() {
		return nil
	}
	bearer := g.detach(equipment)
	g.recomputeConstants(p)
	g.destroyIfLethal(bearer)
	return nil
}

// detach reverses an attachment: stat grants come off, tagged effects are
// removed and both references are cleared. The equipment stays in (or
// returns to) its owner's environs unless it is already in the graveyard.
// It returns the creature the equipment was on, or nil. Callers must run
// destroyIfLethal on it once the board is consistent again.
func (g *Game) detach(equipment *Card) *Card {
	if equipment == nil || !equipment.IsEquipped() {
		return nil
	}
	creature := g.cards[equipment.EquippedTo]
	invariant(creature != nil && creature.Equipment == equipment.ID,
		"equipment %s points at %s without a back-reference", equipment.ID, equipment.EquippedTo)

	creature.Attack -= equipment.granted.attack
	creature.Defense -= equipment.granted.defense
	equipment.granted = statGrant{}
	creature.removeEffectsFrom(equipment.ID)
	creature.Equipment = ""
	equipment.EquippedTo = ""
	if equipment.Zone != rules.ZoneEnvirons && equipment.Zone != rules.ZoneGraveyard {
		g.moveCard(equipment, rules.ZoneEnvirons)
	}

	g.recordf(LogInfo, equipment.OwnerID, "unequipped %s from %s", equipment.Name, creature.Name)
	g.recordf(LogInfo, equipment.OwnerID, "%s's attack is now %d", creature.Name, creature.Attack)
	evt := rules.NewEvent(rules.EventUnequipped, creature.ID, equipment.ID, equipment.OwnerID)
	g.publish(evt)
	return creature
}

// destroyIfLethal destroys a creature in play whose defense has dropped to
// zero or below.
func (g *Game) destroyIfLethal(c *Card) {
	if c != nil && c.Defense <= 0 && c.Zone.InPlay() {
		g.destroy(c)
	}
}

// Destroy moves a card to its owner's graveyard. It is a no-op for cards
// already there.
func (g *Game) Destroy(cardID string) error {
	c := g.cards[cardID]
	if c == nil {
		return fmt.Errorf("%w: %s", ErrUnknownCard, cardID)
	}
	g.destroy(c)
	return nil
}

func (g *Game) destroy(c *Card) {
	if c.Zone == rules.ZoneGraveyard {
		return
	}
	wasInPlay := c.Zone.InPlay()
	if c.Equipment != "" {
		g.detach(g.cards[c.Equipment])
	}
	bearer := g.detach(c)
	c.Tapped = false
	c.SummoningSick = false
	g.moveCard(c, rules.ZoneGraveyard)

	owner := g.players[c.OwnerID]
	g.recordf(LogDanger, c.OwnerID, "%s (ID: %s) was destroyed and moved to %s's graveyard.", c.Name, c.ID, owner.Name)
	evt := rules.NewEvent(rules.EventCardDestroyed, c.ID, c.ID, c.OwnerID)
	evt.Zone = rules.ZoneGraveyard
	evt.Metadata["card_type"] = string(c.Type)
	evt.Metadata["owner_id"] = c.OwnerID
	g.publish(evt)
	g.logger.Debug("card destroyed",
		zap.String("card_id", c.ID),
		zap.String("player_id", c.OwnerID),
	)
	if wasInPlay {
		g.recomputeConstants(owner)
	}
	g.destroyIfLethal(bearer)
}
