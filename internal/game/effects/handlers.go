package effects

import (
	"fmt"

	"github.com/technobros/cardgame-go/internal/game/energy"
	"github.com/technobros/cardgame-go/internal/game/targeting"
)

func increaseEnergyRegen(p *Pass, h Host, e Effect) error {
	p.AddRegen(e.Controller, e.Value)
	h.Record(e.Controller, fmt.Sprintf("gains %d energy regeneration from card ID %s", e.Value, e.Origin()))
	return nil
}

func drawCards(p *Pass, h Host, e Effect) error {
	drawn := h.DrawCards(e.Controller, e.Value)
	if drawn < e.Value {
		h.Record(e.Controller, fmt.Sprintf("drew %d of %d cards; deck is empty", drawn, e.Value))
	}
	return nil
}

func dealDamage(p *Pass, h Host, e Effect) error {
	class := e.Target
	if class == "" {
		class = targeting.ClassCreatureOrPlayer
	}
	if e.Trigger == TriggerUpkeep {
		class = targeting.ClassCreature
	}
	target, ok := h.SelectTarget(p.Context(), targeting.Requirement{
		Class:       class,
		ChooserID:   e.Controller,
		SourceID:    e.Origin(),
		Description: fmt.Sprintf("Select a target to deal %d damage:", e.Value),
	})
	if !ok {
		h.Record(e.Controller, "tried to deal damage but no valid target was found")
		return nil
	}
	if target.IsPlayer() {
		h.DamagePlayer(target.ID, e.Value, e.Origin())
		return nil
	}
	h.DamageCard(target.ID, e.Value, e.Origin())
	return nil
}

func destroyOfClass(class targeting.Class) Handler {
	return func(p *Pass, h Host, e Effect) error {
		target, ok := h.SelectTarget(p.Context(), targeting.Requirement{
			Class:       class,
			ChooserID:   e.Controller,
			SourceID:    e.Origin(),
			Description: fmt.Sprintf("Select an %s to destroy:", class),
		})
		if !ok {
			h.Record(e.Controller, fmt.Sprintf("tried to destroy an %s but no valid target was found", class))
			return nil
		}
		h.DestroyCard(target.ID, e.Origin())
		return nil
	}
}

func gainStat(attack bool) Handler {
	return func(p *Pass, h Host, e Effect) error {
		stat := "defense"
		if attack {
			stat = "attack"
		}
		target, ok := h.SelectTarget(p.Context(), targeting.Requirement{
			Class:       targeting.ClassCreature,
			ChooserID:   e.Controller,
			SourceID:    e.Origin(),
			Description: fmt.Sprintf("Select a target to gain %s:", stat),
			Beneficial:  true,
		})
		if !ok {
			h.Record(e.Controller, fmt.Sprintf("tried to gain %s but no valid target was found", stat))
			return nil
		}
		if attack {
			h.AdjustStats(target.ID, e.Value, 0)
		} else {
			h.AdjustStats(target.ID, 0, e.Value)
		}
		return nil
	}
}

func reduceEquipmentCost(p *Pass, h Host, e Effect) error {
	h.RaiseModifier(e.Controller, energy.ModifierEquipmentCostReduction, e.Value)
	return nil
}
