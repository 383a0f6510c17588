package effects

// Kind names what an effect does when it resolves.
type Kind string

const (
	KindIncreaseEnergyRegen Kind = "increase_energy_regen"
	KindDrawCards           Kind = "draw_cards"
	KindDealDamage          Kind = "deal_damage"
	KindDestroyEquipment    Kind = "destroy_equipment"
	KindDestroyEnchantment  Kind = "destroy_enchantment"
	KindGainDefense         Kind = "gain_defense"
	KindGainAttack          Kind = "gain_attack"
	KindReduceEquipmentCost Kind = "reduce_equipment_cost"
)

var knownKinds = map[Kind]bool{
	KindIncreaseEnergyRegen: true,
	KindDrawCards:           true,
	KindDealDamage:          true,
	KindDestroyEquipment:    true,
	KindDestroyEnchantment:  true,
	KindGainDefense:         true,
	KindGainAttack:          true,
	KindReduceEquipmentCost: true,
}

// Known reports whether k is part of the closed effect set.
func (k Kind) Known() bool {
	return knownKinds[k]
}

// IsModifier reports whether the kind adjusts a per-turn player modifier
// and may therefore be driven by a constant trigger.
func (k Kind) IsModifier() bool {
	return k == KindReduceEquipmentCost
}

// IsStatGrant reports whether the kind adjusts a creature's attack or defense.
func (k Kind) IsStatGrant() bool {
	return k == KindGainAttack || k == KindGainDefense
}

// Trigger names the event that causes an effect to fire.
type Trigger string

const (
	TriggerConstant        Trigger = "constant"
	TriggerUpkeep          Trigger = "upkeep"
	TriggerOnCast          Trigger = "on_cast"
	TriggerOnPlayEquipment Trigger = "on_play_equipment"
	TriggerOnSummon        Trigger = "on_summon"
)

// Valid reports whether t is a known trigger.
func (t Trigger) Valid() bool {
	switch t {
	case TriggerConstant, TriggerUpkeep, TriggerOnCast, TriggerOnPlayEquipment, TriggerOnSummon:
		return true
	}
	return false
}
