package game

import (
	"fmt"
	"time"
)

// Config holds the rules constants for a match.
type Config struct {
	StartingLife    int
	StartingEnergy  int
	BaseEnergyRegen int
	InitialDraw     int
	HandLimit       int
	DeckSize        int
	MaxCopies       int
	EquipCost       int
	DecisionTimeout time.Duration
	// MaxMainActions ends a main phase after this many actions. With a zero
	// equip cost nothing else stops a provider moving equipment forever.
	MaxMainActions  int
	MaxTurns        int
	Seed            int64
}

// DefaultConfig returns the standard rules constants.
func DefaultConfig() Config {
	return Config{
		StartingLife:    20,
		StartingEnergy:  2,
		BaseEnergyRegen: 1,
		InitialDraw:     6,
		HandLimit:       7,
		DeckSize:        30,
		MaxCopies:       2,
		EquipCost:       1,
		DecisionTimeout: 30 * time.Second,
		MaxMainActions:  20,
		MaxTurns:        200,
		Seed:            0,
	}
}

// Validate rejects configurations the rules cannot run with.
func (c Config) Validate() error {
	switch {
	case c.StartingLife <= 0:
		return fmt.Errorf("starting life must be positive, got %d", c.StartingLife)
	case c.StartingEnergy < 0:
		return fmt.Errorf("starting energy must not be negative, got %d", c.StartingEnergy)
	case c.BaseEnergyRegen < 0:
		return fmt.Errorf("base energy regen must not be negative, got %d", c.BaseEnergyRegen)
	case c.InitialDraw < 0:
		return fmt.Errorf("initial draw must not be negative, got %d", c.InitialDraw)
	case c.HandLimit < 1:
		return fmt.Errorf("hand limit must be at least 1, got %d", c.HandLimit)
	case c.DeckSize <= 0:
		return fmt.Errorf("deck size must be positive, got %d", c.DeckSize)
	case c.MaxCopies < 1:
		return fmt.Errorf("max copies must be at least 1, got %d", c.MaxCopies)
	case c.EquipCost < 0:
		return fmt.Errorf("equip cost must not be negative, got %d", c.EquipCost)
	case c.MaxMainActions < 1:
		return fmt.Errorf("max main actions must be at least 1, got %d", c.MaxMainActions)
	case c.MaxTurns < 0:
		return fmt.Errorf("max turns must not be negative, got %d", c.MaxTurns)
	}
	return nil
}
