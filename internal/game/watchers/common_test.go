package watchers

import (
	"testing"
	"time"

	"github.com/technobros/cardgame-go/internal/game/rules"
)

func TestCardsPlayedWatcher(t *testing.T) {
	watcher := NewCardsPlayedWatcher()

	// Test initial state
	if watcher.Matched() != 0 {
		t.Fatal("fresh watcher has matches")
	}
	if watcher.GetCount("player1") != 0 {
		t.Fatalf("expected 0 cards played, got %d", watcher.GetCount("player1"))
	}

	event := rules.NewEvent(rules.EventCardPlayed, "card1", "card1", "player1")
	event.Metadata["card_type"] = "creature"
	watcher.Watch(event)

	if watcher.Matched() == 0 {
		t.Fatal("play was not counted")
	}
	if watcher.GetCount("player1") != 1 {
		t.Fatalf("expected 1 card played, got %d", watcher.GetCount("player1"))
	}
	if watcher.GetCountByType("player1", "creature") != 1 {
		t.Fatalf("expected 1 creature played, got %d", watcher.GetCountByType("player1", "creature"))
	}

	// Other event types are ignored
	watcher.Watch(rules.NewEvent(rules.EventDrewCard, "card2", "card2", "player1"))
	if watcher.GetCount("player1") != 1 {
		t.Fatalf("expected draw to be ignored, got %d", watcher.GetCount("player1"))
	}

	watcher.Reset()
	if watcher.Matched() != 0 {
		t.Fatal("reset kept matches")
	}
	if len(watcher.GetPlayed("player1")) != 0 {
		t.Fatalf("expected no cards after reset, got %v", watcher.GetPlayed("player1"))
	}
}

func TestCreaturesDestroyedWatcher(t *testing.T) {
	watcher := NewCreaturesDestroyedWatcher()

	event := rules.Event{
		Type:       rules.EventCardDestroyed,
		TargetID:   "creature1",
		SourceID:   "creature1",
		Controller: "player1",
		PlayerID:   "player1",
		Timestamp:  time.Now(),
		Metadata: map[string]string{
			"owner_id":  "player1",
			"card_type": "creature",
		},
	}
	watcher.Watch(event)

	if watcher.Matched() == 0 {
		t.Fatal("destroyed creature was not counted")
	}
	if watcher.GetAmountByOwner("player1") != 1 {
		t.Fatalf("expected 1 creature destroyed for owner, got %d", watcher.GetAmountByOwner("player1"))
	}

	// Equipment going to the graveyard is not counted
	equipment := rules.NewEvent(rules.EventCardDestroyed, "sword", "sword", "player1")
	equipment.Metadata["card_type"] = "equipment"
	watcher.Watch(equipment)
	if watcher.GetTotalAmount() != 1 {
		t.Fatalf("expected total 1, got %d", watcher.GetTotalAmount())
	}

	watcher.Reset()
	if watcher.GetAmountByOwner("player1") != 0 {
		t.Fatalf("expected 0 creatures destroyed after reset, got %d", watcher.GetAmountByOwner("player1"))
	}
}

func TestCardsDrawnWatcher(t *testing.T) {
	watcher := NewCardsDrawnWatcher()

	watcher.Watch(rules.NewEvent(rules.EventDrewCard, "card1", "card1", "player1"))
	if watcher.GetCount("player1") != 1 {
		t.Fatalf("expected 1 card drawn, got %d", watcher.GetCount("player1"))
	}

	watcher.Watch(rules.NewEvent(rules.EventDrewCard, "card2", "card2", "player1"))
	if watcher.GetCount("player1") != 2 {
		t.Fatalf("expected 2 cards drawn, got %d", watcher.GetCount("player1"))
	}

	watcher.Reset()
	if watcher.GetCount("player1") != 0 {
		t.Fatalf("expected 0 cards drawn after reset, got %d", watcher.GetCount("player1"))
	}
}

func TestPlayerDamageWatcher(t *testing.T) {
	watcher := NewPlayerDamageWatcher()

	watcher.Watch(rules.NewEventWithAmount(rules.EventDamagedPlayer, "player2", "bear", "player1", 3))
	watcher.Watch(rules.NewEventWithAmount(rules.EventDamagedPlayer, "player2", "bolt", "player1", 2))
	watcher.Watch(rules.NewEventWithAmount(rules.EventDamagedPlayer, "player1", "wolf", "player2", 0))

	if watcher.GetDealt("player1") != 5 {
		t.Fatalf("expected 5 damage dealt, got %d", watcher.GetDealt("player1"))
	}
	if watcher.GetTaken("player2") != 5 {
		t.Fatalf("expected 5 damage taken, got %d", watcher.GetTaken("player2"))
	}
	if watcher.GetTaken("player1") != 0 {
		t.Fatalf("zero damage must not be counted, got %d", watcher.GetTaken("player1"))
	}
}

func TestSummarize(t *testing.T) {
	reg := rules.NewWatcherRegistry()
	Install(reg)

	played := rules.NewEvent(rules.EventCardPlayed, "card1", "card1", "player1")
	reg.Notify(played)
	reg.Notify(rules.NewEvent(rules.EventDrewCard, "card2", "card2", "player1"))
	reg.Notify(rules.NewEventWithAmount(rules.EventDamagedPlayer, "player2", "card1", "player1", 4))
	died := rules.NewEvent(rules.EventCardDestroyed, "card3", "card3", "player1")
	died.Metadata["card_type"] = "creature"
	died.Metadata["owner_id"] = "player1"
	reg.Notify(died)

	got := Summarize(reg, "player1")
	want := Summary{PlayerID: "player1", CardsPlayed: 1, CardsDrawn: 1, CreaturesLost: 1, DamageDealt: 4}
	if got != want {
		t.Fatalf("expected %+v, got %+v", want, got)
	}

	if other := Summarize(rules.NewWatcherRegistry(), "player1"); other.CardsPlayed != 0 {
		t.Fatalf("empty registry should summarize to zero, got %+v", other)
	}
}
