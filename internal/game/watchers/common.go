package watchers

import (
	"github.com/technobros/cardgame-go/internal/game/rules"
)

// Registry keys of the summary watchers.
const (
	KeyCardsPlayed        = "cards_played"
	KeyCardsDrawn         = "cards_drawn"
	KeyCreaturesDestroyed = "creatures_destroyed"
	KeyPlayerDamage       = "player_damage"
)

// CardsPlayedWatcher tracks cards played from hand by each player.
type CardsPlayedWatcher struct {
	*rules.BaseWatcher
	played map[string][]string // playerID -> card IDs in play order
	byType map[string]map[string]int
}

// NewCardsPlayedWatcher creates a new cards played watcher.
func NewCardsPlayedWatcher() *CardsPlayedWatcher {
	w := &CardsPlayedWatcher{
		BaseWatcher: rules.NewBaseWatcher(KeyCardsPlayed),
		played:      make(map[string][]string),
		byType:      make(map[string]map[string]int),
	}
	return w
}

// Watch implements the Watcher interface.
func (w *CardsPlayedWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventCardPlayed {
		return
	}
	playerID := event.PlayerID
	if playerID == "" {
		playerID = event.Controller
	}
	if playerID == "" || event.TargetID == "" {
		return
	}
	w.played[playerID] = append(w.played[playerID], event.TargetID)
	if cardType := event.Metadata["card_type"]; cardType != "" {
		if w.byType[playerID] == nil {
			w.byType[playerID] = make(map[string]int)
		}
		w.byType[playerID][cardType]++
	}
	w.Hit()
}

// Reset clears the watcher's state.
func (w *CardsPlayedWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.played = make(map[string][]string)
	w.byType = make(map[string]map[string]int)
}

// GetPlayed returns the IDs of the cards a player has played.
func (w *CardsPlayedWatcher) GetPlayed(playerID string) []string {
	return w.played[playerID]
}

// GetCount returns the number of cards a player has played.
func (w *CardsPlayedWatcher) GetCount(playerID string) int {
	return len(w.played[playerID])
}

// GetCountByType returns how many cards of a type a player has played.
func (w *CardsPlayedWatcher) GetCountByType(playerID, cardType string) int {
	return w.byType[playerID][cardType]
}

// CreaturesDestroyedWatcher tracks creatures moved to the graveyard from play.
type CreaturesDestroyedWatcher struct {
	*rules.BaseWatcher
	destroyedByOwner map[string]int
}

// NewCreaturesDestroyedWatcher creates a new creatures destroyed watcher.
func NewCreaturesDestroyedWatcher() *CreaturesDestroyedWatcher {
	w := &CreaturesDestroyedWatcher{
		BaseWatcher:      rules.NewBaseWatcher(KeyCreaturesDestroyed),
		destroyedByOwner: make(map[string]int),
	}
	return w
}

// Watch implements the Watcher interface.
func (w *CreaturesDestroyedWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventCardDestroyed {
		return
	}
	if event.Metadata["card_type"] != string(rules.CardTypeCreature) {
		return
	}
	ownerID := event.Metadata["owner_id"]
	if ownerID == "" {
		ownerID = event.Controller
	}
	if ownerID == "" {
		return
	}
	w.destroyedByOwner[ownerID]++
	w.Hit()
}

// Reset clears the watcher's state.
func (w *CreaturesDestroyedWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.destroyedByOwner = make(map[string]int)
}

// GetAmountByOwner returns the number of creatures an owner has lost.
func (w *CreaturesDestroyedWatcher) GetAmountByOwner(ownerID string) int {
	return w.destroyedByOwner[ownerID]
}

// GetTotalAmount returns the total number of creatures destroyed.
func (w *CreaturesDestroyedWatcher) GetTotalAmount() int {
	total := 0
	for _, count := range w.destroyedByOwner {
		total += count
	}
	return total
}

// CardsDrawnWatcher tracks cards drawn by players.
type CardsDrawnWatcher struct {
	*rules.BaseWatcher
	cardsDrawn map[string]int // playerID -> count
}

// NewCardsDrawnWatcher creates a new cards drawn watcher.
func NewCardsDrawnWatcher() *CardsDrawnWatcher {
	w := &CardsDrawnWatcher{
		BaseWatcher: rules.NewBaseWatcher(KeyCardsDrawn),
		cardsDrawn:  make(map[string]int),
	}
	return w
}

// Watch implements the Watcher interface.
func (w *CardsDrawnWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventDrewCard {
		return
	}
	playerID := event.PlayerID
	if playerID == "" {
		playerID = event.Controller
	}
	if playerID == "" {
		return
	}
	w.cardsDrawn[playerID]++
	w.Hit()
}

// Reset clears the watcher's state.
func (w *CardsDrawnWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.cardsDrawn = make(map[string]int)
}

// GetCount returns the number of cards drawn by a player.
func (w *CardsDrawnWatcher) GetCount(playerID string) int {
	return w.cardsDrawn[playerID]
}

// PlayerDamageWatcher tracks damage dealt to players. Controller is the
// player whose card dealt the damage; TargetID is the damaged player.
type PlayerDamageWatcher struct {
	*rules.BaseWatcher
	dealt map[string]int
	taken map[string]int
}

// NewPlayerDamageWatcher creates a new player damage watcher.
func NewPlayerDamageWatcher() *PlayerDamageWatcher {
	w := &PlayerDamageWatcher{
		BaseWatcher: rules.NewBaseWatcher(KeyPlayerDamage),
		dealt:       make(map[string]int),
		taken:       make(map[string]int),
	}
	return w
}

// Watch implements the Watcher interface.
func (w *PlayerDamageWatcher) Watch(event rules.Event) {
	if event.Type != rules.EventDamagedPlayer || event.Amount <= 0 {
		return
	}
	if event.Controller != "" {
		w.dealt[event.Controller] += event.Amount
	}
	if event.TargetID != "" {
		w.taken[event.TargetID] += event.Amount
	}
	w.Hit()
}

// Reset clears the watcher's state.
func (w *PlayerDamageWatcher) Reset() {
	w.BaseWatcher.Reset()
	w.dealt = make(map[string]int)
	w.taken = make(map[string]int)
}

// GetDealt returns the damage a player's cards dealt to players.
func (w *PlayerDamageWatcher) GetDealt(playerID string) int {
	return w.dealt[playerID]
}

// GetTaken returns the damage a player has taken.
func (w *PlayerDamageWatcher) GetTaken(playerID string) int {
	return w.taken[playerID]
}

// Summary is the end-of-game tally for one player.
type Summary struct {
	PlayerID       string `json:"player_id"`
	CardsPlayed    int    `json:"cards_played"`
	CardsDrawn     int    `json:"cards_drawn"`
	CreaturesLost  int    `json:"creatures_lost"`
	DamageDealt    int    `json:"damage_dealt"`
	DamageReceived int    `json:"damage_received"`
}

// Install registers the summary watchers on a registry.
func Install(reg *rules.WatcherRegistry) {
	reg.Add(NewCardsPlayedWatcher())
	reg.Add(NewCardsDrawnWatcher())
	reg.Add(NewCreaturesDestroyedWatcher())
	reg.Add(NewPlayerDamageWatcher())
}

// Summarize builds a player's summary from the watchers Install registered.
// Missing watchers contribute zero.
func Summarize(reg *rules.WatcherRegistry, playerID string) Summary {
	s := Summary{PlayerID: playerID}
	if w, ok := reg.Get(KeyCardsPlayed).(*CardsPlayedWatcher); ok {
		s.CardsPlayed = w.GetCount(playerID)
	}
	if w, ok := reg.Get(KeyCardsDrawn).(*CardsDrawnWatcher); ok {
		s.CardsDrawn = w.GetCount(playerID)
	}
	if w, ok := reg.Get(KeyCreaturesDestroyed).(*CreaturesDestroyedWatcher); ok {
		s.CreaturesLost = w.GetAmountByOwner(playerID)
	}
	if w, ok := reg.Get(KeyPlayerDamage).(*PlayerDamageWatcher); ok {
		s.DamageDealt = w.GetDealt(playerID)
		s.DamageReceived = w.GetTaken(playerID)
	}
	return s
}
