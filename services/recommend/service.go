// Package recommend picks a media item biased toward the caller's dominant
// listening genre, derived from their reserved history playlist.
package recommend

import (
	"math/rand"
	"sync"
	"time"

	"streamwave/models"
)

// catalog is the slice of the media service the engine needs.
type catalog interface {
	All() ([]models.Media, error)
	Get(id int) (models.Media, error)
}

// historySource locates the caller's reserved history playlist.
type historySource interface {
	History(ownerID int) (*models.Playlist, bool, error)
}

// Service derives genre affinity from listening history and selects one
// item. It is safe for concurrent use.
type Service struct {
	media   catalog
	history historySource

	mu  sync.Mutex
	rng *rand.Rand
}

// NewService builds the engine. A zero seed selects a time-based one;
// tests pass a fixed seed for determinism.
func NewService(media catalog, history historySource, seed int64) *Service {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Service{
		media:   media,
		history: history,
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// Recommend returns one media item for the owner, or nil when the catalog
// has nothing to offer. With no usable history the pick is uniform over the
// whole catalog; otherwise it is uniform over the items of the dominant
// history genre. An inconsistent history (dominant genre with no catalog
// items) yields nil rather than an error.
func (s *Service) Recommend(ownerID int) (models.Media, error) {
	items, err := s.media.All()
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}

	genre, ok, err := s.dominantGenre(ownerID)
	if err != nil {
		return nil, err
	}
	if !ok {
		return s.pick(items), nil
	}

	matching := make([]models.Media, 0, len(items))
	for _, item := range items {
		if item.Item().Genre == genre {
			matching = append(matching, item)
		}
	}
	if len(matching) == 0 {
		return nil, nil
	}
	return s.pick(matching), nil
}

// dominantGenre tallies genres over the resolvable history entries. Ties
// break toward the lexicographically smallest genre name so the result does
// not depend on map iteration order. History ids that no longer resolve are
// skipped.
func (s *Service) dominantGenre(ownerID int) (string, bool, error) {
	hist, ok, err := s.history.History(ownerID)
	if err != nil || !ok || len(hist.SongIDs) == 0 {
		return "", false, err
	}

	tally := make(map[string]int)
	for _, id := range hist.SongIDs {
		item, err := s.media.Get(id)
		if err != nil {
			continue
		}
		tally[item.Item().Genre]++
	}
	if len(tally) == 0 {
		return "", false, nil
	}

	var best string
	bestCount := -1
	for genre, count := range tally {
		if count > bestCount || (count == bestCount && genre < best) {
			best, bestCount = genre, count
		}
	}
	return best, true, nil
}

func (s *Service) pick(items []models.Media) models.Media {
	s.mu.Lock()
	defer s.mu.Unlock()
	return items[s.rng.Intn(len(items))]
}
