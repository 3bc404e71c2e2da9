// Package media exposes the content catalog: lookup, search and upload over
// the media record store.
package media

import (
	"errors"
	"strings"

	"github.com/mozillazg/go-unidecode"
	"golang.org/x/text/cases"

	"streamwave/internal/store"
	"streamwave/models"
)

var ErrNotFound = errors.New("media not found")

var caseFolder = cases.Fold()

// Service reads and writes the media catalog through one record store.
type Service struct {
	media *store.Store
}

func NewService(media *store.Store) *Service {
	return &Service{media: media}
}

// Get resolves one media item by id.
func (s *Service) Get(id int) (models.Media, error) {
	rec, ok := s.media.GetByID(id)
	if !ok {
		return nil, ErrNotFound
	}
	return models.ResolveMedia(rec)
}

// All resolves every item in the catalog. A record with a corrupt
// discriminator fails the whole read rather than being silently skipped.
func (s *Service) All() ([]models.Media, error) {
	records := s.media.GetAll()
	items := make([]models.Media, 0, len(records))
	for _, rec := range records {
		item, err := models.ResolveMedia(rec)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// Songs returns the catalog filtered to songs.
func (s *Service) Songs() ([]models.Media, error) {
	return s.byType(models.TypeSong)
}

// Podcasts returns the catalog filtered to podcasts.
func (s *Service) Podcasts() ([]models.Media, error) {
	return s.byType(models.TypePodcast)
}

func (s *Service) byType(mediaType string) ([]models.Media, error) {
	all, err := s.All()
	if err != nil {
		return nil, err
	}
	items := make([]models.Media, 0, len(all))
	for _, item := range all {
		if item.MediaType() == mediaType {
			items = append(items, item)
		}
	}
	return items, nil
}

// Search matches the query as a case-insensitive substring of title or
// artist. Accented characters fold to their ASCII forms so "Beyoncé" matches
// "beyonce".
func (s *Service) Search(query string) ([]models.Media, error) {
	q := normalize(query)
	all, err := s.All()
	if err != nil {
		return nil, err
	}
	results := make([]models.Media, 0)
	for _, item := range all {
		it := item.Item()
		if strings.Contains(normalize(it.Title), q) || strings.Contains(normalize(it.Artist), q) {
			results = append(results, item)
		}
	}
	return results, nil
}

// Add stores a new item, assigning it the next free id. Content is immutable
// once created; there is no partial update path.
func (s *Service) Add(item models.Media) (models.Media, error) {
	item.Item().ID = s.media.NextID()
	if _, err := s.media.Add(item); err != nil {
		return nil, err
	}
	return item, nil
}

// Delete removes an item. It reports whether a removal occurred.
func (s *Service) Delete(id int) (bool, error) {
	return s.media.Delete(id)
}

func normalize(s string) string {
	return caseFolder.String(unidecode.Unidecode(s))
}
