// Package playlists manages named song collections per owner, including the
// reserved listening history playlist that feeds recommendations.
package playlists

import (
	"errors"
	"strings"

	"streamwave/internal/store"
	"streamwave/models"
)

var (
	ErrNotFound = errors.New("playlist not found")
	// ErrNotOwner rejects access to a playlist owned by someone else.
	ErrNotOwner = errors.New("not your playlist")
)

// Service reads and writes playlists through one record store.
type Service struct {
	lists *store.Store
}

func NewService(lists *store.Store) *Service {
	return &Service{lists: lists}
}

// Get resolves one playlist by id regardless of owner.
func (s *Service) Get(id int) (*models.Playlist, error) {
	rec, ok := s.lists.GetByID(id)
	if !ok {
		return nil, ErrNotFound
	}
	return models.ResolvePlaylist(rec)
}

// GetOwned resolves a playlist and verifies it belongs to ownerID.
func (s *Service) GetOwned(id, ownerID int) (*models.Playlist, error) {
	pl, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if pl.OwnerID != ownerID {
		return nil, ErrNotOwner
	}
	return pl, nil
}

// ByOwner returns every playlist owned by ownerID.
func (s *Service) ByOwner(ownerID int) ([]*models.Playlist, error) {
	var out []*models.Playlist
	for _, rec := range s.lists.GetAll() {
		pl, err := models.ResolvePlaylist(rec)
		if err != nil {
			return nil, err
		}
		if pl.OwnerID == ownerID {
			out = append(out, pl)
		}
	}
	return out, nil
}

// SearchByName matches the query as a case-insensitive substring of the
// playlist name.
func (s *Service) SearchByName(query string) ([]*models.Playlist, error) {
	q := strings.ToLower(query)
	var out []*models.Playlist
	for _, rec := range s.lists.GetAll() {
		pl, err := models.ResolvePlaylist(rec)
		if err != nil {
			return nil, err
		}
		if strings.Contains(strings.ToLower(pl.Name), q) {
			out = append(out, pl)
		}
	}
	return out, nil
}

// Create stores a new empty playlist for ownerID. The caller is responsible
// for ensuring ownerID references an existing principal.
func (s *Service) Create(name string, ownerID int) (*models.Playlist, error) {
	pl := &models.Playlist{
		ID:      s.lists.NextID(),
		Name:    name,
		OwnerID: ownerID,
		SongIDs: []int{},
	}
	if _, err := s.lists.Add(pl); err != nil {
		return nil, err
	}
	return pl, nil
}

// AddSong appends a media id to a playlist, suppressing duplicates, and
// persists the change.
func (s *Service) AddSong(playlistID, mediaID int) (*models.Playlist, error) {
	pl, err := s.Get(playlistID)
	if err != nil {
		return nil, err
	}
	if !pl.AddSong(mediaID) {
		return pl, nil
	}
	return s.saveSongs(pl)
}

// RemoveSong removes a media id from a playlist. Removal is idempotent.
func (s *Service) RemoveSong(playlistID, mediaID int) (*models.Playlist, error) {
	pl, err := s.Get(playlistID)
	if err != nil {
		return nil, err
	}
	if !pl.RemoveSong(mediaID) {
		return pl, nil
	}
	return s.saveSongs(pl)
}

// Delete removes a playlist. It reports whether a removal occurred.
func (s *Service) Delete(id int) (bool, error) {
	return s.lists.Delete(id)
}

// History returns the owner's reserved listening history playlist if it
// exists.
func (s *Service) History(ownerID int) (*models.Playlist, bool, error) {
	lists, err := s.ByOwner(ownerID)
	if err != nil {
		return nil, false, err
	}
	for _, pl := range lists {
		if pl.IsHistory() {
			return pl, true, nil
		}
	}
	return nil, false, nil
}

// RecordAccess notes that the owner streamed a media item: the reserved
// history playlist is created lazily on first access, then the id is
// appended idempotently. Creation and append are two separate critical
// sections; a crash in between leaves an empty history playlist, which the
// next access repairs.
func (s *Service) RecordAccess(ownerID, mediaID int) error {
	hist, ok, err := s.History(ownerID)
	if err != nil {
		return err
	}
	if !ok {
		hist, err = s.Create(models.ReservedHistoryName, ownerID)
		if err != nil {
			return err
		}
	}
	_, err = s.AddSong(hist.ID, mediaID)
	return err
}

func (s *Service) saveSongs(pl *models.Playlist) (*models.Playlist, error) {
	rec, ok, err := s.lists.Update(pl.ID, map[string]any{"song_ids": pl.Flatten()["song_ids"]})
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNotFound
	}
	return models.ResolvePlaylist(rec)
}
