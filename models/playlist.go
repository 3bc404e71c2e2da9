package models

import "slices"

// ReservedHistoryName marks the implicit per-user listening history playlist.
// At most one playlist with this name exists per owner; it is created lazily
// on first media access.
const ReservedHistoryName = "listening_history_playlist"

// Playlist is an ordered set of media ids owned by a principal. The store
// does not enforce that OwnerID references an existing principal; callers
// must check.
type Playlist struct {
	ID      int    `json:"id"`
	Name    string `json:"name"`
	OwnerID int    `json:"owner_id"`
	SongIDs []int  `json:"song_ids"`
}

// IsHistory reports whether this is the reserved listening history playlist.
func (p *Playlist) IsHistory() bool { return p.Name == ReservedHistoryName }

// AddSong appends a media id, suppressing duplicates. It reports whether the
// playlist changed.
func (p *Playlist) AddSong(id int) bool {
	if slices.Contains(p.SongIDs, id) {
		return false
	}
	p.SongIDs = append(p.SongIDs, id)
	return true
}

// RemoveSong removes a media id. Removal is idempotent.
func (p *Playlist) RemoveSong(id int) bool {
	i := slices.Index(p.SongIDs, id)
	if i < 0 {
		return false
	}
	p.SongIDs = slices.Delete(p.SongIDs, i, i+1)
	return true
}

func (p *Playlist) Flatten() Record {
	ids := make([]int, len(p.SongIDs))
	copy(ids, p.SongIDs)
	return Record{
		"id":       p.ID,
		"name":     p.Name,
		"owner_id": p.OwnerID,
		"song_ids": ids,
	}
}

// ResolvePlaylist reconstructs a playlist from a flat record. Playlists have
// a single concrete shape, so there is no discriminator to check.
func ResolvePlaylist(rec Record) (*Playlist, error) {
	p := &Playlist{
		Name:    stringField(rec, "name"),
		SongIDs: intSliceField(rec, "song_ids"),
	}
	p.ID, _ = intField(rec, "id")
	p.OwnerID, _ = intField(rec, "owner_id")
	return p, nil
}
