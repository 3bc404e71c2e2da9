package models

// Discriminator values stored in the "media_type" field.
const (
	TypeSong    = "Song"
	TypePodcast = "Podcast"
)

// MediaField is the discriminator field for media records.
const MediaField = "media_type"

// MediaItem holds the fields shared by every media variant.
type MediaItem struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	Length     int    `json:"length"`
	Genre      string `json:"genre"`
	CoverImage string `json:"cover_image,omitempty"`
	Artist     string `json:"artist,omitempty"`
}

// Song is a plain audio track.
type Song struct {
	MediaItem
}

// Podcast is an episodic audio item.
type Podcast struct {
	MediaItem
	Episode int `json:"episode"`
}

// Media is the closed set of content variants.
type Media interface {
	MediaType() string
	Flatten() Record
	Item() *MediaItem
}

func (s *Song) MediaType() string    { return TypeSong }
func (p *Podcast) MediaType() string { return TypePodcast }

func (m *MediaItem) Item() *MediaItem { return m }

func (m *MediaItem) flatten(mediaType string) Record {
	return Record{
		"id":          m.ID,
		"title":       m.Title,
		"url":         m.URL,
		"length":      m.Length,
		"genre":       m.Genre,
		"cover_image": m.CoverImage,
		"artist":      m.Artist,
		MediaField:    mediaType,
	}
}

func (s *Song) Flatten() Record { return s.flatten(TypeSong) }

func (p *Podcast) Flatten() Record {
	rec := p.flatten(TypePodcast)
	rec["episode"] = p.Episode
	return rec
}

// ResolveMedia reconstructs the concrete media variant from a flat record.
// Like ResolveUser, an unrecognised discriminator is an error, never a
// default.
func ResolveMedia(rec Record) (Media, error) {
	item := MediaItem{
		Title:      stringField(rec, "title"),
		URL:        stringField(rec, "url"),
		Genre:      stringField(rec, "genre"),
		CoverImage: stringField(rec, "cover_image"),
		Artist:     stringField(rec, "artist"),
	}
	item.ID, _ = intField(rec, "id")
	item.Length, _ = intField(rec, "length")

	tag := stringField(rec, MediaField)
	switch tag {
	case TypeSong:
		return &Song{MediaItem: item}, nil
	case TypePodcast:
		p := &Podcast{MediaItem: item}
		p.Episode, _ = intField(rec, "episode")
		return p, nil
	default:
		return nil, unknownVariant(MediaField, tag)
	}
}
