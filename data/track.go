package data

import "time"

type Track struct {
	ID              string `gorm:"primaryKey"`
	Title           string
	AlbumID         string
	PrimaryArtistID string
	TrackNumber     int64
	DiscNumber      int64
	DurationMS      int64 `gorm:"column:duration_ms"`
	Explicit        bool
	Status          Status

	AlbumTitle        string        `gorm:"-"`
	PrimaryArtistName string        `gorm:"-"`
	GenreIDs          []string      `gorm:"-"`
	ArtistLinks       []TrackArtist `gorm:"-"`
	AudioFiles        []AudioFile   `gorm:"-"`
	Lyrics            *Lyrics       `gorm:"-"`

	CreatedAt   time.Time
	UpdatedAt   time.Time
	PublishedAt *time.Time
	ArchivedAt  *time.Time
}

// ArtistLinkInput names a secondary artist on a track. The primary artist
// link is derived and never supplied here.
type ArtistLinkInput struct {
	ArtistID     string `json:"artistId"`
	Role         Role   `json:"role"`
	DisplayOrder int64  `json:"displayOrder"`
}

type TrackInput struct {
	Title           string            `json:"title"`
	AlbumID         string            `json:"albumId"`
	PrimaryArtistID string            `json:"primaryArtistId"`
	TrackNumber     int64             `json:"trackNumber"`
	DiscNumber      int64             `json:"discNumber"`
	DurationMS      int64             `json:"durationMs"`
	Explicit        bool              `json:"explicit"`
	Status          Status            `json:"status"`
	GenreIDs        []string          `json:"genreIds"`
	ArtistLinks     []ArtistLinkInput `json:"artistLinks"`
	Lyrics          *LyricsInput      `json:"lyrics"`
	AudioFiles      []AudioFileInput  `json:"audioFiles"`
}

type TrackUpdate struct {
	Title           Field[string]            `json:"title"`
	AlbumID         Field[string]            `json:"albumId"`
	PrimaryArtistID Field[string]            `json:"primaryArtistId"`
	TrackNumber     Field[int64]             `json:"trackNumber"`
	DiscNumber      Field[int64]             `json:"discNumber"`
	DurationMS      Field[int64]             `json:"durationMs"`
	Explicit        Field[bool]              `json:"explicit"`
	Status          Field[Status]            `json:"status"`
	GenreIDs        Field[[]string]          `json:"genreIds"`
	ArtistLinks     Field[[]ArtistLinkInput] `json:"artistLinks"`
	Lyrics          Field[*LyricsInput]      `json:"lyrics"`
	ClearLyrics     bool                     `json:"clearLyrics"`
	AudioFiles      Field[[]AudioFileInput]  `json:"audioFiles"`
	// ReplaceAudioFiles drops every stored tier before AudioFiles are
	// written. Otherwise supplied tiers are merged into the stored ones.
	ReplaceAudioFiles bool `json:"replaceAudioFiles"`
}

type TrackPatch struct {
	Title           Field[string]
	AlbumID         Field[string]
	PrimaryArtistID Field[string]
	TrackNumber     Field[int64]
	DiscNumber      Field[int64]
	DurationMS      Field[int64]
	Explicit        Field[bool]
	Status          Field[Status]
	PublishedAt     Field[*time.Time]
	ArchivedAt      Field[*time.Time]
}

type TrackView struct {
	ID                string        `json:"id"`
	Title             string        `json:"title"`
	AlbumID           string        `json:"albumId"`
	AlbumTitle        string        `json:"albumTitle"`
	PrimaryArtistID   string        `json:"primaryArtistId"`
	PrimaryArtistName string        `json:"primaryArtistName"`
	TrackNumber       int64         `json:"trackNumber"`
	DiscNumber        int64         `json:"discNumber"`
	DurationMS        int64         `json:"durationMs"`
	Explicit          bool          `json:"explicit"`
	Status            Status        `json:"status"`
	GenreIDs          []string      `json:"genreIds"`
	ArtistLinks       []TrackArtist `json:"artistLinks"`
	AudioFiles        []AudioFile   `json:"audioFiles"`
	Lyrics            *Lyrics       `json:"lyrics"`
	CreatedAt         time.Time     `json:"createdAt"`
	UpdatedAt         time.Time     `json:"updatedAt"`
	PublishedAt       *time.Time    `json:"publishedAt"`
	ArchivedAt        *time.Time    `json:"archivedAt"`
}

func (t *Track) View() *TrackView {
	return &TrackView{
		ID:                t.ID,
		Title:             t.Title,
		AlbumID:           t.AlbumID,
		AlbumTitle:        t.AlbumTitle,
		PrimaryArtistID:   t.PrimaryArtistID,
		PrimaryArtistName: t.PrimaryArtistName,
		TrackNumber:       t.TrackNumber,
		DiscNumber:        t.DiscNumber,
		DurationMS:        t.DurationMS,
		Explicit:          t.Explicit,
		Status:            t.Status,
		GenreIDs:          nonNil(t.GenreIDs),
		ArtistLinks:       nonNil(t.ArtistLinks),
		AudioFiles:        nonNil(t.AudioFiles),
		Lyrics:            t.Lyrics,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
		PublishedAt:       t.PublishedAt,
		ArchivedAt:        t.ArchivedAt,
	}
}

// SecondaryLinks returns the links other than the primary one.
func (v *TrackView) SecondaryLinks() []ArtistLinkInput {
	var links []ArtistLinkInput
	for _, link := range v.ArtistLinks {
		if link.Role == RolePrimary || link.ArtistID == v.PrimaryArtistID {
			continue
		}
		links = append(links, ArtistLinkInput{
			ArtistID:     link.ArtistID,
			Role:         link.Role,
			DisplayOrder: link.DisplayOrder,
		})
	}
	return links
}
