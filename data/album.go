package data

import "time"

// Album belongs to exactly one artist. Slugs are unique within that artist.
// TrackCount is derived from the tracks table and never taken from callers.
type Album struct {
	ID          string `gorm:"primaryKey"`
	Title       string
	Slug        string
	ArtistID    string
	CoverURL    *string `gorm:"column:cover_url"`
	Description *string
	ReleaseDate *Date
	AlbumType   AlbumType
	Status      Status
	TrackCount  int64

	ArtistName string   `gorm:"-"`
	GenreIDs   []string `gorm:"-"`

	CreatedAt   time.Time
	UpdatedAt   time.Time
	PublishedAt *time.Time
	ArchivedAt  *time.Time
}

type AlbumInput struct {
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	ArtistID    string    `json:"artistId"`
	CoverURL    string    `json:"coverUrl"`
	Description string    `json:"description"`
	ReleaseDate *Date     `json:"releaseDate"`
	AlbumType   AlbumType `json:"albumType"`
	Status      Status    `json:"status"`
	GenreIDs    []string  `json:"genreIds"`
}

// AlbumUpdate holds the fields of an album to change. A present Slug that
// is null or empty asks for a fresh slug derived from the resulting title.
type AlbumUpdate struct {
	Title       Field[string]    `json:"title"`
	Slug        Field[string]    `json:"slug"`
	ArtistID    Field[string]    `json:"artistId"`
	CoverURL    Field[string]    `json:"coverUrl"`
	Description Field[string]    `json:"description"`
	ReleaseDate Field[*Date]     `json:"releaseDate"`
	AlbumType   Field[AlbumType] `json:"albumType"`
	Status      Field[Status]    `json:"status"`
	GenreIDs    Field[[]string]  `json:"genreIds"`
}

type AlbumPatch struct {
	Title       Field[string]
	Slug        Field[string]
	ArtistID    Field[string]
	CoverURL    Field[*string]
	Description Field[*string]
	ReleaseDate Field[*Date]
	AlbumType   Field[AlbumType]
	Status      Field[Status]
	PublishedAt Field[*time.Time]
	ArchivedAt  Field[*time.Time]
}

type AlbumView struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Slug        string     `json:"slug"`
	ArtistID    string     `json:"artistId"`
	ArtistName  string     `json:"artistName"`
	CoverURL    *string    `json:"coverUrl"`
	Description *string    `json:"description"`
	ReleaseDate *Date      `json:"releaseDate"`
	AlbumType   AlbumType  `json:"albumType"`
	Status      Status     `json:"status"`
	TrackCount  int64      `json:"trackCount"`
	GenreIDs    []string   `json:"genreIds"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
	PublishedAt *time.Time `json:"publishedAt"`
	ArchivedAt  *time.Time `json:"archivedAt"`
}

func (a *Album) View() *AlbumView {
	return &AlbumView{
		ID:          a.ID,
		Title:       a.Title,
		Slug:        a.Slug,
		ArtistID:    a.ArtistID,
		ArtistName:  a.ArtistName,
		CoverURL:    a.CoverURL,
		Description: a.Description,
		ReleaseDate: a.ReleaseDate,
		AlbumType:   a.AlbumType,
		Status:      a.Status,
		TrackCount:  a.TrackCount,
		GenreIDs:    nonNil(a.GenreIDs),
		CreatedAt:   a.CreatedAt,
		UpdatedAt:   a.UpdatedAt,
		PublishedAt: a.PublishedAt,
		ArchivedAt:  a.ArchivedAt,
	}
}
