package data

import "time"

// Artist is a row in the artists table. Slugs are unique across all
// artists.
type Artist struct {
	ID             string `gorm:"primaryKey"`
	Name           string
	Slug           string
	Bio            *string
	ImageURL       *string `gorm:"column:image_url"`
	HeaderImageURL *string `gorm:"column:header_image_url"`
	Status         Status
	PersonaPrompt  *string
	StyleTags      []string `gorm:"serializer:json"`

	GenreIDs []string `gorm:"-"`

	CreatedAt   time.Time
	UpdatedAt   time.Time
	PublishedAt *time.Time
	ArchivedAt  *time.Time
}

// ArtistInput is the caller's description of a new artist.
type ArtistInput struct {
	Name           string   `json:"name"`
	Slug           string   `json:"slug"`
	Bio            string   `json:"bio"`
	ImageURL       string   `json:"imageUrl"`
	HeaderImageURL string   `json:"headerImageUrl"`
	Status         Status   `json:"status"`
	PersonaPrompt  string   `json:"personaPrompt"`
	StyleTags      []string `json:"styleTags"`
	GenreIDs       []string `json:"genreIds"`
}

// ArtistUpdate holds the fields of an artist to change. A present Slug that
// is null or empty asks for a fresh slug derived from the stored name.
type ArtistUpdate struct {
	Name           Field[string]   `json:"name"`
	Slug           Field[string]   `json:"slug"`
	Bio            Field[string]   `json:"bio"`
	ImageURL       Field[string]   `json:"imageUrl"`
	HeaderImageURL Field[string]   `json:"headerImageUrl"`
	Status         Field[Status]   `json:"status"`
	PersonaPrompt  Field[string]   `json:"personaPrompt"`
	StyleTags      Field[[]string] `json:"styleTags"`
	GenreIDs       Field[[]string] `json:"genreIds"`
}

// ArtistPatch is a normalized ArtistUpdate, ready to be applied to a row.
type ArtistPatch struct {
	Name           Field[string]
	Slug           Field[string]
	Bio            Field[*string]
	ImageURL       Field[*string]
	HeaderImageURL Field[*string]
	Status         Field[Status]
	PersonaPrompt  Field[*string]
	StyleTags      Field[[]string]
	PublishedAt    Field[*time.Time]
	ArchivedAt     Field[*time.Time]
}

// ArtistView is the denormalized artist returned to callers.
type ArtistView struct {
	ID             string     `json:"id"`
	Name           string     `json:"name"`
	Slug           string     `json:"slug"`
	Bio            *string    `json:"bio"`
	ImageURL       *string    `json:"imageUrl"`
	HeaderImageURL *string    `json:"headerImageUrl"`
	Status         Status     `json:"status"`
	PersonaPrompt  *string    `json:"personaPrompt"`
	StyleTags      []string   `json:"styleTags"`
	GenreIDs       []string   `json:"genreIds"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
	PublishedAt    *time.Time `json:"publishedAt"`
	ArchivedAt     *time.Time `json:"archivedAt"`
}

func (a *Artist) View() *ArtistView {
	return &ArtistView{
		ID:             a.ID,
		Name:           a.Name,
		Slug:           a.Slug,
		Bio:            a.Bio,
		ImageURL:       a.ImageURL,
		HeaderImageURL: a.HeaderImageURL,
		Status:         a.Status,
		PersonaPrompt:  a.PersonaPrompt,
		StyleTags:      nonNil(a.StyleTags),
		GenreIDs:       nonNil(a.GenreIDs),
		CreatedAt:      a.CreatedAt,
		UpdatedAt:      a.UpdatedAt,
		PublishedAt:    a.PublishedAt,
		ArchivedAt:     a.ArchivedAt,
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
