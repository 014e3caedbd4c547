package data

// Genre is reference data. Artists, albums and tracks hold unordered sets
// of genre ids via the artist_genres, album_genres and track_genres tables.
type Genre struct {
	// like "3f1c..."
	ID string `gorm:"primaryKey" json:"id"`

	// like "Synthwave"
	Name string `json:"name"`

	// like "synthwave"
	Slug string `json:"slug"`

	SortOrder int64 `json:"sortOrder"`
}
