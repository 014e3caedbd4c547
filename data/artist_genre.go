package data

// An ArtistGenre represents a many-to-many relationship between artists and
// genres.
type ArtistGenre struct {
	ArtistID string
	GenreID  string
}

// An AlbumGenre represents a many-to-many relationship between albums and
// genres.
type AlbumGenre struct {
	AlbumID string
	GenreID string
}

// A TrackGenre represents a many-to-many relationship between tracks and
// genres.
type TrackGenre struct {
	TrackID string
	GenreID string
}
