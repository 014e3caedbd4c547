package data

// TrackArtist links an artist to a track. Every track has exactly one link
// with RolePrimary, at display order 0, naming Track.PrimaryArtistID.
type TrackArtist struct {
	TrackID      string `json:"-"`
	ArtistID     string `json:"artistId"`
	Role         Role   `json:"role"`
	DisplayOrder int64  `json:"displayOrder"`
}
