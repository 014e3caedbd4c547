package data

// Lyrics are attached to at most one track.
type Lyrics struct {
	TrackID       string `gorm:"primaryKey" json:"-"`
	Content       string `json:"content"`
	Language      string `json:"language"`
	HasTimestamps bool   `json:"hasTimestamps"`
}

func (Lyrics) TableName() string { return "lyrics" }

type LyricsInput struct {
	Content       string `json:"content"`
	Language      string `json:"language"`
	HasTimestamps bool   `json:"hasTimestamps"`
}

const DefaultLyricsLanguage = "en"
