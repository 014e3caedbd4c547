package data

import "time"

// AudioFile is one encoding of a track. (TrackID, Quality) is unique;
// writing the same tier again replaces it.
type AudioFile struct {
	ID             string  `gorm:"primaryKey" json:"id"`
	TrackID        string  `json:"-"`
	Quality        Quality `json:"quality"`
	Format         Format  `json:"format"`
	StorageURL     string  `gorm:"column:storage_url" json:"storageUrl"`
	BitrateKbps    *int64  `gorm:"column:bitrate_kbps" json:"bitrateKbps"`
	SampleRateHz   *int64  `gorm:"column:sample_rate_hz" json:"sampleRateHz"`
	Channels       int64   `json:"channels"`
	FileSizeBytes  *int64  `gorm:"column:file_size_bytes" json:"fileSizeBytes"`
	DurationMS     *int64  `gorm:"column:duration_ms" json:"durationMs"`
	ChecksumSHA256 *string `gorm:"column:checksum_sha256" json:"checksumSha256"`

	CreatedAt time.Time `json:"-"`
}

func (AudioFile) TableName() string { return "track_audio_files" }

// AudioFileInput is an audio file as supplied by a caller. Nil numeric
// fields may be backfilled from the file itself.
type AudioFileInput struct {
	Quality        Quality `json:"quality"`
	Format         Format  `json:"format"`
	StorageURL     string  `json:"storageUrl"`
	BitrateKbps    *int64  `json:"bitrateKbps"`
	SampleRateHz   *int64  `json:"sampleRateHz"`
	Channels       *int64  `json:"channels"`
	FileSizeBytes  *int64  `json:"fileSizeBytes"`
	DurationMS     *int64  `json:"durationMs"`
	ChecksumSHA256 *string `json:"checksumSha256"`
}

// DefaultChannels applies when neither the caller nor inspection knows.
const DefaultChannels = 2
