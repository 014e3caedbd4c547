package db

import (
	"fmt"

	"github.com/amonks/catalog/data"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm/clause"
)

// A GenreOwner is a kind of row that holds a set of genre ids.
type GenreOwner int

const (
	ArtistGenres GenreOwner = iota
	AlbumGenres
	TrackGenres
)

func (o GenreOwner) String() string {
	switch o {
	case ArtistGenres:
		return "artist"
	case AlbumGenres:
		return "album"
	default:
		return "track"
	}
}

func (o GenreOwner) link(ownerID, genreID string) any {
	switch o {
	case ArtistGenres:
		return &data.ArtistGenre{ArtistID: ownerID, GenreID: genreID}
	case AlbumGenres:
		return &data.AlbumGenre{AlbumID: ownerID, GenreID: genreID}
	default:
		return &data.TrackGenre{TrackID: ownerID, GenreID: genreID}
	}
}

func (o GenreOwner) column() string { return o.String() + "_id" }

// ReplaceGenres makes genreIDs the complete genre set of the owner.
// Duplicate ids are ignored. An unknown genre id is a foreign key
// violation.
func (t *Tx) ReplaceGenres(owner GenreOwner, ownerID string, genreIDs []string) error {
	if err := t.tx.
		Where(owner.column()+" = ?", ownerID).
		Delete(owner.link("", "")).
		Error; err != nil {
		return fmt.Errorf("error clearing genres of %s '%s': %w", owner, ownerID, err)
	}
	for _, genreID := range genreIDs {
		if err := t.tx.
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(owner.link(ownerID, genreID)).
			Error; err != nil {
			return fmt.Errorf("error linking %s '%s' to genre '%s': %w", owner, ownerID, genreID, err)
		}
	}
	return nil
}

// ReplaceTrackArtists rewrites the artist links of a track. The primary
// link is always written first, with RolePrimary at display order 0.
// Links naming the primary artist are skipped; a repeated secondary
// artist keeps the last role and order given for it.
func (t *Tx) ReplaceTrackArtists(trackID, primaryArtistID string, links []data.ArtistLinkInput) error {
	if err := t.tx.
		Where("track_id = ?", trackID).
		Delete(&data.TrackArtist{}).
		Error; err != nil {
		return fmt.Errorf("error clearing artists of track '%s': %w", trackID, err)
	}

	if err := t.tx.
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(&data.TrackArtist{
			TrackID:      trackID,
			ArtistID:     primaryArtistID,
			Role:         data.RolePrimary,
			DisplayOrder: 0,
		}).
		Error; err != nil {
		return fmt.Errorf("error inserting primary artist {'%s', '%s'}: %w", trackID, primaryArtistID, err)
	}

	for _, link := range links {
		if link.ArtistID == primaryArtistID {
			continue
		}
		if err := t.tx.
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "track_id"}, {Name: "artist_id"}},
				DoUpdates: clause.AssignmentColumns([]string{"role", "display_order"}),
			}).
			Create(&data.TrackArtist{
				TrackID:      trackID,
				ArtistID:     link.ArtistID,
				Role:         link.Role,
				DisplayOrder: link.DisplayOrder,
			}).
			Error; err != nil {
			return fmt.Errorf("error inserting track artist {'%s', '%s'}: %w", trackID, link.ArtistID, err)
		}
	}
	return nil
}

// SyncAudioFiles writes files as the audio tiers of a track. Each file
// replaces any stored file of the same quality. With replace, every stored
// tier is dropped first; otherwise tiers not mentioned are kept.
func (t *Tx) SyncAudioFiles(trackID string, files []data.AudioFile, replace bool) error {
	if replace {
		if err := t.tx.
			Where("track_id = ?", trackID).
			Delete(&data.AudioFile{}).
			Error; err != nil {
			return fmt.Errorf("error clearing audio files of track '%s': %w", trackID, err)
		}
	}
	for i := range files {
		file := files[i]
		file.TrackID = trackID
		err := t.Savepoint(func(sp *Tx) error { return sp.upsertAudioFile(&file) })
		if err != nil && IsUniqueViolation(err) {
			t.log.Warn("audio tier collision, retrying",
				zap.String("track", trackID),
				zap.String("quality", string(file.Quality)))
			file.ID = ""
			err = t.Savepoint(func(sp *Tx) error { return sp.upsertAudioFile(&file) })
		}
		if err != nil {
			return err
		}
	}
	return nil
}

func (t *Tx) upsertAudioFile(file *data.AudioFile) error {
	if file.ID == "" {
		file.ID = uuid.NewString()
	}
	if err := t.tx.
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "track_id"}, {Name: "quality"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"format",
				"storage_url",
				"bitrate_kbps",
				"sample_rate_hz",
				"channels",
				"file_size_bytes",
				"duration_ms",
				"checksum_sha256",
			}),
		}).
		Create(file).
		Error; err != nil {
		return fmt.Errorf("error upserting %s audio file for track '%s': %w", file.Quality, file.TrackID, err)
	}
	return nil
}

// UpsertLyrics attaches lyrics to a track, replacing any it had.
func (t *Tx) UpsertLyrics(trackID string, lyrics data.Lyrics) error {
	lyrics.TrackID = trackID
	if err := t.tx.
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "track_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"content", "language", "has_timestamps"}),
		}).
		Create(&lyrics).
		Error; err != nil {
		return fmt.Errorf("error upserting lyrics for track '%s': %w", trackID, err)
	}
	return nil
}

func (t *Tx) DeleteLyrics(trackID string) error {
	if err := t.tx.
		Where("track_id = ?", trackID).
		Delete(&data.Lyrics{}).
		Error; err != nil {
		return fmt.Errorf("error deleting lyrics for track '%s': %w", trackID, err)
	}
	return nil
}

// RecomputeTrackCount sets an album's track_count to the number of tracks
// that reference it.
func (t *Tx) RecomputeTrackCount(albumID string) error {
	if err := t.tx.
		Exec("update albums set track_count = (select count(*) from tracks where album_id = ?) where id = ?", albumID, albumID).
		Error; err != nil {
		return fmt.Errorf("error recomputing track count of album '%s': %w", albumID, err)
	}
	return nil
}
