package catalog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/amonks/catalog/data"
	"github.com/amonks/catalog/db"
	"github.com/amonks/catalog/publish"
	"go.uber.org/zap"
)

// CreateTrack stores a track with its artist links, genres, audio files
// and lyrics. The primary artist defaults to the album's artist, and a
// track without a duration takes it from its first audio file.
func (s *Service) CreateTrack(ctx context.Context, in data.TrackInput) (*data.TrackView, error) {
	const failed = "Could not create track with the provided data."

	title, err := requiredName("title", in.Title)
	if err != nil {
		return nil, err
	}
	albumID := strings.TrimSpace(in.AlbumID)
	if albumID == "" {
		return nil, invalid("albumId must not be empty.")
	}
	st, err := status(in.Status)
	if err != nil {
		return nil, err
	}
	trackNumber, err := positive("trackNumber", in.TrackNumber)
	if err != nil {
		return nil, err
	}
	discNumber, err := positive("discNumber", in.DiscNumber)
	if err != nil {
		return nil, err
	}
	if in.DurationMS < 0 {
		return nil, invalid("durationMs must not be negative.")
	}
	links, err := artistLinks(in.ArtistLinks)
	if err != nil {
		return nil, err
	}
	lyr, err := lyrics(in.Lyrics)
	if err != nil {
		return nil, err
	}
	files, firstDuration, err := s.audioFiles(ctx, in.AudioFiles)
	if err != nil {
		return nil, err
	}

	track := &data.Track{
		Title:       title,
		AlbumID:     albumID,
		TrackNumber: trackNumber,
		DiscNumber:  discNumber,
		DurationMS:  in.DurationMS,
		Explicit:    in.Explicit,
		Status:      st,
		AudioFiles:  mergeAudio(nil, files, true),
	}
	if track.DurationMS == 0 {
		track.DurationMS = firstDuration
	}
	if err := publish.Track(track, st); err != nil {
		return nil, storageError(err, failed)
	}
	published, archived := transitions("", st, time.Now().UTC())
	track.PublishedAt, track.ArchivedAt = published.Or(nil), archived.Or(nil)

	var view *data.TrackView
	if err := s.store.Transaction(ctx, func(tx *db.Tx) error {
		albumArtist, err := tx.AlbumArtist(albumID)
		if errors.Is(err, db.ErrNotFound) {
			return &Error{Kind: Reference, Message: referenceMessage, Err: err}
		} else if err != nil {
			return err
		}
		track.PrimaryArtistID = strings.TrimSpace(in.PrimaryArtistID)
		if track.PrimaryArtistID == "" {
			track.PrimaryArtistID = albumArtist
		}

		if err := tx.InsertTrack(track); err != nil {
			return err
		}
		if err := s.syncTrack(tx, track.ID, track.PrimaryArtistID, links, ids(in.GenreIDs), files, true); err != nil {
			return err
		}
		if lyr != nil {
			if err := tx.UpsertLyrics(track.ID, *lyr); err != nil {
				return err
			}
		}
		if err := tx.RecomputeTrackCount(albumID); err != nil {
			return err
		}

		view, err = tx.FetchTrack(track.ID)
		return s.reload("Track", "created", track.ID, err)
	}); err != nil {
		return nil, storageError(err, failed)
	}

	s.log.Info("created track",
		zap.String("id", view.ID),
		zap.String("album", view.AlbumID),
		zap.String("status", string(view.Status)),
		zap.Int("audio_files", len(view.AudioFiles)))
	return view, nil
}

// UpdateTrack applies the present fields of in to a track. Supplied audio
// files are merged into the stored tiers unless ReplaceAudioFiles is set.
// Moving a track between albums recounts both albums.
func (s *Service) UpdateTrack(ctx context.Context, id string, in data.TrackUpdate) (*data.TrackView, error) {
	const failed = "Could not update track."

	patch, err := trackPatch(in)
	if err != nil {
		return nil, err
	}
	var links []data.ArtistLinkInput
	setLinks := in.ArtistLinks.IsSet() && !in.ArtistLinks.IsNull()
	if setLinks {
		v, _ := in.ArtistLinks.Get()
		if links, err = artistLinks(v); err != nil {
			return nil, err
		}
	}
	var lyr *data.Lyrics
	if v, ok := in.Lyrics.Get(); ok && !in.ClearLyrics {
		if lyr, err = lyrics(v); err != nil {
			return nil, err
		}
	}
	var files []data.AudioFile
	var firstDuration int64
	setAudio := in.AudioFiles.IsSet() && !in.AudioFiles.IsNull()
	if setAudio {
		v, _ := in.AudioFiles.Get()
		if files, firstDuration, err = s.audioFiles(ctx, v); err != nil {
			return nil, err
		}
	}

	var view *data.TrackView
	if err := s.store.Transaction(ctx, func(tx *db.Tx) error {
		current, err := tx.FetchTrack(id)
		if err != nil {
			return exists("Track", id, err)
		}

		albumID := patch.AlbumID.Or(current.AlbumID)
		primary := patch.PrimaryArtistID.Or(current.PrimaryArtistID)
		if in.PrimaryArtistID.IsSet() && primary == "" {
			albumArtist, err := tx.AlbumArtist(albumID)
			if errors.Is(err, db.ErrNotFound) {
				return &Error{Kind: Reference, Message: referenceMessage, Err: err}
			} else if err != nil {
				return err
			}
			primary = albumArtist
		}
		if primary != current.PrimaryArtistID {
			patch.PrimaryArtistID = data.Set(primary)
		} else {
			patch.PrimaryArtistID = data.Field[string]{}
		}

		audio := current.AudioFiles
		if setAudio {
			audio = mergeAudio(current.AudioFiles, files, in.ReplaceAudioFiles)
		}
		if d, ok := inferDuration(in.DurationMS, current.DurationMS, firstDuration, audio); ok {
			patch.DurationMS = data.Set(d)
		}

		next := trackState(current, patch, audio)
		if err := publish.Track(next, next.Status); err != nil {
			return err
		}
		patch.PublishedAt, patch.ArchivedAt = transitions(current.Status, next.Status, time.Now().UTC())

		if err := tx.UpdateTrack(id, patch); err != nil {
			return err
		}

		if setLinks || primary != current.PrimaryArtistID {
			if !setLinks {
				links = current.SecondaryLinks()
			}
			if err := tx.ReplaceTrackArtists(id, primary, links); err != nil {
				return err
			}
		}
		if genreIDs, ok := in.GenreIDs.Get(); ok && !in.GenreIDs.IsNull() {
			if err := tx.ReplaceGenres(db.TrackGenres, id, ids(genreIDs)); err != nil {
				return err
			}
		}
		if setAudio {
			if err := tx.SyncAudioFiles(id, files, in.ReplaceAudioFiles); err != nil {
				return err
			}
		}
		switch {
		case in.ClearLyrics:
			if err := tx.DeleteLyrics(id); err != nil {
				return err
			}
		case lyr != nil:
			if err := tx.UpsertLyrics(id, *lyr); err != nil {
				return err
			}
		}
		if albumID != current.AlbumID {
			if err := tx.RecomputeTrackCount(current.AlbumID); err != nil {
				return err
			}
			if err := tx.RecomputeTrackCount(albumID); err != nil {
				return err
			}
		}

		view, err = tx.FetchTrack(id)
		return s.reload("Track", "updated", id, err)
	}); err != nil {
		return nil, storageError(err, failed)
	}

	s.log.Info("updated track",
		zap.String("id", view.ID),
		zap.String("album", view.AlbumID),
		zap.String("status", string(view.Status)),
		zap.Int("audio_files", len(view.AudioFiles)))
	return view, nil
}

// syncTrack writes the links, genres and audio files of a new track.
func (s *Service) syncTrack(tx *db.Tx, id, primary string, links []data.ArtistLinkInput, genreIDs []string, files []data.AudioFile, replace bool) error {
	if err := tx.ReplaceTrackArtists(id, primary, links); err != nil {
		return err
	}
	if err := tx.ReplaceGenres(db.TrackGenres, id, genreIDs); err != nil {
		return err
	}
	return tx.SyncAudioFiles(id, files, replace)
}

// inferDuration decides the duration an update leaves a track with. A
// positive supplied duration wins. Without one, newly supplied audio
// carries its own duration. A supplied zero, or no duration at all on a
// track that has none, is filled from the audio files.
func inferDuration(supplied data.Field[int64], stored, firstDuration int64, audio []data.AudioFile) (int64, bool) {
	v, ok := supplied.Get()
	if ok && v > 0 {
		return v, true
	}
	if !ok && firstDuration > 0 {
		return firstDuration, firstDuration != stored
	}
	if ok || stored == 0 {
		if firstDuration == 0 {
			for _, f := range audio {
				if f.DurationMS != nil && *f.DurationMS > 0 {
					firstDuration = *f.DurationMS
					break
				}
			}
		}
		if firstDuration != stored {
			return firstDuration, true
		}
	}
	return 0, false
}

func trackPatch(in data.TrackUpdate) (data.TrackPatch, error) {
	var patch data.TrackPatch
	var err error
	if patch.Title, err = required("title", in.Title); err != nil {
		return patch, err
	}
	if patch.AlbumID, err = required("albumId", in.AlbumID); err != nil {
		return patch, err
	}
	if patch.Status, err = statusField(in.Status); err != nil {
		return patch, err
	}
	if in.PrimaryArtistID.IsSet() {
		v, _ := in.PrimaryArtistID.Get()
		patch.PrimaryArtistID = data.Set(strings.TrimSpace(v))
	}
	for field, f := range map[string]*data.Field[int64]{
		"trackNumber": &in.TrackNumber,
		"discNumber":  &in.DiscNumber,
	} {
		if !f.IsSet() {
			continue
		}
		if v, _ := f.Get(); f.IsNull() || v < 1 {
			return patch, invalid("%s must be at least 1.", field)
		}
	}
	patch.TrackNumber, patch.DiscNumber = in.TrackNumber, in.DiscNumber
	if in.DurationMS.IsSet() {
		if v, _ := in.DurationMS.Get(); in.DurationMS.IsNull() || v < 0 {
			return patch, invalid("durationMs must not be negative.")
		}
	}
	if in.Explicit.IsSet() {
		if in.Explicit.IsNull() {
			return patch, invalid("explicit must not be null.")
		}
		patch.Explicit = in.Explicit
	}
	return patch, nil
}

func trackState(current *data.TrackView, patch data.TrackPatch, audio []data.AudioFile) *data.Track {
	return &data.Track{
		ID:              current.ID,
		Title:           patch.Title.Or(current.Title),
		AlbumID:         patch.AlbumID.Or(current.AlbumID),
		PrimaryArtistID: patch.PrimaryArtistID.Or(current.PrimaryArtistID),
		TrackNumber:     patch.TrackNumber.Or(current.TrackNumber),
		DiscNumber:      patch.DiscNumber.Or(current.DiscNumber),
		DurationMS:      patch.DurationMS.Or(current.DurationMS),
		Explicit:        patch.Explicit.Or(current.Explicit),
		Status:          patch.Status.Or(current.Status),
		AudioFiles:      audio,
	}
}
