package catalog

import (
	"context"
	"strings"
	"time"

	"github.com/amonks/catalog/data"
	"github.com/amonks/catalog/db"
	"github.com/amonks/catalog/publish"
	"github.com/amonks/catalog/slug"
	"go.uber.org/zap"
)

func (s *Service) CreateAlbum(ctx context.Context, in data.AlbumInput) (*data.AlbumView, error) {
	const failed = "Could not create album with the provided data."

	title, err := requiredName("title", in.Title)
	if err != nil {
		return nil, err
	}
	artistID := strings.TrimSpace(in.ArtistID)
	if artistID == "" {
		return nil, invalid("artistId must not be empty.")
	}
	st, err := status(in.Status)
	if err != nil {
		return nil, err
	}
	typ, err := albumType(in.AlbumType)
	if err != nil {
		return nil, err
	}
	coverURL, err := s.imageURL("coverUrl", in.CoverURL)
	if err != nil {
		return nil, err
	}
	album := &data.Album{
		Title:       title,
		ArtistID:    artistID,
		CoverURL:    coverURL,
		Description: prose(in.Description),
		ReleaseDate: in.ReleaseDate,
		AlbumType:   typ,
		Status:      st,
	}
	if err := publish.Album(album, st); err != nil {
		return nil, storageError(err, failed)
	}
	published, archived := transitions("", st, time.Now().UTC())
	album.PublishedAt, album.ArchivedAt = published.Or(nil), archived.Or(nil)

	text := in.Slug
	if strings.TrimSpace(text) == "" {
		text = title
	}
	genreIDs := ids(in.GenreIDs)

	var view *data.AlbumView
	if err := s.store.Transaction(ctx, func(tx *db.Tx) error {
		if _, err := s.slugs.Claim(ctx, tx, slug.AlbumsOf(artistID), text, func(candidate string) error {
			album.Slug = candidate
			return tx.Savepoint(func(sp *db.Tx) error { return sp.InsertAlbum(album) })
		}); err != nil {
			return err
		}
		if err := tx.ReplaceGenres(db.AlbumGenres, album.ID, genreIDs); err != nil {
			return err
		}
		var err error
		view, err = tx.FetchAlbum(album.ID)
		return s.reload("Album", "created", album.ID, err)
	}); err != nil {
		return nil, storageError(err, failed)
	}

	s.log.Info("created album",
		zap.String("id", view.ID),
		zap.String("artist", view.ArtistID),
		zap.String("slug", view.Slug),
		zap.String("status", string(view.Status)))
	return view, nil
}

// UpdateAlbum applies the present fields of in to an album. The album gets
// a new slug when one is asked for, when its title and artist are changed
// together, or when it moves to an artist that already uses its slug.
func (s *Service) UpdateAlbum(ctx context.Context, id string, in data.AlbumUpdate) (*data.AlbumView, error) {
	const failed = "Could not update album."

	patch, err := s.albumPatch(in)
	if err != nil {
		return nil, err
	}

	var view *data.AlbumView
	if err := s.store.Transaction(ctx, func(tx *db.Tx) error {
		current, err := tx.FetchAlbum(id)
		if err != nil {
			return exists("Album", id, err)
		}

		next := albumState(current, patch)
		if err := publish.Album(next, next.Status); err != nil {
			return err
		}
		patch.PublishedAt, patch.ArchivedAt = transitions(current.Status, next.Status, time.Now().UTC())

		scope := slug.AlbumsOf(next.ArtistID).Excluding(id)
		text, ok := reslug(in.Slug, next.Title)
		if !ok && patch.Title.IsSet() && patch.ArtistID.IsSet() {
			text, ok = next.Title, true
		}
		if !ok && next.ArtistID != current.ArtistID {
			taken, err := tx.SlugTaken(ctx, scope, current.Slug)
			if err != nil {
				return err
			}
			text, ok = current.Slug, taken
		}

		if ok {
			if _, err := s.slugs.Claim(ctx, tx, scope, text, func(candidate string) error {
				patch.Slug = data.Set(candidate)
				return tx.Savepoint(func(sp *db.Tx) error { return sp.UpdateAlbum(id, patch) })
			}); err != nil {
				return err
			}
		} else if err := tx.UpdateAlbum(id, patch); err != nil {
			return err
		}

		if genreIDs, ok := in.GenreIDs.Get(); ok && !in.GenreIDs.IsNull() {
			if err := tx.ReplaceGenres(db.AlbumGenres, id, ids(genreIDs)); err != nil {
				return err
			}
		}

		view, err = tx.FetchAlbum(id)
		return s.reload("Album", "updated", id, err)
	}); err != nil {
		return nil, storageError(err, failed)
	}

	s.log.Info("updated album",
		zap.String("id", view.ID),
		zap.String("artist", view.ArtistID),
		zap.String("slug", view.Slug),
		zap.String("status", string(view.Status)))
	return view, nil
}

func (s *Service) albumPatch(in data.AlbumUpdate) (data.AlbumPatch, error) {
	var patch data.AlbumPatch
	var err error
	if patch.Title, err = required("title", in.Title); err != nil {
		return patch, err
	}
	if patch.ArtistID, err = required("artistId", in.ArtistID); err != nil {
		return patch, err
	}
	if patch.Status, err = statusField(in.Status); err != nil {
		return patch, err
	}
	if patch.CoverURL, err = s.imageField("coverUrl", in.CoverURL); err != nil {
		return patch, err
	}
	patch.Description = clearable(in.Description, prose)
	patch.ReleaseDate = in.ReleaseDate
	if in.AlbumType.IsSet() {
		v, _ := in.AlbumType.Get()
		if in.AlbumType.IsNull() || v == "" {
			return patch, invalid("albumType must not be null.")
		}
		if _, err := albumType(v); err != nil {
			return patch, err
		}
		patch.AlbumType = in.AlbumType
	}
	return patch, nil
}

func albumState(current *data.AlbumView, patch data.AlbumPatch) *data.Album {
	return &data.Album{
		ID:          current.ID,
		Title:       patch.Title.Or(current.Title),
		Slug:        current.Slug,
		ArtistID:    patch.ArtistID.Or(current.ArtistID),
		CoverURL:    patch.CoverURL.Or(current.CoverURL),
		Description: patch.Description.Or(current.Description),
		ReleaseDate: patch.ReleaseDate.Or(current.ReleaseDate),
		AlbumType:   patch.AlbumType.Or(current.AlbumType),
		Status:      patch.Status.Or(current.Status),
		TrackCount:  current.TrackCount,
	}
}
