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

func (s *Service) CreateArtist(ctx context.Context, in data.ArtistInput) (*data.ArtistView, error) {
	const failed = "Could not create artist with the provided data."

	name, err := requiredName("name", in.Name)
	if err != nil {
		return nil, err
	}
	st, err := status(in.Status)
	if err != nil {
		return nil, err
	}
	imageURL, err := s.imageURL("imageUrl", in.ImageURL)
	if err != nil {
		return nil, err
	}
	headerImageURL, err := s.imageURL("headerImageUrl", in.HeaderImageURL)
	if err != nil {
		return nil, err
	}
	artist := &data.Artist{
		Name:           name,
		Bio:            prose(in.Bio),
		ImageURL:       imageURL,
		HeaderImageURL: headerImageURL,
		Status:         st,
		PersonaPrompt:  prose(in.PersonaPrompt),
		StyleTags:      styleTags(in.StyleTags),
	}
	if err := publish.Artist(artist, st); err != nil {
		return nil, storageError(err, failed)
	}
	published, archived := transitions("", st, time.Now().UTC())
	artist.PublishedAt, artist.ArchivedAt = published.Or(nil), archived.Or(nil)

	text := in.Slug
	if strings.TrimSpace(text) == "" {
		text = name
	}
	genreIDs := ids(in.GenreIDs)

	var view *data.ArtistView
	if err := s.store.Transaction(ctx, func(tx *db.Tx) error {
		if _, err := s.slugs.Claim(ctx, tx, slug.Artists(), text, func(candidate string) error {
			artist.Slug = candidate
			return tx.Savepoint(func(sp *db.Tx) error { return sp.InsertArtist(artist) })
		}); err != nil {
			return err
		}
		if err := tx.ReplaceGenres(db.ArtistGenres, artist.ID, genreIDs); err != nil {
			return err
		}
		var err error
		view, err = tx.FetchArtist(artist.ID)
		return s.reload("Artist", "created", artist.ID, err)
	}); err != nil {
		return nil, storageError(err, failed)
	}

	s.log.Info("created artist",
		zap.String("id", view.ID),
		zap.String("slug", view.Slug),
		zap.String("status", string(view.Status)))
	return view, nil
}

// UpdateArtist applies the present fields of in to an artist. The publish
// rules are checked against the artist as it will be after the update.
func (s *Service) UpdateArtist(ctx context.Context, id string, in data.ArtistUpdate) (*data.ArtistView, error) {
	const failed = "Could not update artist."

	patch, err := s.artistPatch(in)
	if err != nil {
		return nil, err
	}

	var view *data.ArtistView
	if err := s.store.Transaction(ctx, func(tx *db.Tx) error {
		current, err := tx.FetchArtist(id)
		if err != nil {
			return exists("Artist", id, err)
		}

		next := artistState(current, patch)
		if err := publish.Artist(next, next.Status); err != nil {
			return err
		}
		patch.PublishedAt, patch.ArchivedAt = transitions(current.Status, next.Status, time.Now().UTC())

		if text, ok := reslug(in.Slug, current.Name); ok {
			if _, err := s.slugs.Claim(ctx, tx, slug.Artists().Excluding(id), text, func(candidate string) error {
				patch.Slug = data.Set(candidate)
				return tx.Savepoint(func(sp *db.Tx) error { return sp.UpdateArtist(id, patch) })
			}); err != nil {
				return err
			}
		} else if err := tx.UpdateArtist(id, patch); err != nil {
			return err
		}

		if genreIDs, ok := in.GenreIDs.Get(); ok && !in.GenreIDs.IsNull() {
			if err := tx.ReplaceGenres(db.ArtistGenres, id, ids(genreIDs)); err != nil {
				return err
			}
		}

		view, err = tx.FetchArtist(id)
		return s.reload("Artist", "updated", id, err)
	}); err != nil {
		return nil, storageError(err, failed)
	}

	s.log.Info("updated artist",
		zap.String("id", view.ID),
		zap.String("slug", view.Slug),
		zap.String("status", string(view.Status)))
	return view, nil
}

func (s *Service) artistPatch(in data.ArtistUpdate) (data.ArtistPatch, error) {
	var patch data.ArtistPatch
	var err error
	if patch.Name, err = required("name", in.Name); err != nil {
		return patch, err
	}
	if patch.Status, err = statusField(in.Status); err != nil {
		return patch, err
	}
	if patch.ImageURL, err = s.imageField("imageUrl", in.ImageURL); err != nil {
		return patch, err
	}
	if patch.HeaderImageURL, err = s.imageField("headerImageUrl", in.HeaderImageURL); err != nil {
		return patch, err
	}
	patch.Bio = clearable(in.Bio, prose)
	patch.PersonaPrompt = clearable(in.PersonaPrompt, prose)
	if in.StyleTags.IsSet() {
		tags, _ := in.StyleTags.Get()
		patch.StyleTags = data.Set(styleTags(tags))
	}
	return patch, nil
}

// artistState is current with patch applied.
func artistState(current *data.ArtistView, patch data.ArtistPatch) *data.Artist {
	return &data.Artist{
		ID:             current.ID,
		Name:           patch.Name.Or(current.Name),
		Slug:           current.Slug,
		Bio:            patch.Bio.Or(current.Bio),
		ImageURL:       patch.ImageURL.Or(current.ImageURL),
		HeaderImageURL: patch.HeaderImageURL.Or(current.HeaderImageURL),
		Status:         patch.Status.Or(current.Status),
		PersonaPrompt:  patch.PersonaPrompt.Or(current.PersonaPrompt),
		StyleTags:      patch.StyleTags.Or(current.StyleTags),
		GenreIDs:       current.GenreIDs,
	}
}
