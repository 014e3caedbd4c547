package db

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/amonks/catalog/data"
	"github.com/amonks/catalog/slug"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// InsertGenre, given a Genre, inserts it into the genres table, doing
// nothing if a genre with the same slug or name already exists. It returns
// the stored genre.
func (db *DB) InsertGenre(ctx context.Context, genre *data.Genre) (*data.Genre, error) {
	if genre.Name == "" || genre.Slug == "" {
		return nil, fmt.Errorf("no genre name")
	}
	if genre.ID == "" {
		genre.ID = uuid.NewString()
	}
	var stored data.Genre
	if err := db.Transaction(ctx, func(tx *Tx) error {
		if err := tx.tx.
			Clauses(clause.OnConflict{DoNothing: true}).
			Create(genre).
			Error; err != nil {
			return fmt.Errorf("error inserting genre '%s': %w", genre.Name, err)
		}
		if err := tx.tx.
			Where("slug = ? or name = ?", genre.Slug, genre.Name).
			First(&stored).
			Error; err != nil {
			return fmt.Errorf("error loading genre '%s': %w", genre.Name, err)
		}
		return nil
	}); err != nil {
		return nil, err
	}
	return &stored, nil
}

// InsertArtist inserts a new artist row, assigning an id if it has none.
// Genre links are written separately.
func (t *Tx) InsertArtist(artist *data.Artist) error {
	if artist.ID == "" {
		artist.ID = uuid.NewString()
	}
	if artist.StyleTags == nil {
		artist.StyleTags = []string{}
	}
	if err := t.tx.Create(artist).Error; err != nil {
		return fmt.Errorf("error inserting artist '%s': %w", artist.Name, err)
	}
	return nil
}

func (t *Tx) InsertAlbum(album *data.Album) error {
	if album.ID == "" {
		album.ID = uuid.NewString()
	}
	album.TrackCount = 0
	if err := t.tx.Create(album).Error; err != nil {
		return fmt.Errorf("error inserting album '%s': %w", album.Title, err)
	}
	return nil
}

func (t *Tx) InsertTrack(track *data.Track) error {
	if track.ID == "" {
		track.ID = uuid.NewString()
	}
	if err := t.tx.Create(track).Error; err != nil {
		return fmt.Errorf("error inserting track '%s': %w", track.Title, err)
	}
	return nil
}

// UpdateArtist writes the present fields of patch to the artist row and
// stamps updated_at. Absent fields keep their stored values.
func (t *Tx) UpdateArtist(id string, patch data.ArtistPatch) error {
	values := map[string]any{}
	assign(values, "name", patch.Name)
	assign(values, "slug", patch.Slug)
	assign(values, "bio", patch.Bio)
	assign(values, "image_url", patch.ImageURL)
	assign(values, "header_image_url", patch.HeaderImageURL)
	assign(values, "status", patch.Status)
	assign(values, "persona_prompt", patch.PersonaPrompt)
	assign(values, "published_at", patch.PublishedAt)
	assign(values, "archived_at", patch.ArchivedAt)
	if tags, ok := patch.StyleTags.Get(); ok {
		if tags == nil {
			tags = []string{}
		}
		encoded, err := json.Marshal(tags)
		if err != nil {
			return fmt.Errorf("error encoding style tags for artist '%s': %w", id, err)
		}
		values["style_tags"] = string(encoded)
	}
	return t.update("artists", id, values)
}

func (t *Tx) UpdateAlbum(id string, patch data.AlbumPatch) error {
	values := map[string]any{}
	assign(values, "title", patch.Title)
	assign(values, "slug", patch.Slug)
	assign(values, "artist_id", patch.ArtistID)
	assign(values, "cover_url", patch.CoverURL)
	assign(values, "description", patch.Description)
	assign(values, "release_date", patch.ReleaseDate)
	assign(values, "album_type", patch.AlbumType)
	assign(values, "status", patch.Status)
	assign(values, "published_at", patch.PublishedAt)
	assign(values, "archived_at", patch.ArchivedAt)
	return t.update("albums", id, values)
}

func (t *Tx) UpdateTrack(id string, patch data.TrackPatch) error {
	values := map[string]any{}
	assign(values, "title", patch.Title)
	assign(values, "album_id", patch.AlbumID)
	assign(values, "primary_artist_id", patch.PrimaryArtistID)
	assign(values, "track_number", patch.TrackNumber)
	assign(values, "disc_number", patch.DiscNumber)
	assign(values, "duration_ms", patch.DurationMS)
	assign(values, "explicit", patch.Explicit)
	assign(values, "status", patch.Status)
	assign(values, "published_at", patch.PublishedAt)
	assign(values, "archived_at", patch.ArchivedAt)
	return t.update("tracks", id, values)
}

func assign[T any](values map[string]any, column string, field data.Field[T]) {
	if v, ok := field.Get(); ok {
		values[column] = v
	}
}

func (t *Tx) update(table, id string, values map[string]any) error {
	values["updated_at"] = time.Now().UTC()
	res := t.tx.
		Table(table).
		Where("id = ?", id).
		Updates(values)
	if err := res.Error; err != nil {
		return fmt.Errorf("error updating %s '%s': %w", table, id, err)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("error updating %s '%s': %w", table, id, ErrNotFound)
	}
	return nil
}

// SlugTaken reports whether candidate is already used within scope.
func (t *Tx) SlugTaken(ctx context.Context, scope slug.Scope, candidate string) (bool, error) {
	if scope.Table != "artists" && scope.Table != "albums" {
		return false, fmt.Errorf("no slugs in table '%s'", scope.Table)
	}
	q := t.tx.
		WithContext(ctx).
		Table(scope.Table).
		Where("slug = ?", candidate)
	if scope.ArtistID != "" {
		q = q.Where("artist_id = ?", scope.ArtistID)
	}
	if scope.Except != "" {
		q = q.Where("id <> ?", scope.Except)
	}
	var count int64
	if err := q.Count(&count).Error; err != nil {
		return false, fmt.Errorf("error checking slug '%s' in %s: %w", candidate, scope, err)
	}
	return count > 0, nil
}

// AlbumArtist returns the id of the artist that owns an album.
func (t *Tx) AlbumArtist(albumID string) (string, error) {
	var artistIDs []string
	if err := t.tx.
		Table("albums").
		Where("id = ?", albumID).
		Pluck("artist_id", &artistIDs).
		Error; err != nil {
		return "", fmt.Errorf("error getting artist of album '%s': %w", albumID, err)
	}
	if len(artistIDs) == 0 {
		return "", fmt.Errorf("error getting artist of album '%s': %w", albumID, ErrNotFound)
	}
	return artistIDs[0], nil
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
