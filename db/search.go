package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/amonks/catalog/data"
	"gorm.io/gorm"
)

const (
	DefaultLimit = 25
	MaxLimit     = 200
)

// ListQuery narrows a listing. Zero values mean no filter.
type ListQuery struct {
	Statuses []data.Status

	// Text matches case-insensitively anywhere in the name or title, or
	// the slug.
	Text string

	// ArtistID filters albums by artist and tracks by primary artist.
	ArtistID string

	// AlbumID filters tracks.
	AlbumID string

	Limit  int
	Offset int
}

// Page is one page of a listing along with the number of matching rows.
type Page[T any] struct {
	Items  []T   `json:"items"`
	Total  int64 `json:"total"`
	Limit  int   `json:"limit"`
	Offset int   `json:"offset"`
}

func (q ListQuery) limit() int {
	switch {
	case q.Limit <= 0:
		return DefaultLimit
	case q.Limit > MaxLimit:
		return MaxLimit
	default:
		return q.Limit
	}
}

// ListArtists lists artists, most recently updated first.
func (db *DB) ListArtists(ctx context.Context, q ListQuery) (*Page[*data.ArtistView], error) {
	var page *Page[*data.ArtistView]
	err := db.snapshot(ctx, func(g *gorm.DB) (err error) {
		page, err = list(g, q, "artists", []string{"name", "slug"}, func(id string) (*data.ArtistView, error) {
			return fetchArtist(g, id)
		})
		return err
	})
	return page, err
}

func (db *DB) ListAlbums(ctx context.Context, q ListQuery) (*Page[*data.AlbumView], error) {
	var page *Page[*data.AlbumView]
	err := db.snapshot(ctx, func(g *gorm.DB) (err error) {
		page, err = list(g, q, "albums", []string{"title", "slug"}, func(id string) (*data.AlbumView, error) {
			return fetchAlbum(g, id)
		})
		return err
	})
	return page, err
}

func (db *DB) ListTracks(ctx context.Context, q ListQuery) (*Page[*data.TrackView], error) {
	var page *Page[*data.TrackView]
	err := db.snapshot(ctx, func(g *gorm.DB) (err error) {
		page, err = list(g, q, "tracks", []string{"title"}, func(id string) (*data.TrackView, error) {
			return fetchTrack(g, id)
		})
		return err
	})
	return page, err
}

func list[T any](g *gorm.DB, q ListQuery, table string, textColumns []string, fetch func(string) (T, error)) (*Page[T], error) {
	filtered := g.Table(table)
	if len(q.Statuses) > 0 {
		filtered = filtered.Where("status in ?", q.Statuses)
	}
	if q.Text != "" {
		pattern := "%" + escapeLike(strings.ToLower(q.Text)) + "%"
		var terms []string
		var args []any
		for _, column := range textColumns {
			terms = append(terms, fmt.Sprintf(`lower(%s) like ? escape '\'`, column))
			args = append(args, pattern)
		}
		filtered = filtered.Where(strings.Join(terms, " or "), args...)
	}
	if q.ArtistID != "" {
		switch table {
		case "albums":
			filtered = filtered.Where("artist_id = ?", q.ArtistID)
		case "tracks":
			filtered = filtered.Where("primary_artist_id = ?", q.ArtistID)
		}
	}
	if q.AlbumID != "" && table == "tracks" {
		filtered = filtered.Where("album_id = ?", q.AlbumID)
	}

	page := &Page[T]{Limit: q.limit(), Offset: max(q.Offset, 0)}

	if err := filtered.
		Session(&gorm.Session{}).
		Count(&page.Total).
		Error; err != nil {
		return nil, fmt.Errorf("error counting %s: %w", table, err)
	}

	var ids []string
	if err := filtered.
		Order("updated_at desc, id").
		Limit(page.Limit).
		Offset(page.Offset).
		Pluck("id", &ids).
		Error; err != nil {
		return nil, fmt.Errorf("error listing %s: %w", table, err)
	}

	page.Items = make([]T, len(ids))
	for i, id := range ids {
		if err := g.Statement.Context.Err(); err != nil {
			return nil, fmt.Errorf("canceled: %w", err)
		}
		item, err := fetch(id)
		if err != nil {
			return nil, fmt.Errorf("error getting %s %d ('%s'): %w", table, i+1, id, err)
		}
		page.Items[i] = item
	}
	return page, nil
}

func escapeLike(s string) string {
	return strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(s)
}

// ListGenres returns every genre in display order.
func (db *DB) ListGenres(ctx context.Context) ([]data.Genre, error) {
	genres := []data.Genre{}
	if err := db.read(ctx).
		Order("sort_order, name").
		Find(&genres).
		Error; err != nil {
		return nil, fmt.Errorf("error listing genres: %w", err)
	}
	return genres, nil
}
