package db

import (
	"context"
	"fmt"
	"strings"
)

// A Ref names one artist, album or track.
type Ref struct {
	// like "artist"
	Kind string

	ID string
}

// Resolve turns a reference typed by an operator into a Ref. Accepted
// forms are
//
//	artist:<id or slug>
//	album:<id>
//	album:<artist slug>/<album slug>
//	track:<id>
func (db *DB) Resolve(ctx context.Context, input string) (Ref, error) {
	kind, arg, ok := strings.Cut(input, ":")
	if !ok || arg == "" {
		return Ref{}, fmt.Errorf("reference '%s' should look like kind:id", input)
	}
	switch kind {
	case "artist":
		id, err := db.lookup(ctx, "artists", "id = ? or slug = ?", arg, arg)
		if err != nil {
			return Ref{}, fmt.Errorf("error resolving artist '%s': %w", arg, err)
		}
		return Ref{Kind: kind, ID: id}, nil
	case "album":
		if artistSlug, albumSlug, ok := strings.Cut(arg, "/"); ok {
			id, err := db.lookup(ctx, "albums",
				"slug = ? and artist_id in (select id from artists where slug = ?)", albumSlug, artistSlug)
			if err != nil {
				return Ref{}, fmt.Errorf("error resolving album '%s': %w", arg, err)
			}
			return Ref{Kind: kind, ID: id}, nil
		}
		id, err := db.lookup(ctx, "albums", "id = ?", arg)
		if err != nil {
			return Ref{}, fmt.Errorf("error resolving album '%s': %w", arg, err)
		}
		return Ref{Kind: kind, ID: id}, nil
	case "track":
		id, err := db.lookup(ctx, "tracks", "id = ?", arg)
		if err != nil {
			return Ref{}, fmt.Errorf("error resolving track '%s': %w", arg, err)
		}
		return Ref{Kind: kind, ID: id}, nil
	default:
		return Ref{}, fmt.Errorf("unknown reference kind '%s'", kind)
	}
}

func (db *DB) lookup(ctx context.Context, table, where string, args ...any) (string, error) {
	var ids []string
	if err := db.read(ctx).
		Table(table).
		Where(where, args...).
		Limit(1).
		Pluck("id", &ids).
		Error; err != nil {
		return "", err
	}
	if len(ids) == 0 {
		return "", ErrNotFound
	}
	return ids[0], nil
}
