package slug

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Scope names the set of rows a slug must be unique within.
type Scope struct {
	// Table is "artists" or "albums".
	Table string

	// ArtistID limits album slugs to one artist. Empty for artists.
	ArtistID string

	// Except is the id of a row being re-slugged. Its own slug does not
	// count as taken.
	Except string
}

// Artists is the global scope for artist slugs.
func Artists() Scope { return Scope{Table: "artists"} }

// AlbumsOf is the scope for album slugs of one artist.
func AlbumsOf(artistID string) Scope { return Scope{Table: "albums", ArtistID: artistID} }

// Excluding returns s with the row id left out of collision checks.
func (s Scope) Excluding(id string) Scope {
	s.Except = id
	return s
}

func (s Scope) String() string {
	if s.ArtistID == "" {
		return s.Table
	}
	return fmt.Sprintf("%s of artist '%s'", s.Table, s.ArtistID)
}

// Prober reports whether a slug is already used within a scope.
type Prober interface {
	SlugTaken(ctx context.Context, scope Scope, candidate string) (bool, error)
}

// Allocator hands out free slugs. The probe is only advisory: the unique
// index behind the insert decides, which is why Claim retries.
type Allocator struct {
	log *zap.Logger

	// IsConflict reports whether an insert failed on a unique constraint.
	IsConflict func(error) bool
}

func NewAllocator(log *zap.Logger, isConflict func(error) bool) *Allocator {
	return &Allocator{log: log, IsConflict: isConflict}
}

// Allocate returns the first of base, base-2, base-3, ... that is free in
// scope, where base is Normalize(text).
func (a *Allocator) Allocate(ctx context.Context, probe Prober, scope Scope, text string) (string, error) {
	base := Normalize(text)
	candidate := base
	for n := 2; ; n++ {
		if err := ctx.Err(); err != nil {
			return "", fmt.Errorf("canceled: %w", err)
		}
		taken, err := probe.SlugTaken(ctx, scope, candidate)
		if err != nil {
			return "", fmt.Errorf("error probing slug '%s' in %s: %w", candidate, scope, err)
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", base, n)
	}
}

// Claim allocates a slug and passes it to insert. If insert loses a race on
// the unique index, the allocation is probed again and insert retried once.
// A second conflict is returned as-is.
func (a *Allocator) Claim(ctx context.Context, probe Prober, scope Scope, text string, insert func(slug string) error) (string, error) {
	var err error
	for attempt := 1; attempt <= 2; attempt++ {
		var slug string
		slug, err = a.Allocate(ctx, probe, scope, text)
		if err != nil {
			return "", err
		}
		err = insert(slug)
		if err == nil {
			return slug, nil
		}
		if a.IsConflict == nil || !a.IsConflict(err) {
			return "", err
		}
		a.log.Warn("slug collision",
			zap.String("scope", scope.String()),
			zap.String("slug", slug),
			zap.Int("attempt", attempt))
	}
	return "", err
}
