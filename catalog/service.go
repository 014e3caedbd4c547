// Package catalog creates and edits artists, albums and tracks while
// keeping the graph between them consistent. Each operation runs in one
// transaction and returns the entity as stored.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/amonks/catalog/config"
	"github.com/amonks/catalog/data"
	"github.com/amonks/catalog/db"
	"github.com/amonks/catalog/slug"
	"go.uber.org/zap"
)

type Service struct {
	cfg       config.Config
	store     *db.DB
	inspector Inspector
	slugs     *slug.Allocator
	log       *zap.Logger
}

func New(cfg config.Config, store *db.DB, inspector Inspector, log *zap.Logger) *Service {
	if cfg.InspectWorkers < 1 {
		cfg.InspectWorkers = 1
	}
	return &Service{
		cfg:       cfg,
		store:     store,
		inspector: inspector,
		slugs:     slug.NewAllocator(log, db.IsUniqueViolation),
		log:       log,
	}
}

// transitions returns the timestamps to stamp when moving from one status
// to another. Entering published or archived stamps the matching time;
// nothing is ever cleared.
func transitions(from, to data.Status, now time.Time) (publishedAt, archivedAt data.Field[*time.Time]) {
	if from == to {
		return
	}
	switch to {
	case data.StatusPublished:
		publishedAt = data.Set(&now)
	case data.StatusArchived:
		archivedAt = data.Set(&now)
	}
	return
}

// reload reads back an entity written in the current transaction. Not
// finding it means the write went missing, which is a bug.
func (s *Service) reload(what, verb, id string, err error) error {
	if err == nil {
		return nil
	}
	s.log.Error("written row could not be reloaded",
		zap.String("entity", what),
		zap.String("id", id),
		zap.Error(err))
	return &Error{Kind: Internal, Message: fmt.Sprintf("%s %s but could not be loaded.", what, verb), Err: err}
}

// exists turns a failed lookup of the entity being edited into an Error.
func exists(what, id string, err error) error {
	if errors.Is(err, db.ErrNotFound) {
		return missing(what, id)
	}
	return err
}

// required normalizes an update to a name or title, which may change but
// never be cleared.
func required(field string, f data.Field[string]) (data.Field[string], error) {
	if !f.IsSet() {
		return f, nil
	}
	if f.IsNull() {
		return f, invalid("%s must not be null.", field)
	}
	v, _ := f.Get()
	v, err := requiredName(field, v)
	if err != nil {
		return f, err
	}
	return data.Set(v), nil
}

// clearable normalizes an update to optional text with clean. Null and
// blank both clear the stored value.
func clearable(f data.Field[string], clean func(string) *string) data.Field[*string] {
	if !f.IsSet() {
		return data.Field[*string]{}
	}
	if f.IsNull() {
		return data.Set[*string](nil)
	}
	v, _ := f.Get()
	return data.Set(clean(v))
}

func (s *Service) imageField(field string, f data.Field[string]) (data.Field[*string], error) {
	if !f.IsSet() {
		return data.Field[*string]{}, nil
	}
	if f.IsNull() {
		return data.Set[*string](nil), nil
	}
	v, _ := f.Get()
	url, err := s.imageURL(field, v)
	if err != nil {
		return data.Field[*string]{}, err
	}
	return data.Set(url), nil
}

func statusField(f data.Field[data.Status]) (data.Field[data.Status], error) {
	if !f.IsSet() {
		return f, nil
	}
	v, _ := f.Get()
	if f.IsNull() || v == "" {
		return f, invalid("status must not be null.")
	}
	if _, err := status(v); err != nil {
		return f, err
	}
	return f, nil
}

// reslug says whether an update asks for a new slug, and what text to
// derive it from. A null or blank slug means fallback.
func reslug(f data.Field[string], fallback string) (string, bool) {
	if !f.IsSet() {
		return "", false
	}
	if v, _ := f.Get(); strings.TrimSpace(v) != "" {
		return v, true
	}
	return fallback, true
}

func (s *Service) listQuery(q db.ListQuery) (db.ListQuery, error) {
	if q.Limit < 0 || q.Limit > db.MaxLimit {
		return q, invalid("limit must be between 1 and %d.", db.MaxLimit)
	}
	if q.Offset < 0 {
		return q, invalid("offset must not be negative.")
	}
	for _, st := range q.Statuses {
		if !st.Valid() {
			return q, invalid("Unknown status '%s'.", st)
		}
	}
	q.Text = strings.TrimSpace(q.Text)
	return q, nil
}

func (s *Service) ListArtists(ctx context.Context, q db.ListQuery) (*db.Page[*data.ArtistView], error) {
	q, err := s.listQuery(q)
	if err != nil {
		return nil, err
	}
	page, err := s.store.ListArtists(ctx, q)
	if err != nil {
		return nil, &Error{Kind: Internal, Message: "Could not list artists.", Err: err}
	}
	return page, nil
}

func (s *Service) ListAlbums(ctx context.Context, q db.ListQuery) (*db.Page[*data.AlbumView], error) {
	q, err := s.listQuery(q)
	if err != nil {
		return nil, err
	}
	page, err := s.store.ListAlbums(ctx, q)
	if err != nil {
		return nil, &Error{Kind: Internal, Message: "Could not list albums.", Err: err}
	}
	return page, nil
}

func (s *Service) ListTracks(ctx context.Context, q db.ListQuery) (*db.Page[*data.TrackView], error) {
	q, err := s.listQuery(q)
	if err != nil {
		return nil, err
	}
	page, err := s.store.ListTracks(ctx, q)
	if err != nil {
		return nil, &Error{Kind: Internal, Message: "Could not list tracks.", Err: err}
	}
	return page, nil
}

func (s *Service) Genres(ctx context.Context) ([]data.Genre, error) {
	genres, err := s.store.ListGenres(ctx)
	if err != nil {
		return nil, &Error{Kind: Internal, Message: "Could not list genres.", Err: err}
	}
	return genres, nil
}

// AddGenre stores a genre, or returns the existing one with the same name
// or slug.
func (s *Service) AddGenre(ctx context.Context, name string, sortOrder int64) (*data.Genre, error) {
	name, err := requiredName("name", name)
	if err != nil {
		return nil, err
	}
	genre, err := s.store.InsertGenre(ctx, &data.Genre{Name: name, Slug: slug.Normalize(name), SortOrder: sortOrder})
	if err != nil {
		return nil, storageError(err, "Could not create genre.")
	}
	return genre, nil
}

// Show returns the view of whatever ref names; see db.Resolve for the
// accepted forms.
func (s *Service) Show(ctx context.Context, ref string) (any, error) {
	r, err := s.store.Resolve(ctx, ref)
	if errors.Is(err, db.ErrNotFound) {
		return nil, &Error{Kind: NotFound, Message: fmt.Sprintf("Nothing matches '%s'.", ref), Err: err}
	} else if err != nil {
		return nil, &Error{Kind: Validation, Message: err.Error()}
	}

	var view any
	switch r.Kind {
	case "artist":
		view, err = s.store.FetchArtist(ctx, r.ID)
	case "album":
		view, err = s.store.FetchAlbum(ctx, r.ID)
	case "track":
		view, err = s.store.FetchTrack(ctx, r.ID)
	}
	if err != nil {
		return nil, storageError(exists(r.Kind, r.ID, err), "Could not load "+r.Kind+".")
	}
	return view, nil
}
