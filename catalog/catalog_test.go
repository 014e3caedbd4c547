package catalog_test

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/amonks/catalog/catalog"
	"github.com/amonks/catalog/config"
	"github.com/amonks/catalog/data"
	"github.com/amonks/catalog/db"
	"github.com/amonks/catalog/media"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

// fakeInspector classifies locators for real but answers Inspect from a
// table keyed by file name, so tests need no real audio.
type fakeInspector struct {
	*media.Inspector
	meta map[string]*media.Metadata
}

func (f *fakeInspector) Inspect(path string) (*media.Metadata, error) {
	md, ok := f.meta[filepath.Base(path)]
	if !ok {
		return f.Inspector.Inspect(path)
	}
	out := *md
	out.Path = path
	return &out, nil
}

type env struct {
	svc       *catalog.Service
	store     *db.DB
	root      string
	inspector *fakeInspector
	logs      *observer.ObservedLogs
}

func setup(t *testing.T) *env {
	t.Helper()
	dir, err := filepath.EvalSymlinks(t.TempDir())
	require.NoError(t, err)
	cfg := config.Default(dir)
	require.NoError(t, os.MkdirAll(cfg.DataRoot, 0o755))

	core, logs := observer.New(zap.DebugLevel)
	log := zap.New(core)
	store, err := db.Open(cfg, log)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	inspector := &fakeInspector{Inspector: media.NewInspector(cfg, log), meta: map[string]*media.Metadata{}}
	return &env{
		svc:       catalog.New(cfg, store, inspector, log),
		store:     store,
		root:      cfg.DataRoot,
		inspector: inspector,
		logs:      logs,
	}
}

// audio writes a file under the data root, registers what inspecting it
// should find, and returns its locator.
func (e *env) audio(t *testing.T, name string, md *media.Metadata) string {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(e.root, name), []byte("audio:"+name), 0o644))
	if md != nil {
		e.inspector.meta[name] = md
	}
	return "data/" + name
}

func ptr[T any](v T) *T { return &v }

func kind(t *testing.T, err error, want catalog.Kind) {
	t.Helper()
	require.Error(t, err)
	assert.Equal(t, want, catalog.KindOf(err), err.Error())
}

func message(err error) string {
	var cerr *catalog.Error
	if errors.As(err, &cerr) {
		return cerr.Message
	}
	return ""
}

var ctx = context.Background()

func newArtist(t *testing.T, e *env, name string) *data.ArtistView {
	t.Helper()
	a, err := e.svc.CreateArtist(ctx, data.ArtistInput{Name: name})
	require.NoError(t, err)
	return a
}

func newAlbum(t *testing.T, e *env, artistID, title string) *data.AlbumView {
	t.Helper()
	a, err := e.svc.CreateAlbum(ctx, data.AlbumInput{Title: title, ArtistID: artistID})
	require.NoError(t, err)
	return a
}

func TestCreateArtistSlugs(t *testing.T) {
	e := setup(t)

	a := newArtist(t, e, "  Beyoncé ")
	assert.Equal(t, "Beyoncé", a.Name)
	assert.Equal(t, "beyonce", a.Slug)
	assert.Equal(t, data.StatusDraft, a.Status)
	assert.Nil(t, a.PublishedAt)
	assert.Equal(t, []string{}, a.StyleTags)

	b := newArtist(t, e, "Beyonce")
	assert.Equal(t, "beyonce-2", b.Slug)

	c, err := e.svc.CreateArtist(ctx, data.ArtistInput{Name: "Someone", Slug: "Beyonce"})
	require.NoError(t, err)
	assert.Equal(t, "beyonce-3", c.Slug)

	d := newArtist(t, e, "王菲")
	assert.Equal(t, "wang-fei", d.Slug)
}

func TestCreateArtistValidation(t *testing.T) {
	e := setup(t)

	_, err := e.svc.CreateArtist(ctx, data.ArtistInput{Name: "   "})
	kind(t, err, catalog.Validation)

	_, err = e.svc.CreateArtist(ctx, data.ArtistInput{Name: "X", Status: "famous"})
	kind(t, err, catalog.Validation)

	_, err = e.svc.CreateArtist(ctx, data.ArtistInput{Name: "X", ImageURL: "ftp://example.com/x.jpg"})
	kind(t, err, catalog.Validation)

	_, err = e.svc.CreateArtist(ctx, data.ArtistInput{Name: "X", ImageURL: "data/../../etc/passwd"})
	kind(t, err, catalog.Validation)

	_, err = e.svc.CreateArtist(ctx, data.ArtistInput{Name: "X", Status: data.StatusPublished, Bio: "bio"})
	kind(t, err, catalog.Validation)
	assert.Equal(t, "Published artists require imageUrl (portrait).", message(err))

	_, err = e.svc.CreateArtist(ctx, data.ArtistInput{Name: "X", Status: data.StatusPublished, ImageURL: "data/x.jpg", Bio: "  "})
	kind(t, err, catalog.Validation)
	assert.Equal(t, "Published artists require a non-empty bio.", message(err))

	page, err := e.svc.ListArtists(ctx, db.ListQuery{})
	require.NoError(t, err)
	assert.Zero(t, page.Total)
}

func TestCreateArtistPublished(t *testing.T) {
	e := setup(t)
	a, err := e.svc.CreateArtist(ctx, data.ArtistInput{
		Name:      "Nova",
		Status:    data.StatusPublished,
		ImageURL:  "https://cdn.example.com/nova.jpg",
		Bio:       "<p>Synth <b>pop</b>.</p><p>From Oslo.</p>",
		StyleTags: []string{" dreamy ", "", "neon"},
	})
	require.NoError(t, err)
	assert.Equal(t, data.StatusPublished, a.Status)
	assert.NotNil(t, a.PublishedAt)
	assert.Nil(t, a.ArchivedAt)
	require.NotNil(t, a.Bio)
	assert.Equal(t, "Synth pop.\n\nFrom Oslo.", *a.Bio)
	assert.Equal(t, []string{"dreamy", "neon"}, a.StyleTags)
}

func TestCreateArtistUnknownGenre(t *testing.T) {
	e := setup(t)
	_, err := e.svc.CreateArtist(ctx, data.ArtistInput{Name: "X", GenreIDs: []string{"nope"}})
	kind(t, err, catalog.Reference)
	assert.Equal(t, "One or more referenced records do not exist.", message(err))

	page, err := e.svc.ListArtists(ctx, db.ListQuery{})
	require.NoError(t, err)
	assert.Zero(t, page.Total, "the artist insert is rolled back")
}

func TestUpdateArtist(t *testing.T) {
	e := setup(t)
	a := newArtist(t, e, "Nova")
	g, err := e.svc.AddGenre(ctx, "Synthwave", 1)
	require.NoError(t, err)

	_, err = e.svc.UpdateArtist(ctx, a.ID, data.ArtistUpdate{Status: data.Set(data.StatusPublished)})
	kind(t, err, catalog.Validation)

	b, err := e.svc.UpdateArtist(ctx, a.ID, data.ArtistUpdate{
		Bio:      data.Set("Synth pop."),
		ImageURL: data.Set("data/nova.jpg"),
		Status:   data.Set(data.StatusPublished),
		GenreIDs: data.Set([]string{g.ID, g.ID}),
	})
	require.NoError(t, err)
	assert.Equal(t, data.StatusPublished, b.Status)
	require.NotNil(t, b.PublishedAt)
	assert.Equal(t, []string{g.ID}, b.GenreIDs)
	assert.Equal(t, "nova", b.Slug)

	c, err := e.svc.UpdateArtist(ctx, a.ID, data.ArtistUpdate{Name: data.Set("Nova Sky")})
	require.NoError(t, err)
	assert.Equal(t, "Nova Sky", c.Name)
	assert.Equal(t, "nova", c.Slug, "renaming alone keeps the slug")
	assert.Equal(t, b.PublishedAt.UnixNano(), c.PublishedAt.UnixNano(), "staying published keeps the stamp")
	assert.Equal(t, []string{g.ID}, c.GenreIDs, "absent genres are kept")

	_, err = e.svc.UpdateArtist(ctx, a.ID, data.ArtistUpdate{Bio: data.Null[string]()})
	kind(t, err, catalog.Validation)
	assert.Equal(t, "Published artists require a non-empty bio.", message(err))

	d, err := e.svc.UpdateArtist(ctx, a.ID, data.ArtistUpdate{Slug: data.Null[string]()})
	require.NoError(t, err)
	assert.Equal(t, "nova-sky", d.Slug)

	_, err = e.svc.UpdateArtist(ctx, a.ID, data.ArtistUpdate{Name: data.Null[string]()})
	kind(t, err, catalog.Validation)

	f, err := e.svc.UpdateArtist(ctx, a.ID, data.ArtistUpdate{Status: data.Set(data.StatusArchived)})
	require.NoError(t, err)
	assert.NotNil(t, f.ArchivedAt)
	assert.NotNil(t, f.PublishedAt, "stamps are never cleared")
}

func TestUpdateArtistKeepsOwnSlug(t *testing.T) {
	e := setup(t)
	a := newArtist(t, e, "Nova")
	b, err := e.svc.UpdateArtist(ctx, a.ID, data.ArtistUpdate{Slug: data.Set("nova")})
	require.NoError(t, err)
	assert.Equal(t, "nova", b.Slug)
}

func TestUpdateArtistMissing(t *testing.T) {
	e := setup(t)
	_, err := e.svc.UpdateArtist(ctx, "nope", data.ArtistUpdate{Name: data.Set("X")})
	kind(t, err, catalog.NotFound)
	assert.Equal(t, "Artist not found.", message(err))
	assert.ErrorIs(t, err, catalog.ErrNotFound)
}

func TestConcurrentArtistsGetDistinctSlugs(t *testing.T) {
	e := setup(t)
	const n = 8
	slugs := make([]string, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a, err := e.svc.CreateArtist(ctx, data.ArtistInput{Name: "Echo"})
			if assert.NoError(t, err) {
				slugs[i] = a.Slug
			}
		}()
	}
	wg.Wait()

	seen := map[string]bool{}
	for _, s := range slugs {
		assert.False(t, seen[s], s)
		seen[s] = true
	}
	assert.True(t, seen["echo"])
	assert.True(t, seen[fmt.Sprintf("echo-%d", n)])
}

func TestAlbumPublishing(t *testing.T) {
	e := setup(t)
	artist := newArtist(t, e, "Nova")
	album := newAlbum(t, e, artist.ID, "First Light")
	assert.Equal(t, "first-light", album.Slug)
	assert.Equal(t, data.AlbumTypeAlbum, album.AlbumType)
	assert.Equal(t, "Nova", album.ArtistName)

	_, err := e.svc.UpdateAlbum(ctx, album.ID, data.AlbumUpdate{Status: data.Set(data.StatusPublished)})
	kind(t, err, catalog.Validation)
	assert.Equal(t, "Published albums require coverUrl (album art).", message(err))

	_, err = e.svc.UpdateAlbum(ctx, album.ID, data.AlbumUpdate{
		Status:   data.Set(data.StatusPublished),
		CoverURL: data.Set("data/covers/first-light.jpg"),
	})
	kind(t, err, catalog.Validation)
	assert.Equal(t, "Published albums require releaseDate.", message(err))

	date := data.NewDate(2024, 3, 1)
	published, err := e.svc.UpdateAlbum(ctx, album.ID, data.AlbumUpdate{
		Status:      data.Set(data.StatusPublished),
		CoverURL:    data.Set("data/covers/first-light.jpg"),
		ReleaseDate: data.Set(&date),
	})
	require.NoError(t, err)
	assert.Equal(t, data.StatusPublished, published.Status)
	assert.NotNil(t, published.PublishedAt)
	require.NotNil(t, published.ReleaseDate)
	assert.Equal(t, "2024-03-01", published.ReleaseDate.String())

	_, err = e.svc.UpdateAlbum(ctx, album.ID, data.AlbumUpdate{ReleaseDate: data.Null[*data.Date]()})
	kind(t, err, catalog.Validation)
}

func TestAlbumSlugs(t *testing.T) {
	e := setup(t)
	a := newArtist(t, e, "A")
	b := newArtist(t, e, "B")

	hits := newAlbum(t, e, a.ID, "Greatest Hits")
	assert.Equal(t, "greatest-hits", hits.Slug)
	assert.Equal(t, "greatest-hits", newAlbum(t, e, b.ID, "Greatest Hits").Slug)
	assert.Equal(t, "greatest-hits-2", newAlbum(t, e, a.ID, "Greatest Hits").Slug)

	// Moving to an artist that already uses the slug picks a free one.
	c, err := e.svc.UpdateAlbum(ctx, hits.ID, data.AlbumUpdate{ArtistID: data.Set(b.ID)})
	require.NoError(t, err)
	assert.Equal(t, b.ID, c.ArtistID)
	assert.Equal(t, "B", c.ArtistName)
	assert.Equal(t, "greatest-hits-2", c.Slug)

	d, err := e.svc.UpdateAlbum(ctx, hits.ID, data.AlbumUpdate{ArtistID: data.Set(a.ID), Title: data.Set("Deep Cuts")})
	require.NoError(t, err)
	assert.Equal(t, "deep-cuts", d.Slug)

	f, err := e.svc.UpdateAlbum(ctx, hits.ID, data.AlbumUpdate{Title: data.Set("Other")})
	require.NoError(t, err)
	assert.Equal(t, "deep-cuts", f.Slug, "retitling alone keeps the slug")

	g, err := e.svc.UpdateAlbum(ctx, hits.ID, data.AlbumUpdate{Slug: data.Null[string]()})
	require.NoError(t, err)
	assert.Equal(t, "other", g.Slug)
}

func TestCreateAlbumUnknownArtist(t *testing.T) {
	e := setup(t)
	_, err := e.svc.CreateAlbum(ctx, data.AlbumInput{Title: "X", ArtistID: "nope"})
	kind(t, err, catalog.Reference)

	_, err = e.svc.CreateAlbum(ctx, data.AlbumInput{Title: "X"})
	kind(t, err, catalog.Validation)

	_, err = e.svc.UpdateAlbum(ctx, "nope", data.AlbumUpdate{Title: data.Set("X")})
	kind(t, err, catalog.NotFound)
	assert.Equal(t, "Album not found.", message(err))
}

func TestCreateTrackInfersFromAudio(t *testing.T) {
	e := setup(t)
	artist := newArtist(t, e, "Nova")
	album := newAlbum(t, e, artist.ID, "First Light")
	locator := e.audio(t, "dawn.flac", &media.Metadata{
		Format:         ptr(data.FormatFLAC),
		DurationMS:     ptr(int64(187000)),
		BitrateKbps:    ptr(int64(900)),
		SampleRateHz:   ptr(int64(44100)),
		Channels:       ptr(int64(1)),
		FileSizeBytes:  1234,
		ChecksumSHA256: "abc123",
	})

	track, err := e.svc.CreateTrack(ctx, data.TrackInput{
		Title:   "Dawn",
		AlbumID: album.ID,
		AudioFiles: []data.AudioFileInput{
			{Quality: data.QualityLossless, StorageURL: locator},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(187000), track.DurationMS)
	assert.Equal(t, artist.ID, track.PrimaryArtistID, "primary artist defaults to the album's")
	assert.Equal(t, int64(1), track.TrackNumber)
	assert.Equal(t, int64(1), track.DiscNumber)
	require.Len(t, track.ArtistLinks, 1)
	assert.Equal(t, data.RolePrimary, track.ArtistLinks[0].Role)

	require.Len(t, track.AudioFiles, 1)
	f := track.AudioFiles[0]
	assert.Equal(t, data.FormatFLAC, f.Format)
	assert.Equal(t, int64(1), f.Channels)
	assert.Equal(t, int64(187000), *f.DurationMS)
	assert.Equal(t, int64(900), *f.BitrateKbps)
	assert.Equal(t, int64(1234), *f.FileSizeBytes)
	assert.Equal(t, "abc123", *f.ChecksumSHA256)

	got, err := e.store.FetchAlbum(ctx, album.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.TrackCount)
}

func TestSuppliedValuesBeatInference(t *testing.T) {
	e := setup(t)
	artist := newArtist(t, e, "Nova")
	album := newAlbum(t, e, artist.ID, "First Light")
	locator := e.audio(t, "dusk.m4a", &media.Metadata{
		Format:     ptr(data.FormatFLAC),
		DurationMS: ptr(int64(187000)),
	})

	track, err := e.svc.CreateTrack(ctx, data.TrackInput{
		Title:      "Dusk",
		AlbumID:    album.ID,
		DurationMS: 200000,
		AudioFiles: []data.AudioFileInput{
			{Quality: data.QualityHigh, Format: data.FormatAAC, StorageURL: locator, DurationMS: ptr(int64(199000))},
			{Quality: data.QualityLow, StorageURL: "https://cdn.example.com/dusk.mp3"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(200000), track.DurationMS)
	require.Len(t, track.AudioFiles, 2)

	low, high := track.AudioFiles[0], track.AudioFiles[1]
	assert.Equal(t, data.QualityLow, low.Quality)
	assert.Equal(t, data.FormatMP3, low.Format)
	assert.Equal(t, int64(data.DefaultChannels), low.Channels)
	assert.Nil(t, low.DurationMS, "remote files are not inspected")

	assert.Equal(t, data.FormatAAC, high.Format, "a chosen format is never replaced")
	assert.Equal(t, int64(199000), *high.DurationMS)
	assert.Equal(t, int64(data.DefaultChannels), high.Channels)
}

func TestCreateTrackValidation(t *testing.T) {
	e := setup(t)
	artist := newArtist(t, e, "Nova")
	album := newAlbum(t, e, artist.ID, "First Light")

	_, err := e.svc.CreateTrack(ctx, data.TrackInput{Title: "X", AlbumID: album.ID, Status: data.StatusPublished, DurationMS: 1000})
	kind(t, err, catalog.Validation)
	assert.Equal(t, "Published tracks require at least one audio file.", message(err))

	_, err = e.svc.CreateTrack(ctx, data.TrackInput{
		Title:      "X",
		AlbumID:    album.ID,
		Status:     data.StatusPublished,
		AudioFiles: []data.AudioFileInput{{Quality: data.QualityLow, StorageURL: "https://cdn.example.com/x.mp3"}},
	})
	kind(t, err, catalog.Validation)
	assert.Equal(t, "Published tracks require durationMs > 0.", message(err))

	for name, in := range map[string]data.TrackInput{
		"missing file":     {AudioFiles: []data.AudioFileInput{{Quality: data.QualityLow, StorageURL: "data/nope.mp3"}}},
		"escaping file":    {AudioFiles: []data.AudioFileInput{{Quality: data.QualityLow, StorageURL: "data/../catalog.db"}}},
		"bad quality":      {AudioFiles: []data.AudioFileInput{{Quality: "best", StorageURL: "https://cdn.example.com/x.mp3"}}},
		"bad channels":     {AudioFiles: []data.AudioFileInput{{Quality: data.QualityLow, StorageURL: "https://cdn.example.com/x.mp3", Channels: ptr(int64(6))}}},
		"primary role":     {ArtistLinks: []data.ArtistLinkInput{{ArtistID: artist.ID, Role: data.RolePrimary}}},
		"long lyrics code": {Lyrics: &data.LyricsInput{Content: "la", Language: "eng"}},
		"negative number":  {TrackNumber: -1},
	} {
		in.Title, in.AlbumID = "X", album.ID
		_, err := e.svc.CreateTrack(ctx, in)
		kind(t, err, catalog.Validation)
		assert.NotEmpty(t, message(err), name)
	}

	_, err = e.svc.CreateTrack(ctx, data.TrackInput{Title: "X", AlbumID: "nope"})
	kind(t, err, catalog.Reference)

	_, err = e.svc.CreateTrack(ctx, data.TrackInput{Title: "X", AlbumID: album.ID, PrimaryArtistID: "nope"})
	kind(t, err, catalog.Reference)

	got, err := e.store.FetchAlbum(ctx, album.ID)
	require.NoError(t, err)
	assert.Zero(t, got.TrackCount)
}

func TestTrackArtistsAndLyrics(t *testing.T) {
	e := setup(t)
	nova := newArtist(t, e, "Nova")
	guest := newArtist(t, e, "Guest")
	producer := newArtist(t, e, "Producer")
	album := newAlbum(t, e, nova.ID, "First Light")

	track, err := e.svc.CreateTrack(ctx, data.TrackInput{
		Title:   "Dawn",
		AlbumID: album.ID,
		ArtistLinks: []data.ArtistLinkInput{
			{ArtistID: guest.ID, DisplayOrder: 1},
			{ArtistID: nova.ID, Role: data.RoleFeatured},
			{ArtistID: producer.ID, Role: data.RoleProducer, DisplayOrder: 2},
		},
		Lyrics: &data.LyricsInput{Content: "la la", Language: "FR"},
	})
	require.NoError(t, err)
	require.Len(t, track.ArtistLinks, 3)
	assert.Equal(t, data.TrackArtist{TrackID: track.ID, ArtistID: nova.ID, Role: data.RolePrimary}, track.ArtistLinks[0])
	assert.Equal(t, data.TrackArtist{TrackID: track.ID, ArtistID: guest.ID, Role: data.RoleFeatured, DisplayOrder: 1}, track.ArtistLinks[1])
	assert.Equal(t, data.RoleProducer, track.ArtistLinks[2].Role)
	require.NotNil(t, track.Lyrics)
	assert.Equal(t, "fr", track.Lyrics.Language)

	// Changing the primary artist keeps the secondary links.
	moved, err := e.svc.UpdateTrack(ctx, track.ID, data.TrackUpdate{PrimaryArtistID: data.Set(guest.ID)})
	require.NoError(t, err)
	assert.Equal(t, guest.ID, moved.PrimaryArtistID)
	require.Len(t, moved.ArtistLinks, 2)
	assert.Equal(t, data.TrackArtist{TrackID: track.ID, ArtistID: guest.ID, Role: data.RolePrimary}, moved.ArtistLinks[0])
	assert.Equal(t, producer.ID, moved.ArtistLinks[1].ArtistID)

	cleared, err := e.svc.UpdateTrack(ctx, track.ID, data.TrackUpdate{ClearLyrics: true})
	require.NoError(t, err)
	assert.Nil(t, cleared.Lyrics)

	relinked, err := e.svc.UpdateTrack(ctx, track.ID, data.TrackUpdate{ArtistLinks: data.Set([]data.ArtistLinkInput{})})
	require.NoError(t, err)
	assert.Len(t, relinked.ArtistLinks, 1)
}

func TestUpdateTrackAudio(t *testing.T) {
	e := setup(t)
	artist := newArtist(t, e, "Nova")
	album := newAlbum(t, e, artist.ID, "First Light")
	track, err := e.svc.CreateTrack(ctx, data.TrackInput{
		Title:   "Dawn",
		AlbumID: album.ID,
		AudioFiles: []data.AudioFileInput{
			{Quality: data.QualityLow, StorageURL: "https://cdn.example.com/low.mp3"},
		},
	})
	require.NoError(t, err)
	assert.Zero(t, track.DurationMS)

	locator := e.audio(t, "dawn.ogg", &media.Metadata{Format: ptr(data.FormatOGG), DurationMS: ptr(int64(187000))})
	merged, err := e.svc.UpdateTrack(ctx, track.ID, data.TrackUpdate{
		AudioFiles: data.Set([]data.AudioFileInput{{Quality: data.QualityHigh, StorageURL: locator}}),
	})
	require.NoError(t, err)
	require.Len(t, merged.AudioFiles, 2)
	assert.Equal(t, data.FormatOGG, merged.AudioFiles[1].Format)
	assert.Equal(t, int64(187000), merged.DurationMS, "a track without a duration takes it from its audio")

	replaced, err := e.svc.UpdateTrack(ctx, track.ID, data.TrackUpdate{
		AudioFiles:        data.Set([]data.AudioFileInput{{Quality: data.QualityLossless, StorageURL: "s3://bucket/dawn.flac", Format: data.FormatFLAC}}),
		ReplaceAudioFiles: true,
		DurationMS:        data.Set(int64(190000)),
		Status:            data.Set(data.StatusPublished),
	})
	require.NoError(t, err)
	require.Len(t, replaced.AudioFiles, 1)
	assert.Equal(t, data.QualityLossless, replaced.AudioFiles[0].Quality)
	assert.Equal(t, int64(190000), replaced.DurationMS)
	assert.NotNil(t, replaced.PublishedAt)

	_, err = e.svc.UpdateTrack(ctx, track.ID, data.TrackUpdate{
		AudioFiles:        data.Set([]data.AudioFileInput{}),
		ReplaceAudioFiles: true,
	})
	kind(t, err, catalog.Validation)
	assert.Equal(t, "Published tracks require at least one audio file.", message(err))
}

func TestReplacingAudioTakesItsDuration(t *testing.T) {
	e := setup(t)
	artist := newArtist(t, e, "Nova")
	album := newAlbum(t, e, artist.ID, "First Light")
	track, err := e.svc.CreateTrack(ctx, data.TrackInput{
		Title:      "Dawn",
		AlbumID:    album.ID,
		DurationMS: 120000,
		AudioFiles: []data.AudioFileInput{
			{Quality: data.QualityLow, StorageURL: "https://cdn.example.com/low.mp3"},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, int64(120000), track.DurationMS)

	locator := e.audio(t, "dawn.flac", &media.Metadata{Format: ptr(data.FormatFLAC), DurationMS: ptr(int64(187000))})
	replaced, err := e.svc.UpdateTrack(ctx, track.ID, data.TrackUpdate{
		AudioFiles:        data.Set([]data.AudioFileInput{{Quality: data.QualityLossless, StorageURL: locator}}),
		ReplaceAudioFiles: true,
	})
	require.NoError(t, err)
	require.Len(t, replaced.AudioFiles, 1)
	assert.Equal(t, int64(187000), replaced.DurationMS)

	renamed, err := e.svc.UpdateTrack(ctx, track.ID, data.TrackUpdate{Title: data.Set("Dusk")})
	require.NoError(t, err)
	assert.Equal(t, int64(187000), renamed.DurationMS, "updates without audio keep the stored duration")
}

func TestMoveTrackBetweenAlbums(t *testing.T) {
	e := setup(t)
	artist := newArtist(t, e, "Nova")
	first := newAlbum(t, e, artist.ID, "First")
	second := newAlbum(t, e, artist.ID, "Second")

	var ids []string
	for _, title := range []string{"One", "Two"} {
		tr, err := e.svc.CreateTrack(ctx, data.TrackInput{Title: title, AlbumID: first.ID})
		require.NoError(t, err)
		ids = append(ids, tr.ID)
	}

	moved, err := e.svc.UpdateTrack(ctx, ids[0], data.TrackUpdate{AlbumID: data.Set(second.ID)})
	require.NoError(t, err)
	assert.Equal(t, second.ID, moved.AlbumID)
	assert.Equal(t, "Second", moved.AlbumTitle)

	for id, want := range map[string]int64{first.ID: 1, second.ID: 1} {
		got, err := e.store.FetchAlbum(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, got.TrackCount)
	}

	_, err = e.svc.UpdateTrack(ctx, ids[1], data.TrackUpdate{AlbumID: data.Set("nope")})
	kind(t, err, catalog.Reference)

	got, err := e.store.FetchAlbum(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), got.TrackCount)

	_, err = e.svc.UpdateTrack(ctx, "nope", data.TrackUpdate{Title: data.Set("X")})
	kind(t, err, catalog.NotFound)
	assert.Equal(t, "Track not found.", message(err))
}

func TestInspectAudioLocator(t *testing.T) {
	e := setup(t)
	locator := e.audio(t, "dawn.mp3", &media.Metadata{DurationMS: ptr(int64(187000))})

	md, err := e.svc.InspectAudioLocator(ctx, locator)
	require.NoError(t, err)
	assert.Equal(t, int64(187000), *md.DurationMS)

	for _, locator := range []string{"https://cdn.example.com/a.mp3", "data/missing.mp3", "/etc/passwd"} {
		_, err := e.svc.InspectAudioLocator(ctx, locator)
		kind(t, err, catalog.Validation)
		assert.Equal(t, "Metadata inference is only available for readable local data/* files.", message(err))
	}
}

func TestListAndShow(t *testing.T) {
	e := setup(t)
	artist := newArtist(t, e, "Nova")
	album := newAlbum(t, e, artist.ID, "First Light")

	_, err := e.svc.ListArtists(ctx, db.ListQuery{Limit: 500})
	kind(t, err, catalog.Validation)
	_, err = e.svc.ListAlbums(ctx, db.ListQuery{Offset: -1})
	kind(t, err, catalog.Validation)
	_, err = e.svc.ListTracks(ctx, db.ListQuery{Statuses: []data.Status{"nope"}})
	kind(t, err, catalog.Validation)

	page, err := e.svc.ListAlbums(ctx, db.ListQuery{ArtistID: artist.ID, Text: " light "})
	require.NoError(t, err)
	require.Len(t, page.Items, 1)
	assert.Equal(t, album.ID, page.Items[0].ID)

	view, err := e.svc.Show(ctx, "album:nova/first-light")
	require.NoError(t, err)
	assert.Equal(t, album.ID, view.(*data.AlbumView).ID)

	_, err = e.svc.Show(ctx, "artist:nobody")
	kind(t, err, catalog.NotFound)
}

func TestAddGenre(t *testing.T) {
	e := setup(t)
	a, err := e.svc.AddGenre(ctx, "Dream Pop", 2)
	require.NoError(t, err)
	assert.Equal(t, "dream-pop", a.Slug)

	b, err := e.svc.AddGenre(ctx, "Dream Pop", 5)
	require.NoError(t, err)
	assert.Equal(t, a.ID, b.ID)

	_, err = e.svc.AddGenre(ctx, " ", 0)
	kind(t, err, catalog.Validation)

	genres, err := e.svc.Genres(ctx)
	require.NoError(t, err)
	assert.Len(t, genres, 1)
}

func TestOperationsAreLogged(t *testing.T) {
	e := setup(t)
	newArtist(t, e, "Nova")
	entries := e.logs.FilterMessage("created artist").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "nova", entries[0].ContextMap()["slug"])
}
