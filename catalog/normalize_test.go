package catalog

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/amonks/catalog/config"
	"github.com/amonks/catalog/data"
	"github.com/amonks/catalog/db"
	"github.com/amonks/catalog/media"
	"github.com/amonks/catalog/publish"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestProse(t *testing.T) {
	for input, expected := range map[string]string{
		"  plain text ":                        "plain text",
		"a < b":                                "a < b",
		"<p>One</p><p>Two</p>":                 "One\n\nTwo",
		"line<br>break":                        "line\nbreak",
		"<div>x<script>alert(1)</script></div>": "x",
		"<ul><li>a</li><li>b</li></ul>":        "a\n\nb",
	} {
		got := prose(input)
		if assert.NotNil(t, got, input) {
			assert.Equal(t, expected, *got, input)
		}
	}
	assert.Nil(t, prose("   "))
	assert.Nil(t, prose("<p> </p>"))
}

func TestStorageError(t *testing.T) {
	assert.Nil(t, storageError(nil, "x"))

	own := invalid("bad")
	assert.Same(t, own, storageError(fmt.Errorf("wrapped: %w", own), "x"))

	err := storageError(&publish.Error{Field: "bio", Message: "Published artists require a non-empty bio."}, "x")
	assert.Equal(t, Validation, KindOf(err))
	assert.Equal(t, "Published artists require a non-empty bio.", err.(*Error).Message)

	err = storageError(&media.LocatorError{Locator: "ftp://x", Reason: "nope"}, "x")
	assert.Equal(t, Validation, KindOf(err))

	err = storageError(errors.New("disk on fire"), "Could not update track.")
	assert.Equal(t, Internal, KindOf(err))
	assert.Equal(t, "Could not update track.", err.(*Error).Message)
	assert.ErrorIs(t, err, ErrInternal)
	assert.NotErrorIs(t, err, ErrValidation)

	assert.Equal(t, NotFound, KindOf(exists("Track", "t1", fmt.Errorf("error getting track: %w", db.ErrNotFound))))
	assert.Equal(t, Internal, KindOf(errors.New("plain")))
}

func TestLyrics(t *testing.T) {
	l, err := lyrics(&data.LyricsInput{Content: "la", Language: " DE "})
	require.NoError(t, err)
	assert.Equal(t, "de", l.Language)

	l, err = lyrics(&data.LyricsInput{Content: "la"})
	require.NoError(t, err)
	assert.Equal(t, data.DefaultLyricsLanguage, l.Language)

	for _, in := range []data.LyricsInput{
		{Content: " "},
		{Content: "la", Language: "e1"},
		{Content: "la", Language: "fra"},
	} {
		_, err := lyrics(&in)
		assert.ErrorIs(t, err, ErrValidation, in)
	}

	l, err = lyrics(nil)
	assert.NoError(t, err)
	assert.Nil(t, l)
}

func TestArtistLinks(t *testing.T) {
	links, err := artistLinks([]data.ArtistLinkInput{{ArtistID: " a "}, {ArtistID: "b", Role: data.RoleRemixer}})
	require.NoError(t, err)
	assert.Equal(t, []data.ArtistLinkInput{
		{ArtistID: "a", Role: data.RoleFeatured},
		{ArtistID: "b", Role: data.RoleRemixer},
	}, links)

	for _, link := range []data.ArtistLinkInput{
		{ArtistID: ""},
		{ArtistID: "a", Role: "drummer"},
		{ArtistID: "a", Role: data.RolePrimary},
		{ArtistID: "a", DisplayOrder: -1},
	} {
		_, err := artistLinks([]data.ArtistLinkInput{link})
		assert.ErrorIs(t, err, ErrValidation, link)
	}
}

func ms(v int64) *int64 { return &v }

func TestBackfill(t *testing.T) {
	flac, mp3 := data.FormatFLAC, data.FormatMP3
	md := &media.Metadata{
		Format:         &flac,
		DurationMS:     ms(1000),
		BitrateKbps:    ms(320),
		Channels:       ms(2),
		FileSizeBytes:  10,
		ChecksumSHA256: "ff",
	}

	file := data.AudioFile{Format: data.DefaultFormat, BitrateKbps: ms(128)}
	backfill(&file, md)
	assert.Equal(t, data.FormatFLAC, file.Format)
	assert.Equal(t, int64(128), *file.BitrateKbps)
	assert.Equal(t, int64(1000), *file.DurationMS)
	assert.Equal(t, int64(2), file.Channels)
	assert.Equal(t, int64(10), *file.FileSizeBytes)
	assert.Equal(t, "ff", *file.ChecksumSHA256)

	file = data.AudioFile{Format: data.FormatOpus}
	backfill(&file, md)
	assert.Equal(t, data.FormatOpus, file.Format)

	file = data.AudioFile{Format: data.DefaultFormat}
	backfill(&file, &media.Metadata{Format: &mp3, Channels: ms(6)})
	assert.Equal(t, data.FormatMP3, file.Format)
	assert.Zero(t, file.Channels, "unstorable channel counts are not copied")
}

func TestMergeAudio(t *testing.T) {
	stored := []data.AudioFile{
		{Quality: data.QualityLossless, StorageURL: "old-lossless"},
		{Quality: data.QualityLow, StorageURL: "old-low"},
	}
	files := []data.AudioFile{{Quality: data.QualityLow, StorageURL: "new-low"}}

	merged := mergeAudio(stored, files, false)
	require.Len(t, merged, 2)
	assert.Equal(t, "new-low", merged[0].StorageURL)
	assert.Equal(t, "old-lossless", merged[1].StorageURL)

	replaced := mergeAudio(stored, files, true)
	require.Len(t, replaced, 1)
	assert.Equal(t, "new-low", replaced[0].StorageURL)
}

func TestInferDuration(t *testing.T) {
	audio := []data.AudioFile{{DurationMS: nil}, {DurationMS: ms(5000)}}
	for _, tc := range []struct {
		name     string
		supplied data.Field[int64]
		stored   int64
		first    int64
		want     int64
		ok       bool
	}{
		{"supplied wins", data.Set(int64(7000)), 0, 3000, 7000, true},
		{"supplied zero infers", data.Set(int64(0)), 9000, 3000, 3000, true},
		{"absent on empty infers", data.Field[int64]{}, 0, 3000, 3000, true},
		{"absent takes new audio", data.Field[int64]{}, 9000, 3000, 3000, true},
		{"absent matching new audio", data.Field[int64]{}, 3000, 3000, 3000, false},
		{"absent without audio keeps stored", data.Field[int64]{}, 9000, 0, 0, false},
		{"falls back to stored tiers", data.Field[int64]{}, 0, 0, 5000, true},
	} {
		got, ok := inferDuration(tc.supplied, tc.stored, tc.first, audio)
		assert.Equal(t, tc.ok, ok, tc.name)
		assert.Equal(t, tc.want, got, tc.name)
	}
}

type failingInspector struct {
	mu        sync.Mutex
	inspected []string
}

func (f *failingInspector) Classify(locator string) (media.Locator, error) {
	return media.Locator{Kind: media.Local, Raw: locator, Path: locator}, nil
}

func (f *failingInspector) CheckReference(string) error { return nil }

func (f *failingInspector) Inspect(path string) (*media.Metadata, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.inspected = append(f.inspected, path)
	return nil, errors.New("unreadable")
}

func TestAudioFilesStopsAfterFirstFailure(t *testing.T) {
	inspector := &failingInspector{}
	svc := New(config.Config{InspectWorkers: 1}, nil, inspector, zap.NewNop())

	var inputs []data.AudioFileInput
	for _, q := range data.Qualities {
		inputs = append(inputs, data.AudioFileInput{Quality: q, StorageURL: "data/" + string(q) + ".mp3"})
	}
	_, _, err := svc.audioFiles(context.Background(), inputs)
	require.Error(t, err)
	assert.Equal(t, Validation, KindOf(err))
	assert.Equal(t, []string{"data/" + string(data.Qualities[0]) + ".mp3"}, inspector.inspected)
}

func TestAudioFilesHonorsCancellation(t *testing.T) {
	inspector := &failingInspector{}
	svc := New(config.Config{InspectWorkers: 1}, nil, inspector, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err := svc.audioFiles(ctx, []data.AudioFileInput{{Quality: data.QualityLow, StorageURL: "data/low.mp3"}})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, inspector.inspected)
}

func TestTransitions(t *testing.T) {
	now := time.Now()
	p, a := transitions(data.StatusDraft, data.StatusPublished, now)
	assert.True(t, p.IsSet())
	assert.False(t, a.IsSet())

	p, a = transitions(data.StatusPublished, data.StatusPublished, now)
	assert.False(t, p.IsSet())
	assert.False(t, a.IsSet())

	p, a = transitions(data.StatusPublished, data.StatusArchived, now)
	assert.False(t, p.IsSet())
	assert.True(t, a.IsSet())

	p, a = transitions(data.StatusArchived, data.StatusDraft, now)
	assert.False(t, p.IsSet(), "leaving a status never clears its stamp")
	assert.False(t, a.IsSet())
}
