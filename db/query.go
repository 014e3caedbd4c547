package db

import (
	"context"
	"fmt"
	"slices"

	"github.com/amonks/catalog/data"
	"gorm.io/gorm"
)

// FetchArtist returns the artist with its genre ids.
func (db *DB) FetchArtist(ctx context.Context, id string) (*data.ArtistView, error) {
	var view *data.ArtistView
	err := db.snapshot(ctx, func(g *gorm.DB) (err error) {
		view, err = fetchArtist(g, id)
		return err
	})
	return view, err
}

// FetchAlbum returns the album with its artist name and genre ids.
func (db *DB) FetchAlbum(ctx context.Context, id string) (*data.AlbumView, error) {
	var view *data.AlbumView
	err := db.snapshot(ctx, func(g *gorm.DB) (err error) {
		view, err = fetchAlbum(g, id)
		return err
	})
	return view, err
}

// FetchTrack returns the track with everything hanging off of it: genre
// ids, artist links, audio files and lyrics.
func (db *DB) FetchTrack(ctx context.Context, id string) (*data.TrackView, error) {
	var view *data.TrackView
	err := db.snapshot(ctx, func(g *gorm.DB) (err error) {
		view, err = fetchTrack(g, id)
		return err
	})
	return view, err
}

// Within a transaction, reads see the transaction's own writes.

func (t *Tx) FetchArtist(id string) (*data.ArtistView, error) { return fetchArtist(t.tx, id) }
func (t *Tx) FetchAlbum(id string) (*data.AlbumView, error)   { return fetchAlbum(t.tx, id) }
func (t *Tx) FetchTrack(id string) (*data.TrackView, error)   { return fetchTrack(t.tx, id) }

func fetchArtist(g *gorm.DB, id string) (*data.ArtistView, error) {
	var artist data.Artist
	if err := g.
		Where("id = ?", id).
		First(&artist).
		Error; err != nil {
		return nil, fmt.Errorf("error getting artist '%s': %w", id, notFound(err))
	}

	var genres []string
	if err := g.
		Table("artist_genres").
		Where("artist_id = ?", id).
		Order("genre_id").
		Pluck("genre_id", &genres).
		Error; err != nil {
		return nil, fmt.Errorf("error getting genres for artist '%s': %w", id, err)
	}
	artist.GenreIDs = genres

	return artist.View(), nil
}

func fetchAlbum(g *gorm.DB, id string) (*data.AlbumView, error) {
	var album data.Album
	if err := g.
		Where("id = ?", id).
		First(&album).
		Error; err != nil {
		return nil, fmt.Errorf("error getting album '%s': %w", id, notFound(err))
	}

	var names []string
	if err := g.
		Table("artists").
		Where("id = ?", album.ArtistID).
		Pluck("name", &names).
		Error; err != nil {
		return nil, fmt.Errorf("error getting artist name for album '%s': %w", id, err)
	}
	if len(names) > 0 {
		album.ArtistName = names[0]
	}

	var genres []string
	if err := g.
		Table("album_genres").
		Where("album_id = ?", id).
		Order("genre_id").
		Pluck("genre_id", &genres).
		Error; err != nil {
		return nil, fmt.Errorf("error getting genres for album '%s': %w", id, err)
	}
	album.GenreIDs = genres

	return album.View(), nil
}

func fetchTrack(g *gorm.DB, id string) (*data.TrackView, error) {
	var track data.Track
	if err := g.
		Where("id = ?", id).
		First(&track).
		Error; err != nil {
		return nil, fmt.Errorf("error getting track '%s': %w", id, notFound(err))
	}

	var titles []string
	if err := g.
		Table("albums").
		Where("id = ?", track.AlbumID).
		Pluck("title", &titles).
		Error; err != nil {
		return nil, fmt.Errorf("error getting album title for track '%s': %w", id, err)
	}
	if len(titles) > 0 {
		track.AlbumTitle = titles[0]
	}

	var names []string
	if err := g.
		Table("artists").
		Where("id = ?", track.PrimaryArtistID).
		Pluck("name", &names).
		Error; err != nil {
		return nil, fmt.Errorf("error getting primary artist name for track '%s': %w", id, err)
	}
	if len(names) > 0 {
		track.PrimaryArtistName = names[0]
	}

	var genres []string
	if err := g.
		Table("track_genres").
		Where("track_id = ?", id).
		Order("genre_id").
		Pluck("genre_id", &genres).
		Error; err != nil {
		return nil, fmt.Errorf("error getting genres for track '%s': %w", id, err)
	}
	track.GenreIDs = genres

	if err := g.
		Where("track_id = ?", id).
		Order("case role when 'primary' then 0 else 1 end, display_order, artist_id").
		Find(&track.ArtistLinks).
		Error; err != nil {
		return nil, fmt.Errorf("error getting artist links for track '%s': %w", id, err)
	}

	if err := g.
		Where("track_id = ?", id).
		Find(&track.AudioFiles).
		Error; err != nil {
		return nil, fmt.Errorf("error getting audio files for track '%s': %w", id, err)
	}
	slices.SortFunc(track.AudioFiles, func(a, b data.AudioFile) int {
		return slices.Index(data.Qualities, a.Quality) - slices.Index(data.Qualities, b.Quality)
	})

	var lyrics []data.Lyrics
	if err := g.
		Where("track_id = ?", id).
		Limit(1).
		Find(&lyrics).
		Error; err != nil {
		return nil, fmt.Errorf("error getting lyrics for track '%s': %w", id, err)
	}
	if len(lyrics) > 0 {
		track.Lyrics = &lyrics[0]
	}

	return track.View(), nil
}
