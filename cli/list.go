package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/amonks/catalog/catalog"
	"github.com/amonks/catalog/data"
	"github.com/amonks/catalog/db"
	"github.com/amonks/catalog/setflag"
	"github.com/amonks/catalog/subcmd"
)

func list(ctx context.Context, svc *catalog.Service, args []string) error {
	subcmd := subcmd.New("list", "list artists, albums or tracks, most recently updated first")
	subcmd.SetArg("kind", "string", "'artists', 'albums' or 'tracks' (required)")
	statuses := setflag.New("draft", "review", "published", "archived")
	subcmd.Var(statuses, "status", "only list entities in these statuses, like 'draft,review'")
	var (
		query    = subcmd.String("q", "", "only list entities whose name, title or slug contains this")
		artistID = subcmd.String("artist", "", "only list albums or tracks of this artist id")
		albumID  = subcmd.String("album", "", "only list tracks on this album id")
		limit    = subcmd.Int("limit", db.DefaultLimit, "number of entities to return")
		offset   = subcmd.Int("offset", 0, "number of entities to skip")
	)
	if err := subcmd.Parse(args); err != nil {
		return fmt.Errorf("flag parsing err: %w", err)
	}
	kind, err := subcmd.Arg()
	if err != nil {
		return err
	}

	q := db.ListQuery{
		Text:     *query,
		ArtistID: *artistID,
		AlbumID:  *albumID,
		Limit:    *limit,
		Offset:   *offset,
	}
	for _, s := range statuses.List() {
		q.Statuses = append(q.Statuses, data.Status(s))
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	defer tw.Flush()

	switch kind {
	case "artists":
		page, err := svc.ListArtists(ctx, q)
		if err != nil {
			return err
		}
		row(tw, "id", "status", "slug", "name")
		for _, a := range page.Items {
			row(tw, a.ID, string(a.Status), a.Slug, a.Name)
		}
		footer(tw, len(page.Items), page.Total, page.Offset)

	case "albums":
		page, err := svc.ListAlbums(ctx, q)
		if err != nil {
			return err
		}
		row(tw, "id", "status", "artist", "slug", "title", "tracks")
		for _, a := range page.Items {
			row(tw, a.ID, string(a.Status), a.ArtistName, a.Slug, a.Title, fmt.Sprint(a.TrackCount))
		}
		footer(tw, len(page.Items), page.Total, page.Offset)

	case "tracks":
		page, err := svc.ListTracks(ctx, q)
		if err != nil {
			return err
		}
		row(tw, "id", "status", "artist", "album", "disc.track", "title", "audio")
		for _, t := range page.Items {
			tiers := make([]string, len(t.AudioFiles))
			for i, f := range t.AudioFiles {
				tiers[i] = string(f.Quality)
			}
			row(tw, t.ID, string(t.Status), t.PrimaryArtistName, t.AlbumTitle,
				fmt.Sprintf("%d.%d", t.DiscNumber, t.TrackNumber), t.Title, strings.Join(tiers, ","))
		}
		footer(tw, len(page.Items), page.Total, page.Offset)

	default:
		return fmt.Errorf("unknown kind '%s', want artists, albums or tracks", kind)
	}
	return nil
}

func row(tw *tabwriter.Writer, cols ...string) {
	fmt.Fprintln(tw, strings.Join(cols, "\t"))
}

func footer(tw *tabwriter.Writer, shown int, total int64, offset int) {
	fmt.Fprintf(tw, "\n%d-%d of %d\n", min(offset+1, offset+shown), offset+shown, total)
}
