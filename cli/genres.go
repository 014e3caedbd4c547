package main

import (
	"context"
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/amonks/catalog/catalog"
	"github.com/amonks/catalog/subcmd"
)

func genres(ctx context.Context, svc *catalog.Service, args []string) error {
	subcmd := subcmd.New("genres", "list every genre")
	if err := subcmd.Parse(args); err != nil {
		return fmt.Errorf("flag parsing err: %w", err)
	}

	genres, err := svc.Genres(ctx)
	if err != nil {
		return err
	}
	if len(genres) == 0 {
		fmt.Println("no genres")
		return nil
	}

	tw := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	row(tw, "id", "slug", "name", "sort")
	for _, g := range genres {
		row(tw, g.ID, g.Slug, g.Name, fmt.Sprint(g.SortOrder))
	}
	return tw.Flush()
}

func addGenre(ctx context.Context, svc *catalog.Service, args []string) error {
	subcmd := subcmd.New("add-genre", "add a genre, or print the existing genre of the same name")
	subcmd.SetArg("name", "string", "genre name (required)")
	sortOrder := subcmd.Int64("sort", 0, "position of the genre in listings")
	if err := subcmd.Parse(args); err != nil {
		return fmt.Errorf("flag parsing err: %w", err)
	}

	genre, err := svc.AddGenre(ctx, strings.Join(subcmd.Args(), " "), *sortOrder)
	if err != nil {
		return err
	}
	return printJSON(genre)
}
