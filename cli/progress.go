package main

import (
	"context"
	"fmt"
	"strings"

	"github.com/amonks/catalog/data"
	"github.com/amonks/catalog/db"
	"github.com/amonks/catalog/subcmd"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

func progress(ctx context.Context, db *db.DB, args []string) error {
	subcmd := subcmd.New("progress", "report how much of the catalog is published")
	if err := subcmd.Parse(args); err != nil {
		return fmt.Errorf("flag parsing err: %w", err)
	}

	genres, err := db.CountGenres(ctx)
	if err != nil {
		return err
	}
	humanPrinter.Printf("GENRES\n  %d\tknown\n\n", genres)

	for _, table := range []string{"artists", "albums", "tracks"} {
		counts, err := db.CountByStatus(ctx, table)
		if err != nil {
			return err
		}
		printSection(table, counts)
	}
	return nil
}

var humanPrinter = message.NewPrinter(language.English)

func printSection(name string, counts map[data.Status]int) {
	known := 0
	for _, n := range counts {
		known += n
	}
	humanPrinter.Printf("%s\n", strings.ToUpper(name))
	humanPrinter.Printf("  %d\tknown\n", known)
	for _, status := range data.Statuses {
		if known == 0 {
			humanPrinter.Printf("  %d\t%s\n", counts[status], status)
			continue
		}
		humanPrinter.Printf("  %d\t%s (%.2f%%)\n", counts[status], status, 100.0*float64(counts[status])/float64(known))
	}
	humanPrinter.Printf("\n")
}
