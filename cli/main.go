// this program edits a music catalog kept in a sqlite3 database file:
// artists, their albums, and the tracks on them, along with the audio
// files backing each track.
//
// see db/schema.sql for info about the database.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/amonks/catalog/catalog"
	"github.com/amonks/catalog/config"
	"github.com/amonks/catalog/db"
	"github.com/amonks/catalog/logging"
	"github.com/amonks/catalog/media"
	"github.com/amonks/catalog/sigctx"
	"go.uber.org/zap"
)

func main() {
	if err := run(); err != nil && !errors.Is(err, context.Canceled) && !errors.Is(err, flag.ErrHelp) {
		var cerr *catalog.Error
		if errors.As(err, &cerr) {
			fmt.Fprintf(os.Stderr, "%s error: %s\n", cerr.Kind, cerr.Message)
		} else {
			fmt.Fprintln(os.Stderr, err)
		}
		os.Exit(1)
	}
}

var usage = strings.TrimSpace(`
usage: catalog $cmd
valid $cmd are
  'create-artist', 'update-artist',
  'create-album', 'update-album',
  'create-track', 'update-track',
  'inspect', 'show', 'list', 'genres', 'add-genre', 'progress'
set CATALOG_CONFIG to read settings from a yaml or toml file
for help: catalog $cmd -help
`)

func run() error {
	ctx := sigctx.New()

	if len(os.Args) < 2 {
		return errors.New(usage)
	}
	cmd, args := os.Args[1], os.Args[2:]

	cfg, err := config.Load(os.Getenv("CATALOG_CONFIG"))
	if err != nil {
		return err
	}
	log, err := logging.New(cfg.LogLevel, cfg.LogFormat)
	if err != nil {
		return err
	}
	defer log.Sync()

	store, err := db.Open(cfg, log)
	if err != nil {
		return err
	}
	defer store.Close()

	svc := catalog.New(cfg, store, media.NewInspector(cfg, log), log)
	log.Debug("running", zap.String("cmd", cmd), zap.String("database", cfg.DatabasePath))

	switch cmd {
	case "create-artist":
		return create(ctx, cmd, "create an artist from a JSON payload", args, svc.CreateArtist)
	case "update-artist":
		return update(ctx, cmd, "update an artist from a JSON payload of the fields to change", args, svc.UpdateArtist)
	case "create-album":
		return create(ctx, cmd, "create an album from a JSON payload", args, svc.CreateAlbum)
	case "update-album":
		return update(ctx, cmd, "update an album from a JSON payload of the fields to change", args, svc.UpdateAlbum)
	case "create-track":
		return create(ctx, cmd, "create a track from a JSON payload", args, svc.CreateTrack)
	case "update-track":
		return update(ctx, cmd, "update a track from a JSON payload of the fields to change", args, svc.UpdateTrack)

	case "inspect":
		return inspect(ctx, svc, args)

	case "show":
		return show(ctx, svc, args)

	case "list":
		return list(ctx, svc, args)

	case "genres":
		return genres(ctx, svc, args)

	case "add-genre":
		return addGenre(ctx, svc, args)

	case "progress":
		return progress(ctx, store, args)

	default:
		return fmt.Errorf("unknown cmd: '%s'\n%s", cmd, usage)
	}
}
