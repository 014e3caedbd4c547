package main

import (
	"context"
	"fmt"

	"github.com/amonks/catalog/catalog"
	"github.com/amonks/catalog/subcmd"
)

func inspect(ctx context.Context, svc *catalog.Service, args []string) error {
	subcmd := subcmd.New("inspect", "read technical metadata from a local audio file")
	subcmd.SetArg("locator", "string", "storage locator like data/albums/dawn.flac (required)")
	if err := subcmd.Parse(args); err != nil {
		return fmt.Errorf("flag parsing err: %w", err)
	}
	locator, err := subcmd.Arg()
	if err != nil {
		return err
	}

	md, err := svc.InspectAudioLocator(ctx, locator)
	if err != nil {
		return err
	}
	return printJSON(md)
}

func show(ctx context.Context, svc *catalog.Service, args []string) error {
	subcmd := subcmd.New("show", "print one artist, album or track")
	subcmd.SetArg("ref", "string", "artist:<id or slug>, album:<id>, album:<artist slug>/<album slug> or track:<id> (required)")
	if err := subcmd.Parse(args); err != nil {
		return fmt.Errorf("flag parsing err: %w", err)
	}
	ref, err := subcmd.Arg()
	if err != nil {
		return err
	}

	view, err := svc.Show(ctx, ref)
	if err != nil {
		return err
	}
	return printJSON(view)
}
