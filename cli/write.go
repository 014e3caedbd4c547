package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/amonks/catalog/subcmd"
)

func create[In, Out any](ctx context.Context, name, doc string, args []string, fn func(context.Context, In) (Out, error)) error {
	subcmd := subcmd.New(name, doc)
	file := subcmd.String("f", "-", "file holding the JSON payload, or - for stdin")
	if err := subcmd.Parse(args); err != nil {
		return fmt.Errorf("flag parsing err: %w", err)
	}

	var in In
	if err := readPayload(*file, &in); err != nil {
		return err
	}
	out, err := fn(ctx, in)
	if err != nil {
		return err
	}
	return printJSON(out)
}

func update[In, Out any](ctx context.Context, name, doc string, args []string, fn func(context.Context, string, In) (Out, error)) error {
	subcmd := subcmd.New(name, doc)
	subcmd.SetArg("id", "string", "id of the entity to update (required)")
	file := subcmd.String("f", "-", "file holding the JSON payload, or - for stdin")
	if err := subcmd.Parse(args); err != nil {
		return fmt.Errorf("flag parsing err: %w", err)
	}
	id, err := subcmd.Arg()
	if err != nil {
		return err
	}

	var in In
	if err := readPayload(*file, &in); err != nil {
		return err
	}
	out, err := fn(ctx, id, in)
	if err != nil {
		return err
	}
	return printJSON(out)
}

// readPayload decodes one JSON document from path into v. Unknown keys
// are an error so that typos do not silently do nothing.
func readPayload(path string, v any) error {
	var r io.Reader = os.Stdin
	if path != "-" {
		f, err := os.Open(path)
		if err != nil {
			return fmt.Errorf("error opening payload '%s': %w", path, err)
		}
		defer f.Close()
		r = f
	}
	dec := json.NewDecoder(r)
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("error decoding payload '%s': %w", path, err)
	}
	return nil
}

func printJSON(v any) error {
	json, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(json))
	return nil
}
