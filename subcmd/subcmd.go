// Package subcmd wraps flag.FlagSet with a usage message that names the
// subcommand and its positional argument.
package subcmd

import (
	"flag"
	"fmt"
	"io"
	"os"
)

func New(name, doc string) *Subcommand {
	sc := &Subcommand{
		FlagSet: flag.NewFlagSet(name, flag.ContinueOnError),
		name:    name,
		doc:     doc,
	}
	sc.FlagSet.SetOutput(os.Stderr)
	sc.FlagSet.Usage = func() { sc.PrintUsage(sc.FlagSet.Output()) }
	return sc
}

type Subcommand struct {
	*flag.FlagSet
	name string
	doc  string
	arg  *arg
}

type arg struct {
	name     string
	typename string
	usage    string
}

func (sc *Subcommand) SetArg(name, typname, usage string) *Subcommand {
	sc.arg = &arg{name, typname, usage}
	return sc
}

func (sc *Subcommand) PrintUsage(w io.Writer) {
	argSuffix := ""
	if sc.arg != nil {
		argSuffix = fmt.Sprintf(" <%s>", sc.arg.name)
	}
	fmt.Fprintf(w, "\n%s\n\n", sc.doc)
	fmt.Fprintf(w, "  catalog %s [flags]%s\n\n", sc.name, argSuffix)
	fmt.Fprintf(w, "flags:\n")
	sc.FlagSet.SetOutput(w)
	sc.FlagSet.PrintDefaults()
	if sc.arg != nil {
		fmt.Fprintf(w, "  <%s> %s\n", sc.arg.name, sc.arg.typename)
		fmt.Fprintf(w, "  \t%s\n", sc.arg.usage)
	}
}

// Arg returns the positional argument, failing if there is not exactly
// one.
func (sc *Subcommand) Arg() (string, error) {
	if sc.arg == nil {
		return "", fmt.Errorf("%s takes no argument", sc.name)
	}
	if sc.NArg() != 1 {
		return "", fmt.Errorf("%s takes exactly one <%s>, got %d arguments", sc.name, sc.arg.name, sc.NArg())
	}
	return sc.FlagSet.Arg(0), nil
}
