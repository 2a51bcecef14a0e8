package command

import (
	"flag"

	"github.com/mitchellh/cli"
)

// FlagSetFlags is used to enable parsing of different flag groups.
type FlagSetFlags uint

const (
	FlagSetNone   FlagSetFlags = 0
	FlagSetClient FlagSetFlags = 1 << 0
)

// Meta contains the meta-options and functionality that nearly every
// command inherits.
type Meta struct {
	UI cli.Ui
}

// FlagSet returns a FlagSet with the common flags that every command
// accepts.
func (m *Meta) FlagSet(name string, fs FlagSetFlags) *flag.FlagSet {
	f := flag.NewFlagSet(name, flag.ContinueOnError)

	if fs&FlagSetClient != 0 {
		// Client flags are merged in by each command's own parseFlags,
		// this group exists so future client-wide flags have a home.
	}

	return f
}
