package cli

import (
	"context"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/lzfix/internal/fixture"
	"github.com/calvinalkan/lzfix/internal/fs"
)

var errNoFixtures = errors.New("no fixtures to verify")

// VerifyCmd returns the verify command.
func VerifyCmd(fsys fs.FS, dir string) *Command {
	fset := flag.NewFlagSet("verify", flag.ContinueOnError)

	return &Command{
		Flags: fset,
		Usage: "verify [name ...]",
		Short: "Verify fixtures round-trip",
		Long: `Verify fixtures against the round-trip law.

Each fixture's .lz4 must decode - with its dictionary and the .dat length -
to the .dat bytes exactly, under both the internal decoder and an
independent reference decoder, recompression must reproduce the .lz4
byte-for-byte, and manifest digests must match. With no arguments every
fixture in the directory is verified.`,
		Exec: func(_ context.Context, o *IO, args []string) error {
			return execVerify(o, fsys, dir, args)
		},
	}
}

func execVerify(o *IO, fsys fs.FS, dir string, names []string) error {
	if len(names) == 0 {
		all, err := fixture.List(fsys, dir)
		if err != nil {
			return err
		}

		if len(all) == 0 {
			return errNoFixtures
		}

		names = all
	}

	failed := 0

	for _, name := range names {
		if err := fixture.Verify(fsys, dir, name); err != nil {
			failed++

			o.ErrPrintln("FAIL", name+":", err)

			continue
		}

		o.Println("ok", name)
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d fixtures failed verification", failed, len(names))
	}

	return nil
}
