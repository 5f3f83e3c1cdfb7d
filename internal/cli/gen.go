package cli

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/lzfix/internal/fixture"
	"github.com/calvinalkan/lzfix/internal/fs"
)

var errSetExists = errors.New("fixture set already exists (use --force to regenerate)")

// GenCmd returns the gen command.
func GenCmd(fsys fs.FS, dir string) *Command {
	fset := flag.NewFlagSet("gen", flag.ContinueOnError)
	fset.Bool("force", false, "Overwrite an existing fixture set")

	return &Command{
		Flags: fset,
		Usage: "gen [--force]",
		Short: "Generate the builtin fixture set",
		Long: `Generate the builtin fixture set into the fixture directory.

Writes name.dat, name.dct (dictionary cases only) and name.lz4 per fixture,
plus a manifest with per-artifact digests. Refuses to touch a non-empty
fixture directory unless --force is given.`,
		Exec: func(_ context.Context, o *IO, args []string) error {
			force, _ := fset.GetBool("force")
			return execGen(o, fsys, dir, force, args)
		},
	}
}

func execGen(o *IO, fsys fs.FS, dir string, force bool, args []string) error {
	if len(args) > 0 {
		return fmt.Errorf("%w: %v", errUnexpectedArgs, args)
	}

	if err := fsys.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating fixture dir: %w", err)
	}

	// One generator at a time: a second gen racing this one could
	// interleave artifacts from different fixture sets.
	lock, err := fsys.Lock(filepath.Join(dir, ".gen"))
	if err != nil {
		return fmt.Errorf("locking fixture dir: %w", err)
	}
	defer lock.Close()

	existing, err := fixture.List(fsys, dir)
	if err != nil {
		return err
	}

	if len(existing) > 0 && !force {
		return errSetExists
	}

	manifest, err := fixture.LoadManifest(fsys, dir)
	if err != nil {
		return err
	}

	for _, fx := range fixture.Builtin() {
		if err := fixture.Write(fsys, dir, fx); err != nil {
			return err
		}

		files := []string{fx.Name + fixture.ExtData, fx.Name + fixture.ExtBlock}
		if len(fx.Dict) > 0 {
			files = append(files, fx.Name+fixture.ExtDict)
		} else {
			manifest.Drop(fx.Name + fixture.ExtDict)
		}

		if err := manifest.Record(fsys, dir, files...); err != nil {
			return err
		}

		o.Println(fx.Name)
	}

	return fixture.WriteManifest(fsys, dir, manifest)
}
