package cli

import (
	"context"
	"errors"
	"fmt"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/lzfix/internal/fixture"
	"github.com/calvinalkan/lzfix/internal/fs"
)

var (
	errUnexpectedArgs = errors.New("unexpected arguments")
	errDataConflict   = errors.New("--data and --data-file are mutually exclusive")
	errDictConflict   = errors.New("--dict and --dict-file are mutually exclusive")
)

// CreateCmd returns the create command.
func CreateCmd(fsys fs.FS, dir string) *Command {
	fset := flag.NewFlagSet("create", flag.ContinueOnError)
	fset.StringP("data", "d", "", "Raw data as a literal string")
	fset.String("data-file", "", "Read raw data from a file")
	fset.String("dict", "", "Compression dictionary as a literal string")
	fset.String("dict-file", "", "Read the compression dictionary from a file")

	return &Command{
		Flags: fset,
		Usage: "create <name> [flags]",
		Short: "Create one fixture, prints its name",
		Long: `Create a single fixture from the given data and optional dictionary.

Writes <name>.dat, <name>.dct (when a dictionary is given) and <name>.lz4
into the fixture directory and updates the manifest. Without --data or
--data-file the fixture is empty.`,
		Exec: func(_ context.Context, o *IO, args []string) error {
			return execCreate(o, fsys, dir, fset, args)
		},
	}
}

func execCreate(o *IO, fsys fs.FS, dir string, fset *flag.FlagSet, args []string) error {
	if len(args) == 0 {
		return fixture.ErrNameRequired
	}

	if len(args) > 1 {
		return fmt.Errorf("%w: %v", errUnexpectedArgs, args[1:])
	}

	name := args[0]
	if err := fixture.ValidateName(name); err != nil {
		return err
	}

	data, err := bytesFlag(fsys, fset, "data", "data-file", errDataConflict)
	if err != nil {
		return err
	}

	dict, err := bytesFlag(fsys, fset, "dict", "dict-file", errDictConflict)
	if err != nil {
		return err
	}

	fx := fixture.Fixture{Name: name, Data: data, Dict: dict}
	if err := fixture.Write(fsys, dir, fx); err != nil {
		return err
	}

	manifest, err := fixture.LoadManifest(fsys, dir)
	if err != nil {
		return err
	}

	files := []string{name + fixture.ExtData, name + fixture.ExtBlock}
	if len(dict) > 0 {
		files = append(files, name+fixture.ExtDict)
	} else {
		manifest.Drop(name + fixture.ExtDict)
	}

	if err := manifest.Record(fsys, dir, files...); err != nil {
		return err
	}

	if err := fixture.WriteManifest(fsys, dir, manifest); err != nil {
		return err
	}

	o.Println(name)

	return nil
}

// bytesFlag resolves a literal-string/file flag pair into bytes.
func bytesFlag(fsys fs.FS, fset *flag.FlagSet, literalName, fileName string, conflict error) ([]byte, error) {
	literal, _ := fset.GetString(literalName)
	path, _ := fset.GetString(fileName)

	if fset.Changed(literalName) && fset.Changed(fileName) {
		return nil, conflict
	}

	if fset.Changed(fileName) {
		data, err := fsys.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading --%s: %w", fileName, err)
		}

		return data, nil
	}

	if fset.Changed(literalName) {
		return []byte(literal), nil
	}

	return nil, nil
}
