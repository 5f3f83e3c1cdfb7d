package cli

import (
	"context"
	"fmt"
	"strconv"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/lzfix/internal/fixture"
	"github.com/calvinalkan/lzfix/internal/fs"
)

// LsCmd returns the ls command.
func LsCmd(fsys fs.FS, dir string) *Command {
	fset := flag.NewFlagSet("ls", flag.ContinueOnError)
	fset.BoolP("long", "l", false, "Show sizes, dictionary presence and ratio")

	return &Command{
		Flags: fset,
		Usage: "ls [--long]",
		Short: "List fixtures",
		Exec: func(_ context.Context, o *IO, args []string) error {
			long, _ := fset.GetBool("long")
			return execLs(o, fsys, dir, long)
		},
	}
}

func execLs(o *IO, fsys fs.FS, dir string, long bool) error {
	names, err := fixture.List(fsys, dir)
	if err != nil {
		return err
	}

	if !long {
		for _, name := range names {
			o.Println(name)
		}

		return nil
	}

	o.Printf("%-16s %10s %10s %10s %7s\n", "NAME", "DATA", "DICT", "LZ4", "RATIO")

	for _, name := range names {
		dataSize := fileSize(fsys, fixture.DataPath(dir, name))
		blockSize := fileSize(fsys, fixture.BlockPath(dir, name))

		dict := "-"
		if size := fileSize(fsys, fixture.DictPath(dir, name)); size >= 0 {
			dict = formatSize(size)
		}

		ratio := "-"
		if dataSize > 0 && blockSize > 0 {
			ratio = formatRatio(float64(dataSize) / float64(blockSize))
		}

		o.Printf("%-16s %10s %10s %10s %7s\n",
			name, formatSize(dataSize), dict, formatSize(blockSize), ratio)
	}

	return nil
}

// fileSize returns -1 for missing files so callers can render a dash.
func fileSize(fsys fs.FS, path string) int64 {
	info, err := fsys.Stat(path)
	if err != nil {
		return -1
	}

	return info.Size()
}

func formatSize(n int64) string {
	if n < 0 {
		return "-"
	}

	return strconv.FormatInt(n, 10)
}

func formatRatio(r float64) string {
	return fmt.Sprintf("%.2fx", r)
}
