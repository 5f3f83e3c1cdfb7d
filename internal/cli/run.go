package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/calvinalkan/lzfix/internal/fixture"
	"github.com/calvinalkan/lzfix/internal/fs"
)

const helpFlag = "--help"

var (
	errFlagRequiresArg = errors.New("flag requires an argument")
	errUnknownFlag     = errors.New("unknown flag")
)

// Run is the main entry point. Returns exit code.
func Run(stdin io.Reader, out, errOut io.Writer, args []string, env map[string]string) int {
	o := NewIO(stdin, out, errOut)

	if len(args) < 2 {
		printUsage(o, nil)
		return 0
	}

	flags, err := parseGlobalFlags(args[1:])
	if err != nil {
		o.ErrPrintln("error:", err)
		return 1
	}

	workDir := flags.workDir
	if workDir == "" {
		workDir, err = os.Getwd()
		if err != nil {
			o.ErrPrintln("error: cannot get working directory:", err)
			return 1
		}
	}

	overrides := fixture.Config{FixtureDir: flags.fixtureDir}

	cfg, sources, err := fixture.LoadConfig(workDir, flags.configPath, overrides, flags.hasFixtureDirOverride, env)
	if err != nil {
		o.ErrPrintln("error:", err)
		return 1
	}

	fixtureDir := cfg.FixtureDir
	if !filepath.IsAbs(fixtureDir) {
		fixtureDir = filepath.Join(workDir, fixtureDir)
	}

	fsys := fs.NewReal()
	cmds := commands(fsys, fixtureDir, cfg, sources)

	if len(flags.remaining) == 0 {
		printUsage(o, cmds)
		return 0
	}

	name := flags.remaining[0]
	rest := flags.remaining[1:]

	if name == "-h" || name == helpFlag {
		printUsage(o, cmds)
		return 0
	}

	for _, cmd := range cmds {
		if cmd.Name() == name {
			return cmd.Run(context.Background(), o, rest)
		}
	}

	o.ErrPrintln("error: unknown command:", name)
	printUsage(o, cmds)

	return 1
}

func commands(fsys fs.FS, fixtureDir string, cfg fixture.Config, sources fixture.ConfigSources) []*Command {
	return []*Command{
		GenCmd(fsys, fixtureDir),
		CreateCmd(fsys, fixtureDir),
		VerifyCmd(fsys, fixtureDir),
		LsCmd(fsys, fixtureDir),
		PrintConfigCmd(cfg, sources),
	}
}

type globalFlags struct {
	workDir               string
	configPath            string
	fixtureDir            string
	hasFixtureDirOverride bool
	remaining             []string
}

func parseGlobalFlags(args []string) (globalFlags, error) {
	var flags globalFlags

	idx := 0
	for idx < len(args) {
		consumed, err := parseFlag(args, idx, &flags)
		if err != nil {
			return globalFlags{}, err
		}

		if consumed == 0 {
			// Not a flag, this is the command
			flags.remaining = args[idx:]

			break
		}

		idx += consumed
	}

	return flags, nil
}

// parseFlag tries to parse a flag at args[idx]. Returns number of args consumed (0 if not a flag).
func parseFlag(args []string, idx int, flags *globalFlags) (int, error) {
	arg := args[idx]

	// -C/--cwd flag (work directory)
	if (arg == "-C" || arg == "--cwd") && idx+1 < len(args) {
		flags.workDir = args[idx+1]
		return 2, nil
	}

	if after, ok := strings.CutPrefix(arg, "-C"); ok && after != "" {
		flags.workDir = after
		return 1, nil
	}

	if after, ok := strings.CutPrefix(arg, "--cwd="); ok {
		flags.workDir = after
		return 1, nil
	}

	// -c/--config flag
	if arg == "-c" || arg == "--config" {
		if idx+1 >= len(args) {
			return 0, fmt.Errorf("%w: %s", errFlagRequiresArg, arg)
		}

		flags.configPath = args[idx+1]

		return 2, nil
	}

	if after, ok := strings.CutPrefix(arg, "--config="); ok {
		flags.configPath = after
		return 1, nil
	}

	// --fixture-dir flag
	if arg == "--fixture-dir" {
		if idx+1 >= len(args) {
			return 0, fmt.Errorf("%w: %s", errFlagRequiresArg, arg)
		}

		flags.fixtureDir = args[idx+1]
		flags.hasFixtureDirOverride = true

		return 2, nil
	}

	if after, ok := strings.CutPrefix(arg, "--fixture-dir="); ok {
		flags.fixtureDir = after
		flags.hasFixtureDirOverride = true

		return 1, nil
	}

	// -h/--help flags
	if arg == "-h" || arg == helpFlag {
		flags.remaining = []string{helpFlag}
		return len(args) - idx, nil
	}

	// Unknown flag
	if strings.HasPrefix(arg, "-") && arg != "-" {
		return 0, fmt.Errorf("%w: %s", errUnknownFlag, arg)
	}

	// Not a flag
	return 0, nil
}

func printUsage(o *IO, cmds []*Command) {
	o.Println(`lzfix - LZ4 block fixture generator

Usage: lzfix [options] <command> [args]

Options:
  -C, --cwd <dir>     Run as if started in <dir>
  -c, --config        Use specified config file
  --fixture-dir <dir> Override the fixture directory

Commands:`)

	if cmds == nil {
		cmds = commands(fs.NewReal(), "", fixture.DefaultConfig(), fixture.ConfigSources{})
	}

	for _, cmd := range cmds {
		o.Println(cmd.HelpLine())
	}
}
