package cli

import (
	"context"

	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/lzfix/internal/fixture"
)

// PrintConfigCmd returns the print-config command.
func PrintConfigCmd(cfg fixture.Config, sources fixture.ConfigSources) *Command {
	fset := flag.NewFlagSet("print-config", flag.ContinueOnError)

	return &Command{
		Flags: fset,
		Usage: "print-config",
		Short: "Print the effective configuration",
		Long: `Print the effective configuration as JSON, after merging defaults,
the global user config, the project config and CLI overrides. The config
files that contributed are listed as comment lines.`,
		Exec: func(_ context.Context, o *IO, _ []string) error {
			formatted, err := fixture.FormatConfig(cfg)
			if err != nil {
				return err
			}

			if sources.Global != "" {
				o.Println("// global:", sources.Global)
			}

			if sources.Project != "" {
				o.Println("// project:", sources.Project)
			}

			o.Println(formatted)

			return nil
		},
	}
}
