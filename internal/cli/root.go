// Package cli provides the command-line interface for xovigen.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/leapstack-labs/xovigen/internal/cli/commands"
	"github.com/leapstack-labs/xovigen/internal/cli/config"
	"github.com/leapstack-labs/xovigen/internal/generate"
	"github.com/leapstack-labs/xovigen/internal/parser"
	"github.com/leapstack-labs/xovigen/internal/watch"
)

var cfgFile string

// Version information (set at build time).
var (
	Version   = "0.1.0"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

// NewRootCmd creates and returns the root command.
func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "xovigen [flags] <input>",
		Short: "xovigen - XOVI extension link table generator",
		Long: `xovigen turns an XOVI extension project file into the C source that
carries the extension's link table, metadata and embedded resources, and
optionally a header giving the extension's code named access to its imports.

Example:
  xovigen -o build/ext.c -H build/xovi.h ext.xovi`,
		Version: Version,
		Args:    cobra.ExactArgs(1),
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			// Skip config loading for help and completion commands
			if cmd.Name() == "help" || cmd.Name() == "completion" || cmd.Name() == "__complete" {
				return nil
			}

			var input string
			if len(args) > 0 {
				input = args[0]
			}

			cfg, err := config.LoadConfig(cfgFile, input, cmd.Flags())
			if err != nil {
				return err
			}

			logger := NewLogger(cmd.ErrOrStderr(), cfg.Verbose)
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			// a logger placed on the context by the caller wins
			if _, ok := ctx.Value(config.LoggerKey()).(*slog.Logger); !ok {
				ctx = context.WithValue(ctx, config.LoggerKey(), logger)
			}
			cmd.SetContext(ctx)

			if f := config.GetConfigFileUsed(); f != "" {
				logger.Debug("using config file", "path", f)
			}
			return nil
		},
		RunE:          runGenerate,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.SetVersionTemplate(`{{.Name}} {{.Version}}
`)

	// Global persistent flags
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: xovigen.yaml next to the input or in the current directory)")
	rootCmd.PersistentFlags().StringP("architecture", "a", "", "Target architecture for architecture-specific metadata")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Verbose output")

	rootCmd.Flags().StringP("output", "o", "", "Module source to write (.c, or .cpp for C++ import casts)")
	rootCmd.Flags().StringP("output-header", "H", "", "Header to write (omit to skip the header)")
	rootCmd.Flags().String("boilerplate", "", "File replacing the module boilerplate")
	rootCmd.Flags().String("header-boilerplate", "", "File replacing the header boilerplate")
	rootCmd.Flags().BoolP("watch", "w", false, "Regenerate whenever the project file or a file it uses changes")

	_ = rootCmd.MarkFlagFilename("output", "c", "cpp")
	_ = rootCmd.MarkFlagFilename("output-header", "h", "hpp")

	rootCmd.AddCommand(commands.NewVersionCommand(Version))
	rootCmd.AddCommand(commands.NewInspectCommand())
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

func runGenerate(cmd *cobra.Command, args []string) error {
	cctx := commands.NewCommandContext(cmd)
	if err := cctx.Cfg.Validate(); err != nil {
		return err
	}

	g := generate.New(generate.Config{Fs: cctx.Fs, Logger: cctx.Logger})
	req := generate.Request{
		Input:             args[0],
		Output:            cctx.Cfg.Output,
		HeaderOutput:      cctx.Cfg.OutputHeader,
		Architecture:      cctx.Cfg.Architecture,
		ModuleBoilerplate: cctx.Cfg.Boilerplate,
		HeaderBoilerplate: cctx.Cfg.HeaderBoilerplate,
	}

	if cctx.Cfg.Watch {
		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
		defer stop()
		return watch.New(watch.Config{Generator: g, Request: req, Logger: cctx.Logger}).Run(ctx)
	}

	_, err := g.Run(req)
	return err
}

// Execute runs the root command.
func Execute() error {
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		printError(os.Stderr, err)
		return err
	}
	return nil
}

// printError reports err on w. Parse errors also echo the offending line.
func printError(w io.Writer, err error) {
	var perr *parser.ParseError
	if errors.As(err, &perr) && perr.Text() != "" {
		_, _ = fmt.Fprintf(w, "Error: %s: %s\n    %s\n", perr.Position(), perr.Message(), perr.Text())
		return
	}
	_, _ = fmt.Fprintf(w, "Error: %v\n", err)
}
