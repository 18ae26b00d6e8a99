package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/JiajunSong-Bigai/inference-engine/internal/engine"
	"github.com/JiajunSong-Bigai/inference-engine/internal/ir"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	Verbose       bool
	Format        string // "json" | "text"
	ConfigFile    string
	MaxIterations int    // per-run ceiling; non-positive disables it
	Journal       string // SQLite journal path; empty disables recording

	// RunIDs overrides the run id generator (tests).
	RunIDs engine.RunIDGenerator

	logger *slog.Logger
}

// ValidFormats defines the allowed output formats.
var ValidFormats = []string{"text", "json"}

// Config file and environment settings.
const (
	ConfigName = "euclid"
	EnvPrefix  = "EUCLID"
)

// configKeys binds config keys to the flags that override them.
var configKeys = []struct{ key, flag string }{
	{"format", "format"},
	{"max_iterations", "max-iterations"},
	{"journal", "journal"},
}

// NewRootCommand creates the root command for the euclid CLI.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}
	v := viper.New()

	cmd := &cobra.Command{
		Use:     "euclid",
		Version: ir.EngineVersion,
		Short:   "Euclid - forward-chaining geometry prover",
		Long: `A deductive geometry reasoner that saturates a set of hypotheses
under a fixed catalog of rules and answers whether a goal was derived.

Settings are read from euclid.yaml in the current directory or
~/.config/euclid, then from EUCLID_* environment variables; flags win.`,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := loadConfig(v, cmd, opts); err != nil {
				return WrapExitError(ExitCommandError, "load config", err)
			}
			if !isValidFormat(opts.Format) {
				return NewExitError(ExitCommandError, fmt.Sprintf("invalid format %q: must be one of %v", opts.Format, ValidFormats))
			}
			opts.logger = newLogger(cmd.ErrOrStderr(), opts.Verbose)
			return nil
		},
	}

	// Global flags
	cmd.PersistentFlags().BoolVarP(&opts.Verbose, "verbose", "v", false, "verbose output")
	cmd.PersistentFlags().StringVar(&opts.Format, "format", "text", "output format (json|text)")
	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (default ./euclid.yaml, then ~/.config/euclid/euclid.yaml)")
	cmd.PersistentFlags().IntVar(&opts.MaxIterations, "max-iterations", engine.DefaultMaxIterations, "iteration ceiling per run (0 disables)")
	cmd.PersistentFlags().StringVar(&opts.Journal, "journal", "", "record runs in this SQLite journal")

	// Add subcommands
	cmd.AddCommand(NewProveCommand(opts))
	cmd.AddCommand(NewSaturateCommand(opts))
	cmd.AddCommand(NewValidateCommand(opts))
	cmd.AddCommand(NewTestCommand(opts))
	cmd.AddCommand(NewHistoryCommand(opts))
	cmd.AddCommand(NewReplayCommand(opts))

	return cmd
}

// loadConfig layers the config file and environment under the flags and
// copies the merged values into opts.
func loadConfig(v *viper.Viper, cmd *cobra.Command, opts *RootOptions) error {
	if opts.ConfigFile != "" {
		v.SetConfigFile(opts.ConfigFile)
	} else {
		v.SetConfigName(ConfigName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", ConfigName))
		}
	}
	v.SetEnvPrefix(EnvPrefix)
	v.AutomaticEnv()

	for _, k := range configKeys {
		if err := v.BindPFlag(k.key, cmd.Flags().Lookup(k.flag)); err != nil {
			return fmt.Errorf("bind %s: %w", k.flag, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.ConfigFile != "" || !errors.As(err, &notFound) {
			return fmt.Errorf("read config: %w", err)
		}
	}

	opts.Format = v.GetString("format")
	opts.MaxIterations = v.GetInt("max_iterations")
	opts.Journal = v.GetString("journal")
	return nil
}

// newLogger builds the stderr text logger: Debug when verbose, Warn
// otherwise.
func newLogger(w io.Writer, verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level}))
}

// Logger returns the logger installed by the root command, or a
// discarding logger before it ran.
func (o *RootOptions) Logger() *slog.Logger {
	if o.logger == nil {
		return slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return o.logger
}

// isValidFormat checks if the format is one of the allowed values.
func isValidFormat(format string) bool {
	return slices.Contains(ValidFormats, format)
}
