package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/VictoriaMetrics/metrics"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/eternalApril/respkit/internal/config"
	"github.com/eternalApril/respkit/internal/logger"
)

// Version of respctl
const Version = "0.3.0"

// app carries what every subcommand needs once the root has parsed flags
type app struct {
	v      *viper.Viper
	cfg    *config.Config
	logger *zap.Logger
}

// flag name -> config key
var flagKeys = map[string]string{
	"log-level":  "log.level",
	"log-format": "log.format",
	"metrics":    "metrics.enabled",
	"output":     "output.format",
}

func newRootCommand(a *app) *cobra.Command {
	root := &cobra.Command{
		Use:   "respctl",
		Short: "encode, decode and journal RESP values",
		Long: fmt.Sprintf(`respctl (v%s)

Converts between YAML documents and the Redis serialization protocol,
renders RESP buffers and maintains append-only journals of RESP values.`, Version),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		PersistentPostRunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg != nil && a.cfg.Metrics.Enabled {
				metrics.WritePrometheus(cmd.ErrOrStderr(), false)
			}
			return nil
		},
	}

	flags := root.PersistentFlags()
	flags.String("config", "", "directory holding respkit.yaml")
	flags.String("log-level", "warn", "log level (debug, info, warn, error)")
	flags.String("log-format", "console", "log format (console, json)")
	flags.Bool("metrics", false, "print journal counters to stderr when the command finishes")
	flags.StringP("output", "o", "text", "rendering of decoded values (text, yaml)")

	root.AddCommand(newEncodeCommand(a))
	root.AddCommand(newDecodeCommand(a))
	root.AddCommand(newJournalCommand(a))
	root.AddCommand(&cobra.Command{
		Use:   "version",
		Short: "Print the version number of respctl",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "respctl v%s\n", Version)
		},
	})

	return root
}

// setup loads env files, binds flags into viper, reads the config and builds the logger
func (a *app) setup(cmd *cobra.Command, _ []string) error {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	a.v = viper.New()
	for name, key := range flagKeys {
		if err := a.v.BindPFlag(key, cmd.Flags().Lookup(name)); err != nil {
			return err
		}
	}

	dir, err := cmd.Flags().GetString("config")
	if err != nil {
		return err
	}

	a.cfg, err = config.Load(a.v, dir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	a.logger, err = logger.New(a.cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	return nil
}

// input opens the file named by the --file flag, or stdin when it is empty
func input(cmd *cobra.Command) (io.ReadCloser, error) {
	name, err := cmd.Flags().GetString("file")
	if err != nil {
		return nil, err
	}
	if name == "" || name == "-" {
		return io.NopCloser(cmd.InOrStdin()), nil
	}
	return os.Open(name)
}

// Execute runs respctl with the process arguments and exits non-zero on failure
func Execute() {
	a := &app{}
	err := newRootCommand(a).Execute()

	if a.logger == nil {
		// flags or config never made it to a logger
		if err != nil {
			fmt.Fprintln(os.Stderr, "Error:", err)
			os.Exit(1)
		}
		return
	}
	defer a.logger.Sync() //nolint:errcheck

	if err != nil {
		a.logger.Error("command failed", zap.Error(err))
		_ = a.logger.Sync()
		os.Exit(1)
	}
}
