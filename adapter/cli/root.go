package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/felixgeelhaar/nextdose/pkg/observability"
)

var (
	cfgFile string
	verbose bool
	logger  *slog.Logger

	bootstrap BootstrapFunc
	release   func()
)

// Options carries the global flag values to the bootstrap function.
type Options struct {
	ConfigFile string
	Verbose    bool
}

// BootstrapFunc builds the App the first time a command needs it. The
// returned function releases whatever the App holds open.
type BootstrapFunc func(ctx context.Context, opts Options) (*App, func(), error)

type commandContext struct {
	correlationID uuid.UUID
	startedAt     time.Time
}

type commandContextKey struct{}

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "nextdose",
	Short: "nextdose - when is my next dose due",
	Long: `nextdose keeps a log of medication schedules and intakes and tells
you when the next dose of a medication, or of any medication sharing a tag,
is due.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if logger == nil {
			logger = slog.Default()
		}
		info := commandContext{
			correlationID: uuid.New(),
			startedAt:     time.Now(),
		}
		ctx := context.WithValue(cmd.Context(), commandContextKey{}, info)
		ctx = observability.WithCorrelationID(ctx, info.correlationID.String())
		ctx = observability.WithOperation(ctx, cmd.CommandPath())
		cmd.SetContext(ctx)
		logger.InfoContext(ctx, "command start")
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger == nil {
			logger = slog.Default()
		}
		info, ok := cmd.Context().Value(commandContextKey{}).(commandContext)
		if !ok {
			return
		}
		logger.InfoContext(cmd.Context(), "command end",
			observability.DurationKey, time.Since(info.startedAt).Milliseconds(),
		)
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
func Execute(ctx context.Context) {
	err := rootCmd.ExecuteContext(ctx)
	Release()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "env file with configuration (default .env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// AddCommand adds a command to the root command.
func AddCommand(cmd *cobra.Command) {
	rootCmd.AddCommand(cmd)
}

// SetLogger sets the CLI logger.
func SetLogger(l *slog.Logger) {
	logger = l
}

// SetBootstrap installs the function LoadApp uses to build the App.
func SetBootstrap(fn BootstrapFunc) {
	bootstrap = fn
}

// LoadApp returns the App, building it through the bootstrap function on
// first use with the values of the global flags.
func LoadApp(cmd *cobra.Command) (*App, error) {
	if app != nil {
		return app, nil
	}
	if bootstrap == nil {
		return nil, errors.New("nextdose is not initialized")
	}

	built, closeFn, err := bootstrap(cmd.Context(), Options{ConfigFile: cfgFile, Verbose: verbose})
	if err != nil {
		return nil, err
	}
	app = built
	release = closeFn
	if built.Logger != nil {
		logger = built.Logger
	}
	return app, nil
}

// Release closes the resources held by a bootstrapped App.
func Release() {
	if release != nil {
		release()
		release = nil
	}
}
