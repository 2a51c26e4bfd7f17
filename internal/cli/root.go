// Package cli implements the etfadvisor command line: catalog listing,
// scenario listing and one-shot recommendations.
package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aristath/etfadvisor/internal/modules/advisor"
	"github.com/aristath/etfadvisor/internal/modules/baskets"
	"github.com/aristath/etfadvisor/internal/modules/catalog"
	"github.com/aristath/etfadvisor/internal/modules/display"
	"github.com/aristath/etfadvisor/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

// Version is overridden at build time via ldflags
var Version = "dev"

type contextKey struct{}

// RootOptions holds global flags
type RootOptions struct {
	CatalogPath string
	LogLevel    string
	JSON        bool
}

// Context carries initialized dependencies through the command tree
type Context struct {
	Advisor *advisor.Service
	Log     zerolog.Logger
	JSON    bool
}

// NewRootCommand creates the root command with every subcommand attached
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:     "etfadvisor",
		Short:   "Score energy-transition ETFs and build low-overlap baskets",
		Version: Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return persistentPreRun(cmd, opts)
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.CatalogPath, "catalog", "", "catalog YAML file (default: embedded catalog)")
	pf.StringVar(&opts.LogLevel, "log-level", "warn", "log level (debug, info, warn, error)")
	pf.BoolVar(&opts.JSON, "json", false, "print JSON instead of text")

	cmd.AddCommand(
		NewCatalogCmd(),
		NewScenariosCmd(),
		NewRecommendCmd(),
	)

	return cmd
}

// Execute runs the root command against os.Args
func Execute() int {
	cmd := NewRootCommand()
	if err := cmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		return 1
	}
	return 0
}

func persistentPreRun(cmd *cobra.Command, opts *RootOptions) error {
	log := logger.New(logger.Config{
		Level:  opts.LogLevel,
		Pretty: true,
		Output: cmd.ErrOrStderr(),
	})

	cat, err := catalog.Load(opts.CatalogPath)
	if err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	modes := display.NewModeManager(display.DefaultLevel, log)
	svc := advisor.NewService(cat, modes, baskets.PolicyUnfiltered, nil, nil, log)

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	cmd.SetContext(context.WithValue(ctx, contextKey{}, &Context{
		Advisor: svc,
		Log:     log,
		JSON:    opts.JSON,
	}))
	return nil
}

// FromCommand extracts the Context set up by the root command
func FromCommand(cmd *cobra.Command) (*Context, error) {
	if cmd.Context() == nil {
		return nil, fmt.Errorf("command context not initialized")
	}
	c, ok := cmd.Context().Value(contextKey{}).(*Context)
	if !ok {
		return nil, fmt.Errorf("command context not initialized")
	}
	return c, nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
