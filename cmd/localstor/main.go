package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/cuemby/localstor/pkg/backend"
	"github.com/cuemby/localstor/pkg/config"
	"github.com/cuemby/localstor/pkg/discovery"
	"github.com/cuemby/localstor/pkg/errdefs"
	"github.com/cuemby/localstor/pkg/log"
	"github.com/cuemby/localstor/pkg/metrics"
	"github.com/cuemby/localstor/pkg/router"
	"github.com/cuemby/localstor/pkg/sim"
	"github.com/spf13/cobra"
)

var (
	// Version information (set via ldflags during build)
	Version   = "dev"
	Commit    = "unknown"
	BuildTime = "unknown"
)

// cfg is the effective configuration: file values overridden by flags
var cfg *config.Config

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(exitCode(err))
	}
}

// exitCode returns the storage error number, or 1 for other failures
func exitCode(err error) int {
	if code, ok := errdefs.CodeOf(err); ok {
		return int(code) % 256
	}
	return 1
}

var rootCmd = &cobra.Command{
	Use:   "localstor",
	Short: "localstor - one storage-management endpoint for every local controller",
	Long: `localstor probes the local host for RAID controllers and NFS services,
activates a backend for each one it finds and answers storage queries across
all of them as if they were a single system.

Use --simulate to run against simulated controllers backed by BoltDB.`,
	Version:           Version,
	SilenceUsage:      true,
	PersistentPreRunE: setup,
}

func init() {
	rootCmd.SetVersionTemplate(fmt.Sprintf(
		"localstor version %s\nCommit: %s\nBuilt: %s\n",
		Version, Commit, BuildTime,
	))

	flags := rootCmd.PersistentFlags()
	flags.String("config", "", "Config file (default "+config.DefaultPath+" if present)")
	flags.String("uri", "", "Connection string, e.g. local://?only=megaraid&ignore_init_error=true")
	flags.Duration("timeout", 0, "Backend timeout")
	flags.String("log-level", "", "Log level (debug, info, warn, error)")
	flags.Bool("json", false, "Log in JSON format")
	flags.StringSlice("simulate", nil, "Simulate these backends instead of probing hardware (megaraid,hpsa,arcconf,nfs)")
	flags.String("data-dir", "", "Directory for simulator state")
	flags.StringP("output", "o", "", "Output format: table, json or yaml (default table on a terminal, json otherwise)")
}

// setup loads the configuration, applies flag overrides and initializes logging
func setup(cmd *cobra.Command, args []string) error {
	loaded, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	flags := cmd.Flags()
	if flags.Changed("uri") {
		loaded.URI, _ = flags.GetString("uri")
	}
	if flags.Changed("timeout") {
		loaded.Timeout, _ = flags.GetDuration("timeout")
	}
	if flags.Changed("log-level") {
		loaded.Log.Level, _ = flags.GetString("log-level")
	}
	if flags.Changed("json") {
		loaded.Log.JSON, _ = flags.GetBool("json")
	}
	if flags.Changed("simulate") {
		loaded.Simulate, _ = flags.GetStringSlice("simulate")
	}
	if flags.Changed("data-dir") {
		loaded.DataDir, _ = flags.GetString("data-dir")
	}
	if err := loaded.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	log.Init(log.Config{
		Level:      log.Level(strings.ToLower(loaded.Log.Level)),
		JSONOutput: loaded.Log.JSON,
	})
	metrics.SetVersion(Version)
	router.Version = Version

	output, _ := flags.GetString("output")
	if err := setOutputFormat(output); err != nil {
		return err
	}

	cfg = loaded
	return nil
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		return config.Load(path)
	}

	if _, err := os.Stat(config.DefaultPath); err == nil {
		return config.Load(config.DefaultPath)
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat %s: %w", config.DefaultPath, err)
	}
	return config.Default(), nil
}

// newRouter builds an unregistered router for the effective configuration.
// Simulated backends come with a fixed inventory; otherwise the host is
// probed and only backends with a registered implementation can open.
func newRouter(opts ...router.Option) (*router.Router, error) {
	reg := backend.NewRegistry()
	if len(cfg.Simulate) == 0 {
		return router.New(reg, opts...), nil
	}

	ids := cfg.SimulatedBackends()
	sim.RegisterAll(reg, cfg.DataDir, ids...)

	catalog := discovery.DefaultCatalog()
	inv, err := discovery.NewStaticInventory(catalog, ids...)
	if err != nil {
		return nil, err
	}

	opts = append([]router.Option{
		router.WithSelector(discovery.NewSelector(catalog, inv)),
		router.WithPrivilegeCheck(func() bool { return true }),
	}, opts...)
	return router.New(reg, opts...), nil
}

// withRouter registers a router, runs fn and releases the router
func withRouter(ctx context.Context, fn func(r *router.Router) error, opts ...router.Option) (err error) {
	r, err := newRouter(opts...)
	if err != nil {
		return err
	}
	if err := r.Register(ctx, cfg.URI, cfg.Password, cfg.Timeout, backend.FlagReserved); err != nil {
		return err
	}
	defer func() {
		if cerr := r.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return fn(r)
}
