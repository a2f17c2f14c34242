// Package cli implements the yatube command line: the web server, database
// migrations and the management commands for users, groups and the audit log.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/Ogyrecheg/yatube/internal/config"
	"github.com/Ogyrecheg/yatube/internal/database"
	"github.com/Ogyrecheg/yatube/internal/security"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var configPath string

// connectDB opens the global pool; replaced in tests.
var connectDB = func(ctx context.Context, cfg *config.Config) (func(), error) {
	err := database.Connect(ctx, database.Config{
		URL:      cfg.Database.URL,
		MaxConns: cfg.Database.MaxConns,
		MinConns: cfg.Database.MinConns,
	})
	if err != nil {
		return nil, err
	}
	return database.Close, nil
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "yatube [command] [flags]",
		Short:         "Yatube: a small blogging platform",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVarP(&configPath, "config", "c", "", "path to config.yaml")

	root.AddCommand(
		newServeCmd(),
		newMigrateCmd(),
		newUserCmd(),
		newGroupCmd(),
		newAuditCmd(),
	)
	return root
}

// Execute runs the CLI and exits non-zero on failure. It is called by main.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		color.New(color.FgRed, color.Bold).Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// env is what every command needs: configuration and a logger.
type env struct {
	cfg     *config.Config
	logger  *security.Logger
	logFile io.Closer
}

func (e *env) Close() {
	if e.logFile != nil {
		_ = e.logFile.Close()
	}
}

func loadEnv(cmd *cobra.Command) (*env, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg}
	var w io.Writer = cmd.OutOrStdout()
	if cfg.Log.File != "" {
		f := security.NewRotatingFile(security.FileOptions{
			Path:       cfg.Log.File,
			MaxSizeMB:  cfg.Log.MaxSizeMB,
			MaxBackups: cfg.Log.MaxBackups,
			MaxAgeDays: cfg.Log.MaxAgeDays,
			Compress:   cfg.Log.Compress,
		})
		e.logFile = f
		w = io.MultiWriter(w, f)
	}
	e.logger = security.NewLoggerWithWriter(w, security.ParseLevel(cfg.Log.Level))
	return e, nil
}

// withDB loads the environment, connects to PostgreSQL and runs fn.
func withDB(cmd *cobra.Command, fn func(ctx context.Context, e *env) error) error {
	e, err := loadEnv(cmd)
	if err != nil {
		return err
	}
	defer e.Close()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	closeDB, err := connectDB(ctx, e.cfg)
	if err != nil {
		return fmt.Errorf("connect to database: %w", err)
	}
	defer closeDB()

	return fn(ctx, e)
}

var (
	okColor   = color.New(color.FgGreen)
	warnColor = color.New(color.FgYellow)
)
