// Package cli implements the chefsnap CLI commands.
package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"chefsnap/internal/app"
	"chefsnap/internal/config"
	"chefsnap/internal/kv"
	"chefsnap/internal/logger"
	"chefsnap/internal/platform"
	"chefsnap/internal/recipe"
	"chefsnap/internal/user"
)

var (
	dbPath     string
	configPath string
	verbose    bool
)

// RootCmd is the top-level command.
var RootCmd = &cobra.Command{
	Use:           "chefsnap",
	Short:         "Recipes from cooking videos",
	Long:          "Turn a cooking video link, a screenshot or a dish name into a structured recipe. Likes, saves and comments are kept in a local SQLite database.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	RootCmd.PersistentFlags().StringVarP(&dbPath, "db", "d", "", "Database path (default: $CHEFSNAP_DB or ~/.chefsnap/chefsnap.db)")
	RootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.json", "Config file with the generator settings")
	RootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

func getDBPath() string {
	if dbPath != "" {
		return dbPath
	}
	if env := os.Getenv("CHEFSNAP_DB"); env != "" {
		return env
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".chefsnap", "chefsnap.db")
}

// storageDSN turns a plain file path into a SQLite DSN for kv.Open.
func storageDSN(path string) string {
	if path == "memory" || strings.Contains(path, "://") || strings.HasPrefix(path, "file:") {
		return path
	}
	return "sqlite://" + path
}

// workspace bundles an App with the resources it holds open.
type workspace struct {
	*app.App
	closers []func() error
}

func (s *workspace) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		s.closers[i]()
	}
}

// openApp restores the store and session. The generator is only built,
// and the config only read, when withGenerator is set.
func openApp(cmd *cobra.Command, withGenerator bool) (*workspace, error) {
	ctx := cmd.Context()
	level := logger.LevelOff
	if verbose {
		level = logger.LevelVerbose
	}
	log := logger.New(level, cmd.ErrOrStderr())

	db, err := kv.Open(ctx, storageDSN(getDBPath()))
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	s := &workspace{closers: []func() error{db.Close}}

	var gen app.Generator
	if withGenerator {
		cfg, err := config.Load(configPath)
		if err != nil {
			s.Close()
			return nil, err
		}
		g, err := platform.NewGenerator(ctx, cfg, log)
		if err != nil {
			s.Close()
			return nil, err
		}
		s.closers = append(s.closers, g.Close)
		gen = g
	}

	store := recipe.NewStore(db, recipe.WithLogger(log))
	if err := store.Load(ctx); err != nil {
		s.Close()
		return nil, err
	}
	sess := user.NewSession(db, log)
	if err := sess.Load(ctx); err != nil {
		s.Close()
		return nil, err
	}
	s.App = app.New(store, sess, gen, nil, log)
	return s, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}

// Execute runs the root command and reports errors the way the rest of
// the CLI does.
func Execute() int {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}
