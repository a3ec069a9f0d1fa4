package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/joescharf/simplejira/internal/client"
	"github.com/joescharf/simplejira/internal/credential"
	"github.com/joescharf/simplejira/internal/output"
	"github.com/joescharf/simplejira/internal/service"
	"github.com/joescharf/simplejira/internal/store"
	"github.com/joescharf/simplejira/internal/tracker"
)

// Package-level shared dependencies, initialized in cobra.OnInitialize.
var (
	ui        *output.UI
	dataStore store.Store
	creds     *credential.Store

	verbose bool
	dryRun  bool
	jsonOut bool
)

var rootCmd = &cobra.Command{
	Use:   "sj",
	Short: "SimpleJira - projects, issues and comments for small teams",
	Long: `sj is a small issue tracker. It keeps projects, issues, comments and
issue links in a local SQLite database, serves them over a REST API and a
browser UI, and exposes them to agents over MCP.

Commands work on the local database unless remote.url is set, in which case
they call that server as the user stored by 'sj login'.`,
	SilenceUsage:      true,
	SilenceErrors:     true,
	DisableAutoGenTag: true,
}

// Execute is the main entry point called from main.go.
func Execute(version, commit, date string) {
	buildVersion = version
	buildCommit = commit
	buildDate = date

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initDeps)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVarP(&dryRun, "dry-run", "n", false, "Show what would happen without making changes")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "Print results as JSON")
	rootCmd.PersistentFlags().String("config", "", "Config file (default ~/.config/sj/config.yaml)")
	rootCmd.PersistentFlags().String("remote", "", "API server URL to use instead of the local database")
	_ = viper.BindPFlag("remote.url", rootCmd.PersistentFlags().Lookup("remote"))
}

func initConfig() {
	// If --config is explicitly set, use that file
	if cfgFile, _ := rootCmd.PersistentFlags().GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		dir, err := configDirFunc()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: cannot find home directory: %v\n", err)
			os.Exit(1)
		}
		viper.AddConfigPath(dir)
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("SJ")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	dir, _ := configDirFunc()
	setDefaults(dir)

	// Read config file if it exists (optional)
	_ = viper.ReadInConfig()
}

// setDefaults registers every config key with its default.
func setDefaults(dir string) {
	viper.SetDefault("state_dir", dir)
	viper.SetDefault("db_path", filepath.Join(dir, "sj.db"))
	viper.SetDefault("server.addr", ":8080")
	viper.SetDefault("web.addr", ":8081")
	viper.SetDefault("web.api_url", "http://localhost:8080")
	viper.SetDefault("auth.enabled", true)
	viper.SetDefault("auth.secret", "")
	viper.SetDefault("auth.ttl", "8h")
	viper.SetDefault("auth.issuer", "simplejira")
	viper.SetDefault("auth.audience", "simplejira-web")
	viper.SetDefault("remote.url", "")
	viper.SetDefault("log.level", "info")
}

func initDeps() {
	ui = output.New()
	ui.Verbose = verbose
	ui.DryRun = dryRun

	slog.SetDefault(newLogger())

	// Store and keyring are opened lazily so config/version run without them.
}

// newLogger builds the stderr text logger at log.level.
func newLogger() *slog.Logger {
	var level slog.Level
	if err := level.UnmarshalText([]byte(viper.GetString("log.level"))); err != nil {
		level = slog.LevelInfo
	}
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

// getStore returns the shared store, initializing it on first call.
func getStore() (store.Store, error) {
	if dataStore != nil {
		return dataStore, nil
	}

	dbPath := viper.GetString("db_path")
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("create database directory: %w", err)
	}
	s, err := store.NewSQLiteStore(dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := s.Migrate(rootCmd.Context()); err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}

	dataStore = s
	return dataStore, nil
}

// getService returns the local service over the shared store.
func getService() (*service.Service, error) {
	s, err := getStore()
	if err != nil {
		return nil, err
	}
	return service.New(s), nil
}

// getCredentials returns the shared keyring-backed session store.
func getCredentials() (*credential.Store, error) {
	if creds != nil {
		return creds, nil
	}
	c, err := credential.Open(viper.GetString("state_dir"))
	if err != nil {
		return nil, err
	}
	creds = c
	return creds, nil
}

// remoteURL returns the configured API server, or "" for local mode.
func remoteURL() string {
	return strings.TrimRight(strings.TrimSpace(viper.GetString("remote.url")), "/")
}

// getTracker returns the tracker commands run against: the API client when
// remote.url is set, the local service otherwise.
func getTracker() (tracker.Tracker, error) {
	url := remoteURL()
	if url == "" {
		return getService()
	}

	c, err := getCredentials()
	if err != nil {
		return nil, err
	}
	session, err := c.Session(url)
	if err != nil {
		return nil, err
	}
	ui.VerboseLog("Using %s as %s", url, session.Username)
	return client.New(url, session, nil), nil
}
