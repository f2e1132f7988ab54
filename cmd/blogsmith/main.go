package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/TobiSchelling/blogsmith/internal/config"
	"github.com/TobiSchelling/blogsmith/internal/database"
	"github.com/TobiSchelling/blogsmith/internal/fetch"
	"github.com/TobiSchelling/blogsmith/internal/imagegen"
	"github.com/TobiSchelling/blogsmith/internal/llm"
	"github.com/TobiSchelling/blogsmith/internal/logger"
	"github.com/TobiSchelling/blogsmith/internal/pipeline"
	"github.com/TobiSchelling/blogsmith/internal/publish"
	"github.com/TobiSchelling/blogsmith/internal/server"
	"github.com/TobiSchelling/blogsmith/internal/templates"
	"github.com/TobiSchelling/blogsmith/internal/wordpress"
)

var version = "dev"

var (
	verbose    bool
	configPath string
	cfg        *config.Config
	logr       *slog.Logger
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:          "blogsmith",
	Short:        "SEO blog drafts from topic to WordPress",
	Long:         "blogsmith writes SEO-checked blog drafts with an LLM, generates their images and publishes them as WordPress drafts.",
	Version:      version,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Skip config loading for init and version
		if cmd.Name() == "init" || cmd.Name() == "version" {
			logr = logger.New("INFO", verbose)
			return nil
		}

		config.LoadDotEnv()
		path, err := config.ResolveConfigPath(configPath)
		switch {
		case err == nil:
			cfg, err = config.Load(path)
			if err != nil {
				return fmt.Errorf("loading config: %w", err)
			}
		case cmd.Name() == "check" && configPath == "":
			// check only needs the parser and analyzer
			cfg = config.Default()
		default:
			return err
		}
		logr = logger.New(cfg.Logging.Level, verbose)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable verbose output")
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "Path to config file")

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(writeCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(imagesCmd)
	rootCmd.AddCommand(publishCmd)
	rootCmd.AddCommand(uploadImagesCmd)
	rootCmd.AddCommand(verifyCmd)
	rootCmd.AddCommand(serveCmd)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println("blogsmith", version)
	},
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration and templates in ~/.config/blogsmith/",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := os.MkdirAll(config.TemplatesDir(), 0o755); err != nil {
			return fmt.Errorf("creating config directory: %w", err)
		}

		target := filepath.Join(config.ConfigDir(), "config.yaml")
		if _, err := os.Stat(target); err == nil {
			fmt.Printf("Config already exists: %s\n", target)
		} else {
			if err := os.WriteFile(target, config.DefaultConfigYAML, 0o644); err != nil {
				return fmt.Errorf("writing config: %w", err)
			}
			fmt.Printf("Created config: %s\n", target)
		}

		for _, tone := range (templates.Loader{}).Available() {
			path := filepath.Join(config.TemplatesDir(), tone+".txt")
			if _, err := os.Stat(path); err == nil {
				continue
			}
			data, err := templates.Default(tone)
			if err != nil {
				return err
			}
			if err := os.WriteFile(path, data, 0o644); err != nil {
				return fmt.Errorf("writing template: %w", err)
			}
			fmt.Printf("Created template: %s\n", path)
		}

		keys := config.Default().Keys
		fmt.Println()
		fmt.Println("Set your credentials in the environment or in", filepath.Join(config.ConfigDir(), ".env")+":")
		for _, env := range []string{keys.AnthropicKeyEnv, keys.OpenAIKeyEnv, keys.GeminiKeyEnv, keys.WordPressPasswordEnv} {
			fmt.Printf("  %s=...\n", env)
		}
		fmt.Println("Then set wordpress.url and wordpress.username in the config to publish drafts.")
		return nil
	},
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and journal status",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		stats, err := db.GetStats()
		if err != nil {
			return fmt.Errorf("getting stats: %w", err)
		}
		creds := cfg.Credentials()

		fmt.Println("Configuration:")
		fmt.Printf("  LLM provider: %s\n", cfg.LLM.DefaultProvider)
		fmt.Printf("  Image policy: %s\n", cfg.Images.Provider)
		fmt.Printf("  Output dir: %s\n", cfg.OutputDir())
		fmt.Println("\nCredentials:")
		fmt.Printf("  %s: %s\n", cfg.Keys.AnthropicKeyEnv, present(creds.AnthropicKey))
		fmt.Printf("  %s: %s\n", cfg.Keys.OpenAIKeyEnv, present(creds.OpenAIKey))
		fmt.Printf("  %s: %s\n", cfg.Keys.GeminiKeyEnv, present(creds.GeminiKey))
		fmt.Printf("  %s: %s\n", cfg.Keys.WordPressPasswordEnv, present(creds.WordPressPassword))
		fmt.Println("\nWordPress:")
		if cfg.WordPress.Configured() {
			fmt.Printf("  %s as %s (auto publish: %t)\n", cfg.WordPress.URL, cfg.WordPress.Username, cfg.WordPress.AutoPublishDraft)
		} else {
			fmt.Println("  not configured")
		}
		fmt.Println("\nJournal:")
		fmt.Printf("  Runs: %d\n", stats.Runs)
		fmt.Printf("  Saved drafts: %d\n", stats.SavedDrafts)
		fmt.Printf("  Publications: %d (%d drafts on WordPress)\n", stats.Publications, stats.Published)
		if stats.LastRunAt != nil {
			fmt.Printf("  Last run: %s\n", *stats.LastRunAt)
		}
		if stats.LastPublished != nil {
			fmt.Printf("  Last publish: %s\n", *stats.LastPublished)
		}
		return nil
	},
}

func present(v string) string {
	if v == "" {
		return "missing"
	}
	return "set"
}

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recent write runs",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		runs, err := db.GetRecentRuns(historyLimit)
		if err != nil {
			return err
		}
		if len(runs) == 0 {
			fmt.Println("No runs yet. Write one with: blogsmith write \"topic\"")
			return nil
		}

		for _, r := range runs {
			fmt.Printf("%s  %s\n", r.CreatedAt, r.Slug)
			fmt.Printf("    %q (%s, %s/%s)\n", r.Topic, r.Tone, r.Provider, r.Model)
			fmt.Printf("    SEO: %d passed | %d warnings | %d failures, %d words\n",
				r.SEOPassed, r.SEOWarnings, r.SEOFailures, r.WordCount)
			if pub, err := db.GetLatestPublication(r.Slug); err == nil && pub != nil {
				fmt.Printf("    WordPress: post %d, images %s\n", pub.PostID, pub.ImagesStatus)
			} else if r.FilePath == "" {
				fmt.Println("    not saved")
			}
		}
		return nil
	},
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "Number of runs to show")
}

var verifyCmd = &cobra.Command{
	Use:   "verify",
	Short: "Check the WordPress credentials",
	RunE: func(cmd *cobra.Command, args []string) error {
		client, err := newWordPressClient()
		if err != nil {
			return err
		}
		if err := client.ValidateCredentials(cmd.Context()); err != nil {
			return err
		}
		fmt.Printf("WordPress credentials OK: %s as %s\n", client.BaseURL(), cfg.WordPress.Username)
		return nil
	},
}

var servePort int

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the local draft preview server",
	RunE: func(cmd *cobra.Command, args []string) error {
		db, err := openDB()
		if err != nil {
			return err
		}
		defer db.Close()

		port := servePort
		if port == 0 {
			port = cfg.Server.Port
		}
		fmt.Printf("Starting server at http://localhost:%d\n", port)
		fmt.Println("Press Ctrl+C to stop")
		return server.Serve(db, cfg.OutputDir(), port, logr)
	},
}

func init() {
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Port to run server on (default from config)")
}

func openDB() (*database.DB, error) {
	dataDir := cfg.GetDataDir()
	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}
	return database.Open(filepath.Join(dataDir, database.FileName), logr)
}

// openJournal opens the journal for commands that can run without it.
func openJournal() *database.DB {
	db, err := openDB()
	if err != nil {
		logr.Warn("run journal unavailable", "error", err)
		return nil
	}
	return db
}

func newWordPressClient() (*wordpress.Client, error) {
	return wordpress.NewClient(cfg.WordPress.URL, cfg.WordPress.Username, cfg.Credentials().WordPressPassword, logr)
}

func newPublisher() (pipeline.Publisher, error) {
	client, err := newWordPressClient()
	if err != nil {
		return nil, err
	}
	wp := cfg.WordPress
	return publish.New(client, publish.Settings{
		OutputDir:      cfg.OutputDir(),
		RecentPosts:    wp.RecentPosts,
		RelatedPosts:   wp.RelatedPosts,
		RelatedHeading: wp.RelatedHeading,
		FeedFallback:   wp.FeedFallback,
		Notify:         printEvent,
	}, logr), nil
}

func newPipeline(db *database.DB) *pipeline.Pipeline {
	creds := cfg.Credentials()
	return pipeline.New(pipeline.Deps{
		Config:     cfg,
		Templates:  templates.Loader{Dir: config.TemplatesDir()},
		References: fetch.NewReferenceFetcher(0, logr),
		Provider: func(ctx context.Context, name string) (llm.Provider, error) {
			return llm.CreateProvider(ctx, cfg, strings.ToLower(name), creds, logr)
		},
		Images:    imagegen.New(cfg, creds, logr),
		Publisher: newPublisher,
		DB:        db,
		Log:       logr,
	})
}
