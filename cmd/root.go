/*
Copyright © 2025 Katie Mulliken <katie@mulliken.net>
*/
package cmd

import (
	"errors"
	"fmt"
	"io"
	"log"
	"os"

	"github.com/gofrs/flock"
	"github.com/spf13/cobra"

	"github.com/agentultra/deliciousbackup/internal/core"
	"github.com/agentultra/deliciousbackup/internal/core/backup"
	"github.com/agentultra/deliciousbackup/internal/core/checkpoint"
	"github.com/agentultra/deliciousbackup/internal/core/config"
	"github.com/agentultra/deliciousbackup/internal/core/db"
	"github.com/agentultra/deliciousbackup/internal/core/source"
)

var (
	errMissingCredentials = errors.New("username and password are required unless --import-html is given")
	errLocked             = errors.New("another backup is running against this database")
	errDatabaseNotFound   = errors.New("database not found")
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "dbackup",
	Short: "Back up a Delicious account into a local SQLite database",
	Long: `dbackup copies the bookmarks and tags of a Delicious account into a
SQLite database and links every bookmark to its tags.

The first run fetches everything. Later runs only fetch the bookmarks added
since the last run, using the timestamp kept in ~/.deliciousbackup. Running
it again is always safe: nothing already stored is duplicated or changed.

Any service speaking the Delicious v1 API can be used with --endpoint, and a
Netscape bookmark export can be imported with --import-html.`,
	Example: `  dbackup -u alice -p s3cret
  dbackup -u alice -p s3cret -f alice.db --strict-checkpoint
  dbackup --import-html delicious.html -f alice.db`,
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		verbose, _ := cmd.Flags().GetBool("verbose")
		if verbose {
			log.SetOutput(cmd.ErrOrStderr())
		} else {
			log.SetOutput(io.Discard)
		}
	},
	RunE: runBackup,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringP("file", "f", core.DefaultDatabase, "Path to the SQLite database file")
	rootCmd.PersistentFlags().String("config", "", "Path to the config file (default is the per-user config dir)")
	rootCmd.PersistentFlags().String("checkpoint", "", "Path to the checkpoint file (default ~/"+core.CheckpointFile+")")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Log details of the run to stderr")

	rootCmd.Flags().StringP("username", "u", "", "Delicious username")
	rootCmd.Flags().StringP("password", "p", "", "Delicious password")
	rootCmd.Flags().String("endpoint", core.DefaultEndpoint, "Base URL of the Delicious v1 API")
	rootCmd.Flags().String("import-html", "", "Import a Netscape bookmark export instead of calling the API")
	rootCmd.Flags().Bool("strict-checkpoint", false, "Only record the checkpoint after a fully successful run")
	rootCmd.Flags().Duration("timeout", core.DefaultHTTPTimeout, "Timeout for each API request")
	rootCmd.Flags().BoolP("quiet", "q", false, "Only print warnings and errors")
}

func runBackup(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	importHTML, err := cmd.Flags().GetString("import-html")
	if err != nil {
		return fmt.Errorf("failed to read --import-html: %w", err)
	}
	quiet, err := cmd.Flags().GetBool("quiet")
	if err != nil {
		return fmt.Errorf("failed to read --quiet: %w", err)
	}

	if importHTML == "" && !cfg.HasCredentials() {
		_ = cmd.Help()
		return errMissingCredentials
	}

	unlock, err := lockDatabase(cfg.Database)
	if err != nil {
		return err
	}
	defer unlock()

	database, err := initDB(cfg.Database)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := database.Close(); err != nil {
			log.Printf("failed to close database: %v", err)
		}
	}()
	logStoreEvents(database)

	cpPath, err := checkpointPath(cfg)
	if err != nil {
		return err
	}

	var (
		src  source.Source
		from string
	)
	if importHTML != "" {
		src = source.NewHTMLFile(importHTML)
		from = importHTML
	} else {
		src = source.NewDelicious(cfg.Username, cfg.Password,
			source.WithBaseURL(cfg.Endpoint),
			source.WithTimeout(cfg.Timeout),
		)
		from = "Delicious"
	}

	mode := backup.CheckpointEarly
	if cfg.StrictCheckpoint {
		mode = backup.CheckpointStrict
	}

	progress := newConsoleProgress(from, quiet)
	engine := backup.New(database, src, checkpoint.NewFileStore(cpPath),
		backup.WithLogger(log.New(log.Writer(), "[backup] ", log.LstdFlags)),
		backup.WithObserver(progress),
		backup.WithCheckpointMode(mode),
	)

	log.Printf("Backing up into %s (checkpoint %s, %s mode)", cfg.Database, cpPath, mode)
	report, err := engine.Run(cmd.Context())
	progress.stop(err)
	if err != nil {
		return fmt.Errorf("backup failed: %w", explainCheckpoint(err, cpPath))
	}

	printReport(cmd.OutOrStdout(), cmd.ErrOrStderr(), report, quiet)
	return nil
}

// loadConfig reads the config file and applies the flags set on the
// command line on top of it.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	path, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, fmt.Errorf("failed to read --config: %w", err)
	}
	if path == "" {
		if path, err = config.DefaultPath(); err != nil {
			return nil, err
		}
	}

	cfg, err := config.Load(path)
	if err != nil {
		return nil, err
	}

	flags := cmd.Flags()
	for name, dst := range map[string]*string{
		"username":   &cfg.Username,
		"password":   &cfg.Password,
		"endpoint":   &cfg.Endpoint,
		"file":       &cfg.Database,
		"checkpoint": &cfg.Checkpoint,
	} {
		if !flags.Changed(name) {
			continue
		}
		if *dst, err = flags.GetString(name); err != nil {
			return nil, fmt.Errorf("failed to read --%s: %w", name, err)
		}
	}
	if flags.Changed("strict-checkpoint") {
		if cfg.StrictCheckpoint, err = flags.GetBool("strict-checkpoint"); err != nil {
			return nil, fmt.Errorf("failed to read --strict-checkpoint: %w", err)
		}
	}
	if flags.Changed("timeout") {
		if cfg.Timeout, err = flags.GetDuration("timeout"); err != nil {
			return nil, fmt.Errorf("failed to read --timeout: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func checkpointPath(cfg *config.Config) (string, error) {
	if cfg.Checkpoint != "" {
		return cfg.Checkpoint, nil
	}
	return checkpoint.DefaultPath(core.CheckpointFile)
}

// explainCheckpoint points the operator at an unreadable checkpoint file. Runs
// never overwrite it on their own, since its value decides what is fetched.
func explainCheckpoint(err error, path string) error {
	if errors.Is(err, checkpoint.ErrMalformed) {
		return fmt.Errorf("%w (remove %s to run a full backup)", err, path)
	}
	return err
}

// lockDatabase takes an exclusive lock next to the database file so two
// runs never write the same database.
func lockDatabase(dbPath string) (func(), error) {
	lock := flock.New(dbPath + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("acquiring lock: %w", err)
	}
	if !locked {
		return nil, errLocked
	}
	return func() { _ = lock.Unlock() }, nil
}

func initDB(dbPath string) (*db.DB, error) {
	database, err := db.NewSQLiteDB(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to create database: %w", err)
	}

	if err := database.Migrate(); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	log.Println("Database migrated successfully")

	return database, nil
}

// openExistingDB is initDB for commands that only read: it fails instead of
// creating a database that is not there.
func openExistingDB(dbPath string) (*db.DB, error) {
	if _, err := os.Stat(dbPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", errDatabaseNotFound, dbPath)
		}
		return nil, fmt.Errorf("failed to stat database: %w", err)
	}
	return initDB(dbPath)
}

// logStoreEvents logs every row a run adds.
func logStoreEvents(database *db.DB) {
	database.RegisterEventListener(db.OnBookmarkInsertedEvent, func(event db.Event) error {
		ev := event.(db.BookmarkInsertedEvent)
		log.Printf("New bookmark: %d - %s", ev.Bookmark.ID, ev.Bookmark.Href)
		return nil
	})
	database.RegisterEventListener(db.OnTagInsertedEvent, func(event db.Event) error {
		ev := event.(db.TagInsertedEvent)
		log.Printf("New tag: %d - %s", ev.Tag.ID, ev.Tag.Name)
		return nil
	})
	database.RegisterEventListener(db.OnLinkCreatedEvent, func(event db.Event) error {
		ev := event.(db.LinkCreatedEvent)
		log.Printf("Linked bookmark %d to tag %d", ev.Link.BookmarkID, ev.Link.TagID)
		return nil
	})
}
