// Command historyctl inspects and maintains the chat history stores offline.
package main

import (
	"chat-memory/infrastructure/storage"
	"chat-memory/internal"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"

	"github.com/Netflix/go-env"
	"github.com/dgraph-io/badger/v4"
	"github.com/joho/godotenv"
	"github.com/mama165/sdk-go/logs"
	"github.com/spf13/cobra"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

type app struct {
	config     internal.Config
	log        *slog.Logger
	db         *sql.DB
	sqlitePath string
	badgerPath string
	noColor    bool
}

func newRootCmd() *cobra.Command {
	a := &app{}
	root := &cobra.Command{
		Use:          "historyctl",
		Short:        "Operator tool for the chat history stores",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			if a.db != nil {
				_ = a.db.Close()
			}
		},
	}
	root.PersistentFlags().StringVar(&a.sqlitePath, "sqlite", "", "SQLite file (default SQLITE_FILEPATH)")
	root.PersistentFlags().StringVar(&a.badgerPath, "badger", "", "BadgerDB directory (default BADGER_FILEPATH)")
	root.PersistentFlags().BoolVar(&a.noColor, "no-color", false, "Disable coloured output")

	root.AddCommand(
		statsCmd(a),
		conversationsCmd(a),
		historyCmd(a),
		messagesCmd(a),
		deleteCmd(a),
		sweepCmd(a),
		archiveCmd(a),
		cacheInspectCmd(a),
	)
	return root
}

func (a *app) load() error {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf(".env loading failed: %w", err)
	}
	if _, err := env.UnmarshalFromEnviron(&a.config); err != nil {
		return fmt.Errorf("config error: %w", err)
	}
	if a.sqlitePath != "" {
		a.config.SqliteFilepath = a.sqlitePath
	}
	if a.badgerPath != "" {
		a.config.BadgerFilepath = a.badgerPath
	}
	a.log = logs.GetLoggerFromString(a.config.LogLevel)
	return nil
}

// durable opens the SQLite store on first use.
func (a *app) durable() (*sql.DB, error) {
	if a.db != nil {
		return a.db, nil
	}
	db, err := storage.Open(a.config.SqliteFilepath)
	if err != nil {
		return nil, fmt.Errorf("durable store opening failed: %w", err)
	}
	a.db = db
	return db, nil
}

// cacheDB opens the BadgerDB directory read-only. The daemon must be stopped, badger holds a directory lock.
func (a *app) cacheDB() (*badger.DB, error) {
	if a.config.BadgerFilepath == "" {
		return nil, fmt.Errorf("the cache runs in memory, set --badger or BADGER_FILEPATH")
	}
	kv, err := badger.Open(badger.DefaultOptions(a.config.BadgerFilepath).
		WithReadOnly(true).
		WithLoggingLevel(badger.ERROR))
	if err != nil {
		return nil, fmt.Errorf("cache opening failed: %w", err)
	}
	return kv, nil
}
