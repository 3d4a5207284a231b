package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/rs/zerolog/log"
	"golang.org/x/term"

	"github.com/colonyops/taproom/internal/browse"
	"github.com/colonyops/taproom/internal/commands"
	"github.com/colonyops/taproom/internal/core/config"
	"github.com/colonyops/taproom/internal/core/styles"
	"github.com/colonyops/taproom/internal/data/db"
	"github.com/colonyops/taproom/internal/data/stores"
	"github.com/colonyops/taproom/internal/sweep"
	"github.com/colonyops/taproom/pkg/logutils"
)

// lifecycle owns the resources opened before a command runs and closed
// after it: the log file, the database and the cache sweeper.
type lifecycle struct {
	flags *commands.Flags
	// app is shared with every command and filled in by start.
	app *browse.App

	closeLog  func()
	database  *db.DB
	stopSweep context.CancelFunc
}

func (l *lifecycle) start() error {
	if err := l.setupLogging(); err != nil {
		return err
	}

	cfg, err := config.Load(l.flags.ConfigPath, l.flags.DataDir)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	l.flags.Config = cfg

	for _, w := range cfg.Warnings() {
		log.Warn().Str("category", w.Category).Str("item", w.Item).Msg(w.Message)
	}
	if palette, ok := styles.GetPalette(cfg.TUI.Theme); ok {
		styles.SetTheme(palette)
	}

	l.database, err = openDatabase(cfg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}

	built, err := browse.NewApp(cfg, l.database, log.Logger)
	if err != nil {
		return err
	}
	*l.app = *built

	sweepCtx, cancel := context.WithCancel(context.Background())
	l.stopSweep = cancel
	go sweep.Start(sweepCtx, built.KV, cfg.Cache.SweepInterval)

	return nil
}

// setupLogging logs to a file unless --log-file is "-", so log lines never
// land on top of the TUI.
func (l *lifecycle) setupLogging() error {
	file := l.flags.LogFile
	switch file {
	case "":
		file = config.DefaultLogFile(l.flags.DataDir)
	case "-":
		file = ""
	}

	logger, closer, err := logutils.New(logutils.Options{
		Level:   l.flags.LogLevel,
		File:    file,
		Console: term.IsTerminal(int(os.Stderr.Fd())),
	})
	if err != nil {
		return fmt.Errorf("setup logger: %w", err)
	}
	log.Logger = logger
	l.closeLog = closer
	return nil
}

func (l *lifecycle) stop() error {
	if l.stopSweep != nil {
		l.stopSweep()
	}

	var err error
	if l.database != nil {
		if err = l.database.Close(); err != nil {
			log.Error().Err(err).Msg("failed to close database")
		}
	}

	if l.closeLog != nil {
		l.closeLog()
	}
	return err
}

// openDatabase opens the database, moving a corrupt file aside and starting
// over once.
func openDatabase(cfg *config.Config) (*db.DB, error) {
	opts := db.OpenOptions{
		MaxOpenConns: cfg.Database.MaxOpenConns,
		MaxIdleConns: cfg.Database.MaxIdleConns,
		BusyTimeout:  cfg.Database.BusyTimeout,
	}

	database, err := db.Open(cfg.DataDir, opts)
	if err == nil || !stores.IsCorruptionError(err) {
		return database, err
	}

	backup, recoverErr := stores.RecoverFromCorruption(cfg.DataDir)
	if recoverErr != nil {
		return nil, errors.Join(err, recoverErr)
	}
	log.Warn().Err(err).Str("backup", backup).Msg("database was corrupt, moved it aside")
	return db.Open(cfg.DataDir, opts)
}
