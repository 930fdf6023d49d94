package main

import (
	"context"
	"fmt"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/nathoo/turncore/cli"
	"github.com/nathoo/turncore/config"
	"github.com/nathoo/turncore/engine"
	"github.com/nathoo/turncore/engine/luavm"
	"github.com/nathoo/turncore/engine/save"
	"github.com/nathoo/turncore/engine/state"
	"github.com/nathoo/turncore/loader"
	"github.com/nathoo/turncore/logger"
)

var (
	cfgFile   string
	logLevel  string
	logFormat string
	saveDB    string
	seed      int64

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "turncore",
	Short: "Turn-based RPG engine core",
	Long: `turncore loads Lua module directories and runs them.
With no module arguments the base module directory plus the campaign
and mods listed in the active resources file are loaded.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if logLevel != "" {
			c.LogLevel = logLevel
		}
		if logFormat != "" {
			c.LogFormat = logFormat
		}
		if saveDB != "" {
			c.SaveDB = saveDB
		}
		if cmd.Flags().Changed("seed") {
			c.Seed = seed
		}
		logger.Init(c.LogLevel, c.LogFormat, nil)
		cfg = c
		return nil
	},
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&cfgFile, "config", "", "config file (default ./turncore.yaml)")
	pf.StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.StringVar(&logFormat, "log-format", "", "log format: text or json")
	pf.StringVar(&saveDB, "save-db", "", "SQLite database holding save slots")
	pf.Int64Var(&seed, "seed", 0, "dice seed")
}

// moduleDirs returns the directories to load: the arguments if any,
// otherwise the configured base module and active resources.
func moduleDirs(args []string) []string {
	if len(args) > 0 {
		return args
	}
	return config.ReadActiveResources(cfg.Resources).Directories(cfg.BaseModule)
}

func loadDefs(args []string) (*state.Defs, error) {
	dirs := moduleDirs(args)
	defs, err := loader.LoadAll(dirs...)
	if err != nil {
		return nil, fmt.Errorf("loading modules %v: %w", dirs, err)
	}
	return defs, nil
}

// game is a started campaign with its script runner and save store.
type game struct {
	session *cli.Session
	store   *save.Store
}

func (g *game) Close() {
	g.session.Engine.Close()
	if err := g.store.Close(); err != nil {
		logger.Log.WithError(err).Warn("Closing save database")
	}
}

// startGame loads the modules, starts the campaign and opens the save
// store. A save store that cannot be opened disables saving.
func startGame(args []string) (*game, error) {
	defs, err := loadDefs(args)
	if err != nil {
		return nil, err
	}
	eng := engine.New(defs, cfg.EngineOptions()...)
	luavm.New(eng)
	if err := eng.Init(); err != nil {
		eng.Close()
		return nil, fmt.Errorf("starting campaign: %w", err)
	}

	store, err := save.Open(cfg.SaveDB)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{
			"path":  cfg.SaveDB,
			"error": err,
		}).Warn("Save database unavailable, saving disabled")
	}
	return &game{session: cli.NewSession(eng, store, cfg.FrameMillis), store: store}, nil
}

func commandContext(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
