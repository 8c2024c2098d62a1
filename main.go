package main

import (
	"context"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"sync"
	"syscall"

	"gridsnake/ai"
	"gridsnake/config"
	"gridsnake/driver"
	"gridsnake/game"
	"gridsnake/log"
	"gridsnake/spectate"
	"gridsnake/term"
	"gridsnake/ui"

	"github.com/spf13/cobra"
)

const appName = "gridsnake"

var configFile string

// flagKeys maps command line flags onto configuration keys.
var flagKeys = map[string]string{
	"difficulty": "difficulty",
	"frontend":   "frontend",
	"seed":       "seed",
	"autopilot":  "autopilot",
	"spectate":   "spectate.addr",
	"log-level":  "log.level",
	"log-file":   "log.path",
}

var rootCmd = &cobra.Command{
	Use:          appName,
	Short:        "Classic grid snake",
	Long:         `Classic snake on a 30x30 walled grid, played in a window or a terminal, with an optional autopilot and a websocket feed for spectators.`,
	SilenceUsage: true,
	RunE:         run,
}

func init() {
	// raylib must own the main OS thread.
	runtime.LockOSThread()

	f := rootCmd.Flags()
	f.StringVar(&configFile, "config", "", "config file (yaml, json or toml)")
	f.String("difficulty", "easy", "easy, medium or hard")
	f.String("frontend", config.FrontendRaylib, "raylib, terminal or headless")
	f.Uint64("seed", 0, "food placement seed, 0 picks one from the clock")
	f.Bool("autopilot", false, "let the computer play and restart after every round")
	f.String("spectate", "", "serve a websocket snapshot feed on this address, e.g. :8080")
	f.String("log-level", "info", "debug, info, warn or error")
	f.String("log-file", "", "write logs to this file instead of stderr")
}

func run(cmd *cobra.Command, args []string) error {
	v := config.New()
	for flag, key := range flagKeys {
		if err := v.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return err
		}
	}
	cfg, err := config.Load(v, configFile)
	if err != nil {
		return err
	}

	// The terminal frontend owns stderr, so logs go to a file.
	logPath := cfg.LogConf.Path
	if cfg.Frontend == config.FrontendTerminal && logPath == "" {
		logPath = filepath.Join(os.TempDir(), appName+".log")
	}
	if err := log.InitLog(appName, cfg.LogConf.Level, logPath); err != nil {
		return err
	}
	defer log.Close()
	log.Logger().Debug("configuration loaded", "config", *cfg)

	difficulty, _ := cfg.DifficultyLevel()
	engine := game.NewEngine(
		game.WithSeed(cfg.Seed),
		game.WithDifficulty(difficulty),
		game.WithLogger(log.Logger()),
	)

	var opts []driver.Option
	if cfg.Autopilot || cfg.Frontend == config.FrontendHeadless {
		opts = append(opts, driver.WithPilot(ai.NewAutopilot(engine.Grid())), driver.WithAutoRestart(true))
	}
	drv := driver.New(engine, opts...)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var wg sync.WaitGroup
	loopErr := make(chan error, 1)
	wg.Add(1)
	go func() {
		defer wg.Done()
		loopErr <- drv.Run(ctx)
	}()

	if cfg.Spectate.Addr != "" {
		srv := spectate.NewServer(drv, engine.Grid(), cfg.Spectate.Path, spectate.WithDebug(cfg.Spectate.Debug))
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := srv.ListenAndServe(ctx, cfg.Spectate.Addr); err != nil {
				log.Error("spectate server: %v", err)
			}
		}()
	}

	switch cfg.Frontend {
	case config.FrontendRaylib:
		err = ui.Run(ctx, drv, engine.Grid(), cfg.Window)
	case config.FrontendTerminal:
		var t *term.Terminal
		if t, err = term.New(drv, engine.Grid()); err == nil {
			err = t.Run(ctx)
		}
	case config.FrontendHeadless:
		log.Info("running headless, press Ctrl-C to stop")
		<-ctx.Done()
	}

	stop()
	wg.Wait()
	if lerr := <-loopErr; lerr != nil && err == nil {
		err = lerr
	}

	summary := drv.Stats().Summary()
	log.Logger().Info("session finished", "games", summary.GamesPlayed, "best", summary.MaxScore, "average", summary.AverageScore)
	return err
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		log.Error("%v", err)
		os.Exit(1)
	}
}
