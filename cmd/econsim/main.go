// Command econsim runs the synthetic economy simulation.
package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"log/slog"

	"github.com/dustin/go-humanize"

	"github.com/protheus99/econsim-sub000/internal/api"
	"github.com/protheus99/econsim-sub000/internal/catalog"
	"github.com/protheus99/econsim-sub000/internal/clock"
	"github.com/protheus99/econsim-sub000/internal/config"
	"github.com/protheus99/econsim-sub000/internal/engine"
	"github.com/protheus99/econsim-sub000/internal/geo"
	"github.com/protheus99/econsim-sub000/internal/persistence"
)

func main() {
	configPath := flag.String("config", "econsim.toml", "path to TOML config")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	cfg, err := config.Load(*configPath)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// ── World ─────────────────────────────────────────────────────────
	cat := catalog.Default()
	atlas := geo.DefaultWorld()
	firms, corps := engine.Generate()

	world := engine.NewWorld(cfg, cat, atlas, firms, corps)

	totalPop := 0
	for _, c := range atlas.Cities() {
		totalPop += c.Population
	}
	slog.Info("world generated",
		"seed", cfg.Seed,
		"cities", len(atlas.Cities()),
		"population", humanize.Comma(int64(totalPop)),
		"firms", len(firms),
		"corporations", len(corps),
		"products", len(cat.All()),
	)

	// ── Trade archive (optional, write-only) ──────────────────────────
	var arch *persistence.Archive
	if cfg.Archive.Enabled {
		os.MkdirAll(filepath.Dir(cfg.Archive.Path), 0755)
		arch, err = persistence.Open(cfg.Archive.Path)
		if err != nil {
			slog.Error("failed to open trade archive", "error", err)
			os.Exit(1)
		}
		defer arch.Close()
		world.Ledger.OnAppend = arch.Record
		slog.Info("trade archive enabled", "path", cfg.Archive.Path)
	}

	// ── Scheduler ─────────────────────────────────────────────────────
	sched := engine.NewScheduler()
	sched.Interval = cfg.TickInterval
	sched.SetSpeed(cfg.Speed)

	sched.OnHour = world.TickHour
	sched.OnDay = func(t clock.GameTime) {
		world.TickDay(t)
		if arch != nil {
			if err := arch.Flush(); err != nil {
				slog.Error("archive flush failed", "error", err)
			}
		}
	}
	sched.OnMonth = world.TickMonth
	sched.OnYear = world.TickYear

	// ── HTTP API ──────────────────────────────────────────────────────
	if cfg.API.AdminKey == "" {
		slog.Warn("ECONSIM_ADMIN_KEY not set — admin POST endpoints will be disabled")
	}

	apiServer := &api.Server{
		World:    world,
		Sched:    sched,
		Port:     cfg.API.Port,
		AdminKey: cfg.API.AdminKey,
	}
	apiServer.Start()

	// ── Start ─────────────────────────────────────────────────────────
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("received signal, shutting down", "signal", sig)
		sched.Stop()
	}()

	fmt.Printf("\nEconomy is live: %d firms across %d cities, %s citizens.\n",
		len(firms), len(atlas.Cities()), humanize.Comma(int64(totalPop)))
	fmt.Printf("API: http://localhost:%d/api/v1/status\n", cfg.API.Port)
	fmt.Println("Starting simulation... (Ctrl+C to stop)")

	sched.Run()

	if arch != nil {
		if err := arch.Flush(); err != nil {
			slog.Error("final archive flush failed", "error", err)
		}
	}
	fmt.Println("Simulation stopped.")
}
