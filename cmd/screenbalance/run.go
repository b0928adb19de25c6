package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"screenbalance/internal/config"
	"screenbalance/internal/database"
	"screenbalance/internal/geometry"
	"screenbalance/internal/models"
	"screenbalance/internal/reporter"
	"screenbalance/internal/tracker"
	"screenbalance/internal/web"
	"screenbalance/pkg/detector"
)

const errorRetention = 7 * 24 * time.Hour

var (
	noUI           bool
	noWeb          bool
	webPort        int
	sampleInterval time.Duration
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Track in the foreground",
	Long: `Run the tracker in the foreground. On a terminal the distribution is
redrawn every report tick; press p to pause or resume and q to quit.`,
	RunE: runForeground,
}

func init() {
	runCmd.Flags().BoolVar(&noUI, "no-ui", false, "Do not draw the terminal view even on a terminal")
	runCmd.Flags().BoolVar(&noWeb, "no-web", false, "Disable the HTTP server")
	runCmd.Flags().IntVarP(&webPort, "port", "p", 0, "Override web.port")
	runCmd.Flags().DurationVar(&sampleInterval, "interval", 0, "Override tracker.sample_interval")
	rootCmd.AddCommand(runCmd)
}

func runForeground(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyRunFlags(cfg); err != nil {
		return err
	}

	interactive := !noUI && term.IsTerminal(int(os.Stdout.Fd())) && term.IsTerminal(int(os.Stdin.Fd()))

	logOut := os.Stdout
	if interactive {
		// the terminal view owns stdout
		f, err := os.OpenFile(cfg.Daemon.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return fmt.Errorf("failed to open log file: %w", err)
		}
		defer f.Close()
		logOut = f
	}
	logger := setupLogger(cfg.Logging, logOut)

	return runTracker(cfg, logger, interactive)
}

func applyRunFlags(cfg *config.Config) error {
	if noWeb {
		cfg.Web.Enabled = false
	}
	if sampleInterval > 0 {
		if err := cfg.SetSampleInterval(sampleInterval); err != nil {
			return err
		}
	}
	if webPort > 0 {
		return cfg.SetWebPort(webPort)
	}
	return nil
}

// runTracker wires the sampler, the reporter and its sinks, and blocks until
// a signal arrives or the user quits.
func runTracker(cfg *config.Config, logger zerolog.Logger, interactive bool) error {
	logger.Info().Str("version", version).Msg("Starting screenbalance")
	logger.Debug().Msg(cfg.String())

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var (
		store  tracker.ErrorStore
		lister web.ErrorLister
		repo   *database.Repository
	)
	db, err := database.Connect(cfg.Database.Path)
	if err == nil {
		err = db.Initialize()
	}
	if err != nil {
		logger.Warn().Err(err).Msg("Error log unavailable, continuing without it")
	} else {
		defer db.Close()
		repo = database.NewRepository(db)
		store, lister = repo, repo
		if n, err := repo.DeleteErrorsBefore(time.Now().Add(-errorRetention)); err != nil {
			logger.Warn().Err(err).Msg("Failed to prune error log")
		} else if n > 0 {
			logger.Debug().Int64("deleted", n).Msg("Pruned error log")
		}
	}

	det, err := detector.New(cfg.QueryTimeout())
	if err != nil {
		recordStartupError(repo, err)
		return fmt.Errorf("failed to initialize display detector: %w", err)
	}
	defer det.Close()

	displays, err := geometry.Resolve(det)
	if err != nil {
		recordStartupError(repo, err)
		return fmt.Errorf("cannot track without display geometry: %w", err)
	}

	logger.Info().
		Str("display_server", det.GetDisplayServer()).
		Int("displays", len(displays)).
		Msg("Display geometry resolved")
	for i, r := range displays {
		logger.Debug().Int("screen", i+1).Int("x", r.X).Int("y", r.Y).
			Int("width", r.Width).Int("height", r.Height).Msg("Display")
	}

	svc := tracker.NewService(cfg, det, displays, store, logger)
	rep := reporter.New(cfg, svc, logger, reporter.MetricsSink{})

	var server *web.Server
	if cfg.Web.Enabled {
		handler := web.NewHandler(cfg, svc, lister, logger)
		rep.AddSink(handler)
		server = web.NewServer(cfg, handler, logger)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var wg sync.WaitGroup

	if server != nil {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if err := server.Start(); err != nil {
				logger.Error().Err(err).Msg("Web server error")
			}
		}()
	}

	if interactive {
		rep.AddSink(reporter.NewTerminalSink(os.Stdout))
		fmt.Print("\033[?25l\033[2J")
		defer fmt.Print("\033[?25h\r\n")

		startKeyListener(&wg, logger, func() error {
			return reporter.ListenKeys(ctx, os.Stdin, reporter.Controls{
				TogglePause: func() {
					svc.TogglePause()
					rep.ReportOnce()
				},
				Quit: cancel,
			})
		})
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		if err := svc.Start(ctx); err != nil && err != context.Canceled {
			logger.Error().Err(err).Msg("Tracker error")
			cancel()
		}
	}()
	go func() {
		defer wg.Done()
		_ = rep.Run(ctx)
	}()

	<-ctx.Done()
	logger.Info().Msg("Shutting down")
	svc.Stop()

	if server != nil {
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("Error shutting down web server")
		}
	}

	wg.Wait()
	logger.Info().Msg("screenbalance stopped")
	return nil
}

// startKeyListener runs listen under wg so that shutdown waits for the
// terminal to leave raw mode before the process exits.
func startKeyListener(wg *sync.WaitGroup, logger zerolog.Logger, listen func() error) {
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := listen(); err != nil {
			logger.Warn().Err(err).Msg("Keyboard control unavailable")
		}
	}()
}

func recordStartupError(repo *database.Repository, err error) {
	if repo == nil {
		return
	}
	_ = repo.CreateErrorLog(&models.ErrorLog{
		Component: "geometry",
		ErrorMsg:  err.Error(),
	})
}
