package main

import (
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"screenbalance/internal/config"
	"screenbalance/internal/daemon"
)

// startupSettle is how long start watches the child before reporting success
const startupSettle = 1500 * time.Millisecond

var startCmd = &cobra.Command{
	Use:   "start",
	Short: "Start the tracker in the background",
	RunE:  runStart,
}

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the background tracker",
	RunE:  runStop,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the tracker runs and its current balance",
	RunE:  runStatus,
}

func init() {
	startCmd.Flags().BoolVar(&noWeb, "no-web", false, "Disable the HTTP server")
	startCmd.Flags().IntVarP(&webPort, "port", "p", 0, "Override web.port")
	startCmd.Flags().DurationVar(&sampleInterval, "interval", 0, "Override tracker.sample_interval")
	rootCmd.AddCommand(startCmd, stopCmd, statusCmd)
}

func runStart(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if err := applyRunFlags(cfg); err != nil {
		return err
	}

	dm := daemon.New(cfg.Daemon.PIDFile)
	running, pid, err := dm.IsRunning()
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}

	if daemon.IsChild() {
		return runDaemonChild(cfg, dm)
	}

	if running {
		return fmt.Errorf("daemon is already running (PID: %d)", pid)
	}

	process, err := daemon.Spawn(os.Args[1:], cfg.Daemon.LogFile)
	if err != nil {
		return err
	}
	if err := daemon.WaitStartup(process, startupSettle); err != nil {
		return fmt.Errorf("%w; see %s", err, cfg.Daemon.LogFile)
	}

	fmt.Printf("Daemon started successfully (PID: %d)\n", process.Pid)
	if cfg.Web.Enabled {
		fmt.Printf("Web dashboard: http://%s\n", cfg.WebAddress())
	}
	fmt.Printf("Logs: %s\n", cfg.Daemon.LogFile)
	return nil
}

// runDaemonChild is the detached process; stdout is already the log file
func runDaemonChild(cfg *config.Config, dm *daemon.Daemon) error {
	logger := setupLogger(cfg.Logging, os.Stdout)

	if err := dm.WritePID(); err != nil {
		logger.Error().Err(err).Msg("Failed to write PID file")
		return err
	}
	defer dm.RemovePID()

	if err := runTracker(cfg, logger, false); err != nil {
		logger.Error().Err(err).Msg("Tracker exited")
		return err
	}
	return nil
}

func runStop(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	dm := daemon.New(cfg.Daemon.PIDFile)
	running, pid, err := dm.IsRunning()
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}

	if !running {
		fmt.Println("Daemon is not running")
		return nil
	}

	fmt.Printf("Stopping daemon (PID: %d)...\n", pid)
	if err := dm.Stop(); err != nil {
		return fmt.Errorf("failed to stop daemon: %w", err)
	}

	fmt.Println("Daemon stopped successfully")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	cyan := color.New(color.FgCyan, color.Bold)
	green := color.New(color.FgGreen, color.Bold)
	yellow := color.New(color.FgYellow, color.Bold)
	red := color.New(color.FgRed, color.Bold)

	dm := daemon.New(cfg.Daemon.PIDFile)
	running, pid, err := dm.IsRunning()
	if err != nil {
		return fmt.Errorf("failed to check daemon status: %w", err)
	}

	cyan.Println("screenbalance status")
	if running {
		green.Printf("Daemon: running (PID: %d)\n", pid)
	} else {
		yellow.Println("Daemon: not running")
	}

	if !cfg.Web.Enabled {
		return nil
	}

	status, err := newClient(cfg).status()
	if err != nil {
		if running {
			red.Printf("Web API unreachable at %s: %v\n", cfg.WebAddress(), err)
		}
		return nil
	}

	fmt.Printf("State:    %s\n", status.State)
	fmt.Printf("Displays: %d\n", status.Displays)
	fmt.Printf("Uptime:   %s\n", status.Uptime)
	if status.Status != "" {
		fmt.Printf("Balance:  [%s] %s\n", status.Glyph, status.Status)
	}
	return nil
}
