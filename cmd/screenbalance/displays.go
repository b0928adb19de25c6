package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"screenbalance/internal/geometry"
	"screenbalance/pkg/detector"
)

var displaysCmd = &cobra.Command{
	Use:   "displays",
	Short: "Print the display geometry the tracker would use",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		det, err := detector.New(cfg.QueryTimeout())
		if err != nil {
			return fmt.Errorf("failed to initialize display detector: %w", err)
		}
		defer det.Close()

		displays, err := geometry.Resolve(det)
		if err != nil {
			return err
		}

		cyan := color.New(color.FgCyan, color.Bold)
		cyan.Printf("Display server: %s\n", det.GetDisplayServer())
		fmt.Printf("%-10s %8s %8s %8s %8s\n", "Screen", "X", "Y", "Width", "Height")
		for i, r := range displays {
			fmt.Printf("%-10d %8d %8d %8d %8d\n", i+1, r.X, r.Y, r.Width, r.Height)
		}
		return nil
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("screenbalance version %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}

func init() {
	rootCmd.AddCommand(displaysCmd, versionCmd)
}
