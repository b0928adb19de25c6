package config_test

import (
	"fmt"
	"time"

	"screenbalance/internal/config"
)

// Example of creating a default configuration
func ExampleDefault() {
	cfg := config.Default()
	fmt.Println("Sample Interval:", cfg.Tracker.SampleInterval)
	fmt.Println("Idle Threshold:", cfg.Tracker.IdleThreshold)
	fmt.Println("Focus Source:", cfg.Tracker.FocusSource)
	// Output:
	// Sample Interval: 1s
	// Idle Threshold: 2m0s
	// Focus Source: window
}

// Example of setting the sample interval with validation
func ExampleConfig_SetSampleInterval() {
	cfg := config.Default()

	// Valid interval
	if err := cfg.SetSampleInterval(2 * time.Second); err != nil {
		fmt.Println("Error:", err)
	} else {
		fmt.Println("Sample interval set to:", cfg.Tracker.SampleInterval)
	}

	// Invalid interval (longer than the idle threshold)
	if err := cfg.SetSampleInterval(5 * time.Minute); err != nil {
		fmt.Println("Error:", err)
	}

	// Output:
	// Sample interval set to: 2s
	// Error: sample interval cannot be greater than idle threshold 2m0s
}

// Example of validating configuration
func ExampleConfig_Validate() {
	cfg := config.Default()

	if err := cfg.Validate(); err != nil {
		fmt.Println("Invalid config:", err)
	} else {
		fmt.Println("Configuration is valid")
	}

	// Output:
	// Configuration is valid
}

// Example of the retroactive idle correction size
func ExampleConfig_IdleCorrectionTicks() {
	cfg := config.Default()
	fmt.Println(cfg.IdleCorrectionTicks())
	// Output:
	// 120
}
