package utils

import (
	"fmt"
	"testing"
)

func TestFormatTime(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{0, "0.0 sec"},
		{10, "10.0 sec"},
		{59.9, "59.9 sec"},
		{59.99, "60.0 sec"},
		{60, "1.0 min"},
		{90, "1.5 min"},
		{3599, "60.0 min"},
		{3600, "1.0 hrs"},
		{5400, "1.5 hrs"},
		{86400, "24.0 hrs"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatTime(tt.seconds); got != tt.want {
				t.Errorf("FormatTime(%v) = %q, want %q", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestFormatRoundedUnit(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "0s"},
		{45, "45s"},
		{-45, "45s"},
		{60, "1m"},
		{3600, "60m"},
		{7200, "2h"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatRoundedUnit(tt.seconds); got != tt.want {
				t.Errorf("FormatRoundedUnit(%d) = %q, want %q", tt.seconds, got, tt.want)
			}
		})
	}
}

func ExampleFormatTime() {
	fmt.Println(FormatTime(59.9))
	fmt.Println(FormatTime(60.0))
	fmt.Println(FormatTime(3600.0))
	// Output:
	// 59.9 sec
	// 1.0 min
	// 1.0 hrs
}
