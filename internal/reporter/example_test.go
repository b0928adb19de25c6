package reporter_test

import (
	"fmt"

	"screenbalance/internal/balance"
	"screenbalance/internal/reporter"
	"screenbalance/internal/tracker"
)

func ExampleFormatStatus() {
	fmt.Println(reporter.FormatStatus(balance.Analyze([]int64{10, 0})))
	fmt.Println(reporter.FormatStatus(balance.Analyze([]int64{7, 7})))
	// Output:
	// Screen 2 needs 10.0 sec to reach balance
	// All screens are balanced: 0 sec
}

func ExampleGlyph() {
	report := balance.Analyze([]int64{10, 0})
	fmt.Println(reporter.Glyph(tracker.Active, report))
	fmt.Println(reporter.Glyph(tracker.Paused, report))
	// Output:
	// 2
	// | |
}
