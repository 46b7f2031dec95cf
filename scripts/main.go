package main

import (
	"flag"

	"github.com/goyek/goyek/v2"
)

var (
	lintFix     = flag.Bool("lint-fix", false, "Auto-fix lint issues (for lint)")
	lintVerbose = flag.Bool("lint-verbose", false, "Verbose lint output (for lint)")
	testRun     = flag.String("test-run", "", "Run only tests matching this pattern (for test)")
)

func main() {
	flag.Parse()
	goyek.Main(flag.Args())
}

// GetLintFix returns the lint-fix flag value
func GetLintFix() bool { return *lintFix }

// GetLintVerbose returns the lint-verbose flag value
func GetLintVerbose() bool { return *lintVerbose }

// GetTestRun returns the test-run flag value
func GetTestRun() string { return *testRun }
