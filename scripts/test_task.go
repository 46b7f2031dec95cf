package main

import (
	"os"
	"os/exec"

	"github.com/goyek/goyek/v2"
)

// Test runs the test suite
var Test = goyek.Define(goyek.Task{
	Name:  "test",
	Usage: "Run go test. Use -test-run to filter tests",
	Action: func(a *goyek.A) {
		args := []string{"test"}

		if run := GetTestRun(); run != "" {
			args = append(args, "-run", run)
		}

		args = append(args, "./...")

		cmd := exec.Command("go", args...)
		cmd.Stdout = os.Stdout
		cmd.Stderr = os.Stderr

		if err := cmd.Run(); err != nil {
			a.Fatalf("Tests failed: %v", err)
		}
	},
})
