package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/batchmates/batchmates/client"
)

func newDoctorCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose configuration and connectivity",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, cancel := context.WithTimeout(cmd.Context(), 5*time.Second)
			defer cancel()
			return runDoctor(ctx, apiClient)
		},
	}
}

type checkResult struct {
	Name   string
	Passed bool
	Detail string
	Hint   string
}

func runDoctor(ctx context.Context, c *client.Client) error {
	results := doctorChecks(ctx, c)

	fmt.Println()
	allPassed := true
	for _, r := range results {
		mark := "ok  "
		if !r.Passed {
			mark = "FAIL"
			allPassed = false
		}
		if r.Detail != "" {
			fmt.Printf("[%s] %s: %s\n", mark, r.Name, r.Detail)
		} else {
			fmt.Printf("[%s] %s\n", mark, r.Name)
		}
		if !r.Passed && r.Hint != "" {
			fmt.Printf("       Hint: %s\n", r.Hint)
		}
	}
	fmt.Println()

	if !allPassed {
		return fmt.Errorf("doctor found issues")
	}
	fmt.Println("All checks passed.")
	return nil
}

func doctorChecks(ctx context.Context, c *client.Client) []checkResult {
	var results []checkResult

	cfgPath, err := configPath()
	if err == nil {
		if _, statErr := os.Stat(cfgPath); statErr == nil {
			results = append(results, checkResult{Name: "Config file", Passed: true, Detail: cfgPath})
		} else {
			results = append(results, checkResult{Name: "Config file", Passed: true, Detail: "none (using flags and env)"})
		}
	}

	results = append(results, checkResult{Name: "Server URL", Passed: flagURL != "", Detail: flagURL, Hint: "Set --url or BATCHMATES_URL"})

	health, err := c.Health(ctx)
	if err != nil {
		return append(results, checkResult{
			Name: "Server reachable", Passed: false, Detail: flagURL,
			Hint: fmt.Sprintf("Is the batchmates server running? Error: %v", err),
		})
	}
	results = append(results, checkResult{Name: "Server reachable", Passed: true, Detail: "v" + health.Version})

	results = append(results, checkResult{
		Name: "Database", Passed: health.Database == "connected", Detail: health.Database,
		Hint: "Check DATABASE_URL on the server",
	})

	results = append(results, checkResult{
		Name: "Profiles loaded", Passed: health.Profiles > 0, Detail: fmt.Sprintf("%d", health.Profiles),
		Hint: "Check PROFILES_FILE on the server",
	})

	return results
}
