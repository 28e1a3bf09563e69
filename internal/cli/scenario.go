package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/parleybot/parley/pkg/scenario"
)

// RunScenarios replays each scenario file against the bot and reports
// pass/fail per scenario. Any failure makes the command exit non-zero.
func RunScenarios(configPath string, paths []string, debug bool) error {
	logger := createLogger(debug)

	bot, cleanup, err := BuildBot(configPath, "", logger)
	if err != nil {
		return fmt.Errorf("error initializing bot: %w", err)
	}
	defer cleanup()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := scenario.NewRunner(bot, scenario.WithLogger(logger))

	failed := 0
	for _, path := range paths {
		sc, err := scenario.Load(path)
		if err != nil {
			return err
		}

		result, err := runner.Run(ctx, sc)
		if err != nil {
			return fmt.Errorf("scenario %s: %w", path, err)
		}

		if result.Passed() {
			fmt.Printf("PASS  %s (%d turns)\n", sc.Name, result.Turns)
			continue
		}

		failed++
		fmt.Printf("FAIL  %s\n", sc.Name)
		for _, f := range result.Failures {
			fmt.Printf("      %s\n", f)
		}
	}

	if failed > 0 {
		return fmt.Errorf("%d of %d scenarios failed", failed, len(paths))
	}
	return nil
}
