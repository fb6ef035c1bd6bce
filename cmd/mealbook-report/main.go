// mealbook-report prints a company's monthly totals from the reporting
// mirror, without touching the row store.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"mealbook/internal/config"
	applog "mealbook/internal/log"
	"mealbook/internal/storage"
)

func main() {
	_ = godotenv.Load()

	logger := applog.New(applog.Config{Component: applog.ComponentMirror})
	applog.SetDefault(logger)

	now := time.Now()
	company := flag.String("company", "", "company name (required)")
	year := flag.Int("year", now.Year(), "report year")
	month := flag.Int("month", int(now.Month()), "report month (1-12)")
	flag.Parse()

	if *company == "" {
		fmt.Fprintln(os.Stderr, "usage: mealbook-report -company <name> [-year YYYY] [-month M]")
		os.Exit(2)
	}
	if *month < 1 || *month > 12 {
		fmt.Fprintln(os.Stderr, "month must be between 1 and 12")
		os.Exit(2)
	}

	cfg := config.Load()
	mirror, err := storage.NewMirrorRepository(cfg.MirrorDBPath)
	if err != nil {
		logger.Error("Failed to open mirror database", "error", err, "path", cfg.MirrorDBPath)
		os.Exit(1)
	}
	defer mirror.Close()

	ctx := context.Background()
	total, err := mirror.MonthTotal(ctx, *company, *year, *month)
	if err != nil {
		logger.Error("Failed to read month total", "error", err)
		os.Exit(1)
	}
	byUser, err := mirror.MonthTotalsByUser(ctx, *company, *year, *month)
	if err != nil {
		logger.Error("Failed to read per-user totals", "error", err)
		os.Exit(1)
	}

	fmt.Printf("%s %04d-%02d total: %d\n", *company, *year, *month, total)
	for _, t := range byUser {
		fmt.Printf("  %s: %d\n", t.UserName, t.Amount)
	}
}
