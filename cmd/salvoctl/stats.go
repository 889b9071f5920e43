package main

import (
	"context"
	"io"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"salvo-backend/internal/projections"
)

type statsReport struct {
	projections.DailyStats
	TopTerms  []projections.Ranked `json:"top_terms"`
	TopCities []projections.Ranked `json:"top_cities"`
}

func statsCmd() *cobra.Command {
	var date string
	var top int
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show one day of search statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			if date == "" {
				date = time.Now().UTC().Format("2006-01-02")
			}
			rdb := redis.NewClient(&redis.Options{Addr: redisFlag})
			defer rdb.Close()
			return runStats(cmd.Context(), rdb, date, top, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVarP(&date, "date", "d", "", "Day as YYYY-MM-DD (default: today, UTC)")
	cmd.Flags().IntVar(&top, "top", 5, "How many terms and cities to rank")
	return cmd
}

func runStats(ctx context.Context, rdb redis.Cmdable, date string, top int, out io.Writer) error {
	daily, err := projections.ReadDailyStats(ctx, rdb, date)
	if err != nil {
		return err
	}
	terms, err := projections.Top(ctx, rdb, projections.TermsKey(date), top)
	if err != nil {
		return err
	}
	cities, err := projections.Top(ctx, rdb, projections.CitiesKey(date), top)
	if err != nil {
		return err
	}
	return printJSON(out, statsReport{DailyStats: daily, TopTerms: terms, TopCities: cities})
}
