package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"salvo-backend/internal/catalog"
	"salvo-backend/internal/intent"
	"salvo-backend/internal/matcher"
	"salvo-backend/internal/model"
)

func classifyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "classify <text>",
		Short: "Print the intent of a message",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return printJSON(cmd.OutOrStdout(), intent.Classify(strings.Join(args, " ")))
		},
	}
}

func nearbyCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "nearby <lat> <lng>",
		Short: "List the businesses closest to a point",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := parseQuery(args[0], args[1])
			if err != nil {
				return err
			}
			q.Category = category
			return runNearby(cmd.Context(), catalog.NewFileSource(catalogFlag), q, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "Category filter (substring, accents ignored)")
	addSearchFlags(cmd)
	return cmd
}

func searchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "search <lat> <lng> <text>",
		Short: "Rank nearby businesses by how well they match a text",
		Args:  cobra.MinimumNArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			q, err := parseQuery(args[0], args[1])
			if err != nil {
				return err
			}
			return runSearch(cmd.Context(), catalog.NewFileSource(catalogFlag), q, strings.Join(args[2:], " "), cmd.OutOrStdout())
		},
	}
	addSearchFlags(cmd)
	return cmd
}

func addSearchFlags(cmd *cobra.Command) {
	cmd.Flags().Float64VarP(&radiusFlag, "radius", "r", 0, "Radius in km (0 uses the default)")
	cmd.Flags().IntVarP(&limitFlag, "limit", "n", matcher.DefaultResultLimit, "Maximum number of results")
}

func parseQuery(latArg, lngArg string) (model.SearchQuery, error) {
	var q model.SearchQuery
	if _, err := fmt.Sscan(latArg, &q.Latitude); err != nil {
		return q, fmt.Errorf("invalid latitude %q", latArg)
	}
	if _, err := fmt.Sscan(lngArg, &q.Longitude); err != nil {
		return q, fmt.Errorf("invalid longitude %q", lngArg)
	}
	q.RadiusKm = radiusFlag
	return q, matcher.Validate(q)
}

func newMatcher(src catalog.Source) (*matcher.Matcher, error) {
	return matcher.New(src, matcher.Config{DefaultRadiusKm: matcher.DefaultRadiusKm, ResultLimit: limitFlag})
}

func runNearby(ctx context.Context, src catalog.Source, q model.SearchQuery, out io.Writer) error {
	m, err := newMatcher(src)
	if err != nil {
		return err
	}
	return printJSON(out, m.SearchNearby(ctx, q))
}

func runSearch(ctx context.Context, src catalog.Source, q model.SearchQuery, text string, out io.Writer) error {
	m, err := newMatcher(src)
	if err != nil {
		return err
	}
	return printJSON(out, m.SearchByTextAndLocation(ctx, q, text))
}

func printJSON(out io.Writer, v any) error {
	if out == nil {
		out = os.Stdout
	}
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
