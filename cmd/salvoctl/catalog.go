package main

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"salvo-backend/internal/catalog"
	"salvo-backend/internal/model"
)

func catalogCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Manage the business catalog",
	}
	cmd.AddCommand(catalogAddCmd())
	cmd.AddCommand(catalogPushCmd())
	return cmd
}

func catalogAddCmd() *cobra.Command {
	var rec model.BusinessRecord
	var lat, lng float64
	cmd := &cobra.Command{
		Use:   "add",
		Short: "Register a business in the catalog file",
		RunE: func(cmd *cobra.Command, args []string) error {
			if rec.ID == "" {
				rec.ID = uuid.NewString()
			}
			rec.Latitude, rec.Longitude = &lat, &lng
			return runCatalogAdd(cmd.Context(), catalog.NewFileSource(catalogFlag), rec, cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&rec.ID, "id", "", "Business id (default: random UUID)")
	cmd.Flags().StringVar(&rec.Name, "name", "", "Business name (required)")
	cmd.Flags().StringVar(&rec.Category, "category", "", "Category (required)")
	cmd.Flags().StringVar(&rec.Status, "status", model.StatusActive, "Status")
	cmd.Flags().Float64Var(&lat, "lat", 0, "Latitude (required)")
	cmd.Flags().Float64Var(&lng, "lng", 0, "Longitude (required)")
	cmd.Flags().StringVar(&rec.Address, "address", "", "Street address")
	cmd.Flags().StringVar(&rec.Phone, "phone", "", "Phone")
	cmd.Flags().StringVar(&rec.WhatsApp, "whatsapp", "", "WhatsApp number")
	cmd.Flags().StringVar(&rec.Description, "description", "", "Description")
	_ = cmd.MarkFlagRequired("name")
	_ = cmd.MarkFlagRequired("category")
	_ = cmd.MarkFlagRequired("lat")
	_ = cmd.MarkFlagRequired("lng")
	return cmd
}

func runCatalogAdd(ctx context.Context, fs *catalog.FileSource, rec model.BusinessRecord, out io.Writer) error {
	rec.Name = strings.TrimSpace(rec.Name)
	rec.Category = strings.TrimSpace(rec.Category)
	if err := fs.Append(ctx, rec); err != nil {
		return err
	}
	_, err := fmt.Fprintf(out, "added %s (%s) to %s\n", rec.ID, rec.Name, fs.Path())
	return err
}

func catalogPushCmd() *cobra.Command {
	var key string
	cmd := &cobra.Command{
		Use:   "push",
		Short: "Publish the catalog file to Redis for the redis catalog driver",
		RunE: func(cmd *cobra.Command, args []string) error {
			rdb := redis.NewClient(&redis.Options{Addr: redisFlag})
			defer rdb.Close()
			return runCatalogPush(cmd.Context(), catalog.NewFileSource(catalogFlag), catalog.NewRedisSource(rdb, key), cmd.OutOrStdout())
		},
	}
	cmd.Flags().StringVar(&key, "key", catalog.DefaultRedisKey, "Redis key")
	return cmd
}

func runCatalogPush(ctx context.Context, from catalog.Source, to *catalog.RedisSource, out io.Writer) error {
	snap, err := from.Snapshot(ctx)
	if err != nil {
		return err
	}
	if err := to.Publish(ctx, snap); err != nil {
		return err
	}
	_, err = fmt.Fprintf(out, "pushed %d records\n", snap.Len())
	return err
}
