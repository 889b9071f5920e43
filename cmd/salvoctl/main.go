package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	catalogFlag string
	redisFlag   string
	radiusFlag  float64
	limitFlag   int
	rootCmd     = &cobra.Command{
		Use:   "salvoctl",
		Short: "Operate the Salvô business catalog and matcher from the shell",
	}
)

func main() {
	rootCmd.PersistentFlags().StringVarP(&catalogFlag, "catalog", "c", "data/sellers/sellers.json", "Catalog file")
	rootCmd.PersistentFlags().StringVar(&redisFlag, "redis", "localhost:6379", "Redis address (catalog push, stats)")

	rootCmd.AddCommand(classifyCmd())
	rootCmd.AddCommand(nearbyCmd())
	rootCmd.AddCommand(searchCmd())
	rootCmd.AddCommand(catalogCmd())
	rootCmd.AddCommand(statsCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
