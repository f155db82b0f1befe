package main

import (
	"fmt"
	"log/slog"
	"sort"

	"github.com/spf13/cobra"
)

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Manage the local table cache",
	}
	cmd.AddCommand(cacheSeedCmd())
	cmd.AddCommand(cacheInfoCmd())
	return cmd
}

func cacheSeedCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Populate the cache from CSV exports",
		Long: `Normalize CSV exports and snapshot them into the local cache. Any subset
of tables can be seeded; seeding transactions also refreshes the persisted
transaction→nsu lookup used by statement reconciliation.`,
		RunE: runCacheSeed,
	}

	cmd.Flags().String("payables", "", "payables CSV export")
	cmd.Flags().String("transactions", "", "transactions CSV export")
	cmd.Flags().String("sales", "", "sales ledger CSV export")

	return cmd
}

func runCacheSeed(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	payablesPath, _ := cmd.Flags().GetString("payables")
	transactionsPath, _ := cmd.Flags().GetString("transactions")
	salesPath, _ := cmd.Flags().GetString("sales")

	if payablesPath == "" && transactionsPath == "" && salesPath == "" {
		return fmt.Errorf("nothing to seed: provide --payables, --transactions and/or --sales")
	}

	cache, err := openCache(ctx)
	if err != nil {
		return err
	}
	defer cache.Close()

	if payablesPath != "" {
		payables, err := loadPayablesCSV(payablesPath)
		if err != nil {
			return err
		}
		if err := cache.SavePayables(ctx, payables); err != nil {
			return err
		}
		slog.Info("Seeded payables", "rows", len(payables))
	}

	if transactionsPath != "" {
		transactions, err := loadTransactionsCSV(transactionsPath)
		if err != nil {
			return err
		}
		if err := cache.SaveTransactions(ctx, transactions); err != nil {
			return err
		}
		slog.Info("Seeded transactions", "rows", len(transactions))
	}

	if salesPath != "" {
		sales, err := loadSalesCSV(salesPath)
		if err != nil {
			return err
		}
		if err := cache.SaveSales(ctx, sales); err != nil {
			return err
		}
		slog.Info("Seeded sales", "rows", len(sales))
	}

	return nil
}

func cacheInfoCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show cached table row counts",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			cache, err := openCache(ctx)
			if err != nil {
				return err
			}
			defer cache.Close()

			counts, err := cache.TableCounts(ctx)
			if err != nil {
				return err
			}

			tables := make([]string, 0, len(counts))
			for table := range counts {
				tables = append(tables, table)
			}
			sort.Strings(tables)

			for _, table := range tables {
				fmt.Printf("%-18s %d\n", table, counts[table])
			}
			return nil
		},
	}
}
