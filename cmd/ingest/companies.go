package main

import (
	"context"
	"fmt"
	"log"
	"strings"

	"stocklens/pkg/database"
	"stocklens/services/market"
)

// addCompany adds a company to the ingest list, or renames an existing one
func addCompany(ctx context.Context, db *database.DB, symbol string, nameParts []string) error {
	symbol = strings.TrimSpace(strings.ToUpper(symbol))
	name := strings.TrimSpace(strings.Join(nameParts, " "))
	if symbol == "" || name == "" {
		return fmt.Errorf("symbol and name cannot be empty")
	}

	if err := market.NewStore(db).AddCompany(ctx, market.Company{Symbol: symbol, Name: name}); err != nil {
		return err
	}

	log.Printf("✓ Saved %s (%s)", symbol, name)
	log.Println("Run 'ingest run' to download its history.")
	return nil
}

// listCompanies prints the companies the ingest job downloads
func listCompanies(ctx context.Context, db *database.DB) error {
	log.Println("=== Tracked Companies ===")

	companies, err := market.NewStore(db).ListCompanies(ctx)
	if err != nil {
		return err
	}

	for i, c := range companies {
		fmt.Printf("[%d] %-12s %s\n", i+1, c.Symbol, c.Name)
	}

	if len(companies) == 0 {
		log.Println("No companies found. Use 'add-company' to add some.")
	}
	return nil
}
