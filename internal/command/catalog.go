package command

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/elakbay/elakbay/internal/domain"
)

var destinationsCmd = &cobra.Command{
	Use:   "destinations",
	Short: "List destinations, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		env, err := newEnvironment(ctx)
		if err != nil {
			return err
		}

		items, err := env.catalog.ListDestinations(ctx)
		if err != nil {
			return err
		}

		printCatalog(items)
		return nil
	},
}

var productsCmd = &cobra.Command{
	Use:   "products",
	Short: "List local products, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		env, err := newEnvironment(ctx)
		if err != nil {
			return err
		}

		items, err := env.catalog.ListProducts(ctx)
		if err != nil {
			return err
		}

		printCatalog(items)
		return nil
	},
}

var municipalitiesCmd = &cobra.Command{
	Use:   "municipalities",
	Short: "List municipality profiles, newest first",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()

		env, err := newEnvironment(ctx)
		if err != nil {
			return err
		}

		items, err := env.catalog.ListMunicipalities(ctx)
		if err != nil {
			return err
		}

		if len(items) == 0 {
			fmt.Println("Nothing here yet.")
			return nil
		}
		for _, item := range items {
			fmt.Printf("%-36s  %s\n", item.ID, item.Name)
		}
		return nil
	},
}

func printCatalog(items []domain.CatalogItem) {
	if len(items) == 0 {
		fmt.Println("Nothing here yet.")
		return
	}

	for _, item := range items {
		rating := "unrated"
		if item.RatingAvg != nil {
			rating = fmt.Sprintf("%.1f (%d)", *item.RatingAvg, item.RatingCount)
		}
		fmt.Printf("%-36s  %-30s  %-10s  by %s\n", item.ID, item.Name, rating, item.PostedByName)
	}
}
