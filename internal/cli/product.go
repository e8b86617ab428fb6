package cli

import (
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"salescope/internal/domain"
	"salescope/internal/store"
)

var productCmd = &cobra.Command{
	Use:   "product",
	Short: "Manage the product catalog",
}

func init() {
	rootCmd.AddCommand(productCmd)
	productCmd.AddCommand(productAddCmd)
	productCmd.AddCommand(productLsCmd)
	productCmd.AddCommand(productSetCmd)
	productCmd.AddCommand(productRmCmd)
}

var (
	productMinPrice float64
	productMaxPrice float64
)

var productAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a product to the catalog",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, database, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer database.Close()

		user, err := resolveCurrentUser(database, cfg, cmd)
		if err != nil {
			return err
		}

		var min, max *float64
		if cmd.Flags().Changed("min-price") {
			min = &productMinPrice
		}
		if cmd.Flags().Changed("max-price") {
			max = &productMaxPrice
		}

		s := store.New(database)
		id, err := s.Products.Create(user.UserID, args[0], min, max)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created product %d: %s\n", id, args[0])
		return nil
	},
}

func init() {
	productAddCmd.Flags().Float64Var(&productMinPrice, "min-price", 0, "Minimum list price")
	productAddCmd.Flags().Float64Var(&productMaxPrice, "max-price", 0, "Maximum list price")
}

var productLsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List products",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, database, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer database.Close()

		s := store.New(database)
		products, err := s.Products.List()
		if err != nil {
			return err
		}
		if len(products) == 0 {
			fmt.Fprintln(cmd.OutOrStdout(), "No products found")
			return nil
		}

		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "ID\tNAME\tMIN PRICE\tMAX PRICE")
		for _, p := range products {
			fmt.Fprintf(w, "%d\t%s\t%s\t%s\n",
				p.ProductID, p.ProductName, priceOrDash(p.MinPrice), priceOrDash(p.MaxPrice))
		}
		w.Flush()
		return nil
	},
}

func priceOrDash(p *float64) string {
	if p == nil {
		return "-"
	}
	return strconv.FormatFloat(*p, 'f', 2, 64)
}

var productSetCmd = &cobra.Command{
	Use:   "set <product-id> <key=value>...",
	Short: "Update product fields",
	Args:  cobra.MinimumNArgs(2),
	RunE:  makeSetCmd(domain.KindProduct),
}

var productRmHard bool

var productRmCmd = &cobra.Command{
	Use:   "rm <product-id>",
	Short: "Remove a product (soft delete unless --hard)",
	Args:  cobra.ExactArgs(1),
	RunE:  makeRmCmd(domain.KindProduct, &productRmHard),
}

func init() {
	productRmCmd.Flags().BoolVar(&productRmHard, "hard", false, "Physically delete instead of soft delete")
}
