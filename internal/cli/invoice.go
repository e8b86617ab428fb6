package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"salescope/internal/domain"
	"salescope/internal/store"
)

var invoiceCmd = &cobra.Command{
	Use:   "invoice",
	Short: "Manage invoices",
}

func init() {
	rootCmd.AddCommand(invoiceCmd)
	invoiceCmd.AddCommand(invoiceAddCmd)
	invoiceCmd.AddCommand(invoiceShowCmd)
	invoiceCmd.AddCommand(invoiceStatusCmd)
	invoiceCmd.AddCommand(invoiceRmCmd)
}

var (
	invoiceAddCompany string
	invoiceAddProject string
	invoiceAddContact string
	invoiceAddIssue   string
	invoiceAddDue     string
	invoiceAddItems   []string
)

var invoiceAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Create an invoice with line items",
	Long: `Creates an invoice under an existing company and project. Each --item is
product:quantity:unit_price[:discount_pct]; the subtotal and invoice total
are computed from the discounted prices.

Example:
  salescope invoice add -c "Acme Corp" -p "Edge PoC" --issue 2026-04-01 \
    --item "NPU-X:10:1200" --item "Support Plan:1:5000:10"`,
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

		s := store.New(database)
		company, err := s.Companies.GetByName(invoiceAddCompany)
		if err != nil {
			return err
		}

		var projectID int64
		found := false
		projects, err := s.Projects.ListByCompany(company.CompanyID)
		if err != nil {
			return err
		}
		for _, p := range projects {
			if p.ProjectName == invoiceAddProject {
				projectID = p.ProjectID
				found = true
				break
			}
		}
		if !found {
			return fmt.Errorf("no project %q under %s", invoiceAddProject, company.CompanyName)
		}

		var contactID *int64
		if invoiceAddContact != "" {
			contacts, err := s.Contacts.ListByCompany(company.CompanyID)
			if err != nil {
				return err
			}
			for _, c := range contacts {
				if c.ContactName == invoiceAddContact {
					id := c.ContactID
					contactID = &id
					break
				}
			}
			if contactID == nil {
				return fmt.Errorf("no contact %q at %s", invoiceAddContact, company.CompanyName)
			}
		}

		items, err := parseItemSpecs(invoiceAddItems)
		if err != nil {
			return err
		}

		invoiceID, err := s.Invoices.CreateWithItems(user.UserID, projectID, company.CompanyID,
			contactID, invoiceAddIssue, invoiceAddDue, items)
		if err != nil {
			return err
		}

		invoice, err := s.Invoices.Get(invoiceID)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created invoice %d, total %.2f\n", invoiceID, *invoice.TotalAmount)
		return nil
	},
}

func init() {
	f := invoiceAddCmd.Flags()
	f.StringVarP(&invoiceAddCompany, "company", "c", "", "Company name (required)")
	f.StringVarP(&invoiceAddProject, "project", "p", "", "Project name (required)")
	f.StringVarP(&invoiceAddContact, "contact", "n", "", "Billing contact name")
	f.StringVar(&invoiceAddIssue, "issue", "", "Issue date YYYY-MM-DD (required)")
	f.StringVar(&invoiceAddDue, "due", "", "Due date YYYY-MM-DD")
	f.StringSliceVar(&invoiceAddItems, "item", nil, "Line item product:qty:unit_price[:discount_pct] (repeatable)")
	invoiceAddCmd.MarkFlagRequired("company")
	invoiceAddCmd.MarkFlagRequired("project")
	invoiceAddCmd.MarkFlagRequired("issue")
	invoiceAddCmd.MarkFlagRequired("item")
}

// parseItemSpecs parses product:qty:unit_price[:discount_pct] specs
func parseItemSpecs(specs []string) ([]store.InvoiceItemParams, error) {
	items := make([]store.InvoiceItemParams, 0, len(specs))
	for _, spec := range specs {
		parts := strings.Split(spec, ":")
		if len(parts) < 3 || len(parts) > 4 {
			return nil, fmt.Errorf("invalid item %q: expected product:qty:unit_price[:discount_pct]", spec)
		}

		qty, err := strconv.ParseInt(parts[1], 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid quantity in %q", spec)
		}
		price, err := strconv.ParseFloat(parts[2], 64)
		if err != nil {
			return nil, fmt.Errorf("invalid unit price in %q", spec)
		}
		var discount float64
		if len(parts) == 4 {
			discount, err = strconv.ParseFloat(parts[3], 64)
			if err != nil {
				return nil, fmt.Errorf("invalid discount in %q", spec)
			}
		}

		items = append(items, store.InvoiceItemParams{
			ProductName:  parts[0],
			Quantity:     qty,
			UnitPrice:    price,
			DiscountRate: discount,
		})
	}
	return items, nil
}

var invoiceShowCmd = &cobra.Command{
	Use:   "show <invoice-id>",
	Short: "Show an invoice and its line items",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		_, database, err := openDB(cmd)
		if err != nil {
			return err
		}
		defer database.Close()

		invoiceID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid invoice id %q", args[0])
		}

		s := store.New(database)
		invoice, err := s.Invoices.Get(invoiceID)
		if err != nil {
			return err
		}
		items, err := s.Invoices.Items(invoiceID)
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		total := 0.0
		if invoice.TotalAmount != nil {
			total = *invoice.TotalAmount
		}
		fmt.Fprintf(out, "Invoice %d  issued %s  status %s  total %.2f\n",
			invoice.InvoiceID, invoice.IssueDate, domain.InvoiceStatusLabel(invoice.Status), total)
		for _, item := range items {
			fmt.Fprintf(out, "  product %d  x%d @ %.2f  -%.0f%%  = %.2f\n",
				item.ProductID, item.Quantity, item.UnitPriceAtSale, item.DiscountRate, item.Subtotal)
		}
		return nil
	},
}

var invoiceStatusCmd = &cobra.Command{
	Use:   "status <invoice-id> <status>",
	Short: "Set invoice status (0 draft .. 5 returned)",
	Args:  cobra.ExactArgs(2),
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

		invoiceID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("invalid invoice id %q", args[0])
		}
		status, err := strconv.Atoi(args[1])
		if err != nil {
			return fmt.Errorf("invalid status %q", args[1])
		}

		s := store.New(database)
		if err := s.Invoices.SetStatus(user.UserID, invoiceID, status); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Invoice %d is now %s\n", invoiceID, domain.InvoiceStatusLabel(status))
		return nil
	},
}

var invoiceRmHard bool

var invoiceRmCmd = &cobra.Command{
	Use:   "rm <invoice-id>",
	Short: "Remove an invoice (soft delete unless --hard)",
	Args:  cobra.ExactArgs(1),
	RunE:  makeRmCmd(domain.KindInvoice, &invoiceRmHard),
}

func init() {
	invoiceRmCmd.Flags().BoolVar(&invoiceRmHard, "hard", false, "Physically delete instead of soft delete")
}
