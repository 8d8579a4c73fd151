package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/groow/smoke/internal/config"
	"github.com/groow/smoke/internal/domain/models"
	"github.com/groow/smoke/internal/service/alerts"
)

func newAlertsCmd(a *app) *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "alerts",
		Short: "List and triage the vendor's inventory alerts",
	}
	cmd.PersistentFlags().StringVar(&role, "role", string(config.RoleVendor), "account that owns the alerts")

	book := func(ctx context.Context) (*alerts.Book, error) {
		_, client, _, err := a.session(ctx, role)
		if err != nil {
			return nil, err
		}
		b := alerts.NewBook(client.InventoryAlerts(), a.logger.Named("svc.alerts"))
		if err := b.Load(ctx); err != nil {
			return nil, err
		}
		return b, nil
	}

	var all bool
	list := &cobra.Command{
		Use:   "list",
		Short: "Print active alerts, or every alert with --all",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			b, err := book(cmd.Context())
			if err != nil {
				return err
			}
			shown := b.Active()
			if all {
				shown = b.Alerts()
			}
			return printAlerts(cmd.OutOrStdout(), shown)
		},
	}
	list.Flags().BoolVar(&all, "all", false, "include acknowledged and resolved alerts")

	var reason string
	ack := &cobra.Command{
		Use:   "ack <alert-id>",
		Short: "Acknowledge an alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := book(cmd.Context())
			if err != nil {
				return err
			}
			if err := b.Acknowledge(cmd.Context(), args[0], reason); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "alert %s acknowledged\n", args[0])
			return nil
		},
	}
	ack.Flags().StringVar(&reason, "reason", "", "note stored with the acknowledgement")

	var resolution string
	resolve := &cobra.Command{
		Use:   "resolve <alert-id>",
		Short: "Resolve an alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := book(cmd.Context())
			if err != nil {
				return err
			}
			if err := b.Resolve(cmd.Context(), args[0], resolution); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "alert %s resolved\n", args[0])
			return nil
		},
	}
	resolve.Flags().StringVar(&resolution, "resolution", "", "how the stock issue was resolved")

	dismiss := &cobra.Command{
		Use:   "dismiss <alert-id>",
		Short: "Dismiss an alert",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			b, err := book(cmd.Context())
			if err != nil {
				return err
			}
			if err := b.Dismiss(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "alert %s dismissed, %d active left\n", args[0], len(b.Active()))
			return nil
		},
	}

	cmd.AddCommand(list, ack, resolve, dismiss)
	return cmd
}

func printAlerts(out io.Writer, list []models.StockAlert) error {
	if len(list) == 0 {
		_, err := fmt.Fprintln(out, "no alerts")
		return err
	}
	fmt.Fprintf(out, "%-14s %-16s %-10s %-14s %s\n", "ID", "SKU", "SEVERITY", "STATUS", "STOCK")
	for _, al := range list {
		fmt.Fprintf(out, "%-14s %-16s %-10s %-14s %d/%d\n", al.ID, al.ProductSKU, al.Severity, al.Status, al.CurrentStock, al.Threshold)
	}
	return nil
}
