package main

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/groow/smoke/internal/config"
	"github.com/groow/smoke/internal/service/cart"
)

func newCartCmd(a *app) *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "cart",
		Short: "Inspect and manage a shopper's cart",
	}
	cmd.PersistentFlags().StringVar(&role, "role", string(config.RoleCustomer), "account that owns the cart")

	load := func(ctx context.Context) (*cart.Cart, error) {
		_, client, _, err := a.session(ctx, role)
		if err != nil {
			return nil, err
		}
		c := cart.New(client.Cart(), client.Orders(), a.logger.Named("svc.cart"))
		if err := c.Load(ctx); err != nil {
			return nil, err
		}
		return c, nil
	}

	show := &cobra.Command{
		Use:   "show",
		Short: "Print the cart lines and total",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := load(cmd.Context())
			if err != nil {
				return err
			}
			printCart(cmd.OutOrStdout(), c)
			return nil
		},
	}

	empty := &cobra.Command{
		Use:   "clear",
		Short: "Empty the cart",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			c, err := load(cmd.Context())
			if err != nil {
				return err
			}
			if err := c.Clear(cmd.Context()); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "cart cleared")
			return nil
		},
	}

	remove := &cobra.Command{
		Use:   "remove <item-id>",
		Short: "Remove one cart line",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := load(cmd.Context())
			if err != nil {
				return err
			}
			if err := c.Remove(cmd.Context(), args[0]); err != nil {
				return err
			}
			printCart(cmd.OutOrStdout(), c)
			return nil
		},
	}

	reorder := &cobra.Command{
		Use:   "reorder <order-id>",
		Short: "Add every line of a delivered order back to the cart",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := load(cmd.Context())
			if err != nil {
				return err
			}
			added, err := c.Reorder(cmd.Context(), args[0])
			fmt.Fprintf(cmd.OutOrStdout(), "%d lines added from order %s\n", added, args[0])
			return err
		},
	}

	cmd.AddCommand(show, empty, remove, reorder)
	return cmd
}

func printCart(out io.Writer, c *cart.Cart) {
	items := c.Items()
	if len(items) == 0 {
		fmt.Fprintln(out, "cart is empty")
		return
	}
	for _, it := range items {
		fmt.Fprintf(out, "%-14s %-28s x%-4d %s\n", it.ID, it.ProductName, it.Quantity, it.UnitPrice.StringFixed(2))
	}
	fmt.Fprintf(out, "total %s\n", c.Total().StringFixed(2))
}
