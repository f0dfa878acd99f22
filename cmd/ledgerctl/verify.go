package main

import (
	"errors"
	"fmt"

	"github.com/dariast03/reparo-sys-sub001/internal/reconcile"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
)

var errDrift = errors.New("ledger drift detected")

var verifyStockCmd = &cobra.Command{
	Use:   "verify-stock <product-id>",
	Short: "Replay one product's movement chain and compare it with the stored stock",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid product id %q: %w", args[0], err)
		}
		a := newApp()
		defer a.close()

		rep, err := a.stock.VerifyProduct(cmd.Context(), id)
		if err != nil {
			return err
		}
		if err := printJSON(cmd.OutOrStdout(), rep); err != nil {
			return err
		}
		if !rep.Consistent {
			return errDrift
		}
		return nil
	},
}

var verifyOrderCmd = &cobra.Command{
	Use:   "verify-order <order-id>",
	Short: "Replay one repair order's status history",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		id, err := uuid.Parse(args[0])
		if err != nil {
			return fmt.Errorf("invalid order id %q: %w", args[0], err)
		}
		a := newApp()
		defer a.close()

		rep, err := a.orders.VerifyHistory(cmd.Context(), id)
		if err != nil {
			return err
		}
		if err := printJSON(cmd.OutOrStdout(), rep); err != nil {
			return err
		}
		if !rep.Consistent {
			return errDrift
		}
		return nil
	},
}

var (
	onlyStock  bool
	onlyOrders bool
)

var reconcileCmd = &cobra.Command{
	Use:   "reconcile",
	Short: "Verify every product and repair order and list the ones that drifted",
	RunE: func(cmd *cobra.Command, args []string) error {
		if onlyStock && onlyOrders {
			return errors.New("--stock and --orders are mutually exclusive")
		}
		a := newApp()
		defer a.close()

		ctx := cmd.Context()
		sum := &reconcile.Summary{}
		var err error
		switch {
		case onlyStock:
			err = a.reconcile.CheckStock(ctx, sum)
		case onlyOrders:
			err = a.reconcile.CheckHistory(ctx, sum)
		default:
			sum, err = a.reconcile.RunFull(ctx)
		}
		if err != nil {
			return err
		}
		if err := printJSON(cmd.OutOrStdout(), sum); err != nil {
			return err
		}
		if !sum.Clean() {
			return errDrift
		}
		return nil
	},
}

func init() {
	reconcileCmd.Flags().BoolVar(&onlyStock, "stock", false, "check only product stock")
	reconcileCmd.Flags().BoolVar(&onlyOrders, "orders", false, "check only order histories")

	rootCmd.AddCommand(verifyStockCmd, verifyOrderCmd, reconcileCmd)
}
