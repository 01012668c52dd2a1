package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"academy-app/internal/services/payments"
)

// signatureCmd prints the callback signature for an order/payment pair,
// for replaying a lost checkout callback by hand.
func signatureCmd() *cobra.Command {
	var secret string

	cmd := &cobra.Command{
		Use:   "signature [orderId] [paymentId]",
		Short: "Compute the gateway callback signature",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			if secret == "" {
				secret = os.Getenv("RAZORPAY_KEY_SECRET")
			}
			if secret == "" {
				return fmt.Errorf("no secret: pass --secret or set RAZORPAY_KEY_SECRET")
			}
			_, err := fmt.Fprintln(cmd.OutOrStdout(), payments.ComputeSignature(secret, args[0], args[1]))
			return err
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "HMAC secret (defaults to RAZORPAY_KEY_SECRET)")

	return cmd
}
