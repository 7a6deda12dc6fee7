package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"techhub/internal/checkout"
	"techhub/internal/domain"
	"techhub/internal/validate"
)

func checkoutCmd() *cobra.Command {
	var (
		ship    domain.ShippingData
		pay     domain.PaymentData
		method  string
		deliver string
		retries int
	)
	cmd := &cobra.Command{
		Use:   "checkout",
		Short: "Place an order for the session cart",
		Long: `Walk the checkout: review the cart, submit shipping and payment, then place
the order. Shipping fields left blank are taken from the last saved address.

Examples:
  techhub checkout --name "Ada L" --address "1 Loop" --city Turin --postal 10100 --phone 555 --method cash
  techhub checkout --method card --card-number "4111 1111 1111 1111" --card-name "ADA L" --card-expiry 09/28 --card-cvv 123 --retries 3`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := loadConfig()
			ctx := cmd.Context()
			s, closer, err := openShop(ctx, cfg, "")
			if err != nil {
				return err
			}
			defer closer.Close()

			if _, err := s.Cart.Refresh(ctx); err != nil {
				return fmt.Errorf("load cart: %w", err)
			}
			m, err := s.OpenCheckout(ctx)
			if err != nil {
				return err
			}
			if err := m.Next(); err != nil {
				return err
			}
			if err := printCart(s.Cart.Cart()); err != nil {
				return err
			}

			ship.DeliveryTime = domain.DeliveryTime(deliver)
			if err := m.SubmitShipping(ctx, mergeShipping(m.Shipping(), ship)); err != nil {
				return formErr("shipping", err)
			}
			pay.Method = domain.PaymentMethod(method)
			done, err := m.SubmitPayment(pay)
			if err != nil {
				return formErr("payment", err)
			}

			fmt.Println("\nProcessing your order...")
			<-done
			for i := 0; i < retries && m.Summary().Status == checkout.StatusFailed; i++ {
				fmt.Printf("Order failed (%v), retrying...\n", m.Summary().Err)
				if done, err = m.Retry(); err != nil {
					return err
				}
				<-done
			}

			sum := m.Summary()
			if sum.Status != checkout.StatusSucceeded {
				return fmt.Errorf("order failed: %w (run checkout again to retry)", sum.Err)
			}
			fmt.Printf("\nOrder %s confirmed.\n", sum.OrderID)
			fmt.Printf("Ship to: %s, %s, %s %s\n", sum.Shipping.Name, sum.Shipping.Address, sum.Shipping.City, sum.Shipping.Postal)
			fmt.Printf("Delivery: %s\n", sum.Shipping.DeliveryTime.Label())
			fmt.Printf("Payment: %s\n", sum.PaymentLabel)
			fmt.Printf("Subtotal %s  Tax %s  Total %s\n", domain.Money(sum.Subtotal), domain.Money(sum.Tax), domain.Money(sum.Total))
			return nil
		},
	}
	f := cmd.Flags()
	f.StringVar(&ship.Name, "name", "", "full name")
	f.StringVar(&ship.Address, "address", "", "street address")
	f.StringVar(&ship.City, "city", "", "city")
	f.StringVar(&ship.Postal, "postal", "", "postal code")
	f.StringVar(&ship.Phone, "phone", "", "phone number")
	f.StringVar(&deliver, "delivery", "", "delivery time: standard, express, overnight")
	f.StringVar(&method, "method", "card", "payment method: card, paypal, cash")
	f.StringVar(&pay.CardNumber, "card-number", "", "card number")
	f.StringVar(&pay.CardName, "card-name", "", "name on card")
	f.StringVar(&pay.CardExpiry, "card-expiry", "", "expiry MM/YY")
	f.StringVar(&pay.CardCVV, "card-cvv", "", "CVV")
	f.IntVar(&retries, "retries", 0, "times to retry a failed order")
	return cmd
}

// mergeShipping fills blank flags from the saved record.
func mergeShipping(saved, in domain.ShippingData) domain.ShippingData {
	pick := func(a, b string) string {
		if a != "" {
			return a
		}
		return b
	}
	out := domain.ShippingData{
		Name:         pick(in.Name, saved.Name),
		Address:      pick(in.Address, saved.Address),
		City:         pick(in.City, saved.City),
		Postal:       pick(in.Postal, saved.Postal),
		Phone:        pick(in.Phone, saved.Phone),
		DeliveryTime: domain.DeliveryTime(pick(string(in.DeliveryTime), string(saved.DeliveryTime))),
	}
	if out.DeliveryTime == "" {
		out.DeliveryTime = domain.DeliveryStandard
	}
	return out
}

func formErr(step string, err error) error {
	var fe validate.FieldErrors
	if errors.As(err, &fe) {
		return fmt.Errorf("%s form: %s", step, fe.Error())
	}
	return err
}
