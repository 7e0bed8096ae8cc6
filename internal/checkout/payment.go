package checkout

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ErrInvalidAmount: total di bawah nol, mis. kupon fixed melebihi subtotal.
var ErrInvalidAmount = errors.New("order total must not be negative")

// Payments authorizes the charged total. Authorize must honour ctx.
type Payments interface {
	Authorize(ctx context.Context, amount decimal.Decimal, method PaymentMethod) (ref string, err error)
}

// SimulatedPayments approves every charge after Delay; there is no real
// processor behind it.
type SimulatedPayments struct {
	Delay time.Duration
}

func (p SimulatedPayments) Authorize(ctx context.Context, amount decimal.Decimal, method PaymentMethod) (string, error) {
	if amount.IsNegative() {
		return "", fmt.Errorf("payment: %w: %s", ErrInvalidAmount, amount)
	}
	if p.Delay > 0 {
		t := time.NewTimer(p.Delay)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return "", fmt.Errorf("payment: %w", ctx.Err())
		case <-t.C:
		}
	}
	return fmt.Sprintf("sim_%s_%s", method, uuid.NewString()), nil
}
