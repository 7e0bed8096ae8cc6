package checkout

import (
	"errors"
	"fmt"

	"github.com/ariefcatur/catrink-storefront/internal/catalog"
	"github.com/shopspring/decimal"
)

// MaxQuantity caps one line, merged lines included.
const MaxQuantity = 999

var ErrNotInCart = errors.New("product not in cart")

// CartLine borrows the product by value; later catalog edits do not reach it.
type CartLine struct {
	ProductID string          `json:"product_id"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image"`
	Quantity  int             `json:"quantity"`
}

func (l CartLine) Total() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// Cart is not safe for concurrent use; it belongs to one checkout.
type Cart struct {
	lines []CartLine
}

// Add puts qty of p in the cart, merging with an existing line.
func (c *Cart) Add(p catalog.Product, qty int) error {
	if qty < 1 || qty > MaxQuantity {
		return fmt.Errorf("quantity must be within 1..%d, got %d", MaxQuantity, qty)
	}
	for i := range c.lines {
		if c.lines[i].ProductID == p.ID {
			// kedua sisi <= MaxQuantity, jadi penjumlahan tidak overflow
			if c.lines[i].Quantity+qty > MaxQuantity {
				return fmt.Errorf("quantity of %s must not exceed %d", p.ID, MaxQuantity)
			}
			c.lines[i].Quantity += qty
			return nil
		}
	}
	c.lines = append(c.lines, CartLine{
		ProductID: p.ID,
		Name:      p.Name,
		Price:     p.Price,
		Image:     p.Image,
		Quantity:  qty,
	})
	return nil
}

// SetQuantity overwrites a line's quantity; 0 removes the line.
func (c *Cart) SetQuantity(productID string, qty int) error {
	if qty < 0 || qty > MaxQuantity {
		return fmt.Errorf("quantity must be within 0..%d, got %d", MaxQuantity, qty)
	}
	for i := range c.lines {
		if c.lines[i].ProductID != productID {
			continue
		}
		if qty == 0 {
			c.lines = append(c.lines[:i], c.lines[i+1:]...)
		} else {
			c.lines[i].Quantity = qty
		}
		return nil
	}
	return ErrNotInCart
}

func (c *Cart) Remove(productID string) {
	_ = c.SetQuantity(productID, 0)
}

func (c *Cart) Lines() []CartLine {
	return append([]CartLine(nil), c.lines...)
}

func (c *Cart) Len() int { return len(c.lines) }

func (c *Cart) Subtotal() decimal.Decimal {
	sum := decimal.Zero
	for _, l := range c.lines {
		sum = sum.Add(l.Total())
	}
	return sum
}
