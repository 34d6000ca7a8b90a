package carts

import (
	"errors"
	"fmt"
	"math"
)

// MaxQuantity is the largest quantity a single cart line may hold.
const MaxQuantity = 100

var ErrInvalidQuantity = errors.New("quantity out of range")

// Collection is the records collection that holds carts, keyed by the
// owner's email.
const Collection = "carts"

type Line struct {
	ItemID   string `json:"item_id"`
	Quantity int    `json:"quantity"`
}

type Cart struct {
	Items []Line `json:"items"`
}

func New() Cart {
	return Cart{Items: []Line{}}
}

// Add puts quantity of itemID in the cart, summing with an existing line.
// The cart is left unchanged when the line would exceed MaxQuantity.
func (c *Cart) Add(itemID string, quantity int) error {
	if quantity < 1 || quantity > MaxQuantity {
		return ErrInvalidQuantity
	}
	for i := range c.Items {
		if c.Items[i].ItemID == itemID {
			if c.Items[i].Quantity > MaxQuantity-quantity {
				return ErrInvalidQuantity
			}
			c.Items[i].Quantity += quantity
			return nil
		}
	}
	c.Items = append(c.Items, Line{ItemID: itemID, Quantity: quantity})
	return nil
}

// SetQuantity reports false when itemID is not in the cart.
func (c *Cart) SetQuantity(itemID string, quantity int) bool {
	for i := range c.Items {
		if c.Items[i].ItemID == itemID {
			c.Items[i].Quantity = quantity
			return true
		}
	}
	return false
}

// Remove reports false when itemID is not in the cart.
func (c *Cart) Remove(itemID string) bool {
	for i := range c.Items {
		if c.Items[i].ItemID == itemID {
			c.Items = append(c.Items[:i], c.Items[i+1:]...)
			return true
		}
	}
	return false
}

func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

const maxLineCents = 1 << 40

// TotalCents prices the cart in the smallest currency unit. Each line is
// rounded to whole cents before summing.
func (c Cart) TotalCents(prices map[string]float64) (int64, error) {
	var total int64
	for _, line := range c.Items {
		price, ok := prices[line.ItemID]
		if !ok {
			return 0, fmt.Errorf("no price for item %s", line.ItemID)
		}
		if line.Quantity < 1 || line.Quantity > MaxQuantity {
			return 0, fmt.Errorf("item %s: %w", line.ItemID, ErrInvalidQuantity)
		}
		cents := math.Round(price * float64(line.Quantity) * 100)
		if math.IsNaN(cents) || cents < 0 || cents > maxLineCents {
			return 0, fmt.Errorf("item %s: line total out of range", line.ItemID)
		}
		total += int64(cents)
	}
	return total, nil
}
