package cart

import (
	"fmt"
)

// Item is one line in a cart.
type Item struct {
	ProductID int64   `json:"product_id"`
	Name      string  `json:"name"`
	UnitPrice float64 `json:"unit_price"`
	Quantity  int     `json:"quantity"`
	Weight    string  `json:"weight,omitempty"`
	Image     string  `json:"image,omitempty"`
}

// State is an immutable cart snapshot. Every operation returns a new
// state; total and itemCount are maintained so that
// total == sum(unitPrice*quantity) and itemCount == sum(quantity) hold
// after each step.
type State struct {
	Items     []Item  `json:"items"`
	Total     float64 `json:"total"`
	ItemCount int     `json:"item_count"`
	IsOpen    bool    `json:"is_open"`
}

// Empty returns the initial cart state.
func Empty() State {
	return State{Items: []Item{}}
}

// ErrItemNotFound is returned when an operation names a product id that
// has no line in the cart. Callers may choose to ignore it.
var ErrItemNotFound = fmt.Errorf("cart item not found")

func (s State) find(productID int64) (int, bool) {
	for i := range s.Items {
		if s.Items[i].ProductID == productID {
			return i, true
		}
	}
	return -1, false
}

func (s State) cloneItems() []Item {
	items := make([]Item, len(s.Items))
	copy(items, s.Items)
	return items
}

// Add puts a product into the cart. An existing line gains quantity 1;
// otherwise a new line with quantity 1 is appended.
func (s State) Add(product Item) State {
	items := s.cloneItems()
	if i, ok := s.find(product.ProductID); ok {
		items[i].Quantity++
	} else {
		product.Quantity = 1
		items = append(items, product)
	}
	return State{
		Items:     items,
		Total:     s.Total + product.UnitPrice,
		ItemCount: s.ItemCount + 1,
		IsOpen:    s.IsOpen,
	}
}

// Remove deletes the line for productID. A removed line is gone, never
// kept at quantity 0.
func (s State) Remove(productID int64) (State, error) {
	i, ok := s.find(productID)
	if !ok {
		return s, ErrItemNotFound
	}
	removed := s.Items[i]
	items := make([]Item, 0, len(s.Items)-1)
	items = append(items, s.Items[:i]...)
	items = append(items, s.Items[i+1:]...)
	return State{
		Items:     items,
		Total:     s.Total - removed.UnitPrice*float64(removed.Quantity),
		ItemCount: s.ItemCount - removed.Quantity,
		IsOpen:    s.IsOpen,
	}, nil
}

// SetQuantity replaces a line's quantity. A quantity of zero or less is
// equivalent to Remove.
func (s State) SetQuantity(productID int64, quantity int) (State, error) {
	if quantity <= 0 {
		return s.Remove(productID)
	}
	i, ok := s.find(productID)
	if !ok {
		return s, ErrItemNotFound
	}
	diff := quantity - s.Items[i].Quantity
	items := s.cloneItems()
	items[i].Quantity = quantity
	return State{
		Items:     items,
		Total:     s.Total + s.Items[i].UnitPrice*float64(diff),
		ItemCount: s.ItemCount + diff,
		IsOpen:    s.IsOpen,
	}, nil
}

// Clear resets the cart to its initial state.
func (s State) Clear() State {
	return Empty()
}

// ToggleOpen flips the UI visibility flag without touching items.
func (s State) ToggleOpen() State {
	next := s
	next.Items = s.cloneItems()
	next.IsOpen = !s.IsOpen
	return next
}
