package menu

import (
	"strconv"
	"strings"
)

// Collection is the records collection that holds menu items, keyed by id.
const Collection = "menu"

type Item struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Price       float64 `json:"price"`
	Description string  `json:"description"`
	Category    string  `json:"category"`
}

// Filter selects menu items. Empty fields are ignored; an item matches when
// any set field is a case-insensitive substring of the item's field.
type Filter struct {
	Name        string
	Price       string
	Description string
	Category    string
}

func (f Filter) IsEmpty() bool {
	return f.Name == "" && f.Price == "" && f.Description == "" && f.Category == ""
}

func (f Filter) Matches(item Item) bool {
	if f.IsEmpty() {
		return true
	}
	return contains(item.Name, f.Name) ||
		contains(strconv.FormatFloat(item.Price, 'f', -1, 64), f.Price) ||
		contains(item.Description, f.Description) ||
		contains(item.Category, f.Category)
}

// Apply returns the items matching f, preserving order.
func (f Filter) Apply(items []Item) []Item {
	out := make([]Item, 0, len(items))
	for _, item := range items {
		if f.Matches(item) {
			out = append(out, item)
		}
	}
	return out
}

func contains(value, needle string) bool {
	if needle == "" {
		return false
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(needle))
}
