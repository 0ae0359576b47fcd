// Package cart holds the shopping cart state for one client session.
//
// State is a value type: every operation returns a new State and leaves the
// receiver untouched, so a caller that owns the only reference can apply
// operations in sequence without locking. Serialising updates across
// goroutines is the session store's job.
package cart

import (
	"errors"
	"time"

	"qr-menu/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Language selects one of the two fixed string dictionaries.
type Language string

const (
	LanguageTR Language = "tr"
	LanguageEN Language = "en"
)

// Valid reports whether l is one of the two supported languages.
func (l Language) Valid() bool {
	return l == LanguageTR || l == LanguageEN
}

var (
	// ErrLineNotFound is returned when an index or line ID does not address a line.
	ErrLineNotFound = errors.New("cart line not found")

	// ErrUnknownLanguage is returned by SetLanguage for anything but tr or en.
	ErrUnknownLanguage = errors.New("unknown language")
)

// newLineID is swapped in tests that need deterministic line IDs.
var newLineID = uuid.New

// LineItem is a product copied into the cart with a note and a quantity.
type LineItem struct {
	LineID uuid.UUID `json:"lineId"`
	model.Product
	Note     string `json:"note"`
	Quantity int    `json:"quantity"`
}

// Subtotal returns price times quantity.
func (l LineItem) Subtotal() decimal.Decimal {
	return l.Price.Mul(decimal.NewFromInt(int64(l.Quantity)))
}

// State is the full client-side ordering state of a session.
type State struct {
	Items            []LineItem           `json:"items"`
	TableNumber      *int                 `json:"tableNumber"`
	HasSelectedTable bool                 `json:"hasSelectedTable"`
	Language         Language             `json:"language"`
	CurrentOrder     *model.OrderSnapshot `json:"currentOrder"`
}

// NewState returns an empty state with the given language.
func NewState(lang Language) State {
	if !lang.Valid() {
		lang = LanguageTR
	}
	return State{Items: []LineItem{}, Language: lang}
}

// AddItem adds one unit of product to the cart.
// An existing line is incremented only when it has the same product, an
// empty note, and the incoming note is also empty; anything else appends.
func (s State) AddItem(product model.Product, note string) State {
	if note == "" {
		for i, item := range s.Items {
			if item.ID == product.ID && item.Note == "" {
				items := s.cloneItems()
				items[i].Quantity++
				s.Items = items
				return s
			}
		}
	}

	items := make([]LineItem, len(s.Items), len(s.Items)+1)
	copy(items, s.Items)
	s.Items = append(items, LineItem{
		LineID:   newLineID(),
		Product:  product,
		Note:     note,
		Quantity: 1,
	})
	return s
}

// RemoveItem deletes the line at index.
func (s State) RemoveItem(index int) (State, error) {
	if index < 0 || index >= len(s.Items) {
		return s, ErrLineNotFound
	}
	items := make([]LineItem, 0, len(s.Items)-1)
	items = append(items, s.Items[:index]...)
	items = append(items, s.Items[index+1:]...)
	s.Items = items
	return s, nil
}

// UpdateQuantity sets the quantity of the line at index.
// A quantity of zero or less removes the line.
func (s State) UpdateQuantity(index, quantity int) (State, error) {
	if quantity <= 0 {
		return s.RemoveItem(index)
	}
	if index < 0 || index >= len(s.Items) {
		return s, ErrLineNotFound
	}
	items := s.cloneItems()
	items[index].Quantity = quantity
	s.Items = items
	return s, nil
}

// UpdateNote replaces the note of the line at index. Lines are never
// re-merged after a note change.
func (s State) UpdateNote(index int, note string) (State, error) {
	if index < 0 || index >= len(s.Items) {
		return s, ErrLineNotFound
	}
	items := s.cloneItems()
	items[index].Note = note
	s.Items = items
	return s, nil
}

// IndexOf returns the current index of the line with the given ID, or -1.
func (s State) IndexOf(lineID uuid.UUID) int {
	for i, item := range s.Items {
		if item.LineID == lineID {
			return i
		}
	}
	return -1
}

// RemoveLine deletes the line with the given ID.
func (s State) RemoveLine(lineID uuid.UUID) (State, error) {
	return s.RemoveItem(s.IndexOf(lineID))
}

// UpdateLineQuantity sets the quantity of the line with the given ID.
func (s State) UpdateLineQuantity(lineID uuid.UUID, quantity int) (State, error) {
	index := s.IndexOf(lineID)
	if index < 0 {
		return s, ErrLineNotFound
	}
	return s.UpdateQuantity(index, quantity)
}

// UpdateLineNote replaces the note of the line with the given ID.
func (s State) UpdateLineNote(lineID uuid.UUID, note string) (State, error) {
	return s.UpdateNote(s.IndexOf(lineID), note)
}

// ClearCart empties the line items and leaves everything else alone.
func (s State) ClearCart() State {
	s.Items = []LineItem{}
	return s
}

// SetTableNumber binds the session to a table. The flag stays set until
// another explicit selection.
func (s State) SetTableNumber(n int) State {
	s.TableNumber = &n
	s.HasSelectedTable = true
	return s
}

// SetLanguage switches the active dictionary.
func (s State) SetLanguage(lang Language) (State, error) {
	if !lang.Valid() {
		return s, ErrUnknownLanguage
	}
	s.Language = lang
	return s, nil
}

// ToggleLanguage flips between tr and en.
func (s State) ToggleLanguage() State {
	if s.Language == LanguageTR {
		s.Language = LanguageEN
	} else {
		s.Language = LanguageTR
	}
	return s
}

// SetCurrentOrder installs the tracked order, replacing any previous one.
func (s State) SetCurrentOrder(order model.OrderSnapshot) State {
	s.CurrentOrder = &order
	return s
}

// ClearCurrentOrder drops the tracked order.
func (s State) ClearCurrentOrder() State {
	s.CurrentOrder = nil
	return s
}

// TotalItems is the sum of quantities across all lines.
func (s State) TotalItems() int {
	total := 0
	for _, item := range s.Items {
		total += item.Quantity
	}
	return total
}

// TotalPrice is the sum of price times quantity across all lines.
func (s State) TotalPrice() decimal.Decimal {
	total := decimal.Zero
	for _, item := range s.Items {
		total = total.Add(item.Subtotal())
	}
	return total
}

// ItemQuantity sums the quantities of every line for productID, whatever the note.
func (s State) ItemQuantity(productID int64) int {
	total := 0
	for _, item := range s.Items {
		if item.ID == productID {
			total += item.Quantity
		}
	}
	return total
}

// IsInCart reports whether any line references productID.
func (s State) IsInCart(productID int64) bool {
	for _, item := range s.Items {
		if item.ID == productID {
			return true
		}
	}
	return false
}

// Snapshot builds an order snapshot of the current cart.
func (s State) Snapshot(now time.Time) model.OrderSnapshot {
	lines := make([]model.OrderItemRequest, len(s.Items))
	for i, item := range s.Items {
		lines[i] = model.OrderItemRequest{
			ProductID:   item.ID,
			ProductName: item.Name,
			Quantity:    item.Quantity,
			Price:       item.Price,
			Note:        item.Note,
		}
	}

	table := 0
	if s.TableNumber != nil {
		table = *s.TableNumber
	}

	return model.OrderSnapshot{
		TableNumber: table,
		Items:       lines,
		TotalPrice:  s.TotalPrice(),
		CreatedAt:   now,
	}
}

func (s State) cloneItems() []LineItem {
	items := make([]LineItem, len(s.Items))
	copy(items, s.Items)
	return items
}
