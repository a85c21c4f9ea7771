package store

import (
	"errors"
	"strings"
	"sync"

	"stationeye/internal/model"
)

var ErrEquipmentNotFound = errors.New("equipment not found")

type Inventory struct {
	mu    sync.RWMutex
	items []model.Equipment
}

func NewInventory(items []model.Equipment) *Inventory {
	inv := &Inventory{items: make([]model.Equipment, len(items))}
	copy(inv.items, items)
	return inv
}

// List returns the items whose name or description contains query, ignoring case.
// An empty query matches everything.
func (inv *Inventory) List(query string) []model.Equipment {
	inv.mu.RLock()
	defer inv.mu.RUnlock()

	q := strings.ToLower(strings.TrimSpace(query))
	out := make([]model.Equipment, 0, len(inv.items))
	for _, item := range inv.items {
		if q == "" ||
			strings.Contains(strings.ToLower(item.Name), q) ||
			strings.Contains(strings.ToLower(item.Description), q) {
			out = append(out, item)
		}
	}
	return out
}

// SetQuantity stores quantity, clamped at zero.
func (inv *Inventory) SetQuantity(id, quantity int) (model.Equipment, error) {
	return inv.update(id, func(item *model.Equipment) {
		item.Quantity = max(0, quantity)
	})
}

func (inv *Inventory) ToggleStatus(id int) (model.Equipment, error) {
	return inv.update(id, func(item *model.Equipment) {
		item.Status = item.Status.Toggle()
	})
}

func (inv *Inventory) update(id int, fn func(item *model.Equipment)) (model.Equipment, error) {
	inv.mu.Lock()
	defer inv.mu.Unlock()
	for i := range inv.items {
		if inv.items[i].Id == id {
			fn(&inv.items[i])
			return inv.items[i], nil
		}
	}
	return model.Equipment{}, ErrEquipmentNotFound
}
