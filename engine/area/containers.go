package area

import (
	"math"

	"github.com/nathoo/turncore/types"
)

// Prop is a container placed on the map.
type Prop struct {
	ID       string
	Name     string
	Location types.Point
	Items    []string
}

// TakeAll empties the prop and returns its items.
func (p *Prop) TakeAll() []string {
	items := p.Items
	p.Items = nil
	return items
}

// Merchant is a shop with its own stock.
type Merchant struct {
	ID       string
	Items    []string
	BuyFrac  float64
	SellFrac float64
}

// BuyPrice is what the player pays for an item of base value.
func (m *Merchant) BuyPrice(value int) int {
	return int(math.Ceil(float64(value) * m.BuyFrac))
}

// SellPrice is what the merchant pays the player for an item of base value.
func (m *Merchant) SellPrice(value int) int {
	return int(math.Floor(float64(value) * m.SellFrac))
}

// Remove takes one copy of item out of stock.
func (m *Merchant) Remove(item string) bool {
	for i, it := range m.Items {
		if it == item {
			m.Items = append(m.Items[:i], m.Items[i+1:]...)
			return true
		}
	}
	return false
}

// Add puts item into stock.
func (m *Merchant) Add(item string) {
	m.Items = append(m.Items, item)
}

// Props returns the area's props.
func (s *State) Props() []*Prop { return s.props }

// Prop looks up a prop by id.
func (s *State) Prop(id string) *Prop {
	for _, p := range s.props {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// PropAt returns the prop at (x, y).
func (s *State) PropAt(x, y int) *Prop {
	for _, p := range s.props {
		if p.Location.X == x && p.Location.Y == y {
			return p
		}
	}
	return nil
}

// Merchants returns the area's merchants.
func (s *State) Merchants() []*Merchant { return s.merchants }

// Merchant looks up a merchant by id.
func (s *State) Merchant(id string) *Merchant {
	for _, m := range s.merchants {
		if m.ID == id {
			return m
		}
	}
	return nil
}
