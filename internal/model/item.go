package model

// ItemStatus is the circulation status of a catalog entry.
type ItemStatus string

// Item statuses. The values match the persisted snapshot vocabulary.
const (
	StatusAvailable   ItemStatus = "disponivel"
	StatusLoaned      ItemStatus = "emprestado"
	StatusMaintenance ItemStatus = "manutencao"
)

// Valid reports whether s is a known item status.
func (s ItemStatus) Valid() bool {
	switch s {
	case StatusAvailable, StatusLoaned, StatusMaintenance:
		return true
	}
	return false
}

// PlaceholderImage is used when an item has no photos of its own.
const PlaceholderImage = "https://images.unsplash.com/photo-1516321318423-f06f85e504b3?auto=format&fit=crop&q=80&w=400"

// Component is one sub-part of an item's kit manifest. Components are
// informational only and not tracked separately for loan purposes.
type Component struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Quantity int    `json:"quantity"`
}

// Item represents one catalog entry. An entry may stand for several
// physical units (Quantity), but circulation status is tracked for the
// entry as a whole, not per unit.
//
// Field/status invariants: CurrentBorrower is set iff Status is
// StatusLoaned; DefectDescription and DefectImages are set iff Status is
// StatusMaintenance. Transitions in the inventory package clear the
// fields of the state being left.
//
// JSON tags match the persisted snapshot format, so snapshots
// round-trip with order and field values preserved.
type Item struct {
	ID                string      `json:"id"`
	Name              string      `json:"name"`
	Category          string      `json:"category"`
	Description       string      `json:"description"`
	Images            []string    `json:"images"`
	Status            ItemStatus  `json:"status"`
	Components        []Component `json:"components"`
	Location          string      `json:"location"`
	Quantity          int         `json:"quantity"`
	CurrentBorrower   string      `json:"currentBorrower,omitempty"`
	DefectDescription string      `json:"defectDescription,omitempty"`
	DefectImages      []string    `json:"defectImages,omitempty"`
}

// CoverImage returns the item's first image, or the placeholder when the
// item has none.
func (i Item) CoverImage() string {
	if len(i.Images) > 0 {
		return i.Images[0]
	}
	return PlaceholderImage
}

// Clone returns a deep copy of the item. The inventory tracker hands out
// clones so callers can never mutate tracked state directly.
func (i Item) Clone() Item {
	c := i
	if i.Images != nil {
		c.Images = append([]string(nil), i.Images...)
	}
	if i.DefectImages != nil {
		c.DefectImages = append([]string(nil), i.DefectImages...)
	}
	if i.Components != nil {
		c.Components = append([]Component(nil), i.Components...)
	}
	return c
}
