package inventory

import (
	"sort"
	"strings"

	"github.com/lmoreira/acervo/internal/model"
)

// CirculationFilter selects which side of the circulation view to show.
type CirculationFilter string

const (
	FilterWithdraw CirculationFilter = "retirada"
	FilterReturn   CirculationFilter = "devolucao"
)

// SearchCatalog returns items whose name or category contains term
// (case-insensitive). Items in maintenance are excluded from catalog
// browsing entirely.
func (t *Tracker) SearchCatalog(term string) []model.Item {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []model.Item
	for i := range t.items {
		if t.items[i].Status == model.StatusMaintenance {
			continue
		}
		if matchesTerm(&t.items[i], term) {
			out = append(out, t.items[i].Clone())
		}
	}
	return out
}

// MaintenanceItems returns the items currently in maintenance. They are
// hidden from the catalog views, so the maintenance page is the only
// place they show up.
func (t *Tracker) MaintenanceItems() []model.Item {
	t.mu.Lock()
	defer t.mu.Unlock()

	var out []model.Item
	for i := range t.items {
		if t.items[i].Status == model.StatusMaintenance {
			out = append(out, t.items[i].Clone())
		}
	}
	return out
}

// CirculationView returns the items eligible for the given circulation
// action: available items for withdrawal, loaned items for return. The
// search term applies on top.
func (t *Tracker) CirculationView(filter CirculationFilter, term string) []model.Item {
	t.mu.Lock()
	defer t.mu.Unlock()

	want := model.StatusAvailable
	if filter == FilterReturn {
		want = model.StatusLoaned
	}

	var out []model.Item
	for i := range t.items {
		if t.items[i].Status != want {
			continue
		}
		if matchesTerm(&t.items[i], term) {
			out = append(out, t.items[i].Clone())
		}
	}
	return out
}

func matchesTerm(item *model.Item, term string) bool {
	if term == "" {
		return true
	}
	term = strings.ToLower(term)
	return strings.Contains(strings.ToLower(item.Name), term) ||
		strings.Contains(strings.ToLower(item.Category), term)
}

// Ledger sort keys, named after the transaction fields they compare.
const (
	SortByTimestamp = "timestamp"
	SortByItemName  = "itemName"
	SortByTeacher   = "teacherName"
	SortByType      = "type"
)

// SortTransactions returns a sorted copy of the entries. String keys
// compare case-sensitively in lexicographic byte order. The sort is
// stable so equal keys keep their ledger order deterministically.
// Unknown keys fall back to timestamp.
func SortTransactions(entries []model.Transaction, key string, ascending bool) []model.Transaction {
	out := append([]model.Transaction(nil), entries...)

	var less func(a, b *model.Transaction) bool
	switch key {
	case SortByItemName:
		less = func(a, b *model.Transaction) bool { return a.ItemName < b.ItemName }
	case SortByTeacher:
		less = func(a, b *model.Transaction) bool { return a.TeacherName < b.TeacherName }
	case SortByType:
		less = func(a, b *model.Transaction) bool { return a.Type < b.Type }
	default:
		less = func(a, b *model.Transaction) bool { return a.Timestamp.Before(b.Timestamp) }
	}

	sort.SliceStable(out, func(i, j int) bool {
		if ascending {
			return less(&out[i], &out[j])
		}
		return less(&out[j], &out[i])
	})
	return out
}
