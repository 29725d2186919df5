// Package inventory holds the application state: the item catalog and
// the transaction ledger, mutated only through the circulation and
// maintenance operations below. Every successful mutation writes both
// collections through the snapshot port before it becomes visible.
package inventory

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/lmoreira/acervo/internal/model"
	"github.com/lmoreira/acervo/internal/snapshot"
)

// DefaultLocation is assigned to items registered without a location.
const DefaultLocation = "Almoxarifado Central"

// Draft carries the caller-supplied fields for a new item. IDs and
// status are assigned by the tracker.
type Draft struct {
	Name        string            `json:"name"`
	Category    string            `json:"category"`
	Description string            `json:"description"`
	Location    string            `json:"location"`
	Quantity    int               `json:"quantity"`
	Images      []string          `json:"images"`
	Components  []model.Component `json:"components"`
}

// Tracker owns the two persisted collections. A single mutex serializes
// all operations, so no two of them can interleave; this mirrors the
// one-operation-per-turn execution model the snapshot format assumes.
type Tracker struct {
	mu           sync.Mutex
	store        snapshot.Store
	items        []model.Item
	transactions []model.Transaction

	now   func() time.Time
	newID func() string
}

// New creates a tracker backed by store, loading both snapshots. A
// missing items snapshot falls back to the default catalog, which is
// persisted immediately so the first run is durable.
func New(ctx context.Context, store snapshot.Store) (*Tracker, error) {
	t := &Tracker{
		store: store,
		now:   time.Now,
		newID: uuid.NewString,
	}

	items, err := loadCollection[model.Item](ctx, store, snapshot.KeyItems)
	if err != nil {
		return nil, err
	}
	transactions, err := loadCollection[model.Transaction](ctx, store, snapshot.KeyTransactions)
	if err != nil {
		return nil, err
	}

	seeded := false
	if items == nil {
		items = DefaultCatalog()
		seeded = true
	}
	if transactions == nil {
		transactions = []model.Transaction{}
	}

	t.items = items
	t.transactions = transactions

	if seeded {
		if err := t.persist(ctx, items, transactions); err != nil {
			return nil, fmt.Errorf("persisting default catalog: %w", err)
		}
	}

	return t, nil
}

func loadCollection[T any](ctx context.Context, store snapshot.Store, key string) ([]T, error) {
	data, err := store.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", key, err)
	}
	if data == nil {
		return nil, nil
	}

	var collection []T
	if err := json.Unmarshal(data, &collection); err != nil {
		return nil, fmt.Errorf("decoding %s: %w", key, err)
	}
	if collection == nil {
		collection = []T{}
	}
	return collection, nil
}

// persist serializes both collections in their entirety and writes them
// through the snapshot port, then publishes them as the current state.
// On error nothing is published: the operation fully fails and the next
// successful one rewrites both snapshots.
func (t *Tracker) persist(ctx context.Context, items []model.Item, transactions []model.Transaction) error {
	itemsJSON, err := json.Marshal(items)
	if err != nil {
		return fmt.Errorf("encoding items: %w", err)
	}
	transactionsJSON, err := json.Marshal(transactions)
	if err != nil {
		return fmt.Errorf("encoding transactions: %w", err)
	}

	if err := t.store.Save(ctx, snapshot.KeyItems, itemsJSON); err != nil {
		return fmt.Errorf("persisting items: %w", err)
	}
	if err := t.store.Save(ctx, snapshot.KeyTransactions, transactionsJSON); err != nil {
		return fmt.Errorf("persisting transactions: %w", err)
	}

	t.items = items
	t.transactions = transactions
	return nil
}

func (t *Tracker) findLocked(itemID string) int {
	for i := range t.items {
		if t.items[i].ID == itemID {
			return i
		}
	}
	return -1
}

// stagedWith returns a copy of the item slice with index idx replaced.
func (t *Tracker) stagedWith(idx int, item model.Item) []model.Item {
	staged := make([]model.Item, len(t.items))
	copy(staged, t.items)
	staged[idx] = item
	return staged
}

// stagedLedger returns a copy of the ledger with tx prepended, keeping
// the newest-first construction order of the snapshot.
func (t *Tracker) stagedLedger(tx model.Transaction) []model.Transaction {
	staged := make([]model.Transaction, 0, len(t.transactions)+1)
	staged = append(staged, tx)
	staged = append(staged, t.transactions...)
	return staged
}

// Items returns a copy of the catalog in stored order.
func (t *Tracker) Items() []model.Item {
	t.mu.Lock()
	defer t.mu.Unlock()
	return cloneItems(t.items)
}

// Get returns the item with the given id.
func (t *Tracker) Get(itemID string) (model.Item, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx := t.findLocked(itemID)
	if idx < 0 {
		return model.Item{}, ErrItemNotFound
	}
	return t.items[idx].Clone(), nil
}

// Transactions returns a copy of the ledger, newest first.
func (t *Tracker) Transactions() []model.Transaction {
	t.mu.Lock()
	defer t.mu.Unlock()
	return append([]model.Transaction(nil), t.transactions...)
}

// Stats summarizes the catalog plus the most recent ledger entries.
func (t *Tracker) Stats(recent int) model.Stats {
	t.mu.Lock()
	defer t.mu.Unlock()

	stats := model.Stats{TotalItems: len(t.items)}
	for i := range t.items {
		switch t.items[i].Status {
		case model.StatusAvailable:
			stats.AvailableItems++
		case model.StatusLoaned:
			stats.BorrowedItems++
		case model.StatusMaintenance:
			stats.MaintenanceItems++
		}
	}

	if recent > len(t.transactions) {
		recent = len(t.transactions)
	}
	stats.RecentTransactions = append([]model.Transaction{}, t.transactions[:recent]...)
	return stats
}

// Withdraw loans an available item to a teacher and records a retirada
// entry. A blank borrower name fails validation; a non-available item
// fails its precondition. Neither failure mutates anything.
func (t *Tracker) Withdraw(ctx context.Context, itemID, borrowerName string) (model.Item, model.Transaction, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	borrowerName = strings.TrimSpace(borrowerName)
	if borrowerName == "" {
		return model.Item{}, model.Transaction{}, &ValidationError{Field: "teacherName", Reason: "borrower name required"}
	}

	idx := t.findLocked(itemID)
	if idx < 0 {
		return model.Item{}, model.Transaction{}, ErrItemNotFound
	}

	item := t.items[idx].Clone()
	if item.Status != model.StatusAvailable {
		return model.Item{}, model.Transaction{}, &PreconditionError{Op: "withdraw", ItemID: itemID, Status: item.Status}
	}

	item.Status = model.StatusLoaned
	item.CurrentBorrower = borrowerName

	tx := model.Transaction{
		ID:          t.newID(),
		ItemID:      item.ID,
		ItemName:    item.Name,
		TeacherName: borrowerName,
		Type:        model.TypeWithdrawal,
		Timestamp:   t.now(),
	}

	if err := t.persist(ctx, t.stagedWith(idx, item), t.stagedLedger(tx)); err != nil {
		return model.Item{}, model.Transaction{}, err
	}
	return item, tx, nil
}

// Return brings a loaned item back to the available pool, crediting the
// devolucao entry to the borrower captured before the field is cleared.
func (t *Tracker) Return(ctx context.Context, itemID string) (model.Item, model.Transaction, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx := t.findLocked(itemID)
	if idx < 0 {
		return model.Item{}, model.Transaction{}, ErrItemNotFound
	}

	item := t.items[idx].Clone()
	if item.Status != model.StatusLoaned {
		return model.Item{}, model.Transaction{}, &PreconditionError{Op: "return", ItemID: itemID, Status: item.Status}
	}

	borrower := item.CurrentBorrower
	if borrower == "" {
		borrower = "N/A"
	}

	item.Status = model.StatusAvailable
	item.CurrentBorrower = ""

	tx := model.Transaction{
		ID:          t.newID(),
		ItemID:      item.ID,
		ItemName:    item.Name,
		TeacherName: borrower,
		Type:        model.TypeReturn,
		Timestamp:   t.now(),
	}

	if err := t.persist(ctx, t.stagedWith(idx, item), t.stagedLedger(tx)); err != nil {
		return model.Item{}, model.Transaction{}, err
	}
	return item, tx, nil
}

// ReportDefect routes an available or loaned item into maintenance.
// This is a forced transition: an active loan is terminated without a
// separate return entry.
func (t *Tracker) ReportDefect(ctx context.Context, itemID, description string, defectImages []string) (model.Item, model.Transaction, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	description = strings.TrimSpace(description)
	if description == "" {
		return model.Item{}, model.Transaction{}, &ValidationError{Field: "defectDescription", Reason: "defect description required"}
	}

	idx := t.findLocked(itemID)
	if idx < 0 {
		return model.Item{}, model.Transaction{}, ErrItemNotFound
	}

	item := t.items[idx].Clone()
	if item.Status != model.StatusAvailable && item.Status != model.StatusLoaned {
		return model.Item{}, model.Transaction{}, &PreconditionError{Op: "report defect", ItemID: itemID, Status: item.Status}
	}

	item.Status = model.StatusMaintenance
	item.CurrentBorrower = ""
	item.DefectDescription = description
	item.DefectImages = defectImages

	tx := model.Transaction{
		ID:          t.newID(),
		ItemID:      item.ID,
		ItemName:    item.Name,
		TeacherName: model.ActorMaintenance,
		Type:        model.TypeWithdrawal,
		Timestamp:   t.now(),
		Notes:       "Defect: " + description,
	}

	if err := t.persist(ctx, t.stagedWith(idx, item), t.stagedLedger(tx)); err != nil {
		return model.Item{}, model.Transaction{}, err
	}
	return item, tx, nil
}

// ResolveMaintenance returns a repaired item to the available pool and
// clears its defect report.
func (t *Tracker) ResolveMaintenance(ctx context.Context, itemID string) (model.Item, model.Transaction, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	idx := t.findLocked(itemID)
	if idx < 0 {
		return model.Item{}, model.Transaction{}, ErrItemNotFound
	}

	item := t.items[idx].Clone()
	if item.Status != model.StatusMaintenance {
		return model.Item{}, model.Transaction{}, &PreconditionError{Op: "resolve maintenance", ItemID: itemID, Status: item.Status}
	}

	item.Status = model.StatusAvailable
	item.CurrentBorrower = ""
	item.DefectDescription = ""
	item.DefectImages = nil

	tx := model.Transaction{
		ID:          t.newID(),
		ItemID:      item.ID,
		ItemName:    item.Name,
		TeacherName: model.ActorMaintenanceReturn,
		Type:        model.TypeReturn,
		Timestamp:   t.now(),
		Notes:       "Returned from maintenance",
	}

	if err := t.persist(ctx, t.stagedWith(idx, item), t.stagedLedger(tx)); err != nil {
		return model.Item{}, model.Transaction{}, err
	}
	return item, tx, nil
}

// AddItem registers a new catalog entry. Name and category are required;
// everything else falls back to defaults. Registration is a direct edit
// and produces no ledger entry.
func (t *Tracker) AddItem(ctx context.Context, draft Draft) (model.Item, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	item, err := t.itemFromDraft(draft)
	if err != nil {
		return model.Item{}, err
	}

	staged := make([]model.Item, len(t.items), len(t.items)+1)
	copy(staged, t.items)
	staged = append(staged, item)

	if err := t.persist(ctx, staged, t.transactions); err != nil {
		return model.Item{}, err
	}
	return item, nil
}

// ImportItems appends a batch of imported drafts as fresh available
// items. The batch is all-or-nothing and never touches existing items.
func (t *Tracker) ImportItems(ctx context.Context, drafts []Draft) ([]model.Item, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	added := make([]model.Item, 0, len(drafts))
	staged := make([]model.Item, len(t.items), len(t.items)+len(drafts))
	copy(staged, t.items)

	for i, draft := range drafts {
		item, err := t.itemFromDraft(draft)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+1, err)
		}
		staged = append(staged, item)
		added = append(added, item)
	}

	if err := t.persist(ctx, staged, t.transactions); err != nil {
		return nil, err
	}
	return added, nil
}

func (t *Tracker) itemFromDraft(draft Draft) (model.Item, error) {
	name := strings.TrimSpace(draft.Name)
	category := strings.TrimSpace(draft.Category)
	if name == "" {
		return model.Item{}, &ValidationError{Field: "name", Reason: "item name required"}
	}
	if category == "" {
		return model.Item{}, &ValidationError{Field: "category", Reason: "item category required"}
	}

	item := model.Item{
		ID:          t.newID(),
		Name:        name,
		Category:    category,
		Description: strings.TrimSpace(draft.Description),
		Location:    strings.TrimSpace(draft.Location),
		Quantity:    draft.Quantity,
		Images:      draft.Images,
		Status:      model.StatusAvailable,
		Components:  draft.Components,
	}
	if item.Location == "" {
		item.Location = DefaultLocation
	}
	if item.Quantity < 1 {
		item.Quantity = 1
	}
	if len(item.Images) == 0 {
		item.Images = []string{model.PlaceholderImage}
	}
	if item.Components == nil {
		item.Components = []model.Component{}
	}
	for i := range item.Components {
		if item.Components[i].ID == "" {
			item.Components[i].ID = t.newID()
		}
		if item.Components[i].Quantity < 1 {
			item.Components[i].Quantity = 1
		}
	}
	return item, nil
}

// UpdateItem edits an item's descriptive fields. Direct edits do not
// generate transactions and never touch status-gated fields.
func (t *Tracker) UpdateItem(ctx context.Context, itemID string, draft Draft) (model.Item, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	name := strings.TrimSpace(draft.Name)
	category := strings.TrimSpace(draft.Category)
	if name == "" {
		return model.Item{}, &ValidationError{Field: "name", Reason: "item name required"}
	}
	if category == "" {
		return model.Item{}, &ValidationError{Field: "category", Reason: "item category required"}
	}

	idx := t.findLocked(itemID)
	if idx < 0 {
		return model.Item{}, ErrItemNotFound
	}

	item := t.items[idx].Clone()
	item.Name = name
	item.Category = category
	item.Description = strings.TrimSpace(draft.Description)
	item.Location = strings.TrimSpace(draft.Location)
	if item.Location == "" {
		item.Location = DefaultLocation
	}
	if draft.Quantity >= 1 {
		item.Quantity = draft.Quantity
	}
	if draft.Components != nil {
		item.Components = draft.Components
		for i := range item.Components {
			if item.Components[i].ID == "" {
				item.Components[i].ID = t.newID()
			}
			if item.Components[i].Quantity < 1 {
				item.Components[i].Quantity = 1
			}
		}
	}

	if err := t.persist(ctx, t.stagedWith(idx, item), t.transactions); err != nil {
		return model.Item{}, err
	}
	return item, nil
}

// AppendItemImages adds photo references to an item's gallery.
func (t *Tracker) AppendItemImages(ctx context.Context, itemID string, refs ...string) (model.Item, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if len(refs) == 0 {
		return model.Item{}, &ValidationError{Field: "images", Reason: "at least one image required"}
	}

	idx := t.findLocked(itemID)
	if idx < 0 {
		return model.Item{}, ErrItemNotFound
	}

	item := t.items[idx].Clone()
	// Drop the placeholder once the item gets a real photo.
	if len(item.Images) == 1 && item.Images[0] == model.PlaceholderImage {
		item.Images = nil
	}
	item.Images = append(item.Images, refs...)

	if err := t.persist(ctx, t.stagedWith(idx, item), t.transactions); err != nil {
		return model.Item{}, err
	}
	return item, nil
}

func cloneItems(items []model.Item) []model.Item {
	out := make([]model.Item, len(items))
	for i := range items {
		out[i] = items[i].Clone()
	}
	return out
}
