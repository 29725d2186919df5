package inventory

import (
	"context"
	"testing"
	"time"

	"github.com/lmoreira/acervo/internal/model"
)

func TestSearchCatalogExcludesMaintenance(t *testing.T) {
	tracker, _ := newTestTracker(t)

	items := tracker.SearchCatalog("")
	if len(items) != 3 {
		t.Fatalf("expected 3 browsable items, got %d", len(items))
	}
	for _, item := range items {
		if item.Status == model.StatusMaintenance {
			t.Errorf("maintenance item %s leaked into catalog", item.ID)
		}
	}
}

func TestSearchCatalogMatchesNameAndCategory(t *testing.T) {
	tracker, _ := newTestTracker(t)

	cases := []struct {
		term string
		want int
	}{
		{"robótica", 1},
		{"ROBÓTICA", 1},
		{"ciências", 1},
		{"microscópio", 1},
		{"xyz-nothing", 0},
	}
	for _, tc := range cases {
		if got := len(tracker.SearchCatalog(tc.term)); got != tc.want {
			t.Errorf("term %q: expected %d items, got %d", tc.term, tc.want, got)
		}
	}
}

func TestMaintenanceItems(t *testing.T) {
	tracker, _ := newTestTracker(t)

	items := tracker.MaintenanceItems()
	if len(items) != 1 || items[0].ID != "4" {
		t.Fatalf("expected seed item 4 in maintenance, got %+v", items)
	}
}

func TestCirculationView(t *testing.T) {
	tracker, _ := newTestTracker(t)

	withdrawable := tracker.CirculationView(FilterWithdraw, "")
	if len(withdrawable) != 2 {
		t.Errorf("expected 2 withdrawable items, got %d", len(withdrawable))
	}
	for _, item := range withdrawable {
		if item.Status != model.StatusAvailable {
			t.Errorf("non-available item %s in withdraw view", item.ID)
		}
	}

	returnable := tracker.CirculationView(FilterReturn, "")
	if len(returnable) != 1 || returnable[0].ID != "2" {
		t.Errorf("expected only item 2 returnable, got %+v", returnable)
	}

	filtered := tracker.CirculationView(FilterWithdraw, "matemática")
	if len(filtered) != 1 || filtered[0].ID != "3" {
		t.Errorf("expected only item 3 for term, got %+v", filtered)
	}
}

func sampleLedger() []model.Transaction {
	base := time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC)
	return []model.Transaction{
		{ID: "t3", ItemName: "banana", TeacherName: "ana", Type: model.TypeReturn, Timestamp: base.Add(2 * time.Hour)},
		{ID: "t2", ItemName: "Abacaxi", TeacherName: "Bruno", Type: model.TypeWithdrawal, Timestamp: base.Add(time.Hour)},
		{ID: "t1", ItemName: "caju", TeacherName: "ana", Type: model.TypeWithdrawal, Timestamp: base},
	}
}

func ids(entries []model.Transaction) []string {
	out := make([]string, len(entries))
	for i, tx := range entries {
		out[i] = tx.ID
	}
	return out
}

func TestSortTransactionsByTimestamp(t *testing.T) {
	sorted := SortTransactions(sampleLedger(), SortByTimestamp, true)
	if got := ids(sorted); got[0] != "t1" || got[2] != "t3" {
		t.Errorf("ascending timestamp order wrong: %v", got)
	}

	sorted = SortTransactions(sampleLedger(), SortByTimestamp, false)
	if got := ids(sorted); got[0] != "t3" || got[2] != "t1" {
		t.Errorf("descending timestamp order wrong: %v", got)
	}
}

func TestSortTransactionsCaseSensitive(t *testing.T) {
	// Byte order puts uppercase before lowercase, so "Abacaxi" sorts
	// before "banana" but "banana" sorts before "caju".
	sorted := SortTransactions(sampleLedger(), SortByItemName, true)
	if got := ids(sorted); got[0] != "t2" || got[1] != "t3" || got[2] != "t1" {
		t.Errorf("itemName order wrong: %v", got)
	}

	// "Bruno" (uppercase B) before "ana".
	sorted = SortTransactions(sampleLedger(), SortByTeacher, true)
	if got := ids(sorted); got[0] != "t2" {
		t.Errorf("teacherName order wrong: %v", got)
	}
}

func TestSortTransactionsStable(t *testing.T) {
	// Two entries share TeacherName "ana"; stable sort keeps their
	// input order (t3 before t1).
	sorted := SortTransactions(sampleLedger(), SortByTeacher, true)
	if got := ids(sorted); got[1] != "t3" || got[2] != "t1" {
		t.Errorf("equal keys reordered: %v", got)
	}
}

func TestSortTransactionsIdempotent(t *testing.T) {
	once := SortTransactions(sampleLedger(), SortByType, true)
	twice := SortTransactions(once, SortByType, true)
	for i := range once {
		if once[i].ID != twice[i].ID {
			t.Fatalf("re-sorting changed order at %d: %v vs %v", i, ids(once), ids(twice))
		}
	}
}

func TestSortTransactionsUnknownKeyFallsBack(t *testing.T) {
	byUnknown := SortTransactions(sampleLedger(), "bogus", true)
	byTime := SortTransactions(sampleLedger(), SortByTimestamp, true)
	for i := range byTime {
		if byUnknown[i].ID != byTime[i].ID {
			t.Fatalf("unknown key did not fall back to timestamp: %v", ids(byUnknown))
		}
	}
}

func TestSortTransactionsDoesNotMutateInput(t *testing.T) {
	in := sampleLedger()
	SortTransactions(in, SortByItemName, true)
	if in[0].ID != "t3" {
		t.Error("input slice was reordered")
	}
}

func TestViewsReturnCopies(t *testing.T) {
	tracker, _ := newTestTracker(t)

	items := tracker.SearchCatalog("")
	items[0].Name = "mutated"
	if fresh, _ := tracker.Get(items[0].ID); fresh.Name == "mutated" {
		t.Error("view result aliases tracker state")
	}

	tracker.Withdraw(context.Background(), "1", "Alice")
	ledger := tracker.Transactions()
	ledger[0].TeacherName = "mutated"
	if tracker.Transactions()[0].TeacherName == "mutated" {
		t.Error("ledger result aliases tracker state")
	}
}
