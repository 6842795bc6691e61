package badger

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/rsmishra/nivesh/internal/common"
	"github.com/rsmishra/nivesh/internal/models"
)

// --- Test helpers ---

func newTestStore(t *testing.T) *Store {
	t.Helper()
	dir := t.TempDir()
	logger := testLogger()
	store, err := NewStore(logger, filepath.Join(dir, "badger"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func testLogger() *common.Logger {
	return common.NewLogger("error")
}

// --- Store tests ---

func TestStore_OpenClose(t *testing.T) {
	dir := t.TempDir()
	store, err := NewStore(testLogger(), filepath.Join(dir, "badger"))
	if err != nil {
		t.Fatalf("NewStore failed: %v", err)
	}
	if store.DB() == nil {
		t.Fatal("expected non-nil DB")
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}
}

func TestStore_CloseNilDB(t *testing.T) {
	store := &Store{}
	if err := store.Close(); err != nil {
		t.Fatalf("Close on nil DB should not error: %v", err)
	}
}

// --- Portfolio storage tests ---

func TestPortfolioStorage_CRUD(t *testing.T) {
	store := newTestStore(t)
	ps := NewPortfolioStorage(store, testLogger())
	ctx := context.Background()

	_, err := ps.GetSnapshot(ctx, "20240501_101500")
	if err == nil {
		t.Fatal("expected error for non-existent snapshot")
	}

	snapshot := &models.Portfolio{
		ID: "20240501_101500",
		Holdings: []models.Holding{
			{StockName: "HINDUSTAN AERONAUTICS LIMITED", TickerSymbol: "HAL", Quantity: 27, AvgBuyPrice: 3740.59, PriceFresh: true},
		},
		TotalInvestment:   100995.93,
		TotalCurrentValue: 114759.45,
	}
	if err := ps.SaveSnapshot(ctx, snapshot); err != nil {
		t.Fatalf("SaveSnapshot failed: %v", err)
	}
	if snapshot.CreatedAt.IsZero() {
		t.Fatal("SaveSnapshot should set CreatedAt")
	}

	got, err := ps.GetSnapshot(ctx, "20240501_101500")
	if err != nil {
		t.Fatalf("GetSnapshot failed: %v", err)
	}
	if got.TotalCurrentValue != 114759.45 {
		t.Errorf("TotalCurrentValue = %v, want 114759.45", got.TotalCurrentValue)
	}
	if len(got.Holdings) != 1 || got.Holdings[0].TickerSymbol != "HAL" {
		t.Errorf("unexpected holdings: %+v", got.Holdings)
	}
}

func TestPortfolioStorage_EmptyID(t *testing.T) {
	store := newTestStore(t)
	ps := NewPortfolioStorage(store, testLogger())

	err := ps.SaveSnapshot(context.Background(), &models.Portfolio{})
	if err == nil {
		t.Fatal("expected error for empty snapshot id")
	}
}

func TestPortfolioStorage_LatestAndList(t *testing.T) {
	store := newTestStore(t)
	ps := NewPortfolioStorage(store, testLogger())
	ctx := context.Background()

	if _, err := ps.GetLatestSnapshot(ctx); err == nil {
		t.Fatal("expected error when no snapshots exist")
	}

	base := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	for i, id := range []string{"20240501_100000", "20240501_110000", "20240501_120000"} {
		err := ps.SaveSnapshot(ctx, &models.Portfolio{
			ID:        id,
			CreatedAt: base.Add(time.Duration(i) * time.Hour),
		})
		if err != nil {
			t.Fatalf("SaveSnapshot(%s) failed: %v", id, err)
		}
	}

	latest, err := ps.GetLatestSnapshot(ctx)
	if err != nil {
		t.Fatalf("GetLatestSnapshot failed: %v", err)
	}
	if latest.ID != "20240501_120000" {
		t.Errorf("latest ID = %s, want 20240501_120000", latest.ID)
	}

	ids, err := ps.ListSnapshots(ctx)
	if err != nil {
		t.Fatalf("ListSnapshots failed: %v", err)
	}
	want := []string{"20240501_120000", "20240501_110000", "20240501_100000"}
	if len(ids) != len(want) {
		t.Fatalf("ListSnapshots returned %d ids, want %d", len(ids), len(want))
	}
	for i := range want {
		if ids[i] != want[i] {
			t.Errorf("ids[%d] = %s, want %s", i, ids[i], want[i])
		}
	}
}

// --- Session storage tests ---

func TestSessionStorage_CRUD(t *testing.T) {
	store := newTestStore(t)
	ss := NewSessionStorage(store, testLogger())
	ctx := context.Background()

	_, err := ss.GetSession(ctx, "nope")
	if err == nil {
		t.Fatal("expected error for non-existent session")
	}

	session := &models.ChatSession{
		ID:    "abc-123",
		Title: "Portfolio questions",
		Messages: []models.ChatMessage{
			{Role: models.RoleUser, Content: "how am I doing?"},
			{Role: models.RoleAssistant, Content: "up 13.63%"},
		},
	}
	if err := ss.SaveSession(ctx, session); err != nil {
		t.Fatalf("SaveSession failed: %v", err)
	}
	if session.UpdatedAt.IsZero() || session.CreatedAt.IsZero() {
		t.Fatal("SaveSession should stamp timestamps")
	}

	got, err := ss.GetSession(ctx, "abc-123")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if len(got.Messages) != 2 {
		t.Fatalf("got %d messages, want 2", len(got.Messages))
	}
	if got.Messages[1].Role != models.RoleAssistant {
		t.Errorf("second message role = %s, want assistant", got.Messages[1].Role)
	}

	if err := ss.DeleteSession(ctx, "abc-123"); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}
	if _, err := ss.GetSession(ctx, "abc-123"); err == nil {
		t.Fatal("expected error after delete")
	}

	// Deleting again is a no-op.
	if err := ss.DeleteSession(ctx, "abc-123"); err != nil {
		t.Fatalf("DeleteSession on missing session failed: %v", err)
	}
}

func TestSessionStorage_ListOrder(t *testing.T) {
	store := newTestStore(t)
	ss := NewSessionStorage(store, testLogger())
	ctx := context.Background()

	for _, id := range []string{"first", "second", "third"} {
		if err := ss.SaveSession(ctx, &models.ChatSession{ID: id}); err != nil {
			t.Fatalf("SaveSession(%s) failed: %v", id, err)
		}
		time.Sleep(2 * time.Millisecond)
	}

	sessions, err := ss.ListSessions(ctx)
	if err != nil {
		t.Fatalf("ListSessions failed: %v", err)
	}
	if len(sessions) != 3 {
		t.Fatalf("got %d sessions, want 3", len(sessions))
	}
	if sessions[0].ID != "third" {
		t.Errorf("most recent session = %s, want third", sessions[0].ID)
	}
}

// --- Manager tests ---

func TestManager(t *testing.T) {
	cfg := common.NewDefaultConfig()
	cfg.Storage.Path = filepath.Join(t.TempDir(), "badger")

	manager, err := NewManager(testLogger(), cfg)
	if err != nil {
		t.Fatalf("NewManager failed: %v", err)
	}
	t.Cleanup(func() { manager.Close() })

	if manager.PortfolioStorage() == nil {
		t.Fatal("expected non-nil PortfolioStorage")
	}
	if manager.ChatStorage() == nil {
		t.Fatal("expected non-nil ChatStorage")
	}

	ctx := context.Background()
	if err := manager.ChatStorage().SaveSession(ctx, &models.ChatSession{ID: "s1"}); err != nil {
		t.Fatalf("SaveSession via manager failed: %v", err)
	}
	got, err := manager.ChatStorage().GetSession(ctx, "s1")
	if err != nil {
		t.Fatalf("GetSession via manager failed: %v", err)
	}
	if got.ID != "s1" {
		t.Errorf("session ID = %s, want s1", got.ID)
	}
}
