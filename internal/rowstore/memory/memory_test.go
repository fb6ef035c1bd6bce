package memory

import (
	"context"
	"testing"

	"mealbook/internal/rowstore"
)

func TestAppendAndGet(t *testing.T) {
	s := New()
	ctx := context.Background()

	if err := s.Append(ctx, rowstore.TableMasters, [][]string{{"m1", "2024-05-01"}, {"m2", "2024-05-02"}}); err != nil {
		t.Fatalf("append: %v", err)
	}
	rows, err := s.Get(ctx, rowstore.TableMasters)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(rows) != 2 || rows[0][0] != "m1" || rows[1][0] != "m2" {
		t.Fatalf("unexpected rows: %v", rows)
	}
}

func TestClearKeepsIndicesStable(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.Seed(rowstore.TableMasters, [][]string{{"m1"}, {"m2"}, {"m3"}})

	if err := s.Clear(ctx, rowstore.TableMasters, 1); err != nil {
		t.Fatalf("clear: %v", err)
	}
	rows, _ := s.Get(ctx, rowstore.TableMasters)
	if len(rows) != 3 {
		t.Fatalf("clear must not shift rows, got %d rows", len(rows))
	}
	if len(rows[1]) != 0 {
		t.Errorf("cleared row should be blank, got %v", rows[1])
	}
	if rows[2][0] != "m3" {
		t.Errorf("row after tombstone moved: %v", rows[2])
	}
}

func TestUpdateInPlace(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.Seed(rowstore.TableUsers, [][]string{{"kim@acme.co.kr", "김철수", "old-hash"}})

	if err := s.Update(ctx, rowstore.TableUsers, 0, []string{"kim@acme.co.kr", "김철수", "new-hash"}); err != nil {
		t.Fatalf("update: %v", err)
	}
	rows, _ := s.Get(ctx, rowstore.TableUsers)
	if rows[0][2] != "new-hash" {
		t.Errorf("expected updated hash, got %v", rows[0])
	}
}

func TestOutOfRange(t *testing.T) {
	s := New()
	ctx := context.Background()
	if err := s.Update(ctx, rowstore.TableUsers, 0, []string{"x"}); err == nil {
		t.Error("update on empty table should fail")
	}
	if err := s.Clear(ctx, rowstore.TableUsers, -1); err == nil {
		t.Error("negative index should fail")
	}
}

func TestGetReturnsCopies(t *testing.T) {
	s := New()
	ctx := context.Background()
	s.Seed(rowstore.TableMenus, [][]string{{"김치찌개", "acme"}})

	rows, _ := s.Get(ctx, rowstore.TableMenus)
	rows[0][0] = "mutated"

	again, _ := s.Get(ctx, rowstore.TableMenus)
	if again[0][0] != "김치찌개" {
		t.Error("caller mutations must not touch the store")
	}
}
