package utils_test

import (
	"context"
	"errors"
	"testing"

	"github.com/kopnusantara/koperasi_backend/utils"
)

func TestLocalStorageRoundTrip(t *testing.T) {
	store, err := utils.NewLocalStorageAt(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorageAt: %v", err)
	}
	ctx := context.Background()

	key := "exports/pdf/2025/03/laporan.pdf"
	if err := store.Put(ctx, key, []byte("isi laporan"), "application/pdf"); err != nil {
		t.Fatalf("Put: %v", err)
	}

	data, err := store.Get(ctx, key)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if string(data) != "isi laporan" {
		t.Fatalf("Get: got %q", data)
	}

	size, err := store.Size(ctx, key)
	if err != nil || size != int64(len("isi laporan")) {
		t.Fatalf("Size: got %d, %v", size, err)
	}

	if err := store.Delete(ctx, key); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.Get(ctx, key); !errors.Is(err, utils.ErrorRecordNotFound) {
		t.Fatalf("Get after delete: got %v, want ErrorRecordNotFound", err)
	}
}

func TestLocalStorageListByPrefix(t *testing.T) {
	store, err := utils.NewLocalStorageAt(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorageAt: %v", err)
	}
	ctx := context.Background()

	for _, key := range []string{
		"exports/excel/2025/03/a.xlsx",
		"exports/excel/2025/04/b.xlsx",
		"exports/pdf/2025/03/c.pdf",
	} {
		if err := store.Put(ctx, key, []byte("x"), ""); err != nil {
			t.Fatalf("Put %s: %v", key, err)
		}
	}

	objects, err := store.List(ctx, "exports/excel/")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(objects) != 2 {
		t.Fatalf("List exports/excel/: got %d objects, want 2", len(objects))
	}
	for _, obj := range objects {
		if obj.Size != 1 {
			t.Fatalf("object size: got %d", obj.Size)
		}
		if obj.Updated.IsZero() {
			t.Fatalf("object %s has zero mtime", obj.Key)
		}
	}

	all, err := store.List(ctx, "exports/")
	if err != nil {
		t.Fatalf("List all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("List exports/: got %d objects, want 3", len(all))
	}
}

func TestLocalStorageRejectsTraversal(t *testing.T) {
	store, err := utils.NewLocalStorageAt(t.TempDir())
	if err != nil {
		t.Fatalf("NewLocalStorageAt: %v", err)
	}
	if err := store.Put(context.Background(), "../escape.txt", []byte("x"), ""); err == nil {
		t.Fatal("Put with traversal key must fail")
	}
}
