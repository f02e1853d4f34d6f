package local

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileBlobs(t *testing.T) {
	ctx := context.Background()
	b, err := NewFileBlobs(filepath.Join(t.TempDir(), "nested"))
	if err != nil {
		t.Fatalf("NewFileBlobs() error = %v", err)
	}

	if _, ok, err := b.ReadBlob(ctx, "missing"); err != nil || ok {
		t.Fatalf("ReadBlob(missing) = ok %v, err %v", ok, err)
	}

	if err := b.WriteBlob(ctx, "k", "v1"); err != nil {
		t.Fatalf("WriteBlob() error = %v", err)
	}
	if err := b.WriteBlob(ctx, "k", "v2"); err != nil {
		t.Fatalf("WriteBlob() overwrite error = %v", err)
	}
	got, ok, err := b.ReadBlob(ctx, "k")
	if err != nil || !ok || got != "v2" {
		t.Fatalf("ReadBlob(k) = %q, %v, %v; want v2", got, ok, err)
	}

	entries, err := os.ReadDir(b.Dir())
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Errorf("expected a single blob file, found %d entries", len(entries))
	}

	if err := b.RemoveKeys(ctx, "k", "never-written"); err != nil {
		t.Fatalf("RemoveKeys() error = %v", err)
	}
	if _, ok, _ := b.ReadBlob(ctx, "k"); ok {
		t.Error("blob still present after RemoveKeys")
	}
}

func TestFileBlobsRejectsBadKeys(t *testing.T) {
	b, err := NewFileBlobs(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	for _, key := range []string{"", "../escape", "a/b", ".hidden"} {
		if err := b.WriteBlob(context.Background(), key, "x"); err == nil {
			t.Errorf("WriteBlob(%q) should fail", key)
		}
	}
}

func TestNewFileBlobsEmptyDir(t *testing.T) {
	if _, err := NewFileBlobs("  "); err == nil {
		t.Error("NewFileBlobs(\"  \") should fail")
	}
}

func TestFileBlobsCancelledContext(t *testing.T) {
	b, err := NewFileBlobs(t.TempDir())
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := b.WriteBlob(ctx, "k", "v"); err == nil {
		t.Error("WriteBlob with cancelled context should fail")
	}
}

func TestMemoryBlobs(t *testing.T) {
	ctx := context.Background()
	m := NewMemoryBlobs()

	_ = m.WriteBlob(ctx, "a", "1")
	_ = m.WriteBlob(ctx, "b", "2")
	if got, ok, _ := m.ReadBlob(ctx, "a"); !ok || got != "1" {
		t.Errorf("ReadBlob(a) = %q, %v", got, ok)
	}
	_ = m.RemoveKeys(ctx, "a")
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
}
