package localfs

import (
	"context"
	"errors"
	"io"
	"io/fs"
	"path/filepath"
	"strings"
	"testing"
)

func TestSaveAndOpenRoundTrip(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	body := "hts_code,destination,duty_rate\n8711.60.00,United States,5.3\n"
	if err := store.Save(ctx, "abc123_q3_rates.csv", strings.NewReader(body)); err != nil {
		t.Fatalf("save: %v", err)
	}

	rc, err := store.Open(ctx, "abc123_q3_rates.csv")
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	defer rc.Close()
	got, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(got) != body {
		t.Fatalf("stored sheet differs: %q", got)
	}
}

func TestSaveRejectsTraversalKeys(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	ctx := context.Background()

	for _, key := range []string{"", "..", "a/b.csv", `a\b.csv`, "../escape.csv"} {
		if err := store.Save(ctx, key, strings.NewReader("x")); err == nil {
			t.Fatalf("key %q must be rejected", key)
		}
		if _, err := store.Open(ctx, key); err == nil {
			t.Fatalf("open with key %q must be rejected", key)
		}
	}
}

func TestSaveLeavesNoTempFiles(t *testing.T) {
	dir := t.TempDir()
	store, err := New(dir)
	if err != nil {
		t.Fatalf("new store: %v", err)
	}

	if err := store.Save(context.Background(), "sheet.csv", strings.NewReader("rows")); err != nil {
		t.Fatalf("save: %v", err)
	}

	matches, err := filepath.Glob(filepath.Join(dir, ".upload-*"))
	if err != nil {
		t.Fatalf("glob: %v", err)
	}
	if len(matches) != 0 {
		t.Fatalf("temp files left behind: %v", matches)
	}
}

func TestOpenMissingSheetFails(t *testing.T) {
	store, err := New(t.TempDir())
	if err != nil {
		t.Fatalf("new store: %v", err)
	}
	if _, err := store.Open(context.Background(), "nope.csv"); !errors.Is(err, fs.ErrNotExist) {
		t.Fatalf("expected not-exist error, got %v", err)
	}
}
