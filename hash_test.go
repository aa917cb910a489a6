package main

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestHashFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bootstrap")
	writeFile(t, path, "hello")

	got, err := hashFile(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// sha256("hello"), base64
	want := "LPJNul+wow4m6DsqxbninhsWHlwfp0JecwQzYpOLmCQ="
	if got != want {
		t.Errorf("expected %q, got %q", want, got)
	}
}

func TestHashFileMissing(t *testing.T) {
	if _, err := hashFile(filepath.Join(t.TempDir(), "nope")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestHashDirectoryChanges(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "main.go"), "package main")
	writeFile(t, filepath.Join(dir, "sub", "x.go"), "package sub")

	first, err := hashDirectory(dir)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	again, _ := hashDirectory(dir)
	if first != again {
		t.Errorf("expected stable hash, got %q and %q", first, again)
	}

	writeFile(t, filepath.Join(dir, "sub", "x.go"), "package sub // changed")
	changed, _ := hashDirectory(dir)
	if changed == first {
		t.Error("expected hash to change with file content")
	}
}

func TestSourceTag(t *testing.T) {
	a, b := t.TempDir(), t.TempDir()
	writeFile(t, filepath.Join(a, "a.go"), "a")
	writeFile(t, filepath.Join(b, "b.go"), "b")

	tag, err := sourceTag(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(tag) != 12 {
		t.Errorf("expected 12 character tag, got %q", tag)
	}

	if _, err := sourceTag(filepath.Join(a, "missing")); err == nil {
		t.Error("expected error for missing directory")
	}
}
