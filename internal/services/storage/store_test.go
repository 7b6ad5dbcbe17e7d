package storage

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"bearwatch/internal/logger"
)

func newTestStore(t *testing.T) *UploadStore {
	t.Helper()

	store, err := NewUploadStore(filepath.Join(t.TempDir(), "uploads"), logger.New(t.TempDir()))
	if err != nil {
		t.Fatalf("Failed to create upload store: %v", err)
	}
	return store
}

func TestUploadStore_Allowed(t *testing.T) {
	store := newTestStore(t)

	tests := []struct {
		filename string
		want     bool
	}{
		{"bear1.jpg", true},
		{"bear1.JPG", true},
		{"photo.jpeg", true},
		{"photo.png", true},
		{"photo.gif", true},
		{"photo.bmp", true},
		{"photo.tiff", true},
		{"photo.webp", true},
		{"notes.txt", false},
		{"archive.zip", false},
		{"noextension", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := store.Allowed(tt.filename); got != tt.want {
			t.Errorf("Allowed(%q) = %v, want %v", tt.filename, got, tt.want)
		}
	}
}

func TestUploadStore_Save(t *testing.T) {
	store := newTestStore(t)

	filename, err := store.Save(bytes.NewReader([]byte("image bytes")), "bear photo (1).jpg")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if !strings.HasSuffix(filename, "_bear_photo__1_.jpg") {
		t.Errorf("filename = %q, want sanitized original name suffix", filename)
	}

	path, err := store.Path(filename)
	if err != nil {
		t.Fatalf("Path failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("Stored file unreadable: %v", err)
	}
	if string(data) != "image bytes" {
		t.Errorf("stored content = %q", data)
	}
}

func TestUploadStore_SaveGeneratesUniqueNames(t *testing.T) {
	store := newTestStore(t)

	first, err := store.Save(bytes.NewReader([]byte("a")), "same.jpg")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	second, err := store.Save(bytes.NewReader([]byte("b")), "same.jpg")
	if err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	if first == second {
		t.Errorf("Save produced colliding names: %q", first)
	}
}

func TestUploadStore_SaveRejectsUnsupported(t *testing.T) {
	store := newTestStore(t)

	if _, err := store.Save(bytes.NewReader(nil), "script.sh"); err == nil {
		t.Error("Save succeeded for unsupported extension, want error")
	}
}

func TestUploadStore_PathRejectsTraversal(t *testing.T) {
	store := newTestStore(t)

	for _, name := range []string{"../secret", "a/b.jpg", "..", ""} {
		if _, err := store.Path(name); err == nil {
			t.Errorf("Path(%q) succeeded, want error", name)
		}
	}
}

func TestUploadStore_DirectorySize(t *testing.T) {
	store := newTestStore(t)

	size, err := store.DirectorySize()
	if err != nil {
		t.Fatalf("DirectorySize failed: %v", err)
	}
	if size != 0 {
		t.Errorf("size = %d, want 0 for empty store", size)
	}

	if _, err := store.Save(bytes.NewReader(make([]byte, 100)), "a.jpg"); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	size, err = store.DirectorySize()
	if err != nil {
		t.Fatalf("DirectorySize failed: %v", err)
	}
	if size != 100 {
		t.Errorf("size = %d, want 100", size)
	}
}
