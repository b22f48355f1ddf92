package photolab

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
)

func TestMemoryStore(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	f := File{Path: "/a.jpg"}

	p, err := s.Load(ctx, f)
	if err != nil || *p != (Properties{}) {
		t.Errorf("Load of unknown path = %+v, %v", p, err)
	}

	if err := s.Save(ctx, f, Properties{Title: "A", Rating: 2}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if got, ok := s.Get(f.Path); !ok || got.Title != "A" {
		t.Errorf("Get = %+v, %v", got, ok)
	}

	boom := errors.New("read-only")
	s.FailWith(boom)
	if err := s.Save(ctx, f, Properties{Title: "B"}); !errors.Is(err, boom) {
		t.Errorf("Save error = %v, want %v", err, boom)
	}
	if got, _ := s.Get(f.Path); got.Title != "A" {
		t.Errorf("failed save changed the store: %+v", got)
	}
	if s.Saves() != 2 {
		t.Errorf("Saves() = %d, want 2", s.Saves())
	}

	s.Put(f.Path, Properties{Title: "C"})
	if s.Saves() != 2 {
		t.Errorf("Put counted as a save")
	}
}

func TestStatFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.jpg")
	writePhoto(t, path, 4, 4)

	f, err := StatFile(path)
	if err != nil {
		t.Fatalf("StatFile: %v", err)
	}
	if f.Path != path || f.Size == 0 {
		t.Errorf("StatFile = %+v", f)
	}

	if _, err := StatFile(path + ".missing"); err == nil {
		t.Errorf("StatFile of a missing file succeeded")
	}
}
