package photolab

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestWatch(t *testing.T) {
	root := t.TempDir()
	path := filepath.Join(root, "pier.jpg")
	writePhoto(t, path, 8, 8)

	s := NewMemoryStore()
	s.Put(path, Properties{Title: "Pier", Rating: 2})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	l, err := Find(ctx, root, s)
	if err != nil {
		t.Fatalf("Find: %v", err)
	}
	r := l.Get(path)
	rc := &recorder{}
	r.Subscribe(rc.handle)

	changes, err := Watch(ctx, l, s)
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	// another program retitles the photo
	s.Put(path, Properties{Title: "Pier at night", Rating: 2})
	writePhoto(t, path, 8, 8)

	select {
	case c := <-changes:
		if c.Path != path {
			t.Errorf("change for %s, want %s", c.Path, path)
		}
		if !c.Apply(l) {
			t.Fatalf("Apply found no record")
		}
	case <-time.After(5 * time.Second):
		t.Fatalf("no change received")
	}

	if r.Title() != "Pier at night" {
		t.Errorf("Title() = %q after refresh", r.Title())
	}
	if diff := cmp.Diff([]Property{ImageTitle}, rc.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
	if s.Saves() != 0 {
		t.Errorf("refresh saved %d times", s.Saves())
	}

	cancel()
	for range changes {
	}
}

func TestChangeApplyUnknown(t *testing.T) {
	l := &Library{Root: t.TempDir()}
	if (Change{Path: "/elsewhere.jpg"}).Apply(l) {
		t.Errorf("Apply to an empty library reported a record")
	}
}

func TestChangeApplySkipsOwnSaves(t *testing.T) {
	r, _, rc := newTestRecord(t, &Properties{Rating: 2})
	l := &Library{Root: "/photos", Records: []*Record{r}}
	path := r.File().Path

	r.SetTitle("Low tide")
	r.SetTitle("High tide")
	r.Wait()
	rc.events = nil

	// the older save lands on disk after the newer write
	for _, title := range []string{"Low tide", "High tide"} {
		if !(Change{Path: path, Properties: Properties{Title: title, Rating: 2}}).Apply(l) {
			t.Fatalf("Apply(%q) found no record", title)
		}
		if got := r.Title(); got != "High tide" {
			t.Errorf("Title() = %q after echo of %q, want %q", got, title, "High tide")
		}
	}
	if len(rc.events) != 0 {
		t.Errorf("echoes notified %v", rc.events)
	}

	// another program retitles the photo
	if !(Change{Path: path, Properties: Properties{Title: "Ebb", Rating: 2}}).Apply(l) {
		t.Fatalf("Apply found no record")
	}
	if got := r.Title(); got != "Ebb" {
		t.Errorf("Title() = %q, want %q", got, "Ebb")
	}
	if diff := cmp.Diff([]Property{ImageTitle}, rc.events); diff != "" {
		t.Errorf("events mismatch (-want +got):\n%s", diff)
	}
}
