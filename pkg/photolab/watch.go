package photolab

import (
	"context"
	"fmt"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
	"k8s.io/klog/v2"
)

// Change is metadata that was re-read after a photo changed on disk.
type Change struct {
	Path       string
	Properties Properties
}

// Apply refreshes the matching record in l, reporting whether one was found.
// Changes that match a save the record made itself are dropped, so an older
// save landing on disk cannot roll back a newer write.
// It must be called by the goroutine that owns the records.
func (c Change) Apply(l *Library) bool {
	r := l.Get(c.Path)
	if r == nil {
		return false
	}
	if r.ownSave(c.Properties) {
		klog.V(1).Infof("%s: ignoring our own save %+v", c.Path, c.Properties)
		return true
	}
	r.Refresh(c.Properties)
	return true
}

// Watch reloads metadata for photos in l when their files are written.
// Writes made by the records' own saves are reported too; Change.Apply
// recognizes and skips them. The channel is closed when ctx is done.
func Watch(ctx context.Context, l *Library, s Store) (<-chan Change, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("new watcher: %w", err)
	}

	known := map[string]bool{}
	for _, r := range l.Records {
		known[filepath.Clean(r.File().Path)] = true
	}

	dirs := l.Dirs()
	klog.Infof("watching %d dirs ...", len(dirs))
	for _, d := range dirs {
		if err := w.Add(d); err != nil {
			w.Close()
			return nil, fmt.Errorf("watch %s: %w", d, err)
		}
	}

	changes := make(chan Change)
	go func() {
		defer close(changes)
		defer w.Close()

		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-w.Events:
				if !ok {
					return
				}
				klog.V(1).Infof("event: %v", event)
				path := filepath.Clean(event.Name)
				if !known[path] || !(event.Has(fsnotify.Write) || event.Has(fsnotify.Create)) {
					continue
				}

				f, err := StatFile(path)
				if err != nil {
					klog.Warningf("unable to stat %s: %v", path, err)
					continue
				}
				p, err := s.Load(ctx, f)
				if err != nil {
					klog.Errorf("reload %s: %v", path, err)
					continue
				}

				select {
				case changes <- Change{Path: path, Properties: *p}:
				case <-ctx.Done():
					return
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				klog.Errorf("watch error: %v", err)
			}
		}
	}()

	return changes, nil
}
