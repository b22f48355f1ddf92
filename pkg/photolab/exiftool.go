package photolab

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/barasher/go-exiftool"
	"github.com/otiai10/copy"
	"k8s.io/klog/v2"
)

// titleTags are read in order; the first non-empty one wins.
var titleTags = []string{"Title", "XPTitle", "Headline"}

// ExiftoolStore reads and writes metadata inside image files using exiftool.
type ExiftoolStore struct {
	mu        sync.Mutex
	et        *exiftool.Exiftool
	backupDir string
	backedUp  map[string]bool
}

// backupPath mirrors the absolute path of a photo below dir, so photos with
// the same name in different folders get different backups.
func backupPath(dir string, path string) (string, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", fmt.Errorf("abs: %w", err)
	}
	abs = strings.TrimPrefix(abs, filepath.VolumeName(abs))
	return filepath.Join(dir, abs), nil
}

// NewExiftoolStore starts an exiftool process. If backupDir is set, each
// file is copied there before its metadata is first rewritten.
func NewExiftoolStore(backupDir string, opts ...func(*exiftool.Exiftool) error) (*ExiftoolStore, error) {
	et, err := exiftool.NewExiftool(opts...)
	if err != nil {
		return nil, fmt.Errorf("exiftool: %w", err)
	}
	return &ExiftoolStore{et: et, backupDir: backupDir, backedUp: map[string]bool{}}, nil
}

// Close stops the exiftool process.
func (s *ExiftoolStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.et.Close()
}

// Load reads the title and rating of f.
func (s *ExiftoolStore) Load(_ context.Context, f File) (*Properties, error) {
	s.mu.Lock()
	fis := s.et.ExtractMetadata(f.Path)
	s.mu.Unlock()

	if len(fis) == 0 {
		return nil, fmt.Errorf("extract %q: no results", f.Path)
	}
	fi := fis[0]
	if fi.Err != nil {
		return nil, fmt.Errorf("extract fail for %q: %w", f.Path, fi.Err)
	}

	for k, v := range fi.Fields {
		klog.V(3).Infof("%q=%v", k, v)
	}

	p := &Properties{}
	for _, tag := range titleTags {
		t, err := fi.GetString(tag)
		if err != nil {
			klog.V(2).Infof("unable to get %s for %s: %v", tag, f.Path, err)
			continue
		}
		if t != "" {
			p.Title = t
			break
		}
	}

	rating, err := fi.GetInt("Rating")
	if err != nil {
		klog.V(2).Infof("unable to get rating for %s: %v", f.Path, err)
	}
	if rating > 0 {
		p.Rating = uint(rating)
	}

	return p, nil
}

// Save writes the title and rating of p into f.
func (s *ExiftoolStore) Save(ctx context.Context, f File, p Properties) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.backup(f.Path); err != nil {
		return fmt.Errorf("backup: %w", err)
	}

	fm := exiftool.EmptyFileMetadata()
	fm.File = f.Path
	// every tag Load reads a title from, so a cleared title stays cleared
	for _, tag := range titleTags {
		if p.Title == "" {
			fm.Clear(tag)
		} else {
			fm.SetString(tag, p.Title)
		}
	}
	fm.SetInt("Rating", int64(p.Rating))

	fms := []exiftool.FileMetadata{fm}
	s.et.WriteMetadata(fms)
	if fms[0].Err != nil {
		return fmt.Errorf("write metadata for %s: %w", f.Path, fms[0].Err)
	}

	klog.V(1).Infof("wrote %s: %+v", f.Path, p)
	return nil
}

func (s *ExiftoolStore) backup(path string) error {
	if s.backupDir == "" || s.backedUp[path] {
		return nil
	}

	dest, err := backupPath(s.backupDir, path)
	if err != nil {
		return err
	}
	if _, err := os.Stat(dest); err == nil {
		klog.V(1).Infof("backup %s already exists", dest)
		s.backedUp[path] = true
		return nil
	}

	if err := copy.Copy(path, dest); err != nil {
		return fmt.Errorf("copy: %w", err)
	}
	klog.Infof("backed up %s to %s", path, dest)
	s.backedUp[path] = true
	return nil
}
