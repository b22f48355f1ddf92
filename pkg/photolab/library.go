package photolab

import (
	"context"
	"fmt"
	"path/filepath"
	"slices"
	"strings"

	"github.com/karrick/godirwalk"
	"k8s.io/klog/v2"
)

// Extensions are the file extensions Find picks up.
var Extensions = []string{".jpg", ".jpeg", ".png"}

// Config holds configuration for photolab tools.
type Config struct {
	InDir     string
	OutDir    string
	BackupDir string
	Preview   ThumbOpts
}

// Open loads the photo at path and its metadata from s.
func Open(ctx context.Context, path string, s Store, opts ...Option) (*Record, error) {
	f, err := StatFile(path)
	if err != nil {
		return nil, err
	}

	props, err := s.Load(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("load metadata: %w", err)
	}

	bm, err := LoadBitmap(path)
	if err != nil {
		return nil, fmt.Errorf("load bitmap: %w", err)
	}

	base := filepath.Base(path)
	ext := filepath.Ext(base)
	name := strings.TrimSuffix(base, ext)
	fileType := strings.ToUpper(strings.TrimPrefix(ext, ".")) + " File"

	opts = append([]Option{WithStore(s), WithContext(ctx)}, opts...)
	return New(props, f, bm, name, fileType, opts...), nil
}

// Library is the working set of open photos.
type Library struct {
	Root    string
	Records []*Record
}

// Get returns the record for path, or nil.
func (l *Library) Get(path string) *Record {
	path = filepath.Clean(path)
	for _, r := range l.Records {
		if filepath.Clean(r.File().Path) == path {
			return r
		}
	}
	return nil
}

// Remove drops the record for path from the working set once its saves finish.
func (l *Library) Remove(path string) bool {
	path = filepath.Clean(path)
	for i, r := range l.Records {
		if filepath.Clean(r.File().Path) == path {
			r.Wait()
			l.Records = slices.Delete(l.Records, i, i+1)
			return true
		}
	}
	return false
}

// Wait blocks until every record has finished saving.
func (l *Library) Wait() {
	for _, r := range l.Records {
		r.Wait()
	}
}

// Dirs returns the distinct directories that hold records, including Root.
func (l *Library) Dirs() []string {
	dirs := []string{l.Root}
	for _, r := range l.Records {
		dirs = append(dirs, filepath.Dir(r.File().Path))
	}
	slices.Sort(dirs)
	return slices.Compact(dirs)
}

func supported(path string) bool {
	return slices.Contains(Extensions, strings.ToLower(filepath.Ext(path)))
}

// Find opens every supported photo below root.
func Find(ctx context.Context, root string, s Store, opts ...Option) (*Library, error) {
	l := &Library{Root: root}

	err := godirwalk.Walk(root, &godirwalk.Options{
		Callback: func(path string, de *godirwalk.Dirent) error {
			if err := ctx.Err(); err != nil {
				return err
			}

			if path != root && filepath.Base(path)[0] == '.' {
				if de.IsDir() {
					return godirwalk.SkipThis
				}
				return nil
			}

			if de.IsDir() || !supported(path) {
				return nil
			}

			klog.Infof("found %s", path)
			r, err := Open(ctx, path, s, opts...)
			if err != nil {
				klog.Errorf("read failure: %v", err)
				return err
			}
			l.Records = append(l.Records, r)
			return nil
		},
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}

	klog.Infof("found %d photos in %s", len(l.Records), root)
	return l, nil
}
