// photolab applies metadata and edit changes to photos.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	_ "image/jpeg"
	_ "image/png"

	"k8s.io/klog/v2"

	"github.com/tstromberg/photolab/pkg/photolab"
)

var (
	inPath    = flag.String("in", "", "photo or directory of photos to open")
	outDir    = flag.String("out", "", "directory to export edited photos to")
	backupDir = flag.String("backup", "", "directory to copy originals to before their metadata is rewritten")
	title     = flag.String("title", "", "title to set")
	rating    = flag.Int("rating", 0, "rating to set, 1-5")
	width     = flag.Int("width", 2048, "width of exported photos")
	quality   = flag.Int("quality", 85, "JPEG quality of exported photos")
	dryRun    = flag.Bool("n", false, "dry-run mode, don't write metadata")
	watchFlag = flag.Bool("watch", false, "watch for metadata changes made by other programs")

	edits = editFlags()
)

func editFlags() map[photolab.Param]*float64 {
	m := map[photolab.Param]*float64{}
	for _, p := range photolab.Params {
		m[p] = flag.Float64(strings.ToLower(p.String()), p.Default(), p.String()+" to apply")
	}
	return m
}

// dryRunStore reads metadata but only logs writes.
type dryRunStore struct {
	photolab.Store
}

func (dryRunStore) Save(_ context.Context, f photolab.File, p photolab.Properties) error {
	klog.Infof("dry-run: would write %+v to %s", p, f.Path)
	return nil
}

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	if *inPath == "" {
		klog.Exitf("--in is a required flag")
	}

	set := map[string]bool{}
	flag.Visit(func(f *flag.Flag) { set[f.Name] = true })

	if set["rating"] && (*rating < 0 || *rating > photolab.MaxRating) {
		klog.Exitf("--rating must be between 0 and %d", photolab.MaxRating)
	}

	c := &photolab.Config{
		InDir:     *inPath,
		OutDir:    *outDir,
		BackupDir: *backupDir,
		Preview:   photolab.ThumbOpts{X: *width, Quality: *quality},
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	et, err := photolab.NewExiftoolStore(c.BackupDir)
	if err != nil {
		klog.Exitf("exiftool failed: %v", err)
	}
	defer func() {
		if err := et.Close(); err != nil {
			klog.Errorf("Failed to close exiftool: %v", err)
		}
	}()

	var s photolab.Store = et
	if *dryRun {
		s = dryRunStore{et}
	}

	lib, err := open(ctx, c.InDir, s)
	if err != nil {
		klog.Exitf("open failed: %v", err)
	}

	failed := false
	for _, r := range lib.Records {
		r.Subscribe(logChange)
		apply(r, set)
	}
	lib.Wait()

	if c.OutDir != "" {
		for _, r := range lib.Records {
			if !r.NeedsSaved() {
				klog.V(1).Infof("%s has no edits, not exporting", r.Name())
				continue
			}
			if err := photolab.Export(r, filepath.Join(c.OutDir, r.Name()+".jpg"), c.Preview); err != nil {
				klog.Errorf("export %s: %v", r.Name(), err)
				failed = true
			}
		}
	}

	if *watchFlag {
		watch(ctx, lib, s)
	}

	if failed {
		os.Exit(1)
	}
}

func open(ctx context.Context, path string, s photolab.Store) (*photolab.Library, error) {
	fi, err := os.Stat(path)
	if err != nil {
		return nil, err
	}

	opts := []photolab.Option{
		photolab.WithSaveErrorHandler(func(f photolab.File, err error) {
			klog.Warningf("metadata for %s was not saved: %v", f.Path, err)
		}),
	}

	if fi.IsDir() {
		return photolab.Find(ctx, path, s, opts...)
	}

	r, err := photolab.Open(ctx, path, s, opts...)
	if err != nil {
		return nil, err
	}
	return &photolab.Library{Root: filepath.Dir(path), Records: []*photolab.Record{r}}, nil
}

func apply(r *photolab.Record, set map[string]bool) {
	klog.Infof("%s: %q rated %d, %s %s", r.Name(), r.Title(), r.Rating(), r.Dimensions(), r.FileType())

	if set["title"] {
		r.SetTitle(*title)
	}
	if set["rating"] {
		r.SetRating(*rating)
	}
	for p, v := range edits {
		if set[strings.ToLower(p.String())] {
			r.SetParam(p, *v)
		}
	}
}

func logChange(e photolab.Event) {
	r := e.Record
	switch e.Property {
	case photolab.ImageTitle:
		klog.Infof("%s: title is now %q", r.Name(), r.Title())
	case photolab.ImageRating:
		klog.Infof("%s: rating is now %d", r.Name(), r.Rating())
	case photolab.NeedsSaved:
		klog.Infof("%s: needs saved: %v", r.Name(), r.NeedsSaved())
	case photolab.ImageSource:
		klog.Infof("%s: image is now %s", r.Name(), r.Dimensions())
	default:
		if p, err := photolab.ParseParam(string(e.Property)); err == nil {
			klog.Infof("%s: %s is now %.2f", r.Name(), p, r.Param(p))
		}
	}
}

// watch applies metadata changes made by other programs until ctx is done.
func watch(ctx context.Context, lib *photolab.Library, s photolab.Store) {
	changes, err := photolab.Watch(ctx, lib, s)
	if err != nil {
		klog.Exitf("watch failed: %v", err)
	}
	for c := range changes {
		if !c.Apply(lib) {
			klog.V(1).Infof("ignoring change to %s", c.Path)
		}
	}
}
