// Package photolab provides an observable model of a photo's metadata and edit parameters.
package photolab

import (
	"context"
	"fmt"
	"math/rand/v2"
	"sync"

	"k8s.io/klog/v2"
)

// MaxRating is the highest rating a UI is expected to offer.
const MaxRating = 5

// Rand is the random source used for placeholder ratings.
type Rand interface {
	IntN(n int) int
}

type globalRand struct{}

func (globalRand) IntN(n int) int { return rand.IntN(n) }

// Record is the observable model of a single photo.
//
// A Record has one logical owner: reads and writes must not race. The only
// work done off the calling goroutine is persisting title and rating writes.
type Record struct {
	file     File
	props    *Properties
	name     string
	fileType string

	source      *Bitmap
	placeholder int

	edits      Edits
	needsSaved bool

	store       Store
	rng         Rand
	ctx         context.Context
	onSaveError func(File, error)
	saves       sync.WaitGroup

	// snapshots handed to the store that have not been seen on disk yet
	sent []Properties

	subs    []subscription
	nextSub int
}

// maxSent bounds how many unacknowledged save snapshots a Record remembers.
const maxSent = 16

// Option configures a Record.
type Option func(*Record)

// WithStore sets where title and rating writes are persisted.
func WithStore(s Store) Option {
	return func(r *Record) { r.store = s }
}

// WithRand sets the source for placeholder ratings.
func WithRand(rng Rand) Option {
	return func(r *Record) { r.rng = rng }
}

// WithContext sets the context handed to the store on save.
func WithContext(ctx context.Context) Option {
	return func(r *Record) { r.ctx = ctx }
}

// WithSaveErrorHandler registers fn to be called when a save fails.
// fn runs on the save goroutine.
func WithSaveErrorHandler(fn func(File, error)) Option {
	return func(r *Record) { r.onSaveError = fn }
}

// New returns a Record for an already loaded photo.
// An unrated photo gets a placeholder rating in [1,4] that is never persisted.
func New(props *Properties, file File, src *Bitmap, name string, fileType string, opts ...Option) *Record {
	r := &Record{
		file:     file,
		props:    props,
		name:     name,
		fileType: fileType,
		source:   src,
		edits:    DefaultEdits(),
		rng:      globalRand{},
		ctx:      context.Background(),
	}
	for _, o := range opts {
		o(r)
	}

	if props.Rating == 0 {
		r.placeholder = r.rng.IntN(4) + 1
		klog.V(2).Infof("%s is unrated, using placeholder %d", name, r.placeholder)
	}
	return r
}

// setProperty stores value and notifies if it differs from *storage.
func setProperty[T comparable](r *Record, storage *T, value T, p Property) bool {
	if equal(*storage, value) {
		return false
	}
	*storage = value
	r.notify(p)
	return true
}

func (r *Record) setEditingProperty(p Param, value float64) bool {
	if !setProperty(r, r.edits.field(p), value, p.Property()) {
		return false
	}
	setProperty(r, &r.needsSaved, r.edits.Dirty(), NeedsSaved)
	return true
}

// File returns the backing file reference.
func (r *Record) File() File { return r.file }

// Properties returns the backing metadata object.
func (r *Record) Properties() *Properties { return r.props }

// Name returns the display name.
func (r *Record) Name() string { return r.name }

// FileType returns the file type label, such as ".jpg".
func (r *Record) FileType() string { return r.fileType }

// ImageSource returns the current bitmap.
func (r *Record) ImageSource() *Bitmap { return r.source }

// SetImageSource replaces the bitmap. Dimensions should be re-read afterwards.
func (r *Record) SetImageSource(b *Bitmap) bool {
	return setProperty(r, &r.source, b, ImageSource)
}

// Dimensions returns "<width> x <height>" of the image source, or "" without one.
func (r *Record) Dimensions() string {
	if r.source == nil {
		return ""
	}
	return fmt.Sprintf("%d x %d", r.source.PixelWidth, r.source.PixelHeight)
}

// Title returns the metadata title, or the display name if it is empty.
func (r *Record) Title() string {
	if r.props.Title == "" {
		return r.name
	}
	return r.props.Title
}

// SetTitle writes the title through to the metadata and saves it in the background.
func (r *Record) SetTitle(title string) bool {
	if r.props.Title == title {
		return false
	}
	r.props.Title = title
	r.persist()
	r.notify(ImageTitle)
	return true
}

// Rating returns the metadata rating, or the placeholder for an unrated photo.
func (r *Record) Rating() int {
	if r.props.Rating == 0 && r.placeholder != 0 {
		return r.placeholder
	}
	return int(r.props.Rating)
}

// SetRating writes the rating through to the metadata and saves it in the background.
// Keeping rating within [0, MaxRating] is up to the caller.
func (r *Record) SetRating(rating int) bool {
	// the placeholder is never stored, so choosing its value still persists
	if int(r.props.Rating) == rating {
		return false
	}
	r.placeholder = 0
	r.props.Rating = uint(rating)
	r.persist()
	r.notify(ImageRating)
	return true
}

// Refresh applies metadata that changed outside of the Record, such as an
// edit by another program. Nothing is saved.
func (r *Record) Refresh(p Properties) {
	title, rating := r.Title(), r.Rating()
	*r.props = p
	if p.Rating != 0 {
		r.placeholder = 0
	}

	if r.Title() != title {
		r.notify(ImageTitle)
	}
	if r.Rating() != rating {
		r.notify(ImageRating)
	}
}

// persist saves a snapshot of the metadata without blocking the caller.
// Failures are logged and handed to the save error handler.
func (r *Record) persist() {
	if r.store == nil {
		klog.V(1).Infof("%s: no store, not saving %+v", r.name, *r.props)
		return
	}

	snap := *r.props
	r.sent = append(r.sent, snap)
	if len(r.sent) > maxSent {
		r.sent = r.sent[len(r.sent)-maxSent:]
	}

	r.saves.Add(1)
	go func() {
		defer r.saves.Done()
		klog.V(1).Infof("saving %s: %+v", r.file.Path, snap)
		if err := r.store.Save(r.ctx, r.file, snap); err != nil {
			klog.Errorf("save %s failed: %v", r.file.Path, err)
			if r.onSaveError != nil {
				r.onSaveError(r.file, err)
			}
		}
	}()
}

// ownSave reports whether p is metadata this Record saved itself. A match
// acknowledges that save and every older one.
func (r *Record) ownSave(p Properties) bool {
	for i, s := range r.sent {
		if s == p {
			r.sent = r.sent[i+1:]
			return true
		}
	}
	return false
}

// Wait blocks until every save started so far has finished.
func (r *Record) Wait() {
	r.saves.Wait()
}

// NeedsSaved reports whether any edit parameter differs from its default.
func (r *Record) NeedsSaved() bool { return r.needsSaved }

// Edits returns a snapshot of the edit parameters.
func (r *Record) Edits() Edits { return r.edits }

// Param returns the value of an edit parameter.
func (r *Record) Param(p Param) float64 { return r.edits.Get(p) }

// SetParam writes an edit parameter.
func (r *Record) SetParam(p Param, v float64) bool { return r.setEditingProperty(p, v) }

// SetEdits writes every edit parameter, reporting whether any changed.
func (r *Record) SetEdits(e Edits) bool {
	changed := false
	for _, p := range Params {
		if r.setEditingProperty(p, e.Get(p)) {
			changed = true
		}
	}
	return changed
}

// ResetEdits restores every edit parameter to its default.
func (r *Record) ResetEdits() bool {
	return r.SetEdits(DefaultEdits())
}

func (r *Record) Exposure() float64    { return r.edits.Exposure }
func (r *Record) Temperature() float64 { return r.edits.Temperature }
func (r *Record) Tint() float64        { return r.edits.Tint }
func (r *Record) Contrast() float64    { return r.edits.Contrast }
func (r *Record) Saturation() float64  { return r.edits.Saturation }
func (r *Record) Blur() float64        { return r.edits.Blur }

func (r *Record) SetExposure(v float64) bool    { return r.setEditingProperty(ParamExposure, v) }
func (r *Record) SetTemperature(v float64) bool { return r.setEditingProperty(ParamTemperature, v) }
func (r *Record) SetTint(v float64) bool        { return r.setEditingProperty(ParamTint, v) }
func (r *Record) SetContrast(v float64) bool    { return r.setEditingProperty(ParamContrast, v) }
func (r *Record) SetSaturation(v float64) bool  { return r.setEditingProperty(ParamSaturation, v) }
func (r *Record) SetBlur(v float64) bool        { return r.setEditingProperty(ParamBlur, v) }
