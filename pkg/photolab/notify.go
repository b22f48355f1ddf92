package photolab

// Property identifies an observable property of a Record.
type Property string

const (
	ImageSource Property = "ImageSource"
	ImageTitle  Property = "ImageTitle"
	ImageRating Property = "ImageRating"
	Exposure    Property = "Exposure"
	Temperature Property = "Temperature"
	Tint        Property = "Tint"
	Contrast    Property = "Contrast"
	Saturation  Property = "Saturation"
	Blur        Property = "Blur"
	NeedsSaved  Property = "NeedsSaved"
)

// Event is delivered to subscribers after a property has changed.
type Event struct {
	Record   *Record
	Property Property
}

// Handler receives change notifications.
type Handler func(Event)

type subscription struct {
	id int
	fn Handler
}

// Subscribe registers h for change notifications on r. Handlers run
// synchronously on the writing goroutine, in subscription order.
// The returned func removes the subscription and may be called more than once.
func (r *Record) Subscribe(h Handler) (cancel func()) {
	r.nextSub++
	id := r.nextSub
	r.subs = append(r.subs, subscription{id: id, fn: h})

	return func() {
		for i, s := range r.subs {
			if s.id == id {
				r.subs = append(r.subs[:i:i], r.subs[i+1:]...)
				return
			}
		}
	}
}

func (r *Record) notify(p Property) {
	// handlers may cancel themselves while we iterate
	subs := r.subs
	for _, s := range subs {
		s.fn(Event{Record: r, Property: p})
	}
}
