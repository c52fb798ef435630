package render

import (
	"sync"

	"github.com/wricardo/karel-grid/game/engine"
)

// Update is one recorded refresh
type Update struct {
	Seq      uint64          `json:"seq"`
	Event    engine.Event    `json:"event"`
	Snapshot engine.Snapshot `json:"snapshot"`
	Frame    Frame           `json:"frame"`
}

// Recorder keeps the latest frame of a world for concurrent readers
type Recorder struct {
	mu        sync.RWMutex
	latest    Update
	recorded  bool
	listeners []func(Update)
}

// NewRecorder creates an empty recorder
func NewRecorder() *Recorder {
	return &Recorder{}
}

// Refresh implements engine.Observer
func (r *Recorder) Refresh(w *engine.World, ev engine.Event) {
	r.Record(ev, w.Snapshot())
}

// Record stores snap as the latest update and passes it to listeners
func (r *Recorder) Record(ev engine.Event, snap engine.Snapshot) Update {
	r.mu.Lock()
	u := Update{
		Seq:      r.latest.Seq + 1,
		Event:    ev,
		Snapshot: snap,
		Frame:    BuildFrame(snap),
	}
	r.latest = u
	r.recorded = true
	listeners := make([]func(Update), len(r.listeners))
	copy(listeners, r.listeners)
	r.mu.Unlock()

	for _, fn := range listeners {
		fn(u)
	}
	return u
}

// Latest returns the most recent update; ok is false before the first refresh
func (r *Recorder) Latest() (u Update, ok bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.latest, r.recorded
}

// OnUpdate registers fn to be called after every recorded refresh
func (r *Recorder) OnUpdate(fn func(Update)) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.listeners = append(r.listeners, fn)
}
