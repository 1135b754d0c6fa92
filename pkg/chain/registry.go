package chain

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const nilIdx = -1

// slot is one arena cell. A freed slot has a nil link and sits on the free list.
type slot struct {
	link *Link
	next int
}

// Registry is one ordered chain of links plus its run state.
//
// Two locks guard it. listMu covers the arena and is held only while
// splicing, never across a callback, so callbacks can add or release links.
// runMu serializes whole Run, Reset and Release passes; Runner takes it.
type Registry struct {
	name  string
	log   *zap.Logger
	obs   Observer
	retry bool

	listMu sync.Mutex
	slots  []slot
	free   []int
	head   int
	count  int
	seq    uint64 // bumped by every insert

	runMu   sync.Mutex
	state   atomic.Int32
	walking atomic.Bool // a Run or Reset pass is invoking callbacks
}

// New returns an empty, Ready registry not shared with anything else.
func New(opts ...Option) *Registry {
	r := &Registry{
		name: "default",
		log:  zap.NewNop(),
		obs:  nopObserver{},
		head: nilIdx,
	}
	for _, o := range opts {
		o(r)
	}
	r.state.Store(int32(StateReady))
	return r
}

// Configure applies options to a live registry, waiting for any pass in
// progress to finish first. It is how process-wide registries, which are
// created before main runs, pick up their logger and observer.
func (r *Registry) Configure(opts ...Option) {
	r.runMu.Lock()
	defer r.runMu.Unlock()
	r.listMu.Lock()
	defer r.listMu.Unlock()
	for _, o := range opts {
		o(r)
	}
}

func (r *Registry) Name() string { return r.name }

func (r *Registry) State() State { return State(r.state.Load()) }

// Len returns the number of links currently in the list.
func (r *Registry) Len() int {
	r.listMu.Lock()
	defer r.listMu.Unlock()
	return r.count
}

// LinkInfo is a read-only view of one link, in traversal order.
type LinkInfo struct {
	Level    int    `json:"level"`
	Name     string `json:"name,omitempty"`
	HasReset bool   `json:"hasReset"`
}

// Snapshot lists the links in the order the next pass would visit them.
func (r *Registry) Snapshot() []LinkInfo {
	r.listMu.Lock()
	defer r.listMu.Unlock()
	out := make([]LinkInfo, 0, r.count)
	for idx := r.head; idx != nilIdx; idx = r.slots[idx].next {
		l := r.slots[idx].link
		out = append(out, LinkInfo{Level: l.level, Name: l.name, HasReset: l.reset != nil})
	}
	return out
}

/* ===========================
   List maintenance
   =========================== */

func (r *Registry) insert(l *Link) {
	r.listMu.Lock()
	defer r.listMu.Unlock()

	if l.idx != nilIdx {
		panic("chain: link inserted twice")
	}

	r.seq++
	l.seq = r.seq

	idx := r.allocLocked()
	prev, cur := nilIdx, r.head
	for cur != nilIdx && r.slots[cur].link.level < l.level {
		prev, cur = cur, r.slots[cur].next
	}
	r.slots[idx] = slot{link: l, next: cur}
	if prev == nilIdx {
		r.head = idx
	} else {
		r.slots[prev].next = idx
	}
	l.idx = idx
	r.count++

	r.log.Debug("link registered",
		zap.String("chain", r.name),
		zap.Int("level", l.level),
		zap.String("link", l.name),
		zap.Bool("hasReset", l.reset != nil),
	)
}

func (r *Registry) allocLocked() int {
	if n := len(r.free); n > 0 {
		idx := r.free[n-1]
		r.free = r.free[:n-1]
		return idx
	}
	r.slots = append(r.slots, slot{next: nilIdx})
	return len(r.slots) - 1
}

// holdsLocked reports whether l's slot still points at l.
func (r *Registry) holdsLocked(l *Link) bool {
	return l.idx >= 0 && l.idx < len(r.slots) && r.slots[l.idx].link == l
}

func (r *Registry) unlink(l *Link) bool {
	r.listMu.Lock()
	defer r.listMu.Unlock()
	return r.unlinkLocked(l)
}

func (r *Registry) unlinkLocked(l *Link) bool {
	if !r.holdsLocked(l) {
		return false
	}
	prev, cur := nilIdx, r.head
	for cur != nilIdx && cur != l.idx {
		prev, cur = cur, r.slots[cur].next
	}
	if cur == nilIdx {
		panic("chain: live slot missing from list")
	}
	if prev == nilIdx {
		r.head = r.slots[cur].next
	} else {
		r.slots[prev].next = r.slots[cur].next
	}
	r.slots[cur] = slot{next: nilIdx}
	r.free = append(r.free, cur)
	r.count--
	return true
}

func (r *Registry) unlinkAll() int {
	r.listMu.Lock()
	defer r.listMu.Unlock()
	n := r.count
	r.slots, r.free = nil, nil
	r.head, r.count = nilIdx, 0
	return n
}

/* ===========================
   Traversal
   =========================== */

// walk visits links in order until visit returns false. visit runs without
// listMu, so it may release its own link, release others, or add new ones.
//
// After each visit the walk continues from the visited link if it is still
// linked, else from the next link captured before the visit when it is still
// linked and nothing was inserted meanwhile, else from the first link that
// sorts after the visited one.
func (r *Registry) walk(visit func(*Link) bool) {
	r.listMu.Lock()
	idx := r.head
	for idx != nilIdx {
		cur := r.slots[idx].link
		nextIdx := r.slots[idx].next
		var next *Link
		if nextIdx != nilIdx {
			next = r.slots[nextIdx].link
		}
		seq := r.seq

		r.listMu.Unlock()
		more := visit(cur)
		r.listMu.Lock()

		if !more {
			break
		}
		switch {
		case r.holdsLocked(cur):
			idx = r.slots[cur.idx].next
		case next != nil && r.seq == seq && r.holdsLocked(next):
			idx = next.idx
		default:
			idx = r.seekAfterLocked(cur)
		}
	}
	r.listMu.Unlock()
}

func (r *Registry) seekAfterLocked(l *Link) int {
	for idx := r.head; idx != nilIdx; idx = r.slots[idx].next {
		if r.slots[idx].link.after(l) {
			return idx
		}
	}
	return nilIdx
}

/* ===========================
   Passes (caller holds runMu)
   =========================== */

func (r *Registry) run(ctx context.Context, cfg Config) error {
	if !r.state.CompareAndSwap(int32(StateReady), int32(StateRunning)) {
		r.log.Warn("run refused", zap.String("chain", r.name), zap.Stringer("state", r.State()))
		return ErrNotReady
	}

	r.walking.Store(true)
	defer r.walking.Store(false)

	log := r.log.With(zap.String("chain", r.name), zap.String("runId", uuid.NewString()))
	snap := cfg.snapshot()
	start := time.Now()
	log.Info("chain run started", zap.Int("links", r.Len()))

	var failure *LinkError
	invoked := 0
	r.walk(func(l *Link) bool {
		t := time.Now()
		panicked, err := l.callInit(ctx, snap)
		r.obs.ObserveLink(r.name, OpInit, l.level, err == nil, time.Since(t))
		invoked++
		if err != nil {
			failure = &LinkError{Chain: r.name, Level: l.level, Name: l.name, Panicked: panicked, Cause: err}
			log.Error("link init failed",
				zap.Int("level", l.level),
				zap.String("link", l.name),
				zap.Bool("panicked", panicked),
				zap.Error(err),
			)
			return false
		}
		log.Debug("link initialized", zap.Int("level", l.level), zap.String("link", l.name))
		if l.reset == nil {
			// single-shot links leave the list once they succeed
			r.unlink(l)
		}
		return true
	})

	d := time.Since(start)
	if failure != nil {
		r.state.Store(int32(StateFailed))
		r.obs.ObservePass(r.name, OpInit, false, d)
		log.Error("chain run failed", zap.Int("invoked", invoked), zap.Duration("lat", d))
		return failure
	}
	r.state.Store(int32(StateSucceeded))
	r.obs.ObservePass(r.name, OpInit, true, d)
	log.Info("chain run succeeded", zap.Int("invoked", invoked), zap.Duration("lat", d))
	return nil
}

func (r *Registry) resetPass(ctx context.Context, cfg Config) error {
	if r.State() == StateFailed && !r.retry {
		r.log.Warn("reset refused after failure", zap.String("chain", r.name))
		return ErrPermanentFailure
	}
	r.state.Store(int32(StateReady))
	r.walking.Store(true)
	defer r.walking.Store(false)

	log := r.log.With(zap.String("chain", r.name), zap.String("runId", uuid.NewString()))
	snap := cfg.snapshot()
	start := time.Now()

	invoked := 0
	r.walk(func(l *Link) bool {
		if l.reset == nil {
			return true
		}
		t := time.Now()
		panicked, err := l.callReset(ctx, snap)
		r.obs.ObserveLink(r.name, OpReset, l.level, err == nil, time.Since(t))
		invoked++
		if err != nil {
			log.Warn("link reset failed",
				zap.Int("level", l.level),
				zap.String("link", l.name),
				zap.Bool("panicked", panicked),
				zap.Error(err),
			)
		}
		return true
	})

	d := time.Since(start)
	r.obs.ObservePass(r.name, OpReset, true, d)
	log.Info("chain reset", zap.Int("invoked", invoked), zap.Duration("lat", d))
	return nil
}

func (r *Registry) release() int {
	n := r.unlinkAll()
	r.log.Info("chain released", zap.String("chain", r.name), zap.Int("links", n))
	return n
}

func (r *Registry) releaseLink(l *Link) bool {
	if l == nil || l.reg != r {
		return false
	}
	ok := l.Release()
	if ok {
		r.log.Info("link released", zap.String("chain", r.name), zap.Int("level", l.level), zap.String("link", l.name))
	}
	return ok
}
