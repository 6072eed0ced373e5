package chunkload

import (
	"sync"

	"github.com/sgostarter/i/l"
)

type Config struct {
	MaxConcurrentLoads int

	// ReloadLoaded re-invokes the loader for ids that already completed
	// once; with it off the coordinator memoizes and returns the stored
	// value instead. Kept configurable until product confirms which refresh
	// behavior downstream actually relies on.
	ReloadLoaded bool
}

type Status struct {
	Loaded int
	Queued int
	Active int
}

// Coordinator bounds concurrent chunk loads and de-duplicates loads of the
// same id: callers arriving while a load is in flight share its result.
// Waiting for a free slot blocks on a semaphore, never polls.
type Coordinator[T any] struct {
	logger l.Wrapper
	cfg    Config

	slots chan struct{}

	lock     sync.Mutex
	loaded   map[string]T
	doneIDs  map[string]struct{}
	inflight map[string]*flight[T]
	queued   int
}

type flight[T any] struct {
	done  chan struct{}
	value T
	err   error
}

func NewCoordinator[T any](cfg Config, logger l.Wrapper) *Coordinator[T] {
	if logger == nil {
		logger = l.NewNopLoggerWrapper()
	}

	logger = logger.WithFields(l.StringField(l.ClsKey, "chunkLoadCoordinatorImpl"))

	if cfg.MaxConcurrentLoads <= 0 {
		cfg.MaxConcurrentLoads = 3
	}

	return &Coordinator[T]{
		logger:   logger,
		cfg:      cfg,
		slots:    make(chan struct{}, cfg.MaxConcurrentLoads),
		loaded:   make(map[string]T),
		doneIDs:  make(map[string]struct{}),
		inflight: make(map[string]*flight[T]),
	}
}

func (c *Coordinator[T]) LoadChunk(id string, loader func() (T, error)) (value T, err error) {
	c.lock.Lock()

	if !c.cfg.ReloadLoaded {
		if v, ok := c.loaded[id]; ok {
			c.lock.Unlock()

			return v, nil
		}
	}

	if f, ok := c.inflight[id]; ok {
		c.lock.Unlock()

		<-f.done

		return f.value, f.err
	}

	f := &flight[T]{
		done: make(chan struct{}),
	}

	c.inflight[id] = f
	c.queued++

	c.lock.Unlock()

	c.slots <- struct{}{}

	c.lock.Lock()
	c.queued--
	c.lock.Unlock()

	f.value, f.err = loader()

	<-c.slots

	close(f.done)

	c.lock.Lock()

	delete(c.inflight, id)

	if f.err == nil {
		c.doneIDs[id] = struct{}{}

		if !c.cfg.ReloadLoaded {
			c.loaded[id] = f.value
		}
	} else {
		c.logger.WithFields(l.StringField("id", id), l.ErrorField(f.err)).Error("chunk load failed")
	}

	c.lock.Unlock()

	return f.value, f.err
}

func (c *Coordinator[T]) IsLoaded(id string) bool {
	c.lock.Lock()
	defer c.lock.Unlock()

	_, ok := c.doneIDs[id]

	return ok
}

func (c *Coordinator[T]) GetStatus() Status {
	c.lock.Lock()
	defer c.lock.Unlock()

	return Status{
		Loaded: len(c.doneIDs),
		Queued: c.queued,
		Active: len(c.slots),
	}
}

// Reset forgets loaded ids and memoized values. In-flight loads finish
// normally.
func (c *Coordinator[T]) Reset() {
	c.lock.Lock()
	defer c.lock.Unlock()

	c.loaded = make(map[string]T)
	c.doneIDs = make(map[string]struct{})
}
