package memopt

import (
	"context"
	"sync"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/sgostarter/i/commerr"
	"github.com/sgostarter/i/l"
	"github.com/sgostarter/libeasygo/routineman"
	"github.com/sgostarter/libeasygo/stg/mwf"
)

type Config struct {
	CompressThresholdBytes int
	VirtualizeThreshold    int
	ChunkSize              int
	MaxMemoryUsage         int64
	GCThreshold            float64
	SampleInterval         time.Duration

	Serial mwf.Serial
}

func (cfg *Config) fillDefaults() {
	if cfg.CompressThresholdBytes <= 0 {
		cfg.CompressThresholdBytes = 10 * 1024
	}

	if cfg.VirtualizeThreshold <= 0 {
		cfg.VirtualizeThreshold = 10000
	}

	if cfg.ChunkSize <= 0 {
		cfg.ChunkSize = 1000
	}

	if cfg.MaxMemoryUsage <= 0 {
		cfg.MaxMemoryUsage = 100 * 1024 * 1024
	}

	if cfg.GCThreshold <= 0 || cfg.GCThreshold > 1 {
		cfg.GCThreshold = 0.8
	}

	if cfg.SampleInterval <= 0 {
		cfg.SampleInterval = time.Second * 30
	}

	if cfg.Serial == nil {
		cfg.Serial = &mwf.JSONSerial{}
	}
}

type Usage struct {
	RegistryBytes     int64
	CompressedBytes   int64
	RegistryEntries   int
	CompressedEntries int
}

func (u Usage) Total() int64 {
	return u.RegistryBytes + u.CompressedBytes
}

// Store keeps registered data either compressed (large values) or as a
// release-tracked registry entry (small values). A registry entry lives only
// while someone holds a reference: once released it may be reclaimed by the
// periodic sweep, after which GetData reports not found. This stands in for
// weak references, which need an explicit release protocol here.
type Store[T any] struct {
	logger l.Wrapper
	cfg    Config

	routineMan routineman.RoutineMan

	lock            sync.Mutex
	registry        map[string]*regEntry[T]
	registryBytes   int64
	compressed      *cache.Cache
	compressedBytes int64
}

type regEntry[T any] struct {
	value T
	size  int64
	refs  int
}

func NewStore[T any](cfg Config, logger l.Wrapper) *Store[T] {
	if logger == nil {
		logger = l.NewNopLoggerWrapper()
	}

	logger = logger.WithFields(l.StringField(l.ClsKey, "memoryStoreImpl"))

	cfg.fillDefaults()

	s := &Store[T]{
		logger:     logger,
		cfg:        cfg,
		routineMan: routineman.NewRoutineMan(context.Background(), logger),
		registry:   make(map[string]*regEntry[T]),
		compressed: cache.New(cache.NoExpiration, 0),
	}

	s.routineMan.StartRoutine(s.sampleRoutine, "memorySampleRoutine")

	return s
}

func (s *Store[T]) TriggerStop() {
	s.routineMan.TriggerStop()
}

func (s *Store[T]) Wait() {
	s.routineMan.Wait()
}

// RegisterData stores v under id. Values whose serialized size crosses the
// threshold go to the compressed store; the rest enter the registry with a
// single reference held by the caller.
func (s *Store[T]) RegisterData(id string, v T) error {
	blob, err := s.cfg.Serial.Marshal(v)
	if err != nil {
		return err
	}

	s.lock.Lock()
	defer s.lock.Unlock()

	s.dropLocked(id)

	if len(blob) > s.cfg.CompressThresholdBytes {
		s.compressed.Set(id, blob, cache.NoExpiration)
		s.compressedBytes += int64(len(blob))

		return nil
	}

	s.registry[id] = &regEntry[T]{
		value: v,
		size:  int64(len(blob)),
		refs:  1,
	}
	s.registryBytes += int64(len(blob))

	return nil
}

// GetData checks the compressed store first, then the registry.
func (s *Store[T]) GetData(id string) (v T, err error) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if d, ok := s.compressed.Get(id); ok {
		// nolint:forcetypeassert
		err = s.cfg.Serial.Unmarshal(d.([]byte), &v)

		return
	}

	if entry, ok := s.registry[id]; ok {
		v = entry.value

		return
	}

	err = commerr.ErrNotFound

	return
}

// Retain adds a reference to a registry entry.
func (s *Store[T]) Retain(id string) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if entry, ok := s.registry[id]; ok {
		entry.refs++
	}
}

// Release drops a reference. The entry stays resolvable until a sweep runs.
func (s *Store[T]) Release(id string) {
	s.lock.Lock()
	defer s.lock.Unlock()

	if entry, ok := s.registry[id]; ok && entry.refs > 0 {
		entry.refs--
	}
}

// Sweep reclaims registry entries nobody references anymore and returns how
// many were dropped.
func (s *Store[T]) Sweep() (dropped int) {
	s.lock.Lock()
	defer s.lock.Unlock()

	for id, entry := range s.registry {
		if entry.refs <= 0 {
			s.registryBytes -= entry.size
			delete(s.registry, id)
			dropped++
		}
	}

	return
}

func (s *Store[T]) GetUsage() Usage {
	s.lock.Lock()
	defer s.lock.Unlock()

	return Usage{
		RegistryBytes:     s.registryBytes,
		CompressedBytes:   s.compressedBytes,
		RegistryEntries:   len(s.registry),
		CompressedEntries: s.compressed.ItemCount(),
	}
}

func (s *Store[T]) dropLocked(id string) {
	if entry, ok := s.registry[id]; ok {
		s.registryBytes -= entry.size
		delete(s.registry, id)
	}

	if d, ok := s.compressed.Get(id); ok {
		// nolint:forcetypeassert
		s.compressedBytes -= int64(len(d.([]byte)))
		s.compressed.Delete(id)
	}
}

func (s *Store[T]) sampleRoutine(ctx context.Context, _ func() bool) {
	loop := true

	for loop {
		select {
		case <-ctx.Done():
			loop = false

			continue
		case <-time.After(s.cfg.SampleInterval):
			usage := s.GetUsage()

			if usage.Total() <= int64(float64(s.cfg.MaxMemoryUsage)*s.cfg.GCThreshold) {
				continue
			}

			dropped := s.Sweep()

			s.lock.Lock()

			if s.compressed.ItemCount() > 100 {
				s.compressed.Flush()
				s.compressedBytes = 0
			}

			s.lock.Unlock()

			s.logger.WithFields(l.IntField("droppedEntries", dropped),
				l.IntField("usedBytes", int(usage.Total()))).Debug("memory pressure sweep")
		}
	}
}
