package loader

import (
	"context"
	"io"
	"sync"

	"github.com/pkg/errors"

	"github.com/mogaika/gltf_scene_browser/fetch"
)

// BufferStore fetches and caches the binary blobs of one load operation.
// Requests are idempotent per buffer name. A failed fetch leaves the slot
// absent so dependent stages degrade instead of reading garbage.
type BufferStore struct {
	src        fetch.Source
	onProgress func(loaded, total int64)

	mu       sync.Mutex
	wg       sync.WaitGroup
	buffers  map[string][]byte
	failed   map[string]error
	inflight map[string]bool

	loadedBytes int64
	totalBytes  int64
}

func NewBufferStore(src fetch.Source, onProgress func(loaded, total int64)) *BufferStore {
	return &BufferStore{
		src:        src,
		onProgress: onProgress,
		buffers:    make(map[string][]byte),
		failed:     make(map[string]error),
		inflight:   make(map[string]bool),
	}
}

// Preload completes a buffer slot without a fetch. Used for container
// bodies and decoded data uris.
func (s *BufferStore) Preload(name string, data []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.buffers[name]; ok {
		return
	}
	s.buffers[name] = data
	s.loadedBytes += int64(len(data))
	s.totalBytes += int64(len(data))
}

// Request schedules a concurrent fetch for name unless the slot is already
// settled or in flight. The fetch outcome is reported through onDone; on
// failure the slot stays absent.
func (s *BufferStore) Request(ctx context.Context, name, uri string, byteLength uint32, onDone func(name string, err error)) {
	s.mu.Lock()
	if _, ok := s.buffers[name]; ok {
		s.mu.Unlock()
		return
	}
	if _, ok := s.failed[name]; ok {
		s.mu.Unlock()
		return
	}
	if s.inflight[name] {
		s.mu.Unlock()
		return
	}
	s.inflight[name] = true
	s.totalBytes += int64(byteLength)
	s.wg.Add(1)
	s.mu.Unlock()

	go func() {
		defer s.wg.Done()
		err := s.fetchOne(ctx, name, uri)
		s.mu.Lock()
		delete(s.inflight, name)
		if err != nil {
			s.failed[name] = err
		}
		s.mu.Unlock()
		if onDone != nil {
			onDone(name, err)
		}
	}()
}

func (s *BufferStore) fetchOne(ctx context.Context, name, uri string) error {
	if s.src == nil {
		return errors.Errorf("No source to fetch %q from", uri)
	}
	r, size, err := s.src.Open(ctx, uri)
	if err != nil {
		return err
	}
	defer r.Close()

	capacity := size
	if capacity < 0 {
		capacity = 0
	}
	data := make([]byte, 0, capacity)
	chunk := make([]byte, 32*1024)
	for {
		n, rerr := r.Read(chunk)
		if n > 0 {
			data = append(data, chunk[:n]...)
			s.addProgress(int64(n))
		}
		if rerr == io.EOF {
			break
		}
		if rerr != nil {
			return errors.Wrapf(rerr, "Read of %q failed", uri)
		}
	}
	s.mu.Lock()
	s.buffers[name] = data
	s.mu.Unlock()
	return nil
}

func (s *BufferStore) addProgress(n int64) {
	s.mu.Lock()
	s.loadedBytes += n
	if s.loadedBytes > s.totalBytes {
		s.totalBytes = s.loadedBytes
	}
	loaded, total := s.loadedBytes, s.totalBytes
	cb := s.onProgress
	s.mu.Unlock()
	if cb != nil {
		cb(loaded, total)
	}
}

// Wait blocks until every requested fetch has settled.
func (s *BufferStore) Wait() {
	s.wg.Wait()
}

// Get returns the bytes of a settled buffer, nil when the buffer failed
// or was never requested.
func (s *BufferStore) Get(name string) []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.buffers[name]
}

// Failed returns the fetch error recorded for name, nil if none.
func (s *BufferStore) Failed(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.failed[name]
}

// Pending returns the count of fetches still in flight.
func (s *BufferStore) Pending() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.inflight)
}

// Progress returns accumulated and expected byte counts across all
// buffers of the operation.
func (s *BufferStore) Progress() (loaded, total int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadedBytes, s.totalBytes
}
