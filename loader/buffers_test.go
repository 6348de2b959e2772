package loader

import (
	"bytes"
	"context"
	"io"
	"io/ioutil"
	"sort"
	"testing"

	"github.com/pkg/errors"
)

// memSource serves documents and buffers from memory so fetch behavior is
// testable without a filesystem or network.
type memSource struct {
	files map[string][]byte
}

func (s *memSource) Open(ctx context.Context, name string) (io.ReadCloser, int64, error) {
	data, ok := s.files[name]
	if !ok {
		return nil, 0, errors.Errorf("No entry %q", name)
	}
	return ioutil.NopCloser(bytes.NewReader(data)), int64(len(data)), nil
}

func (s *memSource) List() ([]string, error) {
	names := make([]string, 0, len(s.files))
	for n := range s.files {
		names = append(names, n)
	}
	sort.Strings(names)
	return names, nil
}

func TestBufferStorePreload(t *testing.T) {
	s := NewBufferStore(nil, nil)
	s.Preload("a", []byte{1, 2, 3})
	s.Preload("a", []byte{9})

	if got := s.Get("a"); !bytes.Equal(got, []byte{1, 2, 3}) {
		t.Errorf("Get(%q)=%v; expected the first preloaded data to stay", "a", got)
	}
	if loaded, total := s.Progress(); loaded != 3 || total != 3 {
		t.Errorf("Progress()=%v,%v; expected 3,3", loaded, total)
	}
}

func TestBufferStoreRequest(t *testing.T) {
	src := &memSource{files: map[string][]byte{"mesh.bin": {1, 2, 3, 4}}}
	s := NewBufferStore(src, nil)

	done := 0
	s.Request(context.Background(), "buf", "mesh.bin", 4, func(name string, err error) {
		done++
		if err != nil {
			t.Errorf("Request(%q) failed: %v", name, err)
		}
	})
	s.Wait()

	if got := s.Get("buf"); !bytes.Equal(got, []byte{1, 2, 3, 4}) {
		t.Errorf("Get(%q)=%v; expected %v", "buf", got, []byte{1, 2, 3, 4})
	}
	if done != 1 {
		t.Errorf("onDone fired %v times; expected 1", done)
	}
	if s.Pending() != 0 {
		t.Errorf("Pending()=%v after Wait; expected 0", s.Pending())
	}
	if loaded, total := s.Progress(); loaded != 4 || total != 4 {
		t.Errorf("Progress()=%v,%v; expected 4,4", loaded, total)
	}
}

func TestBufferStoreRequestSkipsSettled(t *testing.T) {
	src := &memSource{files: map[string][]byte{"mesh.bin": {1, 2}}}
	s := NewBufferStore(src, nil)
	s.Preload("buf", []byte{7})

	called := false
	s.Request(context.Background(), "buf", "mesh.bin", 2, func(string, error) { called = true })
	s.Wait()

	if called {
		t.Errorf("Request fetched a buffer that was already preloaded")
	}
	if got := s.Get("buf"); !bytes.Equal(got, []byte{7}) {
		t.Errorf("Get(%q)=%v; expected the preloaded data", "buf", got)
	}
}

func TestBufferStoreFailure(t *testing.T) {
	src := &memSource{files: map[string][]byte{}}
	s := NewBufferStore(src, nil)

	var ferr error
	s.Request(context.Background(), "buf", "gone.bin", 10, func(name string, err error) { ferr = err })
	s.Wait()

	if ferr == nil {
		t.Errorf("Request(%q) reported no error for a missing file", "gone.bin")
	}
	if s.Failed("buf") == nil {
		t.Errorf("Failed(%q)=nil; expected the recorded fetch error", "buf")
	}
	if got := s.Get("buf"); got != nil {
		t.Errorf("Get(%q)=%v; expected nil for a failed buffer", "buf", got)
	}

	called := false
	s.Request(context.Background(), "buf", "gone.bin", 10, func(string, error) { called = true })
	s.Wait()
	if called {
		t.Errorf("Request retried a buffer that already failed")
	}
}

func TestBufferStoreProgress(t *testing.T) {
	src := &memSource{files: map[string][]byte{"a.bin": make([]byte, 100)}}

	var lastLoaded, lastTotal int64
	s := NewBufferStore(src, func(loaded, total int64) { lastLoaded, lastTotal = loaded, total })
	s.Request(context.Background(), "a", "a.bin", 100, nil)
	s.Wait()

	if lastLoaded != 100 || lastTotal != 100 {
		t.Errorf("progress callback saw %v/%v; expected 100/100", lastLoaded, lastTotal)
	}
}
