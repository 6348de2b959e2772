package loader

import (
	"context"
	"io/ioutil"
	"log"
	"sort"

	"github.com/pkg/errors"

	"github.com/mogaika/gltf_scene_browser/document"
	"github.com/mogaika/gltf_scene_browser/fetch"
	"github.com/mogaika/gltf_scene_browser/scene"
)

// Events carries the callbacks a load operation reports through. Any of
// them may be nil. OnProgress receives a percentage in [0,100]; OnError
// fires once per failed resource and the load continues degraded;
// OnSuccess fires exactly once with the finished library.
type Events struct {
	OnProgress func(percent float32)
	OnError    func(err error)
	OnSuccess  func(lib *scene.Library)
}

func (e *Events) progress(p float32) {
	if e.OnProgress != nil {
		e.OnProgress(p)
	}
}

func (e *Events) error(err error) {
	if e.OnError != nil {
		e.OnError(err)
	}
}

func (e *Events) success(lib *scene.Library) {
	if e.OnSuccess != nil {
		e.OnSuccess(lib)
	}
}

// Loader drives the load pipeline: fetch the document, fetch the buffers
// it references, then run the parse stages in dependency order. Safe to
// reuse across documents, not across goroutines mutating Events.
type Loader struct {
	Source   fetch.Source
	Registry *scene.ShaderRegistry
	Events   Events
}

func New(src fetch.Source, reg *scene.ShaderRegistry) *Loader {
	if reg == nil {
		reg = scene.DefaultShaderRegistry()
	}
	return &Loader{Source: src, Registry: reg}
}

// Load fetches a document and every external buffer it references, then
// parses once all fetches settle. Buffer fetches run concurrently; a
// failed one reports through Events.OnError and degrades the result
// instead of aborting it. Only a missing or unparsable document fails.
func (l *Loader) Load(ctx context.Context, name string) (*scene.Library, error) {
	data, err := l.fetchDocument(ctx, name)
	if err != nil {
		l.Events.error(err)
		return nil, err
	}
	return l.load(ctx, name, data, false)
}

// LoadSync parses using only synchronously available buffer data: inline
// data uris and container bodies. No external buffer fetch is issued and
// animations are skipped, so the result is immediate but partial. Callers
// that need the complete library use Load.
func (l *Loader) LoadSync(ctx context.Context, name string) (*scene.Library, error) {
	data, err := l.fetchDocument(ctx, name)
	if err != nil {
		l.Events.error(err)
		return nil, err
	}
	return l.load(ctx, name, data, true)
}

// LoadData runs the pipeline over an already fetched document body.
// External buffers still resolve through Source when one is set.
func (l *Loader) LoadData(ctx context.Context, name string, data []byte) (*scene.Library, error) {
	return l.load(ctx, name, data, false)
}

func (l *Loader) load(ctx context.Context, name string, data []byte, sync bool) (*scene.Library, error) {
	doc, body, err := document.Parse(name, data)
	if err != nil {
		l.Events.error(err)
		return nil, err
	}

	store := NewBufferStore(l.Source, func(loaded, total int64) {
		if total > 0 {
			p := float32(loaded) / float32(total) * 100.0
			if p > 100 {
				p = 100
			}
			l.Events.progress(p)
		}
	})
	if body != nil {
		store.Preload(document.EMBEDDED_BUFFER, body)
	}

	for _, bufName := range sortedKeys(doc.Buffers) {
		b := doc.Buffers[bufName]
		if store.Get(bufName) != nil {
			continue
		}
		if inline, isData, derr := document.DecodeDataURI(b.URI); isData {
			if derr != nil {
				derr = errors.Wrapf(derr, "Buffer %q", bufName)
				log.Printf("[loader] %v", derr)
				l.Events.error(derr)
				continue
			}
			store.Preload(bufName, inline)
			continue
		}
		if sync || l.Source == nil {
			continue
		}
		store.Request(ctx, bufName, fetch.Resolve(name, b.URI), b.ByteLength,
			func(bname string, ferr error) {
				if ferr != nil {
					ferr = errors.Wrapf(ferr, "Buffer %q", bname)
					log.Printf("[loader] %v", ferr)
					l.Events.error(ferr)
				}
			})
	}
	store.Wait()

	lib := l.parse(doc, store, !sync)
	l.Events.progress(100)
	l.Events.success(lib)
	return lib, nil
}

// parseState is the shared context of one parse run. The tables map
// document-local names to built entities so later stages can resolve
// references made by earlier ones.
type parseState struct {
	doc *document.Document
	dec *attributeDecoder
	lib *scene.Library
	reg *scene.ShaderRegistry

	nodesByID  map[string]scene.NodeID
	meshesByID map[string][]*scene.Mesh
	meshNodes  map[string][]meshNodeRef
	lightsByID map[string]*scene.Light
	skeletons  map[string]*scene.Skeleton
	defMat     *scene.Material
}

// parse runs the synchronous parse stages in dependency order. Stage
// order is fixed: each stage resolves references into tables built by the
// ones before it.
func (l *Loader) parse(doc *document.Document, store *BufferStore, withAnimations bool) *scene.Library {
	s := &parseState{
		doc:        doc,
		dec:        &attributeDecoder{doc: doc, store: store},
		lib:        scene.NewLibrary(doc.Name),
		reg:        l.Registry,
		nodesByID:  make(map[string]scene.NodeID),
		meshesByID: make(map[string][]*scene.Mesh),
		meshNodes:  make(map[string][]meshNodeRef),
		lightsByID: make(map[string]*scene.Light),
		skeletons:  make(map[string]*scene.Skeleton),
	}

	s.resolveTextures()
	s.resolveMaterials()
	s.buildMeshes()
	s.buildGraph()
	s.bindSkeletons()
	if withAnimations {
		s.parseAnimations()
	}
	return s.lib
}

func (l *Loader) fetchDocument(ctx context.Context, name string) ([]byte, error) {
	if l.Source == nil {
		return nil, errors.Errorf("No source configured to load %q", name)
	}
	r, _, err := l.Source.Open(ctx, name)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to fetch document %q", name)
	}
	defer r.Close()
	data, err := ioutil.ReadAll(r)
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to read document %q", name)
	}
	return data, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
