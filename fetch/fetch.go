package fetch

import (
	"context"
	"io"
	"io/fs"
	"net/http"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Source supplies named assets: scene documents and the binary buffers
// they reference.
type Source interface {
	// Open returns a reader over the named asset and its size in bytes,
	// -1 when the size is unknown up front.
	Open(ctx context.Context, name string) (io.ReadCloser, int64, error)
	// List enumerates the asset names the source can open.
	List() ([]string, error)
}

// Resolve joins a uri reference against the location of the document it
// appears in. Absolute urls and data uris pass through untouched.
func Resolve(docName, uri string) string {
	if uri == "" || strings.Contains(uri, "://") || strings.HasPrefix(uri, "data:") {
		return uri
	}
	dir := path.Dir(docName)
	if dir == "." || dir == "/" {
		return uri
	}
	return path.Join(dir, uri)
}

// DirSource serves assets from a directory tree.
type DirSource struct {
	root string
}

func NewDirSource(root string) *DirSource {
	return &DirSource{root: root}
}

func (s *DirSource) filePath(name string) (string, error) {
	name = path.Clean(strings.TrimPrefix(name, "/"))
	if name == ".." || strings.HasPrefix(name, "../") {
		return "", errors.Errorf("Path %q escapes the source root", name)
	}
	return filepath.Join(s.root, filepath.FromSlash(name)), nil
}

func (s *DirSource) Open(ctx context.Context, name string) (io.ReadCloser, int64, error) {
	if strings.Contains(name, "://") {
		return nil, 0, errors.Errorf("Remote uri %q is not reachable from a directory source", name)
	}
	fpath, err := s.filePath(name)
	if err != nil {
		return nil, 0, err
	}
	f, err := os.Open(fpath)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "Failed to open %q", name)
	}
	size := int64(-1)
	if fi, err := f.Stat(); err == nil {
		size = fi.Size()
	}
	return f, size, nil
}

func (s *DirSource) List() ([]string, error) {
	var names []string
	err := filepath.WalkDir(s.root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, p)
		if err != nil {
			return err
		}
		names = append(names, filepath.ToSlash(rel))
		return nil
	})
	if err != nil {
		return nil, errors.Wrapf(err, "Failed to list %q", s.root)
	}
	sort.Strings(names)
	return names, nil
}

// HTTPSource serves assets over http relative to a base url.
type HTTPSource struct {
	Base   string
	Client *http.Client
}

func NewHTTPSource(base string) *HTTPSource {
	return &HTTPSource{Base: strings.TrimSuffix(base, "/"), Client: http.DefaultClient}
}

func (s *HTTPSource) url(name string) string {
	if strings.Contains(name, "://") {
		return name
	}
	return s.Base + "/" + strings.TrimPrefix(name, "/")
}

func (s *HTTPSource) Open(ctx context.Context, name string) (io.ReadCloser, int64, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url(name), nil)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "Failed to build request for %q", name)
	}
	client := s.Client
	if client == nil {
		client = http.DefaultClient
	}
	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, errors.Wrapf(err, "Failed to fetch %q", name)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, 0, errors.Errorf("Fetch %q: %v", name, resp.Status)
	}
	return resp.Body, resp.ContentLength, nil
}

func (s *HTTPSource) List() ([]string, error) {
	return nil, errors.New("Listing is not supported over http")
}
