package grid

import (
	"context"
	stderrors "errors"
	"os"
	"slices"
	"sync"
	"syscall"
	"time"

	"github.com/matzehuels/strata/pkg/cache"
	"github.com/matzehuels/strata/pkg/errors"
	"github.com/matzehuels/strata/pkg/geo"
	"github.com/matzehuels/strata/pkg/observability"
)

// Registry maps grid references to rasters. Rasters registered by path are
// read on first use and kept for the life of the registry. Failed reads are
// not remembered; transient ones are marked retryable so a Cached wrapper
// tries again.
type Registry struct {
	mu    sync.Mutex
	paths map[string]string
	grids map[string]*Regular
	load  func(path string) (*Regular, error)
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		paths: make(map[string]string),
		grids: make(map[string]*Regular),
		load:  ReadXYZFile,
	}
}

// Add registers an in-memory raster under ref.
func (r *Registry) Add(ref string, g *Regular) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.grids[ref] = g
	delete(r.paths, ref)
}

// Register registers the xyz file at path under ref. A ref with no
// explicit registration is tried as a path itself.
func (r *Registry) Register(ref, path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.paths[ref] = path
	delete(r.grids, ref)
}

// Refs returns the registered references, sorted.
func (r *Registry) Refs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	refs := make([]string, 0, len(r.paths)+len(r.grids))
	for ref := range r.paths {
		refs = append(refs, ref)
	}
	for ref := range r.grids {
		refs = append(refs, ref)
	}
	slices.Sort(refs)
	return refs
}

func (r *Registry) lookup(ref string) (*Regular, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if g, ok := r.grids[ref]; ok {
		return g, nil
	}
	path, ok := r.paths[ref]
	if !ok {
		path = ref
	}
	g, err := r.load(path)
	if err != nil {
		if transient(err) {
			return nil, cache.Retryable(errors.Wrap(errors.ErrCodeInternal, stderrors.Join(cache.ErrUnavailable, err), "grid %q", ref))
		}
		if errors.GetCode(err) == "" {
			return nil, errors.Wrap(errors.ErrCodeNotFound, err, "grid %q", ref)
		}
		return nil, err
	}
	r.grids[ref] = g
	return g, nil
}

// transient reports whether a failed read may succeed when repeated, as with
// grids on a network filesystem.
func transient(err error) bool {
	if os.IsTimeout(err) {
		return true
	}
	var errno syscall.Errno
	if stderrors.As(err, &errno) {
		return errno == syscall.EAGAIN || errno == syscall.EINTR || errno == syscall.EIO
	}
	return false
}

// Sample implements Sampler.
func (r *Registry) Sample(ctx context.Context, ref string, pts []geo.Point) (vals []float64, err error) {
	start := time.Now()
	defer func() {
		observability.Sampler().OnSample(ctx, ref, len(pts), time.Since(start), err)
	}()

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	g, err := r.lookup(ref)
	if err != nil {
		return nil, err
	}
	return g.Sample(pts), nil
}

var _ Sampler = (*Registry)(nil)
