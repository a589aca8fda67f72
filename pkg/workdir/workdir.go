// Package workdir resolves a pipeline's working directory to concrete
// read/write locations.
//
// A workdir is either a local path or an object-store URI. Remote
// workdirs write through a local scratch directory and record, for
// every file, the eventual remote destination; the Syncer copies
// scratch content out on a best-effort, throttled schedule.
package workdir

import (
	"context"
	"crypto/sha256"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/3leaps/pipelog/pkg/provider"
	"github.com/3leaps/pipelog/pkg/provider/s3"
)

// LogPath is one file under a workdir: the path actually written to,
// plus the remote key it mirrors to. Spec is empty for local workdirs.
type LogPath struct {
	// Local is the filesystem path writes go to.
	Local string

	// Spec is the object key at the remote destination, or "" when
	// the workdir is local.
	Spec string
}

// IsZero reports whether the path was never resolved.
func (lp LogPath) IsZero() bool { return lp.Local == "" }

// Workdir is a resolved working directory.
type Workdir struct {
	uri     string
	root    string // local write root: the workdir itself, or scratch
	prefix  string // remote key prefix, remote workdirs only
	backend provider.Provider
}

// Resolve inspects uri and returns a ready Workdir. Local paths
// resolve to themselves; s3:// URIs get an S3 backend plus a fresh
// scratch directory keyed by a short hash of the URI, so concurrent
// runs against the same remote prefix never share scratch space.
func Resolve(ctx context.Context, uri string) (*Workdir, error) {
	uri = strings.TrimSpace(uri)
	if uri == "" {
		return nil, fmt.Errorf("workdir: empty uri")
	}

	if !strings.HasPrefix(uri, "s3://") {
		return &Workdir{uri: uri, root: filepath.Clean(uri)}, nil
	}

	bucket, prefix, err := splitURI(uri)
	if err != nil {
		return nil, err
	}
	backend, err := s3.New(ctx, s3.Config{Bucket: bucket})
	if err != nil {
		return nil, fmt.Errorf("workdir: %w", err)
	}

	dig := sha256.Sum256([]byte(uri))
	scratch, err := os.MkdirTemp("", fmt.Sprintf("pipelog-*-%x", dig[:4]))
	if err != nil {
		backend.Close()
		return nil, fmt.Errorf("workdir: create scratch dir: %w", err)
	}

	return &Workdir{uri: uri, root: scratch, prefix: prefix, backend: backend}, nil
}

// ResolveWithBackend builds a remote workdir over an explicit backend
// and local root. Used by tests and by embedders that already hold a
// provider.
func ResolveWithBackend(uri, localRoot, prefix string, backend provider.Provider) *Workdir {
	return &Workdir{uri: uri, root: localRoot, prefix: prefix, backend: backend}
}

func splitURI(uri string) (bucket, prefix string, err error) {
	rest := strings.TrimPrefix(uri, "s3://")
	bucket, prefix, _ = strings.Cut(rest, "/")
	if bucket == "" {
		return "", "", fmt.Errorf("workdir: missing bucket in %q", uri)
	}
	return bucket, strings.TrimSuffix(prefix, "/"), nil
}

// URI returns the workdir as given by the framework.
func (w *Workdir) URI() string { return w.uri }

// IsRemote reports whether writes are mirrored to object storage.
func (w *Workdir) IsRemote() bool { return w.backend != nil }

// LocalRoot is the directory writes land in: the workdir itself for
// local runs, the scratch directory for remote ones.
func (w *Workdir) LocalRoot() string { return w.root }

// Backend returns the remote provider, or nil for local workdirs.
func (w *Workdir) Backend() provider.Provider { return w.backend }

// Path resolves a file under the workdir.
func (w *Workdir) Path(parts ...string) LogPath {
	lp := LogPath{Local: filepath.Join(append([]string{w.root}, parts...)...)}
	if w.IsRemote() {
		lp.Spec = path.Join(append([]string{w.prefix}, parts...)...)
	}
	return lp
}

// MkdirParents creates the local parent directory of lp. Idempotent.
func (w *Workdir) MkdirParents(lp LogPath) error {
	if err := os.MkdirAll(filepath.Dir(lp.Local), 0o755); err != nil {
		return fmt.Errorf("workdir: mkdir parents: %w", err)
	}
	return nil
}

// Relink points link at target via a fresh symlink, removing whatever
// file or link sat at that path before. The symlink target is relative
// so the workdir stays relocatable; remote mirroring of the link
// happens by content sync, not by symlink.
func (w *Workdir) Relink(target, link LogPath) error {
	if _, err := os.Lstat(link.Local); err == nil {
		if err := os.Remove(link.Local); err != nil {
			return fmt.Errorf("workdir: remove stale link: %w", err)
		}
	}

	rel, err := filepath.Rel(filepath.Dir(link.Local), target.Local)
	if err != nil {
		rel = target.Local
	}
	if err := os.Symlink(rel, link.Local); err != nil {
		return fmt.Errorf("workdir: symlink: %w", err)
	}
	return nil
}

// Close releases the remote backend, if any. The scratch directory is
// left in place: it is inside the OS temp dir and may still be wanted
// for post-mortem inspection of an interrupted run.
func (w *Workdir) Close() error {
	if w.backend == nil {
		return nil
	}
	return w.backend.Close()
}
