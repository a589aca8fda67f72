package workdir

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"golang.org/x/time/rate"

	"github.com/3leaps/pipelog/pkg/provider"
)

// DefaultSyncInterval is the minimum gap between unforced sync
// attempts for remote workdirs.
const DefaultSyncInterval = 10 * time.Second

// Syncer mirrors local log content to a remote workdir.
//
// Sync is best-effort: callers log and move on when it fails, and the
// final forced sync at teardown picks up anything a throttled or
// failed attempt left behind. For local workdirs every call is a
// no-op.
type Syncer struct {
	wd      *Workdir
	limiter *rate.Limiter
}

// NewSyncer creates a syncer over wd. A non-positive interval falls
// back to DefaultSyncInterval.
func NewSyncer(wd *Workdir, interval time.Duration) *Syncer {
	if interval <= 0 {
		interval = DefaultSyncInterval
	}
	return &Syncer{
		wd:      wd,
		limiter: rate.NewLimiter(rate.Every(interval), 1),
	}
}

// Sync copies lp's local content to its remote key when the content
// differs from what is already stored there.
//
// Unforced calls are rate-limited to one attempt per interval; a
// skipped attempt is not an error. force bypasses both the rate limit
// and the content comparison. A remote read-miss counts as "differs"
// rather than an error, since a first sync necessarily has no prior
// remote copy.
func (s *Syncer) Sync(ctx context.Context, lp LogPath, force bool) error {
	if !s.wd.IsRemote() || lp.IsZero() {
		return nil
	}
	if !force && !s.limiter.Allow() {
		return nil
	}

	local, err := os.ReadFile(lp.Local)
	if err != nil {
		if os.IsNotExist(err) {
			// Lazily-opened sinks may never have written anything.
			return nil
		}
		return fmt.Errorf("sync: read local %s: %w", lp.Local, err)
	}

	if !force {
		same, err := s.remoteMatches(ctx, lp.Spec, local)
		if err != nil {
			return err
		}
		if same {
			return nil
		}
	}

	if err := s.wd.Backend().PutObject(ctx, lp.Spec, bytes.NewReader(local), int64(len(local))); err != nil {
		return fmt.Errorf("sync: put %s: %w", lp.Spec, err)
	}
	return nil
}

func (s *Syncer) remoteMatches(ctx context.Context, key string, local []byte) (bool, error) {
	body, _, err := s.wd.Backend().GetObject(ctx, key)
	if err != nil {
		if provider.IsNotFound(err) {
			return false, nil
		}
		return false, fmt.Errorf("sync: read remote %s: %w", key, err)
	}
	defer body.Close()

	remote, err := io.ReadAll(body)
	if err != nil {
		return false, fmt.Errorf("sync: read remote %s: %w", key, err)
	}
	return bytes.Equal(local, remote), nil
}
