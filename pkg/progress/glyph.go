package progress

import (
	"fmt"
	"strings"
	"sync"
)

// Outcome glyphs for the batching variant. Cached jobs reuse the
// success glyph: from the log reader's perspective both mean "output
// is there".
const (
	GlyphSucceeded = "✔"
	GlyphFailed    = "✘"
)

// lineBudget is the character budget one progress line aims for.
const lineBudget = 55

// Batcher is the count-throttled alternative to Emitter: it buffers
// compact per-job outcome tokens (zero-padded index plus glyph) and
// flushes a single line once enough tokens accumulate to fill the
// line budget. The owning process flushes unconditionally on
// completion, so no outcome is lost and none is reported twice.
//
// Batcher is safe for concurrent use.
type Batcher struct {
	proc     string
	indexLen int
	capacity int

	mu     sync.Mutex
	tokens []string
}

// NewBatcher creates a batcher for a process with size jobs. The index
// padding width follows the largest index, and the per-line capacity
// is ceil(lineBudget / (tokenWidth + 2)), two extra characters
// covering the separator.
func NewBatcher(proc string, size int) *Batcher {
	if size < 1 {
		size = 1
	}
	indexLen := len(fmt.Sprintf("%d", size-1))
	tokenWidth := indexLen + 1
	capacity := (lineBudget + tokenWidth + 1) / (tokenWidth + 2)
	return &Batcher{
		proc:     proc,
		indexLen: indexLen,
		capacity: capacity,
	}
}

// Capacity returns the number of tokens that triggers a flush.
func (b *Batcher) Capacity() int { return b.capacity }

// Add appends one job outcome. When the buffer reaches capacity the
// rendered line and true are returned and the buffer clears; otherwise
// ("", false).
func (b *Batcher) Add(jobIndex int, glyph string) (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.tokens = append(b.tokens, fmt.Sprintf("%0*d%s", b.indexLen, jobIndex, glyph))
	if len(b.tokens) < b.capacity {
		return "", false
	}
	return b.renderLocked(), true
}

// Flush drains whatever is buffered, returning the rendered line and
// true, or ("", false) for an empty buffer.
func (b *Batcher) Flush() (string, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if len(b.tokens) == 0 {
		return "", false
	}
	return b.renderLocked(), true
}

func (b *Batcher) renderLocked() string {
	line := fmt.Sprintf("%s: Progress %s", b.proc, strings.Join(b.tokens, " "))
	b.tokens = b.tokens[:0]
	return line
}
