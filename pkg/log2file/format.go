package log2file

import (
	"fmt"
	"strings"

	"github.com/3leaps/pipelog/pkg/logging"
)

// primaryFormat renders records for the run log:
//
//	08-23 14:02:11 I main     Pipeline started
//
// Console markup is stripped so the file stays plain text; the record
// itself is never modified.
func primaryFormat(rec logging.Record) string {
	return fmt.Sprintf("%s %.1s %-8s %s",
		rec.Time.Format("01-02 15:04:05"),
		rec.Level.String(),
		shortLogger(rec.Logger),
		logging.StripMarkup(rec.Message),
	)
}

// engineFormat renders records for the per-process engine log. The
// engine does not use console markup, so nothing is stripped.
func engineFormat(rec logging.Record) string {
	return fmt.Sprintf("%s %-7s %s",
		rec.Time.Format("2006-01-02 15:04:05"),
		rec.Level.String(),
		rec.Message,
	)
}

// shortLogger reduces a logger name to its last path element.
func shortLogger(name string) string {
	if i := strings.LastIndexByte(name, '/'); i >= 0 {
		return name[i+1:]
	}
	return name
}
