package logging

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripMarkup(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"plain", "nothing to strip", "nothing to strip"},
		{"simple tag", "[bold]done[/bold]", "done"},
		{"styled pair", "[cyan]align[/cyan]: 10 jobs", "align: 10 jobs"},
		{"implicit close", "[red]failed[/]", "failed"},
		{"hex color", "[#ff8800]warn[/#ff8800]", "warn"},
		{"compound style", "[bold magenta]title[/bold magenta]", "title"},
		{"bracketed index kept", "job [5] done", "job [5] done"},
		{"upper-case kept", "[INFO] starting", "[INFO] starting"},
		{"unclosed bracket kept", "range [0, 10", "range [0, 10"},
		{"escaped bracket", `literal \[bold] text`, "literal [bold] text"},
		{"empty", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripMarkup(tt.in))
		})
	}
}
