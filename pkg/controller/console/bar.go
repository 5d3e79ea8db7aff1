package console

import (
	"fmt"
	"io"
	"strings"

	"github.com/docker/go-units"
	"github.com/fatih/color"

	"github.com/m-mizutani/armtoolchain/pkg/domain/interfaces"
	"github.com/m-mizutani/armtoolchain/pkg/domain/model"
)

const (
	barIndent = "    "
	barFill   = "━"
)

// Bar draws a single-line progress bar, redrawn in place with a carriage return
type Bar struct {
	w     io.Writer
	fill  *color.Color
	skip  *color.Color
	fail  *color.Color
	drawn bool
}

var _ interfaces.ProgressReporter = (*Bar)(nil)

// NewBar creates a progress bar writing to w. Colors follow fatih/color's NoColor detection.
func NewBar(w io.Writer) *Bar {
	return &Bar{
		w:    w,
		fill: color.New(color.FgGreen),
		skip: color.New(color.FgYellow),
		fail: color.New(color.FgRed),
	}
}

// Begin implements interfaces.ProgressReporter
func (b *Bar) Begin(name string, expected int64) {
	if expected > 0 {
		fmt.Fprintf(b.w, "%sDownloading %s (%s)\n", barIndent, name, units.BytesSize(float64(expected)))
	} else {
		fmt.Fprintf(b.w, "%sDownloading %s (size unknown)\n", barIndent, name)
	}
	b.drawn = false
}

// Advance implements interfaces.ProgressReporter
func (b *Bar) Advance(p model.Progress) {
	fmt.Fprint(b.w, "\r"+Render(p, b.fill))
	b.drawn = true
}

// End implements interfaces.ProgressReporter
func (b *Bar) End(name string, err error) {
	if b.drawn {
		fmt.Fprintln(b.w)
	}
	if err != nil {
		fmt.Fprintf(b.w, "%s%s\n", barIndent, b.fail.Sprintf("Failed to download %s", name))
	}
	b.drawn = false
}

// Skip implements interfaces.ProgressReporter
func (b *Bar) Skip(name, reason string) {
	fmt.Fprintf(b.w, "%s%s\n", barIndent, b.skip.Sprintf("%s: %s, skipping download", name, reason))
}

// Render formats a progress line without the leading carriage return
func Render(p model.Progress, fill *color.Color) string {
	downloaded := units.BytesSize(float64(p.Downloaded))

	if p.MaxChunks <= 0 || p.Expected <= 0 {
		return fmt.Sprintf("%s[ %s ] %s", barIndent, fill.Sprint("downloading"), downloaded)
	}

	done := min(p.Chunks, p.MaxChunks)
	bar := fill.Sprint(strings.Repeat(barFill, done)) + strings.Repeat(" ", p.MaxChunks-done)

	return fmt.Sprintf("%s[ %s ] %s/%s", barIndent, bar, downloaded, units.BytesSize(float64(p.Expected)))
}
