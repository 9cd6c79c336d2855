// Package progress draws progress bars on interactive terminals.
package progress

import (
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"
	"github.com/vbauerster/mpb/v6"
	"github.com/vbauerster/mpb/v6/decor"
)

// mu makes sure that only one progress bar is running at a time; concurrent bars garble the
// terminal.
var mu sync.Mutex

// Bar counts through a fixed number of steps.
type Bar interface {
	// Increment records one finished step.
	Increment()
	// Finish removes the bar from the screen's live area.  ok reports whether every step ran;
	// a failed bar is left as drawn.
	Finish(ok bool)
}

// IsTerminal reports whether w is a terminal.
func IsTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

// New returns a bar with total steps drawn on w.  If enabled is false or w is not a terminal, the
// bar draws nothing.
func New(w io.Writer, name string, total int, enabled bool) Bar {
	if !enabled || total <= 0 || !IsTerminal(w) {
		return nop{}
	}
	return newBar(w, name, total)
}

func newBar(w io.Writer, name string, total int) Bar {
	mu.Lock()
	p := mpb.New(mpb.WithOutput(w), mpb.WithWidth(40))
	b := p.AddBar(int64(total),
		mpb.PrependDecorators(
			decor.Name(name, decor.WC{W: len(name) + 1, C: decor.DidentRight}),
			decor.CountersNoUnit("%d / %d", decor.WCSyncWidth),
		),
		mpb.AppendDecorators(
			decor.OnComplete(decor.Percentage(decor.WC{W: 5}), "done"),
		),
	)
	return &bar{p: p, b: b}
}

type bar struct {
	p    *mpb.Progress
	b    *mpb.Bar
	once sync.Once
}

func (b *bar) Increment() { b.b.Increment() }

func (b *bar) Finish(ok bool) {
	b.once.Do(func() {
		if !ok || !b.b.Completed() {
			b.b.Abort(false)
		}
		b.p.Wait()
		mu.Unlock()
	})
}

type nop struct{}

func (nop) Increment()  {}
func (nop) Finish(bool) {}
