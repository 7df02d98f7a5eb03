// Package display holds the surfaces a reading is rendered on.
package display

import (
	"fmt"
	"io"
	"sync"
)

// Surface is a fixed screen region showing one line of text.
type Surface interface {
	// Clear blanks the region.
	Clear()
	// Print draws text into the region.
	Print(text string)
}

var _ Surface = (*Console)(nil)

// Console redraws a single terminal line in place.
type Console struct {
	mu sync.Mutex
	w  io.Writer
}

// NewConsole prints title on its own line and returns a Console writing to w.
func NewConsole(w io.Writer, title string) *Console {
	if title != "" {
		fmt.Fprintln(w, title)
	}
	return &Console{w: w}
}

// Clear returns the cursor to the start of the line and erases it.
func (c *Console) Clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	io.WriteString(c.w, "\r\x1b[2K")
}

// Print writes text at the cursor.
func (c *Console) Print(text string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	io.WriteString(c.w, text)
}
