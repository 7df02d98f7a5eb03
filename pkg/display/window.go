package display

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
)

var _ Surface = (*Window)(nil)

// Window renders the reading in a Fyne canvas: a title line and a value line
// in white on black.
type Window struct {
	title *canvas.Text
	value *canvas.Text
	root  fyne.CanvasObject
}

// NewWindow builds the canvas objects. Attach Content() to a fyne.Window.
func NewWindow(title string) *Window {
	w := &Window{
		title: canvas.NewText(title, color.White),
		value: canvas.NewText("", color.White),
	}
	w.title.TextSize = 20
	w.value.TextSize = 32
	w.value.TextStyle = fyne.TextStyle{Monospace: true}

	background := canvas.NewRectangle(color.Black)
	w.root = container.NewStack(background, container.NewPadded(container.NewVBox(w.title, w.value)))
	return w
}

// Content returns the root canvas object.
func (w *Window) Content() fyne.CanvasObject {
	return w.root
}

// Clear blanks the value line.
func (w *Window) Clear() {
	w.set("")
}

// Print draws text into the value line.
func (w *Window) Print(text string) {
	w.set(text)
}

// set updates the value on the Fyne main thread.
func (w *Window) set(text string) {
	fyne.Do(func() {
		w.value.Text = text
		w.value.Refresh()
	})
}
