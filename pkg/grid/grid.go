// Package grid maps linear indices onto fixed-width text cells and tracks
// the scroll window of a listing.
package grid

// GetGridCoords returns the column and row of cell index in a grid cols
// cells wide.
func GetGridCoords(index, cols int) (x, y int) {
	return index % cols, index / cols
}

// Viewport is a window of Rows lines over a listing of Lines lines.
type Viewport struct {
	Lines int
	Rows  int
	Top   int
}

// Scroll moves the window by delta lines and keeps it inside the listing.
func (v *Viewport) Scroll(delta int) {
	v.Top += delta
	v.clamp()
}

// Show scrolls the least amount needed to bring line into view.
func (v *Viewport) Show(line int) {
	switch {
	case line < v.Top:
		v.Top = line
	case line >= v.Top+v.Rows:
		v.Top = line - v.Rows + 1
	}
	v.clamp()
}

// Visible returns the half-open range of lines in view.
func (v *Viewport) Visible() (start, end int) {
	return v.Top, min(v.Top+v.Rows, v.Lines)
}

func (v *Viewport) clamp() {
	v.Top = min(v.Top, v.Lines-v.Rows)
	v.Top = max(v.Top, 0)
}
