// Command irview compiles one C file and shows its IR listing in a
// scrollable window.
//
//	Up/Down, PageUp/PageDown, wheel  scroll
//	Tab / Shift+Tab                  next / previous function
//	Home / End                       first / last line
package main

import (
	"bytes"
	"flag"
	"fmt"
	"image/color"
	"log"
	"os"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text/v2"
	"golang.org/x/image/font/basicfont"

	"cfront/pkg/compiler"
	"cfront/pkg/grid"
	"cfront/pkg/ir"
	"cfront/pkg/source"
)

const (
	screenWidth  = 800
	screenHeight = 600

	charWidth  = 7 // basicfont.Face7x13
	lineHeight = 14
	margin     = 8

	headerRows = 1
	footerRows = 3
	listRows   = (screenHeight-2*margin)/lineHeight - headerRows - footerRows - 1

	cellChars = 16 // width of one entry in the function index
)

var (
	face = text.NewGoXFace(basicfont.Face7x13)

	colorText    = color.RGBA{0xd0, 0xd0, 0xd0, 0xff}
	colorFunc    = color.RGBA{0xff, 0xc8, 0x57, 0xff}
	colorLabel   = color.RGBA{0x7f, 0xc8, 0xff, 0xff}
	colorComment = color.RGBA{0x80, 0x80, 0x80, 0xff}
	colorHeader  = color.RGBA{0xff, 0xff, 0xff, 0xff}
)

type funcEntry struct {
	name string
	line int
}

// Viewer is the ebiten.Game showing one program.
type Viewer struct {
	title  string
	lines  []string
	funcs  []funcEntry
	view   grid.Viewport
	cursor int // selected entry of funcs
}

func newViewer(title string, prog *ir.Program) (*Viewer, error) {
	var buf bytes.Buffer
	if err := prog.Dump(&buf); err != nil {
		return nil, err
	}
	lines := strings.Split(strings.TrimRight(buf.String(), "\n"), "\n")
	v := &Viewer{
		title: title,
		lines: lines,
		view:  grid.Viewport{Lines: len(lines), Rows: listRows},
	}
	for i, l := range lines {
		if name, ok := strings.CutPrefix(l, "func "); ok {
			v.funcs = append(v.funcs, funcEntry{name: name, line: i})
		}
	}
	return v, nil
}

// jump selects the function delta entries away, wrapping around, and
// scrolls its header to the top of the window.
func (v *Viewer) jump(delta int) {
	if len(v.funcs) == 0 {
		return
	}
	n := len(v.funcs)
	v.cursor = ((v.cursor+delta)%n + n) % n
	v.view.Top = v.funcs[v.cursor].line
	v.view.Scroll(0)
}

func (v *Viewer) Update() error {
	switch {
	case inpututil.IsKeyJustPressed(ebiten.KeyTab):
		if ebiten.IsKeyPressed(ebiten.KeyShift) {
			v.jump(-1)
		} else {
			v.jump(1)
		}
	case inpututil.IsKeyJustPressed(ebiten.KeyHome):
		v.view.Scroll(-v.view.Lines)
	case inpututil.IsKeyJustPressed(ebiten.KeyEnd):
		v.view.Scroll(v.view.Lines)
	case inpututil.IsKeyJustPressed(ebiten.KeyPageDown):
		v.view.Scroll(v.view.Rows)
	case inpututil.IsKeyJustPressed(ebiten.KeyPageUp):
		v.view.Scroll(-v.view.Rows)
	case repeating(ebiten.KeyDown):
		v.view.Scroll(1)
	case repeating(ebiten.KeyUp):
		v.view.Scroll(-1)
	}
	if _, dy := ebiten.Wheel(); dy != 0 {
		v.view.Scroll(-int(dy * 3))
	}
	return nil
}

// repeating reports a key press, repeating while the key is held.
func repeating(k ebiten.Key) bool {
	d := inpututil.KeyPressDuration(k)
	return d == 1 || d > 20 && d%3 == 0
}

func lineColor(l string) color.Color {
	switch {
	case strings.HasPrefix(l, "func "):
		return colorFunc
	case strings.HasPrefix(l, ";"):
		return colorComment
	case strings.HasSuffix(l, ":"):
		return colorLabel
	}
	return colorText
}

func drawText(screen *ebiten.Image, s string, x, y int, c color.Color) {
	op := &text.DrawOptions{}
	op.GeoM.Translate(float64(x), float64(y))
	op.ColorScale.ScaleWithColor(c)
	text.Draw(screen, s, face, op)
}

// footerCell returns the screen position of entry i of the function index.
func footerCell(i int) (px, py int) {
	cols := (screenWidth - 2*margin) / (cellChars * charWidth)
	x, y := grid.GetGridCoords(i, cols)
	return margin + x*cellChars*charWidth, screenHeight - margin - (footerRows-y)*lineHeight
}

func (v *Viewer) Draw(screen *ebiten.Image) {
	start, end := v.view.Visible()
	header := fmt.Sprintf("%s  lines %d-%d of %d  functions %d", v.title, start+1, end, len(v.lines), len(v.funcs))
	drawText(screen, header, margin, margin, colorHeader)

	y := margin + (headerRows+1)*lineHeight
	for _, l := range v.lines[start:end] {
		drawText(screen, l, margin, y, lineColor(l))
		y += lineHeight
	}

	cols := (screenWidth - 2*margin) / (cellChars * charWidth)
	for i, f := range v.funcs {
		if i >= cols*footerRows {
			break
		}
		name := f.name
		if len(name) >= cellChars {
			name = name[:cellChars-2] + "~"
		}
		c := colorText
		if i == v.cursor {
			c = colorFunc
		}
		px, py := footerCell(i)
		drawText(screen, name, px, py, c)
	}
}

func (v *Viewer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return screenWidth, screenHeight
}

func main() {
	abiPath := flag.String("abi", "", "YAML ABI description (default: built-in LP64)")
	flag.Parse()
	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: irview [-abi file.yaml] file.c")
		os.Exit(2)
	}

	f, err := source.NewSet().LoadFile(flag.Arg(0))
	if err != nil {
		log.Fatalf("Failed to read source file: %v", err)
	}

	opts := compiler.Options{File: f.Name}
	if *abiPath != "" {
		if opts.ABI, err = compiler.LoadABI(*abiPath); err != nil {
			log.Fatalf("Failed to load ABI: %v", err)
		}
	}
	_, prog, err := compiler.Compile(string(f.Data), opts)
	if err != nil {
		log.Fatalf("Compilation failed: %v", err)
	}

	viewer, err := newViewer(f.Name, prog)
	if err != nil {
		log.Fatal(err)
	}

	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(screenWidth, screenHeight)
	ebiten.SetWindowTitle("cfront IR: " + f.Name)
	if err := ebiten.RunGame(viewer); err != nil {
		log.Fatal(err)
	}
}
