package chart

import "strings"

// CellKind tells the viewer how to style a cell
type CellKind uint8

const (
	CellEmpty CellKind = iota
	CellLine
	CellPoint
	CellCrosshair
	CellPositive
	CellNegative
	CellAnchor
	CellAnnotation
)

// Cell is one character of the rendered plot
type Cell struct {
	Rune rune
	Kind CellKind
}

type cellPos struct{ col, row int }

// Frame is one rendered plot together with its marker hit map
type Frame struct {
	Plot  *Plot
	Cells [][]Cell

	hits map[cellPos]MarkerID
}

// NoCrosshair disables the keyboard crosshair column
const NoCrosshair = -1

// Render draws the price line, the markers and the annotation. It returns nil
// for an empty series. Later markers sit on top of earlier ones in the same cell.
func Render(s PriceSeries, markers *MarkerSet, ann *Annotation, width, height, crosshair int) *Frame {
	plot := NewPlot(s, width, height)
	if plot == nil {
		return nil
	}

	f := &Frame{
		Plot:  plot,
		Cells: make([][]Cell, plot.Height),
		hits:  make(map[cellPos]MarkerID),
	}
	for r := range f.Cells {
		f.Cells[r] = make([]Cell, plot.Width)
		for c := range f.Cells[r] {
			f.Cells[r][c] = Cell{Rune: ' ', Kind: CellEmpty}
		}
	}

	f.drawLine(s)

	if crosshair >= 0 && crosshair < plot.Width {
		for r := 0; r < plot.Height; r++ {
			if f.Cells[r][crosshair].Kind == CellEmpty {
				f.Cells[r][crosshair] = Cell{Rune: '│', Kind: CellCrosshair}
			}
		}
	}

	for _, m := range markers.Markers() {
		pos := cellPos{plot.Column(m.Date), plot.Row(m.Close)}
		kind := CellNegative
		if m.Positive() {
			kind = CellPositive
		}
		f.set(pos, Cell{Rune: '●', Kind: kind})
		f.hits[pos] = m.ID
	}

	if ann != nil && ann.Visible {
		f.drawAnnotation(ann)
	}

	return f
}

func (f *Frame) drawLine(s PriceSeries) {
	p := f.Plot
	prev := cellPos{-1, -1}
	for i, pt := range s {
		cur := cellPos{p.Column(pt.Date), p.Row(pt.Close)}
		if i > 0 {
			dx, dy := cur.col-prev.col, cur.row-prev.row
			steps := max(abs(dx), abs(dy))
			for k := 1; k < steps; k++ {
				c := prev.col + roundDiv(k*dx, steps)
				r := prev.row + roundDiv(k*dy, steps)
				if f.Cells[r][c].Kind == CellEmpty {
					f.Cells[r][c] = Cell{Rune: '·', Kind: CellLine}
				}
			}
		}
		f.set(cur, Cell{Rune: '•', Kind: CellPoint})
		prev = cur
	}
}

func (f *Frame) drawAnnotation(ann *Annotation) {
	p := f.Plot
	anchor := cellPos{p.Column(ann.Date), p.Row(ann.Close)}
	if _, ok := f.hits[anchor]; !ok {
		f.set(anchor, Cell{Rune: '◆', Kind: CellAnchor})
	}

	lines := strings.Split(ann.Text, "\n")
	width := 0
	for i, l := range lines {
		lines[i] = " " + l + " "
		width = max(width, len([]rune(lines[i])))
	}

	// Up and to the right of the point, flipped left when it would overflow
	x := anchor.col + 2
	if x+width > p.Width {
		x = anchor.col - 1 - width
	}
	x = clamp(x, 0, max(0, p.Width-width))
	y := clamp(anchor.row-len(lines), 0, max(0, p.Height-len(lines)))

	for i, l := range lines {
		for j, r := range []rune(l) {
			pos := cellPos{x + j, y + i}
			f.set(pos, Cell{Rune: r, Kind: CellAnnotation})
			// covered markers are no longer clickable
			delete(f.hits, pos)
		}
	}
}

func (f *Frame) set(pos cellPos, c Cell) {
	if pos.row < 0 || pos.row >= len(f.Cells) || pos.col < 0 || pos.col >= len(f.Cells[pos.row]) {
		return
	}
	f.Cells[pos.row][pos.col] = c
}

var hitOffsets = []cellPos{
	{0, 0}, {-1, 0}, {1, 0}, {0, -1}, {0, 1},
	{-1, -1}, {1, -1}, {-1, 1}, {1, 1},
}

// HitMarker returns the marker drawn at or next to (col, row). A click on the
// annotation box never hits.
func (f *Frame) HitMarker(col, row int) (MarkerID, bool) {
	if f == nil {
		return 0, false
	}
	if row >= 0 && row < len(f.Cells) && col >= 0 && col < len(f.Cells[row]) && f.Cells[row][col].Kind == CellAnnotation {
		return 0, false
	}
	for _, off := range hitOffsets {
		if id, ok := f.hits[cellPos{col + off.col, row + off.row}]; ok {
			return id, true
		}
	}
	return 0, false
}

// Lines returns the frame as plain text rows
func (f *Frame) Lines() []string {
	out := make([]string, len(f.Cells))
	for r, row := range f.Cells {
		var b strings.Builder
		for _, c := range row {
			b.WriteRune(c.Rune)
		}
		out[r] = b.String()
	}
	return out
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}

func roundDiv(a, b int) int {
	if a < 0 {
		return -((-a*2 + b) / (2 * b))
	}
	return (a*2 + b) / (2 * b)
}
