package qr

import (
	"fmt"
	"strings"
)

// renderSVG emits the matrix as vector markup. Square modules collapse into
// per-row path runs to keep the output compact; rounded and circle shapes
// emit one primitive per dark module.
func renderSVG(m Matrix, opts RenderOptions) ([]byte, error) {
	fill, err := ParseColor(opts.FillColor)
	if err != nil {
		return nil, err
	}
	back, err := ParseColor(opts.BackColor)
	if err != nil {
		return nil, err
	}

	n := m.Size()
	s := opts.Scale
	side := (n + 2*opts.Border) * s

	var b strings.Builder
	b.WriteString(`<?xml version="1.0" encoding="UTF-8"?>` + "\n")
	fmt.Fprintf(&b,
		`<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d" shape-rendering="crispEdges">`+"\n",
		side, side, side, side)
	fmt.Fprintf(&b, `<rect width="100%%" height="100%%" fill="%s"/>`+"\n", hexColor(back))

	switch opts.Shape {
	case ShapeCircle:
		r := float64(s) / 2
		for y, row := range m {
			for x, dark := range row {
				if !dark {
					continue
				}
				cx := float64((x+opts.Border)*s) + r
				cy := float64((y+opts.Border)*s) + r
				fmt.Fprintf(&b, `<circle cx="%g" cy="%g" r="%g" fill="%s"/>`+"\n", cx, cy, r, hexColor(fill))
			}
		}
	case ShapeRounded:
		rx := float64(s) / 4
		for y, row := range m {
			for x, dark := range row {
				if !dark {
					continue
				}
				px := (x + opts.Border) * s
				py := (y + opts.Border) * s
				fmt.Fprintf(&b, `<rect x="%d" y="%d" width="%d" height="%d" rx="%g" fill="%s"/>`+"\n",
					px, py, s, s, rx, hexColor(fill))
			}
		}
	default:
		fmt.Fprintf(&b, `<path fill="%s" d="`, hexColor(fill))
		for y, row := range m {
			x := 0
			for x < n {
				if !row[x] {
					x++
					continue
				}
				run := 0
				for x+run < n && row[x+run] {
					run++
				}
				px := (x + opts.Border) * s
				py := (y + opts.Border) * s
				fmt.Fprintf(&b, "M%d %dh%dv%dh-%dz", px, py, run*s, s, run*s)
				x += run
			}
		}
		b.WriteString(`"/>` + "\n")
	}

	b.WriteString("</svg>\n")
	return []byte(b.String()), nil
}
