package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/lawnchairsociety/hexwfc/internal/report"
	"github.com/lawnchairsociety/hexwfc/internal/wfc"
)

const (
	glyphFailed     = "!!"
	glyphUnassigned = ".."
	glyphRemoved    = "xx"
)

type renderOptions struct {
	AllLayers bool
	Layer     int
	Rotations bool
}

// tileCodes gives every tile in the report a two-character code, stable
// across runs that use the same tiles.
func tileCodes(rep *report.Report) map[string]string {
	names := make(map[string]bool)
	for _, c := range rep.Cells {
		if c.Tile != "" {
			names[c.Tile] = true
		}
	}
	sorted := make([]string, 0, len(names))
	for n := range names {
		sorted = append(sorted, n)
	}
	sort.Strings(sorted)

	codes := make(map[string]string, len(sorted))
	used := map[string]bool{glyphFailed: true, glyphUnassigned: true, glyphRemoved: true}
	for _, name := range sorted {
		for _, code := range codeCandidates(name) {
			if !used[code] {
				codes[name] = code
				used[code] = true
				break
			}
		}
		if codes[name] == "" {
			codes[name] = "??"
		}
	}
	return codes
}

func codeCandidates(name string) []string {
	r := []rune(strings.ToLower(name))
	for len(r) < 2 {
		r = append(r, '_')
	}
	out := []string{string(r[:2])}
	for _, c := range r[2:] {
		out = append(out, string([]rune{r[0], c}))
	}
	for d := '0'; d <= '9'; d++ {
		out = append(out, string([]rune{r[0], d}))
	}
	return out
}

func glyph(c report.CellData, codes map[string]string, rotations bool) string {
	var g string
	switch {
	case c.State == wfc.Failed.String():
		g = glyphFailed
	case c.Tile != "":
		g = codes[c.Tile]
		if rotations {
			return fmt.Sprintf("%s%d", g, c.Rotation)
		}
	case c.Status == wfc.StatusRemove.String():
		g = glyphRemoved
	default:
		g = glyphUnassigned
	}
	return g + " "
}

// render draws each layer in doubled-width coordinates: a cell at axial
// (q, r) sits on row r at column 2q+r, two characters per column.
func render(output *strings.Builder, rep *report.Report, codes map[string]string, opts renderOptions) {
	byLayer := make(map[int][]report.CellData)
	for _, c := range rep.Cells {
		if !opts.AllLayers && c.Layer != opts.Layer {
			continue
		}
		byLayer[c.Layer] = append(byLayer[c.Layer], c)
	}

	layers := make([]int, 0, len(byLayer))
	for l := range byLayer {
		layers = append(layers, l)
	}
	// Top layer first, like a floor plan stack.
	sort.Sort(sort.Reverse(sort.IntSlice(layers)))

	for _, l := range layers {
		output.WriteString(fmt.Sprintf("Layer %d", l))
		switch {
		case l == 0:
			output.WriteString(" (ground)")
		case l < 0:
			output.WriteString(" (underground)")
		}
		output.WriteString("\n")
		renderLayer(output, byLayer[l], codes, opts.Rotations)
		output.WriteString("\n")
	}
}

func renderLayer(output *strings.Builder, cells []report.CellData, codes map[string]string, rotations bool) {
	if len(cells) == 0 {
		return
	}
	minX, maxX := cells[0].Q*2+cells[0].R, cells[0].Q*2+cells[0].R
	minR, maxR := cells[0].R, cells[0].R
	for _, c := range cells {
		x := 2*c.Q + c.R
		minX, maxX = min(minX, x), max(maxX, x)
		minR, maxR = min(minR, c.R), max(maxR, c.R)
	}

	width := (maxX-minX)*2 + 3
	rows := make([][]byte, maxR-minR+1)
	for i := range rows {
		rows[i] = []byte(strings.Repeat(" ", width))
	}
	for _, c := range cells {
		col := (2*c.Q + c.R - minX) * 2
		copy(rows[c.R-minR][col:], glyph(c, codes, rotations))
	}
	for _, row := range rows {
		output.WriteString("  ")
		output.WriteString(strings.TrimRight(string(row), " "))
		output.WriteString("\n")
	}
}

func legend(rep *report.Report, codes map[string]string) string {
	counts := make(map[string]int)
	for _, c := range rep.Cells {
		if c.Tile != "" {
			counts[c.Tile]++
		}
	}
	names := make([]string, 0, len(codes))
	for n := range codes {
		names = append(names, n)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString("\nLegend:\n")
	for _, n := range names {
		b.WriteString(fmt.Sprintf("  [%s] %s (%d)\n", codes[n], n, counts[n]))
	}
	b.WriteString(fmt.Sprintf("  [%s] Failed: no tile fits\n", glyphFailed))
	b.WriteString(fmt.Sprintf("  [%s] Unassigned\n", glyphUnassigned))
	b.WriteString(fmt.Sprintf("  [%s] Removed cell\n", glyphRemoved))
	return b.String()
}
