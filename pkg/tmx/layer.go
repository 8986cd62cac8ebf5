package tmx

import (
	"fmt"
	"strconv"

	"github.com/jwebster45206/garden-quest/pkg/world"
)

type layerElement struct {
	Name string        `xml:"name,attr"`
	Data []dataElement `xml:"data"`
}

type dataElement struct {
	Encoding string `xml:"encoding,attr"`
	Text     string `xml:",chardata"`
}

// addLayers appends one grid per <data> child of a layer.
func addLayers(level *world.Level, el layerElement) error {
	for _, d := range el.Data {
		if d.Encoding != "" && d.Encoding != "csv" {
			return fmt.Errorf("%w: layer %q uses unsupported encoding %q", ErrMalformed, el.Name, d.Encoding)
		}
		if len(level.Layers) == world.MaxLayers {
			return fmt.Errorf("%w: more than %d layers", ErrCapacity, world.MaxLayers)
		}
		g, err := ParseGrid(d.Text)
		if err != nil {
			return fmt.Errorf("layer %q: %w", el.Name, err)
		}
		level.Layers = append(level.Layers, g)
	}
	return nil
}

// ParseGrid reads runs of decimal digits as cell values, left to right. Any other byte
// separates values, except a sign directly before a digit, which is malformed since tile
// ids are never negative. A newline ends the row once the row holds at least one value.
func ParseGrid(text string) (world.Grid, error) {
	var g world.Grid
	row, col := 0, 0

	for i := 0; i < len(text); {
		c := text[i]
		switch {
		case c == '\n' && col > 0:
			row++
			col = 0
			i++
		case (c == '-' || c == '+') && i+1 < len(text) && isDigit(text[i+1]):
			return g, fmt.Errorf("%w: signed tile in row %d", ErrMalformed, row)
		case isDigit(c):
			j := i + 1
			for j < len(text) && isDigit(text[j]) {
				j++
			}
			n, err := strconv.Atoi(text[i:j])
			if err != nil {
				return g, fmt.Errorf("%w: bad tile %q", ErrMalformed, text[i:j])
			}
			if row >= world.Rows {
				return g, fmt.Errorf("%w: more than %d rows", ErrCapacity, world.Rows)
			}
			if col >= world.Cols {
				return g, fmt.Errorf("%w: more than %d columns in row %d", ErrCapacity, world.Cols, row)
			}
			g[row][col] = n
			col++
			i = j
		default:
			i++
		}
	}
	return g, nil
}

func isDigit(c byte) bool {
	return c >= '0' && c <= '9'
}
