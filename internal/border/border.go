// Package border finds the cells that sit on a boundary between categories.
package border

import "fmt"

// Detect returns a mask aligned with categories (row-major, width x height)
// that is true where any 4-connected neighbor has a different category.
// Neighbors outside the grid count as equal to the cell itself, so the grid
// edge never produces a border on its own.
//
// Detect must be given the fully classified grid; it does not classify.
func Detect(categories []int, width, height int) ([]bool, error) {
	if width < 1 || height < 1 {
		return nil, fmt.Errorf("grid size must be at least 1x1, got %dx%d", width, height)
	}
	if len(categories) != width*height {
		return nil, fmt.Errorf("category count %d does not match %dx%d grid", len(categories), width, height)
	}

	mask := make([]bool, len(categories))
	for y := 0; y < height; y++ {
		row := y * width
		for x := 0; x < width; x++ {
			i := row + x
			c := categories[i]

			switch {
			case x > 0 && categories[i-1] != c:
				mask[i] = true
			case x < width-1 && categories[i+1] != c:
				mask[i] = true
			case y > 0 && categories[i-width] != c:
				mask[i] = true
			case y < height-1 && categories[i+width] != c:
				mask[i] = true
			}
		}
	}
	return mask, nil
}

// Count returns the number of border cells in mask.
func Count(mask []bool) int {
	n := 0
	for _, b := range mask {
		if b {
			n++
		}
	}
	return n
}
