// Package grid converts between row-major cell indices and x,y coordinates.
package grid

// GetGridCoords returns the column and row of a row-major index in a grid
// that is cols cells wide.
func GetGridCoords(index, cols int) (x, y int) {
	return index % cols, index / cols
}

// Index returns the row-major index of cell (x, y) in a grid that is cols
// cells wide.
func Index(x, y, cols int) int {
	return y*cols + x
}

// InBounds reports whether (x, y) lies inside a cols by rows grid.
func InBounds(x, y, cols, rows int) bool {
	return x >= 0 && y >= 0 && x < cols && y < rows
}
