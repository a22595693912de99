// Package hotness measures how often each H3 cell is searched. The search
// cache only keeps results for cells in demand.
package hotness

type Interface interface {
	// Inc records one search in cell and returns the cell's new score.
	Inc(cell string) float64
	Score(cell string) float64
	Reset(cells ...string)
}
