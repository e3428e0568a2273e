package fmu

import "fmt"

// TimeColumn is the conventional name of the independent variable column.
const TimeColumn = "time"

// SimulationResult is a column-oriented table of simulation samples keyed by
// variable name. Columns are aligned by row index.
//
// A SimulationResult is read-only once built.
type SimulationResult struct {
	names   []string
	columns map[string][]float64
}

// NewResult builds a result from column names and their samples. Columns
// are paired with names by position; a name without a column has no data.
func NewResult(names []string, columns ...[]float64) *SimulationResult {
	r := &SimulationResult{
		names:   append([]string(nil), names...),
		columns: make(map[string][]float64, len(names)),
	}
	for i, name := range names {
		if i < len(columns) {
			r.columns[name] = columns[i]
		}
	}
	return r
}

// Names returns the column names in table order.
func (r *SimulationResult) Names() []string {
	if r == nil {
		return nil
	}
	return append([]string(nil), r.names...)
}

// Column returns the samples recorded for name.
func (r *SimulationResult) Column(name string) ([]float64, bool) {
	if r == nil {
		return nil, false
	}
	col, ok := r.columns[name]
	return col, ok
}

// Rows returns the number of rows, taken from the first column.
func (r *SimulationResult) Rows() int {
	if r == nil || len(r.names) == 0 {
		return 0
	}
	return len(r.columns[r.names[0]])
}

// Shape returns the table shape as a one-dimensional record array.
func (r *SimulationResult) Shape() []int {
	return []int{r.Rows()}
}

// ShapeString formats Shape the way record arrays print it, e.g. "(3,)".
func (r *SimulationResult) ShapeString() string {
	return fmt.Sprintf("(%d,)", r.Rows())
}
