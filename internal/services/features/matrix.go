package features

import "time"

// Matrix is a feature table keyed by timestamp. Rows[i] holds the values of
// Columns for Times[i]; Target[i] is the price observed at Times[i].
type Matrix struct {
	Columns []string
	Times   []time.Time
	Rows    [][]float64
	Target  []float64
}

func (m Matrix) Len() int { return len(m.Rows) }

// Empty reports whether every row was dropped.
func (m Matrix) Empty() bool { return len(m.Rows) == 0 }

// Index returns the position of column name, or -1.
func (m Matrix) Index(name string) int {
	for i, c := range m.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Align reorders a row to the given column layout. Columns the matrix lacks are 0.
func (m Matrix) Align(row []float64, columns []string) []float64 {
	out := make([]float64, len(columns))
	for i, c := range columns {
		if j := m.Index(c); j >= 0 {
			out[i] = row[j]
		}
	}
	return out
}

// Split cuts the matrix chronologically; the first int(n*(1-testFraction)) rows train.
func (m Matrix) Split(testFraction float64) (train, test Matrix) {
	cut := int(float64(m.Len()) * (1 - testFraction))
	return m.slice(0, cut), m.slice(cut, m.Len())
}

func (m Matrix) slice(from, to int) Matrix {
	return Matrix{
		Columns: m.Columns,
		Times:   m.Times[from:to],
		Rows:    m.Rows[from:to],
		Target:  m.Target[from:to],
	}
}

// Last returns the newest row.
func (m Matrix) Last() (time.Time, []float64, bool) {
	if m.Empty() {
		return time.Time{}, nil, false
	}
	n := m.Len() - 1
	return m.Times[n], m.Rows[n], true
}
