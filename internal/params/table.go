// Package params maps the flat potential parameter vector owned by the
// external optimizer onto named Stillinger-Weber quantities. Views are
// offset descriptors resolved against the bound vector at read time, so a
// value change in the vector is visible immediately; only a change of the
// vector's identity or layout requires a structural resync via Bind.
package params

import "fmt"

// #region table
// Table resolves named parameter views against a single backing vector.
// The vector is aliased, never copied.
type Table struct {
	layout Layout
	vec    []float64
}

// NewTable creates a Table for the given layout. No vector is bound yet;
// Bind must be called before any accessor.
func NewTable(layout Layout) *Table {
	return &Table{layout: layout}
}

// Layout returns the layout the table was built for.
func (t *Table) Layout() Layout {
	return t.layout
}

// Bind performs a structural resync: the table re-derives every view from
// vec. Callers must Bind again whenever the vector's identity or layout
// changes; value-only mutation needs no rebind.
func (t *Table) Bind(vec []float64) error {
	if len(vec) != t.layout.Size() {
		return fmt.Errorf("bind: vector has %d slots, layout needs %d", len(vec), t.layout.Size())
	}
	t.vec = vec
	return nil
}

// Bound reports whether a vector is currently bound.
func (t *Table) Bound() bool {
	return t.vec != nil
}

// #endregion table

// #region accessors

// Pair resolves the two-body parameters of a pair column.
func (t *Table) Pair(col int) PairParams {
	base := t.layout.PairBase(col)
	return PairParams{
		A:     t.vec[base],
		B:     t.vec[base+1],
		P:     t.vec[base+2],
		Q:     t.vec[base+3],
		Delta: t.vec[base+4],
		A1:    t.vec[base+5],
	}
}

// Envelope resolves the three-body cutoff envelope parameters of a pair column.
func (t *Table) Envelope(col int) EnvelopeParams {
	base := t.layout.EnvelopeBase(col)
	return EnvelopeParams{
		Gamma: t.vec[base],
		A2:    t.vec[base+1],
	}
}

// Lambda resolves the three-body coupling for the ordered type triple (i,j,k).
func (t *Table) Lambda(i, j, k int) float64 {
	return t.vec[t.layout.LambdaIndex(i, j, k)]
}

// #endregion accessors
