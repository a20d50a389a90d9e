package params

// #region pair-params
// PairParams holds the named two-body parameters for one pair column,
// read from the backing vector at resolution time.
type PairParams struct {
	A     float64 // repulsive prefactor
	B     float64 // attractive prefactor
	P     float64 // repulsive exponent
	Q     float64 // attractive exponent
	Delta float64 // pair cutoff smoothing strength
	A1    float64 // pair cutoff radius
}

// #endregion pair-params

// #region envelope-params
// EnvelopeParams holds the three-body cutoff envelope parameters for one
// pair column. A2 is independent of, and typically larger than, A1.
type EnvelopeParams struct {
	Gamma float64
	A2    float64
}

// #endregion envelope-params

// #region layout
// Layout describes the flat parameter vector of a Stillinger-Weber model
// for a fixed number of atom types. Per pair column: six named two-body
// slots plus two reserved; then, per pair column, the two envelope slots
// plus two reserved; then one lambda slot per ordered type triple (i,j,k)
// in row-major order.
type Layout struct {
	NTypes int
}

const (
	pairSlots     = 8 // A, B, p, q, delta, a1 + 2 reserved
	envelopeSlots = 4 // gamma, a2 + 2 reserved
)

// PairColumns returns the number of unordered type pairs.
func (l Layout) PairColumns() int {
	return l.NTypes * (l.NTypes + 1) / 2
}

// Size returns the total slot count of the flat vector.
func (l Layout) Size() int {
	n := l.NTypes
	return (pairSlots+envelopeSlots)*l.PairColumns() + n*n*n
}

// PairColumn maps an ordered type pair to its column index. Both orderings
// of a pair resolve to the same column.
func (l Layout) PairColumn(ti, tj int) int {
	n := l.NTypes
	if ti <= tj {
		return ti*n + tj - ti*(ti+1)/2
	}
	return tj*n + ti - tj*(tj+1)/2
}

// PairBase returns the first flat slot of a pair column's two-body block.
func (l Layout) PairBase(col int) int {
	return pairSlots * col
}

// EnvelopeBase returns the first flat slot of a pair column's envelope block.
func (l Layout) EnvelopeBase(col int) int {
	return pairSlots*l.PairColumns() + envelopeSlots*col
}

func (l Layout) lambdaBase() int {
	return (pairSlots + envelopeSlots) * l.PairColumns()
}

// LambdaIndex returns the flat slot of lambda[i][j][k].
func (l Layout) LambdaIndex(i, j, k int) int {
	n := l.NTypes
	return l.lambdaBase() + (i*n+j)*n + k
}

// #endregion layout
