package engine

// pieceValues is a rough material scale used by the analysis helpers
var pieceValues = map[Kind]int{
	Pawn:   1,
	Knight: 3,
	Bishop: 3,
	Rook:   5,
	Queen:  9,
}

// Material sums the piece values of side. Kings are not counted.
func Material(b *Board, side Side) int {
	total := 0
	for sq := Square(0); sq < NumSquares; sq++ {
		pc, ok := b.Get(sq)
		if ok && pc.Side == side {
			total += pieceValues[pc.Kind]
		}
	}
	return total
}

// KingSquare returns the square of side's king, if present
func KingSquare(b *Board, side Side) (Square, bool) {
	kings := b.Kings(side)
	if len(kings) == 0 {
		return NoSquare, false
	}
	return kings[0], true
}

// KingsAdjacent reports whether the two kings touch. A capture next to both
// destroys both, which counts as a Black win.
func KingsAdjacent(b *Board) bool {
	wk, ok := KingSquare(b, White)
	if !ok {
		return false
	}
	bk, ok := KingSquare(b, Black)
	if !ok {
		return false
	}
	return abs(wk.File()-bk.File()) <= 1 && abs(wk.Rank()-bk.Rank()) <= 1
}

// KingExposure counts the pieces around side's king that an enemy could
// capture to destroy the king in the blast. Pawns shield nothing: any
// occupied neighbour is a potential detonation center.
func KingExposure(b *Board, side Side) int {
	king, ok := KingSquare(b, side)
	if !ok {
		return 0
	}
	exposed := 0
	for _, sq := range BlastSquares(king) {
		if _, ok := b.Get(sq); ok {
			exposed++
		}
	}
	return exposed
}

// AnalyzeKingSafety summarizes the blast risk to side's king
func AnalyzeKingSafety(state *GameState, side Side) string {
	if !state.Board.HasKing(side) {
		return "LOST: King destroyed"
	}
	if KingsAdjacent(&state.Board) {
		return "CONTACT: Kings touch, a capture next to both destroys both"
	}
	switch n := KingExposure(&state.Board, side); {
	case n >= 5:
		return "DANGER: King surrounded by detonation targets"
	case n >= 3:
		return "CAUTION: Several pieces next to the king"
	case n >= 1:
		return "LOW: Few pieces next to the king"
	}
	return "SAFE: No detonation targets next to the king"
}
