package engine

import "errors"

// Reasons a move is rejected. MakeMove collapses all of them to false.
var (
	ErrGameOver      = errors.New("game is over")
	ErrInvalidSquare = errors.New("invalid square")
	ErrNoPiece       = errors.New("no piece on start square")
	ErrWrongSide     = errors.New("piece belongs to the side not on move")
	ErrOwnPiece      = errors.New("destination holds a piece of the moving side")
	ErrPathBlocked   = errors.New("path is blocked")
	ErrIllegalMove   = errors.New("piece cannot move that way")
)

// ReasonCode maps a rejection error to a short machine-readable code
func ReasonCode(err error) string {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrGameOver):
		return "game_over"
	case errors.Is(err, ErrInvalidSquare):
		return "invalid_square"
	case errors.Is(err, ErrNoPiece):
		return "no_piece"
	case errors.Is(err, ErrWrongSide):
		return "wrong_side"
	case errors.Is(err, ErrOwnPiece):
		return "own_piece"
	case errors.Is(err, ErrPathBlocked):
		return "path_blocked"
	default:
		return "illegal_move"
	}
}

// CheckMove decides whether the side to move may move from start to end.
// It never mutates the state.
func (gs *GameState) CheckMove(start, end Square) error {
	if gs.Status != InProgress {
		return ErrGameOver
	}
	if !start.Valid() || !end.Valid() {
		return ErrInvalidSquare
	}

	pc, ok := gs.Board.Get(start)
	if !ok {
		return ErrNoPiece
	}
	if pc.Side != gs.SideToMove {
		return ErrWrongSide
	}
	if target, ok := gs.Board.Get(end); ok && target.Side == pc.Side {
		return ErrOwnPiece
	}

	dfile := end.File() - start.File()
	drank := end.Rank() - start.Rank()
	colDiff, rowDiff := abs(dfile), abs(drank)

	switch pc.Kind {
	case King:
		if colDiff <= 1 && rowDiff <= 1 {
			return nil
		}
	case Queen:
		if dfile == 0 || drank == 0 || colDiff == rowDiff {
			return gs.Board.pathClear(start, end)
		}
	case Rook:
		if dfile == 0 || drank == 0 {
			return gs.Board.pathClear(start, end)
		}
	case Bishop:
		if colDiff == rowDiff {
			return gs.Board.pathClear(start, end)
		}
	case Knight:
		if (colDiff == 1 && rowDiff == 2) || (colDiff == 2 && rowDiff == 1) {
			return nil
		}
	case Pawn:
		return gs.Board.checkPawn(pc.Side, start, end, dfile, drank)
	}
	return ErrIllegalMove
}

// pathClear requires every square strictly between start and end to be empty.
// The destination itself is not inspected.
func (b *Board) pathClear(start, end Square) error {
	stepFile := sign(end.File() - start.File())
	stepRank := sign(end.Rank() - start.Rank())

	file, rank := start.File()+stepFile, start.Rank()+stepRank
	for file != end.File() || rank != end.Rank() {
		if _, ok := b.Get(SquareAt(file, rank)); ok {
			return ErrPathBlocked
		}
		file += stepFile
		rank += stepRank
	}
	return nil
}

func (b *Board) checkPawn(side Side, start, end Square, dfile, drank int) error {
	forward, home := 1, 1
	if side == Black {
		forward, home = -1, 6
	}

	_, occupied := b.Get(end)
	switch {
	case dfile == 0 && drank == 2*forward && start.Rank() == home:
		if occupied {
			return ErrPathBlocked
		}
		if _, ok := b.Get(SquareAt(start.File(), start.Rank()+forward)); ok {
			return ErrPathBlocked
		}
		return nil
	case dfile == 0 && drank == forward:
		if occupied {
			return ErrPathBlocked
		}
		return nil
	case abs(dfile) == 1 && drank == forward:
		// own pieces were rejected earlier, so any occupant is an enemy
		if occupied {
			return nil
		}
	}
	return ErrIllegalMove
}
