package engine

import (
	"fmt"

	"github.com/notnil/chess"
)

// StandardFEN is the standard chess starting position
const StandardFEN = "rnbqkbnr/pppppppp/8/8/8/8/PPPPPPPP/RNBQKBNR w - - 0 1"

var fenKinds = map[chess.PieceType]Kind{
	chess.Pawn:   Pawn,
	chess.Knight: Knight,
	chess.Bishop: Bishop,
	chess.Rook:   Rook,
	chess.Queen:  Queen,
	chess.King:   King,
}

// BoardFromFEN decodes the piece placement and side to move of a FEN record.
// Castling rights, en passant target and clocks are ignored.
func BoardFromFEN(fen string) (b Board, side Side, err error) {
	opt, err := chess.FEN(fen)
	if err != nil {
		return b, White, fmt.Errorf("decode fen: %w", err)
	}

	// the decoder assumes a king for the side to move
	defer func() {
		if r := recover(); r != nil {
			b, side, err = Board{}, White, fmt.Errorf("decode fen: unplayable position %q", fen)
		}
	}()
	pos := chess.NewGame(opt).Position()

	for sq, pc := range pos.Board().SquareMap() {
		kind, ok := fenKinds[pc.Type()]
		if !ok {
			continue
		}
		owner := White
		if pc.Color() == chess.Black {
			owner = Black
		}
		b.squares[SquareAt(int(sq.File()), int(sq.Rank()))] = NewPiece(kind, owner)
	}

	side = White
	if pos.Turn() == chess.Black {
		side = Black
	}
	return b, side, nil
}

// Encode returns a FEN record for the board with side to move. Castling and
// en passant fields are always "-".
func (b *Board) Encode(side Side) string {
	turn := "w"
	if side == Black {
		turn = "b"
	}
	return b.Placement() + " " + turn + " - - 0 1"
}
