package engine

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Board maps every square to an optional piece
type Board struct {
	squares [NumSquares]Piece
}

var backRank = [Files]Kind{Rook, Knight, Bishop, Queen, King, Bishop, Knight, Rook}

// NewStandardBoard returns the standard chess starting position
func NewStandardBoard() Board {
	var b Board
	for file := 0; file < Files; file++ {
		b.squares[SquareAt(file, 0)] = NewPiece(backRank[file], White)
		b.squares[SquareAt(file, 1)] = NewPiece(Pawn, White)
		b.squares[SquareAt(file, 6)] = NewPiece(Pawn, Black)
		b.squares[SquareAt(file, 7)] = NewPiece(backRank[file], Black)
	}
	return b
}

// Get returns the occupant of sq and whether there is one.
// Callers validate squares first; an off-board square here is a programming error.
func (b *Board) Get(sq Square) (Piece, bool) {
	mustBeValid(sq)
	pc := b.squares[sq]
	return pc, !pc.IsEmpty()
}

// Set places pc on sq, replacing any occupant
func (b *Board) Set(sq Square, pc Piece) {
	mustBeValid(sq)
	b.squares[sq] = pc
}

// Clear empties sq
func (b *Board) Clear(sq Square) {
	b.Set(sq, Piece{})
}

// HasKing reports whether side still has a king on the board
func (b *Board) HasKing(side Side) bool {
	for _, pc := range b.squares {
		if pc.Kind == King && pc.Side == side {
			return true
		}
	}
	return false
}

// Kings returns the squares holding a king of side
func (b *Board) Kings(side Side) []Square {
	var out []Square
	for sq, pc := range b.squares {
		if pc.Kind == King && pc.Side == side {
			out = append(out, Square(sq))
		}
	}
	return out
}

// Count returns the number of pieces of side on the board
func (b *Board) Count(side Side) int {
	n := 0
	for _, pc := range b.squares {
		if !pc.IsEmpty() && pc.Side == side {
			n++
		}
	}
	return n
}

// Rows renders the board as eight strings, rank 8 first, '.' for empty squares
func (b *Board) Rows() []string {
	rows := make([]string, 0, Ranks)
	for rank := Ranks - 1; rank >= 0; rank-- {
		var sb strings.Builder
		for file := 0; file < Files; file++ {
			sb.WriteByte(b.squares[SquareAt(file, rank)].Letter())
		}
		rows = append(rows, sb.String())
	}
	return rows
}

// String dumps the board for diagnostics, rank 8 down to rank 1
func (b Board) String() string {
	var sb strings.Builder
	for _, row := range b.Rows() {
		for i := 0; i < len(row); i++ {
			if i > 0 {
				sb.WriteByte(' ')
			}
			sb.WriteByte(row[i])
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}

// Placement returns the FEN piece placement field
func (b *Board) Placement() string {
	var sb strings.Builder
	for i, row := range b.Rows() {
		if i > 0 {
			sb.WriteByte('/')
		}
		empty := 0
		for j := 0; j < len(row); j++ {
			if row[j] == '.' {
				empty++
				continue
			}
			if empty > 0 {
				sb.WriteByte(byte('0' + empty))
				empty = 0
			}
			sb.WriteByte(row[j])
		}
		if empty > 0 {
			sb.WriteByte(byte('0' + empty))
		}
	}
	return sb.String()
}

// MarshalJSON encodes the board as its rows
func (b Board) MarshalJSON() ([]byte, error) {
	return json.Marshal(b.Rows())
}

// UnmarshalJSON decodes the row form produced by MarshalJSON
func (b *Board) UnmarshalJSON(data []byte) error {
	var rows []string
	if err := json.Unmarshal(data, &rows); err != nil {
		return err
	}
	parsed, err := BoardFromRows(rows)
	if err != nil {
		return err
	}
	*b = parsed
	return nil
}

// BoardFromRows builds a board from eight rank strings, rank 8 first
func BoardFromRows(rows []string) (Board, error) {
	var b Board
	if len(rows) != Ranks {
		return b, fmt.Errorf("board must have %d rows, got %d", Ranks, len(rows))
	}
	for i, row := range rows {
		if len(row) != Files {
			return b, fmt.Errorf("row %d must have %d squares, got %d", i+1, Files, len(row))
		}
		rank := Ranks - 1 - i
		for file := 0; file < Files; file++ {
			pc, ok := pieceFromLetter(row[file])
			if !ok {
				return b, fmt.Errorf("invalid piece %q at %s", row[file], SquareAt(file, rank))
			}
			b.squares[SquareAt(file, rank)] = pc
		}
	}
	return b, nil
}

func mustBeValid(sq Square) {
	if !sq.Valid() {
		panic(fmt.Sprintf("engine: square %d is off the board", sq))
	}
}
