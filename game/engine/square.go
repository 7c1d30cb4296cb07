package engine

import "fmt"

// Square is a flat board index: rank*8 + file, a1 = 0, h8 = 63
type Square int8

// NoSquare marks an invalid or absent square
const NoSquare Square = -1

// SquareAt returns the square at the 0-based file and rank, or NoSquare when off the board
func SquareAt(file, rank int) Square {
	if !onBoard(file, rank) {
		return NoSquare
	}
	return Square(rank*Files + file)
}

// ParseSquare converts a two-character identifier such as "e4".
// Anything other than a lowercase file a-h followed by a digit 1-8 is rejected.
func ParseSquare(s string) (Square, bool) {
	if len(s) != 2 {
		return NoSquare, false
	}
	file := int(s[0]) - 'a'
	rank := int(s[1]) - '1'
	if !onBoard(file, rank) {
		return NoSquare, false
	}
	return SquareAt(file, rank), true
}

// MustParseSquare is ParseSquare for literals known to be valid
func MustParseSquare(s string) Square {
	sq, ok := ParseSquare(s)
	if !ok {
		panic(fmt.Sprintf("invalid square %q", s))
	}
	return sq
}

// Valid reports whether sq lies on the board
func (sq Square) Valid() bool {
	return sq >= 0 && sq < NumSquares
}

// File returns the 0-based file (a = 0)
func (sq Square) File() int { return int(sq) % Files }

// Rank returns the 0-based rank (rank 1 = 0)
func (sq Square) Rank() int { return int(sq) / Files }

func (sq Square) String() string {
	if !sq.Valid() {
		return "-"
	}
	return string([]byte{byte('a' + sq.File()), byte('1' + sq.Rank())})
}

// MarshalText encodes the square as its identifier
func (sq Square) MarshalText() ([]byte, error) {
	return []byte(sq.String()), nil
}

// UnmarshalText decodes a square identifier
func (sq *Square) UnmarshalText(text []byte) error {
	parsed, ok := ParseSquare(string(text))
	if !ok {
		return fmt.Errorf("invalid square %q", text)
	}
	*sq = parsed
	return nil
}

func onBoard(file, rank int) bool {
	return file >= 0 && file < Files && rank >= 0 && rank < Ranks
}

// abs returns the absolute value of x
func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}

func sign(x int) int {
	switch {
	case x > 0:
		return 1
	case x < 0:
		return -1
	}
	return 0
}
