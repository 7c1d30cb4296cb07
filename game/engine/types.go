package engine

import (
	"fmt"
	"strings"
)

// Side identifies a player
type Side int8

const (
	White Side = iota
	Black
)

// Kind is the piece type
type Kind int8

const (
	NoKind Kind = iota
	Pawn
	Knight
	Bishop
	Rook
	Queen
	King
)

// Status is the game outcome state
type Status string

const (
	InProgress Status = "UNFINISHED"
	WhiteWon   Status = "WHITE_WON"
	BlackWon   Status = "BLACK_WON"

	// Board geometry
	Files      = 8
	Ranks      = 8
	NumSquares = Files * Ranks

	// Service limits
	MaxBulkMoves        = 50
	WebSocketBufferSize = 256
)

// Opponent returns the other side
func (s Side) Opponent() Side {
	if s == White {
		return Black
	}
	return White
}

func (s Side) String() string {
	if s == White {
		return "white"
	}
	return "black"
}

// MarshalText encodes the side as "white" or "black"
func (s Side) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes "white"/"black" (also accepts "w"/"b")
func (s *Side) UnmarshalText(text []byte) error {
	switch strings.ToLower(string(text)) {
	case "white", "w":
		*s = White
	case "black", "b":
		*s = Black
	default:
		return fmt.Errorf("invalid side %q", text)
	}
	return nil
}

var kindLetters = map[Kind]byte{
	Pawn:   'p',
	Knight: 'n',
	Bishop: 'b',
	Rook:   'r',
	Queen:  'q',
	King:   'k',
}

var kindNames = map[Kind]string{
	NoKind: "none",
	Pawn:   "pawn",
	Knight: "knight",
	Bishop: "bishop",
	Rook:   "rook",
	Queen:  "queen",
	King:   "king",
}

func (k Kind) String() string {
	return kindNames[k]
}

// Piece is a (kind, side) pair. The zero value is an empty square.
type Piece struct {
	Kind Kind
	Side Side
}

// NewPiece builds a piece value
func NewPiece(kind Kind, side Side) Piece {
	return Piece{Kind: kind, Side: side}
}

// IsEmpty reports whether p represents an empty square
func (p Piece) IsEmpty() bool {
	return p.Kind == NoKind
}

// Letter returns the FEN letter for the piece, uppercase for White, '.' when empty
func (p Piece) Letter() byte {
	if p.IsEmpty() {
		return '.'
	}
	ch := kindLetters[p.Kind]
	if p.Side == White {
		ch -= 'a' - 'A'
	}
	return ch
}

func (p Piece) String() string {
	if p.IsEmpty() {
		return "empty"
	}
	return p.Side.String() + " " + p.Kind.String()
}

// MarshalText encodes the piece as its FEN letter
func (p Piece) MarshalText() ([]byte, error) {
	return []byte{p.Letter()}, nil
}

// UnmarshalText decodes a FEN letter ('.' for empty)
func (p *Piece) UnmarshalText(text []byte) error {
	if len(text) != 1 {
		return fmt.Errorf("invalid piece %q", text)
	}
	pc, ok := pieceFromLetter(text[0])
	if !ok {
		return fmt.Errorf("invalid piece %q", text)
	}
	*p = pc
	return nil
}

func pieceFromLetter(ch byte) (Piece, bool) {
	if ch == '.' {
		return Piece{}, true
	}
	side := Black
	lower := ch
	if ch >= 'A' && ch <= 'Z' {
		side = White
		lower = ch + ('a' - 'A')
	}
	for kind, letter := range kindLetters {
		if letter == lower {
			return Piece{Kind: kind, Side: side}, true
		}
	}
	return Piece{}, false
}

// Casualty is a piece removed from the board by a capture or its explosion
type Casualty struct {
	Square Square `json:"square"`
	Piece  Piece  `json:"piece"`
}

// Detonation describes the outcome of a capturing move
type Detonation struct {
	Center     Square     `json:"center"`
	Casualties []Casualty `json:"casualties"`
}

// GameConfig describes a named starting setup loaded from JSON
type GameConfig struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	FEN         string `json:"fen"`
	Messages    struct {
		Welcome  string `json:"welcome"`
		WhiteWon string `json:"white_won"`
		BlackWon string `json:"black_won"`
	} `json:"messages"`
}

// SquareInfo describes one square of a local view
type SquareInfo struct {
	Square Square `json:"square"`
	Piece  Piece  `json:"piece"`
}

// GameState represents the complete game state
type GameState struct {
	Board       Board              `json:"board"`
	SideToMove  Side               `json:"side_to_move"`
	Status      Status             `json:"status"`
	Message     string             `json:"message"`
	ConfigName  string             `json:"config_name"`
	MoveHistory []MoveHistoryEntry `json:"move_history"`
	TotalMoves  int                `json:"total_moves"`

	// CurrentMoves tracks only the moves since the last reset. MoveHistory stays cumulative.
	CurrentMoves      []MoveHistoryEntry `json:"current_moves"`
	CurrentMovesCount int                `json:"current_moves_count"`
}

// Clone returns a copy that shares nothing mutable with gs
func (gs *GameState) Clone() *GameState {
	if gs == nil {
		return nil
	}
	c := *gs
	c.MoveHistory = cloneHistory(gs.MoveHistory)
	c.CurrentMoves = cloneHistory(gs.CurrentMoves)
	return &c
}

func cloneHistory(entries []MoveHistoryEntry) []MoveHistoryEntry {
	if entries == nil {
		return nil
	}
	out := make([]MoveHistoryEntry, len(entries))
	for i, e := range entries {
		if e.Detonation != nil {
			det := *e.Detonation
			det.Casualties = append([]Casualty(nil), e.Detonation.Casualties...)
			e.Detonation = &det
		}
		out[i] = e
	}
	return out
}

// MoveHistoryEntry represents a single applied move
type MoveHistoryEntry struct {
	MoveNumber  int         `json:"move_number"`
	Side        Side        `json:"side"`
	From        Square      `json:"from"`
	To          Square      `json:"to"`
	Piece       Piece       `json:"piece"`
	Detonation  *Detonation `json:"detonation,omitempty"`
	StatusAfter Status      `json:"status_after"`
	Timestamp   int64       `json:"timestamp"`
}
