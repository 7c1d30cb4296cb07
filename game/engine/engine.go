package engine

import "fmt"

// Engine provides the main interface for game operations
type Engine interface {
	// Game state management
	GetState() *GameState
	SetState(state *GameState) error
	Reset() *GameState
	GetStatus() Status
	IsGameOver() bool
	Winner() (Side, bool)
	GetSideToMove() Side
	PieceAt(square string) (Piece, bool)

	// Moves
	MakeMove(start, end string) bool
	IsLegal(start, end string) bool
	CheckMove(start, end string) error

	// Configuration
	GetConfig() *GameConfig
	SetConfig(config *GameConfig) error

	// History
	GetMoveHistory() []MoveHistoryEntry
	GetLastMove() *MoveHistoryEntry

	// Blast preview
	BlastRadius(square string) []SquareInfo
}

// GameEngine implements the Engine interface
type GameEngine struct {
	state  *GameState
	config *GameConfig
}

// NewGame starts a game from the standard position with White to move
func NewGame() *GameEngine {
	return NewEngineWithDefaults()
}

// NewEngine creates a new game engine with the provided configuration
func NewEngine(config *GameConfig) (*GameEngine, error) {
	if err := ValidateGameConfig(config); err != nil {
		return nil, err
	}

	return &GameEngine{
		config: config,
		state:  InitGameStateFromConfig(config),
	}, nil
}

// NewEngineWithDefaults creates a new game engine with the standard setup
func NewEngineWithDefaults() *GameEngine {
	config := DefaultGameConfig()
	return &GameEngine{
		config: config,
		state:  InitGameStateFromConfig(config),
	}
}

// GetState returns the current game state
func (e *GameEngine) GetState() *GameState {
	return e.state
}

// SetState sets the game state (used for persistence loading)
func (e *GameEngine) SetState(state *GameState) error {
	if state == nil {
		return fmt.Errorf("state cannot be nil")
	}
	e.state = state
	return nil
}

// Reset restores the setup's starting position. Cumulative history survives.
func (e *GameEngine) Reset() *GameState {
	prevHistory := e.state.MoveHistory
	prevTotal := e.state.TotalMoves

	e.state = InitGameStateFromConfig(e.config)

	e.state.MoveHistory = prevHistory
	e.state.TotalMoves = prevTotal
	e.state.CurrentMoves = []MoveHistoryEntry{}
	e.state.CurrentMovesCount = 0

	return e.state
}

// GetStatus returns the current outcome state
func (e *GameEngine) GetStatus() Status {
	return e.state.Status
}

// IsGameOver reports whether a king has been destroyed
func (e *GameEngine) IsGameOver() bool {
	return e.state.Status != InProgress
}

// Winner returns the winning side once the game is over
func (e *GameEngine) Winner() (Side, bool) {
	switch e.state.Status {
	case WhiteWon:
		return White, true
	case BlackWon:
		return Black, true
	}
	return White, false
}

// GetSideToMove returns the side whose turn it is
func (e *GameEngine) GetSideToMove() Side {
	return e.state.SideToMove
}

// PieceAt returns the occupant of a square given as e.g. "e4"
func (e *GameEngine) PieceAt(square string) (Piece, bool) {
	sq, ok := ParseSquare(square)
	if !ok {
		return Piece{}, false
	}
	return e.state.Board.Get(sq)
}

// MakeMove applies the move if legal. It returns false and leaves the game
// unchanged otherwise.
func (e *GameEngine) MakeMove(start, end string) bool {
	_, err := e.Move(start, end)
	return err == nil
}

// Move is MakeMove with the rejection reason and the detonation, if any
func (e *GameEngine) Move(start, end string) (*Detonation, error) {
	if e.IsGameOver() {
		return nil, ErrGameOver
	}
	from, to, err := parseMove(start, end)
	if err != nil {
		return nil, err
	}
	return e.state.ApplyMove(from, to, e.config)
}

// IsLegal reports whether MakeMove would accept the move
func (e *GameEngine) IsLegal(start, end string) bool {
	return e.CheckMove(start, end) == nil
}

// CheckMove returns the reason a move would be rejected, or nil
func (e *GameEngine) CheckMove(start, end string) error {
	if e.IsGameOver() {
		return ErrGameOver
	}
	from, to, err := parseMove(start, end)
	if err != nil {
		return err
	}
	return e.state.CheckMove(from, to)
}

func parseMove(start, end string) (Square, Square, error) {
	from, ok := ParseSquare(start)
	if !ok {
		return NoSquare, NoSquare, fmt.Errorf("%w: %q", ErrInvalidSquare, start)
	}
	to, ok := ParseSquare(end)
	if !ok {
		return NoSquare, NoSquare, fmt.Errorf("%w: %q", ErrInvalidSquare, end)
	}
	return from, to, nil
}

// GetConfig returns the current setup
func (e *GameEngine) GetConfig() *GameConfig {
	return e.config
}

// SetConfig switches to a new setup and restarts the game
func (e *GameEngine) SetConfig(config *GameConfig) error {
	if err := ValidateGameConfig(config); err != nil {
		return err
	}

	e.config = config
	e.state = InitGameStateFromConfig(config)
	return nil
}

// GetMoveHistory returns the complete move history
func (e *GameEngine) GetMoveHistory() []MoveHistoryEntry {
	return e.state.MoveHistory
}

// GetLastMove returns the last move made, or nil if no moves
func (e *GameEngine) GetLastMove() *MoveHistoryEntry {
	if len(e.state.MoveHistory) == 0 {
		return nil
	}
	return &e.state.MoveHistory[len(e.state.MoveHistory)-1]
}

// BlastRadius lists the squares a capture on square would reach and their occupants
func (e *GameEngine) BlastRadius(square string) []SquareInfo {
	center, ok := ParseSquare(square)
	if !ok {
		return nil
	}
	squares := BlastSquares(center)
	out := make([]SquareInfo, 0, len(squares))
	for _, sq := range squares {
		pc, _ := e.state.Board.Get(sq)
		out = append(out, SquareInfo{Square: sq, Piece: pc})
	}
	return out
}

// BulkMove executes moves in order and stops at the first rejection or when the game ends
func (e *GameEngine) BulkMove(moves [][2]string) []bool {
	results := make([]bool, 0, len(moves))

	for _, m := range moves {
		if e.IsGameOver() {
			break
		}
		ok := e.MakeMove(m[0], m[1])
		results = append(results, ok)
		if !ok {
			break
		}
	}

	return results
}

// Board returns a copy of the current board
func (e *GameEngine) Board() Board {
	return e.state.Board
}

// String dumps the board for diagnostics
func (e *GameEngine) String() string {
	return e.state.Board.String()
}
