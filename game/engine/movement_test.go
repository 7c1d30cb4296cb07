package engine

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func createTestGameState(t *testing.T, fen string) (*GameState, *GameConfig) {
	t.Helper()
	config := createTestConfig()
	config.FEN = fen
	if err := ValidateGameConfig(config); err != nil {
		t.Fatalf("Invalid test position %q: %v", fen, err)
	}
	return InitGameStateFromConfig(config), config
}

func TestApplyMove_ExplosionSparesPawns(t *testing.T) {
	state, config := createTestGameState(t, "4k3/8/2pnp3/3r4/2P1B3/8/3Q4/4K3 w - - 0 1")

	det, err := state.ApplyMove(MustParseSquare("d2"), MustParseSquare("d5"), config)
	if err != nil {
		t.Fatalf("Expected queen capture to be legal, got %v", err)
	}
	if det == nil {
		t.Fatal("Expected a detonation")
	}
	if det.Center != MustParseSquare("d5") {
		t.Errorf("Expected center d5, got %s", det.Center)
	}

	survivors := map[string]Piece{
		"c6": NewPiece(Pawn, Black),
		"e6": NewPiece(Pawn, Black),
		"c4": NewPiece(Pawn, White),
		"e8": NewPiece(King, Black),
		"e1": NewPiece(King, White),
	}
	for sq, want := range survivors {
		got, ok := state.Board.Get(MustParseSquare(sq))
		if !ok || got != want {
			t.Errorf("Expected %v on %s, got %v", want, sq, got)
		}
	}

	for _, sq := range []string{"d5", "d6", "e4", "d2"} {
		if pc, ok := state.Board.Get(MustParseSquare(sq)); ok {
			t.Errorf("Expected %s to be empty, got %v", sq, pc)
		}
	}

	if len(det.Casualties) != 4 {
		t.Fatalf("Expected 4 casualties, got %d: %+v", len(det.Casualties), det.Casualties)
	}
	if det.Casualties[0].Piece != NewPiece(Rook, Black) {
		t.Errorf("Expected captured rook first, got %v", det.Casualties[0].Piece)
	}
	if det.Casualties[1].Piece != NewPiece(Queen, White) {
		t.Errorf("Expected capturing queen second, got %v", det.Casualties[1].Piece)
	}
	if state.Status != InProgress {
		t.Errorf("Expected status %s, got %s", InProgress, state.Status)
	}
	if !strings.Contains(state.Message, "captures") {
		t.Errorf("Expected capture message, got %q", state.Message)
	}
}

func TestApplyMove_BlastClippedAtCorner(t *testing.T) {
	state, config := createTestGameState(t, "4k3/8/8/8/8/8/PN6/rR2K3 b - - 0 1")

	det, err := state.ApplyMove(MustParseSquare("a1"), MustParseSquare("b1"), config)
	if err != nil {
		t.Fatalf("Expected rook capture to be legal, got %v", err)
	}
	// b1 neighbours on the board: a1 (now empty), c1, a2, b2, c2
	if pc, ok := state.Board.Get(MustParseSquare("b2")); ok {
		t.Errorf("Expected knight on b2 destroyed, got %v", pc)
	}
	if pc, ok := state.Board.Get(MustParseSquare("a2")); !ok || pc.Kind != Pawn {
		t.Errorf("Expected pawn on a2 to survive, got %v", pc)
	}
	if len(det.Casualties) != 3 {
		t.Errorf("Expected 3 casualties, got %d", len(det.Casualties))
	}
	if state.SideToMove != White {
		t.Errorf("Expected White to move, got %s", state.SideToMove)
	}
}

func TestApplyMove_PawnRules(t *testing.T) {
	tests := []struct {
		name     string
		fen      string
		from, to string
		expected error
	}{
		{"white double step from home", StandardFEN, "a2", "a4", nil},
		{"white double step blocked at middle", "4k3/8/8/8/8/4n3/4P3/4K3 w - - 0 1", "e2", "e4", ErrPathBlocked},
		{"white single step blocked", "4k3/8/8/8/8/4n3/4P3/4K3 w - - 0 1", "e2", "e3", ErrPathBlocked},
		{"white diagonal capture", "4k3/8/8/8/8/3n4/4P3/4K3 w - - 0 1", "e2", "d3", nil},
		{"white double step off home rank", "4k3/8/8/8/8/4P3/8/4K3 w - - 0 1", "e3", "e5", ErrIllegalMove},
		{"white backwards", "4k3/8/8/8/4P3/8/8/4K3 w - - 0 1", "e4", "e3", ErrIllegalMove},
		{"white double step onto piece", "4k3/8/8/8/4n3/8/4P3/4K3 w - - 0 1", "e2", "e4", ErrPathBlocked},
		{"black double step from home", "4k3/4p3/8/8/8/8/8/4K3 b - - 0 1", "e7", "e5", nil},
		{"black single step", "4k3/4p3/8/8/8/8/8/4K3 b - - 0 1", "e7", "e6", nil},
		{"black toward rank 8", "4k3/8/4p3/8/8/8/8/4K3 b - - 0 1", "e6", "e7", ErrIllegalMove},
		{"black diagonal capture", "4k3/4p3/5N2/8/8/8/8/4K3 b - - 0 1", "e7", "f6", nil},
		{"black diagonal to empty", "4k3/4p3/8/8/8/8/8/4K3 b - - 0 1", "e7", "d6", ErrIllegalMove},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, _ := createTestGameState(t, tt.fen)
			err := state.CheckMove(MustParseSquare(tt.from), MustParseSquare(tt.to))
			if !errors.Is(err, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, err)
			}
		})
	}
}

func TestApplyMove_SlidingPieces(t *testing.T) {
	// White queen d4, rook a1, bishop c1; black pawn d6
	const fen = "4k3/8/3p4/8/3Q4/8/8/R1B1K3 w - - 0 1"

	tests := []struct {
		name     string
		from, to string
		expected error
	}{
		{"queen along file up to capture", "d4", "d6", nil},
		{"queen through piece", "d4", "d7", ErrPathBlocked},
		{"queen along rank", "d4", "h4", nil},
		{"queen diagonal", "d4", "g7", nil},
		{"queen knight jump", "d4", "e6", ErrIllegalMove},
		{"rook along rank blocked", "a1", "d1", ErrPathBlocked},
		{"rook along file", "a1", "a8", nil},
		{"rook diagonal", "a1", "b2", ErrIllegalMove},
		{"bishop diagonal", "c1", "h6", nil},
		{"bishop straight", "c1", "c4", ErrIllegalMove},
		{"king one step", "e1", "f2", nil},
		{"king two steps", "e1", "g1", ErrIllegalMove},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state, _ := createTestGameState(t, fen)
			err := state.CheckMove(MustParseSquare(tt.from), MustParseSquare(tt.to))
			if !errors.Is(err, tt.expected) {
				t.Errorf("Expected %v, got %v", tt.expected, err)
			}
		})
	}
}

func TestApplyMove_RejectedMoveKeepsState(t *testing.T) {
	state, config := createTestGameState(t, StandardFEN)
	before := state.Board

	if _, err := state.ApplyMove(MustParseSquare("a1"), MustParseSquare("a5"), config); !errors.Is(err, ErrPathBlocked) {
		t.Fatalf("Expected ErrPathBlocked, got %v", err)
	}
	if state.Board != before {
		t.Error("Board changed after a rejected move")
	}
	if state.TotalMoves != 0 || len(state.MoveHistory) != 0 {
		t.Errorf("Expected no history, got %d entries", len(state.MoveHistory))
	}
}

func TestUpdateStatus_WhiteCheckedFirst(t *testing.T) {
	state, _ := createTestGameState(t, StandardFEN)
	state.Board.Clear(MustParseSquare("e1"))
	state.Board.Clear(MustParseSquare("e8"))

	state.updateStatus()
	if state.Status != BlackWon {
		t.Errorf("Expected %s with both kings gone, got %s", BlackWon, state.Status)
	}

	// terminal states do not change again
	state.Board.Set(MustParseSquare("e1"), NewPiece(King, White))
	state.updateStatus()
	if state.Status != BlackWon {
		t.Errorf("Expected status to stay %s, got %s", BlackWon, state.Status)
	}
}

func TestBlastSquares(t *testing.T) {
	tests := []struct {
		center   string
		expected []string
	}{
		{"a1", []string{"a2", "b2", "b1"}},
		{"h8", []string{"g8", "g7", "h7"}},
		{"e4", []string{"d5", "e5", "f5", "d4", "f4", "d3", "e3", "f3"}},
	}

	for _, tt := range tests {
		got := BlastSquares(MustParseSquare(tt.center))
		if len(got) != len(tt.expected) {
			t.Errorf("%s: expected %d squares, got %d", tt.center, len(tt.expected), len(got))
			continue
		}
		seen := make(map[string]bool)
		for _, sq := range got {
			seen[sq.String()] = true
		}
		for _, want := range tt.expected {
			if !seen[want] {
				t.Errorf("%s: expected %s in blast squares %v", tt.center, want, got)
			}
		}
	}
}

func TestAddMoveToHistory(t *testing.T) {
	state, _ := createTestGameState(t, StandardFEN)
	before := time.Now().Unix()

	state.AddMoveToHistory(White, MustParseSquare("e2"), MustParseSquare("e4"), NewPiece(Pawn, White), nil)
	state.AddMoveToHistory(Black, MustParseSquare("e7"), MustParseSquare("e5"), NewPiece(Pawn, Black), nil)

	if state.TotalMoves != 2 {
		t.Errorf("Expected total moves 2, got %d", state.TotalMoves)
	}
	if state.CurrentMovesCount != 2 || len(state.CurrentMoves) != 2 {
		t.Errorf("Expected current moves 2, got %d/%d", state.CurrentMovesCount, len(state.CurrentMoves))
	}

	entry := state.MoveHistory[1]
	if entry.MoveNumber != 2 {
		t.Errorf("Expected move number 2, got %d", entry.MoveNumber)
	}
	if entry.Side != Black {
		t.Errorf("Expected side black, got %s", entry.Side)
	}
	if entry.Timestamp < before {
		t.Errorf("Expected timestamp >= %d, got %d", before, entry.Timestamp)
	}
}
