package main

import (
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap"

	"github.com/wricardo/atomic-chess/api"
	"github.com/wricardo/atomic-chess/game/config"
	"github.com/wricardo/atomic-chess/game/engine"
	"github.com/wricardo/atomic-chess/game/service"
	"github.com/wricardo/atomic-chess/game/session"
)

func stateFromFEN(t *testing.T, fen string) *engine.GameState {
	t.Helper()
	board, side, err := engine.BoardFromFEN(fen)
	if err != nil {
		t.Fatalf("Invalid test FEN: %v", err)
	}
	return &engine.GameState{Board: board, SideToMove: side, Status: engine.InProgress}
}

func newBackend(t *testing.T) *httptest.Server {
	t.Helper()
	configs, err := config.NewManager("../../configs")
	if err != nil {
		t.Fatalf("Failed to load configs: %v", err)
	}
	gameService := service.NewGameService(session.NewManager(zap.NewNop()), configs, zap.NewNop())
	server := httptest.NewServer(api.NewServer(gameService, nil, zap.NewNop()))
	t.Cleanup(server.Close)
	return server
}

func TestGreedyStrategy_TakesWinningCapture(t *testing.T) {
	state := stateFromFEN(t, "4k3/4r3/8/8/8/8/4R3/4K3 w - - 0 1")

	ranked := NewGreedyStrategy(1).Rank(state)
	if len(ranked) == 0 {
		t.Fatal("Expected candidates")
	}
	if ranked[0].Score != winScore {
		t.Errorf("Expected best score %d, got %d", winScore, ranked[0].Score)
	}

	from, to, ok := NewGreedyStrategy(1).NextMove(state)
	if !ok || from != engine.MustParseSquare("e2") || to != engine.MustParseSquare("e7") {
		t.Errorf("Expected e2-e7, got %s-%s (%v)", from, to, ok)
	}
}

func TestGreedyStrategy_AvoidsBlunders(t *testing.T) {
	// the white rook shields its king from the rook on e8
	state := stateFromFEN(t, "4r2k/8/8/8/8/8/4R3/4K3 w - - 0 1")

	for seed := int64(1); seed <= 5; seed++ {
		from, to, ok := NewGreedyStrategy(seed).NextMove(state)
		if !ok {
			t.Fatal("Expected a move")
		}
		if from != engine.MustParseSquare("e2") || to.File() != 4 {
			t.Errorf("Seed %d: expected the rook to stay on the e-file, got %s-%s", seed, from, to)
		}
	}

	for _, c := range NewGreedyStrategy(1).Rank(state) {
		if c.From == engine.MustParseSquare("e2") && c.To == engine.MustParseSquare("a2") && c.Score > blunder {
			t.Errorf("Expected e2-a2 to be scored as a blunder, got %d", c.Score)
		}
	}
}

func TestGreedyStrategy_NoMoves(t *testing.T) {
	state := stateFromFEN(t, engine.StandardFEN)
	state.Status = engine.WhiteWon

	if _, _, ok := NewGreedyStrategy(1).NextMove(state); ok {
		t.Error("Expected no move once the game is over")
	}

	wall := stateFromFEN(t, "PP5k/PP6/PP6/PP6/PP6/PP6/PP6/KP6 w - - 0 1")
	if _, _, ok := NewGreedyStrategy(1).NextMove(wall); ok {
		t.Error("Expected no move for a side that cannot move")
	}
}

func TestSummary_Add(t *testing.T) {
	var s Summary
	s.Add(GameResult{Status: engine.WhiteWon, Moves: 10})
	s.Add(GameResult{Status: engine.BlackWon, Moves: 7})
	s.Add(GameResult{Status: engine.InProgress, Moves: 3})

	if s.WhiteWins != 1 || s.BlackWins != 1 || s.Unfinished != 1 || s.Moves != 20 {
		t.Errorf("Unexpected summary %+v", s)
	}
}

func TestClient(t *testing.T) {
	backend := newBackend(t)
	client := NewClient(backend.URL + "/")

	state, err := client.CreateSession("")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}
	if client.SessionID() == "" {
		t.Fatal("Expected session ID")
	}
	if state.SideToMove != engine.White {
		t.Errorf("Expected white to move, got %s", state.SideToMove)
	}

	result, err := client.Move(engine.MustParseSquare("e2"), engine.MustParseSquare("e4"))
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if result.GameState.SideToMove != engine.Black {
		t.Errorf("Expected black to move, got %s", result.GameState.SideToMove)
	}

	result, err = client.Move(engine.MustParseSquare("e4"), engine.MustParseSquare("e5"))
	if err == nil || !strings.Contains(err.Error(), "rejected") {
		t.Errorf("Expected rejected move error, got %v", err)
	}
	if result == nil || result.Success {
		t.Error("Expected the unsuccessful result to be returned")
	}

	state, err = client.GetState()
	if err != nil {
		t.Fatalf("Failed to get state: %v", err)
	}
	if p, _ := state.Board.Get(engine.MustParseSquare("e4")); p.Kind != engine.Pawn {
		t.Errorf("Expected pawn on e4, got %s", p)
	}

	state, err = client.Reset()
	if err != nil {
		t.Fatalf("Failed to reset: %v", err)
	}
	if state.CurrentMovesCount != 0 {
		t.Errorf("Expected no current moves after reset, got %d", state.CurrentMovesCount)
	}

	if _, err := NewClient(backend.URL).Resume("deadbeef"); err == nil {
		t.Error("Expected error resuming an unknown session")
	}
	if _, err := NewClient(backend.URL).CreateSession("missing_setup"); err == nil {
		t.Error("Expected error for an unknown setup")
	}
}

func TestPlayGames(t *testing.T) {
	backend := newBackend(t)
	client := NewClient(backend.URL)

	state, err := client.CreateSession("")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	summary, err := playGames(context.Background(), client, NewGreedyStrategy(7), state, 3, playOptions{maxMoves: 6}, zap.NewNop())
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}

	if total := summary.WhiteWins + summary.BlackWins + summary.Unfinished; total != 3 {
		t.Errorf("Expected 3 games, got %d", total)
	}
	if summary.Moves == 0 || summary.Moves > 18 {
		t.Errorf("Expected between 1 and 18 moves, got %d", summary.Moves)
	}
}

func TestPlayGame_Cancelled(t *testing.T) {
	backend := newBackend(t)
	client := NewClient(backend.URL)

	state, err := client.CreateSession("")
	if err != nil {
		t.Fatalf("Failed to create session: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result, err := playGame(ctx, client, NewGreedyStrategy(1), state, playOptions{maxMoves: 10}, zap.NewNop())
	if err == nil {
		t.Error("Expected context error")
	}
	if result.Moves != 0 {
		t.Errorf("Expected no moves, got %d", result.Moves)
	}
}
