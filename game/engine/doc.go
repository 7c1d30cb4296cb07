// Package engine implements the rules of atomic chess.
//
// Pieces move as in ordinary chess, but every capture detonates the capture
// square: the captured and capturing pieces both disappear, and every
// non-pawn piece on the eight surrounding squares is destroyed with them,
// kings included. A side whose king is gone has lost.
//
// Core Types:
//
// GameEngine owns a single GameState (board, side to move, status and move
// history) and exposes it through the Engine interface. Squares are flat
// indices parsed from identifiers such as "e4" by ParseSquare. Setups are
// GameConfig values carrying a FEN record.
//
// Usage:
//
//	game := engine.NewGame()
//	if !game.MakeMove("e2", "e4") {
//		// rejected, nothing changed
//	}
//	fmt.Print(game)
//	fmt.Println(game.GetStatus())
//
// The engine does not generate moves and knows nothing about check,
// castling, en passant, promotion or draws. It is not safe for concurrent
// use; callers serialize access.
package engine
