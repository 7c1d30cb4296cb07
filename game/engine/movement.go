package engine

import (
	"fmt"
	"time"
)

// blastOffsets is the 3x3 neighbourhood around a detonation, center excluded
var blastOffsets = [8]struct{ df, dr int }{
	{-1, 1}, {0, 1}, {1, 1},
	{-1, 0}, {1, 0},
	{-1, -1}, {0, -1}, {1, -1},
}

// ApplyMove validates and executes a move. On rejection the state is left untouched.
func (gs *GameState) ApplyMove(start, end Square, config *GameConfig) (*Detonation, error) {
	if err := gs.CheckMove(start, end); err != nil {
		return nil, err
	}

	mover := gs.SideToMove
	pc, _ := gs.Board.Get(start)
	det := gs.execute(start, end)
	gs.updateStatus()
	gs.SideToMove = mover.Opponent()
	gs.Message = gs.describeMove(pc, start, end, det, config)

	gs.AddMoveToHistory(mover, start, end, pc, det)
	return det, nil
}

// execute relocates the piece and, when the destination was occupied, detonates it
func (gs *GameState) execute(start, end Square) *Detonation {
	pc, _ := gs.Board.Get(start)
	captured, capture := gs.Board.Get(end)

	gs.Board.Set(end, pc)
	gs.Board.Clear(start)
	if !capture {
		return nil
	}

	det := &Detonation{
		Center: end,
		Casualties: []Casualty{
			{Square: end, Piece: captured},
			{Square: end, Piece: pc},
		},
	}
	gs.Board.Clear(end)
	det.Casualties = append(det.Casualties, gs.Board.explode(end)...)
	return det
}

// explode removes every non-pawn piece around center
func (b *Board) explode(center Square) []Casualty {
	var out []Casualty
	for _, sq := range BlastSquares(center) {
		pc, ok := b.Get(sq)
		if !ok || pc.Kind == Pawn {
			continue
		}
		b.Clear(sq)
		out = append(out, Casualty{Square: sq, Piece: pc})
	}
	return out
}

// BlastSquares lists the on-board neighbours of center that a detonation reaches
func BlastSquares(center Square) []Square {
	out := make([]Square, 0, len(blastOffsets))
	for _, off := range blastOffsets {
		sq := SquareAt(center.File()+off.df, center.Rank()+off.dr)
		if sq != NoSquare {
			out = append(out, sq)
		}
	}
	return out
}

// updateStatus checks White's king first, so mutual destruction is a Black win
func (gs *GameState) updateStatus() {
	if gs.Status != InProgress {
		return
	}
	switch {
	case !gs.Board.HasKing(White):
		gs.Status = BlackWon
	case !gs.Board.HasKing(Black):
		gs.Status = WhiteWon
	}
}

func (gs *GameState) describeMove(pc Piece, start, end Square, det *Detonation, config *GameConfig) string {
	switch gs.Status {
	case WhiteWon:
		if config != nil && config.Messages.WhiteWon != "" {
			return config.Messages.WhiteWon
		}
		return "White wins: the black king was destroyed"
	case BlackWon:
		if config != nil && config.Messages.BlackWon != "" {
			return config.Messages.BlackWon
		}
		return "Black wins: the white king was destroyed"
	}
	if det != nil {
		return fmt.Sprintf("%s %s-%s captures, explosion removes %d pieces", pc, start, end, len(det.Casualties))
	}
	return fmt.Sprintf("%s %s-%s", pc, start, end)
}

// AddMoveToHistory appends an applied move to both the cumulative and current histories
func (gs *GameState) AddMoveToHistory(side Side, from, to Square, pc Piece, det *Detonation) {
	entry := MoveHistoryEntry{
		MoveNumber:  gs.TotalMoves + 1,
		Side:        side,
		From:        from,
		To:          to,
		Piece:       pc,
		Detonation:  det,
		StatusAfter: gs.Status,
		Timestamp:   time.Now().Unix(),
	}
	gs.MoveHistory = append(gs.MoveHistory, entry)
	gs.TotalMoves++

	gs.CurrentMoves = append(gs.CurrentMoves, entry)
	gs.CurrentMovesCount++
}
