package main

import (
	"math/rand"
	"sort"

	"github.com/wricardo/atomic-chess/game/engine"
)

const (
	winScore   = 10000
	lossScore  = -10000
	blunder    = -5000 // the reply can blow up our king
	pieceScore = 10    // per point of material
)

// Candidate is a legal move with its evaluation
type Candidate struct {
	From, To engine.Square
	Score    int
}

// GreedyStrategy picks captures that win outright, avoids moves that hand
// the opponent a winning capture, and otherwise trades material greedily.
// Ties are broken at random.
type GreedyStrategy struct {
	rng *rand.Rand
}

func NewGreedyStrategy(seed int64) *GreedyStrategy {
	return &GreedyStrategy{rng: rand.New(rand.NewSource(seed))}
}

// NextMove returns the move to play, or false when the side to move has none
func (s *GreedyStrategy) NextMove(state *engine.GameState) (engine.Square, engine.Square, bool) {
	candidates := s.Rank(state)
	if len(candidates) == 0 {
		return 0, 0, false
	}

	best := candidates[0].Score
	n := 1
	for n < len(candidates) && candidates[n].Score == best {
		n++
	}
	pick := candidates[s.rng.Intn(n)]
	return pick.From, pick.To, true
}

// Rank scores every legal move, best first
func (s *GreedyStrategy) Rank(state *engine.GameState) []Candidate {
	if state.Status != engine.InProgress {
		return nil
	}

	me := state.SideToMove
	var out []Candidate
	for _, m := range legalMoves(state) {
		trial := trialState(state)
		if _, err := trial.ApplyMove(m.From, m.To, nil); err != nil {
			continue
		}
		m.Score = evaluate(state, trial, me)
		out = append(out, m)
	}

	sort.SliceStable(out, func(i, j int) bool { return out[i].Score > out[j].Score })
	return out
}

func evaluate(before, after *engine.GameState, me engine.Side) int {
	switch after.Status {
	case wonBy(me):
		return winScore
	case wonBy(me.Opponent()):
		return lossScore
	}

	them := me.Opponent()
	score := pieceScore * ((engine.Material(&before.Board, them) - engine.Material(&after.Board, them)) -
		(engine.Material(&before.Board, me) - engine.Material(&after.Board, me)))

	if replyWins(after, them) {
		score += blunder
	}
	return score
}

// replyWins reports whether side has a capture that ends the game in its favour
func replyWins(state *engine.GameState, side engine.Side) bool {
	for _, m := range legalMoves(state) {
		if _, occupied := state.Board.Get(m.To); !occupied {
			continue
		}
		trial := trialState(state)
		if _, err := trial.ApplyMove(m.From, m.To, nil); err == nil && trial.Status == wonBy(side) {
			return true
		}
	}
	return false
}

func legalMoves(state *engine.GameState) []Candidate {
	var moves []Candidate
	for from := engine.Square(0); from < engine.NumSquares; from++ {
		pc, ok := state.Board.Get(from)
		if !ok || pc.Side != state.SideToMove {
			continue
		}
		for to := engine.Square(0); to < engine.NumSquares; to++ {
			if state.CheckMove(from, to) == nil {
				moves = append(moves, Candidate{From: from, To: to})
			}
		}
	}
	return moves
}

func trialState(state *engine.GameState) *engine.GameState {
	return &engine.GameState{Board: state.Board, SideToMove: state.SideToMove, Status: state.Status}
}

func wonBy(side engine.Side) engine.Status {
	if side == engine.White {
		return engine.WhiteWon
	}
	return engine.BlackWon
}
