// Command selfplay plays atomic chess against a running server, moving both
// sides with a greedy strategy through the REST API. It is useful for soak
// testing a server and for watching games over the WebSocket feed.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/wricardo/atomic-chess/game/engine"
)

// GameResult is the outcome of one game
type GameResult struct {
	Status engine.Status
	Moves  int
}

// Summary counts outcomes across games
type Summary struct {
	WhiteWins  int
	BlackWins  int
	Unfinished int
	Moves      int
}

func (s *Summary) Add(r GameResult) {
	s.Moves += r.Moves
	switch r.Status {
	case engine.WhiteWon:
		s.WhiteWins++
	case engine.BlackWon:
		s.BlackWins++
	default:
		s.Unfinished++
	}
}

func main() {
	cmd := &cli.Command{
		Name:  "selfplay",
		Usage: "Play atomic chess games against a running server",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "http://localhost:8080", Usage: "Game server URL"},
			&cli.StringFlag{Name: "config", Usage: "Setup to play (default setup when empty)"},
			&cli.StringFlag{Name: "continue", Usage: "Resume playing an existing session by ID"},
			&cli.IntFlag{Name: "games", Value: 10, Usage: "Number of games to play"},
			&cli.IntFlag{Name: "max-moves", Value: 200, Usage: "Maximum moves per game"},
			&cli.IntFlag{Name: "seed", Value: 1, Usage: "Random seed for tie breaks"},
			&cli.IntFlag{Name: "delay", Usage: "Delay between moves in milliseconds"},
			&cli.BoolFlag{Name: "v", Usage: "Verbose output"},
		},
		Action: run,
	}

	if err := cmd.Run(context.Background(), os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	newLogger := zap.NewProduction
	if cmd.Bool("v") {
		newLogger = zap.NewDevelopment
	}
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	logger.Info("connecting to game server", zap.String("url", cmd.String("url")))
	client := NewClient(cmd.String("url"))

	var state *engine.GameState
	if id := cmd.String("continue"); id != "" {
		if state, err = client.Resume(id); err != nil {
			return fmt.Errorf("resume session %s: %w", id, err)
		}
		logger.Info("session resumed", zap.String("session_id", id), zap.String("status", string(state.Status)))
	} else {
		if state, err = client.CreateSession(cmd.String("config")); err != nil {
			return err
		}
		logger.Info("session created", zap.String("session_id", client.SessionID()), zap.String("setup", state.ConfigName))
	}

	opts := playOptions{
		maxMoves: cmd.Int("max-moves"),
		delay:    time.Duration(cmd.Int("delay")) * time.Millisecond,
	}
	strategy := NewGreedyStrategy(int64(cmd.Int("seed")))

	summary, err := playGames(ctx, client, strategy, state, cmd.Int("games"), opts, logger)
	if err != nil {
		return err
	}

	logger.Info("done",
		zap.String("session_id", client.SessionID()),
		zap.Int("white_wins", summary.WhiteWins),
		zap.Int("black_wins", summary.BlackWins),
		zap.Int("unfinished", summary.Unfinished),
		zap.Int("moves", summary.Moves))
	return nil
}

type playOptions struct {
	maxMoves int
	delay    time.Duration
}

// playGames plays games in one session, resetting between them
func playGames(ctx context.Context, client *Client, strategy *GreedyStrategy, state *engine.GameState, games int, opts playOptions, logger *zap.Logger) (*Summary, error) {
	summary := &Summary{}
	for game := 1; game <= games; game++ {
		if game > 1 || state.Status != engine.InProgress || state.CurrentMovesCount > 0 {
			var err error
			if state, err = client.Reset(); err != nil {
				return summary, err
			}
		}

		result, err := playGame(ctx, client, strategy, state, opts, logger)
		if err != nil {
			return summary, err
		}
		summary.Add(result)
		logger.Info("game finished",
			zap.Int("game", game),
			zap.String("status", string(result.Status)),
			zap.Int("moves", result.Moves))
	}
	return summary, nil
}

// playGame moves until the game ends, no move is available or maxMoves is reached
func playGame(ctx context.Context, client *Client, strategy *GreedyStrategy, state *engine.GameState, opts playOptions, logger *zap.Logger) (GameResult, error) {
	moves := 0
	for state.Status == engine.InProgress && moves < opts.maxMoves {
		if err := ctx.Err(); err != nil {
			return GameResult{Status: state.Status, Moves: moves}, err
		}

		from, to, ok := strategy.NextMove(state)
		if !ok {
			logger.Warn("no legal move available", zap.String("side", state.SideToMove.String()))
			break
		}

		result, err := client.Move(from, to)
		if err != nil {
			return GameResult{Status: state.Status, Moves: moves}, err
		}
		state = result.GameState
		moves++

		if result.Step != nil && len(result.Step.Casualties) > 0 {
			logger.Debug("detonation",
				zap.String("move", fmt.Sprintf("%s-%s", from, to)),
				zap.Int("casualties", len(result.Step.Casualties)))
		}

		if opts.delay > 0 {
			time.Sleep(opts.delay)
		}
	}
	return GameResult{Status: state.Status, Moves: moves}, nil
}
