// Command watch follows one or more sessions over the server's WebSocket
// feed and prints the board after every update.
//
//	watch --url ws://localhost:8080 3f2a9c1b 77de0a12
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/url"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/fatih/color"
	"github.com/gorilla/websocket"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"

	"github.com/wricardo/atomic-chess/game/engine"
	ws "github.com/wricardo/atomic-chess/transport/websocket"
)

var (
	header   = color.New(color.FgCyan, color.Bold)
	boom     = color.New(color.FgYellow, color.Bold)
	gameOver = color.New(color.FgGreen, color.Bold)
)

func main() {
	cmd := &cli.Command{
		Name:      "watch",
		Usage:     "Follow sessions over WebSocket",
		ArgsUsage: "<session_id>...",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "url", Value: "ws://localhost:8080", Usage: "Server WebSocket base URL"},
			&cli.BoolFlag{Name: "v", Usage: "Verbose output"},
		},
		Action: run,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := cmd.Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cmd *cli.Command) error {
	sessionIDs := cmd.Args().Slice()
	if len(sessionIDs) == 0 {
		return fmt.Errorf("at least one session ID is required")
	}

	logger := zap.NewNop()
	if cmd.Bool("v") {
		var err error
		if logger, err = zap.NewDevelopment(); err != nil {
			return err
		}
	}
	defer logger.Sync()

	w := newWatcher(os.Stdout, logger)
	var wg sync.WaitGroup
	errs := make(chan error, len(sessionIDs))
	for _, id := range sessionIDs {
		conn, err := dial(ctx, cmd.String("url"), id)
		if err != nil {
			return fmt.Errorf("session %s: %w", id, err)
		}
		wg.Add(1)
		go func(id string, conn *websocket.Conn) {
			defer wg.Done()
			if err := w.follow(ctx, id, conn); err != nil {
				errs <- fmt.Errorf("session %s: %w", id, err)
			}
		}(id, conn)
	}

	wg.Wait()
	close(errs)
	return <-errs
}

// dial opens the WebSocket feed for a session
func dial(ctx context.Context, baseURL, sessionID string) (*websocket.Conn, error) {
	u, err := url.Parse(strings.TrimSuffix(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	switch u.Scheme {
	case "http":
		u.Scheme = "ws"
	case "https":
		u.Scheme = "wss"
	}
	u.Path += "/ws"
	q := u.Query()
	q.Set("session", sessionID)
	u.RawQuery = q.Encode()

	conn, _, err := websocket.DefaultDialer.DialContext(ctx, u.String(), nil)
	return conn, err
}

// watcher prints updates from several sessions without interleaving them
type watcher struct {
	mu     sync.Mutex
	out    io.Writer
	logger *zap.Logger
	seen   map[string]int // moves printed per session
}

func newWatcher(out io.Writer, logger *zap.Logger) *watcher {
	return &watcher{out: out, logger: logger, seen: make(map[string]int)}
}

// follow reads messages until the connection closes or ctx is cancelled
func (w *watcher) follow(ctx context.Context, sessionID string, conn *websocket.Conn) error {
	go func() {
		<-ctx.Done()
		conn.Close()
	}()
	defer conn.Close()

	w.logger.Debug("watching session", zap.String("session_id", sessionID))
	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			if ctx.Err() != nil || websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				return nil
			}
			return err
		}

		var msg ws.Message
		if err := json.Unmarshal(data, &msg); err != nil {
			w.logger.Warn("bad message", zap.String("session_id", sessionID), zap.Error(err))
			continue
		}
		if msg.GameState == nil {
			w.logger.Debug("event", zap.String("session_id", sessionID), zap.String("event", msg.Event))
			continue
		}
		w.print(sessionID, msg.GameState)
	}
}

// print writes the new moves and the board for one update
func (w *watcher) print(sessionID string, state *engine.GameState) {
	w.mu.Lock()
	defer w.mu.Unlock()

	header.Fprintf(w.out, "[%s] %s", sessionID, state.ConfigName)
	fmt.Fprintf(w.out, " | %s to move | %s\n", state.SideToMove, state.Status)

	seen := w.seen[sessionID]
	if state.CurrentMovesCount < seen {
		// reset
		seen = 0
	}
	for _, m := range state.CurrentMoves[min(seen, len(state.CurrentMoves)):] {
		fmt.Fprintf(w.out, "  %d. %s %c %s-%s", m.MoveNumber, m.Side, m.Piece.Letter(), m.From, m.To)
		if m.Detonation != nil {
			boom.Fprintf(w.out, " 💥 %d destroyed", len(m.Detonation.Casualties))
		}
		fmt.Fprintln(w.out)
	}
	w.seen[sessionID] = state.CurrentMovesCount

	for i, row := range state.Board.Rows() {
		fmt.Fprintf(w.out, "  %d  %s\n", engine.Ranks-i, strings.Join(strings.Split(row, ""), " "))
	}
	fmt.Fprintln(w.out, "     a b c d e f g h")

	if state.Status != engine.InProgress {
		gameOver.Fprintln(w.out, state.Message)
	}
}
