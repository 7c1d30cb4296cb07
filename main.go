// Command atomic-chess starts the atomic chess server.
//
// It supports these modes:
//  1. "server" (default) – runs the HTTP server exposing REST API, WebSocket, and an /mcp endpoint
//  2. "stdio-mcp" – runs an MCP stdio server and spins up an internal HTTP API if none is available
//  3. "play" – a two-player game in the terminal
//  4. "board" – prints the starting board of a setup
//
// Flags control host/port, config and session storage, debug logging,
// and optional ngrok tunneling for easy external access during development.
package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/urfave/cli/v3"
	"go.uber.org/zap"
	"golang.ngrok.com/ngrok"
	ngrokConfig "golang.ngrok.com/ngrok/config"

	"github.com/wricardo/atomic-chess/api"
	"github.com/wricardo/atomic-chess/game/config"
	"github.com/wricardo/atomic-chess/game/engine"
	"github.com/wricardo/atomic-chess/game/service"
	"github.com/wricardo/atomic-chess/game/session"
	"github.com/wricardo/atomic-chess/transport/mcp"
	"github.com/wricardo/atomic-chess/transport/websocket"
)

// Version information
const (
	Version = "1.0.0"
	AppName = "Atomic Chess Server"
)

// Session storage backends
const (
	storeFile   = "file"
	storeSQLite = "sqlite"
)

// options holds the resolved global flags
type options struct {
	host        string
	port        int
	configDir   string
	defaultCfg  string
	sessionsDir string
	store       string
	dbPath      string
	debug       bool
	ngrok       bool
	ngrokAuth   string
	ngrokDomain string
}

func (o options) addr() string {
	return fmt.Sprintf("%s:%d", o.host, o.port)
}

func optionsFrom(cmd *cli.Command) options {
	return options{
		host:        cmd.String("host"),
		port:        cmd.Int("port"),
		configDir:   cmd.String("config-dir"),
		defaultCfg:  cmd.String("default-setup"),
		sessionsDir: cmd.String("sessions-dir"),
		store:       cmd.String("store"),
		dbPath:      cmd.String("db"),
		debug:       cmd.Bool("debug"),
		ngrok:       cmd.Bool("ngrok"),
		ngrokAuth:   cmd.String("ngrok-auth"),
		ngrokDomain: cmd.String("ngrok-domain"),
	}
}

// main loads .env, builds the CLI and runs the selected mode
func main() {
	// Load .env file if it exists (ignore error if not found)
	envErr := godotenv.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp(envErr).Run(ctx, os.Args); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newApp(envErr error) *cli.Command {
	return &cli.Command{
		Name:    "atomic-chess",
		Usage:   "Atomic chess over REST, WebSocket and MCP",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "host", Value: "localhost", Usage: "HTTP server host", Sources: cli.EnvVars("HOST")},
			&cli.IntFlag{Name: "port", Value: 8080, Usage: "HTTP server port", Sources: cli.EnvVars("PORT")},
			&cli.StringFlag{Name: "config-dir", Value: "configs", Usage: "Directory containing setup files", Sources: cli.EnvVars("CONFIG_DIR")},
			&cli.StringFlag{Name: "default-setup", Usage: "Setup used when a session names none (default: standard)", Sources: cli.EnvVars("DEFAULT_SETUP")},
			&cli.StringFlag{Name: "sessions-dir", Value: "sessions", Usage: "Directory for session files (file store)", Sources: cli.EnvVars("SESSIONS_DIR")},
			&cli.StringFlag{Name: "store", Value: storeFile, Usage: "Session store: file or sqlite", Sources: cli.EnvVars("SESSION_STORE")},
			&cli.StringFlag{Name: "db", Value: "sessions.db", Usage: "SQLite database path (sqlite store)", Sources: cli.EnvVars("SESSION_DB")},
			&cli.BoolFlag{Name: "debug", Usage: "Enable debug logging", Sources: cli.EnvVars("DEBUG")},
			&cli.BoolFlag{Name: "ngrok", Usage: "Enable ngrok tunnel", Sources: cli.EnvVars("NGROK_ENABLED")},
			&cli.StringFlag{Name: "ngrok-auth", Usage: "Ngrok auth token", Sources: cli.EnvVars("NGROK_AUTHTOKEN", "NGROK_AUTH_TOKEN")},
			&cli.StringFlag{Name: "ngrok-domain", Usage: "Custom ngrok domain (optional)", Sources: cli.EnvVars("NGROK_DOMAIN")},
		},
		Commands: []*cli.Command{
			{
				Name:    "server",
				Aliases: []string{"http"},
				Usage:   "Run HTTP server with API, WebSocket, and MCP endpoint (default)",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withServices(ctx, cmd, envErr, runHTTPServer)
				},
			},
			{
				Name:    "stdio-mcp",
				Aliases: []string{"mcp", "mcp-stdio"},
				Usage:   "Run MCP stdio server, reusing a running API or starting an internal one",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withServices(ctx, cmd, envErr, runStdioMCP)
				},
			},
			{
				Name:      "play",
				Usage:     "Play a two-player game in the terminal",
				ArgsUsage: "[setup]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return withServices(ctx, cmd, envErr, func(ctx context.Context, opts options, svc *services, logger *zap.Logger) error {
						return runPlay(ctx, svc.game, cmd.Args().First(), os.Stdin, os.Stdout)
					})
				},
			},
			{
				Name:      "board",
				Usage:     "Print the starting board of a setup",
				ArgsUsage: "[setup]",
				Action: func(ctx context.Context, cmd *cli.Command) error {
					return runBoard(optionsFrom(cmd).configDir, cmd.Args().First(), os.Stdout)
				},
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			if cmd.Args().Present() {
				return fmt.Errorf("unknown mode: %s. Use 'server' (default), 'stdio-mcp', 'play' or 'board'", cmd.Args().First())
			}
			return withServices(ctx, cmd, envErr, runHTTPServer)
		},
	}
}

type runFunc func(ctx context.Context, opts options, svc *services, logger *zap.Logger) error

// withServices builds the logger and services, runs fn, then flushes sessions
func withServices(ctx context.Context, cmd *cli.Command, envErr error, fn runFunc) error {
	opts := optionsFrom(cmd)

	logger, err := newLogger(opts.debug)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	defer logger.Sync()

	if envErr == nil {
		logger.Debug("loaded environment variables from .env file")
	} else if !os.IsNotExist(envErr) {
		logger.Warn("error loading .env file", zap.Error(envErr))
	}

	logger.Info("starting", zap.String("app", AppName), zap.String("version", Version), zap.String("mode", cmd.Name))

	svc, err := initializeServices(opts, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize services: %w", err)
	}
	defer svc.Close()

	go sessionCleanupRoutine(ctx, svc.sessions, logger)
	go persistenceSyncRoutine(ctx, svc.sessions, svc.persistence, logger)

	hup := make(chan os.Signal, 1)
	signal.Notify(hup, syscall.SIGHUP)
	defer signal.Stop(hup)
	go configReloadRoutine(ctx, hup, svc.configs, logger)

	return fn(ctx, opts, svc, logger)
}

// newLogger returns a development logger under debug, production otherwise.
// Both write to stderr, which keeps stdout free for the MCP stdio transport.
func newLogger(debug bool) (*zap.Logger, error) {
	if debug {
		return zap.NewDevelopment()
	}
	return zap.NewProduction()
}

// services is everything the modes share
type services struct {
	game        service.GameService
	sessions    *session.Manager
	configs     *config.Manager
	persistence session.SessionPersistence
	logger      *zap.Logger
}

// Close writes all sessions to the store and releases it
func (s *services) Close() {
	if err := s.sessions.SaveAllSessions(); err != nil {
		s.logger.Warn("failed to save sessions on shutdown", zap.Error(err))
	}
	if closer, ok := s.persistence.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			s.logger.Warn("failed to close session store", zap.Error(err))
		}
	}
}

// initializeServices wires session/config managers and the game service
func initializeServices(opts options, logger *zap.Logger) (*services, error) {
	// Create config manager first (needed for persistence)
	configManager, err := config.NewManager(opts.configDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create config manager: %w", err)
	}
	if opts.defaultCfg != "" {
		if err := configManager.SetDefault(opts.defaultCfg); err != nil {
			return nil, fmt.Errorf("failed to set default setup %q: %w", opts.defaultCfg, err)
		}
	}
	logger.Info("setups loaded",
		zap.String("dir", opts.configDir),
		zap.String("default", configManager.GetDefault().Name),
		zap.Int("cached", configManager.Count()))

	persistence, err := newPersistence(opts, configManager)
	if err != nil {
		return nil, fmt.Errorf("failed to create session persistence: %w", err)
	}

	sessionManager := session.NewManagerWithPersistence(persistence, logger)

	// Load persisted sessions on startup
	if err := sessionManager.LoadPersistedSessions(); err != nil {
		logger.Warn("failed to load persisted sessions", zap.Error(err))
	}
	logger.Info("sessions ready", zap.String("store", opts.store), zap.Int("count", sessionManager.Count()))

	return &services{
		game:        service.NewGameService(sessionManager, configManager, logger),
		sessions:    sessionManager,
		configs:     configManager,
		persistence: persistence,
		logger:      logger,
	}, nil
}

func newPersistence(opts options, configManager *config.Manager) (session.SessionPersistence, error) {
	switch opts.store {
	case storeFile, "":
		return session.NewFilePersistence(opts.sessionsDir, configManager)
	case storeSQLite:
		return session.NewSQLPersistence("sqlite3", opts.dbPath, configManager)
	default:
		return nil, fmt.Errorf("unknown session store %q (want %s or %s)", opts.store, storeFile, storeSQLite)
	}
}

// sessionCleanupRoutine periodically removes sessions that have not been accessed within a day
func sessionCleanupRoutine(ctx context.Context, manager *session.Manager, logger *zap.Logger) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := manager.CleanupExpiredSessions(24 * time.Hour); removed > 0 {
				logger.Info("cleaned up expired sessions", zap.Int("count", removed))
			}
		}
	}
}

// configReloadRoutine re-reads setup files from disk on every signal
func configReloadRoutine(ctx context.Context, reload <-chan os.Signal, configs *config.Manager, logger *zap.Logger) {
	for {
		select {
		case <-ctx.Done():
			return
		case <-reload:
		}

		if err := configs.RefreshCache(); err != nil {
			logger.Warn("failed to reload setups", zap.Error(err))
			continue
		}
		logger.Info("setups reloaded",
			zap.String("default", configs.GetDefault().Name),
			zap.Int("cached", configs.Count()))
	}
}

// persistenceSyncRoutine drops sessions from memory once their stored copy has been deleted
func persistenceSyncRoutine(ctx context.Context, manager *session.Manager, persistence session.SessionPersistence, logger *zap.Logger) {
	ticker := time.NewTicker(5 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		if pruned := pruneOrphans(manager, persistence, logger); pruned > 0 {
			logger.Info("persistence sync pruned orphaned sessions", zap.Int("count", pruned))
		}
	}
}

func pruneOrphans(manager *session.Manager, persistence session.SessionPersistence, logger *zap.Logger) int {
	if persistence == nil {
		return 0
	}

	pruned := 0
	for _, sess := range manager.List() {
		if persistence.Exists(sess.ID) {
			continue
		}
		if err := manager.DeleteFromMemory(sess.ID); err == nil {
			pruned++
			logger.Debug("pruned session from memory (store copy deleted)", zap.String("session_id", sess.ID))
		}
	}
	return pruned
}

// newHandler builds the full HTTP handler: REST API, WebSocket and /mcp
func newHandler(gameService service.GameService, hub *websocket.Hub, baseURL string, logger *zap.Logger) http.Handler {
	apiServer := api.NewServer(gameService, hub, logger)
	apiServer.MountMCP(mcp.NewClient(baseURL).HTTPHandler())
	return apiServer.Handler()
}

// runHTTPServer serves until ctx is cancelled, optionally through an ngrok tunnel too
func runHTTPServer(ctx context.Context, opts options, svc *services, logger *zap.Logger) error {
	hub := websocket.NewHub(logger)
	go hub.Run(ctx)

	addr := opts.addr()
	handler := newHandler(svc.game, hub, "http://"+addr, logger)

	httpServer := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	var wg sync.WaitGroup
	errCh := make(chan error, 1)

	wg.Add(1)
	go func() {
		defer wg.Done()

		logger.Info("HTTP server listening",
			zap.String("addr", addr),
			zap.String("api", fmt.Sprintf("http://%s/api", addr)),
			zap.String("websocket", fmt.Sprintf("ws://%s/ws?session=<session_id>", addr)),
			zap.String("mcp", fmt.Sprintf("http://%s/mcp", addr)))

		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("HTTP server failed: %w", err)
		}
	}()

	if opts.ngrok {
		wg.Add(1)
		go func() {
			defer wg.Done()
			runNgrok(ctx, opts, handler, logger)
		}()
	}

	var runErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case runErr = <-errCh:
	}

	// Graceful shutdown with timeout
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		logger.Warn("HTTP server shutdown error", zap.Error(err))
	}

	wg.Wait()
	logger.Info("server stopped")
	return runErr
}

// runNgrok exposes handler through an ngrok tunnel until ctx is cancelled
func runNgrok(ctx context.Context, opts options, handler http.Handler, logger *zap.Logger) {
	if opts.ngrokAuth == "" {
		logger.Warn("ngrok enabled but no auth token provided (use --ngrok-auth, NGROK_AUTHTOKEN or NGROK_AUTH_TOKEN)")
		return
	}

	var tunnel ngrokConfig.Tunnel
	if opts.ngrokDomain != "" {
		tunnel = ngrokConfig.HTTPEndpoint(ngrokConfig.WithDomain(opts.ngrokDomain))
		logger.Info("using custom ngrok domain", zap.String("domain", opts.ngrokDomain))
	} else {
		tunnel = ngrokConfig.HTTPEndpoint()
	}

	tun, err := ngrok.Listen(ctx, tunnel, ngrok.WithAuthtoken(opts.ngrokAuth))
	if err != nil {
		logger.Error("failed to start ngrok tunnel", zap.Error(err))
		return
	}

	ngrokURL := tun.URL()
	logger.Info("ngrok tunnel established",
		zap.String("url", ngrokURL),
		zap.String("api", ngrokURL+"/api"),
		zap.String("mcp", ngrokURL+"/mcp"))

	go func() {
		<-ctx.Done()
		if err := tun.Close(); err != nil {
			logger.Warn("failed to close ngrok tunnel", zap.Error(err))
		}
	}()

	if err := http.Serve(tun, handler); err != nil && !errors.Is(err, http.ErrServerClosed) && ctx.Err() == nil {
		logger.Error("ngrok server error", zap.Error(err))
	}
	logger.Info("ngrok tunnel closed")
}

// runStdioMCP runs an MCP stdio server. It reuses an API already listening
// on --host/--port; otherwise it starts an internal API on a loopback port.
func runStdioMCP(ctx context.Context, opts options, svc *services, logger *zap.Logger) error {
	externalURL := "http://" + opts.addr()

	baseURL := externalURL
	if !apiAvailable(externalURL) {
		logger.Info("no external API server found, starting internal HTTP server")

		listener, err := net.Listen("tcp", "127.0.0.1:0")
		if err != nil {
			return fmt.Errorf("failed to get available port: %w", err)
		}
		baseURL = "http://" + listener.Addr().String()

		hub := websocket.NewHub(logger)
		go hub.Run(ctx)

		httpServer := &http.Server{Handler: api.NewServer(svc.game, hub, logger).Handler()}
		go func() {
			if err := httpServer.Serve(listener); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Error("internal HTTP server error", zap.Error(err))
			}
		}()
		defer httpServer.Close()
	} else {
		logger.Info("external API server found, using it for MCP", zap.String("url", externalURL))
	}

	logger.Info("MCP stdio server ready", zap.String("api", baseURL))
	return mcp.NewClient(baseURL).ServeStdio()
}

func apiAvailable(baseURL string) bool {
	client := &http.Client{Timeout: 2 * time.Second}
	resp, err := client.Get(baseURL + "/health")
	if err != nil {
		return false
	}
	resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// Terminal modes

var (
	whitePiece = color.New(color.FgHiWhite, color.Bold)
	blackPiece = color.New(color.FgRed, color.Bold)
	emptySq    = color.New(color.FgHiBlack)
	highlight  = color.New(color.FgYellow)
)

// renderBoard writes the board rank 8 first with file and rank labels
func renderBoard(w io.Writer, board *engine.Board) {
	for i, row := range board.Rows() {
		fmt.Fprintf(w, "%d ", engine.Ranks-i)
		for j := 0; j < len(row); j++ {
			fmt.Fprint(w, " ")
			ch := string(row[j])
			switch {
			case row[j] == '.':
				emptySq.Fprint(w, ch)
			case row[j] >= 'a' && row[j] <= 'z':
				blackPiece.Fprint(w, ch)
			default:
				whitePiece.Fprint(w, ch)
			}
		}
		fmt.Fprintln(w)
	}
	fmt.Fprintln(w, "   a b c d e f g h")
}

// runBoard prints the starting board of a setup
func runBoard(configDir, name string, w io.Writer) error {
	configs, err := config.NewManager(configDir)
	if err != nil {
		return err
	}

	setup := configs.GetDefault()
	if name != "" {
		if setup, err = configs.LoadConfig(name); err != nil {
			return fmt.Errorf("setup %q: %w", name, err)
		}
	}

	state := engine.InitGameStateFromConfig(setup)
	fmt.Fprintf(w, "%s: %s\n\n", setup.Name, setup.Description)
	renderBoard(w, &state.Board)
	fmt.Fprintf(w, "\n%s to move\nFEN: %s\n", state.SideToMove, state.Board.Encode(state.SideToMove))
	return nil
}

// parseMoveInput accepts "e2 e4", "e2-e4" and "e2e4"
func parseMoveInput(line string) (from, to string, ok bool) {
	s := strings.ToLower(strings.NewReplacer(" ", "", "-", "", "\t", "").Replace(line))
	if len(s) != 4 {
		return "", "", false
	}
	if _, valid := engine.ParseSquare(s[:2]); !valid {
		return "", "", false
	}
	if _, valid := engine.ParseSquare(s[2:]); !valid {
		return "", "", false
	}
	return s[:2], s[2:], true
}

const playHelp = `Commands:
  e2 e4      move a piece (also e2e4 or e2-e4)
  board      show the board
  blast f7   show what a capture on f7 would destroy
  history    list the moves so far
  reset      start over
  quit       leave`

// runPlay runs a two-player game reading moves from in
func runPlay(ctx context.Context, gameService service.GameService, setup string, in io.Reader, out io.Writer) error {
	info, err := gameService.CreateSession(ctx, setup)
	if err != nil {
		return err
	}

	state := info.GameState
	fmt.Fprintf(out, "Session %s (%s)\n", info.ID, info.ConfigName)
	if state.Message != "" {
		fmt.Fprintln(out, state.Message)
	}
	fmt.Fprintln(out, playHelp)
	fmt.Fprintln(out)
	renderBoard(out, &state.Board)

	scanner := bufio.NewScanner(in)
	for {
		if ctx.Err() != nil {
			return nil
		}
		if state.Status == engine.InProgress {
			fmt.Fprintf(out, "%s> ", state.SideToMove)
		} else {
			fmt.Fprint(out, "> ")
		}
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		line := strings.TrimSpace(scanner.Text())
		fields := strings.Fields(line)
		switch {
		case line == "":
			continue
		case line == "quit" || line == "exit":
			return nil
		case line == "help":
			fmt.Fprintln(out, playHelp)
		case line == "board":
			renderBoard(out, &state.Board)
		case line == "reset":
			if state, err = gameService.Reset(ctx, info.ID); err != nil {
				return err
			}
			renderBoard(out, &state.Board)
		case line == "history":
			history, err := gameService.GetMoveHistory(ctx, info.ID, service.HistoryOptions{Page: 1, Limit: 1000, Order: "asc"})
			if err != nil {
				return err
			}
			for _, m := range history.Moves {
				fmt.Fprintf(out, "%d. %s %c %s-%s\n", m.MoveNumber, m.Side, m.Piece.Letter(), m.From, m.To)
			}
		case len(fields) == 2 && fields[0] == "blast":
			report, err := gameService.DescribeSquare(ctx, info.ID, strings.ToLower(fields[1]))
			if err != nil {
				fmt.Fprintln(out, err)
				continue
			}
			for _, d := range report.Doomed {
				highlight.Fprintf(out, "  %s on %s\n", d.Piece, d.Square)
			}
			if len(report.Doomed) == 0 {
				fmt.Fprintln(out, "  nothing besides the capturing piece")
			}
		default:
			from, to, ok := parseMoveInput(line)
			if !ok {
				fmt.Fprintf(out, "Cannot read %q, type help for commands\n", line)
				continue
			}
			result, err := gameService.Move(ctx, info.ID, from, to, false)
			if err != nil {
				return err
			}
			state = result.GameState
			if !result.Success {
				fmt.Fprintf(out, "Illegal move: %s\n", result.Reason)
				continue
			}
			renderBoard(out, &state.Board)
			if result.Step != nil && len(result.Step.Casualties) > 0 {
				highlight.Fprintf(out, "💥 %d pieces destroyed\n", len(result.Step.Casualties))
			}
			if state.Status != engine.InProgress {
				fmt.Fprintf(out, "%s\n", state.Message)
			}
		}
	}
}
