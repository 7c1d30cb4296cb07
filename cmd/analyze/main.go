// Command analyze prints quick, human-readable heuristics about the setup
// files in a configs directory: material, how exposed each king is to a
// blast, and which captures are available to the side to move together with
// what each detonation would destroy.
package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"

	"github.com/wricardo/atomic-chess/game/engine"
)

// KingReport is the blast exposure of one side's king
type KingReport struct {
	Side     engine.Side
	Square   engine.Square
	Exposure int
	Safety   string
}

// CaptureReport is one capture available to the side to move
type CaptureReport struct {
	From, To   engine.Square
	Piece      engine.Piece
	Casualties []engine.Casualty
	Status     engine.Status
}

// Analysis summarizes a setup
type Analysis struct {
	Name       string
	SideToMove engine.Side
	Material   map[engine.Side]int
	Kings      []KingReport
	LegalMoves int
	Captures   []CaptureReport
}

func main() {
	configDir := "configs"
	if dir := os.Getenv("CONFIG_DIR"); dir != "" {
		configDir = dir
	}
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil || len(files) == 0 {
		fmt.Printf("No setup files found in %s\n", configDir)
		os.Exit(1)
	}

	for _, file := range files {
		fmt.Printf("\n=== Analyzing %s ===\n", filepath.Base(file))
		analysis, err := analyzeConfig(file)
		if err != nil {
			fmt.Printf("Error: %v\n", err)
			continue
		}
		printAnalysis(os.Stdout, analysis)
	}
}

func analyzeConfig(path string) (*Analysis, error) {
	config, err := engine.LoadGameConfig(path)
	if err != nil {
		return nil, err
	}
	return analyzeState(config.Name, engine.InitGameStateFromConfig(config)), nil
}

func analyzeState(name string, state *engine.GameState) *Analysis {
	a := &Analysis{
		Name:       name,
		SideToMove: state.SideToMove,
		Material: map[engine.Side]int{
			engine.White: engine.Material(&state.Board, engine.White),
			engine.Black: engine.Material(&state.Board, engine.Black),
		},
	}

	for _, side := range []engine.Side{engine.White, engine.Black} {
		sq, ok := engine.KingSquare(&state.Board, side)
		if !ok {
			continue
		}
		a.Kings = append(a.Kings, KingReport{
			Side:     side,
			Square:   sq,
			Exposure: engine.KingExposure(&state.Board, side),
			Safety:   engine.AnalyzeKingSafety(state, side),
		})
	}

	for from := engine.Square(0); from < engine.NumSquares; from++ {
		for to := engine.Square(0); to < engine.NumSquares; to++ {
			if state.CheckMove(from, to) != nil {
				continue
			}
			a.LegalMoves++

			if _, occupied := state.Board.Get(to); !occupied {
				continue
			}
			pc, _ := state.Board.Get(from)
			trial := &engine.GameState{Board: state.Board, SideToMove: state.SideToMove, Status: engine.InProgress}
			det, err := trial.ApplyMove(from, to, nil)
			if err != nil || det == nil {
				continue
			}
			a.Captures = append(a.Captures, CaptureReport{
				From:       from,
				To:         to,
				Piece:      pc,
				Casualties: det.Casualties,
				Status:     trial.Status,
			})
		}
	}

	// game-ending captures first, then the biggest blasts
	sort.SliceStable(a.Captures, func(i, j int) bool {
		wi, wj := a.Captures[i].Status != engine.InProgress, a.Captures[j].Status != engine.InProgress
		if wi != wj {
			return wi
		}
		return len(a.Captures[i].Casualties) > len(a.Captures[j].Casualties)
	})
	return a
}

func printAnalysis(w io.Writer, a *Analysis) {
	fmt.Fprintf(w, "Name: %s\n", a.Name)
	fmt.Fprintf(w, "Side to move: %s\n", a.SideToMove)
	fmt.Fprintf(w, "Material: white %d, black %d\n", a.Material[engine.White], a.Material[engine.Black])
	fmt.Fprintf(w, "Legal moves: %d\n", a.LegalMoves)

	for _, k := range a.Kings {
		fmt.Fprintf(w, "%s king on %s: %d detonation targets around it (%s)\n", k.Side, k.Square, k.Exposure, k.Safety)
	}

	if len(a.Captures) == 0 {
		fmt.Fprintf(w, "✅ No captures available to %s\n", a.SideToMove)
		return
	}

	fmt.Fprintf(w, "Captures available to %s: %d\n", a.SideToMove, len(a.Captures))
	for i, c := range a.Captures {
		if i == 5 {
			fmt.Fprintf(w, "   ... and %d more\n", len(a.Captures)-5)
			break
		}
		marker := "  "
		if c.Status != engine.InProgress {
			marker = "⚠️"
		}
		fmt.Fprintf(w, "%s %c %s-%s destroys %d pieces -> %s\n", marker, c.Piece.Letter(), c.From, c.To, len(c.Casualties), c.Status)
	}
}
