// Command validate checks the setup JSON files in a config directory
// (default ../configs). It checks:
//   - JSON structure and required fields
//   - The FEN decodes and leaves exactly one king per side
//   - Required message keys
//   - Playability hints: pawns on a back rank, kings already touching,
//     a side with no legal first move
package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/wricardo/atomic-chess/game/engine"
)

// ValidationResult captures the outcome of validating a single file.
// Errors make the file invalid; Info holds warnings and a summary.
type ValidationResult struct {
	File   string
	Valid  bool
	Errors []string
	Info   []string
}

func (r *ValidationResult) fail(format string, args ...interface{}) {
	r.Valid = false
	r.Errors = append(r.Errors, fmt.Sprintf(format, args...))
}

func (r *ValidationResult) note(format string, args ...interface{}) {
	r.Info = append(r.Info, fmt.Sprintf(format, args...))
}

// setupFile mirrors the JSON schema of a setup with messages as a map, so
// missing keys can be told apart from empty ones
type setupFile struct {
	Name        string            `json:"name"`
	Description string            `json:"description"`
	FEN         string            `json:"fen"`
	Messages    map[string]string `json:"messages"`
}

var requiredMessages = []string{"welcome", "white_won", "black_won"}

// validateConfig loads and validates a single setup file
func validateConfig(filePath string) ValidationResult {
	result := ValidationResult{
		File:   filepath.Base(filePath),
		Valid:  true,
		Errors: []string{},
	}

	data, err := os.ReadFile(filePath)
	if err != nil {
		result.fail("Failed to read file: %v", err)
		return result
	}

	var setup setupFile
	if err := json.Unmarshal(data, &setup); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}

	var config engine.GameConfig
	if err := json.Unmarshal(data, &config); err != nil {
		result.fail("Invalid JSON: %v", err)
		return result
	}
	if err := engine.ValidateGameConfig(&config); err != nil {
		result.fail("%s", strings.TrimPrefix(err.Error(), "config validation: "))
	}

	for _, msg := range requiredMessages {
		if _, exists := setup.Messages[msg]; !exists {
			result.fail("Missing required message: %s", msg)
		}
	}

	if !result.Valid {
		return result
	}

	board, side, _ := engine.BoardFromFEN(config.FEN)
	checkPlayability(&result, board, side)

	result.note("Name: %s", config.Name)
	result.note("Side to move: %s", side)
	result.note("Pieces: white %d, black %d", board.Count(engine.White), board.Count(engine.Black))
	result.note("Material: white %d, black %d", engine.Material(&board, engine.White), engine.Material(&board, engine.Black))
	return result
}

// checkPlayability adds warnings for setups that are legal but odd
func checkPlayability(result *ValidationResult, board engine.Board, side engine.Side) {
	for file := 0; file < engine.Files; file++ {
		for _, rank := range []int{0, engine.Ranks - 1} {
			sq := engine.SquareAt(file, rank)
			if pc, ok := board.Get(sq); ok && pc.Kind == engine.Pawn {
				result.note("⚠ %s pawn on %s can never move (no promotion)", pc.Side, sq)
			}
		}
	}

	if engine.KingsAdjacent(&board) {
		result.note("⚠ Kings start adjacent: a blast next to both ends the game for Black")
	}

	state := &engine.GameState{Board: board, SideToMove: side, Status: engine.InProgress}
	if countLegalMoves(state) == 0 {
		result.note("⚠ %s has no legal move in the starting position", side)
	}
}

func countLegalMoves(state *engine.GameState) int {
	n := 0
	for from := engine.Square(0); from < engine.NumSquares; from++ {
		pc, ok := state.Board.Get(from)
		if !ok || pc.Side != state.SideToMove {
			continue
		}
		for to := engine.Square(0); to < engine.NumSquares; to++ {
			if state.CheckMove(from, to) == nil {
				n++
			}
		}
	}
	return n
}

// main validates every *.json file in the directory given as the first
// argument, printing a report and exiting non-zero if any are invalid
func main() {
	configDir := "../configs"
	if len(os.Args) > 1 {
		configDir = os.Args[1]
	}

	files, err := filepath.Glob(filepath.Join(configDir, "*.json"))
	if err != nil {
		fmt.Printf("Error finding config files: %v\n", err)
		os.Exit(1)
	}
	if len(files) == 0 {
		fmt.Printf("No setup files found in %s\n", configDir)
		os.Exit(1)
	}

	ok := color.New(color.FgGreen, color.Bold).SprintFunc()
	bad := color.New(color.FgRed, color.Bold).SprintFunc()
	warn := color.New(color.FgYellow).SprintFunc()

	allValid := true
	for _, file := range files {
		result := validateConfig(file)

		fmt.Printf("\n%s %s\n", strings.Repeat("=", 20), result.File)

		if result.Valid {
			fmt.Println(ok("✅ VALID"))
			for _, info := range result.Info {
				if strings.HasPrefix(info, "⚠") {
					fmt.Println("  " + warn(info))
				} else {
					fmt.Println("  ✓ " + info)
				}
			}
		} else {
			fmt.Println(bad("❌ INVALID"))
			allValid = false
			for _, err := range result.Errors {
				fmt.Println("  ❌ " + err)
			}
		}
	}

	fmt.Printf("\n%s\n", strings.Repeat("=", 40))
	if allValid {
		fmt.Println(ok("✅ All setups are valid!"))
	} else {
		fmt.Println(bad("❌ Some setups have errors"))
		os.Exit(1)
	}
}
