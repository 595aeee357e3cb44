package plan

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"runtime"
	"strings"
)

const (
	InputSQL  = "sql"
	InputJSON = "json"
)

// Input is what the user handed us: either query text that still needs a
// plan, or plan rows captured earlier.
type Input struct {
	Kind  string
	Query string
	Rows  []PlanRow
}

func Resolve(input string, label string) (Input, error) {
	data, err := readInput(input, label)
	if err != nil {
		return Input{}, err
	}

	switch detectType(data, input) {
	case InputJSON:
		rows, err := ParseJSONRows(data)
		if err != nil {
			return Input{}, err
		}
		return Input{Kind: InputJSON, Rows: rows}, nil
	case InputSQL:
		query := strings.TrimSpace(string(data))
		if query == "" {
			return Input{}, fmt.Errorf("no query found in %sinput", label)
		}
		if strings.HasPrefix(strings.ToUpper(query), "EXPLAIN") {
			return Input{}, ErrExplainPrefix
		}
		return Input{Kind: InputSQL, Query: query}, nil
	case "text":
		return Input{}, errors.New(`text format not supported - provide the raw SQL query with a connection,
or the plan as JSON:

MySQL:      EXPLAIN rows exported as a JSON array (one object per row)
PostgreSQL: EXPLAIN (FORMAT JSON) <your query>`)
	default:
		return Input{}, fmt.Errorf("unable to detect %sinput type: expected SQL query, JSON plan rows, or .sql/.json file", label)
	}
}

// ReadQuery loads a companion SQL file for plan-only input.
func ReadQuery(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(string(data)), nil
}

func readInput(input string, label string) ([]byte, error) {
	switch input {
	case "":
		return readInteractive(label)
	case "-":
		return io.ReadAll(os.Stdin)
	default:
		return os.ReadFile(input)
	}
}

func readInteractive(label string) ([]byte, error) {
	fmt.Printf("Paste %sSQL query or EXPLAIN rows as JSON", label)
	if runtime.GOOS == "windows" {
		fmt.Print(" (Ctrl+Z, Enter to submit)\n")
	} else {
		fmt.Print(" (Ctrl+D to submit)\n")
	}

	data, err := io.ReadAll(os.Stdin)
	if err != nil {
		return nil, err
	}

	trimmed := strings.TrimSpace(string(data))

	if (strings.HasPrefix(trimmed, "[") ||
		strings.HasPrefix(trimmed, "{")) &&
		!json.Valid(data) {
		return nil, fmt.Errorf("input appears truncated; for large inputs use: myplan analyze <file>")
	}

	return data, nil
}

func detectType(data []byte, filename string) string {
	if strings.HasSuffix(filename, ".json") {
		return InputJSON
	}
	if strings.HasSuffix(filename, ".sql") {
		return InputSQL
	}
	if strings.HasSuffix(filename, ".txt") {
		return "text"
	}

	trimmed := strings.TrimSpace(string(data))

	if strings.HasPrefix(trimmed, "[") || strings.HasPrefix(trimmed, "{") {
		return InputJSON
	}

	if strings.Contains(trimmed, "(cost=") || strings.HasPrefix(trimmed, "+--") || strings.HasPrefix(trimmed, "-> ") {
		return "text"
	}

	upper := strings.ToUpper(trimmed)
	for _, prefix := range []string{"SELECT", "WITH", "INSERT", "UPDATE", "DELETE", "REPLACE", "TABLE", "EXPLAIN", "("} {
		if strings.HasPrefix(upper, prefix) {
			return InputSQL
		}
	}

	return "unknown"
}
