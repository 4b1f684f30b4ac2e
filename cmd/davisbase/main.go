// Command davisbase is the interactive REPL of spec.md §6.3: a
// line-edited prompt over one open database directory, talking
// in-process to a *catalog.Database via the SQL executor. There is no
// network interface — the teacher's TCP client/server pair is dropped
// along with it (spec.md §1 non-goal (e)).
package main

import (
	"bufio"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/chzyer/readline"

	"github.com/dvdb/davisbase/internal"
	"github.com/dvdb/davisbase/internal/catalog"
	"github.com/dvdb/davisbase/internal/sql/executor"
)

// ---- History (own file, teacher's append-and-preload shape) ----

type History struct {
	path  string
	lines []string
}

func NewHistory(path string) *History { return &History{path: path} }

func (h *History) Load(max int) error {
	if h.path == "" {
		return nil
	}
	f, err := os.Open(h.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	defer func() { _ = f.Close() }()

	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s == "" {
			continue
		}
		h.lines = append(h.lines, s)
		if max > 0 && len(h.lines) > max {
			h.lines = h.lines[len(h.lines)-max:]
		}
	}
	return sc.Err()
}

func (h *History) Append(stmt string) error {
	stmt = compactOneLine(strings.TrimSpace(stmt))
	if stmt == "" || h.path == "" {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(h.path), 0o755); err != nil {
		return err
	}
	f, err := os.OpenFile(h.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return err
	}
	defer func() { _ = f.Close() }()
	if _, err := fmt.Fprintln(f, stmt); err != nil {
		return err
	}
	h.lines = append(h.lines, stmt)
	return nil
}

func compactOneLine(s string) string {
	s = strings.ReplaceAll(s, "\r\n", " ")
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "\t", " ")
	s = strings.TrimSpace(s)

	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if r == ' ' {
			if !space {
				b.WriteByte(' ')
				space = true
			}
			continue
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

// ---- statement accumulation ----

// statementComplete reports whether buf has a terminating ';' outside
// a quoted string.
func statementComplete(buf string) bool {
	inQuote := false
	quoteCh := byte(0)
	escaped := false

	for i := 0; i < len(buf); i++ {
		c := buf[i]
		if escaped {
			escaped = false
			continue
		}
		if c == '\\' {
			escaped = true
			continue
		}
		if inQuote {
			if c == quoteCh {
				inQuote = false
			}
			continue
		}
		switch c {
		case '\'', '"':
			inQuote = true
			quoteCh = c
		case ';':
			return true
		}
	}
	return false
}

func isMetaCommand(line string) bool {
	line = strings.TrimSpace(line)
	return strings.HasPrefix(line, "\\") || line == "quit" || line == "exit"
}

// printResult renders a Result the way spec.md §6.4 requires: SELECT
// prints a `rowid|col1|col2|...` header then one `row_id|v|v|...` line
// per row; SHOW TABLES prints one bare table name per line with no
// header and no row-id, since it never carries row-ids; every other
// statement prints an affected row count.
func printResult(stmt string, res *executor.Result) {
	if res.Columns == nil && res.RowIDs == nil {
		// SHOW TABLES: bare table names, one per line, no header.
		if len(res.Rows) > 0 && isShowTables(stmt) {
			for _, row := range res.Rows {
				fmt.Println(row[0].Render())
			}
			return
		}
		fmt.Printf("OK (%d affected)\n", res.AffectedRows)
		return
	}

	fmt.Print("rowid")
	for _, c := range res.Columns {
		fmt.Print("|", c)
	}
	fmt.Println()

	for i, row := range res.Rows {
		fmt.Print(res.RowIDs[i])
		for _, v := range row {
			fmt.Print("|", v.Render())
		}
		fmt.Println()
	}
}

func isShowTables(stmt string) bool {
	return strings.HasPrefix(strings.ToUpper(strings.TrimSpace(stmt)), "SHOW")
}

func defaultHistoryPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ".davisbase_history"
	}
	return filepath.Join(home, ".davisbase_history")
}

func main() {
	var (
		dir        = flag.String("dir", ".", "database directory")
		configPath = flag.String("config", "", "YAML config file path (optional)")
		histPath   = flag.String("history", defaultHistoryPath(), "history file path")
		histMax    = flag.Int("history-max", 2000, "max history lines loaded into memory")
		oneShotSQL = flag.String("c", "", "execute one SQL statement and exit (must end with ';')")
	)
	flag.Parse()

	pageLength := internal.DefaultPageLength
	if *configPath != "" {
		cfg, err := internal.LoadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
			os.Exit(1)
		}
		if cfg.Storage.Workdir != "" {
			*dir = cfg.Storage.Workdir
		}
		pageLength = cfg.Storage.PageLength
		if cfg.REPL.HistoryPath != "" {
			*histPath = cfg.REPL.HistoryPath
		}
		if cfg.REPL.HistoryMax != 0 {
			*histMax = cfg.REPL.HistoryMax
		}
	}

	db, err := catalog.Open(*dir, pageLength)
	if err != nil {
		// Bootstrap failures are fatal per spec.md §7.
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = db.Close() }()

	e := executor.New(db)

	if strings.TrimSpace(*oneShotSQL) != "" {
		runStatement(e, *oneShotSQL)
		return
	}

	h := NewHistory(*histPath)
	_ = h.Load(*histMax)

	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "davisbase> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = rl.Close() }()

	for _, line := range h.lines {
		_ = rl.SaveHistory(line)
	}

	var buf strings.Builder
	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if buf.Len() > 0 {
				buf.Reset()
				rl.SetPrompt("davisbase> ")
				continue
			}
			continue
		}
		if err != nil {
			return // EOF: exit code 0
		}

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if isMetaCommand(line) {
			return
		}

		if buf.Len() > 0 {
			buf.WriteByte(' ')
		}
		buf.WriteString(line)

		if !statementComplete(buf.String()) {
			rl.SetPrompt("...> ")
			continue
		}

		stmt := strings.TrimSpace(buf.String())
		buf.Reset()
		rl.SetPrompt("davisbase> ")

		_ = h.Append(stmt)
		_ = rl.SaveHistory(compactOneLine(stmt))

		if exitRequested := runStatement(e, stmt); exitRequested {
			return
		}
	}
}

// runStatement executes one statement and reports whether it was EXIT.
func runStatement(e *executor.Executor, stmt string) bool {
	res, err := e.ExecSQL(stmt)
	if err != nil {
		if errors.Is(err, executor.ErrExit) {
			return true
		}
		fmt.Fprintf(os.Stderr, "[ERROR] %v\n", err)
		return false
	}
	printResult(stmt, res)
	return false
}
