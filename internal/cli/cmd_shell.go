package cli

import (
	"bufio"
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/natefinch/atomic"
	"github.com/peterh/liner"
	flag "github.com/spf13/pflag"

	"github.com/calvinalkan/shelter/internal/schema"
)

var errUnterminatedQuote = errors.New("unterminated quote")

// HistoryFileName is stored next to the database file.
const HistoryFileName = "history"

const shellPrompt = "shelter> "

func (a *app) shellCmd() *Command {
	return &Command{
		Flags: flag.NewFlagSet("shell", flag.ContinueOnError),
		Usage: "shell",
		Short: "Run commands interactively",
		Long: "Read commands line by line and run them against the same database.\n" +
			"Arguments may be quoted. Type 'help' for commands, 'exit' to leave.",
		Exec: func(ctx context.Context, o *IO, _ []string) error {
			return a.runShell(ctx, o)
		},
	}
}

// lineReader is the part of *liner.State the shell loop uses.
type lineReader interface {
	Prompt(prompt string) (string, error)
	AppendHistory(item string)
	Close() error
}

// scanReader reads commands from a non-interactive input.
type scanReader struct {
	sc *bufio.Scanner
}

func (r *scanReader) Prompt(string) (string, error) {
	if r.sc.Scan() {
		return r.sc.Text(), nil
	}

	if err := r.sc.Err(); err != nil {
		return "", err
	}

	return "", io.EOF
}

func (r *scanReader) AppendHistory(string) {}

func (r *scanReader) Close() error { return nil }

// newLineReader uses liner with history when reading the process stdin,
// and a plain scanner for anything else.
func (a *app) newLineReader() lineReader {
	if f, ok := a.in.(*os.File); !ok || f != os.Stdin {
		return &scanReader{sc: bufio.NewScanner(a.in)}
	}

	l := liner.NewLiner()
	l.SetCtrlCAborts(true)
	l.SetCompleter(a.complete)

	if f, err := os.Open(a.historyPath()); err == nil {
		_, _ = l.ReadHistory(f)
		_ = f.Close()
	}

	return l
}

func (a *app) historyPath() string {
	return filepath.Join(filepath.Dir(a.cfg.DBPathAbs), HistoryFileName)
}

// saveHistory replaces the history file atomically.
func (a *app) saveHistory(r lineReader) {
	l, ok := r.(*liner.State)
	if !ok {
		return
	}

	var buf bytes.Buffer

	_, err := l.WriteHistory(&buf)
	if err == nil {
		err = os.MkdirAll(filepath.Dir(a.historyPath()), 0o755)
	}

	if err == nil {
		err = atomic.WriteFile(a.historyPath(), &buf)
	}

	if err != nil {
		a.logger.Warn("saving shell history", "path", a.historyPath(), "err", err)
	}
}

func (a *app) runShell(ctx context.Context, o *IO) error {
	r := a.newLineReader()
	defer func() { _ = r.Close() }()
	defer a.saveHistory(r)

	o.Printf("shelter shell (db=%s, authority=%s)\n", a.cfg.DBPathAbs, a.cfg.Authority)
	o.Println("Type 'help' for available commands.")

	for ctx.Err() == nil {
		line, err := r.Prompt(shellPrompt)
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) || errors.Is(err, io.EOF) {
				return nil
			}

			return fmt.Errorf("reading input: %w", err)
		}

		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		r.AppendHistory(line)

		args, err := splitLine(line)
		if err != nil {
			o.ErrPrintln("error:", err)

			continue
		}

		switch args[0] {
		case "exit", "quit", "q":
			return nil
		case "help", "?":
			a.printShellHelp(o)

			continue
		case "shell":
			o.ErrPrintln("error: already in a shell")

			continue
		}

		_ = a.dispatch(ctx, args)
	}

	return ctx.Err()
}

func (a *app) printShellHelp(o *IO) {
	o.Println("Commands:")

	for _, c := range a.commands() {
		if c.Name() == "shell" {
			continue
		}

		o.Println(c.HelpLine())
	}

	o.Println("  help                               Show this help")
	o.Println("  exit                               Leave the shell")
}

// complete offers command names for the first word and collection paths
// for the second.
func (a *app) complete(line string) []string {
	words := strings.Fields(line)
	trailingSpace := strings.HasSuffix(line, " ")

	var candidates []string

	switch {
	case len(words) == 0 || (len(words) == 1 && !trailingSpace):
		for _, c := range a.commands() {
			if c.Name() != "shell" {
				candidates = append(candidates, c.Name())
			}
		}

		candidates = append(candidates, "help", "exit")
	case len(words) == 1 || (len(words) == 2 && !trailingSpace):
		candidates = []string{schema.PathPets, a.router.URI(schema.PathPets)}
	default:
		return nil
	}

	prefix := ""
	head := ""

	if len(words) > 0 && !trailingSpace {
		prefix = words[len(words)-1]
		head = strings.TrimSuffix(line, prefix)
	} else {
		head = line
	}

	var out []string

	for _, c := range candidates {
		if strings.HasPrefix(c, prefix) {
			out = append(out, head+c)
		}
	}

	slices.Sort(out)

	return out
}

// splitLine splits a shell line into words. Single and double quotes group
// words; quotes are removed.
func splitLine(line string) ([]string, error) {
	var (
		words   []string
		current strings.Builder
		quote   rune
		inWord  bool
	)

	for _, r := range line {
		switch {
		case quote != 0:
			if r == quote {
				quote = 0
			} else {
				current.WriteRune(r)
			}
		case r == '\'' || r == '"':
			quote = r
			inWord = true
		case r == ' ' || r == '\t':
			if inWord {
				words = append(words, current.String())
				current.Reset()

				inWord = false
			}
		default:
			current.WriteRune(r)

			inWord = true
		}
	}

	if quote != 0 {
		return nil, errUnterminatedQuote
	}

	if inWord {
		words = append(words, current.String())
	}

	return words, nil
}
