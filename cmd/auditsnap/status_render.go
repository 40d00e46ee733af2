package main

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/mattn/go-isatty"

	"auditsnap/internal/status"
)

const (
	ansiReset  = "\x1b[0m"
	ansiRed    = "\x1b[31m"
	ansiYellow = "\x1b[33m"
)

// statusPrinter writes status entries to a terminal or pipe.
type statusPrinter struct {
	mu       sync.Mutex
	out      io.Writer
	colorize bool
}

func newStatusPrinter(out io.Writer) *statusPrinter {
	return &statusPrinter{out: out, colorize: shouldColorize(out)}
}

func (p *statusPrinter) sink(entry status.Entry) {
	p.mu.Lock()
	defer p.mu.Unlock()
	fmt.Fprintln(p.out, renderStatusEntry(entry, p.colorize))
}

func renderStatusEntry(entry status.Entry, colorize bool) string {
	line := entry.String()
	if !colorize {
		return line
	}
	switch entry.Level {
	case status.LevelError:
		return ansiRed + line + ansiReset
	case status.LevelWarn:
		return ansiYellow + line + ansiReset
	default:
		return line
	}
}

func shouldColorize(writer io.Writer) bool {
	file, ok := writer.(*os.File)
	if !ok {
		return false
	}
	fd := file.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
