package status

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"
)

func TestEntryString(t *testing.T) {
	e := Entry{Time: time.Date(2024, 5, 1, 9, 7, 3, 0, time.Local), Message: "Moved: shot.png"}
	if got := e.String(); got != "[09:07:03] Moved: shot.png" {
		t.Fatalf("unexpected rendering %q", got)
	}
}

func TestLogDrainPreservesOrder(t *testing.T) {
	log := NewLog(10, nil)
	log.Infof("one")
	log.Warnf("two")
	log.Errorf("three %d", 3)

	got := log.Drain()
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	want := []string{"one", "two", "three 3"}
	for i, e := range got {
		if e.Message != want[i] {
			t.Fatalf("entry %d = %q, want %q", i, e.Message, want[i])
		}
	}
	if got[1].Level != LevelWarn || got[2].Level != LevelError {
		t.Fatalf("unexpected levels %v %v", got[1].Level, got[2].Level)
	}
	if again := log.Drain(); again != nil {
		t.Fatalf("expected empty drain, got %v", again)
	}
}

func TestLogTrimsOldestPending(t *testing.T) {
	log := NewLog(3, nil)
	for i := 0; i < 5; i++ {
		log.Infof("line %d", i)
	}
	got := log.Drain()
	if len(got) != 3 || got[0].Message != "line 2" || got[2].Message != "line 4" {
		t.Fatalf("unexpected pending after trim: %v", got)
	}
}

func TestViewCapsLines(t *testing.T) {
	view := NewView(2)
	view.Append(Entry{Message: "a"}, Entry{Message: "b"}, Entry{Message: "c"})
	lines := view.Lines()
	if len(lines) != 2 || lines[0].Message != "b" || lines[1].Message != "c" {
		t.Fatalf("unexpected lines %v", lines)
	}
	last, ok := view.Last()
	if !ok || last.Message != "c" {
		t.Fatalf("unexpected last %v %v", last, ok)
	}
}

func TestRefresherFansOutToSinks(t *testing.T) {
	log := NewLog(0, nil)
	view := NewView(0)
	r := NewRefresher(log, view, 5*time.Millisecond)

	var mu sync.Mutex
	var seen []string
	r.AddSink(func(e Entry) {
		mu.Lock()
		seen = append(seen, e.Message)
		mu.Unlock()
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		r.Run(ctx)
		close(done)
	}()

	for i := 0; i < 4; i++ {
		log.Infof("msg %d", i)
	}

	deadline := time.Now().Add(2 * time.Second)
	for {
		mu.Lock()
		n := len(seen)
		mu.Unlock()
		if n == 4 {
			break
		}
		if time.Now().After(deadline) {
			t.Fatalf("sinks saw %d entries", n)
		}
		time.Sleep(5 * time.Millisecond)
	}
	cancel()
	<-done

	mu.Lock()
	defer mu.Unlock()
	if strings.Join(seen, ",") != "msg 0,msg 1,msg 2,msg 3" {
		t.Fatalf("unexpected sink order %v", seen)
	}
	if len(view.Lines()) != 4 {
		t.Fatalf("view holds %d lines", len(view.Lines()))
	}
}

func TestRefresherFinalFlushOnShutdown(t *testing.T) {
	log := NewLog(0, nil)
	view := NewView(0)
	r := NewRefresher(log, view, time.Hour)

	ctx, cancel := context.WithCancel(context.Background())
	for i := 0; i < 3; i++ {
		log.Push(LevelInfo, fmt.Sprint(i))
	}
	cancel()
	r.Run(ctx)

	if len(view.Lines()) != 3 {
		t.Fatalf("expected final flush of 3 entries, got %d", len(view.Lines()))
	}
}

func TestLogMirrorsEntriesAtDebugOnly(t *testing.T) {
	var buf bytes.Buffer
	lvl := new(slog.LevelVar)
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: lvl}))
	log := NewLog(10, logger)

	log.Infof("Moved: a.png")
	log.Errorf("Error moving file: boom")
	if buf.Len() != 0 {
		t.Fatalf("status lines should not reach an info-level logger: %q", buf.String())
	}

	lvl.Set(slog.LevelDebug)
	log.Warnf("Skipped (file still locked): b.png")
	out := buf.String()
	if !strings.Contains(out, "level=DEBUG") || !strings.Contains(out, "status=warn") || !strings.Contains(out, "b.png") {
		t.Fatalf("unexpected mirror output %q", out)
	}
}
