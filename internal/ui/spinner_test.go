package ui

import (
	"bytes"
	"strings"
	"sync"
	"testing"
	"time"
)

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestSpinner(t *testing.T) {
	var out syncBuffer
	s := NewSpinnerTo(&out)

	s.Start("Scraping burgers (1/10)...")
	time.Sleep(3 * tickInterval)
	s.Update("Scraping drinks (2/10)...")
	time.Sleep(3 * tickInterval)
	s.Stop()

	got := out.String()
	if !strings.Contains(got, "Scraping burgers (1/10)...") {
		t.Errorf("first message never drawn: %q", got)
	}
	if !strings.Contains(got, "Scraping drinks (2/10)...") {
		t.Errorf("updated message never drawn: %q", got)
	}
	if !strings.HasSuffix(got, "\r\033[K") {
		t.Errorf("line not cleared last: %q", got)
	}

	drawn := len(got)
	time.Sleep(2 * tickInterval)
	if len(out.String()) != drawn {
		t.Error("spinner kept drawing after Stop")
	}
}

func TestSpinnerStopIdle(t *testing.T) {
	var out syncBuffer
	s := NewSpinnerTo(&out)
	s.Stop()
	if out.String() != "" {
		t.Errorf("idle Stop wrote %q", out.String())
	}
}
