package telemetry

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestOutputManager_DisabledIsNil(t *testing.T) {
	om, err := NewOutputManager("", "")
	if err != nil || om != nil {
		t.Fatalf("expected nil manager, got %v, %v", om, err)
	}
	if err := om.WriteTelemetry(WindowStats{}); err != nil {
		t.Errorf("nil WriteTelemetry: %v", err)
	}
	if om.Dir() != "" || om.RunID() != "" {
		t.Error("nil manager should report empty dir and run id")
	}
	if err := om.Close(); err != nil {
		t.Errorf("nil Close: %v", err)
	}
}

func TestOutputManager_WritesHeaderOnce(t *testing.T) {
	base := t.TempDir()
	om, err := NewOutputManager(base, "test-run")
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	if om.Dir() != filepath.Join(base, "test-run") {
		t.Errorf("dir = %q", om.Dir())
	}

	for i := 0; i < 3; i++ {
		if err := om.WriteTelemetry(WindowStats{WindowEndTick: int32(i * 600), Birds: 10}); err != nil {
			t.Fatalf("write: %v", err)
		}
	}
	if err := om.WriteBookmark(Bookmark{Type: BookmarkFeederRush, Tick: 600, Description: "rush"}); err != nil {
		t.Fatalf("bookmark: %v", err)
	}
	if err := om.Close(); err != nil {
		t.Fatalf("close: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(om.Dir(), "telemetry.csv"))
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	if len(lines) != 4 {
		t.Fatalf("expected header + 3 rows, got %d lines", len(lines))
	}
	if !strings.HasPrefix(lines[0], "window_end,sim_time,birds") {
		t.Errorf("unexpected header %q", lines[0])
	}

	bm, err := os.ReadFile(filepath.Join(om.Dir(), "bookmarks.csv"))
	if err != nil {
		t.Fatalf("read bookmarks: %v", err)
	}
	if !strings.Contains(string(bm), "feeder_rush") {
		t.Errorf("bookmark not written: %q", bm)
	}
}

func TestNewRunID_Unique(t *testing.T) {
	a, b := NewRunID(), NewRunID()
	if a == b || len(a) != 36 {
		t.Errorf("run ids should be distinct uuids: %q %q", a, b)
	}
}
