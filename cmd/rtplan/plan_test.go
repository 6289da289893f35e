package main

import (
	"strings"
	"testing"
)

func TestPlannerRun(t *testing.T) {
	ff, err := loadFrameFile("testdata/shadows.toml")
	if err != nil {
		t.Fatalf("loadFrameFile() error = %v", err)
	}

	var out strings.Builder
	if err := newPlanner(ff, &out, true).run(); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	got := out.String()

	for _, want := range []string{
		// Both shadows are rendered in the first frame.
		"frame 1: 13 tasks, 2 cached, 8 passes\n",
		// The second frame reuses the first shadow.
		"frame 2: 2 tasks, 0 cached, 2 passes\n",
		// The second shadow was evicted while its mask was hidden.
		"frame 3: 7 tasks, 1 cached, 6 passes\n",
		"CacheMask with 2 clips",
		"HorizontalBlur",
		"(MainFramebuffer)",
		"texture 1 layer 0",
		"task data: 13 rows, 416 bytes",
		"TextureStore[",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("output does not contain %q:\n%s", want, got)
		}
	}
}

func TestPlannerEmptyFrame(t *testing.T) {
	ff, err := parseFrameFile("frames = 1\n")
	if err != nil {
		t.Fatalf("parseFrameFile() error = %v", err)
	}

	var out strings.Builder
	if err := newPlanner(ff, &out, false).run(); err != nil {
		t.Fatalf("run() error = %v", err)
	}
	if got := out.String(); !strings.HasPrefix(got, "frame 1: 1 tasks, 0 cached, 1 passes\n") {
		t.Errorf("output = %q", got)
	}
	if strings.Contains(out.String(), "task data") {
		t.Error("task data printed without -data")
	}
}
