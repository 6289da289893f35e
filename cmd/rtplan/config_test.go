package main

import (
	"errors"
	"strings"
	"testing"

	"github.com/gogpu/rendertask"
)

func TestLoadFrameFile(t *testing.T) {
	ff, err := loadFrameFile("testdata/shadows.toml")
	if err != nil {
		t.Fatalf("loadFrameFile() error = %v", err)
	}

	if ff.Frames != 3 {
		t.Errorf("Frames = %d, want 3", ff.Frames)
	}
	if ff.screenSize() != (rendertask.Size{Width: 800, Height: 600}) {
		t.Errorf("screenSize() = %v, want 800x600", ff.screenSize())
	}
	if ff.DevicePixelScale != 1 {
		t.Errorf("DevicePixelScale = %v, want default 1", ff.DevicePixelScale)
	}
	if len(ff.Masks) != 2 {
		t.Fatalf("len(Masks) = %d, want 2", len(ff.Masks))
	}
	if got := ff.Masks[1].rect(); got != rendertask.NewRect(200, 0, 64, 64) {
		t.Errorf("mask 1 rect = %v, want (200,0) 64x64", got)
	}
	if ff.Masks[1].inFrame(2) || !ff.Masks[1].inFrame(3) {
		t.Error("mask 1 should be skipped in frame 2 only")
	}

	clips := ff.Masks[0].Clips
	if len(clips) != 2 {
		t.Fatalf("mask 0 has %d clips, want 2", len(clips))
	}
	item, err := clips[1].item()
	if err != nil {
		t.Fatalf("item() error = %v", err)
	}
	shadow, ok := item.(*rendertask.ClipBoxShadow)
	if !ok {
		t.Fatalf("item() = %T, want *ClipBoxShadow", item)
	}
	if shadow.CacheSize != (rendertask.Size{Width: 40, Height: 40}) || shadow.Mode != rendertask.ClipModeClipOut {
		t.Errorf("shadow = %+v, want 40x40 ClipOut", shadow)
	}
	if shadow.CacheKey == nil || shadow.CacheKey.BlurRadiusDP != 20 || shadow.CacheKey.TopLeft.Width != 4 {
		t.Errorf("CacheKey = %+v, want blur radius 20 and corner 4", shadow.CacheKey)
	}
}

func TestParseFrameFileDefaults(t *testing.T) {
	ff, err := parseFrameFile("")
	if err != nil {
		t.Fatalf("parseFrameFile() error = %v", err)
	}
	if ff.Frames != 2 || len(ff.Masks) != 0 {
		t.Errorf("frames = %d, masks = %d, want 2, 0", ff.Frames, len(ff.Masks))
	}
	cfg := ff.config()
	if cfg.CacheEviction != rendertask.EvictionEager || cfg.GPUSupportsFastClears {
		t.Errorf("config() = %+v, want eager eviction without fast clears", *cfg)
	}
}

func TestParseFrameFileConfig(t *testing.T) {
	ff, err := parseFrameFile(`
fast_clears = true
eviction = "Auto"
`)
	if err != nil {
		t.Fatalf("parseFrameFile() error = %v", err)
	}
	cfg := ff.config()
	if !cfg.GPUSupportsFastClears || cfg.CacheEviction != rendertask.EvictionAuto {
		t.Errorf("config() = %+v, want fast clears and auto eviction", *cfg)
	}
}

func TestParseFrameFileErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
		wantMsg string
	}{
		{
			name:    "unknown key",
			data:    "frame = 3\n",
			wantErr: ErrUnknownKey,
			wantMsg: "frame",
		},
		{
			name:    "unknown clip key",
			data:    "[[mask]]\nrect = [0, 0, 1, 1]\n[[mask.clip]]\ntype = \"rect\"\ncolor = 1\n",
			wantErr: ErrUnknownKey,
			wantMsg: "mask.clip.color",
		},
		{
			name:    "eviction",
			data:    `eviction = "never"`,
			wantErr: ErrInvalidEviction,
		},
		{
			name:    "clip type",
			data:    "[[mask]]\nrect = [0, 0, 1, 1]\n[[mask.clip]]\ntype = \"star\"\n",
			wantErr: ErrInvalidClip,
		},
		{
			name:    "clip mode",
			data:    "[[mask]]\nrect = [0, 0, 1, 1]\n[[mask.clip]]\ntype = \"rect\"\nmode = \"inside\"\n",
			wantErr: ErrInvalidClip,
		},
		{
			name:    "box shadow without blur",
			data:    "[[mask]]\nrect = [0, 0, 1, 1]\n[[mask.clip]]\ntype = \"box-shadow\"\nrect = [0, 0, 8, 8]\n",
			wantErr: ErrInvalidClip,
		},
		{
			name:    "mask too large",
			data:    "[[mask]]\nrect = [0, 0, 20000, 10]\n",
			wantErr: ErrTooLarge,
			wantMsg: "mask 0",
		},
		{
			name:    "box shadow too large",
			data:    "[[mask]]\nrect = [0, 0, 8, 8]\n[[mask.clip]]\ntype = \"box-shadow\"\nrect = [0, 0, 8, 16001]\nblur_radius = 2\n",
			wantErr: ErrTooLarge,
		},
		{
			name:    "screen too large",
			data:    "screen = [16001, 600]\n",
			wantErr: ErrTooLarge,
		},
		{
			name:    "empty mask",
			data:    "[[mask]]\nrect = [0, 0, 0, 4]\n",
			wantMsg: "empty rect",
		},
		{
			name:    "frames",
			data:    "frames = 0\n",
			wantMsg: "frames must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := parseFrameFile(tt.data)
			if err == nil {
				t.Fatal("parseFrameFile() error = nil")
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("parseFrameFile() error = %v, want %v", err, tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantMsg) {
				t.Errorf("parseFrameFile() error = %q, want it to contain %q", err, tt.wantMsg)
			}
		})
	}
}

func TestLoadFrameFileMissing(t *testing.T) {
	if _, err := loadFrameFile("testdata/missing.toml"); err == nil {
		t.Error("loadFrameFile() error = nil, want error")
	}
}
