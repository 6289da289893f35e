package main

import (
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"

	"github.com/gogpu/rendertask"
)

// Frame file errors.
var (
	ErrUnknownKey      = errors.New("rtplan: unknown key")
	ErrInvalidClip     = errors.New("rtplan: invalid clip")
	ErrInvalidEviction = errors.New("rtplan: invalid eviction policy")
	ErrTooLarge        = errors.New("rtplan: larger than the maximum task size")
)

// frameFile is the TOML description of a sequence of frames.
type frameFile struct {
	Frames           int      `toml:"frames"`
	Screen           [2]int32 `toml:"screen"`
	DevicePixelScale float32  `toml:"device_pixel_scale"`
	FastClears       bool     `toml:"fast_clears"`
	Eviction         string   `toml:"eviction"`

	TargetSize int32  `toml:"target_size"`
	Padding    int32  `toml:"padding"`
	LayerSize  int32  `toml:"layer_size"`
	BudgetMB   uint64 `toml:"budget_mb"`

	Masks []maskDesc `toml:"mask"`
}

// maskDesc is one primitive's clip mask.
type maskDesc struct {
	Rect [4]int32 `toml:"rect"`

	// SkipFrames lists the frames, counted from 1, the mask is absent from.
	SkipFrames []int `toml:"skip_frames"`

	Clips []clipDesc `toml:"clip"`
}

// clipDesc is one clip of a mask.
type clipDesc struct {
	Type            string     `toml:"type"`
	Mode            string     `toml:"mode"`
	SameCoordSystem bool       `toml:"same_coord_system"`
	Rect            [4]float32 `toml:"rect"`
	Radius          float32    `toml:"radius"`
	BlurRadius      int32      `toml:"blur_radius"`
	Image           uint32     `toml:"image"`
}

func defaultFrameFile() frameFile {
	return frameFile{
		Frames:           2,
		Screen:           [2]int32{800, 600},
		DevicePixelScale: 1,
		Eviction:         "eager",
	}
}

// loadFrameFile reads and validates the frame file at path.
func loadFrameFile(path string) (*frameFile, error) {
	ff := defaultFrameFile()
	md, err := toml.DecodeFile(path, &ff)
	if err != nil {
		return nil, fmt.Errorf("rtplan: decode %s: %w", path, err)
	}
	if err := ff.check(md); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &ff, nil
}

// parseFrameFile decodes and validates a frame file held in memory.
func parseFrameFile(data string) (*frameFile, error) {
	ff := defaultFrameFile()
	md, err := toml.Decode(data, &ff)
	if err != nil {
		return nil, fmt.Errorf("rtplan: decode: %w", err)
	}
	if err := ff.check(md); err != nil {
		return nil, err
	}
	return &ff, nil
}

func (ff *frameFile) check(md toml.MetaData) error {
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return fmt.Errorf("%w: %s", ErrUnknownKey, strings.Join(keys, ", "))
	}
	if ff.Frames <= 0 {
		return fmt.Errorf("rtplan: frames must be positive, got %d", ff.Frames)
	}
	if ff.Screen[0] <= 0 || ff.Screen[1] <= 0 {
		return fmt.Errorf("rtplan: screen must be positive, got %v", ff.Screen)
	}
	if ff.Screen[0] > rendertask.MaxTaskSize || ff.Screen[1] > rendertask.MaxTaskSize {
		return fmt.Errorf("%w: screen %v", ErrTooLarge, ff.Screen)
	}
	if _, err := ff.eviction(); err != nil {
		return err
	}
	for i, m := range ff.Masks {
		if m.Rect[2] <= 0 || m.Rect[3] <= 0 {
			return fmt.Errorf("rtplan: mask %d: empty rect %v", i, m.Rect)
		}
		if m.Rect[2] > rendertask.MaxTaskSize || m.Rect[3] > rendertask.MaxTaskSize {
			return fmt.Errorf("mask %d: %w: rect %v", i, ErrTooLarge, m.Rect)
		}
		for j, c := range m.Clips {
			if _, err := c.item(); err != nil {
				return fmt.Errorf("mask %d clip %d: %w", i, j, err)
			}
		}
	}
	return nil
}

func (ff *frameFile) eviction() (rendertask.Eviction, error) {
	switch strings.ToLower(ff.Eviction) {
	case "", "eager":
		return rendertask.EvictionEager, nil
	case "auto":
		return rendertask.EvictionAuto, nil
	case "manual":
		return rendertask.EvictionManual, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrInvalidEviction, ff.Eviction)
	}
}

func (ff *frameFile) config() *rendertask.Config {
	eviction, _ := ff.eviction()
	return rendertask.NewConfig(
		rendertask.WithFastClears(ff.FastClears),
		rendertask.WithCacheEviction(eviction),
	)
}

func (ff *frameFile) screenSize() rendertask.Size {
	return rendertask.Size{Width: ff.Screen[0], Height: ff.Screen[1]}
}

func (m *maskDesc) rect() rendertask.Rect {
	return rendertask.NewRect(m.Rect[0], m.Rect[1], m.Rect[2], m.Rect[3])
}

func (m *maskDesc) inFrame(frame int) bool {
	for _, f := range m.SkipFrames {
		if f == frame {
			return false
		}
	}
	return true
}

func (c *clipDesc) mode() (rendertask.ClipMode, error) {
	switch strings.ToLower(c.Mode) {
	case "", "clip":
		return rendertask.ClipModeClip, nil
	case "clip-out", "clip_out":
		return rendertask.ClipModeClipOut, nil
	default:
		return 0, fmt.Errorf("%w: mode %q", ErrInvalidClip, c.Mode)
	}
}

func (c *clipDesc) rectF() rendertask.RectF {
	return rendertask.RectF{
		Origin: rendertask.PointF{X: c.Rect[0], Y: c.Rect[1]},
		Size:   rendertask.SizeF{Width: c.Rect[2], Height: c.Rect[3]},
	}
}

// item converts the description into a clip item. Box shadows get a fresh
// item every call, since the mask builder stores the cache handle on it.
func (c *clipDesc) item() (rendertask.ClipItem, error) {
	mode, err := c.mode()
	if err != nil {
		return nil, err
	}
	rect := c.rectF()

	switch strings.ToLower(c.Type) {
	case "rect":
		return rendertask.ClipRectangle{Rect: rect, Mode: mode}, nil
	case "rounded":
		r := rendertask.SizeF{Width: c.Radius, Height: c.Radius}
		return rendertask.ClipRoundedRectangle{
			Rect:   rect,
			Radius: rendertask.BorderRadius{TopLeft: r, TopRight: r, BottomLeft: r, BottomRight: r},
			Mode:   mode,
		}, nil
	case "image":
		return rendertask.ClipImage{Key: rendertask.ImageKey{ID: c.Image}, Rect: rect}, nil
	case "box-shadow", "box_shadow":
		if c.BlurRadius <= 0 {
			return nil, fmt.Errorf("%w: box shadow needs a positive blur_radius", ErrInvalidClip)
		}
		if rect.Size.Width <= 0 || rect.Size.Height <= 0 {
			return nil, fmt.Errorf("%w: box shadow rect %v is empty", ErrInvalidClip, c.Rect)
		}
		size := rendertask.ToCacheSize(rect.Size)
		if size.Width > rendertask.MaxTaskSize || size.Height > rendertask.MaxTaskSize {
			return nil, fmt.Errorf("%w: %w: box shadow rect %v", ErrInvalidClip, ErrTooLarge, c.Rect)
		}
		r := rendertask.ToCacheSize(rendertask.SizeF{Width: c.Radius, Height: c.Radius})
		return &rendertask.ClipBoxShadow{
			BlurRadius:        float32(c.BlurRadius),
			MinimalShadowRect: rect,
			CacheSize:         size,
			Mode:              mode,
			CacheKey: &rendertask.BoxShadowKey{
				BlurRadiusDP:      c.BlurRadius,
				ClipMode:          mode,
				OriginalAllocSize: size,
				TopLeft:           r,
				TopRight:          r,
				BottomRight:       r,
				BottomLeft:        r,
			},
		}, nil
	default:
		return nil, fmt.Errorf("%w: type %q", ErrInvalidClip, c.Type)
	}
}
