package rendertask

import (
	"testing"

	"github.com/gogpu/gputypes"
	"golang.org/x/image/math/fixed"
)

func TestTaskSizeSanityCheck(t *testing.T) {
	tests := []struct {
		name string
		size Size
	}{
		{"too wide", Size{Width: MaxTaskSize + 1, Height: 10}},
		{"too tall", Size{Width: 10, Height: MaxTaskSize + 1}},
		{"empty", Size{Width: 0, Height: 10}},
		{"negative", Size{Width: 10, Height: -1}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mustPanic(t, func() { NewBorderSegment(tt.size, nil) })
		})
	}

	// The bound itself is allowed.
	task := NewBorderSegment(Size{Width: MaxTaskSize, Height: MaxTaskSize}, nil)
	if task.DynamicSize() != (Size{Width: MaxTaskSize, Height: MaxTaskSize}) {
		t.Errorf("DynamicSize() = %v, want %dx%d", task.DynamicSize(), MaxTaskSize, MaxTaskSize)
	}
}

func TestTargetKindPolicy(t *testing.T) {
	blur := BlurTask{TargetKind: TargetKindAlpha}
	tests := []struct {
		kind Kind
		want TargetKind
	}{
		{LineDecorationTask{}, TargetKindColor},
		{PictureTask{}, TargetKindColor},
		{BorderTask{}, TargetKindColor},
		{BlitTask{}, TargetKindColor},
		{GlyphTask{}, TargetKindColor},
		{ClipRegionTask{}, TargetKindAlpha},
		{CacheMaskTask{}, TargetKindAlpha},
		{VerticalBlurTask{blur}, TargetKindAlpha},
		{HorizontalBlurTask{BlurTask{TargetKind: TargetKindColor}}, TargetKindColor},
		{ScalingTask{TargetKind: TargetKindAlpha}, TargetKindAlpha},
	}

	for _, tt := range tests {
		t.Run(kindName(tt.kind), func(t *testing.T) {
			task := Task{Kind: tt.kind}
			if got := task.TargetKind(); got != tt.want {
				t.Errorf("TargetKind() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConstructorClearModes(t *testing.T) {
	g := NewGraph(1, Counters{})
	src := g.Add(newAlphaTask(16, 16))
	size := Size{Width: 16, Height: 16}

	tests := []struct {
		name string
		task Task
		want ClearMode
	}{
		{"picture", NewPicture(DynamicLocation{Size: size}, size.ToF(), 0, Point{}, nil, UVRect, 0, 1), ClearTransparent},
		{"blit", NewBlit(size, BlitSourceImage{}), ClearTransparent},
		{"line decoration", NewLineDecoration(size, LineStyleDotted, LineOrientationHorizontal, 1, size.ToF()), ClearTransparent},
		{"border", NewBorderSegment(size, nil), ClearTransparent},
		{"glyph", NewGlyph(DynamicLocation{Size: size}, 3, Point{}, fixed.Point26_6{}, FontRenderAlpha, PointF{}), ClearTransparent},
		{"scaling", NewScaling(src, g, TargetKindAlpha, size), ClearDontCare},
		{"rounded rect slow clears", NewRoundedRectMask(size, GPUCacheAddress{}, PointF{}, 1, NewConfig()), ClearDontCare},
		{"rounded rect fast clears", NewRoundedRectMask(size, GPUCacheAddress{}, PointF{}, 1, NewConfig(WithFastClears(true))), ClearOne},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.task.ClearMode != tt.want {
				t.Errorf("ClearMode = %v, want %v", tt.task.ClearMode, tt.want)
			}
		})
	}
}

func TestNewPictureCanMerge(t *testing.T) {
	tests := []struct {
		name      string
		size      Size
		unclipped SizeF
		want      bool
	}{
		{"covers", Size{Width: 100, Height: 100}, SizeF{Width: 100, Height: 100}, true},
		{"clipped", Size{Width: 50, Height: 100}, SizeF{Width: 100, Height: 100}, false},
		{"fractional", Size{Width: 100, Height: 100}, SizeF{Width: 100.5, Height: 10}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			task := NewPicture(DynamicLocation{Size: tt.size}, tt.unclipped, 1, Point{}, nil, UVRect, 0, 1)
			if got := task.Kind.(PictureTask).CanMerge; got != tt.want {
				t.Errorf("CanMerge = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewBlitWithPadding(t *testing.T) {
	g := NewGraph(1, Counters{})
	src := g.Add(newAlphaTask(10, 10))

	padding := SideOffsets{Top: 1, Right: 2, Bottom: 3, Left: 4}
	task := NewBlitWithPadding(Size{Width: 10, Height: 10}, padding, BlitSourceTask{ID: src})

	if got, want := task.DynamicSize(), (Size{Width: 16, Height: 14}); got != want {
		t.Errorf("DynamicSize() = %v, want %v", got, want)
	}
	if len(task.Children) != 1 || task.Children[0] != src {
		t.Errorf("Children = %v, want [%v]", task.Children, src)
	}

	image := NewBlit(Size{Width: 10, Height: 10}, BlitSourceImage{Key: ImageKey{ID: 9}})
	if len(image.Children) != 0 {
		t.Errorf("image blit Children = %v, want none", image.Children)
	}
}

func TestMarkForSaving(t *testing.T) {
	task := newAlphaTask(4, 4)
	task.MarkForSaving()
	if task.SavedIndex == nil || *task.SavedIndex != SavedTargetPending {
		t.Errorf("SavedIndex = %v, want pending", task.SavedIndex)
	}

	cached := Task{
		Location: TextureCacheLocation{Rect: NewRect(0, 0, 4, 4)},
		Kind:     ClipRegionTask{},
	}
	mustPanic(t, cached.MarkForSaving)
	if cached.SavedIndex != nil {
		t.Error("MarkForSaving mutated a cached task")
	}
}

func TestWriteTaskData(t *testing.T) {
	allocated := DynamicLocation{
		Size:      Size{Width: 30, Height: 20},
		Allocated: true,
		Origin:    Point{X: 10, Y: 12},
		Target:    3,
	}

	tests := []struct {
		name string
		task Task
		want TaskData
	}{
		{
			name: "picture",
			task: Task{Location: allocated, Kind: PictureTask{DevicePixelScale: 2, ContentOrigin: Point{X: 5, Y: 6}}},
			want: TaskData{10, 12, 30, 20, 3, 2, 5, 6},
		},
		{
			name: "picture in fixed location",
			task: Task{Location: FixedLocation{Rect: NewRect(40, 50, 100, 80)}, Kind: PictureTask{DevicePixelScale: 1}},
			want: TaskData{0, 0, 100, 80, 0, 1, 0, 0},
		},
		{
			name: "cache mask",
			task: Task{Location: allocated, Kind: CacheMaskTask{DevicePixelScale: 1.5, ActualRect: NewRect(7, 8, 30, 20)}},
			want: TaskData{10, 12, 30, 20, 3, 1.5, 7, 8},
		},
		{
			name: "clip region",
			task: Task{Location: allocated, Kind: ClipRegionTask{DevicePixelScale: 2}},
			want: TaskData{10, 12, 30, 20, 3, 2, 0, 0},
		},
		{
			name: "vertical blur",
			task: Task{Location: allocated, Kind: VerticalBlurTask{BlurTask{StdDeviation: 2.5}}},
			want: TaskData{10, 12, 30, 20, 3, 2.5, 0, 0},
		},
		{
			name: "horizontal blur",
			task: Task{Location: allocated, Kind: HorizontalBlurTask{BlurTask{StdDeviation: 3}}},
			want: TaskData{10, 12, 30, 20, 3, 3, 0, 0},
		},
		{
			name: "glyph",
			task: Task{Location: allocated, Kind: GlyphTask{}},
			want: TaskData{10, 12, 30, 20, 3, 0, 1, 0},
		},
		{
			name: "scaling",
			task: Task{Location: allocated, Kind: ScalingTask{}},
			want: TaskData{10, 12, 30, 20, 3, 0, 0, 0},
		},
		{
			name: "unscheduled border",
			task: NewBorderSegment(Size{Width: 30, Height: 20}, nil),
			want: TaskData{},
		},
		{
			name: "texture cache blit",
			task: Task{Location: TextureCacheLocation{Layer: 2, Rect: NewRect(1, 2, 3, 4)}, Kind: BlitTask{}},
			want: TaskData{1, 2, 3, 4, 2, 0, 0, 0},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.task.WriteTaskData(); got != tt.want {
				t.Errorf("WriteTaskData() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestUVRectKindCacheMaskPanics(t *testing.T) {
	task := Task{Kind: CacheMaskTask{}}
	mustPanic(t, func() { task.UVRectKind() })
}

func TestTextureAddress(t *testing.T) {
	gpuCache := newFakeGPUCache()

	pic := Task{Kind: PictureTask{UVRectHandle: GPUCacheHandle{ID: 4}}}
	if got := pic.TextureAddress(gpuCache); got != (GPUCacheAddress{U: 4, V: 7}) {
		t.Errorf("TextureAddress() = %v, want {4 7}", got)
	}

	for _, kind := range []Kind{ScalingTask{}, ClipRegionTask{}, CacheMaskTask{}, BlitTask{}} {
		task := Task{Kind: kind}
		t.Run(kindName(kind), func(t *testing.T) {
			mustPanic(t, func() { task.TextureAddress(gpuCache) })
		})
	}
}

func TestWriteGPUBlocks(t *testing.T) {
	loc := DynamicLocation{
		Size:      Size{Width: 30, Height: 20},
		Allocated: true,
		Origin:    Point{X: 10, Y: 12},
		Target:    1,
	}
	quad := UVRectKind{
		Quad:        true,
		TopLeft:     PointF{X: 0, Y: 0},
		TopRight:    PointF{X: 1, Y: 0},
		BottomLeft:  PointF{X: 0, Y: 1},
		BottomRight: PointF{X: 1, Y: 1},
	}

	tests := []struct {
		name       string
		kind       Kind
		wantBlocks int
	}{
		{"picture", PictureTask{UVRectKind: UVRect}, 2},
		{"picture with quad", PictureTask{UVRectKind: quad}, 4},
		{"horizontal blur", HorizontalBlurTask{BlurTask{UVRectKind: UVRect}}, 2},
		{"scaling", ScalingTask{}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gpuCache := newFakeGPUCache()
			task := Task{Location: loc, Kind: tt.kind}
			task.WriteGPUBlocks(gpuCache)

			if tt.wantBlocks == 0 {
				if len(gpuCache.written) != 0 {
					t.Errorf("wrote %d handles, want none", len(gpuCache.written))
				}
				return
			}

			h, _, _ := task.uvRectHandle()
			if h.ID == 0 {
				t.Fatal("handle not stored back into the task")
			}
			blocks := gpuCache.written[h.ID].blocks
			if len(blocks) != tt.wantBlocks {
				t.Fatalf("wrote %d blocks, want %d", len(blocks), tt.wantBlocks)
			}
			if want := [4]float32{10, 12, 40, 32}; blocks[0] != want {
				t.Errorf("block 0 = %v, want %v", blocks[0], want)
			}
			if blocks[1][0] != 1 {
				t.Errorf("texture layer = %v, want 1", blocks[1][0])
			}
		})
	}
}

func TestClearModeLoadOp(t *testing.T) {
	tests := []struct {
		mode      ClearMode
		wantOp    gputypes.LoadOp
		wantColor gputypes.Color
	}{
		{ClearZero, gputypes.LoadOpClear, gputypes.Color{}},
		{ClearOne, gputypes.LoadOpClear, gputypes.Color{R: 1, G: 1, B: 1, A: 1}},
		{ClearTransparent, gputypes.LoadOpClear, gputypes.Color{}},
		{ClearDontCare, gputypes.LoadOpLoad, gputypes.Color{}},
	}

	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			op, color := tt.mode.LoadOp()
			if op != tt.wantOp || color != tt.wantColor {
				t.Errorf("LoadOp() = %v, %v, want %v, %v", op, color, tt.wantOp, tt.wantColor)
			}
		})
	}
}

func TestTargetKindFormat(t *testing.T) {
	if got := TargetKindAlpha.Format(); got != gputypes.TextureFormatR8Unorm {
		t.Errorf("Alpha.Format() = %v, want R8Unorm", got)
	}
	if got := TargetKindColor.Format(); got != gputypes.TextureFormatBGRA8Unorm {
		t.Errorf("Color.Format() = %v, want BGRA8Unorm", got)
	}
}
