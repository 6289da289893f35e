package rendertask

import (
	"fmt"
	"testing"
)

// mustPanic runs fn and returns the panic message. It fails the test when
// fn returns normally.
func mustPanic(t *testing.T, fn func()) (msg string) {
	t.Helper()
	defer func() {
		r := recover()
		if r == nil {
			t.Fatal("expected panic, got none")
		}
		msg = fmt.Sprint(r)
	}()
	fn()
	return ""
}

// blockRecorder collects the blocks written for one GPU cache handle.
type blockRecorder struct {
	blocks [][4]float32
}

func (r *blockRecorder) Push(block [4]float32) {
	r.blocks = append(r.blocks, block)
}

// fakeGPUCache hands out sequential handles and always asks for blocks.
type fakeGPUCache struct {
	next    uint64
	written map[uint64]*blockRecorder
}

func newFakeGPUCache() *fakeGPUCache {
	return &fakeGPUCache{written: make(map[uint64]*blockRecorder)}
}

func (c *fakeGPUCache) Request(h *GPUCacheHandle) (GPUBlockWriter, bool) {
	if h.ID == 0 {
		c.next++
		h.ID = c.next
	}
	r := &blockRecorder{}
	c.written[h.ID] = r
	return r, true
}

func (c *fakeGPUCache) Address(h GPUCacheHandle) GPUCacheAddress {
	return GPUCacheAddress{U: uint16(h.ID), V: 7}
}

type fakeAlloc struct {
	desc     ImageDescriptor
	userData [3]float32
	eviction Eviction
}

// fakeStore is an in-memory TextureStore placing every allocation at the
// origin of its own texture.
type fakeStore struct {
	next      TextureCacheHandle
	allocated map[TextureCacheHandle]fakeAlloc
	requests  int
	updates   int
}

func newFakeStore() *fakeStore {
	return &fakeStore{allocated: make(map[TextureCacheHandle]fakeAlloc)}
}

func (s *fakeStore) Request(h TextureCacheHandle) bool {
	s.requests++
	_, ok := s.allocated[h]
	return !ok
}

func (s *fakeStore) Update(h *TextureCacheHandle, desc ImageDescriptor, userData [3]float32, _ UVRectKind, eviction Eviction) {
	s.updates++
	if *h == 0 {
		s.next++
		*h = s.next
	}
	s.allocated[*h] = fakeAlloc{desc: desc, userData: userData, eviction: eviction}
}

func (s *fakeStore) Location(h TextureCacheHandle) (TextureID, int32, Rect) {
	a := s.allocated[h]
	return TextureID(h), 0, NewRect(0, 0, a.desc.Width, a.desc.Height)
}

func (s *fakeStore) IsAllocated(h TextureCacheHandle) bool {
	_, ok := s.allocated[h]
	return ok
}

func (s *fakeStore) Get(h TextureCacheHandle) CacheItem {
	tex, layer, rect := s.Location(h)
	return CacheItem{Texture: tex, Layer: layer, UVRect: rect, UserData: s.allocated[h].userData}
}

func (s *fakeStore) evictAll() {
	clear(s.allocated)
}

// recordingPass remembers the tasks added to it.
type recordingPass struct {
	tasks []TaskID
}

func (p *recordingPass) AddTask(id TaskID, _ Size, _ TargetKind, _ Location) {
	p.tasks = append(p.tasks, id)
}

type recordingFactory struct {
	created int
}

func (f *recordingFactory) NewOffscreenPass(Size) Pass {
	f.created++
	return &recordingPass{}
}

// passOf returns the index of the pass holding id, or -1.
func passOf(passes []Pass, id TaskID) int {
	for i, p := range passes {
		for _, t := range p.(*recordingPass).tasks {
			if t.Index == id.Index {
				return i
			}
		}
	}
	return -1
}

// newAlphaTask creates a bare dynamic alpha task for graph tests.
func newAlphaTask(w, h int32, children ...TaskID) Task {
	return newDynamicTask(Size{Width: w, Height: h}, children, ClipRegionTask{}, ClearOne)
}

var testScreen = Size{Width: 800, Height: 600}
