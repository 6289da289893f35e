package main

import (
	"fmt"
	"io"

	"github.com/gogpu/rendertask"
	"github.com/gogpu/rendertask/target"
	"github.com/gogpu/rendertask/texstore"
)

// gpuRows is a GPU cache that keeps the written blocks in memory.
type gpuRows struct {
	rows map[uint64]*blockRow
	next uint64
}

type blockRow struct {
	blocks [][4]float32
}

func (r *blockRow) Push(block [4]float32) {
	r.blocks = append(r.blocks, block)
}

func newGPURows() *gpuRows {
	return &gpuRows{rows: make(map[uint64]*blockRow)}
}

func (c *gpuRows) Request(h *rendertask.GPUCacheHandle) (rendertask.GPUBlockWriter, bool) {
	if h.ID == 0 {
		c.next++
		h.ID = c.next
	}
	row := &blockRow{}
	c.rows[h.ID] = row
	return row, true
}

// gpuRowWidth is the number of blocks per row of the GPU cache texture.
const gpuRowWidth = 1024

func (c *gpuRows) Address(h rendertask.GPUCacheHandle) rendertask.GPUCacheAddress {
	return rendertask.GPUCacheAddress{U: uint16(h.ID % gpuRowWidth), V: uint16(h.ID / gpuRowWidth)}
}

func (c *gpuRows) blocks() int {
	n := 0
	for _, row := range c.rows {
		n += len(row.blocks)
	}
	return n
}

// planner builds the frames of a frame file over a persistent cache and
// texture store.
type planner struct {
	ff       *frameFile
	cfg      *rendertask.Config
	targets  target.Config
	store    *texstore.Store
	gpu      *gpuRows
	res      rendertask.Resources
	counters rendertask.Counters

	w        io.Writer
	showData bool
}

func newPlanner(ff *frameFile, w io.Writer, showData bool) *planner {
	cfg := ff.config()
	store := texstore.New(texstore.Config{
		LayerSize:   rendertask.Size{Width: ff.LayerSize, Height: ff.LayerSize},
		Padding:     ff.Padding,
		BudgetBytes: ff.BudgetMB * 1024 * 1024,
	})
	gpu := newGPURows()

	return &planner{
		ff:  ff,
		cfg: cfg,
		targets: target.Config{
			TargetSize: rendertask.Size{Width: ff.TargetSize, Height: ff.TargetSize},
			Padding:    ff.Padding,
		},
		store: store,
		gpu:   gpu,
		res: rendertask.Resources{
			GPUCache: gpu,
			Store:    store,
			Cache:    rendertask.NewCache(cfg),
		},
		w:        w,
		showData: showData,
	}
}

// run builds every frame and prints its plan.
func (p *planner) run() error {
	for frame := 1; frame <= p.ff.Frames; frame++ {
		if err := p.frame(frame); err != nil {
			return fmt.Errorf("frame %d: %w", frame, err)
		}
	}
	return nil
}

func (p *planner) frame(frame int) error {
	p.store.BeginFrame()
	p.res.Cache.BeginFrame(p.store)

	g := rendertask.NewGraph(rendertask.FrameID(frame), p.counters)
	dps := rendertask.DevicePixelScale(p.ff.DevicePixelScale)

	nodes := &rendertask.ClipNodes{}
	var masks []rendertask.TaskID
	for _, m := range p.ff.Masks {
		if !m.inFrame(frame) {
			continue
		}

		instances := make([]rendertask.ClipInstance, 0, len(m.Clips))
		for _, c := range m.Clips {
			item, err := c.item()
			if err != nil {
				return err
			}
			var flags rendertask.ClipNodeFlags
			if c.SameCoordSystem {
				flags |= rendertask.ClipSameCoordSystem
			}
			instances = append(instances, rendertask.ClipInstance{Handle: nodes.AddNode(item), Flags: flags})
		}

		mask := rendertask.NewMask(g, p.res, p.cfg, rendertask.MaskRequest{
			OuterRect:        m.rect(),
			Range:            nodes.AddRange(instances...),
			Clips:            nodes,
			ClipData:         nodes,
			DevicePixelScale: dps,
		})
		masks = append(masks, g.Add(mask))
	}

	screen := p.ff.screenSize()
	main := g.Add(rendertask.NewPicture(
		rendertask.FixedLocation{Rect: rendertask.Rect{Size: screen}},
		screen.ToF(),
		0,
		rendertask.Point{},
		masks,
		rendertask.UVRect,
		0,
		dps,
	))

	p.res.Cache.Update(p.store, g)
	passes, err := target.Schedule(g, main, true, screen, p.targets)
	if err != nil {
		return err
	}

	g.PrepareForRender()
	g.WriteTaskData()
	g.WriteGPUBlocks(p.gpu)

	if err := p.print(frame, g, main, passes); err != nil {
		return err
	}

	p.store.EndFrame()
	p.counters = g.Counters()
	return nil
}

func (p *planner) print(frame int, g *rendertask.Graph, main rendertask.TaskID, passes []*target.Pass) error {
	fmt.Fprintf(p.w, "frame %d: %d tasks, %d cached, %d passes\n",
		frame, g.Len(), len(g.CacheableTasks()), len(passes))

	pt := rendertask.NewTextTreePrinter(p.w)
	for _, id := range g.CacheableTasks() {
		g.PrintTask(id, pt)
	}
	g.PrintTask(main, pt)
	if err := pt.Err(); err != nil {
		return err
	}

	for i, pass := range passes {
		fmt.Fprintf(p.w, "pass %d (%v)\n", i, pass.Kind)
		printTargets(p.w, "color", pass.Color)
		printTargets(p.w, "alpha", pass.Alpha)
		for _, tc := range pass.TextureCache {
			fmt.Fprintf(p.w, "  %v: %v\n", tc, tc.Tasks)
		}
		if len(pass.Framebuffer) > 0 {
			fmt.Fprintf(p.w, "  framebuffer: %v\n", pass.Framebuffer)
		}
	}

	if p.showData {
		data := g.TaskData()
		packed := rendertask.EncodeTaskData(nil, data)
		fmt.Fprintf(p.w, "task data: %d rows, %d bytes\n", len(data), len(packed))
		for i, row := range data {
			fmt.Fprintf(p.w, "  %d: %v\n", i, row)
		}
		fmt.Fprintf(p.w, "gpu cache: %d blocks\n", p.gpu.blocks())
	}

	_, err := fmt.Fprintf(p.w, "store: %v\n", p.store.Stats())
	return err
}

func printTargets(w io.Writer, name string, targets []*target.Target) {
	for _, t := range targets {
		saved := ""
		if t.HasSaved {
			saved = fmt.Sprintf(" saved %d", t.Saved)
		}
		fmt.Fprintf(w, "  %s target %d %v%s: %v, %d clears, %.1f%% used\n",
			name, t.Index, t.Size, saved, t.Tasks, len(t.Clears), t.Utilization()*100)
	}
}
