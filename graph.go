package rendertask

import (
	"fmt"
	"iter"
	"math"
)

// FrameID identifies the frame a graph was built for.
type FrameID uint64

// InvalidFrameID never belongs to a graph.
const InvalidFrameID FrameID = math.MaxUint64

// TaskID is a dense index into a Graph. Outside release builds it also
// remembers the frame it was created in.
type TaskID struct {
	Index uint32
	tag   frameTag
}

// InvalidTaskID never refers to a task.
var InvalidTaskID = TaskID{Index: math.MaxUint32, tag: makeFrameTag(InvalidFrameID)}

func (id TaskID) String() string {
	return fmt.Sprintf("#%d", id.Index)
}

// TaskAddress is the row of a task in the packed task data.
type TaskAddress uint32

// Pass is one batch of tasks that can be rendered without dependencies on
// each other. The target allocator implements it.
type Pass interface {
	AddTask(id TaskID, size Size, kind TargetKind, loc Location)
}

// PassFactory creates the off-screen passes needed for dependencies.
type PassFactory interface {
	NewOffscreenPass(screenSize Size) Pass
}

// Counters records the lengths of a finished graph so the next frame can
// preallocate.
type Counters struct {
	Tasks          int
	TaskData       int
	CacheableTasks int
}

// counterSlack is added to the previous frame's lengths so small variations
// between frames do not reallocate.
const counterSlack = 8

// Graph owns every task created while building one frame.
//
// Graph is not safe for concurrent use.
type Graph struct {
	tasks    []Task
	taskData []TaskData

	// cacheable are tasks feeding a cache entry. They may not be
	// referenced by any other task, so they are rendered unconditionally
	// before the rest of the graph.
	cacheable []TaskID

	nextSaved SavedTargetIndex
	frameID   FrameID
}

// NewGraph creates an empty graph for frame, sized from the previous
// frame's counters.
func NewGraph(frame FrameID, counters Counters) *Graph {
	return &Graph{
		tasks:     make([]Task, 0, counters.Tasks+counterSlack),
		taskData:  make([]TaskData, 0, counters.TaskData+counterSlack),
		cacheable: make([]TaskID, 0, counters.CacheableTasks+counterSlack),
		frameID:   frame,
	}
}

// Counters returns the current lengths for sizing the next frame's graph.
func (g *Graph) Counters() Counters {
	return Counters{
		Tasks:          len(g.tasks),
		TaskData:       len(g.taskData),
		CacheableTasks: len(g.cacheable),
	}
}

// FrameID returns the frame the graph belongs to.
func (g *Graph) FrameID() FrameID {
	return g.frameID
}

// Add appends a task and returns its id.
func (g *Graph) Add(t Task) TaskID {
	index := uint32(len(g.tasks))
	g.tasks = append(g.tasks, t)
	return TaskID{Index: index, tag: makeFrameTag(g.frameID)}
}

// Task returns the task for id. The pointer is valid until the next Add.
func (g *Graph) Task(id TaskID) *Task {
	id.tag.check(g.frameID)
	if int(id.Index) >= len(g.tasks) {
		bug("task id %v out of range (%d tasks)", id, len(g.tasks))
	}
	return &g.tasks[id.Index]
}

// Len returns the number of tasks.
func (g *Graph) Len() int {
	return len(g.tasks)
}

// All iterates over every task in creation order.
func (g *Graph) All() iter.Seq2[TaskID, *Task] {
	return func(yield func(TaskID, *Task) bool) {
		for i := range g.tasks {
			id := TaskID{Index: uint32(i), tag: makeFrameTag(g.frameID)}
			if !yield(id, &g.tasks[i]) {
				return
			}
		}
	}
}

// CacheableTasks returns the tasks that must be rendered before the rest of
// the graph because a cache entry depends on them.
func (g *Graph) CacheableTasks() []TaskID {
	return g.cacheable
}

func (g *Graph) addCacheable(id TaskID) {
	g.cacheable = append(g.cacheable, id)
}

// TaskAddress returns the task data row of id.
func (g *Graph) TaskAddress(id TaskID) TaskAddress {
	id.tag.check(g.frameID)
	return TaskAddress(id.Index)
}

// TargetRect returns the resolved output rectangle of id.
func (g *Graph) TargetRect(id TaskID) (Rect, TargetIndex) {
	return g.Task(id).TargetRect()
}

// SaveTarget allocates the next saved target index.
func (g *Graph) SaveTarget() SavedTargetIndex {
	id := g.nextSaved
	g.nextSaved++
	return id
}

// PrepareForRender prepares every task once resources are resolved.
func (g *Graph) PrepareForRender() {
	for i := range g.tasks {
		g.tasks[i].PrepareForRender()
	}
}

// WriteTaskData appends one packed record per task.
func (g *Graph) WriteTaskData() {
	for i := range g.tasks {
		g.taskData = append(g.taskData, g.tasks[i].WriteTaskData())
	}
}

// TaskData returns the records written by WriteTaskData, indexed by
// TaskAddress.
func (g *Graph) TaskData() []TaskData {
	return g.taskData
}

// WriteGPUBlocks writes the uv rects of every sampled task into gpuCache.
func (g *Graph) WriteGPUBlocks(gpuCache GPUCache) {
	for i := range g.tasks {
		g.tasks[i].WriteGPUBlocks(gpuCache)
	}
}

// assignFrame is one entry of the AssignToPasses work stack.
type assignFrame struct {
	id        TaskID
	passIndex int
	next      int // next child to visit
}

// AssignToPasses places the tree rooted at id into passes so that every
// dependency lands in a later pass than the task reading it. Missing passes
// are created with factory and appended. The caller must reverse the passes
// it appended to get execution order.
//
// The tree is walked with an explicit stack, so deep dependency chains do
// not grow the goroutine stack. A cycle is a bug and panics.
func (g *Graph) AssignToPasses(
	id TaskID,
	passIndex int,
	screenSize Size,
	passes []Pass,
	factory PassFactory,
) []Pass {
	if passIndex >= len(passes) {
		bug("pass index %d out of range (%d passes)", passIndex, len(passes))
	}

	g.Task(id)
	onStack := map[uint32]struct{}{id.Index: {}}
	stack := []assignFrame{{id: id, passIndex: passIndex}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		task := g.Task(top.id)

		if top.next == 0 && len(task.Children) > 0 {
			childIndex := top.passIndex + 1
			if len(passes) == childIndex {
				passes = append(passes, factory.NewOffscreenPass(screenSize))
			}
		}

		if top.next < len(task.Children) {
			child := task.Children[top.next]
			top.next++
			if _, ok := onStack[child.Index]; ok {
				bug("render task %v depends on itself", child)
			}
			onStack[child.Index] = struct{}{}
			stack = append(stack, assignFrame{id: child, passIndex: top.passIndex + 1})
			continue
		}

		// Every child is placed, register the task itself.
		passes[top.passIndex].AddTask(top.id, task.DynamicSize(), task.TargetKind(), task.Location)
		delete(onStack, top.id.Index)
		stack = stack[:len(stack)-1]
	}

	return passes
}
