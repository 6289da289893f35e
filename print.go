package rendertask

import (
	"fmt"
	"io"
	"strings"
)

// TreePrinter receives a nested description of a task tree.
type TreePrinter interface {
	NewLevel(title string)
	AddItem(text string)
	EndLevel()
}

// TextTreePrinter writes an indented text tree.
type TextTreePrinter struct {
	w     io.Writer
	depth int
	err   error
}

// NewTextTreePrinter creates a printer writing to w.
func NewTextTreePrinter(w io.Writer) *TextTreePrinter {
	return &TextTreePrinter{w: w}
}

// NewLevel starts a nested level with the given title.
func (p *TextTreePrinter) NewLevel(title string) {
	p.line(title)
	p.depth++
}

// AddItem adds a line to the current level.
func (p *TextTreePrinter) AddItem(text string) {
	p.line(text)
}

// EndLevel closes the current level.
func (p *TextTreePrinter) EndLevel() {
	if p.depth > 0 {
		p.depth--
	}
}

// Err returns the first write error, if any.
func (p *TextTreePrinter) Err() error {
	return p.err
}

func (p *TextTreePrinter) line(s string) {
	if p.err != nil {
		return
	}
	prefix := ""
	if p.depth > 0 {
		prefix = strings.Repeat("│ ", p.depth-1) + "├─ "
	}
	_, p.err = fmt.Fprintf(p.w, "%s%s\n", prefix, s)
}

type printFrame struct {
	id   TaskID
	next int
}

// PrintTask prints id and its dependencies to pt. Dependencies are walked
// with an explicit stack. A task that depends on itself is a bug.
func (g *Graph) PrintTask(id TaskID, pt TreePrinter) {
	g.printTaskHeader(id, pt)
	onStack := map[uint32]struct{}{id.Index: {}}
	stack := []printFrame{{id: id}}

	for len(stack) > 0 {
		top := &stack[len(stack)-1]
		task := g.Task(top.id)

		if top.next < len(task.Children) {
			child := task.Children[top.next]
			top.next++
			if _, ok := onStack[child.Index]; ok {
				bug("render task %v depends on itself", child)
			}
			onStack[child.Index] = struct{}{}
			g.printTaskHeader(child, pt)
			stack = append(stack, printFrame{id: child})
			continue
		}

		done := top.id
		delete(onStack, done.Index)
		pt.EndLevel()
		stack = stack[:len(stack)-1]
		if len(stack) > 0 {
			pt.AddItem(fmt.Sprintf("self: %v", done))
		}
	}
}

func (g *Graph) printTaskHeader(id TaskID, pt TreePrinter) {
	task := g.Task(id)

	switch k := task.Kind.(type) {
	case PictureTask:
		pt.NewLevel(fmt.Sprintf("Picture of %d", k.PicIndex))
	case CacheMaskTask:
		pt.NewLevel(fmt.Sprintf("CacheMask with %d clips", k.ClipNodeRange.Count))
		pt.AddItem(fmt.Sprintf("rect: %v", k.ActualRect))
	case LineDecorationTask:
		pt.NewLevel("LineDecoration")
	case ClipRegionTask:
		pt.NewLevel("ClipRegion")
	case VerticalBlurTask:
		pt.NewLevel("VerticalBlur")
		printBlur(k.BlurTask, pt)
	case HorizontalBlurTask:
		pt.NewLevel("HorizontalBlur")
		printBlur(k.BlurTask, pt)
	case ScalingTask:
		pt.NewLevel("Scaling")
		pt.AddItem(fmt.Sprintf("kind: %v", k.TargetKind))
	case BorderTask:
		pt.NewLevel("Border")
	case BlitTask:
		pt.NewLevel("Blit")
		pt.AddItem(fmt.Sprintf("source: %s", blitSourceString(k.Source)))
	case GlyphTask:
		pt.NewLevel("Glyph")
	default:
		panic(fmt.Sprintf("rendertask: unhandled kind %T", task.Kind))
	}

	pt.AddItem(fmt.Sprintf("clear to: %v", task.ClearMode))
}

func printBlur(b BlurTask, pt TreePrinter) {
	pt.AddItem(fmt.Sprintf("std deviation: %g", b.StdDeviation))
	pt.AddItem(fmt.Sprintf("target: %v", b.TargetKind))
}

func blitSourceString(src BlitSource) string {
	switch s := src.(type) {
	case BlitSourceImage:
		return fmt.Sprintf("image %+v", s.Key)
	case BlitSourceTask:
		return fmt.Sprintf("task %v", s.ID)
	default:
		panic(fmt.Sprintf("rendertask: unhandled blit source %T", src))
	}
}
