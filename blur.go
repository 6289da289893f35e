package rendertask

const (
	// MaxBlurStdDeviation is the largest standard deviation the separable
	// blur shaders handle directly. Larger blurs downscale first.
	MaxBlurStdDeviation = 4.0

	// MinDownscalingTargetSize stops downscaling once either dimension of
	// the target would drop below it.
	MinDownscalingTargetSize = 8
)

// AdjustedBlurSourceSize returns the size the blur source should be
// rendered at so that every downscaling step in NewBlur halves it exactly.
func AdjustedBlurSourceSize(original Size, stdDev SizeF) Size {
	adjusted := original
	scale := float32(1)
	for stdDev.Width > MaxBlurStdDeviation && stdDev.Height > MaxBlurStdDeviation {
		if adjusted.Width < MinDownscalingTargetSize || adjusted.Height < MinDownscalingTargetSize {
			break
		}
		stdDev = stdDev.Scale(0.5)
		scale *= 2
		adjusted = original.DivCeil(scale)
	}

	return adjusted.Scale(int32(scale))
}

// NewBlur builds the downscale and blur chain for src and returns the final
// horizontal blur task. The caller adds it to the graph.
//
// The chain looks like:
//
//	src <- Scaling* <- VerticalBlur <- HorizontalBlur
//
// Each scaling task halves the target and the standard deviation until the
// deviation is at most MaxBlurStdDeviation or the target reaches
// MinDownscalingTargetSize.
func NewBlur(
	stdDev SizeF,
	src TaskID,
	g *Graph,
	targetKind TargetKind,
	clear ClearMode,
) Task {
	srcTask := g.Task(src)
	srcSize := srcTask.DynamicSize()
	uvRectKind := srcTask.UVRectKind()

	size := srcSize
	prev := src
	scale := float32(1)
	for stdDev.Width > MaxBlurStdDeviation && stdDev.Height > MaxBlurStdDeviation {
		if size.Width < MinDownscalingTargetSize || size.Height < MinDownscalingTargetSize {
			break
		}
		stdDev = stdDev.Scale(0.5)
		scale *= 2
		size = srcSize.DivCeil(scale)
		prev = g.Add(NewScaling(prev, g, targetKind, size))
	}

	vertical := g.Add(newDynamicTask(size, []TaskID{prev}, VerticalBlurTask{BlurTask{
		StdDeviation: stdDev.Height,
		TargetKind:   targetKind,
		UVRectKind:   uvRectKind,
	}}, clear))

	return newDynamicTask(size, []TaskID{vertical}, HorizontalBlurTask{BlurTask{
		StdDeviation: stdDev.Width,
		TargetKind:   targetKind,
		UVRectKind:   uvRectKind,
	}}, clear)
}
