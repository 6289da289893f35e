//go:build !rendertask_release

package rendertask

// frameTag records which frame produced a TaskID so that an id kept across
// frames is caught instead of silently indexing unrelated tasks. Building
// with the rendertask_release tag turns it into a zero-size struct.
type frameTag struct {
	frame FrameID
}

const frameChecks = true

func makeFrameTag(frame FrameID) frameTag {
	return frameTag{frame: frame}
}

func (t frameTag) check(frame FrameID) {
	if t.frame != frame {
		bug("task id from frame %d used in frame %d", t.frame, frame)
	}
}
