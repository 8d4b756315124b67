package zireael

// clipRect is an axis-aligned rectangle in framebuffer cell coordinates.
type clipRect struct {
	X, Y, W, H int
}

func (r clipRect) contains(x, y int) bool {
	return x >= r.X && x < r.X+r.W && y >= r.Y && y < r.Y+r.H
}

// intersect returns the rectangle common to r and o; an empty result has
// W or H <= 0.
func (r clipRect) intersect(o clipRect) clipRect {
	x0 := max(r.X, o.X)
	y0 := max(r.Y, o.Y)
	x1 := min(r.X+r.W, o.X+o.W)
	y1 := min(r.Y+r.H, o.Y+o.H)
	if x1 <= x0 || y1 <= y0 {
		return clipRect{X: x0, Y: y0, W: 0, H: 0}
	}
	return clipRect{X: x0, Y: y0, W: x1 - x0, H: y1 - y0}
}

// min/max here are the language builtins (Go 1.21+); no local helpers
// needed.

// clipStack is the bounded push/pop clip-rectangle stack a drawlist session
// carries (spec §3). Every push intersects with the current top (or the
// framebuffer bounds, for the first push); pop on an empty stack is a
// format error, matching PUSH_CLIP/POP_CLIP semantics in spec §4.D.
type clipStack struct {
	rects *fixedVec[clipRect]
	base  clipRect
}

func newClipStack(maxDepth int, base clipRect) *clipStack {
	return &clipStack{rects: newFixedVec[clipRect](maxDepth), base: base}
}

// current returns the active clip rectangle: the top of the stack, or the
// framebuffer bounds if the stack is empty.
func (s *clipStack) current() clipRect {
	if top, ok := s.rects.last(); ok {
		return top
	}
	return s.base
}

// push intersects r with the current clip and pushes the result. Fails
// with ErrLimit at capacity (spec §4.D: clip depth is a limit).
func (s *clipStack) push(r clipRect) error {
	return s.rects.push(s.current().intersect(r))
}

// pop removes the top clip rectangle. Fails with ErrFormat on an empty
// stack, per spec §3 ("Pop on an empty stack is a format error").
func (s *clipStack) pop() error {
	if s.rects.len() == 0 {
		return newErr(ErrFormat, "POP_CLIP on empty clip stack")
	}
	s.rects.pop()
	return nil
}
