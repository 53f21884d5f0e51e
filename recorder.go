package glyphmosaic

import "image/color"

type OpKind int

const (
	OpFill OpKind = iota
	OpText
)

func (k OpKind) String() string {
	if k == OpText {
		return "text"
	}
	return "fill"
}

// Op is one drawing call captured by a Recorder, with the style state that
// was current when it was issued.
type Op struct {
	Kind  OpKind
	Color color.Color
	Alpha float64
	// Fill: the closed outline, in frame coordinates.
	Path []Point
	// Text: the string, its style and placement.
	Text  string
	Style TextStyle
	At    Transform
}

// Origin is where the text's local origin lands in the frame.
func (o Op) Origin() Point {
	x, y := o.At.Apply(0, 0)
	return Point{x, y}
}

// Recorder is a Surface that stores drawing calls instead of rasterizing
// them.
type Recorder struct {
	width, height float64
	state         surfaceState
	stack         []surfaceState
	path          []Point
	Ops           []Op
}

func NewRecorder(width, height float64) *Recorder {
	return &Recorder{width: width, height: height, state: defaultSurfaceState()}
}

func (r *Recorder) Size() (float64, float64) { return r.width, r.height }

func (r *Recorder) Save() { r.stack = append(r.stack, r.state) }

func (r *Recorder) Restore() {
	if len(r.stack) == 0 {
		return
	}
	r.state = r.stack[len(r.stack)-1]
	r.stack = r.stack[:len(r.stack)-1]
}

func (r *Recorder) SetFillColor(c color.Color) { r.state.fill = c }
func (r *Recorder) SetGlobalAlpha(a float64)   { r.state.alpha = a }
func (r *Recorder) SetTextStyle(s TextStyle)   { r.state.style = s }
func (r *Recorder) BeginPath()                 { r.path = nil }
func (r *Recorder) MoveTo(x, y float64)        { r.path = append(r.path, Point{x, y}) }
func (r *Recorder) LineTo(x, y float64)        { r.path = append(r.path, Point{x, y}) }
func (r *Recorder) ClosePath()                 {}

func (r *Recorder) FillRect(x, y, w, h float64) {
	r.path = []Point{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}
	r.Fill()
}

func (r *Recorder) Fill() {
	r.Ops = append(r.Ops, Op{
		Kind:  OpFill,
		Color: r.state.fill,
		Alpha: r.state.alpha,
		Path:  r.path,
	})
	r.path = nil
}

func (r *Recorder) FillText(s string, at Transform) {
	r.Ops = append(r.Ops, Op{
		Kind:  OpText,
		Color: r.state.fill,
		Alpha: r.state.alpha,
		Text:  s,
		Style: r.state.style,
		At:    at,
	})
}

// Alpha is the global alpha currently in effect.
func (r *Recorder) Alpha() float64 { return r.state.alpha }

// Texts returns the text operations in drawing order.
func (r *Recorder) Texts() []Op {
	var out []Op
	for _, op := range r.Ops {
		if op.Kind == OpText {
			out = append(out, op)
		}
	}
	return out
}
