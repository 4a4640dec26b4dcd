package editor

import (
	"math"
	"testing"

	"github.com/mapforge/smfedit/pkg/brush"
	"github.com/mapforge/smfedit/pkg/smf"
)

func testMapData(t *testing.T) []byte {
	t.Helper()
	heights := make([]float32, 5*5)
	for i := range heights {
		heights[i] = 50
	}
	data, err := smf.EncodeWithStubs(smf.BuildSpec{
		Width:     4,
		Length:    4,
		MinHeight: 0,
		MaxHeight: 100,
		Heights:   heights,
	})
	if err != nil {
		t.Fatalf("EncodeWithStubs: %v", err)
	}
	return data
}

func newTestSession(t *testing.T) *Session {
	t.Helper()
	s, err := NewSession(testMapData(t), brush.NewDefaultRegistry(nil), nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}
	return s
}

func TestResolveAlias(t *testing.T) {
	cases := map[string]string{
		"add":    "raise",
		"remove": "lower",
		"raise":  "raise",
		"smooth": "smooth",
		"custom": "custom",
	}
	for in, want := range cases {
		if got := ResolveAlias(in); got != want {
			t.Errorf("ResolveAlias(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestNewSession_BuildsGrid(t *testing.T) {
	s := newTestSession(t)
	g := s.Grid()
	if g.VertsX != 5 || g.VertsZ != 5 {
		t.Fatalf("grid = %dx%d verts, want 5x5", g.VertsX, g.VertsZ)
	}
	if g.WorldWidth != 32 || g.WorldLength != 32 {
		t.Errorf("world size = %vx%v, want 32x32", g.WorldWidth, g.WorldLength)
	}
	// Quantization noise stays within half a height step.
	for i, h := range g.Heights {
		if math.Abs(float64(h-50)) > 1e-2 {
			t.Fatalf("vertex %d = %v, want about 50", i, h)
		}
	}
}

func TestApplyStroke_RaisesThroughAlias(t *testing.T) {
	s := newTestSession(t)
	before := s.Grid().Heights[2*5+2]

	ok := s.ApplyStroke(Stroke{Brush: "add", X: 0, Z: 0, Radius: 20, Strength: 10})
	if !ok {
		t.Fatal("ApplyStroke(add) reported no change")
	}
	after := s.Grid().Heights[2*5+2]
	if math.Abs(float64(after-before-10)) > 1e-3 {
		t.Errorf("center moved %v, want +10", after-before)
	}
}

func TestApplyStroke_UnknownBrush(t *testing.T) {
	s := newTestSession(t)
	before := append([]float32(nil), s.Grid().Heights...)

	if s.ApplyStroke(Stroke{Brush: "does-not-exist", Radius: 20, Strength: 10}) {
		t.Error("unknown brush reported a change")
	}
	for i, h := range s.Grid().Heights {
		if h != before[i] {
			t.Fatalf("vertex %d changed on unknown brush", i)
		}
	}
}

func TestApplyStroke_OutOfRangeIsNoChange(t *testing.T) {
	s := newTestSession(t)
	if s.ApplyStroke(Stroke{Brush: "raise", X: 5000, Z: 5000, Radius: 10, Strength: 10}) {
		t.Error("stroke far outside the grid reported a change")
	}
}

func TestApplyStroke_InvalidParamsRejected(t *testing.T) {
	reg := brush.NewDefaultRegistry(nil)
	reg.Register(brush.NewStampBrush(stubCache{}))
	s, err := NewSession(testMapData(t), reg, nil)
	if err != nil {
		t.Fatalf("NewSession: %v", err)
	}

	st := Stroke{
		Brush:    "stamp",
		Radius:   20,
		Strength: 1,
		Params:   map[string]any{"rotation": "sideways"},
	}
	if s.ApplyStroke(st) {
		t.Error("stroke with invalid params reported a change")
	}
}

type stubCache struct{}

func (stubCache) TryGet(string) (*brush.Raster, bool) { return nil, false }
func (stubCache) EnsureLoading(string)                {}

func TestDisplayGrid_HonorsCeiling(t *testing.T) {
	s := newTestSession(t)

	full := s.DisplayGrid()
	if full.VertsX != 5 {
		t.Errorf("default ceiling display grid VertsX = %d, want 5", full.VertsX)
	}

	s.SetSegmentCeiling(2)
	half := s.DisplayGrid()
	if half.VertsX != 3 || half.VertsZ != 3 {
		t.Errorf("ceiling 2 display grid = %dx%d, want 3x3", half.VertsX, half.VertsZ)
	}
}

func TestSave_RoundTripsEdits(t *testing.T) {
	s := newTestSession(t)
	s.ApplyStroke(Stroke{Brush: "raise", X: 0, Z: 0, Radius: 20, Strength: 10})

	out, err := s.Save()
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	saved, err := smf.Parse(out)
	if err != nil {
		t.Fatalf("Parse(saved): %v", err)
	}
	if got := saved.Heights[2*5+2]; math.Abs(float64(got-60)) > 1e-2 {
		t.Errorf("saved center = %v, want about 60", got)
	}

	orig, err := smf.Parse(testMapData(t))
	if err != nil {
		t.Fatalf("Parse(original): %v", err)
	}
	if len(saved.MetalMap) != len(orig.MetalMap) {
		t.Fatalf("metal map length changed: %d vs %d", len(saved.MetalMap), len(orig.MetalMap))
	}
	for i := range saved.MetalMap {
		if saved.MetalMap[i] != orig.MetalMap[i] {
			t.Fatalf("metal map byte %d changed", i)
		}
	}
}

func TestSaveRescaled_UpdatesBounds(t *testing.T) {
	s := newTestSession(t)
	s.ApplyStroke(Stroke{Brush: "raise", X: 0, Z: 0, Radius: 20, Strength: 100})

	out, err := s.SaveRescaled(0, 200)
	if err != nil {
		t.Fatalf("SaveRescaled: %v", err)
	}
	saved, err := smf.Parse(out)
	if err != nil {
		t.Fatalf("Parse(saved): %v", err)
	}
	if saved.Header.MinHeight != 0 || saved.Header.MaxHeight != 200 {
		t.Errorf("bounds = [%v, %v], want [0, 200]", saved.Header.MinHeight, saved.Header.MaxHeight)
	}
	if got := saved.Heights[2*5+2]; math.Abs(float64(got-150)) > 1e-2 {
		t.Errorf("saved center = %v, want about 150", got)
	}
}
