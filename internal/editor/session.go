// Package editor glues a decoded map, its heightfield grid, and the
// brush registry into an interactive edit session.
package editor

import (
	"go.uber.org/zap"

	"github.com/mapforge/smfedit/pkg/brush"
	"github.com/mapforge/smfedit/pkg/heightfield"
	"github.com/mapforge/smfedit/pkg/smf"
)

// Stroke is one interactive brush application in world space.
type Stroke struct {
	Brush    string // Brush id or legacy mode name
	X, Z     float32
	Radius   float32
	Strength float32
	HitY     *float32
	Params   map[string]any
}

// ResolveAlias maps legacy UI mode names onto brush ids. The mapping
// lives at this boundary, not inside the registry.
func ResolveAlias(mode string) string {
	switch mode {
	case "add":
		return "raise"
	case "remove":
		return "lower"
	}
	return mode
}

// Session owns the original file bytes, the decoded document, and the
// native-resolution grid being edited. Edits always happen at native
// resolution; DisplayGrid derives a downsampled view for rendering.
type Session struct {
	log      *zap.Logger
	original []byte
	doc      *smf.Map
	grid     *heightfield.Grid
	registry *brush.Registry
	ceiling  int
}

// NewSession decodes an SMF file and prepares it for editing. Decode
// warnings are logged, not fatal.
func NewSession(data []byte, registry *brush.Registry, log *zap.Logger) (*Session, error) {
	if log == nil {
		log = zap.NewNop()
	}
	doc, err := smf.Parse(data)
	if err != nil {
		return nil, err
	}
	for _, w := range doc.Warnings {
		log.Warn("map decode warning", zap.String("detail", w))
	}
	return &Session{
		log:      log,
		original: append([]byte(nil), data...),
		doc:      doc,
		grid:     heightfield.FromMap(doc),
		registry: registry,
		ceiling:  heightfield.DefaultSegmentCeiling,
	}, nil
}

// SetSegmentCeiling overrides the display downsample ceiling.
func (s *Session) SetSegmentCeiling(ceiling int) {
	if ceiling > 0 {
		s.ceiling = ceiling
	}
}

// Doc returns the decoded document.
func (s *Session) Doc() *smf.Map { return s.doc }

// Grid returns the native-resolution grid being edited.
func (s *Session) Grid() *heightfield.Grid { return s.grid }

// DisplayGrid returns a strided view of the grid suitable for display,
// honoring the segment ceiling.
func (s *Session) DisplayGrid() *heightfield.Grid {
	maxDim := s.grid.VertsX - 1
	if s.grid.VertsZ-1 > maxDim {
		maxDim = s.grid.VertsZ - 1
	}
	return s.grid.Downsample(heightfield.ChooseStride(maxDim, s.ceiling))
}

// ApplyStroke dispatches one stroke and reports whether the heights
// changed. Unknown brush ids and invalid parameters are silent no-ops;
// interactive editing never fails a session on bad input.
func (s *Session) ApplyStroke(st Stroke) bool {
	id := ResolveAlias(st.Brush)
	b, ok := s.registry.Get(id)
	if !ok {
		s.log.Debug("stroke for unknown brush ignored", zap.String("brush", st.Brush))
		return false
	}

	params := st.Params
	if len(b.Params) > 0 {
		validated, err := brush.ValidateParams(b.Params, st.Params)
		if err != nil {
			s.log.Warn("stroke params rejected", zap.String("brush", id), zap.Error(err))
			return false
		}
		params = validated
	}

	old := s.grid.Heights
	next := b.Apply(brush.ApplyArgs{
		Heights:     old,
		VertsX:      s.grid.VertsX,
		VertsZ:      s.grid.VertsZ,
		WorldWidth:  s.grid.WorldWidth,
		WorldLength: s.grid.WorldLength,
		CenterX:     st.X,
		CenterZ:     st.Z,
		Radius:      st.Radius,
		Strength:    st.Strength,
		HitY:        st.HitY,
		Params:      params,
	})
	s.grid.Heights = next

	// Kernels return a fresh array even for no-ops, so compare values.
	return changed(old, next)
}

// Save re-quantizes the edited heights into a copy of the original
// file, preserving every untouched section byte-for-byte.
func (s *Session) Save() ([]byte, error) {
	return smf.PatchHeights(s.original, s.grid.Heights)
}

// SaveRescaled saves with new quantization bounds written into the
// header, e.g. after edits exceeded the original min/max range.
func (s *Session) SaveRescaled(minHeight, maxHeight float32) ([]byte, error) {
	return smf.PatchHeightsAndHeader(s.original, s.grid.Heights, smf.HeaderPatch{
		MinHeight: &minHeight,
		MaxHeight: &maxHeight,
	})
}

func changed(a, b []float32) bool {
	if len(a) != len(b) {
		return true
	}
	for i := range a {
		if a[i] != b[i] {
			return true
		}
	}
	return false
}
