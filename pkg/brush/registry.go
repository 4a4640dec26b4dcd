package brush

import "go.uber.org/zap"

// Registry maps brush identifiers to brush implementations. It is an
// explicit instance assembled at startup; registration order is
// preserved for listing.
type Registry struct {
	log     *zap.Logger
	order   []string
	brushes map[string]Brush
}

// NewRegistry creates an empty registry. A nil logger disables the
// collision warnings.
func NewRegistry(log *zap.Logger) *Registry {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registry{
		log:     log,
		brushes: make(map[string]Brush),
	}
}

// NewDefaultRegistry creates a registry preloaded with the built-in
// brush set.
func NewDefaultRegistry(log *zap.Logger) *Registry {
	r := NewRegistry(log)
	for _, b := range Builtins() {
		r.Register(b)
	}
	return r
}

// Register adds a brush. Re-registering an id is last-writer-wins with
// a logged warning, never fatal.
func (r *Registry) Register(b Brush) {
	if _, exists := r.brushes[b.ID]; exists {
		r.log.Warn("brush id registered twice, replacing", zap.String("id", b.ID))
	} else {
		r.order = append(r.order, b.ID)
	}
	r.brushes[b.ID] = b
}

// Get looks up a brush by id.
func (r *Registry) Get(id string) (Brush, bool) {
	b, ok := r.brushes[id]
	return b, ok
}

// Exists reports whether a brush id is registered.
func (r *Registry) Exists(id string) bool {
	_, ok := r.brushes[id]
	return ok
}

// List returns all brushes in registration order.
func (r *Registry) List() []Brush {
	out := make([]Brush, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, r.brushes[id])
	}
	return out
}

// Dispatch applies the named brush. An unknown id returns the input
// heights unchanged (same reference), so observers relying on
// reference identity see no change.
func (r *Registry) Dispatch(id string, args ApplyArgs) []float32 {
	b, ok := r.brushes[id]
	if !ok {
		return args.Heights
	}
	return b.Apply(args)
}
