package trigger

import (
	"errors"
	"fmt"
)

var ErrUnknownKind = errors.New("unknown trigger kind")

// InvalidConfigError is returned when a tenant-supplied raw config fails schema validation for its kind. Surfaced to the tenant admin by the external config layer; configs that fail validation never reach evaluation.
type InvalidConfigError struct {
	Kind   Kind
	Reason string
}

func (e *InvalidConfigError) Error() string {
	return fmt.Sprintf("invalid config for trigger %s: %s", e.Kind, e.Reason)
}

// Registry holds the fixed mapping from trigger kind to Spec. Registration happens at process startup only; the registry is frozen before any evaluation begins.
type Registry struct {
	specs  map[Kind]*Spec
	frozen bool
}

func NewRegistry() *Registry {
	return &Registry{specs: make(map[Kind]*Spec)}
}

func (r *Registry) Register(s *Spec) error {
	if r.frozen {
		return fmt.Errorf("registering trigger %s: registry is frozen", s.Kind)
	}
	if s.Kind == "" {
		return fmt.Errorf("trigger spec has empty kind")
	}
	if (s.Match == nil) == (s.MatchWindowed == nil) {
		return fmt.Errorf("trigger %s must set exactly one of Match or MatchWindowed", s.Kind)
	}
	if _, ok := r.specs[s.Kind]; ok {
		return fmt.Errorf("trigger %s already registered", s.Kind)
	}
	r.specs[s.Kind] = s
	return nil
}

// Freeze closes the registry to further registration. Called once after startup wiring.
func (r *Registry) Freeze() {
	r.frozen = true
}

func (r *Registry) Get(kind Kind) (*Spec, error) {
	s, ok := r.specs[kind]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownKind, kind)
	}
	return s, nil
}

// ValidateConfig checks a raw (JSON-decoded) config against the kind's schema and returns the validated, typed config.
func (r *Registry) ValidateConfig(kind Kind, raw map[string]any) (Config, error) {
	s, err := r.Get(kind)
	if err != nil {
		return nil, err
	}
	return s.Validate(raw)
}

// Default returns a frozen registry with the full built-in trigger catalog.
func Default() *Registry {
	r := NewRegistry()
	for _, s := range builtinSpecs() {
		if err := r.Register(s); err != nil {
			panic(err)
		}
	}
	r.Freeze()
	return r
}
