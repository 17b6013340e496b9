// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

package event

import (
	"fmt"
	"sort"
	"strings"
	"sync"
)

// Registry maps kind ids to kinds. Kinds are registered at startup; after
// Freeze the registry is read-only and safe to share between compile runs.
type Registry struct {
	mu     sync.RWMutex
	kinds  map[string]*Kind
	frozen bool
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{kinds: make(map[string]*Kind)}
}

// Register validates and adds a kind. Malformed schemas are rejected with
// INVALID_KIND or STRUCTURAL_VIOLATION; duplicates with DUPLICATE_KIND.
func (r *Registry) Register(k Kind) error {
	if err := validateKind(&k); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if r.frozen {
		return ErrFrozen(k.ID)
	}
	if _, exists := r.kinds[k.ID]; exists {
		return ErrDuplicate(k.ID)
	}

	fields := make([]Field, len(k.Fields))
	copy(fields, k.Fields)
	k.Fields = fields
	r.kinds[k.ID] = &k
	return nil
}

// MustRegister adds a kind, panicking on error.
// This is intended for startup registration only.
func (r *Registry) MustRegister(k Kind) {
	if err := r.Register(k); err != nil {
		panic(err)
	}
}

// Lookup returns the kind registered under id.
func (r *Registry) Lookup(id string) (*Kind, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	k, ok := r.kinds[id]
	return k, ok
}

// IDs returns all registered ids in sorted order.
func (r *Registry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	ids := make([]string, 0, len(r.kinds))
	for id := range r.kinds {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Kinds returns all registered kinds sorted by id.
func (r *Registry) Kinds() []*Kind {
	ids := r.IDs()

	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]*Kind, 0, len(ids))
	for _, id := range ids {
		out = append(out, r.kinds[id])
	}
	return out
}

// Len returns the number of registered kinds.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.kinds)
}

// Freeze makes the registry read-only.
func (r *Registry) Freeze() {
	r.mu.Lock()
	r.frozen = true
	r.mu.Unlock()
}

// Frozen reports whether Freeze was called.
func (r *Registry) Frozen() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.frozen
}

// RequireKinds checks that every id in ids is registered.
func (r *Registry) RequireKinds(ids ...string) error {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var missing []string
	for _, id := range ids {
		if _, ok := r.kinds[id]; !ok {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return ErrMissing(missing)
	}
	return nil
}

func validateKind(k *Kind) error {
	if strings.TrimSpace(k.ID) == "" {
		return ErrInvalid(k.ID, "id cannot be empty")
	}
	if k.Emit == nil {
		return ErrInvalid(k.ID, "emission rule cannot be nil")
	}

	seen := make(map[string]bool, len(k.Fields))
	for _, f := range k.Fields {
		if f.Key == "" {
			return ErrInvalid(k.ID, "field key cannot be empty")
		}
		if seen[f.Key] {
			return ErrInvalid(k.ID, fmt.Sprintf("duplicate field %q", f.Key))
		}
		seen[f.Key] = true

		if err := validateField(k.ID, f); err != nil {
			return err
		}
	}
	return nil
}

func validateField(kind string, f Field) error {
	if f.SubScript != (f.Type == TypeEvents) {
		return ErrStructural(kind, f.Key, fmt.Sprintf("sub-script flag %t contradicts type %q", f.SubScript, f.Type))
	}
	if f.Default != nil && isCollection(f.Default) {
		return ErrStructural(kind, f.Key, "default cannot be a collection")
	}

	switch f.Type {
	case TypeEvents:
		if f.Default != nil {
			return ErrStructural(kind, f.Key, "event-list field cannot have a default")
		}
		return nil
	case TypeNumber:
		if f.Range != nil && f.Range.Min > f.Range.Max {
			return ErrInvalid(kind, fmt.Sprintf("field %q: range min %d exceeds max %d", f.Key, f.Range.Min, f.Range.Max))
		}
	case TypeSelect:
		if len(f.Options) == 0 {
			return ErrInvalid(kind, fmt.Sprintf("field %q: select needs options", f.Key))
		}
	case TypeRef:
		switch f.Ref {
		case RefActor, RefScene, RefSprite, RefVariable, RefMusic, RefSound:
		default:
			return ErrInvalid(kind, fmt.Sprintf("field %q: unknown reference kind %q", f.Key, f.Ref))
		}
	case TypeText, TypeBoolean:
	default:
		return ErrInvalid(kind, fmt.Sprintf("field %q: unknown type %q", f.Key, f.Type))
	}

	if f.Default != nil {
		if _, reason := coerce(f, f.Default); reason != "" {
			return ErrInvalid(kind, fmt.Sprintf("field %q: default %v is %s", f.Key, f.Default, reason))
		}
	}
	return nil
}
