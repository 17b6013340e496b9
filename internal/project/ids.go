// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 MD Studio Contributors

package project

import (
	"crypto/sha256"
	"math/rand/v2"
	"sync"

	"github.com/oklog/ulid/v2"

	"github.com/mdstudio/mdstudio/internal/script"
)

// idSource issues ULIDs for nodes authored without an id. The entropy stream
// is seeded from the project source so that loading the same file twice
// assigns the same ids and generated output stays byte-identical.
type idSource struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

func newIDSource(seed []byte) *idSource {
	return &idSource{entropy: ulid.Monotonic(rand.NewChaCha8(sha256.Sum256(seed)), 0)}
}

func (s *idSource) next() ulid.ULID {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(0, s.entropy)
}

// AssignIDs gives every node without an id a fresh ULID, in traversal order.
// It returns the number of ids assigned.
func AssignIDs(p *Project, seed []byte) int {
	src := newIDSource(seed)
	assigned := 0
	_ = p.EachHook(func(_ string, h NamedHook) error {
		script.Walk(*h.Hook, func(n *script.Node) bool {
			if n.ID == "" {
				n.ID = src.next().String()
				assigned++
			}
			return true
		})
		return nil
	})
	return assigned
}
