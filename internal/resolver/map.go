// Package resolver is the name resolver (§4.E): it resolves a syntax
// TypePathNode against a file's package, using-namespaces, using-aliases,
// and the enclosing type/method's generic-parameter stack, calling into
// the generic-type cache (§4.F) for generic applications.
//
// Grounded on the teacher's internal/symbollinker/go_resolver.go layered
// lookup shape (stdlib check -> relative -> module-prefix -> vendor ->
// external fallback), adapted point-for-point to this resolver's
// builtin -> generic-param -> alias -> using-namespace(-with-ambiguity) ->
// generic-cache ladder.
package resolver

import (
	"sync"

	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/types"
)

// Map is the global resolve map (§4.G): fully-qualified name to declaring
// TypeInfo. Accepts concurrent inserts during the gather-types phase under
// an internal lock; every later phase only reads it.
type Map struct {
	mu    sync.Mutex
	byFQN map[string]*typeEntry
}

type typeEntry struct {
	typ  *types.TypeInfo
	file string // declaring file path, for the duplicate-declaration message
}

// NewMap returns an empty resolve map.
func NewMap() *Map {
	return &Map{byFQN: make(map[string]*typeEntry)}
}

// Declare inserts typ under fqn if no declaration already claims that name,
// matching §3's "the first declaration wins" invariant. On a collision it
// returns the winning (first) entry's declaring file path and inserted as
// false, so the caller can format the "X was also declared in <file>"
// diagnostic (§4.H) with the exact file the original cites.
func (m *Map) Declare(fqn, filePath string, typ *types.TypeInfo) (existingFile string, inserted bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if existing, ok := m.byFQN[fqn]; ok {
		return existing.file, false
	}
	m.byFQN[fqn] = &typeEntry{typ: typ, file: filePath}
	return "", true
}

// Lookup returns the TypeInfo declared at fqn, or false if nothing is
// declared under that exact name.
func (m *Map) Lookup(fqn string) (*types.TypeInfo, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.byFQN[fqn]
	if !ok {
		return nil, false
	}
	return e.typ, true
}

// AllNames returns a snapshot of every declared fully-qualified name, used
// as the candidate pool for diagnostics.SuggestSimilar "did you mean"
// hints (§4.E/§4.M) and by the entry-point finder to enumerate candidate
// types (§4.K) — never on the resolution hot path.
func (m *Map) AllNames() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.byFQN))
	for name := range m.byFQN {
		out = append(out, name)
	}
	return out
}
