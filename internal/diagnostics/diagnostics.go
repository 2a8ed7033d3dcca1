// Package diagnostics is the mutex-guarded error sink shared by every
// analysis phase, grounded on the original source's Diagnostics{mutex, list}
// and adapted from the teacher's internal/errors typed-error taxonomy.
package diagnostics

import (
	"fmt"
	"sort"
	"sync"

	"github.com/hbollon/go-edlib"
)

// LineColumn is a 1-based source position.
type LineColumn struct {
	Line, Column int
}

// Diagnostic is one reported problem. Messages are stable strings for the
// common cases so tests and downstream tooling can match on them exactly.
type Diagnostic struct {
	FilePath string
	Pos      LineColumn
	Message  string
}

func (d Diagnostic) String() string {
	return fmt.Sprintf("%s (%d:%d) %s", d.FilePath, d.Pos.Line, d.Pos.Column, d.Message)
}

// Sink collects diagnostics from any number of concurrent workers.
type Sink struct {
	mu   sync.Mutex
	list []Diagnostic
}

// NewSink returns an empty diagnostics sink.
func NewSink() *Sink {
	return &Sink{}
}

// Add appends a pre-built diagnostic.
func (s *Sink) Add(d Diagnostic) {
	s.mu.Lock()
	s.list = append(s.list, d)
	s.mu.Unlock()
}

// Errorf formats and appends a diagnostic, mirroring the original's
// LogErrorArgs printf-style call sites.
func (s *Sink) Errorf(filePath string, pos LineColumn, format string, args ...any) {
	s.Add(Diagnostic{FilePath: filePath, Pos: pos, Message: fmt.Sprintf(format, args...)})
}

// All returns a snapshot of every diagnostic reported so far, ordered by
// file path then position for stable test output (the original leaves
// cross-worker ordering unspecified; this just makes "unspecified" concrete
// and deterministic for this implementation).
func (s *Sink) All() []Diagnostic {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Diagnostic, len(s.list))
	copy(out, s.list)
	sort.Slice(out, func(i, j int) bool {
		if out[i].FilePath != out[j].FilePath {
			return out[i].FilePath < out[j].FilePath
		}
		if out[i].Pos.Line != out[j].Pos.Line {
			return out[i].Pos.Line < out[j].Pos.Line
		}
		return out[i].Pos.Column < out[j].Pos.Column
	})
	return out
}

// HasErrors reports whether any diagnostic has been reported.
func (s *Sink) HasErrors() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.list) > 0
}

// suggestionThreshold is the minimum Jaro-Winkler similarity (0..1) for a
// candidate to be worth surfacing as a "did you mean" hint.
const suggestionThreshold = 0.82

// SuggestSimilar returns the candidate most similar to got by Jaro-Winkler
// distance, grounded on the teacher's internal/semantic/fuzzy_matcher.go use
// of go-edlib, when that similarity clears suggestionThreshold. Used by the
// name resolver to enrich "unable to resolve type" diagnostics; never
// changes resolution semantics.
func SuggestSimilar(candidates []string, got string) (string, bool) {
	best := ""
	bestScore := 0.0
	for _, c := range candidates {
		score, err := edlib.StringsSimilarity(got, c, edlib.JaroWinkler)
		if err != nil {
			continue
		}
		if score > bestScore {
			bestScore = score
			best = c
		}
	}
	if bestScore < suggestionThreshold {
		return "", false
	}
	return best, true
}

// WithSuggestion appends a "(did you mean `X`?)" hint to msg when a
// similar-enough candidate exists, otherwise returns msg unchanged.
func WithSuggestion(msg string, candidates []string, got string) string {
	if hint, ok := SuggestSimilar(candidates, got); ok {
		return fmt.Sprintf("%s (did you mean `%s`?)", msg, hint)
	}
	return msg
}
