package scope

import (
	"errors"

	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/types"
)

// ErrAmbiguousOverload is raised (SPEC_FULL §9, decided Open Question (b))
// when two or more candidates tie exactly on conversion score: unlike the
// original implementation, which left an exact tie undiagnosed, this
// resolver always reports it.
var ErrAmbiguousOverload = errors.New("ambiguous overload: multiple candidates tie on conversion score")

// OverloadOutcome tags what ResolveOverload decided, so the introspector
// can produce either an InstanceCall/StaticCall node or a SemanticError.
type OverloadOutcome uint8

const (
	OverloadNone OverloadOutcome = iota
	OverloadResolved
	OverloadAmbiguous
	OverloadNoCandidate
)

// RejectedCandidate records why a method matching the call's arity was
// excluded before or during scoring, for the "no candidate survives"
// diagnostic (§4.J step 2 names static-from-instance and visibility;
// a failed conversion at scoring time is recorded the same way).
type RejectedCandidate struct {
	Method *types.MethodInfo
	Reason string
}

// OverloadResult is ResolveOverload's verdict: exactly one of Method is set
// (OverloadResolved) or Outcome explains why not.
type OverloadResult struct {
	Outcome OverloadOutcome
	Method  *types.MethodInfo
	// Ambiguous holds every method tied for best score, populated only when
	// Outcome == OverloadAmbiguous, for the diagnostic's candidate list.
	Ambiguous []*types.MethodInfo
	// Rejected holds every arity-matching candidate that didn't reach
	// scoring (or scored NoConversion on some parameter), populated
	// whenever Outcome == OverloadNoCandidate.
	Rejected []RejectedCandidate
}

// CallSite is the permission context a call expression resolves candidates
// against: whether an instance receiver is available at the call site, and
// the type the call originates from. ResolveOverload uses it for §4.J step
// 2's static-from-instance and visibility filtering.
type CallSite struct {
	HasInstance bool
	FromType    *types.TypeInfo
}

// ResolveOverload picks the best member of group for a call site with
// argTypes, following original_source's pipeline: collect candidates
// matching the argument count (optional-parameter expansions, §4.I, are
// already separate members of group), reject any not permitted at site — an instance method called
// without an instance, or a private method called from outside its
// declaring type — recording why, then score the survivors and require a
// strict single winner.
//
// A tie at the best score is an ambiguous match — but only once a second
// candidate reaches that score (Open Question (a) in this implementation:
// the ambiguity diagnostic fires on the second tie, not pre-emptively).
func ResolveOverload(group *types.MethodGroup, argTypes []types.ResolvedType, site CallSite) OverloadResult {
	type scored struct {
		method *types.MethodInfo
		total  int
	}
	var candidates []scored
	var rejected []RejectedCandidate

	for _, m := range group.Methods {
		params := m.Parameters
		if len(params) != len(argTypes) {
			continue
		}
		if !site.HasInstance && !m.IsStatic() {
			rejected = append(rejected, RejectedCandidate{m, "cannot call instance method '" + m.Name + "' without an instance"})
			continue
		}
		if m.IsPrivate() && site.FromType != m.DeclaringType {
			rejected = append(rejected, RejectedCandidate{m, "method '" + m.Name + "' is private and not accessible here"})
			continue
		}
		total := 0
		ok := true
		for i, p := range params {
			s := ScoreConversion(argTypes[i], p.Type)
			if s == NoConversion {
				ok = false
				break
			}
			total += int(s)
		}
		if ok {
			candidates = append(candidates, scored{m, total})
		} else {
			rejected = append(rejected, RejectedCandidate{m, "no implicit conversion to the parameters of '" + m.Name + "'"})
		}
	}

	if len(candidates) == 0 {
		return OverloadResult{Outcome: OverloadNoCandidate, Rejected: rejected}
	}

	best := candidates[0]
	var tied []*types.MethodInfo
	for _, c := range candidates[1:] {
		if c.total > best.total {
			best = c
			tied = nil
		} else if c.total == best.total {
			tied = append(tied, c.method)
		}
	}

	if len(tied) > 0 {
		return OverloadResult{
			Outcome:   OverloadAmbiguous,
			Ambiguous: append([]*types.MethodInfo{best.method}, tied...),
		}
	}
	return OverloadResult{Outcome: OverloadResolved, Method: best.method}
}
