package pipeline

import (
	"strings"

	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/diagnostics"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/resolver"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/types"
)

// Exact diagnostic strings captured from original_source's
// FindEntryPointsJob.h (§4.K), reused verbatim.
const (
	errEntryPointNotExportedFmt = "Entry points must be marked as `export`. %s is not marked as exported but is requested as an entry point"
	errEntryPointGenericFmt     = "Generic types cannot be used as entry points, %s"
	errEntryPointNotClassFmt    = "Only class types can be used as entry points, %s is not a class"
	errEntryPointMethodNotExported = "Method must be marked `export` in order to be used as an entry point"
)

// FindEntryPoints runs §4.K once against the final resolve map: for each
// pattern, split at the last "::" to recover an optional package-path
// prefix (defaulting to rootPackage) and at the first "." to recover an
// optional method name, then resolve every declared type whose simple name
// matches within that package scope.
//
// Grounded on the teacher's internal/indexing pattern-matching entry points
// (glob-style root patterns resolved against an index), adapted here to a
// fully-qualified-name lookup instead of a filesystem glob.
func FindEntryPoints(m *resolver.Map, rootPackage string, patterns []string, sink *diagnostics.Sink) []*types.MethodInfo {
	seen := make(map[*types.MethodInfo]struct{})
	var out []*types.MethodInfo

	for _, pattern := range patterns {
		pkgPath, typeName, methodName := splitEntryPointPattern(pattern, rootPackage)
		pkgExplicit := strings.Contains(pattern, "::")
		for _, t := range candidateTypes(m, pkgPath, typeName, pkgExplicit) {
			method, ok := resolveEntryPointMethod(t, methodName, sink)
			if !ok {
				continue
			}
			if _, dup := seen[method]; dup {
				continue
			}
			seen[method] = struct{}{}
			out = append(out, method)
		}
	}
	return out
}

// splitEntryPointPattern implements §4.K's two splits: package path at the
// last "::" (defaulting to rootPackage when absent), method name at the
// first "." in what remains.
func splitEntryPointPattern(pattern, rootPackage string) (pkgPath, typeName, methodName string) {
	rest := pattern
	pkgPath = rootPackage
	if idx := strings.LastIndex(pattern, "::"); idx >= 0 {
		pkgPath = pattern[:idx]
		rest = pattern[idx+2:]
	}
	if dot := strings.Index(rest, "."); dot >= 0 {
		return pkgPath, rest[:dot], rest[dot+1:]
	}
	return pkgPath, rest, ""
}

// candidateTypes returns every declared type whose simple name matches
// typeName. When pkgExplicit is true the pattern named an exact package
// path, so only that one fully-qualified name is tried; otherwise pkgPath
// is the root package, and every type declared in it (at any namespace
// depth) whose fully-qualified name ends in "::"+typeName is a candidate.
func candidateTypes(m *resolver.Map, pkgPath, typeName string, pkgExplicit bool) []*types.TypeInfo {
	if pkgExplicit {
		if t, ok := m.Lookup(pkgPath + "::" + typeName); ok {
			return []*types.TypeInfo{t}
		}
		return nil
	}
	var out []*types.TypeInfo
	prefix := pkgPath + "::"
	suffix := "::" + typeName
	for _, fqn := range m.AllNames() {
		if strings.HasPrefix(fqn, prefix) && strings.HasSuffix(fqn, suffix) {
			if t, ok := m.Lookup(fqn); ok {
				out = append(out, t)
			}
		}
	}
	return out
}

func resolveEntryPointMethod(t *types.TypeInfo, methodName string, sink *diagnostics.Sink) (*types.MethodInfo, bool) {
	if t.IsGeneric() {
		sink.Errorf(filePathOf(t), diagnostics.LineColumn{}, errEntryPointGenericFmt, t.FullyQualifiedName)
		return nil, false
	}
	if t.Class != types.ClassClass {
		sink.Errorf(filePathOf(t), diagnostics.LineColumn{}, errEntryPointNotClassFmt, t.FullyQualifiedName)
		return nil, false
	}
	if t.Modifiers&types.ModExport == 0 {
		sink.Errorf(filePathOf(t), diagnostics.LineColumn{}, errEntryPointNotExportedFmt, t.FullyQualifiedName)
		return nil, false
	}

	var method *types.MethodInfo
	if methodName == "" {
		for _, cand := range t.Methods {
			if cand.Modifiers&types.ModExport != 0 && !cand.IsOptionalParameterPrototype {
				method = cand
				break
			}
		}
	} else {
		for _, cand := range t.Methods {
			if cand.Name == methodName && !cand.IsOptionalParameterPrototype {
				method = cand
				break
			}
		}
	}
	if method == nil {
		return nil, false
	}
	if method.Modifiers&types.ModExport == 0 {
		sink.Errorf(filePathOf(t), diagnostics.LineColumn{}, errEntryPointMethodNotExported)
		return nil, false
	}
	return method, true
}

func filePathOf(t *types.TypeInfo) string {
	if t.DeclaringFile == nil {
		return ""
	}
	return t.DeclaringFile.Path()
}
