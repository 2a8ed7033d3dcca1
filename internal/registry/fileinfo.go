// Package registry owns FileInfo records across compile runs: enumerating
// package roots, diffing against the previous run (touched / changed /
// added / deleted), and the dependency-bitmap fixed-point invalidation
// closure that feeds the generic-type cache's invalidation (§4.F, §4.G).
//
// Enumeration is grounded on the teacher's internal/indexing/pipeline.go
// ScanDirectory/FileScanner (symlink-cycle detection, back-pressure);
// exclude-glob matching reuses bmatcuk/doublestar/v4 the same way the
// teacher's internal/indexing/watcher.go does.
package registry

import (
	"sync"
	"time"

	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/alloc"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/scope"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/syntax"
	"github.com/EvolveGameTools/AlchemyCompiler-sub002/internal/types"
)

// DeclaredType pairs a declared TypeInfo with the per-type scope metadata
// (TypeContext) built later by the scope introspector (§4.J).
type DeclaredType struct {
	TypeInfo    *types.TypeInfo
	TypeContext *scope.TypeContext
}

// UsingAliasDecl is one unresolved `using Name = Path::To::Type;` directive
// collected by the gather-types phase (§4.H); TypePath indexes into the
// owning FileInfo's Tree.
type UsingAliasDecl struct {
	Name     string
	TypePath syntax.NodeIndex
}

// FileInfo owns one arena for everything parsed from and resolved about a
// single source file. Matches §3's FileInfo data model exactly.
type FileInfo struct {
	fileID uint32

	PackageName string
	FilePath    string

	Arena *alloc.Arena

	Tree *syntax.Tree

	WasChanged   bool
	LastEditTime time.Time

	DeclaredTypes   []DeclaredType
	UsingNamespaces []string
	UsingAliases    map[string]*types.TypeInfo

	// UsingAliasDecls is the raw (name, target type path) pairs gathered
	// from the file's `using Name = Path::To::Type;` directives; the
	// resolve-members phase (§4.I step 1) resolves each target and
	// populates UsingAliases.
	UsingAliasDecls []UsingAliasDecl

	// DependencyBitmap: bit b set iff this file references a type declared
	// in the file with file_id = b. Monotonic within a compile run.
	DependencyBitmap *Bitmap

	mu sync.Mutex
}

func newFileInfo(id uint32, packageName, path string) *FileInfo {
	return &FileInfo{
		fileID:           id,
		PackageName:      packageName,
		FilePath:         path,
		Arena:            alloc.NewArena(),
		UsingAliases:     make(map[string]*types.TypeInfo),
		DependencyBitmap: NewBitmap(),
	}
}

// NewFileInfoForTest exposes newFileInfo to other packages' tests (the
// resolver and pipeline phases build FileInfo fixtures directly rather than
// going through a full Registry scan).
func NewFileInfoForTest(id uint32, packageName, path string) *FileInfo {
	return newFileInfo(id, packageName, path)
}

// FileID implements types.FileHandle.
func (f *FileInfo) FileID() uint32 { return f.fileID }

// Path implements types.FileHandle.
func (f *FileInfo) Path() string { return f.FilePath }

// AddFileReference sets the dependency bit for dep's file id, matching
// §4.E step 7 / §4.G's dependency bitmap.
func (f *FileInfo) AddFileReference(dep *FileInfo) {
	f.mu.Lock()
	f.DependencyBitmap.Set(dep.fileID)
	f.mu.Unlock()
}

// AddFileReferenceByID sets the dependency bit for a resolved type's
// declaring file id directly (§4.E step 7). The resolver only holds the
// resolved type's types.FileHandle, not a concrete *FileInfo, so it cannot
// call AddFileReference.
func (f *FileInfo) AddFileReferenceByID(depFileID uint32) {
	f.mu.Lock()
	f.DependencyBitmap.Set(depFileID)
	f.mu.Unlock()
}

// Invalidate clears the file's arena and every derived list, called on
// deletion or full reload (this module does not support within-file
// incremental reanalysis, per §1's explicit non-goals).
func (f *FileInfo) Invalidate() {
	f.Arena.Reset()
	f.Tree = nil
	f.DeclaredTypes = nil
	f.UsingNamespaces = nil
	f.UsingAliases = make(map[string]*types.TypeInfo)
	f.UsingAliasDecls = nil
	f.DependencyBitmap = NewBitmap()
}
