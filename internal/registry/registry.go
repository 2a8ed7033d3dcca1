package registry

import "sync"

// ChangeKind classifies how a path compared against the previous run.
type ChangeKind uint8

const (
	Unchanged ChangeKind = iota
	Changed
	Added
	Deleted
)

// Registry owns every FileInfo across compile runs and assigns stable file
// ids, reusing ids freed by deleted files (§3's "ids freed on deletion are
// reused").
type Registry struct {
	mu        sync.Mutex
	byPath    map[string]*FileInfo
	byID      []*FileInfo // index by file id; nil entries are freed/reusable
	freeIDs   []uint32
	rootPkg   string
}

// NewRegistry creates an empty registry for the given root package name
// (used by the entry-point finder, §4.K, when a pattern omits its package).
func NewRegistry(rootPackage string) *Registry {
	return &Registry{
		byPath: make(map[string]*FileInfo),
		rootPkg: rootPackage,
	}
}

func (r *Registry) RootPackage() string { return r.rootPkg }

func (r *Registry) allocID() uint32 {
	if n := len(r.freeIDs); n > 0 {
		id := r.freeIDs[n-1]
		r.freeIDs = r.freeIDs[:n-1]
		return id
	}
	id := uint32(len(r.byID))
	r.byID = append(r.byID, nil)
	return id
}

// Diff describes one enumerated path's outcome relative to the previous
// run, per §4.G steps 1-3.
type Diff struct {
	Path string
	Kind ChangeKind
	File *FileInfo
}

// Reconcile applies one enumeration pass: seen is every path found on disk
// this run with its package name and last-edit time. Paths previously known
// but absent from seen are Deleted; their FileInfo is invalidated and its
// id freed for reuse, matching §4.G's "files no longer touched are
// deleted."
func (r *Registry) Reconcile(seen []ScannedPath) []Diff {
	r.mu.Lock()
	defer r.mu.Unlock()

	touched := make(map[string]bool, len(seen))
	var diffs []Diff

	for _, sp := range seen {
		touched[sp.Path] = true
		existing, ok := r.byPath[sp.Path]
		if !ok {
			id := r.allocID()
			f := newFileInfo(id, sp.PackageName, sp.Path)
			f.LastEditTime = sp.LastEditTime
			f.WasChanged = true
			r.byID[id] = f
			r.byPath[sp.Path] = f
			diffs = append(diffs, Diff{Path: sp.Path, Kind: Added, File: f})
			continue
		}
		if !existing.LastEditTime.Equal(sp.LastEditTime) {
			existing.Invalidate()
			existing.LastEditTime = sp.LastEditTime
			existing.WasChanged = true
			diffs = append(diffs, Diff{Path: sp.Path, Kind: Changed, File: existing})
		} else {
			existing.WasChanged = false
			diffs = append(diffs, Diff{Path: sp.Path, Kind: Unchanged, File: existing})
		}
	}

	for path, f := range r.byPath {
		if touched[path] {
			continue
		}
		f.Invalidate()
		r.byID[f.fileID] = nil
		r.freeIDs = append(r.freeIDs, f.fileID)
		delete(r.byPath, path)
		diffs = append(diffs, Diff{Path: path, Kind: Deleted, File: f})
	}

	return diffs
}

// Files returns every currently-registered FileInfo.
func (r *Registry) Files() []*FileInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*FileInfo, 0, len(r.byPath))
	for _, f := range r.byPath {
		out = append(out, f)
	}
	return out
}

// ByID returns the FileInfo for id, or nil if id is free.
func (r *Registry) ByID(id uint32) *FileInfo {
	r.mu.Lock()
	defer r.mu.Unlock()
	if int(id) >= len(r.byID) {
		return nil
	}
	return r.byID[id]
}

// PropagateChanges runs the fixed-point closure from §4.G: a file is marked
// changed if its dependency bitmap intersects the current changed set,
// repeating until no new file is added. Running it twice yields the same
// set (§8's fixed-point testable property) because the loop only
// terminates once no iteration adds anything.
func (r *Registry) PropagateChanges() *Bitmap {
	r.mu.Lock()
	files := make([]*FileInfo, 0, len(r.byPath))
	for _, f := range r.byPath {
		files = append(files, f)
	}
	r.mu.Unlock()

	changed := NewBitmap()
	for _, f := range files {
		if f.WasChanged {
			changed.Set(f.fileID)
		}
	}

	for {
		progressed := false
		for _, f := range files {
			if changed.IsSet(f.fileID) {
				continue
			}
			if f.DependencyBitmap.Intersects(changed) {
				changed.Set(f.fileID)
				progressed = true
			}
		}
		if !progressed {
			break
		}
	}
	return changed
}
