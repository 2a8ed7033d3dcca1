package registry

import (
	"testing"
	"time"
)

func TestReconcile_AddedChangedDeleted(t *testing.T) {
	r := NewRegistry("Test")
	t0 := time.Unix(1000, 0)

	diffs := r.Reconcile([]ScannedPath{
		{Path: "a.ax", PackageName: "Test", LastEditTime: t0},
		{Path: "b.ax", PackageName: "Test", LastEditTime: t0},
	})
	for _, d := range diffs {
		if d.Kind != Added {
			t.Fatalf("first scan of %s should be Added, got %v", d.Path, d.Kind)
		}
	}

	t1 := t0.Add(time.Second)
	diffs = r.Reconcile([]ScannedPath{
		{Path: "a.ax", PackageName: "Test", LastEditTime: t0}, // unchanged
		{Path: "b.ax", PackageName: "Test", LastEditTime: t1}, // changed
		{Path: "c.ax", PackageName: "Test", LastEditTime: t0}, // added
	})

	kinds := make(map[string]ChangeKind, len(diffs))
	for _, d := range diffs {
		kinds[d.Path] = d.Kind
	}
	if kinds["a.ax"] != Unchanged {
		t.Fatalf("a.ax kind = %v, want Unchanged", kinds["a.ax"])
	}
	if kinds["b.ax"] != Changed {
		t.Fatalf("b.ax kind = %v, want Changed", kinds["b.ax"])
	}
	if kinds["c.ax"] != Added {
		t.Fatalf("c.ax kind = %v, want Added", kinds["c.ax"])
	}

	diffs = r.Reconcile([]ScannedPath{
		{Path: "a.ax", PackageName: "Test", LastEditTime: t0},
	})
	if len(diffs) != 3 {
		t.Fatalf("expected a.ax unchanged and b.ax, c.ax deleted, got %d diffs", len(diffs))
	}
	for _, d := range diffs {
		want := Deleted
		if d.Path == "a.ax" {
			want = Unchanged
		}
		if d.Kind != want {
			t.Fatalf("diff for %s = %v, want %v", d.Path, d.Kind, want)
		}
	}
}

func TestReconcile_DeletedIDIsReused(t *testing.T) {
	r := NewRegistry("Test")
	t0 := time.Unix(2000, 0)

	r.Reconcile([]ScannedPath{{Path: "a.ax", PackageName: "Test", LastEditTime: t0}})
	firstID := r.byPath["a.ax"].FileID()

	r.Reconcile(nil) // a.ax deleted, its id freed

	diffs := r.Reconcile([]ScannedPath{{Path: "b.ax", PackageName: "Test", LastEditTime: t0}})
	if diffs[0].Kind != Added {
		t.Fatalf("b.ax should be Added, got %v", diffs[0].Kind)
	}
	if diffs[0].File.FileID() != firstID {
		t.Fatalf("freed file id %d was not reused, got %d", firstID, diffs[0].File.FileID())
	}
}

// TestPropagateChanges_FixedPoint is §8's testable property: running the
// change-propagation loop twice yields the same set.
func TestPropagateChanges_FixedPoint(t *testing.T) {
	r := NewRegistry("Test")
	t0 := time.Unix(3000, 0)

	r.Reconcile([]ScannedPath{
		{Path: "a.ax", PackageName: "Test", LastEditTime: t0},
		{Path: "b.ax", PackageName: "Test", LastEditTime: t0},
		{Path: "c.ax", PackageName: "Test", LastEditTime: t0},
	})

	a := r.byPath["a.ax"]
	b := r.byPath["b.ax"]
	c := r.byPath["c.ax"]

	// b depends on a, c depends on b: a chain that must fully propagate.
	b.AddFileReference(a)
	c.AddFileReference(b)

	t1 := t0.Add(time.Minute)
	r.Reconcile([]ScannedPath{
		{Path: "a.ax", PackageName: "Test", LastEditTime: t1}, // only a changed
		{Path: "b.ax", PackageName: "Test", LastEditTime: t0},
		{Path: "c.ax", PackageName: "Test", LastEditTime: t0},
	})

	first := r.PropagateChanges()
	second := r.PropagateChanges()

	for _, f := range []*FileInfo{a, b, c} {
		if first.IsSet(f.FileID()) != second.IsSet(f.FileID()) {
			t.Fatalf("file %s: propagation not a fixed point (first=%v second=%v)",
				f.FilePath, first.IsSet(f.FileID()), second.IsSet(f.FileID()))
		}
	}
	if !first.IsSet(a.FileID()) || !first.IsSet(b.FileID()) || !first.IsSet(c.FileID()) {
		t.Fatalf("expected the full dependency chain to be marked changed")
	}
}

func TestBitmap_SetIsSetIntersects(t *testing.T) {
	a := NewBitmap()
	a.Set(3)
	a.Set(70) // forces growth past one word

	if !a.IsSet(3) || !a.IsSet(70) {
		t.Fatalf("expected bits 3 and 70 to be set")
	}
	if a.IsSet(4) {
		t.Fatalf("bit 4 should not be set")
	}

	b := NewBitmap()
	b.Set(70)
	if !a.Intersects(b) {
		t.Fatalf("expected a and b to intersect on bit 70")
	}

	c := NewBitmap()
	c.Set(5)
	if a.Intersects(c) {
		t.Fatalf("expected a and c not to intersect")
	}

	var seen []uint32
	a.Each(func(bit uint32) { seen = append(seen, bit) })
	if len(seen) != 2 || seen[0] != 3 || seen[1] != 70 {
		t.Fatalf("Each produced %v, want [3 70] in ascending order", seen)
	}
}
