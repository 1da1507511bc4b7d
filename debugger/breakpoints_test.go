package debugger

import "testing"

func TestBreakpointManagerAddBreakpoint(t *testing.T) {
	bm := NewBreakpointManager()

	bp := bm.AddBreakpoint(0x1000, false, "")

	if bp == nil {
		t.Fatal("AddBreakpoint returned nil")
	}
	if bp.ID != 1 {
		t.Errorf("expected ID 1, got %d", bp.ID)
	}
	if bp.Address != 0x1000 {
		t.Errorf("expected address 0x1000, got 0x%08X", bp.Address)
	}
	if !bp.Enabled {
		t.Error("breakpoint should be enabled by default")
	}
	if bp.Temporary {
		t.Error("breakpoint should not be temporary")
	}
	if bp.HitCount != 0 {
		t.Errorf("initial hit count should be 0, got %d", bp.HitCount)
	}
}

func TestBreakpointManagerAddMultiple(t *testing.T) {
	bm := NewBreakpointManager()

	bp1 := bm.AddBreakpoint(0x1000, false, "")
	bp2 := bm.AddBreakpoint(0x2000, false, "")

	if bp1.ID == bp2.ID {
		t.Error("breakpoint IDs should be unique")
	}
	if bm.Count() != 2 {
		t.Errorf("expected 2 breakpoints, got %d", bm.Count())
	}
}

func TestBreakpointManagerAddDuplicateUpdatesExisting(t *testing.T) {
	bm := NewBreakpointManager()

	bp1 := bm.AddBreakpoint(0x1000, false, "")
	bp2 := bm.AddBreakpoint(0x1000, false, "$t0 == 5")

	if bp1.ID != bp2.ID {
		t.Error("duplicate address should update existing breakpoint")
	}
	if bp2.Condition != "$t0 == 5" {
		t.Error("condition not updated")
	}
}

func TestBreakpointManagerDeleteBreakpoint(t *testing.T) {
	bm := NewBreakpointManager()

	bp := bm.AddBreakpoint(0x1000, false, "")

	if err := bm.DeleteBreakpoint(bp.ID); err != nil {
		t.Fatalf("DeleteBreakpoint failed: %v", err)
	}
	if bm.GetBreakpoint(0x1000) != nil {
		t.Error("breakpoint not deleted")
	}
	if err := bm.DeleteBreakpoint(999); err == nil {
		t.Error("expected error when deleting non-existent breakpoint")
	}
}

func TestBreakpointManagerDeleteBreakpointAt(t *testing.T) {
	bm := NewBreakpointManager()
	bm.AddBreakpoint(0x1000, false, "")

	if err := bm.DeleteBreakpointAt(0x1000); err != nil {
		t.Fatalf("DeleteBreakpointAt failed: %v", err)
	}
	if err := bm.DeleteBreakpointAt(0x1000); err == nil {
		t.Error("expected error deleting already-removed address")
	}
}

func TestBreakpointManagerEnableDisable(t *testing.T) {
	bm := NewBreakpointManager()
	bp := bm.AddBreakpoint(0x1000, false, "")

	if err := bm.DisableBreakpoint(bp.ID); err != nil {
		t.Fatalf("DisableBreakpoint failed: %v", err)
	}
	if bp.Enabled {
		t.Error("breakpoint not disabled")
	}

	if err := bm.EnableBreakpoint(bp.ID); err != nil {
		t.Fatalf("EnableBreakpoint failed: %v", err)
	}
	if !bp.Enabled {
		t.Error("breakpoint not enabled")
	}
}

func TestBreakpointManagerGetBreakpoint(t *testing.T) {
	bm := NewBreakpointManager()
	bm.AddBreakpoint(0x1000, false, "")
	bm.AddBreakpoint(0x2000, false, "")

	bp := bm.GetBreakpoint(0x1000)
	if bp == nil {
		t.Fatal("GetBreakpoint returned nil")
	}
	if bp.Address != 0x1000 {
		t.Errorf("wrong breakpoint returned: got 0x%08X, want 0x1000", bp.Address)
	}

	if bm.GetBreakpoint(0x3000) != nil {
		t.Error("GetBreakpoint should return nil for non-existent address")
	}
}

func TestBreakpointManagerGetBreakpointByID(t *testing.T) {
	bm := NewBreakpointManager()
	bp1 := bm.AddBreakpoint(0x1000, false, "")
	bp2 := bm.AddBreakpoint(0x2000, false, "")

	if bm.GetBreakpointByID(bp1.ID) != bp1 {
		t.Error("GetBreakpointByID returned wrong breakpoint")
	}
	if bm.GetBreakpointByID(bp2.ID) != bp2 {
		t.Error("GetBreakpointByID returned wrong breakpoint")
	}
	if bm.GetBreakpointByID(999) != nil {
		t.Error("GetBreakpointByID should return nil for non-existent ID")
	}
}

func TestBreakpointManagerGetAllBreakpoints(t *testing.T) {
	bm := NewBreakpointManager()
	bm.AddBreakpoint(0x1000, false, "")
	bm.AddBreakpoint(0x2000, false, "")
	bm.AddBreakpoint(0x3000, false, "")

	if len(bm.GetAllBreakpoints()) != 3 {
		t.Errorf("expected 3 breakpoints, got %d", len(bm.GetAllBreakpoints()))
	}
}

func TestBreakpointManagerClear(t *testing.T) {
	bm := NewBreakpointManager()
	bm.AddBreakpoint(0x1000, false, "")
	bm.AddBreakpoint(0x2000, false, "")

	bm.Clear()

	if bm.Count() != 0 {
		t.Errorf("expected 0 breakpoints after clear, got %d", bm.Count())
	}
}

func TestBreakpointManagerHasBreakpoint(t *testing.T) {
	bm := NewBreakpointManager()
	bm.AddBreakpoint(0x1000, false, "")

	if !bm.HasBreakpoint(0x1000) {
		t.Error("HasBreakpoint returned false for existing breakpoint")
	}
	if bm.HasBreakpoint(0x2000) {
		t.Error("HasBreakpoint returned true for non-existent breakpoint")
	}
}

func TestBreakpointManagerProcessHitIncrementsAndKeeps(t *testing.T) {
	bm := NewBreakpointManager()
	bm.AddBreakpoint(0x1000, false, "")

	hit := bm.ProcessHit(0x1000)
	if hit == nil || hit.HitCount != 1 {
		t.Fatalf("expected hit count 1, got %+v", hit)
	}
	if !bm.HasBreakpoint(0x1000) {
		t.Error("non-temporary breakpoint should survive a hit")
	}
}

func TestBreakpointManagerProcessHitTemporaryDeletes(t *testing.T) {
	bm := NewBreakpointManager()
	bm.AddBreakpoint(0x1000, true, "")

	hit := bm.ProcessHit(0x1000)
	if hit == nil || hit.HitCount != 1 {
		t.Fatalf("expected hit count 1, got %+v", hit)
	}
	if bm.HasBreakpoint(0x1000) {
		t.Error("temporary breakpoint should be removed after its hit")
	}
}

func TestBreakpointManagerProcessHitNoBreakpoint(t *testing.T) {
	bm := NewBreakpointManager()
	if hit := bm.ProcessHit(0x9999); hit != nil {
		t.Errorf("expected nil for address with no breakpoint, got %+v", hit)
	}
}
