package debugger

import "testing"

func TestCommandHistoryAdd(t *testing.T) {
	h := NewCommandHistory()
	h.Add("step")
	h.Add("continue")
	h.Add("break 0x1000")

	if h.Size() != 3 {
		t.Errorf("Size = %d, want 3", h.Size())
	}
	all := h.GetAll()
	if len(all) != 3 || all[0] != "step" {
		t.Errorf("GetAll() = %v", all)
	}
}

func TestCommandHistoryIgnoreEmpty(t *testing.T) {
	h := NewCommandHistory()
	h.Add("step")
	h.Add("")
	h.Add("continue")

	if h.Size() != 2 {
		t.Errorf("Size = %d, want 2 (empty commands should be ignored)", h.Size())
	}
}

func TestCommandHistoryIgnoreDuplicates(t *testing.T) {
	h := NewCommandHistory()
	h.Add("step")
	h.Add("step")
	h.Add("continue")

	if h.Size() != 2 {
		t.Errorf("Size = %d, want 2 (duplicate should be ignored)", h.Size())
	}
	all := h.GetAll()
	if all[0] != "step" || all[1] != "continue" {
		t.Error("duplicate command was not ignored correctly")
	}
}

func TestCommandHistoryPrevious(t *testing.T) {
	h := NewCommandHistory()
	h.Add("cmd1")
	h.Add("cmd2")
	h.Add("cmd3")

	if p := h.Previous(); p != "cmd3" {
		t.Errorf("Previous() = %s, want cmd3", p)
	}
	if p := h.Previous(); p != "cmd2" {
		t.Errorf("Previous() = %s, want cmd2", p)
	}
	if p := h.Previous(); p != "cmd1" {
		t.Errorf("Previous() = %s, want cmd1", p)
	}
	if p := h.Previous(); p != "" {
		t.Errorf("Previous() at start = %s, want empty", p)
	}
}

func TestCommandHistoryNext(t *testing.T) {
	h := NewCommandHistory()
	h.Add("cmd1")
	h.Add("cmd2")
	h.Add("cmd3")

	h.Previous()
	h.Previous()
	h.Previous()

	if n := h.Next(); n != "cmd2" {
		t.Errorf("Next() = %s, want cmd2", n)
	}
	if n := h.Next(); n != "cmd3" {
		t.Errorf("Next() = %s, want cmd3", n)
	}
	if n := h.Next(); n != "" {
		t.Errorf("Next() at end = %s, want empty", n)
	}
}

func TestCommandHistoryGetLast(t *testing.T) {
	h := NewCommandHistory()
	h.Add("cmd1")
	h.Add("cmd2")
	h.Add("cmd3")

	if l := h.GetLast(); l != "cmd3" {
		t.Errorf("GetLast() = %s, want cmd3", l)
	}
	if l := h.GetLast(); l != "cmd3" {
		t.Errorf("GetLast() (repeat) = %s, want cmd3", l)
	}
}

func TestCommandHistoryClear(t *testing.T) {
	h := NewCommandHistory()
	h.Add("cmd1")
	h.Add("cmd2")
	h.Clear()

	if h.Size() != 0 {
		t.Errorf("Size after clear = %d, want 0", h.Size())
	}
	if l := h.GetLast(); l != "" {
		t.Errorf("GetLast after clear = %s, want empty", l)
	}
}

func TestCommandHistorySearch(t *testing.T) {
	h := NewCommandHistory()
	h.Add("break 0x1000")
	h.Add("break 0x2000")
	h.Add("step")
	h.Add("continue")

	results := h.Search("break")
	if len(results) != 2 {
		t.Errorf("Search results length = %d, want 2", len(results))
	}
	if results[0] != "break 0x1000" || results[1] != "break 0x2000" {
		t.Errorf("Search results = %v", results)
	}
}

func TestCommandHistorySearchNoMatches(t *testing.T) {
	h := NewCommandHistory()
	h.Add("step")
	h.Add("continue")

	if results := h.Search("break"); len(results) != 0 {
		t.Errorf("search with no matches should return empty slice, got %d results", len(results))
	}
}

func TestCommandHistoryMaxSize(t *testing.T) {
	h := NewCommandHistory()
	for i := 0; i < 1100; i++ {
		h.Add("cmd")
	}
	if h.Size() > 1000 {
		t.Errorf("Size = %d, should not exceed max size of 1000", h.Size())
	}
}

func TestCommandHistoryEmptyHistory(t *testing.T) {
	h := NewCommandHistory()

	if h.Size() != 0 {
		t.Errorf("new history size = %d, want 0", h.Size())
	}
	if l := h.GetLast(); l != "" {
		t.Errorf("GetLast on empty history = %s, want empty", l)
	}
	if p := h.Previous(); p != "" {
		t.Errorf("Previous on empty history = %s, want empty", p)
	}
	if n := h.Next(); n != "" {
		t.Errorf("Next on empty history = %s, want empty", n)
	}
}
