package lzx

import "testing"

func TestBuildTableRejectsIncompleteCode(t *testing.T) {
	// Two length-2 codes leave half the 4-slot space unassigned, and
	// there is more than one non-zero length outstanding, so this is a
	// genuinely incomplete (invalid) code, not the single-symbol
	// degenerate case.
	h := buildTable([]byte{2, 2, 0, 0})
	if h != nil {
		t.Error("expected buildTable to reject an incomplete multi-symbol prefix code")
	}
}

func TestBuildTableAcceptsDegenerateSingleSymbolTable(t *testing.T) {
	// One code of length 1 and nothing else: the code space isn't
	// full, but there is no remaining non-zero length left to place,
	// so this is the format's allowed degenerate single-symbol table.
	h := buildTable([]byte{1, 0, 0, 0})
	if h == nil {
		t.Fatal("expected buildTable to accept a single-symbol degenerate table")
	}
	// The table is maxbits (here 1) wide, so both 1-bit patterns must
	// decode to the lone symbol.
	for _, bits := range []uint16{0b0, 0b1} {
		if got := h.table[bits]; got != 0 {
			t.Errorf("table[%01b] = %d, want 0 (the lone symbol)", bits, got)
		}
	}
}

func TestBuildTableDecodesSimpleCode(t *testing.T) {
	// Symbol 0 -> "0", symbol 1 -> "10", symbol 2 -> "11".
	lens := []byte{1, 2, 2}
	h := buildTable(lens)
	if h == nil {
		t.Fatal("buildTable rejected a valid complete prefix code")
	}
	if h.maxbits != 2 {
		t.Fatalf("maxbits = %d, want 2", h.maxbits)
	}

	cases := []struct {
		bits uint16 // left-justified within maxbits
		want uint16
	}{
		{0b00, 0},
		{0b01, 0},
		{0b10, 1},
		{0b11, 2},
	}
	for _, c := range cases {
		got := h.table[c.bits]
		if got != c.want {
			t.Errorf("table[%02b] = %d, want %d", c.bits, got, c.want)
		}
	}
}

func TestBuildTableEmptyTree(t *testing.T) {
	h := buildTable(make([]byte, 8))
	if h == nil || h.maxbits != 0 {
		t.Fatalf("expected an empty-but-non-nil tree for all-zero lengths, got %+v", h)
	}
}
