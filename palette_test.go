package rfbencoder

import "testing"

func TestPaletteInsertAndOverflow(t *testing.T) {
	p := NewPalette(2)
	if !p.Insert(10) || !p.Insert(20) {
		t.Fatal("first two distinct inserts should succeed")
	}
	if !p.Insert(10) {
		t.Fatal("re-inserting an existing color should succeed")
	}
	if p.Insert(30) {
		t.Fatal("third distinct color should overflow a max-2 palette")
	}
	if p.Size() != 2 {
		t.Fatalf("size = %d, want 2", p.Size())
	}
	if p.IndexOf(20) != 1 {
		t.Fatalf("index of 20 = %d, want 1", p.IndexOf(20))
	}
	if p.IndexOf(99) != -1 {
		t.Fatal("index of an absent color should be -1")
	}
}

func TestPaletteClear(t *testing.T) {
	p := NewPalette(4)
	p.Insert(1)
	p.Insert(2)
	p.Clear()
	if p.Size() != 0 {
		t.Fatalf("size after clear = %d, want 0", p.Size())
	}
	if p.IndexOf(1) != -1 {
		t.Fatal("cleared palette should not remember old colors")
	}
}
