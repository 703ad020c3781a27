package state

import "testing"

func TestRenameCursor(t *testing.T) {
	tests := []struct {
		name string
		want int
	}{
		{"a.ts", 1},
		{"archive.tar.gz", 11},
		{".env", 4},
		{"Makefile", 8},
		{"żółw.txt", 4},
	}
	for _, tt := range tests {
		if got := renameCursor(tt.name); got != tt.want {
			t.Errorf("renameCursor(%q) = %d, want %d", tt.name, got, tt.want)
		}
	}
}

func TestPromptEditing(t *testing.T) {
	p := &Prompt{Kind: PromptNewFile}
	for _, ch := range "ac" {
		p.insert(ch)
	}
	p.move("left")
	p.insert('b')
	if p.Input != "abc" || p.Cursor != 2 {
		t.Fatalf("input=%q cursor=%d", p.Input, p.Cursor)
	}

	p.move("home")
	p.backspace()
	if p.Input != "abc" {
		t.Fatalf("backspace at start changed input to %q", p.Input)
	}

	p.move("end")
	p.backspace()
	if p.Input != "ab" || p.Cursor != 2 {
		t.Fatalf("input=%q cursor=%d", p.Input, p.Cursor)
	}

	p.move("right")
	if p.Cursor != 2 {
		t.Fatalf("cursor moved past end: %d", p.Cursor)
	}
}

func TestPromptTitles(t *testing.T) {
	for kind, want := range map[PromptKind]string{
		PromptNewFile:       "New file",
		PromptNewFolder:     "New folder",
		PromptRename:        "Rename to",
		PromptConfirmDelete: "Delete",
	} {
		if got := kind.Title(); got != want {
			t.Errorf("%d.Title() = %q, want %q", kind, got, want)
		}
	}
}
