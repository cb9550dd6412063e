package components

import (
	"strings"
	"testing"

	tea "charm.land/bubbletea/v2"
)

func keyPress(r rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: r, Text: string(r)}
}

func specialKey(code rune) tea.KeyPressMsg {
	return tea.KeyPressMsg{Code: code}
}

func TestMenu_SkipsDisabledItems(t *testing.T) {
	var ran string
	items := []MenuItem{
		{Label: "locked", Disabled: true},
		{Label: "first", Action: func() tea.Cmd { ran = "first"; return nil }},
		{Label: "gone", Disabled: true},
		{Label: "last", Action: func() tea.Cmd { ran = "last"; return nil }},
	}
	m := NewMenu(items)
	if m.Selected != 1 {
		t.Fatalf("Selected = %d, want first enabled item 1", m.Selected)
	}

	m, _ = m.Update(specialKey(tea.KeyDown))
	if m.Selected != 3 {
		t.Errorf("Selected = %d after down, want 3", m.Selected)
	}
	m, _ = m.Update(specialKey(tea.KeyUp))
	m, _ = m.Update(specialKey(tea.KeyUp))
	if m.Selected != 1 {
		t.Errorf("Selected = %d after up, want 1", m.Selected)
	}
	m.Update(specialKey(tea.KeyEnter))
	if ran != "first" {
		t.Errorf("ran %q, want first", ran)
	}
	if !strings.Contains(m.View(), "▸ first") {
		t.Errorf("view does not mark the selection:\n%s", m.View())
	}
}

func TestOptionList_Pick(t *testing.T) {
	o := NewOptionList([]string{"Katze", "Hund", "Maus"}, -1)

	o, picked := o.Update(specialKey(tea.KeyDown))
	if picked || o.Cursor != 1 {
		t.Fatalf("down: picked=%v cursor=%d", picked, o.Cursor)
	}
	o, picked = o.Update(specialKey(tea.KeyEnter))
	if !picked || o.Chosen != 1 {
		t.Fatalf("enter: picked=%v chosen=%d", picked, o.Chosen)
	}
	o, picked = o.Update(keyPress('3'))
	if !picked || o.Chosen != 2 || o.Cursor != 2 {
		t.Fatalf("digit: picked=%v chosen=%d cursor=%d", picked, o.Chosen, o.Cursor)
	}
	o, picked = o.Update(keyPress('3'))
	if picked {
		t.Error("picking the same option again should not report a change")
	}
	o, picked = o.Update(keyPress('9'))
	if picked || o.Chosen != 2 {
		t.Errorf("out of range digit changed the choice to %d", o.Chosen)
	}
	if !strings.Contains(o.View(), "(•) C)  Maus") {
		t.Errorf("view does not mark the choice:\n%s", o.View())
	}
}

func TestOptionList_ReviewIsFrozen(t *testing.T) {
	o := NewOptionList([]string{"a", "b"}, 0).Review(1)
	o, picked := o.Update(keyPress('2'))
	if picked || o.Chosen != 0 {
		t.Errorf("review list accepted a pick: chosen=%d", o.Chosen)
	}
}

func TestTextInput_Blanks(t *testing.T) {
	ti := NewTextInput("answer", 100)
	ti.SetValue(" Hund ; Katze; Maus; Vogel")

	got := ti.Blanks(3)
	want := []string{"Hund", "Katze", "Maus; Vogel"}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("blank %d = %q, want %q", i, got[i], want[i])
		}
	}

	ti.SetValue("Hund")
	got = ti.Blanks(2)
	if got[0] != "Hund" || got[1] != "" {
		t.Errorf("Blanks(2) = %q", got)
	}
	if ti.Blanks(0) != nil {
		t.Error("Blanks(0) should be nil")
	}
}

func TestFraction(t *testing.T) {
	if Fraction(1, 4) != 0.25 {
		t.Errorf("Fraction(1, 4) = %v", Fraction(1, 4))
	}
	if Fraction(5, 4) != 1 || Fraction(1, 0) != 0 {
		t.Error("Fraction is not clamped")
	}
	bar := NewProgressBar("Q", 0.5, true, 30).View()
	if !strings.Contains(bar, "50%") {
		t.Errorf("bar = %q", bar)
	}
}
