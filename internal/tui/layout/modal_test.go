package layout

import "testing"

func TestModalWidth(t *testing.T) {
	cfg := DefaultConfig().Modal

	tests := []struct {
		name          string
		terminalWidth int
		want          int
	}{
		{"standard terminal uses min", 80, 50},   // 32 -> min 50
		{"wide terminal", 160, 64},               // 160*40/100 = 64
		{"very wide terminal uses max", 300, 80}, // 120 -> max 80
		{"min wider than terminal", 50, 46},      // 50 - 4 = 46
		{"tiny terminal", 3, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ModalWidth(tt.terminalWidth, cfg); got != tt.want {
				t.Errorf("ModalWidth(%d) = %d, want %d", tt.terminalWidth, got, tt.want)
			}
		})
	}
}

func TestListWindow(t *testing.T) {
	tests := []struct {
		name                   string
		cursor, total, visible int
		wantStart, wantEnd     int
	}{
		{"short list", 2, 3, 8, 0, 3},
		{"cursor on last visible row", 7, 20, 8, 0, 8},
		{"cursor past window scrolls", 10, 15, 8, 3, 11},
		{"cursor on last row", 14, 15, 8, 7, 15},
		{"no cursor", -1, 12, 5, 0, 5},
		{"nothing visible", 3, 12, 0, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start, end := ListWindow(tt.cursor, tt.total, tt.visible)
			if start != tt.wantStart || end != tt.wantEnd {
				t.Errorf("ListWindow(%d, %d, %d) = (%d, %d), want (%d, %d)",
					tt.cursor, tt.total, tt.visible, start, end, tt.wantStart, tt.wantEnd)
			}
		})
	}
}
