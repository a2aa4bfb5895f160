package grid

import "testing"

func TestGetGridCoords(t *testing.T) {
	tests := []struct {
		index int
		cols  int
		wantX int
		wantY int
	}{
		{0, 4, 0, 0},
		{3, 4, 3, 0},
		{4, 4, 0, 1},
		{9, 4, 1, 2},
		{0, 1, 0, 0},
		{5, 1, 0, 5},
	}

	for _, tc := range tests {
		gotX, gotY := GetGridCoords(tc.index, tc.cols)
		if gotX != tc.wantX || gotY != tc.wantY {
			t.Errorf("GetGridCoords(%d, %d) = (%d, %d); want (%d, %d)", tc.index, tc.cols, gotX, gotY, tc.wantX, tc.wantY)
		}
	}
}

func TestViewport(t *testing.T) {
	tests := []struct {
		name      string
		lines     int
		scroll    []int
		show      int
		wantStart int
		wantEnd   int
	}{
		{"Short Listing Never Scrolls", 5, []int{3}, -1, 0, 5},
		{"Scroll Down", 100, []int{10}, -1, 10, 40},
		{"Clamped At Bottom", 100, []int{500}, -1, 70, 100},
		{"Clamped At Top", 100, []int{10, -50}, -1, 0, 30},
		{"Show Below", 100, nil, 45, 16, 46},
		{"Show Above", 100, []int{60}, 12, 12, 42},
		{"Show Visible Line Keeps Window", 100, []int{20}, 25, 20, 50},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			v := Viewport{Lines: tc.lines, Rows: 30}
			for _, d := range tc.scroll {
				v.Scroll(d)
			}
			if tc.show >= 0 {
				v.Show(tc.show)
			}
			start, end := v.Visible()
			if start != tc.wantStart || end != tc.wantEnd {
				t.Errorf("Visible() = [%d, %d), want [%d, %d)", start, end, tc.wantStart, tc.wantEnd)
			}
		})
	}
}
