package query

import "testing"

func TestEqualValues(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want bool
	}{
		{"int against stored float", 25.0, 25, true},
		{"different numbers", 25.0, 26, false},
		{"strings", "active", "active", true},
		{"string case sensitive", "Active", "active", false},
		{"bools", true, true, true},
		{"bool mismatch", true, false, false},
		{"nil both", nil, nil, true},
		{"nil one side", nil, "x", false},
		{"number against string", 1.0, "1", false},
		{"nested maps", map[string]any{"a": 1.0}, map[string]any{"a": 1.0}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := equalValues(tt.a, tt.b); got != tt.want {
				t.Errorf("equalValues(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestCompareValues(t *testing.T) {
	tests := []struct {
		name string
		a, b any
		want int
	}{
		{"numbers", 1.0, 2.0, -1},
		{"numbers equal across types", 2, 2.0, 0},
		{"strings", "a", "b", -1},
		{"rfc3339 timestamps sort lexicographically", "2025-06-01T12:00:00Z", "2025-07-15T12:00:00Z", -1},
		{"bools false first", false, true, -1},
		{"nil sorts first", nil, 0.0, -1},
		{"nil equal", nil, nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := compareValues(tt.a, tt.b); got != tt.want {
				t.Errorf("compareValues(%v, %v) = %d, want %d", tt.a, tt.b, got, tt.want)
			}
			if got := compareValues(tt.b, tt.a); got != -tt.want {
				t.Errorf("compareValues(%v, %v) = %d, want %d", tt.b, tt.a, got, -tt.want)
			}
		})
	}
}
