package domain

import "testing"

func TestBetween(t *testing.T) {
	tests := []struct {
		name    string
		x, a, b ID
		want    bool
	}{
		{"simple interior", 5, 0, 10, true},
		{"equal to lower bound excluded", 0, 0, 10, false},
		{"equal to upper bound included", 10, 0, 10, true},
		{"wraps around zero, interior", 2, 250, 5, true},
		{"wraps around zero, outside", 100, 250, 5, false},
		{"full ring when a == b, x != a", 42, 7, 7, true},
		{"full ring when a == b, x == a", 7, 7, 7, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Between(tt.x, tt.a, tt.b); got != tt.want {
				t.Errorf("Between(%d,%d,%d) = %v, want %v", tt.x, tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestBetweenExclusive(t *testing.T) {
	tests := []struct {
		name    string
		x, a, b ID
		want    bool
	}{
		{"interior", 5, 0, 10, true},
		{"lower bound excluded", 0, 0, 10, false},
		{"upper bound excluded", 10, 0, 10, false},
		{"agrees with Between except at b", 7, 0, 10, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := BetweenExclusive(tt.x, tt.a, tt.b); got != tt.want {
				t.Errorf("BetweenExclusive(%d,%d,%d) = %v, want %v", tt.x, tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func TestFingerStart(t *testing.T) {
	var id ID = 0
	if got := id.FingerStart(0); got != 1 {
		t.Errorf("finger start 0 = %d, want 1", got)
	}
	// wraps modulo 2^64
	max := ID(^uint64(0))
	if got := max.FingerStart(0); got != 0 {
		t.Errorf("finger start wraparound = %d, want 0", got)
	}
}

func TestHashIDDeterministic(t *testing.T) {
	a := HashString("node-1:7000")
	b := HashString("node-1:7000")
	if a != b {
		t.Errorf("HashString not deterministic: %d != %d", a, b)
	}
	c := HashString("node-2:7000")
	if a == c {
		t.Error("distinct inputs hashed to the same id (unlucky, but check the hash wiring)")
	}
}
