package util

import (
	"math"
	"testing"
)

func TestFormatNumber(t *testing.T) {
	cases := []struct {
		in   float64
		want string
	}{
		{3, "3"},
		{-2, "-2"},
		{0, "0"},
		{0.004, "0"},
		{1.5, "1.5"},
		{2.504, "2.5"},
		{0.123, "0.12"},
		{-1.257, "-1.26"},
	}
	for _, c := range cases {
		if got := FormatNumber(c.in); got != c.want {
			t.Errorf("FormatNumber(%v) = %q, want %q", c.in, got, c.want)
		}
	}
}

func TestGenerateLut(t *testing.T) {
	lut := GenerateLut(20)
	if len(lut) != 20 {
		t.Fatalf("len = %d", len(lut))
	}
	if lut[0] != 0 || lut[19] != 0 {
		t.Fatalf("endpoints = %v, %v", lut[0], lut[19])
	}
	for i := 0; i < 10; i++ {
		if lut[i] != lut[19-i] {
			t.Fatalf("lut not symmetric at %d", i)
		}
	}
	if lut[9] < 0.9 {
		t.Fatalf("peak too low: %v", lut[9])
	}
}

func TestArrowHead(t *testing.T) {
	lx, ly, rx, ry, ok := ArrowHead(0, 0, 10, 0, 100)
	if !ok {
		t.Fatal("expected a head")
	}
	// barbs trail the tip and mirror each other across the shaft
	if lx >= 10 || rx >= 10 {
		t.Fatalf("barbs ahead of tip: %v %v", lx, rx)
	}
	if math.Abs(ly+ry) > 1e-9 {
		t.Fatalf("barbs not mirrored: %v %v", ly, ry)
	}
	head := math.Hypot(10-lx, ly)
	if math.Abs(head-1.5) > 1e-9 {
		t.Fatalf("head length = %v, want 1.5", head)
	}
	if _, _, _, _, ok := ArrowHead(1, 1, 1, 1, 10); ok {
		t.Fatal("zero-length shaft should not get a head")
	}
}

func TestClampLerp(t *testing.T) {
	if Clamp(7, 0, 5) != 5 || Clamp(-1, 0, 5) != 0 || Clamp(2, 0, 5) != 2 {
		t.Fatal("clamp")
	}
	if Lerp(2, 4, 0.5) != 3 {
		t.Fatal("lerp")
	}
}
