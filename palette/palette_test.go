package palette

import (
	"math"
	"testing"
)

func TestGet(t *testing.T) {
	cases := []struct {
		name    string
		wantErr bool
	}{
		{"red", false},
		{"Grey", false},
		{"#ff8800", false},
		{"teal", false},
		{"light-blue", false},
		{"#zz", true},
		{"not a color", true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := Get(c.name)
			if (err != nil) != c.wantErr {
				t.Fatalf("Get(%q) err = %v, wantErr %v", c.name, err, c.wantErr)
			}
		})
	}
}

func TestGetNamedMatchesTable(t *testing.T) {
	c, err := Get("orange")
	if err != nil {
		t.Fatal(err)
	}
	if c != Orange {
		t.Fatalf("got %v, want %v", c, Orange)
	}
}

func TestDimAndLerp(t *testing.T) {
	d := Dim(White, 0.4)
	if math.Abs(d.R-0.4) > 1e-12 || math.Abs(d.G-0.4) > 1e-12 {
		t.Fatalf("Dim = %v", d)
	}
	m := Lerp(Red, Blue, 0.5)
	if math.Abs(m.R-(Red.R+Blue.R)/2) > 1e-12 {
		t.Fatalf("Lerp = %v", m)
	}
	r, g, b, a := RGBA255(White)
	if r != 255 || g != 255 || b != 255 || a != 255 {
		t.Fatalf("RGBA255 = %d %d %d %d", r, g, b, a)
	}
}
