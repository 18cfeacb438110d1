package sceneio

import (
	"fmt"

	"gopkg.in/yaml.v2"
)

// Document is the YAML form of a scene or an arithmetic walkthrough.
//
//	title: Rotation
//	dim: 2
//	vars:
//	  theta: pi/4
//	matrices:
//	  R: {rotation: theta}
//	vectors:
//	  - name: v
//	    components: [3, 2]
//	    transform: [R]
//	    animate: {duration: 1.5, easing: out_bounce}
//	grids:
//	  - {matrix: R, at: 1}
type Document struct {
	Title    string   `yaml:"title"`
	Dim      int      `yaml:"dim"`
	StepSize *Expr    `yaml:"stepSize"`
	ShowGrid *bool    `yaml:"showGrid"`
	Autoplay *bool    `yaml:"autoplay"`
	Lattice  *Lattice `yaml:"lattice"`

	// Vars are evaluated in document order so later ones may use earlier
	// ones.
	Vars     yaml.MapSlice        `yaml:"vars"`
	Matrices map[string]MatrixDoc `yaml:"matrices"`
	Vectors  []VectorDoc          `yaml:"vectors"`
	Grids    []GridDoc            `yaml:"grids"`

	Arithmetic *ArithDoc `yaml:"arithmetic"`
}

// Lattice overrides the region and density of transformed grids.
type Lattice struct {
	Min     []Expr `yaml:"min"`
	Max     []Expr `yaml:"max"`
	Density int    `yaml:"density"`
}

// MatrixDoc defines a matrix by exactly one of its fields.
type MatrixDoc struct {
	Rows       [][]Expr `yaml:"rows"`
	Identity   int      `yaml:"identity"`
	Rotation   *Expr    `yaml:"rotation"`
	RotationX  *Expr    `yaml:"rotationX"`
	RotationY  *Expr    `yaml:"rotationY"`
	RotationZ  *Expr    `yaml:"rotationZ"`
	Scaling    []Expr   `yaml:"scaling"`
	Shear      []Expr   `yaml:"shear"`
	Reflection string   `yaml:"reflection"`
	Projection []Expr   `yaml:"projection"`
	// Product multiplies named matrices left to right.
	Product []string `yaml:"product"`
}

// AnimateDoc requests an animation from a vector's previous state.
type AnimateDoc struct {
	Duration *Expr  `yaml:"duration"`
	Easing   string `yaml:"easing"`
}

// VectorDoc places one vector. Transform lists named matrices applied in
// order; Scale multiplies the result. With Animate set the vector moves
// from its untransformed state, or grows from zero when nothing changes
// it.
type VectorDoc struct {
	Name       string      `yaml:"name"`
	Components []Expr      `yaml:"components"`
	Origin     []Expr      `yaml:"origin"`
	Color      string      `yaml:"color"`
	Transform  []string    `yaml:"transform"`
	Scale      *Expr       `yaml:"scale"`
	Animate    *AnimateDoc `yaml:"animate"`
	At         *Expr       `yaml:"at"`
}

// GridDoc deforms the grid from the identity to a named matrix.
type GridDoc struct {
	Matrix   string `yaml:"matrix"`
	Duration *Expr  `yaml:"duration"`
	Easing   string `yaml:"easing"`
	At       *Expr  `yaml:"at"`
}

// ArithDoc describes a step-by-step product. Kind is one of
// matrix-vector, matrix-matrix or dot.
type ArithDoc struct {
	Kind     string  `yaml:"kind"`
	A        Operand `yaml:"a"`
	B        Operand `yaml:"b"`
	StepTime *Expr   `yaml:"stepTime"`
}

// Operand is a matrix, a vector or the name of a matrix.
type Operand struct {
	Rows   [][]Expr
	Vector []Expr
	Name   string
}

func (o *Operand) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var rows [][]Expr
	if err := unmarshal(&rows); err == nil {
		o.Rows = rows
		return nil
	}
	var vec []Expr
	if err := unmarshal(&vec); err == nil {
		o.Vector = vec
		return nil
	}
	var name string
	if err := unmarshal(&name); err == nil {
		o.Name = name
		return nil
	}
	return fmt.Errorf("sceneio: operand must be a matrix, a vector or a matrix name")
}

// Parse decodes a document without building it.
func Parse(b []byte) (*Document, error) {
	doc := new(Document)
	if err := yaml.UnmarshalStrict(b, doc); err != nil {
		return nil, fmt.Errorf("sceneio: %w", err)
	}
	return doc, nil
}
