package stream

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/lucasb-eyer/go-colorful"
	"github.com/matt-g-everett/linviz/runner"
)

// Frame kinds in the binary encoding.
const (
	KindScene byte = 0
	KindArith byte = 1
)

const (
	flagPaused   byte = 1 << 0
	flagFinished byte = 1 << 1
)

var ErrShortFrame = errors.New("stream: binary frame too short")

// Arrow is one vector in a binary frame.
type Arrow struct {
	Origin     [3]float32
	Components [3]float32
	Color      colorful.Color
}

// BinaryFrame is the compact form of a snapshot for small displays. A
// scene frame carries its vectors and the current matrix of each grid
// transform; an arithmetic frame carries its step counter.
type BinaryFrame struct {
	Seq      uint32
	Kind     byte
	Dim      byte
	Paused   bool
	Finished bool
	Progress float32
	Step     uint16
	Total    uint16
	Arrows   []Arrow
	Matrices [][9]float32
}

func putFloat(data []byte, v float64) []byte {
	return binary.LittleEndian.AppendUint32(data, math.Float32bits(float32(v)))
}

// MarshalBinary converts a snapshot into a little-endian frame:
//
//	seq u32 | kind u8 | dim u8 | flags u8 | progress f32
//	scene: n u16 | n × (origin 3×f32, components 3×f32, rgb 3×u8)
//	       m u8  | m × 9×f32 (row-major, 2x2 padded to 3x3)
//	arith: step u16 | total u16
func MarshalBinary(s runner.Snapshot) (data []byte, err error) {
	data = make([]byte, 0, 64)
	data = binary.LittleEndian.AppendUint32(data, uint32(s.Seq))

	switch {
	case s.Scene != nil:
		f := s.Scene
		var flags byte
		if f.Paused {
			flags |= flagPaused
		}
		if f.Finished {
			flags |= flagFinished
		}
		data = append(data, KindScene, byte(f.Dim), flags)
		data = putFloat(data, f.Progress)

		data = binary.LittleEndian.AppendUint16(data, uint16(len(f.Vectors)))
		for _, v := range f.Vectors {
			for _, x := range v.Origin {
				data = putFloat(data, x)
			}
			for _, x := range v.Components {
				data = putFloat(data, x)
			}
			r, g, b := v.Color.Clamped().RGB255()
			data = append(data, r, g, b)
		}

		data = append(data, byte(len(f.Transforms)))
		for _, t := range f.Transforms {
			var m [9]float64
			for i, row := range t.Matrix {
				for j, x := range row {
					m[i*3+j] = x
				}
			}
			for _, x := range m {
				data = putFloat(data, x)
			}
		}

	case s.Arith != nil:
		var flags byte
		if s.Arith.Paused {
			flags |= flagPaused
		}
		if s.Arith.Step >= s.Arith.Total {
			flags |= flagFinished
		}
		progress := 0.0
		if s.Arith.Total > 0 {
			progress = float64(s.Arith.Step) / float64(s.Arith.Total)
		}
		data = append(data, KindArith, 0, flags)
		data = putFloat(data, progress)
		data = binary.LittleEndian.AppendUint16(data, uint16(s.Arith.Step))
		data = binary.LittleEndian.AppendUint16(data, uint16(s.Arith.Total))

	default:
		return nil, errors.New("stream: empty snapshot")
	}
	return data, nil
}

type reader struct {
	data []byte
	err  error
}

func (r *reader) take(n int) []byte {
	if r.err != nil || len(r.data) < n {
		r.err = ErrShortFrame
		return make([]byte, n)
	}
	b := r.data[:n]
	r.data = r.data[n:]
	return b
}

func (r *reader) u8() byte     { return r.take(1)[0] }
func (r *reader) u16() uint16  { return binary.LittleEndian.Uint16(r.take(2)) }
func (r *reader) u32() uint32  { return binary.LittleEndian.Uint32(r.take(4)) }
func (r *reader) f32() float32 { return math.Float32frombits(r.u32()) }

// UnmarshalBinary decodes a frame written by MarshalBinary.
func (f *BinaryFrame) UnmarshalBinary(data []byte) error {
	r := &reader{data: data}
	f.Seq = r.u32()
	f.Kind = r.u8()
	f.Dim = r.u8()
	flags := r.u8()
	f.Paused = flags&flagPaused != 0
	f.Finished = flags&flagFinished != 0
	f.Progress = r.f32()

	f.Arrows, f.Matrices = nil, nil
	switch f.Kind {
	case KindScene:
		n := int(r.u16())
		for i := 0; i < n && r.err == nil; i++ {
			var a Arrow
			for j := range a.Origin {
				a.Origin[j] = r.f32()
			}
			for j := range a.Components {
				a.Components[j] = r.f32()
			}
			rgb := r.take(3)
			a.Color = colorful.Color{R: float64(rgb[0]) / 255, G: float64(rgb[1]) / 255, B: float64(rgb[2]) / 255}
			f.Arrows = append(f.Arrows, a)
		}
		m := int(r.u8())
		for i := 0; i < m && r.err == nil; i++ {
			var mat [9]float32
			for j := range mat {
				mat[j] = r.f32()
			}
			f.Matrices = append(f.Matrices, mat)
		}
	case KindArith:
		f.Step = r.u16()
		f.Total = r.u16()
	default:
		if r.err == nil {
			return errors.New("stream: unknown frame kind")
		}
	}
	return r.err
}
