package scene

import (
	"math"

	"github.com/matt-g-everett/linviz/util"
)

// Camera navigation limits and defaults.
const (
	DefaultZoom = 50.0
	MinZoom     = 5.0
	MaxZoom     = 500.0

	DefaultDistance = 10.0
	MinDistance     = 1.0
	MaxDistance     = 100.0
	DefaultTheta    = math.Pi / 4
	DefaultPhi      = math.Pi / 6
	DefaultFOV      = 45.0
	DefaultNear     = 0.1
	DefaultFar      = 1000.0

	phiLimit    = math.Pi/2 - 0.01
	orbitFactor = 0.01
	panFactor   = 0.005
	zoomStep    = 1.1
)

// A Camera turns drag, scroll and resize input into view changes. It is
// never touched by the animation engine.
type Camera interface {
	Resize(width, height int)
	Reset()
	Drag(dx, dy float64, shift bool)
	Scroll(notches, x, y float64)
	View() View
}

// Camera2D pans, zooms and rotates a flat view. Zoom is in pixels per
// world unit and screen y grows downward.
type Camera2D struct {
	width, height int
	position      [2]float64
	zoom          float64
	rotation      float64
}

func NewCamera2D(width, height int) *Camera2D {
	return &Camera2D{width: width, height: height, zoom: DefaultZoom}
}

func (c *Camera2D) Resize(width, height int) {
	c.width, c.height = width, height
}

func (c *Camera2D) Reset() {
	c.position = [2]float64{}
	c.zoom = DefaultZoom
	c.rotation = 0
}

// Pan moves the view by a screen-space delta in pixels.
func (c *Camera2D) Pan(dx, dy float64) {
	c.position[0] -= dx / c.zoom
	c.position[1] += dy / c.zoom
}

// ZoomBy scales the zoom around the view center.
func (c *Camera2D) ZoomBy(factor float64) {
	c.zoom = util.Clamp(c.zoom*factor, MinZoom, MaxZoom)
}

// ZoomAt scales the zoom keeping the world point under (sx, sy) fixed on
// screen.
func (c *Camera2D) ZoomAt(factor, sx, sy float64) {
	hw, hh := float64(c.width)/2, float64(c.height)/2
	old := c.zoom
	wx := (sx-hw)/old + c.position[0]
	wy := -(sy-hh)/old + c.position[1]
	c.ZoomBy(factor)
	c.position[0] = wx - (sx-hw)/c.zoom
	c.position[1] = wy + (sy-hh)/c.zoom
}

func (c *Camera2D) Rotate(angle float64) {
	c.rotation += angle
}

func (c *Camera2D) Drag(dx, dy float64, _ bool) {
	c.Pan(dx, dy)
}

func (c *Camera2D) Scroll(notches, x, y float64) {
	if notches == 0 {
		return
	}
	c.ZoomAt(math.Pow(zoomStep, notches), x, y)
}

func (c *Camera2D) Zoom() float64            { return c.zoom }
func (c *Camera2D) Position() (x, y float64) { return c.position[0], c.position[1] }
func (c *Camera2D) Rotation() float64        { return c.rotation }

// WorldToScreen rotates by the inverse camera rotation, then scales and
// translates into pixels.
func (c *Camera2D) WorldToScreen(x, y float64) (sx, sy float64) {
	if c.rotation != 0 {
		cs, sn := math.Cos(-c.rotation), math.Sin(-c.rotation)
		x, y = x*cs-y*sn, x*sn+y*cs
	}
	sx = (x-c.position[0])*c.zoom + float64(c.width)/2
	sy = -(y-c.position[1])*c.zoom + float64(c.height)/2
	return sx, sy
}

// ScreenToWorld is the exact inverse of WorldToScreen.
func (c *Camera2D) ScreenToWorld(sx, sy float64) (x, y float64) {
	x = (sx-float64(c.width)/2)/c.zoom + c.position[0]
	y = -(sy-float64(c.height)/2)/c.zoom + c.position[1]
	if c.rotation != 0 {
		cs, sn := math.Cos(c.rotation), math.Sin(c.rotation)
		x, y = x*cs-y*sn, x*sn+y*cs
	}
	return x, y
}

// ViewBounds is the visible world rectangle, ignoring rotation.
func (c *Camera2D) ViewBounds() (minX, minY, maxX, maxY float64) {
	hw := float64(c.width) / 2 / c.zoom
	hh := float64(c.height) / 2 / c.zoom
	return c.position[0] - hw, c.position[1] - hh, c.position[0] + hw, c.position[1] + hh
}

func (c *Camera2D) View() View {
	return View{
		Dim:      2,
		Width:    c.width,
		Height:   c.height,
		Position: [3]float64{c.position[0], c.position[1]},
		Zoom:     c.zoom,
		Rotation: c.rotation,
	}
}

// Camera3D orbits a look-at target. Theta is the azimuth and phi the
// elevation, kept strictly inside (-π/2, π/2).
type Camera3D struct {
	width, height int
	target        [3]float64
	distance      float64
	theta, phi    float64
	fov           float64
	near, far     float64
}

func NewCamera3D(width, height int) *Camera3D {
	c := &Camera3D{width: width, height: height, fov: DefaultFOV, near: DefaultNear, far: DefaultFar}
	c.Reset()
	return c
}

func (c *Camera3D) Resize(width, height int) {
	c.width, c.height = width, height
}

func (c *Camera3D) Reset() {
	c.target = [3]float64{}
	c.distance = DefaultDistance
	c.theta = DefaultTheta
	c.phi = DefaultPhi
}

// Orbit rotates around the target.
func (c *Camera3D) Orbit(dTheta, dPhi float64) {
	c.theta += dTheta
	c.phi = util.Clamp(c.phi+dPhi, -phiLimit, phiLimit)
}

// Pan moves the target along the camera's horizontal right axis and the
// world up axis, scaled by distance.
func (c *Camera3D) Pan(dx, dy float64) {
	scale := c.distance * panFactor
	rx, rz := math.Cos(c.theta+math.Pi/2), math.Sin(c.theta+math.Pi/2)
	c.target[0] += -rx * dx * scale
	c.target[1] += dy * scale
	c.target[2] += -rz * dx * scale
}

// ZoomBy scales the distance to the target. Factors above 1 move away.
func (c *Camera3D) ZoomBy(factor float64) {
	c.distance = util.Clamp(c.distance*factor, MinDistance, MaxDistance)
}

func (c *Camera3D) Drag(dx, dy float64, shift bool) {
	if shift {
		c.Pan(dx, dy)
		return
	}
	c.Orbit(dx*orbitFactor, -dy*orbitFactor)
}

// Scroll moves closer for positive notches.
func (c *Camera3D) Scroll(notches, _, _ float64) {
	if notches == 0 {
		return
	}
	c.ZoomBy(math.Pow(1/zoomStep, notches))
}

func (c *Camera3D) Target() [3]float64 { return c.target }
func (c *Camera3D) Distance() float64  { return c.distance }
func (c *Camera3D) Theta() float64     { return c.theta }
func (c *Camera3D) Phi() float64       { return c.phi }

// Position is the eye point in world coordinates.
func (c *Camera3D) Position() [3]float64 {
	return [3]float64{
		c.target[0] + c.distance*math.Cos(c.phi)*math.Cos(c.theta),
		c.target[1] + c.distance*math.Sin(c.phi),
		c.target[2] + c.distance*math.Cos(c.phi)*math.Sin(c.theta),
	}
}

// ViewMatrix is the row-major look-at matrix with world up +y.
func (c *Camera3D) ViewMatrix() [4][4]float64 {
	return lookAt(c.Position(), c.target)
}

// ProjectionMatrix is the row-major OpenGL-style perspective matrix.
func (c *Camera3D) ProjectionMatrix() [4][4]float64 {
	return perspective(c.fov, aspect(c.width, c.height), c.near, c.far)
}

// WorldToScreen projects p to pixels. ok is false for points behind the
// camera.
func (c *Camera3D) WorldToScreen(p [3]float64) (sx, sy float64, ok bool) {
	return c.View().Project(p)
}

func (c *Camera3D) View() View {
	return View{
		Dim:      3,
		Width:    c.width,
		Height:   c.height,
		Position: c.Position(),
		Target:   c.target,
		Distance: c.distance,
		Theta:    c.theta,
		Phi:      c.phi,
		FOV:      c.fov,
		Near:     c.near,
		Far:      c.far,
	}
}

// View is a snapshot of camera state sufficient to map world points to
// pixels without the camera itself.
type View struct {
	Dim    int `json:"dim"`
	Width  int `json:"width"`
	Height int `json:"height"`

	Position [3]float64 `json:"position"`
	Zoom     float64    `json:"zoom,omitempty"`
	Rotation float64    `json:"rotation,omitempty"`

	Target   [3]float64 `json:"target,omitempty"`
	Distance float64    `json:"distance,omitempty"`
	Theta    float64    `json:"theta,omitempty"`
	Phi      float64    `json:"phi,omitempty"`
	FOV      float64    `json:"fov,omitempty"`
	Near     float64    `json:"near,omitempty"`
	Far      float64    `json:"far,omitempty"`
}

// Project maps a world point to pixels. ok is false when a 3D point lies
// behind the eye.
func (v View) Project(p [3]float64) (sx, sy float64, ok bool) {
	if v.Dim != 3 {
		c := Camera2D{width: v.Width, height: v.Height, position: [2]float64{v.Position[0], v.Position[1]}, zoom: v.Zoom, rotation: v.Rotation}
		sx, sy = c.WorldToScreen(p[0], p[1])
		return sx, sy, true
	}
	view := lookAt(v.Position, v.Target)
	proj := perspective(v.FOV, aspect(v.Width, v.Height), v.Near, v.Far)
	clip := mulVec4(proj, mulVec4(view, [4]float64{p[0], p[1], p[2], 1}))
	if clip[3] <= 1e-9 {
		return 0, 0, false
	}
	nx, ny := clip[0]/clip[3], clip[1]/clip[3]
	sx = (nx + 1) / 2 * float64(v.Width)
	sy = (1 - ny) / 2 * float64(v.Height)
	return sx, sy, true
}

// WorldUnit is the length in pixels of one world unit, used to size arrow
// heads. In 3D it is measured at the target.
func (v View) WorldUnit() float64 {
	if v.Dim != 3 {
		return v.Zoom
	}
	f := 1 / math.Tan(v.FOV*math.Pi/360)
	return f / v.Distance * float64(v.Height) / 2
}

func lookAt(eye, target [3]float64) [4][4]float64 {
	fwd := normalize(sub(target, eye))
	right := normalize(cross(fwd, [3]float64{0, 1, 0}))
	up := cross(right, fwd)

	var m [4][4]float64
	for i := 0; i < 3; i++ {
		m[0][i] = right[i]
		m[1][i] = up[i]
		m[2][i] = -fwd[i]
	}
	m[0][3] = -dot3(right, eye)
	m[1][3] = -dot3(up, eye)
	m[2][3] = dot3(fwd, eye)
	m[3][3] = 1
	return m
}

func perspective(fovDeg, aspect, near, far float64) [4][4]float64 {
	f := 1 / math.Tan(fovDeg*math.Pi/360)
	var m [4][4]float64
	m[0][0] = f / aspect
	m[1][1] = f
	m[2][2] = (far + near) / (near - far)
	m[2][3] = 2 * far * near / (near - far)
	m[3][2] = -1
	return m
}

func aspect(w, h int) float64 {
	if h == 0 {
		return 1
	}
	return float64(w) / float64(h)
}

func mulVec4(m [4][4]float64, v [4]float64) [4]float64 {
	var out [4]float64
	for i := 0; i < 4; i++ {
		for j := 0; j < 4; j++ {
			out[i] += m[i][j] * v[j]
		}
	}
	return out
}

func sub(a, b [3]float64) [3]float64 {
	return [3]float64{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

func cross(a, b [3]float64) [3]float64 {
	return [3]float64{a[1]*b[2] - a[2]*b[1], a[2]*b[0] - a[0]*b[2], a[0]*b[1] - a[1]*b[0]}
}

func dot3(a, b [3]float64) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

func normalize(a [3]float64) [3]float64 {
	n := math.Sqrt(dot3(a, a))
	if n < 1e-12 {
		return a
	}
	return [3]float64{a[0] / n, a[1] / n, a[2] / n}
}
