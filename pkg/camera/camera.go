// Package camera provides the perspective camera that unprojects
// screen-space points into world-space rays. The trim border consumes
// it through a narrow interface; this is the concrete implementation
// used by the driver and the tests.
package camera

import (
	"fmt"
	"image"
	"math"

	v3 "github.com/deadsy/sdfx/vec/v3"

	"github.com/hsab/dilay/pkg/geom"
)

// DefaultFOV is the default vertical field of view in degrees.
const DefaultFOV = 45.0

// Camera is a pinhole perspective camera over an integer-pixel
// viewport. Screen coordinates follow image.Point conventions: origin
// at the top-left corner, y growing downward.
type Camera struct {
	eye     v3.Vec
	forward v3.Vec  // unit, eye toward scene
	right   v3.Vec  // unit
	up      v3.Vec  // unit, orthogonal to forward and right
	fovY    float64 // radians
	width   int
	height  int
}

// New returns a camera over a width x height viewport in its default
// pose: on the +Z axis at distance 6, looking at the origin, +Y up.
func New(width, height int) *Camera {
	c := &Camera{fovY: DefaultFOV * math.Pi / 180}
	c.SetResolution(width, height)
	c.LookAt(v3.Vec{Z: 6}, v3.Vec{}, v3.Vec{Y: 1})
	return c
}

// SetResolution sets the viewport size in pixels.
func (c *Camera) SetResolution(width, height int) {
	if width <= 0 || height <= 0 {
		panic(fmt.Sprintf("camera: non-positive resolution %dx%d", width, height))
	}
	c.width = width
	c.height = height
}

// Resolution returns the viewport size in pixels.
func (c *Camera) Resolution() (width, height int) {
	return c.width, c.height
}

// SetFOV sets the vertical field of view in degrees.
func (c *Camera) SetFOV(degrees float64) {
	if degrees <= 0 || degrees >= 180 {
		panic(fmt.Sprintf("camera: field of view %v out of range", degrees))
	}
	c.fovY = degrees * math.Pi / 180
}

// LookAt poses the camera at eye looking toward center. An up vector
// colinear with the view direction is replaced by an arbitrary
// orthogonal one.
func (c *Camera) LookAt(eye, center, up v3.Vec) {
	forward := center.Sub(eye)
	if forward.Length() <= geom.Epsilon {
		panic("camera: eye and center coincide")
	}
	forward = forward.Normalize()
	if geom.Colinear(forward, up) {
		up = geom.Orthogonal(forward)
	}
	c.eye = eye
	c.forward = forward
	c.right = forward.Cross(up).Normalize()
	c.up = c.right.Cross(forward)
}

// Position returns the eye point.
func (c *Camera) Position() v3.Vec {
	return c.eye
}

// Ray unprojects the screen point p into a world-space ray through the
// center of that pixel. The returned direction is normalized.
func (c *Camera) Ray(p image.Point) geom.Ray {
	w := float64(c.width)
	h := float64(c.height)
	ndcX := (2*(float64(p.X)+0.5))/w - 1
	ndcY := 1 - (2*(float64(p.Y)+0.5))/h

	tanY := math.Tan(c.fovY / 2)
	dir := c.forward.
		Add(c.right.MulScalar(ndcX * tanY * (w / h))).
		Add(c.up.MulScalar(ndcY * tanY)).
		Normalize()
	return geom.NewRay(c.eye, dir)
}
