// camera.go
package renderer

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
)

// Camera orbits Target at Distance. Yaw and Pitch are in degrees.
type Camera struct {
	// HOT DATA - Accessed every frame for view/projection calculations
	Position   mgl32.Vec3 // Camera position in world space
	Front      mgl32.Vec3 // Forward direction vector
	Up         mgl32.Vec3 // Up direction vector
	Right      mgl32.Vec3 // Right direction vector
	Projection mgl32.Mat4 // Projection matrix
	Pitch      float32    // Elevation above the target's horizon
	Yaw        float32    // Angle around the world up axis

	// COLD DATA - Configuration and input handling, accessed less frequently
	Target      mgl32.Vec3
	Distance    float32
	MinDistance float32
	MaxDistance float32
	WorldUp     mgl32.Vec3 // World up vector (usually (0,1,0))
	Sensitivity float32    // Degrees per pixel of drag
	ZoomSpeed   float32    // Fraction of the distance per scroll unit
	Fov         float32    // Vertical field of view in degrees
	Near        float32    // Near clipping plane
	Far         float32    // Far clipping plane
	AspectRatio float32    // Screen aspect ratio
}

type Plane struct {
	Normal   mgl32.Vec3
	Distance float32
}

type Frustum struct {
	Planes [6]Plane
}

// NewDefaultCamera places the camera at (0,2,5) looking at the origin.
func NewDefaultCamera(width, height int32) *Camera {
	camera := Camera{
		WorldUp:     mgl32.Vec3{0, 1, 0},
		Sensitivity: 0.3,
		ZoomSpeed:   0.1,
		MinDistance: 0.5,
		MaxDistance: 500,
		Fov:         75.0,
		Near:        0.1,
		Far:         1000.0,
		AspectRatio: 1,
	}
	if width > 0 && height > 0 {
		camera.AspectRatio = float32(width) / float32(height)
	}
	camera.SetPosition(mgl32.Vec3{0, 2, 5})
	camera.UpdateProjection()
	return &camera
}

func (c *Camera) UpdateProjection() {
	c.Projection = mgl32.Perspective(mgl32.DegToRad(c.Fov), c.AspectRatio, c.Near, c.Far)
}

// SetAspectRatio updates the projection for a new viewport shape.
func (c *Camera) SetAspectRatio(aspectRatio float32) {
	c.AspectRatio = aspectRatio
	c.UpdateProjection()
}

// SetPosition moves the camera and re-derives the orbit around the current target.
func (c *Camera) SetPosition(position mgl32.Vec3) {
	offset := position.Sub(c.Target)
	c.Distance = offset.Len()
	if c.Distance == 0 {
		c.Distance = c.MinDistance
		offset = mgl32.Vec3{0, 0, c.Distance}
	}
	c.Pitch = mgl32.RadToDeg(float32(math.Asin(float64(offset.Y() / c.Distance))))
	c.Yaw = mgl32.RadToDeg(float32(math.Atan2(float64(offset.Z()), float64(offset.X()))))
	c.updateCameraVectors()
}

func (c *Camera) GetViewMatrix() mgl32.Mat4 {
	return mgl32.LookAtV(c.Position, c.Position.Add(c.Front), c.Up)
}

func (c *Camera) GetProjectionMatrix() mgl32.Mat4 {
	return c.Projection
}

func (c *Camera) GetViewProjection() mgl32.Mat4 {
	return c.Projection.Mul4(c.GetViewMatrix())
}

// ProcessMouseMovement orbits the camera by a drag offset in pixels.
func (c *Camera) ProcessMouseMovement(xoffset, yoffset float32, constrainPitch bool) {
	c.Yaw += xoffset * c.Sensitivity
	c.Pitch += yoffset * c.Sensitivity
	if constrainPitch {
		c.Pitch = mgl32.Clamp(c.Pitch, -89.0, 89.0) // Prevent flipping over the poles
	}
	c.updateCameraVectors()
}

// Zoom moves towards (positive) or away from (negative) the target.
func (c *Camera) Zoom(amount float32) {
	c.Distance *= 1 - amount*c.ZoomSpeed
	c.Distance = mgl32.Clamp(c.Distance, c.MinDistance, c.MaxDistance)
	c.updateCameraVectors()
}

func (c *Camera) updateCameraVectors() {
	yawRad := float64(mgl32.DegToRad(c.Yaw))
	pitchRad := float64(mgl32.DegToRad(c.Pitch))

	offset := mgl32.Vec3{
		float32(math.Cos(yawRad) * math.Cos(pitchRad)),
		float32(math.Sin(pitchRad)),
		float32(math.Sin(yawRad) * math.Cos(pitchRad)),
	}

	c.Position = c.Target.Add(offset.Mul(c.Distance))
	c.Front = offset.Mul(-1).Normalize()
	c.Right = c.Front.Cross(c.WorldUp).Normalize()
	c.Up = c.Right.Cross(c.Front).Normalize()
}

func (c *Camera) CalculateFrustum() Frustum {
	return FrustumFromMatrix(c.GetViewProjection())
}

// FrustumFromMatrix extracts normalized clip planes from a view-projection matrix.
func FrustumFromMatrix(vp mgl32.Mat4) Frustum {
	var frustum Frustum

	// Left Plane
	frustum.Planes[0] = Plane{
		Normal:   mgl32.Vec3{vp[3] + vp[0], vp[7] + vp[4], vp[11] + vp[8]},
		Distance: vp[15] + vp[12],
	}

	// Right Plane
	frustum.Planes[1] = Plane{
		Normal:   mgl32.Vec3{vp[3] - vp[0], vp[7] - vp[4], vp[11] - vp[8]},
		Distance: vp[15] - vp[12],
	}

	// Bottom Plane
	frustum.Planes[2] = Plane{
		Normal:   mgl32.Vec3{vp[3] + vp[1], vp[7] + vp[5], vp[11] + vp[9]},
		Distance: vp[15] + vp[13],
	}

	// Top Plane
	frustum.Planes[3] = Plane{
		Normal:   mgl32.Vec3{vp[3] - vp[1], vp[7] - vp[5], vp[11] - vp[9]},
		Distance: vp[15] - vp[13],
	}

	// Near Plane
	frustum.Planes[4] = Plane{
		Normal:   mgl32.Vec3{vp[3] + vp[2], vp[7] + vp[6], vp[11] + vp[10]},
		Distance: vp[15] + vp[14],
	}

	// Far Plane
	frustum.Planes[5] = Plane{
		Normal:   mgl32.Vec3{vp[3] - vp[2], vp[7] - vp[6], vp[11] - vp[10]},
		Distance: vp[15] - vp[14],
	}

	// Normalize the planes
	for i := 0; i < 6; i++ {
		length := frustum.Planes[i].Normal.Len()
		frustum.Planes[i].Normal = frustum.Planes[i].Normal.Mul(1.0 / length)
		frustum.Planes[i].Distance /= length
	}

	return frustum
}

func (p *Plane) DistanceToPoint(point mgl32.Vec3) float32 {
	return p.Normal.Dot(point) + p.Distance
}

func (f *Frustum) IntersectsSphere(center mgl32.Vec3, radius float32) bool {
	for _, plane := range f.Planes {
		if plane.DistanceToPoint(center) < -radius {
			return false // Sphere is outside the frustum
		}
	}
	return true
}
