package scene

// Camera holds a resolved projection. Perspective when Perspective is
// true, orthographic otherwise.
type Camera struct {
	Name        string
	Perspective bool

	YFov        float32
	AspectRatio float32
	XMag        float32
	YMag        float32
	ZNear       float32
	ZFar        float32
}
