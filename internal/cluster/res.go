package cluster

// Map tile zoom (0..22) onto an H3 resolution (0..15). The mapping is
// monotonic: a deeper zoom never buckets into coarser cells.
func resForZoom(zoom int) int {
	if zoom < 0 {
		zoom = 0
	}
	if zoom > 22 {
		zoom = 22
	}
	return zoom * 15 / 22
}
