package mesher

// xorshift32 is the decorrelated per-axis PRNG used to jitter each face's
// UV origin and choose a horizontal/vertical texture flip.
func xorshift32(seed uint32) uint32 {
	seed ^= seed << 13
	seed ^= seed >> 17
	seed ^= seed << 5
	return seed
}

// randomizeFaceTexture jitters bl/br/tr/tl by a shared offset in whole
// 1/16 steps
// derived from the face's world position, then applies a horizontal or
// vertical flip chosen by a fourth, independent stream. Only called for
// faces flagged RandomFlip.
func randomizeFaceTexture(wx, wy, wz uint32, bl, br, tr, tl [2]float32) ([2]float32, [2]float32, [2]float32, [2]float32) {
	xr := xorshift32(wx*3917+wy*3701+wz*181) % 16
	yr := xorshift32(wx*1917+wy*1559+wz*381) % 16
	zr := xorshift32(wx*10191+wy*1319+wz*831) % 16
	perm := xorshift32(wx*171+wy*7001+wz*131) % 2

	du := float32(xr^yr) / 16
	dv := float32(zr^yr) / 16

	bl = [2]float32{bl[0] + du, bl[1] + dv}
	br = [2]float32{br[0] + du, br[1] + dv}
	tr = [2]float32{tr[0] + du, tr[1] + dv}
	tl = [2]float32{tl[0] + du, tl[1] + dv}

	switch perm {
	case 0:
		bl, br = br, bl
		tl, tr = tr, tl
	case 1:
		tr, br = br, tr
		tl, bl = bl, tl
	}
	return bl, br, tr, tl
}
