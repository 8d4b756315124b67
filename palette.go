package zireael

// rgb8 is a plain 24-bit colour triple, used for palette tables (spec §4.F
// colour degradation); kept separate from image/color since the renderer
// never needs alpha or the color.Color interface, only nearest-index
// lookup against fixed tables.
type rgb8 struct{ R, G, B uint8 }

// palette256 is the xterm-compatible 256-colour table: 16 named colours
// (0-15), a 6×6×6 colour cube (16-231), and a 24-step greyscale ramp
// (232-255), generated the same way the teacher's default 16/256 tables
// were (cube levels 0, 95, 135, 175, 215, 255; greyscale 8+10*i).
var palette256 = func() [256]rgb8 {
	var p [256]rgb8
	copy(p[:16], palette16[:])
	i := 16
	for r := 0; r < 6; r++ {
		for g := 0; g < 6; g++ {
			for b := 0; b < 6; b++ {
				p[i] = rgb8{uint8(cubeStep(r)), uint8(cubeStep(g)), uint8(cubeStep(b))}
				i++
			}
		}
	}
	for j := 0; j < 24; j++ {
		gray := uint8(8 + j*10)
		p[232+j] = rgb8{gray, gray, gray}
	}
	return p
}()

func cubeStep(level int) int {
	if level == 0 {
		return 0
	}
	return 55 + level*40
}

// palette16 is the fixed, locked 16-colour palette (spec §4.F "fixed locked
// palette"), matching common terminal defaults.
var palette16 = [16]rgb8{
	{0, 0, 0}, {205, 49, 49}, {13, 188, 121}, {229, 229, 16},
	{36, 114, 200}, {188, 63, 188}, {17, 168, 205}, {229, 229, 229},
	{102, 102, 102}, {241, 76, 76}, {35, 209, 139}, {245, 245, 67},
	{59, 142, 234}, {214, 112, 214}, {41, 184, 219}, {255, 255, 255},
}

func sqDist(a, b rgb8) int {
	dr := int(a.R) - int(b.R)
	dg := int(a.G) - int(b.G)
	db := int(a.B) - int(b.B)
	return dr*dr + dg*dg + db*db
}

// nearestIndex finds the closest entry in table to target by squared
// Euclidean distance, breaking ties deterministically toward the smaller
// index (spec §4.F).
func nearestIndex(target rgb8, table []rgb8) int {
	best := 0
	bestDist := sqDist(target, table[0])
	for i := 1; i < len(table); i++ {
		d := sqDist(target, table[i])
		if d < bestDist {
			bestDist = d
			best = i
		}
	}
	return best
}

// nearestIndex256 searches only the 6x6x6 cube + greyscale ramp
// (indices 16-255), never the 0-15 system-colour aliases duplicated into
// palette256: those would otherwise win nearest-index ties against the
// smaller-index rule and make 256-colour mode emit a system-colour index
// instead of a true 256-mode one (spec §4.F).
func nearestIndex256(u uint32) int {
	r, g, b := rgb(u)
	return 16 + nearestIndex(rgb8{r, g, b}, palette256[16:])
}

func nearestIndex16(u uint32) int {
	r, g, b := rgb(u)
	return nearestIndex(rgb8{r, g, b}, palette16[:])
}
