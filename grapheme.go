package zireael

import "github.com/clipperhouse/uax29/v2/graphemes"

// Cluster is one grapheme cluster: a contiguous, non-empty byte slice into
// the caller-owned source, plus the scalar-level flags the column-width
// policy (width.go) needs to resolve emoji presentation.
type Cluster struct {
	Bytes             []byte
	HasEmojiPresentation bool
	HasExtendedPictographic bool
	HasZWJ            bool
	HasVS15           bool
	HasVS16           bool
	KeycapBase        bool // true if the cluster matches [0-9#*] (VS16)? U+20E3
}

// iterateClusters segments b into grapheme clusters, calling fn once per
// cluster in order. Boundary detection is delegated entirely to
// clipperhouse/uax29/v2: no GB rule is re-checked here, so boundaries follow
// the Unicode version bundled with that library. Only the cluster-level
// emoji/keycap/VS flags are computed locally per scalar, from this
// package's own tables. Always makes progress: a non-empty b yields at
// least one cluster.
func iterateClusters(b []byte, fn func(Cluster)) {
	seg := graphemes.NewSegmenter(b)
	for seg.Next() {
		fn(classifyCluster(seg.Bytes()))
	}
}

// splitClusters collects iterateClusters into a slice; used by tests and by
// callers (measurement, drawlist text execution) that want random access.
func splitClusters(b []byte) []Cluster {
	var out []Cluster
	iterateClusters(b, func(c Cluster) { out = append(out, c) })
	return out
}

// classifyCluster scans every scalar of a single grapheme cluster and
// collects the flags spec §4.C's emoji-cluster rule needs: keycap grammar
// `[0-9#*] (VS16)? U+20E3`, Emoji_Presentation, Extended_Pictographic, ZWJ,
// and the VS15/VS16 text/emoji presentation selectors.
func classifyCluster(b []byte) Cluster {
	c := Cluster{Bytes: b}
	first := true
	var scalars []rune
	decodeAll(b, func(ds decodedScalar, _ int) {
		r := ds.r
		scalars = append(scalars, r)
		if first {
			if r >= '0' && r <= '9' || r == '#' || r == '*' {
				c.KeycapBase = true
			}
			first = false
		}
		if isEmojiPresentation(r) {
			c.HasEmojiPresentation = true
		}
		if isExtendedPictographic(r) {
			c.HasExtendedPictographic = true
		}
		if r == zwj {
			c.HasZWJ = true
		}
		if r == vs15 {
			c.HasVS15 = true
		}
		if r == vs16 {
			c.HasVS16 = true
		}
	})
	// Keycap grammar requires the terminal scalar to be U+20E3 (COMBINING
	// ENCLOSING KEYCAP), with an optional VS16 in between.
	if c.KeycapBase {
		n := len(scalars)
		c.KeycapBase = scalars[n-1] == keycapCombining &&
			(n == 2 || (n == 3 && scalars[1] == vs16))
	}
	return c
}

const (
	zwj             rune = 0x200D
	vs15            rune = 0xFE0E
	vs16            rune = 0xFE0F
	keycapCombining rune = 0x20E3
)

// isEmojiPresentation and isExtendedPictographic consult small, pinned
// range tables (Unicode 15.1.0 emoji-data.txt derived) rather than a
// locale/library oracle, keeping the emoji-cluster rule deterministic
// across builds regardless of which Unicode version any linked library
// bundles.
func isEmojiPresentation(r rune) bool {
	return inRanges(r, emojiPresentationRanges)
}

func isExtendedPictographic(r rune) bool {
	return inRanges(r, extendedPictographicRanges)
}

type runeRange struct{ lo, hi rune }

func inRanges(r rune, ranges []runeRange) bool {
	// Linear scan: these tables are small (a few dozen entries) and this
	// runs per-scalar during drawlist execution, not in a hot numeric loop.
	for _, rg := range ranges {
		if r >= rg.lo && r <= rg.hi {
			return true
		}
	}
	return false
}

// emojiPresentationRanges covers the common Emoji_Presentation blocks:
// symbols & pictographs, transport, supplemental symbols, emoticons, and
// the single-codepoint flag/regional range carve-outs that default to
// emoji presentation.
var emojiPresentationRanges = []runeRange{
	{0x231A, 0x231B}, {0x23E9, 0x23EC}, {0x23F0, 0x23F0}, {0x23F3, 0x23F3},
	{0x25FD, 0x25FE}, {0x2614, 0x2615}, {0x2648, 0x2653}, {0x267F, 0x267F},
	{0x2693, 0x2693}, {0x26A1, 0x26A1}, {0x26AA, 0x26AB}, {0x26BD, 0x26BE},
	{0x26C4, 0x26C5}, {0x26CE, 0x26CE}, {0x26D4, 0x26D4}, {0x26EA, 0x26EA},
	{0x26F2, 0x26F3}, {0x26F5, 0x26F5}, {0x26FA, 0x26FA}, {0x26FD, 0x26FD},
	{0x2705, 0x2705}, {0x270A, 0x270B}, {0x2728, 0x2728}, {0x274C, 0x274C},
	{0x274E, 0x274E}, {0x2753, 0x2755}, {0x2757, 0x2757}, {0x2795, 0x2797},
	{0x27B0, 0x27B0}, {0x27BF, 0x27BF}, {0x2B1B, 0x2B1C}, {0x2B50, 0x2B50},
	{0x2B55, 0x2B55}, {0x1F004, 0x1F004}, {0x1F0CF, 0x1F0CF},
	{0x1F18E, 0x1F18E}, {0x1F191, 0x1F19A}, {0x1F1E6, 0x1F1FF},
	{0x1F201, 0x1F202}, {0x1F21A, 0x1F21A}, {0x1F22F, 0x1F22F},
	{0x1F232, 0x1F23A}, {0x1F250, 0x1F251}, {0x1F300, 0x1F5FF},
	{0x1F600, 0x1F64F}, {0x1F680, 0x1F6FF}, {0x1F900, 0x1F9FF},
	{0x1FA70, 0x1FAFF},
}

// extendedPictographicRanges approximates the broader Extended_Pictographic
// property (a superset of emojiPresentationRanges that also includes
// text-presentation-default pictographs like U+2764 HEAVY BLACK HEART).
var extendedPictographicRanges = append(append([]runeRange{
	{0x00A9, 0x00A9}, {0x00AE, 0x00AE}, {0x203C, 0x203C}, {0x2049, 0x2049},
	{0x2122, 0x2122}, {0x2139, 0x2139}, {0x2194, 0x21AA}, {0x2300, 0x2300},
	{0x2328, 0x2328}, {0x23CF, 0x23CF}, {0x2600, 0x2604}, {0x260E, 0x260E},
	{0x2611, 0x2611}, {0x2618, 0x2618}, {0x261D, 0x261D}, {0x2620, 0x2620},
	{0x2622, 0x2623}, {0x2626, 0x2626}, {0x262A, 0x262A}, {0x262E, 0x262E},
	{0x262F, 0x262F}, {0x2638, 0x263A}, {0x2640, 0x2640}, {0x2642, 0x2642},
	{0x2660, 0x2660}, {0x2663, 0x2663}, {0x2665, 0x2666}, {0x2668, 0x2668},
	{0x267B, 0x267B}, {0x2692, 0x2692}, {0x2694, 0x2697}, {0x2699, 0x2699},
	{0x269B, 0x269C}, {0x26A0, 0x26A1}, {0x26B0, 0x26B1}, {0x26C8, 0x26C8},
	{0x26CF, 0x26CF}, {0x26D1, 0x26D1}, {0x26D3, 0x26D3}, {0x26E9, 0x26E9},
	{0x26F0, 0x26F1}, {0x26F4, 0x26F4}, {0x26F7, 0x26F9}, {0x2702, 0x2702},
	{0x2708, 0x2709}, {0x270C, 0x270D}, {0x270F, 0x270F}, {0x2712, 0x2712},
	{0x2714, 0x2714}, {0x2716, 0x2716}, {0x271D, 0x271D}, {0x2721, 0x2721},
	{0x2733, 0x2734}, {0x2744, 0x2744}, {0x2747, 0x2747}, {0x2764, 0x2764},
	{0x27A1, 0x27A1}, {0x2934, 0x2935}, {0x2B05, 0x2B07}, {0x3030, 0x3030},
	{0x303D, 0x303D}, {0x3297, 0x3297}, {0x3299, 0x3299},
}, emojiPresentationRanges...), runeRange{0x1F910, 0x1F96B}, runeRange{0x1F7E0, 0x1F7EB})
