package zireael

import "github.com/unilibs/uniwidth"

// EmojiWidthMode selects how an emoji cluster resolves to a column count
// when terminals disagree on emoji rendering width (spec §4.C).
type EmojiWidthMode int

const (
	// EmojiNarrow renders emoji clusters at 1 column, lower-bounded by the
	// raw per-scalar width (so a cluster already wider than 1 stays wide).
	EmojiNarrow EmojiWidthMode = iota
	// EmojiWide renders emoji clusters at 2 columns, lower-bounded the same
	// way.
	EmojiWide
)

// runeWidth returns the per-scalar display width: 2 for wide characters
// (CJK, emoji), 1 for normal, 0 for zero-width (combining marks, controls).
// This is the scalar-level oracle the cluster-level policy below sits on
// top of; it never sees keycap/ZWJ/VS15/VS16 grammar, only the raw scalar.
func runeWidth(r rune) int {
	return uniwidth.RuneWidth(r)
}

// isWideRune returns true if the rune occupies 2 columns (CJK ideographs,
// fullwidth forms, emoji) at the scalar level.
func isWideRune(r rune) bool {
	return uniwidth.RuneWidth(r) == 2
}

// StringWidth returns the total display width of a string as the sum of
// per-scalar widths. Does not apply cluster-level emoji policy; callers
// that need locked grapheme-aware widths should use clusterWidth /
// stringClusterWidth instead.
func StringWidth(s string) int {
	return uniwidth.StringWidth(s)
}

// isEmojiCluster decides, from the flags classifyCluster already computed,
// whether a grapheme cluster counts as "emoji" for width purposes (spec
// §4.C): keycap grammar matches, OR any scalar is Emoji_Presentation, OR
// (Extended_Pictographic AND (VS16 OR ZWJ)). VS15 forces text presentation
// unless a stronger emoji signal (VS16, Emoji_Presentation, or keycap) is
// also present.
func isEmojiCluster(c Cluster) bool {
	emoji := c.KeycapBase || c.HasEmojiPresentation ||
		(c.HasExtendedPictographic && (c.HasVS16 || c.HasZWJ))
	if c.HasVS15 && !c.HasVS16 && !c.HasEmojiPresentation && !c.KeycapBase {
		return false
	}
	return emoji
}

// rawClusterWidth is the cluster's width ignoring emoji-mode substitution:
// the max per-scalar width across every scalar in the cluster, per the
// column-width policy's "otherwise the raw max" fallback.
func rawClusterWidth(c Cluster) int {
	max := 0
	decodeAll(c.Bytes, func(ds decodedScalar, _ int) {
		if w := runeWidth(ds.r); w > max {
			max = w
		}
	})
	return max
}

// clusterWidth resolves one grapheme cluster to a column count under the
// given emoji-width mode. Non-emoji clusters always resolve to their raw
// max scalar width; emoji clusters resolve to the mode's fixed width,
// lower-bounded by the raw max (so a cluster that is already wider than
// the mode's width, e.g. a wide scalar carrying VS16, never shrinks).
func clusterWidth(c Cluster, mode EmojiWidthMode) int {
	raw := rawClusterWidth(c)
	if !isEmojiCluster(c) {
		return raw
	}
	fixed := 1
	if mode == EmojiWide {
		fixed = 2
	}
	if fixed < raw {
		return raw
	}
	return fixed
}

// stringClusterWidth sums clusterWidth over every grapheme cluster in b,
// the grapheme-aware counterpart to StringWidth.
func stringClusterWidth(b []byte, mode EmojiWidthMode) int {
	total := 0
	iterateClusters(b, func(c Cluster) { total += clusterWidth(c, mode) })
	return total
}
