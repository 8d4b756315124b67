package zireael

import "testing"

func TestRuneWidthASCIIAndWide(t *testing.T) {
	if runeWidth('a') != 1 {
		t.Fatalf("runeWidth('a') = %d want 1", runeWidth('a'))
	}
	if !isWideRune(0x4E2D) {
		t.Fatal("CJK U+4E2D should be wide")
	}
}

func TestStringWidthPlainASCII(t *testing.T) {
	if w := StringWidth("hello"); w != 5 {
		t.Fatalf("StringWidth(hello) = %d want 5", w)
	}
}

func TestClusterWidthZWJSequenceWide(t *testing.T) {
	// scenario 4: woman + ZWJ + laptop forms one cluster, width 2 under EMOJI_WIDE.
	// Under EMOJI_NARROW the width stays 2: the woman scalar is East-Asian
	// wide, and emoji width is lower-bounded by the raw max scalar width.
	b := []byte{0xF0, 0x9F, 0x91, 0xA9, 0xE2, 0x80, 0x8D, 0xF0, 0x9F, 0x92, 0xBB}
	c := classifyCluster(b)
	if !isEmojiCluster(c) {
		t.Fatal("ZWJ-joined pictographs should classify as emoji")
	}
	if w := clusterWidth(c, EmojiWide); w != 2 {
		t.Fatalf("clusterWidth(EMOJI_WIDE) = %d want 2", w)
	}
	if w := clusterWidth(c, EmojiNarrow); w != 2 {
		t.Fatalf("clusterWidth(EMOJI_NARROW) = %d want 2", w)
	}
}

func TestClusterWidthKeycapIsEmoji(t *testing.T) {
	b := append([]byte("#"), []byte{0xEF, 0xB8, 0x8F}...)
	b = append(b, 0xE2, 0x83, 0xA3)
	c := classifyCluster(b)
	if !isEmojiCluster(c) {
		t.Fatal("keycap grammar should classify as emoji")
	}
}

func TestClusterWidthVS15ForcesText(t *testing.T) {
	// A text-default pictograph with VS15 and no stronger emoji signal stays text.
	r := rune(0x2764) // HEAVY BLACK HEART, text-presentation-default
	b := []byte(string(r))
	b = append(b, 0xEF, 0xB8, 0x8E) // VS15 U+FE0E
	c := classifyCluster(b)
	if isEmojiCluster(c) {
		t.Fatal("VS15 without a stronger emoji signal must force text presentation")
	}
	if w := clusterWidth(c, EmojiWide); w != rawClusterWidth(c) {
		t.Fatalf("text-presentation cluster should use raw width, got %d want %d", w, rawClusterWidth(c))
	}
}

func TestClusterWidthNeverShrinksBelowRaw(t *testing.T) {
	// A wide emoji scalar under EMOJI_NARROW must not shrink below its raw width.
	b := []byte{0xF0, 0x9F, 0x98, 0x80} // U+1F600 GRINNING FACE, raw width 2
	c := classifyCluster(b)
	if !isEmojiCluster(c) {
		t.Fatal("grinning face should classify as emoji")
	}
	if w := clusterWidth(c, EmojiNarrow); w != 2 {
		t.Fatalf("clusterWidth(EMOJI_NARROW) = %d, must not shrink below raw width 2", w)
	}
}

func TestStringClusterWidthSumsClusters(t *testing.T) {
	b := []byte("a\xE4\xB8\xAD") // 'a' (1) + CJK (2)
	if w := stringClusterWidth(b, EmojiWide); w != 3 {
		t.Fatalf("stringClusterWidth = %d want 3", w)
	}
}
