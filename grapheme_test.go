package zireael

import "testing"

func TestIterateClustersPartitionsInput(t *testing.T) {
	b := []byte("a\xE4\xB8\xADb") // 'a', CJK U+4E2D, 'b'
	var total int
	var n int
	iterateClusters(b, func(c Cluster) {
		total += len(c.Bytes)
		n++
	})
	if total != len(b) {
		t.Fatalf("clusters cover %d bytes, want %d", total, len(b))
	}
	if n != 3 {
		t.Fatalf("got %d clusters, want 3", n)
	}
}

func TestClusterZWJSequenceIsOneCluster(t *testing.T) {
	// U+1F469 U+200D U+1F4BB (woman + ZWJ + laptop) — scenario 4 of ยง8.
	b := []byte{0xF0, 0x9F, 0x91, 0xA9, 0xE2, 0x80, 0x8D, 0xF0, 0x9F, 0x92, 0xBB}
	clusters := splitClusters(b)
	if len(clusters) != 1 {
		t.Fatalf("ZWJ sequence should form one cluster, got %d", len(clusters))
	}
	c := clusters[0]
	if !c.HasZWJ {
		t.Error("expected HasZWJ")
	}
	if !c.HasExtendedPictographic {
		t.Error("expected HasExtendedPictographic")
	}
}

func TestClassifyClusterKeycap(t *testing.T) {
	// '#' U+FE0F U+20E3 is the keycap grammar.
	b := append([]byte("#"), []byte{0xEF, 0xB8, 0x8F}...)
	b = append(b, 0xE2, 0x83, 0xA3)
	c := classifyCluster(b)
	if !c.KeycapBase {
		t.Fatalf("expected keycap grammar to match: %+v", c)
	}
	if !c.HasVS16 {
		t.Error("expected HasVS16")
	}
}

func TestClassifyClusterPlainDigitIsNotKeycap(t *testing.T) {
	c := classifyCluster([]byte("5"))
	if c.KeycapBase {
		t.Fatal("bare digit without U+20E3 must not be keycap")
	}
}

func TestIterateClustersEmptyInput(t *testing.T) {
	n := 0
	iterateClusters(nil, func(Cluster) { n++ })
	if n != 0 {
		t.Fatalf("empty input should yield zero clusters, got %d", n)
	}
}
