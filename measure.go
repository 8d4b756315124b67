package zireael

// measure counts hard-break lines and max columns (spec §4.C): lines split
// on LF, CR, or CRLF (UAX #29 GB3 already joins CRLF into one cluster, so a
// cluster is a hard break iff it consists solely of CR and/or LF bytes).
// Columns expand tabs to the next multiple of tabStop, which must be > 0.
func measure(b []byte, tabStop int, mode EmojiWidthMode) (lines int, maxCols int) {
	lines = 1
	col := 0
	iterateClusters(b, func(c Cluster) {
		switch {
		case isHardBreak(c):
			lines++
			if col > maxCols {
				maxCols = col
			}
			col = 0
		case isTabCluster(c):
			col = nextTabStop(col, tabStop)
			if col > maxCols {
				maxCols = col
			}
		default:
			col += clusterWidth(c, mode)
			if col > maxCols {
				maxCols = col
			}
		}
	})
	return lines, maxCols
}

// nextTabStop advances col to the next multiple of tabStop strictly greater
// than col (a tab always advances at least one column).
func nextTabStop(col, tabStop int) int {
	return col + (tabStop - col%tabStop)
}

func isHardBreak(c Cluster) bool {
	for _, b := range c.Bytes {
		if b != '\n' && b != '\r' {
			return false
		}
	}
	return len(c.Bytes) > 0
}

func isTabCluster(c Cluster) bool {
	return len(c.Bytes) == 1 && c.Bytes[0] == '\t'
}

func isWhitespaceCluster(c Cluster) bool {
	return (len(c.Bytes) == 1 && (c.Bytes[0] == ' ' || c.Bytes[0] == '\t'))
}

// pendingCluster records enough about one already-placed cluster on the
// current line to support the retroactive break-at-last-whitespace rule.
type pendingCluster struct {
	start, end int
	width      int
	ws         bool
}

// wrapGreedy computes greedy line-start byte offsets over b (spec §4.C).
// Breaks prefer whitespace: if the overflowing grapheme is itself
// whitespace, it is consumed and the new line starts after it; otherwise,
// if the current line already placed a whitespace cluster, the break
// retroactively lands right after that whitespace; only when the current
// line has no whitespace at all does the break land immediately before the
// overflowing grapheme. A single grapheme wider than maxCols is placed on
// its own line regardless (forced progress), and the line immediately
// following it starts fresh. Hard breaks (LF/CR/CRLF) always start a new
// line, independent of maxCols.
func wrapGreedy(b []byte, maxCols, tabStop int, mode EmojiWidthMode) []int {
	offsets := []int{0}
	col := 0
	var pending []pendingCluster

	startNewLine := func(at int) {
		offsets = append(offsets, at)
		col = 0
		pending = pending[:0]
	}

	// iterateClusters does not hand back absolute offsets, so track them
	// locally as clusters consume b in order.
	off := 0
	iterateClusters(b, func(c Cluster) {
		clusterStart := off
		clusterEnd := off + len(c.Bytes)
		off = clusterEnd

		if isHardBreak(c) {
			startNewLine(clusterEnd)
			return
		}

		var w int
		if isTabCluster(c) {
			w = nextTabStop(col, tabStop) - col
		} else {
			w = clusterWidth(c, mode)
		}

		if col == 0 && len(pending) == 0 && w > maxCols {
			// Forced progress: this cluster alone exceeds maxCols.
			pending = append(pending, pendingCluster{clusterStart, clusterEnd, w, isWhitespaceCluster(c)})
			col += w
			return
		}

		if col+w > maxCols {
			if isWhitespaceCluster(c) {
				startNewLine(clusterEnd)
				return
			}
			if idx := lastWhitespaceIndex(pending); idx >= 0 {
				breakAt := pending[idx].end
				rest := append([]pendingCluster(nil), pending[idx+1:]...)
				startNewLine(breakAt)
				for _, pc := range rest {
					pending = append(pending, pc)
					col += pc.width
				}
			} else {
				startNewLine(clusterStart)
			}
		}

		pending = append(pending, pendingCluster{clusterStart, clusterEnd, w, isWhitespaceCluster(c)})
		col += w
	})

	return offsets
}

func lastWhitespaceIndex(pending []pendingCluster) int {
	for i := len(pending) - 1; i >= 0; i-- {
		if pending[i].ws {
			return i
		}
	}
	return -1
}
