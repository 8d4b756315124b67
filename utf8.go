package zireael

import "unicode/utf8"

// decodedScalar is the result of decoding one UTF-8 scalar value from a
// byte slice, including the locked invalid-sequence policy from the
// unicode layer: on invalid input, exactly one byte is consumed and the
// scalar is U+FFFD.
type decodedScalar struct {
	r     rune
	size  int
	valid bool
}

// decodeRune decodes one scalar from the front of b. It never reads past
// len(b) and always makes progress when b is non-empty: a valid lead byte
// with a complete, well-formed sequence yields {scalar, size, true}; any
// other case (empty input aside) consumes exactly one byte and yields
// {U+FFFD, 1, false}.
//
// Valid lead bytes are 0x00-0x7F, 0xC2-0xDF, 0xE0-0xEF, 0xF0-0xF4; overlong
// encodings, surrogate scalars (U+D800-U+DFFF), and out-of-range scalars
// (> U+10FFFF) are all rejected even though their byte-level framing may be
// well-formed, per the locked invalid policy. Go's unicode/utf8 already
// enforces all three rejections and already reports size=1 on failure, so
// this wraps DecodeRune to pin that behavior as a documented
// contract rather than incidental stdlib behavior.
func decodeRune(b []byte) decodedScalar {
	if len(b) == 0 {
		return decodedScalar{r: utf8.RuneError, size: 0, valid: false}
	}
	r, size := utf8.DecodeRune(b)
	if r == utf8.RuneError && size <= 1 {
		return decodedScalar{r: utf8.RuneError, size: 1, valid: false}
	}
	if r > utf8.MaxRune || (r >= 0xD800 && r <= 0xDFFF) {
		return decodedScalar{r: utf8.RuneError, size: 1, valid: false}
	}
	return decodedScalar{r: r, size: size, valid: true}
}

// decodeAll walks b scalar-by-scalar, invoking fn with each decoded scalar
// and its byte offset. Always consumes every byte of b.
func decodeAll(b []byte, fn func(ds decodedScalar, offset int)) {
	off := 0
	for off < len(b) {
		ds := decodeRune(b[off:])
		fn(ds, off)
		off += ds.size
	}
}
