// Package zireael is an embeddable terminal UI rendering engine.
//
// Callers submit a versioned binary drawlist describing a frame and receive
// a packed binary event batch describing input. The engine owns terminal
// I/O (raw-mode entry/leave, input byte reading, output byte writing) and
// computes the minimum terminal output required to transform the
// previously-presented frame into the newly-submitted one.
//
// # Architecture
//
// The package is organized around these parts:
//
//   - [Engine]: orchestrates submit -> execute -> present and owns the
//     platform handle, event queue, and previous/next framebuffers.
//   - [Framebuffer]: a 2-D cell grid with wide-glyph continuation cells,
//     styles, cursor state, and per-row hashes.
//   - The drawlist: the untrusted binary frame description that
//     [Engine.SubmitDrawlist] validates and executes into a staging
//     framebuffer. Callers pass it as raw bytes; the package exports no
//     drawlist builder.
//   - The event queue (unexported): a bounded FIFO of parsed input events,
//     packed into the caller's buffer by [Engine.PollEvents].
//   - The platform boundary (unexported): the interface implemented by the
//     POSIX and Windows backends.
//
// # Quick start
//
//	eng, err := zireael.CreateEngine(zireael.DefaultConfig(), nil)
//	if err != nil {
//		log.Fatal(err)
//	}
//	defer eng.Destroy()
//
//	// frame holds a drawlist already encoded in the binary wire format.
//	if err := eng.SubmitDrawlist(frame); err != nil {
//		log.Fatal(err)
//	}
//	if err := eng.Present(); err != nil {
//		log.Fatal(err)
//	}
//
// # Threading model
//
// All Engine methods run on one owning thread except [Engine.PostUserEvent],
// which is safe to call from any thread. No method is re-entrant.
package zireael
