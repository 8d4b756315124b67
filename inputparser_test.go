package zireael

import "testing"

func TestInputParserPlainTextDecodesRune(t *testing.T) {
	p := newInputParser(4096)
	events, err := p.Feed([]byte("A"), 1, ParserCaps{})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Kind != EventText || events[0].Rune != 'A' {
		t.Fatalf("events = %+v", events)
	}
}

func TestInputParserArrowKey(t *testing.T) {
	p := newInputParser(4096)
	events, err := p.Feed([]byte("\x1b[A"), 1, ParserCaps{})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Kind != EventKey || events[0].Key != KeyUp {
		t.Fatalf("events = %+v", events)
	}
}

func TestInputParserArrowWithModifier(t *testing.T) {
	p := newInputParser(4096)
	events, err := p.Feed([]byte("\x1b[1;5C"), 1, ParserCaps{})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Key != KeyRight || events[0].Modifiers != ModCtrl {
		t.Fatalf("events = %+v", events)
	}
}

func TestInputParserSplitSequenceAcrossFeeds(t *testing.T) {
	p := newInputParser(4096)
	events, err := p.Feed([]byte("\x1b["), 1, ParserCaps{})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 0 {
		t.Fatalf("partial sequence should yield no events yet, got %+v", events)
	}
	events, err = p.Feed([]byte("A"), 2, ParserCaps{})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Key != KeyUp {
		t.Fatalf("events after completing split sequence = %+v", events)
	}
}

func TestInputParserSS3ArrowKey(t *testing.T) {
	p := newInputParser(4096)
	events, err := p.Feed([]byte("\x1bOA"), 1, ParserCaps{})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Key != KeyUp {
		t.Fatalf("events = %+v", events)
	}
}

func TestInputParserTildeFunctionKey(t *testing.T) {
	p := newInputParser(4096)
	events, err := p.Feed([]byte("\x1b[3~"), 1, ParserCaps{})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Key != KeyDelete {
		t.Fatalf("events = %+v", events)
	}
}

func TestInputParserSGRMouseMotionWithoutButtons(t *testing.T) {
	p := newInputParser(4096)
	events, err := p.Feed([]byte("\x1b[<35;10;5M"), 1, ParserCaps{})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Kind != EventMouse || events[0].MouseAction != MouseMove {
		t.Fatalf("events = %+v, want single MOUSE_MOVE", events)
	}
	if events[0].MouseX != 9 || events[0].MouseY != 4 {
		t.Fatalf("mouse pos = (%d,%d) want (9,4)", events[0].MouseX, events[0].MouseY)
	}
}

func TestInputParserBracketedPasteAccumulates(t *testing.T) {
	p := newInputParser(4096)
	events, err := p.Feed([]byte("\x1b[200~hello world\x1b[201~"), 1, ParserCaps{BracketedPaste: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Kind != EventPaste || string(events[0].Paste) != "hello world" {
		t.Fatalf("events = %+v", events)
	}
}

func TestInputParserBracketedPasteOverCapReturnsLimit(t *testing.T) {
	p := newInputParser(4)
	_, err := p.Feed([]byte("\x1b[200~hello world\x1b[201~"), 1, ParserCaps{BracketedPaste: true})
	if KindOf(err) != ErrLimit {
		t.Fatalf("got %v, want ErrLimit", err)
	}
}

func TestInputParserBracketedPasteIgnoredWhenNotGated(t *testing.T) {
	p := newInputParser(4096)
	events, err := p.Feed([]byte("\x1b[200~hi\x1b[201~"), 1, ParserCaps{BracketedPaste: false})
	if err != nil {
		t.Fatal(err)
	}
	for _, e := range events {
		if e.Kind == EventPaste {
			t.Fatalf("paste event emitted despite BracketedPaste: false")
		}
	}
}

func TestInputParserFocusEventsGated(t *testing.T) {
	p := newInputParser(4096)
	events, err := p.Feed([]byte("\x1b[I"), 1, ParserCaps{FocusEvents: true})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 1 || events[0].Kind != EventFocusIn {
		t.Fatalf("events = %+v", events)
	}
}

func TestInputParserLoneEscapeFlushesOnTimeout(t *testing.T) {
	p := newInputParser(4096)
	events, err := p.Feed([]byte("\x1b"), 1, ParserCaps{})
	if err != nil {
		t.Fatal(err)
	}
	if len(events) != 0 {
		t.Fatalf("lone ESC should not resolve immediately, got %+v", events)
	}
	ev, ok := p.FlushEscape(2)
	if !ok || ev.Key != KeyEscape {
		t.Fatalf("FlushEscape = %+v, %v", ev, ok)
	}
}
