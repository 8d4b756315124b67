package zireael

import "testing"

func TestPackEventBatchRoundTrip(t *testing.T) {
	events := []Event{
		{Kind: EventKey, TimeMs: 1, Key: KeyUp, Action: KeyActionDown},
		{Kind: EventKey, TimeMs: 2, Key: KeyUp, Action: KeyActionUp},
		{Kind: EventResize, TimeMs: 3, Cols: 100, Rows: 30},
	}
	buf := make([]byte, 4096)
	n, truncated := packEventBatch(events, buf)
	if truncated {
		t.Fatal("unexpected truncation")
	}
	records, flags, err := parseEventBatch(buf[:n])
	if err != nil {
		t.Fatal(err)
	}
	if flags&batchFlagTruncated != 0 {
		t.Fatal("TRUNCATED bit set unexpectedly")
	}
	if len(records) != 3 {
		t.Fatalf("records = %d, want 3", len(records))
	}
	if records[0].Type != uint32(EventKey) || records[2].Type != uint32(EventResize) {
		t.Fatalf("records out of order or wrong type: %+v", records)
	}
}

func TestPackEventBatchUnknownTypeSkippedBySize(t *testing.T) {
	buf := make([]byte, 256)
	// A record of an unknown type (99) precedes the TICK; the decoder must
	// step over it by its size and still reach the TICK.
	n, _ := packEventBatch([]Event{{Kind: EventKind(99), TimeMs: 8}, {Kind: EventTick, TimeMs: 9}}, buf)
	records, _, err := parseEventBatch(buf[:n])
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 2 || records[1].Type != uint32(EventTick) {
		t.Fatalf("records = %+v", records)
	}
}

func TestPackEventBatchTruncationSetsFlagAndKeepsCompleteRecords(t *testing.T) {
	events := make([]Event, 50)
	for i := range events {
		events[i] = Event{Kind: EventKey, TimeMs: uint64(i), Key: KeyUp}
	}
	buf := make([]byte, eventBatchHeaderSize+40) // room for ~1 record only
	n, truncated := packEventBatch(events, buf)
	if !truncated {
		t.Fatal("expected truncation with an undersized buffer")
	}
	records, flags, err := parseEventBatch(buf[:n])
	if err != nil {
		t.Fatal(err)
	}
	if flags&batchFlagTruncated == 0 {
		t.Fatal("TRUNCATED bit should be set")
	}
	if len(records) == 0 {
		t.Fatal("at least one complete record should still be emitted")
	}
}

func TestPackEventBatchPasteRecordCarriesVariableBytes(t *testing.T) {
	buf := make([]byte, 256)
	n, _ := packEventBatch([]Event{{Kind: EventPaste, Paste: []byte("hi")}}, buf)
	records, _, err := parseEventBatch(buf[:n])
	if err != nil {
		t.Fatal(err)
	}
	if len(records) != 1 {
		t.Fatalf("records = %+v", records)
	}
	got := string(records[0].Body[4:6])
	if got != "hi" {
		t.Fatalf("paste body = %q want %q", got, "hi")
	}
}
