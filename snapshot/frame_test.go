package snapshot

import "testing"

func sampleFrame(withCRC bool) Frame {
	return Frame{
		Sequence: 42,
		Tick:     7,
		WithCRC:  withCRC,
		Records: []Record{
			{Handle: 1, X: 1.5, Y: -2.25, VX: 10, VY: -5, Rotation: 0.5, Scale: 1, Flags: 3, HPPct: 0.8, Score: 12, LastProcessedSeq: 99},
			{Handle: 2, X: 0, Y: 0, VX: 0, VY: 0, Rotation: 0, Scale: 1, Flags: 9, HPPct: 1, Score: 0, LastProcessedSeq: 0},
		},
	}
}

func TestEncodeDecodeRoundTrip(t *testing.T) {
	for _, withCRC := range []bool{false, true} {
		f := sampleFrame(withCRC)
		buf := Encode(nil, f)
		got, ok := Decode(buf)
		if !ok {
			t.Fatalf("decode failed (withCRC=%v)", withCRC)
		}
		if got.Sequence != f.Sequence || got.Tick != f.Tick || len(got.Records) != len(f.Records) {
			t.Fatalf("round trip mismatch: got %+v want %+v", got, f)
		}
		for i := range f.Records {
			if got.Records[i] != f.Records[i] {
				t.Fatalf("record %d mismatch: got %+v want %+v", i, got.Records[i], f.Records[i])
			}
		}
	}
}

func TestDecodeRejectsBadMagic(t *testing.T) {
	buf := Encode(nil, sampleFrame(false))
	buf[0] ^= 0xFF
	if _, ok := Decode(buf); ok {
		t.Fatalf("expected decode to reject corrupted magic")
	}
}

func TestDecodeRejectsTruncatedFrame(t *testing.T) {
	buf := Encode(nil, sampleFrame(false))
	if _, ok := Decode(buf[:len(buf)-4]); ok {
		t.Fatalf("expected decode to reject a truncated frame")
	}
}

func TestDecodeRejectsBadCRC(t *testing.T) {
	buf := Encode(nil, sampleFrame(true))
	buf[len(buf)-1] ^= 0xFF
	if _, ok := Decode(buf); ok {
		t.Fatalf("expected decode to reject a tampered CRC")
	}
}

func TestEncodeAppendsToExistingBuffer(t *testing.T) {
	prefix := []byte{0xAA, 0xBB}
	buf := Encode(prefix, sampleFrame(false))
	if buf[0] != 0xAA || buf[1] != 0xBB {
		t.Fatalf("expected Encode to preserve the caller's prefix bytes")
	}
	got, ok := Decode(buf[2:])
	if !ok || len(got.Records) != 2 {
		t.Fatalf("expected decode of the appended region to succeed")
	}
}

func TestPoolPublishAndRead(t *testing.T) {
	p := NewPool()
	if _, ok := p.AcquireRead(); ok {
		t.Fatalf("expected no frame before first publish")
	}

	slot := p.AcquireWrite()
	p.PublishWrite(slot, sampleFrame(false))
	f, ok := p.AcquireRead()
	if !ok || len(f.Records) != 2 {
		t.Fatalf("expected published frame to be readable")
	}
	if f.Sequence != 1 {
		t.Fatalf("expected first published frame to get sequence 1, got %d", f.Sequence)
	}

	next := p.AcquireWrite()
	if next == slot {
		t.Fatalf("expected AcquireWrite to avoid the slot currently being read")
	}
}
