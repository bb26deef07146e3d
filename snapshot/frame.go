// Package snapshot implements the binary wire codec for indexed transform
// frames: a fixed header, one packed record per visible entity, and an
// optional CRC32 trailer. It is grounded on the teacher's game_snapshot.go
// triple-buffer publish pattern generalized from an in-memory struct pool
// to an over-the-wire byte format, plus its engine.go ProduceSnapshot call
// site for which fields belong in a broadcast frame.
package snapshot

import (
	"encoding/binary"
	"hash/crc32"
	"math"
)

// Magic identifies the wire format and lets a decoder reject anything
// that isn't one of ours before it tries to interpret the bytes.
const Magic uint32 = 0x41524e41 // "ARNA"

// Version is bumped whenever the record layout changes.
const Version uint16 = 1

// headerSize is the fixed-size frame preamble: magic, version, flags,
// sequence, tick, entity count.
const headerSize = 4 + 2 + 2 + 8 + 4 + 2

// recordSize is the fixed per-entity payload: handle, x, y, vx, vy,
// rotation, scale, flags, hp%, score, lastProcessedSeq.
const recordSize = 4 + 4 + 4 + 4 + 4 + 4 + 4 + 4 + 4 + 4 + 2

// flagHasCRC marks that a trailing 4-byte CRC32 follows the records.
const flagHasCRC uint16 = 1 << 0

// Record is one entity's transform/state as seen by a client. VX/VY and
// LastProcessedSeq are mandated by spec §4.6's wire format: velocity
// lets the client's predictor seed its post-reconciliation step without
// waiting a tick to observe motion, and LastProcessedSeq (0 for
// non-player entities) is the only channel by which a client learns
// which of its own inputs the server has already folded into this
// frame, so Predictor.Reconcile can drop its acknowledged pending
// inputs.
type Record struct {
	Handle           uint32
	X, Y             float32
	VX, VY           float32
	Rotation         float32
	Scale            float32
	Flags            uint32
	HPPct            float32
	Score            float32
	LastProcessedSeq uint16
}

// Frame is a full snapshot ready to encode or just decoded from the wire.
type Frame struct {
	Sequence uint64
	Tick     uint32
	Records  []Record
	WithCRC  bool
}

// Encode packs f into its binary wire form, appending to dst and
// returning the extended slice (matching append's growable-buffer idiom
// so callers can reuse a scratch buffer across frames).
func Encode(dst []byte, f Frame) []byte {
	flags := uint16(0)
	if f.WithCRC {
		flags |= flagHasCRC
	}

	start := len(dst)
	dst = append(dst, make([]byte, headerSize+len(f.Records)*recordSize)...)
	buf := dst[start:]

	binary.LittleEndian.PutUint32(buf[0:4], Magic)
	binary.LittleEndian.PutUint16(buf[4:6], Version)
	binary.LittleEndian.PutUint16(buf[6:8], flags)
	binary.LittleEndian.PutUint64(buf[8:16], f.Sequence)
	binary.LittleEndian.PutUint32(buf[16:20], f.Tick)
	binary.LittleEndian.PutUint16(buf[20:22], uint16(len(f.Records)))

	off := headerSize
	for _, r := range f.Records {
		binary.LittleEndian.PutUint32(buf[off:], r.Handle)
		putFloat32(buf[off+4:], r.X)
		putFloat32(buf[off+8:], r.Y)
		putFloat32(buf[off+12:], r.VX)
		putFloat32(buf[off+16:], r.VY)
		putFloat32(buf[off+20:], r.Rotation)
		putFloat32(buf[off+24:], r.Scale)
		binary.LittleEndian.PutUint32(buf[off+28:], r.Flags)
		putFloat32(buf[off+32:], r.HPPct)
		putFloat32(buf[off+36:], r.Score)
		binary.LittleEndian.PutUint16(buf[off+40:], r.LastProcessedSeq)
		off += recordSize
	}

	if f.WithCRC {
		sum := crc32.ChecksumIEEE(buf[:off])
		dst = binary.LittleEndian.AppendUint32(dst, sum)
	}
	return dst
}

// Decode parses a wire frame out of src. Any structural inconsistency —
// truncated header, a record count that would overrun the buffer, a bad
// magic/version, or (when present) a failed CRC — causes the whole frame
// to be dropped rather than partially trusted, matching spec §6's "the
// entire frame is discarded on any validation failure" rule.
func Decode(src []byte) (Frame, bool) {
	if len(src) < headerSize {
		return Frame{}, false
	}
	if binary.LittleEndian.Uint32(src[0:4]) != Magic {
		return Frame{}, false
	}
	if binary.LittleEndian.Uint16(src[4:6]) != Version {
		return Frame{}, false
	}
	flags := binary.LittleEndian.Uint16(src[6:8])
	seq := binary.LittleEndian.Uint64(src[8:16])
	tick := binary.LittleEndian.Uint32(src[16:20])
	count := int(binary.LittleEndian.Uint16(src[20:22]))

	body := src[headerSize:]
	need := count * recordSize
	hasCRC := flags&flagHasCRC != 0
	if hasCRC {
		need += 4
	}
	if len(body) < need {
		return Frame{}, false
	}

	if hasCRC {
		payload := src[:headerSize+count*recordSize]
		want := binary.LittleEndian.Uint32(body[count*recordSize:])
		if crc32.ChecksumIEEE(payload) != want {
			return Frame{}, false
		}
	}

	records := make([]Record, count)
	off := 0
	for i := range records {
		r := &records[i]
		r.Handle = binary.LittleEndian.Uint32(body[off:])
		r.X = getFloat32(body[off+4:])
		r.Y = getFloat32(body[off+8:])
		r.VX = getFloat32(body[off+12:])
		r.VY = getFloat32(body[off+16:])
		r.Rotation = getFloat32(body[off+20:])
		r.Scale = getFloat32(body[off+24:])
		r.Flags = binary.LittleEndian.Uint32(body[off+28:])
		r.HPPct = getFloat32(body[off+32:])
		r.Score = getFloat32(body[off+36:])
		r.LastProcessedSeq = binary.LittleEndian.Uint16(body[off+40:])
		off += recordSize
	}

	return Frame{Sequence: seq, Tick: tick, Records: records, WithCRC: hasCRC}, true
}

func putFloat32(b []byte, v float32) {
	binary.LittleEndian.PutUint32(b, math.Float32bits(v))
}

func getFloat32(b []byte) float32 {
	return math.Float32frombits(binary.LittleEndian.Uint32(b))
}
