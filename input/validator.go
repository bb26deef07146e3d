// Package input implements per-session intake validation: size bounds,
// token-bucket rate limiting (RateLimitPerSec refill up to
// RateLimitBurst tokens, not a counting window), strict sequence ordering with an
// anti-speedhack jump cap, and target-position clamping. It is grounded
// on the teacher's internal/api/ratelimit.go IPRateLimiter: one
// golang.org/x/time/rate limiter per key, stored in a sync.Map, with a
// background goroutine that evicts stale entries so idle sessions don't
// leak memory.
package input

import (
	"log"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Config holds the per-session validation bounds named in spec §4.3/§6.
type Config struct {
	MaxMsgBytes     int
	RateLimitPerSec float64
	RateLimitBurst  int
	MaxSequenceJump uint32
	MapRadius       float32
}

// DefaultConfig returns the spec's literal defaults: 60/s, 1 KiB, jump 30.
func DefaultConfig(mapRadius float32) Config {
	return Config{
		MaxMsgBytes:     1024,
		RateLimitPerSec: 60,
		RateLimitBurst:  60,
		MaxSequenceJump: 30,
		MapRadius:       mapRadius,
	}
}

// Message is the raw client INPUT payload before validation.
type Message struct {
	Seq         uint32
	TargetX     float32
	TargetY     float32
	Space       bool
	Eject       bool
	SerialBytes int // size of the message as received on the wire
}

// Result is a validated, clamped, normalized input ready to publish into
// the simulation's mailbox.
type Result struct {
	Seq     uint32
	TargetX float32
	TargetY float32
	Space   bool
	Eject   bool
}

// Reason enumerates why a message was dropped, for metrics/logging.
type Reason string

const (
	ReasonNone         Reason = ""
	ReasonTooLarge     Reason = "too_large"
	ReasonRateLimited  Reason = "rate_limited"
	ReasonSeqNotAhead  Reason = "seq_not_ahead"
	ReasonSeqTooFar    Reason = "seq_jump"
)

// sessionEntry tracks one session's rate limiter and last-seen sequence.
type sessionEntry struct {
	limiter  *rate.Limiter
	lastSeq  uint32
	hasSeq   bool
	lastSeen time.Time
	dropped  int
}

// Validator enforces §4.3's per-message checks across many concurrent
// sessions. Safe for concurrent use: one goroutine per connection may
// call Validate for its own session key while a cleanup goroutine evicts
// idle entries.
type Validator struct {
	cfg      Config
	sessions sync.Map // map[string]*sessionEntry
	stopChan chan struct{}
	stopOnce sync.Once
}

// NewValidator creates a validator and starts its idle-session cleanup
// goroutine (mirrors IPRateLimiter.cleanupLoop).
func NewValidator(cfg Config) *Validator {
	v := &Validator{cfg: cfg, stopChan: make(chan struct{})}
	go v.cleanupLoop()
	return v
}

// Stop halts the cleanup goroutine.
func (v *Validator) Stop() {
	v.stopOnce.Do(func() { close(v.stopChan) })
}

func (v *Validator) entry(session string) *sessionEntry {
	if e, ok := v.sessions.Load(session); ok {
		return e.(*sessionEntry)
	}
	e := &sessionEntry{
		limiter:  rate.NewLimiter(rate.Limit(v.cfg.RateLimitPerSec), v.cfg.RateLimitBurst),
		lastSeen: time.Now(),
	}
	actual, _ := v.sessions.LoadOrStore(session, e)
	return actual.(*sessionEntry)
}

// Validate applies every per-message check in order, returning the
// clamped/normalized Result and ReasonNone on success, or a zero Result
// and the drop reason on failure. A drop is never a disconnect (spec
// §4.3's "failure behavior").
func (v *Validator) Validate(session string, msg Message) (Result, Reason) {
	if msg.SerialBytes > v.cfg.MaxMsgBytes {
		return Result{}, ReasonTooLarge
	}

	e := v.entry(session)
	e.lastSeen = time.Now()

	if !e.limiter.Allow() {
		e.dropped++
		if e.dropped%20 == 0 {
			log.Printf("[input] session %s: %d inputs rate-limited so far", session, e.dropped)
		}
		return Result{}, ReasonRateLimited
	}

	seq := msg.Seq % (1 << 31)
	if e.hasSeq {
		if seq <= e.lastSeq && !wrapped(e.lastSeq, seq) {
			return Result{}, ReasonSeqNotAhead
		}
		jump := seq - e.lastSeq
		if wrapped(e.lastSeq, seq) {
			jump = seq + (1<<31 - e.lastSeq)
		}
		if jump > v.cfg.MaxSequenceJump {
			return Result{}, ReasonSeqTooFar
		}
	}
	e.lastSeq = seq
	e.hasSeq = true

	return Result{
		Seq:     seq,
		TargetX: clamp(msg.TargetX, -v.cfg.MapRadius, v.cfg.MapRadius),
		TargetY: clamp(msg.TargetY, -v.cfg.MapRadius, v.cfg.MapRadius),
		Space:   msg.Space,
		Eject:   msg.Eject,
	}, ReasonNone
}

// wrapped reports whether seq has rolled over modulo 2^31 relative to
// last — i.e. last is near the top of the range and seq near the
// bottom, per spec §9's "rolling the last-seen forward on wrap-around".
func wrapped(last, seq uint32) bool {
	const halfRange = 1 << 30
	return last > (1<<31)-halfRange && seq < halfRange
}

func clamp(v, lo, hi float32) float32 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// Forget drops a session's rate-limit/sequence state, called on leave.
func (v *Validator) Forget(session string) {
	v.sessions.Delete(session)
}

func (v *Validator) cleanupLoop() {
	ticker := time.NewTicker(60 * time.Second)
	defer ticker.Stop()
	for {
		select {
		case <-v.stopChan:
			return
		case <-ticker.C:
			cutoff := time.Now().Add(-60 * time.Second)
			v.sessions.Range(func(key, value interface{}) bool {
				if value.(*sessionEntry).lastSeen.Before(cutoff) {
					v.sessions.Delete(key)
				}
				return true
			})
		}
	}
}
