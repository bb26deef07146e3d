package component

import "testing"

func TestTransformStoreSetPositionTracksPrevious(t *testing.T) {
	s := NewTransformStore(4)
	s.SetPosition(0, 1, 2)
	s.SetPosition(0, 3, 4)

	x, y := s.Position(0)
	if x != 3 || y != 4 {
		t.Fatalf("expected current position (3,4), got (%v,%v)", x, y)
	}
	px, py := s.Previous(0)
	if px != 1 || py != 2 {
		t.Fatalf("expected previous position (1,2), got (%v,%v)", px, py)
	}
}

func TestTransformStoreResetRestoresDefaultScale(t *testing.T) {
	s := NewTransformStore(4)
	s.SetPosition(0, 5, 5)
	s.SetScale(0, 2)
	s.Reset(0)

	x, y, _, scale := s.Get(0)
	if x != 0 || y != 0 {
		t.Fatalf("expected position zeroed, got (%v,%v)", x, y)
	}
	if scale != 1 {
		t.Fatalf("expected scale reset to 1, got %v", scale)
	}
}

func TestStatsStoreDamageClampsAtZero(t *testing.T) {
	s := NewStatsStore(4)
	s.SetHP(0, 10, 100)
	dead := s.Damage(0, 50)
	if !dead {
		t.Fatalf("expected entity to be reported dead once HP clamps to zero")
	}
	cur, _ := s.HP(0)
	if cur != 0 {
		t.Fatalf("expected HP clamped at 0, got %v", cur)
	}
}

func TestStatsStoreDamageNotLethal(t *testing.T) {
	s := NewStatsStore(4)
	s.SetHP(0, 100, 100)
	dead := s.Damage(0, 30)
	if dead {
		t.Fatalf("expected entity to survive non-lethal damage")
	}
	cur, _ := s.HP(0)
	if cur != 70 {
		t.Fatalf("expected HP 70, got %v", cur)
	}
}

func TestInputStoreRoundTripsActionsBitmask(t *testing.T) {
	s := NewInputStore(4)
	s.Set(0, 1.5, -2.5, ActionSpace|ActionEject)

	x, y := s.Target(0)
	if x != 1.5 || y != -2.5 {
		t.Fatalf("expected target (1.5,-2.5), got (%v,%v)", x, y)
	}
	actions := s.Actions(0)
	if actions&ActionSpace == 0 || actions&ActionEject == 0 {
		t.Fatalf("expected both action bits set, got %v", actions)
	}
}

func TestSkillStoreCooldownTicksDownAndClamps(t *testing.T) {
	s := NewSkillStore(4)
	s.SetCooldown(0, 1.0)
	s.TickCooldown(0, 0.6)
	if got := s.Cooldown(0); got < 0.35 || got > 0.45 {
		t.Fatalf("expected cooldown ~0.4 after ticking 0.6 off 1.0, got %v", got)
	}
	s.TickCooldown(0, 10)
	if s.Cooldown(0) != 0 {
		t.Fatalf("expected cooldown clamped at 0, got %v", s.Cooldown(0))
	}
}

func TestSkillStoreMaxCooldownRoundTrip(t *testing.T) {
	s := NewSkillStore(4)
	s.SetMaxCooldown(0, 3.5)
	if got := s.MaxCooldown(0); got != 3.5 {
		t.Fatalf("expected max cooldown 3.5, got %v", got)
	}
}

func TestFlagStoreAddHasClear(t *testing.T) {
	s := NewFlagStore(4)
	s.Add(0, ACTIVE)
	s.Add(0, PLAYER)
	if !s.Has(0, ACTIVE|PLAYER) {
		t.Fatalf("expected both flags set")
	}
	s.Clear(0, PLAYER)
	if s.Has(0, PLAYER) {
		t.Fatalf("expected PLAYER flag cleared")
	}
	if !s.Has(0, ACTIVE) {
		t.Fatalf("expected ACTIVE flag to remain set")
	}
}
