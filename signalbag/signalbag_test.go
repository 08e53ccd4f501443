package signalbag

import "testing"

// playerBag is a small concrete bag used to exercise the Field/GlobalClock
// building blocks the way a generated bag would: one persisting field and
// one resetting field, patched from an event with optional values.
type playerBag struct {
	GlobalClock
	PlayerState Field[string]
	UserAction  Field[string]
}

type playerPatch struct {
	playerState *string
	userAction  *string
}

func (b *playerBag) Patch(p playerPatch) {
	b.PlayerState.Apply(p.playerState)
	b.UserAction.Apply(p.userAction)
	b.Bump()
}

func (b *playerBag) ShouldMeasure() bool { return false }

func strPtr(s string) *string { return &s }

func TestPersistFieldHoldsValue(t *testing.T) {
	bag := &playerBag{
		PlayerState: NewPersistField("stopped"),
		UserAction:  NewResetField(""),
	}

	bag.Patch(playerPatch{playerState: strPtr("play")})
	if bag.PlayerState.Value != "play" {
		t.Fatalf("expected play, got %q", bag.PlayerState.Value)
	}
	if bag.PlayerState.Clock() != 1 {
		t.Fatalf("expected player state clock 1, got %d", bag.PlayerState.Clock())
	}

	bag.Patch(playerPatch{userAction: strPtr("seek")})
	if bag.PlayerState.Value != "play" {
		t.Fatalf("persist field must hold its value across an omitting patch, got %q", bag.PlayerState.Value)
	}
	if bag.PlayerState.Clock() != 1 {
		t.Fatalf("persist field clock must not advance on an omitting patch, got %d", bag.PlayerState.Clock())
	}
}

func TestResetFieldSnapsToDefault(t *testing.T) {
	bag := &playerBag{
		PlayerState: NewPersistField("stopped"),
		UserAction:  NewResetField(""),
	}

	bag.Patch(playerPatch{userAction: strPtr("P")})
	if bag.UserAction.Value != "P" {
		t.Fatalf("expected P, got %q", bag.UserAction.Value)
	}
	if bag.UserAction.Clock() != 1 {
		t.Fatalf("expected user action clock 1, got %d", bag.UserAction.Clock())
	}

	bag.Patch(playerPatch{playerState: strPtr("play")})
	if bag.UserAction.Value != "" {
		t.Fatalf("reset field must snap to its default on an omitting patch, got %q", bag.UserAction.Value)
	}
	if bag.UserAction.Clock() != 2 {
		t.Fatalf("reset field clock must advance even on an omitting patch, got %d", bag.UserAction.Clock())
	}
}

func TestGlobalClockAdvancesPerPatch(t *testing.T) {
	bag := &playerBag{
		PlayerState: NewPersistField(""),
		UserAction:  NewResetField(""),
	}

	bag.Patch(playerPatch{})
	bag.Patch(playerPatch{playerState: strPtr("play")})
	bag.Patch(playerPatch{userAction: strPtr("P")})

	if bag.Clock() != 3 {
		t.Fatalf("global clock should advance once per applied patch, got %d", bag.Clock())
	}
}
