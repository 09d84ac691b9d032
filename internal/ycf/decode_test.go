package ycf

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestUnmarshalNestedPlayersAndInlineTable(t *testing.T) {
	input := []byte(`
in_combat = 3000
end = 300000

[report]
damage = true
status = false

[[players]]
name = "dancer-1"
job = "DNC"
stats = { dex = 2000, det = 1600, crt = 1500, dh = 800, sks = 400 }
actions = ["cascade", [500, "fountain"]]

[[enemies]]
name = "target dummy"
untarget = [[1000, 2000], [5000, 5500]]
`)

	var s Scenario
	if err := Unmarshal(input, &s); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	if s.InCombat != 3000 || s.End != 300000 {
		t.Fatalf("timing mismatch: in_combat=%d end=%d", s.InCombat, s.End)
	}
	if !s.Report.Damage || s.Report.Status {
		t.Fatalf("report flags mismatch: %+v", s.Report)
	}

	if len(s.Players) != 1 {
		t.Fatalf("expected 1 player, got %d", len(s.Players))
	}
	p := s.Players[0]
	if p.Name != "dancer-1" || p.Job != "DNC" {
		t.Fatalf("player identity mismatch: %+v", p)
	}
	if p.Stats.Dex != 2000 || p.Stats.Det != 1600 || p.Stats.Sks != 400 {
		t.Fatalf("stats mismatch: %+v", p.Stats)
	}
	if len(p.Actions) != 2 {
		t.Fatalf("expected 2 actions, got %d", len(p.Actions))
	}
	if p.Actions[0].Name != "cascade" || p.Actions[0].Delay != 0 {
		t.Fatalf("action[0] mismatch: %+v", p.Actions[0])
	}
	if p.Actions[1].Name != "fountain" || p.Actions[1].Delay != 500 {
		t.Fatalf("action[1] mismatch: %+v", p.Actions[1])
	}

	if len(s.Enemies) != 1 {
		t.Fatalf("expected 1 enemy, got %d", len(s.Enemies))
	}
	e := s.Enemies[0]
	if len(e.Untarget) != 2 {
		t.Fatalf("expected 2 untarget windows, got %d", len(e.Untarget))
	}
	if e.Untarget[0] != (UntargetWindow{Start: 1000, End: 2000}) {
		t.Fatalf("untarget[0] mismatch: %+v", e.Untarget[0])
	}
	if e.Untarget[1] != (UntargetWindow{Start: 5000, End: 5500}) {
		t.Fatalf("untarget[1] mismatch: %+v", e.Untarget[1])
	}
}

func TestActionEntryRejectsBadShape(t *testing.T) {
	var a ActionEntry
	if err := a.UnmarshalYCF([]any{1, 2, 3}); err == nil {
		t.Fatal("expected error for 3-element action array")
	}
	if err := a.UnmarshalYCF(42); err == nil {
		t.Fatal("expected error for non-string/array action value")
	}
}

func TestUntargetWindowRejectsBadShape(t *testing.T) {
	var w UntargetWindow
	if err := w.UnmarshalYCF([]any{"a", "b"}); err == nil {
		t.Fatal("expected error for non-numeric window bounds")
	}
	if err := w.UnmarshalYCF([]any{1}); err == nil {
		t.Fatal("expected error for single-element window")
	}
}

func TestUnmarshalPlayerSpecFieldShape(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  PlayerSpec
	}{
		{
			name: "minimal",
			input: `
[[players]]
name = "dancer-1"
job = "DNC"
`,
			want: PlayerSpec{Name: "dancer-1", Job: "DNC"},
		},
		{
			name: "full timing and actions",
			input: `
[[players]]
name = "dancer-2"
job = "DNC"
first_actor_tick = 100
first_mp_tick = 200
first_auto_attack = 300
first_action = 400
actions = ["cascade", [500, "fountain"]]
`,
			want: PlayerSpec{
				Name: "dancer-2", Job: "DNC",
				FirstActorTick: 100, FirstMpTick: 200, FirstAutoAttack: 300, FirstAction: 400,
				Actions: []ActionEntry{{Name: "cascade"}, {Delay: 500, Name: "fountain"}},
			},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var s Scenario
			if err := Unmarshal([]byte(tc.input), &s); err != nil {
				t.Fatalf("Unmarshal failed: %v", err)
			}
			if len(s.Players) != 1 {
				t.Fatalf("expected 1 player, got %d", len(s.Players))
			}
			if diff := cmp.Diff(tc.want, s.Players[0]); diff != "" {
				t.Fatalf("player mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestDecodeDuplicateKeyFails(t *testing.T) {
	input := []byte("end = 1\nend = 2\n")
	var s Scenario
	if err := Unmarshal(input, &s); err == nil {
		t.Fatal("expected error for duplicate key")
	}
}
