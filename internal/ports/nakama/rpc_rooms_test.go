package nakama

import (
	"encoding/json"
	"math/rand"
	"strings"
	"testing"
)

func TestGenerateRoomCode(t *testing.T) {
	rng := rand.New(rand.NewSource(17))
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		code := generateRoomCode(rng)
		if len(code) != roomCodeLength {
			t.Fatalf("code %q length = %d, want %d", code, len(code), roomCodeLength)
		}
		for _, c := range code {
			if !strings.ContainsRune(roomCodeAlphabet, c) {
				t.Fatalf("code %q contains %q outside the alphabet", code, c)
			}
		}
		seen[code] = true
	}
	if len(seen) < 90 {
		t.Fatalf("only %d distinct codes out of 100, generator looks degenerate", len(seen))
	}
}

func TestRoomCodeAlphabetExcludesAmbiguousCharacters(t *testing.T) {
	for _, c := range "0O1I" {
		if strings.ContainsRune(roomCodeAlphabet, c) {
			t.Fatalf("alphabet should not contain %q", c)
		}
	}
}

func TestMatchLabelMarshal(t *testing.T) {
	label := &MatchLabel{
		Code:     "WXYZ",
		Open:     2,
		Phase:    "waiting",
		Practice: false,
	}
	b, err := json.Marshal(label)
	if err != nil {
		t.Fatalf("marshal label: %v", err)
	}
	want := `{"code":"WXYZ","open":2,"phase":"waiting","practice":false}`
	if string(b) != want {
		t.Fatalf("label = %s, want %s", b, want)
	}
}
