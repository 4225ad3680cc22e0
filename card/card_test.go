package card

import (
	"encoding/json"
	"math/rand"
	"testing"
)

func TestParse_AcceptsCommonSpellings(t *testing.T) {
	cases := map[string]Card{
		"AS":  New(Ace, Spade),
		"as":  New(Ace, Spade),
		"10h": New(Ten, Heart),
		"TH":  New(Ten, Heart),
		"7C":  New(Seven, Club),
		"kd":  New(King, Diamond),
	}
	for in, want := range cases {
		got, err := Parse(in)
		if err != nil {
			t.Fatalf("Parse(%q) err: %v", in, err)
		}
		if got != want {
			t.Fatalf("Parse(%q) = %s, want %s", in, got, want)
		}
	}
}

func TestParse_RejectsGarbage(t *testing.T) {
	for _, in := range []string{"", "A", "1X", "ZZ", "11S", "AJ"} {
		if _, err := Parse(in); err == nil {
			t.Fatalf("Parse(%q) expected error", in)
		}
	}
}

func TestCard_IdentifierRoundTrip(t *testing.T) {
	for _, s := range Suits {
		for _, r := range Ranks {
			c := New(r, s)
			back, err := Parse(c.String())
			if err != nil || back != c {
				t.Fatalf("identifier %q did not round-trip: %s err=%v", c.String(), back, err)
			}
		}
	}
}

func TestCard_JSONMapKey(t *testing.T) {
	in := map[Card]string{MustParse("AS"): "p1", MustParse("TD"): "p2"}
	raw, err := json.Marshal(in)
	if err != nil {
		t.Fatalf("marshal err: %v", err)
	}
	var out map[Card]string
	if err := json.Unmarshal(raw, &out); err != nil {
		t.Fatalf("unmarshal err: %v", err)
	}
	if out[MustParse("AS")] != "p1" || out[MustParse("TD")] != "p2" {
		t.Fatalf("unexpected decoded map: %v", out)
	}
}

func TestCardList_RemoveAndContains(t *testing.T) {
	var hand CardList
	hand.Add(MustParse("AS"), MustParse("2S"), MustParse("3S"))
	if !hand.Remove(MustParse("2S")) {
		t.Fatalf("expected 2S to be removed")
	}
	if hand.Contains(MustParse("2S")) {
		t.Fatalf("2S still in hand")
	}
	if hand.Remove(MustParse("2S")) {
		t.Fatalf("second removal should report false")
	}
	if hand.Count() != 2 {
		t.Fatalf("count = %d, want 2", hand.Count())
	}
}

func TestCardList_ShuffleIsSeeded(t *testing.T) {
	d, err := NewDeck(LayoutRank, nil)
	if err != nil {
		t.Fatal(err)
	}
	a := d.Cards()
	b := d.Cards()
	a.Shuffle(rand.New(rand.NewSource(7)))
	b.Shuffle(rand.New(rand.NewSource(7)))
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("same seed produced different order at %d: %s vs %s", i, a[i], b[i])
		}
	}
}

func TestParseOwners(t *testing.T) {
	got, err := ParseOwners(map[string]string{"as": "p1", "10h": "p2"})
	if err != nil {
		t.Fatalf("ParseOwners err: %v", err)
	}
	if got[MustParse("AS")] != "p1" || got[MustParse("TH")] != "p2" {
		t.Fatalf("unexpected owners: %v", got)
	}
	if _, err := ParseOwners(map[string]string{"TH": "p1", "10h": "p2"}); err == nil {
		t.Fatalf("expected error when one card is named twice")
	}
	if _, err := ParseOwners(map[string]string{"ZZ": "p1"}); err == nil {
		t.Fatalf("expected error for an unknown card id")
	}
}
