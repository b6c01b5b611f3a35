package domain

import "testing"

func TestBidOrdering(t *testing.T) {
	tests := []struct {
		name  string
		a, b  string
		beats bool
	}{
		{"same level suit order", "1S", "1H", true},
		{"hearts over diamonds", "1H", "1D", true},
		{"diamonds over clubs", "1D", "1C", true},
		{"no trump over spades", "1N", "1S", true},
		{"higher level wins", "2C", "1N", true},
		{"equal bid does not beat", "3H", "3H", false},
		{"lower suit does not beat", "1C", "1S", false},
		{"any bid beats pass", "1C", "PASS", true},
		{"pass beats nothing", "PASS", "7N", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a, err := ParseBid(tt.a)
			if err != nil {
				t.Fatalf("ParseBid(%q): %v", tt.a, err)
			}
			b, err := ParseBid(tt.b)
			if err != nil {
				t.Fatalf("ParseBid(%q): %v", tt.b, err)
			}
			if got := a.Beats(b); got != tt.beats {
				t.Fatalf("%s.Beats(%s) = %v, want %v", tt.a, tt.b, got, tt.beats)
			}
		})
	}
}

func TestBidTricksAndValue(t *testing.T) {
	tests := []struct {
		level  int
		tricks int
		value  int
	}{
		{1, 7, 1}, {2, 8, 2}, {3, 9, 4}, {7, 13, 64},
	}
	for _, tt := range tests {
		b := Bid{Level: tt.level, Suit: Clubs}
		if got := b.TricksRequired(); got != tt.tricks {
			t.Errorf("level %d tricks = %d, want %d", tt.level, got, tt.tricks)
		}
		if got := b.Value(); got != tt.value {
			t.Errorf("level %d value = %d, want %d", tt.level, got, tt.value)
		}
	}
}

func TestParseBidRejectsMalformed(t *testing.T) {
	for _, code := range []string{"", "0C", "8C", "1X", "C1", "pass", "11C"} {
		if _, err := ParseBid(code); err == nil {
			t.Errorf("ParseBid(%q) succeeded, want error", code)
		}
	}
}

func TestLegalBidsAbove(t *testing.T) {
	all := LegalBidsAbove(Bid{})
	if len(all) != 35 {
		t.Fatalf("open auction legal bids = %d, want 35", len(all))
	}

	above, err := ParseBid("7S")
	if err != nil {
		t.Fatal(err)
	}
	legal := LegalBidsAbove(above)
	if len(legal) != 1 || legal[0].String() != "7N" {
		t.Fatalf("bids above 7S = %v, want [7N]", legal)
	}

	for _, b := range LegalBidsAbove(Bid{Level: 3, Suit: Hearts}) {
		if !b.Beats(Bid{Level: 3, Suit: Hearts}) {
			t.Fatalf("LegalBidsAbove returned non-beating bid %s", b)
		}
	}
}
