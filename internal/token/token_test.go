package token

import "testing"

func TestIsValidSolanaAddress(t *testing.T) {
	cases := []struct {
		name string
		addr string
		want bool
	}{
		{"wrapped SOL mint", "So11111111111111111111111111111111111111112", true},
		{"USDC mint", "EPjFWdd5AufqSSqeM2qN1xzybapC8G4wEGGkZwyTDt1v", true},
		{"32 char minimum", "11111111111111111111111111111111", true},
		{"empty", "", false},
		{"too short", "So1111111111", false},
		{"too long", "So11111111111111111111111111111111111111112So11111111111111111111111111111111111111112", false},
		{"zero not in alphabet", "0o11111111111111111111111111111111111111112", false},
		{"capital O not in alphabet", "Oo11111111111111111111111111111111111111112", false},
		{"capital I not in alphabet", "Io11111111111111111111111111111111111111112", false},
		{"lowercase l not in alphabet", "lo11111111111111111111111111111111111111112", false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := IsValidSolanaAddress(tc.addr); got != tc.want {
				t.Errorf("IsValidSolanaAddress(%q) = %v, want %v", tc.addr, got, tc.want)
			}
		})
	}
}

func TestShortAddress(t *testing.T) {
	cases := []struct {
		name string
		addr string
		want string
	}{
		{"full mint", "So11111111111111111111111111111111111111112", "So1111...1112"},
		{"short stays as is", "abc123", "abc123"},
		{"twelve chars stays as is", "123456789012", "123456789012"},
		{"thirteen chars abbreviated", "1234567890123", "123456...0123"},
		{"empty", "", ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ShortAddress(tc.addr); got != tc.want {
				t.Errorf("ShortAddress(%q) = %q, want %q", tc.addr, got, tc.want)
			}
		})
	}
}
