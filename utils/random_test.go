package utils

import "testing"

func TestGenerateRandomHex(t *testing.T) {
	hex, err := GenerateRandomHex(8)
	if err != nil {
		t.Fatalf("Failed to generate random hex: %v", err)
	}
	if len(hex) != 16 {
		t.Errorf("Expected 16 hex characters for 8 bytes, got %d (%q)", len(hex), hex)
	}
	for _, c := range hex {
		if !(c >= '0' && c <= '9' || c >= 'a' && c <= 'f') {
			t.Errorf("Unexpected character %q in hex string %q", c, hex)
		}
	}
}

func TestGenerateRandomHexUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		hex, err := GenerateRandomHex(8)
		if err != nil {
			t.Fatalf("Failed to generate random hex: %v", err)
		}
		if seen[hex] {
			t.Fatalf("Duplicate value %q after %d iterations", hex, i)
		}
		seen[hex] = true
	}
}
