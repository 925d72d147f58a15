package common

import (
	"encoding/hex"
	"strings"
	"testing"
)

// ---------- MakeRandHexString ----------

func TestMakeRandHexString_LengthAndHex(t *testing.T) {
	const n = 16
	s, err := MakeRandHexString(n)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(s) != n*2 {
		t.Fatalf("expected hex length %d, got %d", n*2, len(s))
	}
	if _, err := hex.DecodeString(s); err != nil {
		t.Fatalf("string is not valid hex: %v", err)
	}
}

func TestMakeRandHexString_ZeroSize(t *testing.T) {
	s, err := MakeRandHexString(0)
	if err != nil {
		t.Fatalf("unexpected error for size=0: %v", err)
	}
	if s != "" {
		t.Fatalf("expected empty string for size=0, got %q", s)
	}
}

// ---------- RandomCode ----------

func TestRandomCode_UsesAlphabet(t *testing.T) {
	for i := 0; i < 200; i++ {
		code, err := RandomCode(SessionCodeAlphabet, SessionCodeLength)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(code) != SessionCodeLength {
			t.Fatalf("expected length %d, got %q", SessionCodeLength, code)
		}
		for _, r := range code {
			if !strings.ContainsRune(SessionCodeAlphabet, r) {
				t.Fatalf("rune %q outside alphabet in %q", r, code)
			}
		}
	}
}

func TestRandomCode_SingleLetterAlphabet(t *testing.T) {
	code, err := RandomCode("Z", 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if code != "ZZZZ" {
		t.Fatalf("expected ZZZZ, got %q", code)
	}
}

func TestWipeByteArray(t *testing.T) {
	b := []byte("secret")
	WipeByteArray(b)
	for i, c := range b {
		if c != 0 {
			t.Fatalf("byte %d not wiped: %v", i, c)
		}
	}
}
