// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package auth

import (
	"errors"
	"strings"
	"testing"
)

// cheap keeps the tests fast.
var cheap = Params{Memory: 1024, Time: 1, Threads: 1, KeyLen: 16, SaltLen: 8}

func TestHashAndCheck(t *testing.T) {
	hash, err := HashPassword("changeme")
	if err != nil {
		t.Fatalf("HashPassword: %v", err)
	}
	if !strings.HasPrefix(hash, "$argon2id$v=19$m=19456,t=2,p=1$") {
		t.Errorf("hash = %q", hash)
	}

	tests := []struct {
		password string
		want     bool
	}{
		{"changeme", true},
		{"Changeme", false},
		{"", false},
	}
	for _, tt := range tests {
		ok, err := CheckPassword(tt.password, hash)
		if err != nil {
			t.Fatalf("CheckPassword(%q): %v", tt.password, err)
		}
		if ok != tt.want {
			t.Errorf("CheckPassword(%q) = %v, want %v", tt.password, ok, tt.want)
		}
	}
}

func TestHashPassword_Salted(t *testing.T) {
	a, _ := HashPasswordWith("secret", cheap)
	b, _ := HashPasswordWith("secret", cheap)
	if a == b {
		t.Error("two hashes of the same password are identical")
	}
}

func TestCheckPassword_ForeignParameters(t *testing.T) {
	// Hash made with m=65536,t=1,p=4 for "changeme".
	stored := "$argon2id$v=19$m=65536,t=1,p=4$mucMvOaS6lZ2LWNS1OEFKw$UYEWv8cvCOO6l2zGeqv3JPVe1nyy0x9GXBfYEuDM544"

	if ok, err := CheckPassword("changeme", stored); err != nil || !ok {
		t.Fatalf("CheckPassword = %v, %v", ok, err)
	}
	if ok, _ := CheckPassword("wrongpassword", stored); ok {
		t.Fatal("wrong password accepted")
	}
	if !NeedsRehash(stored) {
		t.Error("NeedsRehash = false for foreign parameters")
	}
}

func TestCheckPassword_Malformed(t *testing.T) {
	tests := []string{
		"",
		"plain",
		"$bcrypt$v=19$m=1,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=18$m=1024,t=1,p=1$c2FsdA$a2V5",
		"$argon2id$v=19$m=x$c2FsdA$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$!!$a2V5",
		"$argon2id$v=19$m=1024,t=1,p=1$c2FsdA$",
	}
	for _, stored := range tests {
		ok, err := CheckPassword("x", stored)
		if ok || !errors.Is(err, ErrMalformedHash) {
			t.Errorf("CheckPassword(%q) = %v, %v", stored, ok, err)
		}
		if !NeedsRehash(stored) {
			t.Errorf("NeedsRehash(%q) = false", stored)
		}
	}
}

func TestNeedsRehash_Current(t *testing.T) {
	hash, err := HashPassword("changeme")
	if err != nil {
		t.Fatal(err)
	}
	if NeedsRehash(hash) {
		t.Error("fresh hash needs rehash")
	}
}

func TestValidatePassword(t *testing.T) {
	if err := ValidatePassword("short"); err == nil {
		t.Error("short password accepted")
	}
	if err := ValidatePassword("long enough"); err != nil {
		t.Errorf("ValidatePassword: %v", err)
	}
	if err := ValidatePassword(strings.Repeat("a", 2000)); err == nil {
		t.Error("oversized password accepted")
	}
}
