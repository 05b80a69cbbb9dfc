// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import "testing"

func TestGenerateID(t *testing.T) {
	id, err := GenerateID(16)
	if err != nil {
		t.Fatal(err)
	}
	if len(id) != 32 {
		t.Errorf("expected 32 hex chars, got %d", len(id))
	}

	other, err := GenerateID(16)
	if err != nil {
		t.Fatal(err)
	}
	if id == other {
		t.Error("expected distinct IDs")
	}
}

func TestValidateAdminToken(t *testing.T) {
	if err := ValidateAdminToken("secret", "secret"); err != nil {
		t.Errorf("expected matching token to validate, got %v", err)
	}
	if err := ValidateAdminToken("wrong", "secret"); err == nil {
		t.Error("expected mismatched token to fail")
	}
	if err := ValidateAdminToken("", "secret"); err == nil {
		t.Error("expected empty token to fail")
	}
	// An unset configured token never validates, even against empty input
	if err := ValidateAdminToken("", ""); err == nil {
		t.Error("expected unset configured token to fail")
	}
}
