package model

import "testing"

func TestEnumsValid(t *testing.T) {
	if !FrequencyMonthly.Valid() || Frequency("yearly").Valid() {
		t.Error("Frequency.Valid mismatch")
	}
	if !RoleAdmin.Valid() || Role("owner").Valid() {
		t.Error("Role.Valid mismatch")
	}
	if !BillCategoryCondominium.Valid() || BillCategory("food").Valid() {
		t.Error("BillCategory.Valid mismatch")
	}
	if !WasteGlass.Valid() || WasteType("glass").Valid() {
		t.Error("WasteType.Valid mismatch")
	}
}

func TestWasteTypeLabel(t *testing.T) {
	if got := WastePaper.Label(); got != "Carta" {
		t.Errorf("Label = %q, want %q", got, "Carta")
	}
	if got := WasteType("unknown").Label(); got != "unknown" {
		t.Errorf("Label = %q, want raw value", got)
	}
}

func TestDisplayName(t *testing.T) {
	name := "Giulia Rossi"
	blank := "  "
	tests := []struct {
		full  *string
		email string
		want  string
	}{
		{&name, "giulia@example.com", "Giulia Rossi"},
		{&blank, "marco@example.com", "marco"},
		{nil, "anna@example.com", "anna"},
		{nil, "noatsign", "noatsign"},
	}
	for _, tt := range tests {
		u := User{FullName: tt.full, Email: tt.email}
		if got := u.DisplayName(); got != tt.want {
			t.Errorf("DisplayName(%v, %q) = %q, want %q", tt.full, tt.email, got, tt.want)
		}
	}
}
