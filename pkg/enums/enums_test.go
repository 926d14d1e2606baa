package enums

import "testing"

func TestProductStatusParseAndToggle(t *testing.T) {
	status, err := ParseProductStatus("hidden")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if status.Toggled() != ProductStatusActive {
		t.Fatalf("expected hidden to toggle to active")
	}
	if ProductStatusActive.Toggled() != ProductStatusHidden {
		t.Fatalf("expected active to toggle to hidden")
	}
	if _, err := ParseProductStatus("Active"); err == nil {
		t.Fatalf("expected parse to be case sensitive")
	}
}

func TestUserRoleValidity(t *testing.T) {
	if !UserRoleAdmin.IsValid() || !UserRoleStaff.IsValid() {
		t.Fatalf("expected known roles to be valid")
	}
	if UserRole("owner").IsValid() {
		t.Fatalf("unexpected valid role owner")
	}
	if _, err := ParseUserRole("staff"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestOutboxEnums(t *testing.T) {
	if _, err := ParseOutboxEventType("order_created"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseOutboxAggregateType("vendor_order"); err == nil {
		t.Fatalf("expected unknown aggregate to fail")
	}
	if !EventStockReceived.IsValid() || !AggregateStockEntry.IsValid() {
		t.Fatalf("expected stock enums to be valid")
	}
}
