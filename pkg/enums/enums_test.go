package enums

import "testing"

func TestParseUserRole(t *testing.T) {
	role, err := ParseUserRole("admin")
	if err != nil || role != UserRoleAdmin {
		t.Fatalf("expected admin, got %q err=%v", role, err)
	}
	if _, err := ParseUserRole("owner"); err == nil {
		t.Fatal("expected unknown role to fail")
	}
}

func TestParseProductCategoryIgnoresCase(t *testing.T) {
	category, err := ParseProductCategory(" Phone ")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if category != ProductCategoryPhone {
		t.Fatalf("expected phone, got %q", category)
	}
	if ProductCategory("fridge").IsValid() {
		t.Fatal("fridge should not be a valid category")
	}
}

func TestCartOperationValidity(t *testing.T) {
	for _, op := range validCartOperations {
		if !op.IsValid() {
			t.Fatalf("expected %q to be valid", op)
		}
	}
	if _, err := ParseCartOperation("merge"); err == nil {
		t.Fatal("expected unknown operation to fail")
	}
}
