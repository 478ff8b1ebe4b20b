package store

import (
	"testing"

	"github.com/devitsbeka/foodvault/internal/database"
	"github.com/devitsbeka/foodvault/internal/model"
)

func setupFamilyTestDB(t *testing.T) (*FamilyStore, *UserStore) {
	t.Helper()
	db, err := database.Open(":memory:")
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return NewFamilyStore(db), NewUserStore(db)
}

func TestFamilyCreate(t *testing.T) {
	fs, us := setupFamilyTestDB(t)

	u, err := us.Create("alice@example.com", "Alice", "hash1")
	if err != nil {
		t.Fatalf("create user: %v", err)
	}

	f, err := fs.Create("Smith Family", u.ID)
	if err != nil {
		t.Fatalf("create family: %v", err)
	}
	if f.Name != "Smith Family" {
		t.Errorf("name = %q, want %q", f.Name, "Smith Family")
	}
	if f.CreatedBy != u.ID {
		t.Errorf("created_by = %d, want %d", f.CreatedBy, u.ID)
	}
	if f.ApprovalThreshold != model.DefaultApprovalThreshold {
		t.Errorf("approval_threshold = %d, want %d", f.ApprovalThreshold, model.DefaultApprovalThreshold)
	}
}

func TestFamilyUpdate(t *testing.T) {
	fs, us := setupFamilyTestDB(t)

	u, _ := us.Create("alice@example.com", "Alice", "hash1")
	f, err := fs.Create("Smith Family", u.ID)
	if err != nil {
		t.Fatalf("create family: %v", err)
	}

	updated, err := fs.Update(f.ID, "Smiths", 3)
	if err != nil {
		t.Fatalf("update family: %v", err)
	}
	if updated.Name != "Smiths" {
		t.Errorf("name = %q, want %q", updated.Name, "Smiths")
	}
	if updated.ApprovalThreshold != 3 {
		t.Errorf("approval_threshold = %d, want 3", updated.ApprovalThreshold)
	}
}

func TestFamilyGetByIDNotFound(t *testing.T) {
	fs, _ := setupFamilyTestDB(t)

	f, err := fs.GetByID(999)
	if err != nil {
		t.Fatalf("get by id: %v", err)
	}
	if f != nil {
		t.Error("expected nil for nonexistent family")
	}
}

func TestFamilyAddMember(t *testing.T) {
	fs, us := setupFamilyTestDB(t)

	alice, _ := us.Create("alice@example.com", "Alice", "hash1")
	bob, _ := us.Create("bob@example.com", "Bob", "hash2")
	f, err := fs.Create("Smith Family", alice.ID)
	if err != nil {
		t.Fatalf("create family: %v", err)
	}

	m, err := fs.AddMember(f.ID, bob.ID, model.RoleMember)
	if err != nil {
		t.Fatalf("add member: %v", err)
	}
	if m.FamilyID != f.ID {
		t.Errorf("family_id = %d, want %d", m.FamilyID, f.ID)
	}
	if m.UserID != bob.ID {
		t.Errorf("user_id = %d, want %d", m.UserID, bob.ID)
	}
	if m.Role != model.RoleMember {
		t.Errorf("role = %q, want %q", m.Role, model.RoleMember)
	}
}

func TestFamilyAddMemberDuplicate(t *testing.T) {
	fs, us := setupFamilyTestDB(t)

	alice, _ := us.Create("alice@example.com", "Alice", "hash1")
	f, _ := fs.Create("Smith Family", alice.ID)

	if _, err := fs.AddMember(f.ID, alice.ID, model.RoleAdmin); err != nil {
		t.Fatalf("add member: %v", err)
	}
	if _, err := fs.AddMember(f.ID, alice.ID, model.RoleMember); err == nil {
		t.Fatal("expected error for duplicate membership, got nil")
	}
}

func TestFamilyGetMember(t *testing.T) {
	fs, us := setupFamilyTestDB(t)

	alice, _ := us.Create("alice@example.com", "Alice", "hash1")
	bob, _ := us.Create("bob@example.com", "Bob", "hash2")
	f, _ := fs.Create("Smith Family", alice.ID)
	fs.AddMember(f.ID, alice.ID, model.RoleAdmin)

	m, err := fs.GetMember(f.ID, alice.ID)
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if m == nil {
		t.Fatal("expected member, got nil")
	}
	if m.Role != model.RoleAdmin {
		t.Errorf("role = %q, want %q", m.Role, model.RoleAdmin)
	}

	m, err = fs.GetMember(f.ID, bob.ID)
	if err != nil {
		t.Fatalf("get non-member: %v", err)
	}
	if m != nil {
		t.Error("expected nil for non-member")
	}
}

func TestFamilyRemoveMember(t *testing.T) {
	fs, us := setupFamilyTestDB(t)

	alice, _ := us.Create("alice@example.com", "Alice", "hash1")
	bob, _ := us.Create("bob@example.com", "Bob", "hash2")
	f, _ := fs.Create("Smith Family", alice.ID)
	fs.AddMember(f.ID, alice.ID, model.RoleAdmin)
	fs.AddMember(f.ID, bob.ID, model.RoleMember)

	if err := fs.RemoveMember(f.ID, bob.ID); err != nil {
		t.Fatalf("remove member: %v", err)
	}

	m, err := fs.GetMember(f.ID, bob.ID)
	if err != nil {
		t.Fatalf("get after remove: %v", err)
	}
	if m != nil {
		t.Error("expected nil after remove")
	}
}

func TestFamilyListMembers(t *testing.T) {
	fs, us := setupFamilyTestDB(t)

	alice, _ := us.Create("alice@example.com", "Alice", "hash1")
	bob, _ := us.Create("bob@example.com", "Bob", "hash2")
	f, _ := fs.Create("Smith Family", alice.ID)
	fs.AddMember(f.ID, alice.ID, model.RoleAdmin)
	fs.AddMember(f.ID, bob.ID, model.RoleMember)

	members, err := fs.ListMembers(f.ID)
	if err != nil {
		t.Fatalf("list members: %v", err)
	}
	if len(members) != 2 {
		t.Errorf("members = %d, want 2", len(members))
	}
}

func TestFamilyListFamiliesForUser(t *testing.T) {
	fs, us := setupFamilyTestDB(t)

	alice, _ := us.Create("alice@example.com", "Alice", "hash1")
	bob, _ := us.Create("bob@example.com", "Bob", "hash2")
	f1, _ := fs.Create("Smith Family", alice.ID)
	f2, _ := fs.Create("Book Club", bob.ID)
	fs.AddMember(f1.ID, alice.ID, model.RoleAdmin)
	fs.AddMember(f2.ID, bob.ID, model.RoleAdmin)
	fs.AddMember(f2.ID, alice.ID, model.RoleMember)

	families, err := fs.ListFamiliesForUser(alice.ID)
	if err != nil {
		t.Fatalf("list families: %v", err)
	}
	if len(families) != 2 {
		t.Errorf("families = %d, want 2", len(families))
	}

	families, err = fs.ListFamiliesForUser(bob.ID)
	if err != nil {
		t.Fatalf("list families: %v", err)
	}
	if len(families) != 1 {
		t.Errorf("families = %d, want 1", len(families))
	}
}

func TestFamilyUpdateMemberRole(t *testing.T) {
	fs, us := setupFamilyTestDB(t)

	alice, _ := us.Create("alice@example.com", "Alice", "hash1")
	bob, _ := us.Create("bob@example.com", "Bob", "hash2")
	f, _ := fs.Create("Smith Family", alice.ID)
	fs.AddMember(f.ID, alice.ID, model.RoleAdmin)
	fs.AddMember(f.ID, bob.ID, model.RoleMember)

	m, err := fs.UpdateMemberRole(f.ID, bob.ID, model.RoleAdmin)
	if err != nil {
		t.Fatalf("update member role: %v", err)
	}
	if m.Role != model.RoleAdmin {
		t.Errorf("role = %q, want %q", m.Role, model.RoleAdmin)
	}
}

func TestFamilyDeleteCascadesMembers(t *testing.T) {
	fs, us := setupFamilyTestDB(t)

	alice, _ := us.Create("alice@example.com", "Alice", "hash1")
	f, _ := fs.Create("Smith Family", alice.ID)
	fs.AddMember(f.ID, alice.ID, model.RoleAdmin)

	if err := fs.Delete(f.ID); err != nil {
		t.Fatalf("delete family: %v", err)
	}

	families, err := fs.ListFamiliesForUser(alice.ID)
	if err != nil {
		t.Fatalf("list after delete: %v", err)
	}
	if len(families) != 0 {
		t.Errorf("families = %d, want 0", len(families))
	}
}
