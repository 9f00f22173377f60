package service

import (
	"errors"
	"testing"

	"github.com/yourorg/phonebook/internal/domain"
)

func TestCreateOrganization(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "alice", "alice@example.com")

	org, err := e.orgSvc.Create(alice, "Acme", "1 Main St", "widgets")
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if org.CreatorID != alice.ID {
		t.Fatalf("expected creator %d, got %d", alice.ID, org.CreatorID)
	}
	if org.Workers == nil || len(org.Workers) != 0 {
		t.Fatalf("expected an empty workers list, got %v", org.Workers)
	}
}

func TestCreateOrganizationDuplicateName(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "alice", "alice@example.com")
	bob := e.register(t, "bob", "bob@example.com")
	e.createOrg(t, alice, "Acme")

	// Names are globally unique, even across creators.
	if _, err := e.orgSvc.Create(bob, "Acme", "2 Side St", ""); !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected conflict for duplicate name, got %v", err)
	}
}

func TestCreateOrganizationAnonymous(t *testing.T) {
	e := newEnv(t)
	if _, err := e.orgSvc.Create(nil, "Acme", "1 Main St", ""); !errors.Is(err, domain.ErrUnauthenticated) {
		t.Fatalf("expected unauthenticated, got %v", err)
	}
}

func TestUpdateOrganizationOwnership(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "alice", "alice@example.com")
	bob := e.register(t, "bob", "bob@example.com")
	org := e.createOrg(t, alice, "Acme")

	name := "Acme Corp"
	updated, err := e.orgSvc.Update(alice, org.ID, OrganizationPatch{Name: &name})
	if err != nil {
		t.Fatalf("creator update failed: %v", err)
	}
	if updated.Name != "Acme Corp" {
		t.Fatalf("expected renamed organization, got %s", updated.Name)
	}

	if _, err := e.orgSvc.Update(bob, org.ID, OrganizationPatch{Name: &name}); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden for non-creator, got %v", err)
	}
	if err := e.orgSvc.Delete(bob, org.ID); !errors.Is(err, domain.ErrForbidden) {
		t.Fatalf("expected forbidden delete for non-creator, got %v", err)
	}
}

func TestSuperuserManagesAnyOrganization(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "alice", "alice@example.com")
	admin := e.superuser(t, "admin", "admin@example.com")
	org := e.createOrg(t, alice, "Acme")

	addr := "99 Admin Way"
	if _, err := e.orgSvc.Update(admin, org.ID, OrganizationPatch{Address: &addr}); err != nil {
		t.Fatalf("superuser update failed: %v", err)
	}
	if err := e.orgSvc.Delete(admin, org.ID); err != nil {
		t.Fatalf("superuser delete failed: %v", err)
	}
}

func TestDeleteOrganizationCascades(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "alice", "alice@example.com")
	e.register(t, "bob", "bob@example.com")
	org := e.createOrg(t, alice, "Acme")

	worker, err := e.work.Create(alice, org.ID, WorkerInput{
		FullName:   "Carol Jones",
		Position:   "Engineer",
		WorkNumber: "+74951234567",
	})
	if err != nil {
		t.Fatalf("create worker failed: %v", err)
	}
	right, err := e.rights.Create(alice, "bob@example.com", "Acme")
	if err != nil {
		t.Fatalf("grant failed: %v", err)
	}

	if err := e.orgSvc.Delete(alice, org.ID); err != nil {
		t.Fatalf("delete organization failed: %v", err)
	}

	if _, err := e.orgSvc.Get(alice, org.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected organization gone, got %v", err)
	}
	if _, err := e.work.Get(alice, org.ID, worker.ID); !errors.Is(err, domain.ErrNotFound) {
		t.Fatalf("expected worker cascade, got %v", err)
	}
	rights, err := e.rights.List(alice)
	if err != nil {
		t.Fatalf("list rights failed: %v", err)
	}
	for _, r := range rights {
		if r.ID == right.ID {
			t.Fatalf("expected editing right cascade, still present: %+v", r)
		}
	}
}

func TestListOrganizationsSearch(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "alice", "alice@example.com")
	acme := e.createOrg(t, alice, "Acme")
	e.createOrg(t, alice, "Globex")

	if _, err := e.work.Create(alice, acme.ID, WorkerInput{
		FullName:   "Carol Jones",
		Position:   "Engineer",
		WorkNumber: "+74951234567",
	}); err != nil {
		t.Fatalf("create worker failed: %v", err)
	}

	// Search matches the organization name.
	orgs, err := e.orgSvc.List(nil, "glob")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(orgs) != 1 || orgs[0].Name != "Globex" {
		t.Fatalf("expected only Globex, got %v", orgs)
	}

	// Search matches a worker's name and surfaces its organization.
	orgs, err = e.orgSvc.List(nil, "carol")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(orgs) != 1 || orgs[0].Name != "Acme" {
		t.Fatalf("expected only Acme, got %v", orgs)
	}
	if len(orgs[0].Workers) != 1 {
		t.Fatalf("expected embedded workers, got %v", orgs[0].Workers)
	}

	// No term returns everything, ordered by name.
	orgs, err = e.orgSvc.List(nil, "")
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(orgs) != 2 || orgs[0].Name != "Acme" || orgs[1].Name != "Globex" {
		t.Fatalf("expected [Acme Globex], got %v", orgs)
	}
}

func TestUpdateOrganizationValidation(t *testing.T) {
	e := newEnv(t)
	alice := e.register(t, "alice", "alice@example.com")
	org := e.createOrg(t, alice, "Acme")

	empty := ""
	_, err := e.orgSvc.Update(alice, org.ID, OrganizationPatch{Name: &empty})
	if _, ok := domain.AsValidation(err); !ok {
		t.Fatalf("expected validation error for empty name, got %v", err)
	}
}
