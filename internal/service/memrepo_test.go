package service

import (
	"fmt"
	"io"
	"log/slog"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/yourorg/phonebook/internal/domain"
	"github.com/yourorg/phonebook/internal/security"
	"github.com/yourorg/phonebook/internal/security/auth"
)

// memStore is a shared in-memory backing store for the repository fakes.
// It emulates the constraints the schema enforces: unique usernames,
// emails, organization names and private numbers, the (editor,
// organization) pair, and cascading deletes.
type memStore struct {
	mu      sync.Mutex
	nextID  int64
	users   map[int64]*domain.User
	orgs    map[int64]*domain.Organization
	workers map[int64]*domain.Worker
	rights  map[int64]*domain.EditingRight
}

func newMemStore() *memStore {
	return &memStore{
		users:   map[int64]*domain.User{},
		orgs:    map[int64]*domain.Organization{},
		workers: map[int64]*domain.Worker{},
		rights:  map[int64]*domain.EditingRight{},
	}
}

func (s *memStore) id() int64 {
	s.nextID++
	return s.nextID
}

type memUsers struct{ store *memStore }

func (r *memUsers) Create(user *domain.User) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if u.Username == user.Username || u.Email == user.Email {
			return fmt.Errorf("users: %w", domain.ErrConflict)
		}
	}
	user.ID = r.store.id()
	user.CreatedAt = time.Now()
	cp := *user
	r.store.users[user.ID] = &cp
	return nil
}

func (r *memUsers) GetByID(id int64) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if u, ok := r.store.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
}

func (r *memUsers) GetByUsername(username string) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if u.Username == username {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
}

func (r *memUsers) GetByEmail(email string) (*domain.User, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, u := range r.store.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, fmt.Errorf("user: %w", domain.ErrNotFound)
}

func (r *memUsers) Delete(id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.users[id]; !ok {
		return fmt.Errorf("user: %w", domain.ErrNotFound)
	}
	delete(r.store.users, id)
	for oid, o := range r.store.orgs {
		if o.CreatorID == id {
			r.store.deleteOrgLocked(oid)
		}
	}
	for rid, right := range r.store.rights {
		if right.EditorID == id {
			delete(r.store.rights, rid)
		}
	}
	return nil
}

type memOrgs struct{ store *memStore }

func (r *memOrgs) Create(org *domain.Organization) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, o := range r.store.orgs {
		if o.Name == org.Name {
			return fmt.Errorf("organizations: %w", domain.ErrConflict)
		}
	}
	org.ID = r.store.id()
	org.CreatedAt = time.Now()
	cp := *org
	cp.Workers = nil
	r.store.orgs[org.ID] = &cp
	return nil
}

func (r *memOrgs) GetByID(id int64) (*domain.Organization, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if o, ok := r.store.orgs[id]; ok {
		return r.store.orgWithWorkersLocked(o), nil
	}
	return nil, fmt.Errorf("organization: %w", domain.ErrNotFound)
}

func (r *memOrgs) GetByName(name string) (*domain.Organization, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, o := range r.store.orgs {
		if o.Name == name {
			return r.store.orgWithWorkersLocked(o), nil
		}
	}
	return nil, fmt.Errorf("organization: %w", domain.ErrNotFound)
}

func (r *memOrgs) GetByNameForCreator(name string, creatorID int64) (*domain.Organization, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, o := range r.store.orgs {
		if o.Name == name && o.CreatorID == creatorID {
			return r.store.orgWithWorkersLocked(o), nil
		}
	}
	return nil, fmt.Errorf("organization: %w", domain.ErrNotFound)
}

func (r *memOrgs) Update(org *domain.Organization) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	stored, ok := r.store.orgs[org.ID]
	if !ok {
		return fmt.Errorf("organization: %w", domain.ErrNotFound)
	}
	for _, o := range r.store.orgs {
		if o.ID != org.ID && o.Name == org.Name {
			return fmt.Errorf("organizations: %w", domain.ErrConflict)
		}
	}
	stored.Name = org.Name
	stored.Address = org.Address
	stored.Description = org.Description
	return nil
}

func (r *memOrgs) Delete(id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.orgs[id]; !ok {
		return fmt.Errorf("organization: %w", domain.ErrNotFound)
	}
	r.store.deleteOrgLocked(id)
	return nil
}

func (r *memOrgs) List(search string) ([]*domain.Organization, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	var out []*domain.Organization
	for _, o := range r.store.orgs {
		if search != "" && !r.store.orgMatchesLocked(o, search) {
			continue
		}
		out = append(out, r.store.orgWithWorkersLocked(o))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (s *memStore) deleteOrgLocked(id int64) {
	delete(s.orgs, id)
	for wid, w := range s.workers {
		if w.OrganizationID == id {
			delete(s.workers, wid)
		}
	}
	for rid, right := range s.rights {
		if right.OrganizationID == id {
			delete(s.rights, rid)
		}
	}
}

func (s *memStore) orgWithWorkersLocked(o *domain.Organization) *domain.Organization {
	cp := *o
	cp.Workers = s.workersOfLocked(o.ID, "")
	return &cp
}

func (s *memStore) workersOfLocked(orgID int64, search string) []*domain.Worker {
	out := []*domain.Worker{}
	for _, w := range s.workers {
		if w.OrganizationID != orgID {
			continue
		}
		if search != "" && !workerMatches(w, search) {
			continue
		}
		cp := *w
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (s *memStore) orgMatchesLocked(o *domain.Organization, search string) bool {
	if strings.Contains(strings.ToLower(o.Name), strings.ToLower(search)) {
		return true
	}
	for _, w := range s.workers {
		if w.OrganizationID == o.ID && workerMatches(w, search) {
			return true
		}
	}
	return false
}

func workerMatches(w *domain.Worker, search string) bool {
	needle := strings.ToLower(search)
	for _, field := range []string{w.FullName, w.WorkNumber, w.PrivateNumber, w.Fax} {
		if strings.Contains(strings.ToLower(field), needle) {
			return true
		}
	}
	return false
}

type memWorkers struct{ store *memStore }

func (r *memWorkers) Create(worker *domain.Worker) error {
	if err := domain.ValidateWorker(worker); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.orgs[worker.OrganizationID]; !ok {
		return fmt.Errorf("organization: %w", domain.ErrNotFound)
	}
	if err := r.store.checkPrivateNumberLocked(worker); err != nil {
		return err
	}
	worker.ID = r.store.id()
	cp := *worker
	r.store.workers[worker.ID] = &cp
	return nil
}

func (r *memWorkers) GetByID(id int64) (*domain.Worker, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if w, ok := r.store.workers[id]; ok {
		cp := *w
		return &cp, nil
	}
	return nil, fmt.Errorf("worker: %w", domain.ErrNotFound)
}

func (r *memWorkers) Update(worker *domain.Worker) error {
	if err := domain.ValidateWorker(worker); err != nil {
		return err
	}
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.workers[worker.ID]; !ok {
		return fmt.Errorf("worker: %w", domain.ErrNotFound)
	}
	if err := r.store.checkPrivateNumberLocked(worker); err != nil {
		return err
	}
	cp := *worker
	r.store.workers[worker.ID] = &cp
	return nil
}

func (r *memWorkers) Delete(id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.workers[id]; !ok {
		return fmt.Errorf("worker: %w", domain.ErrNotFound)
	}
	delete(r.store.workers, id)
	return nil
}

func (r *memWorkers) ListByOrganization(orgID int64, search string) ([]*domain.Worker, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	return r.store.workersOfLocked(orgID, search), nil
}

func (s *memStore) checkPrivateNumberLocked(worker *domain.Worker) error {
	if worker.PrivateNumber == "" {
		return nil
	}
	for _, w := range s.workers {
		if w.ID != worker.ID && w.PrivateNumber == worker.PrivateNumber {
			return fmt.Errorf("workers: %w", domain.ErrConflict)
		}
	}
	return nil
}

type memRights struct{ store *memStore }

func (r *memRights) Create(right *domain.EditingRight) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.users[right.EditorID]; !ok {
		return fmt.Errorf("user: %w", domain.ErrNotFound)
	}
	if _, ok := r.store.orgs[right.OrganizationID]; !ok {
		return fmt.Errorf("organization: %w", domain.ErrNotFound)
	}
	for _, existing := range r.store.rights {
		if existing.EditorID == right.EditorID && existing.OrganizationID == right.OrganizationID {
			return fmt.Errorf("editing_rights: %w", domain.ErrConflict)
		}
	}
	right.ID = r.store.id()
	cp := *right
	r.store.rights[right.ID] = &cp
	return nil
}

func (r *memRights) GetByID(id int64) (*domain.EditingRight, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if right, ok := r.store.rights[id]; ok {
		return r.store.rightWithNamesLocked(right), nil
	}
	return nil, fmt.Errorf("editing right: %w", domain.ErrNotFound)
}

func (r *memRights) Delete(id int64) error {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	if _, ok := r.store.rights[id]; !ok {
		return fmt.Errorf("editing right: %w", domain.ErrNotFound)
	}
	delete(r.store.rights, id)
	return nil
}

func (r *memRights) Exists(editorID, orgID int64) (bool, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	for _, right := range r.store.rights {
		if right.EditorID == editorID && right.OrganizationID == orgID {
			return true, nil
		}
	}
	return false, nil
}

func (r *memRights) ListByCreator(creatorID int64) ([]*domain.EditingRight, error) {
	r.store.mu.Lock()
	defer r.store.mu.Unlock()
	out := []*domain.EditingRight{}
	for _, right := range r.store.rights {
		org, ok := r.store.orgs[right.OrganizationID]
		if !ok {
			continue
		}
		if creatorID != 0 && org.CreatorID != creatorID {
			continue
		}
		out = append(out, r.store.rightWithNamesLocked(right))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].EditorID < out[j].EditorID })
	return out, nil
}

func (s *memStore) rightWithNamesLocked(right *domain.EditingRight) *domain.EditingRight {
	cp := *right
	if u, ok := s.users[right.EditorID]; ok {
		cp.EditorEmail = u.Email
	}
	if o, ok := s.orgs[right.OrganizationID]; ok {
		cp.Organization = o.Name
	}
	return &cp
}

// env wires every service against one shared in-memory store, the way
// main wires them against Postgres.
type env struct {
	store  *memStore
	users  *memUsers
	orgs   *memOrgs
	auth   *AuthService
	orgSvc *OrganizationService
	work   *WorkerService
	rights *EditingRightService
}

func newEnv(t *testing.T) *env {
	t.Helper()
	store := newMemStore()
	users := &memUsers{store: store}
	orgs := &memOrgs{store: store}
	workers := &memWorkers{store: store}
	rights := &memRights{store: store}

	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	engine := security.NewEngine(orgs, rights, true, log)
	tokens := auth.NewTokenManager("test-secret", "phonebook")

	return &env{
		store:  store,
		users:  users,
		orgs:   orgs,
		auth:   NewAuthService(users, tokens, time.Hour, log),
		orgSvc: NewOrganizationService(orgs, engine, log),
		work:   NewWorkerService(workers, orgs, engine, log),
		rights: NewEditingRightService(rights, orgs, users, engine, log),
	}
}

func (e *env) register(t *testing.T, username, email string) *domain.User {
	t.Helper()
	user, err := e.auth.Register(RegisterInput{
		Username: username,
		Password: "hunter2hunter2",
		Email:    email,
	})
	if err != nil {
		t.Fatalf("register %s failed: %v", username, err)
	}
	return user
}

func (e *env) superuser(t *testing.T, username, email string) *domain.User {
	t.Helper()
	user := e.register(t, username, email)
	e.store.mu.Lock()
	e.store.users[user.ID].IsSuperuser = true
	e.store.mu.Unlock()
	user.IsSuperuser = true
	return user
}

func (e *env) createOrg(t *testing.T, creator *domain.User, name string) *domain.Organization {
	t.Helper()
	org, err := e.orgSvc.Create(creator, name, "1 Main St", "")
	if err != nil {
		t.Fatalf("create organization %s failed: %v", name, err)
	}
	return org
}
