// Package profiletest provides an in-memory profile.Store with failure
// injection for use in tests.
package profiletest

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/artem13815/folio/pkg/profile"
)

type failRule struct {
	after int
	err   error
}

// Store is an in-memory profile.Store. InTx snapshots the child collections
// and restores them if the callback fails.
type Store struct {
	mu     sync.Mutex
	users  map[uuid.UUID]profile.User
	skills map[uuid.UUID][]profile.Skill
	exps   map[uuid.UUID][]profile.Experience
	edu    map[uuid.UUID][]profile.Education

	rules  map[string]failRule
	counts map[string]int
	calls  []string

	Rollbacks int
}

func New() *Store {
	return &Store{
		users:  map[uuid.UUID]profile.User{},
		skills: map[uuid.UUID][]profile.Skill{},
		exps:   map[uuid.UUID][]profile.Experience{},
		edu:    map[uuid.UUID][]profile.Education{},
		rules:  map[string]failRule{},
		counts: map[string]int{},
	}
}

// AddUser seeds a user row and returns its id.
func (s *Store) AddUser(u profile.User) uuid.UUID {
	s.mu.Lock()
	defer s.mu.Unlock()
	if u.ID == uuid.Nil {
		u.ID = uuid.New()
	}
	if u.CreatedAt.IsZero() {
		u.CreatedAt = time.Now().UTC()
		u.UpdatedAt = u.CreatedAt
	}
	s.users[u.ID] = u
	return u.ID
}

// SeedSkills replaces the skills of userID without counting as calls.
func (s *Store) SeedSkills(userID uuid.UUID, names ...string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []profile.Skill
	for _, n := range names {
		out = append(out, profile.Skill{ID: uuid.New(), UserID: userID, Name: n, Category: profile.DefaultSkillCategory})
	}
	s.skills[userID] = out
}

func (s *Store) SeedExperiences(userID uuid.UUID, exps ...profile.Experience) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.exps[userID] = append([]profile.Experience(nil), exps...)
}

func (s *Store) SeedEducation(userID uuid.UUID, edu ...profile.Education) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.edu[userID] = append([]profile.Education(nil), edu...)
}

// FailOp makes operation op (a Store method name) return err once it has
// already succeeded `after` times.
func (s *Store) FailOp(op string, after int, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rules[op] = failRule{after: after, err: err}
}

// Calls returns the names of invoked Store methods in order.
func (s *Store) Calls() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.calls...)
}

func (s *Store) User(id uuid.UUID) profile.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.users[id]
}

func (s *Store) Skills(userID uuid.UUID) []profile.Skill {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]profile.Skill(nil), s.skills[userID]...)
}

func (s *Store) Experiences(userID uuid.UUID) []profile.Experience {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]profile.Experience(nil), s.exps[userID]...)
}

func (s *Store) EducationRows(userID uuid.UUID) []profile.Education {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]profile.Education(nil), s.edu[userID]...)
}

// enter records a call and applies failure rules. Caller holds s.mu.
func (s *Store) enter(op string) error {
	s.calls = append(s.calls, op)
	s.counts[op]++
	if r, ok := s.rules[op]; ok && s.counts[op] > r.after {
		return r.err
	}
	return nil
}

func (s *Store) FindUser(ctx context.Context, id uuid.UUID) (profile.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("FindUser"); err != nil {
		return profile.User{}, err
	}
	u, ok := s.users[id]
	if !ok {
		return profile.User{}, profile.ErrNotFound
	}
	return u, nil
}

func (s *Store) UpdateUser(ctx context.Context, id uuid.UUID, patch profile.Patch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("UpdateUser"); err != nil {
		return err
	}
	u, ok := s.users[id]
	if !ok {
		return profile.ErrNotFound
	}
	patch.Apply(&u)
	u.UpdatedAt = time.Now().UTC()
	s.users[id] = u
	return nil
}

func (s *Store) ListSkills(ctx context.Context, userID uuid.UUID) ([]profile.Skill, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListSkills"); err != nil {
		return nil, err
	}
	return append([]profile.Skill(nil), s.skills[userID]...), nil
}

func (s *Store) DeleteAllSkills(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("DeleteAllSkills"); err != nil {
		return err
	}
	delete(s.skills, userID)
	return nil
}

func (s *Store) CreateSkill(ctx context.Context, sk profile.Skill) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateSkill"); err != nil {
		return err
	}
	s.skills[sk.UserID] = append(s.skills[sk.UserID], sk)
	return nil
}

func (s *Store) ListExperiences(ctx context.Context, userID uuid.UUID) ([]profile.Experience, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListExperiences"); err != nil {
		return nil, err
	}
	return append([]profile.Experience(nil), s.exps[userID]...), nil
}

func (s *Store) DeleteAllExperiences(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("DeleteAllExperiences"); err != nil {
		return err
	}
	delete(s.exps, userID)
	return nil
}

func (s *Store) CreateExperience(ctx context.Context, e profile.Experience) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateExperience"); err != nil {
		return err
	}
	s.exps[e.UserID] = append(s.exps[e.UserID], e)
	return nil
}

func (s *Store) ListEducation(ctx context.Context, userID uuid.UUID) ([]profile.Education, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("ListEducation"); err != nil {
		return nil, err
	}
	return append([]profile.Education(nil), s.edu[userID]...), nil
}

func (s *Store) DeleteAllEducation(ctx context.Context, userID uuid.UUID) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("DeleteAllEducation"); err != nil {
		return err
	}
	delete(s.edu, userID)
	return nil
}

func (s *Store) CreateEducation(ctx context.Context, e profile.Education) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.enter("CreateEducation"); err != nil {
		return err
	}
	s.edu[e.UserID] = append(s.edu[e.UserID], e)
	return nil
}

func (s *Store) InTx(ctx context.Context, fn func(tx profile.Store) error) error {
	s.mu.Lock()
	users := cloneMap(s.users)
	skills := cloneMap(s.skills)
	exps := cloneMap(s.exps)
	edu := cloneMap(s.edu)
	s.mu.Unlock()

	if err := fn(s); err != nil {
		s.mu.Lock()
		s.users, s.skills, s.exps, s.edu = users, skills, exps, edu
		s.Rollbacks++
		s.mu.Unlock()
		return err
	}
	return nil
}

func cloneMap[K comparable, V any](m map[K]V) map[K]V {
	out := make(map[K]V, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

var _ profile.Store = (*Store)(nil)
