package service

import (
	"context"
	"database/sql"
	"sort"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/noah-isme/aw-admin-api/internal/models"
	"github.com/noah-isme/aw-admin-api/pkg/events"
)

type fakeTx struct {
	calls int
}

func (f *fakeTx) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	f.calls++
	return fn(ctx)
}

type fakeRefs struct {
	rows   map[string]map[int64]bool
	values map[string]int64
	err    error
}

func newFakeRefs() *fakeRefs {
	return &fakeRefs{rows: map[string]map[int64]bool{}, values: map[string]int64{}}
}

func (f *fakeRefs) addRow(table string, id int64) *fakeRefs {
	if f.rows[table] == nil {
		f.rows[table] = map[int64]bool{}
	}
	f.rows[table][id] = true
	return f
}

func (f *fakeRefs) addValue(table, column, value string, owner int64) *fakeRefs {
	f.values[table+"."+column+"="+value] = owner
	return f
}

func (f *fakeRefs) RowExists(ctx context.Context, table string, id int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	return f.rows[table][id], nil
}

func (f *fakeRefs) ValueTaken(ctx context.Context, table, column, value string, excludeID int64) (bool, error) {
	if f.err != nil {
		return false, f.err
	}
	owner, ok := f.values[table+"."+column+"="+value]
	return ok && owner != excludeID, nil
}

type recordingPublisher struct {
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	p.events = append(p.events, event)
	return p.err
}

func (p *recordingPublisher) names() []string {
	out := make([]string, 0, len(p.events))
	for _, e := range p.events {
		out = append(out, e.Name)
	}
	return out
}

type mockUserRepo struct {
	users      map[int64]*models.User
	roles      map[int64]string
	createErrs []error
	passwords  map[int64]string
	findErr    error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{
		users:     map[int64]*models.User{},
		roles:     map[int64]string{1: "admin", 2: "employee"},
		passwords: map[int64]string{},
	}
}

func (m *mockUserRepo) load(u *models.User) *models.User {
	copy := *u
	copy.RoleName = m.roles[copy.RoleID]
	copy.Hydrate()
	return &copy
}

func (m *mockUserRepo) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	all, _ := m.ListAll(ctx, filter)
	return all, len(all), nil
}

func (m *mockUserRepo) ListAll(ctx context.Context, filter models.UserFilter) ([]models.User, error) {
	ids := make([]int64, 0, len(m.users))
	for id := range m.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	out := make([]models.User, 0, len(ids))
	for _, id := range ids {
		out = append(out, *m.load(m.users[id]))
	}
	return out, nil
}

func (m *mockUserRepo) FindByID(ctx context.Context, id int64) (*models.User, error) {
	if m.findErr != nil {
		return nil, m.findErr
	}
	if u, ok := m.users[id]; ok {
		return m.load(u), nil
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	for _, u := range m.users {
		if u.Email == email {
			return m.load(u), nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	for _, u := range m.users {
		if u.Username == username {
			return m.load(u), nil
		}
	}
	return nil, sql.ErrNoRows
}

func (m *mockUserRepo) MaxID(ctx context.Context) (int64, error) {
	var max int64
	for id := range m.users {
		if id > max {
			max = id
		}
	}
	return max, nil
}

func (m *mockUserRepo) Create(ctx context.Context, user *models.User) error {
	if len(m.createErrs) > 0 {
		err := m.createErrs[0]
		m.createErrs = m.createErrs[1:]
		if err != nil {
			return err
		}
	}
	max, _ := m.MaxID(ctx)
	user.ID = max + 1
	copy := *user
	m.users[user.ID] = &copy
	return nil
}

func (m *mockUserRepo) Update(ctx context.Context, user *models.User) error {
	copy := *user
	m.users[user.ID] = &copy
	return nil
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id int64, passwordHash string) error {
	m.passwords[id] = passwordHash
	if u, ok := m.users[id]; ok {
		u.PasswordHash = passwordHash
	}
	return nil
}

func (m *mockUserRepo) CountByRole(ctx context.Context, roleID int64) (int, error) {
	count := 0
	for _, u := range m.users {
		if u.RoleID == roleID {
			count++
		}
	}
	return count, nil
}

func (m *mockUserRepo) ClearDepartment(ctx context.Context, departmentID int64) (int64, error) {
	var affected int64
	for _, u := range m.users {
		if u.DepartmentID != nil && *u.DepartmentID == departmentID {
			u.DepartmentID = nil
			affected++
		}
	}
	return affected, nil
}

func testHasher() *PasswordHasher {
	return NewPasswordHasher(bcrypt.MinCost)
}

func testDeps() (*validator.Validate, *zap.Logger) {
	return validator.New(), zap.NewNop()
}

func int64Ptr(v int64) *int64 { return &v }

func strPtr(v string) *string { return &v }
