package employee

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MikeMC777/cafe-pos/internal/apperr"
	"github.com/MikeMC777/cafe-pos/internal/auth"
)

type memRepo struct {
	byID map[string]*Employee
}

func newMemRepo() *memRepo { return &memRepo{byID: map[string]*Employee{}} }

func (m *memRepo) Create(_ context.Context, e *Employee) error {
	for _, x := range m.byID {
		if x.Email == e.Email {
			return ErrAlreadyExist
		}
	}
	e.ID = "emp-" + e.Email
	cp := *e
	m.byID[e.ID] = &cp
	return nil
}

func (m *memRepo) GetByID(_ context.Context, id string) (*Employee, error) {
	e, ok := m.byID[id]
	if !ok {
		return nil, ErrNotFound
	}
	cp := *e
	return &cp, nil
}

func (m *memRepo) GetByEmail(_ context.Context, email string) (*Employee, error) {
	for _, e := range m.byID {
		if e.Email == email {
			cp := *e
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *memRepo) List(context.Context, Query) ([]Employee, int, error) { return nil, 0, nil }

func (m *memRepo) Update(_ context.Context, e *Employee, _ bool) error {
	if _, ok := m.byID[e.ID]; !ok {
		return ErrNotFound
	}
	cp := *e
	m.byID[e.ID] = &cp
	return nil
}

func (m *memRepo) Delete(_ context.Context, id string) (bool, error) {
	_, ok := m.byID[id]
	delete(m.byID, id)
	return ok, nil
}

func (m *memRepo) SetPermissions(_ context.Context, id string, codes []string) error {
	e, ok := m.byID[id]
	if !ok {
		return ErrNotFound
	}
	e.Permissions = codes
	return nil
}

func (m *memRepo) ListPermissions(context.Context) ([]Permission, error) { return nil, nil }

func newService(t *testing.T) (*Service, *memRepo) {
	t.Helper()
	repo := newMemRepo()
	return NewService(repo, auth.NewTokens("test-secret", time.Hour)), repo
}

func TestCreateAndLogin(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	e, err := svc.Create(ctx, CreateEmployeeRequest{
		ShopID: "shop-1", FullName: " Lan ", Email: "Lan@Cafe.vn", Role: RoleCashier,
		Password: "secret1", Permissions: []string{auth.PermOrders, auth.PermOrders},
	})
	require.NoError(t, err)
	assert.Equal(t, "lan@cafe.vn", e.Email)
	assert.Equal(t, "Lan", e.FullName)
	assert.Equal(t, []string{auth.PermOrders}, e.Permissions)
	assert.NotEqual(t, "secret1", e.PasswordHash)

	res, err := svc.Login(ctx, LoginRequest{Email: "LAN@cafe.vn", Password: "secret1"})
	require.NoError(t, err)
	assert.NotEmpty(t, res.Token)

	p, err := auth.NewTokens("test-secret", time.Hour).Verify(res.Token)
	require.NoError(t, err)
	assert.Equal(t, e.ID, p.EmployeeID)
	assert.Equal(t, "shop-1", p.ShopID)
	assert.True(t, p.Can(auth.PermOrders))
	assert.False(t, p.Can(auth.PermReports))
}

func TestLogin_Rejects(t *testing.T) {
	svc, repo := newService(t)
	ctx := context.Background()

	e, err := svc.Create(ctx, CreateEmployeeRequest{
		ShopID: "shop-1", FullName: "Minh", Email: "minh@cafe.vn", Role: RoleBarista, Password: "secret1",
	})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Email: "minh@cafe.vn", Password: "wrong"})
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))

	_, err = svc.Login(ctx, LoginRequest{Email: "nobody@cafe.vn", Password: "secret1"})
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))

	repo.byID[e.ID].IsActive = false
	_, err = svc.Login(ctx, LoginRequest{Email: "minh@cafe.vn", Password: "secret1"})
	assert.True(t, errors.Is(err, apperr.ErrUnauthorized))
}

func TestCreate_Validation(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, CreateEmployeeRequest{ShopID: "s", FullName: "X", Email: "x@y.z", Role: "chef", Password: "secret1"})
	assert.True(t, errors.Is(err, apperr.ErrBadRequest))

	_, err = svc.Create(ctx, CreateEmployeeRequest{ShopID: "s", FullName: "X", Email: "x@y.z", Role: RoleWaiter, Password: "secret1", Permissions: []string{"root"}})
	assert.True(t, errors.Is(err, apperr.ErrBadRequest))
}

func TestUpdate_PasswordAndPermissions(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	e, err := svc.Create(ctx, CreateEmployeeRequest{ShopID: "s", FullName: "Hoa", Email: "hoa@cafe.vn", Role: RoleWaiter, Password: "secret1"})
	require.NoError(t, err)

	mgr := RoleManager
	_, err = svc.Update(ctx, e.ID, UpdateEmployeeRequest{Role: &mgr, Password: "newpass"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginRequest{Email: "hoa@cafe.vn", Password: "newpass"})
	require.NoError(t, err)

	got, err := svc.SetPermissions(ctx, e.ID, []string{auth.PermReports})
	require.NoError(t, err)
	assert.Equal(t, RoleManager, got.Role)
	assert.Equal(t, []string{auth.PermReports}, got.Permissions)

	_, err = svc.SetPermissions(ctx, "missing", nil)
	assert.True(t, errors.Is(err, apperr.ErrNotFound))
}
