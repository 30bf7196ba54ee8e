package employee

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/MikeMC777/cafe-pos/internal/apperr"
	"github.com/MikeMC777/cafe-pos/internal/auth"
)

// Issuer signs tokens for authenticated employees.
type Issuer interface {
	Issue(p auth.Principal) (string, time.Time, error)
}

type Service struct {
	repo   Repository
	tokens Issuer
}

func NewService(repo Repository, tokens Issuer) *Service {
	return &Service{repo: repo, tokens: tokens}
}

func (s *Service) Create(ctx context.Context, req CreateEmployeeRequest) (*Employee, error) {
	if !req.Role.Valid() {
		return nil, apperr.BadRequest("invalid role %q", req.Role)
	}
	perms, err := normalizePermissions(req.Permissions)
	if err != nil {
		return nil, err
	}
	hash, err := HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	e := &Employee{
		ShopID:       req.ShopID,
		FullName:     strings.TrimSpace(req.FullName),
		Email:        normalizeEmail(req.Email),
		Phone:        strings.TrimSpace(req.Phone),
		Role:         req.Role,
		PasswordHash: hash,
		IsActive:     true,
		Permissions:  perms,
	}
	if err := s.repo.Create(ctx, e); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Employee, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, q Query) ([]Employee, int, error) {
	return s.repo.List(ctx, q)
}

func (s *Service) Update(ctx context.Context, id string, req UpdateEmployeeRequest) (*Employee, error) {
	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := e.Apply(req); err != nil {
		return nil, err
	}
	updatePassword := req.Password != ""
	if updatePassword {
		if e.PasswordHash, err = HashPassword(req.Password); err != nil {
			return nil, fmt.Errorf("hash password: %w", err)
		}
	}
	if err := s.repo.Update(ctx, e, updatePassword); err != nil {
		return nil, err
	}
	return e, nil
}

func (s *Service) Delete(ctx context.Context, id string) error {
	ok, err := s.repo.Delete(ctx, id)
	if err != nil {
		return err
	}
	if !ok {
		return ErrNotFound
	}
	return nil
}

func (s *Service) SetPermissions(ctx context.Context, id string, codes []string) (*Employee, error) {
	perms, err := normalizePermissions(codes)
	if err != nil {
		return nil, err
	}
	if err := s.repo.SetPermissions(ctx, id, perms); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Permissions(ctx context.Context) ([]Permission, error) {
	return s.repo.ListPermissions(ctx)
}

// Login checks credentials and issues a token. Unknown emails, wrong
// passwords and inactive accounts all yield the same error.
func (s *Service) Login(ctx context.Context, req LoginRequest) (*LoginResponse, error) {
	e, err := s.repo.GetByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, apperr.ErrNotFound) {
		return nil, ErrInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !e.IsActive || !CheckPassword(e.PasswordHash, req.Password) {
		return nil, ErrInvalidCredentials
	}
	token, exp, err := s.tokens.Issue(auth.Principal{
		EmployeeID:  e.ID,
		ShopID:      e.ShopID,
		Role:        string(e.Role),
		Permissions: e.Permissions,
	})
	if err != nil {
		return nil, fmt.Errorf("issue token: %w", err)
	}
	return &LoginResponse{Token: token, ExpiresAt: exp, Employee: e}, nil
}

func normalizePermissions(codes []string) ([]string, error) {
	known := make(map[string]bool, len(auth.AllPermissions))
	for _, p := range auth.AllPermissions {
		known[p] = true
	}
	seen := map[string]bool{}
	out := []string{}
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if !known[c] {
			return nil, apperr.BadRequest("unknown permission %q", c)
		}
		if !seen[c] {
			seen[c] = true
			out = append(out, c)
		}
	}
	return out, nil
}
