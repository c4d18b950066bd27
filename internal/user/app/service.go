package app

import (
	"context"
	"fmt"
	"net/mail"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/dwikikusuma/techstore/internal/user/domain"
	"github.com/dwikikusuma/techstore/pkg/apperr"
	"github.com/dwikikusuma/techstore/pkg/auth"
	"github.com/dwikikusuma/techstore/pkg/cache"
)

const (
	DefaultRole       = "customer"
	AdminRole         = "admin"
	MinPasswordLength = 8
	maxPasswordLength = 72

	accountTTL = 30 * time.Second
)

var (
	ErrNotFound        = fmt.Errorf("user %w", apperr.ErrNotFound)
	ErrAddressNotFound = fmt.Errorf("address %w", apperr.ErrNotFound)
	ErrEmailTaken      = fmt.Errorf("%w: email already registered", apperr.ErrConflict)
	ErrWrongPassword   = fmt.Errorf("%w: current password does not match", apperr.ErrInvalidInput)

	phonePattern  = regexp.MustCompile(`^\+?[0-9 ()-]{6,20}$`)
	postalPattern = regexp.MustCompile(`^[0-9A-Za-z -]{3,10}$`)
)

type CreateInput struct {
	Name     string
	Email    string
	Phone    string
	Password string
	Role     string
	Status   domain.Status
}

type UpdateInput struct {
	Name   string
	Email  string
	Phone  string
	Status domain.Status
}

type AddressInput struct {
	Label      string
	Recipient  string
	Phone      string
	Line1      string
	Line2      string
	City       string
	Province   string
	PostalCode string
}

type Service struct {
	users     UserRepo
	addresses AddressRepo
	roles     RoleChecker
	cache     cache.Cache
	cost      int
	log       *zap.Logger
}

// NewService wires the user service. c may be nil, in which case account lookups always hit
// the repository.
func NewService(users UserRepo, addresses AddressRepo, roles RoleChecker, c cache.Cache, log *zap.Logger) *Service {
	return &Service{users: users, addresses: addresses, roles: roles, cache: c, cost: bcrypt.DefaultCost, log: log}
}

func accountKey(id string) string { return "users:account:" + id }

// Account reports the stored role and standing of a user for request authentication.
// Deleted users are not found.
func (s *Service) Account(ctx context.Context, id string) (auth.Account, error) {
	return cache.GetOrLoad(ctx, s.cache, accountKey(id), accountTTL, func(ctx context.Context) (auth.Account, error) {
		u, err := s.Get(ctx, id)
		if err != nil {
			return auth.Account{}, err
		}
		return auth.Account{Role: u.Role, Active: u.Status == domain.StatusActive}, nil
	})
}

// EnsureAdmin creates an active admin with the given credentials unless one already exists.
func (s *Service) EnsureAdmin(ctx context.Context, email, password string) error {
	admins, _, err := s.users.List(ctx, domain.Filter{Role: AdminRole, Status: domain.StatusActive, Limit: 1})
	if err != nil {
		return fmt.Errorf("list admins: %w", err)
	}
	if len(admins) > 0 {
		return nil
	}
	u, err := s.Create(ctx, CreateInput{Name: "Administrator", Email: email, Password: password, Role: AdminRole})
	if err != nil {
		return fmt.Errorf("bootstrap admin: %w", err)
	}
	s.log.Info("bootstrap admin created", zap.String("user_id", u.ID))
	return nil
}

func (s *Service) List(ctx context.Context, f domain.Filter) ([]domain.User, int64, error) {
	if f.Limit <= 0 || f.Limit > 100 {
		f.Limit = 20
	}
	f.Query = strings.TrimSpace(f.Query)
	switch f.Status {
	case "", domain.StatusActive, domain.StatusDisabled, domain.StatusDeleted:
	default:
		return nil, 0, fmt.Errorf("%w: unknown status %q", apperr.ErrInvalidInput, f.Status)
	}
	return s.users.List(ctx, f)
}

// Get returns any non-deleted user.
func (s *Service) Get(ctx context.Context, id string) (domain.User, error) {
	if strings.TrimSpace(id) == "" {
		return domain.User{}, apperr.ErrInvalidInput
	}
	u, err := s.users.Get(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	if u.Status == domain.StatusDeleted {
		return domain.User{}, ErrNotFound
	}
	return u, nil
}

func (s *Service) Create(ctx context.Context, in CreateInput) (domain.User, error) {
	u := domain.User{
		Name:   strings.TrimSpace(in.Name),
		Email:  normalizeEmail(in.Email),
		Phone:  strings.TrimSpace(in.Phone),
		Role:   strings.ToLower(strings.TrimSpace(in.Role)),
		Status: in.Status,
	}
	if u.Role == "" {
		u.Role = DefaultRole
	}
	if u.Status == "" {
		u.Status = domain.StatusActive
	}
	if err := validateUser(u.Name, u.Email, u.Phone, u.Status); err != nil {
		return domain.User{}, err
	}
	if err := s.checkRole(ctx, u.Role); err != nil {
		return domain.User{}, err
	}
	hash, err := s.hash(in.Password)
	if err != nil {
		return domain.User{}, err
	}
	u.PasswordHash = hash

	out, err := s.users.Create(ctx, u)
	if err != nil {
		return domain.User{}, err
	}
	s.log.Info("user created", zap.String("user_id", out.ID), zap.String("role", out.Role))
	return out, nil
}

func (s *Service) Update(ctx context.Context, id string, in UpdateInput) (domain.User, error) {
	current, err := s.Get(ctx, id)
	if err != nil {
		return domain.User{}, err
	}
	current.Name = strings.TrimSpace(in.Name)
	current.Email = normalizeEmail(in.Email)
	current.Phone = strings.TrimSpace(in.Phone)
	if in.Status != "" {
		current.Status = in.Status
	}
	if err := validateUser(current.Name, current.Email, current.Phone, current.Status); err != nil {
		return domain.User{}, err
	}
	out, err := s.users.Update(ctx, current)
	if err != nil {
		return domain.User{}, err
	}
	cache.Invalidate(ctx, s.cache, accountKey(id))
	return out, nil
}

func (s *Service) SetRole(ctx context.Context, id, role string) (domain.User, error) {
	if _, err := s.Get(ctx, id); err != nil {
		return domain.User{}, err
	}
	role = strings.ToLower(strings.TrimSpace(role))
	if err := s.checkRole(ctx, role); err != nil {
		return domain.User{}, err
	}
	if err := s.users.SetRole(ctx, id, role); err != nil {
		return domain.User{}, err
	}
	cache.Invalidate(ctx, s.cache, accountKey(id))
	s.log.Info("user role changed", zap.String("user_id", id), zap.String("role", role))
	return s.Get(ctx, id)
}

func (s *Service) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.users.SetStatus(ctx, id, domain.StatusDeleted); err != nil {
		return err
	}
	cache.Invalidate(ctx, s.cache, accountKey(id))
	return nil
}

// Profile returns the caller's own account.
func (s *Service) Profile(ctx context.Context, userID string) (domain.User, error) {
	return s.Get(ctx, userID)
}

func (s *Service) UpdateProfile(ctx context.Context, userID, name, phone string) (domain.User, error) {
	current, err := s.Get(ctx, userID)
	if err != nil {
		return domain.User{}, err
	}
	return s.Update(ctx, userID, UpdateInput{Name: name, Email: current.Email, Phone: phone})
}

func (s *Service) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	u, err := s.Get(ctx, userID)
	if err != nil {
		return err
	}
	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(currentPassword)); err != nil {
		return ErrWrongPassword
	}
	hash, err := s.hash(newPassword)
	if err != nil {
		return err
	}
	return s.users.SetPassword(ctx, userID, hash)
}

func (s *Service) ListAddresses(ctx context.Context, userID string) ([]domain.Address, error) {
	return s.addresses.List(ctx, userID)
}

func (s *Service) GetAddress(ctx context.Context, userID, id string) (domain.Address, error) {
	if strings.TrimSpace(id) == "" {
		return domain.Address{}, apperr.ErrInvalidInput
	}
	return s.addresses.Get(ctx, userID, id)
}

func (s *Service) CreateAddress(ctx context.Context, userID string, in AddressInput) (domain.Address, error) {
	a, err := buildAddress(in)
	if err != nil {
		return domain.Address{}, err
	}
	a.UserID = userID
	return s.addresses.Create(ctx, a)
}

func (s *Service) UpdateAddress(ctx context.Context, userID, id string, in AddressInput) (domain.Address, error) {
	current, err := s.GetAddress(ctx, userID, id)
	if err != nil {
		return domain.Address{}, err
	}
	a, err := buildAddress(in)
	if err != nil {
		return domain.Address{}, err
	}
	a.ID = current.ID
	a.UserID = userID
	a.IsDefault = current.IsDefault
	return s.addresses.Update(ctx, a)
}

func (s *Service) DeleteAddress(ctx context.Context, userID, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperr.ErrInvalidInput
	}
	return s.addresses.Delete(ctx, userID, id)
}

func (s *Service) SetDefaultAddress(ctx context.Context, userID, id string) error {
	if strings.TrimSpace(id) == "" {
		return apperr.ErrInvalidInput
	}
	return s.addresses.SetDefault(ctx, userID, id)
}

func (s *Service) checkRole(ctx context.Context, role string) error {
	ok, err := s.roles.Exists(ctx, role)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: role %q does not exist", apperr.ErrInvalidInput, role)
	}
	return nil
}

func (s *Service) hash(password string) (string, error) {
	if len(password) < MinPasswordLength {
		return "", fmt.Errorf("%w: password must be at least %d characters", apperr.ErrInvalidInput, MinPasswordLength)
	}
	if len(password) > maxPasswordLength {
		return "", fmt.Errorf("%w: password must be at most %d bytes", apperr.ErrInvalidInput, maxPasswordLength)
	}
	b, err := bcrypt.GenerateFromPassword([]byte(password), s.cost)
	if err != nil {
		return "", fmt.Errorf("hash password: %w", err)
	}
	return string(b), nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func validateUser(name, email, phone string, status domain.Status) error {
	if name == "" || len(name) > 120 {
		return fmt.Errorf("%w: name must be 1-120 characters", apperr.ErrInvalidInput)
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return fmt.Errorf("%w: invalid email", apperr.ErrInvalidInput)
	}
	if phone != "" && !phonePattern.MatchString(phone) {
		return fmt.Errorf("%w: invalid phone", apperr.ErrInvalidInput)
	}
	if status != domain.StatusActive && status != domain.StatusDisabled {
		return fmt.Errorf("%w: status must be active or disabled", apperr.ErrInvalidInput)
	}
	return nil
}

func buildAddress(in AddressInput) (domain.Address, error) {
	a := domain.Address{
		Label:      strings.TrimSpace(in.Label),
		Recipient:  strings.TrimSpace(in.Recipient),
		Phone:      strings.TrimSpace(in.Phone),
		Line1:      strings.TrimSpace(in.Line1),
		Line2:      strings.TrimSpace(in.Line2),
		City:       strings.TrimSpace(in.City),
		Province:   strings.TrimSpace(in.Province),
		PostalCode: strings.TrimSpace(in.PostalCode),
	}
	var missing []string
	for _, f := range []struct{ name, v string }{
		{"recipient", a.Recipient}, {"phone", a.Phone}, {"line1", a.Line1}, {"city", a.City},
	} {
		if f.v == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return domain.Address{}, fmt.Errorf("%w: missing %s", apperr.ErrInvalidInput, strings.Join(missing, ", "))
	}
	if !phonePattern.MatchString(a.Phone) {
		return domain.Address{}, fmt.Errorf("%w: invalid phone", apperr.ErrInvalidInput)
	}
	if a.PostalCode != "" && !postalPattern.MatchString(a.PostalCode) {
		return domain.Address{}, fmt.Errorf("%w: invalid postal code", apperr.ErrInvalidInput)
	}
	if a.Label == "" {
		a.Label = "Home"
	}
	return a, nil
}
