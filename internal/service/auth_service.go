package service

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"newsletter/internal/models"
	"newsletter/internal/repository"
	"newsletter/internal/validation"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

// unusablePasswordPrefix marks accounts that can only sign in through the social bridge.
const unusablePasswordPrefix = "!"

const maxUsernameAttempts = 100

var usernameStrip = regexp.MustCompile(`[^\w.@+-]`)

// ErrBadCredentials is returned for unknown accounts and wrong passwords alike.
var ErrBadCredentials = models.NewUnauthorizedError("No active account found with the given credentials")

type AuthService struct {
	users  repository.UserRepository
	tokens *TokenService
}

type RegisterInput struct {
	Username  string `json:"username" validate:"required,username"`
	Email     string `json:"email" validate:"required,email,max=254"`
	Password1 string `json:"password1" validate:"required,password"`
	Password2 string `json:"password2" validate:"required"`
	FirstName string `json:"first_name" validate:"required,notblank,max=150"`
	LastName  string `json:"last_name" validate:"required,notblank,max=150"`
}

type ChangePasswordInput struct {
	UserID       uint   `json:"-"`
	OldPassword  string `json:"old_password" validate:"required"`
	NewPassword1 string `json:"new_password1" validate:"required,password"`
	NewPassword2 string `json:"new_password2" validate:"required"`
}

type SuperuserInput struct {
	Username string
	Email    string
	Password string
}

// AuthResult is the body returned by registration and login.
type AuthResult struct {
	Access  string       `json:"access"`
	Refresh string       `json:"refresh"`
	User    *models.User `json:"user"`
}

func NewAuthService(users repository.UserRepository, tokens *TokenService) *AuthService {
	return &AuthService{users: users, tokens: tokens}
}

// Register creates an account and signs it in.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	in.Username = strings.TrimSpace(in.Username)
	in.Email = strings.TrimSpace(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	if in.Password1 != in.Password2 {
		return nil, models.NewFieldError("password2", "The two password fields didn't match.")
	}

	existing, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		return nil, models.NewConflictError("A user is already registered with this e-mail address.")
	}

	hash, err := hashPassword(in.Password1)
	if err != nil {
		return nil, err
	}
	user := &models.User{
		Username:  in.Username,
		Email:     in.Email,
		Password:  hash,
		FirstName: strings.TrimSpace(in.FirstName),
		LastName:  strings.TrimSpace(in.LastName),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return s.signIn(ctx, user.ID)
}

// Login authenticates by email, or by username when identifier has no "@".
func (s *AuthService) Login(ctx context.Context, identifier, password string) (*AuthResult, error) {
	identifier = strings.TrimSpace(identifier)
	if identifier == "" || password == "" {
		return nil, models.NewValidationError("Email and password are required")
	}

	var (
		user *models.User
		err  error
	)
	if strings.Contains(identifier, "@") {
		user, err = s.users.GetByEmail(ctx, identifier)
	} else {
		user, err = s.users.GetByUsername(ctx, identifier)
	}
	if err != nil {
		return nil, err
	}
	if user == nil || !checkPassword(user.Password, password) {
		return nil, ErrBadCredentials
	}
	return s.signIn(ctx, user.ID)
}

func (s *AuthService) signIn(ctx context.Context, userID uint) (*AuthResult, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	pair, err := s.tokens.IssuePair(user)
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return &AuthResult{Access: pair.Access, Refresh: pair.Refresh, User: user}, nil
}

// Logout revokes the access token and, when given, the refresh token.
func (s *AuthService) Logout(ctx context.Context, accessToken, refreshToken string) error {
	if err := s.tokens.Revoke(ctx, accessToken); err != nil {
		return err
	}
	if refreshToken == "" {
		return nil
	}
	return s.tokens.Revoke(ctx, refreshToken)
}

func (s *AuthService) ChangePassword(ctx context.Context, in ChangePasswordInput) error {
	if err := validation.Struct(in); err != nil {
		return err
	}
	if in.NewPassword1 != in.NewPassword2 {
		return models.NewFieldError("new_password2", "The two password fields didn't match.")
	}
	user, err := s.users.GetByID(ctx, in.UserID)
	if err != nil {
		return err
	}
	if !checkPassword(user.Password, in.OldPassword) {
		return models.NewFieldError("old_password", "Your old password was entered incorrectly. Please enter it again.")
	}
	hash, err := hashPassword(in.NewPassword1)
	if err != nil {
		return err
	}
	return s.users.UpdatePassword(ctx, user.ID, hash)
}

// SocialLogin finds the account for an email confirmed by the OAuth provider,
// creating one with an unusable password when none exists. No token is issued.
func (s *AuthService) SocialLogin(ctx context.Context, email string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return nil, models.NewValidationError("Email is required")
	}
	if err := validation.ValidateEmail(email); err != nil {
		return nil, models.NewValidationError(err.Error())
	}

	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return nil, err
	}
	if user != nil {
		return user, nil
	}

	username, err := s.availableUsername(ctx, email)
	if err != nil {
		return nil, err
	}
	user = &models.User{
		Username: username,
		Email:    email,
		Password: unusablePasswordPrefix + uuid.NewString(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}
	return user, nil
}

// availableUsername derives a username from the email's local part, suffixing
// _1, _2, ... until it is free.
func (s *AuthService) availableUsername(ctx context.Context, email string) (string, error) {
	base := usernameStrip.ReplaceAllString(strings.SplitN(email, "@", 2)[0], "")
	if len(base) < 3 {
		base = "user" + base
	}
	if len(base) > 140 {
		base = base[:140]
	}

	candidate := base
	for i := 1; i <= maxUsernameAttempts; i++ {
		existing, err := s.users.GetByUsername(ctx, candidate)
		if err != nil {
			return "", err
		}
		if existing == nil {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s_%d", base, i)
	}
	return "", models.NewConflictError("Could not derive a free username")
}

// EnsureSuperuser creates an admin account, or promotes the account already
// registered under the email. created reports whether a new row was inserted.
func (s *AuthService) EnsureSuperuser(ctx context.Context, in SuperuserInput) (user *models.User, created bool, err error) {
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, false, models.NewValidationError(err.Error())
	}
	existing, err := s.users.GetByEmail(ctx, in.Email)
	if err != nil {
		return nil, false, err
	}
	if existing != nil {
		if !existing.IsAdmin {
			if err := s.users.SetAdmin(ctx, existing.ID, true); err != nil {
				return nil, false, err
			}
			existing.IsAdmin = true
		}
		return existing, false, nil
	}

	if err := validation.ValidateUsername(in.Username); err != nil {
		return nil, false, models.NewValidationError(err.Error())
	}
	if in.Password == "" {
		return nil, false, models.NewValidationError("Password is required")
	}
	hash, err := hashPassword(in.Password)
	if err != nil {
		return nil, false, err
	}
	user = &models.User{Username: in.Username, Email: in.Email, Password: hash, IsAdmin: true}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, false, err
	}
	return user, true, nil
}

func hashPassword(password string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", models.NewInternalError(err)
	}
	return string(hash), nil
}

func checkPassword(hash, password string) bool {
	if hash == "" || strings.HasPrefix(hash, unusablePasswordPrefix) {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
