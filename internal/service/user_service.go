package service

import (
	"context"
	"crypto/subtle"
	"errors"
	"fmt"
	"strings"
	"time"

	"electro-shop/internal/config"
	"electro-shop/internal/domain"
	"electro-shop/internal/repository"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

const (
	// BcryptCost is the cost factor for bcrypt hashing
	BcryptCost = 10

	// Default token lifetimes, used when configuration leaves them unset
	AccessTokenExpiration  = 15 * time.Minute
	RefreshTokenExpiration = 7 * 24 * time.Hour

	tempPasswordLength = 12
)

var (
	ErrInvalidCredentials = errors.New("invalid username, email or password")
	ErrInvalidToken       = errors.New("invalid token")
	ErrTokenExpired       = errors.New("token has expired")
)

// UserService defines the interface for user business logic
type UserService interface {
	Register(ctx context.Context, in *domain.UserInput) (*domain.User, error)
	Login(ctx context.Context, usernameOrEmail, password string) (accessToken, refreshToken string, user *domain.User, err error)
	Logout(ctx context.Context, refreshToken string) error
	RefreshToken(ctx context.Context, refreshToken string) (newAccessToken string, err error)
	ValidateToken(tokenString string) (*Claims, error)

	ListUsers(ctx context.Context) ([]*domain.User, error)
	GetUser(ctx context.Context, userNumber int64) (*domain.User, error)
	FindUser(ctx context.Context, userName, email string) (*domain.User, error)
	UpdateUser(ctx context.Context, userNumber int64, in *domain.UserInput) (*domain.User, error)
	DeleteUser(ctx context.Context, userNumber int64) error
	UpdateRole(ctx context.Context, userNumber int64, role domain.Role) (*domain.User, error)

	ForgotPassword(ctx context.Context, email, phoneNumber, userID string) (tempPassword string, err error)
	ChangePassword(ctx context.Context, userNumber int64, newPassword string, currentPassword *string) error
}

// Claims represents the JWT claims
type Claims struct {
	UserNumber int64  `json:"user_number"`
	Role       string `json:"role"`
	jwt.RegisteredClaims
}

type userService struct {
	userRepo         repository.UserRepository
	refreshTokenRepo repository.RefreshTokenRepository
	jwtSecret        string
	accessTTL        time.Duration
	refreshTTL       time.Duration
}

// NewUserService creates a new instance of UserService
func NewUserService(
	userRepo repository.UserRepository,
	refreshTokenRepo repository.RefreshTokenRepository,
	jwtCfg config.JWTConfig,
) UserService {
	s := &userService{
		userRepo:         userRepo,
		refreshTokenRepo: refreshTokenRepo,
		jwtSecret:        jwtCfg.Secret,
		accessTTL:        AccessTokenExpiration,
		refreshTTL:       RefreshTokenExpiration,
	}
	if jwtCfg.AccessExpiry > 0 {
		s.accessTTL = time.Duration(jwtCfg.AccessExpiry) * time.Minute
	}
	if jwtCfg.RefreshExpiry > 0 {
		s.refreshTTL = time.Duration(jwtCfg.RefreshExpiry) * 24 * time.Hour
	}
	return s
}

// Register creates a new account; the password is stored as a bcrypt hash
func (s *userService) Register(ctx context.Context, in *domain.UserInput) (*domain.User, error) {
	if in.UserName == nil || strings.TrimSpace(*in.UserName) == "" {
		return nil, invalidf("userName is required")
	}
	if in.Email == nil || strings.TrimSpace(*in.Email) == "" {
		return nil, invalidf("email is required")
	}
	if in.Password == nil || *in.Password == "" {
		return nil, invalidf("password is required")
	}

	hashedPassword, err := hashPassword(*in.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.Create(ctx, in, hashedPassword)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// Login authenticates by user name or email and returns JWT tokens. Rows
// still holding a plaintext password are accepted once and re-hashed.
func (s *userService) Login(ctx context.Context, usernameOrEmail, password string) (accessToken, refreshToken string, user *domain.User, err error) {
	user, err = s.userRepo.FindByLogin(ctx, usernameOrEmail)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", "", nil, ErrInvalidCredentials
		}
		return "", "", nil, fmt.Errorf("failed to find user: %w", err)
	}

	legacy, ok := checkPassword(user.PasswordHash, password)
	if !ok {
		return "", "", nil, ErrInvalidCredentials
	}

	if legacy {
		hashed, err := hashPassword(password)
		if err != nil {
			return "", "", nil, fmt.Errorf("failed to hash password: %w", err)
		}
		if err := s.userRepo.UpdatePasswordHash(ctx, user.UserNumber, hashed); err != nil {
			return "", "", nil, fmt.Errorf("failed to upgrade password hash: %w", err)
		}
		user.PasswordHash = hashed
	}

	accessToken, err = s.generateAccessToken(user)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to generate access token: %w", err)
	}

	refreshToken, err = s.generateRefreshToken(ctx, user)
	if err != nil {
		return "", "", nil, fmt.Errorf("failed to generate refresh token: %w", err)
	}

	return accessToken, refreshToken, user, nil
}

// Logout invalidates the refresh token
func (s *userService) Logout(ctx context.Context, refreshToken string) error {
	if err := s.refreshTokenRepo.Revoke(ctx, refreshToken); err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			// Token doesn't exist, consider it already logged out
			return nil
		}
		return fmt.Errorf("failed to revoke refresh token: %w", err)
	}
	return nil
}

// RefreshToken generates a new access token using a valid refresh token
func (s *userService) RefreshToken(ctx context.Context, refreshTokenString string) (newAccessToken string, err error) {
	refreshToken, err := s.refreshTokenRepo.FindByToken(ctx, refreshTokenString)
	if err != nil {
		if errors.Is(err, repository.ErrRefreshTokenNotFound) || errors.Is(err, repository.ErrRefreshTokenRevoked) {
			return "", ErrInvalidToken
		}
		return "", fmt.Errorf("failed to find refresh token: %w", err)
	}

	if time.Now().After(refreshToken.ExpiresAt) {
		return "", ErrTokenExpired
	}

	user, err := s.userRepo.FindByID(ctx, refreshToken.UserNumber)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return "", ErrInvalidToken
		}
		return "", fmt.Errorf("failed to find user: %w", err)
	}

	newAccessToken, err = s.generateAccessToken(user)
	if err != nil {
		return "", fmt.Errorf("failed to generate access token: %w", err)
	}

	return newAccessToken, nil
}

// ValidateToken validates a JWT token and returns the claims
func (s *userService) ValidateToken(tokenString string) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return []byte(s.jwtSecret), nil
	})
	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, ErrInvalidToken
	}

	return claims, nil
}

func (s *userService) ListUsers(ctx context.Context) ([]*domain.User, error) {
	return s.userRepo.List(ctx)
}

func (s *userService) GetUser(ctx context.Context, userNumber int64) (*domain.User, error) {
	return s.userRepo.FindByID(ctx, userNumber)
}

// FindUser looks a user up by user name, or by email when no user name is
// given.
func (s *userService) FindUser(ctx context.Context, userName, email string) (*domain.User, error) {
	switch {
	case userName != "":
		return s.userRepo.FindByUserName(ctx, userName)
	case email != "":
		return s.userRepo.FindByEmail(ctx, email)
	default:
		return nil, invalidf("username or email is required")
	}
}

// UpdateUser applies profile fields only; passwords change through
// ChangePassword.
func (s *userService) UpdateUser(ctx context.Context, userNumber int64, in *domain.UserInput) (*domain.User, error) {
	profile := *in
	profile.Password = nil
	return s.userRepo.Update(ctx, userNumber, &profile)
}

func (s *userService) DeleteUser(ctx context.Context, userNumber int64) error {
	return s.userRepo.Delete(ctx, userNumber)
}

func (s *userService) UpdateRole(ctx context.Context, userNumber int64, role domain.Role) (*domain.User, error) {
	if !role.Valid() {
		return nil, invalidf("userRole must be one of %s, %s", domain.RoleUser, domain.RoleAdmin)
	}
	return s.userRepo.UpdateRole(ctx, userNumber, role)
}

// ForgotPassword replaces the password of the account matching all three
// identity fields with a random one and returns it. Open sessions end.
func (s *userService) ForgotPassword(ctx context.Context, email, phoneNumber, userID string) (string, error) {
	if email == "" || phoneNumber == "" || userID == "" {
		return "", invalidf("email, phoneNumber and userID are required")
	}

	user, err := s.userRepo.FindForRecovery(ctx, email, phoneNumber, userID)
	if err != nil {
		return "", err
	}

	tempPassword := strings.ReplaceAll(uuid.NewString(), "-", "")[:tempPasswordLength]
	if err := s.setPassword(ctx, user.UserNumber, tempPassword); err != nil {
		return "", err
	}

	return tempPassword, nil
}

// ChangePassword stores a new hash. When currentPassword is given it must
// match the stored one.
func (s *userService) ChangePassword(ctx context.Context, userNumber int64, newPassword string, currentPassword *string) error {
	if newPassword == "" {
		return invalidf("password is required")
	}

	if currentPassword != nil {
		user, err := s.userRepo.FindByID(ctx, userNumber)
		if err != nil {
			return err
		}
		if _, ok := checkPassword(user.PasswordHash, *currentPassword); !ok {
			return ErrInvalidCredentials
		}
	}

	return s.setPassword(ctx, userNumber, newPassword)
}

func (s *userService) setPassword(ctx context.Context, userNumber int64, password string) error {
	hashed, err := hashPassword(password)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if err := s.userRepo.UpdatePasswordHash(ctx, userNumber, hashed); err != nil {
		return err
	}

	if _, err := s.refreshTokenRepo.RevokeAllForUser(ctx, userNumber); err != nil {
		return fmt.Errorf("failed to end sessions: %w", err)
	}
	return nil
}

// hashPassword hashes a password using bcrypt with cost factor 10
func hashPassword(password string) (string, error) {
	hashedBytes, err := bcrypt.GenerateFromPassword([]byte(password), BcryptCost)
	if err != nil {
		return "", err
	}
	return string(hashedBytes), nil
}

// checkPassword verifies password against the stored value. legacy is true
// when the stored value is not a bcrypt hash but matched as plaintext.
func checkPassword(stored, password string) (legacy, ok bool) {
	if _, err := bcrypt.Cost([]byte(stored)); err == nil {
		return false, bcrypt.CompareHashAndPassword([]byte(stored), []byte(password)) == nil
	}
	if stored == "" {
		return false, false
	}
	return true, subtle.ConstantTimeCompare([]byte(stored), []byte(password)) == 1
}

// generateAccessToken generates a JWT access token with user number and role claims
func (s *userService) generateAccessToken(user *domain.User) (string, error) {
	now := time.Now()
	claims := &Claims{
		UserNumber: user.UserNumber,
		Role:       string(user.UserRole),
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(s.accessTTL)),
			IssuedAt:  jwt.NewNumericDate(now),
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.jwtSecret))
}

// generateRefreshToken opens a new session after dropping the user's dead
// ones.
func (s *userService) generateRefreshToken(ctx context.Context, user *domain.User) (string, error) {
	now := time.Now()
	if _, err := s.refreshTokenRepo.PruneForUser(ctx, user.UserNumber, now); err != nil {
		return "", err
	}

	tokenString := uuid.New().String()
	refreshToken := &domain.RefreshToken{
		ID:         uuid.New(),
		UserNumber: user.UserNumber,
		Token:      tokenString,
		ExpiresAt:  now.Add(s.refreshTTL),
		CreatedAt:  now,
	}

	if err := s.refreshTokenRepo.Create(ctx, refreshToken); err != nil {
		return "", err
	}

	return tokenString, nil
}
