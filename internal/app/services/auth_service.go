package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"canteen/internal/adapter/store"
	"canteen/internal/app/core"
	"canteen/internal/domain/dto"
	"canteen/internal/domain/models"
	"canteen/internal/xpkg/logger"

	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

type AuthService struct {
	st     *store.Store
	secret []byte
	ttl    time.Duration
	mylog  logger.Logger
	now    func() time.Time
}

func NewAuthService(st *store.Store, secret string, ttl time.Duration, mylog logger.Logger) *AuthService {
	return &AuthService{
		st:     st,
		secret: []byte(secret),
		ttl:    ttl,
		mylog:  mylog,
		now:    time.Now,
	}
}

// Register creates a USER account with a bcrypt-hashed password and signs a
// token for it.
func (a *AuthService) Register(ctx context.Context, req dto.RegisterRequest) (dto.AuthResponse, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.TrimSpace(req.Email)
	if name == "" || email == "" || req.Password == "" {
		return dto.AuthResponse{}, fmt.Errorf("%w: please provide all fields", core.ErrValidation)
	}
	if !emailRe.MatchString(email) {
		return dto.AuthResponse{}, fmt.Errorf("%w: invalid email format", core.ErrValidation)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return dto.AuthResponse{}, fmt.Errorf("hash password: %w", err)
	}

	var user models.User
	err = a.st.Update(func(tx store.Tx) error {
		users, err := store.All[models.User](ctx, tx, store.Users)
		if err != nil {
			return err
		}
		if _, exists := userByEmail(users, email); exists {
			return core.ErrDuplicateEmail
		}
		user = models.User{
			ID:        store.NewID("user"),
			Name:      name,
			Email:     email,
			Password:  string(hash),
			Role:      models.RoleUser,
			CreatedAt: a.now(),
		}
		return store.Append(ctx, tx, store.Users, user.ID, user)
	})
	if err != nil {
		return dto.AuthResponse{}, err
	}

	token, err := a.sign(user)
	if err != nil {
		return dto.AuthResponse{}, err
	}
	a.mylog.Action("user_registered").Info("User registered", "user_id", user.ID)
	return authResponse(token, user), nil
}

// Login verifies credentials. Accounts created by the identity provider have
// no password hash and cannot log in with one.
func (a *AuthService) Login(ctx context.Context, req dto.LoginRequest) (dto.AuthResponse, error) {
	if req.Email == "" || req.Password == "" {
		return dto.AuthResponse{}, fmt.Errorf("%w: please provide email and password", core.ErrValidation)
	}

	var user models.User
	err := a.st.View(func(tx store.Tx) error {
		users, err := store.All[models.User](ctx, tx, store.Users)
		if err != nil {
			return err
		}
		found, ok := userByEmail(users, req.Email)
		if !ok {
			return core.ErrInvalidCredentials
		}
		user = found
		return nil
	})
	if err != nil {
		return dto.AuthResponse{}, err
	}

	if user.Password == "" {
		return dto.AuthResponse{}, core.ErrPasswordlessAccount
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return dto.AuthResponse{}, core.ErrInvalidCredentials
	}

	token, err := a.sign(user)
	if err != nil {
		return dto.AuthResponse{}, err
	}
	return authResponse(token, user), nil
}

// VerifyToken parses a bearer token and re-reads the user from the store so
// role changes take effect immediately, not at token renewal.
func (a *AuthService) VerifyToken(ctx context.Context, tokenString string) (models.User, error) {
	claims := &models.Claims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return a.secret, nil
	})
	if err != nil || !token.Valid {
		return models.User{}, fmt.Errorf("%w: invalid token", core.ErrUnauthorized)
	}

	var user models.User
	err = a.st.View(func(tx store.Tx) error {
		users, err := store.All[models.User](ctx, tx, store.Users)
		if err != nil {
			return err
		}
		found, ok := userByID(users, claims.UserID)
		if !ok {
			return fmt.Errorf("%w: user no longer exists", core.ErrUnauthorized)
		}
		user = found
		return nil
	})
	if err != nil {
		return models.User{}, err
	}
	return user, nil
}

func (a *AuthService) sign(user models.User) (string, error) {
	now := a.now()
	claims := models.Claims{
		UserID: user.ID,
		Role:   user.Role,
		RegisteredClaims: jwt.RegisteredClaims{
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(a.ttl)),
		},
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(a.secret)
	if err != nil {
		return "", fmt.Errorf("sign token: %w", err)
	}
	return signed, nil
}

func authResponse(token string, user models.User) dto.AuthResponse {
	return dto.AuthResponse{
		Success: true,
		Token:   token,
		User:    dto.UserInfo{ID: user.ID, Name: user.Name, Email: user.Email, Role: user.Role},
	}
}
