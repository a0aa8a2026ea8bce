package auth

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"errors"
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/david/voluntrack/internal/db"
	"github.com/david/voluntrack/internal/models"
	"github.com/david/voluntrack/internal/seed"
	"github.com/david/voluntrack/internal/validation"
)

// UsersKey holds the JSON array of every user profile.
const UsersKey = "voluntrack_users"

const tokenTTL = 24 * time.Hour

var (
	ErrUserExists      = errors.New("user already exists")
	ErrInvalidCreds    = errors.New("invalid credentials")
	ErrUserNotFound    = errors.New("user not found")
	ErrInvalidInterest = errors.New("unknown interest category")

	jwtSecretOnce      sync.Once
	jwtSecretRuntime   []byte
	jwtSecretErr       error
	jwtSecretEphemeral bool
)

func jwtSecretFromEnv() ([]byte, error) {
	jwtSecretOnce.Do(func() {
		secret := strings.TrimSpace(os.Getenv("JWT_SECRET"))
		if secret != "" {
			jwtSecretRuntime = []byte(secret)
			return
		}

		buf := make([]byte, 48)
		if _, err := rand.Read(buf); err != nil {
			jwtSecretErr = fmt.Errorf("failed to generate JWT fallback secret: %w", err)
			return
		}

		jwtSecretRuntime = []byte(base64.RawURLEncoding.EncodeToString(buf))
		jwtSecretEphemeral = true
	})

	if jwtSecretErr != nil {
		return nil, jwtSecretErr
	}
	if len(jwtSecretRuntime) == 0 {
		return nil, errors.New("JWT secret unavailable")
	}

	return jwtSecretRuntime, nil
}

type SignupRequest struct {
	Name     string `json:"name" validate:"required,max=100"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Phone    string `json:"phone" validate:"max=30"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type AuthResponse struct {
	Token string             `json:"token"`
	User  models.UserProfile `json:"user"`
}

// ProfilePatch changes only the fields that are set. Email and password are not editable here.
type ProfilePatch struct {
	Name                    *string                         `json:"name" validate:"omitempty,min=1,max=100"`
	Phone                   *string                         `json:"phone" validate:"omitempty,max=30"`
	Interests               *[]models.Category              `json:"interests"`
	Availability            *string                         `json:"availability" validate:"omitempty,max=200"`
	Location                *string                         `json:"location" validate:"omitempty,max=200"`
	NotificationPreferences *models.NotificationPreferences `json:"notificationPreferences"`
}

type Service struct {
	kv     db.KV
	logger *zap.Logger
	cost   int
}

func NewService(kv db.KV, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	if _, err := jwtSecretFromEnv(); err == nil && jwtSecretEphemeral {
		logger.Warn("JWT_SECRET is not set; using ephemeral in-memory fallback secret")
	}
	return &Service{kv: kv, logger: logger, cost: bcrypt.DefaultCost}
}

// Seed writes the bundled accounts on first run. Accounts whose password is
// blank are stored without a hash and cannot log in.
func (s *Service) Seed(ctx context.Context, users []seed.User) error {
	if _, ok, err := s.kv.Get(ctx, UsersKey); err != nil || ok {
		return err
	}

	profiles := make([]models.UserProfile, 0, len(users))
	for _, u := range users {
		p := u.UserProfile
		p.Email = normalizeEmail(p.Email)
		if u.Password != "" {
			hash, err := bcrypt.GenerateFromPassword([]byte(u.Password), s.cost)
			if err != nil {
				return fmt.Errorf("hashing failed: %w", err)
			}
			p.PasswordHash = string(hash)
		} else {
			s.logger.Warn("seed user has no password; login disabled", zap.String("email", p.Email))
		}
		profiles = append(profiles, withDefaults(p))
	}

	seeded, err := db.SeedJSON(ctx, s.kv, UsersKey, profiles)
	if seeded {
		s.logger.Info("seeded users", zap.Int("count", len(profiles)))
	}
	return err
}

func (s *Service) Signup(ctx context.Context, req SignupRequest) (*AuthResponse, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.cost)
	if err != nil {
		return nil, fmt.Errorf("hashing failed: %w", err)
	}

	user := withDefaults(models.UserProfile{
		ID:           "user-" + uuid.NewString(),
		Name:         req.Name,
		Email:        req.Email,
		Phone:        strings.TrimSpace(req.Phone),
		PasswordHash: string(hash),
		Interests:    []models.Category{models.CategoryCommunity, models.CategoryEnvironment},
		NotificationPreferences: models.NotificationPreferences{
			Email: models.EmailPreferences{NewOpportunities: true, EventReminders: true},
			Phone: models.PhonePreferences{EventReminders: false},
		},
	})

	err = db.UpdateJSON(ctx, s.kv, UsersKey, func(users *[]models.UserProfile, _ bool) error {
		for _, u := range *users {
			if u.Email == user.Email {
				return ErrUserExists
			}
		}
		*users = append(*users, user)
		return nil
	})
	if err != nil {
		return nil, err
	}

	token, err := generateToken(user.ID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("user signed up", zap.String("user_id", user.ID))
	return &AuthResponse{Token: token, User: user.Public()}, nil
}

func (s *Service) Login(ctx context.Context, req LoginRequest) (*AuthResponse, error) {
	email := normalizeEmail(req.Email)
	users, err := s.users(ctx)
	if err != nil {
		return nil, err
	}

	var user *models.UserProfile
	for i := range users {
		if users[i].Email == email {
			user = &users[i]
			break
		}
	}
	if user == nil || user.PasswordHash == "" {
		return nil, ErrInvalidCreds
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCreds
	}

	token, err := generateToken(user.ID)
	if err != nil {
		return nil, err
	}
	return &AuthResponse{Token: token, User: user.Public()}, nil
}

func generateToken(userID string) (string, error) {
	secretKey, err := jwtSecretFromEnv()
	if err != nil {
		return "", err
	}

	now := time.Now()
	claims := jwt.MapClaims{
		"sub": userID,
		"iat": now.Unix(),
		"exp": now.Add(tokenTTL).Unix(),
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(secretKey)
}

// ParseToken validates an HS256 token and returns its subject.
func ParseToken(tokenString string) (string, error) {
	secretKey, err := jwtSecretFromEnv()
	if err != nil {
		return "", err
	}

	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secretKey, nil
	})
	if err != nil {
		return "", err
	}

	sub, err := token.Claims.GetSubject()
	if err != nil {
		return "", err
	}
	if sub == "" {
		return "", errors.New("token has no subject")
	}
	return sub, nil
}

func (s *Service) Profile(ctx context.Context, userID string) (models.UserProfile, error) {
	users, err := s.users(ctx)
	if err != nil {
		return models.UserProfile{}, err
	}
	for _, u := range users {
		if u.ID == userID {
			return u.Public(), nil
		}
	}
	return models.UserProfile{}, ErrUserNotFound
}

func (s *Service) UpdateProfile(ctx context.Context, userID string, patch ProfilePatch) (models.UserProfile, error) {
	if err := validation.Struct(patch); err != nil {
		return models.UserProfile{}, err
	}
	if patch.Interests != nil {
		for _, c := range *patch.Interests {
			if !c.Valid() {
				return models.UserProfile{}, fmt.Errorf("%w: %q", ErrInvalidInterest, c)
			}
		}
	}

	return s.updateUser(ctx, userID, func(u *models.UserProfile) error {
		if patch.Name != nil {
			u.Name = strings.TrimSpace(*patch.Name)
		}
		if patch.Phone != nil {
			u.Phone = strings.TrimSpace(*patch.Phone)
		}
		if patch.Interests != nil {
			u.Interests = append([]models.Category{}, *patch.Interests...)
		}
		if patch.Availability != nil {
			u.Availability = strings.TrimSpace(*patch.Availability)
		}
		if patch.Location != nil {
			u.Location = strings.TrimSpace(*patch.Location)
		}
		if patch.NotificationPreferences != nil {
			u.NotificationPreferences = *patch.NotificationPreferences
		}
		return nil
	})
}

// Saved Opportunities

// SaveOpportunity bookmarks oppID. Saving an already saved id is a no-op.
func (s *Service) SaveOpportunity(ctx context.Context, userID, oppID string) (models.UserProfile, error) {
	return s.updateUser(ctx, userID, func(u *models.UserProfile) error {
		for _, id := range u.SavedOpportunityIDs {
			if id == oppID {
				return nil
			}
		}
		u.SavedOpportunityIDs = append(u.SavedOpportunityIDs, oppID)
		return nil
	})
}

func (s *Service) UnsaveOpportunity(ctx context.Context, userID, oppID string) (models.UserProfile, error) {
	return s.updateUser(ctx, userID, func(u *models.UserProfile) error {
		kept := u.SavedOpportunityIDs[:0]
		for _, id := range u.SavedOpportunityIDs {
			if id != oppID {
				kept = append(kept, id)
			}
		}
		u.SavedOpportunityIDs = kept
		return nil
	})
}

func (s *Service) SavedOpportunityIDs(ctx context.Context, userID string) ([]string, error) {
	u, err := s.Profile(ctx, userID)
	if err != nil {
		return nil, err
	}
	return u.SavedOpportunityIDs, nil
}

// AddImpactStory appends story to the user's own story list.
func (s *Service) AddImpactStory(ctx context.Context, userID string, story models.ImpactStory) error {
	_, err := s.updateUser(ctx, userID, func(u *models.UserProfile) error {
		u.ImpactStories = append(u.ImpactStories, story)
		return nil
	})
	return err
}

func (s *Service) users(ctx context.Context) ([]models.UserProfile, error) {
	var users []models.UserProfile
	if _, err := db.GetJSON(ctx, s.kv, UsersKey, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *Service) updateUser(ctx context.Context, userID string, fn func(*models.UserProfile) error) (models.UserProfile, error) {
	var updated models.UserProfile
	err := db.UpdateJSON(ctx, s.kv, UsersKey, func(users *[]models.UserProfile, _ bool) error {
		for i := range *users {
			u := &(*users)[i]
			if u.ID != userID {
				continue
			}
			if err := fn(u); err != nil {
				return err
			}
			*u = withDefaults(*u)
			updated = *u
			return nil
		}
		return ErrUserNotFound
	})
	if err != nil {
		return models.UserProfile{}, err
	}
	return updated.Public(), nil
}

func withDefaults(u models.UserProfile) models.UserProfile {
	if u.Interests == nil {
		u.Interests = []models.Category{}
	}
	if u.SavedOpportunityIDs == nil {
		u.SavedOpportunityIDs = []string{}
	}
	if u.ImpactStories == nil {
		u.ImpactStories = []models.ImpactStory{}
	}
	return u
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
