package services

import (
	"context"
	"errors"
	"net/mail"
	"strings"
	"time"
	"unicode/utf8"

	"community-backend/internal/apperr"
	"community-backend/internal/auth"
	"community-backend/internal/models"
	"community-backend/internal/repository"

	"github.com/gofiber/fiber/v2/log"
	"go.mongodb.org/mongo-driver/v2/bson"
	"golang.org/x/crypto/bcrypt"
)

const MinPasswordLen = 8

// AccountService is the local credential store and token issuer.
type AccountService struct {
	Users         repository.UserRepository
	Notifications *NotificationService
	Tokens        *auth.HMAC
	Cost          int // bcrypt cost; zero means bcrypt.DefaultCost
	Now           func() time.Time
}

type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

func (s *AccountService) Register(ctx context.Context, in RegisterInput) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(in.Email))
	if _, err := mail.ParseAddress(email); err != nil || !strings.Contains(email, "@") {
		return nil, apperr.Invalid("a valid email is required")
	}
	if utf8.RuneCountInString(in.Password) < MinPasswordLen {
		return nil, apperr.Newf(apperr.KindValidation, "password must be at least %d characters", MinPasswordLen)
	}
	name := strings.TrimSpace(in.DisplayName)
	if name == "" {
		name = email[:strings.Index(email, "@")]
	}

	cost := s.Cost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), cost)
	if err != nil {
		return nil, apperr.Internal("hash password", err)
	}

	u := &models.User{
		ID:           bson.NewObjectID(),
		Email:        email,
		DisplayName:  name,
		PasswordHash: string(hash),
		CreatedAt:    clock(s.Now).now(),
	}
	if err := s.Users.Insert(ctx, u); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, apperr.Conflict("email already registered")
		}
		return nil, apperr.Internal("insert user", err)
	}

	admins, err := s.Users.AdminIDs(ctx)
	if err != nil {
		log.Warnf("load admins for new_user notification: %v", err)
		return u, nil
	}
	if err := s.Notifications.NotifyMany(ctx, admins, models.NotiNewUser, models.NotiParams{
		ActorName:  name,
		FromUserID: &u.ID,
	}); err != nil {
		log.Warnf("notify admins of new user: %v", err)
	}
	return u, nil
}

// Login checks credentials and issues a bearer token.
func (s *AccountService) Login(ctx context.Context, email, password string) (string, *models.User, error) {
	u, err := s.Users.FindByEmail(ctx, email)
	if errors.Is(err, repository.ErrNotFound) {
		return "", nil, apperr.Unauthenticated("invalid email or password")
	}
	if err != nil {
		return "", nil, apperr.Internal("find user", err)
	}
	if u.PasswordHash == "" || bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return "", nil, apperr.Unauthenticated("invalid email or password")
	}
	tok, err := s.Tokens.Issue(u.ID.Hex(), u.IsAdmin)
	if err != nil {
		return "", nil, apperr.Internal("issue token", err)
	}
	return tok, u, nil
}

func (s *AccountService) Me(ctx context.Context, userID bson.ObjectID) (*models.User, error) {
	u, err := s.Users.FindByID(ctx, userID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, apperr.NotFound("user not found")
	}
	if err != nil {
		return nil, apperr.Internal("find user", err)
	}
	return u, nil
}
