package identity

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"
	"strings"

	"github.com/omarelshorbagy/Project-Software-Engineering/internal/storage"
	"github.com/omarelshorbagy/Project-Software-Engineering/pkg/sqlutil"
	"go.uber.org/fx"
	"golang.org/x/crypto/bcrypt"
)

type IdentityService struct {
	queries *storage.Queries
	db      *sql.DB
	token   *TokenService
	logger  *slog.Logger
}

type LoginResult struct {
	Token    string `json:"token"`
	Username string `json:"username"`
}

// Register creates a user with a bcrypt-hashed password. Email is
// normalized to lower case before the uniqueness check.
func (s *IdentityService) Register(ctx context.Context, username, email, password string) error {
	if username == "" || email == "" || password == "" {
		return ErrEmptyField
	}
	email = strings.ToLower(strings.TrimSpace(email))

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}

	return sqlutil.WithTransaction(s.db, func(q *storage.Queries) error {
		if _, err := q.GetUserByEmail(ctx, email); err == nil {
			return ErrUserAlreadyExist
		} else if !errors.Is(err, sql.ErrNoRows) {
			return err
		}
		if _, err := q.GetUserByUsername(ctx, username); err == nil {
			return ErrUserAlreadyExist
		} else if !errors.Is(err, sql.ErrNoRows) {
			return err
		}

		_, err := q.NewUser(ctx, storage.NewUserParams{
			Username: username,
			Email:    email,
			Password: string(hashed),
		})
		return err
	})
}

// Login verifies the credentials and issues an access token. The username
// rides along in the response, the websocket client binds it at join time.
func (s *IdentityService) Login(ctx context.Context, email, password string) (*LoginResult, error) {
	if email == "" || password == "" {
		return nil, ErrEmptyField
	}
	email = strings.ToLower(strings.TrimSpace(email))

	user, err := s.queries.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	token, err := s.token.CreateAccessToken(user.ID.String(), user.Username)
	if err != nil {
		return nil, err
	}

	return &LoginResult{Token: token, Username: user.Username}, nil
}

// TokenIdentity resolves the display name bound to an access token.
func (s *IdentityService) TokenIdentity(ctx context.Context, insecureToken string) (string, error) {
	return s.token.VerifyToken(insecureToken)
}

type NewIdentityServiceParams struct {
	fx.In

	Queries *storage.Queries
	DB      *sql.DB
	Token   *TokenService
	Logger  *slog.Logger
}

func NewIdentityService(params NewIdentityServiceParams) *IdentityService {
	return &IdentityService{
		queries: params.Queries,
		db:      params.DB,
		token:   params.Token,
		logger:  params.Logger,
	}
}
