package services

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/dmitrijs2005/huntplanur/internal/common"
	"github.com/dmitrijs2005/huntplanur/internal/dbx"
	"github.com/dmitrijs2005/huntplanur/internal/logging"
	"github.com/dmitrijs2005/huntplanur/internal/server/auth"
	"github.com/dmitrijs2005/huntplanur/internal/server/config"
	"github.com/dmitrijs2005/huntplanur/internal/server/models"
	"github.com/dmitrijs2005/huntplanur/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/huntplanur/internal/server/repositories/users"
	"github.com/google/uuid"
)

// IDTokenVerifier checks a federated ID token.
type IDTokenVerifier interface {
	Verify(ctx context.Context, idToken string) (*auth.GoogleIdentity, error)
}

// UserService is the identity store: registration, local and Google
// login, identity tokens and profile edits.
type UserService struct {
	deps
	hasher    *auth.Hasher
	google    IDTokenVerifier
	jwtSecret []byte
	tokenTTL  time.Duration

	dummyHash func() string
}

func NewUserService(tx dbx.TxRunner, rm repomanager.RepositoryManager, hasher *auth.Hasher, google IDTokenVerifier,
	cfg *config.Config, log logging.Logger) *UserService {
	s := &UserService{
		deps:      newDeps(tx, rm, nil, log),
		hasher:    hasher,
		google:    google,
		jwtSecret: []byte(cfg.SecretKey),
		tokenTTL:  cfg.TokenValidityDuration,
	}
	s.dummyHash = sync.OnceValue(func() string {
		h, _ := hasher.Hash("not-a-real-password")
		return h
	})
	return s
}

// Register creates a local account.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*models.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" || email == "" || password == "" {
		return nil, fmt.Errorf("%w: all fields are required", common.ErrorValidation)
	}
	if len([]rune(username)) < MinNameLen {
		return nil, fmt.Errorf("%w: username must be at least %d characters", common.ErrorTooShort, MinNameLen)
	}
	if len(password) < MinPasswordLen {
		return nil, fmt.Errorf("%w: password must be at least %d characters", common.ErrorTooShort, MinPasswordLen)
	}
	if len(password) > MaxPasswordLen {
		return nil, fmt.Errorf("%w: password must be at most %d bytes", common.ErrorValidation, MaxPasswordLen)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, fmt.Errorf("%w: invalid email address", common.ErrorValidation)
	}

	hash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	var user *models.User
	err = s.tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.rm.Users(tx)
		taken, err := repo.UsernameTaken(ctx, username)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: username already exists", common.ErrorAlreadyExists)
		}
		if _, err := repo.GetByEmail(ctx, email); err == nil {
			return fmt.Errorf("%w: email already registered", common.ErrorAlreadyExists)
		} else if !errors.Is(err, common.ErrorNotFound) {
			return err
		}

		user, err = repo.Create(ctx, &models.User{
			ID:           uuid.NewString(),
			UserName:     username,
			Email:        email,
			PasswordHash: hash,
			Provider:     models.ProviderLocal,
		})
		return err
	})
	if err != nil {
		return nil, err
	}
	s.log.Info(ctx, "user registered", "user", user.ID)
	return user, nil
}

// Login checks a password against the account matching login, which is
// either the username or the email address.
func (s *UserService) Login(ctx context.Context, login, password string) (*models.User, error) {
	login = strings.TrimSpace(login)
	if login == "" || password == "" {
		return nil, fmt.Errorf("%w: username and password required", common.ErrorValidation)
	}

	user, err := s.rm.Users(s.tx.Conn()).GetByLogin(ctx, login)
	if errors.Is(err, common.ErrorNotFound) {
		// Same cost as a real check so timing does not reveal the account.
		_, _ = s.hasher.Verify(s.dummyHash(), password)
		return nil, common.ErrorInvalidCredentials
	}
	if err != nil {
		return nil, err
	}
	if !user.HasPassword() {
		return nil, common.ErrorInvalidCredentials
	}
	ok, err := s.hasher.Verify(user.PasswordHash, password)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, common.ErrorInvalidCredentials
	}

	return s.touch(ctx, user)
}

// GoogleLogin signs in with a Google ID token. A known Google account
// logs straight in; otherwise a verified email links the existing local
// account, and failing that a federated-only account is created with a
// handle derived from the email.
func (s *UserService) GoogleLogin(ctx context.Context, idToken string) (*models.User, error) {
	if s.google == nil {
		return nil, fmt.Errorf("%w: google login is not configured", common.ErrInvalidToken)
	}
	gid, err := s.google.Verify(ctx, idToken)
	if err != nil {
		return nil, err
	}

	var user *models.User
	err = s.tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.rm.Users(tx)

		u, err := repo.GetByGoogleID(ctx, gid.Subject)
		if err == nil {
			user = u
			return nil
		}
		if !errors.Is(err, common.ErrorNotFound) {
			return err
		}

		u, err = repo.GetByEmail(ctx, gid.Email)
		switch {
		case err == nil:
			if !gid.EmailVerified || u.GoogleID != "" {
				return common.ErrorInvalidCredentials
			}
			if err := repo.LinkGoogle(ctx, u.ID, gid.Subject); err != nil {
				return err
			}
			u.GoogleID = gid.Subject
			user = u
			return nil
		case !errors.Is(err, common.ErrorNotFound):
			return err
		}

		handle, err := uniqueHandle(ctx, repo, gid.Email)
		if err != nil {
			return err
		}
		user, err = repo.Create(ctx, &models.User{
			ID:       uuid.NewString(),
			UserName: handle,
			Email:    gid.Email,
			GoogleID: gid.Subject,
			Provider: models.ProviderGoogle,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	return s.touch(ctx, user)
}

func (s *UserService) touch(ctx context.Context, user *models.User) (*models.User, error) {
	now := s.now()
	if err := s.rm.Users(s.tx.Conn()).TouchLastLogin(ctx, user.ID, now); err != nil {
		return nil, err
	}
	user.LastLoginAt = &now
	return user, nil
}

// uniqueHandle derives a free username from the local part of email.
func uniqueHandle(ctx context.Context, repo users.Repository, email string) (string, error) {
	local, _, _ := strings.Cut(email, "@")
	base := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_' || r == '.' || r == '-' {
			return r
		}
		return -1
	}, local)
	if len([]rune(base)) < MinNameLen {
		base = "user" + base
	}

	candidate := base
	for i := 1; i <= 100; i++ {
		taken, err := repo.UsernameTaken(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s%d", base, i)
	}
	suffix, err := common.MakeRandHexString(3)
	if err != nil {
		return "", err
	}
	return base + "_" + suffix, nil
}

// Profile returns the account.
func (s *UserService) Profile(ctx context.Context, userID string) (*models.User, error) {
	return s.rm.Users(s.tx.Conn()).GetByID(ctx, userID)
}

// UpdateUsername renames the account. The new handle must be free.
func (s *UserService) UpdateUsername(ctx context.Context, userID, username string) (*models.User, error) {
	username = strings.TrimSpace(username)
	if len([]rune(username)) < MinNameLen {
		return nil, fmt.Errorf("%w: username must be at least %d characters", common.ErrorTooShort, MinNameLen)
	}

	var user *models.User
	err := s.tx.WithTx(ctx, func(ctx context.Context, tx dbx.DBTX) error {
		repo := s.rm.Users(tx)
		var err error
		user, err = repo.GetByID(ctx, userID)
		if err != nil {
			return err
		}
		if user.UserName == username {
			return nil
		}
		taken, err := repo.UsernameTaken(ctx, username)
		if err != nil {
			return err
		}
		if taken {
			return fmt.Errorf("%w: username already taken", common.ErrorAlreadyExists)
		}
		if err := repo.UpdateUsername(ctx, userID, username); err != nil {
			return err
		}
		user.UserName = username
		return nil
	})
	if err != nil {
		return nil, err
	}
	return user, nil
}

// IssueToken signs an identity token for the user and/or roster row.
func (s *UserService) IssueToken(userID, participantID string) (string, error) {
	return auth.GenerateToken(userID, participantID, s.jwtSecret, s.tokenTTL)
}

// Authenticate validates a token issued by IssueToken.
func (s *UserService) Authenticate(token string) (*auth.Claims, error) {
	return auth.ParseToken(token, s.jwtSecret)
}

// TokenTTL is the lifetime of issued tokens.
func (s *UserService) TokenTTL() time.Duration {
	return s.tokenTTL
}
