package dashboard

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"github.com/cirodil/tenhens/internal/store"
)

var (
	ErrBadCredentials = errors.New("invalid username or password")
	ErrBadAnswer      = errors.New("wrong security answer")
	ErrUserExists     = errors.New("user already exists")
)

// Auth implements dashboard account registration, login and password reset
// via a security question.
type Auth struct {
	repo store.Repo
}

func NewAuth(repo store.Repo) *Auth {
	return &Auth{repo: repo}
}

// Register creates a dashboard account bound to a telegram ID. The security
// answer is normalized (trimmed, lowercased) before hashing so the reset
// check is not case-sensitive.
func (a *Auth) Register(ctx context.Context, username, password string, telegramID int64, question, answer string) error {
	username = strings.TrimSpace(username)
	if username == "" || password == "" || question == "" || answer == "" {
		return ErrBadCredentials
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	answerHash, err := bcrypt.GenerateFromPassword([]byte(normalizeAnswer(answer)), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash answer: %w", err)
	}

	err = a.repo.CreateDashboardUser(ctx, &store.DashboardUser{
		Username:           username,
		TelegramID:         telegramID,
		PasswordHash:       string(passHash),
		SecurityQuestion:   question,
		SecurityAnswerHash: string(answerHash),
	})
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			return ErrUserExists
		}
		return err
	}
	return nil
}

// Login verifies credentials and returns the account.
func (a *Auth) Login(ctx context.Context, username, password string) (*store.DashboardUser, error) {
	u, err := a.repo.GetDashboardUser(ctx, strings.TrimSpace(username))
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrBadCredentials
	}
	if err != nil {
		return nil, err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)) != nil {
		return nil, ErrBadCredentials
	}
	return u, nil
}

// SecurityQuestion returns the question shown on the reset form.
func (a *Auth) SecurityQuestion(ctx context.Context, username string) (string, error) {
	u, err := a.repo.GetDashboardUser(ctx, strings.TrimSpace(username))
	if err != nil {
		return "", err
	}
	return u.SecurityQuestion, nil
}

// ResetPassword sets a new password if the security answer matches.
func (a *Auth) ResetPassword(ctx context.Context, username, answer, newPassword string) error {
	u, err := a.repo.GetDashboardUser(ctx, strings.TrimSpace(username))
	if errors.Is(err, store.ErrNotFound) {
		return ErrBadAnswer
	}
	if err != nil {
		return err
	}
	if bcrypt.CompareHashAndPassword([]byte(u.SecurityAnswerHash), []byte(normalizeAnswer(answer))) != nil {
		return ErrBadAnswer
	}
	if newPassword == "" {
		return ErrBadCredentials
	}

	passHash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return a.repo.SetDashboardPassword(ctx, u.Username, string(passHash))
}

func normalizeAnswer(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
