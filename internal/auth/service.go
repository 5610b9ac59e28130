package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/hitoshi/volunteerhub/internal/clock"
	"github.com/hitoshi/volunteerhub/internal/model"
	"github.com/hitoshi/volunteerhub/internal/repository"
	"github.com/hitoshi/volunteerhub/internal/security"
	"github.com/hitoshi/volunteerhub/internal/validation"
)

// RegisterInput はアカウント登録リクエスト。
type RegisterInput struct {
	AccountType string   `json:"account_type" validate:"required,oneof=organization volunteer"`
	Name        string   `json:"name" validate:"required,max=255"`
	Email       string   `json:"email" validate:"required,email,max=255"`
	Password    string   `json:"password" validate:"required,min=8,max=72"`
	Description string   `json:"description" validate:"max=2000"`
	Interests   []string `json:"interests" validate:"max=20,dive,required,max=64"`
}

// LoginInput はログインリクエスト。
type LoginInput struct {
	AccountType string `json:"account_type" validate:"required,oneof=organization volunteer"`
	Email       string `json:"email" validate:"required,email"`
	Password    string `json:"password" validate:"required"`
}

// Session はログイン成功時に返すトークンとアカウント情報。
type Session struct {
	Token     string            `json:"token"`
	ExpiresAt time.Time         `json:"expires_at"`
	Account   model.AccountView `json:"account"`
}

// ServiceConfig は認証サービスの設定。
type ServiceConfig struct {
	BcryptCost int
}

// Service はアカウント登録とログインを提供する。
type Service struct {
	accounts  repository.AccountRepository
	tokens    *TokenProvider
	sanitizer security.TextSanitizer
	clock     clock.Clock
	config    ServiceConfig
}

// NewService はServiceを生成する。
func NewService(
	accounts repository.AccountRepository,
	tokens *TokenProvider,
	sanitizer security.TextSanitizer,
	clk clock.Clock,
	config ServiceConfig,
) *Service {
	if config.BcryptCost == 0 {
		config.BcryptCost = bcrypt.DefaultCost
	}
	return &Service{
		accounts:  accounts,
		tokens:    tokens,
		sanitizer: sanitizer,
		clock:     clk,
		config:    config,
	}
}

// Register はアカウントを作成し、ログイン済みのセッションを返す。
func (s *Service) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	kind, err := model.ParseAccountKind(in.AccountType)
	if err != nil {
		return nil, model.NewValidationError(err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.config.BcryptCost)
	if err != nil {
		return nil, model.NewPersistenceError(err)
	}

	id := uuid.New().String()
	name := s.sanitizer.SanitizeText(in.Name)
	now := s.clock.Now()

	var account model.Account
	switch kind {
	case model.AccountKindOrganization:
		account = &model.Organization{
			ID:           id,
			Name:         name,
			Email:        in.Email,
			PasswordHash: string(hash),
			Description:  s.sanitizer.SanitizeRichText(in.Description),
			CreatedAt:    now,
		}
	case model.AccountKindVolunteer:
		interests := make([]string, 0, len(in.Interests))
		for _, interest := range in.Interests {
			if v := s.sanitizer.SanitizeText(interest); v != "" {
				interests = append(interests, v)
			}
		}
		account = &model.Volunteer{
			ID:           id,
			Name:         name,
			Email:        in.Email,
			PasswordHash: string(hash),
			Interests:    interests,
			CreatedAt:    now,
		}
	}

	if err := s.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, model.NewEmailTakenError()
		}
		return nil, model.NewPersistenceError(err)
	}

	slog.Info("account registered",
		slog.String("account_id", id),
		slog.String("account_type", kind.String()),
	)

	return s.newSession(account)
}

// Login はメールアドレスとパスワードを検証し、セッションを返す。
// アカウントが存在しない場合とパスワード不一致は区別しない。
func (s *Service) Login(ctx context.Context, in LoginInput) (*Session, error) {
	in.Email = normalizeEmail(in.Email)
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	kind, err := model.ParseAccountKind(in.AccountType)
	if err != nil {
		return nil, model.NewValidationError(err.Error())
	}

	account, err := s.accounts.FindByEmail(ctx, kind, in.Email)
	if err != nil {
		return nil, model.NewPersistenceError(err)
	}
	if account == nil {
		return nil, model.NewLoginFailedError()
	}

	if err := bcrypt.CompareHashAndPassword([]byte(passwordHash(account)), []byte(in.Password)); err != nil {
		return nil, model.NewLoginFailedError()
	}

	return s.newSession(account)
}

func (s *Service) newSession(account model.Account) (*Session, error) {
	token, expiresAt, err := s.tokens.Issue(model.Principal{
		AccountID: account.AccountID(),
		Kind:      account.Kind(),
	})
	if err != nil {
		return nil, model.NewPersistenceError(err)
	}
	return &Session{
		Token:     token,
		ExpiresAt: expiresAt,
		Account:   model.NewAccountView(account),
	}, nil
}

func passwordHash(account model.Account) string {
	switch a := account.(type) {
	case *model.Organization:
		return a.PasswordHash
	case *model.Volunteer:
		return a.PasswordHash
	default:
		return ""
	}
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
