package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/gigflow/internal/domain/entity"
	"github.com/ignatzorin/gigflow/internal/domain/repository"
	"github.com/ignatzorin/gigflow/internal/logger"
	"github.com/ignatzorin/gigflow/internal/pkg/apperror"
	"github.com/ignatzorin/gigflow/internal/validation"
)

// AuthService инкапсулирует регистрацию и аутентификацию.
type AuthService struct {
	users        repository.UserRepository
	tokenManager *TokenManager
	cost         int
}

type RegisterInput struct {
	Name     string
	Email    string
	Password string
}

type LoginInput struct {
	Email    string
	Password string
}

// AuthResult возвращает итог регистрации или авторизации.
type AuthResult struct {
	User  *entity.User
	Token *AccessToken
}

// NewAuthService создаёт сервис аутентификации.
func NewAuthService(users repository.UserRepository, tokenManager *TokenManager) *AuthService {
	return &AuthService{
		users:        users,
		tokenManager: tokenManager,
		cost:         bcrypt.DefaultCost,
	}
}

// WithBcryptCost меняет стоимость хеширования (в тестах используется bcrypt.MinCost).
func (s *AuthService) WithBcryptCost(cost int) *AuthService {
	s.cost = cost
	return s
}

// Register создаёт пользователя и сразу выдаёт токен.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*AuthResult, error) {
	name, err := validation.ValidateName(in.Name)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}
	if err := validation.ValidatePassword(in.Password); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeValidation, err.Error())
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(in.Password), s.cost)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось захешировать пароль")
	}

	user := entity.NewUser(name, in.Email, string(hash))
	if err := s.users.Create(ctx, user); err != nil {
		return nil, apperror.Internal(err, "не удалось зарегистрировать пользователя")
	}

	logger.Log.WithField("user_id", user.ID).Info("auth service: пользователь зарегистрирован")
	return s.issue(user)
}

// Login проверяет учётные данные. Неизвестный email и неверный пароль
// неразличимы для клиента.
func (s *AuthService) Login(ctx context.Context, in LoginInput) (*AuthResult, error) {
	if err := validation.ValidateEmail(in.Email); err != nil {
		return nil, apperror.ErrInvalidCredentials
	}

	user, err := s.users.FindByEmail(ctx, in.Email)
	if err != nil {
		if apperror.IsNotFound(err) {
			return nil, apperror.ErrInvalidCredentials
		}
		return nil, apperror.Internal(err, "не удалось выполнить вход")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(in.Password)); err != nil {
		if !errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			logger.Log.WithError(err).WithField("user_id", user.ID).Warn("auth service: некорректный хеш пароля")
		}
		return nil, apperror.ErrInvalidCredentials
	}

	return s.issue(user)
}

// Me возвращает текущего пользователя по идентификатору из токена.
func (s *AuthService) Me(ctx context.Context, userID uuid.UUID) (*entity.User, error) {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return nil, apperror.Internal(err, "не удалось получить пользователя")
	}
	return user, nil
}

func (s *AuthService) issue(user *entity.User) (*AuthResult, error) {
	token, err := s.tokenManager.Generate(user)
	if err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeInternal, "не удалось выпустить токен")
	}
	return &AuthResult{User: user, Token: token}, nil
}
