package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/gigflow/internal/domain/entity"
	"github.com/ignatzorin/gigflow/internal/logger"
	"github.com/ignatzorin/gigflow/internal/pkg/apperror"
)

func init() {
	logger.Silence()
}

// mockUserRepository реализует repository.UserRepository для тестов.
type mockUserRepository struct {
	usersByEmail map[string]*entity.User
	usersByID    map[uuid.UUID]*entity.User
	failWith     error
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{
		usersByEmail: make(map[string]*entity.User),
		usersByID:    make(map[uuid.UUID]*entity.User),
	}
}

func (m *mockUserRepository) Create(ctx context.Context, user *entity.User) error {
	if m.failWith != nil {
		return m.failWith
	}
	if _, ok := m.usersByEmail[user.Email]; ok {
		return apperror.ErrEmailTaken
	}
	m.usersByEmail[user.Email] = user
	m.usersByID[user.ID] = user
	return nil
}

func (m *mockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	if user, ok := m.usersByID[id]; ok {
		return user, nil
	}
	return nil, apperror.ErrUserNotFound
}

func (m *mockUserRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	if m.failWith != nil {
		return nil, m.failWith
	}
	if user, ok := m.usersByEmail[strings.ToLower(email)]; ok {
		return user, nil
	}
	return nil, apperror.ErrUserNotFound
}

func newTestAuthService(repo *mockUserRepository) (*AuthService, *TokenManager) {
	tokens := NewTokenManager("test-secret-test-secret-test-secret", time.Hour)
	return NewAuthService(repo, tokens).WithBcryptCost(bcrypt.MinCost), tokens
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	repo := newMockUserRepository()
	svc, tokens := newTestAuthService(repo)
	ctx := context.Background()

	registered, err := svc.Register(ctx, RegisterInput{Name: "Мария", Email: "Maria@Example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, "maria@example.com", registered.User.Email)
	assert.NotEqual(t, "secret123", registered.User.PasswordHash)

	userID, err := tokens.ParseAccess(registered.Token.Token)
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, userID)

	loggedIn, err := svc.Login(ctx, LoginInput{Email: "maria@example.com", Password: "secret123"})
	require.NoError(t, err)
	assert.Equal(t, registered.User.ID, loggedIn.User.ID)

	me, err := svc.Me(ctx, userID)
	require.NoError(t, err)
	assert.Equal(t, "Мария", me.Name)
}

func TestAuthService_RegisterDuplicateEmail(t *testing.T) {
	repo := newMockUserRepository()
	svc, _ := newTestAuthService(repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Иван", Email: "ivan@example.com", Password: "pass1234"})
	require.NoError(t, err)

	_, err = svc.Register(ctx, RegisterInput{Name: "Иван", Email: "IVAN@example.com", Password: "pass1234"})
	assert.True(t, errors.Is(err, apperror.ErrEmailTaken))
	assert.Equal(t, apperror.ReasonEmailTaken, apperror.ReasonOf(err))
}

func TestAuthService_RegisterValidation(t *testing.T) {
	svc, _ := newTestAuthService(newMockUserRepository())
	ctx := context.Background()

	cases := []RegisterInput{
		{Name: "И", Email: "ivan@example.com", Password: "pass1234"},
		{Name: "Иван", Email: "not-an-email", Password: "pass1234"},
		{Name: "Иван", Email: "ivan@example.com", Password: "short1"},
		{Name: "Иван", Email: "ivan@example.com", Password: "onlyletters"},
	}
	for _, in := range cases {
		_, err := svc.Register(ctx, in)
		assert.True(t, apperror.IsValidation(err), "ожидалась ошибка валидации для %+v", in)
	}
}

func TestAuthService_LoginInvalidCredentials(t *testing.T) {
	repo := newMockUserRepository()
	svc, _ := newTestAuthService(repo)
	ctx := context.Background()

	_, err := svc.Register(ctx, RegisterInput{Name: "Ольга", Email: "olga@example.com", Password: "pass1234"})
	require.NoError(t, err)

	_, err = svc.Login(ctx, LoginInput{Email: "olga@example.com", Password: "wrong1234"})
	assert.True(t, errors.Is(err, apperror.ErrInvalidCredentials))

	_, err = svc.Login(ctx, LoginInput{Email: "nobody@example.com", Password: "pass1234"})
	assert.True(t, errors.Is(err, apperror.ErrInvalidCredentials))
}

func TestAuthService_StorageFailureIsInternal(t *testing.T) {
	repo := newMockUserRepository()
	repo.failWith = errors.New("connection reset")
	svc, _ := newTestAuthService(repo)

	_, err := svc.Login(context.Background(), LoginInput{Email: "olga@example.com", Password: "pass1234"})
	assert.True(t, apperror.IsInternal(err))
}

func TestTokenManager_RejectsForeignAndExpiredTokens(t *testing.T) {
	user := entity.NewUser("Пётр", "petr@example.com", "hash")
	issuer := NewTokenManager("first-secret-first-secret-first-secret", time.Minute)
	other := NewTokenManager("second-secret-second-secret-second-sec", time.Minute)

	token, err := issuer.Generate(user)
	require.NoError(t, err)

	_, err = other.ParseAccess(token.Token)
	assert.Error(t, err)

	issuer.now = func() time.Time { return time.Now().Add(2 * time.Minute) }
	_, err = issuer.ParseAccess(token.Token)
	assert.Error(t, err)

	_, err = issuer.ParseAccess("garbage")
	assert.Error(t, err)
}
