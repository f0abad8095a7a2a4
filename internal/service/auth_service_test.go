package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/ignatzorin/studio-backend/internal/models"
	"github.com/ignatzorin/studio-backend/internal/pkg/apperror"
	"github.com/ignatzorin/studio-backend/internal/repository"
)

// mockAuthRepository реализует AuthRepository для тестов.
type mockAuthRepository struct {
	usersByEmail map[string]*models.User
	usersByID    map[uuid.UUID]*models.User
	sessions     map[string]*models.Session
}

func newMockAuthRepository() *mockAuthRepository {
	return &mockAuthRepository{
		usersByEmail: make(map[string]*models.User),
		usersByID:    make(map[uuid.UUID]*models.User),
		sessions:     make(map[string]*models.Session),
	}
}

func (m *mockAuthRepository) Create(ctx context.Context, user *models.User) error {
	user.ID = uuid.New()
	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now
	user.IsActive = true
	m.usersByEmail[user.Email] = user
	m.usersByID[user.ID] = user
	return nil
}

func (m *mockAuthRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	if user, ok := m.usersByEmail[email]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockAuthRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	if user, ok := m.usersByID[id]; ok {
		return user, nil
	}
	return nil, repository.ErrUserNotFound
}

func (m *mockAuthRepository) UpdateLastLoginAt(ctx context.Context, userID uuid.UUID) error {
	if user, ok := m.usersByID[userID]; ok {
		now := time.Now()
		user.LastLoginAt = &now
	}
	return nil
}

func (m *mockAuthRepository) CreateSession(ctx context.Context, session *models.Session) error {
	session.ID = uuid.New()
	session.CreatedAt = time.Now()
	m.sessions[session.RefreshToken] = session
	return nil
}

func (m *mockAuthRepository) GetSession(ctx context.Context, refreshToken string) (*models.Session, error) {
	if session, ok := m.sessions[refreshToken]; ok {
		return session, nil
	}
	return nil, repository.ErrSessionNotFound
}

func (m *mockAuthRepository) RotateSession(ctx context.Context, oldRefreshToken string, session *models.Session) error {
	delete(m.sessions, oldRefreshToken)
	session.ID = uuid.New()
	session.CreatedAt = time.Now()
	m.sessions[session.RefreshToken] = session
	return nil
}

func (m *mockAuthRepository) DeleteSession(ctx context.Context, refreshToken string) error {
	delete(m.sessions, refreshToken)
	return nil
}

func TestAuthService_RegisterAndLogin(t *testing.T) {
	repo := newMockAuthRepository()
	tokenManager := NewTokenManager("access", "refresh", time.Minute, time.Hour)
	service := NewAuthService(repo, tokenManager)

	ctx := context.Background()
	res, err := service.Register(ctx, RegisterInput{
		Email:    "test@example.com",
		Password: "Password123",
	}, map[string]string{"ip": "127.0.0.1"})
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}

	if res.User.ID == uuid.Nil {
		t.Fatalf("user ID должен быть установлен")
	}

	// Через публичную регистрацию создаются только клиенты.
	if res.User.Role != models.RoleClient {
		t.Fatalf("ожидалась роль client, получили %s", res.User.Role)
	}

	if len(repo.sessions) != 1 {
		t.Fatalf("ожидалась одна сессия, получили %d", len(repo.sessions))
	}

	loginRes, err := service.Login(ctx, LoginInput{
		Email:    "test@example.com",
		Password: "Password123",
	}, nil)
	if err != nil {
		t.Fatalf("login returned error: %v", err)
	}

	if loginRes.TokenPair.AccessToken == "" {
		t.Fatalf("ожидался access токен")
	}
}

func TestAuthService_Login_WrongPassword(t *testing.T) {
	repo := newMockAuthRepository()
	tokenManager := NewTokenManager("access", "refresh", time.Minute, time.Hour)
	service := NewAuthService(repo, tokenManager)

	ctx := context.Background()
	if _, err := service.Register(ctx, RegisterInput{
		Email:    "user@example.com",
		Password: "Password123",
	}, nil); err != nil {
		t.Fatalf("register returned error: %v", err)
	}

	_, err := service.Login(ctx, LoginInput{
		Email:    "user@example.com",
		Password: "WrongPassword1",
	}, nil)
	if !apperror.IsUnauthorized(err) {
		t.Fatalf("ожидалась ошибка авторизации, получили %v", err)
	}
}

func TestAuthService_Refresh(t *testing.T) {
	repo := newMockAuthRepository()
	tokenManager := NewTokenManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	service := NewAuthService(repo, tokenManager)

	ctx := context.Background()
	hash, _ := bcrypt.GenerateFromPassword([]byte("Password123"), bcrypt.DefaultCost)
	user := &models.User{
		ID:           uuid.New(),
		Email:        "user@example.com",
		PasswordHash: string(hash),
		Role:         models.RoleClient,
		IsActive:     true,
	}
	repo.usersByEmail[user.Email] = user
	repo.usersByID[user.ID] = user

	tokenPair, accessExp, refreshExp, err := tokenManager.GeneratePair(user)
	if err != nil {
		t.Fatalf("не удалось сгенерировать токены: %v", err)
	}
	if accessExp.After(refreshExp) {
		t.Fatalf("access должен истекать раньше refresh")
	}

	repo.sessions[tokenPair.RefreshToken] = &models.Session{
		ID:           uuid.New(),
		UserID:       user.ID,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresAt:    refreshExp,
	}

	newPair, err := service.Refresh(ctx, tokenPair.RefreshToken, nil)
	if err != nil {
		t.Fatalf("refresh вернул ошибку: %v", err)
	}

	if newPair.RefreshToken == tokenPair.RefreshToken {
		t.Fatalf("ожидался новый refresh токен")
	}
	if _, ok := repo.sessions[tokenPair.RefreshToken]; ok {
		t.Fatalf("старая сессия должна быть удалена при ротации")
	}
}

func TestAuthService_Refresh_RevokedSession(t *testing.T) {
	repo := newMockAuthRepository()
	tokenManager := NewTokenManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	service := NewAuthService(repo, tokenManager)

	ctx := context.Background()
	user := &models.User{
		ID:       uuid.New(),
		Email:    "user@example.com",
		Role:     models.RoleClient,
		IsActive: true,
	}
	repo.usersByEmail[user.Email] = user
	repo.usersByID[user.ID] = user

	tokenPair, _, _, err := tokenManager.GeneratePair(user)
	if err != nil {
		t.Fatalf("не удалось сгенерировать токены: %v", err)
	}

	// Токен валиден, но сессия отозвана (logout): новая пара не выпускается.
	_, err = service.Refresh(ctx, tokenPair.RefreshToken, nil)
	if !apperror.IsUnauthorized(err) {
		t.Fatalf("по отозванной сессии ожидалась ошибка авторизации, получили %v", err)
	}
}

func TestAuthService_Refresh_ExpiredSession(t *testing.T) {
	repo := newMockAuthRepository()
	tokenManager := NewTokenManager("access-secret", "refresh-secret", time.Minute, time.Hour)
	service := NewAuthService(repo, tokenManager)

	ctx := context.Background()
	user := &models.User{
		ID:       uuid.New(),
		Email:    "user@example.com",
		Role:     models.RoleClient,
		IsActive: true,
	}
	repo.usersByEmail[user.Email] = user
	repo.usersByID[user.ID] = user

	tokenPair, _, _, err := tokenManager.GeneratePair(user)
	if err != nil {
		t.Fatalf("не удалось сгенерировать токены: %v", err)
	}

	repo.sessions[tokenPair.RefreshToken] = &models.Session{
		ID:           uuid.New(),
		UserID:       user.ID,
		RefreshToken: tokenPair.RefreshToken,
		ExpiresAt:    time.Now().Add(-time.Hour),
	}

	_, err = service.Refresh(ctx, tokenPair.RefreshToken, nil)
	if !apperror.IsUnauthorized(err) {
		t.Fatalf("по истёкшей сессии ожидалась ошибка авторизации, получили %v", err)
	}
}

func TestAuthService_EnsureAdmin(t *testing.T) {
	repo := newMockAuthRepository()
	tokenManager := NewTokenManager("access", "refresh", time.Minute, time.Hour)
	service := NewAuthService(repo, tokenManager)

	ctx := context.Background()
	if err := service.EnsureAdmin(ctx, "admin@example.com", "AdminPass123"); err != nil {
		t.Fatalf("ensure admin вернул ошибку: %v", err)
	}

	admin, err := repo.GetByEmail(ctx, "admin@example.com")
	if err != nil {
		t.Fatalf("админ не создан: %v", err)
	}
	if admin.Role != models.RoleAdmin {
		t.Fatalf("ожидалась роль admin, получили %s", admin.Role)
	}

	// Повторный вызов не создаёт дубликат.
	if err := service.EnsureAdmin(ctx, "admin@example.com", "AdminPass123"); err != nil {
		t.Fatalf("повторный ensure admin вернул ошибку: %v", err)
	}
	if len(repo.usersByID) != 1 {
		t.Fatalf("ожидался один пользователь, получили %d", len(repo.usersByID))
	}
}

func TestTokenManager_AccessTokenCarriesSubject(t *testing.T) {
	tokenManager := NewTokenManager("access", "refresh", time.Minute, time.Hour)

	user := &models.User{
		ID:    uuid.New(),
		Email: "subject@example.com",
		Role:  models.RoleAdmin,
	}

	pair, _, _, err := tokenManager.GeneratePair(user)
	if err != nil {
		t.Fatalf("не удалось сгенерировать токены: %v", err)
	}

	subject, err := tokenManager.ParseAccess(pair.AccessToken)
	if err != nil {
		t.Fatalf("parse access вернул ошибку: %v", err)
	}

	if subject.ID != user.ID || subject.Email != user.Email || subject.Role != user.Role {
		t.Fatalf("субъект не совпадает с пользователем: %+v", subject)
	}
	if !subject.IsAdmin() {
		t.Fatalf("субъект должен быть админом")
	}
}
