package authenticating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/oneview/kpi-dashboard-api/internal/config"
	"github.com/oneview/kpi-dashboard-api/internal/domain"
)

// fakeUserRepo guarda os usuários em memória, indexados por email
type fakeUserRepo struct {
	usersByEmail map[string]*domain.User
	usersByID    map[int]*domain.User
}

func newFakeUserRepo(users ...*domain.User) *fakeUserRepo {
	repo := &fakeUserRepo{
		usersByEmail: map[string]*domain.User{},
		usersByID:    map[int]*domain.User{},
	}
	for _, u := range users {
		repo.usersByEmail[u.Email] = u
		repo.usersByID[u.ID] = u
	}
	return repo
}

func (r *fakeUserRepo) CreateUser(user *domain.User) (*domain.User, error) {
	user.ID = len(r.usersByID) + 1
	r.usersByEmail[user.Email] = user
	r.usersByID[user.ID] = user
	return user, nil
}

func (r *fakeUserRepo) UpdateUser(user *domain.User) error {
	r.usersByEmail[user.Email] = user
	r.usersByID[user.ID] = user
	return nil
}

func (r *fakeUserRepo) GetUserByEmail(email string) (*domain.User, error) {
	return r.usersByEmail[email], nil
}

func (r *fakeUserRepo) GetUserByID(userID int) (*domain.User, error) {
	return r.usersByID[userID], nil
}

func (r *fakeUserRepo) ListUser() ([]*domain.User, error) {
	users := make([]*domain.User, 0, len(r.usersByID))
	for _, u := range r.usersByID {
		users = append(users, u)
	}
	return users, nil
}

func testAuthConfig() *config.Config {
	return &config.Config{
		Auth: config.Auth{Secret: "segredo-de-teste"},
	}
}

func activeUser(t *testing.T, id int, email, password string, roleID int) *domain.User {
	t.Helper()

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)

	return &domain.User{
		ID:           id,
		Name:         "Usuário",
		Lastname:     "De Teste",
		Email:        email,
		PasswordHash: string(hash),
		Active:       true,
		RoleID:       roleID,
	}
}

func TestLoginUser_TokenRoundtrip(t *testing.T) {
	user := activeUser(t, 1, "admin@company.com", "admin123", domain.RoleAdmin)
	service := NewService(newFakeUserRepo(user), testAuthConfig())

	token, err := service.LoginUser("admin@company.com", "admin123")
	require.NoError(t, err)
	require.NotEmpty(t, token)

	claims, err := service.ValidateToken(token)
	require.NoError(t, err)

	assert.Equal(t, 1, claims.UserID)
	assert.Equal(t, "admin@company.com", claims.UserEmail)
	assert.Equal(t, domain.RoleAdmin, claims.UserRoleID)
}

func TestLoginUser_NormalizesEmail(t *testing.T) {
	user := activeUser(t, 1, "admin@company.com", "admin123", domain.RoleAdmin)
	service := NewService(newFakeUserRepo(user), testAuthConfig())

	token, err := service.LoginUser("  ADMIN@Company.com ", "admin123")
	require.NoError(t, err)
	assert.NotEmpty(t, token)
}

func TestLoginUser_Errors(t *testing.T) {
	user := activeUser(t, 1, "admin@company.com", "admin123", domain.RoleAdmin)
	disabled := activeUser(t, 2, "inativo@company.com", "senha123", domain.RoleFinance)
	disabled.Active = false

	service := NewService(newFakeUserRepo(user, disabled), testAuthConfig())

	tests := []struct {
		name     string
		email    string
		password string
		expected error
	}{
		{"Senha incorreta", "admin@company.com", "errada", ErrInvalidCredentials},
		{"Usuário desconhecido", "alguem@company.com", "admin123", ErrUserNotFound},
		{"Usuário desativado", "inativo@company.com", "senha123", ErrUserDisabled},
		{"Campos ausentes", "", "", ErrMissingRequiredData},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.LoginUser(tt.email, tt.password)
			assert.ErrorIs(t, err, tt.expected)
		})
	}
}

func TestValidateToken_Invalid(t *testing.T) {
	service := NewService(newFakeUserRepo(), testAuthConfig())

	_, err := service.ValidateToken("nao-e-um-token")
	assert.Error(t, err)
}

func TestValidatePasswordStrength(t *testing.T) {
	service := NewService(newFakeUserRepo(), testAuthConfig())

	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{"Senha forte", "Abcdef1!", false},
		{"Muito curta", "Ab1!", true},
		{"Sem maiúscula", "abcdef1!", true},
		{"Sem minúscula", "ABCDEF1!", true},
		{"Sem número", "Abcdefg!", true},
		{"Sem caractere especial", "Abcdefg1", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := service.ValidatePasswordStrength(tt.password)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestCreateUser_DefaultsAndDuplicates(t *testing.T) {
	repo := newFakeUserRepo()
	service := NewService(repo, testAuthConfig())

	created, err := service.CreateUser(&domain.User{
		Name:         "Nova",
		Lastname:     "Pessoa",
		Email:        "Nova@Company.com",
		PasswordHash: "Senha123!",
	})
	require.NoError(t, err)

	// Email normalizado, papel padrão e conta inativa até aprovação
	assert.Equal(t, "nova@company.com", created.Email)
	assert.Equal(t, domain.RoleMarketing, created.RoleID)
	assert.False(t, created.Active)
	assert.NotEqual(t, "Senha123!", created.PasswordHash)

	_, err = service.CreateUser(&domain.User{
		Name:         "Outra",
		Lastname:     "Pessoa",
		Email:        "nova@company.com",
		PasswordHash: "Senha123!",
	})
	assert.ErrorIs(t, err, ErrUserAlreadyExists)
}
