package service

import (
	"context"
	"strings"
	"testing"

	"backend/internal/middleware"
	"backend/internal/model"
	"backend/pkg/apperror"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	byID    map[string]*model.User
	byEmail map[string]*model.User
}

func newFakeUserRepo() *fakeUserRepo {
	return &fakeUserRepo{byID: make(map[string]*model.User), byEmail: make(map[string]*model.User)}
}

func (f *fakeUserRepo) add(user *model.User) *model.User {
	if user.ID == uuid.Nil {
		user.ID = uuid.New()
	}
	f.byID[user.ID.String()] = user
	f.byEmail[strings.ToLower(user.Email)] = user
	return user
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	user.Email = strings.ToLower(strings.TrimSpace(user.Email))
	f.add(user)
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	user, ok := f.byID[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *user
	return &cp, nil
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	user, ok := f.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *user
	return &cp, nil
}

func (f *fakeUserRepo) List(ctx context.Context, page, limit int) ([]model.User, int64, error) {
	var out []model.User
	for _, u := range f.byID {
		out = append(out, *u)
	}
	return out, int64(len(out)), nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *model.User) error {
	f.add(user)
	return nil
}

func newUserService(repo *fakeUserRepo) UserService {
	return NewUserService(repo, zap.NewNop())
}

func TestCreateUser(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newUserService(repo)

	user, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Name:  "Andi",
		Email: "Andi@Example.com",
		Role:  model.RoleStaff,
	})
	require.NoError(t, err)
	assert.Equal(t, "andi@example.com", user.Email)
	assert.Equal(t, model.DefaultDivision, user.Division)
	assert.Empty(t, user.Password)
}

func TestCreateUserRejectsInvalidRole(t *testing.T) {
	svc := newUserService(newFakeUserRepo())

	_, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Name:  "Andi",
		Email: "andi@example.com",
		Role:  "superuser",
	})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeInvalidInput, apperror.CodeOf(err))
}

func TestCreateUserRejectsDuplicateEmail(t *testing.T) {
	repo := newFakeUserRepo()
	repo.add(&model.User{Name: "Andi", Email: "andi@example.com", Role: model.RoleStaff})
	svc := newUserService(repo)

	_, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Name:  "Impostor",
		Email: "ANDI@example.com",
		Role:  model.RoleStaff,
	})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeInvalidInput, apperror.CodeOf(err))
}

func TestCreateUserHashesBootstrapPassword(t *testing.T) {
	repo := newFakeUserRepo()
	svc := newUserService(repo)

	user, err := svc.CreateUser(context.Background(), CreateUserRequest{
		Name:     "Eka",
		Email:    "eka@example.com",
		Role:     model.RoleAdmin,
		Password: "s3cret-pass",
	})
	require.NoError(t, err)
	assert.NotEqual(t, "s3cret-pass", user.Password)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("s3cret-pass")))
}

func TestUpdateUser(t *testing.T) {
	repo := newFakeUserRepo()
	existing := repo.add(&model.User{Name: "Andi", Email: "andi@example.com", Role: model.RoleStaff, Division: "OPS"})
	svc := newUserService(repo)

	updated, err := svc.UpdateUser(context.Background(), existing.ID.String(), UpdateUserRequest{
		Role:     model.RoleDivHead,
		Division: " IT ",
	})
	require.NoError(t, err)
	assert.Equal(t, "Andi", updated.Name) // untouched
	assert.Equal(t, model.RoleDivHead, updated.Role)
	assert.Equal(t, "IT", updated.Division)

	_, err = svc.UpdateUser(context.Background(), existing.ID.String(), UpdateUserRequest{Role: "superuser"})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeInvalidInput, apperror.CodeOf(err))

	_, err = svc.UpdateUser(context.Background(), uuid.NewString(), UpdateUserRequest{Name: "X"})
	require.Error(t, err)
	assert.Equal(t, apperror.CodeNotFound, apperror.CodeOf(err))
}

func TestLogin(t *testing.T) {
	hashed, err := bcrypt.GenerateFromPassword([]byte("s3cret-pass"), bcrypt.MinCost)
	require.NoError(t, err)

	repo := newFakeUserRepo()
	repo.add(&model.User{Name: "Eka", Email: "eka@example.com", Role: model.RoleAdmin, Password: string(hashed)})
	repo.add(&model.User{Name: "Andi", Email: "andi@example.com", Role: model.RoleStaff}) // provider-managed
	svc := newUserService(repo)

	t.Run("success issues a verifiable token", func(t *testing.T) {
		resp, err := svc.Login(context.Background(), LoginRequest{Email: "eka@example.com", Password: "s3cret-pass"})
		require.NoError(t, err)

		token, err := jwt.Parse(resp.Token, func(token *jwt.Token) (interface{}, error) {
			return middleware.GetJWTSecret(), nil
		})
		require.NoError(t, err)
		claims := token.Claims.(jwt.MapClaims)
		assert.Equal(t, "eka@example.com", claims["email"])
		assert.Equal(t, "Eka", claims["name"])
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := svc.Login(context.Background(), LoginRequest{Email: "eka@example.com", Password: "wrong"})
		require.Error(t, err)
		assert.Equal(t, apperror.CodeUnauthenticated, apperror.CodeOf(err))
	})

	t.Run("unknown email", func(t *testing.T) {
		_, err := svc.Login(context.Background(), LoginRequest{Email: "ghost@example.com", Password: "whatever"})
		require.Error(t, err)
		assert.Equal(t, apperror.CodeUnauthenticated, apperror.CodeOf(err))
	})

	t.Run("provider account has no local credential", func(t *testing.T) {
		_, err := svc.Login(context.Background(), LoginRequest{Email: "andi@example.com", Password: "anything"})
		require.Error(t, err)
		assert.Equal(t, apperror.CodeUnauthenticated, apperror.CodeOf(err))
	})
}
