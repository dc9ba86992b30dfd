package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"backend/internal/model"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fakeUserRepo struct {
	mu      sync.Mutex
	byEmail map[string]*model.User
	updated []model.User
}

func newFakeUserRepo(users ...*model.User) *fakeUserRepo {
	repo := &fakeUserRepo{byEmail: make(map[string]*model.User)}
	for _, u := range users {
		repo.byEmail[strings.ToLower(u.Email)] = u
	}
	return repo
}

func (f *fakeUserRepo) Create(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byEmail[strings.ToLower(user.Email)] = user
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id string) (*model.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	user, ok := f.byEmail[strings.ToLower(strings.TrimSpace(email))]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cp := *user
	return &cp, nil
}

func (f *fakeUserRepo) List(ctx context.Context, page, limit int) ([]model.User, int64, error) {
	return nil, 0, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.byEmail[strings.ToLower(user.Email)] = user
	f.updated = append(f.updated, *user)
	return nil
}

func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	if _, ok := claims["exp"]; !ok {
		claims["exp"] = time.Now().Add(time.Hour).Unix()
	}
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(GetJWTSecret())
	require.NoError(t, err)
	return signed
}

func newAuthRouter(repo *fakeUserRepo) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/me", Authenticate(repo), func(c *gin.Context) {
		user, _ := CurrentUser(c)
		c.JSON(http.StatusOK, gin.H{"name": user.Name, "division": user.Division})
	})
	return router
}

func doRequest(router *gin.Engine, authorization string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func TestAuthenticateResolvesRegisteredUser(t *testing.T) {
	repo := newFakeUserRepo(&model.User{
		ID:       uuid.New(),
		Name:     "Andi",
		Email:    "andi@example.com",
		Role:     model.RoleStaff,
		Division: "OPS",
	})
	router := newAuthRouter(repo)

	token := signToken(t, jwt.MapClaims{"email": "Andi@Example.com", "name": "Andi"})
	rec := doRequest(router, "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "Andi")
	assert.Empty(t, repo.updated)
}

func TestAuthenticateRejectsUnregisteredEmail(t *testing.T) {
	router := newAuthRouter(newFakeUserRepo())

	token := signToken(t, jwt.MapClaims{"email": "stranger@example.com"})
	rec := doRequest(router, "Bearer "+token)

	// Fail closed: a valid token alone never provisions a user.
	assert.Equal(t, http.StatusForbidden, rec.Code)
	assert.Contains(t, rec.Body.String(), "not registered")
}

func TestAuthenticateMissingOrMalformedHeader(t *testing.T) {
	router := newAuthRouter(newFakeUserRepo())

	assert.Equal(t, http.StatusUnauthorized, doRequest(router, "").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(router, "Token abc").Code)
	assert.Equal(t, http.StatusUnauthorized, doRequest(router, "Bearer not.a.jwt").Code)
}

func TestAuthenticateRejectsExpiredToken(t *testing.T) {
	repo := newFakeUserRepo(&model.User{ID: uuid.New(), Name: "Andi", Email: "andi@example.com", Role: model.RoleStaff, Division: "OPS"})
	router := newAuthRouter(repo)

	token := signToken(t, jwt.MapClaims{"email": "andi@example.com", "exp": time.Now().Add(-time.Hour).Unix()})
	assert.Equal(t, http.StatusUnauthorized, doRequest(router, "Bearer "+token).Code)
}

func TestAuthenticateRejectsTokenWithoutEmail(t *testing.T) {
	router := newAuthRouter(newFakeUserRepo())

	token := signToken(t, jwt.MapClaims{"name": "Andi"})
	assert.Equal(t, http.StatusBadRequest, doRequest(router, "Bearer "+token).Code)
}

func TestAuthenticateSyncsNameAndDefaultsDivision(t *testing.T) {
	repo := newFakeUserRepo(&model.User{
		ID:    uuid.New(),
		Name:  "Old Name",
		Email: "andi@example.com",
		Role:  model.RoleStaff,
	})
	router := newAuthRouter(repo)

	token := signToken(t, jwt.MapClaims{"email": "andi@example.com", "name": "Andi Wijaya"})
	rec := doRequest(router, "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, repo.updated, 1)
	assert.Equal(t, "Andi Wijaya", repo.updated[0].Name)
	assert.Equal(t, model.DefaultDivision, repo.updated[0].Division)
}

func TestAuthenticateFallsBackToEmailPrefix(t *testing.T) {
	repo := newFakeUserRepo(&model.User{
		ID:       uuid.New(),
		Name:     "someone else",
		Email:    "budi@example.com",
		Role:     model.RoleStaff,
		Division: "OPS",
	})
	router := newAuthRouter(repo)

	token := signToken(t, jwt.MapClaims{"email": "budi@example.com"})
	rec := doRequest(router, "Bearer "+token)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, repo.updated, 1)
	assert.Equal(t, "budi", repo.updated[0].Name)
}

func TestAuthenticateAcceptsCookieToken(t *testing.T) {
	repo := newFakeUserRepo(&model.User{ID: uuid.New(), Name: "Andi", Email: "andi@example.com", Role: model.RoleStaff, Division: "OPS"})
	router := newAuthRouter(repo)

	token := signToken(t, jwt.MapClaims{"email": "andi@example.com", "name": "Andi"})
	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: token})
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestRequireAdmin(t *testing.T) {
	gin.SetMode(gin.TestMode)

	newRouter := func(user *model.User) *gin.Engine {
		router := gin.New()
		router.GET("/admin", func(c *gin.Context) {
			if user != nil {
				c.Set(userContextKey, user)
			}
		}, RequireAdmin(), func(c *gin.Context) {
			c.Status(http.StatusOK)
		})
		return router
	}

	serve := func(router *gin.Engine) int {
		req := httptest.NewRequest(http.MethodGet, "/admin", nil)
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec.Code
	}

	assert.Equal(t, http.StatusOK, serve(newRouter(&model.User{Role: model.RoleAdmin})))
	assert.Equal(t, http.StatusForbidden, serve(newRouter(&model.User{Role: model.RoleStaff})))
	assert.Equal(t, http.StatusUnauthorized, serve(newRouter(nil)))
}
