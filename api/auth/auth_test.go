package auth

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/v2/bson"

	"github.com/rollcall-app/rollcall/api/models"
	"github.com/rollcall-app/rollcall/database"
	"github.com/rollcall-app/rollcall/database/mock"
	"github.com/rollcall-app/rollcall/password"
)

func TestAuthorized(t *testing.T) {
	owner := bson.NewObjectID()
	other := bson.NewObjectID()

	tests := []struct {
		name     string
		identity *models.Identity
		target   bson.ObjectID
		want     bool
	}{
		{
			name:     "owner may act on themselves",
			identity: &models.Identity{ID: owner},
			target:   owner,
			want:     true,
		},
		{
			name:     "non-admin may not act on another user",
			identity: &models.Identity{ID: other},
			target:   owner,
			want:     false,
		},
		{
			name:     "admin may act on anyone",
			identity: &models.Identity{ID: other, IsAdmin: true},
			target:   owner,
			want:     true,
		},
		{
			name:     "nil identity is denied",
			identity: nil,
			target:   owner,
			want:     false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Authorized(tt.identity, tt.target))
		})
	}
}

func newTestRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	store := cookie.NewStore([]byte("test-secret"))
	router.Use(sessions.Sessions("test_session", store))
	return router
}

func TestRequireAuthRedirectsWithoutSession(t *testing.T) {
	router := newTestRouter()
	router.GET("/protected", RequireAuth(mock.NewMockStore()), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	req := httptest.NewRequest("GET", "/protected", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/user/login", w.Header().Get("Location"))
}

func TestRequireAuthAttachesFreshIdentity(t *testing.T) {
	store := mock.NewMockStore()
	hash, err := password.Hash("pw")
	require.NoError(t, err)
	user := &database.User{Name: "Alice", Phone: "555", PasswordHash: hash}
	require.NoError(t, store.CreateUser(context.Background(), user))

	router := newTestRouter()
	router.GET("/session", func(c *gin.Context) {
		require.NoError(t, EstablishSession(c, user))
		c.String(http.StatusOK, "ok")
	})
	router.GET("/protected", RequireAuth(store), func(c *gin.Context) {
		identity := Current(c)
		require.NotNil(t, identity)
		assert.Equal(t, user.ID, identity.ID)
		assert.Equal(t, "Alice", identity.Name)
		assert.False(t, identity.IsAdmin)
		c.String(http.StatusOK, "ok")
	})

	login := httptest.NewRecorder()
	router.ServeHTTP(login, httptest.NewRequest("GET", "/session", nil))
	require.Equal(t, http.StatusOK, login.Code)

	req := httptest.NewRequest("GET", "/protected", nil)
	for _, c := range login.Result().Cookies() {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAuthClearsStaleSession(t *testing.T) {
	store := mock.NewMockStore()
	user := &database.User{Name: "Gone", Phone: "555", PasswordHash: "x"}
	require.NoError(t, store.CreateUser(context.Background(), user))

	router := newTestRouter()
	router.GET("/session", func(c *gin.Context) {
		require.NoError(t, EstablishSession(c, user))
		c.String(http.StatusOK, "ok")
	})
	router.GET("/protected", RequireAuth(store), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	login := httptest.NewRecorder()
	router.ServeHTTP(login, httptest.NewRequest("GET", "/session", nil))

	// delete the account behind the session's back
	require.NoError(t, store.DeleteUser(context.Background(), user.ID))

	req := httptest.NewRequest("GET", "/protected", nil)
	for _, c := range login.Result().Cookies() {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/user/login", w.Header().Get("Location"))
}

func TestRequireAdmin(t *testing.T) {
	router := newTestRouter()
	router.GET("/admin", func(c *gin.Context) {
		c.Set("identity", &models.Identity{ID: bson.NewObjectID(), IsAdmin: false})
	}, RequireAdmin(), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})
	router.GET("/admin-ok", func(c *gin.Context) {
		c.Set("identity", &models.Identity{ID: bson.NewObjectID(), IsAdmin: true})
	}, RequireAdmin(), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/admin", nil))
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/", w.Header().Get("Location"))

	w = httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest("GET", "/admin-ok", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
