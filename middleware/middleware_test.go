package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/xyzhospital/frontdesk/model"
	"github.com/xyzhospital/frontdesk/util"
)

func setupMiddlewareTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:mwdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&model.User{}, &model.Session{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	return db
}

func TestDatabaseMiddlewareAndGetDB(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupMiddlewareTestDB(t)

	r := gin.New()
	r.Use(DatabaseMiddleware(db))
	r.GET("/probe", func(c *gin.Context) {
		got := GetDB(c)
		assert.NotNil(t, got)
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestGetDBWithoutMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/probe", func(c *gin.Context) {
		assert.Nil(t, GetDB(c))
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/probe", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}

func setupSessionAuthRouter(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	util.InitIdentityCache(16)

	db := setupMiddlewareTestDB(t)
	r := gin.New()
	r.Use(DatabaseMiddleware(db))
	r.GET("/gated", SessionAuth(), func(c *gin.Context) {
		identity, ok := GetSessionUser(c)
		assert.True(t, ok)
		c.String(http.StatusOK, identity.UserID)
	})
	return r, db
}

func insertSession(t *testing.T, db *gorm.DB, token string, expiresAt time.Time) {
	t.Helper()
	user := model.User{UserID: "RE0001", DisplayName: "reuser1", PasswordHash: "digest", Role: "Registration"}
	if err := db.Create(&user).Error; err != nil {
		t.Fatalf("create user: %v", err)
	}
	session := model.Session{UserID: user.UserID, SessionToken: token, ExpiresAt: expiresAt}
	if err := db.Create(&session).Error; err != nil {
		t.Fatalf("create session: %v", err)
	}
}

func TestSessionAuthRedirectsWithoutCookie(t *testing.T) {
	r, _ := setupSessionAuthRouter(t)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/gated", nil))

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestSessionAuthRejectsUnknownToken(t *testing.T) {
	r, _ := setupSessionAuthRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/gated", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "forged"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestSessionAuthRejectsExpiredSession(t *testing.T) {
	r, db := setupSessionAuthRouter(t)
	insertSession(t, db, "expired-token", time.Now().Add(-time.Minute))

	req := httptest.NewRequest(http.MethodGet, "/gated", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "expired-token"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/login", w.Header().Get("Location"))
}

func TestSessionAuthAcceptsTrackedSession(t *testing.T) {
	r, db := setupSessionAuthRouter(t)
	insertSession(t, db, "live-token", time.Now().Add(time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/gated", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "live-token"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "RE0001", w.Body.String())
}

func TestSessionAuthUsesIdentityCacheOnSecondRequest(t *testing.T) {
	r, db := setupSessionAuthRouter(t)
	insertSession(t, db, "cached-token", time.Now().Add(time.Hour))

	req := httptest.NewRequest(http.MethodGet, "/gated", nil)
	req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "cached-token"})
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// delete the row; the cached identity still answers until it expires
	db.Where("session_token = ?", "cached-token").Delete(&model.Session{})

	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}
