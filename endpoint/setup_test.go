package endpoint

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/xyzhospital/frontdesk/middleware"
	"github.com/xyzhospital/frontdesk/model"
	"github.com/xyzhospital/frontdesk/util"
)

// setupEndpointTestDB opens an in-memory SQLite database with the full
// schema migrated. The DSN is uniquified so tests in the same process
// never share state.
func setupEndpointTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:endpointdb_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	if err := db.AutoMigrate(&model.Patient{}, &model.User{}, &model.Session{}, &model.AuditLog{}); err != nil {
		t.Fatalf("auto migrate failed: %v", err)
	}

	return db
}

// setupEndpointTest returns a Gin engine wired with the production route
// table and a fresh database.
func setupEndpointTest(t *testing.T) (*gin.Engine, *gorm.DB) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	util.SetJWTSecret("test-secret-123")
	util.InitIdentityCache(16)

	db := setupEndpointTestDB(t)

	r := gin.New()
	r.LoadHTMLGlob("../templates/*.html")
	r.Use(middleware.DatabaseMiddleware(db))

	r.GET("/", Index)
	r.GET("/index", Index)
	r.GET("/login", LoginForm)
	r.POST("/login", Login)
	r.POST("/logout", Logout)

	authed := r.Group("/", middleware.SessionAuth())
	authed.GET("/user", UserHomepage)
	authed.GET("/patients", ListPatients)
	authed.GET("/updateDetails", UpdateDetailsForm)
	authed.POST("/updateDetails", UpdateDetails)
	authed.GET("/addnewpatient", AddNewPatientForm)
	authed.POST("/addnewpatient", AddNewPatient)
	authed.GET("/pat/:id", PatientAddress)

	r.NoRoute(util.RenderNotFoundPage)

	return r, db
}

func seedUsers(t *testing.T, db *gorm.DB) {
	t.Helper()
	if err := model.SeedUsers(db, util.HashPassword); err != nil {
		t.Fatalf("seed users: %v", err)
	}
}

// postForm performs a form submission carrying the given cookies.
func postForm(r *gin.Engine, path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func getPath(r *gin.Engine, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	for _, ck := range cookies {
		req.AddCookie(ck)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// loginAs logs in with the given credentials and returns the cookies the
// response set.
func loginAs(t *testing.T, r *gin.Engine, username, password string) []*http.Cookie {
	t.Helper()
	w := postForm(r, "/login", url.Values{
		"user_name":     {username},
		"user_password": {password},
	}, nil)
	assert.Equal(t, http.StatusFound, w.Code)
	assert.Equal(t, "/user", w.Header().Get("Location"))

	cookies := w.Result().Cookies()
	if len(cookies) == 0 {
		t.Fatalf("login set no cookies")
	}
	return cookies
}

func cookieValue(cookies []*http.Cookie, name string) (string, bool) {
	for _, ck := range cookies {
		if ck.Name == name {
			return ck.Value, true
		}
	}
	return "", false
}
