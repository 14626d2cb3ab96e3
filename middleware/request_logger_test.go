package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/xyzhospital/frontdesk/model"
	"github.com/xyzhospital/frontdesk/util"
)

func TestRequestLoggerPersistsEndpointCall(t *testing.T) {
	gin.SetMode(gin.TestMode)
	db := setupMiddlewareTestDB(t)
	if err := db.AutoMigrate(&model.AuditLog{}); err != nil {
		t.Fatalf("auto migrate: %v", err)
	}
	util.SetAuditLoggerDB(db)
	t.Cleanup(func() { util.SetAuditLoggerDB(nil) })

	r := gin.New()
	r.Use(DatabaseMiddleware(db))
	r.Use(RequestLogger())
	r.GET("/patients", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/patients", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	var entry model.AuditLog
	err := db.Where("event_type = ?", string(util.EventEndpointCall)).First(&entry).Error
	assert.NoError(t, err)
	assert.Contains(t, entry.Message, "GET /patients")
	assert.Contains(t, string(entry.Details), "duration_ms")
}
