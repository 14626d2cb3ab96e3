package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/xyzhospital/frontdesk/util"
)

const (
	dbContextKey      = "db"
	sessionContextKey = "sessionUser"

	// SessionCookieName is the HttpOnly cookie carrying the signed session
	// token. The three display cookies are readable by the page but carry
	// no authority on their own.
	SessionCookieName = "sessionToken"

	// Display cookie names kept from the original front-desk UI.
	CookieUserID   = "loggedInUserId"
	CookieUserName = "loggedInUserName"
	CookieUserType = "loggedInUserType"
)

// DatabaseMiddleware injects the store handle into the request context so
// every handler works against a request-scoped handle instead of a global.
func DatabaseMiddleware(db *gorm.DB) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Set(dbContextKey, db.WithContext(c.Request.Context()))
		c.Next()
	}
}

// GetDB returns the store handle set by DatabaseMiddleware, or nil.
func GetDB(c *gin.Context) *gorm.DB {
	v, ok := c.Get(dbContextKey)
	if !ok {
		return nil
	}
	db, ok := v.(*gorm.DB)
	if !ok {
		return nil
	}
	return db
}

// GetSessionUser returns the identity resolved by SessionAuth for the
// current request.
func GetSessionUser(c *gin.Context) (util.Identity, bool) {
	v, ok := c.Get(sessionContextKey)
	if !ok {
		return util.Identity{}, false
	}
	identity, ok := v.(util.Identity)
	return identity, ok
}

// SessionAuth gates a route behind a valid server-tracked session. A
// missing, unknown, or expired token always redirects to /login; the
// handler chain is aborted before any store mutation can happen.
func SessionAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(SessionCookieName)
		if err != nil || token == "" {
			util.LogUnauthorizedAccess(c.ClientIP(), c.Request.URL.Path, "no session token")
			util.RedirectToLogin(c)
			c.Abort()
			return
		}

		identity, ok := ResolveSession(c, token)
		if !ok {
			util.LogUnauthorizedAccess(c.ClientIP(), c.Request.URL.Path, "invalid or expired session token")
			util.RedirectToLogin(c)
			c.Abort()
			return
		}

		c.Set(sessionContextKey, identity)
		c.Next()
	}
}

// ResolveSession maps a session token to its owning identity. The LRU
// cache is consulted first; on a miss the sessions table is joined with
// users, and a live result is cached for subsequent requests.
func ResolveSession(c *gin.Context, token string) (util.Identity, bool) {
	if identity, ok := util.IdentityCacheGet(token); ok {
		return identity, true
	}

	db := GetDB(c)
	if db == nil {
		return util.Identity{}, false
	}

	var result struct {
		UserID      string
		DisplayName string
		Role        string
		ExpiresAt   time.Time
	}
	err := db.Table("sessions").
		Select("sessions.user_id, users.display_name, users.role, sessions.expires_at").
		Joins("JOIN users ON sessions.user_id = users.user_id").
		Where("session_token = ? AND expires_at > ? AND sessions.deleted_at IS NULL", token, time.Now()).
		First(&result).Error
	if err != nil {
		return util.Identity{}, false
	}

	identity := util.Identity{
		UserID:      result.UserID,
		DisplayName: result.DisplayName,
		Role:        result.Role,
		ExpiresAt:   result.ExpiresAt,
	}
	util.IdentityCacheSet(token, identity)
	return identity, true
}
