package endpoint

import (
	"crypto/rand"
	"encoding/hex"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v4"
	"gorm.io/gorm"

	"github.com/xyzhospital/frontdesk/middleware"
	"github.com/xyzhospital/frontdesk/model"
	"github.com/xyzhospital/frontdesk/util"
)

const sessionLifetime = 12 * time.Hour

// helper types to simplify the login flow
type clientInfo struct {
	IP    string
	Agent string
}

type loginContext struct {
	C        *gin.Context
	DB       *gorm.DB
	Username string
	CI       clientInfo
}

// LoginForm handles GET /login. A browser that already holds a valid
// session is sent straight to the home page without re-checking
// credentials.
func LoginForm(c *gin.Context) {
	if token, err := c.Cookie(middleware.SessionCookieName); err == nil && token != "" {
		if _, ok := middleware.ResolveSession(c, token); ok {
			c.Redirect(http.StatusFound, "/user")
			return
		}
	}

	c.HTML(http.StatusOK, "login.html", gin.H{
		"pageTitle": "login",
	})
}

// Login handles the login form submission. The submitted password is
// digested with the same function used at seeding time and the user row
// must match both the username and the digest. Success issues a signed
// session token tracked in the sessions table.
func Login(c *gin.Context) {
	if token, err := c.Cookie(middleware.SessionCookieName); err == nil && token != "" {
		if _, ok := middleware.ResolveSession(c, token); ok {
			c.Redirect(http.StatusFound, "/user")
			return
		}
	}

	username := c.PostForm("user_name")
	password := c.PostForm("user_password")

	db, ok := getDBOrRespond(c)
	if !ok {
		return
	}

	ci := clientInfo{IP: c.ClientIP(), Agent: c.Request.UserAgent()}
	ctx := loginContext{C: c, DB: db, Username: username, CI: ci}

	user, ok := loadUserForLogin(ctx, password)
	if !ok {
		return
	}

	finalizeLogin(ctx, user)
}

// loadUserForLogin looks up a user matching both the submitted username
// and password digest. The username may be either the staff id or the
// display name. A miss renders the plain rejection message with no
// cookies set.
func loadUserForLogin(ctx loginContext, password string) (model.User, bool) {
	digest := util.HashPassword(password)

	var user model.User
	err := ctx.DB.
		Where("(user_id = ? OR display_name = ?) AND password_hash = ?", ctx.Username, ctx.Username, digest).
		First(&user).Error
	if err == gorm.ErrRecordNotFound {
		util.LogLoginFailure(ctx.Username, ctx.CI.IP, ctx.CI.Agent, "no matching credentials")
		util.RenderMessage(ctx.C, "login", "No such user exists")
		return model.User{}, false
	}
	if err != nil {
		util.LogLoginFailure(ctx.Username, ctx.CI.IP, ctx.CI.Agent, "database error")
		util.RenderServerError(ctx.C, util.PageErrorParams{Msg: "Failed to look up user", Err: err})
		return model.User{}, false
	}
	return user, true
}

func createSessionToken(user model.User) (string, error) {
	jti := make([]byte, 16)
	if _, err := rand.Read(jti); err != nil {
		return "", err
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":  user.UserID,
		"name": user.DisplayName,
		"role": user.Role,
		"iat":  time.Now().Unix(),
		"exp":  time.Now().Add(sessionLifetime).Unix(),
		"jti":  hex.EncodeToString(jti),
	})
	return token.SignedString(util.GetJWTSecretByte())
}

func recordSession(db *gorm.DB, user model.User, token string, ci clientInfo, expires time.Time) (model.Session, error) {
	session := model.Session{
		UserID:       user.UserID,
		SessionToken: token,
		ExpiresAt:    expires,
		ClientIP:     ci.IP,
		Browser:      ci.Agent,
	}
	err := db.Create(&session).Error
	return session, err
}

func finalizeLogin(ctx loginContext, user model.User) {
	tokenString, err := createSessionToken(user)
	if err != nil {
		util.LogLoginFailure(ctx.Username, ctx.CI.IP, ctx.CI.Agent, "token generation failed")
		util.RenderServerError(ctx.C, util.PageErrorParams{Msg: "Could not create session", Err: err})
		return
	}

	expires := time.Now().Add(sessionLifetime)
	session, err := recordSession(ctx.DB, user, tokenString, ctx.CI, expires)
	if err != nil {
		util.LogLoginFailure(ctx.Username, ctx.CI.IP, ctx.CI.Agent, "session creation failed")
		util.RenderServerError(ctx.C, util.PageErrorParams{Msg: "Failed to record session", Err: err})
		return
	}

	// Mirror to Redis and warm the identity cache (both best-effort).
	_ = util.MirrorSession(user.UserID, user.Role, tokenString, session.ExpiresAt)
	util.IdentityCacheSet(tokenString, util.Identity{
		UserID:      user.UserID,
		DisplayName: user.DisplayName,
		Role:        user.Role,
		ExpiresAt:   session.ExpiresAt,
	})

	setSessionCookies(ctx.C, user, tokenString)

	util.LogLoginSuccess(user.UserID, ctx.CI.IP, ctx.CI.Agent)
	ctx.C.Redirect(http.StatusFound, "/user")
}

// setSessionCookies sets the HttpOnly session token plus the three
// display cookies the pages read. None carry an expiry, so they last
// until the browser clears them or logout overwrites them.
func setSessionCookies(c *gin.Context, user model.User, token string) {
	c.SetCookie(middleware.SessionCookieName, token, 0, "/", "", false, true)
	c.SetCookie(middleware.CookieUserID, user.UserID, 0, "/", "", false, false)
	c.SetCookie(middleware.CookieUserName, user.DisplayName, 0, "/", "", false, false)
	c.SetCookie(middleware.CookieUserType, user.Role, 0, "/", "", false, false)
}

func clearSessionCookies(c *gin.Context) {
	c.SetCookie(middleware.SessionCookieName, "", -1, "/", "", false, true)
	c.SetCookie(middleware.CookieUserID, "", -1, "/", "", false, false)
	c.SetCookie(middleware.CookieUserName, "", -1, "/", "", false, false)
	c.SetCookie(middleware.CookieUserType, "", -1, "/", "", false, false)
}

// Logout clears the session unconditionally and redirects to the login
// page. No authentication check is required to call it.
func Logout(c *gin.Context) {
	token, err := c.Cookie(middleware.SessionCookieName)
	if err == nil && token != "" {
		if db := middleware.GetDB(c); db != nil {
			var session model.Session
			if err := db.Where("session_token = ?", token).First(&session).Error; err == nil {
				if err := db.Where("session_token = ?", token).Delete(&session).Error; err != nil {
					util.RenderServerError(c, util.PageErrorParams{Msg: "Failed to delete session", Err: err})
					return
				}
				_ = util.DropSession(session.UserID, token)
				util.LogLogout(session.UserID, c.ClientIP(), c.Request.UserAgent())
			}
		}
		util.IdentityCacheDelete(token)
	}

	clearSessionCookies(c)
	c.Redirect(http.StatusFound, "/login")
}
