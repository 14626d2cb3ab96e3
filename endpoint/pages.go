package endpoint

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/xyzhospital/frontdesk/middleware"
	"github.com/xyzhospital/frontdesk/util"
)

// Index renders the public welcome page. Served for both / and /index
// with no session gate.
func Index(c *gin.Context) {
	c.HTML(http.StatusOK, "index.html", gin.H{
		"pageTitle": "Welcome to XYZ Hospital",
	})
}

// UserHomepage renders the authenticated landing page for staff.
func UserHomepage(c *gin.Context) {
	identity, ok := middleware.GetSessionUser(c)
	if !ok {
		util.RedirectToLogin(c)
		return
	}

	c.HTML(http.StatusOK, "userHomepage.html", gin.H{
		"pageTitle":   "User Home Page",
		"userID":      identity.UserID,
		"displayName": identity.DisplayName,
		"role":        identity.Role,
	})
}
