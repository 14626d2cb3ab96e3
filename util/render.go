package util

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
)

// PageErrorParams carries the user-visible message and the underlying
// error for a failed page render.
type PageErrorParams struct {
	Msg string
	Err error
}

// RenderMessage renders a bare acknowledgement or error message with
// HTTP 200. Missing patient records and rejected logins respond this way
// rather than with an error status.
func RenderMessage(c *gin.Context, title, msg string) {
	c.HTML(http.StatusOK, "message.html", gin.H{
		"pageTitle": title,
		"message":   msg,
	})
}

// RenderServerError renders the generic store-failure page with HTTP 500.
// The underlying error goes to the process log, never to the browser.
func RenderServerError(c *gin.Context, params PageErrorParams) {
	if params.Err != nil {
		log.Printf("server error: %s: %v", params.Msg, params.Err)
	}
	c.HTML(http.StatusInternalServerError, "error.html", gin.H{
		"pageTitle": "something went wrong",
		"message":   params.Msg,
	})
}

// RenderNotFoundPage renders the custom 404 page for unmatched routes.
func RenderNotFoundPage(c *gin.Context) {
	c.HTML(http.StatusNotFound, "pageNotFound.html", gin.H{
		"pageTitle": "page not found",
	})
}

// RedirectToLogin sends the browser to the login page. Every gate failure
// funnels through here so unauthenticated requests never see an error page.
func RedirectToLogin(c *gin.Context) {
	c.Redirect(http.StatusFound, "/login")
}
