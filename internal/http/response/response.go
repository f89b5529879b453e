package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the uniform error shape every failure renders as, matching
// what the dashboard frontend expects.
type ErrorBody struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
}

func RespondError(c *gin.Context, status int, err error) {
	msg := "error"
	if err != nil {
		msg = err.Error()
	}
	c.JSON(status, ErrorBody{StatusCode: status, Message: msg})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}

// RespondEmpty acknowledges success with no body.
func RespondEmpty(c *gin.Context) {
	c.Status(http.StatusOK)
}
