package response

import "github.com/gin-gonic/gin"

func RespondJSON(c *gin.Context, status string, code int, message string, data interface{}, errors interface{}) {
	c.JSON(code, StandardApiResponse{
		Status:     status,
		StatusCode: code,
		Message:    message,
		Data:       data,
		Errors:     errors,
	})
}

// RespondError emits an error envelope carrying a stable machine-readable
// code in addition to the human-readable message. Clients branch on Code,
// never on Message.
func RespondError(c *gin.Context, httpStatus int, code string, message string, details interface{}) {
	c.JSON(httpStatus, StandardApiResponse{
		Status:     "error",
		StatusCode: httpStatus,
		Message:    message,
		Code:       code,
		Errors:     details,
	})
}
