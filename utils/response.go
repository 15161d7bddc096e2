package utils

import "github.com/gin-gonic/gin"

// JSONSuccess writes body with "success": true merged in.
func JSONSuccess(c *gin.Context, code int, body gin.H) {
	if body == nil {
		body = gin.H{}
	}
	body["success"] = true
	c.JSON(code, body)
}

func JSONError(c *gin.Context, code int, message string) {
	c.JSON(code, gin.H{"success": false, "message": message})
}

// JSONErrorWith is JSONError plus extra fields (e.g. the validator's error list).
func JSONErrorWith(c *gin.Context, code int, message string, extra gin.H) {
	body := gin.H{"success": false, "message": message}
	for k, v := range extra {
		body[k] = v
	}
	c.JSON(code, body)
}
