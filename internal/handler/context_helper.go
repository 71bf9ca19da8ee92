package handler

import "github.com/gin-gonic/gin"

const (
	userHeader       = "X-User-ID"
	defaultNamespace = "default"
)

// namespaceFromRequest resolves the per-user namespace key for the group
// store. Anonymous requests share the default namespace.
func namespaceFromRequest(c *gin.Context) string {
	if ns := c.GetHeader(userHeader); ns != "" {
		return ns
	}
	return defaultNamespace
}
