package document

import "github.com/gin-gonic/gin"

// RegisterRoutes wires the document endpoints under the protected group.
func RegisterRoutes(r *gin.RouterGroup, h *Handler) {
	docs := r.Group("/documents")
	{
		docs.GET("", h.ListAll)
		docs.GET("/:id", h.GetByID)
		docs.GET("/:id/download", h.DownloadByID)
		docs.PUT("/:id", h.ReplaceMetadata)
		docs.DELETE("/:id", h.Delete)
	}

	owners := r.Group("/owners/:ownerId/documents")
	{
		owners.GET("", h.ListByOwner)
		owners.GET("/:category", h.ListByOwnerAndCategory)
		owners.GET("/:category/download", h.DownloadByOwnerAndCategory)
		owners.POST("/:category", h.Upload)
		owners.PUT("/:category", h.Upload)
		owners.POST("/:category/batch", h.UploadBatch)
		owners.PUT("/:category/batch", h.UploadBatch)
	}

	r.GET("/categories/:category/documents", h.ListByCategory)
	r.GET("/files/:storedName", h.DownloadByStoredName)
}
