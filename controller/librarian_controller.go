package controller

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/alexdjulin/ai-librarian/models"
	"github.com/alexdjulin/ai-librarian/services"
	"github.com/alexdjulin/ai-librarian/vectordb"
)

// LibrarianController handles the HTTP requests of the librarian API. It
// depends on the chat service for conversation turns and on the engine and
// maintenance facade for direct cache access.
type LibrarianController struct {
	librarian   services.LibrarianService
	engine      *vectordb.Engine
	maintenance *vectordb.Maintenance
}

// NewLibrarianController creates a new controller. Called from main.go to
// inject the dependencies.
func NewLibrarianController(librarian services.LibrarianService, engine *vectordb.Engine, maintenance *vectordb.Maintenance) *LibrarianController {
	return &LibrarianController{
		librarian:   librarian,
		engine:      engine,
		maintenance: maintenance,
	}
}

// Chat is the Gin handler for POST /api/v1/chat.
func (c *LibrarianController) Chat(ctx *gin.Context) {
	var req models.ChatRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	response, err := c.librarian.Chat(ctx.Request.Context(), req)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to generate a response"})
		return
	}
	ctx.JSON(http.StatusOK, response)
}

// AddDocument is the Gin handler for POST /api/v1/documents. It feeds the
// admission path directly; gate rejections are silent by design, so the
// response only acknowledges the request.
func (c *LibrarianController) AddDocument(ctx *gin.Context) {
	var req models.AddDocumentRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if req.Text == "" || req.Collection == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Fields 'text' and 'collection' are required"})
		return
	}

	if err := c.engine.AddToCollection(ctx.Request.Context(), req.Text, req.Collection, req.Metadata); err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add document"})
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"message": "Document processed"})
}

// SearchDocuments is the Gin handler for POST /api/v1/search. An empty
// result set is a cache miss, returned as 200 with empty arrays.
func (c *LibrarianController) SearchDocuments(ctx *gin.Context) {
	var req models.SearchRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}
	if req.Query == "" || req.Collection == "" {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Fields 'query' and 'collection' are required"})
		return
	}

	response, err := c.engine.SearchCollection(ctx.Request.Context(), req.Query, req.Collection, req.NResults)
	if err != nil {
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to search collection"})
		return
	}
	ctx.JSON(http.StatusOK, response)
}

// ListDocuments is the Gin handler for GET /api/v1/collections/:name/documents.
// Full scan; operator use only.
func (c *LibrarianController) ListDocuments(ctx *gin.Context) {
	name := ctx.Param("name")
	docs, err := c.maintenance.Contents(ctx.Request.Context(), name)
	if err != nil {
		c.maintenanceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, models.ListDocumentsResponse{Count: len(docs), Documents: docs})
}

// CountDocuments is the Gin handler for GET /api/v1/collections/:name/count.
func (c *LibrarianController) CountDocuments(ctx *gin.Context) {
	name := ctx.Param("name")
	count, err := c.maintenance.Count(ctx.Request.Context(), name)
	if err != nil {
		c.maintenanceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"collection": name, "count": count})
}

// RemoveDuplicates is the Gin handler for POST /api/v1/collections/:name/dedup.
func (c *LibrarianController) RemoveDuplicates(ctx *gin.Context) {
	name := ctx.Param("name")
	removed, err := c.maintenance.RemoveDuplicatesByQueryOrTitle(ctx.Request.Context(), name)
	if err != nil {
		c.maintenanceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"collection": name, "removed": removed})
}

// ResetCollection is the Gin handler for POST /api/v1/collections/:name/reset.
// Requires the exact confirmation token in the request body.
func (c *LibrarianController) ResetCollection(ctx *gin.Context) {
	name := ctx.Param("name")
	var req models.ResetRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body: " + err.Error()})
		return
	}

	err := c.maintenance.ResetCollection(ctx.Request.Context(), name, req.Confirmation)
	if errors.Is(err, vectordb.ErrNotConfirmed) {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "Reset not confirmed. No changes were made."})
		return
	}
	if err != nil {
		c.maintenanceError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, gin.H{"message": "Collection '" + name + "' has been reset"})
}

func (c *LibrarianController) maintenanceError(ctx *gin.Context, err error) {
	if errors.Is(err, vectordb.ErrCollectionNotFound) {
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusInternalServerError, gin.H{"error": "Maintenance operation failed"})
}
