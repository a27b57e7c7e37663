// Package api exposes the index engine over HTTP via gin, the thin
// injected front-end the embedding API is designed to sit behind. Every
// mutating route enqueues an update and returns its id immediately
// (202 Accepted); callers poll /updates/:id for completion, mirroring the
// engine's own asynchronous update queue.
package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/ftscore/index"
	"github.com/gcbaptista/ftscore/internal/engine"
)

// API holds the catalog of indexes every handler operates against.
type API struct {
	engine *engine.Engine
}

func NewAPI(eng *engine.Engine) *API {
	return &API{engine: eng}
}

// SetupRoutes registers every route under router.
func SetupRoutes(router *gin.Engine, eng *engine.Engine) {
	h := NewAPI(eng)

	router.GET("/health", h.HealthCheckHandler)

	indexes := router.Group("/indexes")
	{
		indexes.POST("", h.CreateIndexHandler)
		indexes.GET("", h.ListIndexesHandler)
		indexes.DELETE("/:indexName", h.DeleteIndexHandler)
		indexes.PATCH("/:indexName/settings", h.UpdateSettingsHandler)

		indexes.POST("/:indexName/_search", h.SearchHandler)

		docs := indexes.Group("/:indexName/documents")
		{
			docs.POST("", h.AddDocumentsHandler)
			docs.PATCH("", h.PartialUpdateDocumentsHandler)
			docs.DELETE("", h.ClearAllHandler)
			docs.GET("/:documentId", h.GetDocumentHandler)
			docs.DELETE("/:documentId", h.DeleteDocumentsHandler)
		}

		updates := indexes.Group("/:indexName/updates")
		{
			updates.GET("", h.ListUpdatesHandler)
			updates.GET("/:updateId", h.GetUpdateHandler)
		}
	}
}

func (h *API) HealthCheckHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{
		"status":    "healthy",
		"service":   "ftscore",
		"timestamp": time.Now().Unix(),
	})
}

// CreateIndexRequest is the body of POST /indexes.
type CreateIndexRequest struct {
	Name string `json:"name" binding:"required"`
}

func (h *API) CreateIndexHandler(c *gin.Context) {
	var req CreateIndexRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendInvalidJSONError(c, err)
		return
	}
	if _, err := h.engine.CreateIndex(req.Name); err != nil {
		SendEngineError(c, "create index", err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"message": fmt.Sprintf("index %q created", req.Name)})
}

func (h *API) ListIndexesHandler(c *gin.Context) {
	names := h.engine.ListIndexes()
	c.JSON(http.StatusOK, gin.H{"indexes": names, "count": len(names)})
}

func (h *API) DeleteIndexHandler(c *gin.Context) {
	name := c.Param("indexName")
	if err := h.engine.DeleteIndex(name); err != nil {
		SendEngineError(c, "delete index", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("index %q deleted", name)})
}

// resolveIndex looks up indexName, opening it from disk if it isn't
// already registered, and writes a 404 if it genuinely doesn't exist.
func (h *API) resolveIndex(c *gin.Context, indexName string) (*index.Index, bool) {
	if idx, ok := h.engine.GetIndex(indexName); ok {
		return idx, true
	}
	idx, err := h.engine.OpenIndex(indexName)
	if err != nil {
		SendIndexNotFoundError(c, indexName)
		return nil, false
	}
	return idx, true
}
