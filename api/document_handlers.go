package api

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/ftscore/update"
)

func parseUpdateID(s string) (uint64, error) {
	return strconv.ParseUint(s, 10, 64)
}

// enqueuedResponse is the common 202 body for every route that pushes work
// onto an index's update queue.
type enqueuedResponse struct {
	UpdateID uint64 `json:"updateId"`
}

// AddDocumentsHandler accepts either a single JSON object or an array of
// objects and enqueues them as a DocumentsAddition.
func (h *API) AddDocumentsHandler(c *gin.Context) {
	idx, ok := h.resolveIndex(c, c.Param("indexName"))
	if !ok {
		return
	}

	docs, err := bindDocuments(c)
	if err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	id, err := idx.DocumentsAddition(c.Request.Context(), docs)
	if err != nil {
		SendEngineError(c, "enqueue document addition", err)
		return
	}
	c.JSON(http.StatusAccepted, enqueuedResponse{UpdateID: id})
}

// PartialUpdateDocumentsHandler enqueues a DocumentsPartial update: every
// patch is merged onto the existing stored document by identifier.
func (h *API) PartialUpdateDocumentsHandler(c *gin.Context) {
	idx, ok := h.resolveIndex(c, c.Param("indexName"))
	if !ok {
		return
	}

	docs, err := bindDocuments(c)
	if err != nil {
		SendInvalidJSONError(c, err)
		return
	}

	id, err := idx.DocumentsPartialAddition(c.Request.Context(), docs)
	if err != nil {
		SendEngineError(c, "enqueue partial update", err)
		return
	}
	c.JSON(http.StatusAccepted, enqueuedResponse{UpdateID: id})
}

func bindDocuments(c *gin.Context) ([]map[string]interface{}, error) {
	var raw interface{}
	if err := c.ShouldBindJSON(&raw); err != nil {
		return nil, err
	}
	switch v := raw.(type) {
	case []interface{}:
		docs := make([]map[string]interface{}, 0, len(v))
		for _, item := range v {
			if m, ok := item.(map[string]interface{}); ok {
				docs = append(docs, m)
			}
		}
		return docs, nil
	case map[string]interface{}:
		return []map[string]interface{}{v}, nil
	default:
		return nil, errInvalidDocumentBody
	}
}

var errInvalidDocumentBody = &invalidBodyError{}

type invalidBodyError struct{}

func (*invalidBodyError) Error() string {
	return "expected a JSON document object or an array of document objects"
}

// ClearAllHandler enqueues a ClearAll update for the index.
func (h *API) ClearAllHandler(c *gin.Context) {
	idx, ok := h.resolveIndex(c, c.Param("indexName"))
	if !ok {
		return
	}
	id, err := idx.ClearAll(c.Request.Context())
	if err != nil {
		SendEngineError(c, "enqueue clear all", err)
		return
	}
	c.JSON(http.StatusAccepted, enqueuedResponse{UpdateID: id})
}

// DeleteDocumentsHandler enqueues a DocumentsDeletion for the one
// identifier in the path.
func (h *API) DeleteDocumentsHandler(c *gin.Context) {
	idx, ok := h.resolveIndex(c, c.Param("indexName"))
	if !ok {
		return
	}
	id, err := idx.DocumentsDeletion(c.Request.Context(), []string{c.Param("documentId")})
	if err != nil {
		SendEngineError(c, "enqueue document deletion", err)
		return
	}
	c.JSON(http.StatusAccepted, enqueuedResponse{UpdateID: id})
}

// GetDocumentHandler reads a document back synchronously from the current
// on-disk snapshot (not routed through the update queue).
func (h *API) GetDocumentHandler(c *gin.Context) {
	idx, ok := h.resolveIndex(c, c.Param("indexName"))
	if !ok {
		return
	}
	doc, err := idx.Document(c.Request.Context(), c.Param("documentId"))
	if err != nil {
		SendEngineError(c, "get document", err)
		return
	}
	c.JSON(http.StatusOK, doc)
}

// UpdateSettingsHandler enqueues a Settings update from the raw tri-state
// JSON payload (absent/null/value), letting update.SettingsUpdate's own
// UnmarshalJSON distinguish the three states.
func (h *API) UpdateSettingsHandler(c *gin.Context) {
	idx, ok := h.resolveIndex(c, c.Param("indexName"))
	if !ok {
		return
	}
	var settings update.SettingsUpdate
	if err := c.ShouldBindJSON(&settings); err != nil {
		SendInvalidJSONError(c, err)
		return
	}
	id, err := idx.SettingsUpdate(c.Request.Context(), settings)
	if err != nil {
		SendEngineError(c, "enqueue settings update", err)
		return
	}
	c.JSON(http.StatusAccepted, enqueuedResponse{UpdateID: id})
}

func (h *API) GetUpdateHandler(c *gin.Context) {
	idx, ok := h.resolveIndex(c, c.Param("indexName"))
	if !ok {
		return
	}
	id, err := parseUpdateID(c.Param("updateId"))
	if err != nil {
		SendInvalidJSONError(c, err)
		return
	}
	status, found, err := idx.UpdateStatus(c.Request.Context(), id)
	if err != nil {
		SendEngineError(c, "get update status", err)
		return
	}
	if !found {
		SendError(c, http.StatusNotFound, ErrorCodeDocumentNotFound, "update not found")
		return
	}
	c.JSON(http.StatusOK, status)
}

func (h *API) ListUpdatesHandler(c *gin.Context) {
	idx, ok := h.resolveIndex(c, c.Param("indexName"))
	if !ok {
		return
	}
	statuses, err := idx.AllUpdatesStatus(c.Request.Context())
	if err != nil {
		SendEngineError(c, "list updates", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"updates": statuses})
}
