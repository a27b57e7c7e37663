package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/gcbaptista/ftscore/query"
	"github.com/gcbaptista/ftscore/services"
)

// SearchRequest is the JSON body of POST /indexes/:indexName/_search.
type SearchRequest struct {
	Query  string `json:"query"`
	Offset int    `json:"offset"`
	Limit  int    `json:"limit"`
}

const defaultSearchLimit = 20

func (h *API) SearchHandler(c *gin.Context) {
	idx, ok := h.resolveIndex(c, c.Param("indexName"))
	if !ok {
		return
	}

	var req SearchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		SendInvalidJSONError(c, err)
		return
	}
	if req.Limit <= 0 {
		req.Limit = defaultSearchLimit
	}

	start := time.Now()
	hits, err := idx.Search(c.Request.Context(), req.Query, query.Range{Offset: req.Offset, Limit: req.Limit})
	if err != nil {
		SendEngineError(c, "search", err)
		return
	}

	result := services.SearchResult{
		Hits:    make([]services.HitResult, len(hits)),
		Total:   len(hits),
		Offset:  req.Offset,
		Limit:   req.Limit,
		TookMs:  time.Since(start).Milliseconds(),
		QueryId: uuid.New().String(),
	}
	for i, hit := range hits {
		result.Hits[i] = services.HitResult{
			Document: hit.Document,
			Info: services.HitInfo{
				NumTypos:         hit.NumTypos,
				NumberExactWords: hit.NumberExactWords,
			},
		}
	}
	c.JSON(http.StatusOK, result)
}
