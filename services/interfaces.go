// Package services defines the wire-shaped request/response DTOs the HTTP
// front-end exchanges with an engine.Engine, generalizing the teacher's
// SearchQuery/SearchResult/HitResult shapes to the new automaton-driven
// query engine.
package services

import "github.com/gcbaptista/ftscore/model"

// SearchQuery is one search request against a named index.
type SearchQuery struct {
	QueryString string   `json:"query"`
	Offset      int      `json:"offset,omitempty"`
	Limit       int      `json:"limit,omitempty"`
	RankBy      []string `json:"rankBy,omitempty"` // e.g. "asc(price)", "desc(popularity)"
}

// HitInfo carries per-hit ranking metadata surfaced to the caller.
type HitInfo struct {
	NumTypos         int  `json:"numTypos"`
	NumberExactWords int  `json:"numberExactWords"`
}

// HitResult is a single matched document plus its ranking metadata.
type HitResult struct {
	Document model.Document `json:"document"`
	Info     HitInfo        `json:"hitInfo"`
}

// SearchResult is the full response of one search request. QueryId is a
// random trace id stamped on every response, independent of any
// application-level request id; the server does not log it.
type SearchResult struct {
	Hits    []HitResult `json:"hits"`
	Total   int         `json:"total"`
	Offset  int         `json:"offset"`
	Limit   int         `json:"limit"`
	TookMs  int64       `json:"tookMs"`
	QueryId string      `json:"queryId"`
}
