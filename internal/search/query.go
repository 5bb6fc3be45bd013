package search

import (
	"context"
	"fmt"
	"strings"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// Searchable fields.
const (
	FieldOriginal   = "original"
	FieldTranslated = "translated"
)

// SearchParams configures a line search.
type SearchParams struct {
	Query string
	// Field restricts the search to one side; empty searches both.
	Field string
	// Phrase requires the words to appear consecutively.
	Phrase    bool
	Limit     int
	Highlight bool
}

// SearchResult holds matching lines.
type SearchResult struct {
	Query  string      `json:"query"`
	Total  uint64      `json:"total"`
	TookMs int64       `json:"took_ms"`
	Hits   []SearchHit `json:"hits"`
}

// SearchHit is one matching line.
type SearchHit struct {
	Index      int               `json:"index"`
	LineID     int               `json:"line_id"`
	Score      float64           `json:"score"`
	Original   string            `json:"original"`
	Translated string            `json:"translated,omitempty"`
	Highlights map[string]string `json:"highlights,omitempty"`
}

// Search runs a text query. Phrase searches come back in document
// order; plain searches by relevance.
func (s *LineIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := &SearchResult{Query: params.Query, Hits: []SearchHit{}}
	if strings.TrimSpace(params.Query) == "" {
		return result, nil
	}

	limit := params.Limit
	if limit <= 0 {
		count, err := s.index.DocCount()
		if err != nil {
			return nil, fmt.Errorf("count lines: %w", err)
		}
		limit = max(int(count), 1)
	}

	req := bleve.NewSearchRequestOptions(buildQuery(params), limit, 0, false)
	if params.Phrase {
		req.SortBy([]string{"index"})
	} else {
		req.SortBy([]string{"-_score", "index"})
	}
	if params.Highlight {
		req.Highlight = bleve.NewHighlight()
		req.Highlight.AddField(FieldOriginal)
		req.Highlight.AddField(FieldTranslated)
	}
	req.Fields = []string{"index", "line_id", FieldOriginal, FieldTranslated}

	res, err := s.index.SearchInContext(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result.Total = res.Total
	result.TookMs = res.Took.Milliseconds()
	for _, hit := range res.Hits {
		h := SearchHit{Score: hit.Score}
		if v, ok := hit.Fields["index"].(float64); ok {
			h.Index = int(v)
		}
		if v, ok := hit.Fields["line_id"].(float64); ok {
			h.LineID = int(v)
		}
		if v, ok := hit.Fields[FieldOriginal].(string); ok {
			h.Original = v
		}
		if v, ok := hit.Fields[FieldTranslated].(string); ok {
			h.Translated = v
		}
		if len(hit.Fragments) > 0 {
			h.Highlights = make(map[string]string, len(hit.Fragments))
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					h.Highlights[field] = fragments[0]
				}
			}
		}
		result.Hits = append(result.Hits, h)
	}
	return result, nil
}

// Occurrences returns the positions of lines whose original text
// contains term as a phrase, in document order.
func (s *LineIndex) Occurrences(ctx context.Context, term string) ([]int, error) {
	res, err := s.Search(ctx, SearchParams{Query: term, Field: FieldOriginal, Phrase: true})
	if err != nil {
		return nil, err
	}
	out := make([]int, 0, len(res.Hits))
	for _, h := range res.Hits {
		out = append(out, h.Index)
	}
	return out, nil
}

func buildQuery(params SearchParams) query.Query {
	fields := []string{FieldOriginal, FieldTranslated}
	if params.Field != "" {
		fields = []string{params.Field}
	}

	queries := make([]query.Query, 0, len(fields))
	for _, field := range fields {
		if params.Phrase {
			q := bleve.NewMatchPhraseQuery(params.Query)
			q.SetField(field)
			queries = append(queries, q)
			continue
		}
		q := bleve.NewMatchQuery(params.Query)
		q.SetField(field)
		q.SetOperator(query.MatchQueryOperatorAnd)
		queries = append(queries, q)
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewDisjunctionQuery(queries...)
}
