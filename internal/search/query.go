package search

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/search/query"
)

// SearchParams selects and orders catalog events. Zero-valued filters are ignored.
type SearchParams struct {
	Query      string   // Free text matched against names and description
	EventTypes []string // Exact event type filter (empty = all)

	// Earliest block window; zero values are open ends.
	From time.Time
	To   time.Time

	MinSessions int

	Limit  int
	Offset int

	SortBy    string // "relevance", "title", "earliest", "sessions"
	SortOrder string // "asc", "desc"

	IncludeFacets bool
	Highlight     bool
}

// DefaultSearchParams returns the first 20 hits by relevance, with highlights and Event Type facets.
func DefaultSearchParams() SearchParams {
	return SearchParams{
		Limit:         20,
		SortBy:        "relevance",
		SortOrder:     "desc",
		IncludeFacets: true,
		Highlight:     true,
	}
}

// SearchResult is one page of hits plus the facet counts over all matches.
type SearchResult struct {
	Query      string       `json:"query"`
	Total      uint64       `json:"total"`
	TookMs     int64        `json:"took_ms"`
	Hits       []SearchHit  `json:"hits"`
	EventTypes []FacetCount `json:"event_types,omitempty"`
}

// SearchHit is one matching event with its stored fields.
type SearchHit struct {
	ID               string            `json:"id"`
	Score            float64           `json:"score"`
	Title            string            `json:"title"`
	Group            string            `json:"group,omitempty"`
	System           string            `json:"system,omitempty"`
	EventType        string            `json:"event_type,omitempty"`
	ShortDescription string            `json:"short_description,omitempty"`
	EarliestBlock    time.Time         `json:"earliest_block"`
	SessionCount     int               `json:"session_count"`
	Highlights       map[string]string `json:"highlights,omitempty"`
}

// FacetCount is the number of matches sharing Value.
type FacetCount struct {
	Value string `json:"value"`
	Count int    `json:"count"`
}

// Search runs params against the index.
func (s *EventIndex) Search(ctx context.Context, params SearchParams) (*SearchResult, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	searchRequest := bleve.NewSearchRequestOptions(buildSearchQuery(params), params.Limit, params.Offset, false)
	addSorting(searchRequest, params)

	if params.IncludeFacets {
		searchRequest.AddFacet("event_type", bleve.NewFacetRequest("event_type", 20))
	}

	if params.Highlight {
		searchRequest.Highlight = bleve.NewHighlight()
		searchRequest.Highlight.AddField("title")
		searchRequest.Highlight.AddField("group")
	}

	searchRequest.Fields = []string{
		"title", "group", "system", "event_type", "short_description",
		"earliest_block", "session_count",
	}

	searchResult, err := s.index.SearchInContext(ctx, searchRequest)
	if err != nil {
		return nil, fmt.Errorf("execute search: %w", err)
	}

	result := &SearchResult{
		Query:  params.Query,
		Total:  searchResult.Total,
		TookMs: searchResult.Took.Milliseconds(),
		Hits:   make([]SearchHit, 0, len(searchResult.Hits)),
	}

	for _, hit := range searchResult.Hits {
		searchHit := SearchHit{
			ID:    hit.ID,
			Score: hit.Score,
		}

		if v, ok := hit.Fields["title"].(string); ok {
			searchHit.Title = v
		}
		if v, ok := hit.Fields["group"].(string); ok {
			searchHit.Group = v
		}
		if v, ok := hit.Fields["system"].(string); ok {
			searchHit.System = v
		}
		if v, ok := hit.Fields["event_type"].(string); ok {
			searchHit.EventType = v
		}
		if v, ok := hit.Fields["short_description"].(string); ok {
			searchHit.ShortDescription = v
		}
		if v, ok := hit.Fields["earliest_block"].(float64); ok {
			searchHit.EarliestBlock = time.Unix(int64(v), 0).UTC()
		}
		if v, ok := hit.Fields["session_count"].(float64); ok {
			searchHit.SessionCount = int(v)
		}

		if len(hit.Fragments) > 0 {
			searchHit.Highlights = make(map[string]string)
			for field, fragments := range hit.Fragments {
				if len(fragments) > 0 {
					searchHit.Highlights[field] = fragments[0]
				}
			}
		}

		result.Hits = append(result.Hits, searchHit)
	}

	if facet, ok := searchResult.Facets["event_type"]; ok && facet.Terms != nil {
		for _, term := range facet.Terms.Terms() {
			result.EventTypes = append(result.EventTypes, FacetCount{Value: term.Term, Count: term.Count})
		}
	}

	return result, nil
}

// buildSearchQuery ANDs every filter params sets; no filters matches everything.
func buildSearchQuery(params SearchParams) query.Query {
	var queries []query.Query

	// Titles weigh most, then groups and systems. A fuzzy title term catches
	// the typos that the dictionary keeps apart.
	if params.Query != "" {
		titleMatch := bleve.NewMatchQuery(params.Query)
		titleMatch.SetField("title")
		titleMatch.SetBoost(3.0)

		groupMatch := bleve.NewMatchQuery(params.Query)
		groupMatch.SetField("group")
		groupMatch.SetBoost(1.5)

		systemMatch := bleve.NewMatchQuery(params.Query)
		systemMatch.SetField("system")
		systemMatch.SetBoost(1.5)

		descMatch := bleve.NewMatchQuery(params.Query)
		descMatch.SetField("short_description")
		descMatch.SetBoost(0.5)

		fuzzyQuery := bleve.NewFuzzyQuery(strings.ToLower(params.Query))
		fuzzyQuery.SetFuzziness(1)
		fuzzyQuery.SetField("title")
		fuzzyQuery.SetBoost(0.8)

		textQueries := []query.Query{titleMatch, groupMatch, systemMatch, descMatch, fuzzyQuery}

		if len(params.Query) >= 2 {
			prefixQuery := bleve.NewPrefixQuery(strings.ToLower(params.Query))
			prefixQuery.SetField("title")
			prefixQuery.SetBoost(0.5)
			textQueries = append(textQueries, prefixQuery)
		}

		queries = append(queries, bleve.NewDisjunctionQuery(textQueries...))
	}

	if len(params.EventTypes) > 0 {
		typeQueries := make([]query.Query, len(params.EventTypes))
		for i, t := range params.EventTypes {
			tq := bleve.NewTermQuery(t)
			tq.SetField("event_type")
			typeQueries[i] = tq
		}
		queries = append(queries, bleve.NewDisjunctionQuery(typeQueries...))
	}

	if !params.From.IsZero() || !params.To.IsZero() {
		var lo, hi *float64
		if !params.From.IsZero() {
			v := float64(params.From.Unix())
			lo = &v
		}
		if !params.To.IsZero() {
			v := float64(params.To.Unix())
			hi = &v
		}
		inclusive := true
		rangeQuery := bleve.NewNumericRangeInclusiveQuery(lo, hi, &inclusive, &inclusive)
		rangeQuery.SetField("earliest_block")
		queries = append(queries, rangeQuery)
	}

	if params.MinSessions > 0 {
		lo := float64(params.MinSessions)
		inclusive := true
		rangeQuery := bleve.NewNumericRangeInclusiveQuery(&lo, nil, &inclusive, nil)
		rangeQuery.SetField("session_count")
		queries = append(queries, rangeQuery)
	}

	if len(queries) == 0 {
		return bleve.NewMatchAllQuery()
	}
	if len(queries) == 1 {
		return queries[0]
	}
	return bleve.NewConjunctionQuery(queries...)
}

// addSorting leaves relevance to bleve and maps the other keys to stored fields.
func addSorting(req *bleve.SearchRequest, params SearchParams) {
	desc := params.SortOrder == "desc"
	field := func(name string) string {
		if desc {
			return "-" + name
		}
		return name
	}

	switch params.SortBy {
	case "title":
		req.SortBy([]string{field("title"), "_id"})
	case "earliest":
		req.SortBy([]string{field("earliest_block"), "title", "_id"})
	case "sessions":
		req.SortBy([]string{field("session_count"), "_id"})
	default:
		req.SortBy([]string{"-_score", "_id"})
	}
}
