package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/keyword"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/analysis/lang/en"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the Bleve index mapping for event documents.
//
// Names get English stemming and term vectors for highlighting. Event type is
// a keyword so it can be filtered and faceted exactly. Earliest block and
// session count are numeric for range filters and sorting.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = en.AnalyzerName

	docMapping := bleve.NewDocumentMapping()

	// --- Text fields ---

	titleFieldMapping := bleve.NewTextFieldMapping()
	titleFieldMapping.Analyzer = en.AnalyzerName
	titleFieldMapping.Store = true
	titleFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("title", titleFieldMapping)

	groupFieldMapping := bleve.NewTextFieldMapping()
	groupFieldMapping.Analyzer = en.AnalyzerName
	groupFieldMapping.Store = true
	groupFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("group", groupFieldMapping)

	systemFieldMapping := bleve.NewTextFieldMapping()
	systemFieldMapping.Analyzer = en.AnalyzerName
	systemFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("system", systemFieldMapping)

	// Editions are short tokens like "5e" or "2nd"; no stemming.
	editionFieldMapping := bleve.NewTextFieldMapping()
	editionFieldMapping.Analyzer = simple.Name
	editionFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("edition", editionFieldMapping)

	descFieldMapping := bleve.NewTextFieldMapping()
	descFieldMapping.Analyzer = en.AnalyzerName
	descFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("short_description", descFieldMapping)

	// --- Keyword fields ---

	typeFieldMapping := bleve.NewTextFieldMapping()
	typeFieldMapping.Analyzer = keyword.Name
	typeFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("event_type", typeFieldMapping)

	idFieldMapping := bleve.NewTextFieldMapping()
	idFieldMapping.Analyzer = keyword.Name
	docMapping.AddFieldMappingsAt("id", idFieldMapping)

	// --- Numeric fields ---

	earliestFieldMapping := bleve.NewNumericFieldMapping()
	earliestFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("earliest_block", earliestFieldMapping)

	blockDurationFieldMapping := bleve.NewNumericFieldMapping()
	blockDurationFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("block_duration", blockDurationFieldMapping)

	sessionsFieldMapping := bleve.NewNumericFieldMapping()
	sessionsFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("session_count", sessionsFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
