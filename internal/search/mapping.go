package search

import (
	"github.com/blevesearch/bleve/v2"
	"github.com/blevesearch/bleve/v2/analysis/analyzer/simple"
	"github.com/blevesearch/bleve/v2/mapping"
)

// buildIndexMapping creates the mapping for line documents.
//
// Text fields use the simple analyzer (letter tokenizer plus lowercase)
// since lines can be in any language and stemming would merge glossary
// terms that translators keep apart.
func buildIndexMapping() mapping.IndexMapping {
	indexMapping := bleve.NewIndexMapping()
	indexMapping.DefaultAnalyzer = simple.Name

	docMapping := bleve.NewDocumentMapping()

	originalFieldMapping := bleve.NewTextFieldMapping()
	originalFieldMapping.Analyzer = simple.Name
	originalFieldMapping.Store = true
	originalFieldMapping.IncludeTermVectors = true // For highlighting
	docMapping.AddFieldMappingsAt("original", originalFieldMapping)

	translatedFieldMapping := bleve.NewTextFieldMapping()
	translatedFieldMapping.Analyzer = simple.Name
	translatedFieldMapping.Store = true
	translatedFieldMapping.IncludeTermVectors = true
	docMapping.AddFieldMappingsAt("translated", translatedFieldMapping)

	// Numeric fields keep results in document order.
	indexFieldMapping := bleve.NewNumericFieldMapping()
	indexFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("index", indexFieldMapping)

	lineIDFieldMapping := bleve.NewNumericFieldMapping()
	lineIDFieldMapping.Store = true
	docMapping.AddFieldMappingsAt("line_id", lineIDFieldMapping)

	indexMapping.AddDocumentMapping("_default", docMapping)

	return indexMapping
}
