package usecase

import (
	"context"
	"encoding/json"
	"strings"

	"github.com/fekuna/omnipos-stock-service/internal/model"
	"github.com/fekuna/omnipos-stock-service/pkg/search"
	"github.com/juju/errors"
)

const (
	// SearchIndexName is the Elasticsearch index mirroring the catalogue.
	SearchIndexName = "products"

	searchIndexMapping = `{
		"mappings": {
			"properties": {
				"stock_code":       { "type": "keyword" },
				"stock_code_lower": { "type": "keyword" },
				"name":             { "type": "text" },
				"name_lower":       { "type": "keyword" }
			}
		}
	}`
)

// SearchIndex is the part of the Elasticsearch client the catalogue uses.
type SearchIndex interface {
	CreateIndex(ctx context.Context, index, mapping string) error
	Index(ctx context.Context, index, id string, doc interface{}) error
	Delete(ctx context.Context, index, id string) error
	Search(ctx context.Context, index string, query map[string]interface{}) (*search.SearchResponse, error)
}

// EnsureSearchIndex creates the product index if it does not exist yet.
func EnsureSearchIndex(ctx context.Context, idx SearchIndex) error {
	return idx.CreateIndex(ctx, SearchIndexName, searchIndexMapping)
}

// searchDocument only holds what matching needs. Results are loaded from the
// database so quantities are never stale.
type searchDocument struct {
	StockCode      string `json:"stock_code"`
	StockCodeLower string `json:"stock_code_lower"`
	Name           string `json:"name"`
	NameLower      string `json:"name_lower"`
}

func newSearchDocument(p *model.Product) searchDocument {
	return searchDocument{
		StockCode:      p.StockCode,
		StockCodeLower: strings.ToLower(p.StockCode),
		Name:           p.Name,
		NameLower:      strings.ToLower(p.Name),
	}
}

var wildcardEscaper = strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`)

func searchQuery(term string, limit int) map[string]interface{} {
	pattern := "*" + wildcardEscaper.Replace(strings.ToLower(term)) + "*"
	return map[string]interface{}{
		"size":    limit,
		"_source": []string{"stock_code"},
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"should": []map[string]interface{}{
					{"wildcard": map[string]interface{}{"name_lower": map[string]interface{}{"value": pattern}}},
					{"wildcard": map[string]interface{}{"stock_code_lower": map[string]interface{}{"value": pattern}}},
				},
				"minimum_should_match": 1,
			},
		},
		"sort": []map[string]interface{}{
			{"name_lower": "asc"},
			{"stock_code": "asc"},
		},
	}
}

// stockCodesFromHits pulls the matched stock codes out of a search response.
func stockCodesFromHits(res *search.SearchResponse) ([]string, error) {
	codes := make([]string, 0, len(res.Hits.Hits))
	for _, hit := range res.Hits.Hits {
		var doc searchDocument
		if err := json.Unmarshal(hit.Source, &doc); err != nil {
			return nil, errors.Annotatef(err, "decode search hit %s", hit.ID)
		}
		codes = append(codes, doc.StockCode)
	}
	return codes, nil
}
