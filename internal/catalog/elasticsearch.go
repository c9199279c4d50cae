// internal/catalog/elasticsearch.go
package catalog

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"advocacy-workers/internal/eligibility"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const (
	DefaultIndex   = "benefit-programs"
	DefaultMaxSize = 500
)

// Elasticsearch reads programs from a search index. Documents are stored
// in the same shape as the JSON encoding of eligibility.Program.
type Elasticsearch struct {
	client  *elasticsearch.Client
	index   string
	maxSize int
}

func NewElasticsearch(client *elasticsearch.Client, index string, maxSize int) *Elasticsearch {
	if index == "" {
		index = DefaultIndex
	}
	if maxSize <= 0 {
		maxSize = DefaultMaxSize
	}
	return &Elasticsearch{client: client, index: index, maxSize: maxSize}
}

type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string              `json:"_id"`
			Source eligibility.Program `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

func (e *Elasticsearch) Programs(ctx context.Context) ([]eligibility.Program, error) {
	body, _ := json.Marshal(map[string]interface{}{
		"query": map[string]interface{}{
			"bool": map[string]interface{}{
				"must_not": []interface{}{
					map[string]interface{}{"term": map[string]interface{}{"active": false}},
				},
			},
		},
		"sort": []interface{}{
			map[string]interface{}{"sort_order": map[string]interface{}{"order": "asc", "unmapped_type": "integer"}},
			"_doc",
		},
	})

	size := e.maxSize
	req := esapi.SearchRequest{
		Index: []string{e.index},
		Body:  bytes.NewReader(body),
		Size:  &size,
	}

	res, err := req.Do(ctx, e.client)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("%w: search %s: %s", ErrCatalogUnavailable, e.index, res.Status())
	}

	var r searchResponse
	if err := json.NewDecoder(res.Body).Decode(&r); err != nil {
		return nil, fmt.Errorf("%w: decode search response: %v", ErrCatalogUnavailable, err)
	}

	programs := make([]eligibility.Program, 0, len(r.Hits.Hits))
	for _, hit := range r.Hits.Hits {
		p := hit.Source
		if p.ID == "" {
			p.ID = hit.ID
		}
		programs = append(programs, p)
	}
	if len(programs) == 0 {
		return nil, ErrEmptyCatalog
	}
	return programs, nil
}
