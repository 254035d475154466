// Package search indexes public user data in Elasticsearch.
package search

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/pkg/errors"

	"github.com/oksasatya/go-user-registry/internal/domain/entity"
)

const requestTimeout = 3 * time.Second

// Directory stores one document per username. Secrets are never indexed.
type Directory struct {
	es    *elasticsearch.Client
	index string
}

func NewDirectory(es *elasticsearch.Client, index string) *Directory {
	return &Directory{es: es, index: index}
}

const indexMapping = `{"mappings":{"properties":{"username":{"type":"text","fields":{"raw":{"type":"keyword"}}}}}}`

// EnsureIndex creates the users index with its mapping when it does not exist.
func (d *Directory) EnsureIndex(ctx context.Context) error {
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := esapi.IndicesExistsRequest{Index: []string{d.index}}.Do(c, d.es)
	if err != nil {
		return errors.Wrapf(err, "check index %q", d.index)
	}
	_ = res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}

	res, err = esapi.IndicesCreateRequest{Index: d.index, Body: strings.NewReader(indexMapping)}.Do(c, d.es)
	if err != nil {
		return errors.Wrapf(err, "create index %q", d.index)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return errors.Errorf("create index %q: %s", d.index, res.Status())
	}
	return nil
}

func (d *Directory) Index(ctx context.Context, u entity.PublicUser) error {
	b, err := json.Marshal(map[string]any{"username": u.Username})
	if err != nil {
		return err
	}
	req := esapi.IndexRequest{Index: d.index, DocumentID: u.Username, Body: strings.NewReader(string(b)), Refresh: "false"}
	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()
	res, err := req.Do(c, d.es)
	if err != nil {
		return errors.Wrapf(err, "index user %q", u.Username)
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return errors.Errorf("index user %q: %s", u.Username, res.Status())
	}
	return nil
}

// Search matches usernames by prefix or fuzzy term.
func (d *Directory) Search(ctx context.Context, q string, size int) ([]entity.PublicUser, error) {
	query := map[string]any{
		"query": map[string]any{
			"bool": map[string]any{
				"should": []any{
					map[string]any{"prefix": map[string]any{"username": strings.ToLower(q)}},
					map[string]any{"match": map[string]any{"username": map[string]any{"query": q, "fuzziness": "AUTO"}}},
				},
			},
		},
		"size": size,
	}
	b, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}

	c, cancel := context.WithTimeout(ctx, requestTimeout)
	defer cancel()

	res, err := d.es.Search(d.es.Search.WithContext(c), d.es.Search.WithIndex(d.index), d.es.Search.WithBody(strings.NewReader(string(b))))
	if err != nil {
		return nil, errors.Wrap(err, "search users")
	}
	defer func() { _ = res.Body.Close() }()
	if res.IsError() {
		return nil, errors.Errorf("search users: %s", res.Status())
	}

	return decodeHits(res.Body)
}

func decodeHits(body io.Reader) ([]entity.PublicUser, error) {
	var parsed struct {
		Hits struct {
			Hits []struct {
				ID     string            `json:"_id"`
				Source entity.PublicUser `json:"_source"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(body).Decode(&parsed); err != nil {
		return nil, errors.Wrap(err, "decode search response")
	}
	out := make([]entity.PublicUser, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		u := h.Source
		if u.Username == "" {
			u.Username = h.ID
		}
		out = append(out, u)
	}
	return out, nil
}
