package forum

import (
	"bytes"
	"context"
	"encoding/json"
	"strconv"
	"strings"
	"sync"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
	"github.com/gazebo-web/gz-go/v7"
	"github.com/pkg/errors"
)

// TopicsIndex is the name of the ElasticSearch index holding forum topics.
const TopicsIndex = "forum_topics"

// TopicIndex is a full text index of forum topics.
type TopicIndex interface {
	// Index adds or replaces a topic in the index.
	Index(ctx context.Context, t *Topic) error
	// Remove removes a topic from the index.
	Remove(ctx context.Context, id uint) error
	// Search returns the ids of the topics matching the query, in relevance
	// order, and the total number of hits.
	Search(ctx context.Context, query string, page, perPage int64) ([]uint, int64, error)
}

// This is the structure of the data stored in the topics index.
type topicElastic struct {
	Title          string `json:"title"`
	Content        string `json:"content"`
	PreviewContent string `json:"preview_content"`
	SectionID      uint   `json:"section_id"`
	AuthorID       uint   `json:"author_id"`
}

// ElasticIndex is a TopicIndex backed by ElasticSearch.
type ElasticIndex struct {
	mu     sync.RWMutex
	client *elasticsearch.Client
	index  string
}

// NewElasticIndex creates an ElasticIndex using the given client.
func NewElasticIndex(client *elasticsearch.Client, index string) *ElasticIndex {
	return &ElasticIndex{client: client, index: index}
}

// SetClient replaces the client, e.g. after reconnecting to a new server.
func (ei *ElasticIndex) SetClient(client *elasticsearch.Client) {
	ei.mu.Lock()
	defer ei.mu.Unlock()
	ei.client = client
}

// Client returns the current client. It can be nil.
func (ei *ElasticIndex) Client() *elasticsearch.Client {
	ei.mu.RLock()
	defer ei.mu.RUnlock()
	return ei.client
}

// Name returns the name of the index.
func (ei *ElasticIndex) Name() string {
	return ei.index
}

// Index adds or replaces a topic in the index.
func (ei *ElasticIndex) Index(ctx context.Context, t *Topic) error {
	client := ei.Client()
	if client == nil {
		return nil
	}

	doc, err := json.Marshal(&topicElastic{
		Title:          t.Title,
		Content:        t.Content,
		PreviewContent: t.PreviewContent,
		SectionID:      t.SectionID,
		AuthorID:       t.AuthorID,
	})
	if err != nil {
		return err
	}

	req := esapi.IndexRequest{
		Index:      ei.index,
		DocumentID: strconv.FormatUint(uint64(t.ID), 10),
		Body:       bytes.NewReader(doc),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, client)
	if err != nil {
		return errors.Wrap(err, "error indexing topic")
	}
	defer res.Body.Close()
	if res.IsError() {
		return errors.Errorf("[%s] error indexing topic ID: %d", res.Status(), t.ID)
	}
	gz.LoggerFromContext(ctx).Debug("[", res.Status(), "] indexed topic ID:", t.ID)
	return nil
}

// Remove removes a topic from the index. Missing documents are ignored.
func (ei *ElasticIndex) Remove(ctx context.Context, id uint) error {
	client := ei.Client()
	if client == nil {
		return nil
	}

	req := esapi.DeleteRequest{
		Index:      ei.index,
		DocumentID: strconv.FormatUint(uint64(id), 10),
		Refresh:    "true",
	}
	res, err := req.Do(ctx, client)
	if err != nil {
		return errors.Wrap(err, "error removing topic")
	}
	defer res.Body.Close()
	if res.IsError() && res.StatusCode != 404 {
		return errors.Errorf("[%s] error removing topic ID: %d", res.Status(), id)
	}
	return nil
}

// Search performs a query_string search over titles and contents.
func (ei *ElasticIndex) Search(ctx context.Context, query string, page, perPage int64) ([]uint, int64, error) {
	client := ei.Client()
	if client == nil {
		return nil, 0, errors.New("no elasticsearch client")
	}

	var q map[string]interface{}
	if strings.TrimSpace(query) == "" {
		q = map[string]interface{}{
			"query": map[string]interface{}{
				"match_all": map[string]interface{}{},
			},
		}
	} else {
		q = map[string]interface{}{
			"query": map[string]interface{}{
				"query_string": map[string]interface{}{
					"query":  query,
					"fields": []string{"title^2", "preview_content", "content"},
				},
			},
		}
	}

	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(q); err != nil {
		return nil, 0, errors.Wrap(err, "error encoding search query")
	}

	res, err := client.Search(
		client.Search.WithContext(ctx),
		client.Search.WithIndex(ei.index),
		client.Search.WithBody(&buf),
		client.Search.WithTrackTotalHits(true),
		client.Search.WithFrom(int((gz.Max(page, 1)-1)*perPage)),
		client.Search.WithSize(int(perPage)),
	)
	if err != nil {
		return nil, 0, errors.Wrap(err, "error getting search response")
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, 0, errors.Errorf("search error: %s", res.String())
	}

	var result struct {
		Hits struct {
			Total struct {
				Value int64 `json:"value"`
			} `json:"total"`
			Hits []struct {
				ID string `json:"_id"`
			} `json:"hits"`
		} `json:"hits"`
	}
	if err := json.NewDecoder(res.Body).Decode(&result); err != nil {
		return nil, 0, errors.Wrap(err, "error parsing the search response body")
	}

	ids := make([]uint, 0, len(result.Hits.Hits))
	for _, hit := range result.Hits.Hits {
		id, err := strconv.ParseUint(hit.ID, 10, 64)
		if err != nil {
			gz.LoggerFromContext(ctx).Error("Unable to convert ID to uint.", hit.ID)
			continue
		}
		ids = append(ids, uint(id))
	}
	return ids, result.Hits.Total.Value, nil
}

// topicsMappings is the set of mappings of the topics index.
const topicsMappings = `{
  "mappings": {
    "properties": {
      "title": {"type": "text", "fields": {"keyword": {"type": "keyword", "ignore_above": 256}}},
      "preview_content": {"type": "text"},
      "content": {"type": "text"},
      "section_id": {"type": "long"},
      "author_id": {"type": "long"}
    }
  }
}`

// CreateIndex creates the index and its mappings, if missing.
func (ei *ElasticIndex) CreateIndex(ctx context.Context) error {
	client := ei.Client()
	if client == nil {
		return nil
	}

	existsReq := esapi.IndicesExistsRequest{Index: []string{ei.index}}
	res, err := existsReq.Do(ctx, client)
	if err != nil {
		return errors.Wrap(err, "error checking the index")
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil
	}

	createReq := esapi.IndicesCreateRequest{
		Index: ei.index,
		Body:  strings.NewReader(topicsMappings),
	}
	res, err = createReq.Do(ctx, client)
	if err != nil {
		return errors.Wrap(err, "error creating the index")
	}
	defer res.Body.Close()
	if res.IsError() {
		return errors.Errorf("error creating the index: %s", res.String())
	}
	gz.LoggerFromContext(ctx).Info("Created elastic search index ", ei.index)
	return nil
}

// DeleteIndex deletes the index.
func (ei *ElasticIndex) DeleteIndex(ctx context.Context) error {
	client := ei.Client()
	if client == nil {
		return nil
	}
	req := esapi.IndicesDeleteRequest{Index: []string{ei.index}}
	res, err := req.Do(ctx, client)
	if err != nil {
		return errors.Wrap(err, "error deleting the index")
	}
	res.Body.Close()
	return nil
}
