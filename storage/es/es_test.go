package es

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"

	"workguard/types"
)

type recorded struct {
	method, path, body string
}

// fakeES answers every request with the canned body for its path suffix.
type fakeES struct {
	mu        sync.Mutex
	requests  []recorded
	responses map[string]string
	status    map[string]int

	// missingIndex makes HEAD on the index answer 404.
	missingIndex bool
}

func (f *fakeES) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, _ := io.ReadAll(r.Body)
	f.mu.Lock()
	f.requests = append(f.requests, recorded{r.Method, r.URL.Path, string(body)})
	f.mu.Unlock()

	w.Header().Set("X-Elastic-Product", "Elasticsearch")
	w.Header().Set("Content-Type", "application/json")
	if r.Method == http.MethodHead {
		if f.missingIndex {
			w.WriteHeader(http.StatusNotFound)
		}
		return
	}
	for suffix, resp := range f.responses {
		if strings.HasSuffix(r.URL.Path, suffix) {
			if code, ok := f.status[suffix]; ok {
				w.WriteHeader(code)
			}
			_, _ = io.WriteString(w, resp)
			return
		}
	}
	_, _ = io.WriteString(w, `{}`)
}

func (f *fakeES) find(method, suffix string) *recorded {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.requests {
		if f.requests[i].method == method && strings.HasSuffix(f.requests[i].path, suffix) {
			return &f.requests[i]
		}
	}
	return nil
}

func newTestIndexer(t *testing.T, f *fakeES) *ESIndexer {
	t.Helper()
	srv := httptest.NewServer(f)
	t.Cleanup(srv.Close)

	client, err := elasticsearch.NewClient(elasticsearch.Config{Addresses: []string{srv.URL}})
	require.NoError(t, err)
	idx, err := NewESIndexerWithClient(context.Background(), client, "findings", zaptest.NewLogger(t))
	require.NoError(t, err)
	return idx
}

func TestBuildQuery(t *testing.T) {
	q := buildQuery("renewal", "", 5)
	assert.Equal(t, 5, q["size"])
	boolQuery := q["query"].(map[string]any)["bool"].(map[string]any)
	assert.NotContains(t, boolQuery, "filter")

	q = buildQuery("renewal", "Critical Risk", 5)
	boolQuery = q["query"].(map[string]any)["bool"].(map[string]any)
	assert.Equal(t, []any{
		map[string]any{"term": map[string]any{"severity": "Critical Risk"}},
	}, boolQuery["filter"])
}

func TestNewESIndexer_CreatesMissingIndex(t *testing.T) {
	f := &fakeES{missingIndex: true, responses: map[string]string{"/findings": `{"acknowledged":true}`}}
	newTestIndexer(t, f)

	put := f.find(http.MethodPut, "/findings")
	require.NotNil(t, put)
	assert.Contains(t, put.body, `"description"`)
}

func TestNewESIndexer_KeepsExistingIndex(t *testing.T) {
	f := &fakeES{}
	newTestIndexer(t, f)

	assert.Nil(t, f.find(http.MethodPut, "/findings"))
}

func TestSearch(t *testing.T) {
	f := &fakeES{responses: map[string]string{
		"/_search": `{"hits":{"hits":[
			{"_id":"d1-0","_score":3.2,"_source":{"doc_id":"d1","file_name":"msa.pdf","severity":"Critical Risk","category":"Auto-Renewal","description":"It will automatically renew."}}
		]}}`,
	}}
	idx := newTestIndexer(t, f)

	hits, err := idx.Search(context.Background(), "renew", "Critical Risk", 0)
	require.NoError(t, err)
	require.Len(t, hits, 1)
	assert.Equal(t, types.FindingHit{
		DocID:       "d1",
		FileName:    "msa.pdf",
		Severity:    types.SeverityCritical,
		Category:    "Auto-Renewal",
		Description: "It will automatically renew.",
		Score:       3.2,
	}, hits[0])

	req := f.find(http.MethodPost, "/_search")
	require.NotNil(t, req)
	var body map[string]any
	require.NoError(t, json.Unmarshal([]byte(req.body), &body))
	assert.EqualValues(t, DefaultTopK, body["size"])
}

func TestSearch_ErrorResponse(t *testing.T) {
	f := &fakeES{
		responses: map[string]string{"/_search": `{"error":"index_not_found_exception"}`},
		status:    map[string]int{"/_search": http.StatusNotFound},
	}
	idx := newTestIndexer(t, f)

	_, err := idx.Search(context.Background(), "renew", "", 3)
	assert.ErrorContains(t, err, "error response")
}

func TestDeleteByDocID(t *testing.T) {
	f := &fakeES{responses: map[string]string{"/_delete_by_query": `{"deleted":2}`}}
	idx := newTestIndexer(t, f)

	require.NoError(t, idx.DeleteByDocID(context.Background(), "d1", "d2"))
	req := f.find(http.MethodPost, "/_delete_by_query")
	require.NotNil(t, req)
	assert.Contains(t, req.body, `"terms":{"doc_id":["d1","d2"]}`)

	require.NoError(t, idx.DeleteByDocID(context.Background()))
}

func TestStore(t *testing.T) {
	f := &fakeES{responses: map[string]string{
		"/_bulk": `{"took":1,"errors":false,"items":[{"index":{"_id":"d1-0","status":201}},{"index":{"_id":"d1-1","status":201}}]}`,
	}}
	idx := newTestIndexer(t, f)

	err := idx.Store(context.Background(), "d1", "msa.pdf", []types.RiskFinding{
		{Severity: types.SeverityCritical, Category: "Auto-Renewal", Description: "It will automatically renew."},
		{Severity: types.SeverityHigh, Category: "Liability", Description: "The Client shall indemnify the Provider."},
	})
	require.NoError(t, err)

	req := f.find(http.MethodPost, "/_bulk")
	require.NotNil(t, req)
	assert.Contains(t, req.body, `"_id":"d1-0"`)
	assert.Contains(t, req.body, `"severity":"High Risk"`)

	require.NoError(t, idx.Store(context.Background(), "d2", "x.pdf", nil))
}
