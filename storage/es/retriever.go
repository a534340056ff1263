package es

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/elastic/go-elasticsearch/v8/esapi"
	"go.uber.org/zap"

	"workguard/types"
)

const DefaultTopK = 10

// searchResponse 只解析需要的字段
type searchResponse struct {
	Hits struct {
		Hits []struct {
			ID     string     `json:"_id"`
			Score  float64    `json:"_score"`
			Source findingDoc `json:"_source"`
		} `json:"hits"`
	} `json:"hits"`
}

// buildQuery BM25 匹配描述和文件名，severity 为精确过滤
func buildQuery(query, severity string, topK int) map[string]any {
	boolQuery := map[string]any{
		"must": []any{
			map[string]any{
				"multi_match": map[string]any{
					"query":  query,
					"fields": []string{"description^2", "file_name", "category"},
				},
			},
		},
	}
	if severity != "" {
		boolQuery["filter"] = []any{
			map[string]any{"term": map[string]any{"severity": severity}},
		}
	}
	return map[string]any{
		"size":  topK,
		"query": map[string]any{"bool": boolQuery},
	}
}

// Search 执行 ES 检索
// query: 关键词查询语句（用于 BM25）
// severity: 可选，如 "Critical Risk"
// topK: 返回结果数量，<=0 时取 DefaultTopK
func (e *ESIndexer) Search(ctx context.Context, query, severity string, topK int) ([]types.FindingHit, error) {
	if topK <= 0 {
		topK = DefaultTopK
	}

	var buf strings.Builder
	if err := json.NewEncoder(&buf).Encode(buildQuery(query, severity, topK)); err != nil {
		return nil, fmt.Errorf("error encoding query: %w", err)
	}
	e.log.Debug("search", zap.String("query", buf.String()))

	req := esapi.SearchRequest{
		Index: []string{e.index},
		Body:  strings.NewReader(buf.String()),
	}
	res, err := req.Do(ctx, e.client)
	if err != nil {
		return nil, fmt.Errorf("error getting response: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("error response: %s", res.String())
	}

	var parsed searchResponse
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("error parsing response body: %w", err)
	}

	hits := make([]types.FindingHit, 0, len(parsed.Hits.Hits))
	for _, h := range parsed.Hits.Hits {
		hits = append(hits, types.FindingHit{
			DocID:       h.Source.DocID,
			FileName:    h.Source.FileName,
			Severity:    types.Severity(h.Source.Severity),
			Category:    h.Source.Category,
			Description: h.Source.Description,
			Score:       h.Score,
		})
	}
	e.log.Debug("retrieved", zap.Int("hits", len(hits)))
	return hits, nil
}
