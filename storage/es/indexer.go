package es

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync/atomic"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esutil"
	"go.uber.org/zap"

	"workguard/types"
)

// findingDoc 风险条款在 ES 中的文档结构
type findingDoc struct {
	DocID       string `json:"doc_id"`
	FileName    string `json:"file_name"`
	Severity    string `json:"severity"`
	Category    string `json:"category"`
	Description string `json:"description"`
}

const mapping = `
{
  "settings": {
	"number_of_shards": 1,
	"number_of_replicas": 0
  },
  "mappings": {
	"properties": {
	  "doc_id":      { "type": "keyword" },
	  "file_name":   { "type": "text", "fields": { "keyword": { "type": "keyword" } } },
	  "severity":    { "type": "keyword" },
	  "category":    { "type": "keyword" },
	  "description": { "type": "text", "analyzer": "english" }
	}
  }
}`

// ESIndexer 风险条款索引，一条风险句一个文档
type ESIndexer struct {
	client *elasticsearch.Client
	index  string
	log    *zap.Logger
}

// NewESIndexer 初始化 ES 客户端并确保索引存在
func NewESIndexer(ctx context.Context, addresses []string, indexName string, log *zap.Logger) (*ESIndexer, error) {
	es, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: addresses,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating the client: %w", err)
	}
	return NewESIndexerWithClient(ctx, es, indexName, log)
}

func NewESIndexerWithClient(ctx context.Context, client *elasticsearch.Client, indexName string, log *zap.Logger) (*ESIndexer, error) {
	if log == nil {
		log = zap.NewNop()
	}
	indexer := &ESIndexer{client: client, index: indexName, log: log.Named("es")}

	if err := indexer.initMapping(ctx); err != nil {
		return nil, err
	}
	return indexer, nil
}

func (e *ESIndexer) initMapping(ctx context.Context) error {
	// 1. 检查索引是否存在
	res, err := e.client.Indices.Exists([]string{e.index}, e.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == 200 {
		return nil // 已存在，跳过
	}

	e.log.Info("creating index", zap.String("index", e.index))
	res, err = e.client.Indices.Create(
		e.index,
		e.client.Indices.Create.WithBody(strings.NewReader(mapping)),
		e.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index error: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return fmt.Errorf("create index response error: %s", res.String())
	}
	return nil
}

// Store 批量写入一份合同的全部风险句
func (e *ESIndexer) Store(ctx context.Context, docID, fileName string, findings []types.RiskFinding) error {
	if len(findings) == 0 {
		return nil
	}
	bi, err := esutil.NewBulkIndexer(esutil.BulkIndexerConfig{
		Index:   e.index,
		Client:  e.client,
		Refresh: "wait_for",
	})
	if err != nil {
		return err
	}

	var failed atomic.Int64
	for i, f := range findings {
		data, err := json.Marshal(findingDoc{
			DocID:       docID,
			FileName:    fileName,
			Severity:    string(f.Severity),
			Category:    f.Category,
			Description: f.Description,
		})
		if err != nil {
			return err
		}

		// 加入批量队列
		err = bi.Add(ctx, esutil.BulkIndexerItem{
			Action:     "index",
			DocumentID: fmt.Sprintf("%s-%d", docID, i), // 避免重复写入
			Body:       strings.NewReader(string(data)),
			OnFailure: func(_ context.Context, item esutil.BulkIndexerItem, res esutil.BulkIndexerResponseItem, err error) {
				failed.Add(1)
				e.log.Warn("index finding failed",
					zap.String("id", item.DocumentID),
					zap.String("reason", res.Error.Reason),
					zap.Error(err))
			},
		})
		if err != nil {
			return err
		}
	}

	if err := bi.Close(ctx); err != nil {
		return err
	}
	if n := failed.Load(); n > 0 {
		return fmt.Errorf("%d of %d findings failed to index", n, len(findings))
	}
	e.log.Debug("findings indexed", zap.String("doc_id", docID), zap.Int("count", len(findings)))
	return nil
}

func (e *ESIndexer) DeleteByDocID(ctx context.Context, docIDs ...string) error {
	if len(docIDs) == 0 {
		return nil
	}
	// 构造查询语句：{"query": {"terms": {"doc_id": [...]}}}
	query := map[string]any{
		"query": map[string]any{
			"terms": map[string]any{
				"doc_id": docIDs, // doc_id 字段是 keyword 类型
			},
		},
	}

	var buf strings.Builder
	if err := json.NewEncoder(&buf).Encode(query); err != nil {
		return fmt.Errorf("error encoding query: %w", err)
	}

	res, err := e.client.DeleteByQuery(
		[]string{e.index},
		strings.NewReader(buf.String()),
		e.client.DeleteByQuery.WithContext(ctx),
		e.client.DeleteByQuery.WithRefresh(true),
	)
	if err != nil {
		return fmt.Errorf("ES delete request failed: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return fmt.Errorf("ES delete response error: %s", res.String())
	}

	e.log.Info("findings deleted", zap.Strings("doc_ids", docIDs))
	return nil
}
