package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/dgallion1/docoutline/internal/outline"
)

// PathstoreSink stores records in a pathstore KV service under
// outlines/<RecordKey>.
type PathstoreSink struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

func NewPathstoreSink(baseURL, apiKey string) *PathstoreSink {
	return &PathstoreSink{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// NodeRequest is the body for PUT /kv/{key}.
type NodeRequest struct {
	Value      any     `json:"value"`
	MergeMode  string  `json:"merge_mode,omitempty"`
	MemoryType string  `json:"memory_type,omitempty"`
	Salience   float64 `json:"salience,omitempty"`
	Source     string  `json:"source,omitempty"`
}

func (s *PathstoreSink) Write(ctx context.Context, name string, doc outline.Document) error {
	key := RecordKey(name)
	return s.PutNode(ctx, "outlines/"+url.PathEscape(key), NodeRequest{
		Value:      NewRecord(doc),
		MergeMode:  "replace",
		MemoryType: "semantic",
		Salience:   0.5,
		Source:     "docoutline:" + key,
	})
}

// PutNode stores or updates a node at the given path.
func (s *PathstoreSink) PutNode(ctx context.Context, key string, req NodeRequest) error {
	body, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("marshal node: %w", err)
	}
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPut, s.baseURL+"/kv/"+key, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+s.apiKey)

	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return fmt.Errorf("put node: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		respBody, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("put node %s: status %d: %s", key, resp.StatusCode, string(respBody))
	}
	return nil
}

// Close releases idle connections.
func (s *PathstoreSink) Close() {
	s.httpClient.CloseIdleConnections()
}
