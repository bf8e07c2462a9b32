// Package qdrant is a minimal REST client to a Qdrant collection, cosine
// distance, created on demand.
package qdrant

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/theodu78/NLPrice-app/internal/common"
	"github.com/theodu78/NLPrice-app/internal/entity"
	"github.com/theodu78/NLPrice-app/internal/vectorstore"
)

type Config struct {
	URL        string
	APIKey     string
	Collection string
	Timeout    time.Duration
}

type Storage struct {
	url        string
	apiKey     string
	collection string
	dimension  int
	client     *http.Client
	log        *slog.Logger
}

func NewStorage(cfg Config, logger *slog.Logger) *Storage {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Storage{
		url:        cfg.URL,
		apiKey:     cfg.APIKey,
		collection: cfg.Collection,
		client:     &http.Client{Timeout: timeout},
		log:        logger,
	}
}

// Init creates the collection if it is missing. An existing collection is
// left untouched whatever its current schema; dimension mismatches surface
// on the first upsert.
func (s *Storage) Init(ctx context.Context, dimension int) error {
	if dimension <= 0 {
		return errors.New("invalid dimension")
	}
	s.dimension = dimension

	exists, err := s.collectionExists(ctx)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	body := map[string]any{
		"vectors": map[string]any{
			"size":     dimension,
			"distance": "Cosine",
		},
	}
	if err := s.putJSON(ctx, s.collectionURL(), body); err != nil {
		return err
	}
	s.log.Info("vectorstore.init.created", "collection", s.collection, "dimension", dimension)
	return nil
}

func (s *Storage) Upsert(ctx context.Context, points []vectorstore.Point) error {
	if len(points) == 0 {
		return nil
	}
	payload := make([]map[string]any, len(points))
	for i, p := range points {
		payload[i] = map[string]any{
			"id":      p.ID,
			"vector":  p.Vector,
			"payload": recordPayload(p.Record),
		}
	}
	body := map[string]any{"points": payload}
	if err := s.putJSON(ctx, s.collectionURL()+"/points?wait=true", body); err != nil {
		return common.NewAppError("VECTOR_UPSERT", "upsert points", err)
	}
	s.log.Info("vectorstore.upsert.ok", "points", len(points))
	return nil
}

func (s *Storage) Query(ctx context.Context, vector []float64, topK int) ([]vectorstore.Match, error) {
	if topK <= 0 {
		topK = 5
	}
	body := map[string]any{
		"vector":       vector,
		"limit":        topK,
		"with_payload": true,
	}
	var resp struct {
		Result []struct {
			Score   float64        `json:"score"`
			Payload map[string]any `json:"payload"`
		} `json:"result"`
	}
	if err := s.postJSON(ctx, s.collectionURL()+"/points/search", body, &resp); err != nil {
		return nil, common.NewAppError("VECTOR_QUERY", "search points", err)
	}

	matches := make([]vectorstore.Match, 0, len(resp.Result))
	for _, r := range resp.Result {
		matches = append(matches, vectorstore.Match{
			Record: recordFromPayload(r.Payload),
			Score:  r.Score,
		})
	}
	return matches, nil
}

// Count returns the number of stored points, or common.ErrNotFound when the
// collection does not exist.
func (s *Storage) Count(ctx context.Context) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.collectionURL(), nil)
	if err != nil {
		return 0, err
	}
	s.auth(req)
	resp, err := s.client.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return 0, common.ErrNotFound
	}
	if resp.StatusCode >= 300 {
		return 0, fmt.Errorf("qdrant GET %s failed: %s", s.collectionURL(), resp.Status)
	}

	var out struct {
		Result struct {
			PointsCount int `json:"points_count"`
		} `json:"result"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, err
	}
	return out.Result.PointsCount, nil
}

// Clear drops the collection. A missing collection is common.ErrNotFound.
func (s *Storage) Clear(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, s.collectionURL(), nil)
	if err != nil {
		return err
	}
	s.auth(req)
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return common.ErrNotFound
	}
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant DELETE %s failed: %s", s.collectionURL(), resp.Status)
	}
	s.log.Info("vectorstore.clear.ok", "collection", s.collection)
	return nil
}

func (s *Storage) collectionExists(ctx context.Context) (bool, error) {
	_, err := s.Count(ctx)
	if errors.Is(err, common.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (s *Storage) collectionURL() string {
	return fmt.Sprintf("%s/collections/%s", s.url, s.collection)
}

func (s *Storage) auth(req *http.Request) {
	if s.apiKey != "" {
		req.Header.Set("api-key", s.apiKey)
	}
}

func (s *Storage) putJSON(ctx context.Context, url string, body any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	s.auth(req)
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant PUT %s failed: %s", url, resp.Status)
	}
	return nil
}

func (s *Storage) postJSON(ctx context.Context, url string, body, out any) error {
	data, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(data))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	s.auth(req)
	resp, err := s.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("qdrant POST %s failed: %s", url, resp.Status)
	}
	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}

func recordPayload(rec entity.Record) map[string]any {
	payload := map[string]any{
		"designation": rec.Designation,
		"unit":        rec.Unit,
		"unit_price":  rec.UnitPrice,
	}
	if rec.Quantity != nil {
		payload["quantity"] = *rec.Quantity
	}
	if rec.TotalPrice != nil {
		payload["total_price"] = *rec.TotalPrice
	}
	return payload
}

func recordFromPayload(payload map[string]any) entity.Record {
	rec := entity.Record{}
	if v, ok := payload["designation"].(string); ok {
		rec.Designation = v
	}
	if v, ok := payload["unit"].(string); ok {
		rec.Unit = v
	}
	if v, ok := payload["unit_price"].(float64); ok {
		rec.UnitPrice = v
	}
	if v, ok := payload["quantity"].(float64); ok {
		rec.Quantity = &v
	}
	if v, ok := payload["total_price"].(float64); ok {
		rec.TotalPrice = &v
	}
	return rec
}
