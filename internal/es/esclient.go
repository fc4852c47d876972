package es

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/elastic/go-elasticsearch/v9"

	"github.com/Skotchmaster/storefront/internal/config"
	"github.com/Skotchmaster/storefront/internal/models"
	"github.com/Skotchmaster/storefront/internal/repo"
)

func NewClient(ctx context.Context, cfg config.Config, l *slog.Logger) (*elasticsearch.Client, error) {
	l.Info("es_connect", "url", cfg.ESURL)

	client, err := elasticsearch.NewClient(elasticsearch.Config{
		Addresses: []string{cfg.ESURL},
		Username:  cfg.ESUser,
		Password:  cfg.ESPassword,
	})
	if err != nil {
		return nil, fmt.Errorf("es: new client: %w", err)
	}

	res, err := client.Info(client.Info.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("es: info: %w", err)
	}
	defer res.Body.Close()
	if res.IsError() {
		body, _ := io.ReadAll(res.Body)
		return nil, fmt.Errorf("es: info: %s: %s", res.Status(), body)
	}

	l.Info("es_connected")
	return client, nil
}

// Catalog reads product documents from an Elasticsearch index.
type Catalog struct {
	ES    *elasticsearch.Client
	Index string
}

func (c *Catalog) FindProductByID(ctx context.Context, id string) (*models.Product, error) {
	res, err := c.ES.Get(c.Index, id, c.ES.Get.WithContext(ctx))
	if err != nil {
		return nil, fmt.Errorf("es: get %s: %w", id, err)
	}
	defer res.Body.Close()

	if res.StatusCode == http.StatusNotFound {
		return nil, repo.ErrNotFound
	}
	if res.IsError() {
		return nil, fmt.Errorf("es: get %s: %s", id, res.Status())
	}

	var doc struct {
		ID     string         `json:"_id"`
		Found  bool           `json:"found"`
		Source models.Product `json:"_source"`
	}
	if err := json.NewDecoder(res.Body).Decode(&doc); err != nil {
		return nil, fmt.Errorf("es: decode %s: %w", id, err)
	}
	if !doc.Found {
		return nil, repo.ErrNotFound
	}
	if doc.Source.ID == "" {
		doc.Source.ID = doc.ID
	}
	return &doc.Source, nil
}
