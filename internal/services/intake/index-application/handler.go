package indexapplication

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"hr-backoffice/internal/common/logger"
	"hr-backoffice/internal/models"

	"github.com/elastic/go-elasticsearch/v8"
	"github.com/elastic/go-elasticsearch/v8/esapi"
)

const OperationName = "index-application"

type Handler struct {
	config *Config
	client *elasticsearch.Client
	logger logger.Logger
}

func NewHandler(config *Config, client *elasticsearch.Client, log logger.Logger) *Handler {
	if config == nil {
		config = DefaultConfig()
	}
	return &Handler{
		config: config,
		client: client,
		logger: log.WithFields(map[string]interface{}{"operation": OperationName, "index": config.Index}),
	}
}

// EnsureIndex creates the index with its mapping when it is missing.
func (h *Handler) EnsureIndex(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	res, err := h.client.Indices.Exists([]string{h.config.Index}, h.client.Indices.Exists.WithContext(ctx))
	if err != nil {
		return fmt.Errorf("check index: %w", err)
	}
	res.Body.Close()
	if res.StatusCode == http.StatusOK {
		return nil
	}
	if res.StatusCode != http.StatusNotFound {
		return fmt.Errorf("check index: %s", res.Status())
	}

	res, err = h.client.Indices.Create(h.config.Index,
		h.client.Indices.Create.WithBody(strings.NewReader(indexMapping)),
		h.client.Indices.Create.WithContext(ctx),
	)
	if err != nil {
		return fmt.Errorf("create index: %w", err)
	}
	defer res.Body.Close()
	// A concurrent creator wins the race; that is fine.
	if res.IsError() && !strings.Contains(readBody(res), "resource_already_exists_exception") {
		return fmt.Errorf("create index: %s", res.Status())
	}
	h.logger.Info("search index created", nil)
	return nil
}

func (h *Handler) ApplicationSubmitted(ctx context.Context, job *models.Job, app *models.Application) error {
	_, err := h.Execute(ctx, &Input{Job: job, Application: app})
	return err
}

func (h *Handler) Execute(ctx context.Context, input *Input) (*Output, error) {
	if input == nil || input.Job == nil || input.Application == nil {
		return nil, errors.New("index input requires job and application")
	}

	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	doc := models.NewApplicationDocument(input.Job, input.Application)
	body, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode document: %w", err)
	}

	opts := []func(*esapi.IndexRequest){
		h.client.Index.WithDocumentID(doc.DocumentID()),
		h.client.Index.WithContext(ctx),
	}
	if h.config.Refresh {
		opts = append(opts, h.client.Index.WithRefresh("wait_for"))
	}

	res, err := h.client.Index(h.config.Index, bytes.NewReader(body), opts...)
	if err != nil {
		return nil, fmt.Errorf("index application %d: %w", doc.ID, err)
	}
	defer res.Body.Close()
	if res.IsError() {
		return nil, fmt.Errorf("index application %d: %s: %s", doc.ID, res.Status(), readBody(res))
	}

	var parsed struct {
		Result string `json:"result"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("decode index response: %w", err)
	}

	h.logger.Debug("application indexed", map[string]interface{}{
		"application_id": doc.ID,
		"result":         parsed.Result,
	})
	return &Output{DocumentID: doc.DocumentID(), Result: parsed.Result}, nil
}

// JobDeleted removes every indexed application of the job.
func (h *Handler) JobDeleted(ctx context.Context, jobID int64) error {
	ctx, cancel := context.WithTimeout(ctx, h.config.Timeout)
	defer cancel()

	query, err := json.Marshal(map[string]interface{}{
		"query": map[string]interface{}{
			"term": map[string]interface{}{"job_id": jobID},
		},
	})
	if err != nil {
		return err
	}

	res, err := h.client.DeleteByQuery([]string{h.config.Index}, bytes.NewReader(query),
		h.client.DeleteByQuery.WithContext(ctx),
		h.client.DeleteByQuery.WithConflicts("proceed"),
		h.client.DeleteByQuery.WithRefresh(h.config.Refresh),
	)
	if err != nil {
		return fmt.Errorf("delete documents of job %d: %w", jobID, err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusNotFound {
		return nil
	}
	if res.IsError() {
		return fmt.Errorf("delete documents of job %d: %s: %s", jobID, res.Status(), readBody(res))
	}

	var parsed struct {
		Deleted int64 `json:"deleted"`
	}
	if err := json.NewDecoder(res.Body).Decode(&parsed); err != nil {
		return fmt.Errorf("decode delete response: %w", err)
	}
	h.logger.Info("job documents removed from index", map[string]interface{}{
		"job_id":  jobID,
		"deleted": parsed.Deleted,
	})
	return nil
}

func readBody(res *esapi.Response) string {
	b, _ := io.ReadAll(io.LimitReader(res.Body, 4096))
	return string(b)
}
