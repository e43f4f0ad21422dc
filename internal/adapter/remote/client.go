package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	domainErrors "github.com/polkiloo/phonetrack/internal/domain/errors"
	"github.com/polkiloo/phonetrack/internal/domain/model"
	"github.com/polkiloo/phonetrack/internal/metrics"
)

const (
	defaultTimeout = 10 * time.Second

	// InvalidNumberMessage is shown when the service rejects a create without a usable detail.
	InvalidNumberMessage = "Invalid USA phone number. Please enter a valid 10-digit number."

	phoneNumbersPath = "/phone_numbers/"
	deleteNumberPath = "/delete_number/"
	extractionPath   = "/gemini_flash8b/"
	maxLoggedBody    = 2048
)

// Options configures HTTPClient.
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	DeleteByID bool
}

// HTTPClient talks JSON to the phone number service. It implements both
// repository.PhoneNumberRemote and repository.ExtractionRemote.
type HTTPClient struct {
	baseURL    *url.URL
	httpClient *http.Client
	logger     *slog.Logger
	metrics    *metrics.Metrics
	deleteByID bool
}

// NewHTTPClient validates the base URL and builds a client.
func NewHTTPClient(opts Options, logger *slog.Logger, m *metrics.Metrics) (*HTTPClient, error) {
	parsed, err := url.Parse(opts.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse server url: %w", err)
	}
	if !parsed.IsAbs() {
		return nil, fmt.Errorf("server url must be absolute")
	}
	parsed.Path = strings.TrimRight(parsed.Path, "/")

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &HTTPClient{
		baseURL:    parsed,
		logger:     logger,
		metrics:    m,
		deleteByID: opts.DeleteByID,
		httpClient: &http.Client{Timeout: timeout},
	}, nil
}

// FetchAll returns every record in server order.
func (c *HTTPClient) FetchAll(ctx context.Context) ([]model.PhoneNumber, error) {
	var records []model.PhoneNumber
	if err := c.do(ctx, "fetch_all", http.MethodGet, c.endpoint(phoneNumbersPath, nil), nil, &records); err != nil {
		return nil, err
	}
	if records == nil {
		records = []model.PhoneNumber{}
	}
	return records, nil
}

// Get returns a single record by id.
func (c *HTTPClient) Get(ctx context.Context, id uuid.UUID) (model.PhoneNumber, error) {
	var rec model.PhoneNumber
	err := c.do(ctx, "get", http.MethodGet, c.endpoint(phoneNumbersPath+id.String(), nil), nil, &rec)
	return rec, err
}

type searchResponse struct {
	ID uuid.UUID `json:"id"`
}

// Search resolves a number to its record id on the service.
func (c *HTTPClient) Search(ctx context.Context, number string) (uuid.UUID, error) {
	var out searchResponse
	ref := c.endpoint(phoneNumbersPath+"search_phone_number/"+number, nil)
	if err := c.do(ctx, "search", http.MethodGet, ref, nil, &out); err != nil {
		return uuid.Nil, err
	}
	return out.ID, nil
}

// Create posts the full record and returns the canonical server copy.
func (c *HTTPClient) Create(ctx context.Context, record model.PhoneNumber) (model.PhoneNumber, error) {
	var created model.PhoneNumber
	err := c.do(ctx, "create", http.MethodPost, c.endpoint(phoneNumbersPath, nil), record, &created)
	return created, err
}

// Update sends a partial update and returns the canonical server copy.
func (c *HTTPClient) Update(ctx context.Context, id uuid.UUID, payload model.UpdatePayload) (model.PhoneNumber, error) {
	var updated model.PhoneNumber
	err := c.do(ctx, "update", http.MethodPut, c.endpoint(phoneNumbersPath+id.String(), nil), payload, &updated)
	return updated, err
}

// Delete removes a record, addressed by number or by id depending on Options.
// The caller decides whether the returned detail confirms the delete.
func (c *HTTPClient) Delete(ctx context.Context, record model.PhoneNumber) (model.DeleteResponse, error) {
	ref := c.endpoint(deleteNumberPath, url.Values{"number_to_delete": {record.Number}})
	if c.deleteByID {
		ref = c.endpoint(phoneNumbersPath+record.ID.String(), nil)
	}
	var out model.DeleteResponse
	err := c.do(ctx, "delete", http.MethodDelete, ref, nil, &out)
	return out, err
}

// ApplyCalculations sets the redeem flag and points on every record.
func (c *HTTPClient) ApplyCalculations(ctx context.Context, calc model.BulkCalculation) error {
	query := url.Values{
		"has_redeem_value": {strconv.FormatBool(calc.HasRedeemValue)},
		"number_of_points": {strconv.Itoa(calc.NumberOfPoints)},
	}
	return c.do(ctx, "bulk_calculations", http.MethodPost, c.endpoint(phoneNumbersPath+"upload_calculations/", query), nil, nil)
}

// UploadImage sends a base64 image for extraction.
func (c *HTTPClient) UploadImage(ctx context.Context, req model.UploadImageRequest) error {
	return c.do(ctx, "upload_image", http.MethodPost, c.endpoint(extractionPath+"upload_base64_image/", nil), req, nil)
}

// ReviewCandidates fetches the extracted numbers waiting for confirmation.
// A 404 means nothing is waiting and yields an empty list.
func (c *HTTPClient) ReviewCandidates(ctx context.Context) ([]string, error) {
	var raw json.RawMessage
	err := c.do(ctx, "review_candidates", http.MethodGet, c.endpoint(extractionPath+"review_numbers/", nil), nil, &raw)
	if err != nil {
		if domainErrors.IsKind(err, domainErrors.KindNotFound) {
			return []string{}, nil
		}
		return nil, err
	}
	numbers, err := DecodeCandidates(raw)
	if err != nil {
		return nil, &domainErrors.SyncError{Kind: domainErrors.KindDecode, Op: "review_candidates", Status: http.StatusOK, Err: err}
	}
	return numbers, nil
}

type candidatesResponse struct {
	Detail  string   `json:"detail"`
	Numbers []string `json:"numbers"`
}

// EditCandidates replaces the review buffer and returns the normalized numbers.
func (c *HTTPClient) EditCandidates(ctx context.Context, numbers []string) ([]string, error) {
	if numbers == nil {
		numbers = []string{}
	}
	var out candidatesResponse
	if err := c.do(ctx, "edit_candidates", http.MethodPut, c.endpoint(extractionPath+"edit_numbers/", nil), numbers, &out); err != nil {
		return nil, err
	}
	if out.Numbers == nil {
		out.Numbers = []string{}
	}
	return out.Numbers, nil
}

// RemoveCandidate drops one number from the review buffer and returns the
// numbers still waiting.
func (c *HTTPClient) RemoveCandidate(ctx context.Context, number string) ([]string, error) {
	ref := c.endpoint(extractionPath+"delete_number/", url.Values{"number_to_delete": {number}})
	var out candidatesResponse
	if err := c.do(ctx, "remove_candidate", http.MethodDelete, ref, nil, &out); err != nil {
		return nil, err
	}
	if out.Numbers == nil {
		out.Numbers = []string{}
	}
	return out.Numbers, nil
}

// ConfirmCandidates commits the review buffer into the main collection.
func (c *HTTPClient) ConfirmCandidates(ctx context.Context) error {
	return c.do(ctx, "confirm_candidates", http.MethodPost, c.endpoint(extractionPath+"confirm_numbers/", nil), nil, nil)
}

func (c *HTTPClient) endpoint(p string, query url.Values) *url.URL {
	ref := *c.baseURL
	ref.Path = c.baseURL.Path + p
	ref.RawPath = ""
	if query != nil {
		ref.RawQuery = query.Encode()
	}
	return &ref
}

func (c *HTTPClient) do(ctx context.Context, op, method string, ref *url.URL, body, out any) (err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		var syncErr *domainErrors.SyncError
		if errors.As(err, &syncErr) {
			outcome = syncErr.Kind.String()
		}
		c.metrics.ObserveRemote(op, outcome, time.Since(start))
	}()

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, ref.String(), reader)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return &domainErrors.SyncError{Kind: domainErrors.KindNetwork, Op: op, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &domainErrors.SyncError{Kind: domainErrors.KindNetwork, Op: op, Status: resp.StatusCode, Err: err}
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.classify(op, resp, data)
	}

	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &domainErrors.SyncError{Kind: domainErrors.KindDecode, Op: op, Status: resp.StatusCode, Err: err}
	}
	return nil
}

func (c *HTTPClient) classify(op string, resp *http.Response, body []byte) error {
	kind := domainErrors.KindForStatus(resp.StatusCode)
	syncErr := &domainErrors.SyncError{Kind: kind, Op: op, Status: resp.StatusCode, Message: DetailMessage(body)}

	switch kind {
	case domainErrors.KindValidation:
		if syncErr.Message == "" && op == "create" {
			syncErr.Message = InvalidNumberMessage
		}
		if syncErr.Message == "" {
			syncErr.Message = http.StatusText(resp.StatusCode)
		}
	case domainErrors.KindServer:
		logged := body
		if len(logged) > maxLoggedBody {
			logged = logged[:maxLoggedBody]
		}
		c.logger.Error("remote request failed",
			slog.String("operation", op),
			slog.Int("status", resp.StatusCode),
			slog.String("body", string(logged)))
	}
	return syncErr
}
