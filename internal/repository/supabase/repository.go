package supabase

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"

	"github.com/mamadbah2/avipredict/internal/config"
	"github.com/mamadbah2/avipredict/internal/domain/models"
)

const predictionsTable = "predicciones"

// Repository defines the remote-table operations the application performs.
// Identifiers, retries and transport details are owned by the backend; a
// failed call is surfaced as-is and may simply be retried by the user.
type Repository interface {
	Insert(ctx context.Context, record models.SavedPredictionRecord) (models.SavedPredictionRecord, error)
	List(ctx context.Context) ([]models.SavedPredictionRecord, error)
	ListSince(ctx context.Context, since time.Time) ([]models.SavedPredictionRecord, error)
	Delete(ctx context.Context, id int64) error
}

// RESTRepository talks to the Supabase PostgREST surface.
type RESTRepository struct {
	httpClient *resty.Client
	logger     *zap.Logger
}

// apiError mirrors the PostgREST error payload.
type apiError struct {
	Message string `json:"message"`
	Code    string `json:"code"`
	Details string `json:"details"`
	Hint    string `json:"hint"`
}

// NewRESTRepository builds a Supabase repository from service credentials.
func NewRESTRepository(cfg config.SupabaseConfig, logger *zap.Logger) *RESTRepository {
	if logger == nil {
		logger = zap.NewNop()
	}

	restyClient := resty.New()
	restyClient.
		SetBaseURL(strings.TrimSuffix(cfg.URL, "/")+"/rest/v1").
		SetHeader("apikey", cfg.Key).
		SetHeader("Authorization", fmt.Sprintf("Bearer %s", cfg.Key)).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &RESTRepository{httpClient: restyClient, logger: logger}
}

// Insert writes one provenance record into the predictions table and returns
// the stored representation (including the backend-assigned id).
func (r *RESTRepository) Insert(ctx context.Context, record models.SavedPredictionRecord) (models.SavedPredictionRecord, error) {
	var stored []models.SavedPredictionRecord
	apiErr := new(apiError)

	resp, err := r.httpClient.R().
		SetContext(ctx).
		SetHeader("Prefer", "return=representation").
		SetBody(record).
		SetResult(&stored).
		SetError(apiErr).
		Post("/" + predictionsTable)
	if err != nil {
		return models.SavedPredictionRecord{}, fmt.Errorf("insert prediction record: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return models.SavedPredictionRecord{}, restError("insert prediction record", resp, apiErr)
	}
	if len(stored) == 0 {
		return models.SavedPredictionRecord{}, fmt.Errorf("insert prediction record: backend returned no representation")
	}

	r.logger.Debug("prediction record stored", zap.Int64("id", stored[0].ID))
	return stored[0], nil
}

// List returns every saved record ordered by creation time, newest first.
func (r *RESTRepository) List(ctx context.Context) ([]models.SavedPredictionRecord, error) {
	return r.list(ctx, nil)
}

// ListSince returns records created after the given instant, newest first.
func (r *RESTRepository) ListSince(ctx context.Context, since time.Time) ([]models.SavedPredictionRecord, error) {
	filter := map[string]string{"created_at": "gt." + since.UTC().Format(time.RFC3339)}
	return r.list(ctx, filter)
}

func (r *RESTRepository) list(ctx context.Context, extra map[string]string) ([]models.SavedPredictionRecord, error) {
	var records []models.SavedPredictionRecord
	apiErr := new(apiError)

	req := r.httpClient.R().
		SetContext(ctx).
		SetQueryParam("select", "*").
		SetQueryParam("order", "created_at.desc").
		SetResult(&records).
		SetError(apiErr)
	for k, v := range extra {
		req.SetQueryParam(k, v)
	}

	resp, err := req.Get("/" + predictionsTable)
	if err != nil {
		return nil, fmt.Errorf("list prediction records: %w", err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return nil, restError("list prediction records", resp, apiErr)
	}

	return records, nil
}

// Delete removes a record through the backend's stored procedure.
func (r *RESTRepository) Delete(ctx context.Context, id int64) error {
	apiErr := new(apiError)

	resp, err := r.httpClient.R().
		SetContext(ctx).
		SetBody(map[string]int64{"prediccion_id": id}).
		SetError(apiErr).
		Post("/rpc/eliminar_prediccion")
	if err != nil {
		return fmt.Errorf("delete prediction record %d: %w", id, err)
	}
	if resp.StatusCode() >= http.StatusBadRequest {
		return restError(fmt.Sprintf("delete prediction record %d", id), resp, apiErr)
	}

	r.logger.Debug("prediction record deleted", zap.Int64("id", id))
	return nil
}

func restError(op string, resp *resty.Response, apiErr *apiError) error {
	message := resp.Status()
	if apiErr != nil && apiErr.Message != "" {
		message = apiErr.Message
	}
	return fmt.Errorf("%s: supabase error: status=%d, message=%s", op, resp.StatusCode(), message)
}
