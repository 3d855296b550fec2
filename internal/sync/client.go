package sync

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/terraincognita07/selene/internal/models"
	"go.uber.org/zap"
)

// ChangeSet is one table's bucket of changes on the wire. Absent buckets
// decode to nil and are coalesced to empty before use.
type ChangeSet struct {
	Created []RawRecord `json:"created"`
	Updated []RawRecord `json:"updated"`
	Deleted []string    `json:"deleted"`
}

func (set ChangeSet) Empty() bool {
	return len(set.Created) == 0 && len(set.Updated) == 0 && len(set.Deleted) == 0
}

type DocumentChanges struct {
	DailyLogs ChangeSet `json:"daily_logs"`
}

type PullRequest struct {
	LastPulledAt int64 `json:"last_pulled_at"`
}

type PullResponse struct {
	Changes   DocumentChanges `json:"changes"`
	Timestamp int64           `json:"timestamp"`
}

type PushRequest struct {
	Changes DocumentChanges `json:"changes"`
}

// ChangeClient is the remote change-log API the engine syncs against.
type ChangeClient interface {
	Pull(ctx context.Context, lastPulledAt int64, session models.Session) (PullResponse, error)
	Push(ctx context.Context, changes DocumentChanges, session models.Session) error
}

type HTTPChangeClient struct {
	baseURL string
	client  *http.Client
	log     *zap.SugaredLogger
}

func NewHTTPChangeClient(baseURL string, timeout time.Duration, log *zap.SugaredLogger) *HTTPChangeClient {
	return &HTTPChangeClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

func (client *HTTPChangeClient) Pull(ctx context.Context, lastPulledAt int64, session models.Session) (PullResponse, error) {
	response := PullResponse{}
	err := client.postJSON(ctx, "/api/sync/pull", session, PullRequest{LastPulledAt: lastPulledAt}, &response)
	if err != nil {
		return PullResponse{}, err
	}
	response.coalesce()
	return response, nil
}

func (client *HTTPChangeClient) Push(ctx context.Context, changes DocumentChanges, session models.Session) error {
	return client.postJSON(ctx, "/api/sync/push", session, PushRequest{Changes: changes}, nil)
}

func (client *HTTPChangeClient) postJSON(ctx context.Context, path string, session models.Session, payload any, out any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode %s request: %w", path, err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, client.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build %s request: %w", path, err)
	}
	request.Header.Set("Content-Type", "application/json")
	request.Header.Set("Authorization", "Bearer "+session.Token)

	response, err := client.client.Do(request)
	if err != nil {
		return fmt.Errorf("call %s: %w", path, err)
	}
	defer func() {
		_ = response.Body.Close()
	}()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		message, _ := io.ReadAll(io.LimitReader(response.Body, 512))
		client.log.Warnw("remote rejected request", "path", path, "status", response.StatusCode)
		return fmt.Errorf("%s returned status %d: %s", path, response.StatusCode, strings.TrimSpace(string(message)))
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(response.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

// coalesce replaces absent buckets with empty ones so a sparse server
// response never crashes the apply phase.
func (response *PullResponse) coalesce() {
	logs := &response.Changes.DailyLogs
	if logs.Created == nil {
		logs.Created = make([]RawRecord, 0)
	}
	if logs.Updated == nil {
		logs.Updated = make([]RawRecord, 0)
	}
	if logs.Deleted == nil {
		logs.Deleted = make([]string, 0)
	}
}
