package workers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"time"

	"xnrt-rewards-system/models"
	"xnrt-rewards-system/services"

	"gorm.io/gorm"
)

// GetUserChangesResponse is the top-level structure of the profile sync
// service response.
type GetUserChangesResponse struct {
	Users []models.RemoteUser `json:"users"`
}

// AccountSyncWorker mirrors profile-service accounts into local User rows so
// every identity the gateway can forward has a ledger to land on. Referral
// assignment stays local — only identity fields are synced.
type AccountSyncWorker struct {
	db           *gorm.DB
	interval     time.Duration
	baseURL      string
	endpointPath string
	serviceToken string
	httpClient   *http.Client
}

func NewAccountSyncWorker(db *gorm.DB, syncServiceBaseURL, endpointPath, serviceToken string) *AccountSyncWorker {
	return &AccountSyncWorker{
		db:           db,
		interval:     1 * time.Minute,
		baseURL:      syncServiceBaseURL,
		endpointPath: endpointPath,
		serviceToken: serviceToken,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

func (w *AccountSyncWorker) Start(ctx context.Context) {
	log.Println("🔁 Starting Account Sync Worker (profile service → users)…")
	go w.run(ctx)
}

func (w *AccountSyncWorker) run(ctx context.Context) {
	// Initial backfill from the beginning of time.
	if err := w.syncBatch(ctx, time.Time{}); err != nil {
		log.Printf("⚠️ Initial account sync failed: %v", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			if err := w.syncBatch(ctx, w.getLastSyncTime()); err != nil {
				log.Printf("❌ Account sync batch failed: %v", err)
			}
		case <-ctx.Done():
			log.Println("⏹️ Account Sync Worker stopped")
			return
		}
	}
}

// getLastSyncTime finds the most recent UpdatedAt from the local users table.
func (w *AccountSyncWorker) getLastSyncTime() time.Time {
	var lastTime time.Time
	err := w.db.Raw("SELECT MAX(updated_at) FROM users WHERE deleted_at IS NULL").Scan(&lastTime).Error
	if err != nil || lastTime.IsZero() {
		return time.Unix(0, 0)
	}
	return lastTime
}

func (w *AccountSyncWorker) syncBatch(ctx context.Context, since time.Time) error {
	sinceStr := since.UTC().Format(time.RFC3339)

	base, err := url.Parse(w.baseURL)
	if err != nil {
		return fmt.Errorf("invalid base sync service URL '%s': %w", w.baseURL, err)
	}
	endpointURL := base.JoinPath(w.endpointPath)
	q := endpointURL.Query()
	q.Set("since", sinceStr)
	endpointURL.RawQuery = q.Encode()

	req, err := http.NewRequestWithContext(ctx, "GET", endpointURL.String(), nil)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("X-Service-Token", w.serviceToken)

	resp, err := w.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("HTTP request to sync service failed: %w", err)
	}
	defer func() {
		_, _ = io.Copy(io.Discard, resp.Body)
		_ = resp.Body.Close()
	}()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return fmt.Errorf("sync service non-200 response: %d — %s", resp.StatusCode, string(body))
	}

	var response GetUserChangesResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return fmt.Errorf("failed to decode sync service response: %w", err)
	}

	if len(response.Users) == 0 {
		return nil
	}

	userSvc := services.NewUserService(w.db)
	var synced, errorCount int
	for _, remote := range response.Users {
		if remote.DeletedAt != nil {
			continue // deactivated upstream; local rows are kept for history
		}
		user, err := userSvc.EnsureUser(remote.ExternalID, remote.Username)
		if err != nil {
			errorCount++
			log.Printf("[SYNC] ⚠️ Failed to ensure user (external_id=%q): %v", remote.ExternalID, err)
			continue
		}
		if user.Username != remote.Username {
			if err := w.db.Model(&models.User{}).Where("id = ?", user.ID).
				Update("username", remote.Username).Error; err != nil {
				errorCount++
				continue
			}
		}
		synced++
	}

	log.Printf("[SYNC] ✅ Synced %d user(s), %d error(s) since %s", synced, errorCount, sinceStr)
	return nil
}
