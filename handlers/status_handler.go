package handlers

import (
	"net/http"
	"strconv"
	"time"

	"github.com/kushwahaamar-dev/sentinel/app"
	"github.com/kushwahaamar-dev/sentinel/models"
	"github.com/kushwahaamar-dev/sentinel/utils"
)

const (
	statusLogLimit      = 50
	defaultHistoryLimit = 20
	maxHistoryLimit     = 200
)

// StatusHandler returns the operator dashboard snapshot: recent audit
// log lines in chronological order, the mode, and the vault balance.
func StatusHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		entries, err := deps.Logs.GetRecent(ctx, statusLogLimit)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		// GetRecent returns newest first; the dashboard reads
		// top to bottom.
		logs := make([]map[string]string, 0, len(entries))
		for i := len(entries) - 1; i >= 0; i-- {
			logs = append(logs, map[string]string{
				"text":   entries[i].Text,
				"status": string(entries[i].Status),
			})
		}

		balance, err := vaultBalance(r, deps)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		_ = utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"mode":          string(deps.Config.Mode),
			"processing":    false,
			"logs":          logs,
			"vault_balance": balance,
		})
	}
}

// vaultBalance derives the remaining balance from the recorded payouts.
func vaultBalance(r *http.Request, deps *app.Dependencies) (float64, error) {
	spent, err := deps.Records.TotalPaidOut(r.Context())
	if err != nil {
		return 0, err
	}
	policy := models.DefaultPolicyConfig()
	balance := policy.VaultBalanceUSDC - spent
	if balance < 0 {
		balance = 0
	}
	return balance, nil
}

// HistoryHandler returns recent pipeline records, newest first.
func HistoryHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		limit := defaultHistoryLimit
		if raw := r.URL.Query().Get("limit"); raw != "" {
			parsed, err := strconv.Atoi(raw)
			if err != nil || parsed <= 0 {
				_ = utils.WriteBadRequest(w, "limit must be a positive integer", nil)
				return
			}
			limit = parsed
			if limit > maxHistoryLimit {
				limit = maxHistoryLimit
			}
		}

		records, err := deps.Records.GetRecent(r.Context(), limit)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		_ = utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"events": records,
		})
	}
}

// StatisticsHandler returns dashboard aggregates.
func StatisticsHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		byOutcome, err := deps.Records.CountByOutcome(ctx)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}
		totalEvents := 0
		for _, n := range byOutcome {
			totalEvents += n
		}

		totalPayouts, err := deps.Records.CountPayouts(ctx)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		totalAmount, err := deps.Records.TotalPaidOut(ctx)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		byBucket, err := deps.Records.CountByBucket(ctx)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		policy := models.DefaultPolicyConfig()
		balance := policy.VaultBalanceUSDC - totalAmount
		if balance < 0 {
			balance = 0
		}

		_ = utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"total_events_processed": totalEvents,
			"total_payouts":          totalPayouts,
			"total_payout_amount":    totalAmount,
			"vault_balance":          balance,
			"events_by_type":         byBucket,
			"events_by_outcome":      byOutcome,
			"uptime_seconds":         time.Since(deps.StartedAt).Seconds(),
			"mode":                   string(deps.Config.Mode),
			"last_updated":           time.Now().UTC().Format(time.RFC3339),
		})
	}
}

// PolicyHandler reports the parametric policy configuration.
func PolicyHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		balance, err := vaultBalance(r, deps)
		if err != nil {
			HandleServiceError(w, err, deps.Logger)
			return
		}

		policy := models.DefaultPolicyConfig()
		_ = utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"max_payout_usdc":         policy.MaxPayoutUSDC,
			"vault_balance_usdc":      balance,
			"triggers":                policy.Triggers,
			"high_risk_zones":         policy.HighRiskZones,
			"ai_confidence_threshold": policy.AIConfidenceThreshold,
			"ai_model":                deps.Config.Oracle.Model,
			"data_sources":            []string{"GDACS", "NASA EONET", "NOAA NWS", "OpenWeatherMap"},
		})
	}
}

// ModeHandler reports the configured mode. Mode is fixed for the
// lifetime of the process.
func ModeHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteJSON(w, http.StatusOK, map[string]string{
			"mode": string(deps.Config.Mode),
		})
	}
}

// SourceStatusHandler reports the health of every feed adapter.
func SourceStatusHandler(deps *app.Dependencies) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		_ = utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"sources":   deps.Statuses.All(),
			"mode":      string(deps.Config.Mode),
			"timestamp": time.Now().UTC().Format(time.RFC3339),
		})
	}
}
