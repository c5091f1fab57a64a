package api

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/bwiize/dashboard/internal/balance"
	"github.com/bwiize/dashboard/internal/domain"
	"github.com/bwiize/dashboard/internal/escrow"
	"github.com/bwiize/dashboard/internal/snapshot"
)

const maxBodyBytes = 1 << 20

// Dashboard is the state engine surface exposed over HTTP.
type Dashboard interface {
	Snapshot() domain.Snapshot
	Notifications() []domain.Notification

	LinkBank(provider string) (domain.Account, error)
	ConnectWallet() (domain.Snapshot, error)
	DisconnectWallet() (domain.Snapshot, error)
	DepositXRP(amount decimal.Decimal) (domain.Snapshot, error)
	CreateEscrow(in escrow.CreateInput) (domain.EscrowState, error)
	ReleaseEscrow() (decimal.Decimal, error)
	ChallengeCompleted(challengeID string) (domain.Snapshot, error)
	SetSavingsRate(rate int) (domain.Savings, error)

	Scroll(offset, viewportWidth float64) domain.CarouselState
	GoTo(index int) (domain.CarouselState, float64)
	Next() (domain.CarouselState, float64)
	Prev() (domain.CarouselState, float64)
	Touch(startX, endX float64) (domain.CarouselState, float64, bool)
}

// Journal lists recorded snapshots.
type Journal interface {
	GetLatest(ctx context.Context) (*snapshot.Entry, error)
	List(ctx context.Context, limit int) ([]snapshot.Entry, error)
}

// Exporter writes a snapshot to a spreadsheet.
type Exporter interface {
	Export(ctx context.Context, snap domain.Snapshot) error
}

// Handler provides HTTP endpoints for the dashboard API.
type Handler struct {
	dash     Dashboard
	journal  Journal
	exporter Exporter // optional
}

// NewHandler creates a new API handler. exporter may be nil.
func NewHandler(dash Dashboard, journal Journal, exporter Exporter) *Handler {
	return &Handler{dash: dash, journal: journal, exporter: exporter}
}

// GetState handles GET /api/v1/state.
func (h *Handler) GetState(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, newStateView(h.dash.Snapshot()))
}

// ListProviders handles GET /api/v1/providers.
func (h *Handler) ListProviders(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, balance.Providers())
}

// ListAccounts handles GET /api/v1/accounts. An optional ?type= narrows the list to one
// account category; totals follow the filter.
func (h *Handler) ListAccounts(w http.ResponseWriter, r *http.Request) {
	accounts := h.dash.Snapshot().Accounts
	if t := r.URL.Query().Get("type"); t != "" {
		accounts = domain.AccountsByCategory(accounts, domain.AccountCategory(t))
	}
	writeJSON(w, http.StatusOK, newAccountsView(accounts))
}

// GetAccount handles GET /api/v1/accounts/{id}.
func (h *Handler) GetAccount(w http.ResponseWriter, r *http.Request) {
	acct, ok := domain.AccountByID(h.dash.Snapshot().Accounts, chi.URLParam(r, "id"))
	if !ok {
		writeError(w, http.StatusNotFound, "account not found")
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

type linkAccountRequest struct {
	Provider string `json:"provider"`
}

// LinkAccount handles POST /api/v1/accounts.
func (h *Handler) LinkAccount(w http.ResponseWriter, r *http.Request) {
	var req linkAccountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	acct, err := h.dash.LinkBank(req.Provider)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, acct)
}

// ConnectWallet handles POST /api/v1/wallet/connect. The handshake resolves later;
// the response carries the pending wallet.
func (h *Handler) ConnectWallet(w http.ResponseWriter, _ *http.Request) {
	snap, err := h.dash.ConnectWallet()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusAccepted, newWalletView(snap.Wallet))
}

// DisconnectWallet handles POST /api/v1/wallet/disconnect.
func (h *Handler) DisconnectWallet(w http.ResponseWriter, _ *http.Request) {
	snap, err := h.dash.DisconnectWallet()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newWalletView(snap.Wallet))
}

type amountRequest struct {
	Amount decimal.Decimal `json:"amount"`
}

// DepositXRP handles POST /api/v1/wallet/deposit.
func (h *Handler) DepositXRP(w http.ResponseWriter, r *http.Request) {
	var req amountRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	snap, err := h.dash.DepositXRP(req.Amount)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, newWalletView(snap.Wallet))
}

type createEscrowRequest struct {
	Amount      decimal.Decimal `json:"amount"`
	Condition   string          `json:"condition"`
	Fulfillment string          `json:"fulfillment"`
}

// CreateEscrow handles POST /api/v1/escrow.
func (h *Handler) CreateEscrow(w http.ResponseWriter, r *http.Request) {
	var req createEscrowRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	created, err := h.dash.CreateEscrow(escrow.CreateInput{
		Amount:      req.Amount,
		Condition:   req.Condition,
		Fulfillment: req.Fulfillment,
	})
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, newEscrowView(&created))
}

// ReleaseEscrow handles POST /api/v1/escrow/release.
func (h *Handler) ReleaseEscrow(w http.ResponseWriter, _ *http.Request) {
	amount, err := h.dash.ReleaseEscrow()
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"released":        amount,
		"releasedDisplay": domain.FormatXRP(amount),
		"wallet":          newWalletView(h.dash.Snapshot().Wallet),
	})
}

// CompleteChallenge handles POST /api/v1/challenges/{id}/complete.
func (h *Handler) CompleteChallenge(w http.ResponseWriter, r *http.Request) {
	snap, err := h.dash.ChallengeCompleted(chi.URLParam(r, "id"))
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"progress": snap.Progress,
		"escrow":   newEscrowView(snap.Escrow),
	})
}

type savingsRateRequest struct {
	Rate int `json:"rate"`
}

// SetSavingsRate handles PUT /api/v1/savings/rate.
func (h *Handler) SetSavingsRate(w http.ResponseWriter, r *http.Request) {
	var req savingsRateRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	savings, err := h.dash.SetSavingsRate(req.Rate)
	if err != nil {
		writeDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, savings)
}

// DrainNotifications handles GET /api/v1/notifications.
func (h *Handler) DrainNotifications(w http.ResponseWriter, _ *http.Request) {
	notes := h.dash.Notifications()
	if notes == nil {
		notes = []domain.Notification{}
	}
	writeJSON(w, http.StatusOK, notes)
}

// ListJournal handles GET /api/v1/journal.
func (h *Handler) ListJournal(w http.ResponseWriter, r *http.Request) {
	const maxLimit = 365
	limit := 30
	if l := r.URL.Query().Get("limit"); l != "" {
		if n, err := strconv.Atoi(l); err == nil && n > 0 {
			limit = min(n, maxLimit)
		}
	}

	entries, err := h.journal.List(r.Context(), limit)
	if err != nil {
		slog.Error("failed to list journal entries", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if entries == nil {
		entries = []snapshot.Entry{}
	}
	writeJSON(w, http.StatusOK, entries)
}

// GetLatestJournal handles GET /api/v1/journal/latest.
func (h *Handler) GetLatestJournal(w http.ResponseWriter, r *http.Request) {
	e, err := h.journal.GetLatest(r.Context())
	if err != nil {
		if errors.Is(err, snapshot.ErrNotFound) {
			writeError(w, http.StatusNotFound, "no journal entries found")
			return
		}
		slog.Error("failed to get latest journal entry", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
		return
	}
	writeJSON(w, http.StatusOK, e)
}

// Export handles POST /api/v1/export.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	if h.exporter == nil {
		writeError(w, http.StatusServiceUnavailable, "export not configured")
		return
	}
	snap := h.dash.Snapshot()
	if err := h.exporter.Export(r.Context(), snap); err != nil {
		slog.Error("failed to export snapshot", "version", snap.Version, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to export snapshot")
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "exported", "version": snap.Version})
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// writeDomainError maps engine errors: validation → 400, invalid transition → 409.
func writeDomainError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrValidation):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, domain.ErrInvalidTransition):
		writeError(w, http.StatusConflict, err.Error())
	default:
		slog.Error("unexpected engine error", "error", err)
		writeError(w, http.StatusInternalServerError, "internal error")
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		slog.Error("failed to marshal JSON response", "error", err)
		http.Error(w, `{"error":"internal error"}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		slog.Warn("failed to write HTTP response body", "error", err)
		return
	}
	_, _ = w.Write([]byte("\n"))
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, map[string]string{"error": msg})
}
