package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/sandeepkv93/one-time-unlock-service/internal/domain"
	"github.com/sandeepkv93/one-time-unlock-service/internal/export"
	"github.com/sandeepkv93/one-time-unlock-service/internal/http/middleware"
	"github.com/sandeepkv93/one-time-unlock-service/internal/http/response"
	"github.com/sandeepkv93/one-time-unlock-service/internal/observability"
	"github.com/sandeepkv93/one-time-unlock-service/internal/repository"
	"github.com/sandeepkv93/one-time-unlock-service/internal/security"
	"github.com/sandeepkv93/one-time-unlock-service/internal/service"
)

const csvContentType = "text/csv; charset=utf-8"

type OperatorHandler struct {
	console service.OperatorConsole
	auth    *security.OperatorAuthenticator
	now     func() time.Time
}

func NewOperatorHandler(console service.OperatorConsole, auth *security.OperatorAuthenticator) *OperatorHandler {
	return &OperatorHandler{console: console, auth: auth, now: time.Now}
}

type tokenRequest struct {
	Key string `json:"key"`
}

// Token exchanges the operator key for a short-lived bearer token.
func (h *OperatorHandler) Token(w http.ResponseWriter, r *http.Request) {
	key := r.Header.Get(middleware.OperatorKeyHeader)
	if key == "" {
		var req tokenRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err == nil {
			key = req.Key
		}
	}
	token, expiresAt, err := h.auth.IssueToken(key)
	if err != nil {
		if !errors.Is(err, security.ErrInvalidOperatorCredential) {
			slog.ErrorContext(r.Context(), "operator token signing failed", "error", err)
			response.Error(w, r, http.StatusInternalServerError, response.CodeInternal, "unexpected error", nil)
			return
		}
		observability.RecordOperatorAuth(r.Context(), "token_exchange", "rejected")
		observability.Audit(r, "operator.token.rejected")
		response.Error(w, r, http.StatusUnauthorized, response.CodeUnauthorized, "operator credential required", nil)
		return
	}
	observability.RecordOperatorAuth(r.Context(), "token_exchange", "accepted")
	observability.Audit(r, "operator.token.issued")
	response.JSON(w, r, http.StatusOK, map[string]any{
		"token_type":   "Bearer",
		"access_token": token,
		"expires_at":   expiresAt,
	})
}

func (h *OperatorHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var req service.GenerateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeBodyError(w, r, err)
		return
	}
	res, err := h.console.GenerateBatch(r.Context(), req)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	observability.Audit(r, "operator.generate",
		"batch", res.Batch, "requested", res.Requested, "inserted", res.Inserted, "skipped", res.Skipped)

	if wantsCSV(r) {
		h.writeCSV(w, r, fmt.Sprintf("codes-%s.csv", res.Batch), res.Codes)
		return
	}
	response.JSON(w, r, http.StatusCreated, res)
}

func (h *OperatorHandler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	query := repository.CodeListQuery{
		PageRequest: repository.PageRequest{
			Page:     atoiOrZero(q.Get("page")),
			PageSize: atoiOrZero(q.Get("page_size")),
		},
		Batch: strings.TrimSpace(q.Get("batch")),
	}
	switch state := domain.CodeState(strings.ToLower(strings.TrimSpace(q.Get("state")))); state {
	case "":
	case domain.CodeStateRedeemed, domain.CodeStateUnredeemed:
		query.State = state
	default:
		response.Error(w, r, http.StatusBadRequest, response.CodeBadRequest, "state must be redeemed or unredeemed", nil)
		return
	}
	page, err := h.console.List(r.Context(), query)
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, page)
}

func (h *OperatorHandler) Export(w http.ResponseWriter, r *http.Request) {
	codes, err := h.console.Export(r.Context())
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	observability.Audit(r, "operator.export", "count", len(codes))
	h.writeCSV(w, r, fmt.Sprintf("codes-export-%s.csv", h.now().UTC().Format("20060102-150405")), codes)
}

func (h *OperatorHandler) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := h.console.Stats(r.Context())
	if err != nil {
		h.writeStoreError(w, r, err)
		return
	}
	response.JSON(w, r, http.StatusOK, stats)
}

func (h *OperatorHandler) writeCSV(w http.ResponseWriter, r *http.Request, filename string, codes []domain.Code) {
	response.Attachment(w, csvContentType, filename)
	w.WriteHeader(http.StatusOK)
	if err := export.WriteCodesCSV(w, codes); err != nil {
		slog.ErrorContext(r.Context(), "csv write failed", "error", err)
	}
}

func (h *OperatorHandler) writeStoreError(w http.ResponseWriter, r *http.Request, err error) {
	slog.ErrorContext(r.Context(), "operator request failed", "error", err)
	if errors.Is(err, service.ErrStoreUnavailable) {
		response.Error(w, r, http.StatusServiceUnavailable, response.CodeStoreUnavailable, "temporary failure, please try again", nil)
		return
	}
	response.Error(w, r, http.StatusInternalServerError, response.CodeInternal, "unexpected error", nil)
}

func wantsCSV(r *http.Request) bool {
	if strings.EqualFold(r.URL.Query().Get("format"), "csv") {
		return true
	}
	return strings.Contains(strings.ToLower(r.Header.Get("Accept")), "text/csv")
}

func atoiOrZero(s string) int {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0
	}
	return n
}
