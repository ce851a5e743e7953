package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/sandeepkv93/one-time-unlock-service/internal/domain"
	"github.com/sandeepkv93/one-time-unlock-service/internal/http/middleware"
	"github.com/sandeepkv93/one-time-unlock-service/internal/http/response"
	"github.com/sandeepkv93/one-time-unlock-service/internal/observability"
	"github.com/sandeepkv93/one-time-unlock-service/internal/security"
	"github.com/sandeepkv93/one-time-unlock-service/internal/service"
)

type CookieSettings struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

type RedeemHandler struct {
	engine service.Redeemer
	gate   *service.SessionGate
	cookie CookieSettings
}

func NewRedeemHandler(engine service.Redeemer, gate *service.SessionGate, cookie CookieSettings) *RedeemHandler {
	return &RedeemHandler{engine: engine, gate: gate, cookie: cookie}
}

type redeemRequest struct {
	Code string `json:"code"`
}

type sessionView struct {
	Unlocked   bool       `json:"unlocked"`
	Code       string     `json:"code,omitempty"`
	RedeemedAt *time.Time `json:"redeemed_at,omitempty"`
}

func (h *RedeemHandler) Redeem(w http.ResponseWriter, r *http.Request) {
	raw, err := readCodeInput(r)
	if err != nil {
		writeBodyError(w, r, err)
		return
	}
	session, ok := middleware.SessionFromContext(r.Context())
	if !ok {
		response.Error(w, r, http.StatusInternalServerError, response.CodeInternal, "session unavailable", nil)
		return
	}

	res, err := h.engine.Redeem(r.Context(), raw, session)
	if err != nil {
		slog.ErrorContext(r.Context(), "redeem failed", "error", err)
		if !errors.Is(err, service.ErrStoreUnavailable) {
			response.Error(w, r, http.StatusInternalServerError, response.CodeInternal, "unexpected error", nil)
			return
		}
	}
	observability.Audit(r, "code.redeem", "outcome", string(res.Outcome))

	if res.Outcome != domain.OutcomeUnlocked {
		status, code, message := outcomeError(res.Outcome)
		response.Error(w, r, status, code, message, nil)
		return
	}
	if err := h.gate.Commit(r.Context(), session); err != nil {
		// The code is spent at this point; surface it so support can rebind by hand.
		slog.ErrorContext(r.Context(), "session commit after redeem failed", "error", err, "code", res.Code)
		response.Error(w, r, http.StatusServiceUnavailable, response.CodeStoreUnavailable, "temporary failure, please contact support", nil)
		return
	}
	security.SetSessionCookie(w, h.cookie.Name, session.ID, h.cookie.TTL, h.cookie.Secure)
	response.JSON(w, r, http.StatusOK, map[string]any{
		"outcome": res.Outcome,
		"code":    res.Code,
	})
}

func (h *RedeemHandler) Session(w http.ResponseWriter, r *http.Request) {
	session, _ := middleware.SessionFromContext(r.Context())
	view := sessionView{}
	if session.Unlocked() {
		view = sessionView{Unlocked: true, Code: session.BoundCode, RedeemedAt: session.RedeemedAt}
	}
	response.JSON(w, r, http.StatusOK, view)
}

func readCodeInput(r *http.Request) (string, error) {
	ct := strings.ToLower(r.Header.Get("Content-Type"))
	if strings.HasPrefix(ct, "application/x-www-form-urlencoded") || strings.HasPrefix(ct, "multipart/form-data") {
		return r.FormValue("code"), nil
	}
	var req redeemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return "", err
	}
	return req.Code, nil
}

// outcomeError maps a non-success outcome to its HTTP status and stable error
// code. Messages differ per outcome but never hint at similar codes.
func outcomeError(outcome domain.RedeemOutcome) (int, string, string) {
	switch outcome {
	case domain.OutcomeInvalidFormat:
		return http.StatusBadRequest, response.CodeInvalidFormat, "please enter a valid code"
	case domain.OutcomeNotFound:
		return http.StatusNotFound, response.CodeNotFound, "this code is not valid"
	case domain.OutcomeAlreadyRedeemed:
		return http.StatusConflict, response.CodeAlreadyRedeemed, "this code has already been used"
	default:
		return http.StatusServiceUnavailable, response.CodeStoreUnavailable, "temporary failure, please try again"
	}
}

func writeBodyError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		response.Error(w, r, http.StatusRequestEntityTooLarge, response.CodePayloadTooLarge, "request body too large", nil)
		return
	}
	response.Error(w, r, http.StatusBadRequest, response.CodeBadRequest, "invalid request body", nil)
}
