// Package api is the HTTP surface for the webapp: account state,
// free profile checks and paid action execution. Business failures are
// reported as {success:false} with a generic message on a 200 response,
// which is what the webapp client expects; transport-level statuses are
// reserved for malformed requests and persistence faults.
package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/Yichu-bro/Myfaff/internal/app"
	"github.com/Yichu-bro/Myfaff/internal/config"
	"github.com/Yichu-bro/Myfaff/internal/profile"
	"github.com/Yichu-bro/Myfaff/internal/simulate"
	"github.com/Yichu-bro/Myfaff/internal/store"
)

// requestTimeout bounds a full execute cycle: two simulated upstream
// calls of up to 3s each plus persistence leave plenty of headroom.
const requestTimeout = 30 * time.Second

type API struct {
	Cfg   config.Config
	App   *app.App
	Guard *Guard
}

type checkProfileRequest struct {
	UID    string `json:"uid"`
	Region string `json:"region"`
}

type executeRequest struct {
	TgID   string `json:"tgId"`
	UID    string `json:"uid"`
	Region string `json:"region"`
	Action string `json:"action"`
}

type checkProfileResponse struct {
	Success bool             `json:"success"`
	Data    *profile.Profile `json:"data,omitempty"`
	Error   string           `json:"error,omitempty"`
}

type executeResponse struct {
	Success  bool   `json:"success"`
	NewCoins *int64 `json:"newCoins,omitempty"`
	Message  string `json:"message,omitempty"`
	Error    string `json:"error,omitempty"`
}

func (a *API) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(a.corsMiddleware)
	if a.Guard != nil {
		r.Use(a.Guard.Middleware)
	}

	r.Get("/user/{id}", a.user)
	r.Post("/check-profile", a.checkProfile)
	r.Post("/execute", a.execute)
	return r
}

func (a *API) user(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(chi.URLParam(r, "id"))
	if id == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "missing id"})
		return
	}
	acct, err := a.App.Account(r.Context(), id, "Player")
	if err != nil {
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "DB Error"})
		return
	}
	writeJSON(w, http.StatusOK, acct)
}

func (a *API) checkProfile(w http.ResponseWriter, r *http.Request) {
	var req checkProfileRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, checkProfileResponse{Success: false, Error: "bad json"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	prof, err := a.App.CheckProfile(ctx, strings.TrimSpace(req.UID), req.Region)
	if err != nil {
		writeJSON(w, http.StatusOK, checkProfileResponse{Success: false, Error: "Invalid UID or Server Busy"})
		return
	}
	writeJSON(w, http.StatusOK, checkProfileResponse{Success: true, Data: &prof})
}

func (a *API) execute(w http.ResponseWriter, r *http.Request) {
	var req executeRequest
	if err := readJSON(r, &req); err != nil {
		writeJSON(w, http.StatusBadRequest, executeResponse{Success: false, Error: "bad json"})
		return
	}
	if strings.TrimSpace(req.TgID) == "" {
		writeJSON(w, http.StatusOK, executeResponse{Success: false, Error: "Missing User"})
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), requestTimeout)
	defer cancel()

	out, err := a.App.Execute(ctx, strings.TrimSpace(req.TgID), "Player", strings.TrimSpace(req.UID), req.Region, req.Action)
	if err != nil {
		writeJSON(w, http.StatusOK, executeResponse{Success: false, Error: executeErrorMessage(err)})
		return
	}
	coins := out.Account.Coins
	writeJSON(w, http.StatusOK, executeResponse{Success: true, NewCoins: &coins, Message: out.Message})
}

// executeErrorMessage maps internal failures to the short client-facing
// strings the webapp shows. Internal detail never reaches the client.
func executeErrorMessage(err error) string {
	switch {
	case errors.Is(err, app.ErrInvalidUID), errors.Is(err, simulate.ErrInvalidUID):
		return "Invalid UID Format"
	case errors.Is(err, store.ErrInsufficientCoins):
		return "Low Coins"
	case errors.Is(err, profile.ErrNotFound), errors.Is(err, profile.ErrUnavailable):
		return "UID Verification Failed"
	case errors.Is(err, simulate.ErrTargetBusy):
		return "Server Busy, Try Again"
	default:
		return "Server Error"
	}
}

func (a *API) corsMiddleware(next http.Handler) http.Handler {
	allowed := map[string]struct{}{}
	for _, origin := range a.Cfg.CORSOrigins {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin != "" {
			allowed[origin] = struct{}{}
		}
	}
	if u := strings.TrimRight(strings.TrimSpace(a.Cfg.WebappURL), "/"); u != "" {
		allowed[u] = struct{}{}
	}
	if u := strings.TrimRight(strings.TrimSpace(a.Cfg.PublicBaseURL), "/"); u != "" {
		allowed[u] = struct{}{}
	}
	_, allowAll := allowed["*"]

	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		origin := strings.TrimRight(strings.TrimSpace(r.Header.Get("Origin")), "/")
		if origin != "" {
			if _, ok := allowed[origin]; ok || allowAll {
				w.Header().Set("Access-Control-Allow-Origin", origin)
				w.Header().Set("Vary", "Origin")
				w.Header().Set("Access-Control-Allow-Methods", "GET,POST,OPTIONS")
				w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
				w.Header().Set("Access-Control-Max-Age", "600")
			}
		}
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func readJSON(r *http.Request, dst any) error {
	return json.NewDecoder(r.Body).Decode(dst)
}
