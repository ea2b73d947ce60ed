package controllers

import (
	"context"
	"net/http"
	"time"

	"inkpost/app/metrics"
	"inkpost/app/views"
)

// Pinger reports whether the store is reachable.
type Pinger interface {
	Ping(ctx context.Context) error
}

// PagesController serves the static pages and the health check.
type PagesController struct {
	*Controller
	store Pinger
}

// NewPagesController creates a new PagesController
func NewPagesController(base *Controller, store Pinger) *PagesController {
	return &PagesController{Controller: base, store: store}
}

func (pc *PagesController) About(w http.ResponseWriter, r *http.Request) {
	pc.render(w, r, http.StatusOK, views.PageAbout, pc.pageData(w, r, "About"))
}

func (pc *PagesController) Contact(w http.ResponseWriter, r *http.Request) {
	pc.render(w, r, http.StatusOK, views.PageContact, pc.pageData(w, r, "Contact"))
}

// Health answers 200 "ok" while the store responds to a ping.
func (pc *PagesController) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	if err := pc.store.Ping(ctx); err != nil {
		metrics.ServiceHealth.Set(0)
		pc.logger.Warn("health check failed", "error", err)
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte("unavailable"))
		return
	}
	metrics.ServiceHealth.Set(1)
	_, _ = w.Write([]byte("ok"))
}
