// File: internal/handlers/navigation_handler.go
package handlers

import (
	"net/http"

	"github.com/iyunix/go-onyom/internal/app"
	"github.com/iyunix/go-onyom/internal/dtos"
	"github.com/iyunix/go-onyom/internal/middleware"
	"github.com/iyunix/go-onyom/internal/services/navigation"
)

type NavigationHandler struct {
	clients *app.Clients
}

func NewNavigationHandler(clients *app.Clients) *NavigationHandler {
	return &NavigationHandler{clients: clients}
}

// Decide handles GET /api/navigation?path=. A signed-in caller goes through
// their client's navigator, so an unchanged repeat answers navigate=false.
// Anonymous callers get a fresh client per request and are judged as signed out.
func (h *NavigationHandler) Decide(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		path = navigation.PathRoot
	}

	c, err := h.clients.Resolve(r.Context(), middleware.TokenFromRequest(r))
	if err != nil {
		writeDomainError(w, err, nil)
		return
	}
	var (
		target string
		ok     bool
	)
	if c.Session.Current().IsAuthenticated() {
		target, ok = c.Visit(path)
	} else {
		target, ok = navigation.Decide(c.Session.Current(), path)
	}
	writeJSON(w, http.StatusOK, dtos.NavigationResponseDTO{Path: path, Redirect: target, Navigate: ok})
}
