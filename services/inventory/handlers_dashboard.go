package inventory

import "net/http"

func (a *API) handleDashboard(w http.ResponseWriter, r *http.Request) {
	statusFilter := r.URL.Query().Get("status")
	query := r.URL.Query().Get("q")

	rendered, err := a.renderer.Render("dashboard.html.tmpl", map[string]any{
		"Title":    a.config.Title,
		"Machines": Project(a.deps.Store.List(), statusFilter, query),
		"Statuses": Statuses(),
		"Degraded": a.deps.Store.Degraded(),
	})
	if err != nil {
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write([]byte(rendered))
}
