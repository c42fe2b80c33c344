package inventory

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

func (a *API) handleListMachines(w http.ResponseWriter, r *http.Request) {
	statusFilter := strings.TrimSpace(r.URL.Query().Get("status"))
	if statusFilter != "" && statusFilter != FilterAll {
		if _, err := ParseStatus(statusFilter); err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
	}
	query := r.URL.Query().Get("q")

	machines := Project(a.deps.Store.List(), statusFilter, query)
	respondJSON(w, http.StatusOK, map[string]any{"machines": machines})
}

func (a *API) handleGetMachine(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("valid machine id is required"))
		return
	}

	machine, ok := a.deps.Store.Get(id)
	if !ok {
		respondError(w, http.StatusNotFound, fmt.Errorf("machine %s not found", id))
		return
	}
	respondJSON(w, http.StatusOK, map[string]any{"machine": machine})
}

func (a *API) handleCreateMachine(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name   string `json:"name"`
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	status := StatusIdle
	if strings.TrimSpace(req.Status) != "" {
		parsed, err := ParseStatus(req.Status)
		if err != nil {
			respondError(w, http.StatusBadRequest, err)
			return
		}
		status = parsed
	}

	machine := NewMachine(req.Name, status)
	if err := a.deps.Store.Add(machine); err != nil {
		if errors.Is(err, ErrInvalidName) {
			respondError(w, http.StatusUnprocessableEntity, err)
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	a.publishJSON(machineCreatedTopic, map[string]any{
		"machine_id": machine.ID,
		"name":       machine.Name,
		"status":     machine.Status,
	})

	respondJSON(w, http.StatusCreated, map[string]any{"machine": machine})
}

func (a *API) handleUpdateMachine(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("valid machine id is required"))
		return
	}

	var req struct {
		Name   string `json:"name"`
		Status string `json:"status"`
	}
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	status, err := ParseStatus(req.Status)
	if err != nil {
		respondError(w, http.StatusBadRequest, err)
		return
	}

	machine := Machine{
		ID:          id,
		Name:        req.Name,
		Status:      status,
		LastUpdated: time.Now().UTC(),
	}

	// A missing id is deliberately a no-op at the store boundary; the
	// handler still answers 200 with the submitted record.
	if err := a.deps.Store.Update(machine); err != nil {
		if errors.Is(err, ErrInvalidName) {
			respondError(w, http.StatusUnprocessableEntity, err)
			return
		}
		respondError(w, http.StatusInternalServerError, err)
		return
	}

	a.publishJSON(machineUpdatedTopic, map[string]any{
		"machine_id": machine.ID,
		"name":       machine.Name,
		"status":     machine.Status,
	})

	respondJSON(w, http.StatusOK, map[string]any{"machine": machine})
}

func (a *API) handleDeleteMachine(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondError(w, http.StatusBadRequest, errors.New("valid machine id is required"))
		return
	}

	a.deps.Store.Delete(id)

	a.publishJSON(machineDeletedTopic, map[string]any{
		"machine_id": id,
	})

	respondJSON(w, http.StatusNoContent, nil)
}

func (a *API) handleUndo(w http.ResponseWriter, r *http.Request) {
	machine, ok := a.deps.Store.Undo()
	if !ok {
		respondJSON(w, http.StatusNoContent, nil)
		return
	}

	a.publishJSON(machineRestoredTopic, map[string]any{
		"machine_id": machine.ID,
		"name":       machine.Name,
	})

	respondJSON(w, http.StatusOK, map[string]any{"machine": machine})
}
