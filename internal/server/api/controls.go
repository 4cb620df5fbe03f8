package api

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/ayusman/airboard/internal/board"
)

// Controller is the brush state driven by the API.
type Controller interface {
	Settings() board.Settings
	SetColor(name string) error
	SetThickness(thickness int) int
	Clear()
}

// ControlsHandler handles GET and PUT /api/controls.
type ControlsHandler struct {
	controller Controller
}

// NewControlsHandler creates a new ControlsHandler for c.
func NewControlsHandler(c Controller) *ControlsHandler {
	return &ControlsHandler{controller: c}
}

// Request and response types

// updateControlsRequest leaves a field unchanged when it is omitted.
type updateControlsRequest struct {
	Color     *string `json:"color"`
	Thickness *int    `json:"thickness"`
}

type controlsResponse struct {
	Color        string   `json:"color"`
	Thickness    int      `json:"thickness"`
	Colors       []string `json:"colors"`
	MinThickness int      `json:"min_thickness"`
	MaxThickness int      `json:"max_thickness"`
}

func (h *ControlsHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.get(w, r)
	case http.MethodPut:
		h.update(w, r)
	default:
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
	}
}

func (h *ControlsHandler) response() controlsResponse {
	s := h.controller.Settings()
	return controlsResponse{
		Color:        s.ColorName,
		Thickness:    s.Thickness,
		Colors:       board.ColorNames(),
		MinThickness: board.MinThickness,
		MaxThickness: board.MaxThickness,
	}
}

// get handles GET /api/controls and returns the current brush.
func (h *ControlsHandler) get(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.response())
}

// update handles PUT /api/controls. Both fields are validated before either is applied.
func (h *ControlsHandler) update(w http.ResponseWriter, r *http.Request) {
	var req updateControlsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid JSON")
		return
	}

	if req.Color != nil {
		if _, ok := board.Colors[*req.Color]; !ok {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Unknown color %q", *req.Color))
			return
		}
	}
	if req.Thickness != nil && (*req.Thickness < board.MinThickness || *req.Thickness > board.MaxThickness) {
		writeError(w, http.StatusBadRequest,
			fmt.Sprintf("Thickness must be between %d and %d", board.MinThickness, board.MaxThickness))
		return
	}

	if req.Color != nil {
		if err := h.controller.SetColor(*req.Color); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}
	if req.Thickness != nil {
		h.controller.SetThickness(*req.Thickness)
	}

	writeJSON(w, http.StatusOK, h.response())
}

// ClearHandler handles POST /api/clear.
type ClearHandler struct {
	controller Controller
}

// NewClearHandler creates a new ClearHandler for c.
func NewClearHandler(c Controller) *ClearHandler {
	return &ClearHandler{controller: c}
}

// ServeHTTP requests a clear; the surface is wiped before the next processed frame.
func (h *ClearHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	h.controller.Clear()
	w.WriteHeader(http.StatusAccepted)
}
