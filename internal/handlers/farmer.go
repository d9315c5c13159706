package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/agrunetcore/farmhub/internal/export"
	"github.com/agrunetcore/farmhub/internal/jobs"
	"github.com/agrunetcore/farmhub/internal/query"
	"github.com/agrunetcore/farmhub/internal/services"
	"github.com/agrunetcore/farmhub/types"
)

// FarmerHandler provides the farmer collection endpoints: the raw
// persistence surface, the processed dashboard views, and CSV export.
type FarmerHandler struct {
	farmerService *services.FarmerService
	snapshot      *jobs.Snapshot
}

// NewFarmerHandler constructs a handler. snapshot may be nil, in which case
// suggestion and stats reads go straight to the store.
func NewFarmerHandler(farmerService *services.FarmerService, snapshot *jobs.Snapshot) *FarmerHandler {
	return &FarmerHandler{
		farmerService: farmerService,
		snapshot:      snapshot,
	}
}

// FarmerRouter registers farmer routes on the given router. All routes
// require an active session; the stats endpoint additionally requires the
// superadmin role.
func FarmerRouter(
	r chi.Router,
	handler *FarmerHandler,
	requireSession func(http.Handler) http.Handler,
	requireSuperAdmin func(http.Handler) http.Handler,
) {
	r.Use(requireSession)
	r.Get("/", handler.ListFarmers)
	r.Post("/", handler.RegisterFarmer)
	r.Get("/view", handler.View)
	r.Get("/suggestions", handler.Suggestions)
	r.Get("/types", handler.FarmTypes)
	r.Get("/export", handler.Export)
	r.With(requireSuperAdmin).Get("/stats", handler.Stats)
}

// ListFarmers returns the raw farmer collection as a JSON array, the
// persistence endpoint's read surface.
func (h *FarmerHandler) ListFarmers(w http.ResponseWriter, r *http.Request) {
	farmers, err := h.farmerService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error fetching farmers")
		return
	}
	writeJSON(w, http.StatusOK, farmers)
}

// RegisterFarmer validates and stores one farmer record.
func (h *FarmerHandler) RegisterFarmer(w http.ResponseWriter, r *http.Request) {
	var farmer types.Farmer
	if err := json.NewDecoder(r.Body).Decode(&farmer); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request")
		return
	}

	if message := validateFarmer(&farmer); message != "" {
		writeError(w, http.StatusBadRequest, message)
		return
	}

	if _, err := h.farmerService.Register(r.Context(), farmer); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to save farmer data")
		return
	}

	writeJSON(w, http.StatusCreated, MessageResponse{Message: "Farmer registered successfully"})
}

// View returns one processed page of the collection: filtered, sorted, and
// paginated according to the query parameters.
func (h *FarmerHandler) View(w http.ResponseWriter, r *http.Request) {
	state, err := parseQueryState(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	farmers, err := h.farmerService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error fetching farmers")
		return
	}

	writeJSON(w, http.StatusOK, query.Apply(farmers, state))
}

// Suggestions returns the top matches for the raw, non-debounced search
// text typed so far.
func (h *FarmerHandler) Suggestions(w http.ResponseWriter, r *http.Request) {
	raw := r.URL.Query().Get("q")

	farmers, err := h.collection(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error fetching farmers")
		return
	}

	suggestions := query.Suggest(farmers, raw)
	if suggestions == nil {
		suggestions = []types.Farmer{}
	}
	writeJSON(w, http.StatusOK, suggestions)
}

// FarmTypes returns the category filter options.
func (h *FarmerHandler) FarmTypes(w http.ResponseWriter, r *http.Request) {
	farmers, err := h.collection(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error fetching farmers")
		return
	}
	writeJSON(w, http.StatusOK, query.FarmTypes(farmers))
}

// Stats returns the dashboard summary over the whole collection.
func (h *FarmerHandler) Stats(w http.ResponseWriter, r *http.Request) {
	farmers, err := h.collection(r)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error fetching farmers")
		return
	}
	writeJSON(w, http.StatusOK, query.Summarize(farmers))
}

// Export streams the current filtered view as a CSV download. Pagination
// does not apply: the whole processed list is exported.
func (h *FarmerHandler) Export(w http.ResponseWriter, r *http.Request) {
	state, err := parseQueryState(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	farmers, err := h.farmerService.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error fetching farmers")
		return
	}

	// One page covering everything: exports ignore pagination.
	state.Page = 1
	state.PageSize = len(farmers) + 1
	result := query.Apply(farmers, state)

	if len(result.Items) == 0 {
		writeJSON(w, http.StatusOK, MessageResponse{Message: "No rows to export"})
		return
	}

	filename := export.Filename(time.Now())
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="`+filename+`"`)
	// Headers are already committed at this point; a write failure here
	// just truncates the download.
	_ = export.Write(w, result.Items)
}

func (h *FarmerHandler) collection(r *http.Request) ([]types.Farmer, error) {
	if h.snapshot != nil {
		return h.snapshot.Current(), nil
	}
	return h.farmerService.List(r.Context())
}

func validateFarmer(farmer *types.Farmer) string {
	farmer.Name = strings.TrimSpace(farmer.Name)
	farmer.Email = strings.TrimSpace(farmer.Email)
	farmer.FarmName = strings.TrimSpace(farmer.FarmName)
	farmer.FarmType = strings.TrimSpace(farmer.FarmType)
	farmer.FarmSize = strings.TrimSpace(farmer.FarmSize)

	if farmer.Name == "" || farmer.Email == "" {
		return "Please enter your name and a valid email."
	}
	if !emailPattern.MatchString(farmer.Email) {
		return "Invalid email address."
	}
	if farmer.FarmName == "" {
		return "Please enter your farm name."
	}
	if farmer.FarmType == "" {
		return "Please select your farm type."
	}
	size, err := strconv.ParseFloat(farmer.FarmSize, 64)
	if err != nil || size <= 0 {
		return "Please enter a valid farm size."
	}
	return ""
}

func parseQueryState(r *http.Request) (query.State, error) {
	values := r.URL.Query()
	state := query.State{
		Search:   values.Get("q"),
		FarmType: values.Get("type"),
		SortBy:   values.Get("sort"),
		SortDir:  values.Get("dir"),
		PageSize: query.DefaultPageSize,
		Page:     1,
	}

	switch state.SortBy {
	case "", query.SortByName, query.SortByFarmSize, query.SortByCreatedAt:
	default:
		return query.State{}, errors.New("invalid sort key")
	}
	switch state.SortDir {
	case "", query.SortAsc, query.SortDesc:
	default:
		return query.State{}, errors.New("invalid sort direction")
	}

	if raw := strings.TrimSpace(values.Get("page")); raw != "" {
		page, err := strconv.Atoi(raw)
		if err != nil || page < 1 {
			return query.State{}, errors.New("invalid page")
		}
		state.Page = page
	}
	return state, nil
}
