// internal/server/handlers/views.go

package handlers

import (
	"net/http"
	"strconv"

	"regiodash/internal/domain/region"
	"regiodash/internal/service/catalog"
)

// Catalog is the part of the region catalog the UI reads
type Catalog interface {
	Years() []int
	Variables() []region.Variable
	Options(year int) []catalog.Option
	ValidateYear(year int) error
}

// ViewHandler serves rendered views and dropdown options
type ViewHandler struct {
	sessions   *SessionHandler
	catalog    Catalog
	maxRegions int
}

// NewViewHandler creates a new view handler
func NewViewHandler(sessions *SessionHandler, regions Catalog, maxRegions int) *ViewHandler {
	return &ViewHandler{
		sessions:   sessions,
		catalog:    regions,
		maxRegions: maxRegions,
	}
}

type optionsResponse struct {
	Year      int               `json:"year"`
	Years     []int             `json:"years"`
	Variables []region.Variable `json:"variables"`
	Regions   []catalog.Option  `json:"regions"`
	Cap       int               `json:"cap"`
}

// GetOptions returns the dropdown contents for a year, the session's year
// when none is given
func (h *ViewHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	year := h.sessions.session(w, r).State().Year
	if s := r.URL.Query().Get("year"); s != "" {
		y, err := strconv.Atoi(s)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, KindBadRequest, "Invalid year")
			return
		}
		if err := h.catalog.ValidateYear(y); err != nil {
			respondWithFailure(w, h.sessions.logger, err)
			return
		}
		year = y
	}

	respondWithJSON(w, http.StatusOK, optionsResponse{
		Year:      year,
		Years:     h.catalog.Years(),
		Variables: h.catalog.Variables(),
		Regions:   h.catalog.Options(year),
		Cap:       h.maxRegions,
	})
}

// GetMap returns the choropleth of the caller's session
func (h *ViewHandler) GetMap(w http.ResponseWriter, r *http.Request) {
	state := h.sessions.session(w, r).State()

	b, err := h.sessions.views.MapJSON(r.Context(), state)
	if err != nil {
		respondWithFailure(w, h.sessions.logger, err)
		return
	}
	respondWithRaw(w, http.StatusOK, b)
}

// GetTimeSeries returns a side panel. The variable query parameter picks
// a column other than the session's.
func (h *ViewHandler) GetTimeSeries(w http.ResponseWriter, r *http.Request) {
	state := h.sessions.session(w, r).State()

	b, err := h.sessions.views.TimeSeriesJSON(r.Context(), state, r.URL.Query().Get("variable"))
	if err != nil {
		respondWithFailure(w, h.sessions.logger, err)
		return
	}
	respondWithRaw(w, http.StatusOK, b)
}

// GetTimeSeriesPNG returns a side panel as an image
func (h *ViewHandler) GetTimeSeriesPNG(w http.ResponseWriter, r *http.Request) {
	state := h.sessions.session(w, r).State()

	b, err := h.sessions.views.TimeSeriesPNG(r.Context(), state, r.URL.Query().Get("variable"))
	if err != nil {
		respondWithFailure(w, h.sessions.logger, err)
		return
	}

	w.Header().Set("Content-Type", "image/png")
	w.Header().Set("Content-Disposition", `inline; filename="timeseries.png"`)
	w.WriteHeader(http.StatusOK)
	w.Write(b)
}
