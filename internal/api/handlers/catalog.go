// Package handlers contains the HTTP handlers of the site wizard API. Each
// handler declares the service contract it needs as a local interface and
// registers its routes on the /v1 router.
package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"sitewizard/internal/catalog"
	"sitewizard/internal/core"
	"sitewizard/internal/types"
)

// SectionCatalog lists a page section with its layout variants.
type SectionCatalog struct {
	ID       types.SectionID  `json:"id"`
	Variants []catalog.Option `json:"variants"`
}

// CatalogResponse is the body of GET /v1/catalog. The front end renders
// every choice from it, premium flags included.
type CatalogResponse struct {
	Currency     string             `json:"currency"`
	Plans        []catalog.Plan     `json:"plans"`
	AddOns       []catalog.AddOn    `json:"add_ons"`
	Features     []catalog.Feature  `json:"features"`
	Templates    []catalog.Template `json:"templates"`
	Palettes     []catalog.Option   `json:"palettes"`
	Fonts        []catalog.Option   `json:"fonts"`
	ButtonShapes []catalog.Option   `json:"button_shapes"`
	MotionStyles []catalog.Option   `json:"motion_styles"`
	Icons        []catalog.Option   `json:"icons"`
	Sections     []SectionCatalog   `json:"sections"`
	Channels     []types.ChannelID  `json:"channels"`
	ColorRoles   []string           `json:"color_roles"`
}

// CatalogHandler serves the static reference data.
type CatalogHandler struct {
	body CatalogResponse
}

// NewCatalogHandler builds the catalog response once; the data never
// changes while the process runs.
func NewCatalogHandler() *CatalogHandler {
	sections := catalog.Sections()
	sc := make([]SectionCatalog, 0, len(sections))
	for _, s := range sections {
		sc = append(sc, SectionCatalog{ID: s, Variants: catalog.Variants(s)})
	}
	return &CatalogHandler{body: CatalogResponse{
		Currency:     catalog.Currency,
		Plans:        catalog.Plans(),
		AddOns:       catalog.AddOns(),
		Features:     catalog.Features(),
		Templates:    catalog.Templates(),
		Palettes:     catalog.Palettes(),
		Fonts:        catalog.Fonts(),
		ButtonShapes: catalog.ButtonShapes(),
		MotionStyles: catalog.MotionStyles(),
		Icons:        catalog.Icons(),
		Sections:     sc,
		Channels:     catalog.Channels(),
		ColorRoles:   catalog.ColorRoles(),
	}}
}

// RegisterRoutes mounts GET /catalog.
func (h *CatalogHandler) RegisterRoutes(r chi.Router) {
	r.Get("/catalog", h.Get)
}

// Get writes the catalog.
func (h *CatalogHandler) Get(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Cache-Control", "public, max-age=300")
	core.Data(w, r, http.StatusOK, h.body)
}
