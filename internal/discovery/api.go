// Package discovery exposes the matcher and the intent classifier over
// HTTP for the landing page and internal tools.
package discovery

import (
	"context"
	"errors"
	"net/http"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"
	"github.com/rs/zerolog"

	"salvo-backend/internal/api/respond"
	"salvo-backend/internal/intent"
	"salvo-backend/internal/matcher"
	"salvo-backend/internal/model"
)

// Searcher is the matcher as used by the HTTP handlers.
type Searcher interface {
	SearchNearby(ctx context.Context, q model.SearchQuery) []model.MatchResult
	SearchByTextAndLocation(ctx context.Context, q model.SearchQuery, text string) []model.MatchResult
}

// Service serves search and classification requests.
type Service struct {
	search     Searcher
	classifier *intent.Classifier
	log        zerolog.Logger
}

// NewService creates a Service over search.
func NewService(search Searcher, log zerolog.Logger) *Service {
	return &Service{search: search, classifier: intent.NewClassifier(log), log: log}
}

// RegisterRoutes wires the discovery endpoints.
func (s *Service) RegisterRoutes(r *mux.Router) {
	r.HandleFunc("/api/search/nearby", s.nearbyHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/search/text", s.textHandler).Methods(http.MethodPost)
	r.HandleFunc("/api/intent", s.intentHandler).Methods(http.MethodPost)
}

// SearchRequest is the body of a search. Coordinates are pointers so a
// missing lat or lng is rejected instead of read as 0.
type SearchRequest struct {
	Latitude  *float64 `json:"lat" validate:"required"`
	Longitude *float64 `json:"lng" validate:"required"`
	RadiusKm  float64  `json:"radius_km,omitempty"`
	Category  string   `json:"category,omitempty"`
	Keywords  []string `json:"keywords,omitempty"`
}

// Query converts a present-checked request into a matcher query.
func (r SearchRequest) Query() model.SearchQuery {
	q := model.SearchQuery{RadiusKm: r.RadiusKm, Category: r.Category, Keywords: r.Keywords}
	if r.Latitude != nil {
		q.Latitude = *r.Latitude
	}
	if r.Longitude != nil {
		q.Longitude = *r.Longitude
	}
	return q
}

// TextSearchRequest is a SearchRequest plus the free text to rank by.
type TextSearchRequest struct {
	SearchRequest
	Text string `json:"text"`
}

var requestValidator = newRequestValidator()

func newRequestValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		return strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
	})
	return v
}

// SearchResponse wraps results so the envelope can grow.
type SearchResponse struct {
	Results []model.MatchResult `json:"results"`
	Count   int                 `json:"count"`
}

type intentRequest struct {
	Text string `json:"text"`
}

func (s *Service) nearbyHandler(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON body")
		return
	}
	if !s.validate(w, req) {
		return
	}
	q := req.Query()

	results := s.search.SearchNearby(r.Context(), q)
	respond.WriteJSON(w, http.StatusOK, SearchResponse{Results: results, Count: len(results)})
}

func (s *Service) textHandler(w http.ResponseWriter, r *http.Request) {
	var req TextSearchRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON body")
		return
	}
	if strings.TrimSpace(req.Text) == "" && len(req.Keywords) == 0 {
		respond.WriteFieldError(w, "text", "text or keywords required")
		return
	}
	if !s.validate(w, req.SearchRequest) {
		return
	}

	results := s.search.SearchByTextAndLocation(r.Context(), req.Query(), req.Text)
	respond.WriteJSON(w, http.StatusOK, SearchResponse{Results: results, Count: len(results)})
}

func (s *Service) intentHandler(w http.ResponseWriter, r *http.Request) {
	var req intentRequest
	if err := respond.DecodeJSON(r, &req); err != nil {
		respond.WriteBadRequest(w, "invalid JSON body")
		return
	}
	respond.WriteJSON(w, http.StatusOK, s.classifier.Classify(req.Text))
}

func (s *Service) validate(w http.ResponseWriter, req SearchRequest) bool {
	if err := requestValidator.Struct(req); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			respond.WriteFieldError(w, verrs[0].Field(), "is required")
			return false
		}
		respond.WriteBadRequest(w, err.Error())
		return false
	}

	err := matcher.Validate(req.Query())
	if err == nil {
		return true
	}
	var ve *matcher.ValidationError
	if errors.As(err, &ve) {
		s.log.Debug().Str("field", ve.Field).Str("reason", ve.Reason).Msg("rejected search query")
		respond.WriteFieldError(w, ve.Field, ve.Reason)
		return false
	}
	respond.WriteBadRequest(w, err.Error())
	return false
}
