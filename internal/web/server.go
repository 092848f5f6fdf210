// Package web serves the price prediction form.
package web

import (
	"embed"
	"encoding/json"
	"errors"
	"html/template"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/microcosm-cc/bluemonday"
	"github.com/rotisserie/eris"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/sells-group/ev-msrp/internal/inference"
	"github.com/sells-group/ev-msrp/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// Messages shown above the error detail.
const (
	MsgPredictionFailed = "Prediction failed. The model might not match expected inputs."
	MsgInvalidInput     = "Some inputs are outside the allowed values."
	MsgPredicted        = "Predicted EV Base MSRP:"
)

// Options configures a Handler.
type Options struct {
	Builder   *inference.Builder
	Invoker   *inference.Invoker
	ModelName string
	Title     string
	IntroHTML string
	RateLimit float64 // predictions per second; 0 disables the limit
	RateBurst int
}

// Handler renders the form and handles submissions.
type Handler struct {
	builder   *inference.Builder
	invoker   *inference.Invoker
	modelName string
	title     string
	intro     template.HTML
	limiter   *rate.Limiter
	page      *template.Template
}

// New creates a Handler.
func New(opts Options) (*Handler, error) {
	if opts.Builder == nil || opts.Invoker == nil {
		return nil, eris.New("web: builder and invoker are required")
	}

	page, err := template.ParseFS(templateFS, "templates/page.html")
	if err != nil {
		return nil, eris.Wrap(err, "web: parse templates")
	}

	h := &Handler{
		builder:   opts.Builder,
		invoker:   opts.Invoker,
		modelName: opts.ModelName,
		title:     opts.Title,
		intro:     template.HTML(bluemonday.UGCPolicy().Sanitize(opts.IntroHTML)), //nolint:gosec // sanitized
		page:      page,
	}
	if opts.RateLimit > 0 {
		burst := opts.RateBurst
		if burst < 1 {
			burst = 1
		}
		h.limiter = rate.NewLimiter(rate.Limit(opts.RateLimit), burst)
	}
	return h, nil
}

// Routes returns the HTTP handler tree.
func (h *Handler) Routes() http.Handler {
	r := chi.NewRouter()
	r.Use(requestLogger)
	r.Use(middleware.Recoverer)
	r.Use(securityHeaders)

	r.Get("/health", h.handleHealth)
	r.Get("/", h.handleForm)
	r.With(limitSubmissions(h.limiter)).Post("/", h.handleSubmit)

	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{ //nolint:errcheck
		"status": "ok",
		"model":  h.modelName,
	})
}

func (h *Handler) handleForm(w http.ResponseWriter, r *http.Request) {
	rec := model.DefaultRecord()
	data := h.newPage(inference.Values(rec))
	data.Preview = rec.Cells()
	h.render(w, http.StatusOK, data)
}

func (h *Handler) handleSubmit(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form body", http.StatusBadRequest)
		return
	}

	data := h.newPage(r.PostForm)
	data.Submitted = true

	rec, err := h.builder.Build(r.PostForm)
	data.Preview = rec.Cells()
	if err != nil {
		var fe inference.FieldErrors
		if !errors.As(err, &fe) {
			fe = inference.FieldErrors{{Field: "form", Reason: err.Error()}}
		}
		data.Failure = MsgInvalidInput
		for _, e := range fe {
			data.Details = append(data.Details, e.Error())
		}
		zap.L().Info("form rejected",
			zap.String("request_id", middleware.GetReqID(r.Context())),
			zap.Error(err),
		)
		h.render(w, http.StatusUnprocessableEntity, data)
		return
	}

	out := h.invoker.Invoke(r.Context(), rec)
	if out.OK() {
		data.Price = out.Display()
	} else {
		data.Failure = MsgPredictionFailed
		data.Details = []string{out.Detail()}
	}
	h.render(w, http.StatusOK, data)
}

type pageData struct {
	Title     string
	Intro     template.HTML
	Values    url.Values
	Bounds    inference.Bounds
	EVTypes   []model.EVType
	CAFVs     []model.CAFVEligibility
	Preview   []model.Cell
	Submitted bool
	Price     string
	Failure   string
	Details   []string
	Keys      formKeys
	Labels    formLabels
	Predicted string
}

// Value returns the submitted or default value for a form key.
func (p pageData) Value(key string) string {
	return p.Values.Get(key)
}

type formKeys struct {
	County, City, State, PostalCode, ModelYear, Make, Model, EVType, CAFV, ElectricRange string
}

type formLabels struct {
	EVType, CAFV string
}

func (h *Handler) newPage(values url.Values) pageData {
	return pageData{
		Title:   h.title,
		Intro:   h.intro,
		Values:  values,
		Bounds:  h.builder.Bounds(),
		EVTypes: model.EVTypes(),
		CAFVs:   model.CAFVEligibilities(),
		Keys: formKeys{
			County:        inference.KeyCounty,
			City:          inference.KeyCity,
			State:         inference.KeyState,
			PostalCode:    inference.KeyPostalCode,
			ModelYear:     inference.KeyModelYear,
			Make:          inference.KeyMake,
			Model:         inference.KeyModel,
			EVType:        inference.KeyEVType,
			CAFV:          inference.KeyCAFV,
			ElectricRange: inference.KeyElectricRange,
		},
		Labels:    formLabels{EVType: model.ColEVType, CAFV: model.ColCAFV},
		Predicted: MsgPredicted,
	}
}

func (h *Handler) render(w http.ResponseWriter, status int, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	if err := h.page.ExecuteTemplate(w, "page.html", data); err != nil {
		zap.L().Error("render page", zap.Error(err))
	}
}
