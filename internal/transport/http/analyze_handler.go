package http

import (
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	"idacli/internal/analysis"
	"idacli/internal/config"
	"idacli/internal/dataprocessing"
	apierrors "idacli/internal/errors"
	"idacli/internal/middleware"
)

// AnalyzeHandler handles spreadsheet upload and analysis requests
type AnalyzeHandler struct {
	cfg      *config.Config
	logger   *slog.Logger
	validate *validator.Validate
}

// NewAnalyzeHandler creates a new analyze handler
func NewAnalyzeHandler(cfg *config.Config, logger *slog.Logger) *AnalyzeHandler {
	return &AnalyzeHandler{
		cfg:      cfg,
		logger:   logger.With(slog.String("handler", "analyze")),
		validate: validator.New(),
	}
}

// analyzeRequest carries the validated request parameters.
type analyzeRequest struct {
	GroupBy []string `validate:"dive,min=1,max=64"`
}

// analyzeResponse is the JSON report returned to the client.
type analyzeResponse struct {
	Success bool             `json:"success"`
	Report  *analysis.Report `json:"report"`
}

// Analyze handles POST /api/analyze. The spreadsheet is read from the
// multipart "file" field; optional "group_by" fields add columns to the
// price-variance grouping key.
func (h *AnalyzeHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	r.Body = http.MaxBytesReader(w, r.Body, h.cfg.Server.MaxUploadBytes)
	if err := r.ParseMultipartForm(h.cfg.Server.MaxUploadBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrUploadTooLarge))
			return
		}
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.InvalidRequestWithError(err)))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrMissingFile))
		return
	}
	defer file.Close()

	req := analyzeRequest{GroupBy: r.MultipartForm.Value["group_by"]}
	if len(req.GroupBy) == 0 {
		req.GroupBy = h.cfg.Analysis.ExtraGroupKeys
	}
	if err := h.validate.Struct(&req); err != nil {
		render.Render(w, r, apierrors.NewErrorResponse(
			apierrors.ErrValidation("group_by", "grouping keys must be non-empty column names")))
		return
	}

	if !supportedUpload(header.Filename) {
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ErrUnsupportedFormat))
		return
	}

	h.logger.InfoContext(ctx, "analysis upload received",
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size),
		slog.Any("group_by", req.GroupBy))

	table, err := dataprocessing.Load(file, header.Filename)
	if err != nil {
		middleware.AnalysesTotal.WithLabelValues("parse_error").Inc()
		h.logger.ErrorContext(ctx, "upload parse failed",
			slog.String("filename", header.Filename),
			slog.String("error", err.Error()))
		render.Render(w, r, apierrors.NewErrorResponse(apierrors.ParseFailedError(err)))
		return
	}

	pipeline := analysis.NewPipeline(h.logger, analysis.PriceVarianceOptions{ExtraKeys: req.GroupBy})
	report := pipeline.Run(ctx, table, header.Filename)

	outcome := "ok"
	if len(report.StepErrors) > 0 {
		outcome = "partial"
	}
	middleware.AnalysesTotal.WithLabelValues(outcome).Inc()

	render.JSON(w, r, analyzeResponse{Success: true, Report: report})
}

// supportedUpload reports whether the uploaded filename has a format the
// loader can read.
func supportedUpload(filename string) bool {
	name := strings.ToLower(filename)
	for _, ext := range []string{".xlsx", ".xlsm", ".csv", ".txt"} {
		if strings.HasSuffix(name, ext) {
			return true
		}
	}
	return false
}
