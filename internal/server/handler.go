package server

import (
	"errors"
	"net/http"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/forPelevin/heatclip/internal/domain/crop"
	"github.com/forPelevin/heatclip/internal/domain/highlights"
	"github.com/forPelevin/heatclip/internal/pipeline"
	"github.com/forPelevin/heatclip/internal/ports"
	"github.com/forPelevin/heatclip/internal/types"
)

type processRequest struct {
	URL      string `json:"url" validate:"required,url"`
	Crop     string `json:"crop"`
	Subtitle *bool  `json:"subtitle"`
	Model    string `json:"model"`
	Language string `json:"language"`
	// Output is a directory name below the served clips root. It is the one
	// option that is rejected instead of falling back.
	Output  string `json:"output" validate:"omitempty,dirname"`
	HWAccel *bool  `json:"hwaccel"`
}

// effectiveConfig echoes the options a job actually ran with, after
// fallbacks and tool availability.
type effectiveConfig struct {
	Crop     string `json:"crop"`
	Subtitle bool   `json:"subtitle"`
	Model    string `json:"model"`
	Language string `json:"language"`
	Output   string `json:"output"`
	HWAccel  bool   `json:"hwaccel"`
}

type processResponse struct {
	Message    string              `json:"message"`
	Files      []string            `json:"files"`
	Config     effectiveConfig     `json:"config"`
	Considered int                 `json:"considered"`
	Produced   int                 `json:"produced"`
	Clips      []types.ClipOutcome `json:"clips"`
}

type errorResponse struct {
	Error string `json:"error"`
}

var (
	validate   = newValidator()
	dirnameRe  = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9._-]{0,63}$`)
	languageRe = regexp.MustCompile(`^[a-z]{2,3}$`)
)

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	_ = v.RegisterValidation("dirname", func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return dirnameRe.MatchString(s) && !strings.Contains(s, "..")
	})
	return v
}

func (s *Server) handleProcess(c *gin.Context) {
	var req processRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: "invalid request body: " + err.Error()})
		return
	}
	if err := validate.Struct(req); err != nil {
		c.JSON(http.StatusBadRequest, errorResponse{Error: validationMessage(err)})
		return
	}

	cfg := s.jobConfig(req)
	s.log.Info().Str("url", req.URL).Str("crop", cfg.Crop.String()).Bool("subtitle", cfg.Subtitles).Msg("process request")

	rep, err := s.run(c.Request.Context(), cfg)
	if err != nil {
		s.log.Warn().Err(err).Str("url", req.URL).Msg("process failed")
		c.JSON(statusFor(err), errorResponse{Error: err.Error()})
		return
	}

	resp := processResponse{
		Message:    "Processing complete",
		Files:      []string{},
		Config:     effective(cfg, rep),
		Considered: rep.Result.Considered,
		Produced:   rep.Result.Produced,
		Clips:      []types.ClipOutcome{},
	}
	resp.Clips = append(resp.Clips, rep.Result.Outcomes...)
	if rep.Result.Considered == 0 {
		resp.Message = "No segment reached the score threshold"
	}
	for _, f := range rep.Result.Files() {
		resp.Files = append(resp.Files, s.clipURL(f))
	}
	c.JSON(http.StatusOK, resp)
}

// jobConfig applies request options over the server defaults. Unknown crop,
// model or language values keep the default.
func (s *Server) jobConfig(req processRequest) pipeline.Config {
	cfg := s.cfg.Base
	cfg.URL = req.URL
	cfg.OutDir = s.cfg.ClipsDir

	if m, ok := crop.ParseMode(req.Crop); ok {
		cfg.Crop = m
	}
	if req.Subtitle != nil {
		cfg.Subtitles = *req.Subtitle
	}
	if m, ok := types.ParseWhisperModel(req.Model); ok {
		cfg.Model = m
	}
	if lang, ok := normalizeLanguage(req.Language); ok {
		cfg.Language = lang
	}
	if req.Output != "" {
		cfg.OutDir = filepath.Join(s.cfg.ClipsDir, req.Output)
	}
	if req.HWAccel != nil {
		cfg.HWAccel = *req.HWAccel
	}

	return cfg
}

// normalizeLanguage reduces a tag such as "en-US" to its primary subtag.
func normalizeLanguage(raw string) (string, bool) {
	lang := strings.ToLower(strings.TrimSpace(raw))
	if i := strings.IndexAny(lang, "-_"); i > 0 {
		lang = lang[:i]
	}
	if lang == "auto" || languageRe.MatchString(lang) {
		return lang, true
	}
	return "", false
}

func effective(cfg pipeline.Config, rep pipeline.Report) effectiveConfig {
	accel := rep.Encoder.Accelerator
	return effectiveConfig{
		Crop:     cfg.Crop.String(),
		Subtitle: cfg.Subtitles && rep.Captions && rep.Backend != types.BackendNone,
		Model:    string(cfg.Model),
		Language: cfg.Language,
		Output:   rep.OutDir,
		HWAccel:  accel != "" && accel != types.AccelNone,
	}
}

// clipURL maps a clip file to its /clips URL.
func (s *Server) clipURL(file string) string {
	rel, err := filepath.Rel(s.cfg.ClipsDir, file)
	if err != nil || strings.HasPrefix(rel, "..") {
		rel = filepath.Base(file)
	}
	return path.Join("/clips", filepath.ToSlash(rel))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ports.ErrInvalidSource):
		return http.StatusBadRequest
	case errors.Is(err, highlights.ErrNoMarkersFound):
		return http.StatusNotFound
	case errors.Is(err, pipeline.ErrOutputBusy):
		return http.StatusConflict
	case errors.Is(err, ports.ErrDurationUnavailable):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

func validationMessage(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, field+" is required")
		case "dirname":
			msgs = append(msgs, field+" must be a plain directory name")
		default:
			msgs = append(msgs, field+" is invalid ("+fe.Tag()+")")
		}
	}
	return strings.Join(msgs, "; ")
}
