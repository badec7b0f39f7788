package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/forPelevin/heatclip/internal/domain/crop"
	"github.com/forPelevin/heatclip/internal/domain/highlights"
	"github.com/forPelevin/heatclip/internal/pipeline"
	"github.com/forPelevin/heatclip/internal/ports"
	"github.com/forPelevin/heatclip/internal/types"
	"github.com/forPelevin/heatclip/internal/usecase"
)

type fakeRunner struct {
	got pipeline.Config
	rep pipeline.Report
	err error
}

func (f *fakeRunner) run(_ context.Context, cfg pipeline.Config) (pipeline.Report, error) {
	f.got = cfg
	return f.rep, f.err
}

func newTestServer(t *testing.T, run *fakeRunner) (*Server, string) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	dir := t.TempDir()
	s := New(Config{
		Host:     "127.0.0.1",
		Port:     0,
		ClipsDir: dir,
		Base: pipeline.Config{
			Crop:     crop.Default,
			Model:    types.ModelSmall,
			Language: "id",
		},
	}, run.run, zerolog.Nop())
	return s, dir
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/process", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestProcess_UnknownOptionsFallBack(t *testing.T) {
	run := &fakeRunner{}
	s, dir := newTestServer(t, run)

	rr := post(t, s.Handler(), `{"url":"https://youtu.be/dQw4w9WgXcQ","crop":"diagonal","model":"huge"}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body)
	}
	if run.got.Crop != crop.Default || run.got.Model != types.ModelSmall || run.got.OutDir != dir {
		t.Fatalf("defaults not applied: %+v", run.got)
	}

	var resp processResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Config.Crop != "default" || resp.Config.Model != "small" || resp.Config.Language != "id" {
		t.Fatalf("unexpected echoed config: %+v", resp.Config)
	}
	if resp.Message != "No segment reached the score threshold" || len(resp.Files) != 0 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if !strings.Contains(rr.Body.String(), `"clips":[]`) || !strings.Contains(rr.Body.String(), `"files":[]`) {
		t.Fatalf("empty lists must encode as []: %s", rr.Body)
	}
}

func TestProcess_OptionsApplied(t *testing.T) {
	run := &fakeRunner{}
	s, dir := newTestServer(t, run)
	out := filepath.Join(dir, "job1")
	run.rep = pipeline.Report{
		OutDir:   out,
		Backend:  types.WordLevelEngine,
		Captions: true,
		Encoder:  types.Encoder{Accelerator: types.AccelCUDA, Codec: "h264_nvenc"},
		Result: usecase.Result{
			Considered: 2,
			Produced:   1,
			Outcomes: []types.ClipOutcome{
				{Rank: 1, State: types.StateSkipped, Note: "window too short"},
				{Rank: 2, Index: 1, State: types.StateFinalized, File: filepath.Join(out, "clip_1.mp4"), CaptionApplied: true},
			},
		},
	}

	rr := post(t, s.Handler(), `{"url":"https://youtu.be/dQw4w9WgXcQ","crop":"2","subtitle":true,"model":"large-v3","language":"EN","output":"job1","hwaccel":true}`)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body)
	}
	got := run.got
	if got.Crop != crop.SplitLeft || !got.Subtitles || got.Model != types.ModelLarge || got.Language != "en" || !got.HWAccel {
		t.Fatalf("options not applied: %+v", got)
	}
	if got.OutDir != out {
		t.Fatalf("out dir %q, want %q", got.OutDir, out)
	}

	var resp processResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Message != "Processing complete" || resp.Considered != 2 || resp.Produced != 1 {
		t.Fatalf("unexpected response: %+v", resp)
	}
	if len(resp.Files) != 1 || resp.Files[0] != "/clips/job1/clip_1.mp4" {
		t.Fatalf("unexpected files: %v", resp.Files)
	}
	if len(resp.Clips) != 2 || resp.Clips[0].State != types.StateSkipped {
		t.Fatalf("unexpected clips: %+v", resp.Clips)
	}
	if !resp.Config.Subtitle || !resp.Config.HWAccel || resp.Config.Output != out {
		t.Fatalf("unexpected echoed config: %+v", resp.Config)
	}
}

func TestProcess_EchoesWhatTheRunUsed(t *testing.T) {
	tests := []struct {
		name         string
		rep          pipeline.Report
		wantSubtitle bool
		wantHWAccel  bool
	}{
		{
			name: "software encoder and no recognizer",
			rep: pipeline.Report{
				Backend: types.BackendNone,
				Encoder: types.Encoder{Accelerator: types.AccelNone, Codec: "libx264"},
			},
		},
		{
			name: "backend found but model missing",
			rep: pipeline.Report{
				Backend: types.WordLevelEngine,
				Encoder: types.Encoder{Codec: "libx264"},
			},
		},
		{
			name: "everything available",
			rep: pipeline.Report{
				Backend:  types.SegmentLevelEngine,
				Captions: true,
				Encoder:  types.Encoder{Accelerator: types.AccelVAAPI, Codec: "h264_vaapi"},
			},
			wantSubtitle: true,
			wantHWAccel:  true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			run := &fakeRunner{rep: tt.rep}
			s, dir := newTestServer(t, run)
			run.rep.OutDir = dir

			rr := post(t, s.Handler(), `{"url":"https://youtu.be/dQw4w9WgXcQ","subtitle":true,"hwaccel":true}`)
			if rr.Code != http.StatusOK {
				t.Fatalf("status %d: %s", rr.Code, rr.Body)
			}
			if !run.got.Subtitles || !run.got.HWAccel {
				t.Fatalf("request options not passed to the run: %+v", run.got)
			}
			var resp processResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if resp.Config.Subtitle != tt.wantSubtitle || resp.Config.HWAccel != tt.wantHWAccel {
				t.Fatalf("echoed subtitle=%v hwaccel=%v, want %v %v", resp.Config.Subtitle, resp.Config.HWAccel, tt.wantSubtitle, tt.wantHWAccel)
			}
			if resp.Config.Output != dir {
				t.Fatalf("echoed output %q, want %q", resp.Config.Output, dir)
			}
		})
	}
}

func TestProcess_LanguageFallback(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"", "id"},
		{"en-US", "en"},
		{"pt_BR", "pt"},
		{" FR ", "fr"},
		{"auto", "auto"},
		{"en-US;rm", "id"},
		{"english", "id"},
		{"1234", "id"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			run := &fakeRunner{}
			s, _ := newTestServer(t, run)
			body, _ := json.Marshal(map[string]string{"url": "https://youtu.be/dQw4w9WgXcQ", "language": tt.in})
			rr := post(t, s.Handler(), string(body))
			if rr.Code != http.StatusOK {
				t.Fatalf("status %d: %s", rr.Code, rr.Body)
			}
			if run.got.Language != tt.want {
				t.Fatalf("language %q, want %q", run.got.Language, tt.want)
			}
		})
	}
}

func TestProcess_RejectsBadRequests(t *testing.T) {
	cases := map[string]string{
		"malformed":      `{"url":`,
		"missing url":    `{"crop":"default"}`,
		"not a url":      `{"url":"dQw4w9WgXcQ"}`,
		"output escapes": `{"url":"https://youtu.be/dQw4w9WgXcQ","output":"../etc"}`,
		"output nested":  `{"url":"https://youtu.be/dQw4w9WgXcQ","output":"a/b"}`,
	}
	for name, body := range cases {
		t.Run(name, func(t *testing.T) {
			run := &fakeRunner{}
			s, _ := newTestServer(t, run)
			rr := post(t, s.Handler(), body)
			if rr.Code != http.StatusBadRequest {
				t.Fatalf("status %d, want 400: %s", rr.Code, rr.Body)
			}
			if run.got.URL != "" {
				t.Fatalf("runner must not be called")
			}
		})
	}
}

func TestProcess_ErrorMapping(t *testing.T) {
	tests := []struct {
		err  error
		want int
	}{
		{fmt.Errorf("%w: %q", ports.ErrInvalidSource, "x"), http.StatusBadRequest},
		{highlights.ErrNoMarkersFound, http.StatusNotFound},
		{fmt.Errorf("%w: clips", pipeline.ErrOutputBusy), http.StatusConflict},
		{fmt.Errorf("%w: exit 1", ports.ErrDurationUnavailable), http.StatusBadGateway},
		{errors.New("disk full"), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			s, _ := newTestServer(t, &fakeRunner{err: tt.err})
			rr := post(t, s.Handler(), `{"url":"https://youtu.be/dQw4w9WgXcQ"}`)
			if rr.Code != tt.want {
				t.Fatalf("status %d, want %d", rr.Code, tt.want)
			}
			var body errorResponse
			if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil || body.Error == "" {
				t.Fatalf("expected error body, got %s", rr.Body)
			}
		})
	}
}

func TestStaticClipsHealthAndCORS(t *testing.T) {
	s, dir := newTestServer(t, &fakeRunner{})
	if err := os.WriteFile(filepath.Join(dir, "clip_1.mp4"), []byte("video"), 0o644); err != nil {
		t.Fatal(err)
	}

	rr := httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/clips/clip_1.mp4", http.NoBody))
	if rr.Code != http.StatusOK || rr.Body.String() != "video" {
		t.Fatalf("static clip: %d %q", rr.Code, rr.Body)
	}
	if rr.Header().Get("Access-Control-Allow-Origin") != "*" {
		t.Fatalf("missing CORS header")
	}

	rr = httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", http.NoBody))
	if rr.Code != http.StatusOK || !strings.Contains(rr.Body.String(), "ok") {
		t.Fatalf("healthz: %d %q", rr.Code, rr.Body)
	}

	rr = httptest.NewRecorder()
	s.Handler().ServeHTTP(rr, httptest.NewRequest(http.MethodOptions, "/api/process", http.NoBody))
	if rr.Code != http.StatusNoContent {
		t.Fatalf("preflight status %d", rr.Code)
	}
}

func TestStartStop(t *testing.T) {
	s, _ := newTestServer(t, &fakeRunner{})
	if err := s.Start(context.Background()); err != nil {
		t.Fatalf("start: %v", err)
	}
	if err := s.Stop(context.Background()); err != nil {
		t.Fatalf("stop: %v", err)
	}
}
