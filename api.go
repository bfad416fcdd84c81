// CLAUDE:SUMMARY HTTP API: upload-and-sift, batch ZIP export, run history, health — chi router behind the shield stack.
package tamis

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/hazyhaar/tamis/docpipe"
	"github.com/hazyhaar/tamis/export"
	"github.com/hazyhaar/tamis/runlog"
	"github.com/hazyhaar/tamis/shield"
	"github.com/hazyhaar/tamis/sift"
)

const (
	// maxBatchFiles caps the number of documents in one batch request.
	maxBatchFiles = 16

	// batchWorkers bounds concurrent extraction within a batch.
	batchWorkers = 4
)

// NewRouter builds the tamis HTTP API around the service.
//
//	POST /v1/sift        sift one uploaded document (JSON result or ?format=txt)
//	POST /v1/sift/batch  sift several documents (ZIP of .txt files or ?format=json)
//	GET  /v1/runs        recent run history
//	GET  /v1/health      liveness plus run totals
func NewRouter(svc *Service) http.Handler {
	cfg := svc.cfg

	r := chi.NewRouter()
	for _, mw := range shield.Stack(cfg.MaxFileBytes()*maxBatchFiles + 1<<20) {
		r.Use(mw)
	}
	if cfg.RateLimit.Enabled {
		rl := shield.NewRateLimiter(cfg.RateLimit.MaxRequests,
			time.Duration(cfg.RateLimit.WindowSeconds)*time.Second, "/v1/health")
		rl.StartGC(nil) // runs for the process lifetime
		r.Use(rl.Middleware)
	}
	if cfg.Auth.Enabled {
		r.Use(shield.BasicAuth(cfg.Auth.Username, cfg.Auth.PasswordBcrypt, "/v1/health"))
	}

	r.Get("/v1/health", svc.handleHealth)
	r.Get("/v1/runs", svc.handleRuns)
	r.Post("/v1/sift", svc.handleSift)
	r.Post("/v1/sift/batch", svc.handleSiftBatch)
	return r
}

func (svc *Service) handleSift(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(32 << 20); err != nil {
		writeError(w, 400, fmt.Errorf("parse multipart form: %w", err))
		return
	}
	fhs := r.MultipartForm.File["file"]
	if len(fhs) == 0 {
		writeError(w, 400, errors.New("missing file field"))
		return
	}

	over, err := parseOverrides(r)
	if err != nil {
		writeError(w, 400, err)
		return
	}

	res, err := svc.siftUpload(r, fhs[0], r.FormValue("profile"), over)
	if err != nil {
		writeSiftError(w, err)
		return
	}

	if r.FormValue("format") == "txt" {
		prof, _, _ := svc.profile(res.Profile)
		writeAttachment(w, export.TxtName(res.Document), export.Join(res.Prompts, prof.JoinMode()))
		return
	}
	writeJSON(w, 200, res)
}

func (svc *Service) handleSiftBatch(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseMultipartForm(64 << 20); err != nil {
		writeError(w, 400, fmt.Errorf("parse multipart form: %w", err))
		return
	}
	fhs := r.MultipartForm.File["files"]
	if len(fhs) == 0 {
		writeError(w, 400, ErrEmptyBatch)
		return
	}
	if len(fhs) > maxBatchFiles {
		writeError(w, 400, fmt.Errorf("batch of %d files exceeds the limit of %d", len(fhs), maxBatchFiles))
		return
	}

	prof, profName, err := svc.profile(r.FormValue("profile"))
	if err != nil {
		writeSiftError(w, err)
		return
	}
	over, err := parseOverrides(r)
	if err != nil {
		writeError(w, 400, err)
		return
	}

	items := make([]batchItem, len(fhs))

	// Extraction is CPU-bound; a small worker pool keeps a batch from
	// starving single-file requests.
	sem := make(chan struct{}, batchWorkers)
	var wg sync.WaitGroup
	for i, fh := range fhs {
		wg.Add(1)
		go func(i int, fh *multipart.FileHeader) {
			defer wg.Done()
			sem <- struct{}{}
			defer func() { <-sem }()

			items[i].name = fh.Filename
			items[i].res, items[i].err = svc.siftUpload(r, fh, profName, over)
		}(i, fh)
	}
	wg.Wait()

	if r.FormValue("format") == "json" {
		writeJSON(w, 200, svc.batchSummary(profName, items))
		return
	}

	var out []export.File
	failed := 0
	for _, it := range items {
		if it.err != nil {
			failed++
			svc.logger.Warn("batch file failed", "document", it.name, "error", it.err)
			continue
		}
		out = append(out, export.File{
			Name: export.TxtName(it.name),
			Data: []byte(export.Join(it.res.Prompts, prof.JoinMode())),
		})
	}
	if len(out) == 0 {
		writeError(w, 422, fmt.Errorf("all %d files in the batch failed", failed))
		return
	}

	w.Header().Set("Content-Type", "application/zip")
	w.Header().Set("Content-Disposition", `attachment; filename="prompts_batch.zip"`)
	if err := export.Bundle(w, out); err != nil {
		// Headers are gone; all we can do is log.
		svc.logger.Error("write batch bundle", "error", err)
	}
}

func (svc *Service) handleRuns(w http.ResponseWriter, r *http.Request) {
	if svc.runs == nil {
		writeError(w, 404, errors.New("run history is disabled"))
		return
	}
	runs, err := svc.runs.Recent(r.Context(), queryInt(r, "limit", 0))
	if err != nil {
		writeError(w, 500, err)
		return
	}
	if runs == nil {
		runs = []runlog.Run{}
	}
	writeJSON(w, 200, runs)
}

func (svc *Service) handleHealth(w http.ResponseWriter, r *http.Request) {
	resp := map[string]any{
		"status":   "ok",
		"profiles": svc.ProfileNames(),
		"formats":  docpipe.SupportedFormats(),
	}
	if svc.runs != nil {
		totals, err := svc.runs.Totals(r.Context())
		if err != nil {
			resp["status"] = "degraded"
			resp["error"] = err.Error()
			writeJSON(w, 503, resp)
			return
		}
		resp["totals"] = totals
	}
	writeJSON(w, 200, resp)
}

type batchItem struct {
	name string
	res  *Result
	err  error
}

type batchFile struct {
	Document     string `json:"document"`
	Count        int    `json:"count"`
	FallbackUsed bool   `json:"fallback_used,omitempty"`
	Warning      string `json:"warning,omitempty"`
	Error        string `json:"error,omitempty"`
}

func (svc *Service) batchSummary(profile string, items []batchItem) map[string]any {
	files := make([]batchFile, 0, len(items))
	succeeded := 0
	for _, it := range items {
		bf := batchFile{Document: it.name}
		if it.err != nil {
			bf.Error = it.err.Error()
		} else {
			succeeded++
			bf.Count = it.res.Count
			bf.FallbackUsed = it.res.FallbackUsed
			bf.Warning = it.res.Warning
		}
		files = append(files, bf)
	}
	return map[string]any{
		"profile":   profile,
		"total":     len(items),
		"succeeded": succeeded,
		"files":     files,
	}
}

// siftUpload checks the size limit before reading the part into memory.
func (svc *Service) siftUpload(r *http.Request, fh *multipart.FileHeader, profile string, over Overrides) (*Result, error) {
	if fh.Size > svc.cfg.MaxFileBytes() {
		return nil, fmt.Errorf("%w: %s is %d bytes, limit %d",
			docpipe.ErrFileTooLarge, fh.Filename, fh.Size, svc.cfg.MaxFileBytes())
	}
	f, err := fh.Open()
	if err != nil {
		return nil, fmt.Errorf("open upload: %w", err)
	}
	defer f.Close()

	data, err := io.ReadAll(f)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	return svc.SiftDocument(r.Context(), fh.Filename, data, profile, over)
}

// parseOverrides reads per-run threshold overrides from form values. Absent
// values keep the profile setting.
func parseOverrides(r *http.Request) (Overrides, error) {
	var over Overrides
	if v := r.FormValue("min_length"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return over, fmt.Errorf("min_length: %w", err)
		}
		over.MinLength = &n
	}
	if v := r.FormValue("min_ascii_ratio"); v != "" {
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return over, fmt.Errorf("min_ascii_ratio: %w", err)
		}
		over.MinASCIIRatio = &f
	}
	if v := r.FormValue("min_keyword_hits"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return over, fmt.Errorf("min_keyword_hits: %w", err)
		}
		over.MinKeywordHits = &n
	}
	if v := r.FormValue("max_punctuation"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return over, fmt.Errorf("max_punctuation: %w", err)
		}
		over.MaxPunctuation = &n
	}
	if v := r.FormValue("require_english"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return over, fmt.Errorf("require_english: %w", err)
		}
		over.RequireEnglish = &b
	}
	if v := r.FormValue("fallback"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return over, fmt.Errorf("fallback: %w", err)
		}
		over.Fallback = &b
	}
	if v := r.FormValue("keywords"); v != "" {
		parts := strings.Split(v, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		over.Keywords = parts
	}
	return over, nil
}

// writeSiftError maps service errors to HTTP status codes.
func writeSiftError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrUnknownProfile), errors.Is(err, sift.ErrInvalidConfig):
		writeError(w, 400, err)
	case errors.Is(err, docpipe.ErrUnsupportedFormat):
		writeError(w, 415, err)
	case errors.Is(err, docpipe.ErrFileTooLarge):
		writeError(w, 413, err)
	default:
		writeError(w, 500, err)
	}
}

func writeAttachment(w http.ResponseWriter, name, body string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", name))
	io.WriteString(w, body)
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, code int, err error) {
	writeJSON(w, code, map[string]string{"error": err.Error()})
}

func queryInt(r *http.Request, key string, def int) int {
	s := r.URL.Query().Get(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
