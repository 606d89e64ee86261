package api

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-git/go-billy/v5/memfs"
	"github.com/go-git/go-billy/v5/util"

	"github.com/wrv/memmerge/internal/config"
	"github.com/wrv/memmerge/internal/pipeline"
)

// handleMerge accepts memcheck reports as multipart parts named "reports",
// merges them through the same pipeline the CLI uses, and responds with the
// combined XML document. The error and unparsable counts travel in response
// headers.
func (s *Server) handleMerge(w http.ResponseWriter, r *http.Request) {
	// Limit total request size.
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes+1024*1024) // extra 1MB for form overhead

	if err := r.ParseMultipartForm(32 << 20); err != nil {
		jsonError(w, "invalid multipart form: "+err.Error(), http.StatusBadRequest)
		return
	}
	defer r.MultipartForm.RemoveAll()

	files := r.MultipartForm.File["reports"]
	if len(files) == 0 {
		jsonError(w, "at least one report is required", http.StatusBadRequest)
		return
	}

	// Each request gets a throwaway in-memory filesystem, staged with the
	// uploads and handed to the pipeline.
	fsys := memfs.New()
	for _, dir := range []string{"/reports", "/out"} {
		if err := fsys.MkdirAll(dir, 0o755); err != nil {
			jsonError(w, "failed to prepare workspace", http.StatusInternalServerError)
			return
		}
	}

	for i, fh := range files {
		name := sanitizeFilename(fh.Filename)
		if filepath.Ext(name) != ".xml" {
			jsonError(w, fmt.Sprintf("unsupported report type: %s", filepath.Ext(name)), http.StatusBadRequest)
			return
		}

		f, err := fh.Open()
		if err != nil {
			jsonError(w, fmt.Sprintf("failed to open part %s", name), http.StatusBadRequest)
			return
		}
		data, err := io.ReadAll(io.LimitReader(f, s.cfg.MaxUploadBytes+1))
		f.Close()
		if err != nil {
			jsonError(w, fmt.Sprintf("failed to read part %s", name), http.StatusBadRequest)
			return
		}
		if int64(len(data)) > s.cfg.MaxUploadBytes {
			jsonError(w, fmt.Sprintf("report exceeds max size (%d bytes)", s.cfg.MaxUploadBytes), http.StatusRequestEntityTooLarge)
			return
		}

		if err := util.WriteFile(fsys, stageName(i, name), data, 0o644); err != nil {
			jsonError(w, fmt.Sprintf("failed to stage part %s", name), http.StatusInternalServerError)
			return
		}
	}

	runCfg := config.Config{
		SourceDir:  "/reports",
		OutputDir:  "/out",
		OutputFile: "merged.xml",
	}
	res, err := pipeline.Run(fsys, runCfg, s.log)
	if err != nil {
		jsonError(w, "merge failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	data, err := util.ReadFile(fsys, res.OutputPath)
	if err != nil {
		jsonError(w, "failed to read merged report", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/xml")
	w.Header().Set("X-Memmerge-Errors", strconv.Itoa(res.ErrorCount))
	w.Header().Set("X-Memmerge-Unparsable", strconv.Itoa(res.UnparsableCount))
	w.Header().Set("X-Memmerge-Summary", res.Summary)
	w.Write(data)
}

// stageName places part i under /reports with a zero-padded index prefix, so
// the scanner's name sort preserves upload order and repeated part names stay
// distinct.
func stageName(i int, name string) string {
	return fmt.Sprintf("/reports/%06d-%s", i, name)
}

func jsonError(w http.ResponseWriter, msg string, code int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	json.NewEncoder(w).Encode(map[string]string{"error": msg})
}

func sanitizeFilename(name string) string {
	// Strip path components, keep only the base name.
	name = filepath.Base(name)
	// Remove any path separators that might have survived.
	name = strings.ReplaceAll(name, "/", "_")
	name = strings.ReplaceAll(name, "\\", "_")
	name = strings.ReplaceAll(name, "..", "_")
	if name == "" || name == "." {
		name = "unnamed"
	}
	return name
}
