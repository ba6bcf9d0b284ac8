package api

import (
	"net/http"

	"github.com/dgallion1/rstdoc/internal/index"
)

// handleMergedIndex merges every index file in the output directory and
// returns the combined HTML fragment.
func (s *Server) handleMergedIndex(w http.ResponseWriter, r *http.Request) {
	html, err := index.Merge(s.orchestrator.OutDir())
	if err != nil {
		s.log.Error("index merge failed", "dir", s.orchestrator.OutDir(), "error", err)
		jsonError(w, "index merge failed: "+err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Write([]byte(html))
}
