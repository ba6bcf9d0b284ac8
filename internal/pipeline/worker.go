package pipeline

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/dgallion1/rstdoc/internal/config"
	"github.com/dgallion1/rstdoc/internal/index"
	"github.com/dgallion1/rstdoc/internal/render"
	"github.com/dgallion1/rstdoc/internal/rst"
)

// Worker renders a single document job.
type Worker struct {
	log *slog.Logger
	cfg config.Config
}

func NewWorker(cfg config.Config, log *slog.Logger) *Worker {
	return &Worker{log: log, cfg: cfg}
}

// Process runs the full render pipeline for a job: parse the markup, render
// it to the requested target, write the output document and its index file.
func (w *Worker) Process(ctx context.Context, job *Job) {
	log := w.log.With("job_id", job.ID, "doc_id", job.DocID, "file", job.Filename)

	if ctx.Err() != nil {
		job.AddError(ctx.Err().Error())
		job.SetStatus(StatusFailed, "canceled")
		return
	}

	// Phase 1: Parse.
	job.SetStatus(StatusParsing, "parsing")
	tree, err := rst.ParseMarkdown(bytes.NewReader(job.FileData()))
	if err != nil {
		log.Error("parse failed", "error", err)
		job.AddError(fmt.Sprintf("parse: %s", err))
		job.SetStatus(StatusFailed, "parsing")
		return
	}
	job.ContentHash = ContentHashHex(job.FileData())

	// Phase 2: Render.
	job.SetStatus(StatusRendering, "rendering")
	target, ext := render.TargetHTML, ".html"
	if job.Target == "latex" {
		target, ext = render.TargetLatex, ".tex"
	}
	gen := render.New(target, job.Filename,
		render.Config{"split.item.toc": strconv.Itoa(w.cfg.SplitAfter)},
		func(file string, line, col int, kind render.MsgKind, arg string) {
			job.AddDiagnostic()
			log.Warn("render diagnostic",
				"file", file, "line", line, "col", col,
				"kind", kind.String(), "arg", arg)
		})
	if job.WithTOC {
		gen.EnableTOC()
	}
	out := gen.RenderFragment(tree)

	// Phase 3: Write output and index.
	job.SetStatus(StatusIndexing, "indexing")
	base := strings.TrimSuffix(filepath.Base(job.Filename), filepath.Ext(job.Filename))
	outPath := filepath.Join(w.cfg.OutDir, base+ext)
	if err := os.WriteFile(outPath, []byte(out), 0o644); err != nil {
		log.Error("write output failed", "path", outPath, "error", err)
		job.AddError(fmt.Sprintf("write output: %s", err))
		job.SetStatus(StatusFailed, "indexing")
		return
	}
	idxPath := filepath.Join(w.cfg.OutDir, base+index.Ext)
	if err := gen.WriteIndexFile(idxPath); err != nil {
		log.Error("write index failed", "path", idxPath, "error", err)
		job.AddError(fmt.Sprintf("write index: %s", err))
		job.SetStatus(StatusFailed, "indexing")
		return
	}
	if gen.IndexEmpty() {
		idxPath = ""
	}

	job.SetResult(gen.Meta(render.MetaTitle), outPath, idxPath)
	job.SetStatus(StatusCompleted, "done")
	log.Info("render complete", "output", outPath, "index", idxPath)
}
