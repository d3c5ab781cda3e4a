// Command render_resume turns a profile JSON file into a PDF resume without
// a running server, or through one with -api.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"resume-builder/internal/config"
	"resume-builder/internal/domain"
	"resume-builder/internal/export"
	"resume-builder/internal/model"
	"resume-builder/internal/render"
	"resume-builder/internal/templates"
	"resume-builder/internal/usecase"
	"resume-builder/pkg/client"
	infra "resume-builder/pkg/infrastructure"
)

func main() {
	var (
		in       = flag.String("profile", "profile.json", "profile JSON file")
		tpl      = flag.String("template", "", "template id (default from TEMPLATE_DEFAULT)")
		outDir   = flag.String("out", ".", "output directory")
		quality  = flag.Float64("quality", 0.98, "JPEG quality in (0,1]")
		scale    = flag.Float64("scale", 2, "device scale factor")
		format   = flag.String("format", "a4", "page format: a4, letter, legal")
		vector   = flag.Bool("vector", false, "print a vector PDF instead of rasterising")
		htmlOnly = flag.Bool("html", false, "write the rendered HTML instead of a PDF")
		api      = flag.Bool("api", false, "create and export through the REST API at RESUME_API_URL")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fail("config", err)
	}
	log := config.NewLogger(os.Stderr, cfg.LogLevel)

	b, err := os.ReadFile(*in)
	if err != nil {
		fail("read profile", err)
	}
	var profile map[string]interface{}
	if err := json.Unmarshal(b, &profile); err != nil {
		fail("unmarshal", err)
	}
	if nested, ok := profile["profile"].(map[string]interface{}); ok {
		profile = nested
	}
	doc := usecase.AdaptProfile(profile)

	ov := export.Overrides{ImageQuality: quality, Scale: scale, Format: format}
	if *vector {
		mode := string(export.ModeVector)
		ov.Mode = &mode
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ExportTimeout+cfg.ImageFetchTimeout)
	defer cancel()

	if *api {
		viaAPI(ctx, doc, *tpl, ov, *outDir)
		return
	}

	templateID := *tpl
	if templateID == "" {
		templateID = cfg.TemplateDefault
	}
	reg, err := templates.Load(cfg.TemplateDefault)
	if err != nil {
		fail("templates", err)
	}
	renderer := render.New(reg, render.WithImageTimeout(cfg.ImageFetchTimeout), render.WithLogger(log))

	if *htmlOnly {
		view, err := renderer.RenderSync(ctx, doc, templateID)
		if err != nil {
			fail("render", err)
		}
		html, _ := view.HTML()
		name := export.FileName(doc.Header.FullName, time.Now())
		write(filepath.Join(*outDir, name[:len(name)-len(".pdf")]+".html"), []byte(html))
		return
	}

	raster := infra.NewChromedpRasterizer(cfg.ChromePath, cfg.ExportTimeout)
	pipeline := export.NewPipeline(raster, export.WithPipelineLogger(log))
	sess := usecase.NewSession(domain.ResumeRecord{TemplateID: templateID, Content: doc}, renderer, export.NewExporter(pipeline), nil)
	defer sess.Close()
	if !sess.CanExport() {
		fail("export", raster.Available())
	}
	res, err := sess.Export(ctx, export.DefaultOptions().Apply(ov))
	if err != nil {
		fail("export", err)
	}
	write(filepath.Join(*outDir, res.FileName), res.PDF)
}

func viaAPI(ctx context.Context, doc domain.ResumeDocument, templateID string, ov export.Overrides, outDir string) {
	c := client.NewClient()
	rec, err := c.CreateResume(ctx, model.CreateResumeRequest{TemplateID: templateID, Content: &doc})
	if err != nil {
		fail("create resume", err)
	}
	pdf, name, err := c.ExportResume(ctx, rec.ID, ov)
	if err != nil {
		fail("export", err)
	}
	if name == "" {
		name = export.FileName(doc.Header.FullName, time.Now())
	}
	write(filepath.Join(outDir, name), pdf)
}

func write(path string, data []byte) {
	if err := os.WriteFile(path, data, 0o644); err != nil {
		fail("write", err)
	}
	fmt.Printf("wrote %s\n", path)
}

func fail(step string, err error) {
	fmt.Fprintf(os.Stderr, "%s: %v\n", step, err)
	os.Exit(2)
}
