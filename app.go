package main

import (
	"fmt"
	"log"

	"github.com/hsab/dilay/pkg/engine"
)

// App drives the evaluate-and-export pipeline behind the CLI: scene
// script in, OBJ halves out.
type App struct {
	engine *engine.Engine
}

// NewApp creates a new App with a fresh engine.
func NewApp() *App {
	return &App{engine: engine.NewEngine()}
}

// Run evaluates a scene script and writes the resulting meshes.
//
// If the script ran (trim), the kept and trimmed halves go to keptPath
// and trimmedPath. A script that only builds a solid exports it to
// keptPath unchanged. Empty paths and empty halves are skipped.
func (a *App) Run(source, keptPath, trimmedPath string) error {
	// Step 1: evaluate the script into a scene.
	scene, evalErrs, err := a.engine.Evaluate(source)
	if err != nil {
		return fmt.Errorf("evaluate: %w", err)
	}

	// Step 2: report script errors.
	if len(evalErrs) > 0 {
		for _, e := range evalErrs {
			log.Printf("script error: %s", e.Error())
		}
		return fmt.Errorf("script failed with %d error(s)", len(evalErrs))
	}

	if scene.Solid == nil {
		log.Printf("scene has no solid, nothing to export")
		return nil
	}

	// Step 3: without a cut, export the solid as-is.
	if scene.Result == nil {
		log.Printf("solid: %d vertices, %d faces (no trim)",
			scene.Solid.VertexCount(), scene.Solid.TriangleCount())
		if keptPath != "" {
			if err := scene.Solid.SaveOBJ(keptPath); err != nil {
				return err
			}
			log.Printf("wrote %s", keptPath)
		}
		return nil
	}

	// Step 4: report the cut and export both halves.
	res := scene.Result
	log.Printf("cut %d faces into %d kept / %d trimmed across %d border segments",
		scene.Solid.TriangleCount(), res.KeptFaces, res.TrimmedFaces,
		res.Border.NumSegments())
	if !res.Border.OnlyObtuseAngles() {
		log.Printf("lasso has sharp corners, cut surface may fold back on itself")
	}
	if res.Border.HasVertices() {
		rim := 0
		for i := 0; i < res.Border.NumSegments(); i++ {
			for _, poly := range res.Border.Segment(i).Polylines() {
				rim += len(poly)
			}
		}
		log.Printf("rim polylines reference %d kept vertices", rim)
	}

	if keptPath != "" && !res.Kept.IsEmpty() {
		if err := res.Kept.SaveOBJ(keptPath); err != nil {
			return err
		}
		log.Printf("wrote %s (%d faces)", keptPath, res.Kept.TriangleCount())
	}
	if trimmedPath != "" && !res.Trimmed.IsEmpty() {
		if err := res.Trimmed.SaveOBJ(trimmedPath); err != nil {
			return err
		}
		log.Printf("wrote %s (%d faces)", trimmedPath, res.Trimmed.TriangleCount())
	}
	return nil
}
