// Command dilay cuts the region a screen-space lasso encloses out of a
// mesh. It evaluates a Lisp scene script describing the solid, the
// camera, and the lasso stroke, then exports the kept and trimmed
// halves as OBJ files.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
)

// demoScene is evaluated when no script is given: lasso an arch over
// the middle of a unit sphere and cut away everything it encloses.
const demoScene = `
; demo: slice the lassoed region off a unit sphere
(resolution 200 200)
(sphere :radius 1 :cells %d)
(lasso 160 100 100 70 40 100)
(trim)
`

func main() {
	var (
		script  = flag.String("script", "", "scene script to evaluate (default: built-in demo)")
		kept    = flag.String("kept", "kept.obj", "output OBJ for the kept half, empty to skip")
		trimmed = flag.String("trimmed", "trimmed.obj", "output OBJ for the trimmed half, empty to skip")
		cells   = flag.Int("cells", 64, "marching cubes resolution for the demo scene")
	)
	flag.Parse()

	source := fmt.Sprintf(demoScene, *cells)
	if *script != "" {
		b, err := os.ReadFile(*script)
		if err != nil {
			log.Fatalf("read script: %v", err)
		}
		source = string(b)
	}

	if err := NewApp().Run(source, *kept, *trimmed); err != nil {
		log.Fatal(err)
	}
}
