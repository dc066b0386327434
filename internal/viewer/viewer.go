// Package viewer renders the render-side half of a meshbuf.Buffer and a
// sim.Orchestrator's live status in a desktop window. The window/camera/
// input idiom (orbit yaw/pitch/distance driven off mouse callbacks, a
// capped-framerate poll loop that redraws every frame) is
// grounded on the teacher's gsdfaux/ui.go; unlike that raymarched-SDF
// viewer the geometry here is an ordinary triangle mesh pulled from
// meshbuf, so drawing uses a ordinary vertex/fragment Phong shader
// instead of a per-pixel distance-field shader.
package viewer

import (
	"context"
	"errors"

	"github.com/cutsim/cutsim/meshbuf"
	"github.com/cutsim/cutsim/sim"
)

// UIConfig mirrors the teacher's gsdfaux.UIConfig shape: window size and
// an optional cancellation context for headless shutdown.
type UIConfig struct {
	Width, Height int
	Context       context.Context

	// HUDFontPath is a TTF file used to render the status overlay. The
	// HUD is disabled, with a log line, if left empty or the file can't be
	// read or parsed.
	HUDFontPath string
}

var errNilBuffer = errors.New("viewer: nil mesh buffer")

// Run opens a window and renders buf's render side every frame until the
// window is closed or cfg.Context is cancelled. A status line built from
// orch is rasterized into a texture each frame; no pass draws that texture,
// so the status line does not appear in the window. orch may be nil for a
// geometry-only view.
func Run(buf *meshbuf.Buffer, orch *sim.Orchestrator, cfg UIConfig) error {
	if buf == nil {
		return errNilBuffer
	}
	return run(buf, orch, cfg)
}
