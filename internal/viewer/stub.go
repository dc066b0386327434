//go:build tinygo || !cgo

package viewer

import (
	"errors"

	"github.com/cutsim/cutsim/meshbuf"
	"github.com/cutsim/cutsim/sim"
)

func run(buf *meshbuf.Buffer, orch *sim.Orchestrator, cfg UIConfig) error {
	return errors.New("viewer: requires cgo")
}
