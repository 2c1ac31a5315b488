package sim

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/zeusync/arena/internal/core/models"
)

// Report is the end-of-run summary. Elapsed is how long the run actually
// lasted, which is shorter than Duration when it was stopped early.
type Report struct {
	Duration  time.Duration
	Elapsed   time.Duration
	Initial   int
	Survivors []*models.Entity
}

// String renders the survivor listing:
//
//	Survivors after 30 sec:
//	  Toad "Toad_3" at (12, 40)
//	Total survivors: 1/50
func (r Report) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Survivors after %d sec:\n", int(r.Elapsed/time.Second))
	for _, e := range r.Survivors {
		p := e.Position()
		fmt.Fprintf(&b, "  %s \"%s\" at (%d, %d)\n", e.Kind(), e.Name(), p.X, p.Y)
	}
	fmt.Fprintf(&b, "Total survivors: %d/%d\n", len(r.Survivors), r.Initial)
	return b.String()
}

func (r Report) WriteTo(w io.Writer) (int64, error) {
	n, err := io.WriteString(w, r.String())
	return int64(n), err
}
