package collect

import (
	"context"
	"time"

	"github.com/rajanrengasamy/linkedinposts-sub001/internal/domain/entity"
)

// MandatorySource is the collector whose failure fails the whole run.
const MandatorySource = "web"

// Collector fetches items for a query from one external provider.
// It returns an empty slice for "no results" and an error only for a genuine failure.
type Collector interface {
	Name() string
	Collect(ctx context.Context, query string, limit int) ([]entity.RawItem, error)
}

// Outcome is what one collector reported. Items is meaningful only when Err is nil.
type Outcome struct {
	Source   string
	Required bool
	Items    []entity.RawItem
	Err      error
	Duration time.Duration

	index int
}

// Failed reports whether the collector returned an error.
func (o Outcome) Failed() bool {
	return o.Err != nil
}
