package extract

import (
	"log/slog"

	"github.com/bizscan/bizscan/internal/model"
)

// Aggregator folds per-page fragments into one business record. All
// writes go through the record's fill-once rule: the first page to
// provide a field owns it for the rest of the crawl.
//
// Merge must be called from a single goroutine; the crawl controller's
// result loop is that owner.
type Aggregator struct {
	info   *model.BusinessInfo
	logger *slog.Logger
}

// NewAggregator creates an Aggregator over a fresh record.
func NewAggregator(logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Aggregator{
		info:   model.NewBusinessInfo(),
		logger: logger,
	}
}

// Merge applies one page's fragments in order. pageURL is recorded as
// the source of every field this page fills; priority marks whether the
// page matched a priority path rule.
func (a *Aggregator) Merge(fragments []Fragment, pageURL string, priority bool) {
	for _, frag := range fragments {
		for _, fv := range frag.Fields {
			if a.info.Set(fv.Name, fv.Value, pageURL, priority) {
				a.logger.Debug("field filled",
					"field", fv.Name,
					"tier", frag.Source,
					"source", pageURL,
				)
			}
		}
	}
}

// Info returns the accumulated record.
func (a *Aggregator) Info() *model.BusinessInfo {
	return a.info
}

// Complete reports whether the record has every required field.
func (a *Aggregator) Complete() bool {
	return a.info.Complete()
}
