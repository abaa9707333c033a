package dataset

import (
	"context"

	"go.uber.org/zap"

	"github.com/fdadash/devicefeed/internal/metrics"
	"github.com/fdadash/devicefeed/internal/normalize"
	"github.com/fdadash/devicefeed/internal/openfda"
)

// Enricher resolves one submission identifier to its lookup result.
type Enricher interface {
	Lookup(ctx context.Context, submissionID string) (openfda.Result, error)
}

// Builder drives the enrichment pass over parsed records.
type Builder struct {
	enricher Enricher
	logger   *zap.Logger
}

func NewBuilder(enricher Enricher, logger *zap.Logger) *Builder {
	return &Builder{enricher: enricher, logger: logger}
}

// Enrich populates the lookup-derived fields of every record in place,
// sequentially. A lookup that degraded to an empty result leaves the record
// with empty enrichment fields and the pass continues; only cache
// persistence failures and context cancellation abort it.
func (b *Builder) Enrich(ctx context.Context, records []Record) error {
	for i := range records {
		if err := ctx.Err(); err != nil {
			return err
		}

		result, err := b.enricher.Lookup(ctx, records[i].SubmissionID)
		if err != nil {
			return err
		}

		records[i].ReceivedDate = result.ReceivedDate
		records[i].DecisionDate = result.DecisionDate
		records[i].DaysToDecision = nil
		if days, ok := normalize.DaysBetween(result.ReceivedDate, result.DecisionDate); ok {
			records[i].DaysToDecision = &days
		}
		metrics.IncRecordsProcessed()
	}

	b.logger.Info("enrichment pass complete", zap.Int("records", len(records)))
	return nil
}
