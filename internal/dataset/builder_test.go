package dataset

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/fdadash/devicefeed/internal/openfda"
)

type stubEnricher struct {
	results map[string]openfda.Result
	err     error
	calls   int
}

func (s *stubEnricher) Lookup(_ context.Context, id string) (openfda.Result, error) {
	s.calls++
	if s.err != nil {
		return openfda.Result{}, s.err
	}
	return s.results[id], nil
}

func TestEnrichPopulatesDerivedFields(t *testing.T) {
	enricher := &stubEnricher{results: map[string]openfda.Result{
		"K183268": {ReceivedDate: "2020-01-10", DecisionDate: "2020-03-01", Source: "k_number"},
		"P190005": {ReceivedDate: "2021-06-01", DecisionDate: "2021-01-01", Source: "pma_number"},
	}}
	records := []Record{
		{SubmissionID: "K183268"},
		{SubmissionID: "P190005"},
		{SubmissionID: ""},
	}

	builder := NewBuilder(enricher, zap.NewNop())
	require.NoError(t, builder.Enrich(context.Background(), records))

	require.Equal(t, "2020-01-10", records[0].ReceivedDate)
	require.Equal(t, "2020-03-01", records[0].DecisionDate)
	require.NotNil(t, records[0].DaysToDecision)
	require.Equal(t, 51, *records[0].DaysToDecision)

	// Decision before receipt is a data-quality failure, not a duration.
	require.Nil(t, records[1].DaysToDecision)

	require.Empty(t, records[2].ReceivedDate)
	require.Nil(t, records[2].DaysToDecision)
	require.Equal(t, 3, enricher.calls)
}

func TestEnrichPropagatesLookupErrors(t *testing.T) {
	enricher := &stubEnricher{err: errors.New("persist openFDA cache: disk full")}
	builder := NewBuilder(enricher, zap.NewNop())

	err := builder.Enrich(context.Background(), []Record{{SubmissionID: "K1"}})
	require.Error(t, err)
	require.Contains(t, err.Error(), "persist openFDA cache")
}

func TestEnrichStopsOnCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	enricher := &stubEnricher{}
	builder := NewBuilder(enricher, zap.NewNop())

	err := builder.Enrich(ctx, []Record{{SubmissionID: "K1"}, {SubmissionID: "K2"}})
	require.ErrorIs(t, err, context.Canceled)
	require.Zero(t, enricher.calls)
}
