package draft

import (
	"context"

	"golang.org/x/sync/singleflight"
)

// summaryCalc fetches the authoritative financial summary from the
// upstream service. Concurrent refreshes for the same sale are collapsed
// into a single upstream call.
type summaryCalc struct {
	api SalesAPI
	sf  singleflight.Group
}

func newSummaryCalc(api SalesAPI) *summaryCalc {
	return &summaryCalc{api: api}
}

// refresh fetches the summary for saleID. Returns nil without calling the
// upstream when saleID is empty (no remote draft exists yet).
func (c *summaryCalc) refresh(ctx context.Context, kind Kind, saleID string) (*Summary, error) {
	if saleID == "" {
		return nil, nil
	}
	v, err, _ := c.sf.Do(saleID, func() (any, error) {
		return c.api.GetSummary(ctx, kind, saleID)
	})
	if err != nil {
		return nil, err
	}
	return v.(*Summary), nil
}
