package reporting

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Stats is one aggregate snapshot of the record store. The four counts are
// taken independently rather than in a shared transaction; the snapshot is
// best-effort, not self-consistent.
type Stats struct {
	TotalPatients      int `json:"total_patients"`
	TotalConsultations int `json:"total_consultations"`
	TotalSymptoms      int `json:"total_symptoms"`
	TotalPrescriptions int `json:"total_prescriptions"`
}

// Reporter computes aggregate statistics over the record store.
type Reporter struct {
	pool *pgxpool.Pool
}

func NewReporter(pool *pgxpool.Pool) *Reporter {
	return &Reporter{pool: pool}
}

// Snapshot returns the current aggregate counts. Patients are counted only
// while active; consultations, symptoms, and prescriptions are counted in
// full since they are never soft-deleted.
func (r *Reporter) Snapshot(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	counts := []struct {
		query string
		dest  *int
	}{
		{`SELECT COUNT(*) FROM patients WHERE active`, &stats.TotalPatients},
		{`SELECT COUNT(*) FROM consultations`, &stats.TotalConsultations},
		{`SELECT COUNT(*) FROM symptoms`, &stats.TotalSymptoms},
		{`SELECT COUNT(*) FROM prescriptions`, &stats.TotalPrescriptions},
	}

	for _, c := range counts {
		if err := r.pool.QueryRow(ctx, c.query).Scan(c.dest); err != nil {
			return nil, fmt.Errorf("aggregate count: %w", err)
		}
	}

	return stats, nil
}
