package store

import (
	"context"
	"fmt"
)

// RunRecord summarizes one stored run.
type RunRecord struct {
	ID                  string
	Scenario            string
	HorizonDays         int
	AgentsTotal         int
	AgentsReacted       int
	SystemAmplification float64
	CreatedAt           string
}

// ListRuns returns stored runs, newest first. UUIDv7 run ids are
// time-sortable, so id order is creation order.
func (s *Store) ListRuns(ctx context.Context) ([]RunRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, scenario, horizon_days, agents_total, agents_reacted,
		       system_amplification, created_at
		FROM runs
		ORDER BY id DESC
	`)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		if err := rows.Scan(&r.ID, &r.Scenario, &r.HorizonDays, &r.AgentsTotal,
			&r.AgentsReacted, &r.SystemAmplification, &r.CreatedAt); err != nil {
			return nil, fmt.Errorf("list runs: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// AgentPoint is one day of one agent's stored liquidity path.
type AgentPoint struct {
	Day     int
	B0, B1  float64
	B2, B3  float64
	E1, E2  float64
	Reacted bool
}

// AgentPath returns an agent's stored day-by-day liquidity path for a run.
func (s *Store) AgentPath(ctx context.Context, runID, agentID string) ([]AgentPoint, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT day, b0, b1, b2, b3, e1, e2, reacted
		FROM agent_snapshots
		WHERE run_id = ? AND agent_id = ?
		ORDER BY day
	`, runID, agentID)
	if err != nil {
		return nil, fmt.Errorf("agent path: %w", err)
	}
	defer rows.Close()

	var out []AgentPoint
	for rows.Next() {
		var p AgentPoint
		if err := rows.Scan(&p.Day, &p.B0, &p.B1, &p.B2, &p.B3, &p.E1, &p.E2, &p.Reacted); err != nil {
			return nil, fmt.Errorf("agent path: %w", err)
		}
		out = append(out, p)
	}
	return out, rows.Err()
}
