package store

import (
	"context"
	"database/sql"
	"fmt"
	"sort"

	"github.com/stresslens/swesim/internal/agent"
	"github.com/stresslens/swesim/internal/engine"
)

// SaveResult writes a completed run atomically: the run row, every per-day
// agent and market snapshot, and the amplification ratios. A failure rolls
// the whole run back; results are never half-stored.
func (s *Store) SaveResult(ctx context.Context, res *engine.Result) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs
		(id, scenario, horizon_days, agents_total, agents_reacted,
		 total_margin_calls, total_asset_sales, nbfi_gilt_sales,
		 total_repo_demand, system_amplification)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		res.RunID, res.Scenario, res.Horizon,
		res.Summary.TotalAgents, res.Summary.AgentsReacted,
		res.Summary.TotalMarginCalls, res.Summary.TotalAssetSales,
		res.Summary.NBFIGiltSales, res.Summary.TotalRepoDemand,
		res.Amplification.System,
	)
	if err != nil {
		return fmt.Errorf("save result: run row: %w", err)
	}

	agentStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO agent_snapshots
		(run_id, day, agent_id, agent_type, b0, b1, b2, b3, e1, e2, reacted)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	defer agentStmt.Close()

	for _, day := range res.Days {
		for _, a := range day.Agents {
			if _, err := agentStmt.ExecContext(ctx,
				res.RunID, a.Day, a.ID, string(a.Type),
				a.B0, a.B1, a.B2, a.B3, a.E1, a.E2, a.Reacted,
			); err != nil {
				return fmt.Errorf("save result: agent snapshot: %w", err)
			}
		}
		m := day.Market
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO market_snapshots
			(run_id, day, gilt_10y_bps, ig_spread_bps, vol,
			 gilt_bid_ask_bps, repo_avail_pct, gilt_selling, corp_selling, repo_demand)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		`,
			res.RunID, m.Day, m.Gilt10YBps, m.IGCorpSpreadBps, m.Vol,
			m.GiltBidAskBps, m.RepoAvailPct, m.GiltSelling, m.CorpSelling, m.RepoDemand,
		); err != nil {
			return fmt.Errorf("save result: market snapshot: %w", err)
		}
	}

	if err := saveAmplification(ctx, tx, res); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("save result: %w", err)
	}
	return nil
}

func saveAmplification(ctx context.Context, tx *sql.Tx, res *engine.Result) error {
	insert := func(scope, name string, ratio float64) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO amplification (run_id, scope, name, ratio)
			VALUES (?, ?, ?, ?)
		`, res.RunID, scope, name, ratio)
		if err != nil {
			return fmt.Errorf("save result: amplification %s/%s: %w", scope, name, err)
		}
		return nil
	}

	ids := make([]string, 0, len(res.Amplification.Agents))
	for id := range res.Amplification.Agents {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	for _, id := range ids {
		if err := insert("agent", id, res.Amplification.Agents[id]); err != nil {
			return err
		}
	}
	for _, t := range agent.Types {
		if ratio, ok := res.Amplification.Types[t]; ok {
			if err := insert("type", string(t), ratio); err != nil {
				return err
			}
		}
	}
	return insert("system", "system", res.Amplification.System)
}
