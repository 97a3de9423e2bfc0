package telemetry

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite"

	"github.com/pthm-cable/physarum/config"
)

// Store is a SQLite run log. It records run metadata and window statistics,
// never simulation state.
type Store struct {
	conn  *sqlx.DB
	runID string
}

// Run is one row of the runs table.
type Run struct {
	ID        string `db:"id"`
	StartedAt int64  `db:"started_at"` // unix seconds
	Seed      int64  `db:"seed"`
	Width     int    `db:"width"`
	Height    int    `db:"height"`
	Agents    int    `db:"agents"`
	Species   int    `db:"species"`
	Config    string `db:"config_yaml"`
}

// OpenStore opens or creates a SQLite database at the given path.
func OpenStore(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	conn.SetMaxOpenConns(1)

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		started_at INTEGER NOT NULL,
		seed INTEGER NOT NULL,
		width INTEGER NOT NULL,
		height INTEGER NOT NULL,
		agents INTEGER NOT NULL,
		species INTEGER NOT NULL,
		config_yaml TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS windows (
		run_id TEXT NOT NULL REFERENCES runs(id),
		window_start INTEGER NOT NULL,
		window_end INTEGER NOT NULL,
		sim_time REAL NOT NULL,
		agents INTEGER NOT NULL,
		trail_mass_0 REAL NOT NULL,
		trail_mass_1 REAL NOT NULL,
		trail_mass_2 REAL NOT NULL,
		trail_mass REAL NOT NULL,
		coverage REAL NOT NULL,
		food_mass REAL NOT NULL,
		deposited REAL NOT NULL,
		food_eaten REAL NOT NULL,
		bounces INTEGER NOT NULL,
		paint_calls INTEGER NOT NULL,
		paint_cells INTEGER NOT NULL,
		trail_at_agent_mean REAL NOT NULL,
		trail_at_agent_std REAL NOT NULL,
		trail_at_agent_p10 REAL NOT NULL,
		trail_at_agent_p50 REAL NOT NULL,
		trail_at_agent_p90 REAL NOT NULL,
		avg_step_us INTEGER NOT NULL,
		steps_per_sec REAL NOT NULL,
		PRIMARY KEY (run_id, window_end)
	);

	CREATE TABLE IF NOT EXISTS bookmarks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		step INTEGER NOT NULL,
		type TEXT NOT NULL,
		description TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_bookmarks_run ON bookmarks(run_id);
	`
	_, err := s.conn.Exec(schema)
	return err
}

// StartRun records a new run and makes it the target of later writes.
// It returns the run's ID.
func (s *Store) StartRun(cfg *config.Config, seed int64) (string, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return "", fmt.Errorf("marshal config: %w", err)
	}
	run := Run{
		ID:        uuid.NewString(),
		StartedAt: time.Now().Unix(),
		Seed:      seed,
		Width:     cfg.Simulation.Width,
		Height:    cfg.Simulation.Height,
		Agents:    cfg.Simulation.NumAgents,
		Species:   len(cfg.Species),
		Config:    string(data),
	}
	_, err = s.conn.NamedExec(`INSERT INTO runs
		(id, started_at, seed, width, height, agents, species, config_yaml)
		VALUES (:id, :started_at, :seed, :width, :height, :agents, :species, :config_yaml)`, run)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	s.runID = run.ID
	return run.ID, nil
}

// RunID returns the current run's ID, or "" before StartRun.
func (s *Store) RunID() string { return s.runID }

type windowRow struct {
	RunID string `db:"run_id"`
	WindowStats
	AvgStepUS   int64   `db:"avg_step_us"`
	StepsPerSec float64 `db:"steps_per_sec"`
}

// WriteWindow implements Sink.
func (s *Store) WriteWindow(stats WindowStats, perf PerfStats) error {
	if s.runID == "" {
		return fmt.Errorf("write window: no run started")
	}
	row := windowRow{
		RunID:       s.runID,
		WindowStats: stats,
		AvgStepUS:   perf.AvgStepDuration.Microseconds(),
		StepsPerSec: perf.StepsPerSecond,
	}
	_, err := s.conn.NamedExec(`INSERT INTO windows
		(run_id, window_start, window_end, sim_time, agents,
		 trail_mass_0, trail_mass_1, trail_mass_2, trail_mass, coverage, food_mass,
		 deposited, food_eaten, bounces, paint_calls, paint_cells,
		 trail_at_agent_mean, trail_at_agent_std, trail_at_agent_p10, trail_at_agent_p50, trail_at_agent_p90,
		 avg_step_us, steps_per_sec)
		VALUES (:run_id, :window_start, :window_end, :sim_time, :agents,
		 :trail_mass_0, :trail_mass_1, :trail_mass_2, :trail_mass, :coverage, :food_mass,
		 :deposited, :food_eaten, :bounces, :paint_calls, :paint_cells,
		 :trail_at_agent_mean, :trail_at_agent_std, :trail_at_agent_p10, :trail_at_agent_p50, :trail_at_agent_p90,
		 :avg_step_us, :steps_per_sec)`, row)
	if err != nil {
		return fmt.Errorf("insert window: %w", err)
	}
	return nil
}

// WriteBookmark implements Sink.
func (s *Store) WriteBookmark(b Bookmark) error {
	if s.runID == "" {
		return fmt.Errorf("write bookmark: no run started")
	}
	_, err := s.conn.Exec(`INSERT INTO bookmarks (run_id, step, type, description) VALUES (?, ?, ?, ?)`,
		s.runID, b.Step, string(b.Type), b.Description)
	if err != nil {
		return fmt.Errorf("insert bookmark: %w", err)
	}
	return nil
}

// Runs returns every recorded run, newest first.
func (s *Store) Runs() ([]Run, error) {
	var runs []Run
	err := s.conn.Select(&runs, `SELECT id, started_at, seed, width, height, agents, species, config_yaml
		FROM runs ORDER BY started_at DESC, id`)
	return runs, err
}

// Windows returns the stats windows of a run in step order.
func (s *Store) Windows(runID string) ([]WindowStats, error) {
	var stats []WindowStats
	err := s.conn.Select(&stats, `SELECT window_start, window_end, sim_time, agents,
		trail_mass_0, trail_mass_1, trail_mass_2, trail_mass, coverage, food_mass,
		deposited, food_eaten, bounces, paint_calls, paint_cells,
		trail_at_agent_mean, trail_at_agent_std, trail_at_agent_p10, trail_at_agent_p50, trail_at_agent_p90
		FROM windows WHERE run_id = ? ORDER BY window_end`, runID)
	return stats, err
}

// Bookmarks returns the bookmarks of a run in step order.
func (s *Store) Bookmarks(runID string) ([]Bookmark, error) {
	var rows []struct {
		Step        int64  `db:"step"`
		Type        string `db:"type"`
		Description string `db:"description"`
	}
	if err := s.conn.Select(&rows, `SELECT step, type, description FROM bookmarks WHERE run_id = ? ORDER BY step, id`, runID); err != nil {
		return nil, err
	}
	out := make([]Bookmark, len(rows))
	for i, r := range rows {
		out[i] = Bookmark{Type: BookmarkType(r.Type), Step: r.Step, Description: r.Description}
	}
	return out, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.conn.Close()
}
