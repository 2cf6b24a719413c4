package searchlog

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // repository assumes sqlite

	"github.com/nelhage/chesstician/ai/mcts"
	"github.com/nelhage/chesstician/chess"
	"github.com/nelhage/chesstician/fen"
)

type Repository struct {
	db *sqlx.DB

	insert *sqlx.NamedStmt
}

// Search is one finished search.
type Search struct {
	ID        int64     `db:"id"`
	Timestamp time.Time `db:"time"`
	FEN       string    `db:"fen"`
	Move      string    `db:"move"`
	Playouts  int       `db:"playouts"`
	ElapsedMS int64     `db:"elapsed_ms"`
	Eval      int64     `db:"eval"`
	Visits    int       `db:"visits"`
	Value     float64   `db:"value"`
	Nodes     int       `db:"nodes"`
	Aborted   bool      `db:"aborted"`
	Config    string    `db:"config"`
}

type MoveStats struct {
	FEN       string  `db:"fen"`
	Move      string  `db:"move"`
	Searches  int     `db:"searches"`
	Playouts  int     `db:"playouts"`
	MeanValue float64 `db:"mean_value"`
}

// NewSearch builds a record of res, a search from p run with cfg.
func NewSearch(p *chess.Position, cfg mcts.MCTSConfig, res mcts.Result) *Search {
	conf, _ := json.Marshal(cfg)
	return &Search{
		Timestamp: time.Now().UTC(),
		FEN:       fen.FormatFEN(p),
		Move:      res.Move.String(),
		Playouts:  res.Playouts,
		ElapsedMS: res.Elapsed.Milliseconds(),
		Eval:      res.Eval,
		Visits:    res.Visits,
		Value:     res.Value,
		Nodes:     res.TreeSize,
		Aborted:   res.Aborted,
		Config:    string(conf),
	}
}

func Open(db string) (*Repository, error) {
	sql, err := sqlx.Open("sqlite3", db)
	if err != nil {
		return nil, err
	}
	// sqlite allows a single writer, and ":memory:" databases are
	// per-connection.
	sql.SetMaxOpenConns(1)
	_, err = sql.Exec(createSearchTable)
	if err != nil {
		sql.Close()
		return nil, fmt.Errorf("create searches table: %w", err)
	}
	_, err = sql.Exec(createMoveView)
	if err != nil {
		sql.Close()
		return nil, fmt.Errorf("create move_stats view: %w", err)
	}

	repo := &Repository{db: sql}
	repo.insert, err = sql.PrepareNamed(insertStmt)
	if err != nil {
		repo.Close()
		return nil, fmt.Errorf("prepare: %w", err)
	}
	return repo, nil
}

// InsertSearch stores s and sets its ID.
func (r *Repository) InsertSearch(s *Search) error {
	return r.insertSearch(r.insert, s)
}

func (r *Repository) insertSearch(stmt *sqlx.NamedStmt, s *Search) error {
	res, err := stmt.Exec(s)
	if err != nil {
		return err
	}
	s.ID, err = res.LastInsertId()
	return err
}

func (r *Repository) InsertSearches(ss []*Search) error {
	txn, err := r.db.Beginx()
	if err != nil {
		return err
	}
	defer txn.Rollback()
	stmt := txn.NamedStmt(r.insert)
	for _, s := range ss {
		if e := r.insertSearch(stmt, s); e != nil {
			return e
		}
	}
	return txn.Commit()
}

// Recent returns up to limit searches, newest first.
func (r *Repository) Recent(limit int) ([]Search, error) {
	var out []Search
	if err := r.db.Select(&out, selectRecent, limit); err != nil {
		return nil, err
	}
	return out, nil
}

// Stats summarizes the moves chosen from the position fen.
func (r *Repository) Stats(fen string) ([]MoveStats, error) {
	var out []MoveStats
	if err := r.db.Select(&out, selectMoveStats, fen); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *Repository) Close() {
	if r.insert != nil {
		r.insert.Close()
	}
	r.db.Close()
}
