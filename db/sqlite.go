package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
)

// TrainingStore records finished training runs in SQLite.
type TrainingStore struct {
	db *sql.DB
}

// Open creates the database file and schema if needed.
func Open(path string) (*TrainingStore, error) {
	if path == "" {
		return nil, errors.New("database path is empty")
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}
	database, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	query := `
    CREATE TABLE IF NOT EXISTS training_log (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        run_id TEXT NOT NULL UNIQUE,
        model_name VARCHAR(50),
        model_path TEXT,
        accuracy REAL,
        precision REAL,
        recall REAL,
        f1 REAL,
        train_size INTEGER,
        test_size INTEGER,
        class_count INTEGER,
        dropped_labels TEXT,
        trained_at DATETIME,
        data_points INTEGER
    );
    `
	if _, err := database.Exec(query); err != nil {
		database.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &TrainingStore{db: database}, nil
}

func (s *TrainingStore) Close() error {
	return s.db.Close()
}

type TrainingLog struct {
	RunID         string         `json:"run_id"`
	ModelName     string         `json:"model_name"`
	ModelPath     string         `json:"model_path"`
	Accuracy      float64        `json:"accuracy"`
	Precision     float64        `json:"precision"`
	Recall        float64        `json:"recall"`
	F1            float64        `json:"f1"`
	TrainSize     int            `json:"train_size"`
	TestSize      int            `json:"test_size"`
	ClassCount    int            `json:"class_count"`
	DroppedLabels map[string]int `json:"dropped_labels"`
	TrainedAt     time.Time      `json:"trained_at"`
	DataPoints    int            `json:"data_points"`
}

// SaveTrainingLog inserts a run. Empty RunID and zero TrainedAt are filled in.
func (s *TrainingStore) SaveTrainingLog(ctx context.Context, log *TrainingLog) error {
	if log.RunID == "" {
		log.RunID = uuid.NewString()
	}
	if log.TrainedAt.IsZero() {
		log.TrainedAt = time.Now().UTC()
	}
	dropped, err := json.Marshal(log.DroppedLabels)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
        INSERT INTO training_log (
            run_id, model_name, model_path, accuracy, precision, recall, f1,
            train_size, test_size, class_count, dropped_labels, trained_at, data_points
        ) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
    `,
		log.RunID,
		log.ModelName,
		log.ModelPath,
		log.Accuracy,
		log.Precision,
		log.Recall,
		log.F1,
		log.TrainSize,
		log.TestSize,
		log.ClassCount,
		string(dropped),
		log.TrainedAt,
		log.DataPoints,
	)
	return err
}

// LoadTrainingLog returns up to limit runs, newest first. limit <= 0 means all.
func (s *TrainingStore) LoadTrainingLog(ctx context.Context, limit int) ([]TrainingLog, error) {
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx, `
        SELECT run_id, model_name, model_path, accuracy, precision, recall, f1,
               train_size, test_size, class_count, dropped_labels, trained_at, data_points
        FROM training_log
        ORDER BY trained_at DESC, id DESC
        LIMIT ?
    `, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	logs := make([]TrainingLog, 0)
	for rows.Next() {
		var log TrainingLog
		var dropped sql.NullString
		if err := rows.Scan(&log.RunID, &log.ModelName, &log.ModelPath, &log.Accuracy, &log.Precision,
			&log.Recall, &log.F1, &log.TrainSize, &log.TestSize, &log.ClassCount, &dropped,
			&log.TrainedAt, &log.DataPoints); err != nil {
			return nil, err
		}
		if dropped.Valid && dropped.String != "" {
			if err := json.Unmarshal([]byte(dropped.String), &log.DroppedLabels); err != nil {
				return nil, fmt.Errorf("decode dropped labels for run %s: %w", log.RunID, err)
			}
		}
		logs = append(logs, log)
	}
	return logs, rows.Err()
}
