package sqlite

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"triagebot/internal/domain"
)

func InitDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS feedback (
		id                  INTEGER PRIMARY KEY AUTOINCREMENT,
		title               TEXT NOT NULL,
		description         TEXT NOT NULL,
		citizen             TEXT DEFAULT '',
		label               TEXT DEFAULT '',
		confidence          REAL DEFAULT 0,
		important_terms     TEXT DEFAULT '',
		method              TEXT DEFAULT '',
		severity            TEXT DEFAULT '',
		severity_confidence REAL DEFAULT 0,
		status              TEXT DEFAULT 'pending',
		created_at          DATETIME DEFAULT CURRENT_TIMESTAMP,
		classified_at       DATETIME
	);
	CREATE INDEX IF NOT EXISTS idx_feedback_status ON feedback(status);
	CREATE INDEX IF NOT EXISTS idx_feedback_severity ON feedback(severity);

	CREATE TABLE IF NOT EXISTS classification_history (
		id                  INTEGER PRIMARY KEY AUTOINCREMENT,
		feedback_id         INTEGER NOT NULL,
		label               TEXT NOT NULL,
		confidence          REAL NOT NULL,
		method              TEXT DEFAULT '',
		severity            TEXT DEFAULT '',
		severity_confidence REAL DEFAULT 0,
		provider            TEXT DEFAULT '',
		classified_at       DATETIME DEFAULT CURRENT_TIMESTAMP
	);
	CREATE INDEX IF NOT EXISTS idx_ch_feedback ON classification_history(feedback_id);
	CREATE INDEX IF NOT EXISTS idx_ch_date ON classification_history(classified_at);
	`
	if _, err = db.Exec(schema); err != nil {
		return nil, err
	}
	return db, nil
}

func InsertFeedback(db *sql.DB, fb domain.Feedback) (int64, error) {
	status := fb.Status
	if status == "" {
		status = "pending"
	}
	res, err := db.Exec(
		`INSERT INTO feedback (title, description, citizen, status, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		fb.Title, fb.Description, fb.Citizen, status, time.Now(),
	)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

const feedbackColumns = `id, title, description, citizen, label, confidence, important_terms,
	method, severity, severity_confidence, status, created_at, classified_at`

func scanFeedback(scanner interface{ Scan(...any) error }) (domain.Feedback, error) {
	var fb domain.Feedback
	var classifiedAt sql.NullTime
	err := scanner.Scan(
		&fb.ID, &fb.Title, &fb.Description, &fb.Citizen, &fb.Label, &fb.Confidence,
		&fb.ImportantTerms, &fb.Method, &fb.Severity, &fb.SeverityConfidence,
		&fb.Status, &fb.CreatedAt, &classifiedAt,
	)
	if classifiedAt.Valid {
		fb.ClassifiedAt = classifiedAt.Time
	} else {
		fb.ClassifiedAt = fb.CreatedAt
	}
	return fb, err
}

func GetFeedbackByID(db *sql.DB, id int64) (domain.Feedback, error) {
	row := db.QueryRow(`SELECT `+feedbackColumns+` FROM feedback WHERE id = ?`, id)
	return scanFeedback(row)
}

func GetPendingFeedback(db *sql.DB, limit int) ([]domain.Feedback, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := db.Query(
		`SELECT `+feedbackColumns+` FROM feedback WHERE status = 'pending' ORDER BY id LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectFeedback(rows)
}

func GetAllFeedback(db *sql.DB) ([]domain.Feedback, error) {
	rows, err := db.Query(`SELECT ` + feedbackColumns + ` FROM feedback ORDER BY id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectFeedback(rows)
}

func collectFeedback(rows *sql.Rows) ([]domain.Feedback, error) {
	var items []domain.Feedback
	for rows.Next() {
		fb, err := scanFeedback(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, fb)
	}
	return items, rows.Err()
}

// ApplyClassification writes a classification onto a stored feedback
// row and appends a history record. Severity updates are monotonic:
// a re-classification never downgrades a previously recorded severity,
// it only applies equal-or-higher findings. Returns the classification
// as actually applied and whether the row escalated to high severity.
func ApplyClassification(db *sql.DB, feedbackID int64, result domain.Classification, provider string) (domain.Classification, bool, error) {
	tx, err := db.Begin()
	if err != nil {
		return result, false, err
	}
	defer tx.Rollback()

	var curSeverity string
	var curSevConf float64
	err = tx.QueryRow(`SELECT severity, severity_confidence FROM feedback WHERE id = ?`, feedbackID).
		Scan(&curSeverity, &curSevConf)
	if err != nil {
		return result, false, fmt.Errorf("loading feedback %d: %w", feedbackID, err)
	}

	applied := result
	if domain.SeverityRank(result.Severity) < domain.SeverityRank(curSeverity) {
		applied.Severity = curSeverity
		applied.SeverityConfidence = curSevConf
	}
	escalated := applied.Severity == domain.SeverityHigh &&
		domain.SeverityRank(applied.Severity) > domain.SeverityRank(curSeverity)

	now := time.Now()
	_, err = tx.Exec(
		`UPDATE feedback
		 SET label = ?, confidence = ?, important_terms = ?, method = ?,
		     severity = ?, severity_confidence = ?, status = 'classified', classified_at = ?
		 WHERE id = ?`,
		applied.Label, applied.Confidence, strings.Join(applied.ImportantTerms, ","), applied.Method,
		applied.Severity, applied.SeverityConfidence, now, feedbackID,
	)
	if err != nil {
		return applied, false, err
	}

	_, err = tx.Exec(
		`INSERT INTO classification_history (feedback_id, label, confidence, method, severity, severity_confidence, provider, classified_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		feedbackID, applied.Label, applied.Confidence, applied.Method,
		applied.Severity, applied.SeverityConfidence, provider, now,
	)
	if err != nil {
		return applied, false, err
	}

	return applied, escalated, tx.Commit()
}

func GetHistory(db *sql.DB, feedbackID int64) ([]domain.ClassificationRecord, error) {
	rows, err := db.Query(
		`SELECT id, feedback_id, label, confidence, method, severity, severity_confidence, provider, classified_at
		 FROM classification_history WHERE feedback_id = ? ORDER BY id`,
		feedbackID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.ClassificationRecord
	for rows.Next() {
		var r domain.ClassificationRecord
		err := rows.Scan(&r.ID, &r.FeedbackID, &r.Label, &r.Confidence, &r.Method,
			&r.Severity, &r.SeverityConfidence, &r.Provider, &r.ClassifiedAt)
		if err != nil {
			return nil, err
		}
		records = append(records, r)
	}
	return records, rows.Err()
}

func GetTriageStats(db *sql.DB) (domain.TriageStats, error) {
	var stats domain.TriageStats
	err := db.QueryRow(`
		SELECT COUNT(*),
		       COALESCE(SUM(CASE WHEN status = 'pending' THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN label = ? THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN label = ? THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN severity = ? THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN severity = ? THEN 1 ELSE 0 END), 0),
		       COALESCE(SUM(CASE WHEN severity = ? THEN 1 ELSE 0 END), 0),
		       COALESCE(AVG(CASE WHEN status = 'classified' THEN confidence END), 0),
		       COALESCE(AVG(CASE WHEN status = 'classified' THEN severity_confidence END), 0)
		FROM feedback`,
		domain.LabelGrievance, domain.LabelReport,
		domain.SeverityLow, domain.SeverityMedium, domain.SeverityHigh,
	).Scan(
		&stats.Total, &stats.Pending, &stats.Grievances, &stats.Reports,
		&stats.SeverityLow, &stats.SeverityMedium, &stats.SeverityHigh,
		&stats.AvgConfidence, &stats.AvgSeverityConf,
	)
	return stats, err
}
