package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"vendorguard/internal/domain/models"
	"vendorguard/internal/domain/services"
	"vendorguard/internal/infrastructure/database"
	"vendorguard/pkg/logger"
)

const schemaSQL = `
CREATE TABLE IF NOT EXISTS submissions (
	request_id           TEXT PRIMARY KEY,
	vendor_name          TEXT NOT NULL,
	contact_email        TEXT NOT NULL,
	business_description TEXT NOT NULL,
	tax_id               TEXT NOT NULL DEFAULT '',
	source_ip            TEXT NOT NULL DEFAULT '',
	submitted_at         TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_submissions_submitted_at ON submissions (submitted_at DESC);
CREATE INDEX IF NOT EXISTS idx_submissions_source_ip ON submissions (source_ip);

CREATE TABLE IF NOT EXISTS decisions (
	request_id        TEXT PRIMARY KEY REFERENCES submissions(request_id),
	vendor_name       TEXT NOT NULL,
	final_score       DOUBLE PRECISION NOT NULL,
	recommendation    TEXT NOT NULL,
	compliance_status TEXT NOT NULL,
	risk_factors      JSONB NOT NULL DEFAULT '[]',
	analyzer_scores   JSONB NOT NULL DEFAULT '{}',
	detail            JSONB NOT NULL DEFAULT '{}',
	assessed_at       TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_decisions_recommendation ON decisions (recommendation);
CREATE INDEX IF NOT EXISTS idx_decisions_assessed_at ON decisions (assessed_at DESC);
`

// SubmissionRepository persists submissions and decisions and supplies the
// historical reads used to hydrate the baseline and window stores on startup.
type SubmissionRepository struct {
	db     *database.PostgresDB
	logger *logger.Logger
}

// NewSubmissionRepository creates a submission repository
func NewSubmissionRepository(db *database.PostgresDB, log *logger.Logger) *SubmissionRepository {
	return &SubmissionRepository{
		db:     db,
		logger: log.WithComponent("submission_repository"),
	}
}

// InitSchema creates the tables and indexes if they do not exist
func (r *SubmissionRepository) InitSchema(ctx context.Context) error {
	if err := r.db.Exec(ctx, schemaSQL); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	r.logger.Info().Msg("database schema initialized")
	return nil
}

// SaveSubmission inserts a submission record
func (r *SubmissionRepository) SaveSubmission(ctx context.Context, sub *models.Submission) error {
	const query = `
		INSERT INTO submissions (request_id, vendor_name, contact_email, business_description, tax_id, source_ip, submitted_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (request_id) DO NOTHING`

	if err := r.db.Exec(ctx, query,
		sub.ID, sub.VendorName, sub.ContactEmail, sub.BusinessDescription,
		sub.TaxID, sub.SourceIP, sub.SubmittedAt,
	); err != nil {
		return fmt.Errorf("failed to save submission: %w", err)
	}
	return nil
}

// SaveDecision inserts the final decision for a submission
func (r *SubmissionRepository) SaveDecision(ctx context.Context, decision *models.RiskDecision) error {
	factors, err := json.Marshal(decision.RiskFactors)
	if err != nil {
		return fmt.Errorf("failed to marshal risk factors: %w", err)
	}
	scores, err := json.Marshal(decision.AnalyzerScores)
	if err != nil {
		return fmt.Errorf("failed to marshal analyzer scores: %w", err)
	}
	detail, err := json.Marshal(decision.Results)
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}

	const query = `
		INSERT INTO decisions (request_id, vendor_name, final_score, recommendation, compliance_status, risk_factors, analyzer_scores, detail, assessed_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		ON CONFLICT (request_id) DO UPDATE SET
			final_score = EXCLUDED.final_score,
			recommendation = EXCLUDED.recommendation,
			compliance_status = EXCLUDED.compliance_status,
			risk_factors = EXCLUDED.risk_factors,
			analyzer_scores = EXCLUDED.analyzer_scores,
			detail = EXCLUDED.detail,
			assessed_at = EXCLUDED.assessed_at`

	if err := r.db.Exec(ctx, query,
		decision.SubmissionID, decision.VendorName, decision.FinalScore,
		string(decision.Recommendation), string(decision.ComplianceStatus),
		factors, scores, detail, decision.AssessedAt,
	); err != nil {
		return fmt.Errorf("failed to save decision: %w", err)
	}
	return nil
}

// GetDecision loads a stored decision by request ID
func (r *SubmissionRepository) GetDecision(ctx context.Context, requestID string) (*models.RiskDecision, error) {
	const query = `
		SELECT request_id, vendor_name, final_score, recommendation, compliance_status, risk_factors, analyzer_scores, assessed_at
		FROM decisions
		WHERE request_id = $1`

	var decision models.RiskDecision
	var recommendation, compliance string
	var factors, scores []byte

	row := r.db.QueryRow(ctx, query, requestID)
	if err := row.Scan(
		&decision.SubmissionID, &decision.VendorName, &decision.FinalScore,
		&recommendation, &compliance, &factors, &scores, &decision.AssessedAt,
	); err != nil {
		return nil, fmt.Errorf("failed to load decision: %w", err)
	}

	decision.Recommendation = models.Recommendation(recommendation)
	decision.ComplianceStatus = models.ComplianceStatus(compliance)
	if err := json.Unmarshal(factors, &decision.RiskFactors); err != nil {
		return nil, fmt.Errorf("failed to unmarshal risk factors: %w", err)
	}
	if err := json.Unmarshal(scores, &decision.AnalyzerScores); err != nil {
		return nil, fmt.Errorf("failed to unmarshal analyzer scores: %w", err)
	}

	return &decision, nil
}

// RecentWindow loads submissions from the trailing window, newest first,
// for hydrating the in-memory window store.
func (r *SubmissionRepository) RecentWindow(ctx context.Context, since time.Time, limit int) ([]services.WindowEntry, error) {
	const query = `
		SELECT request_id, vendor_name, contact_email, business_description, tax_id, source_ip, submitted_at
		FROM submissions
		WHERE submitted_at > $1
		ORDER BY submitted_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, since, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query recent submissions: %w", err)
	}
	defer rows.Close()

	var entries []services.WindowEntry
	for rows.Next() {
		var e services.WindowEntry
		if err := rows.Scan(&e.ID, &e.VendorName, &e.Email, &e.Description, &e.TaxID, &e.SourceIP, &e.SubmittedAt); err != nil {
			return nil, fmt.Errorf("failed to scan submission row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// RecentLengths loads the trailing-N name and description lengths for
// seeding the statistical baseline.
func (r *SubmissionRepository) RecentLengths(ctx context.Context, limit int) (nameLens, descLens []int, err error) {
	const query = `
		SELECT length(vendor_name), length(business_description)
		FROM submissions
		ORDER BY submitted_at DESC
		LIMIT $1`

	rows, err := r.db.Query(ctx, query, limit)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to query submission lengths: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var nameLen, descLen int
		if err := rows.Scan(&nameLen, &descLen); err != nil {
			return nil, nil, fmt.Errorf("failed to scan length row: %w", err)
		}
		nameLens = append(nameLens, nameLen)
		descLens = append(descLens, descLen)
	}
	return nameLens, descLens, rows.Err()
}

// DecisionStats aggregates decision counts by recommendation tier
func (r *SubmissionRepository) DecisionStats(ctx context.Context, since time.Time) (map[string]int64, error) {
	const query = `
		SELECT recommendation, count(*)
		FROM decisions
		WHERE assessed_at > $1
		GROUP BY recommendation`

	rows, err := r.db.Query(ctx, query, since)
	if err != nil {
		return nil, fmt.Errorf("failed to query decision stats: %w", err)
	}
	defer rows.Close()

	stats := make(map[string]int64)
	for rows.Next() {
		var recommendation string
		var count int64
		if err := rows.Scan(&recommendation, &count); err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}
		stats[recommendation] = count
	}
	return stats, rows.Err()
}
