package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/didi/gendry/builder"
	"github.com/lib/pq"

	"github.com/incial/workhub-api/internal/domain"
	"github.com/incial/workhub-api/internal/pkg/dbutil"
)

const crmColumns = "id, contact_name, company, work, status, last_contact, next_follow_up, deal_value, phone, notes, email, tags, lead_sources, assigned_to, created_at, updated_at"

// CRMRepo provides typed Postgres operations for the crm_records table.
type CRMRepo struct {
	db *sql.DB
}

func NewCRMRepo(db *sql.DB) *CRMRepo {
	return &CRMRepo{db: db}
}

func (r *CRMRepo) Create(ctx context.Context, rec *domain.CRMRecord) error {
	data := map[string]interface{}{
		"id":             rec.ID,
		"contact_name":   rec.ContactName,
		"company":        rec.Company,
		"work":           pq.Array(rec.Work),
		"status":         rec.Status,
		"last_contact":   rec.LastContact,
		"next_follow_up": rec.NextFollowUp,
		"deal_value":     rec.DealValue,
		"phone":          rec.Phone,
		"notes":          rec.Notes,
		"email":          rec.Email,
		"tags":           pq.Array(rec.Tags),
		"lead_sources":   pq.Array(rec.LeadSources),
		"assigned_to":    rec.AssignedTo,
		"created_at":     rec.CreatedAt,
		"updated_at":     rec.UpdatedAt,
	}
	sqlStr, args, err := builder.BuildInsert("crm_records", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	_, err = r.db.ExecContext(ctx, sqlStr, args...)
	return err
}

func (r *CRMRepo) Get(ctx context.Context, recordID string) (*domain.CRMRecord, error) {
	sqlStr, args := dbutil.Finalize(
		"SELECT "+crmColumns+" FROM crm_records WHERE id = ?",
		[]interface{}{recordID},
	)
	rec, err := scanRecord(r.db.QueryRowContext(ctx, sqlStr, args...))
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("CRM entry not found: %w", domain.ErrNotFound)
	}
	return rec, err
}

func (r *CRMRepo) List(ctx context.Context) ([]domain.CRMRecord, error) {
	return r.query(ctx, "ORDER BY created_at DESC")
}

func (r *CRMRepo) FindByStatus(ctx context.Context, status string) ([]domain.CRMRecord, error) {
	return r.query(ctx, "WHERE status = ?", status)
}

func (r *CRMRepo) FindByAssignedTo(ctx context.Context, assignedTo string) ([]domain.CRMRecord, error) {
	return r.query(ctx, "WHERE assigned_to = ?", assignedTo)
}

func (r *CRMRepo) FindByTag(ctx context.Context, tag string) ([]domain.CRMRecord, error) {
	return r.query(ctx, "WHERE ? = ANY(tags)", tag)
}

func (r *CRMRepo) FindByLeadSource(ctx context.Context, source string) ([]domain.CRMRecord, error) {
	return r.query(ctx, "WHERE ? = ANY(lead_sources)", source)
}

func (r *CRMRepo) FindByDealValueAtLeast(ctx context.Context, minValue float64) ([]domain.CRMRecord, error) {
	return r.query(ctx, "WHERE deal_value >= ?", minValue)
}

// FindUpcomingFollowUps returns records whose next follow-up is strictly
// after the given day, soonest first.
func (r *CRMRepo) FindUpcomingFollowUps(ctx context.Context, after time.Time) ([]domain.CRMRecord, error) {
	return r.query(ctx, "WHERE next_follow_up > ? ORDER BY next_follow_up ASC", after)
}

func (r *CRMRepo) FindByFollowUpDate(ctx context.Context, date time.Time) ([]domain.CRMRecord, error) {
	return r.query(ctx, "WHERE next_follow_up = ?", date)
}

// Update applies a partial column update and returns the fresh row.
func (r *CRMRepo) Update(ctx context.Context, recordID string, updates map[string]interface{}) (*domain.CRMRecord, error) {
	updates["updated_at"] = time.Now().UTC()
	for k, v := range updates {
		if ss, ok := v.([]string); ok {
			updates[k] = pq.Array(ss)
		}
	}
	sqlStr, args, err := builder.BuildUpdate("crm_records", map[string]interface{}{"id": recordID}, updates)
	if err != nil {
		return nil, err
	}
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, fmt.Errorf("CRM entry not found: %w", domain.ErrNotFound)
	}
	return r.Get(ctx, recordID)
}

func (r *CRMRepo) Delete(ctx context.Context, recordID string) error {
	sqlStr, args := dbutil.Finalize("DELETE FROM crm_records WHERE id = ?", []interface{}{recordID})
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return fmt.Errorf("CRM entry not found: %w", domain.ErrNotFound)
	}
	return nil
}

func (r *CRMRepo) query(ctx context.Context, clause string, args ...interface{}) ([]domain.CRMRecord, error) {
	sqlStr := strings.TrimSpace("SELECT " + crmColumns + " FROM crm_records " + clause)
	sqlStr, args = dbutil.Finalize(sqlStr, args)
	rows, err := r.db.QueryContext(ctx, sqlStr, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()
	var records []domain.CRMRecord
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, *rec)
	}
	return records, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRecord(row rowScanner) (*domain.CRMRecord, error) {
	var rec domain.CRMRecord
	err := row.Scan(
		&rec.ID, &rec.ContactName, &rec.Company, pq.Array(&rec.Work), &rec.Status,
		&rec.LastContact, &rec.NextFollowUp, &rec.DealValue, &rec.Phone, &rec.Notes,
		&rec.Email, pq.Array(&rec.Tags), pq.Array(&rec.LeadSources), &rec.AssignedTo,
		&rec.CreatedAt, &rec.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &rec, nil
}
