package postgres

import (
	"context"
	"database/sql"
	"time"

	"github.com/didi/gendry/builder"

	"github.com/incial/workhub-api/internal/domain"
	"github.com/incial/workhub-api/internal/pkg/dbutil"
)

// OtpRepo owns the otps table. Nothing else reads or writes these rows.
type OtpRepo struct {
	db *sql.DB
}

func NewOtpRepo(db *sql.DB) *OtpRepo {
	return &OtpRepo{db: db}
}

// Replace deletes every prior row for the email and inserts the new one in
// a single transaction, so two concurrent requests cannot both leave a live
// code behind.
func (r *OtpRepo) Replace(ctx context.Context, otp *domain.Otp) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	delStr, delArgs, err := builder.BuildDelete("otps", map[string]interface{}{"email": otp.Email})
	if err != nil {
		return err
	}
	delStr, delArgs = dbutil.Finalize(delStr, delArgs)
	if _, err := tx.ExecContext(ctx, delStr, delArgs...); err != nil {
		return err
	}

	data := map[string]interface{}{
		"id":         otp.ID,
		"email":      otp.Email,
		"code":       otp.Code,
		"expires_at": otp.ExpiresAt,
		"verified":   otp.Verified,
		"created_at": otp.CreatedAt,
	}
	insStr, insArgs, err := builder.BuildInsert("otps", []map[string]interface{}{data})
	if err != nil {
		return err
	}
	insStr, insArgs = dbutil.Finalize(insStr, insArgs)
	if _, err := tx.ExecContext(ctx, insStr, insArgs...); err != nil {
		return err
	}

	return tx.Commit()
}

// Claim marks the matching unverified, unexpired code as verified. The
// conditional update makes the claim atomic: of two racing attempts with
// the same code, exactly one sees an affected row.
func (r *OtpRepo) Claim(ctx context.Context, email, code string, now time.Time) (bool, error) {
	sqlStr, args := dbutil.Finalize(
		"UPDATE otps SET verified = TRUE WHERE email = ? AND code = ? AND verified = FALSE AND expires_at > ?",
		[]interface{}{email, code, now},
	)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return false, err
	}
	affected, err := result.RowsAffected()
	if err != nil {
		return false, err
	}
	return affected == 1, nil
}

// DeleteExpired removes every row whose expiry is at or before now and
// returns the number of rows swept.
func (r *OtpRepo) DeleteExpired(ctx context.Context, now time.Time) (int64, error) {
	sqlStr, args := dbutil.Finalize(
		"DELETE FROM otps WHERE expires_at <= ?",
		[]interface{}{now},
	)
	result, err := r.db.ExecContext(ctx, sqlStr, args...)
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
