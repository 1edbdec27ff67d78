package schedule

import (
	"context"

	"github.com/incial/workhub-api/internal/application/otp"
)

// OtpPurgeJob sweeps expired OTP rows on a schedule.
type OtpPurgeJob struct {
	svc otp.Service
}

func NewOtpPurgeJob(svc otp.Service) *OtpPurgeJob {
	return &OtpPurgeJob{svc: svc}
}

func (j *OtpPurgeJob) Name() string { return "otp-purge" }

func (j *OtpPurgeJob) Run(ctx context.Context) error {
	return j.svc.PurgeExpired(ctx)
}
