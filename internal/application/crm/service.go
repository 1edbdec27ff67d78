package crm

import (
	"context"
	"fmt"
	"time"

	"github.com/incial/workhub-api/internal/domain"
	"github.com/incial/workhub-api/internal/pkg/id"
)

// Column names used in partial update maps.
const (
	fieldContactName  = "contact_name"
	fieldCompany      = "company"
	fieldWork         = "work"
	fieldStatus       = "status"
	fieldLastContact  = "last_contact"
	fieldNextFollowUp = "next_follow_up"
	fieldDealValue    = "deal_value"
	fieldPhone        = "phone"
	fieldNotes        = "notes"
	fieldEmail        = "email"
	fieldTags         = "tags"
	fieldLeadSources  = "lead_sources"
	fieldAssignedTo   = "assigned_to"
)

const dateLayout = "2006-01-02"

type Service interface {
	Create(ctx context.Context, req domain.CreateCRMRequest) (*domain.CRMRecord, error)
	List(ctx context.Context) ([]domain.CRMRecord, error)
	Get(ctx context.Context, recordID string) (*domain.CRMRecord, error)
	Update(ctx context.Context, recordID string, req domain.UpdateCRMRequest) (*domain.CRMRecord, error)
	Delete(ctx context.Context, recordID string) error

	GetByStatus(ctx context.Context, status string) ([]domain.CRMRecord, error)
	GetByAssignedTo(ctx context.Context, assignedTo string) ([]domain.CRMRecord, error)
	GetByTag(ctx context.Context, tag string) ([]domain.CRMRecord, error)
	GetByLeadSource(ctx context.Context, source string) ([]domain.CRMRecord, error)
	GetHighValueDeals(ctx context.Context, minValue float64) ([]domain.CRMRecord, error)
	GetUpcomingFollowUps(ctx context.Context) ([]domain.CRMRecord, error)
	GetFollowUpsOnDate(ctx context.Context, date time.Time) ([]domain.CRMRecord, error)
}

type crmStore interface {
	Create(ctx context.Context, rec *domain.CRMRecord) error
	Get(ctx context.Context, recordID string) (*domain.CRMRecord, error)
	List(ctx context.Context) ([]domain.CRMRecord, error)
	Update(ctx context.Context, recordID string, updates map[string]interface{}) (*domain.CRMRecord, error)
	Delete(ctx context.Context, recordID string) error
	FindByStatus(ctx context.Context, status string) ([]domain.CRMRecord, error)
	FindByAssignedTo(ctx context.Context, assignedTo string) ([]domain.CRMRecord, error)
	FindByTag(ctx context.Context, tag string) ([]domain.CRMRecord, error)
	FindByLeadSource(ctx context.Context, source string) ([]domain.CRMRecord, error)
	FindByDealValueAtLeast(ctx context.Context, minValue float64) ([]domain.CRMRecord, error)
	FindUpcomingFollowUps(ctx context.Context, after time.Time) ([]domain.CRMRecord, error)
	FindByFollowUpDate(ctx context.Context, date time.Time) ([]domain.CRMRecord, error)
}

type service struct {
	repo crmStore
	now  func() time.Time
}

func NewService(repo crmStore) Service {
	return &service{repo: repo, now: time.Now}
}

func (s *service) Create(ctx context.Context, req domain.CreateCRMRequest) (*domain.CRMRecord, error) {
	lastContact, err := parseDate(req.LastContact)
	if err != nil {
		return nil, err
	}
	nextFollowUp, err := parseDate(req.NextFollowUp)
	if err != nil {
		return nil, err
	}
	now := s.now().UTC()
	rec := &domain.CRMRecord{
		ID:           id.New(),
		ContactName:  req.ContactName,
		Company:      req.Company,
		Work:         emptyIfNil(req.Work),
		Status:       req.Status,
		LastContact:  lastContact,
		NextFollowUp: nextFollowUp,
		DealValue:    req.DealValue,
		Phone:        req.Phone,
		Notes:        req.Notes,
		Email:        req.Email,
		Tags:         emptyIfNil(req.Tags),
		LeadSources:  emptyIfNil(req.LeadSources),
		AssignedTo:   req.AssignedTo,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, rec); err != nil {
		return nil, err
	}
	return rec, nil
}

func (s *service) List(ctx context.Context) ([]domain.CRMRecord, error) {
	return s.repo.List(ctx)
}

func (s *service) Get(ctx context.Context, recordID string) (*domain.CRMRecord, error) {
	return s.repo.Get(ctx, recordID)
}

// Update applies patch semantics: only fields present in the request
// overwrite stored values.
func (s *service) Update(ctx context.Context, recordID string, req domain.UpdateCRMRequest) (*domain.CRMRecord, error) {
	updates := map[string]interface{}{}
	if req.ContactName != nil {
		updates[fieldContactName] = *req.ContactName
	}
	if req.Company != nil {
		updates[fieldCompany] = *req.Company
	}
	if req.Work != nil {
		updates[fieldWork] = *req.Work
	}
	if req.Status != nil {
		updates[fieldStatus] = *req.Status
	}
	if req.LastContact != nil {
		d, err := parseDate(req.LastContact)
		if err != nil {
			return nil, err
		}
		// d stays nil for an empty string, which clears the column.
		updates[fieldLastContact] = d
	}
	if req.NextFollowUp != nil {
		d, err := parseDate(req.NextFollowUp)
		if err != nil {
			return nil, err
		}
		updates[fieldNextFollowUp] = d
	}
	if req.DealValue != nil {
		updates[fieldDealValue] = *req.DealValue
	}
	if req.Phone != nil {
		updates[fieldPhone] = *req.Phone
	}
	if req.Notes != nil {
		updates[fieldNotes] = *req.Notes
	}
	if req.Email != nil {
		updates[fieldEmail] = *req.Email
	}
	if req.Tags != nil {
		updates[fieldTags] = *req.Tags
	}
	if req.LeadSources != nil {
		updates[fieldLeadSources] = *req.LeadSources
	}
	if req.AssignedTo != nil {
		updates[fieldAssignedTo] = *req.AssignedTo
	}
	if len(updates) == 0 {
		return s.repo.Get(ctx, recordID)
	}
	return s.repo.Update(ctx, recordID, updates)
}

func (s *service) Delete(ctx context.Context, recordID string) error {
	return s.repo.Delete(ctx, recordID)
}

func (s *service) GetByStatus(ctx context.Context, status string) ([]domain.CRMRecord, error) {
	return s.repo.FindByStatus(ctx, status)
}

func (s *service) GetByAssignedTo(ctx context.Context, assignedTo string) ([]domain.CRMRecord, error) {
	return s.repo.FindByAssignedTo(ctx, assignedTo)
}

func (s *service) GetByTag(ctx context.Context, tag string) ([]domain.CRMRecord, error) {
	return s.repo.FindByTag(ctx, tag)
}

func (s *service) GetByLeadSource(ctx context.Context, source string) ([]domain.CRMRecord, error) {
	return s.repo.FindByLeadSource(ctx, source)
}

func (s *service) GetHighValueDeals(ctx context.Context, minValue float64) ([]domain.CRMRecord, error) {
	return s.repo.FindByDealValueAtLeast(ctx, minValue)
}

func (s *service) GetUpcomingFollowUps(ctx context.Context) ([]domain.CRMRecord, error) {
	today := s.now().UTC().Truncate(24 * time.Hour)
	return s.repo.FindUpcomingFollowUps(ctx, today)
}

func (s *service) GetFollowUpsOnDate(ctx context.Context, date time.Time) ([]domain.CRMRecord, error) {
	return s.repo.FindByFollowUpDate(ctx, date)
}

func parseDate(v *string) (*time.Time, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	d, err := time.Parse(dateLayout, *v)
	if err != nil {
		return nil, fmt.Errorf("date must be in YYYY-MM-DD format: %w", domain.ErrBadRequest)
	}
	return &d, nil
}

func emptyIfNil(ss []string) []string {
	if ss == nil {
		return []string{}
	}
	return ss
}
