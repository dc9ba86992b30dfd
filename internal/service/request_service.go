package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"backend/internal/model"
	"backend/internal/repository"
	"backend/internal/websocket"
	"backend/internal/workflow"
	"backend/pkg/apperror"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

// --- DTOs ---

type CreateInCityTravelRequest struct {
	Purpose   string `json:"purpose" binding:"required"`
	TimeStart string `json:"time_start" binding:"required"` // ISO datetime
	TimeEnd   string `json:"time_end" binding:"required"`
}

type CreateOutOfCityTravelRequest struct {
	Destination      string `json:"destination" binding:"required"`
	Purpose          string `json:"purpose" binding:"required"`
	Needs            string `json:"needs"`
	Companions       string `json:"companions"`
	CompanionPurpose string `json:"companion_purpose"`
	DepartDate       string `json:"depart_date" binding:"required"` // YYYY-MM-DD
	ReturnDate       string `json:"return_date" binding:"required"`
	TransportType    string `json:"transport_type" binding:"required"`
	ItemsBrought     string `json:"items_brought"`
	AdvanceAmount    string `json:"advance_amount"` // decimal, optional
}

type CreatePersonalRequest struct {
	Title          string `json:"title" binding:"required"`
	RequestType    string `json:"request_type" binding:"required,oneof=time_off leave_early come_late temp_leave"`
	Date           string `json:"date"`
	ShortHour      string `json:"short_hour"` // HH:MM
	ComeLateDate   string `json:"come_late_date"`
	ComeLateHour   string `json:"come_late_hour"`
	TempLeaveStart string `json:"temp_leave_start"`
	TempLeaveEnd   string `json:"temp_leave_end"`
}

type CreateLeaveRequest struct {
	LeaveType      string `json:"leave_type" binding:"required"`
	DateStart      string `json:"date_start" binding:"required"`
	DateEnd        string `json:"date_end" binding:"required"`
	Purpose        string `json:"purpose"`
	Address        string `json:"address"`
	Phone          string `json:"phone"`
	Notes          string `json:"notes"`
	LeaveDays      int    `json:"leave_days"`
	LeaveRemaining int    `json:"leave_remaining"`
}

// ListFilter carries pagination and the optional status filter for request
// listings. Visibility scoping is derived from the acting user, never from
// client input.
type ListFilter struct {
	Status string
	Page   int
	Limit  int
}

// --- Interface ---

// RequestService creates, lists and decides administrative requests of all
// four kinds. Every mutation of the approval envelope goes through the
// workflow engine inside a locked transaction.
type RequestService interface {
	CreateInCityTravel(ctx context.Context, actor *model.User, req CreateInCityTravelRequest) (*model.InCityTravel, error)
	CreateOutOfCityTravel(ctx context.Context, actor *model.User, req CreateOutOfCityTravelRequest) (*model.OutOfCityTravel, error)
	CreatePersonal(ctx context.Context, actor *model.User, req CreatePersonalRequest) (*model.PersonalRequest, error)
	CreateLeave(ctx context.Context, actor *model.User, req CreateLeaveRequest) (*model.LeaveRequest, error)

	// List returns requests of the given kind visible to the actor,
	// ordered by created_at descending.
	List(ctx context.Context, kind workflow.Kind, actor *model.User, f ListFilter) (interface{}, int64, error)
	// ListMine returns the actor's own requests of the given kind.
	ListMine(ctx context.Context, kind workflow.Kind, actor *model.User, f ListFilter) (interface{}, int64, error)
	// Decide applies an approve/reject decision to the request's current
	// stage on behalf of the actor.
	Decide(ctx context.Context, kind workflow.Kind, id string, actor *model.User, decision workflow.Decision) (interface{}, error)
}

type requestService struct {
	inCity   repository.RequestRepository[model.InCityTravel]
	outCity  repository.RequestRepository[model.OutOfCityTravel]
	personal repository.RequestRepository[model.PersonalRequest]
	leave    repository.RequestRepository[model.LeaveRequest]
	audits   repository.AuditRepository
	tx       repository.TransactionManager
	hub      *websocket.Hub
	logger   *zap.Logger
}

// RequestServiceDeps bundles the collaborators for NewRequestService.
type RequestServiceDeps struct {
	InCity   repository.RequestRepository[model.InCityTravel]
	OutCity  repository.RequestRepository[model.OutOfCityTravel]
	Personal repository.RequestRepository[model.PersonalRequest]
	Leave    repository.RequestRepository[model.LeaveRequest]
	Audits   repository.AuditRepository
	Tx       repository.TransactionManager
	Hub      *websocket.Hub
	Logger   *zap.Logger
}

func NewRequestService(deps RequestServiceDeps) RequestService {
	return &requestService{
		inCity:   deps.InCity,
		outCity:  deps.OutCity,
		personal: deps.Personal,
		leave:    deps.Leave,
		audits:   deps.Audits,
		tx:       deps.Tx,
		hub:      deps.Hub,
		logger:   deps.Logger,
	}
}

// --- Create ---

func (s *requestService) CreateInCityTravel(ctx context.Context, actor *model.User, req CreateInCityTravelRequest) (*model.InCityTravel, error) {
	timeStart, err := parseDateTime(req.TimeStart)
	if err != nil {
		return nil, apperror.InvalidInput("invalid time_start: %s", req.TimeStart)
	}
	timeEnd, err := parseDateTime(req.TimeEnd)
	if err != nil {
		return nil, apperror.InvalidInput("invalid time_end: %s", req.TimeEnd)
	}
	if !timeEnd.After(timeStart) {
		return nil, apperror.InvalidInput("time_end must be after time_start")
	}

	env, err := workflow.NewEnvelope(workflow.KindInCityTravel)
	if err != nil {
		return nil, err
	}

	entry := &model.InCityTravel{
		RequesterInfo:    requesterSnapshot(actor),
		Purpose:          req.Purpose,
		TimeStart:        timeStart,
		TimeEnd:          timeEnd,
		ApprovalEnvelope: env,
	}
	if err := createRequest[model.InCityTravel](ctx, s, s.inCity, workflow.KindInCityTravel, entry, actor); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *requestService) CreateOutOfCityTravel(ctx context.Context, actor *model.User, req CreateOutOfCityTravelRequest) (*model.OutOfCityTravel, error) {
	departDate, err := parseDate(req.DepartDate)
	if err != nil {
		return nil, apperror.InvalidInput("invalid depart_date: %s", req.DepartDate)
	}
	returnDate, err := parseDate(req.ReturnDate)
	if err != nil {
		return nil, apperror.InvalidInput("invalid return_date: %s", req.ReturnDate)
	}
	if returnDate.Before(departDate) {
		return nil, apperror.InvalidInput("return_date must not be before depart_date")
	}

	advance := decimal.Zero
	if req.AdvanceAmount != "" {
		advance, err = decimal.NewFromString(req.AdvanceAmount)
		if err != nil {
			return nil, apperror.InvalidInput("invalid advance_amount: %s", req.AdvanceAmount)
		}
		if advance.IsNegative() {
			return nil, apperror.InvalidInput("advance_amount must not be negative")
		}
	}

	env, err := workflow.NewEnvelope(workflow.KindOutOfCityTravel)
	if err != nil {
		return nil, err
	}

	entry := &model.OutOfCityTravel{
		RequesterInfo:    requesterSnapshot(actor),
		Destination:      req.Destination,
		Purpose:          req.Purpose,
		Needs:            req.Needs,
		Companions:       req.Companions,
		CompanionPurpose: req.CompanionPurpose,
		DepartDate:       departDate,
		ReturnDate:       returnDate,
		TransportType:    req.TransportType,
		ItemsBrought:     req.ItemsBrought,
		AdvanceAmount:    advance,
		ApprovalEnvelope: env,
	}
	if err := createRequest[model.OutOfCityTravel](ctx, s, s.outCity, workflow.KindOutOfCityTravel, entry, actor); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *requestService) CreatePersonal(ctx context.Context, actor *model.User, req CreatePersonalRequest) (*model.PersonalRequest, error) {
	entry := &model.PersonalRequest{
		RequesterInfo: requesterSnapshot(actor),
		Title:         req.Title,
		RequestType:   req.RequestType,
	}

	// Each request type requires its own fields; malformed or missing
	// values reject the request instead of storing nulls.
	switch req.RequestType {
	case model.PersonalTimeOff:
		date, err := parseRequiredDate(req.Date, "date")
		if err != nil {
			return nil, err
		}
		entry.Date = date
	case model.PersonalLeaveEarly:
		if err := validateTimeOfDay(req.ShortHour, "short_hour"); err != nil {
			return nil, err
		}
		entry.ShortHour = req.ShortHour
	case model.PersonalComeLate:
		date, err := parseRequiredDate(req.ComeLateDate, "come_late_date")
		if err != nil {
			return nil, err
		}
		if err := validateTimeOfDay(req.ComeLateHour, "come_late_hour"); err != nil {
			return nil, err
		}
		entry.ComeLateDate = date
		entry.ComeLateHour = req.ComeLateHour
	case model.PersonalTempLeave:
		start, err := parseRequiredDate(req.TempLeaveStart, "temp_leave_start")
		if err != nil {
			return nil, err
		}
		end, err := parseRequiredDate(req.TempLeaveEnd, "temp_leave_end")
		if err != nil {
			return nil, err
		}
		if end.Before(*start) {
			return nil, apperror.InvalidInput("temp_leave_end must not be before temp_leave_start")
		}
		entry.TempLeaveStart = start
		entry.TempLeaveEnd = end
	}

	env, err := workflow.NewEnvelope(workflow.KindPersonal)
	if err != nil {
		return nil, err
	}
	entry.ApprovalEnvelope = env

	if err := createRequest[model.PersonalRequest](ctx, s, s.personal, workflow.KindPersonal, entry, actor); err != nil {
		return nil, err
	}
	return entry, nil
}

func (s *requestService) CreateLeave(ctx context.Context, actor *model.User, req CreateLeaveRequest) (*model.LeaveRequest, error) {
	dateStart, err := parseDate(req.DateStart)
	if err != nil {
		return nil, apperror.InvalidInput("invalid date_start: %s", req.DateStart)
	}
	dateEnd, err := parseDate(req.DateEnd)
	if err != nil {
		return nil, apperror.InvalidInput("invalid date_end: %s", req.DateEnd)
	}

	duration := int(dateEnd.Sub(dateStart).Hours()/24) + 1
	if duration < 1 {
		return nil, apperror.InvalidInput("invalid date range: date_end is before date_start")
	}

	env, err := workflow.NewEnvelope(workflow.KindLeave)
	if err != nil {
		return nil, err
	}

	entry := &model.LeaveRequest{
		RequesterInfo:    requesterSnapshot(actor),
		LeaveType:        req.LeaveType,
		DateStart:        dateStart,
		DateEnd:          dateEnd,
		Duration:         duration,
		Purpose:          req.Purpose,
		Address:          req.Address,
		Phone:            req.Phone,
		Notes:            req.Notes,
		LeaveDays:        req.LeaveDays,
		LeaveRemaining:   req.LeaveRemaining,
		ApprovalEnvelope: env,
	}
	if err := createRequest[model.LeaveRequest](ctx, s, s.leave, workflow.KindLeave, entry, actor); err != nil {
		return nil, err
	}
	return entry, nil
}

// --- List ---

func (s *requestService) List(ctx context.Context, kind workflow.Kind, actor *model.User, f ListFilter) (interface{}, int64, error) {
	filter := repository.RequestFilter{
		Scope:    workflow.VisibilityScope(actor),
		Name:     actor.Name,
		Division: actor.Division,
		Status:   f.Status,
		Page:     f.Page,
		Limit:    f.Limit,
	}
	return s.listByKind(ctx, kind, filter)
}

func (s *requestService) ListMine(ctx context.Context, kind workflow.Kind, actor *model.User, f ListFilter) (interface{}, int64, error) {
	filter := repository.RequestFilter{
		Scope:  workflow.ScopeOwn,
		Name:   actor.Name,
		Status: f.Status,
		Page:   f.Page,
		Limit:  f.Limit,
	}
	return s.listByKind(ctx, kind, filter)
}

func (s *requestService) listByKind(ctx context.Context, kind workflow.Kind, filter repository.RequestFilter) (interface{}, int64, error) {
	switch kind {
	case workflow.KindInCityTravel:
		return s.inCity.List(ctx, filter)
	case workflow.KindOutOfCityTravel:
		return s.outCity.List(ctx, filter)
	case workflow.KindPersonal:
		return s.personal.List(ctx, filter)
	case workflow.KindLeave:
		return s.leave.List(ctx, filter)
	default:
		return nil, 0, apperror.NotFound("unknown request kind %q", kind)
	}
}

// --- Decide ---

func (s *requestService) Decide(ctx context.Context, kind workflow.Kind, id string, actor *model.User, decision workflow.Decision) (interface{}, error) {
	switch kind {
	case workflow.KindInCityTravel:
		return decideRequest[model.InCityTravel](ctx, s, s.inCity, kind, id, actor, decision)
	case workflow.KindOutOfCityTravel:
		return decideRequest[model.OutOfCityTravel](ctx, s, s.outCity, kind, id, actor, decision)
	case workflow.KindPersonal:
		return decideRequest[model.PersonalRequest](ctx, s, s.personal, kind, id, actor, decision)
	case workflow.KindLeave:
		return decideRequest[model.LeaveRequest](ctx, s, s.leave, kind, id, actor, decision)
	default:
		return nil, apperror.NotFound("unknown request kind %q", kind)
	}
}

// --- Generic internals ---

// requestPtr constrains PT to be *T implementing model.Request.
type requestPtr[T any] interface {
	*T
	model.Request
}

func createRequest[T any, PT requestPtr[T]](ctx context.Context, s *requestService, repo repository.RequestRepository[T], kind workflow.Kind, entry *T, actor *model.User) error {
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := repo.Create(txCtx, entry); err != nil {
			return err
		}

		pm := PT(entry)
		details, _ := json.Marshal(map[string]interface{}{
			"kind":      string(kind),
			"requester": pm.Requester().Name,
			"division":  pm.Requester().Division,
		})
		audit := &model.AuditLog{
			UserID:      &actor.ID,
			Action:      model.ActionSubmitRequest,
			RequestKind: string(kind),
			EntityID:    pm.RequestID().String(),
			Details:     string(details),
		}
		return s.audits.Create(txCtx, audit)
	})
	if err != nil {
		return err
	}

	s.logger.Info("request submitted",
		zap.String("kind", string(kind)),
		zap.String("request_id", PT(entry).RequestID().String()),
		zap.String("requester", actor.Name))
	return nil
}

func decideRequest[T any, PT requestPtr[T]](ctx context.Context, s *requestService, repo repository.RequestRepository[T], kind workflow.Kind, id string, actor *model.User, decision workflow.Decision) (*T, error) {
	requestID, err := uuid.Parse(id)
	if err != nil {
		return nil, apperror.InvalidInput("invalid request id: %s", id)
	}

	var result *T
	err = s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		// Row lock so concurrent decisions on the same request serialize;
		// the loser re-reads the advanced envelope and fails in the engine.
		entry, err := repo.FindByIDForUpdate(txCtx, requestID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("request %s not found", id)
			}
			return err
		}

		pm := PT(entry)
		subject := workflow.Subject{
			Kind:          kind,
			RequesterName: pm.Requester().Name,
			Division:      pm.Requester().Division,
		}
		if err := workflow.Decide(pm.Envelope(), subject, actor, decision); err != nil {
			return err
		}

		if err := repo.Update(txCtx, entry); err != nil {
			return err
		}

		action := model.ActionApproveStage
		if decision == workflow.DecisionReject {
			action = model.ActionRejectRequest
		}
		details, _ := json.Marshal(map[string]interface{}{
			"kind":           string(kind),
			"overall_status": pm.Envelope().OverallStatus,
		})
		audit := &model.AuditLog{
			UserID:      &actor.ID,
			Action:      action,
			RequestKind: string(kind),
			EntityID:    pm.RequestID().String(),
			Details:     string(details),
		}
		if err := s.audits.Create(txCtx, audit); err != nil {
			return err
		}

		result = entry
		return nil
	})
	if err != nil {
		return nil, err
	}

	pm := PT(result)
	if s.hub != nil {
		s.hub.BroadcastDecision(websocket.DecisionEvent{
			Kind:          string(kind),
			RequestID:     pm.RequestID().String(),
			Decision:      string(decision),
			OverallStatus: pm.Envelope().OverallStatus,
			Actor:         actor.Name,
		})
	}

	s.logger.Info("approval decision applied",
		zap.String("kind", string(kind)),
		zap.String("request_id", pm.RequestID().String()),
		zap.String("decision", string(decision)),
		zap.String("overall_status", pm.Envelope().OverallStatus),
		zap.String("actor", actor.Name))
	return result, nil
}

// --- Helpers ---

func requesterSnapshot(actor *model.User) model.RequesterInfo {
	division := strings.TrimSpace(actor.Division)
	if division == "" {
		division = model.DefaultDivision
	}
	return model.RequesterInfo{
		Name:     actor.Name,
		Division: division,
		Role:     actor.Role,
	}
}

var dateTimeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02T15:04",
}

func parseDateTime(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateTimeLayouts {
		t, err := time.Parse(layout, value)
		if err == nil {
			return t, nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

func parseDate(value string) (time.Time, error) {
	return time.Parse("2006-01-02", value)
}

func parseRequiredDate(value, field string) (*time.Time, error) {
	if value == "" {
		return nil, apperror.InvalidInput("%s is required", field)
	}
	t, err := parseDate(value)
	if err != nil {
		return nil, apperror.InvalidInput("invalid %s: %s", field, value)
	}
	return &t, nil
}

func validateTimeOfDay(value, field string) error {
	if value == "" {
		return apperror.InvalidInput("%s is required", field)
	}
	if _, err := time.Parse("15:04", value); err != nil {
		return apperror.InvalidInput("invalid %s: %s", field, value)
	}
	return nil
}
