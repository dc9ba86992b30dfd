package service

import (
	"context"
	"time"

	"backend/internal/repository"
)

type AuditLogResponse struct {
	ID          string `json:"id"`
	UserID      string `json:"user_id"`
	UserName    string `json:"user_name"`
	Action      string `json:"action"`
	RequestKind string `json:"request_kind"`
	EntityID    string `json:"entity_id"`
	Details     string `json:"details"`
	CreatedAt   string `json:"created_at"`
}

type AuditService interface {
	GetAuditLogs(ctx context.Context, page, limit int) ([]AuditLogResponse, int64, error)
}

type auditService struct {
	repo repository.AuditRepository
}

func NewAuditService(repo repository.AuditRepository) AuditService {
	return &auditService{repo: repo}
}

func (s *auditService) GetAuditLogs(ctx context.Context, page, limit int) ([]AuditLogResponse, int64, error) {
	if page <= 0 {
		page = 1
	}
	if limit <= 0 {
		limit = 20
	}

	logs, total, err := s.repo.List(ctx, page, limit)
	if err != nil {
		return nil, 0, err
	}

	res := make([]AuditLogResponse, 0, len(logs))
	for _, l := range logs {
		entry := AuditLogResponse{
			ID:          l.ID.String(),
			UserName:    "System",
			Action:      l.Action,
			RequestKind: l.RequestKind,
			EntityID:    l.EntityID,
			Details:     l.Details,
			CreatedAt:   l.CreatedAt.Format(time.RFC3339),
		}
		if l.UserID != nil {
			entry.UserID = l.UserID.String()
		}
		if l.User != nil {
			entry.UserName = l.User.Name
		}
		res = append(res, entry)
	}

	return res, total, nil
}
