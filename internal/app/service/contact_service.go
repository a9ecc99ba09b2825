package service

import (
	"context"
	"encoding/json"
	"log"
	"strings"
	"time"

	"autohaven/internal/common"
	"autohaven/internal/domain/model"
	"autohaven/internal/domain/repository"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

type ContactRequest struct {
	Name    string `json:"name" validate:"required,max=100"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"max=32"`
	Message string `json:"message" validate:"required,max=5000"`
}

// ContactService accepts contact-form messages. With a redis client the
// message is queued for the ContactWorker; without one it is stored directly.
type ContactService struct {
	contactRepo repository.ContactRepository
	rdb         *redis.Client
	queueName   string
}

func NewContactService(contactRepo repository.ContactRepository, rdb *redis.Client, queueName string) *ContactService {
	return &ContactService{contactRepo: contactRepo, rdb: rdb, queueName: queueName}
}

func (s *ContactService) Submit(ctx context.Context, req ContactRequest) (*model.ContactMessage, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.TrimSpace(req.Email)
	req.Phone = strings.TrimSpace(req.Phone)
	req.Message = strings.TrimSpace(req.Message)
	if err := common.Validate(req); err != nil {
		return nil, err
	}

	msg := &model.ContactMessage{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Message:   req.Message,
		CreatedAt: time.Now().UTC(),
	}

	if s.rdb == nil {
		if err := s.contactRepo.Create(ctx, msg); err != nil {
			return nil, common.Errorf("failed to store contact message: %w", err)
		}
		return msg, nil
	}

	payload, err := json.Marshal(msg)
	if err != nil {
		return nil, common.Errorf("failed to marshal contact message: %w", err)
	}
	if err := s.rdb.LPush(ctx, s.queueName, payload).Err(); err != nil {
		log.Printf("ERROR: Failed to push contact message %s to queue '%s': %v", msg.ID, s.queueName, err)
		return nil, common.Errorf("contact queue unavailable: %w", common.ErrServiceUnavailable)
	}
	log.Printf("INFO: Contact message %s enqueued", msg.ID)
	return msg, nil
}

// List returns stored messages, newest first. Admin only.
func (s *ContactService) List(ctx context.Context, caller model.CallerIdentity, page, limit int) ([]model.ContactMessage, int, error) {
	if err := requireAdmin(caller); err != nil {
		return nil, 0, err
	}
	page, limit = NormalizePage(page, limit)
	messages, total, err := s.contactRepo.List(ctx, limit, pageOffset(page, limit))
	if err != nil {
		return nil, 0, common.Errorf("failed to list contact messages: %w", err)
	}
	return messages, total, nil
}
