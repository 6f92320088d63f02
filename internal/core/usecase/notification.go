package usecase

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/kpetrov/docflow/internal/core/domain"
	"github.com/kpetrov/docflow/internal/core/ports"
)

const notificationSubject = "Document Update"

var errInvalidJSON = errors.New("payload is not valid json")

// NotificationUseCase bridges notification-queue messages onto the pub/sub
// topic. No business logic, no state.
type NotificationUseCase struct {
	topic ports.TopicPublisher
}

func NewNotificationUseCase(topic ports.TopicPublisher) *NotificationUseCase {
	return &NotificationUseCase{topic: topic}
}

func (uc *NotificationUseCase) Handle(ctx context.Context, payload []byte) error {
	if !json.Valid(payload) {
		return domain.WrapError(domain.ErrValidation, "decode notification message", errInvalidJSON)
	}
	return uc.topic.Publish(ctx, payload, notificationSubject)
}
