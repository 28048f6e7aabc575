package in

import (
	"context"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/domain"
)

// ListActiveInput — запрос активных доставок пользователя
type ListActiveInput struct {
	UserID string `json:"user_id"`
	Role   string `json:"role"`
}

// ListActiveOutput — активные доставки вместе с историей последней
type ListActiveOutput struct {
	Deliveries []*domain.Delivery `json:"deliveries"`
}

// ListActiveUseCase — интерфейс use-case для списка активных доставок
type ListActiveUseCase interface {
	Execute(ctx context.Context, input ListActiveInput) (*ListActiveOutput, error)
}
