package out

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/billing/domain"
)

// PaymentRepository — хранилище платежей и расчетов
type PaymentRepository interface {
	// Create сохраняет новый платеж
	Create(ctx context.Context, payment *domain.Payment) error

	// FindByDelivery возвращает платеж доставки
	FindByDelivery(ctx context.Context, deliveryID string) (*domain.Payment, error)

	// Update сохраняет изменяемые поля платежа
	Update(ctx context.Context, payment *domain.Payment) error

	// Settle атомарно проводит расчет: CAS на escrow_released, зачисление
	// доли курьеру, строка заработка. Возвращает false без ошибки, если
	// расчет уже был проведен.
	Settle(ctx context.Context, deliveryID, agentID string, driverCut, platformCut, tip decimal.Decimal) (bool, error)

	// RecordRefund увеличивает возвращенную сумму и обновляет статус
	RecordRefund(ctx context.Context, paymentID string, amount decimal.Decimal, status string) error
}
