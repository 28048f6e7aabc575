package out

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	agentdomain "github.com/Fazlibeqir/DeliverXY-sub000/internal/agent/domain"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/geo"
	pricingdomain "github.com/Fazlibeqir/DeliverXY-sub000/internal/pricing/domain"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/promo"
)

// FareQuoter считает стоимость маршрута по активному тарифу города
type FareQuoter interface {
	Quote(ctx context.Context, cityID string, pickup, dropoff geo.Point, when time.Time) (*pricingdomain.FareBreakdown, error)
}

// PromoEstimator оценивает и списывает промокоды
type PromoEstimator interface {
	Estimate(ctx context.Context, code, userID string, orderAmount decimal.Decimal) (*promo.Estimation, error)
	Redeem(ctx context.Context, code, userID, deliveryID string, orderAmount decimal.Decimal) (decimal.Decimal, error)
}

// PaymentGateway — операции биллинга, нужные жизненному циклу доставки
type PaymentGateway interface {
	OpenHold(ctx context.Context, deliveryID, payerID, provider string, amount, tip decimal.Decimal, currency string) error
	Settle(ctx context.Context, deliveryID, agentID string, commissionPercent decimal.Decimal) error
	Refund(ctx context.Context, deliveryID string) error
}

// Dispatcher подбирает и оповещает агентов
type Dispatcher interface {
	FindNearest(ctx context.Context, cityID string, pickup geo.Point) (*agentdomain.Agent, error)
	Broadcast(ctx context.Context, cityID string, pickup geo.Point, payload any) error
}

// CommissionProvider возвращает процент комиссии платформы для города
type CommissionProvider interface {
	CommissionPercent(ctx context.Context, cityID string) (decimal.Decimal, error)
}

// AgentGateway — доступ к данным агентов из контекста agent
type AgentGateway interface {
	FindByID(ctx context.Context, agentID string) (*agentdomain.Agent, error)
	LastLocation(ctx context.Context, agentID string) (*agentdomain.AgentLocation, error)
}
