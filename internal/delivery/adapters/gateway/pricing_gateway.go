package gateway

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/pricing"
)

// PricingGateway достает комиссию платформы из активного тарифа города
type PricingGateway struct {
	configs pricing.ConfigRepository
}

// NewPricingGateway создает шлюз тарифов
func NewPricingGateway(configs pricing.ConfigRepository) *PricingGateway {
	return &PricingGateway{configs: configs}
}

func (g *PricingGateway) CommissionPercent(ctx context.Context, cityID string) (decimal.Decimal, error) {
	cfg, err := g.configs.ActiveForCity(ctx, cityID)
	if err != nil {
		return decimal.Zero, err
	}
	return cfg.CommissionPercent, nil
}
