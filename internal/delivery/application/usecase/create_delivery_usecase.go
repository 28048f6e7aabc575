package usecase

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/application/ports/in"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/application/ports/out"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/domain"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/geo"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/shared/logger"
)

// CreateDeliveryService реализует CreateDeliveryUseCase
type CreateDeliveryService struct {
	deliveryRepo out.DeliveryRepository
	historyRepo  out.HistoryRepository
	geocoder     out.Geocoder
	quoter       out.FareQuoter
	promos       out.PromoEstimator
	payments     out.PaymentGateway
	dispatcher   out.Dispatcher
	publisher    out.EventPublisher
	notifier     out.DeliveryNotifier
	tracking     *TrackingCodes
	log          *logger.Logger
}

// NewCreateDeliveryService создает новый сервис для создания доставки
func NewCreateDeliveryService(
	deliveryRepo out.DeliveryRepository,
	historyRepo out.HistoryRepository,
	geocoder out.Geocoder,
	quoter out.FareQuoter,
	promos out.PromoEstimator,
	payments out.PaymentGateway,
	dispatcher out.Dispatcher,
	publisher out.EventPublisher,
	notifier out.DeliveryNotifier,
	tracking *TrackingCodes,
	log *logger.Logger,
) *CreateDeliveryService {
	return &CreateDeliveryService{
		deliveryRepo: deliveryRepo,
		historyRepo:  historyRepo,
		geocoder:     geocoder,
		quoter:       quoter,
		promos:       promos,
		payments:     payments,
		dispatcher:   dispatcher,
		publisher:    publisher,
		notifier:     notifier,
		tracking:     tracking,
		log:          log,
	}
}

// Execute выполняет создание новой доставки
func (s *CreateDeliveryService) Execute(ctx context.Context, input in.CreateDeliveryInput) (*in.CreateDeliveryOutput, error) {
	pickup, err := s.resolvePoint(ctx, input.PickupLat, input.PickupLng, input.PickupAddress)
	if err != nil {
		return nil, err
	}
	dropoff, err := s.resolvePoint(ctx, input.DropoffLat, input.DropoffLng, input.DropoffAddress)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()

	fare, err := s.quoter.Quote(ctx, input.CityID, pickup, dropoff, now)
	if err != nil {
		return nil, fmt.Errorf("quote fare: %w", err)
	}

	tip := decimal.Zero
	if input.Tip != "" {
		tip, err = decimal.NewFromString(input.Tip)
		if err != nil || tip.IsNegative() {
			return nil, fmt.Errorf("invalid tip amount")
		}
	}

	trackingCode := s.tracking.Generate()

	delivery := &domain.Delivery{
		ID:               uuid.New().String(),
		TrackingCode:     trackingCode,
		ClientID:         input.ClientID,
		CityID:           input.CityID,
		Status:           domain.StatusRequested,
		PickupLatitude:   pickup.Latitude,
		PickupLongitude:  pickup.Longitude,
		PickupAddress:    input.PickupAddress,
		DropoffLatitude:  dropoff.Latitude,
		DropoffLongitude: dropoff.Longitude,
		DropoffAddress:   input.DropoffAddress,
		PackageWeightKg:  input.PackageWeightKg,
		PackageNote:      input.PackageNote,
		DistanceKm:       fare.DistanceKm,
		FareTotal:        fare.Total,
		Currency:         fare.Currency,
		RequestedAt:      now,
		CreatedAt:        now,
		UpdatedAt:        now,
	}

	if err := s.deliveryRepo.Create(ctx, delivery); err != nil {
		s.log.Error(logger.Entry{
			Action:  "create_delivery_failed",
			Message: err.Error(),
			Error:   &logger.ErrObj{Msg: err.Error()},
			Additional: map[string]any{
				"tracking_code": trackingCode,
				"client_id":     input.ClientID,
			},
		})
		return nil, fmt.Errorf("create delivery: %w", err)
	}

	// Промокод подтверждается после создания доставки. Отказ не
	// блокирует заказ, клиент платит полную стоимость.
	discount := decimal.Zero
	if input.PromoCode != "" {
		discount, err = s.promos.Redeem(ctx, input.PromoCode, input.ClientID, delivery.ID, fare.Total)
		if err != nil {
			s.log.Warn(logger.Entry{
				Action:     "promo_redeem_rejected",
				Message:    err.Error(),
				DeliveryID: delivery.ID,
			})
			discount = decimal.Zero
		}
	}

	chargeAmount := fare.Total.Sub(discount)
	if err := s.payments.OpenHold(ctx, delivery.ID, input.ClientID, input.PaymentProvider, chargeAmount, tip, fare.Currency); err != nil {
		s.cancelUnpaid(ctx, delivery, err)
		return nil, fmt.Errorf("open payment hold: %w", err)
	}

	s.appendHistory(ctx, delivery.ID, domain.StatusRequested, domain.ActorClient, "requested by "+input.ClientID)

	s.log.Info(logger.Entry{
		Action:     "delivery_created",
		Message:    trackingCode,
		DeliveryID: delivery.ID,
		Additional: map[string]any{
			"client_id":   input.ClientID,
			"city_id":     input.CityID,
			"fare_total":  fare.Total.StringFixed(2),
			"discount":    discount.StringFixed(2),
			"distance_km": fare.DistanceKm,
		},
	})

	if err := s.publisher.PublishDeliveryEvent(ctx, domain.EventDeliveryRequested, delivery); err != nil {
		s.log.Error(logger.Entry{
			Action:     "publish_delivery_event_failed",
			Message:    err.Error(),
			DeliveryID: delivery.ID,
			Error:      &logger.ErrObj{Msg: err.Error()},
		})
		// Не возвращаем ошибку, т.к. доставка уже создана
	}

	if err := s.publisher.PublishNotification(ctx, &domain.Notification{
		UserID:      input.ClientID,
		Title:       "Delivery requested",
		Message:     "Delivery " + trackingCode + " has been created",
		Type:        domain.EventDeliveryRequested,
		ReferenceID: delivery.ID,
	}); err != nil {
		s.log.Error(logger.Entry{
			Action:     "publish_notification_failed",
			Message:    err.Error(),
			DeliveryID: delivery.ID,
			Error:      &logger.ErrObj{Msg: err.Error()},
		})
	}

	// Оповещаем доступных агентов поблизости
	if err := s.dispatcher.Broadcast(ctx, input.CityID, pickup, map[string]any{
		"type":          "new_delivery",
		"delivery_id":   delivery.ID,
		"tracking_code": trackingCode,
		"pickup_lat":    pickup.Latitude,
		"pickup_lng":    pickup.Longitude,
		"fare_total":    fare.Total.StringFixed(2),
	}); err != nil {
		s.log.Error(logger.Entry{
			Action:     "broadcast_delivery_failed",
			Message:    err.Error(),
			DeliveryID: delivery.ID,
			Error:      &logger.ErrObj{Msg: err.Error()},
		})
	}

	return &in.CreateDeliveryOutput{
		DeliveryID:       delivery.ID,
		TrackingCode:     trackingCode,
		Status:           string(domain.StatusRequested),
		FareTotal:        fare.Total.StringFixed(2),
		Discount:         discount.StringFixed(2),
		Currency:         fare.Currency,
		DistanceKm:       fare.DistanceKm,
		EstimatedMinutes: fare.EstimatedMinutes,
		PickupAddress:    input.PickupAddress,
		DropoffAddress:   input.DropoffAddress,
	}, nil
}

// resolvePoint возвращает координаты из запроса или геокодирует адрес
func (s *CreateDeliveryService) resolvePoint(ctx context.Context, lat, lng *float64, address string) (geo.Point, error) {
	if lat != nil && lng != nil {
		if err := geo.Validate(*lat, *lng); err != nil {
			return geo.Point{}, err
		}
		return geo.Point{Latitude: *lat, Longitude: *lng}, nil
	}
	point, err := s.geocoder.Geocode(ctx, address)
	if err != nil {
		s.log.Warn(logger.Entry{
			Action:  "geocode_failed",
			Message: err.Error(),
			Additional: map[string]any{
				"address": address,
			},
		})
		return geo.Point{}, fmt.Errorf("%w: %s", domain.ErrGeocodeFailed, address)
	}
	return point, nil
}

// cancelUnpaid переводит доставку в CANCELLED после отказа платежа
func (s *CreateDeliveryService) cancelUnpaid(ctx context.Context, d *domain.Delivery, cause error) {
	reason := "payment hold failed"
	system := "system"
	_, err := s.deliveryRepo.UpdateStatus(ctx, out.StatusUpdate{
		DeliveryID:   d.ID,
		FromStatus:   domain.StatusRequested,
		ToStatus:     domain.StatusCancelled,
		At:           time.Now().UTC(),
		CancelReason: &reason,
		CancelledBy:  &system,
	})
	if err != nil {
		s.log.Error(logger.Entry{
			Action:     "cancel_unpaid_delivery_failed",
			Message:    err.Error(),
			DeliveryID: d.ID,
			Error:      &logger.ErrObj{Msg: err.Error()},
		})
		return
	}
	s.appendHistory(ctx, d.ID, domain.StatusCancelled, domain.ActorSystem, cause.Error())
}

func (s *CreateDeliveryService) appendHistory(ctx context.Context, deliveryID string, status domain.Status, actor, note string) {
	h := &domain.DeliveryHistory{
		ID:         uuid.New().String(),
		DeliveryID: deliveryID,
		Status:     status,
		Actor:      actor,
		Note:       note,
		CreatedAt:  time.Now().UTC(),
	}
	if err := s.historyRepo.Append(ctx, h); err != nil {
		s.log.Error(logger.Entry{
			Action:     "append_history_failed",
			Message:    err.Error(),
			DeliveryID: deliveryID,
			Error:      &logger.ErrObj{Msg: err.Error()},
		})
	}
}
