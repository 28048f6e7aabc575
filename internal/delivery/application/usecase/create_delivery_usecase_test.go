package usecase

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/application/ports/in"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/delivery/domain"
	"github.com/Fazlibeqir/DeliverXY-sub000/internal/geo"
	pricingdomain "github.com/Fazlibeqir/DeliverXY-sub000/internal/pricing/domain"
)

func testFare() *pricingdomain.FareBreakdown {
	return &pricingdomain.FareBreakdown{
		Total:            decimal.RequireFromString("184.00"),
		SurgeMultiplier:  decimal.NewFromInt(1),
		DistanceKm:       4,
		EstimatedMinutes: 7,
		Currency:         "MKD",
	}
}

type createFixture struct {
	repo       *memDeliveryRepo
	history    *memHistoryRepo
	geocoder   *stubGeocoder
	promos     *stubPromos
	payments   *stubPayments
	dispatcher *stubDispatcher
	publisher  *stubPublisher
	service    *CreateDeliveryService
}

func newCreateFixture(t *testing.T) *createFixture {
	t.Helper()
	tracking, err := NewTrackingCodes(1)
	if err != nil {
		t.Fatalf("NewTrackingCodes: %v", err)
	}

	f := &createFixture{
		repo:       newMemDeliveryRepo(),
		history:    &memHistoryRepo{},
		geocoder:   &stubGeocoder{points: map[string]geo.Point{}},
		promos:     &stubPromos{},
		payments:   &stubPayments{},
		dispatcher: &stubDispatcher{},
		publisher:  &stubPublisher{},
	}
	f.service = NewCreateDeliveryService(
		f.repo, f.history, f.geocoder, &stubQuoter{fare: testFare()},
		f.promos, f.payments, f.dispatcher, f.publisher, &stubNotifier{},
		tracking, testLogger(),
	)
	return f
}

func coordInput() in.CreateDeliveryInput {
	pickupLat, pickupLng := 41.0, 21.42
	dropoffLat, dropoffLng := 41.0359729, 21.42
	return in.CreateDeliveryInput{
		ClientID:        "client-1",
		CityID:          "bitola",
		PickupLat:       &pickupLat,
		PickupLng:       &pickupLng,
		PickupAddress:   "Shirok Sokak 1",
		DropoffLat:      &dropoffLat,
		DropoffLng:      &dropoffLng,
		DropoffAddress:  "Bulevar 1 Maj 77",
		PaymentProvider: "wallet",
	}
}

func TestCreateDelivery_HappyPath(t *testing.T) {
	f := newCreateFixture(t)

	output, err := f.service.Execute(context.Background(), coordInput())
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if output.Status != string(domain.StatusRequested) {
		t.Errorf("status = %s, want REQUESTED", output.Status)
	}
	if !strings.HasPrefix(output.TrackingCode, "DLV-") {
		t.Errorf("tracking code = %s, want DLV- prefix", output.TrackingCode)
	}
	if output.FareTotal != "184.00" {
		t.Errorf("fare total = %s, want 184.00", output.FareTotal)
	}

	stored, err := f.repo.FindByID(context.Background(), output.DeliveryID)
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if stored.Status != domain.StatusRequested {
		t.Errorf("stored status = %s, want REQUESTED", stored.Status)
	}

	if len(f.payments.holds) != 1 {
		t.Fatalf("holds = %d, want 1", len(f.payments.holds))
	}
	if !f.payments.holds[0].amount.Equal(decimal.RequireFromString("184.00")) {
		t.Errorf("hold amount = %s, want 184.00", f.payments.holds[0].amount)
	}

	rows, _ := f.history.ForDelivery(context.Background(), output.DeliveryID)
	if len(rows) != 1 || rows[0].Status != domain.StatusRequested {
		t.Errorf("history rows = %v, want one REQUESTED row", rows)
	}
	if rows[0].Actor != domain.ActorClient {
		t.Errorf("history actor = %q, want %q", rows[0].Actor, domain.ActorClient)
	}
	if rows[0].Note != "requested by client-1" {
		t.Errorf("history note = %q, want requested by client-1", rows[0].Note)
	}
	if f.dispatcher.broadcasts != 1 {
		t.Errorf("broadcasts = %d, want 1", f.dispatcher.broadcasts)
	}
	if len(f.publisher.events) != 1 || f.publisher.events[0] != domain.EventDeliveryRequested {
		t.Errorf("events = %v, want [delivery.requested]", f.publisher.events)
	}
	if len(f.publisher.notifications) != 1 {
		t.Fatalf("notifications = %d, want 1", len(f.publisher.notifications))
	}
	if n := f.publisher.notifications[0]; n.UserID != "client-1" || n.Type != domain.EventDeliveryRequested {
		t.Errorf("notification = %+v, want client-1 / delivery.requested", n)
	}
}

func TestCreateDelivery_GeocodesMissingCoordinates(t *testing.T) {
	f := newCreateFixture(t)
	f.geocoder.points["Shirok Sokak 1"] = geo.Point{Latitude: 41.03, Longitude: 21.33}
	f.geocoder.points["Bulevar 1 Maj 77"] = geo.Point{Latitude: 41.01, Longitude: 21.35}

	input := coordInput()
	input.PickupLat, input.PickupLng = nil, nil
	input.DropoffLat, input.DropoffLng = nil, nil

	output, err := f.service.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	stored, _ := f.repo.FindByID(context.Background(), output.DeliveryID)
	if stored.PickupLatitude != 41.03 || stored.DropoffLongitude != 21.35 {
		t.Errorf("stored coordinates not taken from geocoder: %+v", stored)
	}
}

func TestCreateDelivery_GeocodeFailureAborts(t *testing.T) {
	f := newCreateFixture(t)

	input := coordInput()
	input.PickupLat, input.PickupLng = nil, nil

	_, err := f.service.Execute(context.Background(), input)
	if !errors.Is(err, domain.ErrGeocodeFailed) {
		t.Fatalf("err = %v, want ErrGeocodeFailed", err)
	}
	if f.repo.createN != 0 {
		t.Errorf("delivery persisted despite geocode failure")
	}
	if len(f.payments.holds) != 0 {
		t.Errorf("payment hold opened despite geocode failure")
	}
}

func TestCreateDelivery_PromoReducesCharge(t *testing.T) {
	f := newCreateFixture(t)
	f.promos.discount = decimal.RequireFromString("18.40")

	input := coordInput()
	input.PromoCode = "WELCOME10"

	output, err := f.service.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if output.Discount != "18.40" {
		t.Errorf("discount = %s, want 18.40", output.Discount)
	}
	if f.promos.redeemed != 1 {
		t.Errorf("redeemed = %d, want 1", f.promos.redeemed)
	}
	if !f.payments.holds[0].amount.Equal(decimal.RequireFromString("165.60")) {
		t.Errorf("hold amount = %s, want 165.60", f.payments.holds[0].amount)
	}
}

func TestCreateDelivery_RejectedPromoChargesFullFare(t *testing.T) {
	f := newCreateFixture(t)
	f.promos.redeemErr = errors.New("usage limit reached")

	input := coordInput()
	input.PromoCode = "EXPIRED"

	output, err := f.service.Execute(context.Background(), input)
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	if output.Discount != "0.00" {
		t.Errorf("discount = %s, want 0.00", output.Discount)
	}
	if !f.payments.holds[0].amount.Equal(decimal.RequireFromString("184.00")) {
		t.Errorf("hold amount = %s, want 184.00", f.payments.holds[0].amount)
	}
}

func TestCreateDelivery_HoldFailureCancelsDelivery(t *testing.T) {
	f := newCreateFixture(t)
	f.payments.holdErr = errors.New("insufficient balance")

	_, err := f.service.Execute(context.Background(), coordInput())
	if err == nil {
		t.Fatal("expected error when hold fails")
	}

	var cancelled *domain.Delivery
	for _, d := range f.repo.deliveries {
		cancelled = d
	}
	if cancelled == nil || cancelled.Status != domain.StatusCancelled {
		t.Fatalf("delivery not cancelled after hold failure: %+v", cancelled)
	}
	if cancelled.CancelReason == nil || *cancelled.CancelReason != "payment hold failed" {
		t.Errorf("cancel reason = %v, want payment hold failed", cancelled.CancelReason)
	}
	if f.dispatcher.broadcasts != 0 {
		t.Errorf("broadcast sent for unpaid delivery")
	}
}

func TestCreateDelivery_InvalidCoordinatesRejected(t *testing.T) {
	f := newCreateFixture(t)

	input := coordInput()
	badLat := 95.0
	input.PickupLat = &badLat

	_, err := f.service.Execute(context.Background(), input)
	if !errors.Is(err, geo.ErrInvalidCoordinates) {
		t.Fatalf("err = %v, want ErrInvalidCoordinates", err)
	}
}
