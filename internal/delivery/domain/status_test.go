package domain

import (
	"errors"
	"testing"
)

func TestParseStatus(t *testing.T) {
	tests := []struct {
		raw     string
		want    Status
		wantErr bool
	}{
		{raw: "REQUESTED", want: StatusRequested},
		{raw: "requested", want: StatusRequested},
		{raw: "  Picked_Up ", want: StatusPickedUp},
		{raw: "PENDING", want: StatusRequested},
		{raw: "pending", want: StatusRequested},
		{raw: "IN_TRANSIT", want: StatusInTransit},
		{raw: "DONE", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseStatus(tt.raw)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidStatus) {
					t.Fatalf("err = %v, want ErrInvalidStatus", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseStatus(%q): %v", tt.raw, err)
			}
			if got != tt.want {
				t.Errorf("ParseStatus(%q) = %s, want %s", tt.raw, got, tt.want)
			}
		})
	}
}

func TestStatusTransitions(t *testing.T) {
	allowed := []struct {
		from, to Status
	}{
		{StatusRequested, StatusAssigned},
		{StatusRequested, StatusCancelled},
		{StatusAssigned, StatusPickedUp},
		{StatusAssigned, StatusCancelled},
		{StatusPickedUp, StatusInTransit},
		{StatusInTransit, StatusDelivered},
		{StatusInTransit, StatusCancelled},
	}
	for _, tt := range allowed {
		if !tt.from.CanTransitionTo(tt.to) {
			t.Errorf("%s -> %s should be allowed", tt.from, tt.to)
		}
	}

	forbidden := []struct {
		from, to Status
	}{
		{StatusRequested, StatusPickedUp},
		{StatusRequested, StatusDelivered},
		{StatusAssigned, StatusDelivered},
		{StatusDelivered, StatusCancelled},
		{StatusCancelled, StatusRequested},
		{StatusDelivered, StatusDelivered},
	}
	for _, tt := range forbidden {
		if tt.from.CanTransitionTo(tt.to) {
			t.Errorf("%s -> %s should be rejected", tt.from, tt.to)
		}
	}
}
