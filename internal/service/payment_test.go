package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"

	"crfms-backend/internal/clock"
	"crfms-backend/internal/domain"
	"crfms-backend/internal/service"
)

func TestPaymentService_ProcessPayment(t *testing.T) {
	reservationRepo := new(MockReservationRepo)
	publisher := new(MockPublisher)

	clk := clock.NewMockClock(time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC))
	svc := service.NewPaymentService(reservationRepo, publisher, clk)

	ctx := context.Background()

	pendingInvoice := func() *domain.Reservation {
		return &domain.Reservation{
			ID:         "res-1",
			CustomerID: "cust-1",
			TotalPrice: 173.40,
			Status:     domain.ReservationStatusApproved,
			Invoice:    domain.Invoice{ID: "inv-1", Status: domain.InvoiceStatusPending, TotalPrice: 173.40},
		}
	}

	t.Run("Credit Card Success", func(t *testing.T) {
		res := pendingInvoice()
		reservationRepo.On("GetByID", ctx, "res-1").Return(res, nil).Once()
		reservationRepo.On("Update", ctx, mock.AnythingOfType("*domain.Reservation")).Return(nil).Once()
		publisher.On("Publish", ctx, domain.EventInvoicePaid, mock.Anything).Return(nil).Once()

		method := domain.PaymentMethod{
			Type:       domain.PaymentMethodCreditCard,
			CreditCard: &domain.CreditCardDetails{CardNumber: "4111111111111111", CVV: "123", Expiry: "12/27"},
		}
		result, err := svc.ProcessPayment(ctx, "res-1", method)
		assert.NoError(t, err)
		assert.Equal(t, domain.InvoiceStatusCompleted, result.Status)
		assert.Equal(t, "inv-1", result.InvoiceID)
		assert.InDelta(t, 173.40, result.Amount, 0.0001)
		assert.Contains(t, result.Receipt, "card ending 1111")
		assert.Equal(t, domain.InvoiceStatusCompleted, res.Invoice.Status)
		publisher.AssertExpectations(t)
	})

	t.Run("Expired Card Declined", func(t *testing.T) {
		res := pendingInvoice()
		reservationRepo.On("GetByID", ctx, "res-1").Return(res, nil).Once()
		reservationRepo.On("Update", ctx, mock.AnythingOfType("*domain.Reservation")).Return(nil).Once()
		publisher.On("Publish", ctx, domain.EventInvoicePaymentFailed, mock.Anything).Return(nil).Once()

		method := domain.PaymentMethod{
			Type:       domain.PaymentMethodCreditCard,
			CreditCard: &domain.CreditCardDetails{CardNumber: "4111111111111111", CVV: "123", Expiry: "01/26"},
		}
		result, err := svc.ProcessPayment(ctx, "res-1", method)
		assert.NoError(t, err)
		assert.Equal(t, domain.InvoiceStatusFailed, result.Status)
		assert.Contains(t, result.Receipt, "declined: expired 01/26")
		assert.Equal(t, domain.InvoiceStatusFailed, res.Invoice.Status)
		publisher.AssertExpectations(t)
	})

	t.Run("Card Valid Through Its Expiry Month", func(t *testing.T) {
		res := pendingInvoice()
		reservationRepo.On("GetByID", ctx, "res-1").Return(res, nil).Once()
		reservationRepo.On("Update", ctx, mock.AnythingOfType("*domain.Reservation")).Return(nil).Once()
		publisher.On("Publish", ctx, domain.EventInvoicePaid, mock.Anything).Return(nil).Once()

		// Clock is 2026-03-01; a card expiring 03/26 still works all March.
		method := domain.PaymentMethod{
			Type:       domain.PaymentMethodCreditCard,
			CreditCard: &domain.CreditCardDetails{CardNumber: "4111111111111111", CVV: "123", Expiry: "03/26"},
		}
		result, err := svc.ProcessPayment(ctx, "res-1", method)
		assert.NoError(t, err)
		assert.Equal(t, domain.InvoiceStatusCompleted, result.Status)
	})

	t.Run("PayPal Success", func(t *testing.T) {
		res := pendingInvoice()
		reservationRepo.On("GetByID", ctx, "res-1").Return(res, nil).Once()
		reservationRepo.On("Update", ctx, mock.AnythingOfType("*domain.Reservation")).Return(nil).Once()
		publisher.On("Publish", ctx, domain.EventInvoicePaid, mock.Anything).Return(nil).Once()

		method := domain.PaymentMethod{
			Type:   domain.PaymentMethodPayPal,
			PayPal: &domain.PayPalDetails{Email: "dana@example.com", AuthToken: "tok-1"},
		}
		result, err := svc.ProcessPayment(ctx, "res-1", method)
		assert.NoError(t, err)
		assert.Equal(t, domain.InvoiceStatusCompleted, result.Status)
		assert.Contains(t, result.Receipt, "via PayPal account dana@example.com")
	})

	t.Run("Invoice Already Processed", func(t *testing.T) {
		res := pendingInvoice()
		res.Invoice.Status = domain.InvoiceStatusCompleted
		reservationRepo.On("GetByID", ctx, "res-1").Return(res, nil).Once()

		method := domain.PaymentMethod{
			Type:   domain.PaymentMethodPayPal,
			PayPal: &domain.PayPalDetails{Email: "dana@example.com", AuthToken: "tok-1"},
		}
		result, err := svc.ProcessPayment(ctx, "res-1", method)
		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "has already been processed")
	})

	t.Run("Malformed Expiry", func(t *testing.T) {
		res := pendingInvoice()
		reservationRepo.On("GetByID", ctx, "res-1").Return(res, nil).Once()

		method := domain.PaymentMethod{
			Type:       domain.PaymentMethodCreditCard,
			CreditCard: &domain.CreditCardDetails{CardNumber: "4111111111111111", CVV: "123", Expiry: "12/2027"},
		}
		result, err := svc.ProcessPayment(ctx, "res-1", method)
		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "credit card expiry must be in MM/YY format")
	})

	t.Run("Unsupported Method", func(t *testing.T) {
		res := pendingInvoice()
		reservationRepo.On("GetByID", ctx, "res-1").Return(res, nil).Once()

		result, err := svc.ProcessPayment(ctx, "res-1", domain.PaymentMethod{Type: "CRYPTO"})
		assert.Error(t, err)
		assert.Nil(t, result)
		assert.Contains(t, err.Error(), "unsupported payment method")
	})
}
