package service

import (
	"context"
	"fmt"
	"time"

	"crfms-backend/internal/clock"
	"crfms-backend/internal/domain"
	"crfms-backend/internal/events"
	"crfms-backend/internal/logger"
	"crfms-backend/internal/repository"
)

type paymentService struct {
	reservationRepo repository.ReservationRepository
	publisher       events.Publisher
	clock           clock.Clock
}

func NewPaymentService(
	reservationRepo repository.ReservationRepository,
	publisher events.Publisher,
	clk clock.Clock,
) PaymentService {
	return &paymentService{
		reservationRepo: reservationRepo,
		publisher:       publisher,
		clock:           clk,
	}
}

func (s *paymentService) ProcessPayment(ctx context.Context, reservationID string, method domain.PaymentMethod) (*domain.PaymentResult, error) {
	reservation, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		return nil, err
	}
	if reservation.Invoice.Status != domain.InvoiceStatusPending {
		return nil, domain.Ef(domain.KindInvalidState, "invoice '%s' has already been processed, status: '%s'",
			reservation.Invoice.ID, reservation.Invoice.Status)
	}

	if err := s.validatePaymentMethod(method); err != nil {
		return nil, err
	}

	amount := reservation.Invoice.TotalPrice

	var approved bool
	var receipt string
	switch method.Type {
	case domain.PaymentMethodCreditCard:
		approved, receipt = s.chargeCreditCard(method.CreditCard, amount)
	case domain.PaymentMethodPayPal:
		approved, receipt = s.chargePayPal(method.PayPal, amount)
	}

	now := s.clock.Now()
	if approved {
		reservation.Invoice.Status = domain.InvoiceStatusCompleted
	} else {
		reservation.Invoice.Status = domain.InvoiceStatusFailed
	}
	reservation.UpdatedAt = now
	if err := s.reservationRepo.Update(ctx, reservation); err != nil {
		return nil, err
	}

	result := &domain.PaymentResult{
		ReservationID: reservation.ID,
		InvoiceID:     reservation.Invoice.ID,
		Amount:        amount,
		Method:        method.Type,
		Status:        reservation.Invoice.Status,
		Receipt:       receipt,
		ProcessedAt:   now,
	}

	if approved {
		logger.Info("Payment completed",
			"reservation_id", reservation.ID,
			"invoice_id", reservation.Invoice.ID,
			"amount", amount,
			"method", method.Type)
		publishEvent(ctx, s.publisher, domain.EventInvoicePaid, map[string]any{
			"reservation_id": reservation.ID,
			"invoice_id":     reservation.Invoice.ID,
			"amount":         amount,
			"method":         string(method.Type),
		})
	} else {
		logger.Warn("Payment declined",
			"reservation_id", reservation.ID,
			"invoice_id", reservation.Invoice.ID,
			"amount", amount,
			"method", method.Type,
			"receipt", receipt)
		publishEvent(ctx, s.publisher, domain.EventInvoicePaymentFailed, map[string]any{
			"reservation_id": reservation.ID,
			"invoice_id":     reservation.Invoice.ID,
			"amount":         amount,
			"method":         string(method.Type),
			"reason":         receipt,
		})
	}

	return result, nil
}

func (s *paymentService) validatePaymentMethod(method domain.PaymentMethod) error {
	switch method.Type {
	case domain.PaymentMethodCreditCard:
		cc := method.CreditCard
		if cc == nil || cc.CardNumber == "" || cc.CVV == "" || cc.Expiry == "" {
			return domain.E(domain.KindInvalidInput, "credit card number, CVV and expiry are required")
		}
		if _, err := time.Parse("01/06", cc.Expiry); err != nil {
			return domain.E(domain.KindInvalidInput, "credit card expiry must be in MM/YY format")
		}
	case domain.PaymentMethodPayPal:
		pp := method.PayPal
		if pp == nil || pp.Email == "" || pp.AuthToken == "" {
			return domain.E(domain.KindInvalidInput, "paypal email and auth token are required")
		}
	default:
		return domain.Ef(domain.KindInvalidInput, "unsupported payment method: '%s'", method.Type)
	}
	return nil
}

func (s *paymentService) chargeCreditCard(cc *domain.CreditCardDetails, amount float64) (bool, string) {
	expiry, _ := time.Parse("01/06", cc.Expiry)

	// A card expires at the end of its expiry month.
	endOfMonth := expiry.AddDate(0, 1, 0)
	if !s.clock.Now().Before(endOfMonth) {
		return false, fmt.Sprintf("Card ending %s declined: expired %s", lastFour(cc.CardNumber), cc.Expiry)
	}
	return true, fmt.Sprintf("Payment of $%.2f with card ending %s was successful", amount, lastFour(cc.CardNumber))
}

func (s *paymentService) chargePayPal(pp *domain.PayPalDetails, amount float64) (bool, string) {
	return true, fmt.Sprintf("Payment of $%.2f via PayPal account %s was successful", amount, pp.Email)
}

func lastFour(cardNumber string) string {
	if len(cardNumber) <= 4 {
		return cardNumber
	}
	return cardNumber[len(cardNumber)-4:]
}
