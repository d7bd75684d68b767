package domain

// Domain event routing keys published to the message broker.
const (
	EventReservationConfirmed = "reservation.confirmed"
	EventReservationModified  = "reservation.modified"
	EventReservationApproved  = "reservation.approved"
	EventReservationCancelled = "reservation.cancelled"

	EventPickupCompleted       = "rental.pickup_completed"
	EventReturnCompleted       = "rental.return_completed"
	EventRentalExtended        = "rental.extended"
	EventOverdueReturnDetected = "rental.overdue_detected"

	EventInvoicePaid          = "invoice.paid"
	EventInvoicePaymentFailed = "invoice.payment_failed"
)

// AllEvents lists every routing key, for consumers that bind them all.
func AllEvents() []string {
	return []string{
		EventReservationConfirmed,
		EventReservationModified,
		EventReservationApproved,
		EventReservationCancelled,
		EventPickupCompleted,
		EventReturnCompleted,
		EventRentalExtended,
		EventOverdueReturnDetected,
		EventInvoicePaid,
		EventInvoicePaymentFailed,
	}
}
