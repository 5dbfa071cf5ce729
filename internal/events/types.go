package events

import "time"

// Clinic mutation events published after the system of record accepted a change.

type PatientRegisteredV1 struct {
	PatientID    string    `json:"patient_id"`
	DNI          string    `json:"dni"`
	FullName     string    `json:"full_name"`
	ActorID      string    `json:"actor_id"`
	RegisteredAt time.Time `json:"registered_at"`
}

func (PatientRegisteredV1) EventType() string { return "clinic.patient.registered.v1" }

type PatientDeactivatedV1 struct {
	PatientID     string    `json:"patient_id"`
	ActorID       string    `json:"actor_id"`
	DeactivatedAt time.Time `json:"deactivated_at"`
}

func (PatientDeactivatedV1) EventType() string { return "clinic.patient.deactivated.v1" }

type AppointmentBookedV1 struct {
	AppointmentID string    `json:"appointment_id"`
	PatientID     string    `json:"patient_id"`
	Date          string    `json:"date"`
	StartTime     string    `json:"start_time"`
	EndTime       string    `json:"end_time"`
	ServiceIDs    []string  `json:"service_ids"`
	ActorID       string    `json:"actor_id"`
	BookedAt      time.Time `json:"booked_at"`
}

func (AppointmentBookedV1) EventType() string { return "clinic.appointment.booked.v1" }

type AppointmentCancelledV1 struct {
	AppointmentID string    `json:"appointment_id"`
	ActorID       string    `json:"actor_id"`
	CancelledAt   time.Time `json:"cancelled_at"`
}

func (AppointmentCancelledV1) EventType() string { return "clinic.appointment.cancelled.v1" }

type ServicesAppliedV1 struct {
	AppointmentID string    `json:"appointment_id"`
	ServiceIDs    []string  `json:"service_ids"`
	TotalAmount   float64   `json:"total_amount"`
	ActorID       string    `json:"actor_id"`
	AppliedAt     time.Time `json:"applied_at"`
}

func (ServicesAppliedV1) EventType() string { return "clinic.services.applied.v1" }

type DiscountAppliedV1 struct {
	AppointmentID  string    `json:"appointment_id"`
	Discount       float64   `json:"discount"`
	DiscountAmount float64   `json:"discount_amount"`
	FinalAmount    float64   `json:"final_amount"`
	Reason         string    `json:"reason,omitempty"`
	ActorID        string    `json:"actor_id"`
	AppliedAt      time.Time `json:"applied_at"`
}

func (DiscountAppliedV1) EventType() string { return "clinic.payment.discount_applied.v1" }

type PaymentProcessedV1 struct {
	AppointmentID string    `json:"appointment_id"`
	ReceiptNumber string    `json:"receipt_number"`
	PaymentMethod string    `json:"payment_method"`
	FinalAmount   float64   `json:"final_amount"`
	ChangeDue     float64   `json:"change_due"`
	ActorID       string    `json:"actor_id"`
	ProcessedAt   time.Time `json:"processed_at"`
}

func (PaymentProcessedV1) EventType() string { return "clinic.payment.processed.v1" }

type PaymentRecordedV1 struct {
	PaymentID  string    `json:"payment_id"`
	PatientID  string    `json:"patient_id"`
	Total      float64   `json:"total"`
	Methods    []string  `json:"methods"`
	ActorID    string    `json:"actor_id"`
	RecordedAt time.Time `json:"recorded_at"`
}

func (PaymentRecordedV1) EventType() string { return "clinic.payment.recorded.v1" }
