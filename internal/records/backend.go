package records

import (
	"context"

	"github.com/wolfman30/docsmile-suite/internal/taxonomy"
)

// PatientBackend manages patient records.
type PatientBackend interface {
	ListPatients(ctx context.Context, creds Credentials, q PatientQuery) (PatientPage, error)
	GetPatient(ctx context.Context, creds Credentials, id string) (Patient, error)
	GetPatientByDNI(ctx context.Context, creds Credentials, dni string) (Patient, error)
	CreatePatient(ctx context.Context, creds Credentials, in PatientInput) (Patient, error)
	UpdatePatient(ctx context.Context, creds Credentials, id string, in PatientInput) (Patient, error)
	// DeletePatient deactivates the patient; the record is kept.
	DeletePatient(ctx context.Context, creds Credentials, id string) error
	RestorePatient(ctx context.Context, creds Credentials, id string) (Patient, error)
	PatientStats(ctx context.Context, creds Credentials) (PatientStats, error)
}

// AppointmentBackend manages the schedule.
type AppointmentBackend interface {
	AppointmentDashboard(ctx context.Context, creds Credentials, q DashboardQuery) (Dashboard, error)
	ListAppointments(ctx context.Context, creds Credentials, q AppointmentQuery) (AppointmentPage, error)
	GetAppointment(ctx context.Context, creds Credentials, id string) (Appointment, error)
	AppointmentsByPatientDNI(ctx context.Context, creds Credentials, dni string) (PatientAppointments, error)
	CreateAppointment(ctx context.Context, creds Credentials, in AppointmentInput) (Appointment, error)
	UpdateAppointment(ctx context.Context, creds Credentials, id string, in AppointmentInput) (Appointment, error)
	DeleteAppointment(ctx context.Context, creds Credentials, id string) error
	AppointmentStats(ctx context.Context, creds Credentials) (AppointmentStats, error)
}

// ServiceBackend manages the treatment catalog.
type ServiceBackend interface {
	ListServices(ctx context.Context, creds Credentials, q ServiceQuery) (ServicePage, error)
	GetService(ctx context.Context, creds Credentials, id string) (DentalService, error)
	ServiceCategories(ctx context.Context, creds Credentials) ([]CategoryCount, error)
	ServicesByCategory(ctx context.Context, creds Credentials, category taxonomy.Category) ([]DentalService, error)
	CreateService(ctx context.Context, creds Credentials, in ServiceInput) (DentalService, error)
	UpdateService(ctx context.Context, creds Credentials, id string, in ServiceInput) (DentalService, error)
	// DeleteService deactivates the service; the record is kept.
	DeleteService(ctx context.Context, creds Credentials, id string) error
	RestoreService(ctx context.Context, creds Credentials, id string) (DentalService, error)
	ServiceStats(ctx context.Context, creds Credentials) (ServiceStats, error)
}

// AppliedBackend tracks treatments performed during appointments.
type AppliedBackend interface {
	ListApplied(ctx context.Context, creds Credentials, q AppliedQuery) (AppliedPage, error)
	AppliedStats(ctx context.Context, creds Credentials) (AppliedStats, error)
	ApplyServices(ctx context.Context, creds Credentials, appointmentID string, req ApplyRequest) (ApplyResult, error)
	PatientHistory(ctx context.Context, creds Credentials, patientID string) (PatientHistory, error)
	AddToHistory(ctx context.Context, creds Credentials, patientID string, req HistoryRequest) (Appointment, error)
	UpdateAppliedLine(ctx context.Context, creds Credentials, appointmentID string, index int, u LineUpdate) (Appointment, error)
	RemoveAppliedLine(ctx context.Context, creds Credentials, appointmentID string, index int) (Appointment, error)
	CreateApplied(ctx context.Context, creds Credentials, in AppliedServiceInput) (ApplyResult, error)
	// UpdateApplied and DeleteApplied are not offered by the system of record
	// and return ErrNotSupported.
	UpdateApplied(ctx context.Context, creds Credentials, id string, in AppliedServiceInput) (AppliedService, error)
	DeleteApplied(ctx context.Context, creds Credentials, id string) error
	MarkAppliedCompleted(ctx context.Context, creds Credentials, id string) error
}

// PaymentBackend bills appointments and records payments.
type PaymentBackend interface {
	ListPayments(ctx context.Context, creds Credentials, q PaymentQuery) (PaymentPage, error)
	PaymentSummary(ctx context.Context, creds Credentials, appointmentID string) (PaymentSummary, error)
	ApplyDiscount(ctx context.Context, creds Credentials, appointmentID string, req DiscountRequest) (DiscountResult, error)
	ProcessPayment(ctx context.Context, creds Credentials, appointmentID string, req ProcessRequest) (ProcessResult, error)
	Receipt(ctx context.Context, creds Credentials, appointmentID string) (Receipt, error)
	PaymentStats(ctx context.Context, creds Credentials) (PaymentStats, error)
	CreatePayment(ctx context.Context, creds Credentials, in PaymentInput) (Payment, error)
	// UpdatePayment and DeletePayment return ErrNotSupported.
	UpdatePayment(ctx context.Context, creds Credentials, id string, in PaymentInput) (Payment, error)
	DeletePayment(ctx context.Context, creds Credentials, id string) error
}

// ProfileBackend manages the signed-in clinician and clinic settings.
type ProfileBackend interface {
	GetProfile(ctx context.Context, creds Credentials) (User, error)
	UpdateProfile(ctx context.Context, creds Credentials, u ProfileUpdate) (User, error)
	UpdateSecurityQuestion(ctx context.Context, creds Credentials, u SecurityQuestionUpdate) error
	ClinicSettings(ctx context.Context, creds Credentials) (ClinicSettings, error)
	UpdateClinicSettings(ctx context.Context, creds Credentials, u ClinicSettingsUpdate) (ClinicSettings, error)
	ActivityStats(ctx context.Context, creds Credentials) (ActivityStats, error)
	ChangePassword(ctx context.Context, creds Credentials, c PasswordChange) error
}

// AuthBackend signs users in and recovers passwords.
type AuthBackend interface {
	Login(ctx context.Context, req LoginRequest) (LoginResult, error)
	CurrentUser(ctx context.Context, creds Credentials) (User, error)
	ForgotVerify(ctx context.Context, username string) (RecoveryIdentity, error)
	VerifySecurityAnswer(ctx context.Context, a SecurityAnswer) (string, error)
	ResetPassword(ctx context.Context, r PasswordReset) error
}

// Backend is the whole system of record. The live REST client and the static
// demo store both implement it.
type Backend interface {
	PatientBackend
	AppointmentBackend
	ServiceBackend
	AppliedBackend
	PaymentBackend
	ProfileBackend
	AuthBackend
}
