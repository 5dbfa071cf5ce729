package rest

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/wolfman30/docsmile-suite/internal/clinictime"
	"github.com/wolfman30/docsmile-suite/internal/records"
	"github.com/wolfman30/docsmile-suite/internal/taxonomy"
	"github.com/wolfman30/docsmile-suite/pkg/logging"
)

var creds = records.Credentials{Token: "tok-123"}

func testClock(t *testing.T) *clinictime.Clock {
	t.Helper()
	loc, err := time.LoadLocation(clinictime.DefaultZone)
	if err != nil {
		t.Fatalf("load zone: %v", err)
	}
	return clinictime.NewFixed(loc, time.Date(2024, 7, 25, 15, 0, 0, 0, time.UTC))
}

func newTestClient(t *testing.T, handler http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	client, err := New(Config{BaseURL: server.URL + "/api/", Timeout: 5 * time.Second}, testClock(t), logging.New("error"), opts...)
	if err != nil {
		t.Fatalf("new client: %v", err)
	}
	return client
}

func writeEnvelope(w http.ResponseWriter, status int, body map[string]any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

type recordingObserver struct {
	mu      sync.Mutex
	samples map[string]int
}

func (o *recordingObserver) ObserveUpstream(operation string, status int, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.samples == nil {
		o.samples = map[string]int{}
	}
	o.samples[operation] = status
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		cfg     Config
		wantErr bool
	}{
		{name: "valid config", cfg: Config{BaseURL: "http://localhost:5000/api"}},
		{name: "missing base URL", cfg: Config{}, wantErr: true},
		{name: "blank base URL", cfg: Config{BaseURL: "   "}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client, err := New(tt.cfg, nil, nil)
			if tt.wantErr {
				if err == nil {
					t.Error("expected error but got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if client.httpClient.Timeout != defaultTimeout {
				t.Errorf("expected default timeout %v, got %v", defaultTimeout, client.httpClient.Timeout)
			}
			if client.baseURL != "http://localhost:5000/api" {
				t.Errorf("unexpected base URL %q", client.baseURL)
			}
		})
	}
}

func TestListPatients(t *testing.T) {
	observer := &recordingObserver{}
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/patients" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if got := r.Header.Get("Authorization"); got != "Bearer tok-123" {
			t.Errorf("expected bearer header, got %q", got)
		}
		if r.URL.Query().Get("search") != "ana" || r.URL.Query().Get("isActive") != "true" {
			t.Errorf("unexpected query: %s", r.URL.RawQuery)
		}
		writeEnvelope(w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{
				"patients": []map[string]any{
					{"_id": "p1", "dni": "47852369", "firstName": "Ana", "lastName": "García", "dateOfBirth": "1992-03-22", "isActive": true},
				},
				"pagination": map[string]any{"currentPage": 1, "totalPages": 1, "totalItems": 1, "itemsPerPage": 10},
			},
		})
	}, WithObserver(observer))

	active := true
	page, err := client.ListPatients(context.Background(), creds, records.PatientQuery{Page: 1, Limit: 10, Search: "ana", IsActive: &active})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Patients) != 1 {
		t.Fatalf("expected 1 patient, got %d", len(page.Patients))
	}
	p := page.Patients[0]
	if p.FullName != "Ana García" {
		t.Errorf("expected derived full name, got %q", p.FullName)
	}
	if p.Age == nil || *p.Age != 32 {
		t.Errorf("expected age 32, got %v", p.Age)
	}
	if page.Pagination.TotalItems != 1 {
		t.Errorf("expected pagination to decode, got %+v", page.Pagination)
	}
	if observer.samples["list_patients"] != http.StatusOK {
		t.Errorf("expected observed 200, got %v", observer.samples)
	}
}

func TestUpstreamErrors(t *testing.T) {
	tests := []struct {
		name        string
		status      int
		body        string
		wantMessage string
		wantIs      error
	}{
		{name: "message from envelope", status: http.StatusNotFound, body: `{"success":false,"message":"Paciente no existe"}`, wantMessage: "Paciente no existe", wantIs: records.ErrNotFound},
		{name: "fallback message", status: http.StatusInternalServerError, body: `oops`, wantMessage: "Error al obtener paciente"},
		{name: "unauthorized", status: http.StatusUnauthorized, body: `{"success":false}`, wantMessage: "Error al obtener paciente", wantIs: records.ErrUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				io.WriteString(w, tt.body)
			})
			_, err := client.GetPatient(context.Background(), creds, "p1")
			var upstream *records.UpstreamError
			if !errors.As(err, &upstream) {
				t.Fatalf("expected UpstreamError, got %v", err)
			}
			if upstream.Status != tt.status || upstream.Message != tt.wantMessage {
				t.Errorf("unexpected upstream error: %+v", upstream)
			}
			if tt.wantIs != nil && !errors.Is(err, tt.wantIs) {
				t.Errorf("expected errors.Is(%v)", tt.wantIs)
			}
		})
	}
}

func TestMissingCredentialsNeverReachNetwork(t *testing.T) {
	called := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		called = true
	})
	_, err := client.PatientStats(context.Background(), records.Credentials{})
	if !errors.Is(err, records.ErrUnauthorized) {
		t.Fatalf("expected ErrUnauthorized, got %v", err)
	}
	if called {
		t.Error("expected no request without a token")
	}
}

func TestListAppliedTransformsRows(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/applied-services" {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		writeEnvelope(w, http.StatusOK, map[string]any{
			"success": true,
			"data": map[string]any{
				"appliedServices": []map[string]any{
					{
						"appointmentId": "a1",
						"patient":       map[string]any{"_id": "p1", "firstName": "Juan", "lastName": "Pérez"},
						"date":          "2024-07-25",
						"status":        "no_asistio",
						"appliedServices": []map[string]any{
							{"service": "s1", "quantity": 2, "price": 300, "total": 600},
						},
						"totalAmount": 600,
					},
					{"appointmentId": "a2", "patient": nil, "date": "2024-07-25"},
				},
				"pagination": map[string]any{"totalItems": 2},
			},
		})
	})

	page, err := client.ListApplied(context.Background(), creds, records.AppliedQuery{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.AppliedServices) != 1 {
		t.Fatalf("expected the patientless row to be dropped, got %d", len(page.AppliedServices))
	}
	rec := page.AppliedServices[0]
	if rec.Status != taxonomy.AppliedCancelled {
		t.Errorf("expected cancelled status, got %s", rec.Status)
	}
	if rec.Appointment.Patient.FullName != "Juan Pérez" {
		t.Errorf("unexpected full name %q", rec.Appointment.Patient.FullName)
	}
	if rec.Appointment.StartTime != "09:00" || rec.Appointment.EndTime != "10:00" {
		t.Errorf("expected default slot, got %s-%s", rec.Appointment.StartTime, rec.Appointment.EndTime)
	}
	if rec.TotalAmount != 600 || len(rec.Services) != 1 || !rec.Services[0].Completed {
		t.Errorf("unexpected record: %+v", rec)
	}
}

func TestUnsupportedAppliedAndPaymentMutations(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	})
	ctx := context.Background()

	if _, err := client.UpdateApplied(ctx, creds, "a1", records.AppliedServiceInput{}); !errors.Is(err, records.ErrNotSupported) {
		t.Errorf("UpdateApplied: expected ErrNotSupported, got %v", err)
	}
	if err := client.DeleteApplied(ctx, creds, "a1"); !errors.Is(err, records.ErrNotSupported) {
		t.Errorf("DeleteApplied: expected ErrNotSupported, got %v", err)
	}
	if _, err := client.UpdatePayment(ctx, creds, "p1", records.PaymentInput{}); !errors.Is(err, records.ErrNotSupported) {
		t.Errorf("UpdatePayment: expected ErrNotSupported, got %v", err)
	}
	if err := client.DeletePayment(ctx, creds, "p1"); !errors.Is(err, records.ErrNotSupported) {
		t.Errorf("DeletePayment: expected ErrNotSupported, got %v", err)
	}
	if err := client.MarkAppliedCompleted(ctx, creds, "a1"); err != nil {
		t.Errorf("MarkAppliedCompleted: expected nil, got %v", err)
	}
}

func TestProcessPayment(t *testing.T) {
	var paid map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/payments/appointment/a1/summary":
			writeEnvelope(w, http.StatusOK, map[string]any{
				"success": true,
				"data":    map[string]any{"appointmentId": "a1", "totals": map[string]any{"finalAmount": 243}},
			})
		case "/api/payments/appointment/a1/pay":
			if r.Method != http.MethodPost {
				t.Errorf("expected POST, got %s", r.Method)
			}
			json.NewDecoder(r.Body).Decode(&paid)
			writeEnvelope(w, http.StatusOK, map[string]any{
				"success": true,
				"data": map[string]any{
					"appointment": map[string]any{"_id": "a1", "payment": map[string]any{"finalAmount": 243, "isPaid": true}},
					"receipt":     map[string]any{"receiptNumber": "REC-20240725-0002"},
				},
			})
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	})

	tendered := 250.0
	result, err := client.ProcessPayment(context.Background(), creds, "a1", records.ProcessRequest{PaymentMethod: taxonomy.MethodCash, AmountPaid: &tendered})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.ChangeDue != 7 {
		t.Errorf("expected change 7, got %v", result.ChangeDue)
	}
	if result.Receipt.ReceiptNumber != "REC-20240725-0002" {
		t.Errorf("unexpected receipt %q", result.Receipt.ReceiptNumber)
	}
	if paid["paymentMethod"] != "efectivo" {
		t.Errorf("unexpected forwarded body: %v", paid)
	}

	short := 200.0
	_, err = client.ProcessPayment(context.Background(), creds, "a1", records.ProcessRequest{PaymentMethod: taxonomy.MethodCash, AmountPaid: &short})
	if _, ok := records.AsFieldErrors(err); !ok {
		t.Errorf("expected field errors for short payment, got %v", err)
	}
}

func TestCreatePaymentRejectsBadSplitLocally(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		t.Errorf("unexpected request %s %s", r.Method, r.URL.Path)
	})
	_, err := client.CreatePayment(context.Background(), creds, records.PaymentInput{
		Patient:        "p1",
		Services:       []records.PaymentLineInput{{Service: "s1", Quantity: 1, UnitPrice: 300}},
		PaymentMethods: []records.MethodAmount{{Method: taxonomy.MethodCash, Amount: 100}},
	})
	fields, ok := records.AsFieldErrors(err)
	if !ok {
		t.Fatalf("expected field errors, got %v", err)
	}
	if _, ok := fields["paymentMethods"]; !ok {
		t.Errorf("expected paymentMethods error, got %v", fields)
	}
}

func TestCreateAppointmentChecksServices(t *testing.T) {
	posted := false
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/api/services/s1":
			writeEnvelope(w, http.StatusOK, map[string]any{"success": true, "data": map[string]any{"_id": "s1", "name": "Limpieza", "isActive": false}})
		case "/api/appointments":
			posted = true
		default:
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
	})
	_, err := client.CreateAppointment(context.Background(), creds, records.AppointmentInput{
		Patient:   "p1",
		Services:  []records.LineInput{{Service: "s1", Quantity: 1}},
		Date:      "2024-07-26",
		StartTime: "09:00",
		EndTime:   "10:00",
	})
	if _, ok := records.AsFieldErrors(err); !ok {
		t.Fatalf("expected field errors for inactive service, got %v", err)
	}
	if posted {
		t.Error("expected no create request for an inactive service")
	}
}

func TestLogin(t *testing.T) {
	tests := []struct {
		name      string
		status    int
		body      map[string]any
		wantToken string
		wantErr   error
	}{
		{
			name:      "top level token",
			status:    http.StatusOK,
			body:      map[string]any{"success": true, "token": "jwt-1", "user": map[string]any{"id": "1", "username": "admin"}},
			wantToken: "jwt-1",
		},
		{
			name:      "token under data",
			status:    http.StatusOK,
			body:      map[string]any{"success": true, "data": map[string]any{"token": "jwt-2", "user": map[string]any{"id": "1", "username": "admin"}}},
			wantToken: "jwt-2",
		},
		{
			name:    "rejected",
			status:  http.StatusUnauthorized,
			body:    map[string]any{"success": false, "message": "Credenciales inválidas"},
			wantErr: records.ErrInvalidCredentials,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				if r.URL.Path != "/api/auth/login" {
					t.Errorf("unexpected path: %s", r.URL.Path)
				}
				if r.Header.Get("Authorization") != "" {
					t.Error("login must not send a bearer token")
				}
				writeEnvelope(w, tt.status, tt.body)
			})
			result, err := client.Login(context.Background(), records.LoginRequest{Username: "admin", Password: "admin123"})
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if result.Token != tt.wantToken || result.User.Username != "admin" {
				t.Errorf("unexpected result: %+v", result)
			}
		})
	}
}

func TestVerifySecurityAnswer(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeEnvelope(w, http.StatusOK, map[string]any{"success": true, "resetToken": "reset-1"})
	})
	token, err := client.VerifySecurityAnswer(context.Background(), records.SecurityAnswer{UserID: "2", Answer: "Lima"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if token != "reset-1" {
		t.Errorf("expected reset-1, got %q", token)
	}
}
