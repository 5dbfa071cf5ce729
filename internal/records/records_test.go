package records

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wolfman30/docsmile-suite/internal/billing"
	"github.com/wolfman30/docsmile-suite/internal/clinictime"
	"github.com/wolfman30/docsmile-suite/internal/taxonomy"
)

func testClock(t *testing.T) *clinictime.Clock {
	t.Helper()
	loc, err := time.LoadLocation(clinictime.DefaultZone)
	require.NoError(t, err)
	return clinictime.NewFixed(loc, time.Date(2024, 7, 25, 15, 0, 0, 0, time.UTC))
}

func fieldErrors(t *testing.T, err error) FieldErrors {
	t.Helper()
	fe, ok := AsFieldErrors(err)
	require.True(t, ok, "expected field errors, got %v", err)
	return fe
}

func TestPatientInputValidate(t *testing.T) {
	clock := testClock(t)
	valid := PatientInput{DNI: "12345678", FirstName: "Ana", LastName: "García", Email: "ana@example.com", Phone: "+51 999 888 777", DateOfBirth: "1992-03-22", Gender: taxonomy.GenderFemale}
	require.NoError(t, valid.Validate(clock))

	tests := []struct {
		name  string
		edit  func(*PatientInput)
		field string
	}{
		{"short dni", func(in *PatientInput) { in.DNI = "1234567" }, "dni"},
		{"alpha dni", func(in *PatientInput) { in.DNI = "1234567A" }, "dni"},
		{"long dni", func(in *PatientInput) { in.DNI = "1234567890123" }, "dni"},
		{"missing first name", func(in *PatientInput) { in.FirstName = "  " }, "firstName"},
		{"bad email", func(in *PatientInput) { in.Email = "ana@" }, "email"},
		{"bad phone", func(in *PatientInput) { in.Phone = "abc" }, "phone"},
		{"future birth", func(in *PatientInput) { in.DateOfBirth = "2024-07-26" }, "dateOfBirth"},
		{"garbage birth", func(in *PatientInput) { in.DateOfBirth = "yesterday" }, "dateOfBirth"},
		{"unknown gender", func(in *PatientInput) { in.Gender = "x" }, "gender"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			tt.edit(&in)
			fe := fieldErrors(t, in.Validate(clock))
			assert.Contains(t, fe, tt.field)
		})
	}
}

func TestPatientBirthDateTodayIsValid(t *testing.T) {
	in := PatientInput{DNI: "123456789012", FirstName: "A", LastName: "B", DateOfBirth: "2024-07-25"}
	assert.NoError(t, in.Validate(testClock(t)))
}

func TestPatientNormalize(t *testing.T) {
	p := Patient{FirstName: "Ana", LastName: "García", DateOfBirth: "1992-03-22"}
	p.Normalize(testClock(t))
	assert.Equal(t, "Ana García", p.FullName)
	require.NotNil(t, p.Age)
	assert.Equal(t, 32, *p.Age)

	p = Patient{FirstName: "Solo"}
	p.Normalize(nil)
	assert.Equal(t, "Solo", p.FullName)
	assert.Nil(t, p.Age)
}

func TestAppointmentInputValidate(t *testing.T) {
	clock := testClock(t)
	valid := AppointmentInput{
		Patient:   "p1",
		Services:  []LineInput{{Service: "s1", Quantity: 1}},
		Date:      "2024-07-25",
		StartTime: "09:00",
		EndTime:   "09:30",
		Type:      taxonomy.TypeConsultation,
	}
	require.NoError(t, valid.Validate(clock, 30))

	tests := []struct {
		name  string
		edit  func(*AppointmentInput)
		field string
	}{
		{"past date", func(in *AppointmentInput) { in.Date = "2024-07-24" }, "date"},
		{"bad date", func(in *AppointmentInput) { in.Date = "25/07/2024" }, "date"},
		{"too short", func(in *AppointmentInput) { in.EndTime = "09:29" }, "endTime"},
		{"reversed", func(in *AppointmentInput) { in.StartTime, in.EndTime = "10:00", "09:00" }, "endTime"},
		{"no services", func(in *AppointmentInput) { in.Services = nil }, "services"},
		{"zero quantity", func(in *AppointmentInput) { in.Services = []LineInput{{Service: "s1"}} }, "services[0].quantity"},
		{"missing service", func(in *AppointmentInput) { in.Services = []LineInput{{Quantity: 1}} }, "services[0].service"},
		{"bad status", func(in *AppointmentInput) { in.Status = "done" }, "status"},
		{"missing patient", func(in *AppointmentInput) { in.Patient = "" }, "patient"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := valid
			in.Services = append([]LineInput(nil), valid.Services...)
			tt.edit(&in)
			fe := fieldErrors(t, in.Validate(clock, 30))
			assert.Contains(t, fe, tt.field)
		})
	}
}

func TestAppointmentMinimumIsConfigurable(t *testing.T) {
	in := AppointmentInput{Patient: "p", Services: []LineInput{{Service: "s", Quantity: 1}}, Date: "2024-08-01", StartTime: "09:00", EndTime: "09:15"}
	assert.Error(t, in.Validate(testClock(t), 30))
	assert.NoError(t, in.Validate(testClock(t), 15))
}

func TestServiceInputValidate(t *testing.T) {
	in := ServiceInput{Name: "Limpieza", Description: "Profilaxis", Category: taxonomy.CategoryPreventive, Price: 300, Duration: 45}
	require.NoError(t, in.Validate())

	in.Price = 0
	in.Category = "magia"
	fe := fieldErrors(t, in.Validate())
	assert.Contains(t, fe, "price")
	assert.Contains(t, fe, "category")
}

func TestServiceRefRoundTrip(t *testing.T) {
	populated := `{"service":{"_id":"s1","name":"Limpieza","category":"preventivo","price":300,"duration":45,"isActive":true},"quantity":2}`
	bare := `{"service":"s2","quantity":1}`

	var a, b AppointmentLine
	require.NoError(t, json.Unmarshal([]byte(populated), &a))
	require.NoError(t, json.Unmarshal([]byte(bare), &b))

	assert.Equal(t, "s1", a.Service.ID)
	assert.Equal(t, "Limpieza", a.Service.Name())
	assert.Equal(t, 2, a.Quantity)
	assert.Equal(t, "s2", b.Service.ID)
	assert.Nil(t, b.Service.Service)

	out, err := json.Marshal(b)
	require.NoError(t, err)
	assert.JSONEq(t, bare, string(out))

	out, err = json.Marshal(a)
	require.NoError(t, err)
	var again AppointmentLine
	require.NoError(t, json.Unmarshal(out, &again))
	assert.Equal(t, a, again)
}

func TestServiceRefNull(t *testing.T) {
	var line AppointmentLine
	require.NoError(t, json.Unmarshal([]byte(`{"service":null,"quantity":1}`), &line))
	assert.Empty(t, line.Service.ID)
	out, err := json.Marshal(line)
	require.NoError(t, err)
	assert.JSONEq(t, `{"service":null,"quantity":1}`, string(out))
}

func TestAppliedRowRecord(t *testing.T) {
	rows := []AppliedRow{
		{
			AppointmentID: "a1",
			Patient:       &Patient{ID: "p1", FirstName: "Juan", LastName: "Pérez"},
			Date:          "2024-07-25",
			Type:          taxonomy.TypeConsultation,
			Status:        taxonomy.StatusCompleted,
			AppliedServices: []AppliedLine{
				{Service: RefTo("s1"), Quantity: 1, Price: 500, Total: 500, Notes: "ok"},
			},
			TotalAmount: 500,
			FinalAmount: 450,
		},
		{AppointmentID: "orphan", Status: taxonomy.StatusScheduled},
		{
			AppointmentID: "a2",
			Patient:       &Patient{ID: "p2", FirstName: "Ana"},
			Status:        taxonomy.StatusConfirmed,
			TotalAmount:   300,
		},
	}

	got := RecordsFromRows(rows, "2024-07-25T12:00:00Z")
	require.Len(t, got, 2)

	first := got[0]
	assert.Equal(t, "a1", first.ID)
	assert.Equal(t, "Juan Pérez", first.Appointment.Patient.FullName)
	assert.Equal(t, taxonomy.AppliedCompleted, first.Status)
	assert.Equal(t, 450.0, first.TotalAmount)
	assert.Equal(t, "09:00", first.Appointment.StartTime)
	require.Len(t, first.Services, 1)
	assert.True(t, first.Services[0].Completed)

	second := got[1]
	assert.Equal(t, "Ana", second.Appointment.Patient.FullName)
	assert.Equal(t, taxonomy.AppliedPending, second.Status)
	assert.Equal(t, 300.0, second.TotalAmount)
	assert.Equal(t, "2024-07-25T12:00:00Z", second.CreatedAt)
}

func TestPaymentInputNormalizeAndValidate(t *testing.T) {
	in := PaymentInput{
		Patient:      "p1",
		Services:     []PaymentLineInput{{Service: "s1", Quantity: 2, UnitPrice: 100, Total: 1}, {Service: "s2", Quantity: 1, UnitPrice: 50}},
		Discount:     10,
		DiscountType: billing.DiscountPercentage,
		Total:        99999,
		PaymentMethods: []MethodAmount{
			{Method: taxonomy.MethodCash, Amount: 100},
			{Method: taxonomy.MethodCreditCard, Amount: 125},
		},
	}
	totals := in.Normalize()
	assert.Equal(t, 250.0, totals.Subtotal)
	assert.Equal(t, 225.0, in.Total)
	assert.Equal(t, 200.0, in.Services[0].Total)
	require.NoError(t, in.Validate())

	in.PaymentMethods[1].Amount = 124.5
	fe := fieldErrors(t, in.Validate())
	assert.Contains(t, fe, "paymentMethods")
}

func TestPaymentSplitTolerance(t *testing.T) {
	in := PaymentInput{
		Patient:        "p1",
		Services:       []PaymentLineInput{{Quantity: 1, UnitPrice: 300}},
		DiscountType:   billing.DiscountFixed,
		PaymentMethods: []MethodAmount{{Method: taxonomy.MethodCash, Amount: 299.99}},
	}
	in.Normalize()
	assert.NoError(t, in.Validate())

	in.PaymentMethods[0].Amount = 299.98
	assert.Error(t, in.Validate())
}

func TestPaymentRejectsZeroTotal(t *testing.T) {
	in := PaymentInput{
		Patient:        "p1",
		Services:       []PaymentLineInput{{Quantity: 1, UnitPrice: 100}},
		Discount:       150,
		DiscountType:   billing.DiscountFixed,
		PaymentMethods: []MethodAmount{{Method: taxonomy.MethodCash, Amount: 1}},
	}
	in.Normalize()
	assert.Equal(t, 0.0, in.Total)
	fe := fieldErrors(t, in.Validate())
	assert.Contains(t, fe, "total")
}

func TestProcessRequestValidate(t *testing.T) {
	paid := 450.0
	req := ProcessRequest{PaymentMethod: taxonomy.MethodCash, AmountPaid: &paid}
	assert.NoError(t, req.Validate(450))
	assert.Error(t, req.Validate(450.5))

	req.PaymentMethod = "yape"
	fe := fieldErrors(t, req.Validate(0))
	assert.Contains(t, fe, "paymentMethod")
}

func TestQuote(t *testing.T) {
	q := QuoteRequest{
		Services:       []PaymentLineInput{{Quantity: 2, UnitPrice: 100}},
		Discount:       20,
		DiscountType:   billing.DiscountFixed,
		PaymentMethods: []MethodAmount{{Method: taxonomy.MethodCash, Amount: 200}},
	}
	got := q.Quote()
	assert.Equal(t, 180.0, got.Total)
	assert.False(t, got.SplitValid)
	assert.Equal(t, 20.0, got.ChangeDue)
}

func TestCompleteness(t *testing.T) {
	u := User{FullName: "Dr. Carlos Rodríguez", Email: "doctor@happydent.com", Profile: ProfileDetails{Phone: "1", Specialty: "x", ProfessionalLicense: "CED123456"}}
	pct, missing := u.Completeness()
	assert.Equal(t, 63, pct)
	assert.ElementsMatch(t, []string{"profile.address", "profile.bio", "securityQuestion"}, missing)

	u.Profile.Address = "a"
	u.Profile.Bio = "b"
	u.SecurityQuestion = &SecurityQuestion{Question: "q"}
	pct, missing = u.Completeness()
	assert.Equal(t, 100, pct)
	assert.Empty(t, missing)
}

func TestProfileUpdateApplyKeepsBlankFields(t *testing.T) {
	u := User{FullName: "A", Email: "a@b.co", Profile: ProfileDetails{Bio: "old"}}
	ProfileUpdate{Email: "new@b.co", Profile: &ProfileDetails{Phone: "999888777"}}.Apply(&u)
	assert.Equal(t, "A", u.FullName)
	assert.Equal(t, "new@b.co", u.Email)
	assert.Equal(t, "old", u.Profile.Bio)
	assert.Equal(t, "999888777", u.Profile.Phone)
}

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5}
	page, p := Paginate(items, 2, 2)
	assert.Equal(t, []int{3, 4}, page)
	assert.Equal(t, Pagination{CurrentPage: 2, TotalPages: 3, TotalItems: 5, ItemsPerPage: 2, HasNextPage: true, HasPrevPage: true}, p)

	page, p = Paginate(items, 9, 2)
	assert.Empty(t, page)
	assert.False(t, p.HasNextPage)

	_, p = Paginate(items, 0, 0)
	assert.Equal(t, DefaultLimit, p.ItemsPerPage)
	assert.Equal(t, 1, p.TotalPages)
}

func TestUpstreamErrorMatchesSentinels(t *testing.T) {
	assert.ErrorIs(t, &UpstreamError{Status: http.StatusNotFound}, ErrNotFound)
	assert.ErrorIs(t, &UpstreamError{Status: http.StatusUnauthorized}, ErrUnauthorized)
	assert.NotErrorIs(t, &UpstreamError{Status: http.StatusBadGateway}, ErrNotFound)
}

func TestFieldErrorsError(t *testing.T) {
	fe := FieldErrors{}
	assert.NoError(t, fe.Err())
	fe.Add("b", "second")
	fe.Add("a", "first")
	fe.Add("a", "ignored")
	assert.Equal(t, "validation failed: a: first; b: second", fe.Error())
}

type fakeLookup map[string]DentalService

func (f fakeLookup) GetService(_ context.Context, _ Credentials, id string) (DentalService, error) {
	svc, ok := f[id]
	if !ok {
		return DentalService{}, ErrNotFound
	}
	return svc, nil
}

func TestCheckBookable(t *testing.T) {
	lookup := fakeLookup{
		"on":  {ID: "on", Name: "Limpieza", IsActive: true},
		"off": {ID: "off", Name: "Blanqueamiento", IsActive: false},
	}
	ctx := context.Background()
	assert.NoError(t, CheckBookable(ctx, lookup, Credentials{}, []string{"on", "on"}))

	fe := fieldErrors(t, CheckBookable(ctx, lookup, Credentials{}, []string{"on", "off", "gone"}))
	assert.Contains(t, fe["services[1].service"], "Blanqueamiento")
	assert.Contains(t, fe, "services[2].service")
}

type failingLookup struct{}

func (failingLookup) GetService(context.Context, Credentials, string) (DentalService, error) {
	return DentalService{}, errors.New("boom")
}

func TestCheckBookablePropagatesLookupFailure(t *testing.T) {
	err := CheckBookable(context.Background(), failingLookup{}, Credentials{}, []string{"x"})
	require.Error(t, err)
	_, isField := AsFieldErrors(err)
	assert.False(t, isField)
}

func TestServicesChanged(t *testing.T) {
	current := []AppointmentLine{{Service: RefTo("a"), Quantity: 1}, {Service: RefTo("b"), Quantity: 1}}
	assert.False(t, ServicesChanged(current, []LineInput{{Service: "b", Quantity: 3}, {Service: "a", Quantity: 1}}))
	assert.True(t, ServicesChanged(current, []LineInput{{Service: "a"}, {Service: "c"}}))
	assert.True(t, ServicesChanged(current, []LineInput{{Service: "a"}}))
}
