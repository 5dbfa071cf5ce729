package records

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/wolfman30/docsmile-suite/internal/clinictime"
	"github.com/wolfman30/docsmile-suite/internal/taxonomy"
)

type Address struct {
	Street  string `json:"street,omitempty"`
	City    string `json:"city,omitempty"`
	State   string `json:"state,omitempty"`
	ZipCode string `json:"zipCode,omitempty"`
	Country string `json:"country,omitempty"`
}

type EmergencyContact struct {
	Name         string `json:"name,omitempty"`
	Relationship string `json:"relationship,omitempty"`
	Phone        string `json:"phone,omitempty"`
}

type MedicalHistory struct {
	Allergies   []string `json:"allergies,omitempty"`
	Medications []string `json:"medications,omitempty"`
	Diseases    []string `json:"diseases,omitempty"`
	Notes       string   `json:"notes,omitempty"`
}

type DentalHistory struct {
	PreviousDentist string   `json:"previousDentist,omitempty"`
	LastVisit       string   `json:"lastVisit,omitempty"`
	Treatments      []string `json:"treatments,omitempty"`
	Notes           string   `json:"notes,omitempty"`
}

// Patient is a person registered at the clinic.
type Patient struct {
	ID               string            `json:"_id"`
	DNI              string            `json:"dni"`
	FirstName        string            `json:"firstName"`
	LastName         string            `json:"lastName"`
	FullName         string            `json:"fullName"`
	Email            string            `json:"email,omitempty"`
	Phone            string            `json:"phone,omitempty"`
	Address          *Address          `json:"address,omitempty"`
	DateOfBirth      string            `json:"dateOfBirth,omitempty"`
	Gender           taxonomy.Gender   `json:"gender,omitempty"`
	EmergencyContact *EmergencyContact `json:"emergencyContact,omitempty"`
	MedicalHistory   *MedicalHistory   `json:"medicalHistory,omitempty"`
	DentalHistory    *DentalHistory    `json:"dentalHistory,omitempty"`
	IsActive         bool              `json:"isActive"`
	CreatedAt        string            `json:"createdAt,omitempty"`
	UpdatedAt        string            `json:"updatedAt,omitempty"`
	Age              *int              `json:"age,omitempty"`
}

// FullNameOf joins first and last name the way every view displays it.
func FullNameOf(firstName, lastName string) string {
	return strings.TrimSpace(firstName + " " + lastName)
}

// Normalize derives the full name and, when clock is set, the age.
func (p *Patient) Normalize(clock *clinictime.Clock) {
	p.FullName = FullNameOf(p.FirstName, p.LastName)
	p.Age = nil
	if clock == nil || p.DateOfBirth == "" {
		return
	}
	if age, ok := clock.Age(p.DateOfBirth); ok {
		p.Age = &age
	}
}

// PatientInput is the body of a patient create or update.
type PatientInput struct {
	DNI              string            `json:"dni"`
	FirstName        string            `json:"firstName"`
	LastName         string            `json:"lastName"`
	Email            string            `json:"email,omitempty"`
	Phone            string            `json:"phone,omitempty"`
	Address          *Address          `json:"address,omitempty"`
	DateOfBirth      string            `json:"dateOfBirth,omitempty"`
	Gender           taxonomy.Gender   `json:"gender,omitempty"`
	EmergencyContact *EmergencyContact `json:"emergencyContact,omitempty"`
	MedicalHistory   *MedicalHistory   `json:"medicalHistory,omitempty"`
	DentalHistory    *DentalHistory    `json:"dentalHistory,omitempty"`
}

// Validate checks the patient form against the clinic calendar.
func (in PatientInput) Validate(clock *clinictime.Clock) error {
	errs := FieldErrors{}
	if blank(in.DNI) {
		errs.Add("dni", "El DNI es requerido")
	} else if !ValidDNI(in.DNI) {
		errs.Add("dni", "El DNI debe tener entre 8 y 12 dígitos")
	}
	requireField(errs, "firstName", in.FirstName, "El nombre es requerido")
	requireField(errs, "lastName", in.LastName, "El apellido es requerido")
	if in.Email != "" && !ValidEmail(in.Email) {
		errs.Add("email", "El email no es válido")
	}
	if in.Phone != "" && !ValidPhone(in.Phone) {
		errs.Add("phone", "El teléfono no es válido")
	}
	if in.DateOfBirth != "" {
		if _, err := clock.CalendarDay(in.DateOfBirth); err != nil {
			errs.Add("dateOfBirth", "La fecha de nacimiento no es válida")
		} else if !clock.IsValidBirthDate(in.DateOfBirth) {
			errs.Add("dateOfBirth", "La fecha de nacimiento no puede ser futura")
		}
	}
	if in.Gender != "" && !in.Gender.Valid() {
		errs.Add("gender", "El género no es válido")
	}
	if in.EmergencyContact != nil && in.EmergencyContact.Phone != "" && !ValidPhone(in.EmergencyContact.Phone) {
		errs.Add("emergencyContact.phone", "El teléfono de contacto no es válido")
	}
	return errs.Err()
}

// Apply copies the input onto p.
func (in PatientInput) Apply(p *Patient) {
	p.DNI = strings.TrimSpace(in.DNI)
	p.FirstName = strings.TrimSpace(in.FirstName)
	p.LastName = strings.TrimSpace(in.LastName)
	p.Email = in.Email
	p.Phone = in.Phone
	p.Address = in.Address
	p.DateOfBirth = in.DateOfBirth
	p.Gender = in.Gender
	p.EmergencyContact = in.EmergencyContact
	p.MedicalHistory = in.MedicalHistory
	p.DentalHistory = in.DentalHistory
}

// PatientQuery filters the patient list.
type PatientQuery struct {
	Page     int
	Limit    int
	Search   string
	IsActive *bool
}

// Values renders the query for the upstream API.
func (q PatientQuery) Values() url.Values {
	v := pageValues(q.Page, q.Limit)
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.IsActive != nil {
		v.Set("isActive", strconv.FormatBool(*q.IsActive))
	}
	return v
}

type PatientPage struct {
	Patients   []Patient  `json:"patients"`
	Pagination Pagination `json:"pagination"`
}

type PatientStats struct {
	Total         int `json:"total"`
	Active        int `json:"active"`
	Inactive      int `json:"inactive"`
	RecentlyAdded int `json:"recentlyAdded"`
}

func pageValues(page, limit int) url.Values {
	v := url.Values{}
	if page > 0 {
		v.Set("page", strconv.Itoa(page))
	}
	if limit > 0 {
		v.Set("limit", strconv.Itoa(limit))
	}
	return v
}

// ActiveFilter passes "all" and empty values as no filter.
func ActiveFilter(value string) *bool {
	switch strings.ToLower(value) {
	case "true", "active":
		t := true
		return &t
	case "false", "inactive":
		f := false
		return &f
	}
	return nil
}
