package records

import (
	"math"
	"time"
)

type ProfileDetails struct {
	Phone               string `json:"phone,omitempty"`
	Address             string `json:"address,omitempty"`
	Specialty           string `json:"specialty,omitempty"`
	ProfessionalLicense string `json:"professionalLicense,omitempty"`
	Bio                 string `json:"bio,omitempty"`
}

type SecurityQuestion struct {
	Question string `json:"question"`
}

// User is a clinic staff account and its professional profile.
type User struct {
	ID               string            `json:"id"`
	Username         string            `json:"username"`
	Email            string            `json:"email"`
	FullName         string            `json:"fullName"`
	Role             string            `json:"role"`
	Profile          ProfileDetails    `json:"profile"`
	SecurityQuestion *SecurityQuestion `json:"securityQuestion,omitempty"`
	IsActive         bool              `json:"isActive"`
	CreatedAt        string            `json:"createdAt,omitempty"`
	UpdatedAt        string            `json:"updatedAt,omitempty"`
	LastLogin        string            `json:"lastLogin,omitempty"`
}

// Completeness reports the share of the eight profile fields that are
// filled, rounded to a whole percent, and the names of the missing ones.
func (u User) Completeness() (int, []string) {
	fields := []struct {
		name   string
		filled bool
	}{
		{"fullName", u.FullName != ""},
		{"email", u.Email != ""},
		{"profile.phone", u.Profile.Phone != ""},
		{"profile.address", u.Profile.Address != ""},
		{"profile.specialty", u.Profile.Specialty != ""},
		{"profile.professionalLicense", u.Profile.ProfessionalLicense != ""},
		{"profile.bio", u.Profile.Bio != ""},
		{"securityQuestion", u.SecurityQuestion != nil && u.SecurityQuestion.Question != ""},
	}
	filled := 0
	missing := []string{}
	for _, f := range fields {
		if f.filled {
			filled++
			continue
		}
		missing = append(missing, f.name)
	}
	return int(math.Round(float64(filled) / float64(len(fields)) * 100)), missing
}

// ProfileUpdate changes account and profile fields. Empty values are left as they are.
type ProfileUpdate struct {
	FullName string          `json:"fullName,omitempty"`
	Email    string          `json:"email,omitempty"`
	Username string          `json:"username,omitempty"`
	Profile  *ProfileDetails `json:"profile,omitempty"`
}

func (u ProfileUpdate) Validate() error {
	errs := FieldErrors{}
	if u.Email != "" && !ValidEmail(u.Email) {
		errs.Add("email", "El email no es válido")
	}
	if u.Profile != nil && u.Profile.Phone != "" && !ValidPhone(u.Profile.Phone) {
		errs.Add("profile.phone", "El teléfono no es válido")
	}
	return errs.Err()
}

// Apply merges the update into user.
func (u ProfileUpdate) Apply(user *User) {
	if u.FullName != "" {
		user.FullName = u.FullName
	}
	if u.Email != "" {
		user.Email = u.Email
	}
	if u.Username != "" {
		user.Username = u.Username
	}
	if u.Profile == nil {
		return
	}
	p := &user.Profile
	mergeString(&p.Phone, u.Profile.Phone)
	mergeString(&p.Address, u.Profile.Address)
	mergeString(&p.Specialty, u.Profile.Specialty)
	mergeString(&p.ProfessionalLicense, u.Profile.ProfessionalLicense)
	mergeString(&p.Bio, u.Profile.Bio)
}

type SecurityQuestionUpdate struct {
	Question        string `json:"question"`
	Answer          string `json:"answer"`
	CurrentPassword string `json:"currentPassword"`
}

func (u SecurityQuestionUpdate) Validate() error {
	errs := FieldErrors{}
	requireField(errs, "question", u.Question, "La pregunta es requerida")
	requireField(errs, "answer", u.Answer, "La respuesta es requerida")
	requireField(errs, "currentPassword", u.CurrentPassword, "La contraseña actual es requerida")
	return errs.Err()
}

type PasswordChange struct {
	CurrentPassword string `json:"currentPassword"`
	NewPassword     string `json:"newPassword"`
}

func (c PasswordChange) Validate() error {
	errs := FieldErrors{}
	requireField(errs, "currentPassword", c.CurrentPassword, "La contraseña actual es requerida")
	if len(c.NewPassword) < MinPasswordLength {
		errs.Add("newPassword", "La nueva contraseña debe tener al menos 6 caracteres")
	}
	return errs.Err()
}

type DentistInfo struct {
	Name      string `json:"name"`
	Specialty string `json:"specialty"`
	License   string `json:"license"`
	Bio       string `json:"bio"`
}

type ContactInfo struct {
	Phone   string `json:"phone"`
	Address string `json:"address"`
	Email   string `json:"email"`
}

// WorkingDay is the opening window of one weekday in HH:MM.
type WorkingDay struct {
	Start     string `json:"start"`
	End       string `json:"end"`
	IsWorking bool   `json:"isWorking"`
}

type WorkingHours struct {
	Monday    WorkingDay `json:"monday"`
	Tuesday   WorkingDay `json:"tuesday"`
	Wednesday WorkingDay `json:"wednesday"`
	Thursday  WorkingDay `json:"thursday"`
	Friday    WorkingDay `json:"friday"`
	Saturday  WorkingDay `json:"saturday"`
	Sunday    WorkingDay `json:"sunday"`
}

// Day returns the window for a weekday.
func (w WorkingHours) Day(day time.Weekday) WorkingDay {
	switch day {
	case time.Monday:
		return w.Monday
	case time.Tuesday:
		return w.Tuesday
	case time.Wednesday:
		return w.Wednesday
	case time.Thursday:
		return w.Thursday
	case time.Friday:
		return w.Friday
	case time.Saturday:
		return w.Saturday
	default:
		return w.Sunday
	}
}

type ClinicSettings struct {
	Name         string       `json:"name"`
	Dentist      DentistInfo  `json:"dentist"`
	Contact      ContactInfo  `json:"contact"`
	WorkingHours WorkingHours `json:"workingHours"`
}

type ContactUpdate struct {
	Phone   string `json:"phone,omitempty"`
	Address string `json:"address,omitempty"`
}

type DentistUpdate struct {
	Specialty string `json:"specialty,omitempty"`
	License   string `json:"license,omitempty"`
	Bio       string `json:"bio,omitempty"`
}

type ClinicSettingsUpdate struct {
	Contact *ContactUpdate `json:"contact,omitempty"`
	Dentist *DentistUpdate `json:"dentist,omitempty"`
}

func (u ClinicSettingsUpdate) Validate() error {
	errs := FieldErrors{}
	if u.Contact != nil && u.Contact.Phone != "" && !ValidPhone(u.Contact.Phone) {
		errs.Add("contact.phone", "El teléfono no es válido")
	}
	return errs.Err()
}

// Apply merges the update into settings.
func (u ClinicSettingsUpdate) Apply(settings *ClinicSettings) {
	if u.Contact != nil {
		mergeString(&settings.Contact.Phone, u.Contact.Phone)
		mergeString(&settings.Contact.Address, u.Contact.Address)
	}
	if u.Dentist != nil {
		mergeString(&settings.Dentist.Specialty, u.Dentist.Specialty)
		mergeString(&settings.Dentist.License, u.Dentist.License)
		mergeString(&settings.Dentist.Bio, u.Dentist.Bio)
	}
}

type CountPair struct {
	Total     int `json:"total"`
	ThisMonth int `json:"thisMonth"`
}

type PatientActivity struct {
	Total           int `json:"total"`
	ActiveThisMonth int `json:"activeThisMonth"`
}

type ActivityStats struct {
	Appointments        CountPair       `json:"appointments"`
	Patients            PatientActivity `json:"patients"`
	LastLogin           string          `json:"lastLogin,omitempty"`
	AccountCreated      string          `json:"accountCreated"`
	ProfileCompleteness int             `json:"profileCompleteness"`
}

func mergeString(dst *string, value string) {
	if value != "" {
		*dst = value
	}
}
