package static

import (
	"github.com/wolfman30/docsmile-suite/internal/billing"
	"github.com/wolfman30/docsmile-suite/internal/records"
	"github.com/wolfman30/docsmile-suite/internal/taxonomy"
)

var clinicDentist = records.Dentist{ID: "2", FullName: "Dr. Carlos Rodríguez"}

func seedPatients() []records.Patient {
	return []records.Patient{
		{
			ID: "1", DNI: "45678912", FirstName: "Juan", LastName: "Pérez",
			Email: "juan.perez@email.com", Phone: "+51 999 123 456",
			Address:          &records.Address{Street: "Calle Principal 123", City: "Lima", State: "Lima", ZipCode: "15001", Country: "Perú"},
			DateOfBirth:      "1985-06-15",
			Gender:           taxonomy.GenderMale,
			EmergencyContact: &records.EmergencyContact{Name: "María Pérez", Relationship: "Esposa", Phone: "+51 999 987 654"},
			MedicalHistory: &records.MedicalHistory{
				Allergies: []string{"Penicilina"}, Medications: []string{"Lisinopril 10mg"}, Diseases: []string{"Hipertensión"},
				Notes: "Paciente regular, última visita hace 6 meses",
			},
			IsActive: true, CreatedAt: "2024-01-15T10:30:00Z", UpdatedAt: "2024-06-20T14:22:00Z",
		},
		{
			ID: "2", DNI: "47852369", FirstName: "Ana", LastName: "García",
			Email: "ana.garcia@email.com", Phone: "+51 999 234 567",
			Address:          &records.Address{Street: "Avenida Reforma 456", City: "Lima", State: "Lima", ZipCode: "15002", Country: "Perú"},
			DateOfBirth:      "1992-03-22",
			Gender:           taxonomy.GenderFemale,
			EmergencyContact: &records.EmergencyContact{Name: "Carlos García", Relationship: "Hermano", Phone: "+51 999 345 678"},
			MedicalHistory: &records.MedicalHistory{
				Medications: []string{"Vitamina D"},
				Notes:       "Paciente nueva, primera consulta",
			},
			IsActive: true, CreatedAt: "2024-06-10T09:15:00Z", UpdatedAt: "2024-06-10T09:15:00Z",
		},
		{
			ID: "3", DNI: "40123658", FirstName: "Roberto", LastName: "Martínez",
			Email: "roberto.martinez@email.com", Phone: "+51 999 345 678",
			Address:          &records.Address{Street: "Boulevard Insurgentes 789", City: "Lima", State: "Lima", ZipCode: "15003", Country: "Perú"},
			DateOfBirth:      "1978-11-08",
			Gender:           taxonomy.GenderMale,
			EmergencyContact: &records.EmergencyContact{Name: "Laura Martínez", Relationship: "Hija", Phone: "+51 999 456 789"},
			MedicalHistory: &records.MedicalHistory{
				Allergies: []string{"Ibuprofeno"}, Medications: []string{"Metformina 500mg"}, Diseases: []string{"Diabetes Tipo 2"},
				Notes: "Paciente con sensibilidad dental, requiere anestesia local",
			},
			IsActive: true, CreatedAt: "2024-02-28T16:45:00Z", UpdatedAt: "2024-07-15T11:30:00Z",
		},
	}
}

func seedServices() []records.DentalService {
	const created = "2024-01-01T00:00:00Z"
	svc := func(id, name, description string, category taxonomy.Category, price float64, minutes int) records.DentalService {
		return records.DentalService{
			ID: id, Name: name, Description: description, Category: category,
			Price: price, Duration: minutes, Code: "SRV-" + id, IsActive: true,
			CreatedAt: created, UpdatedAt: created,
		}
	}
	return []records.DentalService{
		svc("1", "Consulta general", "Examen dental completo y diagnóstico", taxonomy.CategoryPreventive, 500, 60),
		svc("2", "Limpieza dental", "Profilaxis dental completa", taxonomy.CategoryPreventive, 300, 45),
		svc("3", "Tratamiento de conducto", "Endodoncia para salvar diente afectado", taxonomy.CategoryEndodontics, 2500, 120),
		svc("4", "Blanqueamiento dental", "Blanqueamiento profesional con láser", taxonomy.CategoryCosmetic, 1500, 90),
		svc("5", "Ortodoncia", "Tratamiento de alineación dental", taxonomy.CategoryOrthodontics, 800, 30),
		svc("6", "Extracción dental", "Extracción simple o quirúrgica", taxonomy.CategorySurgery, 800, 60),
	}
}

func seedAppointments() []records.Appointment {
	appt := func(id, patientID, serviceID, start, end string, status taxonomy.AppointmentStatus, kind taxonomy.AppointmentType, notes, created, updated string) records.Appointment {
		dentist := clinicDentist
		return records.Appointment{
			ID:        id,
			Patient:   &records.Patient{ID: patientID},
			Dentist:   &dentist,
			Services:  []records.AppointmentLine{{Service: records.RefTo(serviceID), Quantity: 1}},
			Date:      "2024-07-25",
			StartTime: start, EndTime: end,
			Status: status, Type: kind, Notes: notes,
			CreatedAt: created, UpdatedAt: updated,
		}
	}
	first := appt("1", "1", "1", "09:00", "10:00", taxonomy.StatusCompleted, taxonomy.TypeConsultation,
		"Revisión semestral de rutina", "2024-07-25T09:00:00Z", "2024-07-25T10:00:00Z")
	first.Payment = records.PaymentStatus{IsPaid: true, PaymentMethod: string(taxonomy.MethodCash), PaidAt: "2024-07-25T15:00:00Z", Receipt: "REC-20240725-0001"}
	return []records.Appointment{
		first,
		appt("2", "2", "2", "10:30", "11:15", taxonomy.StatusConfirmed, taxonomy.TypeTreatment,
			"Primera consulta del paciente", "2024-07-10T10:15:00Z", "2024-07-20T14:30:00Z"),
		appt("3", "3", "3", "11:30", "13:00", taxonomy.StatusScheduled, taxonomy.TypeTreatment,
			"Segunda sesión de endodoncia", "2024-07-15T16:20:00Z", "2024-07-15T16:20:00Z"),
	}
}

func seedPayments() []records.Payment {
	pay := func(id, appointmentID, patientID, name, dni string, line records.PaymentLine, method taxonomy.PaymentMethod, state records.PaymentState, date, notes, created string) records.Payment {
		total := line.Total
		p := records.Payment{
			ID:             id,
			AppointmentID:  appointmentID,
			Patient:        records.PaymentPatient{ID: patientID, Name: name, FullName: name, DNI: dni},
			Services:       []records.PaymentLine{line},
			Subtotal:       total,
			DiscountType:   billing.DiscountPercentage,
			FinalAmount:    total,
			Total:          total,
			PaymentMethod:  string(method),
			PaymentMethods: []records.MethodAmount{{Method: method, Amount: total}},
			IsPaid:         state == records.PaymentPaid,
			Notes:          notes,
			Date:           date,
			CreatedAt:      created,
			Status:         state,
		}
		if p.IsPaid {
			p.PaidAt = created
		}
		return p
	}
	line := func(serviceID, name string, category taxonomy.Category, unit float64) records.PaymentLine {
		ref := records.RefTo(serviceID)
		return records.PaymentLine{Service: &ref, ServiceName: name, Category: string(category), Quantity: 1, UnitPrice: unit, Total: unit}
	}
	return []records.Payment{
		pay("1", "", "1", "Juan Pérez", "45678912", line("2", "Limpieza dental", taxonomy.CategoryPreventive, 300),
			taxonomy.MethodCreditCard, records.PaymentPaid, "2024-07-24", "Pago completado en terminal", "2024-07-24T14:35:00Z"),
		pay("2", "", "3", "Roberto Martínez", "40123658", line("3", "Tratamiento de conducto", taxonomy.CategoryEndodontics, 1250),
			taxonomy.MethodBankTransfer, records.PaymentPending, "2024-07-20", "Primera de dos partes del tratamiento", "2024-07-20T17:00:00Z"),
		pay("3", "1", "1", "Juan Pérez", "45678912", line("1", "Consulta general", taxonomy.CategoryPreventive, 500),
			taxonomy.MethodCash, records.PaymentPaid, "2024-07-25", "Consulta semestral", "2024-07-25T15:00:00Z"),
		pay("4", "", "2", "Ana García", "47852369", line("6", "Extracción dental", taxonomy.CategorySurgery, 800),
			taxonomy.MethodDebitCard, records.PaymentPaid, "2024-07-22", "Extracción de muela inferior", "2024-07-22T11:30:00Z"),
	}
}

func seedSettings() records.ClinicSettings {
	weekday := records.WorkingDay{Start: "09:00", End: "18:00", IsWorking: true}
	return records.ClinicSettings{
		Name: "HappyDent - Clínica Dental",
		Dentist: records.DentistInfo{
			Name:      "Dr. Carlos Rodríguez",
			Specialty: "Odontología General",
			License:   "CED123456",
			Bio:       "Odontólogo con más de 10 años de experiencia en rehabilitación oral y estética dental.",
		},
		Contact: records.ContactInfo{
			Phone:   "+51 999 888 777",
			Address: "Av. Arequipa 1234, Miraflores, Lima",
			Email:   "contacto@happydent.com",
		},
		WorkingHours: records.WorkingHours{
			Monday: weekday, Tuesday: weekday, Wednesday: weekday, Thursday: weekday, Friday: weekday,
			Saturday: records.WorkingDay{Start: "09:00", End: "14:00", IsWorking: true},
			Sunday:   records.WorkingDay{Start: "00:00", End: "00:00", IsWorking: false},
		},
	}
}

func seedActivity() records.ActivityStats {
	return records.ActivityStats{
		Appointments:        records.CountPair{Total: 156, ThisMonth: 23},
		Patients:            records.PatientActivity{Total: 89, ActiveThisMonth: 12},
		LastLogin:           "2024-07-24T08:00:00Z",
		AccountCreated:      "2024-01-01T00:00:00Z",
		ProfileCompleteness: 85,
	}
}

type seedUser struct {
	user     records.User
	password string
}

func seedUsers() []seedUser {
	return []seedUser{
		{
			password: "admin123",
			user: records.User{
				ID: "1", Username: "admin", Email: "admin@happydent.com", FullName: "Administrador HappyDent", Role: "admin",
				Profile: records.ProfileDetails{
					Phone: "+51 999 000 000", Address: "Consultorio Principal, Lima",
					Specialty: "Administración", ProfessionalLicense: "ADMIN001", Bio: "Administrador del sistema",
				},
				IsActive: true, CreatedAt: "2024-01-01T00:00:00Z", UpdatedAt: "2024-07-24T08:00:00Z", LastLogin: "2024-07-24T08:00:00Z",
			},
		},
		{
			password: "doctor123",
			user: records.User{
				ID: "2", Username: "doctor", Email: "doctor@happydent.com", FullName: "Dr. Carlos Rodríguez", Role: "dentist",
				Profile: records.ProfileDetails{
					Phone:               "+51 999 888 777",
					Address:             "Av. Arequipa 1234, Miraflores, Lima",
					Specialty:           "Odontología General",
					ProfessionalLicense: "CED123456",
					Bio:                 "Odontólogo con más de 10 años de experiencia en rehabilitación oral y estética dental. Graduado de la Universidad Nacional Mayor de San Marcos.",
				},
				SecurityQuestion: &records.SecurityQuestion{Question: "¿Cuál fue tu primera mascota?"},
				IsActive:         true, CreatedAt: "2024-01-01T00:00:00Z", UpdatedAt: "2024-07-24T08:00:00Z", LastLogin: "2024-07-24T07:30:00Z",
			},
		},
	}
}

func (s *Store) seed() error {
	for _, p := range seedPatients() {
		s.patients[p.ID] = &p
		s.patientOrder = append(s.patientOrder, p.ID)
	}
	for _, svc := range seedServices() {
		s.services[svc.ID] = &svc
		s.serviceOrder = append(s.serviceOrder, svc.ID)
	}
	for _, a := range seedAppointments() {
		s.reprice(&a)
		s.appointments[a.ID] = &a
	}
	s.payments = seedPayments()
	s.receiptSeq = 1
	for _, su := range seedUsers() {
		h, err := hash(su.password)
		if err != nil {
			return err
		}
		s.accounts[su.user.ID] = &account{user: su.user, passwordHash: h}
	}
	s.settings = seedSettings()
	s.activity = seedActivity()
	return nil
}
