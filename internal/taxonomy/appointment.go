package taxonomy

// AppointmentStatus is the lifecycle state of an appointment. Any status may
// be set to any other; transitions are not checked here.
type AppointmentStatus string

const (
	StatusScheduled  AppointmentStatus = "programada"
	StatusConfirmed  AppointmentStatus = "confirmada"
	StatusInProgress AppointmentStatus = "en_progreso"
	StatusCompleted  AppointmentStatus = "completada"
	StatusCancelled  AppointmentStatus = "cancelada"
	StatusNoShow     AppointmentStatus = "no_asistio"
)

// AppointmentStatuses lists statuses in display order.
func AppointmentStatuses() []AppointmentStatus {
	return []AppointmentStatus{StatusScheduled, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled, StatusNoShow}
}

// ParseAppointmentStatus validates a wire code.
func ParseAppointmentStatus(value string) (AppointmentStatus, error) {
	return parse("appointment status", value, AppointmentStatus.Valid)
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

func (s AppointmentStatus) Label() string {
	switch s {
	case StatusScheduled:
		return "Programada"
	case StatusConfirmed:
		return "Confirmada"
	case StatusInProgress:
		return "En Progreso"
	case StatusCompleted:
		return "Completada"
	case StatusCancelled:
		return "Cancelada"
	case StatusNoShow:
		return "No Asistió"
	}
	return string(s)
}

func (s AppointmentStatus) Style() Style {
	switch s {
	case StatusScheduled:
		return StylePrimary
	case StatusConfirmed:
		return StyleBlue
	case StatusInProgress:
		return StyleAccent
	case StatusCompleted:
		return StyleGreen
	case StatusCancelled:
		return StyleDestructive
	case StatusNoShow:
		return StyleOrange
	}
	return StyleGray
}

// Open reports whether the appointment still awaits attention.
func (s AppointmentStatus) Open() bool {
	return s == StatusScheduled || s == StatusConfirmed || s == StatusInProgress
}

// AppointmentType is the kind of visit.
type AppointmentType string

const (
	TypeConsultation AppointmentType = "consulta"
	TypeTreatment    AppointmentType = "tratamiento"
	TypeEmergency    AppointmentType = "emergencia"
	TypeFollowUp     AppointmentType = "seguimiento"
	TypeCleaning     AppointmentType = "limpieza"
)

func AppointmentTypes() []AppointmentType {
	return []AppointmentType{TypeConsultation, TypeTreatment, TypeEmergency, TypeFollowUp, TypeCleaning}
}

func ParseAppointmentType(value string) (AppointmentType, error) {
	return parse("appointment type", value, AppointmentType.Valid)
}

func (t AppointmentType) Valid() bool {
	switch t {
	case TypeConsultation, TypeTreatment, TypeEmergency, TypeFollowUp, TypeCleaning:
		return true
	}
	return false
}

func (t AppointmentType) Label() string {
	switch t {
	case TypeConsultation:
		return "Consulta"
	case TypeTreatment:
		return "Tratamiento"
	case TypeEmergency:
		return "Emergencia"
	case TypeFollowUp:
		return "Seguimiento"
	case TypeCleaning:
		return "Limpieza"
	}
	return string(t)
}

func (t AppointmentType) Style() Style {
	switch t {
	case TypeConsultation:
		return StyleBlue
	case TypeTreatment:
		return StyleGreen
	case TypeEmergency:
		return StyleRed
	case TypeFollowUp:
		return StylePurple
	case TypeCleaning:
		return StyleCyan
	}
	return StyleGray
}
