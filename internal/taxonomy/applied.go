package taxonomy

// AppliedStatus is the state of a treatment record.
type AppliedStatus string

const (
	AppliedPending    AppliedStatus = "pendiente"
	AppliedInProgress AppliedStatus = "en_progreso"
	AppliedCompleted  AppliedStatus = "completado"
	AppliedCancelled  AppliedStatus = "cancelado"
)

func AppliedStatuses() []AppliedStatus {
	return []AppliedStatus{AppliedPending, AppliedInProgress, AppliedCompleted, AppliedCancelled}
}

func ParseAppliedStatus(value string) (AppliedStatus, error) {
	return parse("applied status", value, AppliedStatus.Valid)
}

func (s AppliedStatus) Valid() bool {
	switch s {
	case AppliedPending, AppliedInProgress, AppliedCompleted, AppliedCancelled:
		return true
	}
	return false
}

func (s AppliedStatus) Label() string {
	switch s {
	case AppliedPending:
		return "Pendiente"
	case AppliedInProgress:
		return "En Progreso"
	case AppliedCompleted:
		return "Completado"
	case AppliedCancelled:
		return "Cancelado"
	}
	return string(s)
}

func (s AppliedStatus) Style() Style {
	switch s {
	case AppliedPending:
		return StyleYellow
	case AppliedInProgress:
		return StyleBlue
	case AppliedCompleted:
		return StyleGreen
	case AppliedCancelled:
		return StyleRed
	}
	return StyleGray
}

// AppliedStatusFor projects an appointment status onto the treatment view.
func AppliedStatusFor(s AppointmentStatus) AppliedStatus {
	switch s {
	case StatusCompleted:
		return AppliedCompleted
	case StatusScheduled, StatusConfirmed:
		return AppliedPending
	case StatusInProgress:
		return AppliedInProgress
	case StatusCancelled, StatusNoShow:
		return AppliedCancelled
	}
	return AppliedPending
}
