package records

import (
	"context"
	"errors"
	"fmt"
)

// ServiceLookup resolves catalog services by id.
type ServiceLookup interface {
	GetService(ctx context.Context, creds Credentials, id string) (DentalService, error)
}

// CheckBookable verifies that every referenced service exists and is active.
// Unknown or inactive services are field errors; other lookup failures are
// returned as is.
func CheckBookable(ctx context.Context, lookup ServiceLookup, creds Credentials, ids []string) error {
	errs := FieldErrors{}
	checked := make(map[string]bool, len(ids))
	for i, id := range ids {
		if id == "" || checked[id] {
			continue
		}
		checked[id] = true
		svc, err := lookup.GetService(ctx, creds, id)
		if errors.Is(err, ErrNotFound) {
			errs.Add(indexed("services", i, "service"), "El servicio no existe")
			continue
		}
		if err != nil {
			return fmt.Errorf("records: check service %s: %w", id, err)
		}
		if !svc.IsActive {
			errs.Add(indexed("services", i, "service"), fmt.Sprintf("El servicio %s no está activo", svc.Name))
		}
	}
	return errs.Err()
}

// ServicesChanged reports whether next books a different set of services than
// current. Quantities are ignored.
func ServicesChanged(current []AppointmentLine, next []LineInput) bool {
	if len(current) != len(next) {
		return true
	}
	booked := make(map[string]int, len(current))
	for _, line := range current {
		booked[line.Service.ID]++
	}
	for _, line := range next {
		if booked[line.Service] == 0 {
			return true
		}
		booked[line.Service]--
	}
	return false
}
