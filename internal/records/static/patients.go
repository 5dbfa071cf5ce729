package static

import (
	"context"
	"strings"
	"time"

	"github.com/wolfman30/docsmile-suite/internal/records"
)

const recentWindow = 30 * 24 * time.Hour

func (s *Store) patientView(p *records.Patient) records.Patient {
	out := *p
	out.Normalize(s.clock)
	return out
}

func (s *Store) ListPatients(ctx context.Context, creds records.Credentials, q records.PatientQuery) (records.PatientPage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.account(creds); err != nil {
		return records.PatientPage{}, err
	}

	search := strings.TrimSpace(q.Search)
	matched := make([]records.Patient, 0, len(s.patientOrder))
	for _, id := range s.patientOrder {
		p := s.patientView(s.patients[id])
		if q.IsActive != nil && p.IsActive != *q.IsActive {
			continue
		}
		if search != "" && !containsFold(p.FullName, search) && !strings.Contains(p.DNI, search) &&
			!containsFold(p.Email, search) && !strings.Contains(p.Phone, search) {
			continue
		}
		matched = append(matched, p)
	}
	page, pagination := records.Paginate(matched, q.Page, q.Limit)
	return records.PatientPage{Patients: page, Pagination: pagination}, nil
}

func (s *Store) GetPatient(ctx context.Context, creds records.Credentials, id string) (records.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.account(creds); err != nil {
		return records.Patient{}, err
	}
	p, ok := s.patients[id]
	if !ok {
		return records.Patient{}, notFound("patient", id)
	}
	return s.patientView(p), nil
}

func (s *Store) GetPatientByDNI(ctx context.Context, creds records.Credentials, dni string) (records.Patient, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.account(creds); err != nil {
		return records.Patient{}, err
	}
	p := s.patientByDNI(dni)
	if p == nil {
		return records.Patient{}, notFound("patient dni", dni)
	}
	return s.patientView(p), nil
}

func (s *Store) patientByDNI(dni string) *records.Patient {
	for _, id := range s.patientOrder {
		if p := s.patients[id]; p.DNI == dni {
			return p
		}
	}
	return nil
}

func (s *Store) CreatePatient(ctx context.Context, creds records.Credentials, in records.PatientInput) (records.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.account(creds); err != nil {
		return records.Patient{}, err
	}
	if s.patientByDNI(strings.TrimSpace(in.DNI)) != nil {
		return records.Patient{}, records.FieldErrors{"dni": "Ya existe un paciente con este DNI"}
	}

	now := s.timestamp()
	p := &records.Patient{ID: newID(), IsActive: true, CreatedAt: now, UpdatedAt: now}
	in.Apply(p)
	s.patients[p.ID] = p
	s.patientOrder = append(s.patientOrder, p.ID)
	s.logger.Debug("patient created", "patient_id", p.ID)
	return s.patientView(p), nil
}

func (s *Store) UpdatePatient(ctx context.Context, creds records.Credentials, id string, in records.PatientInput) (records.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.account(creds); err != nil {
		return records.Patient{}, err
	}
	p, ok := s.patients[id]
	if !ok {
		return records.Patient{}, notFound("patient", id)
	}
	if other := s.patientByDNI(strings.TrimSpace(in.DNI)); other != nil && other.ID != id {
		return records.Patient{}, records.FieldErrors{"dni": "Ya existe un paciente con este DNI"}
	}
	in.Apply(p)
	p.UpdatedAt = s.timestamp()
	return s.patientView(p), nil
}

func (s *Store) DeletePatient(ctx context.Context, creds records.Credentials, id string) error {
	_, err := s.setPatientActive(creds, id, false)
	return err
}

func (s *Store) RestorePatient(ctx context.Context, creds records.Credentials, id string) (records.Patient, error) {
	return s.setPatientActive(creds, id, true)
}

func (s *Store) setPatientActive(creds records.Credentials, id string, active bool) (records.Patient, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.account(creds); err != nil {
		return records.Patient{}, err
	}
	p, ok := s.patients[id]
	if !ok {
		return records.Patient{}, notFound("patient", id)
	}
	p.IsActive = active
	p.UpdatedAt = s.timestamp()
	return s.patientView(p), nil
}

func (s *Store) PatientStats(ctx context.Context, creds records.Credentials) (records.PatientStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if _, err := s.account(creds); err != nil {
		return records.PatientStats{}, err
	}

	var stats records.PatientStats
	cutoff := s.clock.Now().Add(-recentWindow)
	for _, p := range s.patients {
		stats.Total++
		if p.IsActive {
			stats.Active++
		} else {
			stats.Inactive++
		}
		if created, err := time.Parse(time.RFC3339, p.CreatedAt); err == nil && created.After(cutoff) {
			stats.RecentlyAdded++
		}
	}
	return stats, nil
}
