package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/jwalitptl/frontdesk/internal/model"
	"github.com/jwalitptl/frontdesk/internal/repository"
	"github.com/jwalitptl/frontdesk/pkg/errors"
)

type patientRepository struct {
	mu    sync.RWMutex
	items map[uuid.UUID]model.Patient
}

func NewPatientRepository(seed ...*model.Patient) repository.PatientRepository {
	r := &patientRepository{items: make(map[uuid.UUID]model.Patient)}
	for _, p := range seed {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
		r.items[p.ID] = *p
	}
	return r
}

func (r *patientRepository) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	term := ""
	if filters != nil {
		term = strings.ToLower(strings.TrimSpace(filters.SearchTerm))
	}

	out := make([]*model.Patient, 0, len(r.items))
	for _, p := range r.items {
		p := p
		if term != "" && !matchesPatient(&p, term) {
			continue
		}
		out = append(out, &p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SerialNumber < out[j].SerialNumber })
	return out, nil
}

// matchesPatient applies the front desk search: name, phone or serial number.
func matchesPatient(p *model.Patient, term string) bool {
	return strings.Contains(strings.ToLower(p.Name), term) ||
		strings.Contains(p.Phone, term) ||
		strings.Contains(strings.ToLower(p.SerialNumber), term)
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.items[id]
	if !ok {
		return nil, errors.NewNotFound("patient", nil)
	}
	return &p, nil
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	patient.ID = uuid.New()
	patient.CreatedAt = time.Now()
	patient.UpdatedAt = patient.CreatedAt
	if patient.TimesOfVisit == 0 {
		patient.TimesOfVisit = 1
	}
	r.items[patient.ID] = *patient
	return nil
}
