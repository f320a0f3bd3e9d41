package patient

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/jwalitptl/frontdesk/internal/model"
	"github.com/jwalitptl/frontdesk/internal/repository"
	"github.com/jwalitptl/frontdesk/pkg/errors"
	"github.com/jwalitptl/frontdesk/pkg/logger"
)

// PatientService resolves the patients appointments refer to.
type PatientService interface {
	CreatePatient(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	ListPatients(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
}

type Service struct {
	repo   repository.PatientRepository
	logger *logger.Logger
}

func NewService(repo repository.PatientRepository, log *logger.Logger) *Service {
	if log == nil {
		log = logger.Nop()
	}
	return &Service{repo: repo, logger: log.Component("patients")}
}

func (s *Service) CreatePatient(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	if err := validatePatient(req); err != nil {
		return nil, err
	}

	patient := &model.Patient{
		SerialNumber:  strings.TrimSpace(req.SerialNumber),
		Name:          strings.TrimSpace(req.Name),
		Phone:         strings.TrimSpace(req.Phone),
		Age:           req.Age,
		Sex:           req.Sex,
		MaritalStatus: req.MaritalStatus,
		Problem:       req.Problem,
		TimesOfVisit:  req.TimesOfVisit,
	}
	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, s.wrap("create patient", err)
	}

	s.logger.Info("patient registered", "id", patient.ID.String(), "serial_number", patient.SerialNumber)
	return patient, nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, s.wrap("fetch patient", err)
	}
	return p, nil
}

func (s *Service) ListPatients(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	patients, err := s.repo.List(ctx, filters)
	if err != nil {
		return nil, s.wrap("fetch patients", err)
	}
	return patients, nil
}

func (s *Service) wrap(op string, err error) error {
	switch errors.CodeOf(err) {
	case errors.ErrNotFound, errors.ErrConflict, errors.ErrValidation:
		return err
	}
	s.logger.Error(err, "collaborator call failed", "op", op)
	return errors.NewCollaborator(op, err)
}

func validatePatient(req *model.CreatePatientRequest) error {
	switch {
	case req == nil:
		return errors.NewValidation("patient is required")
	case strings.TrimSpace(req.SerialNumber) == "":
		return errors.NewValidation("serial number is required")
	case strings.TrimSpace(req.Name) == "":
		return errors.NewValidation("patient name is required")
	case strings.TrimSpace(req.Phone) == "":
		return errors.NewValidation("phone number is required")
	case req.Age < 0 || req.Age > 150:
		return errors.NewValidation("age must be between 0 and 150")
	}
	return nil
}
