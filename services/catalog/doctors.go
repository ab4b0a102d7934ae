package catalog

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"medbook/database/repository"
	"medbook/models"
	"medbook/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

// uuidLen is the length of a canonical uuid string.
const uuidLen = 36

func (s *DefaultCatalogService) ListDoctors(ctx context.Context, filter models.DoctorFilter, page, limit int) (utils.Page[models.DoctorView], error) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = utils.DefaultPageLimit
	}
	doctors, total, err := s.Doctors.List(ctx, filter, page, limit)
	if err != nil {
		return utils.Page[models.DoctorView]{}, fmt.Errorf("failed to list doctors: %w", err)
	}
	views, err := s.DoctorViews(ctx, doctors)
	if err != nil {
		return utils.Page[models.DoctorView]{}, err
	}
	return utils.PageOf(views, total, page, limit), nil
}

// GetDoctor accepts a bare id or an "id-name" slug. Ids are uuids and contain
// dashes themselves, so the raw value is tried first.
func (s *DefaultCatalogService) GetDoctor(ctx context.Context, idOrSlug string) (*models.DoctorView, error) {
	for _, id := range slugCandidates(idOrSlug) {
		d, err := s.Doctors.GetByID(ctx, id)
		if errors.Is(err, repository.ErrNotFound) {
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to get doctor: %w", err)
		}
		return s.doctorView(ctx, *d)
	}
	return nil, utils.NewAppError(utils.CodeNotFound, "Doctor not found")
}

// slugCandidates lists the ids an "id-name" path value might stand for.
func slugCandidates(v string) []string {
	out := []string{v}
	if len(v) > uuidLen && v[uuidLen] == '-' {
		if _, err := uuid.Parse(v[:uuidLen]); err == nil {
			out = append(out, v[:uuidLen])
		}
	}
	if i := strings.Index(v, "-"); i > 0 {
		out = append(out, v[:i])
	}
	return out
}

func (s *DefaultCatalogService) DoctorByUserID(ctx context.Context, userID string) (*models.DoctorView, error) {
	d, err := s.Doctors.GetByUserID(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.doctorView(ctx, *d)
}

func (s *DefaultCatalogService) doctorView(ctx context.Context, d models.Doctor) (*models.DoctorView, error) {
	views, err := s.DoctorViews(ctx, []models.Doctor{d})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

// DoctorViews resolves users, specialties and clinics with one lookup per collection.
func (s *DefaultCatalogService) DoctorViews(ctx context.Context, doctors []models.Doctor) ([]models.DoctorView, error) {
	userIDs := make([]string, 0, len(doctors))
	for _, d := range doctors {
		userIDs = append(userIDs, d.UserID)
	}
	users, err := s.Users.GetByIDs(ctx, userIDs)
	if err != nil {
		return nil, fmt.Errorf("failed to load doctor accounts: %w", err)
	}
	specialties, err := s.ListSpecialties(ctx)
	if err != nil {
		return nil, err
	}
	specByID := make(map[string]models.Specialty, len(specialties))
	for _, sp := range specialties {
		specByID[sp.ID] = sp
	}
	clinicByID := map[string]models.Clinic{}

	views := make([]models.DoctorView, 0, len(doctors))
	for _, d := range doctors {
		v := models.DoctorView{Doctor: d}
		if u, ok := users[d.UserID]; ok {
			v.User = &u
		}
		if sp, ok := specByID[d.SpecialtyID]; ok {
			v.Specialty = &sp
		}
		if d.ClinicID != "" {
			c, ok := clinicByID[d.ClinicID]
			if !ok {
				found, err := s.Clinics.GetByID(ctx, d.ClinicID)
				if err != nil && !errors.Is(err, repository.ErrNotFound) {
					return nil, fmt.Errorf("failed to load clinic: %w", err)
				}
				if found != nil {
					c, ok = *found, true
					clinicByID[c.ID] = c
				}
			}
			if ok {
				v.Clinic = &c
			}
		}
		views = append(views, v)
	}
	return views, nil
}

// CreateDoctor creates the doctor's user account and profile together.
func (s *DefaultCatalogService) CreateDoctor(ctx context.Context, req models.DoctorRequest) (*models.DoctorView, error) {
	if req.Password == "" {
		return nil, utils.NewAppError(utils.CodeInvalid, "Password is required")
	}
	if err := s.checkDoctorRefs(ctx, req); err != nil {
		return nil, err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	account := models.User{
		ID:           uuid.New().String(),
		Fullname:     strings.TrimSpace(req.Fullname),
		Email:        strings.ToLower(strings.TrimSpace(req.Email)),
		PhoneNumber:  req.PhoneNumber,
		PasswordHash: string(hash),
		Role:         models.RoleDoctor,
		Active:       true,
	}
	if err := s.Users.Create(ctx, &account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, utils.NewAppError(utils.CodeConflict, "Phone number or email is already registered")
		}
		return nil, fmt.Errorf("failed to create doctor account: %w", err)
	}

	doc := models.Doctor{ID: uuid.New().String(), UserID: account.ID, Active: true}
	applyDoctor(&doc, req)
	if err := s.Doctors.Create(ctx, &doc); err != nil {
		// Leave no orphan account behind.
		if delErr := s.Users.Delete(ctx, account.ID); delErr != nil {
			utils.GetLogger().Error("Failed to roll back doctor account", zap.String("userId", account.ID), zap.Error(delErr))
		}
		return nil, fmt.Errorf("failed to create doctor profile: %w", err)
	}
	return s.doctorView(ctx, doc)
}

func (s *DefaultCatalogService) UpdateDoctor(ctx context.Context, id string, req models.DoctorRequest) (*models.DoctorView, error) {
	doc, err := s.Doctors.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NewAppError(utils.CodeNotFound, "Doctor not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	if err := s.checkDoctorRefs(ctx, req); err != nil {
		return nil, err
	}

	account, err := s.Users.GetByID(ctx, doc.UserID)
	if err != nil {
		return nil, fmt.Errorf("failed to load doctor account: %w", err)
	}
	account.Fullname = strings.TrimSpace(req.Fullname)
	account.Email = strings.ToLower(strings.TrimSpace(req.Email))
	account.PhoneNumber = req.PhoneNumber
	if req.Password != "" {
		hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash password: %w", err)
		}
		account.PasswordHash = string(hash)
	}
	if err := s.Users.Update(ctx, account); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, utils.NewAppError(utils.CodeConflict, "Phone number or email is already registered")
		}
		return nil, fmt.Errorf("failed to update doctor account: %w", err)
	}

	applyDoctor(doc, req)
	if err := s.Doctors.Update(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to update doctor: %w", err)
	}
	return s.doctorView(ctx, *doc)
}

func (s *DefaultCatalogService) SetDoctorImage(ctx context.Context, id, url string) (*models.DoctorView, error) {
	doc, err := s.Doctors.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, utils.NewAppError(utils.CodeNotFound, "Doctor not found")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get doctor: %w", err)
	}
	doc.Image = url
	if err := s.Doctors.Update(ctx, doc); err != nil {
		return nil, fmt.Errorf("failed to update doctor: %w", err)
	}
	return s.doctorView(ctx, *doc)
}

// DeleteDoctor refuses while any of the doctor's schedules has bookings.
// Empty schedules, the profile and the account are removed.
func (s *DefaultCatalogService) DeleteDoctor(ctx context.Context, id string) error {
	doc, err := s.Doctors.GetByID(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return utils.NewAppError(utils.CodeNotFound, "Doctor not found")
	}
	if err != nil {
		return fmt.Errorf("failed to get doctor: %w", err)
	}

	schedules, err := s.Schedules.List(ctx, models.ScheduleFilter{DoctorID: id})
	if err != nil {
		return fmt.Errorf("failed to list doctor schedules: %w", err)
	}
	for _, sc := range schedules {
		if sc.NumberBooked > 0 {
			return utils.NewAppError(utils.CodeConflict, "Doctor has schedules with bookings")
		}
	}
	for _, sc := range schedules {
		if err := s.Schedules.Delete(ctx, sc.ID); err != nil {
			if errors.Is(err, repository.ErrConflict) {
				return utils.NewAppError(utils.CodeConflict, "Doctor has schedules with bookings")
			}
			return fmt.Errorf("failed to delete schedule %s: %w", sc.ID, err)
		}
	}

	if err := s.Doctors.Delete(ctx, id); err != nil {
		return fmt.Errorf("failed to delete doctor: %w", err)
	}
	if err := s.Users.Delete(ctx, doc.UserID); err != nil && !errors.Is(err, repository.ErrNotFound) {
		return fmt.Errorf("failed to delete doctor account: %w", err)
	}
	return nil
}

func (s *DefaultCatalogService) checkDoctorRefs(ctx context.Context, req models.DoctorRequest) error {
	if err := s.checkSpecialty(ctx, req.SpecialtyID); err != nil {
		return err
	}
	if req.ClinicID != "" {
		if _, err := s.Clinics.GetByID(ctx, req.ClinicID); err != nil {
			if errors.Is(err, repository.ErrNotFound) {
				return utils.NewAppError(utils.CodeInvalid, "Clinic does not exist")
			}
			return fmt.Errorf("failed to check clinic: %w", err)
		}
	}
	return nil
}

func applyDoctor(d *models.Doctor, req models.DoctorRequest) {
	d.SpecialtyID = req.SpecialtyID
	d.ClinicID = req.ClinicID
	d.Description = utils.SanitizeHTML(req.Description)
	d.ExperienceYears = req.ExperienceYears
	d.Price = req.Price
	if req.Active != nil {
		d.Active = *req.Active
	}
}
