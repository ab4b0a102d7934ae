package catalog

import (
	"context"
	"testing"

	"medbook/database/repository/memory"
	"medbook/models"
	"medbook/utils"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func newCatalog(t *testing.T) (*DefaultCatalogService, *memory.Store) {
	t.Helper()
	utils.Logger = zap.NewNop()
	store := memory.NewStore()
	return &DefaultCatalogService{
		Specialties: store.Specialties(),
		Clinics:     store.Clinics(),
		Doctors:     store.Doctors(),
		Users:       store.Users(),
		Schedules:   store.Schedules(),
		Cache:       utils.NewMemoryCache(),
	}, store
}

func appCode(t *testing.T, err error) string {
	t.Helper()
	appErr, ok := err.(*utils.AppError)
	require.True(t, ok, "expected *utils.AppError, got %v", err)
	return appErr.Code
}

func doctorRequest(specialtyID string) models.DoctorRequest {
	return models.DoctorRequest{
		Fullname:        "  Le Van Tam ",
		Email:           "Tam@Clinic.VN",
		PhoneNumber:     "0911111111",
		Password:        "secret1",
		SpecialtyID:     specialtyID,
		Description:     `<p>Cardiologist</p><script>alert(1)</script>`,
		ExperienceYears: 12,
		Price:           300000,
	}
}

func TestSlugCandidates(t *testing.T) {
	const id = "0b8e4f3a-3c1d-4f5e-9a7b-2c6d8e9f0a1b"

	assert.Equal(t, []string{"42"}, slugCandidates("42"))
	assert.Equal(t, []string{"42-nguyen-van-a", "42"}, slugCandidates("42-nguyen-van-a"))
	assert.Contains(t, slugCandidates(id+"-nguyen-van-a"), id)
	assert.Equal(t, id, slugCandidates(id)[0])
}

func TestCreateDoctorCreatesAccountAndProfile(t *testing.T) {
	svc, store := newCatalog(t)
	ctx := context.Background()

	sp, err := svc.CreateSpecialty(ctx, models.SpecialtyRequest{Name: "Cardiology"})
	require.NoError(t, err)

	view, err := svc.CreateDoctor(ctx, doctorRequest(sp.ID))
	require.NoError(t, err)
	require.NotNil(t, view.User)
	assert.Equal(t, "Le Van Tam", view.User.Fullname)
	assert.Equal(t, "tam@clinic.vn", view.User.Email)
	assert.Equal(t, models.RoleDoctor, view.User.Role)
	assert.NotEqual(t, "secret1", view.User.PasswordHash)
	require.NotNil(t, view.Specialty)
	assert.Equal(t, "Cardiology", view.Specialty.Name)
	assert.NotContains(t, view.Description, "<script>")
	assert.Contains(t, view.Description, "Cardiologist")

	byUser, err := svc.DoctorByUserID(ctx, view.UserID)
	require.NoError(t, err)
	assert.Equal(t, view.ID, byUser.ID)

	slugged, err := svc.GetDoctor(ctx, view.ID+"-le-van-tam")
	require.NoError(t, err)
	assert.Equal(t, view.ID, slugged.ID)

	_, err = svc.CreateDoctor(ctx, doctorRequest(sp.ID))
	assert.Equal(t, utils.CodeConflict, appCode(t, err), "phone already taken")

	count, err := store.Users().Count(ctx, models.RoleDoctor)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}

func TestCreateDoctorChecksReferences(t *testing.T) {
	svc, _ := newCatalog(t)
	ctx := context.Background()

	_, err := svc.CreateDoctor(ctx, doctorRequest("missing"))
	assert.Equal(t, utils.CodeInvalid, appCode(t, err))

	sp, err := svc.CreateSpecialty(ctx, models.SpecialtyRequest{Name: "Dermatology"})
	require.NoError(t, err)
	req := doctorRequest(sp.ID)
	req.ClinicID = "nowhere"
	_, err = svc.CreateDoctor(ctx, req)
	assert.Equal(t, utils.CodeInvalid, appCode(t, err))

	req = doctorRequest(sp.ID)
	req.Password = ""
	_, err = svc.CreateDoctor(ctx, req)
	assert.Equal(t, utils.CodeInvalid, appCode(t, err))
}

func TestDeleteDoctorRefusesWithBookings(t *testing.T) {
	svc, store := newCatalog(t)
	ctx := context.Background()

	sp, err := svc.CreateSpecialty(ctx, models.SpecialtyRequest{Name: "Pediatrics"})
	require.NoError(t, err)
	doc, err := svc.CreateDoctor(ctx, doctorRequest(sp.ID))
	require.NoError(t, err)

	sc := models.Schedule{ID: "s1", DoctorID: doc.ID, DateSchedule: "2030-01-05", StartTime: "09:00", EndTime: "10:00", BookingLimit: 2, Active: true}
	require.NoError(t, store.Schedules().Create(ctx, &sc))
	require.NoError(t, store.Schedules().ReserveSeat(ctx, "s1"))

	err = svc.DeleteDoctor(ctx, doc.ID)
	assert.Equal(t, utils.CodeConflict, appCode(t, err))

	err = svc.DeleteSpecialty(ctx, sp.ID)
	assert.Equal(t, utils.CodeConflict, appCode(t, err), "specialty still has doctors")

	require.NoError(t, store.Schedules().ReleaseSeat(ctx, "s1"))
	require.NoError(t, svc.DeleteDoctor(ctx, doc.ID))

	_, err = svc.GetDoctor(ctx, doc.ID)
	assert.Equal(t, utils.CodeNotFound, appCode(t, err))
	_, err = store.Users().GetByID(ctx, doc.UserID)
	assert.Error(t, err, "account removed with the profile")
	_, err = store.Schedules().GetByID(ctx, "s1")
	assert.Error(t, err, "empty schedules removed")
}

func TestSpecialtyListIsCachedAndInvalidated(t *testing.T) {
	svc, store := newCatalog(t)
	ctx := context.Background()

	_, err := svc.CreateSpecialty(ctx, models.SpecialtyRequest{Name: "Cardiology"})
	require.NoError(t, err)

	list, err := svc.ListSpecialties(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)

	// Written behind the service's back: the cached list still answers.
	require.NoError(t, store.Specialties().Create(ctx, &models.Specialty{ID: "sp-x", Name: "Neurology"}))
	list, err = svc.ListSpecialties(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	_, err = svc.CreateSpecialty(ctx, models.SpecialtyRequest{Name: "Oncology"})
	require.NoError(t, err)
	list, err = svc.ListSpecialties(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 3)
}

func TestListDoctorsFilters(t *testing.T) {
	svc, _ := newCatalog(t)
	ctx := context.Background()

	cardio, err := svc.CreateSpecialty(ctx, models.SpecialtyRequest{Name: "Cardiology"})
	require.NoError(t, err)
	derma, err := svc.CreateSpecialty(ctx, models.SpecialtyRequest{Name: "Dermatology"})
	require.NoError(t, err)

	first := doctorRequest(cardio.ID)
	_, err = svc.CreateDoctor(ctx, first)
	require.NoError(t, err)

	second := doctorRequest(derma.ID)
	second.Fullname = "Pham Thi Hoa"
	second.Email = "hoa@clinic.vn"
	second.PhoneNumber = "0922222222"
	off := false
	second.Active = &off
	_, err = svc.CreateDoctor(ctx, second)
	require.NoError(t, err)

	page, err := svc.ListDoctors(ctx, models.DoctorFilter{SpecialtyID: cardio.ID}, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Rows, 1)
	assert.Equal(t, "Le Van Tam", page.Rows[0].User.Fullname)

	active, err := svc.ListDoctors(ctx, models.DoctorFilter{ActiveOnly: true}, 1, 10)
	require.NoError(t, err)
	assert.Equal(t, 1, active.Count)

	byName, err := svc.ListDoctors(ctx, models.DoctorFilter{Query: "hoa"}, 1, 10)
	require.NoError(t, err)
	require.Len(t, byName.Rows, 1)
	assert.Equal(t, derma.ID, byName.Rows[0].SpecialtyID)
}
