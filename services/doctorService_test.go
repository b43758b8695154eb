package services

import (
	"context"
	"testing"
	"time"

	"TeleClinic/apperrors"
	"TeleClinic/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateDoctorDefaults(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	d, err := env.doctors.Create(ctx, models.DoctorInput{
		Name: " Dr Arjun Nair ", Email: "Arjun@Clinic.Example.com", Speciality: "Cardiology", Fee: 800,
	})
	require.NoError(t, err)
	assert.Equal(t, "Dr Arjun Nair", d.Name)
	assert.Equal(t, "arjun@clinic.example.com", d.Email)
	assert.True(t, d.Available)
	assert.Equal(t, models.StatusUnavailable, d.Status)
	assert.Equal(t, "Asia/Kolkata", d.Timezone)
	assert.NotNil(t, d.SlotsBooked)

	_, err = env.doctors.Create(ctx, models.DoctorInput{Name: "Dr Copy", Email: "arjun@clinic.example.com", Speciality: "Cardiology"})
	assert.ErrorIs(t, err, apperrors.ErrDoctorExists)

	_, err = env.doctors.Create(ctx, models.DoctorInput{Name: "X", Email: "not-an-email"})
	assert.Equal(t, apperrors.TypeValidation, apperrors.TypeOf(err))
}

func TestUpdateDoctorKeepsSlots(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor := env.addDoctor(t, 500)
	_, err := env.booking.Book(ctx, "p1", bookingReq(doctor.ID, "5_6_2025", "10:00"))
	require.NoError(t, err)

	off := false
	updated, err := env.doctors.Update(ctx, doctor.ID, models.DoctorInput{
		Name: "Dr Meera Rao", Email: doctor.Email, Speciality: "Paediatrics", Fee: 650, Available: &off,
	})
	require.NoError(t, err)
	assert.Equal(t, "Paediatrics", updated.Speciality)
	assert.False(t, updated.Available)

	stored, err := env.doctors.GetByID(ctx, doctor.ID)
	require.NoError(t, err)
	assert.Equal(t, 650.0, stored.Fee)
	assert.False(t, stored.Available)
	assert.Equal(t, []string{"10:00"}, stored.SlotsBooked.Times("5_6_2025"))

	list, err := env.doctors.List(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, list)
}

func TestDoctorStatus(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor := env.addDoctor(t, 500)

	_, err := env.doctors.UpdateStatus(ctx, doctor.ID, "napping")
	assert.Equal(t, apperrors.TypeValidation, apperrors.TypeOf(err))

	env.clock = env.clock.Add(time.Hour)
	view, err := env.doctors.UpdateStatus(ctx, doctor.ID, models.StatusInClinic)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInClinic, view.Status)
	assert.True(t, view.UpdatedAt.Equal(env.clock))

	view, err = env.doctors.Status(ctx, doctor.ID)
	require.NoError(t, err)
	assert.Equal(t, models.StatusInClinic, view.Status)

	_, err = env.doctors.Status(ctx, "missing")
	assert.ErrorIs(t, err, apperrors.ErrDoctorNotFound)
}

func TestDeleteDoctorWithAppointments(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	doctor := env.addDoctor(t, 500)
	idle := env.addDoctor(t, 500)
	_, err := env.booking.Book(ctx, "p1", bookingReq(doctor.ID, "5_6_2025", "10:00"))
	require.NoError(t, err)

	assert.ErrorIs(t, env.doctors.Delete(ctx, doctor.ID), apperrors.ErrDoctorInUse)
	assert.NoError(t, env.doctors.Delete(ctx, idle.ID))
	_, err = env.doctors.GetByID(ctx, idle.ID)
	assert.ErrorIs(t, err, apperrors.ErrDoctorNotFound)
}
