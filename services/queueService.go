package services

import (
	"context"
	"time"

	"TeleClinic/models"
	"TeleClinic/repositories"
	"TeleClinic/schedule"

	"golang.org/x/sync/errgroup"
)

// QueueService answers the queue-status poll. It keeps no state between calls.
type QueueService struct {
	doctors      repositories.DoctorRepository
	appointments repositories.AppointmentRepository
	estimator    schedule.Estimator
	loc          *time.Location
	now          func() time.Time
}

func NewQueueService(doctors repositories.DoctorRepository, appointments repositories.AppointmentRepository, estimator schedule.Estimator, loc *time.Location) *QueueService {
	return &QueueService{doctors: doctors, appointments: appointments, estimator: estimator, loc: loc, now: time.Now}
}

func (s *QueueService) Status(ctx context.Context, actor Actor, appointmentID string) (*schedule.QueueStatus, error) {
	target, err := s.appointments.GetByID(ctx, appointmentID)
	if err != nil {
		return nil, err
	}
	if !actor.canAccess(target) {
		return nil, notVisible(actor)
	}

	var (
		doctor *models.Doctor
		day    []models.Appointment
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		d, err := s.doctors.GetFresh(gctx, target.DoctorID)
		doctor = d
		return err
	})
	g.Go(func() error {
		appts, err := s.appointments.ListDoctorDay(gctx, target.DoctorID, target.SlotDate)
		day = appts
		return err
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	loc := doctor.Location(s.loc)
	status := s.estimator.Estimate(*target, day, doctor.Status, s.now().In(loc), loc)
	return &status, nil
}
