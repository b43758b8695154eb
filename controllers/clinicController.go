package controllers

import (
	"TeleClinic/handlers"
	"TeleClinic/middlewares"
	"TeleClinic/utils"

	"github.com/gin-gonic/gin"
)

// Handlers bundles everything the route tables mount.
type Handlers struct {
	Doctors      *handlers.DoctorHandler
	Appointments *handlers.AppointmentHandler
	Queue        *handlers.QueueHandler
	Patients     *handlers.PatientHandler
	Payments     *handlers.PaymentHandler
	Session      *handlers.SessionHandler
}

// SetupPublicRoutes registers the unauthenticated browse endpoints.
func SetupPublicRoutes(router *gin.Engine, h Handlers) {
	router.GET("/doctors", h.Doctors.GetAvailableDoctors)
	router.GET("/doctors/:id", h.Doctors.GetDoctorByID)
	router.GET("/doctors/:id/slots", h.Doctors.GetDoctorSlots)
	router.GET("/doctors/:id/status", h.Doctors.GetDoctorStatus)
	router.GET("/doctor-status", h.Doctors.GetDoctorStatus)

	router.GET("/confirmations/verify", h.Appointments.VerifyConfirmation)
}

// SetupPatientRoutes registers the endpoints a signed-in patient uses.
func SetupPatientRoutes(router *gin.Engine, tokens *utils.TokenMaker, h Handlers) {
	authGroup := router.Group("/auth").Use(middlewares.TokenAuthMiddleware(tokens))
	{
		authGroup.GET("/session", h.Session.GetSession)
	}

	patientGroup := router.Group("/").Use(middlewares.TokenAuthMiddleware(tokens, utils.RolePatient))
	{
		patientGroup.GET("/patients/me", h.Patients.GetMyProfile)
		patientGroup.PUT("/patients/me", h.Patients.SaveMyProfile)

		patientGroup.POST("/appointments", h.Appointments.BookAppointment)
		patientGroup.GET("/appointments", h.Appointments.GetMyAppointments)
		patientGroup.GET("/appointments/:id", h.Appointments.GetAppointmentByID)
		patientGroup.GET("/appointments/:id/qr", h.Appointments.GetAppointmentQR)
		patientGroup.POST("/appointments/:id/cancel", h.Appointments.CancelAppointment)
		patientGroup.POST("/appointments/:id/checkout", h.Payments.CreateCheckout)
	}

	// Doctors watch the same queue from their console.
	queueGroup := router.Group("/").Use(middlewares.TokenAuthMiddleware(tokens, utils.RolePatient, utils.RoleDoctor, utils.RoleAdmin))
	{
		queueGroup.GET("/queue-status", h.Queue.GetQueueStatus)
	}
}

// SetupDoctorRoutes registers the doctor console endpoints.
func SetupDoctorRoutes(router *gin.Engine, tokens *utils.TokenMaker, h Handlers) {
	doctorGroup := router.Group("/doctor").Use(middlewares.TokenAuthMiddleware(tokens, utils.RoleDoctor))
	{
		doctorGroup.PUT("/status", h.Doctors.UpdateMyStatus)
		doctorGroup.PUT("/availability", h.Doctors.SetMyAvailability)
		doctorGroup.GET("/appointments", h.Appointments.GetMyDayAppointments)
		doctorGroup.GET("/appointments/:id", h.Appointments.GetAppointmentByID)
		doctorGroup.POST("/appointments/:id/complete", h.Appointments.CompleteAppointment)
		doctorGroup.POST("/appointments/:id/cancel", h.Appointments.CancelAppointment)
	}
}

// SetupAdminRoutes registers the back-office endpoints behind the static admin key.
func SetupAdminRoutes(router *gin.Engine, adminKey string, h Handlers) {
	adminGroup := router.Group("/admin").Use(middlewares.ValidateBearerToken(adminKey))
	{
		adminGroup.GET("/doctors", h.Doctors.GetAllDoctors)
		adminGroup.POST("/doctors", h.Doctors.CreateDoctor)
		adminGroup.PUT("/doctors/:id", h.Doctors.UpdateDoctor)
		adminGroup.DELETE("/doctors/:id", h.Doctors.DeleteDoctor)
		adminGroup.PUT("/doctors/:id/availability", h.Doctors.SetDoctorAvailability)
		adminGroup.GET("/doctors/:id/appointments", h.Appointments.GetDoctorAppointments)

		adminGroup.GET("/appointments/:id", h.Appointments.GetAppointmentByID)
		adminGroup.POST("/appointments/:id/cancel", h.Appointments.CancelAppointment)
		adminGroup.POST("/appointments/:id/complete", h.Appointments.CompleteAppointment)
	}
}

// SetupWebhookRoutes registers one callback per configured payment provider.
func SetupWebhookRoutes(router *gin.Engine, providers []string, h Handlers) {
	for _, provider := range providers {
		router.POST("/webhooks/"+provider, h.Payments.Webhook(provider))
	}
}
