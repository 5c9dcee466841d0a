package cron

import (
	"fmt"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/clinicbook/clinic-app/models"
	"github.com/clinicbook/clinic-app/utils"
)

// ReminderSource is the slice of the booking API the reminder sweep
// needs. Both the mock and the database backend satisfy it.
type ReminderSource interface {
	UpcomingAppointments(from, to time.Time) ([]*models.Appointment, error)
	GetUser(id string) (*models.User, error)
}

// StartCronJobs initializes and starts the cron scheduler for appointment reminders
func StartCronJobs(src ReminderSource) *cron.Cron {
	c := cron.New()
	// Run every minute to check for appointments in the next hour
	_, err := c.AddFunc("* * * * *", func() { sendAppointmentReminders(src) })
	if err != nil {
		log.Fatalf("Failed to add cron job: %v", err)
	}
	c.Start()
	log.Println("Cron job scheduler started for appointment reminders")
	return c
}

// sendAppointmentReminders checks for appointments and sends reminders
func sendAppointmentReminders(src ReminderSource) {
	now := time.Now()
	// Look for appointments starting in the next hour
	startWindow := now.Add(55 * time.Minute)
	endWindow := now.Add(65 * time.Minute)

	appointments, err := src.UpcomingAppointments(startWindow, endWindow)
	if err != nil {
		log.Printf("Error fetching appointments for reminders: %v", err)
		return
	}

	for _, appointment := range appointments {
		if err := sendReminderEmail(src, appointment); err != nil {
			log.Printf("Failed to send reminder for appointment %s: %v", appointment.ID, err)
			continue
		}
		log.Printf("Sent reminder for appointment %s", appointment.ID)
	}
}

// sendReminderEmail constructs and sends the reminder email
func sendReminderEmail(src ReminderSource, appointment *models.Appointment) error {
	patient, err := src.GetUser(appointment.PatientID)
	if err != nil {
		return err
	}
	doctor, err := src.GetUser(appointment.DoctorID)
	if err != nil {
		return err
	}

	subject := "Reminder: Upcoming Appointment"
	body := fmt.Sprintf(`
		<p>Dear %s,</p>
		<p>This is a reminder for your upcoming appointment scheduled in one hour.</p>
		<p><strong>Details:</strong></p>
		<ul>
			<li><strong>Doctor:</strong> Dr. %s</li>
			<li><strong>Date:</strong> %s</li>
			<li><strong>Start Time:</strong> %s</li>
			<li><strong>End Time:</strong> %s</li>
			<li><strong>Type:</strong> %s</li>
		</ul>
		<p>Please arrive a few minutes early.</p>
	`, patient.FullName(), doctor.FullName(), appointment.AppointmentDate,
		appointment.StartTime, appointment.EndTime, appointment.AppointmentType)

	return utils.SendEmail(patient.Email, subject, body)
}
