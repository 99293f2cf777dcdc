package service

import (
	"fmt"
	"log"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/twilio/twilio-go"
	openapi "github.com/twilio/twilio-go/rest/api/v2010"

	"smartparking/internal/db"
	"smartparking/internal/entities"
)

// Notifier is told about committed bookings. Implementations must not block
// the booking path and must never fail it: notification is best-effort.
type Notifier interface {
	BookingConfirmed(booking *db.Booking, contact entities.Contact)
}

// NoopNotifier discards notifications. Used when no provider is configured
// and in tests.
type NoopNotifier struct{}

func (NoopNotifier) BookingConfirmed(*db.Booking, entities.Contact) {}

// NotifyService sends booking confirmations over SendGrid email and Twilio
// SMS, whichever contact points the caller supplied.
type NotifyService struct {
	SendGridAPIKey    string
	SendGridFromEmail string
	SendGridFromName  string

	TwilioAccountSID string
	TwilioAuthToken  string
	TwilioFromNumber string
}

func NewNotifyService(sendgridAPIKey, fromEmail, fromName, twilioSID, twilioToken, twilioFrom string) *NotifyService {
	return &NotifyService{
		SendGridAPIKey:    sendgridAPIKey,
		SendGridFromEmail: fromEmail,
		SendGridFromName:  fromName,
		TwilioAccountSID:  twilioSID,
		TwilioAuthToken:   twilioToken,
		TwilioFromNumber:  twilioFrom,
	}
}

// BookingConfirmed fires the confirmation email and SMS asynchronously. The
// booking is already committed; a failed send only gets logged.
func (s *NotifyService) BookingConfirmed(booking *db.Booking, contact entities.Contact) {
	if contact.Email != "" {
		go func() {
			if err := s.sendEmail(booking, contact.Email); err != nil {
				log.Printf("Booking %s committed but confirmation email to %s failed: %v", booking.Code, contact.Email, err)
			}
		}()
	}
	if contact.Phone != "" {
		go func() {
			if err := s.sendSMS(booking, contact.Phone); err != nil {
				log.Printf("Booking %s committed but confirmation SMS to %s failed: %v", booking.Code, contact.Phone, err)
			}
		}()
	}
}

func (s *NotifyService) sendEmail(booking *db.Booking, toEmail string) error {
	if s.SendGridAPIKey == "" || s.SendGridFromEmail == "" {
		return fmt.Errorf("SendGrid is not configured")
	}

	subject := fmt.Sprintf("Your parking reservation %s is confirmed", booking.Code)
	body := fmt.Sprintf(
		"Your parking spot is booked.\n\n"+
			"Reservation code: %s\n"+
			"Lot %d, spot %d\n"+
			"From: %s\n"+
			"To:   %s\n"+
			"Rate: %.2f/hour\n"+
			"Total: %.2f\n",
		booking.Code, booking.LotID, booking.SpotID,
		booking.StartTime.Format("02 Jan 2006 15:04 MST"),
		booking.EndTime.Format("02 Jan 2006 15:04 MST"),
		booking.PricePerHour, booking.TotalCost,
	)

	from := mail.NewEmail(s.SendGridFromName, s.SendGridFromEmail)
	to := mail.NewEmail("", toEmail)
	message := mail.NewSingleEmail(from, subject, to, body, "")

	client := sendgrid.NewSendClient(s.SendGridAPIKey)
	response, err := client.Send(message)
	if err != nil {
		return fmt.Errorf("error sending email via SendGrid: %w", err)
	}
	if response.StatusCode < 200 || response.StatusCode >= 300 {
		return fmt.Errorf("SendGrid returned status %d: %s", response.StatusCode, response.Body)
	}
	return nil
}

func (s *NotifyService) sendSMS(booking *db.Booking, toNumber string) error {
	if s.TwilioAccountSID == "" || s.TwilioAuthToken == "" || s.TwilioFromNumber == "" {
		return fmt.Errorf("Twilio is not configured")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: s.TwilioAccountSID,
		Password: s.TwilioAuthToken,
	})

	body := fmt.Sprintf("Parking reservation %s confirmed: lot %d spot %d, %s. Total %.2f.",
		booking.Code, booking.LotID, booking.SpotID,
		booking.StartTime.Format("02/01 15:04"), booking.TotalCost)

	params := &openapi.CreateMessageParams{}
	params.SetTo(toNumber)
	params.SetFrom(s.TwilioFromNumber)
	params.SetBody(body)

	if _, err := client.Api.CreateMessage(params); err != nil {
		return fmt.Errorf("error sending SMS via Twilio: %w", err)
	}
	return nil
}
