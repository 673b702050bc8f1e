package notification

import (
	"context"
	"fmt"

	"courtpilot/models"
	"courtpilot/utils"

	"firebase.google.com/go/v4/messaging"
)

// OutcomeNotifier delivers a run's terminal result to the device that asked
// for it.
type OutcomeNotifier interface {
	NotifyOutcome(ctx context.Context, run *models.BookingRun) error
}

// DefaultOutcomeNotifier is the FCM-backed implementation. It is a no-op when
// the run carries no device token or when Firebase was never configured.
type DefaultOutcomeNotifier struct{}

func NewDefaultOutcomeNotifier() *DefaultOutcomeNotifier {
	return &DefaultOutcomeNotifier{}
}

func (s *DefaultOutcomeNotifier) NotifyOutcome(ctx context.Context, run *models.BookingRun) error {
	if run.DeviceToken == "" {
		return nil
	}
	if utils.FCMClient == nil {
		fmt.Printf("NotifyOutcome: run %s has a device token but FCM is not configured, skipping\n", run.RunID)
		return nil
	}

	title, body := outcomeMessage(run)
	msg := &messaging.Message{
		Token: run.DeviceToken,
		Notification: &messaging.Notification{
			Title: title,
			Body:  body,
		},
		Data: map[string]string{
			"type":   "booking_outcome",
			"runId":  run.RunID,
			"status": string(run.Status),
		},
	}

	// Reservation outcomes should light up the phone.
	if run.Status == models.StateConfirmed || run.Status == models.StateReservationFailed {
		msg.Android = &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		}
		msg.APNS = &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{
					Sound: "default",
				},
			},
		}
	}

	response, err := utils.FCMClient.Send(ctx, msg)
	if err != nil {
		return fmt.Errorf("NotifyOutcome: failed to send FCM message: %w", err)
	}

	fmt.Printf("NotifyOutcome: successfully sent message: %s\n", response)
	return nil
}

// outcomeMessage renders the push title and body for a terminal run.
func outcomeMessage(run *models.BookingRun) (string, string) {
	body := ""
	if run.Result != nil {
		body = run.Result.Message
	}

	switch run.Status {
	case models.StateConfirmed:
		return "Court booked 🏸", body
	case models.StateReservationFailed:
		if run.FailureReason != "" {
			body = run.FailureReason
		}
		return "Booking did not go through", body
	case models.StateExactMatchFound:
		return "Your slot is open", body
	case models.StateAlternativesFound:
		n := 0
		if run.Result != nil {
			n = len(run.Result.Alternatives)
		}
		return fmt.Sprintf("%d open slot%s near your request", n, plural(n)), body
	case models.StateNoAvailability:
		return "No courts available", body
	default:
		return "Booking run update", body
	}
}

// plural returns "s" if n is not 1, otherwise returns an empty string.
func plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}
