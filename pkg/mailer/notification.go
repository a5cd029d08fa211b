package mailer

import "fmt"

// Notification is the rendered email for a lifecycle event, addressed to the
// requester who opened the donation request.
type Notification struct {
	To      string
	Subject string
	Text    string
}

// ForEvent renders the notification for a lifecycle event type. ok is false
// for event types that carry no email.
func ForEvent(eventType, requesterName, requesterEmail, donorName, bloodGroup string) (Notification, bool) {
	switch eventType {
	case "request.claimed":
		return Notification{
			To:      requesterEmail,
			Subject: "A donor accepted your blood donation request",
			Text: fmt.Sprintf(
				"Hi %s,\n\n%s has volunteered to donate %s blood for your request. They will be in touch to coordinate the donation.\n\n— BloodLink",
				requesterName, donorName, bloodGroup),
		}, true
	case "request.done":
		return Notification{
			To:      requesterEmail,
			Subject: "Your blood donation request was completed",
			Text: fmt.Sprintf(
				"Hi %s,\n\nYour %s donation request has been marked as done. We hope everything went well.\n\n— BloodLink",
				requesterName, bloodGroup),
		}, true
	case "request.canceled":
		return Notification{
			To:      requesterEmail,
			Subject: "Your blood donation request was canceled",
			Text: fmt.Sprintf(
				"Hi %s,\n\nYour %s donation request has been canceled.\n\n— BloodLink",
				requesterName, bloodGroup),
		}, true
	}
	return Notification{}, false
}
