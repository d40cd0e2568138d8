package notify

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"net/url"
	"strings"
	"time"

	"github.com/evansachie/lifeguard/internal/model"
)

//go:embed templates/*.html
var templateFS embed.FS

// Placeholders used when the alert payload or user record is incomplete.
const (
	DefaultEmergencyMessage = "Emergency alert triggered"
	DefaultLocation         = "Location not available"
	DefaultPhone            = "Not provided"
	DefaultMedicalInfo      = "No medical information provided"
	DefaultContactName      = "Emergency Contact"
)

// LogoURL is the image shown at the top of every email.
const LogoURL = "https://res.cloudinary.com/dat7slh1u/image/upload/v1740908768/logo_moe3jm.png"

// Subjects of the emails sent by the API.
const (
	SubjectTestAlert        = "Test Alert - LifeGuard Emergency Contact System"
	SubjectReminder         = "Medication Reminder"
	SubjectTestNotification = "LifeGuard Test Notification"
)

// Page carries the fields shared by every email layout.
type Page struct {
	Title string
	Logo  string
	Year  int
}

// EmergencyEmail is the data rendered into an emergency alert email.
type EmergencyEmail struct {
	Page
	To           string
	ContactName  string
	UserName     string
	UserPhone    string
	Message      string
	Location     string
	MedicalInfo  string
	TrackingLink string
}

type verificationEmail struct {
	Page
	ContactName      string
	UserName         string
	VerificationLink string
}

type testAlertEmail struct {
	Page
	ContactName string
	UserName    string
}

type reminderEmail struct {
	Page
	Name   string
	Dosage string
	Time   string
	Notes  string
}

type testNotificationEmail struct {
	Page
	UserName string
	LeadTime int
}

// Renderer turns notification data into email messages.
type Renderer struct {
	templates map[string]*template.Template
	now       func() time.Time
}

// NewRenderer parses the embedded email templates.
func NewRenderer() (*Renderer, error) {
	names := []string{"verification", "emergency", "test_alert", "reminder", "test_notification"}
	r := &Renderer{templates: make(map[string]*template.Template, len(names)), now: time.Now}
	for _, name := range names {
		tmpl, err := template.ParseFS(templateFS, "templates/layout.html", "templates/"+name+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s template: %w", name, err)
		}
		r.templates[name] = tmpl
	}
	return r, nil
}

// MustNewRenderer is NewRenderer that panics on a template error.
func MustNewRenderer() *Renderer {
	r, err := NewRenderer()
	if err != nil {
		panic(err)
	}
	return r
}

func (r *Renderer) page(title string) Page {
	return Page{Title: title, Logo: LogoURL, Year: r.now().Year()}
}

func (r *Renderer) render(name string, data any) (string, error) {
	tmpl, ok := r.templates[name]
	if !ok {
		return "", fmt.Errorf("unknown template %q", name)
	}
	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, name+".html", data); err != nil {
		return "", fmt.Errorf("render %s template: %w", name, err)
	}
	return buf.String(), nil
}

// Verification renders the email asking a new contact to confirm.
func (r *Renderer) Verification(to, contactName, userName, link string) (Message, error) {
	if contactName == "" {
		contactName = DefaultContactName
	}
	subject := fmt.Sprintf("%s added you as an emergency contact on LifeGuard", userName)
	html, err := r.render("verification", verificationEmail{
		Page:             r.page(subject),
		ContactName:      contactName,
		UserName:         userName,
		VerificationLink: link,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		ToName:  contactName,
		Subject: subject,
		HTML:    html,
		Text:    fmt.Sprintf("%s added you as an emergency contact on LifeGuard. Verify: %s", userName, link),
	}, nil
}

// Emergency renders an emergency alert email. Empty fields get placeholders.
func (r *Renderer) Emergency(data EmergencyEmail) (Message, error) {
	if data.ContactName == "" {
		data.ContactName = DefaultContactName
	}
	if data.UserPhone == "" {
		data.UserPhone = DefaultPhone
	}
	if data.Message == "" {
		data.Message = DefaultEmergencyMessage
	}
	if data.Location == "" {
		data.Location = DefaultLocation
	}
	if data.MedicalInfo == "" {
		data.MedicalInfo = DefaultMedicalInfo
	}
	subject := "EMERGENCY ALERT from " + data.UserName
	data.Page = r.page(subject)

	html, err := r.render("emergency", data)
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:       data.To,
		ToName:   data.ContactName,
		Subject:  subject,
		HTML:     html,
		Text:     EmergencySMS(data.UserName, data.Message, data.Location) + "\n" + data.TrackingLink,
		Priority: true,
	}, nil
}

// TestAlert renders the test email sent to a single contact.
func (r *Renderer) TestAlert(to, contactName, userName string) (Message, error) {
	if contactName == "" {
		contactName = DefaultContactName
	}
	html, err := r.render("test_alert", testAlertEmail{
		Page:        r.page(SubjectTestAlert),
		ContactName: contactName,
		UserName:    userName,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		ToName:  contactName,
		Subject: SubjectTestAlert,
		HTML:    html,
		Text:    TestAlertSMS(userName),
	}, nil
}

// Reminder renders a medication reminder from a queued delivery.
func (r *Renderer) Reminder(d *model.ReminderDelivery) (Message, error) {
	html, err := r.render("reminder", reminderEmail{
		Page:   r.page(SubjectReminder),
		Name:   d.MedicationName,
		Dosage: d.Dosage,
		Time:   d.DoseTime,
		Notes:  d.Notes,
	})
	if err != nil {
		return Message{}, err
	}

	var text strings.Builder
	fmt.Fprintf(&text, "It's time to take your medication.\nMedication: %s\nDosage: %s\nTime: %s\n", d.MedicationName, d.Dosage, d.DoseTime)
	if d.Notes != "" {
		fmt.Fprintf(&text, "Notes: %s\n", d.Notes)
	}

	return Message{
		To:      d.Recipient,
		Subject: SubjectReminder,
		HTML:    html,
		Text:    text.String(),
	}, nil
}

// TestNotification renders the email confirming reminder delivery works.
func (r *Renderer) TestNotification(to, userName string, leadTime int) (Message, error) {
	if userName == "" {
		userName = "there"
	}
	html, err := r.render("test_notification", testNotificationEmail{
		Page:     r.page(SubjectTestNotification),
		UserName: userName,
		LeadTime: leadTime,
	})
	if err != nil {
		return Message{}, err
	}
	return Message{
		To:      to,
		Subject: SubjectTestNotification,
		HTML:    html,
		Text:    fmt.Sprintf("This is a test notification from LifeGuard. Reminders arrive %d minutes before each dose.", leadTime),
	}, nil
}

// VerificationLink builds the frontend URL a contact follows to verify.
func VerificationLink(frontendURL, token string) string {
	return strings.TrimRight(frontendURL, "/") + "/verify-emergency-contact?token=" + url.QueryEscape(token)
}

// TrackingLink builds the signed acknowledgement URL sent with an alert.
func TrackingLink(frontendURL, alertID, contactID, sig string) string {
	q := url.Values{}
	q.Set("alert", alertID)
	q.Set("contact", contactID)
	q.Set("sig", sig)
	return strings.TrimRight(frontendURL, "/") + "/emergency-tracking?" + q.Encode()
}
