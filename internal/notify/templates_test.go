package notify

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evansachie/lifeguard/internal/model"
)

func newTestRenderer(t *testing.T) *Renderer {
	t.Helper()
	r, err := NewRenderer()
	require.NoError(t, err)
	r.now = func() time.Time { return time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC) }
	return r
}

func TestRenderer_Emergency(t *testing.T) {
	r := newTestRenderer(t)

	msg, err := r.Emergency(EmergencyEmail{
		To:           "kofi@example.com",
		ContactName:  "Kofi",
		UserName:     "Ama Mensah",
		Message:      "Fell down <stairs>",
		TrackingLink: "https://app.example/emergency-tracking?alert=a&contact=c&sig=s",
	})
	require.NoError(t, err)

	assert.Equal(t, "EMERGENCY ALERT from Ama Mensah", msg.Subject)
	assert.Equal(t, "kofi@example.com", msg.To)
	assert.True(t, msg.Priority)
	assert.Contains(t, msg.HTML, "Fell down &lt;stairs&gt;")
	assert.Contains(t, msg.HTML, DefaultLocation)
	assert.Contains(t, msg.HTML, DefaultPhone)
	assert.Contains(t, msg.HTML, DefaultMedicalInfo)
	assert.Contains(t, msg.HTML, "2025")
	assert.Contains(t, msg.Text, "emergency-tracking")
}

func TestRenderer_TestAlert(t *testing.T) {
	r := newTestRenderer(t)

	msg, err := r.TestAlert("kofi@example.com", "", "Ama")
	require.NoError(t, err)

	assert.Equal(t, SubjectTestAlert, msg.Subject)
	assert.Equal(t, DefaultContactName, msg.ToName)
	assert.Contains(t, msg.HTML, "Ama")
	assert.False(t, msg.Priority)
}

func TestRenderer_Reminder(t *testing.T) {
	r := newTestRenderer(t)

	d := &model.ReminderDelivery{
		Recipient:      "ama@example.com",
		MedicationName: "Metformin",
		Dosage:         "500mg",
		DoseTime:       "08:00",
	}
	msg, err := r.Reminder(d)
	require.NoError(t, err)

	assert.Equal(t, SubjectReminder, msg.Subject)
	assert.Equal(t, "ama@example.com", msg.To)
	assert.Contains(t, msg.HTML, "Metformin")
	assert.Contains(t, msg.HTML, "500mg")
	assert.NotContains(t, msg.HTML, "Notes:")

	d.Notes = "Take with food"
	msg, err = r.Reminder(d)
	require.NoError(t, err)
	assert.Contains(t, msg.HTML, "Take with food")
	assert.Contains(t, msg.Text, "Notes: Take with food")
}

func TestRenderer_Verification(t *testing.T) {
	r := newTestRenderer(t)

	link := VerificationLink("https://app.example/", "01HX.abc")
	assert.Equal(t, "https://app.example/verify-emergency-contact?token=01HX.abc", link)

	msg, err := r.Verification("kofi@example.com", "Kofi", "Ama", link)
	require.NoError(t, err)
	assert.Equal(t, "Ama added you as an emergency contact on LifeGuard", msg.Subject)
	assert.Contains(t, msg.HTML, "verify-emergency-contact")
}

func TestRenderer_TestNotification(t *testing.T) {
	r := newTestRenderer(t)

	msg, err := r.TestNotification("ama@example.com", "", 15)
	require.NoError(t, err)
	assert.Equal(t, SubjectTestNotification, msg.Subject)
	assert.Contains(t, msg.HTML, "15 minutes")
}

func TestTrackingLink(t *testing.T) {
	link := TrackingLink("https://app.example", "alert1", "contact1", "deadbeef")
	assert.True(t, strings.HasPrefix(link, "https://app.example/emergency-tracking?"))
	assert.Contains(t, link, "alert=alert1")
	assert.Contains(t, link, "contact=contact1")
	assert.Contains(t, link, "sig=deadbeef")
}

func TestSMSText(t *testing.T) {
	text := EmergencySMS("", "", "")
	assert.Contains(t, text, "EMERGENCY ALERT from a LifeGuard user")
	assert.Contains(t, text, DefaultEmergencyMessage)
	assert.Contains(t, text, "Location: "+DefaultLocation)

	text = TestAlertSMS("Ama")
	assert.Contains(t, text, "TEST ALERT from LifeGuard")
	assert.Contains(t, text, "verify that Ama can reach you")
}
