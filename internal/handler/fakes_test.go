package handler

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/evansachie/lifeguard/internal/healthtips"
	"github.com/evansachie/lifeguard/internal/model"
	"github.com/evansachie/lifeguard/internal/service"
	"github.com/evansachie/lifeguard/internal/voice"
)

type fakeMemos struct {
	memos   map[string]*model.Memo
	created []string
	err     error
}

func newFakeMemos() *fakeMemos {
	return &fakeMemos{memos: map[string]*model.Memo{}}
}

func (f *fakeMemos) List(_ context.Context, userID string) ([]*model.Memo, error) {
	var out []*model.Memo
	for _, m := range f.memos {
		if m.UserID == userID {
			out = append(out, m)
		}
	}
	return out, f.err
}

func (f *fakeMemos) CountUndone(_ context.Context, userID string) (int, error) {
	n := 0
	for _, m := range f.memos {
		if m.UserID == userID && !m.Done {
			n++
		}
	}
	return n, f.err
}

func (f *fakeMemos) Create(_ context.Context, userID, text string) (*model.Memo, error) {
	if f.err != nil {
		return nil, f.err
	}
	m := &model.Memo{ID: fmt.Sprintf("m%d", len(f.memos)+1), UserID: userID, Memo: text}
	f.memos[m.ID] = m
	f.created = append(f.created, text)
	return m, nil
}

func (f *fakeMemos) get(userID, id string) (*model.Memo, error) {
	m, ok := f.memos[id]
	if !ok || m.UserID != userID {
		return nil, service.ErrMemoNotFound
	}
	return m, nil
}

func (f *fakeMemos) UpdateText(_ context.Context, userID, id, text string) (*model.Memo, error) {
	m, err := f.get(userID, id)
	if err != nil {
		return nil, err
	}
	m.Memo = text
	return m, nil
}

func (f *fakeMemos) SetDone(_ context.Context, userID, id string, done bool) (*model.Memo, error) {
	m, err := f.get(userID, id)
	if err != nil {
		return nil, err
	}
	m.Done = done
	return m, nil
}

func (f *fakeMemos) Delete(_ context.Context, userID, id string) error {
	if _, err := f.get(userID, id); err != nil {
		return err
	}
	delete(f.memos, id)
	return nil
}

type fakeCalories struct {
	last service.CalorieInput
}

func (f *fakeCalories) Calculate(_ context.Context, _ string, in service.CalorieInput) (service.CalorieResult, error) {
	f.last = in
	return service.Calculate(in)
}

func (f *fakeCalories) History(context.Context, string) ([]*model.CalorieCalculation, error) {
	return []*model.CalorieCalculation{}, nil
}

type fakeContacts struct {
	created  []service.ContactInput
	alert    *service.AlertResult
	alertErr error
	verifyID string
	ackArgs  []string
	err      error
}

func (f *fakeContacts) List(context.Context, string) ([]*model.EmergencyContact, error) {
	return []*model.EmergencyContact{}, f.err
}

func (f *fakeContacts) Create(_ context.Context, userID string, in service.ContactInput) (*model.EmergencyContact, error) {
	if f.err != nil {
		return nil, f.err
	}
	f.created = append(f.created, in)
	return &model.EmergencyContact{ID: "c1", UserID: userID, Name: in.Name, Email: in.Email, Phone: in.Phone}, nil
}

func (f *fakeContacts) Update(_ context.Context, _, id string, in service.ContactInput) (*model.EmergencyContact, error) {
	if id != "c1" {
		return nil, service.ErrContactNotFound
	}
	return &model.EmergencyContact{ID: id, Name: in.Name}, f.err
}

func (f *fakeContacts) Delete(_ context.Context, _, id string) error {
	if id != "c1" {
		return service.ErrContactNotFound
	}
	return f.err
}

func (f *fakeContacts) Verify(_ context.Context, token string) (*model.EmergencyContact, error) {
	if token != "c1.secret" {
		return nil, service.ErrInvalidVerification
	}
	f.verifyID = "c1"
	return &model.EmergencyContact{ID: "c1", IsVerified: true}, nil
}

func (f *fakeContacts) SendTestAlert(_ context.Context, _, contactID string) (service.TestAlertResult, error) {
	if contactID != "c1" {
		return service.TestAlertResult{}, service.ErrContactNotFound
	}
	return service.TestAlertResult{Success: true, EmailSent: true}, nil
}

func (f *fakeContacts) RaiseAlert(context.Context, string, service.AlertInput) (*service.AlertResult, error) {
	return f.alert, f.alertErr
}

func (f *fakeContacts) Alerts(context.Context, string) ([]*model.EmergencyAlert, error) {
	return []*model.EmergencyAlert{}, f.err
}

func (f *fakeContacts) ResolveAlert(_ context.Context, _, alertID string) (*model.EmergencyAlert, error) {
	if alertID != "a1" {
		return nil, service.ErrAlertNotFound
	}
	return &model.EmergencyAlert{ID: alertID, Status: model.AlertStatusResolved}, nil
}

func (f *fakeContacts) Acknowledge(_ context.Context, alertID, contactID, sig string) error {
	if sig != "good" {
		return service.ErrInvalidAcknowledgement
	}
	f.ackArgs = []string{alertID, contactID}
	return nil
}

type fakePreferences struct {
	emergencyIn service.EmergencyUpdate
	notifyIn    service.NotificationUpdate
	testEmail   string
}

func (f *fakePreferences) Emergency(context.Context, string) (model.EmergencyPreferences, error) {
	return model.DefaultEmergencyPreferences(), nil
}

func (f *fakePreferences) UpdateEmergency(_ context.Context, _ string, in service.EmergencyUpdate) (model.EmergencyPreferences, error) {
	f.emergencyIn = in
	p := model.DefaultEmergencyPreferences()
	if in.SendToAmbulanceService != nil {
		p.SendToAmbulanceService = *in.SendToAmbulanceService
	}
	return p, nil
}

func (f *fakePreferences) Notifications(context.Context, string) (model.NotificationPreferences, error) {
	return model.DefaultNotificationPreferences(), nil
}

func (f *fakePreferences) UpdateNotifications(_ context.Context, _ string, in service.NotificationUpdate) (model.NotificationPreferences, error) {
	f.notifyIn = in
	if in.ReminderLeadTime != nil && (*in.ReminderLeadTime < 0 || *in.ReminderLeadTime > 1440) {
		return model.NotificationPreferences{}, service.ErrInvalidLeadTime
	}
	return model.DefaultNotificationPreferences(), nil
}

func (f *fakePreferences) SendTestNotification(_ context.Context, _, email, _ string) error {
	if email == "" {
		return service.ErrNoEmail
	}
	f.testEmail = email
	return nil
}

type fakeMedications struct {
	meds    []*model.Medication
	addIn   service.MedicationInput
	percent float64
	err     error
}

func (f *fakeMedications) List(context.Context, string) ([]*model.Medication, error) {
	return f.meds, f.err
}

func (f *fakeMedications) Add(_ context.Context, userID string, in service.MedicationInput) (*model.Medication, error) {
	f.addIn = in
	if f.err != nil {
		return nil, f.err
	}
	if in.Name == "" || len(in.Times) == 0 {
		return nil, service.ErrMissingFields
	}
	return &model.Medication{ID: "med1", UserID: userID, Name: in.Name, Times: in.Times, StartDate: in.StartDate, EndDate: in.EndDate, Active: true}, nil
}

func (f *fakeMedications) Update(_ context.Context, _, id string, in service.MedicationInput) (*model.Medication, error) {
	if id != "med1" {
		return nil, service.ErrMedicationNotFound
	}
	return &model.Medication{ID: id, Name: in.Name}, nil
}

func (f *fakeMedications) Delete(_ context.Context, _, id string) (*model.Medication, error) {
	if id != "med1" {
		return nil, service.ErrMedicationNotFound
	}
	return &model.Medication{ID: id}, nil
}

func (f *fakeMedications) Track(_ context.Context, userID string, in service.TrackInput) (*model.MedicationTracking, error) {
	if in.MedicationID == "" || in.ScheduledTime == "" {
		return nil, service.ErrMissingFields
	}
	return &model.MedicationTracking{UserID: userID, MedicationID: in.MedicationID, ScheduledTime: in.ScheduledTime, Taken: in.Taken}, nil
}

func (f *fakeMedications) Compliance(context.Context, string) (float64, error) {
	return f.percent, f.err
}

type fakeHealthData struct {
	latest  service.LatestMetrics
	reading *model.SensorReading
	saved   *model.SensorReading
}

func (f *fakeHealthData) Latest(context.Context, string) (service.LatestMetrics, error) {
	return f.latest, nil
}

func (f *fakeHealthData) Save(_ context.Context, m *model.HealthMetric) (*model.HealthMetric, error) {
	if m.Age <= 0 {
		return nil, service.ErrInvalidInput
	}
	return m, nil
}

func (f *fakeHealthData) History(context.Context, string) ([]*model.HealthMetric, error) {
	return []*model.HealthMetric{}, nil
}

func (f *fakeHealthData) RecordReading(_ context.Context, r *model.SensorReading) (*model.SensorReading, error) {
	if !r.HasVitals() {
		return nil, service.ErrNoVitals
	}
	f.saved = r
	return r, nil
}

func (f *fakeHealthData) LatestReading(context.Context, string) (*model.SensorReading, error) {
	return f.reading, nil
}

type fakeTips struct {
	topicsErr error
	topicErr  error
}

func (f *fakeTips) Tips(context.Context) healthtips.Response {
	return healthtips.Response{Tips: []healthtips.Tip{{ID: "myhealthfinder-1", Title: "Walk"}}}
}

func (f *fakeTips) Topics(context.Context) (json.RawMessage, error) {
	if f.topicsErr != nil {
		return nil, f.topicsErr
	}
	return json.RawMessage(`{"Result":{"Items":{"Item":[]}}}`), nil
}

func (f *fakeTips) Topic(_ context.Context, id string) (healthtips.Tip, error) {
	if f.topicErr != nil {
		return healthtips.Tip{}, f.topicErr
	}
	return healthtips.Tip{ID: "myhealthfinder-" + id}, nil
}

type fakeVoice struct {
	parser    *voice.Parser
	emergency service.EmergencyDetails
	err       error
}

func (f *fakeVoice) Commands() []voice.Command {
	return f.parser.Commands()
}

func (f *fakeVoice) Process(_ context.Context, _, command string, clientCtx map[string]any) (*service.VoiceResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	res, err := f.parser.Process(command, clientCtx)
	if err != nil {
		return nil, err
	}
	return &service.VoiceResponse{Result: res, Execution: []service.Execution{}}, nil
}

func (f *fakeVoice) ProcessEmergency(_ context.Context, _, command string, in service.EmergencyDetails) (*service.VoiceResponse, error) {
	f.emergency = in
	res, err := f.parser.ProcessEmergency(command, nil)
	if err != nil {
		return nil, err
	}
	return &service.VoiceResponse{Result: res, Execution: []service.Execution{{Action: "emergency_alert", Success: true}}}, nil
}
