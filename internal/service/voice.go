package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/evansachie/lifeguard/internal/metrics"
	"github.com/evansachie/lifeguard/internal/voice"
)

// voiceAlertMessage is the alert text used when a spoken command raises it.
const voiceAlertMessage = "Emergency alert triggered via voice command"

// alertRaiser is the slice of ContactService the voice router needs.
type alertRaiser interface {
	RaiseAlert(ctx context.Context, userID string, in AlertInput) (*AlertResult, error)
}

// Execution is the outcome of one voice action.
type Execution struct {
	Action  string `json:"action"`
	Success bool   `json:"success"`
	Result  any    `json:"result,omitempty"`
	Error   string `json:"error,omitempty"`
}

// VoiceResponse is a parsed command with its executed actions.
type VoiceResponse struct {
	*voice.Result
	Execution []Execution `json:"execution"`
}

// EmergencyDetails is the extra data sent with a spoken emergency.
type EmergencyDetails struct {
	Location    string
	MedicalInfo string
}

// VoiceService parses spoken commands and runs the resulting actions.
type VoiceService struct {
	parser      *voice.Parser
	alerts      alertRaiser
	contacts    ContactStore
	health      *HealthService
	medications *MedicationService
	logger      *slog.Logger
	metrics     metrics.Recorder
}

// NewVoiceService creates a new VoiceService.
func NewVoiceService(
	parser *voice.Parser,
	alerts alertRaiser,
	contacts ContactStore,
	health *HealthService,
	medications *MedicationService,
	logger *slog.Logger,
	recorder metrics.Recorder,
) *VoiceService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &VoiceService{
		parser:      parser,
		alerts:      alerts,
		contacts:    contacts,
		health:      health,
		medications: medications,
		logger:      logger,
		metrics:     recorder,
	}
}

// Commands lists the command catalogue.
func (s *VoiceService) Commands() []voice.Command {
	return s.parser.Commands()
}

// Process parses command and executes every action it produced.
func (s *VoiceService) Process(ctx context.Context, userID, command string, clientCtx map[string]any) (*VoiceResponse, error) {
	res, err := s.parser.Process(command, s.buildContext(ctx, userID, clientCtx))
	if err != nil {
		return nil, err
	}
	s.metrics.IncVoiceCommand(res.Intent)
	s.logger.Info("voice_command_processed", "user_id", userID, "intent", res.Intent, "confidence", res.Confidence)

	location, _ := res.Context["location"].(string)
	// The emergency pattern lists send_alert twice; contacts are alerted once
	// and the repeat reports the same outcome.
	var alerted *Execution
	execution := make([]Execution, 0, len(res.Actions))
	for _, a := range res.Actions {
		if a.Type == voice.ActionSendAlert && alerted != nil {
			execution = append(execution, *alerted)
			continue
		}
		exec := s.execute(ctx, userID, a, location)
		if a.Type == voice.ActionSendAlert {
			alerted = &exec
		}
		execution = append(execution, exec)
	}
	return &VoiceResponse{Result: res, Execution: execution}, nil
}

// ProcessEmergency parses command as an emergency and always raises an
// alert, whatever the command said.
func (s *VoiceService) ProcessEmergency(ctx context.Context, userID, command string, in EmergencyDetails) (*VoiceResponse, error) {
	res, err := s.parser.ProcessEmergency(command, s.buildContext(ctx, userID, nil))
	if err != nil {
		return nil, err
	}
	s.metrics.IncVoiceCommand(res.Intent)
	s.logger.Warn("voice_emergency_processed", "user_id", userID, "intent", res.Intent)

	exec := s.raise(ctx, userID, AlertInput{
		Message:     voiceAlertMessage,
		Location:    in.Location,
		MedicalInfo: in.MedicalInfo,
	})
	exec.Action = "emergency_alert"
	return &VoiceResponse{Result: res, Execution: []Execution{exec}}, nil
}

func (s *VoiceService) execute(ctx context.Context, userID string, a voice.Action, location string) Execution {
	switch a.Type {
	case voice.ActionSendAlert:
		exec := s.raise(ctx, userID, AlertInput{Message: voiceAlertMessage, Location: location})
		exec.Action = a.Type
		return exec

	case voice.ActionGetSensorData:
		reading, err := s.health.LatestReading(ctx, userID)
		if err != nil {
			return failed(a.Type, err)
		}
		return Execution{Action: a.Type, Success: true, Result: map[string]any{
			"success": true,
			"data":    reading,
			"message": "Sensor data retrieved",
		}}

	case voice.ActionGetLocation:
		return Execution{Action: a.Type, Success: true, Result: map[string]any{
			"success": true,
			"message": "Location request sent to client",
			"action":  "request_location",
		}}

	case voice.ActionConnectDevice:
		return Execution{Action: a.Type, Success: true, Result: map[string]any{
			"success": true,
			"message": "Device connection initiated",
			"action":  "connect_ble_device",
		}}

	case voice.ActionDisconnectDevice:
		return Execution{Action: a.Type, Success: true, Result: map[string]any{
			"success": true,
			"message": "Device disconnection initiated",
			"action":  "disconnect_ble_device",
		}}

	case voice.ActionShowMedications:
		meds, err := s.medications.List(ctx, userID)
		if err != nil {
			return failed(a.Type, err)
		}
		return Execution{Action: a.Type, Success: true, Result: map[string]any{
			"success":     true,
			"medications": meds,
			"count":       len(meds),
		}}

	case voice.ActionNavigateTo:
		return Execution{Action: a.Type, Success: true, Result: map[string]any{
			"success": true,
			"message": fmt.Sprintf("Navigation to %s initiated", a.Target),
			"target":  a.Target,
		}}
	}

	return Execution{Action: a.Type, Success: false, Result: map[string]any{
		"success": false,
		"message": "Unknown action type",
	}}
}

func (s *VoiceService) raise(ctx context.Context, userID string, in AlertInput) Execution {
	res, err := s.alerts.RaiseAlert(ctx, userID, in)
	if errors.Is(err, ErrNoEmergencyContacts) {
		return Execution{Success: false, Result: map[string]any{
			"success": false,
			"message": "No emergency contacts found",
		}}
	}
	if err != nil {
		s.logger.Error("voice_alert_failed", "user_id", userID, "error", err)
		return Execution{Success: false, Error: "failed to send emergency alert"}
	}
	return Execution{Success: res.Success, Result: res}
}

// buildContext layers the user's own data over the client context, so the
// user, emergencyContacts and medications keys always come from storage.
// Lookup failures leave the client's value for that key in place.
func (s *VoiceService) buildContext(ctx context.Context, userID string, clientCtx map[string]any) map[string]any {
	out := make(map[string]any, len(clientCtx)+3)
	for k, v := range clientCtx {
		out[k] = v
	}

	if user, err := s.contacts.GetUserByID(ctx, userID); err == nil {
		out["user"] = map[string]any{"name": user.DisplayName(), "email": user.Email}
	}
	if contacts, err := s.contacts.ListContacts(ctx, userID); err == nil {
		list := make([]map[string]any, 0, len(contacts))
		for _, c := range contacts {
			list = append(list, map[string]any{"name": c.Name, "phone": c.Phone, "email": c.Email})
		}
		out["emergencyContacts"] = list
	}
	if meds, err := s.medications.List(ctx, userID); err == nil {
		names := make([]string, 0, len(meds))
		for _, m := range meds {
			names = append(names, m.Name)
		}
		out["medications"] = names
	}
	return out
}

func failed(action string, err error) Execution {
	return Execution{Action: action, Success: false, Error: err.Error()}
}
