package service

import (
	"context"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/evansachie/lifeguard/internal/auth"
	"github.com/evansachie/lifeguard/internal/metrics"
	"github.com/evansachie/lifeguard/internal/model"
	"github.com/evansachie/lifeguard/internal/notify"
)

const testFrontend = "https://app.example"

type contactEnv struct {
	store    *fakeStore
	mailer   *fakeMailer
	sms      *fakeSMS
	signer   *auth.LinkSigner
	recorder *metrics.InMemoryRecorder
	svc      *ContactService
}

func newContactEnv(t *testing.T, ambulance string) *contactEnv {
	t.Helper()
	env := &contactEnv{
		store:    newFakeStore(),
		mailer:   &fakeMailer{failFor: map[string]bool{}},
		sms:      &fakeSMS{failFor: map[string]bool{}},
		signer:   auth.NewLinkSigner("alert-secret"),
		recorder: metrics.NewInMemory(),
	}
	env.store.users["u1"] = &model.User{ID: "u1", FirstName: "Ama", LastName: "Mensah", Phone: "+233200000000", MedicalInfo: "Asthma"}
	env.svc = NewContactService(
		env.store,
		env.mailer,
		env.sms,
		notify.MustNewRenderer(),
		env.signer,
		ContactOptions{FrontendURL: testFrontend, AmbulanceNumber: ambulance},
		testLogger(),
		env.recorder,
	)
	return env
}

func (e *contactEnv) addContact(t *testing.T, name, email, phone string, priority int) *model.EmergencyContact {
	t.Helper()
	c, err := e.svc.Create(context.Background(), "u1", ContactInput{Name: name, Email: email, Phone: phone, Priority: priority})
	require.NoError(t, err)
	return c
}

// verificationToken pulls the token out of the last verification email.
func verificationToken(t *testing.T, m *fakeMailer) string {
	t.Helper()
	sent := m.messages()
	require.NotEmpty(t, sent)
	_, link, ok := strings.Cut(sent[len(sent)-1].Text, "Verify: ")
	require.True(t, ok, "verification text carries the link")
	u, err := url.Parse(link)
	require.NoError(t, err)
	return u.Query().Get("token")
}

func TestContactService_CreateSendsVerification(t *testing.T) {
	env := newContactEnv(t, "")

	c := env.addContact(t, "Kofi", "kofi@example.com", "+233111", 0)
	assert.Equal(t, 1, c.Priority, "priority defaults to 1")
	assert.Equal(t, model.DefaultContactRole, c.Role)
	assert.NotEmpty(t, c.VerificationTokenHash)

	sent := env.mailer.messages()
	require.Len(t, sent, 1)
	assert.Equal(t, "kofi@example.com", sent[0].To)
	assert.Equal(t, "Ama Mensah added you as an emergency contact on LifeGuard", sent[0].Subject)
	assert.Contains(t, sent[0].Text, testFrontend+"/verify-emergency-contact?token=")
}

func TestContactService_CreateSurvivesEmailFailure(t *testing.T) {
	env := newContactEnv(t, "")
	env.mailer.failFor["kofi@example.com"] = true

	c, err := env.svc.Create(context.Background(), "u1", ContactInput{Name: "Kofi", Email: "kofi@example.com", Phone: "+233111"})
	require.NoError(t, err)
	assert.Contains(t, env.store.contacts, c.ID)
}

func TestContactService_CreateValidation(t *testing.T) {
	env := newContactEnv(t, "")
	ctx := context.Background()

	_, err := env.svc.Create(ctx, "u1", ContactInput{Email: "a@example.com", Phone: "1"})
	assert.ErrorIs(t, err, ErrMissingFields)

	_, err = env.svc.Create(ctx, "u1", ContactInput{Name: "A", Email: "not-an-email", Phone: "1"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestContactService_Verify(t *testing.T) {
	env := newContactEnv(t, "")
	ctx := context.Background()
	c := env.addContact(t, "Kofi", "kofi@example.com", "+233111", 1)
	token := verificationToken(t, env.mailer)

	verified, err := env.svc.Verify(ctx, token)
	require.NoError(t, err)
	assert.True(t, verified.IsVerified)
	assert.NotNil(t, verified.VerifiedAt)
	assert.True(t, env.store.contacts[c.ID].IsVerified)

	// A second click on the same link is still a success.
	_, err = env.svc.Verify(ctx, token)
	assert.NoError(t, err)
}

func TestContactService_VerifyRejectsBadTokens(t *testing.T) {
	env := newContactEnv(t, "")
	ctx := context.Background()
	c := env.addContact(t, "Kofi", "kofi@example.com", "+233111", 1)

	_, err := env.svc.Verify(ctx, "garbage")
	assert.ErrorIs(t, err, ErrInvalidVerification)

	forged := c.ID + "." + strings.Repeat("0", auth.VerificationSecretLen)
	_, err = env.svc.Verify(ctx, forged)
	assert.ErrorIs(t, err, ErrInvalidVerification)

	unknown := "01ARZ3NDEKTSV4RRFFQ69G5FAV." + strings.Repeat("a", auth.VerificationSecretLen)
	_, err = env.svc.Verify(ctx, unknown)
	assert.ErrorIs(t, err, ErrContactNotFound)
}

func TestContactService_VerifiedContactStillChecksToken(t *testing.T) {
	env := newContactEnv(t, "")
	ctx := context.Background()
	c := env.addContact(t, "Kofi", "kofi@example.com", "+233111", 1)
	token := verificationToken(t, env.mailer)

	_, err := env.svc.Verify(ctx, token)
	require.NoError(t, err)
	verifiedAt := env.store.contacts[c.ID].VerifiedAt

	forged := c.ID + "." + strings.Repeat("f", auth.VerificationSecretLen)
	got, err := env.svc.Verify(ctx, forged)
	assert.ErrorIs(t, err, ErrInvalidVerification)
	assert.Nil(t, got)

	again, err := env.svc.Verify(ctx, token)
	require.NoError(t, err)
	assert.Equal(t, verifiedAt, again.VerifiedAt)
}

func TestContactService_UpdateEmailResetsVerification(t *testing.T) {
	env := newContactEnv(t, "")
	ctx := context.Background()
	c := env.addContact(t, "Kofi", "kofi@example.com", "+233111", 1)
	_, err := env.svc.Verify(ctx, verificationToken(t, env.mailer))
	require.NoError(t, err)

	same, err := env.svc.Update(ctx, "u1", c.ID, ContactInput{Name: "Kofi A.", Email: "KOFI@example.com", Phone: "+233111"})
	require.NoError(t, err)
	assert.True(t, same.IsVerified, "case-only change keeps verification")

	moved, err := env.svc.Update(ctx, "u1", c.ID, ContactInput{Name: "Kofi", Email: "kofi@new.example", Phone: "+233111"})
	require.NoError(t, err)
	assert.False(t, moved.IsVerified)
	assert.Len(t, env.mailer.messages(), 2, "a new verification email goes to the new address")
	assert.Equal(t, "kofi@new.example", env.mailer.messages()[1].To)

	_, err = env.svc.Update(ctx, "u2", c.ID, ContactInput{Name: "X", Email: "x@example.com", Phone: "1"})
	assert.ErrorIs(t, err, ErrContactNotFound)
}

func TestContactService_Delete(t *testing.T) {
	env := newContactEnv(t, "")
	c := env.addContact(t, "Kofi", "kofi@example.com", "+233111", 1)

	require.NoError(t, env.svc.Delete(context.Background(), "u1", c.ID))
	assert.ErrorIs(t, env.svc.Delete(context.Background(), "u1", c.ID), ErrContactNotFound)
}

func TestContactService_SendTestAlert(t *testing.T) {
	env := newContactEnv(t, "")
	c := env.addContact(t, "Kofi", "kofi@example.com", "+233111", 1)
	env.sms.failFor["+233111"] = true

	res, err := env.svc.SendTestAlert(context.Background(), "u1", c.ID)
	require.NoError(t, err)
	assert.Equal(t, TestAlertResult{Success: true, EmailSent: true, SMSSent: false}, res)

	last := env.mailer.messages()[len(env.mailer.messages())-1]
	assert.Equal(t, notify.SubjectTestAlert, last.Subject)

	_, err = env.svc.SendTestAlert(context.Background(), "u1", "missing")
	assert.ErrorIs(t, err, ErrContactNotFound)
}
