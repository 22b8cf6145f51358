package onboarding

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techcorp/classified-doc-broker/internal/core/entity"
	"github.com/techcorp/classified-doc-broker/internal/core/port"
)

// fakeCloudAgent is a scriptable port.CloudAgentClient test double: each
// method can be told to fail, and DID/connection/credential state can be
// made to take N polls before reaching its terminal state, so tests can
// exercise both the happy path and each of the twelve steps' failure modes.
type fakeCloudAgent struct {
	port.CloudAgentClient

	failCreateConnection    bool
	failCreateDID           bool
	failPublishDID          bool
	failCreateCredentialOffer bool

	pollsUntilPublished int // GetDID reports Published=true once called more than this many times
	pollsUntilActive    int
	pollsUntilIssued    int

	getDIDCalls        int
	getConnectionCalls int
	getCredentialCalls int
}

func (f *fakeCloudAgent) CreateConnection(ctx context.Context, req *port.CreateConnectionRequest) (*port.ConnectionResult, error) {
	if f.failCreateConnection {
		return nil, errors.New("agent unreachable")
	}
	return &port.ConnectionResult{ConnectionID: "conn-1", State: "invitation"}, nil
}

func (f *fakeCloudAgent) CreateDID(ctx context.Context, method string) (*port.DIDResult, error) {
	if f.failCreateDID {
		return nil, errors.New("agent unreachable")
	}
	return &port.DIDResult{DID: "did:prism:employee-1"}, nil
}

func (f *fakeCloudAgent) PublishDID(ctx context.Context, did string) error {
	if f.failPublishDID {
		return errors.New("agent unreachable")
	}
	return nil
}

func (f *fakeCloudAgent) GetDID(ctx context.Context, did string) (*port.DIDResult, error) {
	f.getDIDCalls++
	return &port.DIDResult{DID: did, Published: f.getDIDCalls > f.pollsUntilPublished}, nil
}

func (f *fakeCloudAgent) GetConnection(ctx context.Context, connectionID string) (*port.ConnectionResult, error) {
	f.getConnectionCalls++
	state := "request"
	if f.getConnectionCalls > f.pollsUntilActive {
		state = "active"
	}
	return &port.ConnectionResult{ConnectionID: connectionID, State: state}, nil
}

func (f *fakeCloudAgent) CreateCredentialOffer(ctx context.Context, req *port.CreateCredentialOfferRequest) (*port.CredentialRecordResult, error) {
	if f.failCreateCredentialOffer {
		return nil, errors.New("agent unreachable")
	}
	return &port.CredentialRecordResult{CredentialExchangeID: "cred-1", State: "offer-sent"}, nil
}

func (f *fakeCloudAgent) GetCredentialRecord(ctx context.Context, credentialExchangeID string) (*port.CredentialRecordResult, error) {
	f.getCredentialCalls++
	state := "offer-sent"
	if f.getCredentialCalls > f.pollsUntilIssued {
		state = "credential-issued"
	}
	return &port.CredentialRecordResult{CredentialExchangeID: credentialExchangeID, State: state}, nil
}

func testAttrs() EmployeeRoleAttributes {
	return EmployeeRoleAttributes{
		EmployeeID: "emp-1",
		FullName:   "Jane Employee",
		Email:      "jane@techcorp.example",
		Role:       "IT",
		Department: "Infrastructure",
		PrismDID:   "did:prism:employee-1",
	}
}

// newTestOnboarder builds an Onboarder with an instant (non-sleeping) clock
// so polling loops in tests don't actually wait wall-clock time.
func newTestOnboarder(tenant, enterprise port.CloudAgentClient) *Onboarder {
	o := New(tenant, enterprise, ServiceConfiguration{EnterpriseAgentURL: "https://enterprise.example"}, time.Millisecond)
	o.sleep = func(ctx context.Context, d time.Duration) error { return nil }
	return o
}

// TestOnboarder_Onboard_HappyPath exercises all twelve steps and asserts the
// final Record carries the identifiers produced along the way.
func TestOnboarder_Onboard_HappyPath(t *testing.T) {
	tenant := &fakeCloudAgent{}
	enterprise := &fakeCloudAgent{}
	o := newTestOnboarder(tenant, enterprise)

	rec, err := o.Onboard(context.Background(), "emp-1", testAttrs())
	require.NoError(t, err)
	assert.Equal(t, "emp-1", rec.EmployeeID)
	assert.Equal(t, "did:prism:employee-1", rec.DID)
	assert.Len(t, rec.APISecretHex, 64)
	assert.Equal(t, "conn-1", rec.ConnectionID)
	assert.Equal(t, "cred-1", rec.CredentialExchangeID)
}

// TestOnboarder_Onboard_PollsThroughTransientStates covers the spec's
// poll-with-budget wording: DID publication, connection activation, and
// credential issuance each may take several polls before reaching their
// terminal state, and onboarding must keep polling rather than failing
// early.
func TestOnboarder_Onboard_PollsThroughTransientStates(t *testing.T) {
	tenant := &fakeCloudAgent{pollsUntilPublished: 3, pollsUntilActive: 2}
	enterprise := &fakeCloudAgent{pollsUntilActive: 2, pollsUntilIssued: 3}
	o := newTestOnboarder(tenant, enterprise)

	rec, err := o.Onboard(context.Background(), "emp-1", testAttrs())
	require.NoError(t, err)
	assert.NotEmpty(t, rec.DID)
}

// TestOnboarder_Onboard_AbortsOnFirstFailingStep covers each named Step: a
// failure at that step must abort immediately and report that exact Step,
// never a later one.
func TestOnboarder_Onboard_AbortsOnFirstFailingStep(t *testing.T) {
	tests := []struct {
		name       string
		tenant     *fakeCloudAgent
		enterprise *fakeCloudAgent
		wantStep   Step
	}{
		{"wallet create fails", &fakeCloudAgent{failCreateConnection: true}, &fakeCloudAgent{}, StepWalletCreate},
		{"DID create fails", &fakeCloudAgent{failCreateDID: true}, &fakeCloudAgent{}, StepCreateDID},
		{"DID publish fails", &fakeCloudAgent{failPublishDID: true}, &fakeCloudAgent{}, StepPublishDID},
		{"invitation create fails", &fakeCloudAgent{}, &fakeCloudAgent{failCreateConnection: true}, StepCreateInvitation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			o := newTestOnboarder(tt.tenant, tt.enterprise)
			_, err := o.Onboard(context.Background(), "emp-1", testAttrs())
			require.Error(t, err)
			var stepErr *StepError
			require.ErrorAs(t, err, &stepErr)
			assert.Equal(t, tt.wantStep, stepErr.Step)
			assert.ErrorIs(t, err, entity.ErrUpstream)
		})
	}
}

// TestOnboarder_Onboard_CreateCredentialOfferFails covers the step-10
// failure specifically, since it needs a connection to have already
// succeeded on the enterprise agent.
func TestOnboarder_Onboard_CreateCredentialOfferFails(t *testing.T) {
	enterprise := &fakeCloudAgent{failCreateCredentialOffer: true}
	o := newTestOnboarder(&fakeCloudAgent{}, enterprise)

	_, err := o.Onboard(context.Background(), "emp-1", testAttrs())
	require.Error(t, err)
	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, StepCreateCredentialOffer, stepErr.Step)
}

// TestOnboarder_Onboard_DIDPublicationBudgetExceeded covers spec.md §4.12's
// "poll publication (timeout 60s)" budget: a DID that never reports
// Published must abort step 6 rather than poll forever.
func TestOnboarder_Onboard_DIDPublicationBudgetExceeded(t *testing.T) {
	tenant := &fakeCloudAgent{pollsUntilPublished: 1 << 30}
	o := newTestOnboarder(tenant, &fakeCloudAgent{})

	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	calls := 0
	o.now = func() time.Time {
		calls++
		// advance past the budget on the second read so the loop terminates
		// without needing thousands of fake polls.
		if calls > 1 {
			return start.Add(DIDPublicationBudget + time.Second)
		}
		return start
	}

	_, err := o.Onboard(context.Background(), "emp-1", testAttrs())
	require.Error(t, err)
	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, StepPollPublication, stepErr.Step)
}

func TestOnboarder_Onboard_SleepContextCancellation(t *testing.T) {
	tenant := &fakeCloudAgent{pollsUntilPublished: 100}
	o := newTestOnboarder(tenant, &fakeCloudAgent{})
	o.sleep = func(ctx context.Context, d time.Duration) error { return context.Canceled }

	_, err := o.Onboard(context.Background(), "emp-1", testAttrs())
	require.Error(t, err)
	var stepErr *StepError
	require.ErrorAs(t, err, &stepErr)
	assert.Equal(t, StepPollPublication, stepErr.Step)
	assert.ErrorIs(t, err, context.Canceled)
}
