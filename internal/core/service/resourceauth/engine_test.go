package resourceauth

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/techcorp/classified-doc-broker/internal/core/entity"
	"github.com/techcorp/classified-doc-broker/internal/core/service/policy"
)

type fakePendingStore struct {
	byID map[string]*entity.PendingResourceAuthorization
}

func newFakePendingStore() *fakePendingStore {
	return &fakePendingStore{byID: make(map[string]*entity.PendingResourceAuthorization)}
}

func (f *fakePendingStore) Put(ctx context.Context, p *entity.PendingResourceAuthorization) error {
	f.byID[p.SessionID] = p
	return nil
}

func (f *fakePendingStore) Get(ctx context.Context, sessionID string) (*entity.PendingResourceAuthorization, error) {
	p, ok := f.byID[sessionID]
	if !ok {
		return nil, entity.ErrPendingResourceAuthNotFound
	}
	return p, nil
}

func (f *fakePendingStore) Delete(ctx context.Context, sessionID string) error {
	delete(f.byID, sessionID)
	return nil
}

func (f *fakePendingStore) All(ctx context.Context) []*entity.PendingResourceAuthorization {
	out := make([]*entity.PendingResourceAuthorization, 0, len(f.byID))
	for _, p := range f.byID {
		out = append(out, p)
	}
	return out
}

func infrastructurePlansPolicy() entity.ResourcePolicy {
	return entity.ResourcePolicy{
		ResourceID:        "infrastructure-plans",
		RequiredClearance: entity.ClassificationTopSecret,
		RequiredRole:      "IT",
	}
}

func newVerifiedPending(resource entity.ResourcePolicy, role, department string, clearance entity.ClassificationLevel) *entity.PendingResourceAuthorization {
	return &entity.PendingResourceAuthorization{
		SessionID:            "session-1",
		ResourceID:           resource.ResourceID,
		Resource:             resource,
		EnterpriseVPVerified: true,
		EnterpriseVPClaims:   &entity.VPClaims{Role: role, Department: department},
		PersonalVPVerified:   true,
		PersonalVPClaims:     &entity.VPClaims{ClearanceLevel: clearance},
		Status:               entity.ResourceAuthAwaitingPersonalVP,
		ExpiresAt:             time.Now().Add(time.Hour),
	}
}

// TestEngine_Verify_DualVP covers spec.md §8 S5: insufficient clearance must
// deny with the exact "Insufficient clearance: X < Y" wording, and a
// follow-up run with sufficient clearance must authorize.
func TestEngine_Verify_DualVP(t *testing.T) {
	ctx := context.Background()
	resource := infrastructurePlansPolicy()

	policyEngine := policy.New()
	require.NoError(t, policyEngine.Compile([]entity.ResourcePolicy{resource}))

	pending := newFakePendingStore()
	e := New(nil, nil, nil, policyEngine, pending)

	require.NoError(t, pending.Put(ctx, newVerifiedPending(resource, "IT", "IT", entity.ClassificationRestricted)))
	result, err := e.Verify(ctx, "session-1")
	require.NoError(t, err)
	assert.False(t, result.Authorized)
	assert.Equal(t, "Insufficient clearance: RESTRICTED < TOP-SECRET", result.Reason)

	require.NoError(t, pending.Put(ctx, newVerifiedPending(resource, "IT", "IT", entity.ClassificationTopSecret)))
	result, err = e.Verify(ctx, "session-1")
	require.NoError(t, err)
	assert.True(t, result.Authorized)
}

func TestEngine_Verify_RequiresBothPresentationsVerified(t *testing.T) {
	ctx := context.Background()
	resource := infrastructurePlansPolicy()

	policyEngine := policy.New()
	require.NoError(t, policyEngine.Compile([]entity.ResourcePolicy{resource}))

	pending := newFakePendingStore()
	e := New(nil, nil, nil, policyEngine, pending)

	p := newVerifiedPending(resource, "IT", "IT", entity.ClassificationTopSecret)
	p.PersonalVPVerified = false
	require.NoError(t, pending.Put(ctx, p))

	_, err := e.Verify(ctx, "session-1")
	assert.ErrorIs(t, err, entity.ErrInputInvalid)
}
