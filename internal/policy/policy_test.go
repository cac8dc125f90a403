package policy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/piisec/piisec-go/internal/detect"
)

var somePII = []detect.Entity{{Label: "SSN", Start: 0, End: 11, Score: 1.0}}

func TestPolicy_Evaluate(t *testing.T) {
	policy, err := New(DefaultRules(), NewPermitList([]string{
		"records@hospital.example",
		"*@clinic.example",
	}))
	require.NoError(t, err)

	tests := []struct {
		name       string
		req        Request
		wantAction Action
		wantReason string
	}{
		{
			name:       "insecure transport blocks before anything else",
			req:        Request{Recipient: "records@hospital.example", TransportSecure: false, Entities: somePII},
			wantAction: ActionBlock,
			wantReason: ReasonInsecureTransport,
		},
		{
			name:       "pii to unpermitted recipient redacts",
			req:        Request{Recipient: "stranger@elsewhere.example", TransportSecure: true, Entities: somePII},
			wantAction: ActionRedact,
			wantReason: ReasonRestrictedContent,
		},
		{
			name:       "pii to permitted recipient allows",
			req:        Request{Recipient: "records@hospital.example", TransportSecure: true, Entities: somePII},
			wantAction: ActionAllow,
			wantReason: ReasonOtherwise,
		},
		{
			name:       "permit match is case-insensitive",
			req:        Request{Recipient: "Records@Hospital.example", TransportSecure: true, Entities: somePII},
			wantAction: ActionAllow,
			wantReason: ReasonOtherwise,
		},
		{
			name:       "domain wildcard permits",
			req:        Request{Recipient: "nurse@clinic.example", TransportSecure: true, Entities: somePII},
			wantAction: ActionAllow,
			wantReason: ReasonOtherwise,
		},
		{
			name:       "clean message allows",
			req:        Request{Recipient: "stranger@elsewhere.example", TransportSecure: true},
			wantAction: ActionAllow,
			wantReason: ReasonOtherwise,
		},
		{
			name:       "empty recipient is never permitted",
			req:        Request{TransportSecure: true, Entities: somePII},
			wantAction: ActionRedact,
			wantReason: ReasonRestrictedContent,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			decision := policy.Evaluate(tt.req)
			assert.Equal(t, tt.wantAction, decision.Action)
			assert.Equal(t, tt.wantReason, decision.Reason)
		})
	}
}

func TestNew_ZeroRulesFallBack(t *testing.T) {
	policy, err := New(Rules{}, nil)
	require.NoError(t, err)

	decision := policy.Evaluate(Request{TransportSecure: false})
	assert.Equal(t, ActionBlock, decision.Action)
}

func TestNew_RejectsUnknownAction(t *testing.T) {
	_, err := New(Rules{InsecureTransport: "QUARANTINE"}, nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "QUARANTINE")
}

func TestPermitList(t *testing.T) {
	p := NewPermitList([]string{" Records@Hospital.example ", "*@clinic.example", ""})

	assert.Equal(t, 2, p.Len())
	assert.True(t, p.Permitted("records@hospital.example"))
	assert.True(t, p.Permitted("anyone@clinic.example"))
	assert.False(t, p.Permitted("records@clinic2.example"))
	assert.False(t, p.Permitted("not-an-address"))
	assert.False(t, p.Permitted(""))
}
