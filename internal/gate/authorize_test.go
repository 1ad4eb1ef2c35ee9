package gate

import (
	"testing"

	"github.com/danielpatrickdp/alive-runtime/internal/intent"
	"github.com/google/go-cmp/cmp"
)

func declared(id string, caps ...string) intent.Candidate {
	c := makeIntent(id)
	c.RequiresCapabilities = caps
	return c
}

func TestAuthorizeMissingDeclaration(t *testing.T) {
	res := Authorize(AuthorizationInput{
		SurvivingIntents: []intent.Candidate{makeIntent("intent:g1"), declared("empty")},
		Capabilities:     CapabilityIDList{"speak"},
	})

	want := []Denial{
		{IntentID: "intent:g1", Reason: ReasonMissingDeclaration},
		{IntentID: "empty", Reason: ReasonMissingDeclaration},
	}
	if diff := cmp.Diff(want, res.Denied); diff != "" {
		t.Fatalf("denials mismatch (-want +got):\n%s", diff)
	}
	if len(res.AuthorizedIntents) != 0 {
		t.Fatalf("expected nothing authorized, got %v", ids(res.AuthorizedIntents))
	}
}

func TestAuthorizeMissingCapability(t *testing.T) {
	res := Authorize(AuthorizationInput{
		SurvivingIntents: []intent.Candidate{
			declared("ok", "speak"),
			declared("partial", "speak", "write"),
		},
		Capabilities: CapabilityIDList{"speak"},
	})

	if diff := cmp.Diff([]string{"ok"}, ids(res.AuthorizedIntents)); diff != "" {
		t.Fatalf("authorized mismatch (-want +got):\n%s", diff)
	}
	if res.Denied[0].Reason != ReasonMissingCapability {
		t.Fatalf("expected missing_capability, got %s", res.Denied[0].Reason)
	}
}

func TestAuthorizeNilSnapshotDeniesDeclaredCapabilities(t *testing.T) {
	res := Authorize(AuthorizationInput{SurvivingIntents: []intent.Candidate{declared("a", "speak")}})
	if len(res.Denied) != 1 || res.Denied[0].Reason != ReasonMissingCapability {
		t.Fatalf("expected missing_capability, got %+v", res.Denied)
	}
}

func TestAuthorizeDeniedCapabilityPresent(t *testing.T) {
	c := declared("a", "speak")
	c.DeniesCapabilities = []string{"sandbox"}

	res := Authorize(AuthorizationInput{
		SurvivingIntents: []intent.Candidate{c},
		Capabilities:     NewCapabilityIDSet("speak", "sandbox"),
	})
	if len(res.Denied) != 1 || res.Denied[0].Reason != ReasonDeniedCapability {
		t.Fatalf("expected denied_capability_present, got %+v", res.Denied)
	}

	res = Authorize(AuthorizationInput{
		SurvivingIntents: []intent.Candidate{c},
		Capabilities:     NewCapabilityIDSet("speak"),
	})
	if len(res.AuthorizedIntents) != 1 {
		t.Fatalf("expected authorization when denied capability absent, got %+v", res.Denied)
	}
}

func TestAuthorizePolicyViolation(t *testing.T) {
	res := Authorize(AuthorizationInput{
		SurvivingIntents: []intent.Candidate{declared("a", "speak"), declared("b", "speak"), declared("c", "speak")},
		Capabilities:     CapabilityIDList{"speak"},
		Constraints: &Constraints{
			DeniedIntentIDs:   []string{"a"},
			RejectedIntentIDs: []string{"c"},
		},
	})

	if diff := cmp.Diff([]string{"b"}, ids(res.AuthorizedIntents)); diff != "" {
		t.Fatalf("authorized mismatch (-want +got):\n%s", diff)
	}
	for _, d := range res.Denied {
		if d.Reason != ReasonPolicyViolation {
			t.Errorf("expected policy_violation for %s, got %s", d.IntentID, d.Reason)
		}
	}
}

func TestAuthorizeScope(t *testing.T) {
	withScope := func(id string, s intent.Scope) intent.Candidate {
		c := declared(id, "speak")
		c.AuthorizationScope = s
		return c
	}
	in := []intent.Candidate{
		withScope("none", ""),
		withScope("runtime", intent.ScopeRuntime),
		withScope("session", intent.ScopeSession),
		withScope("user", intent.ScopeUser),
		withScope("system", intent.ScopeSystem),
		withScope("bogus", intent.Scope("kernel")),
	}

	tests := []struct {
		name string
		cons *Constraints
		want []string
	}{
		{"no constraints", nil, []string{"none", "runtime"}},
		{"max user", &Constraints{MaxAuthorizationScope: intent.ScopeUser}, []string{"none", "runtime", "session", "user"}},
		{"allowed list", &Constraints{AllowedAuthorizationScopes: []intent.Scope{intent.ScopeRuntime, intent.ScopeSession}}, []string{"none", "runtime", "session"}},
		{"max wins over list", &Constraints{
			MaxAuthorizationScope:      intent.ScopeSystem,
			AllowedAuthorizationScopes: []intent.Scope{intent.ScopeRuntime},
		}, []string{"none", "runtime", "session", "user", "system"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Authorize(AuthorizationInput{
				SurvivingIntents: in,
				Capabilities:     CapabilityIDList{"speak"},
				Constraints:      tt.cons,
			})
			if diff := cmp.Diff(tt.want, ids(res.AuthorizedIntents)); diff != "" {
				t.Fatalf("authorized mismatch (-want +got):\n%s", diff)
			}
			for _, d := range res.Denied {
				if d.Reason != ReasonUnauthorizedScope {
					t.Errorf("expected unauthorized_scope for %s, got %s", d.IntentID, d.Reason)
				}
			}
		})
	}
}

func TestAuthorizeRuleOrder(t *testing.T) {
	// Missing capability is reported before policy and scope.
	c := declared("a", "write")
	c.AuthorizationScope = intent.ScopeSystem
	res := Authorize(AuthorizationInput{
		SurvivingIntents: []intent.Candidate{c},
		Capabilities:     CapabilityIDList{},
		Constraints:      &Constraints{DeniedIntentIDs: []string{"a"}},
	})
	if res.Denied[0].Reason != ReasonMissingCapability {
		t.Fatalf("expected missing_capability first, got %s", res.Denied[0].Reason)
	}
}
