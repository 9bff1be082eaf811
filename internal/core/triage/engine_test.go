package triage

import (
	"testing"

	"github.com/organvm-iii-ergon/universal-mail--automation/internal/core/domain"
)

func TestEngineVIPForcesTier(t *testing.T) {
	vips := NewVIPRegistry()
	if err := vips.Add(VIPOverride{
		Key:           "ceo",
		SenderPattern: `ceo@company\.com`,
		Tier:          domain.TierCritical,
		Star:          true,
		Note:          "CEO",
	}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	e := NewEngine(mustTaxonomy(t, DefaultRules()), vips)

	// The classifier alone would put a newsletter at the reference tier.
	res := e.Categorize("ceo@company.com", "weekly newsletter")
	if !res.IsVIP {
		t.Fatal("expected VIP result")
	}
	if res.Tier != domain.TierCritical {
		t.Errorf("tier = %d, want %d", res.Tier, domain.TierCritical)
	}
	if !res.TimeSensitive {
		t.Error("VIP results must be time-sensitive")
	}
	if res.Label != "Marketing" {
		t.Errorf("label = %q, want classifier label %q", res.Label, "Marketing")
	}
	if res.VIPNote != "CEO" {
		t.Errorf("note = %q, want %q", res.VIPNote, "CEO")
	}
}

func TestEngineVIPLabelOverride(t *testing.T) {
	vips := NewVIPRegistry()
	if err := vips.Add(VIPOverride{
		Key:           "client",
		SenderPattern: `.*@important-client\.com`,
		Tier:          domain.TierCritical,
		LabelOverride: "Personal",
	}); err != nil {
		t.Fatalf("Add: %v", err)
	}

	e := NewEngine(mustTaxonomy(t, DefaultRules()), vips)

	res := e.Categorize("anyone@important-client.com", "unsubscribe from our promo")
	if res.Label != "Personal" {
		t.Errorf("label = %q, want override %q", res.Label, "Personal")
	}
}

func TestEngineVIPFirstMatchWins(t *testing.T) {
	vips := NewVIPRegistry()
	for _, v := range []VIPOverride{
		{Key: "first", SenderPattern: `boss@`, Tier: domain.TierCritical, Note: "first"},
		{Key: "second", SenderPattern: `boss@corp\.com`, Tier: domain.TierImportant, Note: "second"},
	} {
		if err := vips.Add(v); err != nil {
			t.Fatalf("Add(%s): %v", v.Key, err)
		}
	}

	e := NewEngine(mustTaxonomy(t, DefaultRules()), vips)
	res := e.Categorize("boss@corp.com", "hi")
	if res.VIPNote != "first" {
		t.Errorf("matched %q, want registration-order first match", res.VIPNote)
	}
}

func TestEngineNonVIPDerivesTierFromTaxonomy(t *testing.T) {
	e := NewEngine(mustTaxonomy(t, DefaultRules()), nil)

	res := e.Categorize("alerts@chase.com", "statement ready")
	if res.IsVIP {
		t.Fatal("unexpected VIP flag")
	}
	if res.Label != "Finance/Banking" {
		t.Fatalf("label = %q", res.Label)
	}
	if res.Tier != domain.TierImportant || !res.TimeSensitive {
		t.Errorf("tier = %d sensitive = %v, want taxonomy values", res.Tier, res.TimeSensitive)
	}
}

func TestEngineUnknownInputDegradesToCatchAll(t *testing.T) {
	e := NewEngine(mustTaxonomy(t, DefaultRules()), nil)

	res := e.Categorize("nobody@nowhere.example", "zzzz")
	if res.Label != CatchAllLabel {
		t.Errorf("label = %q, want %q", res.Label, CatchAllLabel)
	}
	if res.Tier != domain.TierReference {
		t.Errorf("tier = %d, want %d", res.Tier, domain.TierReference)
	}
}

func TestVIPRegistryRejectsBadPattern(t *testing.T) {
	vips := NewVIPRegistry()
	if err := vips.Add(VIPOverride{Key: "bad", SenderPattern: `([`, Tier: 1}); err == nil {
		t.Fatal("expected error for malformed pattern")
	}
	if vips.Len() != 0 {
		t.Errorf("registry length = %d after failed add", vips.Len())
	}
}

func TestVIPRegistryRejectsBadTier(t *testing.T) {
	vips := NewVIPRegistry()
	if err := vips.Add(VIPOverride{Key: "bad", SenderPattern: `x@y`, Tier: 7}); err == nil {
		t.Fatal("expected error for invalid tier")
	}
}

func TestVIPCheckIgnoresSubject(t *testing.T) {
	vips := NewVIPRegistry()
	if err := vips.Add(VIPOverride{Key: "k", SenderPattern: `urgent`, Tier: 1}); err != nil {
		t.Fatalf("Add: %v", err)
	}
	if vips.IsVIP("calm@example.com") {
		t.Error("pattern must match sender only, not subject text")
	}
	if !vips.IsVIP("urgent@example.com") {
		t.Error("expected sender match")
	}
}
