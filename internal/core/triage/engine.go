package triage

import "github.com/organvm-iii-ergon/universal-mail--automation/internal/core/domain"

// Engine composes the VIP registry and the classifier into a single
// categorization entry point. It never returns an error: unmatched input
// degrades to the catch-all label at the reference tier.
type Engine struct {
	classifier *Classifier
	vips       *VIPRegistry
}

// NewEngine builds an engine over a taxonomy and a VIP registry.
func NewEngine(t *Taxonomy, vips *VIPRegistry) *Engine {
	if vips == nil {
		vips = NewVIPRegistry()
	}
	return &Engine{
		classifier: NewClassifier(t),
		vips:       vips,
	}
}

// Categorize produces the full decision for one message.
//
// A VIP match always wins over ordinary tier derivation: its tier is
// force-applied and the result is marked time-sensitive. The classifier
// is still consulted for the label unless the VIP entry carries an
// explicit label override.
func (e *Engine) Categorize(sender, subject string) domain.CategorizationResult {
	if vip, ok := e.vips.Check(sender); ok {
		label := vip.LabelOverride
		if label == "" {
			label = e.classifier.Classify(sender, subject)
		}
		return domain.CategorizationResult{
			Label:         label,
			Tier:          vip.Tier,
			TimeSensitive: true,
			IsVIP:         true,
			VIPNote:       vip.Note,
		}
	}

	label := e.classifier.Classify(sender, subject)
	tier, sensitive := e.classifier.Taxonomy().TierFor(label)
	return domain.CategorizationResult{
		Label:         label,
		Tier:          tier,
		TimeSensitive: sensitive,
	}
}

// Classifier exposes the underlying classifier.
func (e *Engine) Classifier() *Classifier { return e.classifier }

// VIPs exposes the registry the engine consults.
func (e *Engine) VIPs() *VIPRegistry { return e.vips }
