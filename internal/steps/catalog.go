package steps

import "fmt"

// Definition is the static description of one step.
type Definition struct {
	ID          ID
	Name        string
	Description string
	// Instruction is the system prompt sent to the generation backend. Empty
	// for YT1, which is not a generation step.
	Instruction string
	// Build derives the step's input payload from earlier outputs. Nil for YT1.
	Build func(Results) map[string]any
}

// Generation reports whether the step is run through the generation backend.
func (d Definition) Generation() bool {
	return d.Build != nil
}

// Lookup returns the definition for id.
func Lookup(id ID) (Definition, bool) {
	if !id.Valid() {
		return Definition{}, false
	}
	return catalog[id-1], true
}

// All returns the catalog in execution order.
func All() []Definition {
	out := make([]Definition, len(catalog))
	copy(out, catalog[:])
	return out
}

// Instruction returns the system prompt for id, or a generic instruction for
// ids outside the catalog.
func Instruction(id ID) string {
	if def, ok := Lookup(id); ok && def.Instruction != "" {
		return def.Instruction
	}
	return GenericInstruction(id.String())
}

// GenericInstruction is the fallback prompt for an unrecognized step label.
func GenericInstruction(label string) string {
	return fmt.Sprintf("Process the input data for step %s and return structured information.", label)
}

var catalog = [Count]Definition{
	{
		ID:          YT1,
		Name:        "Transcript Scraper",
		Description: "Pull auto-captions from YouTube video",
	},
	{
		ID:          YT2,
		Name:        "Knowledge Extractor",
		Description: "Summarize key points and extract concepts",
		Instruction: instructionYT2,
		Build: func(r Results) map[string]any {
			return newPayload(r).
				from(YT1, "transcript", "transcript").
				done()
		},
	},
	{
		ID:          YT3,
		Name:        "Persona Snapper",
		Description: "Identify viewer personas and pain points",
		Instruction: instructionYT3,
		Build: func(r Results) map[string]any {
			return newPayload(r).
				from(YT2, "concepts", "concepts").
				from(YT2, "summary_bullets", "summary_bullets").
				from(YT1, "video_meta", "video_meta").
				done()
		},
	},
	{
		ID:          YT4,
		Name:        "Quiz Bank Builder",
		Description: "Create question/answer pairs at various levels",
		Instruction: instructionYT4,
		Build: func(r Results) map[string]any {
			return newPayload(r).
				from(YT2, "concepts", "concepts").
				from(YT2, "summary_bullets", "summary_bullets").
				done()
		},
	},
	{
		ID:          YT5,
		Name:        "Lead Magnet Draft",
		Description: "Create outline for a lead magnet PDF",
		Instruction: instructionYT5,
		Build: func(r Results) map[string]any {
			return newPayload(r).
				from(YT2, "concepts", "concepts").
				from(YT2, "summary_bullets", "summary_bullets").
				from(YT3, "personas", "personas").
				from(YT4, "quiz", "quiz").
				done()
		},
	},
	{
		ID:          YT6,
		Name:        "Landing Page Copy",
		Description: "Generate copy for a landing page",
		Instruction: instructionYT6,
		Build: func(r Results) map[string]any {
			return newPayload(r).
				whole(YT5, "lead_magnet").
				from(YT3, "personas", "personas").
				done()
		},
	},
	{
		ID:          YT7,
		Name:        "LP Design Brief",
		Description: "Create design instructions for landing page",
		Instruction: instructionYT7,
		Build: func(r Results) map[string]any {
			return newPayload(r).
				whole(YT6, "landing_page").
				whole(YT5, "lead_magnet").
				done()
		},
	},
	{
		ID:          YT8,
		Name:        "Social Teasers",
		Description: "Generate social media posts to promote content",
		Instruction: instructionYT8,
		Build: func(r Results) map[string]any {
			return newPayload(r).
				from(YT2, "summary_bullets", "key_points").
				whole(YT5, "lead_magnet").
				from(YT3, "personas", "personas").
				done()
		},
	},
	{
		ID:          YT9,
		Name:        "SEO Article",
		Description: "Create a full SEO-optimized article",
		Instruction: instructionYT9,
		Build: func(r Results) map[string]any {
			return newPayload(r).
				from(YT1, "transcript", "transcript").
				from(YT2, "summary_bullets", "key_points").
				from(YT2, "concepts", "concepts").
				from(YT3, "personas", "personas").
				from(YT4, "quiz", "quiz").
				done()
		},
	},
	{
		ID:          YT10,
		Name:        "Hero Image Prompt",
		Description: "Generate prompt for hero image creation",
		Instruction: instructionYT10,
		Build: func(r Results) map[string]any {
			return newPayload(r).
				from(YT2, "concepts", "concepts").
				whole(YT5, "lead_magnet").
				done()
		},
	},
	{
		ID:          YT11,
		Name:        "Mini-Infographic Brief",
		Description: "Create instructions for a data-driven visual",
		Instruction: instructionYT11,
		Build: func(r Results) map[string]any {
			return newPayload(r).
				from(YT2, "summary_bullets", "key_points").
				from(YT4, "quiz", "quiz").
				done()
		},
	},
	{
		ID:          YT12,
		Name:        "Email Welcome",
		Description: "Draft welcome email for new subscribers",
		Instruction: instructionYT12,
		Build: func(r Results) map[string]any {
			return newPayload(r).
				whole(YT5, "lead_magnet").
				from(YT4, "quiz", "quiz").
				done()
		},
	},
	{
		ID:          YT13,
		Name:        "Nurture Sequence",
		Description: "Create email nurture sequence",
		Instruction: instructionYT13,
		Build: func(r Results) map[string]any {
			return newPayload(r).
				whole(YT5, "lead_magnet").
				from(YT3, "personas", "personas").
				from(YT2, "summary_bullets", "key_points").
				done()
		},
	},
}

// payload assembles a builder's output. Keys whose source is missing are
// omitted rather than sent as null.
type payload struct {
	results Results
	out     map[string]any
}

func newPayload(r Results) *payload {
	return &payload{results: r, out: make(map[string]any)}
}

func (p *payload) from(id ID, field, key string) *payload {
	if value, ok := p.results.Field(id, field); ok {
		p.out[key] = value
	}
	return p
}

func (p *payload) whole(id ID, key string) *payload {
	if data, ok := p.results.Get(id); ok {
		p.out[key] = data
	}
	return p
}

func (p *payload) done() map[string]any {
	return p.out
}
