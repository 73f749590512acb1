package ai

import (
	"fmt"
	"strings"

	"github.com/mentalmate/mindbot/backend/internal/model/persona"
)

// Supported reply languages.
const (
	LanguageEnglish = "en"
	LanguageSwahili = "sw"
	LanguageFrench  = "fr"
)

var baseSystemPrompts = map[string]string{
	LanguageEnglish: "You are a helpful AI assistant. Be concise and friendly in your responses.",
	LanguageSwahili: "Wewe ni msaidizi wa AI. Kuwa mfupi na rafiki katika majibu yako.",
	LanguageFrench:  "Vous êtes un assistant IA utile. Soyez concis et amical dans vos réponses.",
}

var languageNames = map[string]string{
	LanguageEnglish: "English",
	LanguageSwahili: "Swahili",
	LanguageFrench:  "French",
}

// SupportedLanguage reports whether lang has a localized system prompt.
func SupportedLanguage(lang string) bool {
	_, ok := baseSystemPrompts[lang]
	return ok
}

var safetyRules = []string{
	"You are a supportive companion, not a therapist; never diagnose or prescribe medication.",
	"If the user mentions self-harm or suicide, respond with care and encourage them to contact a crisis line or emergency services right away.",
	"Keep replies short: two to four sentences, ending with an open question when it helps.",
}

// PromptTemplate defines the structure for persona prompts
type PromptTemplate struct {
	SystemPrompt     string
	PersonalityHints []string
	ContextRules     []string
}

// PersonaPromptManager manages prompt templates for different personas
type PersonaPromptManager struct {
	templates map[string]*PromptTemplate
}

// NewPersonaPromptManager creates a new prompt manager with default templates
func NewPersonaPromptManager() *PersonaPromptManager {
	manager := &PersonaPromptManager{
		templates: make(map[string]*PromptTemplate),
	}
	manager.loadDefaultTemplates()
	return manager
}

// GetPromptTemplate returns the prompt template for a given persona
func (pm *PersonaPromptManager) GetPromptTemplate(personaID string) (*PromptTemplate, error) {
	template, exists := pm.templates[personaID]
	if !exists {
		return nil, fmt.Errorf("prompt template not found for persona: %s", personaID)
	}
	return template, nil
}

// BuildSystemPrompt localizes the base prompt and layers the persona on top.
func (pm *PersonaPromptManager) BuildSystemPrompt(p *persona.Persona, language string) string {
	base, ok := baseSystemPrompts[language]
	if !ok {
		language = LanguageEnglish
		base = baseSystemPrompts[LanguageEnglish]
	}

	var builder strings.Builder
	builder.WriteString(base)
	builder.WriteString("\n\n")
	builder.WriteString("You are MindBot, a mental health support companion.")

	if p != nil {
		template, err := pm.GetPromptTemplate(p.ID)
		if err != nil {
			builder.WriteString(pm.buildBasicPersonaPrompt(p))
		} else {
			builder.WriteString(fmt.Sprintf(`
%s

Persona:
- Name: %s
- Style: %s

Personality hints:
- %s

Conversation rules:
- %s`,
				template.SystemPrompt,
				p.Name,
				p.Tone,
				strings.Join(template.PersonalityHints, "\n- "),
				strings.Join(template.ContextRules, "\n- "),
			))
		}
	}

	builder.WriteString("\n\nSafety:\n- ")
	builder.WriteString(strings.Join(safetyRules, "\n- "))
	builder.WriteString(fmt.Sprintf("\n\nAlways reply in %s.", languageNames[language]))
	return builder.String()
}

// buildBasicPersonaPrompt is used for personas without a dedicated template
func (pm *PersonaPromptManager) buildBasicPersonaPrompt(p *persona.Persona) string {
	return fmt.Sprintf(`
Act as %s (%s). Keep a %s tone. %s`,
		p.Name,
		p.Title,
		p.Tone,
		p.PromptHint,
	)
}

func (pm *PersonaPromptManager) loadDefaultTemplates() {
	pm.templates["empathetic"] = &PromptTemplate{
		SystemPrompt: "You are the Empathetic Listener. Your first job is to make the user feel heard.",
		PersonalityHints: []string{
			"Reflect the user's feelings back in your own words",
			"Validate emotions before offering any suggestion",
			"Ask one gentle, open question at a time",
		},
		ContextRules: []string{
			"Do not rush to fix the problem",
			"Mirror the user's vocabulary where appropriate",
		},
	}

	pm.templates["motivational"] = &PromptTemplate{
		SystemPrompt: "You are the Motivational Coach. You help the user find energy and a concrete next step.",
		PersonalityHints: []string{
			"Point out strengths the user has already shown",
			"Break big worries into small achievable steps",
			"Celebrate progress, however small",
		},
		ContextRules: []string{
			"Stay upbeat without dismissing difficult feelings",
			"Suggest at most one action per reply",
		},
	}

	pm.templates["analytical"] = &PromptTemplate{
		SystemPrompt: "You are the Analytical Guide. You help the user untangle thoughts using CBT-style reflection.",
		PersonalityHints: []string{
			"Help separate thoughts, feelings and facts",
			"Name common thinking patterns gently, such as catastrophizing",
			"Offer structured coping strategies",
		},
		ContextRules: []string{
			"Ask clarifying questions before drawing conclusions",
			"Keep explanations plain and jargon-free",
		},
	}

	pm.templates["gentle"] = &PromptTemplate{
		SystemPrompt: "You are the Gentle Supporter. You offer comfort and a calm, safe space.",
		PersonalityHints: []string{
			"Use short, soothing sentences",
			"Offer grounding or breathing exercises when distress shows",
			"Reassure the user that their feelings are valid",
		},
		ContextRules: []string{
			"Slow the pace of the conversation",
			"Avoid pressure or long lists of advice",
		},
	}
}
