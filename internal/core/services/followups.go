package services

import (
	"fmt"

	"github.com/duiatlas/brain-core/internal/core/domain"
)

// followUpTemplates holds canned follow-up questions per topic.
// Each template takes the jurisdiction label as its one argument.
var followUpTemplates = map[domain.Topic][]string{
	domain.TopicImpound: {
		"How much does vehicle impound cost per day in %s?",
		"What documents do I need to release my car in %s?",
		"Can someone else pick up my impounded vehicle in %s?",
		"How long before an impounded car is auctioned in %s?",
	},
	domain.TopicBail: {
		"How is bail amount set for a DUI in %s?",
		"Can I use a bail bondsman in %s and what do they charge?",
		"What are typical bail conditions after a DUI arrest in %s?",
		"What happens if I miss a court date while out on bail in %s?",
	},
	domain.TopicDMV: {
		"What is the deadline to request a DMV hearing in %s?",
		"How do I request an administrative license hearing in %s?",
		"What happens at a DMV hearing in %s?",
		"Can I get a temporary permit while my license is suspended in %s?",
	},
	domain.TopicCourt: {
		"When is my first court appearance after a DUI arrest in %s?",
		"Should I plead guilty or not guilty at arraignment in %s?",
		"What are the possible penalties for a first DUI in %s?",
		"How long does a DUI case usually take in %s?",
	},
	domain.TopicSCRAM: {
		"How much does a SCRAM ankle monitor cost in %s?",
		"Who has to wear a SCRAM device in %s?",
		"What happens if a SCRAM monitor detects alcohol in %s?",
		"How long do courts in %s require SCRAM monitoring?",
	},
	domain.TopicLicense: {
		"How long will my license be suspended after a DUI in %s?",
		"Can I get a restricted or hardship license in %s?",
		"What is required to reinstate my license in %s?",
		"Do I need an ignition interlock device in %s?",
	},
}

// genericFollowUps is the fallback when no topic is supplied or the
// topic is outside the curated set
var genericFollowUps = []string{
	"What should I do first after a DUI arrest in %s?",
	"How do I get my car out of impound in %s?",
	"What is the deadline to protect my driver's license in %s?",
	"How much does a DUI typically cost in %s?",
}

// followUpQuestions renders up to MaxFollowUpQuestions suggestions for
// the question's topic and jurisdiction
func followUpQuestions(qctx domain.QuestionContext) []string {
	templates, ok := followUpTemplates[qctx.Topic]
	if !ok {
		templates = genericFollowUps
	}

	where := jurisdictionLabel(qctx)
	if where == "" {
		where = "your area"
	}

	n := len(templates)
	if n > domain.MaxFollowUpQuestions {
		n = domain.MaxFollowUpQuestions
	}

	questions := make([]string, 0, n)
	for _, tmpl := range templates[:n] {
		questions = append(questions, fmt.Sprintf(tmpl, where))
	}
	return questions
}
