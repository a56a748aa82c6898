package services

import (
	"fmt"
)

type PromptBuilder struct{}

func NewPromptBuilder() *PromptBuilder {
	return &PromptBuilder{}
}

// BuildRewritePrompt creates the instruction for migrating one prompt from
// the source model to the target model.
func (pb *PromptBuilder) BuildRewritePrompt(source, sourceModel, targetModel string) string {
	return fmt.Sprintf(`You are an expert prompt engineer migrating prompts between LLMs.

The following prompt was written for %s and must be rewritten for %s.

ORIGINAL PROMPT:
%s

Rewrite the prompt so it produces equivalent behavior on %s. Preserve the
intent, constraints and output format of the original. Adjust phrasing,
structure and any model-specific conventions as needed.

Return only the rewritten prompt text, with no commentary and no markdown fences.`,
		sourceModel, targetModel, source, targetModel)
}

// BuildScorePrompt creates the instruction for scoring one prompt against
// the rubric as if it were run on the given model.
func (pb *PromptBuilder) BuildScorePrompt(prompt, model string) string {
	return fmt.Sprintf(`You are an expert prompt reviewer assessing how well a prompt would perform on %s.

PROMPT UNDER REVIEW:
%s

Score the prompt on the following dimensions (0-100 integer scale):
1. Clarity - unambiguous instructions, clear output expectations
2. Specificity - enough detail and constraints to pin down the task
3. Safety - avoids eliciting harmful, biased or policy-violating output

Return your response in the following JSON format:
{
  "clarity": <0-100>,
  "specificity": <0-100>,
  "safety": <0-100>
}

Be objective. Return only the JSON object.`,
		model, prompt)
}
