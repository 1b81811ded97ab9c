package pipeline

import (
	"fmt"
	"strings"
)

const baseKnowledgeTemplate = `You are a world-class technical educator with 20+ years of experience at companies like Google, Amazon, and Netflix.
Your audience is preparing for Principal Technical Program Manager job interviews at Mag7 companies.

Create a comprehensive technical deep-dive on the topic that a Principal TPM at a Mag7 company would need to know.

When you answer, ensure your coverage includes:
(1) Real-world behavior/examples at a Mag7
(2) Tradeoffs for every choice made or action taken
(3) Impact on business/ROI/CX/Skill/Business capabilities

REFERENCE MATERIAL FROM THE KNOWLEDGE BASE:
%s

TOPIC: %s`

const splitTopicsTemplate = `Analyze this technical content and identify distinct sub-topics that warrant deep-dive and further exploration.

CONTENT:
%s

CRITERIA FOR GOOD SUB-TOPICS:
- Each should be substantial enough for a deep-dive
- Topics should be complementary but not overlapping
- Include both foundational concepts AND advanced/operational aspects

Return ONLY a JSON array of descriptive topic strings.
Example: ["Topic 1: Core Architecture and Component Design", "Topic 2: Scaling Strategies and Performance Optimization"]

No other text, just the JSON array.`

const sectionDraftTemplate = `Create a comprehensive technical deep-dive on the topic that a Principal TPM at a Mag7 company would need to know.

When you answer, ensure your coverage includes:
(1) Real-world behavior/examples at a Mag7
(2) Tradeoffs for every choice made or action taken
(3) Impact on business/ROI/CX/Skill/Business capabilities

TOPIC: %s

CONTEXT FROM OVERALL GUIDE:
%s

Write a comprehensive section that includes:
- **Technical depth**: Explain the "how" and "why", not just the "what"
- **Real-world examples**: Reference specific implementations at Google, Amazon, Netflix, etc.
- **Tradeoffs analysis**: Discuss pros/cons with quantified impacts where possible
- **Actionable guidance**: Readers should know exactly what to do after reading
- **Edge cases**: Address common failure modes and how to handle them

**INTERVIEW QUESTIONS:**
At the end of your response, include a section titled "## Interview Questions" with at least 2 challenging interview questions that a Principal TPM might be asked about this topic. Include brief guidance on what a strong answer should cover.

TARGET: A substantive deep-dive, Principal-level content. No fluff or generic statements. No metaphors, strictly professional.`

const sectionRewriteTemplate = `Your previous draft was reviewed by a Mag7 Bar Raiser and needs improvement.

TOPIC: %s
REVIEW STRICTNESS: %s

YOUR PREVIOUS DRAFT:
%s

BAR RAISER FEEDBACK:
%s

REWRITE INSTRUCTIONS:
1. Address ALL feedback points explicitly
2. Add specific examples, numbers, or case studies where feedback indicates gaps
3. Strengthen trade-off analysis with concrete comparisons
4. Ensure every paragraph adds unique value (no repetition or filler)
5. Maintain or increase technical depth

Output the improved section directly. Target 600-900 words.`

const synthesisTemplate = `You are creating a comprehensive Master Guide for Principal TPMs from multiple expert-written sections.

SECTIONS TO SYNTHESIZE:
%s

YOUR TASKS:
1. **Unify**: Merge sections into a cohesive narrative with consistent terminology and tone
2. **Enhance**: Add smooth transitions between sections that show how concepts connect
3. **Quality Check**: Strengthen any section that reads thinner than its siblings
4. **Structure**: Create a logical flow from fundamentals to advanced topics

OUTPUT FORMAT:
- Title: Use the main topic only (e.g., "# Load Balancing" not "# The Principal TPM's Guide to...")
- Executive Summary: 3-4 sentences covering what the reader will learn and why it matters
- Sections: Use ## headers, maintain depth, include all key content from source sections
- Conclusion: Brief wrap-up with key takeaways for a Principal TPM

Preserve technical depth and specific examples from the source sections. The final guide should be comprehensive and immediately actionable.`

func baseKnowledgePrompt(topic, context string) string {
	return fmt.Sprintf(baseKnowledgeTemplate, context, topic)
}

func splitTopicsPrompt(overview string) string {
	return fmt.Sprintf(splitTopicsTemplate, overview)
}

func sectionDraftPrompt(topic, context string) string {
	return fmt.Sprintf(sectionDraftTemplate, topic, context)
}

func sectionRewritePrompt(topic, strictness, previousDraft, feedback string) string {
	return fmt.Sprintf(sectionRewriteTemplate, topic, strictness, previousDraft, feedback)
}

func synthesisPrompt(sections []SectionResult) string {
	parts := make([]string, 0, len(sections))
	for _, sec := range sections {
		parts = append(parts, fmt.Sprintf("## %s\n\n%s", sec.Topic, sec.Content))
	}
	return fmt.Sprintf(synthesisTemplate, strings.Join(parts, "\n\n---\n\n"))
}
