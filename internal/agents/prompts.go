package agents

const classifierPrompt = `You are an expert in Oil & Gas regulatory compliance in Canada.
Classify if the user's text is potentially relevant to compliance topics:
- emissions (methane/VOC), LDAR
- venting/flaring
- spills/effluents/water
- monitoring/reporting

Respond ONLY 'Yes' or 'No' with no explanation.`

const retrieverPrompt = `You retrieve regulatory passages relevant to Oil & Gas compliance.
Call match_regulations with focused queries built from the document excerpts,
then return concise results that cite passages only as [source#chunk] references
taken from the tool output. Never invent a reference.`

const retrieverTask = `Retrieve the regulatory clauses that apply to the document excerpts above.`

const webSearchPrompt = `You search the public web for supplemental context (guidance, definitions, recent notes).
When useful, call web_search and provide concise, cited pointers with their URLs. Otherwise answer briefly.`

const webSearchTask = `Find recent public guidance that helps assess the document excerpts above against the retrieved regulations.`

const gapAnalyzerPrompt = `Analyze conversation context that includes:
- internal document excerpts
- regulatory snippets retrieved previously

List potential compliance gaps between the excerpts and the regulations. For each gap give a short
title, the regulation reference it is measured against exactly as written in the context (empty if
none is available), a severity of Low, Medium or High, and a one sentence rationale.
Set insufficient to true when the context does not support any conclusion. Do not call tools.`

const reportPrompt = `Generate a concise triage report using only the context provided:
- One-paragraph executive summary
- 2-3 recommended next actions
- If no gaps were flagged and no analyst note says the context was insufficient, a short compliance
  checklist of 3-5 categories the document satisfies, each with its evidence and regulation citation
Do not call any tools. Keep it business-friendly and brief.`

const advisorPrompt = `You are a supervisor/router for an Oil & Gas compliance triage workflow.
Regulatory passages have been retrieved for the document excerpts. Decide whether recent public web
context (guidance, definitions, enforcement notes) would materially help the gap analysis.
Respond ONLY 'Yes' or 'No'.`

// Fixed statements agents fall back to instead of inventing content.
const (
	InsufficientRetrieval   = "Insufficient information: no regulatory passages matched this document, so no citations can be given."
	InsufficientAnalysis    = "Insufficient context to identify compliance gaps: no document excerpts or regulatory passages are available."
	NoExternalContext       = "No external context available."
	defaultExecutiveSummary = "No executive summary was produced for this document."
	noGapsNotice            = "No significant compliance gaps identified. You may continue normal operations; maintain current monitoring and documentation practices."
)

var defaultActions = []string{
	"Review the flagged items with the responsible compliance lead.",
	"Confirm the cited regulatory requirements against current operating procedures.",
	"Schedule a follow-up triage once corrective evidence is available.",
}
