package domain

import "sort"

// IntentScore is one ranked intent from the NLU provider.
type IntentScore struct {
	Name       string  `json:"name"`
	Confidence float64 `json:"confidence"`
}

// EntityMatch is one recognized entity span from the NLU provider.
type EntityMatch struct {
	Type       string  `json:"type"`
	Value      string  `json:"value"`
	Confidence float64 `json:"confidence"`
}

// NLUResult is the provider output for one utterance. Confidences are
// provider-supplied and never renormalized; filtering against configured
// thresholds is the engine's job.
type NLUResult struct {
	Query    string        `json:"query"`
	Intents  []IntentScore `json:"intents"`
	Entities []EntityMatch `json:"entities"`
}

// Sort orders intents by descending confidence (stable, so provider order
// breaks ties).
func (r *NLUResult) Sort() {
	sort.SliceStable(r.Intents, func(i, j int) bool {
		return r.Intents[i].Confidence > r.Intents[j].Confidence
	})
}

// FilterIntents returns the ranked intents at or above the threshold,
// dropping the provider's catch-all "None" intent.
func (r *NLUResult) FilterIntents(threshold float64) []IntentScore {
	r.Sort()
	var out []IntentScore
	for _, in := range r.Intents {
		if in.Name == IntentNone {
			continue
		}
		if in.Confidence >= threshold {
			out = append(out, in)
		}
	}
	return out
}

// FilterEntities returns the entities at or above the threshold. A
// below-threshold entity is equivalent to no match at all.
func (r *NLUResult) FilterEntities(threshold float64) []EntityMatch {
	var out []EntityMatch
	for _, en := range r.Entities {
		if en.Confidence >= threshold {
			out = append(out, en)
		}
	}
	return out
}

// InputType discriminates how a turn's input should be understood.
type InputType string

const (
	// InputText is a raw utterance routed through the NLU recognizer.
	InputText InputType = "text"
	// InputIntent injects a resolved intent directly, bypassing NLU. The
	// optional context pre-fills slots; used for deterministic testing and
	// channel-triggered intents.
	InputIntent InputType = "intent"
)

// Input is one turn's user input.
type Input struct {
	Type    InputType         `json:"type"`
	Text    string            `json:"text,omitempty"`
	Intent  string            `json:"intent,omitempty"`
	Context map[string]string `json:"context,omitempty"`
}

// TextInput wraps a raw utterance.
func TextInput(text string) Input {
	return Input{Type: InputText, Text: text}
}

// IntentInput injects a resolved intent with optional pre-filled slot context.
func IntentInput(name string, context map[string]string) Input {
	return Input{Type: InputIntent, Intent: name, Context: context}
}
