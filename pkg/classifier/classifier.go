// Package classifier asks an external model which countries prohibit or
// restrict a cargo described in free text.
package classifier

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/globalroute/navigator/pkg/llm"
)

// ErrMalformedResponse is returned when the model reply is not the expected
// JSON object.
var ErrMalformedResponse = errors.New("malformed classifier response")

// Classification lists the countries where a cargo is prohibited or restricted.
type Classification struct {
	ProhibitedIn []string `json:"prohibited_in"`
	RestrictedIn []string `json:"restricted_in"`
}

// Result is the outcome of a classification attempt. When Available is false
// the classification is empty and Reason says why.
type Result struct {
	Classification
	Available bool
	Reason    string
}

// Unavailable builds the result used when the classifier could not answer.
func Unavailable(err error) Result {
	return Result{Available: false, Reason: err.Error()}
}

// Classifier looks up the country constraints of a cargo description.
type Classifier interface {
	Classify(ctx context.Context, description string) (Classification, error)
}

// DefaultPrompt instructs the model to answer with the bare JSON object.
const DefaultPrompt = `You are a customs compliance assistant for international freight.
Given a description of a shipment, list the countries (ISO 3166-1 alpha-2 codes)
where importing or transiting the goods is prohibited, and those where it is
allowed only under restrictions (licences, permits, quotas).
Answer with a single JSON object and nothing else, in exactly this form:
{"prohibited_in": ["XX"], "restricted_in": ["YY"]}
Use empty lists when no country applies.`

// LLMClassifier implements Classifier on top of a chat model.
type LLMClassifier struct {
	client llm.Client
	prompt string
}

// NewLLMClassifier creates a classifier. An empty prompt selects DefaultPrompt.
func NewLLMClassifier(client llm.Client, prompt string) *LLMClassifier {
	if strings.TrimSpace(prompt) == "" {
		prompt = DefaultPrompt
	}
	return &LLMClassifier{client: client, prompt: prompt}
}

// Classify sends the description to the model and parses its reply.
func (c *LLMClassifier) Classify(ctx context.Context, description string) (Classification, error) {
	reply, err := c.client.Chat(ctx, c.prompt, description)
	if err != nil {
		return Classification{}, fmt.Errorf("classifier request failed: %w", err)
	}
	return ParseClassification(reply)
}

// ParseClassification decodes a model reply. Markdown code fences around the
// object are tolerated; both keys must be present.
func ParseClassification(reply string) (Classification, error) {
	raw := stripFences(reply)

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return Classification{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	for _, key := range []string{"prohibited_in", "restricted_in"} {
		if _, ok := fields[key]; !ok {
			return Classification{}, fmt.Errorf("%w: missing %q", ErrMalformedResponse, key)
		}
	}

	var c Classification
	if err := json.Unmarshal([]byte(raw), &c); err != nil {
		return Classification{}, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}
	return c, nil
}

func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	// Drop the info string (e.g. "json") up to the first newline.
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		s = s[i+1:]
	}
	s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	return strings.TrimSpace(s)
}
