package semantic

import (
	"context"
	"fmt"

	"subseg/internal/alignment"
	"subseg/internal/services"
)

// Request asks for one fragment to be split.
type Request struct {
	Sentence  string
	Parts     int
	WordLimit int
	Language  string
}

// Response is the decoded service answer. Split1 and Split2 are paraphrases of
// the sentence with break markers; Choice names the preferred one.
type Response struct {
	Analysis string `json:"analysis"`
	Split1   string `json:"split1"`
	Split2   string `json:"split2"`
	Assess   string `json:"assess"`
	Choice   string `json:"choice"`
}

// Chosen returns the split named by Choice.
func (r Response) Chosen() string {
	if r.Choice == "2" {
		return r.Split2
	}
	return r.Split1
}

// Validate checks that Choice is "1" or "2" and that the chosen split carries
// at least one marker.
func (r Response) Validate(marker string) error {
	if r.Choice != "1" && r.Choice != "2" {
		return services.Wrap(services.ErrValidation, "semantic", "validate response",
			fmt.Sprintf("invalid choice %q", r.Choice), nil)
	}
	if !alignment.ContainsMarker(r.Chosen(), marker) {
		return services.Wrap(services.ErrValidation, "semantic", "validate response",
			fmt.Sprintf("split%s has no %s marker", r.Choice, marker), nil)
	}
	return nil
}

// Service produces a split proposal for a request.
type Service interface {
	Split(ctx context.Context, req Request) (Response, error)
}

// ServiceFunc adapts a function to Service.
type ServiceFunc func(ctx context.Context, req Request) (Response, error)

// Split calls f.
func (f ServiceFunc) Split(ctx context.Context, req Request) (Response, error) {
	return f(ctx, req)
}

// Completer returns raw JSON text for a system and user prompt pair.
type Completer interface {
	CompleteJSON(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}
