package semantic

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"subseg/internal/alignment"
	"subseg/internal/logging"
	"subseg/internal/services"
)

const defaultAttempts = 3

// PromptService implements Service over a JSON Completer.
type PromptService struct {
	completer Completer
	language  string
	marker    string
	attempts  int
	logger    *slog.Logger
}

// PromptOption customizes a PromptService.
type PromptOption func(*PromptService)

// WithAttempts sets how many prompts are tried before giving up.
func WithAttempts(attempts int) PromptOption {
	return func(s *PromptService) {
		if attempts > 0 {
			s.attempts = attempts
		}
	}
}

// WithLogger sets the logger used for retry diagnostics.
func WithLogger(logger *slog.Logger) PromptOption {
	return func(s *PromptService) {
		s.logger = logging.NewComponentLogger(logger, "semantic")
	}
}

// NewPromptService builds a service that renders prompts in lang and expects
// marker as the break tag.
func NewPromptService(completer Completer, lang, marker string, opts ...PromptOption) *PromptService {
	if strings.TrimSpace(marker) == "" {
		marker = alignment.DefaultMarker
	}
	s := &PromptService{
		completer: completer,
		language:  lang,
		marker:    marker,
		attempts:  defaultAttempts,
		logger:    logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Marker returns the break tag the service asks for.
func (s *PromptService) Marker() string {
	return s.marker
}

// Validate reports whether raw is an acceptable completion.
func (s *PromptService) Validate(raw string) error {
	_, err := ParseResponse(raw, s.marker)
	return err
}

// Split asks the completer for a split of req.Sentence. Each failed attempt
// (transport error or invalid response) is retried with a padded prompt.
// Configuration errors, context cancellation and ErrTransient stop
// immediately; the last means the completer has already spent its own retries.
func (s *PromptService) Split(ctx context.Context, req Request) (Response, error) {
	if s.completer == nil {
		return Response{}, services.Wrap(services.ErrConfiguration, "semantic", "split", "no completer configured", nil)
	}
	if req.Language == "" {
		req.Language = s.language
	}
	prompt, err := BuildPrompt(req, s.marker)
	if err != nil {
		return Response{}, services.Wrap(services.ErrValidation, "semantic", "split", "build prompt", err)
	}
	logger := logging.WithContext(ctx, s.logger)

	var lastErr error
	tried := 0
	for attempt := 0; attempt < s.attempts; attempt++ {
		tried++
		raw, err := s.completer.CompleteJSON(ctx, SystemPrompt, perturb(prompt, attempt))
		if err == nil {
			var resp Response
			resp, err = ParseResponse(raw, s.marker)
			if err == nil {
				return resp, nil
			}
		}
		lastErr = err
		if ctx.Err() != nil || errors.Is(err, services.ErrConfiguration) || errors.Is(err, services.ErrTransient) {
			break
		}
		logger.Debug("split attempt failed",
			logging.Int("attempt", attempt+1),
			logging.Int("max_attempts", s.attempts),
			logging.Error(err),
		)
	}
	if errors.Is(lastErr, services.ErrSemanticService) {
		return Response{}, lastErr
	}
	return Response{}, services.Wrap(services.ErrSemanticService, "semantic", "split",
		fmt.Sprintf("no valid response after %d attempts", tried), lastErr)
}
