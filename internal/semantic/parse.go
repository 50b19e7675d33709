package semantic

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"subseg/internal/services"
	"subseg/internal/services/llm"
)

// ParseResponse decodes raw service output and validates it: choice must be
// "1" or "2", the chosen split must be present, and it must contain marker.
// Numeric choices are accepted and normalized to strings.
func ParseResponse(raw, marker string) (Response, error) {
	var fields map[string]json.RawMessage
	if err := llm.DecodeLLMJSON(raw, &fields); err != nil {
		return Response{}, services.Wrap(services.ErrValidation, "semantic", "parse response", "malformed json", err)
	}

	choice, err := parseChoice(fields["choice"])
	if err != nil {
		return Response{}, err
	}
	key := "split" + choice
	if _, ok := fields[key]; !ok {
		return Response{}, services.Wrap(services.ErrValidation, "semantic", "parse response",
			fmt.Sprintf("missing required key %q", key), nil)
	}

	resp := Response{Choice: choice}
	for name, dst := range map[string]*string{
		"analysis": &resp.Analysis,
		"split1":   &resp.Split1,
		"split2":   &resp.Split2,
		"assess":   &resp.Assess,
	} {
		value, ok := fields[name]
		if !ok {
			continue
		}
		if err := json.Unmarshal(value, dst); err != nil {
			return Response{}, services.Wrap(services.ErrValidation, "semantic", "parse response",
				fmt.Sprintf("key %q is not a string", name), err)
		}
	}

	if err := resp.Validate(marker); err != nil {
		return Response{}, err
	}
	return resp, nil
}

func parseChoice(raw json.RawMessage) (string, error) {
	if len(raw) == 0 {
		return "", services.Wrap(services.ErrValidation, "semantic", "parse response", "missing required key \"choice\"", nil)
	}
	var choice string
	var asString string
	var asNumber int
	switch {
	case json.Unmarshal(raw, &asString) == nil:
		choice = strings.TrimSpace(asString)
	case json.Unmarshal(raw, &asNumber) == nil:
		choice = strconv.Itoa(asNumber)
	}
	if choice != "1" && choice != "2" {
		return "", services.Wrap(services.ErrValidation, "semantic", "parse response",
			fmt.Sprintf("invalid choice %s", string(raw)), nil)
	}
	return choice, nil
}
