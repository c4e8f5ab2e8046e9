package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

// ScorerRequest is the single record written to the scorer's stdin.
type ScorerRequest struct {
	Preferences string   `json:"preferences"`
	Destination string   `json:"destination"`
	UserLat     *float64 `json:"user_lat,omitempty"`
	UserLon     *float64 `json:"user_lon,omitempty"`
	Budget      int      `json:"budget,omitempty"`
	Days        int      `json:"days,omitempty"`
}

// ScorerResult is one scored place as returned by the external scorer.
type ScorerResult struct {
	PlaceID string  `json:"place_id"`
	Name    string  `json:"name,omitempty"`
	Score   float64 `json:"ml_score"`
}

// ScorerInterface hides the scorer transport. A returned error means "no
// result"; callers fall back to the heuristic path and never propagate it.
type ScorerInterface interface {
	Score(ctx context.Context, req ScorerRequest) ([]ScorerResult, error)
}

// scorerTimeout bounds one scorer invocation; a stuck scorer must degrade to
// the heuristic path, not hang the request.
const scorerTimeout = 12 * time.Second

// ProcessScorer spawns an external scorer process per invocation, writes the
// request to its stdin, and parses its full stdout after exit.
type ProcessScorer struct {
	command string
	args    []string
	logger  *zap.Logger
}

func NewProcessScorer(command string, args []string, logger *zap.Logger) ScorerInterface {
	return &ProcessScorer{command: command, args: args, logger: logger}
}

func (s *ProcessScorer) Score(ctx context.Context, req ScorerRequest) ([]ScorerResult, error) {
	if s.command == "" {
		return nil, fmt.Errorf("scorer: no command configured")
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("scorer: marshal request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, scorerTimeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, s.command, s.args...)
	cmd.Stdin = bytes.NewReader(payload)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		s.logger.Warn("scorer: process failed",
			zap.String("command", s.command),
			zap.String("stderr", stderr.String()),
			zap.Error(err))
		return nil, fmt.Errorf("scorer: %w", err)
	}

	results, err := decodeScorerOutput(stdout.Bytes())
	if err != nil {
		s.logger.Warn("scorer: unusable output", zap.Error(err))
		return nil, err
	}
	return results, nil
}

// decodeScorerOutput accepts the three shapes the scorer is known to emit: a
// bare array of results, an {"error": "..."} record, or an envelope with a
// "recommendations" array.
func decodeScorerOutput(data []byte) ([]ScorerResult, error) {
	var results []ScorerResult
	if err := json.Unmarshal(data, &results); err == nil {
		return results, nil
	}

	var envelope struct {
		Error           string         `json:"error"`
		Recommendations []ScorerResult `json:"recommendations"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("scorer: parse output: %w", err)
	}
	if envelope.Error != "" {
		return nil, fmt.Errorf("scorer: %s", envelope.Error)
	}
	return envelope.Recommendations, nil
}
