package simulator

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
)

// SaveTrajectory saves a trajectory to a JSON file
func SaveTrajectory(tr *Trajectory, filename string) error {
	jsonData, err := json.MarshalIndent(tr, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal trajectory: %w", err)
	}

	if err := os.WriteFile(filename, jsonData, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// LoadTrajectory loads a trajectory from a JSON file
func LoadTrajectory(filename string) (*Trajectory, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var tr Trajectory
	if err := json.Unmarshal(data, &tr); err != nil {
		return nil, fmt.Errorf("failed to unmarshal trajectory: %w", err)
	}

	if err := ValidateTrajectory(&tr); err != nil {
		return nil, err
	}
	return &tr, nil
}

// ValidateTrajectory performs validation checks on a trajectory
func ValidateTrajectory(tr *Trajectory) error {
	if tr == nil {
		return fmt.Errorf("trajectory is nil")
	}

	if len(tr.Steps) == 0 {
		return fmt.Errorf("trajectory contains no steps")
	}

	if len(tr.Steps) > tr.Budget {
		return fmt.Errorf("trajectory has %d steps for a budget of %d", len(tr.Steps), tr.Budget)
	}

	for i, step := range tr.Steps {
		if step.Evaluation != i+1 {
			return fmt.Errorf("evaluation gap detected: expected %d, got %d at index %d",
				i+1, step.Evaluation, i)
		}
		if len(step.X) != tr.Dimension {
			return fmt.Errorf("step %d has dimension %d, expected %d", step.Evaluation, len(step.X), tr.Dimension)
		}
		if math.IsNaN(step.Observed) || math.IsInf(step.Observed, 0) {
			return fmt.Errorf("step %d has non-finite observed value", step.Evaluation)
		}
	}

	return nil
}
