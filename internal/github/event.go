package github

import (
	"encoding/json"
	"fmt"
	"os"
)

// eventPayload is the subset of the CI event payload file the CLI needs.
type eventPayload struct {
	PullRequest struct {
		Number int `json:"number"`
	} `json:"pull_request"`
}

// PullRequestNumberFromEvent reads the pull request number from the JSON
// event payload file the CI runner writes (the GITHUB_EVENT_PATH file).
func PullRequestNumberFromEvent(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, fmt.Errorf("failed to read event payload %s: %w", path, err)
	}

	var payload eventPayload
	if err := json.Unmarshal(data, &payload); err != nil {
		return 0, fmt.Errorf("failed to parse event payload %s: %w", path, err)
	}

	if payload.PullRequest.Number <= 0 {
		return 0, fmt.Errorf("event payload %s carries no pull_request.number", path)
	}
	return payload.PullRequest.Number, nil
}
