package registry

import (
	"fmt"
	"strconv"
	"strings"
)

// ArtifactType identifies the kind of artifact stored in the registry.
type ArtifactType string

const (
	TypeModel   ArtifactType = "model"
	TypeDataset ArtifactType = "dataset"
	TypeCode    ArtifactType = "code"
)

// ParseArtifactType converts a string into an ArtifactType.
// Matching is case-insensitive.
func ParseArtifactType(s string) (ArtifactType, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "model":
		return TypeModel, nil
	case "dataset":
		return TypeDataset, nil
	case "code":
		return TypeCode, nil
	default:
		return "", fmt.Errorf("unknown artifact type %q (must be model, dataset, or code)", s)
	}
}

// Valid reports whether the type is one of the known artifact types.
func (t ArtifactType) Valid() bool {
	switch t {
	case TypeModel, TypeDataset, TypeCode:
		return true
	}
	return false
}

func (t ArtifactType) String() string { return string(t) }

// ArtifactSummary is one entry in a catalog listing or search result.
// Identity is ID; summaries are immutable once received.
type ArtifactSummary struct {
	Name string       `json:"name"`
	ID   string       `json:"id"`
	Type ArtifactType `json:"type"`
}

// ArtifactMetadata is the identifying half of a full artifact record.
type ArtifactMetadata struct {
	Name string       `json:"name"`
	ID   string       `json:"id"`
	Type ArtifactType `json:"type"`
}

// ArtifactData holds the content locations of a full artifact record.
// DownloadURL is optional; callers should fall back to URL.
type ArtifactData struct {
	URL         string `json:"url"`
	DownloadURL string `json:"download_url,omitempty"`
}

// Artifact is the full record returned by the by-id endpoint.
type Artifact struct {
	Metadata ArtifactMetadata `json:"metadata"`
	Data     ArtifactData     `json:"data"`
}

// SubmissionRequest is the payload for registering a new artifact.
// It lives for the duration of one submission and is discarded after
// the retry policy resolves.
type SubmissionRequest struct {
	Type ArtifactType
	URL  string
}

// RateResult is the decoded rating payload for a model artifact.
// NetScore is nil when the payload carries no numeric net_score.
// Scores holds every numeric field of the payload (sub-scores and
// their latencies) for display purposes.
type RateResult struct {
	NetScore *float64
	Scores   map[string]float64
}

// CostEntry is one entry of the cost payload, keyed by artifact id.
type CostEntry struct {
	TotalCost float64 `json:"total_cost"`
}

// NotAvailable is the sentinel shown when enrichment could not
// produce a value for a field.
const NotAvailable = "N/A"

// ArtifactDetails is the enrichment record for one artifact: the net
// rating score and the storage cost, both pre-formatted for display.
// Either field degrades to NotAvailable.
type ArtifactDetails struct {
	Rating string
	Cost   string
}

// FormatRating renders a net score as its shortest decimal representation.
func FormatRating(score float64) string {
	return strconv.FormatFloat(score, 'f', -1, 64)
}

// FormatCost renders a cost value with its size-unit suffix.
func FormatCost(megabytes float64) string {
	return strconv.FormatFloat(megabytes, 'f', -1, 64) + " MB"
}
