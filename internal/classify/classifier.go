package classify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"

	"github.com/relwatch/relwatch/models"
)

// maxDeltaCommits caps the number of commit lines included in a prompt.
const maxDeltaCommits = 20

// Request describes one version change to assess.
type Request struct {
	RepoID     string
	OldVersion string
	NewVersion string
	// Notes are the release notes, if the platform published any.
	Notes string
	// Commits are delta commit subjects, consulted only when Notes is empty.
	Commits []string
}

// Classifier produces a Classification for a version change. It degrades to
// a deterministic fallback whenever the oracle fails or returns something
// unusable, so a broken AI backend never blocks alerting.
type Classifier struct {
	oracle Oracle
}

func New(oracle Oracle) *Classifier {
	return &Classifier{oracle: oracle}
}

// Classify makes exactly one oracle call per change. It never returns an
// error: any failure along the way yields the fallback assessment.
func (c *Classifier) Classify(ctx context.Context, req Request) models.Classification {
	prompt := buildPrompt(req)

	raw, err := c.oracle.Complete(ctx, prompt)
	if err != nil {
		slog.Warn("classification oracle failed, using fallback",
			"oracle", c.oracle.Name(), "repo", req.RepoID, "error", err)
		return Fallback(req)
	}

	cls, err := parseClassification(raw)
	if err != nil {
		slog.Warn("unusable oracle output, using fallback",
			"oracle", c.oracle.Name(), "repo", req.RepoID, "error", err)
		return Fallback(req)
	}
	return cls
}

// Fallback is the deterministic assessment used when the oracle is
// unavailable: medium severity, not mandatory, with a summary that still
// names both versions so the alert is useful on its own.
func Fallback(req Request) models.Classification {
	old := req.OldVersion
	if old == "" {
		old = "(none)"
	}
	return models.Classification{
		Summary: fmt.Sprintf("%s updated from %s to %s. Automated analysis was unavailable; review the release notes manually.",
			req.RepoID, old, req.NewVersion),
		MandatoryUpgrade: false,
		Severity:         models.SeverityMedium,
		Reasoning:        "Fallback assessment: the analysis oracle did not return a usable verdict.",
	}
}

func buildPrompt(req Request) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, `You are assessing a software release for operators who run this component in production.

Repository: %s
Previous version: %s
New version: %s

`, req.RepoID, req.OldVersion, req.NewVersion)

	if req.Notes != "" {
		sb.WriteString("Release notes:\n")
		sb.WriteString(req.Notes)
		sb.WriteString("\n")
	} else if len(req.Commits) > 0 {
		commits := req.Commits
		if len(commits) > maxDeltaCommits {
			commits = commits[:maxDeltaCommits]
		}
		sb.WriteString("No release notes were published. Commits since the previous version:\n")
		for _, c := range commits {
			sb.WriteString("- ")
			sb.WriteString(c)
			sb.WriteString("\n")
		}
	} else {
		sb.WriteString("No release notes or commit history are available for this change.\n")
	}

	sb.WriteString(`
Return a JSON object with exactly these fields:
- "summary": 2-3 sentences describing what changed and why an operator should care
- "mandatory_upgrade": true only if the release fixes a security vulnerability or a data-corruption or consensus-critical bug
- "severity": one of "CRITICAL", "HIGH", "MEDIUM", "LOW"
- "reasoning": 1-2 sentences justifying the severity

Respond ONLY with valid JSON, no markdown code blocks.`)

	return sb.String()
}

// fencedJSON extracts the body of a ```json ... ``` block.
var fencedJSON = regexp.MustCompile("(?s)```(?:json)?\\s*(.*?)```")

// embeddedJSON finds a brace-delimited object containing a "summary" key.
var embeddedJSON = regexp.MustCompile(`(?s)\{[^{}]*"summary"[^{}]*\}`)

// rawClassification uses pointer fields so missing keys are distinguishable
// from zero values during validation.
type rawClassification struct {
	Summary          *string `json:"summary"`
	MandatoryUpgrade *bool   `json:"mandatory_upgrade"`
	Severity         *string `json:"severity"`
	Reasoning        *string `json:"reasoning"`
}

// parseClassification recovers a Classification from raw oracle output.
// Models wrap JSON in prose or markdown fences often enough that three
// extraction stages are tried in order: the raw text, a fenced code block,
// and a regex scan for an embedded object.
func parseClassification(raw string) (models.Classification, error) {
	candidates := []string{strings.TrimSpace(raw)}
	if m := fencedJSON.FindStringSubmatch(raw); m != nil {
		candidates = append(candidates, strings.TrimSpace(m[1]))
	}
	if m := embeddedJSON.FindString(raw); m != "" {
		candidates = append(candidates, m)
	}

	var lastErr error
	for _, cand := range candidates {
		var rc rawClassification
		if err := json.Unmarshal([]byte(cand), &rc); err != nil {
			lastErr = err
			continue
		}
		cls, err := rc.validate()
		if err != nil {
			lastErr = err
			continue
		}
		return cls, nil
	}
	if lastErr == nil {
		lastErr = fmt.Errorf("no JSON object found in oracle output")
	}
	return models.Classification{}, lastErr
}

func (rc rawClassification) validate() (models.Classification, error) {
	if rc.Summary == nil || strings.TrimSpace(*rc.Summary) == "" {
		return models.Classification{}, fmt.Errorf("missing summary")
	}
	if rc.MandatoryUpgrade == nil {
		return models.Classification{}, fmt.Errorf("missing mandatory_upgrade")
	}
	if rc.Severity == nil {
		return models.Classification{}, fmt.Errorf("missing severity")
	}
	if rc.Reasoning == nil {
		return models.Classification{}, fmt.Errorf("missing reasoning")
	}
	sev := models.Severity(strings.ToUpper(strings.TrimSpace(*rc.Severity)))
	if !sev.Valid() {
		return models.Classification{}, fmt.Errorf("invalid severity %q", *rc.Severity)
	}
	return models.Classification{
		Summary:          strings.TrimSpace(*rc.Summary),
		MandatoryUpgrade: *rc.MandatoryUpgrade,
		Severity:         sev,
		Reasoning:        strings.TrimSpace(*rc.Reasoning),
	}, nil
}
