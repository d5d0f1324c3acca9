package notify

import (
	"fmt"
	"strings"
)

// subjectLine renders the one-line headline shared by all channels.
func subjectLine(a Alert) string {
	subject := fmt.Sprintf("[%s] %s %s released", a.Classification.Severity, a.RepoID, a.NewVersion)
	if a.Classification.MandatoryUpgrade {
		subject += " (MANDATORY UPGRADE)"
	}
	return subject
}

// textBody renders the plain-text alert body used by email and telegram.
func textBody(a Alert) string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Repository: %s\n", a.RepoID)
	old := a.OldVersion
	if old == "" {
		old = "(none)"
	}
	fmt.Fprintf(&sb, "Version: %s -> %s\n", old, a.NewVersion)
	fmt.Fprintf(&sb, "Severity: %s\n", a.Classification.Severity)
	fmt.Fprintf(&sb, "Mandatory upgrade: %v\n\n", a.Classification.MandatoryUpgrade)
	sb.WriteString(a.Classification.Summary)
	if a.Classification.Reasoning != "" {
		sb.WriteString("\n\nReasoning: ")
		sb.WriteString(a.Classification.Reasoning)
	}
	if a.URL != "" {
		sb.WriteString("\n\n")
		sb.WriteString(a.URL)
	}
	return sb.String()
}

// severityEmoji maps a severity tier to the marker used in chat channels.
func severityEmoji(sev string) string {
	switch sev {
	case "CRITICAL":
		return "🚨"
	case "HIGH":
		return "⚠️"
	case "MEDIUM":
		return "📦"
	case "LOW":
		return "ℹ️"
	default:
		return "📦"
	}
}

func severityColor(sev string) string {
	switch sev {
	case "CRITICAL":
		return "#FF0000"
	case "HIGH":
		return "#FF6600"
	case "MEDIUM":
		return "#FFAA00"
	case "LOW":
		return "#0099FF"
	default:
		return "#888888"
	}
}
