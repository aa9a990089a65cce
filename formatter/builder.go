package formatter

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/fatih/color"

	"github.com/gnolang/recast/internal/rewrite"
	tt "github.com/gnolang/recast/internal/types"
)

const tabWidth = 4

var (
	errorStyle      = color.New(color.FgRed, color.Bold)
	warningStyle    = color.New(color.FgHiYellow, color.Bold)
	infoStyle       = color.New(color.FgHiCyan, color.Bold)
	ruleStyle       = color.New(color.FgYellow, color.Bold)
	fileStyle       = color.New(color.FgCyan, color.Bold)
	lineStyle       = color.New(color.FgHiBlue, color.Bold)
	messageStyle    = color.New(color.FgRed, color.Bold)
	suggestionStyle = color.New(color.FgGreen, color.Bold)
)

// diagnosticFormatter is the interface that wraps the DiagnosticTemplate
// method. Implementations decide the layout used for one rule group.
type diagnosticFormatter interface {
	DiagnosticTemplate() string
}

// getDiagnosticFormatter returns the formatter for the given rule group,
// falling back to GeneralDiagnosticFormatter.
func getDiagnosticFormatter(rule string) diagnosticFormatter {
	switch rule {
	case rewrite.GroupIndexedProperty:
		return &IndexedPropertyFormatter{}
	default:
		return &GeneralDiagnosticFormatter{}
	}
}

// GenerateFormattedDiagnostics formats diagnostics into a human-readable
// string, one block per diagnostic.
func GenerateFormattedDiagnostics(diags []tt.Diagnostic) string {
	var builder strings.Builder
	for _, d := range diags {
		builder.WriteString(buildDiagnostic(d, getDiagnosticFormatter(d.Rule)))
	}
	return builder.String()
}

// UnitHeader renders the banner printed above a rewritten unit.
func UnitHeader(unit string) string {
	return lineStyle.Sprint("// ") + fileStyle.Sprint(unit) + "\n"
}

/***** Diagnostic Formatter Builder *****/

type DiagnosticData struct {
	Severity        string
	Rule            string
	Unit            string
	Padding         string
	MaxLineNumWidth int
	Message         string
	Note            string
	SnippetLines    []string
}

func buildDiagnostic(d tt.Diagnostic, formatter diagnosticFormatter) string {
	lines := strings.Split(expandTabs(d.Node), "\n")
	maxLineNumWidth := calculateMaxLineNumWidth(len(lines))

	data := DiagnosticData{
		Severity:        d.Severity.String(),
		Rule:            d.Rule,
		Unit:            d.Unit,
		Padding:         strings.Repeat(" ", maxLineNumWidth+1),
		MaxLineNumWidth: maxLineNumWidth,
		Message:         d.Message,
		Note:            d.Note,
		SnippetLines:    lines,
	}

	funcMap := template.FuncMap{
		"header":              header,
		"snippet":             codeSnippet,
		"underlineAndMessage": underlineAndMessage,
		"note":                note,
		"propertyHint":        propertyHint,
	}

	tmpl := template.Must(template.New("diagnostic").Funcs(funcMap).Parse(formatter.DiagnosticTemplate()))

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Sprintf("Error formatting diagnostic: %v", err)
	}
	return buf.String()
}

// utils functions used in the text templates

func header(rule string, severity string, maxLineNumWidth int, unit string) string {
	var endString string
	switch severity {
	case "ERROR":
		endString = errorStyle.Sprint("error: ")
	case "WARNING":
		endString = warningStyle.Sprint("warning: ")
	case "INFO":
		endString = infoStyle.Sprint("info: ")
	}

	endString += ruleStyle.Sprint(rule) + "\n"

	padding := strings.Repeat(" ", maxLineNumWidth)
	endString += lineStyle.Sprintf("%s--> ", padding)
	endString += fileStyle.Sprint(unit) + "\n"

	return endString
}

func codeSnippet(snippetLines []string, maxLineNumWidth int, padding string) string {
	endString := lineStyle.Sprintf("%s|", padding) + "\n"
	for i, line := range snippetLines {
		lineNum := fmt.Sprintf("%*d", maxLineNumWidth, i+1)
		endString += lineStyle.Sprintf("%s | ", lineNum) + line + "\n"
	}
	return endString
}

func underlineAndMessage(message string, padding string, snippetLines []string) string {
	width := 0
	for _, line := range snippetLines {
		width = max(width, len([]rune(line)))
	}

	endString := lineStyle.Sprintf("%s| ", padding)
	endString += messageStyle.Sprint(strings.Repeat("~", max(width, 1))) + "\n"
	endString += lineStyle.Sprintf("%s= ", padding)
	endString += messageStyle.Sprint(message) + "\n"
	return endString
}

func note(note string) string {
	if note == "" {
		return ""
	}
	return suggestionStyle.Sprint("Note: ") + lineStyle.Sprint(note) + "\n"
}

func calculateMaxLineNumWidth(lastLine int) int {
	return len(fmt.Sprintf("%d", lastLine))
}

func expandTabs(s string) string {
	return strings.ReplaceAll(s, "\t", strings.Repeat(" ", tabWidth))
}
