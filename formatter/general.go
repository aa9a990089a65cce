package formatter

type GeneralDiagnosticFormatter struct{}

func (f *GeneralDiagnosticFormatter) DiagnosticTemplate() string {
	return `{{header .Rule .Severity .MaxLineNumWidth .Unit -}}
{{snippet .SnippetLines .MaxLineNumWidth .Padding -}}
{{underlineAndMessage .Message .Padding .SnippetLines -}}
{{if .Note}}{{note .Note}}{{end}}
`
}
