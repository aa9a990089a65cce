package formatter

import "strings"

// IndexedPropertyFormatter adds a hint on how to teach the property table
// the missing accessor.
type IndexedPropertyFormatter struct{}

func (f *IndexedPropertyFormatter) DiagnosticTemplate() string {
	return `{{header .Rule .Severity .MaxLineNumWidth .Unit -}}
{{snippet .SnippetLines .MaxLineNumWidth .Padding -}}
{{underlineAndMessage .Message .Padding .SnippetLines -}}
{{propertyHint .Padding .Message -}}
{{if .Note}}{{note .Note}}{{end}}
`
}

// propertyHint turns "Decl.get_Items ~?> GetItem" into a suggestion for
// the property table file.
func propertyHint(padding string, message string) string {
	key, guess, ok := strings.Cut(message, " ~?> ")
	if !ok {
		return ""
	}
	endString := lineStyle.Sprintf("%s= ", padding)
	endString += suggestionStyle.Sprint("help: ")
	endString += "add \"" + key + ": " + guess + "\" to the property table\n"
	return endString
}
