package server

import (
	"html/template"
	"io"
)

// The views are deliberately plain: titles, link lists, and transcript
// lines. html/template supplies the contextual escaping; transcript text is
// stored unescaped on disk and must only ever be escaped here.

type pageLink struct {
	Href  string
	Label string
}

type indexSection struct {
	Server   string
	Channels []pageLink
}

type lineView struct {
	Time   string
	Actor  string
	Text   string
	Action bool
	// Raw carries an undecodable line verbatim; rendered escaped as-is.
	Raw string
	Bad bool
}

var globalIndexTmpl = template.Must(template.New("global").Parse(`<!DOCTYPE html>
<html><head><title>All channel logs</title></head><body>
<h1>All channel logs</h1>
{{range .}}<h2>{{.Server}}</h2>
<ul>
{{range .Channels}}<li><a href="{{.Href}}">{{.Label}}</a></li>
{{end}}</ul>
{{end}}</body></html>
`))

var listingTmpl = template.Must(template.New("listing").Parse(`<!DOCTYPE html>
<html><head><title>{{.Title}}</title></head><body>
<h1>{{.Title}}</h1>
<ul>
{{range .Links}}<li><a href="{{.Href}}">{{.Label}}</a></li>
{{end}}</ul>
</body></html>
`))

var transcriptTmpl = template.Must(template.New("transcript").Parse(`<!DOCTYPE html>
<html><head><title>{{.Title}}</title></head><body>
<h1>{{.Title}}</h1>
{{range .Lines}}{{if .Bad}}{{.Raw}}{{else if .Action}}[{{.Time}}] *{{.Actor}} {{.Text}}{{else}}[{{.Time}}] {{.Actor}}: {{.Text}}{{end}}<br/>
{{end}}</body></html>
`))

// renderGlobalIndex writes the all-servers page: every logging-enabled
// server with its channel listing.
func renderGlobalIndex(w io.Writer, sections []indexSection) error {
	return globalIndexTmpl.Execute(w, sections)
}

// renderListing writes a titled link list; used for both the server index
// (channels) and the channel index (day-files).
func renderListing(w io.Writer, title string, links []pageLink) error {
	return listingTmpl.Execute(w, struct {
		Title string
		Links []pageLink
	}{title, links})
}

// renderTranscript writes one day's transcript, each line escaped
// field-by-field.
func renderTranscript(w io.Writer, title string, lines []lineView) error {
	return transcriptTmpl.Execute(w, struct {
		Title string
		Lines []lineView
	}{title, lines})
}
