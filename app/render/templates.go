package render

import (
	"html/template"
)

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{ .Title }}</title>
</head>
<body>
  <article>
    <h1>{{ .Title }}</h1>
    <p class="meta">{{ .Date }}{{ with .Author }} · {{ . }}{{ end }}</p>
    {{ .Body }}
    {{- if .Tags }}
    <ul class="tags">
      {{- range .Tags }}
      <li>{{ . }}</li>
      {{- end }}
    </ul>
    {{- end }}
  </article>
  <p><a href="index.html">Index</a></p>
</body>
</html>
`))

var indexTemplate = template.Must(template.New("index").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <title>{{ .Title }}</title>
  <link rel="alternate" type="application/rss+xml" href="index.xml">
</head>
<body>
  <h1>{{ .Title }}</h1>
  <ul>
    {{- range .Entries }}
    <li>{{ .Date }} <a href="{{ .Href }}">{{ .Title }}</a></li>
    {{- end }}
  </ul>
</body>
</html>
`))

type pageData struct {
	Title  string
	Date   string
	Author string
	Tags   []string
	Body   template.HTML
}

type indexEntry struct {
	Title string
	Date  string
	Href  string
}

type indexData struct {
	Title   string
	Entries []indexEntry
}
