package api

import (
	"html/template"
	"io"
)

// chromeData feeds the page template. Body is sanitized HTML.
type chromeData struct {
	Title      string
	Path       string
	Body       template.HTML
	LiveReload bool
	EventsURL  string
}

var chromeTmpl = template.Must(template.New("page").Parse(`<!doctype html>
<html>
<head>
    <meta charset="utf-8">
    <title>{{.Title}}</title>

    <link rel="stylesheet" href="https://stackpath.bootstrapcdn.com/bootstrap/4.4.1/css/bootstrap.min.css" integrity="sha384-Vkoo8x4CGsO3+Hhxv8T/Q5PaXtkKtu6ug5TOeNV6gBiFeWPGFN9MuhOf23Q9Ifjh" crossorigin="anonymous">

    <script src="https://code.jquery.com/jquery-3.4.1.slim.min.js" integrity="sha384-J6qa4849blE2+poT4WnyKhv5vZF5SrPo0iEjwBvKU7imGFAV0wwj1yYfoRSJoZ+n" crossorigin="anonymous"></script>
    <script src="https://cdn.jsdelivr.net/npm/popper.js@1.16.0/dist/umd/popper.min.js" integrity="sha384-Q6E9RHvbIyZFJoft+2mJbHaEWldlvI9IOYy5n3zV9zzTtmI3UksdQRVvoxMfooAo" crossorigin="anonymous"></script>
    <script src="https://stackpath.bootstrapcdn.com/bootstrap/4.4.1/js/bootstrap.min.js" integrity="sha384-wfSDF2E50Y2D1uUdj0O3uMBJnjuUD4Ih7YwaYd1iqfktj0Uod8GCExl3Og8ifwB6" crossorigin="anonymous"></script>

    <link rel="stylesheet"
          href="https://cdnjs.cloudflare.com/ajax/libs/highlight.js/9.18.1/styles/default.min.css"
          integrity="sha256-zcunqSn1llgADaIPFyzrQ8USIjX2VpuxHzUwYisOwo8= sha512-h0/Zh3Xv/rDANm6S9yRPeNMHQVIy3f0VcvLGfJFeEOibLcHDadiHyqlb2+FjiwDLIGwluKRhxh1cqUYpGoj/yw=="
          crossorigin="anonymous">
    <script src="https://cdnjs.cloudflare.com/ajax/libs/highlight.js/9.18.1/highlight.min.js"
            integrity="sha256-eOgo0OtLL4cdq7RdwRUiGKLX9XsIJ7nGhWEKbohmVAQ= sha512-1LdB3V708w6G4QRl7NsVdTr7MDibyRXr9stQZ+EGjEE0ZPMZkA//ir7kCWmFyxdAJNIRXdR/ZeJmCV0boyiCXw=="
            crossorigin="anonymous"></script>
    <script>hljs.initHighlightingOnLoad();</script>

    <style>
        body {
            font-family: 'Open Sans', sans-serif;
            color: #24292e;
            background-color: #fff;
            margin: 15px 26px 26px 26px;
        }

        a {
            color: #007bff;
            text-decoration: none;
            background-color: transparent;
        }
        a:hover {
            text-decoration: underline;
        }
    </style>
{{- if .LiveReload}}
    <script>
        (function () {
            var page = {{.Path}};
            var src = new EventSource({{.EventsURL}});
            ["page.created", "page.updated", "page.deleted"].forEach(function (type) {
                src.addEventListener(type, function (e) {
                    if (JSON.parse(e.data).path === page) {
                        window.location.reload();
                    }
                });
            });
        })();
    </script>
{{- end}}
</head>
<body>
{{.Body}}
</body>
</html>
`))

func writeChrome(w io.Writer, data chromeData) error {
	return chromeTmpl.Execute(w, data)
}
