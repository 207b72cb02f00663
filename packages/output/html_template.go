package output

const htmlTemplate = `<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<title>stripcheck report</title>
<style>
body { font-family: -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif; margin: 2rem; color: #222; }
h1 { font-size: 1.4rem; margin-bottom: 0.2rem; }
.meta { color: #666; font-size: 0.85rem; }
.bar { display: flex; height: 8px; border-radius: 4px; overflow: hidden; margin: 1rem 0; background: #eee; }
.bar .passed { background: #2e7d32; }
.bar .failed { background: #c62828; }
.bar .skipped { background: #f9a825; }
table { border-collapse: collapse; width: 100%; }
th, td { text-align: left; padding: 0.4rem 0.6rem; border-bottom: 1px solid #eee; vertical-align: top; }
tr.passed td.status { color: #2e7d32; font-weight: 600; }
tr.failed td.status { color: #c62828; font-weight: 600; }
tr.skipped td.status { color: #f9a825; font-weight: 600; }
.checks { font-size: 0.85rem; margin: 0.3rem 0 0; padding-left: 1rem; }
.checks .fail { color: #c62828; }
.page-errors { color: #c62828; font-size: 0.85rem; }
img.shot { max-width: 240px; border: 1px solid #ddd; margin: 0.2rem 0.2rem 0 0; }
</style>
</head>
<body>
<h1>stripcheck {{.Version}}</h1>
<div class="meta">Run {{.RunID}} &middot; {{.Time}} &middot; {{.Duration}}ms (p50 {{.P50}}ms, p95 {{.P95}}ms)</div>
<p>{{.Summary.Passed}} passed, {{.Summary.Failed}} failed{{if .Summary.Skipped}}, {{.Summary.Skipped}} skipped{{end}}, {{.Summary.Total}} total</p>
<div class="bar">
<div class="passed" style="width: {{printf "%.1f" .PassedPercent}}%"></div>
<div class="failed" style="width: {{printf "%.1f" .FailedPercent}}%"></div>
<div class="skipped" style="width: {{printf "%.1f" .SkippedPercent}}%"></div>
</div>
<table>
<thead><tr><th>ID</th><th>Scenario</th><th>Status</th><th>Time</th><th>Screenshots</th></tr></thead>
<tbody>
{{range .Tests}}
<tr class="{{.StatusClass}}">
<td>{{.ID}}</td>
<td>
<div>{{.Title}}</div>
{{if .Note}}<div class="meta">{{.Note}}</div>{{end}}
{{if .Assertions}}
<ul class="checks">
{{range .Assertions}}
<li{{if not .Passed}} class="fail"{{end}}>{{.Subject}} {{.Operator}} {{.ExpectedStr}}{{if not .Passed}} (got {{.ActualStr}}){{end}}</li>
{{end}}
</ul>
{{end}}
{{range .PageErrors}}<div class="page-errors">{{.}}</div>{{end}}
</td>
<td class="status">{{.Status}}</td>
<td>{{.Duration}}ms</td>
<td>{{range .Refs}}<a href="{{.}}"><img class="shot" src="{{.}}" alt="{{.}}"></a>{{end}}</td>
</tr>
{{end}}
</tbody>
</table>
</body>
</html>
`
