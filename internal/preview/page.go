package preview

const pageHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>auditsnap{{if .Session}} - {{.Session}}{{end}}</title>
<style>
  body { margin: 0; padding: 20px; background: #1e1e1e; color: #ddd; font-family: system-ui, sans-serif; }
  h1 { font-size: 18px; font-weight: 600; margin: 0 0 4px; }
  .path { color: #888; font-size: 12px; margin-bottom: 16px; }
  .grid { display: grid; grid-template-columns: repeat(auto-fill, minmax(260px, 1fr)); gap: 12px; }
  figure { margin: 0; background: #2a2a2a; border-radius: 6px; overflow: hidden; }
  figure img { width: 100%; display: block; cursor: zoom-in; }
  figcaption { padding: 6px 8px; font-size: 12px; color: #aaa; }
  pre { background: #111; padding: 10px; border-radius: 6px; font-size: 12px; max-height: 240px; overflow: auto; }
  .empty { color: #888; }
</style>
</head>
<body>
{{if .Session}}
  <h1>{{.Session}}</h1>
  <div class="path">{{.SessionPath}} &middot; {{len .Images}} image(s)</div>
{{else}}
  <h1>No active session</h1>
  <div class="path">Start a session first.</div>
{{end}}
<div class="grid">
{{range .Images}}
  <figure>
    <a href="/image?name={{.Name}}" target="_blank"><img src="/image?name={{.Name}}" alt="{{.Name}}" loading="lazy"></a>
    <figcaption>{{.Name}} &middot; {{.ModTime.Format "15:04:05"}}</figcaption>
  </figure>
{{else}}
  <p class="empty">Nothing filed yet.</p>
{{end}}
</div>
<h1 style="margin-top:20px">Status</h1>
<pre>{{range .Lines}}{{.}}
{{end}}</pre>
<script>
  const events = new EventSource('/events');
  events.onmessage = () => window.location.reload();
</script>
</body>
</html>`
