package handler

import (
	"bytes"
	"html/template"
	"net/http"

	"linkkit/internal/model"
)

var pages = template.Must(template.New("pages").Parse(`
{{define "head"}}<!DOCTYPE html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.}}</title>
<style>
body{font-family:system-ui,sans-serif;background:#f4f6f8;margin:0}
.container{max-width:560px;margin:4rem auto;background:#fff;padding:2rem;border-radius:8px}
input{width:100%;padding:.6rem;box-sizing:border-box}
.error{color:#b00020}
</style>
</head>
<body>{{end}}

{{define "index"}}{{template "head" "URL Shortener"}}
<script>
if (location.hash.length > 1) {
  location.replace(encodeURIComponent(location.hash.slice(1)));
}
</script>
<div class="container">
  <h1>URL Shortener</h1>
  <input id="url-input" type="url" placeholder="https://example.com/long/path">
  <button id="shorten-btn">Shorten</button>
  <div id="result"></div>
</div>
<script>
document.getElementById('shorten-btn').addEventListener('click', async () => {
  const input = document.getElementById('url-input');
  const result = document.getElementById('result');
  result.textContent = '';
  const res = await fetch('api/shorten', {
    method: 'POST',
    headers: {'Content-Type': 'application/json'},
    body: JSON.stringify({url: input.value.trim()}),
  });
  if (!res.ok) {
    result.className = 'error';
    result.textContent = (await res.text()).trim();
    return;
  }
  const body = await res.json();
  const a = document.createElement('a');
  a.href = body.short_url;
  a.target = '_blank';
  a.textContent = body.short_url;
  const btn = document.createElement('button');
  btn.textContent = 'Copy to Clipboard';
  btn.onclick = () => navigator.clipboard.writeText(body.short_url)
    .then(() => { btn.textContent = 'Copied!'; setTimeout(() => btn.textContent = 'Copy to Clipboard', 2000); })
    .catch(() => { btn.textContent = 'Could not copy'; });
  result.className = '';
  result.append('Short URL: ', a, ' ', btn);
  input.value = '';
});
</script>
</body>
</html>{{end}}

{{define "notfound"}}{{template "head" "URL Not Found"}}
<div class="container">
  <h1>URL Not Found</h1>
  <p>The shortened URL you're trying to access doesn't exist.</p>
  <a href="{{.Home}}">Create a new short URL</a>
</div>
</body>
</html>{{end}}
`))

const (
	indexPage    = "index"
	notFoundPage = "notfound"
)

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, status int, name string, l *model.Landing) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, l); err != nil {
		h.logger(r).WithError(err).Error("render page")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}
