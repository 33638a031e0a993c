package web

import (
	"bytes"
	"html/template"
	"net/http"
	"strings"

	"github.com/penwyp/go-automission-monitor/internal/presentation/view"
	"github.com/penwyp/go-automission-monitor/internal/util"
)

var pages = template.Must(template.New("pages").Funcs(template.FuncMap{
	"count":   util.FormatCount,
	"webLink": webLink,
}).Parse(pageTemplates))

// webLink returns link when it is an http or https URL and "" otherwise.
// The page script applies the same rule to streamed records.
func webLink(link string) string {
	lower := strings.ToLower(strings.TrimSpace(link))
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return strings.TrimSpace(link)
	}
	return ""
}

type loginPage struct {
	Login   view.Login
	Message string
}

type dashboardPage struct {
	D *view.Dashboard
}

func (s *Server) renderLogin(w http.ResponseWriter, status int, message string) {
	s.render(w, status, "login", loginPage{
		Login: view.Login{
			Title:       view.LoginTitle,
			Subtitle:    view.LoginSubtitle,
			Placeholder: view.LoginPlaceholder,
			Button:      view.LoginButton,
		},
		Message: message,
	})
}

func (s *Server) renderDashboard(w http.ResponseWriter, d *view.Dashboard) {
	s.render(w, http.StatusOK, "dashboard", dashboardPage{D: d})
}

func (s *Server) render(w http.ResponseWriter, status int, name string, data any) {
	var buf bytes.Buffer
	if err := pages.ExecuteTemplate(&buf, name, data); err != nil {
		util.LogError("Render page failed", util.F("page", name), util.F("error", err))
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

const pageTemplates = `
{{define "head"}}<!doctype html>
<html lang="en">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.}}</title>
<style>
body{font-family:system-ui,sans-serif;background:#0f172a;color:#e2e8f0;margin:0}
main{max-width:960px;margin:0 auto;padding:2rem}
.card{background:#1e293b;border-radius:.75rem;padding:1rem 1.25rem;flex:1}
.cards{display:flex;gap:1rem;margin:1.5rem 0}
.value{font-size:2rem;font-weight:700}
.applied{color:#4ade80}.skipped{color:#fbbf24}.failed{color:#f87171}
.badge{border-radius:999px;padding:.1rem .6rem;font-size:.8rem;border:1px solid currentColor}
.item{display:flex;justify-content:space-between;border-bottom:1px solid #334155;padding:.75rem 0}
.muted{color:#94a3b8}.error{color:#f87171}
a{color:#93c5fd}
</style>
</head>{{end}}

{{define "login"}}{{template "head" .Login.Title}}
<body><main>
<h1>{{.Login.Title}}</h1>
<p class="muted">{{.Login.Subtitle}}</p>
<form method="post" action="/login">
<input type="password" name="password" placeholder="{{.Login.Placeholder}}" autofocus>
<button type="submit">{{.Login.Button}}</button>
</form>
{{if .Message}}<p class="error" role="alert">{{.Message}}</p>{{end}}
</main></body></html>{{end}}

{{define "item"}}<div class="item">
<div>
<div><strong>{{.Company}}</strong></div>
<div>{{with webLink .Link}}<a href="{{.}}" target="_blank" rel="noopener noreferrer">{{$.JobTitle}}</a>{{else}}{{.JobTitle}}{{end}}</div>
<div class="muted">{{.When}}</div>
</div>
<div><span class="badge {{.Badge}}">{{.Badge.Label}}</span> <span class="muted">{{.Status}}</span></div>
</div>{{end}}

{{define "dashboard"}}{{template "head" .D.Title}}
<body><main>
<form method="post" action="/logout" style="float:right"><button type="submit">Lock</button></form>
<h1>{{.D.Title}}</h1>
<p class="muted">{{.D.Subtitle}}</p>
<div class="cards">{{range .D.Cards}}
<div class="card"><div class="muted">{{.Label}}</div><div class="value {{.Tone}}">{{count .Value}}</div></div>{{end}}
</div>
<p><span id="caption">{{.D.Caption}}</span> · <span id="indicator">{{.D.Indicator}}</span></p>
<div id="feed">{{if .D.Empty}}<p class="muted">{{.D.Empty}}</p>{{else}}{{range .D.Items}}{{template "item" .}}{{end}}{{end}}</div>
<script>
(function(){
  var feed=document.getElementById("feed"),ind=document.getElementById("indicator");
  var vals=document.querySelectorAll(".card .value");
  function webLink(u){var l=(u||"").trim().toLowerCase();return l.indexOf("http://")===0||l.indexOf("https://")===0?(u||"").trim():""}
  function el(tag,cls,text){var e=document.createElement(tag);if(cls)e.className=cls;if(text!==undefined)e.textContent=text;return e}
  function render(r){
    ind.textContent=r.indicator;
    var s=[r.stats.total,r.stats.applied,r.stats.skipped];
    for(var i=0;i<vals.length&&i<s.length;i++)vals[i].textContent=s[i].toLocaleString();
    feed.replaceChildren();
    if(!r.records.length){feed.appendChild(el("p","muted",r.empty));return}
    r.records.forEach(function(it){
      var row=el("div","item"),left=el("div"),right=el("div");
      left.appendChild(el("div")).appendChild(el("strong",null,it.company));
      var title=el("div");
      var link=webLink(it.link);
      if(link){var a=el("a",null,it.job_title);a.href=link;a.target="_blank";a.rel="noopener noreferrer";title.appendChild(a)}
      else title.textContent=it.job_title;
      left.appendChild(title);left.appendChild(el("div","muted",it.when));
      right.appendChild(el("span","badge "+it.badge,it.badge.charAt(0).toUpperCase()+it.badge.slice(1)));
      right.appendChild(document.createTextNode(" "));right.appendChild(el("span","muted",it.status));
      row.appendChild(left);row.appendChild(right);feed.appendChild(row);
    });
  }
  var es=new EventSource("/events");
  es.addEventListener("snapshot",function(e){render(JSON.parse(e.data))});
  es.addEventListener("failure",function(e){render(JSON.parse(e.data))});
  es.onerror=function(){ind.textContent="Disconnected"};
})();
</script>
</main></body></html>{{end}}
`
