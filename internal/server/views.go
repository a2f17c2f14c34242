package server

import (
	"html/template"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/Ogyrecheg/yatube/internal/models"
	"github.com/Ogyrecheg/yatube/web"
	"github.com/gofiber/template/html/v2"
)

// NewViews builds the HTML template engine. An empty dir uses the embedded
// templates; otherwise templates are read from dir and re-parsed on every
// render when reload is set.
func NewViews(dir string, reload bool) *html.Engine {
	var engine *html.Engine
	if dir == "" {
		engine = html.NewFileSystem(http.FS(web.Templates()), ".html")
	} else {
		engine = html.New(dir, ".html")
		engine.Reload(reload)
	}

	for name, fn := range templateFuncs() {
		engine.AddFunc(name, fn)
	}
	return engine
}

func templateFuncs() map[string]interface{} {
	return map[string]interface{}{
		"truncatechars": truncateChars,
		"formatDate":    formatDate,
		"linebreaksbr":  linebreaksBR,
	}
}

// truncateChars shortens s to n runes, the last of which is an ellipsis.
func truncateChars(s string, n int) string {
	if n < 1 || utf8.RuneCountInString(s) <= n {
		return s
	}
	return models.Truncate(s, n-1) + "…"
}

func formatDate(t time.Time) string {
	return t.Format("2 January 2006")
}

// linebreaksBR escapes s and turns newlines into <br>.
func linebreaksBR(s string) template.HTML {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return template.HTML(strings.ReplaceAll(template.HTMLEscapeString(s), "\n", "<br>"))
}
