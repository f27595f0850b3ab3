package httpapi

import (
	"embed"
	"html/template"
	"net/http"
	"strconv"

	"github.com/couchcryptid/soil-data-ingest-service/internal/domain"
)

//go:embed templates/*.html
var templateFS embed.FS

var pageTemplates = template.Must(template.New("").Funcs(template.FuncMap{
	"num": formatReading,
}).ParseFS(templateFS, "templates/*.html"))

// measurementView adapts a measurement for HTML rendering.
type measurementView struct {
	domain.Measurement
}

// TimeString formats the device timestamp for display.
func (v measurementView) TimeString() string {
	if v.TS == 0 {
		return "-"
	}
	return v.Time().Format("2006-01-02 15:04:05")
}

// Place returns the geocoded name, or coordinates, or a dash.
func (v measurementView) Place() string {
	if v.LocationName != "" {
		return v.LocationName
	}
	if v.Location.HasCoordinates() {
		return formatReading(v.Location.Latitude) + ", " + formatReading(v.Location.Longitude)
	}
	return "-"
}

type dashboardData struct {
	Rows       []measurementView
	Latest     *measurementView
	TotalCount int64
}

func toViews(list []domain.Measurement) []measurementView {
	views := make([]measurementView, len(list))
	for i, m := range list {
		views[i] = measurementView{m}
	}
	return views
}

func formatReading(p *float64) string {
	if p == nil {
		return "-"
	}
	return strconv.FormatFloat(*p, 'f', -1, 64)
}

func (s *Server) renderHTML(w http.ResponseWriter, name string, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := pageTemplates.ExecuteTemplate(w, name, data); err != nil {
		s.logger.Error("render template failed", "template", name, "error", err)
	}
}
