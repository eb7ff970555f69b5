package services

import (
	"html/template"
	"io"
	"time"

	"github.com/ganesh-omneky/data-health-dashboard/internal/domain/ads"
)

var reportTmpl = template.Must(template.New("insights_stats").Funcs(template.FuncMap{
	"cell": func(date string, at time.Time) template.CSS {
		return template.CSS("background-color:" + cellColor(date, at))
	},
}).Parse(`<h3>Latest insight per brand and platform</h3>
<p>Generated {{.GeneratedAt.Format "2006-01-02 15:04 MST"}}</p>
<table>
<thead><tr><th>Brand ID</th><th>Brand</th><th>Platform</th><th>daily_insights</th><th>image_asset_insights</th><th>video_asset_insights</th><th>text_asset_insights</th></tr></thead>
<tbody>
{{- $at := .GeneratedAt}}
{{- range .Rows}}
<tr><td>{{.BrandID}}</td><td>{{.BrandName}}</td><td>{{.Platform}}</td>
<td style="{{cell .DailyInsights $at}}">{{.DailyInsights}}</td>
<td style="{{cell .ImageAssetInsights $at}}">{{.ImageAssetInsights}}</td>
<td style="{{cell .VideoAssetInsights $at}}">{{.VideoAssetInsights}}</td>
<td style="{{cell .TextAssetInsights $at}}">{{.TextAssetInsights}}</td></tr>
{{- end}}
</tbody>
</table>
`))

func cellColor(date string, at time.Time) string {
	d, err := ads.ParseDate(date)
	if date == NullDate || err != nil {
		return ads.StatusUnknown.ColorHex()
	}
	return ClassifyFreshness(at, &d, 0, ads.ChannelUnknown).Color
}

// RenderStatsHTML writes the stats table, each date cell coloured by its
// freshness at generation time.
func RenderStatsHTML(w io.Writer, stats *InsightStats) error {
	return reportTmpl.Execute(w, stats)
}
