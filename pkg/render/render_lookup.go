package render

import (
	"fmt"
	"html/template"
	"io"
	"strings"

	"go.uber.org/zap"

	"github.com/yumyai/mutlookup/logger"
	"github.com/yumyai/mutlookup/pkg/handler/request"
	"github.com/yumyai/mutlookup/pkg/model"
)

var lookupPageTemplate *template.Template

type LookupPageData struct {
	Form   request.LookupForm
	Result *model.LookupResult
	Error  string
}

// PeriodRow is one line of the binned table, one cell per source.
type PeriodRow struct {
	Label string
	Cells []model.PeriodCount
}

func init() {
	mainTmpl := `
	<!DOCTYPE html>
	<html>
	<head>
	    <link href="/static/style.css" rel="stylesheet"></link>
		<title>SARS-CoV-2 Mutation Lookup</title>
	</head>
	<body>
		<header>
			<h1>SARS-CoV-2 Mutation Analysis</h1>
			<p>
				Analyze mutations in Mpro (Main Protease), PLpro (Papain-Like Protease) and RBD (Receptor Binding Domain).
				The data is sourced from GISAID and GenBank, representing mutations sequenced in the population.
			</p>
		</header>
		{{template "lookupForm" .}}
		{{if .Error}}
			<p class="error">{{.Error}}</p>
		{{end}}
		{{with .Result}}
			{{template "metrics" .}}
			{{if .AnyFound}}
				{{if $.ShowChart}}
				<img class="timeline" src="{{$.ChartURL}}" alt="Timeline of {{join .AdjustedTokens}}"></img>
				{{else}}
				<p class="warning">Only one period has data; pick a finer time binning to see a timeline.</p>
				{{end}}
				{{template "periodTable" $}}
			{{end}}
		{{end}}
	</body>
	</html>`

	lookupForm := `
	{{define "lookupForm"}}
	<form id="lookupForm" action="/" method="GET">
		<div class="form-row">
			<label>Protein:
			<select name="protein" id="protein">
				{{range .Proteins}}
				<option value="{{.}}" {{if eq (print .) $.Form.Protein}}selected{{end}}>{{.DisplayName}}</option>
				{{end}}
			</select>
			</label>
			<label>Mutation(s):
			<input type="text" name="mutations" size="50" value="{{.Form.Mutations}}"
			  placeholder="e.g. P132H, or several separated by commas: P132H, K90R"></input>
			</label>
			<input type="submit" value="Look up"></input>
		</div>
		<div class="form-row">
			<label>Time Binning:
			<select name="binning" onchange="this.form.submit()">
				<option value="daily"   {{if eq .Form.Binning "daily"}}selected{{end}}>Daily</option>
				<option value="weekly"  {{if eq .Form.Binning "weekly"}}selected{{end}}>Weekly</option>
				<option value="monthly" {{if eq .Form.Binning "monthly"}}selected{{end}}>Monthly</option>
			</select>
			</label>
			<label>Y-axis Scale:
			<select name="scale" onchange="this.form.submit()">
				<option value="linear" {{if eq .Form.Scale "linear"}}selected{{end}}>Linear</option>
				<option value="log"    {{if eq .Form.Scale "log"}}selected{{end}}>Log</option>
			</select>
			</label>
			<label>Count Type:
			<select name="mode" onchange="this.form.submit()">
				<option value="absolute" {{if eq .Form.Mode "absolute"}}selected{{end}}>Absolute</option>
				<option value="relative" {{if eq .Form.Mode "relative"}}selected{{end}}>Relative (%)</option>
			</select>
			</label>
		</div>
	</form>
	{{end}}`

	metricsTmpl := `
	{{define "metrics"}}
	<div class="sources">
		{{range .Results}}
		<div class="source-column">
			<h3>{{.Source.DisplayName}} Dataset</h3>
			{{if .Found}}
				<div class="metric"><span>Sequence Count</span><strong>{{.SequenceCount}}</strong></div>
				<div class="metric"><span>Unique Strain Count</span><strong>{{.UniqueStrains}}</strong></div>
				<div class="metric"><span>Prevalence</span><strong>{{percent .Prevalence}}</strong></div>
				{{if .Summary.Periods}}
				<div class="metric"><span>Peak</span><strong>{{printf "%.2f" .Summary.PeakRelative}}% ({{.Summary.PeakPeriod}})</strong></div>
				{{end}}
			{{else}}
				<p class="warning">Mutation(s) not found in {{.Source.DisplayName}} dataset</p>
			{{end}}
		</div>
		{{end}}
	</div>
	{{end}}`

	tableTmpl := `
	{{define "periodTable"}}
	<table class="periodtable" border="1">
		<tr>
			<th>Period</th>
			{{range .Result.Results}}<th>{{.Source.DisplayName}}</th><th>Total</th><th>%</th>{{end}}
		</tr>
		{{range .Rows}}
		<tr>
			<td>{{.Label}}</td>
			{{range .Cells}}<td>{{.Matched}}</td><td>{{.Total}}</td><td>{{printf "%.2f" .Relative}}</td>{{end}}
		</tr>
		{{end}}
	</table>
	{{end}}`

	funcMap := template.FuncMap{
		"percent": func(f float64) string { return fmt.Sprintf("%.2f%%", f*100) },
		"join":    func(tokens []string) string { return strings.Join(tokens, ", ") },
	}

	lookupPageTemplate = template.New("lookup").Funcs(funcMap)
	lookupPageTemplate = template.Must(lookupPageTemplate.Parse(mainTmpl))
	lookupPageTemplate = template.Must(lookupPageTemplate.Parse(lookupForm))
	lookupPageTemplate = template.Must(lookupPageTemplate.Parse(metricsTmpl))
	lookupPageTemplate = template.Must(lookupPageTemplate.Parse(tableTmpl))
}

// PeriodRows lines up every source's series by period. All series of one
// result share the same periods.
func PeriodRows(res *model.LookupResult) []PeriodRow {
	if res == nil || len(res.Results) == 0 {
		return nil
	}
	rows := make([]PeriodRow, len(res.Results[0].Series))
	for i := range rows {
		rows[i].Label = res.Results[0].Series[i].Period.Label
		for _, r := range res.Results {
			rows[i].Cells = append(rows[i].Cells, r.Series[i])
		}
	}
	return rows
}

func RenderLookupPage(w io.Writer, data LookupPageData) error {
	page := struct {
		LookupPageData
		Proteins  []model.Protein
		Rows      []PeriodRow
		ChartURL  string
		ShowChart bool
	}{
		LookupPageData: data,
		Proteins:       model.ALL_PROTEINS,
		Rows:           PeriodRows(data.Result),
		ChartURL:       "/chart.png?" + data.Form.Values().Encode(),
		ShowChart:      data.Result != nil && Chartable(data.Result),
	}

	logger.Debug("Rendering lookup page",
		zap.String(logger.FieldProtein, data.Form.Protein),
		zap.String(logger.FieldTokens, data.Form.Mutations),
		zap.Int("periods", len(page.Rows)),
	)
	return lookupPageTemplate.Execute(w, page)
}
