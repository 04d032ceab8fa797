package templates

import (
	"context"
	"net/url"
	"strconv"

	"github.com/a-h/templ"

	"github.com/JonMunkholm/nutrition/internal/core"
	"github.com/JonMunkholm/nutrition/internal/table"
)

// BrandName is shown in the navigation bar.
const BrandName = "Nutrio Track"

// drawerLinks are the static navigation entries.
var drawerLinks = []string{"Home", "Notification", "Profile", "Settings"}

// PageData is everything the full page renders.
type PageData struct {
	View      table.View
	Form      core.FormState
	Notices   []core.Notice
	CSRFField string // Hidden input markup, trusted
}

// FormField describes one input of the add/update form.
type FormField struct {
	Name  string
	Label string
	Type  string
	Value string
}

// FormFields lists the form inputs in display order.
func FormFields(form core.FormState) []FormField {
	d := form.Draft
	return []FormField{
		{Name: "id", Label: "ID", Type: "text", Value: d.ID},
		{Name: "name", Label: "Name", Type: "text", Value: d.Name},
		{Name: "calories", Label: "Calories", Type: "text", Value: d.Calories},
		{Name: "fat", Label: "Fat", Type: "text", Value: d.Fat},
		{Name: "carbs", Label: "Carbs", Type: "text", Value: d.Carbs},
		{Name: "protein", Label: "Protein", Type: "text", Value: d.Protein},
	}
}

// Page renders the full admin page.
func Page(data PageData) templ.Component {
	return component(func(ctx context.Context, p *printer) {
		p.raw(`<!DOCTYPE html><html lang="en"><head><meta charset="utf-8">`)
		p.raw(`<title>`)
		p.text(BrandName)
		p.raw(`</title><style>`, stylesheet, `</style></head><body>`)

		p.child(ctx, Navbar())
		p.child(ctx, Flash(data.Notices))
		p.raw(`<main class="content">`)
		p.child(ctx, Toolbar(data.View, data.CSRFField))
		p.child(ctx, Table(data.View, data.CSRFField))
		p.child(ctx, Pager(data.View, data.CSRFField))
		p.raw(`<div class="actions"><a class="button primary" href="/items/form">Add / Update Item</a></div>`)
		p.raw(`</main>`)
		if data.Form.Open {
			p.child(ctx, Modal(data.Form, data.CSRFField))
		}
		p.raw(`</body></html>`)
	})
}

// Navbar renders the top bar with the brand and the navigation drawer.
func Navbar() templ.Component {
	return component(func(_ context.Context, p *printer) {
		p.raw(`<nav class="navbar"><details class="drawer"><summary aria-label="Menu">&#9776;</summary><ul>`)
		for _, link := range drawerLinks {
			p.raw(`<li><a href="/">`)
			p.text(link)
			p.raw(`</a></li>`)
		}
		p.raw(`</ul><ul><li><a href="/">Logout</a></li></ul></details>`)
		p.raw(`<span class="brand">`)
		p.text(BrandName)
		p.raw(`</span></nav>`)
	})
}

// Flash renders queued notices once.
func Flash(notices []core.Notice) templ.Component {
	return component(func(_ context.Context, p *printer) {
		if len(notices) == 0 {
			return
		}
		p.raw(`<section class="flash">`)
		for _, n := range notices {
			p.rawf(`<div class="notice %s" role="alert"><strong>`, templ.EscapeString(string(n.Level)))
			p.text(n.Message)
			p.raw(`</strong>`)
			if n.Code != "" {
				p.raw(` <span class="code">(Code: `)
				p.text(n.Code)
				p.raw(`)</span>`)
			}
			if n.Action != "" {
				p.raw(`<p>`)
				p.text(n.Action)
				p.raw(`</p>`)
			}
			if len(n.Details) > 0 {
				p.raw(`<ul>`)
				for _, d := range n.Details {
					p.raw(`<li>`)
					p.text(d)
					p.raw(`</li>`)
				}
				p.raw(`</ul>`)
			}
			p.raw(`</div>`)
		}
		p.raw(`</section>`)
	})
}

// Toolbar shows the selection count and the delete action.
func Toolbar(v table.View, csrfField string) templ.Component {
	return component(func(_ context.Context, p *printer) {
		p.raw(`<div class="toolbar">`)
		if v.Selected > 0 {
			p.raw(`<span class="title selected">`)
		} else {
			p.raw(`<span class="title">`)
		}
		p.text(v.Title())
		p.raw(`</span>`)
		if v.Selected > 0 {
			postButton(p, "/table/delete", csrfField, "Delete", "danger", nil)
		}
		postButton(p, "/table/refresh", csrfField, "Refresh", "", nil)
		p.raw(`</div>`)
	})
}

// Table renders the header row and the visible rows.
func Table(v table.View, csrfField string) templ.Component {
	return component(func(_ context.Context, p *printer) {
		p.raw(`<table class="data"><thead><tr><th class="check">`)
		postButton(p, "/table/select-all", csrfField, checkGlyph(v.SelectAll), "check",
			url.Values{"checked": {strconv.FormatBool(v.SelectAll != table.Checked)}})
		p.raw(`</th>`)
		for _, h := range v.Headers {
			if h.Active {
				p.raw(`<th class="active">`)
			} else {
				p.raw(`<th>`)
			}
			label := h.Label
			if ind := h.Indicator(); ind != "" {
				label += " " + ind
			}
			postButton(p, "/table/sort/"+url.PathEscape(string(h.Key)), csrfField, label, "sort", nil)
			p.raw(`</th>`)
		}
		p.raw(`</tr></thead><tbody>`)

		if len(v.Rows) == 0 {
			p.rawf(`<tr><td class="empty" colspan="%d">No items</td></tr>`, len(v.Headers)+1)
		}
		for _, r := range v.Rows {
			if r.Selected {
				p.raw(`<tr class="selected">`)
			} else {
				p.raw(`<tr>`)
			}
			p.raw(`<td class="check">`)
			glyph := checkGlyph(table.Unchecked)
			if r.Selected {
				glyph = checkGlyph(table.Checked)
			}
			postButton(p, "/table/select/"+url.PathEscape(string(r.Row.ID)), csrfField, glyph, "check", nil)
			p.raw(`</td>`)
			for _, cell := range r.Cells {
				p.raw(`<td>`)
				p.text(cell)
				p.raw(`</td>`)
			}
			p.raw(`</tr>`)
		}
		p.raw(`</tbody></table>`)
	})
}

// Pager renders the page size selector and previous/next controls.
func Pager(v table.View, csrfField string) templ.Component {
	return component(func(_ context.Context, p *printer) {
		p.raw(`<div class="pager">`)
		p.raw(`<form method="post" action="/table/page-size">`, csrfField)
		p.raw(`<label>Rows per page <select name="size">`)
		for _, size := range v.PageSizes {
			if size == v.PageSize {
				p.rawf(`<option value="%d" selected>%d</option>`, size, size)
			} else {
				p.rawf(`<option value="%d">%d</option>`, size, size)
			}
		}
		p.raw(`</select></label> <button type="submit">Apply</button></form>`)

		p.raw(`<span class="position">`)
		p.text(v.PageLabel())
		p.raw(`</span>`)
		if v.HasPrev() {
			postButton(p, "/table/page/prev", csrfField, "Previous", "", nil)
		}
		if v.HasNext() {
			postButton(p, "/table/page/next", csrfField, "Next", "", nil)
		}
		p.raw(`</div>`)
	})
}

// Modal renders the add/update form dialog.
func Modal(form core.FormState, csrfField string) templ.Component {
	return component(func(_ context.Context, p *printer) {
		p.raw(`<div class="backdrop"><div class="modal" role="dialog" aria-modal="true">`)
		p.raw(`<h2>Add / Update Item</h2>`)
		p.raw(`<form method="post" action="/items">`, csrfField)
		for _, f := range FormFields(form) {
			p.raw(`<label>`)
			p.text(f.Label)
			p.rawf(`<input type="%s" name="%s" value="`, f.Type, f.Name)
			p.text(f.Value)
			p.raw(`">`)
			if msg, ok := form.FieldErrors[f.Name]; ok {
				p.raw(`<span class="field-error">`)
				p.text(msg)
				p.raw(`</span>`)
			}
			p.raw(`</label>`)
		}
		p.raw(`<div class="dialog-actions">`)
		p.raw(`<button type="submit" formaction="/items/form/cancel" formnovalidate>Cancel</button>`)
		p.raw(`<button type="submit" class="primary">Save</button>`)
		p.raw(`</div></form></div></div>`)
	})
}

// postButton renders a one-button form that posts to action.
func postButton(p *printer, action, csrfField, label, class string, values url.Values) {
	p.raw(`<form method="post" class="inline" action="`, templ.EscapeString(action), `">`, csrfField)
	for k, vs := range values {
		for _, v := range vs {
			p.rawf(`<input type="hidden" name="%s" value="%s">`, templ.EscapeString(k), templ.EscapeString(v))
		}
	}
	if class != "" {
		p.raw(`<button type="submit" class="`, templ.EscapeString(class), `">`)
	} else {
		p.raw(`<button type="submit">`)
	}
	p.text(label)
	p.raw(`</button></form>`)
}

func checkGlyph(state table.CheckState) string {
	switch state {
	case table.Checked:
		return "☑"
	case table.Indeterminate:
		return "▣"
	default:
		return "☐"
	}
}

const stylesheet = `
body{margin:0;font-family:system-ui,sans-serif;background:#f3f4f6}
.navbar{display:flex;align-items:center;gap:1rem;padding:.5rem 1rem;background:#0e7490;color:#fff}
.navbar a{color:#fff}
.brand{font-weight:600;font-size:1.1rem}
.drawer summary{cursor:pointer;list-style:none}
.content{width:80%;margin:2rem auto}
.toolbar{display:flex;justify-content:space-between;align-items:center;background:#f3f4f6;padding:.5rem 1rem}
.title{font-weight:600}
.title.selected{color:#2563eb}
table.data{width:100%;border-collapse:collapse;background:#fff}
table.data th{background:#e5e7eb;text-align:left}
table.data td,table.data th{padding:.5rem}
tr.selected{background:#dbeafe}
form.inline{display:inline}
button.sort,button.check{background:none;border:0;cursor:pointer;font:inherit}
.pager{display:flex;gap:1rem;align-items:center;justify-content:flex-end;padding:.5rem}
.actions{display:flex;justify-content:space-around;margin-top:2.5rem}
.button,.primary{background:#0e7490;color:#fff;padding:.5rem 1rem;border-radius:.25rem;text-decoration:none;border:0}
.danger{color:#dc2626}
.backdrop{position:fixed;inset:0;background:rgba(0,0,0,.4);display:flex;align-items:center;justify-content:center}
.modal{background:#fff;border-radius:1rem;padding:1rem 1.5rem;min-width:22rem}
.modal label{display:block;margin:.5rem 0}
.modal input{display:block;width:100%}
.field-error{color:#dc2626;font-size:.85rem}
.flash{width:80%;margin:1rem auto 0}
.notice{padding:.5rem 1rem;border-radius:.25rem;margin-bottom:.5rem}
.notice.success{background:#dcfce7}
.notice.info{background:#e0f2fe}
.notice.error{background:#fee2e2}
`
