package templates

import (
	"bytes"
	"context"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/a-h/templ"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/nutrition/internal/core"
	"github.com/JonMunkholm/nutrition/internal/schema"
	"github.com/JonMunkholm/nutrition/internal/table"
)

const testField = `<input type="hidden" name="gorilla.csrf.Token" value="tok">`

func render(t *testing.T, c templ.Component) string {
	t.Helper()
	var buf bytes.Buffer
	require.NoError(t, c.Render(context.Background(), &buf))
	return buf.String()
}

func sampleView(t *testing.T, rows []schema.Row) *table.Table {
	t.Helper()
	tbl, err := table.New(table.Options{PageSize: 5, PageSizes: []int{5, 10}})
	require.NoError(t, err)
	tbl.ReplaceAll(rows)
	return tbl
}

func TestPage_Basics(t *testing.T) {
	tbl := sampleView(t, schema.SampleRows())

	html := render(t, Page(PageData{View: tbl.View(), CSRFField: testField}))

	assert.Contains(t, html, "<title>Nutrio Track</title>")
	for _, link := range []string{"Home", "Notification", "Profile", "Settings", "Logout"} {
		assert.Contains(t, html, ">"+link+"</a>")
	}
	assert.Contains(t, html, `<span class="title">Nutrition</span>`)
	assert.Contains(t, html, "Calories ▲")
	assert.Contains(t, html, "Page 1 of 3")
	assert.Contains(t, html, `action="/table/page/next"`)
	assert.NotContains(t, html, `action="/table/page/prev"`)
	assert.NotContains(t, html, `action="/table/delete"`)
	assert.NotContains(t, html, `role="dialog"`)
	assert.Contains(t, html, `<option value="5" selected>5</option>`)
	assert.Equal(t, 5, strings.Count(html, `action="/table/select/`))
}

func TestTable_Selection(t *testing.T) {
	tbl := sampleView(t, schema.SampleRows())
	require.NoError(t, tbl.Toggle("4"))

	v := tbl.View()
	html := render(t, Table(v, testField))
	assert.Contains(t, html, `<tr class="selected">`)
	assert.Contains(t, html, "▣", "partial selection shows indeterminate")
	assert.Contains(t, html, `name="checked" value="true"`)

	tbl.SelectAll(true)
	html = render(t, Table(tbl.View(), testField))
	assert.Contains(t, html, `name="checked" value="false"`)

	toolbar := render(t, Toolbar(tbl.View(), testField))
	assert.Contains(t, toolbar, "15 selected")
	assert.Contains(t, toolbar, `action="/table/delete"`)
}

func TestTable_Empty(t *testing.T) {
	tbl := sampleView(t, nil)

	html := render(t, Table(tbl.View(), testField))

	assert.Contains(t, html, `colspan="6">No items`)
	assert.Contains(t, html, "☐")
}

func TestTable_EscapesCells(t *testing.T) {
	tbl := sampleView(t, []schema.Row{{ID: "a/b", Name: `<script>alert(1)</script>`, Calories: 1}})

	html := render(t, Table(tbl.View(), testField))

	assert.NotContains(t, html, "<script>")
	assert.Contains(t, html, "&lt;script&gt;")
	assert.Contains(t, html, `action="/table/select/a%2Fb"`)
}

func TestModal(t *testing.T) {
	form := core.FormState{
		Open:        true,
		Draft:       schema.Draft{ID: "7", Name: `"Brownie"`, Calories: "lots"},
		FieldErrors: map[string]string{"calories": "invalid number format"},
	}

	html := render(t, Modal(form, testField))

	assert.Contains(t, html, "Add / Update Item")
	assert.Contains(t, html, testField)
	assert.Contains(t, html, `name="name" value="&#34;Brownie&#34;"`)
	assert.Contains(t, html, `<span class="field-error">invalid number format</span>`)
	assert.Equal(t, 1, strings.Count(html, "field-error"))
	assert.Contains(t, html, `formaction="/items/form/cancel"`)

	page := render(t, Page(PageData{View: sampleView(t, nil).View(), Form: form, CSRFField: testField}))
	assert.Contains(t, page, `role="dialog"`)
}

func TestFlash(t *testing.T) {
	assert.Empty(t, render(t, Flash(nil)))

	html := render(t, Flash([]core.Notice{
		{Level: core.NoticeSuccess, UserMessage: core.UserMessage{Message: "Item saved successfully"}},
		{
			Level:       core.NoticeError,
			UserMessage: core.UserMessage{Message: "Some items could not be deleted", Action: "Try again", Code: "DEL001"},
			Details:     []string{"5: <oops>"},
		},
	}))

	assert.Contains(t, html, `class="notice success"`)
	assert.Contains(t, html, `class="notice error"`)
	assert.Contains(t, html, "(Code: DEL001)")
	assert.Contains(t, html, "<li>5: &lt;oops&gt;</li>")
	assert.Equal(t, 1, strings.Count(html, "Code:"))
}

func TestRender_SetsHeaders(t *testing.T) {
	rec := httptest.NewRecorder()

	require.NoError(t, Render(context.Background(), rec, 201, Navbar()))

	assert.Equal(t, 201, rec.Code)
	assert.Equal(t, "text/html; charset=utf-8", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), BrandName)
}

func TestFormFields_Order(t *testing.T) {
	fields := FormFields(core.FormState{Draft: schema.Draft{ID: "1", Protein: "4.3"}})

	require.Len(t, fields, 6)
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = f.Name
	}
	assert.Equal(t, []string{"id", "name", "calories", "fat", "carbs", "protein"}, names)
	assert.Equal(t, "4.3", fields[5].Value)
}
