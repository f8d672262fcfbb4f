package echoweb

import (
	"bytes"
	"net/http"
	"net/http/httptest"
	"testing"
	"testing/fstest"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/serene-minds/dashboard/core"
	"github.com/serene-minds/dashboard/core/chrome"
	"github.com/serene-minds/dashboard/tests"
)

func TestRenderer_Check(t *testing.T) {
	require.NoError(t, NewRenderer().Check())

	var buf bytes.Buffer
	err := NewRenderer().Render(&buf, tmplPage, pageData{AppName: "Serene Minds", Title: "Moods", Chrome: chrome.Student}, nil)
	require.NoError(t, err)
	assert.Contains(t, buf.String(), `class="chrome-student"`)
	assert.Contains(t, buf.String(), "Moods")
}

func TestRenderer_BrokenTemplatesRequestShutdown(t *testing.T) {
	broken := &Renderer{fsys: fstest.MapFS{
		"templates/layout.gohtml":     {Data: []byte(`{{define "layout"}}{{template "content" .}}{{end}}`)},
		"templates/form_error.gohtml": {Data: []byte(`{{define "form_error"}}{{end}}`)},
		// page templates missing
	}}
	assert.Error(t, broken.Check())

	err := broken.Render(&bytes.Buffer{}, tmplPage, pageData{}, nil)
	require.Error(t, err)
	assert.True(t, core.IsShutdown(err))

	// the error handler turns it into a 500 and asks the server to stop
	conf := testutil.NewConfig(t)
	var signaled int
	handler := newAppHTTPErrorHandler(conf, testutil.NewLogger(), broken, func() { signaled++ })

	e := echo.New()
	rec := httptest.NewRecorder()
	handler(err, e.NewContext(httptest.NewRequest(http.MethodGet, "/dashboard", nil), rec))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 1, signaled)

	// other server errors do not
	rec = httptest.NewRecorder()
	handler(assert.AnError, e.NewContext(httptest.NewRequest(http.MethodGet, "/api/session", nil), rec))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, 1, signaled)
}
