package component

import (
	"context"
	"fmt"
	"io"

	"github.com/a-h/templ"
	"github.com/felixbrock/mochagen/internal/domain"
)

func page(title string, body func(w io.Writer) error) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		_, err := fmt.Fprintf(w, "<!doctype html><html><head><title>%s</title></head><body>", templ.EscapeString(title))
		if err != nil {
			return err
		}
		err = body(w)
		if err != nil {
			return err
		}
		_, err = io.WriteString(w, "</body></html>")
		return err
	})
}

func Index() templ.Component {
	return page("mochagen", func(w io.Writer) error {
		_, err := io.WriteString(w,
			`<h1>mochagen</h1>
<p>POST a list of functions to /api/generation to generate mocha tests for them.</p>
<p><a href="/report">View the current report</a></p>`)
		return err
	})
}

func Loading(msg string) templ.Component {
	return page("mochagen", func(w io.Writer) error {
		_, err := fmt.Fprintf(w, `<h1>Working...</h1><p>%s</p><p><a href="/report">Check the report</a></p>`,
			templ.EscapeString(msg))
		return err
	})
}

func Error(code int, title string, msg string) templ.Component {
	return page(title, func(w io.Writer) error {
		_, err := fmt.Fprintf(w, `<h1>%d %s</h1><p>%s</p>`, code, templ.EscapeString(title), templ.EscapeString(msg))
		return err
	})
}

func Report(report domain.Report) templ.Component {
	return page("mochagen report", func(w io.Writer) error {
		_, err := fmt.Fprintf(w, "<h1>Generated tests</h1><p>%d of %d tests passing</p>",
			report.PassedCount(), len(report.Tests))
		if err != nil {
			return err
		}

		for i := 0; i < len(report.Tests); i++ {
			info := report.Tests[i]
			_, err = fmt.Fprintf(w,
				`<section><h2>%s <em>(%s)</em></h2><p>%s</p><pre><code>%s</code></pre><p>derived from %d prompt(s)</p></section>`,
				templ.EscapeString(info.TestName),
				templ.EscapeString(string(info.Outcome.Status)),
				templ.EscapeString(info.Outcome.Message),
				templ.EscapeString(info.TestSource),
				len(info.Prompts))
			if err != nil {
				return err
			}
		}

		_, err = fmt.Fprintf(w, "<h2>Runs</h2><ul>")
		if err != nil {
			return err
		}
		for i := 0; i < len(report.Runs); i++ {
			run := report.Runs[i]
			_, err = fmt.Fprintf(w, "<li>%s @ %.1f: %s</li>",
				templ.EscapeString(run.Function), run.Temperature, templ.EscapeString(run.State))
			if err != nil {
				return err
			}
		}
		_, err = io.WriteString(w, "</ul>")
		return err
	})
}
