package pipeline

import (
	"bytes"
	_ "embed"
	"html/template"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"

	"github.com/matzehuels/docdiagrams/pkg/diagram"
	"github.com/matzehuels/docdiagrams/pkg/errors"
)

//go:embed report.html.tmpl
var reportTemplateText string

var reportTemplate = template.Must(template.New("report").Parse(reportTemplateText))

type reportData struct {
	Title       string
	RunID       string
	GeneratedAt string
	Stats       Stats
	Groups      []reportGroup
}

type reportGroup struct {
	Title    string // First top-level heading of the document, may be empty
	Document string
	Cards    []reportCard
}

type reportCard struct {
	Title   string
	Type    diagram.Type
	Section string
	Line    int
	Image   string
}

// WriteReport renders the HTML index of res into Root/ReportName and
// returns its path. Diagrams are grouped by source document in processing
// order and headed by the document's first top-level heading. Image and
// document paths are relative to the report.
func WriteReport(opts Options, res *Result) (string, error) {
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return "", err
	}

	data := reportData{
		Title:       opts.ReportTitle,
		RunID:       res.RunID,
		GeneratedAt: time.Now().Format("2006-01-02 15:04:05"),
		Stats:       res.Stats,
		Groups:      groupByDocument(opts.Root, res.Diagrams),
	}

	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, data); err != nil {
		return "", errors.Wrap(errors.ErrCodeInternal, err, "render report")
	}

	path := filepath.Join(opts.Root, opts.ReportName)
	if err := os.WriteFile(path, buf.Bytes(), 0o644); err != nil {
		return "", errors.Wrap(errors.ErrCodeWrite, err, "write report %s", path)
	}
	return path, nil
}

func groupByDocument(root string, diagrams []*diagram.Diagram) []reportGroup {
	var groups []reportGroup
	index := make(map[string]int)
	md := goldmark.New()

	for _, d := range diagrams {
		i, ok := index[d.Path]
		if !ok {
			i = len(groups)
			index[d.Path] = i
			groups = append(groups, reportGroup{
				Title:    documentTitle(md, d.Path),
				Document: relSlash(root, d.Path),
			})
		}
		image := filepath.Join(filepath.Dir(d.Path), d.OutputFilename)
		groups[i].Cards = append(groups[i].Cards, reportCard{
			Title:   d.Title,
			Type:    d.Type,
			Section: d.Section,
			Line:    d.Line,
			Image:   relSlash(root, image),
		})
	}
	return groups
}

// documentTitle returns the text of the first level-1 heading of the
// Markdown document at path, or "" when it has none or cannot be read.
// Headings inside code blocks and HTML are not headings to CommonMark and
// are ignored.
func documentTitle(md goldmark.Markdown, path string) string {
	source, err := os.ReadFile(path)
	if err != nil {
		return ""
	}
	doc := md.Parser().Parse(text.NewReader(source))

	var title string
	_ = ast.Walk(doc, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		if h, ok := n.(*ast.Heading); ok && h.Level == 1 {
			title = strings.TrimSpace(inlineText(h, source))
			return ast.WalkStop, nil
		}
		return ast.WalkContinue, nil
	})
	return title
}

// inlineText concatenates the text segments below n.
func inlineText(n ast.Node, source []byte) string {
	var b strings.Builder
	_ = ast.Walk(n, func(c ast.Node, entering bool) (ast.WalkStatus, error) {
		if !entering {
			return ast.WalkContinue, nil
		}
		switch t := c.(type) {
		case *ast.Text:
			b.Write(t.Segment.Value(source))
			if t.SoftLineBreak() || t.HardLineBreak() {
				b.WriteByte(' ')
			}
		case *ast.String:
			b.Write(t.Value)
		}
		return ast.WalkContinue, nil
	})
	return b.String()
}

// relSlash returns path relative to base with forward slashes, or path
// itself when no relative form exists.
func relSlash(base, path string) string {
	rel, err := filepath.Rel(base, path)
	if err != nil {
		rel = path
	}
	return filepath.ToSlash(rel)
}
