// Package render prints query results and reports as text tables.
package render

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/pkg/errors"

	"kernel-module-detective/internal/analyser"
)

const (
	BorderNormal   = "normal"
	BorderRounded  = "rounded"
	BorderASCII    = "ascii"
	BorderMarkdown = "markdown"
)

var (
	colorAccent  = lipgloss.Color("#20B9B4")
	colorWarning = lipgloss.Color("#F4D03F")
	colorMuted   = lipgloss.Color("#2C4A54")

	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(colorAccent)
	headerStyle  = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	warningStyle = lipgloss.NewStyle().Foreground(colorWarning)
	mutedStyle   = lipgloss.NewStyle().Foreground(colorMuted)
)

// Config controls table output. Width 0 leaves tables at their natural width.
type Config struct {
	Width   int
	MaxRows int
	Border  string
}

func DefaultConfig() Config {
	return Config{Width: 200, MaxRows: 1000, Border: BorderNormal}
}

func (c Config) Validate() error {
	if c.Width < 0 {
		return errors.Errorf("display width must not be negative, got %d", c.Width)
	}
	if c.MaxRows < 1 {
		return errors.Errorf("display max rows must be at least 1, got %d", c.MaxRows)
	}
	if _, ok := borders[c.Border]; !ok {
		return errors.Errorf("unknown border %q; supported borders are %s, %s, %s and %s",
			c.Border, BorderNormal, BorderRounded, BorderASCII, BorderMarkdown)
	}
	return nil
}

var borders = map[string]func() lipgloss.Border{
	BorderNormal:   lipgloss.NormalBorder,
	BorderRounded:  lipgloss.RoundedBorder,
	BorderASCII:    lipgloss.ASCIIBorder,
	BorderMarkdown: lipgloss.MarkdownBorder,
}

type Renderer struct {
	out    io.Writer
	config Config
}

func NewRenderer(out io.Writer, config Config) *Renderer {
	return &Renderer{out: out, config: config}
}

// Result prints a titled table of the result followed by its row count.
func (r *Renderer) Result(result analyser.Result) error {
	if result.NotFound {
		_, err := fmt.Fprintln(r.out, warningStyle.Render(result.Title))
		return errors.WithStack(err)
	}
	headers := make([]string, len(result.Columns))
	for i, c := range result.Columns {
		headers[i] = c.Name
	}
	return r.Table(fmt.Sprintf("%s (%s)", result.Title, result.Name), headers, result.Rows)
}

func (r *Renderer) Table(title string, headers []string, rows [][]any) error {
	var b strings.Builder
	if title != "" {
		b.WriteString(titleStyle.Render(title))
		b.WriteString("\n")
	}

	if len(rows) == 0 {
		b.WriteString("No results found.\n")
	} else {
		shown := rows
		if len(shown) > r.config.MaxRows {
			shown = shown[:r.config.MaxRows]
		}
		b.WriteString(r.table(headers, shown))
		b.WriteString("\n")
		if len(shown) < len(rows) {
			b.WriteString(mutedStyle.Render(fmt.Sprintf("showing first %d rows", len(shown))))
			b.WriteString("\n")
		}
	}
	b.WriteString(fmt.Sprintf("(%d rows)\n\n", len(rows)))

	_, err := io.WriteString(r.out, b.String())
	return errors.WithStack(err)
}

// Line prints a single line of plain text.
func (r *Renderer) Line(format string, args ...any) error {
	_, err := fmt.Fprintf(r.out, format+"\n", args...)
	return errors.WithStack(err)
}

func (r *Renderer) Highlight(format string, args ...any) error {
	_, err := fmt.Fprintln(r.out, titleStyle.Render(fmt.Sprintf(format, args...)))
	return errors.WithStack(err)
}

func (r *Renderer) table(headers []string, rows [][]any) string {
	cells := make([][]string, len(rows))
	for i, row := range rows {
		cells[i] = make([]string, len(row))
		for j, v := range row {
			cells[i][j] = FormatValue(v)
		}
	}

	border, ok := borders[r.config.Border]
	if !ok {
		border = lipgloss.NormalBorder
	}
	t := table.New().
		Border(border()).
		Headers(headers...).
		Rows(cells...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		})

	rendered := t.String()
	if r.config.Width > 0 && lipgloss.Width(rendered) > r.config.Width {
		rendered = t.Width(r.config.Width).String()
	}
	return rendered
}

// FormatValue renders a scanned value; floats keep two decimals and NULL prints as NULL.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return "NULL"
	case string:
		return x
	case int64:
		return strconv.FormatInt(x, 10)
	case int:
		return strconv.Itoa(x)
	case float64:
		return strconv.FormatFloat(x, 'f', 2, 64)
	case bool:
		return strconv.FormatBool(x)
	case []byte:
		return string(x)
	default:
		return fmt.Sprint(x)
	}
}
