package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/shaiso/invoker/internal/domain"
)

// Output управляет форматированием вывода CLI.
type Output struct {
	jsonMode bool
	w        io.Writer // stdout для данных
	errW     io.Writer // stderr для сообщений
}

// NewOutput создаёт Output. Если jsonMode=true, данные выводятся в JSON.
func NewOutput(jsonMode bool) *Output {
	return NewOutputTo(jsonMode, os.Stdout, os.Stderr)
}

// NewOutputTo создаёт Output с заданными потоками.
func NewOutputTo(jsonMode bool, w, errW io.Writer) *Output {
	return &Output{
		jsonMode: jsonMode,
		w:        w,
		errW:     errW,
	}
}

// Print выводит данные: таблицу или JSON в зависимости от режима.
func (o *Output) Print(headers []string, rows [][]string, jsonData any) {
	if o.jsonMode {
		o.JSON(jsonData)
		return
	}
	o.Table(headers, rows)
}

// Table выводит данные в виде таблицы через tabwriter.
func (o *Output) Table(headers []string, rows [][]string) {
	tw := tabwriter.NewWriter(o.w, 0, 0, 2, ' ', 0)

	// Заголовки
	fmt.Fprintln(tw, strings.Join(headers, "\t"))

	// Разделитель
	dashes := make([]string, len(headers))
	for i, h := range headers {
		dashes[i] = strings.Repeat("-", len(h))
	}
	fmt.Fprintln(tw, strings.Join(dashes, "\t"))

	// Строки данных
	for _, row := range rows {
		fmt.Fprintln(tw, strings.Join(row, "\t"))
	}

	_ = tw.Flush()
}

// JSON выводит данные в формате JSON с отступами.
// Бинарные значения в результатах кодируются base64.
func (o *Output) JSON(v any) {
	enc := json.NewEncoder(o.w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		o.Error(fmt.Sprintf("encode json: %v", err))
	}
}

// Report выводит отчёт о run: сводку и таблицу команд, либо JSON.
func (o *Output) Report(run *domain.Run) {
	if o.jsonMode {
		o.JSON(run)
		return
	}

	fmt.Fprintf(o.w, "Run %s: %s (%d/%d commands, %s)\n",
		run.ID, run.Status, len(run.Executions), run.Total, formatDuration(run.Duration()))
	if run.Error != "" {
		fmt.Fprintf(o.w, "Error: %s\n", run.Error)
	}
	if len(run.Executions) == 0 {
		return
	}
	fmt.Fprintln(o.w)

	o.Table(executionHeaders, executionRows(run))
}

var executionHeaders = []string{"#", "CAPABILITY", "RESULTS_ID", "STATUS", "STAGE", "DURATION"}

func executionRows(run *domain.Run) [][]string {
	rows := make([][]string, 0, len(run.Executions)+1)
	for i := range run.Executions {
		e := &run.Executions[i]
		rows = append(rows, []string{
			strconv.Itoa(e.Index),
			e.Capability(),
			dash(e.ResultsID),
			string(e.Status),
			dash(e.Stage),
			formatDuration(e.Duration()),
		})
	}
	if skipped := run.Skipped(); skipped > 0 {
		rows = append(rows, []string{"", fmt.Sprintf("(%d skipped)", skipped), "", "", "", ""})
	}
	return rows
}

// Success выводит сообщение об успехе в stderr.
func (o *Output) Success(msg string) {
	fmt.Fprintln(o.errW, msg)
}

// Error выводит сообщение об ошибке в stderr.
func (o *Output) Error(msg string) {
	fmt.Fprintln(o.errW, "Error: "+msg)
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func formatDuration(d time.Duration) string {
	switch {
	case d <= 0:
		return "-"
	case d < time.Millisecond:
		return d.String()
	default:
		return d.Round(time.Millisecond).String()
	}
}

func formatTime(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return t.Local().Format(time.DateTime)
}
