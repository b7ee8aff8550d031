package main

import (
	"chat-memory/domain"
	"io"
	"strconv"
	"time"

	"github.com/gookit/color"
	"github.com/olekukonko/tablewriter"
)

const timeLayout = "2006-01-02 15:04:05"

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoWrapText(false)
	table.SetAutoFormatHeaders(true)
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetCenterSeparator("")
	table.SetColumnSeparator("")
	table.SetRowSeparator("")
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetTablePadding("\t")
	return table
}

func (a *app) status(status domain.SessionStatus) string {
	if a.noColor {
		return string(status)
	}
	switch status {
	case domain.SessionActive:
		return color.Green.Render(status)
	case domain.SessionArchived:
		return color.Yellow.Render(status)
	default:
		return color.Red.Render(status)
	}
}

func (a *app) role(role domain.Role) string {
	if a.noColor {
		return string(role)
	}
	if role == domain.RoleUser {
		return color.Cyan.Render(role)
	}
	return color.Magenta.Render(role)
}

func (a *app) highlight(text string) string {
	if a.noColor {
		return text
	}
	return color.New(color.Bold, color.FgGreen).Render(text)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format(timeLayout)
}

func optionalInt[T int | int64](v *T) string {
	if v == nil {
		return "-"
	}
	return strconv.FormatInt(int64(*v), 10)
}

func optionalString(v *string) string {
	if v == nil {
		return "-"
	}
	return *v
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n-3]) + "..."
}
