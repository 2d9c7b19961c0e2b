package cli

import (
	"fmt"
	"io"
	"time"

	"github.com/olekukonko/tablewriter"
	"github.com/yeremiapane/dino-reserve/models"
)

const timeLayout = "2006-01-02 15:04"

func newTable(w io.Writer, header ...string) *tablewriter.Table {
	table := tablewriter.NewWriter(w)
	table.SetHeader(header)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	return table
}

func formatTime(t time.Time, loc *time.Location) string {
	if loc == nil {
		loc = time.Local
	}
	return t.In(loc).Format(timeLayout)
}

func statusLabel(status string) string {
	if status == models.StatusReserved {
		return "+ " + status
	}
	return "x " + status
}

// hoursUntil renders d as "in Nh", truncating toward zero.
func hoursUntil(d time.Duration) string {
	return fmt.Sprintf("in %dh", int(d.Hours()))
}
