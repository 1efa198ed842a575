package renderer

import (
	"bytes"
	"fmt"
	"time"

	"github.com/achilleasa/vista/viewport"
	"github.com/olekukonko/tablewriter"
)

type FrameStats struct {
	// Number of frames that were rendered and failed to render.
	Frames   uint64
	Failures uint64

	// Total time spent rendering frames.
	RenderTime time.Duration
}

// Get the average time spent rendering a frame.
func (s FrameStats) AvgRenderTime() time.Duration {
	if s.Frames == 0 {
		return 0
	}
	return s.RenderTime / time.Duration(s.Frames)
}

// Render driver and backend statistics as a text table.
func StatsTable(backendName string, driverStats viewport.Stats, frameStats FrameStats) string {
	var buf bytes.Buffer
	table := tablewriter.NewWriter(&buf)
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	table.SetAlignment(tablewriter.ALIGN_RIGHT)
	table.SetHeader([]string{"Backend", "Frames", "Failed", "Resizes", "Backbuffer", "Avg render time", "FPS"})
	table.Append([]string{
		backendName,
		fmt.Sprintf("%d", driverStats.Frames),
		fmt.Sprintf("%d", frameStats.Failures),
		fmt.Sprintf("%d", driverStats.Resizes),
		fmt.Sprintf("%dx%d", driverStats.BackbufferW, driverStats.BackbufferH),
		fmt.Sprintf("%s", frameStats.AvgRenderTime()),
		fmt.Sprintf("%3.1f", driverStats.FPS()),
	})
	table.SetFooter([]string{"", "", "", "", "", "TOTAL", fmt.Sprintf("%s", frameStats.RenderTime)})
	table.Render()
	return buf.String()
}
