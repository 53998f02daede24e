package commands

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"time"

	"github.com/lrwpan/lrwpan-go/pkg/log"
)

// Stats holds aggregate statistics about a capture file.
type Stats struct {
	TotalEvents       int
	EventsByLayer     map[log.Layer]int
	EventsByCategory  map[log.Category]int
	EventsByDirection map[log.Direction]int
	Requests          map[string]*RequestStats
	Channels          map[uint16]int
	Interfaces        map[string]int
	Errors            int
	TimeRange         struct {
		Start time.Time
		End   time.Time
	}
}

// RequestStats summarizes one management request type.
type RequestStats struct {
	Issued    int
	Succeeded int
	Failed    int
	Total     time.Duration
}

// Collect reads the whole file into a Stats.
func Collect(path string) (*Stats, error) {
	reader, err := log.NewReader(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	stats := &Stats{
		EventsByLayer:     make(map[log.Layer]int),
		EventsByCategory:  make(map[log.Category]int),
		EventsByDirection: make(map[log.Direction]int),
		Requests:          make(map[string]*RequestStats),
		Channels:          make(map[uint16]int),
		Interfaces:        make(map[string]int),
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return stats, nil
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read event: %w", err)
		}

		stats.TotalEvents++
		stats.EventsByLayer[event.Layer]++
		stats.EventsByCategory[event.Category]++
		stats.EventsByDirection[event.Direction]++
		stats.Interfaces[event.InterfaceID]++

		if stats.TimeRange.Start.IsZero() || event.Timestamp.Before(stats.TimeRange.Start) {
			stats.TimeRange.Start = event.Timestamp
		}
		if event.Timestamp.After(stats.TimeRange.End) {
			stats.TimeRange.End = event.Timestamp
		}

		if event.MAC != nil && event.Channel != 0 {
			stats.Channels[event.Channel]++
		}

		if req := event.Request; req != nil {
			rs, ok := stats.Requests[req.Name]
			if !ok {
				rs = &RequestStats{}
				stats.Requests[req.Name] = rs
			}
			switch {
			case event.Direction == log.DirectionOut:
				rs.Issued++
			case req.Result == "OK":
				rs.Succeeded++
			default:
				rs.Failed++
			}
			if req.Duration != nil {
				rs.Total += *req.Duration
			}
		}

		if event.Error != nil {
			stats.Errors++
		}
	}
}

// RunStats prints statistics about the capture file.
func RunStats(path string, w io.Writer) error {
	stats, err := Collect(path)
	if err != nil {
		return err
	}
	printStats(w, stats)
	return nil
}

func printStats(w io.Writer, stats *Stats) {
	fmt.Fprintln(w, "=== 802.15.4 Capture Statistics ===")
	fmt.Fprintln(w)

	if stats.TotalEvents > 0 {
		fmt.Fprintf(w, "Time Range: %s to %s\n",
			stats.TimeRange.Start.Format(time.RFC3339),
			stats.TimeRange.End.Format(time.RFC3339))
		fmt.Fprintf(w, "Duration:   %s\n", stats.TimeRange.End.Sub(stats.TimeRange.Start).Round(time.Millisecond))
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Total Events: %d\n", stats.TotalEvents)
	fmt.Fprintf(w, "Interfaces:   %d\n", len(stats.Interfaces))
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Layer:")
	for _, layer := range []log.Layer{log.LayerTransport, log.LayerRadio, log.LayerManagement} {
		if count := stats.EventsByLayer[layer]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", layer.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Category:")
	for _, cat := range []log.Category{log.CategoryFrame, log.CategoryRequest, log.CategoryState, log.CategoryError} {
		if count := stats.EventsByCategory[cat]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", cat.String()+":", count)
		}
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, "Events by Direction:")
	for _, dir := range []log.Direction{log.DirectionIn, log.DirectionOut} {
		if count := stats.EventsByDirection[dir]; count > 0 {
			fmt.Fprintf(w, "  %-12s %d\n", dir.String()+":", count)
		}
	}

	if len(stats.Channels) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "MAC Frames by Channel:")
		for _, ch := range slices.Sorted(maps.Keys(stats.Channels)) {
			fmt.Fprintf(w, "  %-12s %d\n", fmt.Sprintf("%d:", ch), stats.Channels[ch])
		}
	}

	if len(stats.Requests) > 0 {
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Requests:")
		for _, name := range slices.Sorted(maps.Keys(stats.Requests)) {
			rs := stats.Requests[name]
			line := fmt.Sprintf("  %-14s issued=%d ok=%d failed=%d", name, rs.Issued, rs.Succeeded, rs.Failed)
			if done := rs.Succeeded + rs.Failed; done > 0 && rs.Total > 0 {
				line += " avg=" + formatDuration(rs.Total/time.Duration(done))
			}
			fmt.Fprintln(w, line)
		}
	}

	if stats.Errors > 0 {
		fmt.Fprintln(w)
		fmt.Fprintf(w, "Errors: %d\n", stats.Errors)
	}
}
