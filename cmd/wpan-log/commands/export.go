package commands

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"

	"github.com/lrwpan/lrwpan-go/pkg/log"
)

// RunExport writes the events matching filter to w as jsonl or csv.
func RunExport(path, format string, filter log.Filter, w io.Writer) error {
	if format != "jsonl" && format != "csv" {
		return fmt.Errorf("unknown format: %s (supported: jsonl, csv)", format)
	}

	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	if format == "jsonl" {
		return exportJSONL(reader, w)
	}
	return exportCSV(reader, w)
}

func exportJSONL(reader *log.Reader, w io.Writer) error {
	encoder := json.NewEncoder(w)
	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}
		if err := encoder.Encode(event); err != nil {
			return fmt.Errorf("failed to encode event: %w", err)
		}
	}
}

func exportCSV(reader *log.Reader, w io.Writer) error {
	cw := csv.NewWriter(w)
	defer cw.Flush()

	header := []string{"timestamp", "interface_id", "direction", "layer", "category", "channel", "pan_id", "type", "detail"}
	if err := cw.Write(header); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for {
		event, err := reader.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to read event: %w", err)
		}

		eventType, detail := "unknown", ""
		switch {
		case event.Frame != nil:
			eventType, detail = "frame", strconv.Itoa(event.Frame.Size)
		case event.MAC != nil:
			eventType, detail = "mac", event.MAC.Summary
		case event.Request != nil:
			eventType, detail = "request", event.Request.Name
			if event.Request.Result != "" {
				detail += " " + event.Request.Result
			}
		case event.StateChange != nil:
			eventType, detail = "state", event.StateChange.NewState
		case event.Error != nil:
			eventType, detail = "error", event.Error.Message
		}

		row := []string{
			event.Timestamp.UTC().Format("2006-01-02T15:04:05.000000Z"),
			event.InterfaceID,
			event.Direction.String(),
			event.Layer.String(),
			event.Category.String(),
			strconv.Itoa(int(event.Channel)),
			fmt.Sprintf("0x%04x", event.PANID),
			eventType,
			detail,
		}
		if err := cw.Write(row); err != nil {
			return fmt.Errorf("failed to write row: %w", err)
		}
	}
}
