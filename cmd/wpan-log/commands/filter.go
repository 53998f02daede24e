package commands

import (
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/lrwpan/lrwpan-go/pkg/log"
)

// FilterOptions are the textual filter criteria shared by the commands.
type FilterOptions struct {
	InterfaceID string
	TimeStart   string
	TimeEnd     string
	Layer       string
	Direction   string
	Category    string
	Channel     string
	PANID       string
}

// Build converts the options to a log.Filter.
func (o FilterOptions) Build() (log.Filter, error) {
	filter := log.Filter{InterfaceID: o.InterfaceID}

	if o.TimeStart != "" {
		t, err := time.Parse(time.RFC3339, o.TimeStart)
		if err != nil {
			return filter, fmt.Errorf("invalid time-start format: %w", err)
		}
		filter.TimeStart = &t
	}
	if o.TimeEnd != "" {
		t, err := time.Parse(time.RFC3339, o.TimeEnd)
		if err != nil {
			return filter, fmt.Errorf("invalid time-end format: %w", err)
		}
		filter.TimeEnd = &t
	}
	if o.Layer != "" {
		l, err := ParseLayer(o.Layer)
		if err != nil {
			return filter, err
		}
		filter.Layer = &l
	}
	if o.Direction != "" {
		d, err := ParseDirection(o.Direction)
		if err != nil {
			return filter, err
		}
		filter.Direction = &d
	}
	if o.Category != "" {
		c, err := ParseCategory(o.Category)
		if err != nil {
			return filter, err
		}
		filter.Category = &c
	}
	if o.Channel != "" {
		v, err := strconv.ParseUint(o.Channel, 10, 16)
		if err != nil {
			return filter, fmt.Errorf("invalid channel: %s", o.Channel)
		}
		ch := uint16(v)
		filter.Channel = &ch
	}
	if o.PANID != "" {
		v, err := strconv.ParseUint(o.PANID, 0, 16)
		if err != nil {
			return filter, fmt.Errorf("invalid pan id: %s", o.PANID)
		}
		pan := uint16(v)
		filter.PANID = &pan
	}
	return filter, nil
}

// RunFilter copies the events matching filter into a new capture file and
// returns how many were written.
func RunFilter(path, output string, filter log.Filter) (int, error) {
	reader, err := log.NewFilteredReader(path, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to open log file: %w", err)
	}
	defer reader.Close()

	logger, err := log.NewFileLogger(output)
	if err != nil {
		return 0, fmt.Errorf("failed to create output logger: %w", err)
	}

	count := 0
	for {
		event, err := reader.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			_ = logger.Close()
			return count, fmt.Errorf("failed to read event: %w", err)
		}
		logger.Log(event)
		count++
	}
	return count, logger.Close()
}
