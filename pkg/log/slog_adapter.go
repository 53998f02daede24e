package log

import (
	"context"
	"log/slog"
)

// SlogAdapter writes protocol events to an slog.Logger at Debug level.
type SlogAdapter struct {
	logger *slog.Logger
}

// NewSlogAdapter creates a SlogAdapter writing to logger.
func NewSlogAdapter(logger *slog.Logger) *SlogAdapter {
	return &SlogAdapter{logger: logger}
}

// Log writes the event.
func (a *SlogAdapter) Log(event Event) {
	attrs := []slog.Attr{
		slog.String("iface", event.InterfaceID),
		slog.String("direction", event.Direction.String()),
		slog.String("layer", event.Layer.String()),
		slog.String("category", event.Category.String()),
	}
	if event.Channel != 0 {
		attrs = append(attrs, slog.Uint64("channel", uint64(event.Channel)))
	}
	if event.PANID != 0 {
		attrs = append(attrs, slog.Uint64("pan_id", uint64(event.PANID)))
	}
	if event.RemoteAddr != "" {
		attrs = append(attrs, slog.String("remote", event.RemoteAddr))
	}

	switch {
	case event.Frame != nil:
		attrs = append(attrs,
			slog.Int("frame_size", event.Frame.Size),
			slog.Bool("truncated", event.Frame.Truncated),
		)
	case event.MAC != nil:
		attrs = append(attrs,
			slog.Uint64("seq", uint64(event.MAC.Sequence)),
			slog.String("frame", event.MAC.Summary),
		)
		if event.MAC.LQI != 0 {
			attrs = append(attrs, slog.Uint64("lqi", uint64(event.MAC.LQI)))
		}
	case event.Request != nil:
		attrs = append(attrs,
			slog.String("request", event.Request.Name),
			slog.Uint64("code", uint64(event.Request.Code)),
		)
		if event.Request.Result != "" {
			attrs = append(attrs, slog.String("result", event.Request.Result))
		}
		if event.Request.Duration != nil {
			attrs = append(attrs, slog.Duration("duration", *event.Request.Duration))
		}
	case event.StateChange != nil:
		attrs = append(attrs,
			slog.String("entity", event.StateChange.Entity.String()),
			slog.String("old_state", event.StateChange.OldState),
			slog.String("new_state", event.StateChange.NewState),
		)
		if event.StateChange.Reason != "" {
			attrs = append(attrs, slog.String("reason", event.StateChange.Reason))
		}
	case event.Error != nil:
		attrs = append(attrs,
			slog.String("error_layer", event.Error.Layer.String()),
			slog.String("error_msg", event.Error.Message),
			slog.String("error_context", event.Error.Context),
		)
		if event.Error.Code != nil {
			attrs = append(attrs, slog.Int("error_code", *event.Error.Code))
		}
	}

	a.logger.LogAttrs(context.Background(), slog.LevelDebug, "protocol", attrs...)
}

var _ Logger = (*SlogAdapter)(nil)
