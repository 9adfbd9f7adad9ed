package domain

import "time"

// ViewState is the converged operator-facing state, merged from the durable
// record and the advisory liveness hint by DesiredViewState.
type ViewState string

const (
	ViewDraft     ViewState = "draft"
	ViewScheduled ViewState = "scheduled"

	// ViewWaiting covers the window where status and encoder signal disagree:
	// either the merchant declared the stream live before video flows, or the
	// encoder connected before the merchant pressed start.
	ViewWaiting ViewState = "waiting"

	ViewLive  ViewState = "live"
	ViewEnded ViewState = "ended"
)

// DesiredViewState merges the two independently owned signals into the state
// the UI should render. It is a pure function; neither input is mutated and
// the cache hint never drives a durable transition.
func DesiredViewState(stream *Stream, hint LivenessState) ViewState {
	switch stream.Status {
	case StatusEnded:
		return ViewEnded
	case StatusLive:
		if hint == LivenessLive && stream.PlaybackID != "" {
			return ViewLive
		}
		// Merchant declared intent but no video is confirmed flowing yet.
		// Rendered as "waiting for feed", not as an error.
		return ViewWaiting
	case StatusScheduled:
		if hint == LivenessLive {
			return ViewWaiting
		}
		return ViewScheduled
	default:
		if hint == LivenessLive {
			return ViewWaiting
		}
		return ViewDraft
	}
}

// Polling policy: the client reveals state that already changed server-side,
// it never drives it. Poll only while a converged live view is still pending,
// stop entirely once live, and resume briefly after an end in case of a quick
// restart.
const (
	pollInterval   = 5 * time.Second
	postEndWindow  = 2 * time.Minute
	noPollInterval = 0
)

// PollGuidance tells the client whether to keep polling the status snapshot
// and at which interval.
type PollGuidance struct {
	ShouldPoll      bool `json:"shouldPoll"`
	IntervalSeconds int  `json:"pollIntervalSeconds"`
}

// DesiredPollGuidance derives the bounded, adaptive polling policy from the
// converged view state.
func DesiredPollGuidance(stream *Stream, view ViewState, now time.Time) PollGuidance {
	switch view {
	case ViewLive:
		return PollGuidance{ShouldPoll: false, IntervalSeconds: noPollInterval}
	case ViewEnded:
		if stream.EndedAt != nil && now.Sub(*stream.EndedAt) < postEndWindow {
			return PollGuidance{ShouldPoll: true, IntervalSeconds: int(pollInterval.Seconds())}
		}
		return PollGuidance{ShouldPoll: false, IntervalSeconds: noPollInterval}
	default:
		return PollGuidance{ShouldPoll: true, IntervalSeconds: int(pollInterval.Seconds())}
	}
}
