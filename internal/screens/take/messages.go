package take

import (
	tea "charm.land/bubbletea/v2"

	"github.com/wahaj323/quizengine/internal/session"
)

// loadedMsg is sent when the controller finished loading the quiz.
type loadedMsg struct {
	Err error
}

// eventMsg wraps an event read from the controller's channel.
type eventMsg session.Event

// eventsClosedMsg is sent once the controller closed its event channel.
type eventsClosedMsg struct{}

// submitDoneMsg is sent when a learner-triggered submission returns.
type submitDoneMsg struct {
	Err error
}

// listen reads the next controller event. It is re-issued after every
// event until the channel closes.
func listen(events <-chan session.Event) tea.Cmd {
	return func() tea.Msg {
		e, ok := <-events
		if !ok {
			return eventsClosedMsg{}
		}
		return eventMsg(e)
	}
}
