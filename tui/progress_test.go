package tui

import (
	"errors"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/vidlink-cli/vidlink/pipeline"
	. "github.com/smartystreets/goconvey/convey"
)

func TestModel(t *testing.T) {
	Convey("Given a progress model", t, func() {
		events := make(chan pipeline.Event, 8)
		done := make(chan struct{})
		cancelled := false
		m := newModel("Resolving", events, done, func() { cancelled = true })

		Convey("When events of two providers arrive", func() {
			m.Update(eventMsg{Provider: "y2mate", State: pipeline.StateStart})
			m.Update(eventMsg{Provider: "y2mate", State: pipeline.StateFailed, Err: errors.New("blocked")})
			m.Update(eventMsg{Provider: "native", State: pipeline.StateAnalyzed})

			Convey("Then one line is kept per provider", func() {
				So(m.attempts, ShouldHaveLength, 2)
				So(m.attempts[0].state, ShouldEqual, pipeline.StateFailed)
				So(m.attempts[1].state, ShouldEqual, pipeline.StateAnalyzed)
			})

			Convey("Then the view shows the failure reason", func() {
				view := m.View()
				So(view, ShouldContainSubstring, "y2mate")
				So(view, ShouldContainSubstring, "blocked")
				So(view, ShouldContainSubstring, "analyzed")
			})

			Convey("Then a finished attempt drops its state name", func() {
				m.Update(eventMsg{Provider: "native", State: pipeline.StateDone})
				view := m.View()
				So(view, ShouldContainSubstring, "native")
				So(view, ShouldNotContainSubstring, "analyzed")
				So(view, ShouldNotContainSubstring, "done")
			})
		})

		Convey("When the resolution is finished", func() {
			close(done)
			msg := m.wait()()

			Convey("Then the model is told to quit", func() {
				So(msg, ShouldHaveSameTypeAs, doneMsg{})
			})
		})

		Convey("When events are still queued after finishing", func() {
			events <- pipeline.Event{Provider: "native", State: pipeline.StateDone}
			close(done)

			Convey("Then they are delivered first", func() {
				So(m.wait()(), ShouldHaveSameTypeAs, eventMsg{})
			})
		})

		Convey("When the user presses ctrl+c", func() {
			m.Update(tea.KeyMsg{Type: tea.KeyCtrlC})

			Convey("Then the resolution is cancelled", func() {
				So(cancelled, ShouldBeTrue)
				So(m.aborted, ShouldBeTrue)
			})
		})
	})
}
