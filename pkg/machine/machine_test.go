package machine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

type testState string

const (
	statePlanned testState = "Planned"
	stateWorking testState = "Working"
	stateDone    testState = "Done"
	stateFailed  testState = "Failed"
)

func newTestMachine() *StateMachine[testState] {
	return New(statePlanned,
		From(statePlanned).To(stateWorking),
		From(stateWorking).To(stateDone, stateFailed),
	)
}

func TestStateMachine_Transition(t *testing.T) {
	t.Run("valid chain", func(t *testing.T) {
		m := newTestMachine()
		assert.Equal(t, statePlanned, m.Current())

		assert.NoError(t, m.Transition(stateWorking))
		assert.Equal(t, stateWorking, m.Current())

		assert.NoError(t, m.Transition(stateDone))
		assert.Equal(t, stateDone, m.Current())
	})

	t.Run("invalid transition leaves state untouched", func(t *testing.T) {
		m := newTestMachine()

		err := m.Transition(stateDone)
		assert.ErrorIs(t, err, ErrInvalidTransition)
		assert.Equal(t, statePlanned, m.Current())
	})

	t.Run("absorbing state has no exits", func(t *testing.T) {
		m := newTestMachine()
		assert.NoError(t, m.Transition(stateWorking))
		assert.NoError(t, m.Transition(stateFailed))

		assert.ErrorIs(t, m.Transition(stateDone), ErrInvalidTransition)
		assert.Equal(t, stateFailed, m.Current())
	})
}

func TestStateMachine_CanTransition(t *testing.T) {
	m := newTestMachine()

	assert.True(t, m.CanTransition(stateWorking))
	assert.False(t, m.CanTransition(stateDone))
	assert.False(t, m.CanTransition(statePlanned))
}
