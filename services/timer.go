package services

import (
	"sync"
	"time"
)

const (
	TimerModeFocus      = "focus"
	TimerModeShortBreak = "shortBreak"
	TimerModeLongBreak  = "longBreak"
)

// timerModeSeconds are the pomodoro presets.
func timerModeSeconds(mode string) int {
	switch mode {
	case TimerModeShortBreak:
		return 5 * 60
	case TimerModeLongBreak:
		return 15 * 60
	default:
		return 25 * 60
	}
}

// TimerState is the per-user countdown snapshot. Session-scoped only;
// it is deliberately never persisted or synced.
type TimerState struct {
	TimeLeft int    `json:"timeLeft"` // seconds
	IsActive bool   `json:"isActive"`
	Mode     string `json:"mode"`
	Finished bool   `json:"finished"` // set for one read after reaching zero
}

type userTimer struct {
	state  TimerState
	cancel chan struct{}
}

// TimerService runs the study countdowns. The tick fires once per
// second while a timer is active and stops at zero; resetting or
// switching modes replaces the interval rather than pausing it.
type TimerService struct {
	mu     sync.Mutex
	timers map[string]*userTimer
}

func NewTimerService() *TimerService {
	return &TimerService{timers: make(map[string]*userTimer)}
}

func (s *TimerService) get(userID string) *userTimer {
	t, ok := s.timers[userID]
	if !ok {
		t = &userTimer{state: TimerState{TimeLeft: timerModeSeconds(TimerModeFocus), Mode: TimerModeFocus}}
		s.timers[userID] = t
	}
	return t
}

// State returns the current snapshot and clears the one-shot finished
// flag once it has been observed.
func (s *TimerService) State(userID string) TimerState {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.get(userID)
	out := t.state
	t.state.Finished = false
	return out
}

// Toggle starts or pauses the countdown.
func (s *TimerService) Toggle(userID string) TimerState {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.get(userID)
	if t.state.IsActive {
		s.stopLocked(t)
	} else if t.state.TimeLeft > 0 {
		t.state.IsActive = true
		t.cancel = make(chan struct{})
		go s.run(userID, t.cancel)
	}
	return t.state
}

// Reset stops the countdown and restores the current mode's preset.
func (s *TimerService) Reset(userID string) TimerState {
	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.get(userID)
	s.stopLocked(t)
	t.state.TimeLeft = timerModeSeconds(t.state.Mode)
	t.state.Finished = false
	return t.state
}

// SetMode switches preset and always leaves the timer stopped.
func (s *TimerService) SetMode(userID, mode string) TimerState {
	switch mode {
	case TimerModeFocus, TimerModeShortBreak, TimerModeLongBreak:
	default:
		mode = TimerModeFocus
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	t := s.get(userID)
	s.stopLocked(t)
	t.state.Mode = mode
	t.state.TimeLeft = timerModeSeconds(mode)
	t.state.Finished = false
	return t.state
}

// Drop discards a user's timer entirely (logout).
func (s *TimerService) Drop(userID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if t, ok := s.timers[userID]; ok {
		s.stopLocked(t)
		delete(s.timers, userID)
	}
}

func (s *TimerService) stopLocked(t *userTimer) {
	if t.cancel != nil {
		close(t.cancel)
		t.cancel = nil
	}
	t.state.IsActive = false
}

func (s *TimerService) run(userID string, cancel chan struct{}) {
	ticker := time.NewTicker(1 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-cancel:
			return
		case <-ticker.C:
			s.mu.Lock()
			t, ok := s.timers[userID]
			if !ok || t.cancel != cancel {
				s.mu.Unlock()
				return
			}
			t.state.TimeLeft--
			if t.state.TimeLeft <= 0 {
				t.state.TimeLeft = 0
				t.state.IsActive = false
				t.state.Finished = true
				t.cancel = nil
				s.mu.Unlock()
				return
			}
			s.mu.Unlock()
		}
	}
}
