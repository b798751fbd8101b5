package services

import (
	"testing"
	"time"

	"budgetbook/internal/models"

	"github.com/stretchr/testify/suite"
)

type CircuitBreakerTestSuite struct {
	suite.Suite
	clock       *fakeClock
	transitions []models.CircuitBreakerState
	breaker     CircuitBreakerInterface
}

func TestCircuitBreakerSuite(t *testing.T) {
	suite.Run(t, new(CircuitBreakerTestSuite))
}

func (s *CircuitBreakerTestSuite) SetupTest() {
	s.clock = &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	s.transitions = nil
	s.breaker = NewCircuitBreaker(CircuitBreakerConfig{
		MaxFailures:     3,
		ResetTimeout:    10 * time.Second,
		HalfOpenMaxSucc: 1,
		Now:             s.clock.Now,
		OnStateChange: func(_, to models.CircuitBreakerState) {
			s.transitions = append(s.transitions, to)
		},
	})
}

func (s *CircuitBreakerTestSuite) TestStartsClosed() {
	s.False(s.breaker.IsOpen())
	s.Equal(StateClosed, s.breaker.GetState())
	s.Equal("closed", s.breaker.GetState().String())
}

func (s *CircuitBreakerTestSuite) TestOpensAtThreshold() {
	s.breaker.RecordFailure()
	s.breaker.RecordFailure()
	s.False(s.breaker.IsOpen())
	s.Equal(2, s.breaker.GetFailureCount())

	s.breaker.RecordFailure()
	s.True(s.breaker.IsOpen())
	s.Equal([]models.CircuitBreakerState{StateOpen}, s.transitions)
}

func (s *CircuitBreakerTestSuite) TestSuccessResetsFailureCount() {
	s.breaker.RecordFailure()
	s.breaker.RecordFailure()
	s.breaker.RecordSuccess()
	s.breaker.RecordFailure()

	s.False(s.breaker.IsOpen())
	s.Equal(1, s.breaker.GetFailureCount())
}

func (s *CircuitBreakerTestSuite) TestHalfOpenAfterResetTimeout() {
	for i := 0; i < 3; i++ {
		s.breaker.RecordFailure()
	}

	s.clock.Advance(10 * time.Second)
	s.True(s.breaker.IsOpen())

	s.clock.Advance(time.Second)
	s.False(s.breaker.IsOpen())
	s.Equal(StateHalfOpen, s.breaker.GetState())

	s.breaker.RecordSuccess()
	s.Equal(StateClosed, s.breaker.GetState())
	s.Zero(s.breaker.GetFailureCount())
	s.Equal([]models.CircuitBreakerState{StateOpen, StateHalfOpen, StateClosed}, s.transitions)
}

func (s *CircuitBreakerTestSuite) TestHalfOpenFailureReopens() {
	for i := 0; i < 3; i++ {
		s.breaker.RecordFailure()
	}
	s.clock.Advance(11 * time.Second)
	s.False(s.breaker.IsOpen())

	s.breaker.RecordFailure()
	s.True(s.breaker.IsOpen())
}

func (s *CircuitBreakerTestSuite) TestReset() {
	for i := 0; i < 3; i++ {
		s.breaker.RecordFailure()
	}
	s.breaker.Reset()

	s.False(s.breaker.IsOpen())
	s.Zero(s.breaker.GetFailureCount())
}
