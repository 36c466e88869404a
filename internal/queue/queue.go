// Package queue bounds how many runs of each command execute at once and
// how often a single user may start one.
package queue

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/muratoffalex/manobot/internal/logger"
)

var ErrCooldown = errors.New("command on cooldown")

type Limits struct {
	Concurrency int
	// Cooldown is the minimum gap between two runs started by one user.
	Cooldown time.Duration
	// Timeout bounds a single run. Zero means no bound.
	Timeout time.Duration
}

type Queue struct {
	mu                sync.Mutex
	limits            map[string]Limits
	commandSemaphores map[string]chan struct{}
	userLimiters      map[string]*rate.Limiter
	logger            logger.Logger
}

func NewQueue(logger logger.Logger) *Queue {
	return &Queue{
		limits:            make(map[string]Limits),
		commandSemaphores: make(map[string]chan struct{}),
		userLimiters:      make(map[string]*rate.Limiter),
		logger:            logger,
	}
}

// Configure sets the limits for command. Reconfiguring replaces the
// semaphore, runs already holding a slot keep it.
func (q *Queue) Configure(command string, limits Limits) {
	if limits.Concurrency <= 0 {
		limits.Concurrency = 1
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.limits[command] = limits
	q.commandSemaphores[command] = make(chan struct{}, limits.Concurrency)

	q.logger.WithFields(logger.Fields{
		"command":     command,
		"concurrency": limits.Concurrency,
		"cooldown":    limits.Cooldown.String(),
	}).Debug("Configured command limits")
}

// Allow reports whether userID may start command now and, if so, consumes
// the user's slot.
func (q *Queue) Allow(command, userID string) bool {
	q.mu.Lock()
	defer q.mu.Unlock()

	limits := q.limits[command]
	if limits.Cooldown <= 0 {
		return true
	}
	key := command + ":" + userID
	lim, ok := q.userLimiters[key]
	if !ok {
		lim = rate.NewLimiter(rate.Every(limits.Cooldown), 1)
		q.userLimiters[key] = lim
	}
	return lim.Allow()
}

// Run executes fn once a concurrency slot for command is free. A panic in
// fn is recovered and returned as an error.
func (q *Queue) Run(ctx context.Context, command string, fn func(ctx context.Context) error) (err error) {
	q.mu.Lock()
	sem, ok := q.commandSemaphores[command]
	limits := q.limits[command]
	if !ok {
		sem = make(chan struct{}, 1)
		q.commandSemaphores[command] = sem
	}
	q.mu.Unlock()

	log := q.logger.WithField("command", command)

	select {
	case sem <- struct{}{}:
	case <-ctx.Done():
		log.Debug("Cancelled while waiting for a slot")
		return ctx.Err()
	}
	defer func() { <-sem }()

	if limits.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, limits.Timeout)
		defer cancel()
	}

	defer func() {
		if r := recover(); r != nil {
			log.Error(fmt.Sprintf("recovered from panic: %v", r))
			err = fmt.Errorf("command %s panicked: %v", command, r)
		}
	}()

	start := time.Now()
	err = fn(ctx)
	log.WithField("duration", time.Since(start).String()).Trace("Command run finished")
	return err
}

// Submit checks the user's cooldown and then runs fn.
func (q *Queue) Submit(ctx context.Context, command, userID string, fn func(ctx context.Context) error) error {
	if !q.Allow(command, userID) {
		q.logger.WithFields(logger.Fields{
			"command": command,
			"user_id": userID,
		}).Debug("Command on cooldown")
		return ErrCooldown
	}
	return q.Run(ctx, command, fn)
}

// Prune drops per-user limiters whose cooldown has fully elapsed and
// returns how many were removed.
func (q *Queue) Prune() int {
	q.mu.Lock()
	defer q.mu.Unlock()

	now := time.Now()
	removed := 0
	for key, lim := range q.userLimiters {
		if lim.TokensAt(now) >= float64(lim.Burst()) {
			delete(q.userLimiters, key)
			removed++
		}
	}
	return removed
}

// InFlight returns how many runs of command currently hold a slot.
func (q *Queue) InFlight(command string) int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.commandSemaphores[command])
}
