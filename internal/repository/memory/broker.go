// Package memory hosts named settings and result channels inside one process.
// It mirrors the Redis repositories and is used by tests and local demos.
package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/rocketscienceinc/buzzword-bingo/internal/apperror"
	"github.com/rocketscienceinc/buzzword-bingo/internal/entity"
	"github.com/rocketscienceinc/buzzword-bingo/internal/repository"
)

type Broker struct {
	depth int

	mu       sync.Mutex
	settings map[string]*settingsQueue
	results  map[string]*resultQueue
}

func NewBroker(depth int) *Broker {
	if depth <= 0 {
		depth = repository.DefaultQueueDepth
	}

	return &Broker{
		depth:    depth,
		settings: make(map[string]*settingsQueue),
		results:  make(map[string]*resultQueue),
	}
}

type settingsQueue struct {
	values chan entity.GameSettings
	done   chan struct{}
}

func (that *Broker) CreateExclusive(_ context.Context, name string) (repository.SettingsChannel, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if _, ok := that.settings[name]; ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrAlreadyExists, name)
	}

	queue := &settingsQueue{
		values: make(chan entity.GameSettings, 1),
		done:   make(chan struct{}),
	}
	that.settings[name] = queue

	return &settingsChannel{broker: that, name: name, queue: queue, host: true}, nil
}

func (that *Broker) OpenExisting(_ context.Context, name string) (repository.SettingsChannel, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	queue, ok := that.settings[name]
	if !ok {
		return nil, fmt.Errorf("%w: %s", apperror.ErrNotFound, name)
	}

	return &settingsChannel{broker: that, name: name, queue: queue}, nil
}

// HasSettings reports whether a settings channel with this name exists.
func (that *Broker) HasSettings(name string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	_, ok := that.settings[name]
	return ok
}

// HasResults reports whether a result channel with this name exists.
func (that *Broker) HasResults(name string) bool {
	that.mu.Lock()
	defer that.mu.Unlock()

	_, ok := that.results[name]
	return ok
}

// destroySettings removes the queue if it is still the one registered under name.
func (that *Broker) destroySettings(name string, queue *settingsQueue) {
	that.mu.Lock()
	defer that.mu.Unlock()

	if that.settings[name] != queue {
		return
	}

	delete(that.settings, name)
	close(queue.done)
}

type settingsChannel struct {
	broker *Broker
	name   string
	queue  *settingsQueue
	host   bool

	mu   sync.Mutex
	sent bool
}

func (that *settingsChannel) SendOnce(_ context.Context, settings entity.GameSettings) error {
	if !that.host {
		return apperror.ErrNotHost
	}

	that.mu.Lock()
	defer that.mu.Unlock()

	if that.sent {
		return apperror.ErrAlreadySent
	}

	if settings.XAxis < 1 || settings.YAxis < 1 {
		return fmt.Errorf("%w: %dx%d", apperror.ErrInvalidDimensions, settings.XAxis, settings.YAxis)
	}

	that.queue.values <- settings
	that.sent = true

	return nil
}

func (that *settingsChannel) ReceiveOnce(ctx context.Context) (entity.GameSettings, error) {
	select {
	case settings := <-that.queue.values:
		that.broker.destroySettings(that.name, that.queue)
		return settings, nil
	case <-that.queue.done:
		return entity.GameSettings{}, fmt.Errorf("%w: %s", apperror.ErrNotFound, that.name)
	case <-ctx.Done():
		return entity.GameSettings{}, ctx.Err()
	}
}

func (that *settingsChannel) Close(_ context.Context) error {
	if that.host {
		that.broker.destroySettings(that.name, that.queue)
	}

	return nil
}

type resultQueue struct {
	base     int // absolute index of messages[0]
	messages []entity.ResultMessage
	members  map[string]struct{}
	notify   chan struct{}
}

func (that *Broker) CreateOrJoin(_ context.Context, name, memberID string) (repository.ResultChannel, error) {
	that.mu.Lock()
	defer that.mu.Unlock()

	queue, ok := that.results[name]
	if !ok {
		queue = &resultQueue{
			members: make(map[string]struct{}),
			notify:  make(chan struct{}),
		}
		that.results[name] = queue
	}
	queue.members[memberID] = struct{}{}

	return &resultChannel{broker: that, name: name, memberID: memberID, queue: queue}, nil
}

// Reset forgets the named result channel. Handles still held by members of the
// previous game keep their own queue.
func (that *Broker) Reset(_ context.Context, name string) error {
	that.mu.Lock()
	defer that.mu.Unlock()

	delete(that.results, name)

	return nil
}

type resultChannel struct {
	broker   *Broker
	name     string
	memberID string
	queue    *resultQueue

	cursor int // guarded by broker.mu
	left   bool
}

func (that *resultChannel) Post(_ context.Context, message entity.ResultMessage) error {
	that.broker.mu.Lock()
	defer that.broker.mu.Unlock()

	if that.left {
		return apperror.ErrChannelClosed
	}

	queue := that.queue
	queue.messages = append(queue.messages, message)
	if overflow := len(queue.messages) - that.broker.depth; overflow > 0 {
		queue.messages = queue.messages[overflow:]
		queue.base += overflow
	}

	close(queue.notify)
	queue.notify = make(chan struct{})

	return nil
}

func (that *resultChannel) Receive(ctx context.Context) (entity.ResultMessage, error) {
	for {
		that.broker.mu.Lock()
		if that.left {
			that.broker.mu.Unlock()
			return entity.ResultMessage{}, apperror.ErrChannelClosed
		}

		queue := that.queue
		if that.cursor < queue.base {
			that.cursor = queue.base
		}

		if idx := that.cursor - queue.base; idx < len(queue.messages) {
			message := queue.messages[idx]
			that.cursor++
			that.broker.mu.Unlock()

			return message, nil
		}

		wait := queue.notify
		that.broker.mu.Unlock()

		select {
		case <-wait:
		case <-ctx.Done():
			return entity.ResultMessage{}, ctx.Err()
		}
	}
}

func (that *resultChannel) Leave(_ context.Context) error {
	that.broker.mu.Lock()
	defer that.broker.mu.Unlock()

	if that.left {
		return nil
	}
	that.left = true

	delete(that.queue.members, that.memberID)
	if len(that.queue.members) == 0 && that.broker.results[that.name] == that.queue {
		delete(that.broker.results, that.name)
	}

	// wake a Receive blocked on this handle
	close(that.queue.notify)
	that.queue.notify = make(chan struct{})

	return nil
}
