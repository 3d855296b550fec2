package db

import (
	"sync"

	"github.com/terraincognita07/selene/internal/models"
)

const feedBufferSize = 16

// LogFeed fans record snapshots out to subscribers so the UI layer can
// re-render a day when a local write or a pulled change lands. Slow
// subscribers miss intermediate snapshots instead of blocking writers.
type LogFeed struct {
	mu          sync.Mutex
	nextID      int
	subscribers map[int]logSubscriber
}

type logSubscriber struct {
	date    string
	channel chan models.DailyLog
}

func NewLogFeed() *LogFeed {
	return &LogFeed{subscribers: make(map[int]logSubscriber)}
}

// Subscribe returns a stream of snapshots for one date, or for all dates
// when date is empty, plus a cancel function that closes the stream.
func (feed *LogFeed) Subscribe(date string) (<-chan models.DailyLog, func()) {
	feed.mu.Lock()
	defer feed.mu.Unlock()

	id := feed.nextID
	feed.nextID++
	subscriber := logSubscriber{
		date:    date,
		channel: make(chan models.DailyLog, feedBufferSize),
	}
	feed.subscribers[id] = subscriber

	cancel := func() {
		feed.mu.Lock()
		defer feed.mu.Unlock()
		if _, active := feed.subscribers[id]; !active {
			return
		}
		delete(feed.subscribers, id)
		close(subscriber.channel)
	}
	return subscriber.channel, cancel
}

func (feed *LogFeed) publish(entry models.DailyLog) {
	feed.mu.Lock()
	defer feed.mu.Unlock()

	for _, subscriber := range feed.subscribers {
		if subscriber.date != "" && subscriber.date != entry.Date {
			continue
		}
		select {
		case subscriber.channel <- entry:
		default:
		}
	}
}
