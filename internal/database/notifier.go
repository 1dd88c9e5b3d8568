package database

import "sync"

// Change-notification topics, one per collection.
const (
	TopicShows            = "shows"
	TopicTrendingShows    = "trending_shows"
	TopicPopularShows     = "popular_shows"
	TopicAnticipatedShows = "anticipated_shows"
	TopicRecommendedShows = "recommended_shows"
	TopicRelatedShows     = "related_shows"
	TopicWatchedShows     = "watched_shows"
	TopicFollowedShows    = "followed_shows"
	TopicShowImages       = "show_images"
	TopicEpisodeWatches   = "episode_watches"
	TopicSeasons          = "seasons"
)

// Notifier delivers per-topic change signals to subscribers. Signals are
// coalesced: a subscriber that has not yet consumed a pending signal will not
// queue further ones.
type Notifier struct {
	mu   sync.Mutex
	subs map[string]map[uint64]chan struct{}
	next uint64
}

// NewNotifier creates an empty notifier.
func NewNotifier() *Notifier {
	return &Notifier{subs: make(map[string]map[uint64]chan struct{})}
}

// Subscribe registers interest in a topic. The returned cancel function must
// be called to release the subscription.
func (n *Notifier) Subscribe(topic string) (<-chan struct{}, func()) {
	n.mu.Lock()
	defer n.mu.Unlock()

	if n.subs[topic] == nil {
		n.subs[topic] = make(map[uint64]chan struct{})
	}
	id := n.next
	n.next++

	ch := make(chan struct{}, 1)
	n.subs[topic][id] = ch

	cancel := func() {
		n.mu.Lock()
		defer n.mu.Unlock()
		if subs, ok := n.subs[topic]; ok {
			delete(subs, id)
			if len(subs) == 0 {
				delete(n.subs, topic)
			}
		}
	}
	return ch, cancel
}

// Publish signals all subscribers of a topic without blocking.
func (n *Notifier) Publish(topic string) {
	n.mu.Lock()
	defer n.mu.Unlock()

	for _, ch := range n.subs[topic] {
		select {
		case ch <- struct{}{}:
		default:
			// Subscriber already has a pending signal.
		}
	}
}
