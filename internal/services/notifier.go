package services

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/Syed-Nihaal/CodeLogs-CW2/internal/mq"
	"github.com/Syed-Nihaal/CodeLogs-CW2/types"
)

// Event names published on the engagement channel.
const (
	EventFollowed  = "user.followed"
	EventCommented = "post.commented"
	EventVoted     = "post.voted"
)

// Event is the JSON payload published for engagement activity.
type Event struct {
	Name       string    `json:"name"`
	Actor      string    `json:"actor"`
	Subject    string    `json:"subject,omitempty"`
	PostID     int       `json:"post_id,omitempty"`
	VoteAction string    `json:"vote_action,omitempty"`
	OccurredAt time.Time `json:"occurred_at"`
}

// Notifier publishes engagement events best-effort. Publish failures
// are logged and never surfaced to the request path. A nil Notifier is
// valid and publishes nothing.
type Notifier struct {
	mq      *mq.MQ
	channel string
}

func NewNotifier(broker *mq.MQ, channel string) *Notifier {
	return &Notifier{mq: broker, channel: channel}
}

func (n *Notifier) Followed(ctx context.Context, follower, followee string) {
	n.publish(ctx, Event{Name: EventFollowed, Actor: follower, Subject: followee})
}

func (n *Notifier) Commented(ctx context.Context, postID int, author string) {
	n.publish(ctx, Event{Name: EventCommented, Actor: author, PostID: postID})
}

func (n *Notifier) Voted(ctx context.Context, postID int, voter string, action types.VoteAction) {
	n.publish(ctx, Event{Name: EventVoted, Actor: voter, PostID: postID, VoteAction: string(action)})
}

func (n *Notifier) publish(ctx context.Context, event Event) {
	if n == nil || n.mq == nil {
		return
	}
	event.OccurredAt = time.Now()

	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("notifier: marshal %s: %v", event.Name, err)
		return
	}
	if _, err := n.mq.Publish(ctx, n.channel, data, map[string]string{"event": event.Name}); err != nil {
		log.Printf("notifier: publish %s: %v", event.Name, err)
	}
}
