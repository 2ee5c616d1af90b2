package orchestrator

import (
	"time"

	"github.com/google/uuid"
)

// Notification is a transient failure message shown to the user.
type Notification struct {
	ID         string     `json:"id"`
	Collection Collection `json:"collection"`
	Message    string     `json:"message"`
	CreatedAt  time.Time  `json:"createdAt"`
	ExpiresAt  time.Time  `json:"expiresAt"`
}

// notifyLocked queues a notification, keeping the newest maxNotifications.
func (c *Controller) notifyLocked(collection Collection, message string) Notification {
	now := c.now()
	n := Notification{
		ID:         uuid.NewString(),
		Collection: collection,
		Message:    message,
		CreatedAt:  now,
		ExpiresAt:  now.Add(c.ttl),
	}
	c.notifications = append(c.notifications, n)
	if over := len(c.notifications) - maxNotifications; over > 0 {
		c.notifications = c.notifications[over:]
	}
	return n
}

// activeNotificationsLocked drops expired notifications and returns a copy of
// the rest, oldest first.
func (c *Controller) activeNotificationsLocked() []Notification {
	now := c.now()
	kept := c.notifications[:0]
	for _, n := range c.notifications {
		if now.Before(n.ExpiresAt) {
			kept = append(kept, n)
		}
	}
	c.notifications = kept

	out := make([]Notification, len(kept))
	copy(out, kept)
	return out
}

// Notifications returns the unexpired notifications.
func (c *Controller) Notifications() []Notification {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeNotificationsLocked()
}

// Dismiss removes a notification before it expires.
func (c *Controller) Dismiss(id string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	for i, n := range c.notifications {
		if n.ID == id {
			c.notifications = append(c.notifications[:i], c.notifications[i+1:]...)
			return nil
		}
	}
	return ErrNotFound
}
