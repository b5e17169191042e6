package db

import "log"

// ------------------------------
// Event System
// ------------------------------
//
// The DB emits typed events when a stage transaction commits new bookmarks,
// tags or links. Register listeners to react to these changes.
//
// Example usage:
//
//	db.RegisterEventListener(db.OnBookmarkInsertedEvent, func(event db.Event) error {
//	    ev := event.(db.BookmarkInsertedEvent)
//	    log.Printf("New bookmark: %d - %s", ev.Bookmark.ID, ev.Bookmark.Href)
//	    return nil
//	})
//
// Event is the common interface for all database events.
type Event interface {
	Kind() EventKind
}

// EventKind represents all the kinds of events that can be emitted by the DB.
type EventKind int

const (
	// OnBookmarkInsertedEvent is emitted when a new bookmark row is committed.
	OnBookmarkInsertedEvent EventKind = iota
	// OnTagInsertedEvent is emitted when a new tag row is committed.
	OnTagInsertedEvent
	// OnLinkCreatedEvent is emitted when a bookmark/tag link is committed.
	OnLinkCreatedEvent
)

func (k EventKind) String() string {
	switch k {
	case OnBookmarkInsertedEvent:
		return "bookmark_inserted"
	case OnTagInsertedEvent:
		return "tag_inserted"
	case OnLinkCreatedEvent:
		return "link_created"
	default:
		return "unknown"
	}
}

// BookmarkInsertedEvent is emitted after a new bookmark is committed.
type BookmarkInsertedEvent struct {
	Bookmark Bookmark
}

func (e BookmarkInsertedEvent) Kind() EventKind { return OnBookmarkInsertedEvent }

// TagInsertedEvent is emitted after a new tag is committed.
type TagInsertedEvent struct {
	Tag Tag
}

func (e TagInsertedEvent) Kind() EventKind { return OnTagInsertedEvent }

// LinkCreatedEvent is emitted after a bookmark/tag link is committed.
type LinkCreatedEvent struct {
	Link Link
}

func (e LinkCreatedEvent) Kind() EventKind { return OnLinkCreatedEvent }

// EventListener is a callback that handles events of a specific kind.
type EventListener func(event Event) error

// RegisterEventListener adds a listener for a specific event kind.
// Listeners are called synchronously in registration order after the
// transaction that produced the event commits.
func (db *DB) RegisterEventListener(eventKind EventKind, listener EventListener) {
	if db.eventListeners == nil {
		db.eventListeners = make(map[EventKind][]EventListener)
	}
	db.eventListeners[eventKind] = append(db.eventListeners[eventKind], listener)
}

// emit dispatches an event to all registered listeners for that event kind.
func (db *DB) emit(event Event) {
	listeners := db.eventListeners[event.Kind()]
	for _, listener := range listeners {
		if err := listener(event); err != nil {
			log.Printf("Event listener error for %s: %v", event.Kind(), err)
		}
	}
}
