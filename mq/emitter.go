package mq

import (
	"context"
	"encoding/json"
	"log"

	"fournil/rdx"
	"fournil/refcache"
)

const channel = "catalog-events"

// Event describes a change another part of the process may care about.
type Event struct {
	Name     string `json:"name"`
	EntityID string `json:"entity_id"`
}

// Emit publishes an event to the Redis channel. Delivery is best effort; a
// failed publish is logged, never surfaced to the request that caused it.
func Emit(ctx context.Context, name, entityID string) {
	if rdx.Conn == nil {
		return
	}
	data, err := json.Marshal(Event{Name: name, EntityID: entityID})
	if err != nil {
		log.Printf("[Emit] marshal error: %v", err)
		return
	}
	if err := rdx.Conn.Publish(ctx, channel, data).Err(); err != nil {
		log.Printf("[Emit] publish error: %v", err)
	}
}

// StartWorker subscribes to catalog events and keeps the in-process caches
// converged: reference-data edits refresh the name cache, pastry writes drop
// the popular listing from Redis.
func StartWorker(ctx context.Context, cache *refcache.Cache) {
	sub := rdx.Conn.Subscribe(ctx, channel)
	ch := sub.Channel()

	go func() {
		<-ctx.Done()
		sub.Close()
	}()

	log.Println("[Worker] listening for catalog events")

	for msg := range ch {
		var event Event
		if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
			log.Printf("[Worker] bad event payload: %v", err)
			continue
		}

		switch event.Name {
		case "category-created", "category-deleted", "diet-created", "diet-deleted":
			if err := cache.Refresh(ctx); err != nil {
				log.Printf("[Worker] cache refresh failed: %v", err)
			}
		case "pastry-created", "pastry-updated", "pastry-deleted":
			rdx.DelPattern("popular:pastries:*")
		}
	}
}
