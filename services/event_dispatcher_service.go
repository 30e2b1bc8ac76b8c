package services

import (
	"log"
	"time"

	"github.com/SuperB747/emotion-notepad-sub000/broker"
	"github.com/SuperB747/emotion-notepad-sub000/database"
	"github.com/SuperB747/emotion-notepad-sub000/models"
)

type EventDispatcherServiceInterface interface {
	Start()
	Stop()
	DispatchPending() (int, error)
}

// EventDispatcherService drains the event outbox: pending rows are
// published to the broker subject for their entity and marked dispatched.
// Publishing after commit keeps entity writes and event delivery from
// racing each other.
type EventDispatcherService struct {
	db       *database.Database
	producer *broker.Producer
	interval time.Duration
	stopChan chan struct{}
}

func NewEventDispatcherService(db *database.Database, producer *broker.Producer, interval time.Duration) *EventDispatcherService {
	return &EventDispatcherService{
		db:       db,
		producer: producer,
		interval: interval,
		stopChan: make(chan struct{}),
	}
}

func (s *EventDispatcherService) Start() {
	go func() {
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stopChan:
				return
			case <-ticker.C:
				if _, err := s.DispatchPending(); err != nil {
					log.Printf("Event dispatch failed: %v", err)
				}
			}
		}
	}()
	log.Println("Event dispatcher started")
}

func (s *EventDispatcherService) Stop() {
	close(s.stopChan)
	log.Println("Event dispatcher stopped")
}

// DispatchPending publishes all pending outbox rows, returning how many
// were dispatched.
func (s *EventDispatcherService) DispatchPending() (int, error) {
	var events []models.Event
	if err := s.db.DB.Where("dispatched = ?", false).Order("timestamp ASC").Limit(100).Find(&events).Error; err != nil {
		return 0, err
	}

	dispatched := 0
	for _, event := range events {
		payload, err := event.ToJSON()
		if err != nil {
			log.Printf("Failed to serialize event %s: %v", event.ID, err)
			continue
		}

		s.producer.Publish(broker.SubjectForEntity(event.Entity), payload)

		now := time.Now().UTC()
		if err := s.db.DB.Model(&models.Event{}).Where("id = ?", event.ID).Updates(map[string]interface{}{
			"dispatched":    true,
			"dispatched_at": &now,
			"status":        "dispatched",
		}).Error; err != nil {
			return dispatched, err
		}
		dispatched++
	}
	return dispatched, nil
}

var EventDispatcherServiceInstance EventDispatcherServiceInterface
