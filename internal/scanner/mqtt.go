// Package scanner ingests QR scan events from handheld scanner apps over
// MQTT and toggles the matching tool between checked out and checked in.
package scanner

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	log "github.com/sirupsen/logrus"

	"github.com/ukydev/tool-maintenance/internal/db"
	"github.com/ukydev/tool-maintenance/internal/metrics"
	"github.com/ukydev/tool-maintenance/internal/models"
)

const connectTimeout = 30 * time.Second

// ScanEvent is the wire payload a scanner app publishes after reading a
// tool's QR label.
type ScanEvent struct {
	ToolCode  string    `json:"tool_code"`
	UserID    string    `json:"user_id"`
	ScannedAt time.Time `json:"scanned_at"`
}

// Listener subscribes to the scan topic and applies each event to storage.
type Listener struct {
	store  db.UsageStore
	client mqtt.Client
	topic  string
}

// NewListener builds a listener with auto-reconnect against the broker.
func NewListener(store db.UsageStore, broker, clientID, topic string) *Listener {
	l := &Listener{store: store, topic: topic}

	opts := mqtt.NewClientOptions()
	opts.AddBroker(broker)
	opts.SetClientID(clientID)
	opts.SetCleanSession(true)
	opts.SetAutoReconnect(true)
	opts.SetConnectRetry(true)
	opts.SetKeepAlive(60 * time.Second)
	opts.SetOnConnectHandler(func(client mqtt.Client) {
		log.WithField("topic", topic).Info("connected to mqtt broker, subscribing")
		if token := client.Subscribe(topic, 1, l.handleMessage); token.Wait() && token.Error() != nil {
			log.WithError(token.Error()).Error("failed to subscribe to scan topic")
		}
	})
	opts.SetConnectionLostHandler(func(_ mqtt.Client, err error) {
		log.WithError(err).Warn("mqtt connection lost, reconnecting")
	})

	l.client = mqtt.NewClient(opts)
	return l
}

// Start connects to the broker. Subscription happens in the on-connect
// handler so it survives reconnects.
func (l *Listener) Start() error {
	token := l.client.Connect()
	if !token.WaitTimeout(connectTimeout) {
		return fmt.Errorf("mqtt connect timed out")
	}
	if err := token.Error(); err != nil {
		return fmt.Errorf("mqtt connect: %w", err)
	}
	return nil
}

// Stop disconnects from the broker.
func (l *Listener) Stop() {
	l.client.Disconnect(250)
}

func (l *Listener) handleMessage(_ mqtt.Client, msg mqtt.Message) {
	var event ScanEvent
	if err := json.Unmarshal(msg.Payload(), &event); err != nil {
		log.WithError(err).Warn("dropping malformed scan event")
		metrics.ScansProcessed.WithLabelValues("malformed").Inc()
		return
	}
	l.Apply(context.Background(), event)
}

// Apply toggles the tool's checkout state: a scan of an available tool opens
// a checkout, a scan of a checked-out tool closes it. Failures are logged
// and the event is dropped; the scanner app retries on the next scan.
func (l *Listener) Apply(ctx context.Context, event ScanEvent) {
	if event.ToolCode == "" || event.UserID == "" {
		log.WithFields(log.Fields{
			"tool_code": event.ToolCode,
			"user_id":   event.UserID,
		}).Warn("dropping scan event with missing fields")
		metrics.ScansProcessed.WithLabelValues("malformed").Inc()
		return
	}
	if event.ScannedAt.IsZero() {
		event.ScannedAt = time.Now()
	}

	record := models.UsageRecord{
		ToolCode:     event.ToolCode,
		UserID:       event.UserID,
		CheckoutTime: event.ScannedAt,
		UsageType:    "checkout",
		Notes:        "qr scan",
		CreatedAt:    time.Now(),
	}

	err := l.store.OpenCheckout(ctx, record)
	if err == nil {
		log.WithFields(log.Fields{
			"tool_code": event.ToolCode,
			"user_id":   event.UserID,
		}).Info("scan opened checkout")
		metrics.ScansProcessed.WithLabelValues("checkout").Inc()
		return
	}

	if errors.Is(err, db.ErrOpenCheckout) {
		if _, err := l.store.CloseCheckout(ctx, event.ToolCode, event.ScannedAt); err != nil {
			log.WithError(err).WithField("tool_code", event.ToolCode).Error("scan checkin failed")
			metrics.ScansProcessed.WithLabelValues("error").Inc()
			return
		}
		log.WithFields(log.Fields{
			"tool_code": event.ToolCode,
			"user_id":   event.UserID,
		}).Info("scan closed checkout")
		metrics.ScansProcessed.WithLabelValues("checkin").Inc()
		return
	}

	log.WithError(err).WithField("tool_code", event.ToolCode).Error("scan checkout failed")
	metrics.ScansProcessed.WithLabelValues("error").Inc()
}
