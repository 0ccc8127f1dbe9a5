package observer

import (
	"bytes"
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
)

type recordingObserver struct {
	name   string
	mu     sync.Mutex
	events []PipelineEvent
	wg     *sync.WaitGroup
}

func (r *recordingObserver) OnEvent(ctx context.Context, event PipelineEvent) {
	r.mu.Lock()
	r.events = append(r.events, event)
	r.mu.Unlock()
	r.wg.Done()
}

func (r *recordingObserver) GetObserverName() string {
	return r.name
}

func TestMetricsObserver_Counts(t *testing.T) {
	metrics := NewMetricsObserver()
	ctx := context.Background()

	metrics.OnEvent(ctx, PipelineEvent{EventType: AnalysisStarted})
	metrics.OnEvent(ctx, PipelineEvent{EventType: AnalysisStarted})
	metrics.OnEvent(ctx, PipelineEvent{EventType: AnalysisFailed})
	metrics.OnEvent(ctx, PipelineEvent{EventType: RecordStored})
	metrics.OnEvent(ctx, PipelineEvent{EventType: RecordStored})
	metrics.OnEvent(ctx, PipelineEvent{EventType: RecordFailed})
	metrics.OnEvent(ctx, PipelineEvent{EventType: AnalysisCompleted, ProcessingTime: 300 * time.Millisecond})

	got := metrics.GetMetrics()
	want := map[string]interface{}{
		"total_analyses":         int64(2),
		"successful_analyses":    int64(1),
		"failed_analyses":        int64(1),
		"records_stored":         int64(2),
		"records_failed":         int64(1),
		"avg_processing_time_ms": int64(300),
	}
	for key, value := range want {
		if got[key] != value {
			t.Errorf("Expected %s=%v, got %v", key, value, got[key])
		}
	}
}

func TestEventPublisher_NotifiesSubscribers(t *testing.T) {
	publisher := NewEventPublisher()

	var wg sync.WaitGroup
	first := &recordingObserver{name: "first", wg: &wg}
	second := &recordingObserver{name: "second", wg: &wg}
	publisher.Subscribe(first)
	publisher.Subscribe(second)

	wg.Add(2)
	publisher.NotifyObservers(context.Background(), PipelineEvent{EventType: RecordStored, DocumentURL: "https://example.com/a.pdf"})
	wg.Wait()

	for _, obs := range []*recordingObserver{first, second} {
		obs.mu.Lock()
		if len(obs.events) != 1 || obs.events[0].EventType != RecordStored {
			t.Errorf("Observer %s got %+v", obs.name, obs.events)
		}
		if obs.events[0].Timestamp.IsZero() {
			t.Errorf("Expected timestamp to be filled in")
		}
		obs.mu.Unlock()
	}

	publisher.Unsubscribe(second)
	wg.Add(1)
	publisher.NotifyObservers(context.Background(), PipelineEvent{EventType: RecordFailed})
	wg.Wait()

	second.mu.Lock()
	defer second.mu.Unlock()
	if len(second.events) != 1 {
		t.Errorf("Expected unsubscribed observer to receive no more events, got %d", len(second.events))
	}
}

func TestLoggingObserver_Levels(t *testing.T) {
	var buf bytes.Buffer
	log := logrus.New()
	log.SetOutput(&buf)
	log.SetLevel(logrus.InfoLevel)
	log.SetFormatter(&logrus.JSONFormatter{})

	obs := NewLoggingObserver(log)
	obs.OnEvent(context.Background(), PipelineEvent{
		EventType:    RecordFailed,
		DocumentURL:  "https://example.com/a.pdf",
		ErrorMessage: "persistence failed",
		Metadata:     map[string]interface{}{"index": 1},
	})
	obs.OnEvent(context.Background(), PipelineEvent{EventType: RecordStored})

	out := buf.String()
	if !strings.Contains(out, `"level":"error"`) || !strings.Contains(out, `"index":1`) {
		t.Errorf("Expected error entry with metadata, got %s", out)
	}
	if strings.Contains(out, "Record stored") {
		t.Errorf("Expected debug entry to be filtered at info level, got %s", out)
	}
}
